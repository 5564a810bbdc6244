package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ahmedsps3/personal-budget-app/internal/auth"
	"github.com/ahmedsps3/personal-budget-app/internal/core"
)

type budgetGetInput struct {
	Month string `json:"month"`
}

func (s *Server) handleBudgetGet(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var in budgetGetInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}
	month := strings.TrimSpace(in.Month)
	if err := core.ValidateMonth(month); err != nil {
		writeError(w, err)
		return
	}

	budget, err := s.storage.GetBudget(r.Context(), user.ID, month)
	if err != nil {
		writeError(w, err)
		return
	}
	if budget == nil {
		writeResult(w, nil)
		return
	}

	year, monthNum := splitMonthKey(month)
	transactions, err := s.storage.ListTransactionsByMonth(r.Context(), user.ID, year, monthNum)
	if err != nil {
		writeError(w, err)
		return
	}

	status := core.ComputeBudgetStatus(month, budget.Amount, transactions)
	writeResult(w, budgetDTO{
		Month:      status.Month,
		Amount:     core.Money{Cents: status.BudgetCents}.Decimal(),
		Spent:      core.Money{Cents: status.SpentCents}.Decimal(),
		Remaining:  core.Money{Cents: status.RemainingCents}.Decimal(),
		OverBudget: status.OverBudget,
	})
}

type budgetSetInput struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

func (s *Server) handleBudgetSet(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var in budgetSetInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}
	month := strings.TrimSpace(in.Month)
	if err := core.ValidateMonth(month); err != nil {
		writeError(w, err)
		return
	}
	cents, err := core.DecimalToCents(in.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	budget, err := s.service.SetBudget(r.Context(), user.ID, month, cents)
	if err != nil {
		writeError(w, err)
		return
	}

	writeResult(w, map[string]any{
		"month":  budget.Month,
		"amount": budget.Amount.Decimal(),
	})
}

// splitMonthKey parses a validated "YYYY-MM" key.
func splitMonthKey(month string) (year, monthNum int) {
	year, _ = strconv.Atoi(month[:4])
	monthNum, _ = strconv.Atoi(month[5:])
	return year, monthNum
}
