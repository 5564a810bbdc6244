package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ahmedsps3/personal-budget-app/internal/auth"
	"github.com/ahmedsps3/personal-budget-app/internal/core"
	"github.com/ahmedsps3/personal-budget-app/internal/storage"
)

type transactionCreateInput struct {
	Type            string  `json:"type"`
	Category        string  `json:"category"`
	Amount          float64 `json:"amount"`
	Description     string  `json:"description"`
	Person          string  `json:"person"`
	TransactionDate string  `json:"transactionDate"`
}

func (s *Server) handleTransactionCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var in transactionCreateInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}

	cents, err := core.DecimalToCents(in.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	date, err := parseDate(in.TransactionDate)
	if err != nil {
		writeError(w, err)
		return
	}

	transaction := core.Transaction{
		UserID:          user.ID,
		Type:            core.TransactionType(in.Type),
		Category:        strings.TrimSpace(in.Category),
		Amount:          core.Money{Cents: cents},
		Description:     strings.TrimSpace(in.Description),
		Person:          strings.TrimSpace(in.Person),
		TransactionDate: date,
	}
	if err := transaction.Validate(); err != nil {
		writeError(w, validationErrorf("%v", err))
		return
	}

	created, err := s.service.CreateTransaction(r.Context(), transaction)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction create failed", "error", err, "user_id", user.ID)
		writeError(w, err)
		return
	}

	s.invalidateUserCache(user.ID)
	writeResult(w, toTransactionDTO(created))
}

type transactionUpdateInput struct {
	ID              int64    `json:"id"`
	Type            *string  `json:"type"`
	Category        *string  `json:"category"`
	Amount          *float64 `json:"amount"`
	Description     *string  `json:"description"`
	Person          *string  `json:"person"`
	TransactionDate *string  `json:"transactionDate"`
}

func (s *Server) handleTransactionUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var in transactionUpdateInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.ID <= 0 {
		writeError(w, validationErrorf("id is required"))
		return
	}

	var upd storage.TransactionUpdate

	if in.Type != nil {
		t := core.TransactionType(*in.Type)
		if err := t.Validate(); err != nil {
			writeError(w, err)
			return
		}
		upd.Type = &t
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		if category == "" {
			writeError(w, core.ErrEmptyCategory)
			return
		}
		upd.Category = &category
	}
	if in.Amount != nil {
		cents, err := core.DecimalToCents(*in.Amount)
		if err != nil {
			writeError(w, err)
			return
		}
		upd.AmountCents = &cents
	}
	if in.Description != nil {
		upd.Description = in.Description
	}
	if in.Person != nil {
		upd.Person = in.Person
	}
	if in.TransactionDate != nil {
		date, err := parseDate(*in.TransactionDate)
		if err != nil {
			writeError(w, err)
			return
		}
		upd.TransactionDate = &date
	}

	n, err := s.service.UpdateTransaction(r.Context(), user.ID, in.ID, upd)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidateUserCache(user.ID)
	writeResult(w, map[string]bool{"success": n > 0})
}

type transactionDeleteInput struct {
	ID int64 `json:"id"`
}

func (s *Server) handleTransactionDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var in transactionDeleteInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.ID <= 0 {
		writeError(w, validationErrorf("id is required"))
		return
	}

	n, err := s.service.DeleteTransaction(r.Context(), user.ID, in.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidateUserCache(user.ID)
	writeResult(w, map[string]bool{"success": n > 0})
}

type monthInput struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (in monthInput) validate() error {
	if in.Year < 1970 || in.Year > 9999 {
		return validationErrorf("year out of range: %d", in.Year)
	}
	if in.Month < 1 || in.Month > 12 {
		return validationErrorf("month out of range: %d", in.Month)
	}
	return nil
}

func (s *Server) handleTransactionsByMonth(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var in monthInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := in.validate(); err != nil {
		writeError(w, err)
		return
	}

	key := s.monthCacheKey(user.ID, in.Year, in.Month)
	if cached, found := s.monthCache.Get(key); found {
		slog.DebugContext(r.Context(), "Month listing cache hit", "user_id", user.ID, "year", in.Year, "month", in.Month)
		writeResult(w, toTransactionDTOs(cached))
		return
	}

	transactions, err := s.storage.ListTransactionsByMonth(r.Context(), user.ID, in.Year, in.Month)
	if err != nil {
		writeError(w, err)
		return
	}

	s.monthCache.Set(key, transactions)
	writeResult(w, toTransactionDTOs(transactions))
}

type dateRangeInput struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (s *Server) handleTransactionsByDateRange(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var in dateRangeInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}

	start, err := parseDate(in.StartDate)
	if err != nil {
		writeError(w, validationErrorf("invalid startDate"))
		return
	}
	end, err := parseDate(in.EndDate)
	if err != nil {
		writeError(w, validationErrorf("invalid endDate"))
		return
	}
	if end.Before(start) {
		writeError(w, validationErrorf("endDate before startDate"))
		return
	}

	// Inclusive end date.
	end = end.Add(24*time.Hour - time.Second)

	transactions, err := s.storage.ListTransactionsByDateRange(r.Context(), user.ID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, toTransactionDTOs(transactions))
}

type categoryFilterInput struct {
	Category string `json:"category"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
}

func (s *Server) handleTransactionsByCategory(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var in categoryFilterInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(in.Category) == "" {
		writeError(w, core.ErrEmptyCategory)
		return
	}
	if in.Month != 0 || in.Year != 0 {
		if err := (monthInput{Year: in.Year, Month: in.Month}).validate(); err != nil {
			writeError(w, err)
			return
		}
	}

	transactions, err := s.storage.ListTransactionsByCategory(r.Context(), user.ID, strings.TrimSpace(in.Category), in.Year, in.Month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, toTransactionDTOs(transactions))
}

func (s *Server) handleTransactionsAll(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	transactions, err := s.storage.ListAllTransactions(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, toTransactionDTOs(transactions))
}
