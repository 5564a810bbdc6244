package http

import (
	"net/http"
	"strings"

	"github.com/ahmedsps3/personal-budget-app/internal/auth"
	"github.com/ahmedsps3/personal-budget-app/internal/core"
	"github.com/ahmedsps3/personal-budget-app/internal/storage"
)

func (s *Server) handleRecurringAll(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	templates, err := s.storage.ListActiveRecurring(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]recurringDTO, 0, len(templates))
	for _, rt := range templates {
		out = append(out, toRecurringDTO(rt))
	}
	writeResult(w, out)
}

type recurringCreateInput struct {
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Person      string  `json:"person"`
	Frequency   string  `json:"frequency"`
	DayOfMonth  int     `json:"dayOfMonth"`
	DayOfWeek   int     `json:"dayOfWeek"`
}

func (s *Server) handleRecurringCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var in recurringCreateInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}

	cents, err := core.DecimalToCents(in.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	rt := core.RecurringTransaction{
		UserID:      user.ID,
		Type:        core.TransactionType(in.Type),
		Category:    strings.TrimSpace(in.Category),
		Amount:      core.Money{Cents: cents},
		Description: strings.TrimSpace(in.Description),
		Person:      strings.TrimSpace(in.Person),
		Frequency:   core.Frequency(in.Frequency),
		DayOfMonth:  in.DayOfMonth,
		DayOfWeek:   in.DayOfWeek,
		IsActive:    true,
	}
	if err := rt.Validate(); err != nil {
		writeError(w, validationErrorf("%v", err))
		return
	}

	created, err := s.service.CreateRecurring(r.Context(), rt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, toRecurringDTO(created))
}

type recurringUpdateInput struct {
	ID          int64    `json:"id"`
	IsActive    *bool    `json:"isActive"`
	Amount      *float64 `json:"amount"`
	Description *string  `json:"description"`
}

func (s *Server) handleRecurringUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var in recurringUpdateInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.ID <= 0 {
		writeError(w, validationErrorf("id is required"))
		return
	}

	var upd storage.RecurringUpdate
	upd.IsActive = in.IsActive
	if in.Amount != nil {
		cents, err := core.DecimalToCents(*in.Amount)
		if err != nil {
			writeError(w, err)
			return
		}
		upd.AmountCents = &cents
	}
	upd.Description = in.Description

	n, err := s.service.UpdateRecurring(r.Context(), user.ID, in.ID, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, map[string]bool{"success": n > 0})
}
