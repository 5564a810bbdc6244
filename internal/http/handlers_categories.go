package http

import (
	"net/http"
	"strings"

	"github.com/ahmedsps3/personal-budget-app/internal/auth"
	"github.com/ahmedsps3/personal-budget-app/internal/core"
)

type categoriesByTypeInput struct {
	Type string `json:"type"`
}

// handleCategoriesByType returns the static catalog for the type followed by
// the user's own categories. Custom rows shadow catalog entries by name.
func (s *Server) handleCategoriesByType(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var in categoriesByTypeInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}
	transactionType := core.TransactionType(in.Type)
	if err := transactionType.Validate(); err != nil {
		writeError(w, err)
		return
	}

	custom, err := s.storage.ListCategoriesByType(r.Context(), user.ID, transactionType)
	if err != nil {
		writeError(w, err)
		return
	}

	seen := make(map[string]bool, len(custom))
	out := make([]categoryDTO, 0, len(custom)+16)
	for _, c := range custom {
		seen[c.Name] = true
		out = append(out, toCategoryDTO(c))
	}
	for _, entry := range core.DefaultCatalog(transactionType) {
		if seen[entry.Name] {
			continue
		}
		out = append(out, categoryDTO{
			Name:  entry.Name,
			Type:  string(transactionType),
			Group: entry.Group,
		})
	}

	writeResult(w, out)
}

type categoryCreateInput struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func (s *Server) handleCategoryCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var in categoryCreateInput
	if err := decodeInput(r, &in); err != nil {
		writeError(w, err)
		return
	}

	category := core.Category{
		UserID: user.ID,
		Name:   strings.TrimSpace(in.Name),
		Type:   core.TransactionType(in.Type),
		Icon:   strings.TrimSpace(in.Icon),
		Color:  strings.TrimSpace(in.Color),
	}
	if err := category.Validate(); err != nil {
		writeError(w, validationErrorf("%v", err))
		return
	}

	created, err := s.service.CreateCategory(r.Context(), category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, toCategoryDTO(created))
}
