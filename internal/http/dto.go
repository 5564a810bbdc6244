package http

import (
	"strings"
	"time"

	"github.com/ahmedsps3/personal-budget-app/internal/core"
)

// Wire representations. Amounts cross the wire as decimal primary-unit
// values; storage keeps integer cents.

type userDTO struct {
	ID          int64  `json:"id"`
	OpenID      string `json:"openId"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	LoginMethod string `json:"loginMethod"`
	Role        string `json:"role"`
}

type transactionDTO struct {
	ID              int64   `json:"id"`
	Type            string  `json:"type"`
	Category        string  `json:"category"`
	Amount          float64 `json:"amount"`
	Description     string  `json:"description,omitempty"`
	Person          string  `json:"person,omitempty"`
	TransactionDate string  `json:"transactionDate"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

type budgetDTO struct {
	Month      string  `json:"month"`
	Amount     float64 `json:"amount"`
	Spent      float64 `json:"spent"`
	Remaining  float64 `json:"remaining"`
	OverBudget bool    `json:"overBudget"`
}

type recurringDTO struct {
	ID               int64   `json:"id"`
	Type             string  `json:"type"`
	Category         string  `json:"category"`
	Amount           float64 `json:"amount"`
	Description      string  `json:"description,omitempty"`
	Person           string  `json:"person,omitempty"`
	Frequency        string  `json:"frequency"`
	DayOfMonth       int     `json:"dayOfMonth,omitempty"`
	DayOfWeek        int     `json:"dayOfWeek,omitempty"`
	IsActive         bool    `json:"isActive"`
	LastExecutedDate string  `json:"lastExecutedDate,omitempty"`
}

type categoryDTO struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
	Group string `json:"group,omitempty"`
}

// settingsDTO never echoes the Drive token itself.
type settingsDTO struct {
	GoogleDriveConnected bool   `json:"googleDriveConnected"`
	GoogleDriveFolderID  string `json:"googleDriveFolderId,omitempty"`
	LastSyncDate         string `json:"lastSyncDate,omitempty"`
}

const dateLayout = "2006-01-02"

func toUserDTO(u core.User) userDTO {
	return userDTO{
		ID:          u.ID,
		OpenID:      u.OpenID,
		Name:        u.Name,
		Email:       u.Email,
		LoginMethod: u.LoginMethod,
		Role:        u.Role,
	}
}

func toTransactionDTO(t core.Transaction) transactionDTO {
	return transactionDTO{
		ID:              t.ID,
		Type:            string(t.Type),
		Category:        t.Category,
		Amount:          t.Amount.Decimal(),
		Description:     t.Description,
		Person:          t.Person,
		TransactionDate: t.TransactionDate.Format(dateLayout),
		CreatedAt:       t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toTransactionDTOs(ts []core.Transaction) []transactionDTO {
	out := make([]transactionDTO, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTransactionDTO(t))
	}
	return out
}

func toRecurringDTO(rt core.RecurringTransaction) recurringDTO {
	dto := recurringDTO{
		ID:          rt.ID,
		Type:        string(rt.Type),
		Category:    rt.Category,
		Amount:      rt.Amount.Decimal(),
		Description: rt.Description,
		Person:      rt.Person,
		Frequency:   string(rt.Frequency),
		DayOfMonth:  rt.DayOfMonth,
		DayOfWeek:   rt.DayOfWeek,
		IsActive:    rt.IsActive,
	}
	if !rt.LastExecutedDate.IsZero() {
		dto.LastExecutedDate = rt.LastExecutedDate.Format(dateLayout)
	}
	return dto
}

func toCategoryDTO(c core.Category) categoryDTO {
	return categoryDTO{
		ID:    c.ID,
		Name:  c.Name,
		Type:  string(c.Type),
		Icon:  c.Icon,
		Color: c.Color,
	}
}

func toSettingsDTO(s core.AppSettings) settingsDTO {
	dto := settingsDTO{
		GoogleDriveConnected: s.GoogleDriveToken != "",
		GoogleDriveFolderID:  s.GoogleDriveFolderID,
	}
	if !s.LastSyncDate.IsZero() {
		dto.LastSyncDate = s.LastSyncDate.UTC().Format(time.RFC3339)
	}
	return dto
}

// parseDate accepts the plain date form first, then full RFC 3339.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, core.ErrInvalidDate
	}
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, core.ErrInvalidDate
}
