package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type (
	TransactionType string

	Frequency string

	// Money is an amount in integer minor currency units (cents).
	Money struct {
		Cents int64
	}

	// User is the identity row behind a session. OpenID is the external
	// login identifier issued by the OAuth provider.
	User struct {
		ID           int64
		OpenID       string
		Name         string
		Email        string
		LoginMethod  string
		Role         string
		CreatedAt    time.Time
		UpdatedAt    time.Time
		LastSignedIn time.Time
	}

	Transaction struct {
		ID              int64
		UserID          int64
		Type            TransactionType
		Category        string
		Amount          Money
		Description     string
		Person          string
		TransactionDate time.Time
		CreatedAt       time.Time
		UpdatedAt       time.Time
	}

	// Budget is keyed by (UserID, Month) where Month is "YYYY-MM".
	Budget struct {
		ID        int64
		UserID    int64
		Month     string
		Amount    Money
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	RecurringTransaction struct {
		ID               int64
		UserID           int64
		Type             TransactionType
		Category         string
		Amount           Money
		Description      string
		Person           string
		Frequency        Frequency
		DayOfMonth       int // 1-31, monthly recurrence
		DayOfWeek        int // 0-6, weekly recurrence
		IsActive         bool
		LastExecutedDate time.Time
		CreatedAt        time.Time
		UpdatedAt        time.Time
	}

	Category struct {
		ID        int64
		UserID    int64
		Name      string
		Type      TransactionType
		Icon      string
		Color     string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	AppSettings struct {
		ID                  int64
		UserID              int64
		PasswordHash        string
		GoogleDriveToken    string
		GoogleDriveFolderID string
		LastSyncDate        time.Time
		CreatedAt           time.Time
		UpdatedAt           time.Time
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidFrequency   = errors.New("invalid frequency")
	ErrInvalidMonth       = errors.New("invalid month, expected YYYY-MM")
	ErrEmptyCategory      = errors.New("empty category")
	ErrInvalidDate        = errors.New("invalid transaction date")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
)

var monthRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (f Frequency) Validate() error {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return nil
	default:
		return ErrInvalidFrequency
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateMonth checks the 7-character "YYYY-MM" budget key.
func ValidateMonth(month string) error {
	if !monthRe.MatchString(month) {
		return ErrInvalidMonth
	}
	return nil
}

// MonthKey renders a budget month key for a point in time.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

func (t Transaction) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.TransactionDate.IsZero() {
		return ErrInvalidDate
	}
	if len(t.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	return nil
}

func (rt RecurringTransaction) Validate() error {
	if err := rt.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(rt.Category) == "" {
		return ErrEmptyCategory
	}
	if err := rt.Amount.Validate(); err != nil {
		return err
	}
	if err := rt.Frequency.Validate(); err != nil {
		return err
	}
	if rt.Frequency == Monthly && rt.DayOfMonth != 0 && (rt.DayOfMonth < 1 || rt.DayOfMonth > 31) {
		return errors.New("day of month out of range")
	}
	if rt.Frequency == Weekly && (rt.DayOfWeek < 0 || rt.DayOfWeek > 6) {
		return errors.New("day of week out of range")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("empty category name")
	}
	if len(c.Name) > 100 {
		return errors.New("category name too long (max 100 characters)")
	}
	return c.Type.Validate()
}
