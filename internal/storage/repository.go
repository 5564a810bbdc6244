package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ahmedsps3/personal-budget-app/internal/core"

	_ "modernc.org/sqlite"
)

// Repository is the single data-access layer. Every read and write is scoped
// to the owning user; mutations against rows owned by someone else affect
// zero rows and return no error.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ready fails fast when no live connection exists instead of hanging.
func (r *Repository) ready() error {
	if r == nil || r.db == nil {
		return core.ErrStorageUnavailable
	}
	return nil
}

// UpsertUser inserts or refreshes the identity row for an external openID
// and returns the stored user.
func (r *Repository) UpsertUser(ctx context.Context, u core.User) (core.User, error) {
	if err := r.ready(); err != nil {
		return core.User{}, err
	}
	if u.OpenID == "" {
		return core.User{}, fmt.Errorf("upsert user: openID is required")
	}
	role := u.Role
	if role == "" {
		role = "user"
	}
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (open_id, name, email, login_method, role, last_signed_in, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(open_id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			login_method = excluded.login_method,
			last_signed_in = excluded.last_signed_in,
			updated_at = excluded.updated_at`,
		u.OpenID, u.Name, u.Email, u.LoginMethod, role, now, now, now)
	if err != nil {
		return core.User{}, fmt.Errorf("upsert user: %w", err)
	}

	stored, err := r.GetUserByOpenID(ctx, u.OpenID)
	if err != nil {
		return core.User{}, err
	}
	return *stored, nil
}

func (r *Repository) GetUserByOpenID(ctx context.Context, openID string) (*core.User, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var u core.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, open_id, name, email, login_method, role, created_at, updated_at, last_signed_in
		FROM users WHERE open_id = ?`, openID).
		Scan(&u.ID, &u.OpenID, &u.Name, &u.Email, &u.LoginMethod, &u.Role, &u.CreatedAt, &u.UpdatedAt, &u.LastSignedIn)
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by open id: %w", err)
	}
	return &u, nil
}

const transactionColumns = `id, user_id, type, category, amount_cents, description, person, transaction_date, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	var typ string
	err := row.Scan(&t.ID, &t.UserID, &typ, &t.Category, &t.Amount.Cents,
		&t.Description, &t.Person, &t.TransactionDate, &t.CreatedAt, &t.UpdatedAt)
	t.Type = core.TransactionType(typ)
	return t, err
}

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := r.ready(); err != nil {
		return core.Transaction{}, err
	}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, type, category, amount_cents, description, person, transaction_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, string(t.Type), t.Category, t.Amount.Cents, t.Description, t.Person, t.TransactionDate.UTC(), now, now)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction id: %w", err)
	}
	return r.getTransaction(ctx, t.UserID, id)
}

func (r *Repository) getTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// TransactionUpdate is a partial payload; nil fields are left unchanged.
type TransactionUpdate struct {
	Type            *core.TransactionType
	Category        *string
	AmountCents     *int64
	Description     *string
	Person          *string
	TransactionDate *time.Time
}

// UpdateTransaction applies the partial update to a row owned by userID.
// Rows owned by another user are silently unaffected; the returned count is
// the number of rows changed (0 or 1).
func (r *Repository) UpdateTransaction(ctx context.Context, userID, id int64, upd TransactionUpdate) (int64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	set := make([]string, 0, 7)
	args := make([]any, 0, 9)
	if upd.Type != nil {
		set = append(set, "type = ?")
		args = append(args, string(*upd.Type))
	}
	if upd.Category != nil {
		set = append(set, "category = ?")
		args = append(args, *upd.Category)
	}
	if upd.AmountCents != nil {
		set = append(set, "amount_cents = ?")
		args = append(args, *upd.AmountCents)
	}
	if upd.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.Person != nil {
		set = append(set, "person = ?")
		args = append(args, *upd.Person)
	}
	if upd.TransactionDate != nil {
		set = append(set, "transaction_date = ?")
		args = append(args, upd.TransactionDate.UTC())
	}
	if len(set) == 0 {
		return 0, nil
	}
	set = append(set, "updated_at = ?")
	args = append(args, time.Now().UTC(), id, userID)

	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET `+strings.Join(set, ", ")+` WHERE id = ? AND user_id = ?`, args...)
	if err != nil {
		return 0, fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update transaction rows: %w", err)
	}
	return n, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id int64) (int64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete transaction rows: %w", err)
	}
	return n, nil
}

func (r *Repository) listTransactions(ctx context.Context, where string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE `+where+
			` ORDER BY transaction_date DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// MonthBounds returns the inclusive range covering a calendar month.
func MonthBounds(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end
}

func (r *Repository) ListTransactionsByMonth(ctx context.Context, userID int64, year, month int) ([]core.Transaction, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	start, end := MonthBounds(year, month)
	return r.listTransactions(ctx, `user_id = ? AND transaction_date >= ? AND transaction_date <= ?`, userID, start, end)
}

func (r *Repository) ListTransactionsByDateRange(ctx context.Context, userID int64, start, end time.Time) ([]core.Transaction, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	return r.listTransactions(ctx, `user_id = ? AND transaction_date >= ? AND transaction_date <= ?`, userID, start.UTC(), end.UTC())
}

// ListTransactionsByCategory filters by category, optionally narrowed to a
// calendar month when both year and month are non-zero.
func (r *Repository) ListTransactionsByCategory(ctx context.Context, userID int64, category string, year, month int) ([]core.Transaction, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if year != 0 && month != 0 {
		start, end := MonthBounds(year, month)
		return r.listTransactions(ctx,
			`user_id = ? AND category = ? AND transaction_date >= ? AND transaction_date <= ?`,
			userID, category, start, end)
	}
	return r.listTransactions(ctx, `user_id = ? AND category = ?`, userID, category)
}

func (r *Repository) ListAllTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	return r.listTransactions(ctx, `user_id = ?`, userID)
}

// GetBudget returns nil without error when no budget exists for the month.
func (r *Repository) GetBudget(ctx context.Context, userID int64, month string) (*core.Budget, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var b core.Budget
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, month, amount_cents, created_at, updated_at
		FROM budgets WHERE user_id = ? AND month = ?`, userID, month).
		Scan(&b.ID, &b.UserID, &b.Month, &b.Amount.Cents, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return &b, nil
}

// SetBudget is a constraint-backed upsert: the UNIQUE(user_id, month) index
// guarantees at most one row per pair even under concurrent writers.
func (r *Repository) SetBudget(ctx context.Context, userID int64, month string, amountCents int64) (core.Budget, error) {
	if err := r.ready(); err != nil {
		return core.Budget{}, err
	}
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, month, amount_cents, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, month) DO UPDATE SET
			amount_cents = excluded.amount_cents,
			updated_at = excluded.updated_at`,
		userID, month, amountCents, now, now)
	if err != nil {
		return core.Budget{}, fmt.Errorf("set budget: %w", err)
	}
	b, err := r.GetBudget(ctx, userID, month)
	if err != nil {
		return core.Budget{}, err
	}
	if b == nil {
		return core.Budget{}, fmt.Errorf("set budget: row missing after upsert")
	}
	return *b, nil
}

func (r *Repository) ListCategoriesByType(ctx context.Context, userID int64, t core.TransactionType) ([]core.Category, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, type, icon, color, created_at, updated_at
		FROM categories WHERE user_id = ? AND type = ?
		ORDER BY name ASC`, userID, string(t))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &typ, &c.Icon, &c.Color, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.TransactionType(typ)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := r.ready(); err != nil {
		return core.Category{}, err
	}
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (user_id, name, type, icon, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.UserID, c.Name, string(c.Type), c.Icon, c.Color, now, now)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("create category id: %w", err)
	}
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, nil
}

const recurringColumns = `id, user_id, type, category, amount_cents, description, person, frequency, day_of_month, day_of_week, is_active, last_executed_date, created_at, updated_at`

func scanRecurring(row interface{ Scan(...any) error }) (core.RecurringTransaction, error) {
	var rt core.RecurringTransaction
	var typ, freq string
	var dayOfMonth, dayOfWeek sql.NullInt64
	var lastExecuted sql.NullTime
	err := row.Scan(&rt.ID, &rt.UserID, &typ, &rt.Category, &rt.Amount.Cents,
		&rt.Description, &rt.Person, &freq, &dayOfMonth, &dayOfWeek,
		&rt.IsActive, &lastExecuted, &rt.CreatedAt, &rt.UpdatedAt)
	rt.Type = core.TransactionType(typ)
	rt.Frequency = core.Frequency(freq)
	rt.DayOfMonth = int(dayOfMonth.Int64)
	rt.DayOfWeek = int(dayOfWeek.Int64)
	if lastExecuted.Valid {
		rt.LastExecutedDate = lastExecuted.Time
	}
	return rt, err
}

// ListActiveRecurring returns the user's active recurring transactions
// ordered by category. Deactivated rows are retained but never listed here.
func (r *Repository) ListActiveRecurring(ctx context.Context, userID int64) ([]core.RecurringTransaction, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	return r.listRecurring(ctx, `user_id = ? AND is_active = 1`, userID)
}

// ListAllActiveRecurring returns active recurring transactions across all
// users, for the recurring worker.
func (r *Repository) ListAllActiveRecurring(ctx context.Context) ([]core.RecurringTransaction, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	return r.listRecurring(ctx, `is_active = 1`)
}

func (r *Repository) listRecurring(ctx context.Context, where string, args ...any) ([]core.RecurringTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions WHERE `+where+` ORDER BY category ASC, id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringTransaction
	for rows.Next() {
		rt, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring transaction: %w", err)
		}
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring transactions: %w", err)
	}
	return out, nil
}

func (r *Repository) CreateRecurring(ctx context.Context, rt core.RecurringTransaction) (core.RecurringTransaction, error) {
	if err := r.ready(); err != nil {
		return core.RecurringTransaction{}, err
	}
	now := time.Now().UTC()
	var dayOfMonth, dayOfWeek any
	if rt.DayOfMonth > 0 {
		dayOfMonth = rt.DayOfMonth
	}
	if rt.Frequency == core.Weekly {
		dayOfWeek = rt.DayOfWeek
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_transactions
			(user_id, type, category, amount_cents, description, person, frequency, day_of_month, day_of_week, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		rt.UserID, string(rt.Type), rt.Category, rt.Amount.Cents, rt.Description, rt.Person,
		string(rt.Frequency), dayOfMonth, dayOfWeek, now, now)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("create recurring transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("create recurring transaction id: %w", err)
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions WHERE id = ?`, id)
	stored, err := scanRecurring(row)
	if err != nil {
		return core.RecurringTransaction{}, fmt.Errorf("read back recurring transaction: %w", err)
	}
	return stored, nil
}

// RecurringUpdate is a partial payload; nil fields are left unchanged.
type RecurringUpdate struct {
	IsActive    *bool
	AmountCents *int64
	Description *string
}

func (r *Repository) UpdateRecurring(ctx context.Context, userID, id int64, upd RecurringUpdate) (int64, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	set := make([]string, 0, 4)
	args := make([]any, 0, 6)
	if upd.IsActive != nil {
		set = append(set, "is_active = ?")
		args = append(args, *upd.IsActive)
	}
	if upd.AmountCents != nil {
		set = append(set, "amount_cents = ?")
		args = append(args, *upd.AmountCents)
	}
	if upd.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *upd.Description)
	}
	if len(set) == 0 {
		return 0, nil
	}
	set = append(set, "updated_at = ?")
	args = append(args, time.Now().UTC(), id, userID)

	res, err := r.db.ExecContext(ctx,
		`UPDATE recurring_transactions SET `+strings.Join(set, ", ")+` WHERE id = ? AND user_id = ?`, args...)
	if err != nil {
		return 0, fmt.Errorf("update recurring transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update recurring transaction rows: %w", err)
	}
	return n, nil
}

// SetRecurringLastExecuted stamps the template after the worker materialized
// a transaction from it.
func (r *Repository) SetRecurringLastExecuted(ctx context.Context, id int64, executedAt time.Time) error {
	if err := r.ready(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE recurring_transactions SET last_executed_date = ?, updated_at = ? WHERE id = ?`,
		executedAt.UTC(), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set last executed date: %w", err)
	}
	return nil
}

func scanSettings(row interface{ Scan(...any) error }) (core.AppSettings, error) {
	var s core.AppSettings
	var lastSync sql.NullTime
	err := row.Scan(&s.ID, &s.UserID, &s.PasswordHash, &s.GoogleDriveToken,
		&s.GoogleDriveFolderID, &lastSync, &s.CreatedAt, &s.UpdatedAt)
	if lastSync.Valid {
		s.LastSyncDate = lastSync.Time
	}
	return s, err
}

const settingsColumns = `id, user_id, password_hash, google_drive_token, google_drive_folder_id, last_sync_date, created_at, updated_at`

// GetAppSettings returns nil without error when the user has no settings row.
func (r *Repository) GetAppSettings(ctx context.Context, userID int64) (*core.AppSettings, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+settingsColumns+` FROM app_settings WHERE user_id = ?`, userID)
	s, err := scanSettings(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get app settings: %w", err)
	}
	return &s, nil
}

// AppSettingsUpdate is a partial payload; nil fields are left unchanged.
type AppSettingsUpdate struct {
	PasswordHash        *string
	GoogleDriveToken    *string
	GoogleDriveFolderID *string
	LastSyncDate        *time.Time
}

// UpsertAppSettings inserts or partially updates the user's single settings
// row. UNIQUE(user_id) makes the upsert atomic against concurrent writers.
func (r *Repository) UpsertAppSettings(ctx context.Context, userID int64, upd AppSettingsUpdate) (core.AppSettings, error) {
	if err := r.ready(); err != nil {
		return core.AppSettings{}, err
	}
	now := time.Now().UTC()

	insertCols := []string{"user_id", "created_at", "updated_at"}
	insertVals := []string{"?", "?", "?"}
	args := []any{userID, now, now}
	set := []string{"updated_at = excluded.updated_at"}

	if upd.PasswordHash != nil {
		insertCols = append(insertCols, "password_hash")
		insertVals = append(insertVals, "?")
		args = append(args, *upd.PasswordHash)
		set = append(set, "password_hash = excluded.password_hash")
	}
	if upd.GoogleDriveToken != nil {
		insertCols = append(insertCols, "google_drive_token")
		insertVals = append(insertVals, "?")
		args = append(args, *upd.GoogleDriveToken)
		set = append(set, "google_drive_token = excluded.google_drive_token")
	}
	if upd.GoogleDriveFolderID != nil {
		insertCols = append(insertCols, "google_drive_folder_id")
		insertVals = append(insertVals, "?")
		args = append(args, *upd.GoogleDriveFolderID)
		set = append(set, "google_drive_folder_id = excluded.google_drive_folder_id")
	}
	if upd.LastSyncDate != nil {
		insertCols = append(insertCols, "last_sync_date")
		insertVals = append(insertVals, "?")
		args = append(args, upd.LastSyncDate.UTC())
		set = append(set, "last_sync_date = excluded.last_sync_date")
	}

	query := `INSERT INTO app_settings (` + strings.Join(insertCols, ", ") + `)
		VALUES (` + strings.Join(insertVals, ", ") + `)
		ON CONFLICT(user_id) DO UPDATE SET ` + strings.Join(set, ", ")
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return core.AppSettings{}, fmt.Errorf("upsert app settings: %w", err)
	}

	s, err := r.GetAppSettings(ctx, userID)
	if err != nil {
		return core.AppSettings{}, err
	}
	if s == nil {
		return core.AppSettings{}, fmt.Errorf("upsert app settings: row missing after upsert")
	}
	return *s, nil
}

// ListBackupUsers returns settings rows that have a Google Drive token, for
// the backup worker.
func (r *Repository) ListBackupUsers(ctx context.Context) ([]core.AppSettings, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+settingsColumns+` FROM app_settings WHERE google_drive_token != ''`)
	if err != nil {
		return nil, fmt.Errorf("list backup users: %w", err)
	}
	defer rows.Close()

	var out []core.AppSettings
	for rows.Next() {
		s, err := scanSettings(rows)
		if err != nil {
			return nil, fmt.Errorf("scan app settings: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate app settings: %w", err)
	}
	return out, nil
}

// UserExport is a full snapshot of one user's data, rendered to JSON by the
// backup worker.
type UserExport struct {
	User                  core.User                   `json:"user"`
	Transactions          []core.Transaction          `json:"transactions"`
	Budgets               []core.Budget               `json:"budgets"`
	RecurringTransactions []core.RecurringTransaction `json:"recurringTransactions"`
	Categories            []core.Category             `json:"categories"`
	ExportedAt            time.Time                   `json:"exportedAt"`
}

func (r *Repository) ExportUserData(ctx context.Context, userID int64) (UserExport, error) {
	if err := r.ready(); err != nil {
		return UserExport{}, err
	}
	var export UserExport
	err := r.db.QueryRowContext(ctx, `
		SELECT id, open_id, name, email, login_method, role, created_at, updated_at, last_signed_in
		FROM users WHERE id = ?`, userID).
		Scan(&export.User.ID, &export.User.OpenID, &export.User.Name, &export.User.Email,
			&export.User.LoginMethod, &export.User.Role, &export.User.CreatedAt,
			&export.User.UpdatedAt, &export.User.LastSignedIn)
	if err == sql.ErrNoRows {
		return UserExport{}, core.ErrNotFound
	}
	if err != nil {
		return UserExport{}, fmt.Errorf("export user: %w", err)
	}

	if export.Transactions, err = r.ListAllTransactions(ctx, userID); err != nil {
		return UserExport{}, err
	}
	if export.Budgets, err = r.listBudgets(ctx, userID); err != nil {
		return UserExport{}, err
	}
	if export.RecurringTransactions, err = r.listRecurring(ctx, `user_id = ?`, userID); err != nil {
		return UserExport{}, err
	}
	for _, t := range []core.TransactionType{core.Expense, core.Income} {
		cats, err := r.ListCategoriesByType(ctx, userID, t)
		if err != nil {
			return UserExport{}, err
		}
		export.Categories = append(export.Categories, cats...)
	}
	export.ExportedAt = time.Now().UTC()
	return export, nil
}

func (r *Repository) listBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, month, amount_cents, created_at, updated_at
		FROM budgets WHERE user_id = ? ORDER BY month DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.UserID, &b.Month, &b.Amount.Cents, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}
