package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ahmedsps3/personal-budget-app/internal/auth"
	"github.com/ahmedsps3/personal-budget-app/internal/services"
	"github.com/ahmedsps3/personal-budget-app/internal/storage"
)

const testPassword = "2599423"

func newTestServer(t *testing.T) *Server {
	t.Helper()

	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "budget.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	sessions := auth.NewSessionManager("test-session-secret", time.Hour, testPassword, "")
	service := services.NewBudgetService(repo, nil)
	s := NewServer(":0", repo, service, sessions)
	t.Cleanup(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
	})
	return s
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func doRPC(t *testing.T, s *Server, path, body string, cookies []*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope from %s (status %d, body %q): %v", path, rec.Code, rec.Body.String(), err)
	}
	return rec, env
}

func login(t *testing.T, s *Server, name string) []*http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/rpc/auth.login",
		strings.NewReader(`{"password":"`+testPassword+`","name":"`+name+`"}`))
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login did not set a session cookie")
	}
	return cookies
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t)

	rec, env := doRPC(t, s, "/rpc/auth.login", `{"password":"wrong"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if env.Error == nil || env.Error.Code != codeUnauthorized {
		t.Fatalf("error = %+v, want code %q", env.Error, codeUnauthorized)
	}
}

func TestLoginIssuesSession(t *testing.T) {
	s := newTestServer(t)
	cookies := login(t, s, "Ahmad")

	_, env := doRPC(t, s, "/rpc/auth.me", ``, cookies)
	if env.Error != nil {
		t.Fatalf("auth.me error: %+v", env.Error)
	}

	var me userDTO
	if err := json.Unmarshal(env.Result, &me); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if me.OpenID != "local:ahmad" || me.Name != "Ahmad" {
		t.Fatalf("unexpected user: %+v", me)
	}
}

func TestProtectedProcedureWithoutSession(t *testing.T) {
	s := newTestServer(t)

	rec, env := doRPC(t, s, "/rpc/transactions.getAll", ``, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if env.Error == nil || env.Error.Code != codeUnauthorized {
		t.Fatalf("error = %+v", env.Error)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	s := newTestServer(t)
	cookies := login(t, s, "Ahmad")

	// Create an expense of 45.50 in the food category.
	_, env := doRPC(t, s, "/rpc/transactions.create",
		`{"type":"expense","category":"طعام","amount":45.50,"description":"غداء","transactionDate":"2024-05-12"}`,
		cookies)
	if env.Error != nil {
		t.Fatalf("create error: %+v", env.Error)
	}
	var created transactionDTO
	if err := json.Unmarshal(env.Result, &created); err != nil {
		t.Fatalf("decode transaction: %v", err)
	}
	if created.Amount != 45.5 || created.Category != "طعام" {
		t.Fatalf("unexpected transaction: %+v", created)
	}

	// Month listing returns it (twice to exercise the cache path).
	for i := 0; i < 2; i++ {
		_, env = doRPC(t, s, "/rpc/transactions.getByMonth", `{"year":2024,"month":5}`, cookies)
		if env.Error != nil {
			t.Fatalf("getByMonth error: %+v", env.Error)
		}
		var listed []transactionDTO
		if err := json.Unmarshal(env.Result, &listed); err != nil {
			t.Fatalf("decode list: %v", err)
		}
		if len(listed) != 1 || listed[0].Amount != 45.5 {
			t.Fatalf("iteration %d: unexpected listing: %+v", i, listed)
		}
	}

	// Update the amount; the cached listing must be refreshed.
	_, env = doRPC(t, s, "/rpc/transactions.update",
		`{"id":`+jsonID(created.ID)+`,"amount":50.00}`, cookies)
	if env.Error != nil {
		t.Fatalf("update error: %+v", env.Error)
	}

	_, env = doRPC(t, s, "/rpc/transactions.getByMonth", `{"year":2024,"month":5}`, cookies)
	var listed []transactionDTO
	if err := json.Unmarshal(env.Result, &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].Amount != 50.0 {
		t.Fatalf("stale listing after update: %+v", listed)
	}

	// Delete and verify it is gone.
	_, env = doRPC(t, s, "/rpc/transactions.delete", `{"id":`+jsonID(created.ID)+`}`, cookies)
	if env.Error != nil {
		t.Fatalf("delete error: %+v", env.Error)
	}

	_, env = doRPC(t, s, "/rpc/transactions.getAll", ``, cookies)
	if err := json.Unmarshal(env.Result, &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected empty listing, got %+v", listed)
	}
}

func TestTransactionCreateValidation(t *testing.T) {
	s := newTestServer(t)
	cookies := login(t, s, "Ahmad")

	tests := []struct {
		name string
		body string
	}{
		{"zero amount", `{"type":"expense","category":"طعام","amount":0,"transactionDate":"2024-05-12"}`},
		{"negative amount", `{"type":"expense","category":"طعام","amount":-3,"transactionDate":"2024-05-12"}`},
		{"bad type", `{"type":"transfer","category":"طعام","amount":10,"transactionDate":"2024-05-12"}`},
		{"empty category", `{"type":"expense","category":"","amount":10,"transactionDate":"2024-05-12"}`},
		{"bad date", `{"type":"expense","category":"طعام","amount":10,"transactionDate":"12/05/2024"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doRPC(t, s, "/rpc/transactions.create", tt.body, cookies)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if env.Error == nil || env.Error.Code != codeValidation {
				t.Fatalf("error = %+v, want code %q", env.Error, codeValidation)
			}
		})
	}
}

func TestUserScopingAcrossSessions(t *testing.T) {
	s := newTestServer(t)
	ahmad := login(t, s, "Ahmad")
	sara := login(t, s, "Sara")

	_, env := doRPC(t, s, "/rpc/transactions.create",
		`{"type":"income","category":"راتب","amount":5000,"transactionDate":"2024-05-01"}`, ahmad)
	if env.Error != nil {
		t.Fatalf("create error: %+v", env.Error)
	}

	_, env = doRPC(t, s, "/rpc/transactions.getAll", ``, sara)
	var listed []transactionDTO
	if err := json.Unmarshal(env.Result, &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected no transactions for other profile, got %+v", listed)
	}
}

func TestBudgetOverspend(t *testing.T) {
	s := newTestServer(t)
	cookies := login(t, s, "Ahmad")

	_, env := doRPC(t, s, "/rpc/budget.set", `{"month":"2024-06","amount":2000}`, cookies)
	if env.Error != nil {
		t.Fatalf("budget.set error: %+v", env.Error)
	}

	for _, body := range []string{
		`{"type":"expense","category":"إيجار","amount":1500,"transactionDate":"2024-06-01"}`,
		`{"type":"expense","category":"طعام","amount":600,"transactionDate":"2024-06-15"}`,
	} {
		if _, env = doRPC(t, s, "/rpc/transactions.create", body, cookies); env.Error != nil {
			t.Fatalf("create error: %+v", env.Error)
		}
	}

	_, env = doRPC(t, s, "/rpc/budget.get", `{"month":"2024-06"}`, cookies)
	if env.Error != nil {
		t.Fatalf("budget.get error: %+v", env.Error)
	}
	var budget budgetDTO
	if err := json.Unmarshal(env.Result, &budget); err != nil {
		t.Fatalf("decode budget: %v", err)
	}
	if budget.Spent != 2100 || budget.Remaining != -100 || !budget.OverBudget {
		t.Fatalf("unexpected budget status: %+v", budget)
	}
}

func TestBudgetGetUnsetMonth(t *testing.T) {
	s := newTestServer(t)
	cookies := login(t, s, "Ahmad")

	_, env := doRPC(t, s, "/rpc/budget.get", `{"month":"2030-01"}`, cookies)
	if env.Error != nil {
		t.Fatalf("budget.get error: %+v", env.Error)
	}
	if string(env.Result) != "null" {
		t.Fatalf("result = %s, want null", env.Result)
	}
}

func TestCategoriesMergeDefaultsAndCustom(t *testing.T) {
	s := newTestServer(t)
	cookies := login(t, s, "Ahmad")

	_, env := doRPC(t, s, "/rpc/categories.create",
		`{"name":"قهوة مختصة","type":"expense","icon":"coffee","color":"#6f4e37"}`, cookies)
	if env.Error != nil {
		t.Fatalf("categories.create error: %+v", env.Error)
	}

	_, env = doRPC(t, s, "/rpc/categories.getByType", `{"type":"expense"}`, cookies)
	if env.Error != nil {
		t.Fatalf("categories.getByType error: %+v", env.Error)
	}
	var categories []categoryDTO
	if err := json.Unmarshal(env.Result, &categories); err != nil {
		t.Fatalf("decode categories: %v", err)
	}

	var hasCustom, hasDefault bool
	for _, c := range categories {
		if c.Name == "قهوة مختصة" && c.ID != 0 {
			hasCustom = true
		}
		if c.Name == "طعام" {
			hasDefault = true
		}
	}
	if !hasCustom || !hasDefault {
		t.Fatalf("custom=%v default=%v in %+v", hasCustom, hasDefault, categories)
	}
}

func TestRecurringLifecycle(t *testing.T) {
	s := newTestServer(t)
	cookies := login(t, s, "Ahmad")

	_, env := doRPC(t, s, "/rpc/recurringTransactions.create",
		`{"type":"expense","category":"إيجار","amount":1500,"frequency":"monthly","dayOfMonth":1}`, cookies)
	if env.Error != nil {
		t.Fatalf("create error: %+v", env.Error)
	}
	var created recurringDTO
	if err := json.Unmarshal(env.Result, &created); err != nil {
		t.Fatalf("decode recurring: %v", err)
	}
	if !created.IsActive || created.Frequency != "monthly" {
		t.Fatalf("unexpected recurring: %+v", created)
	}

	_, env = doRPC(t, s, "/rpc/recurringTransactions.update",
		`{"id":`+jsonID(created.ID)+`,"isActive":false}`, cookies)
	if env.Error != nil {
		t.Fatalf("update error: %+v", env.Error)
	}

	_, env = doRPC(t, s, "/rpc/recurringTransactions.getAll", ``, cookies)
	var listed []recurringDTO
	if err := json.Unmarshal(env.Result, &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("deactivated template still listed: %+v", listed)
	}
}

func TestSettingsUpdateGoogleDrive(t *testing.T) {
	s := newTestServer(t)
	cookies := login(t, s, "Ahmad")

	_, env := doRPC(t, s, "/rpc/appSettings.get", ``, cookies)
	if env.Error != nil {
		t.Fatalf("appSettings.get error: %+v", env.Error)
	}
	var settings settingsDTO
	if err := json.Unmarshal(env.Result, &settings); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if settings.GoogleDriveConnected {
		t.Fatal("fresh profile should not be connected")
	}

	_, env = doRPC(t, s, "/rpc/appSettings.updateGoogleDrive",
		`{"googleDriveToken":"{\"access_token\":\"tok\"}","googleDriveFolderId":"folder-1"}`, cookies)
	if env.Error != nil {
		t.Fatalf("updateGoogleDrive error: %+v", env.Error)
	}
	if err := json.Unmarshal(env.Result, &settings); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if !settings.GoogleDriveConnected || settings.GoogleDriveFolderID != "folder-1" {
		t.Fatalf("unexpected settings: %+v", settings)
	}
	if strings.Contains(string(env.Result), "access_token") {
		t.Fatal("token must not be echoed in the response")
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func jsonID(id int64) string {
	return strconv.FormatInt(id, 10)
}
