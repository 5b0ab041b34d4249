package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/davinrkh/finbook/internal/apperr"
	"github.com/davinrkh/finbook/internal/auth"
	"github.com/davinrkh/finbook/internal/domain/entity"
	"github.com/davinrkh/finbook/internal/report"
)

type stubUserLookup struct {
	users map[int64]*entity.User
}

func (s *stubUserLookup) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return s.users[id], nil
}

type stubAuthService struct {
	loginFn func(ctx context.Context, username, password string) (string, *entity.User, error)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *entity.User, error) {
	return s.loginFn(ctx, username, password)
}

type stubTransactionService struct {
	createErr error
	list      []*entity.Transaction
}

func (s *stubTransactionService) Create(ctx context.Context, actor *entity.User, txn *entity.Transaction) error {
	return s.createErr
}

func (s *stubTransactionService) Get(ctx context.Context, id int64) (*entity.Transaction, error) {
	return nil, apperr.Newf(apperr.KindNotFound, "transaction %d not found", id)
}

func (s *stubTransactionService) List(ctx context.Context) ([]*entity.Transaction, error) {
	return s.list, nil
}

type stubActivityService struct{}

func (stubActivityService) Record(ctx context.Context, e *entity.ActivityLog) {}
func (stubActivityService) List(ctx context.Context, actor *entity.User, limit, offset int) ([]*entity.ActivityLog, error) {
	return nil, nil
}

type nopServerLogger struct{}

func (nopServerLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopServerLogger) Error(msg string, keysAndValues ...interface{}) {}

func newTestServer(t *testing.T, mutate func(*Services)) (*Server, string) {
	t.Helper()

	tokens := auth.NewJWTManager("test-secret", time.Hour)
	admin := &entity.User{ID: 1, Name: "Admin", Username: "admin", Role: entity.RoleAdmin}

	services := Services{
		Tokens:     tokens,
		UserLookup: &stubUserLookup{users: map[int64]*entity.User{1: admin}},
		Activity:   stubActivityService{},
	}
	if mutate != nil {
		mutate(&services)
	}

	server := NewServer(DefaultServerConfig(), services, nopServerLogger{})

	token, err := tokens.Issue(admin.ID, admin.Role)
	if err != nil {
		t.Fatal(err)
	}
	return server, token
}

func doJSON(server *Server, method, path, token string, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	server.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	server, _ := newTestServer(t, nil)

	w := doJSON(server, http.MethodGet, "/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	server, token := newTestServer(t, func(s *Services) {
		s.Transactions = &stubTransactionService{}
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			server.Router().ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestAuthMiddlewareRejectsDeletedAccount(t *testing.T) {
	server, _ := newTestServer(t, func(s *Services) {
		s.Transactions = &stubTransactionService{}
	})

	// Token for a user id the lookup does not know.
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	token, err := tokens.Issue(999, entity.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}

	w := doJSON(server, http.MethodGet, "/api/transactions", token, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	admin := &entity.User{ID: 1, Username: "admin", Role: entity.RoleAdmin}
	server, _ := newTestServer(t, func(s *Services) {
		s.Auth = &stubAuthService{
			loginFn: func(ctx context.Context, username, password string) (string, *entity.User, error) {
				if username == "admin" && password == "correct" {
					return "a-token", admin, nil
				}
				return "", nil, apperr.New(apperr.KindAuthorization, "invalid username or password")
			},
		}
	})

	w := doJSON(server, http.MethodPost, "/api/auth/login", "", `{"username":"admin","password":"correct"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Data.Token != "a-token" {
		t.Errorf("body = %s", w.Body.String())
	}

	w = doJSON(server, http.MethodPost, "/api/auth/login", "", `{"username":"admin","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad credentials status = %d, want 401", w.Code)
	}

	w = doJSON(server, http.MethodPost, "/api/auth/login", "", `{"username":"admin"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing password status = %d, want 400", w.Code)
	}
}

func TestErrorKindStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperr.New(apperr.KindValidation, "bad"), http.StatusBadRequest},
		{"authorization", apperr.New(apperr.KindAuthorization, "nope"), http.StatusForbidden},
		{"conflict", apperr.New(apperr.KindConflict, "raced"), http.StatusConflict},
		{"not found", apperr.New(apperr.KindNotFound, "gone"), http.StatusNotFound},
		{"upstream", apperr.New(apperr.KindUpstream, "db down"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, token := newTestServer(t, func(s *Services) {
				s.Transactions = &stubTransactionService{createErr: tt.err}
			})

			body := `{"date":"2025-03-01","type":"INCOME","category":"Sales","items":[{"name":"x","qty":1,"price":10}]}`
			w := doJSON(server, http.MethodPost, "/api/transactions", token, body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}

			var resp Response
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Success {
				t.Error("success must be false on error")
			}
			if resp.Error == "" {
				t.Error("error message must be present")
			}
		})
	}
}

type fixedTxnRepo struct {
	txns []*entity.Transaction
}

func (r *fixedTxnRepo) Create(ctx context.Context, txn *entity.Transaction) error { return nil }
func (r *fixedTxnRepo) GetByID(ctx context.Context, id int64) (*entity.Transaction, error) {
	return nil, nil
}
func (r *fixedTxnRepo) List(ctx context.Context) ([]*entity.Transaction, error) { return r.txns, nil }

type fixedReimburseRepo struct{}

func (fixedReimburseRepo) Create(ctx context.Context, r *entity.Reimbursement) error { return nil }
func (fixedReimburseRepo) GetByID(ctx context.Context, id int64) (*entity.Reimbursement, error) {
	return nil, nil
}
func (fixedReimburseRepo) List(ctx context.Context) ([]*entity.Reimbursement, error) {
	return nil, nil
}
func (fixedReimburseRepo) ListByRequestor(ctx context.Context, userID int64) ([]*entity.Reimbursement, error) {
	return nil, nil
}
func (fixedReimburseRepo) ListByStatus(ctx context.Context, status entity.ReimbursementStatus) ([]*entity.Reimbursement, error) {
	return nil, nil
}
func (fixedReimburseRepo) Update(ctx context.Context, r *entity.Reimbursement) error { return nil }
func (fixedReimburseRepo) UpdateStatusIf(ctx context.Context, id int64, expected, next entity.ReimbursementStatus, proofRef, reason string) (bool, error) {
	return false, nil
}

func TestReportCSVExport(t *testing.T) {
	txnRepo := &fixedTxnRepo{txns: []*entity.Transaction{{
		Date:       "2025-03-01",
		Type:       entity.TransactionIncome,
		Category:   "Sales",
		GrandTotal: 100000,
	}}}

	server, token := newTestServer(t, func(s *Services) {
		s.Reports = report.NewService(txnRepo, fixedReimburseRepo{}, zap.NewNop())
	})

	w := doJSON(server, http.MethodGet, "/api/reports/export.csv?type=ALL", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %s, want text/csv", ct)
	}
	if !strings.Contains(w.Body.String(), "2025-03-01,INCOME") {
		t.Errorf("csv body missing row: %s", w.Body.String())
	}
}
