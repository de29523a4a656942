// AngelaMos | 2026
// handler_test.go

package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/debtbook/internal/identity"
	"github.com/carterperez-dev/debtbook/internal/middleware"
)

type fakeRoleAuthority struct {
	roles map[string]identity.Role
}

func (f *fakeRoleAuthority) RoleOf(
	_ context.Context,
	userID string,
) identity.Role {
	if role, ok := f.roles[userID]; ok {
		return role
	}
	return identity.RoleViewer
}

// asUser stands in for the real authenticator and injects the caller's
// identity the way the token middleware would.
func asUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newTestRouter(t *testing.T, userID string) (*chi.Mux, *Service) {
	t.Helper()

	svc, _ := newTestService()
	authority := &fakeRoleAuthority{roles: map[string]identity.Role{
		"u-viewer": identity.RoleViewer,
		"u-staff":  identity.RoleStaff,
		"u-admin":  identity.RoleAdmin,
	}}

	handler := NewHandler(svc, authority)
	router := chi.NewRouter()
	handler.RegisterRoutes(router, asUser(userID))

	return router, svc
}

func doJSON(
	t *testing.T,
	router *chi.Mux,
	method, path, body string,
) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterDebtorEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, "u-staff")

	rec := doJSON(t, router, http.MethodPost, "/debtors",
		`{"name": "John Smith", "phone_number": "555-0101"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (%s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Data.ID == "" {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
	if body.Data.Name != "John Smith" {
		t.Errorf("name: got %q", body.Data.Name)
	}
}

func TestRegisterDebtorForbiddenForViewer(t *testing.T) {
	router, _ := newTestRouter(t, "u-viewer")

	rec := doJSON(t, router, http.MethodPost, "/debtors",
		`{"name": "John Smith", "phone_number": "555-0101"}`)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want 403", rec.Code)
	}

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "FORBIDDEN" {
		t.Errorf("code: got %q", body.Error.Code)
	}
	if !strings.Contains(body.Error.Message, "staff") {
		t.Errorf("message should name the required role: %q", body.Error.Message)
	}
}

func TestSearchEndpointRequiresQuery(t *testing.T) {
	router, _ := newTestRouter(t, "u-viewer")

	rec := doJSON(t, router, http.MethodGet, "/debtors/search", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestSearchEndpointMiss(t *testing.T) {
	router, _ := newTestRouter(t, "u-viewer")

	rec := doJSON(t, router, http.MethodGet, "/debtors/search?q=nobody", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Data struct {
			Found  bool `json:"found"`
			Result any  `json:"result"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Found {
		t.Error("miss should report found=false")
	}
	if body.Data.Result != nil {
		t.Error("miss should omit result")
	}
}

func TestRecordPaymentEndpointOverpayment(t *testing.T) {
	router, svc := newTestRouter(t, "u-staff")

	debtorID := seedDebtor(t, svc, "John Smith", "555-0101")
	seedDebt(t, svc, debtorID, "45.50", "groceries")

	rec := doJSON(t, router, http.MethodPost,
		"/debtors/"+debtorID+"/payments",
		`{"amount": "100.00"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (%s)", rec.Code, rec.Body.String())
	}

	var body struct {
		Data struct {
			OverpaymentWarning bool `json:"overpayment_warning"`
			Balance            struct {
				Balance string `json:"balance"`
			} `json:"balance"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Data.OverpaymentWarning {
		t.Error("expected overpayment warning")
	}
	if body.Data.Balance.Balance != "-54.5" {
		t.Errorf("balance: got %q, want -54.5", body.Data.Balance.Balance)
	}
}

func TestRecordDebtEndpointRejectsBadAmount(t *testing.T) {
	router, svc := newTestRouter(t, "u-staff")
	debtorID := seedDebtor(t, svc, "John Smith", "555-0101")

	tests := []struct {
		name string
		body string
	}{
		{"zero amount", `{"amount": "0", "reason": "groceries"}`},
		{"negative amount", `{"amount": "-5.00", "reason": "groceries"}`},
		{"too many decimals", `{"amount": "5.001", "reason": "groceries"}`},
		{"blank reason", `{"amount": "5.00", "reason": "   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost,
				"/debtors/"+debtorID+"/debts", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400 (%s)",
					rec.Code, rec.Body.String())
			}
		})
	}
}

func TestDeleteDebtorEndpoint(t *testing.T) {
	adminRouter, svc := newTestRouter(t, "u-admin")
	debtorID := seedDebtor(t, svc, "John Smith", "555-0101")

	rec := doJSON(t, adminRouter, http.MethodDelete, "/debtors/"+debtorID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin delete: got %d, want 204 (%s)",
			rec.Code, rec.Body.String())
	}

	rec = doJSON(t, adminRouter, http.MethodDelete, "/debtors/"+debtorID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("deleting again: got %d, want 404", rec.Code)
	}
}

func TestDeleteDebtorEndpointForbiddenForStaff(t *testing.T) {
	router, svc := newTestRouter(t, "u-staff")
	debtorID := seedDebtor(t, svc, "John Smith", "555-0101")

	rec := doJSON(t, router, http.MethodDelete, "/debtors/"+debtorID, "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rec.Code)
	}
}

func TestGetDebtorEndpointNotFound(t *testing.T) {
	router, _ := newTestRouter(t, "u-viewer")

	rec := doJSON(t, router, http.MethodGet, "/debtors/no-such-id", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}
