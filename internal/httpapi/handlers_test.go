package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cajapos/backend/internal/cache"
	"cajapos/backend/internal/events"
	"cajapos/backend/internal/service"
	"cajapos/backend/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store, real AuthManager and
// real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded()
	svc := service.New(repo, cache.NoopCounterCache{}, events.Noop{}, service.Options{})
	auth := NewAuthManager("test-secret-key", time.Hour, "481529", repo)

	return New(svc, auth, "*")
}

// doJSON performs an authenticated JSON request against the API and returns
// the recorder. Empty token or csrf skips the respective header.
func doJSON(t *testing.T, api *API, method, path, token, csrf string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if csrf != "" {
		req.Header.Set("X-CSRF-Token", csrf)
	}
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_Success(t *testing.T) {
	api := newTestAPI(t)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/login", "", "", map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["access_token"] == "" || body["access_token"] == nil {
		t.Fatalf("expected access_token in response, got %v", body)
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/auth/login", "", "", map[string]string{
		"username": "admin",
		"password": "wrongpassword",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleRegister_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cash-register", nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleRegister_MutationRequiresCSRF(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/cash-register/open", token, "", map[string]any{
		"opening_amount": 100,
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without CSRF token, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleRegister_OpenMoveClose(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/cash-register/open", token, csrf, map[string]any{
		"opening_amount": 100.00,
		"notes":          "apertura de prueba",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("open expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var opened struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&opened); err != nil {
		t.Fatalf("decode open response: %v", err)
	}
	if opened.ID == "" {
		t.Fatalf("expected session id in open response")
	}

	rec = doJSON(t, api, http.MethodPost, "/api/v1/cash-register/movement", token, csrf, map[string]any{
		"session_id": opened.ID,
		"type":       "income",
		"amount":     50.00,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("movement expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, api, http.MethodPost, "/api/v1/cash-register/close", token, csrf, map[string]any{
		"session_id": opened.ID,
		"denominations": []map[string]any{
			{"kind": "bill", "value": 100.00, "qty": 1},
			{"kind": "bill", "value": 50.00, "qty": 1},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("close expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var closed struct {
		ExpectedAmount json.Number `json:"expected_amount"`
		CountedAmount  json.Number `json:"counted_amount"`
		Difference     json.Number `json:"difference"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&closed); err != nil {
		t.Fatalf("decode close response: %v", err)
	}
	if closed.ExpectedAmount.String() != "150" {
		t.Fatalf("expected 150, got %s", closed.ExpectedAmount)
	}
	if closed.Difference.String() != "0" {
		t.Fatalf("expected zero difference, got %s", closed.Difference)
	}
}

func TestHandleRegister_DoubleOpenReturns400(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/cash-register/open", token, csrf, map[string]any{
		"opening_amount": 100.00,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first open expected 201, got %d", rec.Code)
	}

	rec = doJSON(t, api, http.MethodPost, "/api/v1/cash-register/open", token, csrf, map[string]any{
		"opening_amount": 50.00,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second open expected 400, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleRegister_ActiveReportsState(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/v1/cash-register/active/admin", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("active expected 200, got %d", rec.Code)
	}
	var inactive struct {
		HasActiveRegister bool `json:"hasActiveRegister"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&inactive); err != nil {
		t.Fatalf("decode active response: %v", err)
	}
	if inactive.HasActiveRegister {
		t.Fatalf("expected no active register before open")
	}

	rec = doJSON(t, api, http.MethodPost, "/api/v1/cash-register/open", token, csrf, map[string]any{
		"opening_amount": 75.00,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("open expected 201, got %d", rec.Code)
	}

	rec = doJSON(t, api, http.MethodGet, "/api/v1/cash-register/active/admin", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("active expected 200, got %d", rec.Code)
	}
	var active struct {
		HasActiveRegister bool `json:"hasActiveRegister"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&active); err != nil {
		t.Fatalf("decode active response: %v", err)
	}
	if !active.HasActiveRegister {
		t.Fatalf("expected active register after open")
	}
}

func TestHandleMovement_ManagerPINAuthorizesExpense(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/cash-register/open", token, csrf, map[string]any{
		"opening_amount": 500.00,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("open expected 201, got %d", rec.Code)
	}
	var opened struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&opened); err != nil {
		t.Fatalf("decode open response: %v", err)
	}

	// Large expense without a PIN is rejected by the service.
	rec = doJSON(t, api, http.MethodPost, "/api/v1/cash-register/movement", token, csrf, map[string]any{
		"session_id": opened.ID,
		"type":       "expense",
		"amount":     200.00,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unauthorized expense expected 400, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	// Wrong PIN is rejected at the handler.
	rec = doJSON(t, api, http.MethodPost, "/api/v1/cash-register/movement", token, csrf, map[string]any{
		"session_id":  opened.ID,
		"type":        "expense",
		"amount":      200.00,
		"manager_pin": "000000",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("wrong pin expected 403, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	// Valid PIN authorizes the expense.
	rec = doJSON(t, api, http.MethodPost, "/api/v1/cash-register/movement", token, csrf, map[string]any{
		"session_id":  opened.ID,
		"type":        "expense",
		"amount":      200.00,
		"manager_pin": "481529",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("authorized expense expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleMovement_ClientAuthorizedByIsIgnored(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/cash-register/open", token, csrf, map[string]any{
		"opening_amount": 500.00,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("open expected 201, got %d", rec.Code)
	}
	var opened struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&opened); err != nil {
		t.Fatalf("decode open response: %v", err)
	}

	// Claiming authorization in the payload without a PIN must not clear the
	// expense ceiling.
	rec = doJSON(t, api, http.MethodPost, "/api/v1/cash-register/movement", token, csrf, map[string]any{
		"session_id":    opened.ID,
		"type":          "expense",
		"amount":        200.00,
		"authorized_by": "gerente",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("forged authorized_by expected 400, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	// Small expenses need no authorization, and any forged mark is dropped
	// from the stored movement.
	rec = doJSON(t, api, http.MethodPost, "/api/v1/cash-register/movement", token, csrf, map[string]any{
		"session_id":    opened.ID,
		"type":          "expense",
		"amount":        10.00,
		"authorized_by": "gerente",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("small expense expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var created struct {
		Movement struct {
			AuthorizedBy string `json:"authorized_by"`
		} `json:"movement"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode movement response: %v", err)
	}
	if created.Movement.AuthorizedBy != "" {
		t.Fatalf("expected forged authorized_by to be dropped, got %q", created.Movement.AuthorizedBy)
	}
}

func TestHandleSales_InsufficientStockReturns409(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/sales", token, csrf, map[string]any{
		"payment_method": "cash",
		"items": []map[string]any{
			{"product_id": "prd-cuaderno-01", "qty": 9999},
		},
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestHandleProducts_WithValidToken(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/v1/products", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["products"] == nil {
		t.Fatalf("expected products key in response, got %v", body)
	}
}

func TestHandlePurchases_ForbiddenForCashier(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsCashier(t, api)

	rec := doJSON(t, api, http.MethodGet, "/api/v1/purchases", token, "", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cashier on purchases, got %d", rec.Code)
	}
}

func TestHandleNotifications_UnreadCount(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsAdmin(t, api)
	csrf := fetchCSRFToken(t, api)

	rec := doJSON(t, api, http.MethodPost, "/api/v1/cash-register/open", token, csrf, map[string]any{
		"opening_amount": 40.00,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("open expected 201, got %d", rec.Code)
	}

	rec = doJSON(t, api, http.MethodGet, "/api/v1/notifications/unread-count", token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Unread int64 `json:"unread"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Unread < 1 {
		t.Fatalf("expected at least one unread notification, got %d", body.Unread)
	}
}

func loginAsCashier(t *testing.T, api *API) string {
	t.Helper()
	return loginAs(t, api, "cajero", "cajero123")
}
