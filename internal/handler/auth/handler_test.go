package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	authService "github.com/jagmag/crm-backend/internal/service/auth"
)

func setupRouter(secret, password string) (*chi.Mux, *authService.Service) {
	tokens := authService.New(authService.Config{Secret: secret})
	handler := New(tokens, password)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, tokens
}

func postLogin(r http.Handler, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestLoginSuccessIssuesVerifiableToken(t *testing.T) {
	r, tokens := setupRouter("login-test-secret", "2211")

	resp := postLogin(r, []byte(`{"password":"2211"}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !payload.Success || payload.Token == "" {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	id, err := tokens.Verify(payload.Token)
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if id.Subject != "crm-user" {
		t.Fatalf("expected subject crm-user, got %q", id.Subject)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	r, _ := setupRouter("login-test-secret", "2211")

	resp := postLogin(r, []byte(`{"password":"1122"}`))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestLoginMissingPassword(t *testing.T) {
	r, _ := setupRouter("login-test-secret", "2211")

	resp := postLogin(r, []byte(`{}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestLoginInvalidJSON(t *testing.T) {
	r, _ := setupRouter("login-test-secret", "2211")

	resp := postLogin(r, []byte(`{"password":`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestLoginMissingSecretDoesNotLeakDetail(t *testing.T) {
	r, _ := setupRouter("", "2211")

	resp := postLogin(r, []byte(`{"password":"2211"}`))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if bytes.Contains(resp.Body.Bytes(), []byte("secret")) {
		t.Fatalf("response leaks configuration detail: %s", resp.Body.String())
	}
}
