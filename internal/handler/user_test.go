package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/shelfmark/shelfmark/internal/handler/dto"
)

func registerUser(t *testing.T, router http.Handler, username, email, password string) *httptest.ResponseRecorder {
	t.Helper()

	body := `{"username":"` + username + `","email":"` + email + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/users/users/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func loginUser(t *testing.T, router http.Handler, username, password string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/users/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// obtainToken registers a user and logs them in, returning a bearer token.
func obtainToken(t *testing.T, router http.Handler, username, email, password string) string {
	t.Helper()

	if rec := registerUser(t, router, username, email, password); rec.Code != http.StatusOK {
		t.Fatalf("registration failed with %d: %s", rec.Code, rec.Body.String())
	}

	rec := loginUser(t, router, username, password)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", rec.Code, rec.Body.String())
	}

	var token dto.TokenResponse
	decodeJSON(t, rec.Body, &token)
	if token.AccessToken == "" {
		t.Fatal("expected non-empty access token")
	}
	return token.AccessToken
}

func TestUserHandler_Register(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := registerUser(t, router, "alice", "alice@example.com", "wonderland")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	raw := rec.Body.String()
	if strings.Contains(raw, "password") || strings.Contains(raw, "wonderland") {
		t.Errorf("response must not leak the password or its hash: %s", raw)
	}

	var user dto.UserResponse
	decodeJSON(t, strings.NewReader(raw), &user)

	if user.ID != 1 {
		t.Errorf("first user should get ID 1, got %d", user.ID)
	}
	if user.Username != "alice" || user.Email != "alice@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.CreatedAt.IsZero() {
		t.Error("expected populated created_at")
	}
}

func TestUserHandler_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	if rec := registerUser(t, router, "alice", "alice@example.com", "pw"); rec.Code != http.StatusOK {
		t.Fatalf("first registration failed: %d", rec.Code)
	}

	rec := registerUser(t, router, "bob", "alice@example.com", "pw")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", rec.Code)
	}

	var errResp dto.ErrorResponse
	decodeJSON(t, rec.Body, &errResp)
	if errResp.Code != "EMAIL_REGISTERED" {
		t.Errorf("expected EMAIL_REGISTERED, got %s", errResp.Code)
	}
}

func TestUserHandler_Register_DuplicateUsername(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	if rec := registerUser(t, router, "alice", "alice@example.com", "pw"); rec.Code != http.StatusOK {
		t.Fatalf("first registration failed: %d", rec.Code)
	}

	rec := registerUser(t, router, "alice", "other@example.com", "pw")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate username, got %d", rec.Code)
	}

	var errResp dto.ErrorResponse
	decodeJSON(t, rec.Body, &errResp)
	if errResp.Code != "USERNAME_TAKEN" {
		t.Errorf("expected USERNAME_TAKEN, got %s", errResp.Code)
	}
}

func TestUserHandler_Register_MissingFields(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"blank username", `{"username":"  ","email":"a@x.com","password":"pw"}`},
		{"no password", `{"username":"alice","email":"a@x.com"}`},
		{"invalid json", `{"username":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/users/users/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestUserHandler_Token(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	if rec := registerUser(t, router, "alice", "alice@example.com", "wonderland"); rec.Code != http.StatusOK {
		t.Fatalf("registration failed: %d", rec.Code)
	}

	rec := loginUser(t, router, "alice", "wonderland")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var token dto.TokenResponse
	decodeJSON(t, rec.Body, &token)
	if token.AccessToken == "" {
		t.Error("expected non-empty access token")
	}
	if token.TokenType != "bearer" {
		t.Errorf("expected token_type bearer, got %s", token.TokenType)
	}
}

func TestUserHandler_Token_BadCredentials(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	if rec := registerUser(t, router, "alice", "alice@example.com", "wonderland"); rec.Code != http.StatusOK {
		t.Fatalf("registration failed: %d", rec.Code)
	}

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "looking-glass"},
		{"unknown user", "bob", "wonderland"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := loginUser(t, router, tt.username, tt.password)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
			if rec.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Error("expected WWW-Authenticate: Bearer header")
			}

			var errResp dto.ErrorResponse
			decodeJSON(t, rec.Body, &errResp)
			if errResp.Error != "Incorrect username or password" {
				t.Errorf("unexpected error message: %s", errResp.Error)
			}
		})
	}
}
