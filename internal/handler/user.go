package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shelfmark/shelfmark/internal/handler/dto"
	"github.com/shelfmark/shelfmark/internal/service"
)

// UserHandler handles HTTP requests for registration and login.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /users/users/.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "username, email and password are required")
		return
	}

	user, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_registered",
		"user_id", user.ID,
		"username", user.Username,
	)

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Token handles POST /users/token. The body is form-encoded in the OAuth2
// password-flow shape: username and password fields.
func (h *UserHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid form body")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	token, err := h.svc.Authenticate(r.Context(), username, password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("token_issued", "username", username)

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// handleServiceError maps service errors to HTTP responses.
func (h *UserHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmailRegistered):
		writeError(w, http.StatusBadRequest, "EMAIL_REGISTERED", "Email already registered")
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, "USERNAME_TAKEN", "Username already taken")
	case errors.Is(err, service.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect username or password")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
