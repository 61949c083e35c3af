package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shelfmark/shelfmark/internal/auth"
	"github.com/shelfmark/shelfmark/internal/handler/dto"
	"github.com/shelfmark/shelfmark/internal/model"
	"github.com/shelfmark/shelfmark/internal/service"
)

// BookHandler handles HTTP requests for book operations. All routes sit
// behind the auth middleware; the acting user comes from the request context
// and is applied to every service call.
type BookHandler struct {
	svc    *service.BookService
	logger *slog.Logger
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(svc *service.BookService, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /books/.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	var req dto.CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	book, err := h.svc.Create(r.Context(), identity.UserID, req.Title, model.BookStatus(req.Status))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("book_created",
		"book_id", book.ID,
		"user_id", identity.UserID,
	)

	writeJSON(w, http.StatusOK, dto.ToBookResponse(book))
}

// List handles GET /books/?skip&limit.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())
	query := r.URL.Query()

	skip := 0
	if s := query.Get("skip"); s != "" {
		if parsed, err := strconv.Atoi(s); err == nil {
			skip = parsed
		}
	}

	limit := service.DefaultListLimit
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	books, err := h.svc.List(r.Context(), identity.UserID, skip, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBookListResponse(books))
}

// Get handles GET /books/{id}.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	id, ok := h.bookID(w, r)
	if !ok {
		return
	}

	book, err := h.svc.Get(r.Context(), id, identity.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBookResponse(book))
}

// Update handles PUT /books/{id}.
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	id, ok := h.bookID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	book, err := h.svc.Update(r.Context(), id, identity.UserID, req.Title, model.BookStatus(req.Status))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("book_updated",
		"book_id", book.ID,
		"user_id", identity.UserID,
	)

	writeJSON(w, http.StatusOK, dto.ToBookResponse(book))
}

// Delete handles DELETE /books/{id}. The deleted snapshot is returned.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	id, ok := h.bookID(w, r)
	if !ok {
		return
	}

	book, err := h.svc.Delete(r.Context(), id, identity.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("book_deleted",
		"book_id", book.ID,
		"user_id", identity.UserID,
	)

	writeJSON(w, http.StatusOK, dto.ToBookResponse(book))
}

// bookID parses the {id} URL parameter. A non-numeric ID can never match a
// row, so it gets the same 404 as a missing book.
func (h *BookHandler) bookID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "BOOK_NOT_FOUND", "Book not found")
		return 0, false
	}
	return id, true
}

// handleServiceError maps service errors to HTTP responses.
func (h *BookHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrBookNotFound):
		writeError(w, http.StatusNotFound, "BOOK_NOT_FOUND", "Book not found")
	case errors.Is(err, service.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Status must be read or to_read")
	case errors.Is(err, service.ErrMissingTitle):
		writeError(w, http.StatusBadRequest, "MISSING_TITLE", "Title is required")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
