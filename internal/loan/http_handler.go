package loan

import (
	"errors"
	"net/http"

	"librarydesk/internal/httpx"
	"librarydesk/internal/identity"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type createRequest struct {
	BookID string `json:"book_id" validate:"required"`
}

// Create handles POST /v1/requests
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return
	}
	if details := httpx.ValidateStruct(body); details != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", details)
		return
	}

	req, err := h.service.Create(r.Context(), httpx.PrincipalFrom(r), body.BookID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, req)
}

// Approve handles POST /v1/requests/{id}/approve
func (h *HTTPHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.service.Approve(r.Context(), httpx.PrincipalFrom(r), r.PathValue("id")))
}

// Reject handles POST /v1/requests/{id}/reject
func (h *HTTPHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.service.Reject(r.Context(), httpx.PrincipalFrom(r), r.PathValue("id")))
}

// MarkReturned handles POST /v1/requests/{id}/return
func (h *HTTPHandler) MarkReturned(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.service.MarkReturned(r.Context(), httpx.PrincipalFrom(r), r.PathValue("id")))
}

func (h *HTTPHandler) respond(w http.ResponseWriter, r *http.Request) func(Request, error) {
	return func(req Request, err error) {
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpx.JSONSuccess(w, r, req, nil)
	}
}

// ListMine handles GET /v1/me/requests
func (h *HTTPHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.service.ListMine(r.Context(), httpx.PrincipalFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, reqs, map[string]any{"total": len(reqs)})
}

// ListAll handles GET /v1/requests
func (h *HTTPHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.service.ListAll(r.Context(), httpx.PrincipalFrom(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, reqs, map[string]any{"total": len(reqs)})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, identity.ErrUnauthorized):
		httpx.AuthError(w, r)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Request not found", nil)
	case errors.Is(err, ErrBookNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrUnavailable):
		httpx.JSONError(w, r, http.StatusConflict, "UNAVAILABLE", "No copies of this book are available", nil)
	case errors.Is(err, ErrDuplicateActiveRequest):
		httpx.JSONError(w, r, http.StatusConflict, "DUPLICATE_ACTIVE_REQUEST", "You already have an active request for this book", nil)
	case errors.Is(err, ErrInvalidTransition):
		httpx.JSONError(w, r, http.StatusConflict, "INVALID_TRANSITION", err.Error(), nil)
	default:
		httpx.InternalError(w, r, err)
	}
}
