package accessrequest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/clinic-access/internal"
	"github.com/frahmantamala/clinic-access/internal/transport"
	"github.com/frahmantamala/clinic-access/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(requesterID int64, dto CreateRequestDTO) (*Request, error)
	Review(ctx context.Context, requestID, reviewerID int64, dto ReviewRequestDTO) (*Request, error)
	List(status *Status, limit, offset int) ([]*Request, error)
	GetByID(id int64) (*Request, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// CreateRequest handles POST /permission-requests
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	requesterID := internal.UserIDFromContext(r.Context())
	if requesterID == 0 {
		h.Logger.Error("CreateRequest: no identity in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateRequest: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.Create(requesterID, dto)
	if err != nil {
		h.Logger.Error("CreateRequest: service error", "error", err, "requester_id", requesterID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateRequest: request created",
		"request_id", req.ID,
		"requester_id", requesterID,
		"permission", req.Permission)

	h.WriteJSON(w, http.StatusCreated, req)
}

// ListRequests handles GET /permission-requests
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	var status *Status
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		parsed, err := ParseStatus(statusStr)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		status = &parsed
	}

	requests, err := h.Service.List(status, limit, offset)
	if err != nil {
		h.Logger.Error("ListRequests: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetRequest handles GET /permission-requests/{id}
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := h.requestIDParam(w, r)
	if !ok {
		return
	}

	req, err := h.Service.GetByID(requestID)
	if err != nil {
		h.Logger.Error("GetRequest: service error", "error", err, "request_id", requestID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

// ReviewRequest handles PATCH /permission-requests/{id}/review
func (h *Handler) ReviewRequest(w http.ResponseWriter, r *http.Request) {
	reviewerID := internal.UserIDFromContext(r.Context())
	if reviewerID == 0 {
		h.Logger.Error("ReviewRequest: no identity in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requestID, ok := h.requestIDParam(w, r)
	if !ok {
		return
	}

	var dto ReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ReviewRequest: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := h.Service.Review(r.Context(), requestID, reviewerID, dto)
	if err != nil {
		h.Logger.Error("ReviewRequest: service error",
			"error", err,
			"request_id", requestID,
			"reviewer_id", reviewerID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("ReviewRequest: request reviewed",
		"request_id", requestID,
		"reviewer_id", reviewerID,
		"status", req.Status)

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) requestIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.Logger.Error("invalid request ID", "id", idStr)
		h.WriteError(w, http.StatusBadRequest, "invalid request ID")
		return 0, false
	}
	return id, true
}
