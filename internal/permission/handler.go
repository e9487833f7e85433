package permission

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/clinic-access/internal/transport"
	"github.com/frahmantamala/clinic-access/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	EffectivePermissions(userID int64) (*EffectivePermissionsView, error)
	CreateGrant(dto CreateGrantDTO, grantedBy int64) (*Grant, error)
	GrantsFor(userID int64) ([]Grant, error)
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

// GetMyPermissions handles GET /permissions/me
func (h *Handler) GetMyPermissions(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok || principal == nil {
		h.Logger.Error("GetMyPermissions: principal not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	view, err := h.Service.EffectivePermissions(principal.UserID)
	if err != nil {
		h.Logger.Error("GetMyPermissions: service error", "error", err, "user_id", principal.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, view)
}

// GetCatalog handles GET /permissions/catalog
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, CatalogView{
		Positions:   Positions,
		Permissions: Permissions,
	})
}

// CreateGrant handles POST /permissions/grants
func (h *Handler) CreateGrant(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok || principal == nil {
		h.Logger.Error("CreateGrant: principal not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateGrantDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateGrant: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	grant, err := h.Service.CreateGrant(dto, principal.UserID)
	if err != nil {
		h.Logger.Error("CreateGrant: service error", "error", err, "user_id", dto.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateGrant: grant recorded",
		"grant_id", grant.ID,
		"user_id", grant.UserID,
		"permission", grant.Permission,
		"granted", grant.Granted,
		"granted_by", principal.UserID)

	h.WriteJSON(w, http.StatusCreated, grant)
}

// GetUserGrants handles GET /permissions/grants/{userID}
func (h *Handler) GetUserGrants(w http.ResponseWriter, r *http.Request) {
	userIDStr := chi.URLParam(r, "userID")
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		h.Logger.Error("GetUserGrants: invalid user ID", "id", userIDStr)
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	grants, err := h.Service.GrantsFor(userID)
	if err != nil {
		h.Logger.Error("GetUserGrants: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"grants":  grants,
	})
}
