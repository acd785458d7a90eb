package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inventrack/inventory-server-go/internal/audit"
	apperrors "github.com/inventrack/inventory-server-go/internal/errors"
	"github.com/inventrack/inventory-server-go/internal/httputil"
	"github.com/inventrack/inventory-server-go/internal/service"
	"github.com/inventrack/inventory-server-go/internal/validators"
)

// AccessCodeHandler is the admin-facing surface: issuing, inspecting
// and revoking an inventory's access code.
type AccessCodeHandler struct {
	codeService  *service.AccessCodeService
	grantService *service.AccessGrantService
}

func NewAccessCodeHandler(
	codeService *service.AccessCodeService,
	grantService *service.AccessGrantService,
) *AccessCodeHandler {
	return &AccessCodeHandler{
		codeService:  codeService,
		grantService: grantService,
	}
}

func (h *AccessCodeHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/{inventoryID}/access-code", h.Generate)
	r.Get("/{inventoryID}/access-code", h.GetActive)
	r.Delete("/{inventoryID}/access-code", h.Revoke)
	r.Get("/{inventoryID}/access", h.ListGrants)

	return r
}

type generateCodeRequest struct {
	Hours   int `json:"hours" validate:"gte=0"`
	Minutes int `json:"minutes" validate:"gte=0"`
}

func (h *AccessCodeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	inventoryID, ok := pathUUID(w, r, "inventoryID")
	if !ok {
		return
	}

	var req generateCodeRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	allowed, resetAt := h.codeService.CheckGenerationLimit(r.Context(), inventoryID)
	if !allowed {
		audit.LogFromRequest(r, audit.Event{
			Type:        audit.EventRateLimitExceed,
			InventoryID: inventoryID,
		})
		httputil.WriteError(w, apperrors.RateLimitExceeded().WithDetails(map[string]any{
			"resetAt": resetAt.Format(time.RFC3339),
		}))
		return
	}

	code, err := h.codeService.Generate(r.Context(), inventoryID, req.Hours, req.Minutes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:        audit.EventCodeGenerate,
		InventoryID: inventoryID,
		Details:     map[string]interface{}{"code": code.Code},
	})

	httputil.WriteJSON(w, http.StatusOK, code)
}

func (h *AccessCodeHandler) GetActive(w http.ResponseWriter, r *http.Request) {
	inventoryID, ok := pathUUID(w, r, "inventoryID")
	if !ok {
		return
	}

	code, err := h.codeService.GetActive(r.Context(), inventoryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if code == nil {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"active": false})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"active":     true,
		"accessCode": code,
	})
}

func (h *AccessCodeHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	inventoryID, ok := pathUUID(w, r, "inventoryID")
	if !ok {
		return
	}

	removed, err := h.codeService.RevokeForInventory(r.Context(), inventoryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:        audit.EventCodeRevoke,
		InventoryID: inventoryID,
		Details:     map[string]interface{}{"removed": removed},
	})

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

func (h *AccessCodeHandler) ListGrants(w http.ResponseWriter, r *http.Request) {
	inventoryID, ok := pathUUID(w, r, "inventoryID")
	if !ok {
		return
	}

	access, err := h.grantService.ListUsersWithAccess(r.Context(), inventoryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"accessCode": access.AccessCode,
		"users":      access.Users,
		"total":      len(access.Users),
	})
}
