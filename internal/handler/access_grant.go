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

// AccessGrantHandler is the user-facing surface: validating and
// redeeming codes, and listing reachable inventories.
type AccessGrantHandler struct {
	grantService *service.AccessGrantService
	codeService  *service.AccessCodeService
}

func NewAccessGrantHandler(
	grantService *service.AccessGrantService,
	codeService *service.AccessCodeService,
) *AccessGrantHandler {
	return &AccessGrantHandler{
		grantService: grantService,
		codeService:  codeService,
	}
}

func (h *AccessGrantHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/validate", h.Validate)
	r.Post("/redeem", h.Redeem)

	return r
}

type validateCodeRequest struct {
	Code string `json:"code" validate:"required"`
}

func (h *AccessGrantHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateCodeRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	code, err := h.codeService.Validate(r.Context(), req.Code)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, code)
}

type redeemCodeRequest struct {
	Code   string `json:"code" validate:"required"`
	UserID string `json:"userId" validate:"required,uuid"`
}

func (h *AccessGrantHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req redeemCodeRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	allowed, resetAt := h.grantService.CheckRedeemLimit(r.Context(), req.UserID)
	if !allowed {
		audit.LogFromRequest(r, audit.Event{
			Type:   audit.EventRateLimitExceed,
			UserID: req.UserID,
		})
		httputil.WriteError(w, apperrors.RateLimitExceeded().WithDetails(map[string]any{
			"resetAt": resetAt.Format(time.RFC3339),
		}))
		return
	}

	result, err := h.grantService.Redeem(r.Context(), req.Code, req.UserID)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeInvalidAccessCode {
			audit.LogFromRequest(r, audit.Event{
				Type:   audit.EventCodeRedeemFail,
				UserID: req.UserID,
			})
		}
		httputil.WriteError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:        audit.EventCodeRedeem,
		UserID:      req.UserID,
		InventoryID: result.AccessCode.InventoryID,
	})

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *AccessGrantHandler) ListInventories(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}

	summaries, err := h.grantService.ListInventoriesForUser(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"inventories": summaries,
		"total":       len(summaries),
	})
}
