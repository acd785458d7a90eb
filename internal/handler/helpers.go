package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apperrors "github.com/inventrack/inventory-server-go/internal/errors"
	"github.com/inventrack/inventory-server-go/internal/httputil"
)

// pathUUID extracts and validates a UUID path parameter. On failure it
// writes the error response and returns ok=false.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		httputil.WriteError(w, apperrors.InvalidInput(name, "must be a valid UUID"))
		return "", false
	}
	return id.String(), true
}
