package validators

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/packfinderz-offers/pkg/errors"
)

// RequiredURLParam returns the trimmed chi URL parameter or a validation error.
func RequiredURLParam(r *http.Request, key string, maxLen int) (string, error) {
	value := SanitizeString(chi.URLParam(r, key), 0)
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "path parameter is required").WithDetails(map[string]any{"field": key})
	}
	if maxLen > 0 && len(value) > maxLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "path parameter too long").WithDetails(map[string]any{"field": key, "max": maxLen})
	}
	return value, nil
}

// UUIDURLParam parses a chi URL parameter as a uuid.
func UUIDURLParam(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a uuid").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}
