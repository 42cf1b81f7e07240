package controllers

import (
	"net/http"

	"github.com/angelmondragon/packfinderz-offers/api/responses"
	"github.com/angelmondragon/packfinderz-offers/api/validators"
	"github.com/angelmondragon/packfinderz-offers/internal/offers"
	pkgerrors "github.com/angelmondragon/packfinderz-offers/pkg/errors"
	"github.com/angelmondragon/packfinderz-offers/pkg/logger"
)

type importRequest struct {
	Source  string          `json:"source" validate:"required,max=100"`
	Records []offers.Record `json:"records" validate:"required,min=1"`
}

// ImportOffers normalizes and upserts one supplier feed batch. Malformed
// records are reported, not fatal.
func ImportOffers(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer import unavailable"))
			return
		}

		var payload importRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Import(r.Context(), offers.ImportInput{
			Source:  validators.SanitizeString(payload.Source, 100),
			Records: payload.Records,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
