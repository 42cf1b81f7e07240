package controllers

import (
	"net/http"

	"github.com/angelmondragon/packfinderz-offers/api/responses"
	"github.com/angelmondragon/packfinderz-offers/api/validators"
	"github.com/angelmondragon/packfinderz-offers/internal/pricing"
	pkgerrors "github.com/angelmondragon/packfinderz-offers/pkg/errors"
	"github.com/angelmondragon/packfinderz-offers/pkg/logger"
)

type snapshotRequest struct {
	ProductIDs []string `json:"productIds" validate:"required,min=1,dive,required"`
}

// MarkupHeader carries the markup percent a snapshot response was priced with.
const MarkupHeader = "X-Pricing-Markup-Percent"

// PricingSnapshots returns a productId → snapshot map. The markup used is
// sent in MarkupHeader.
func PricingSnapshots(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var payload snapshotRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Snapshots(r.Context(), payload.ProductIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set(MarkupHeader, result.MarkupPercent.String())
		responses.WriteSuccess(w, result.Products)
	}
}
