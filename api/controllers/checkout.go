package controllers

import (
	"net/http"

	"github.com/angelmondragon/packfinderz-offers/api/responses"
	"github.com/angelmondragon/packfinderz-offers/api/validators"
	checkoutsvc "github.com/angelmondragon/packfinderz-offers/internal/checkout"
	"github.com/angelmondragon/packfinderz-offers/internal/quote"
	pkgerrors "github.com/angelmondragon/packfinderz-offers/pkg/errors"
	"github.com/angelmondragon/packfinderz-offers/pkg/logger"
)

type commitRequest struct {
	Items          []quote.Item `json:"items" validate:"required,min=1,dive"`
	QuotedSubtotal int64        `json:"quotedSubtotal" validate:"gt=0"`
	AcceptDrift    bool         `json:"acceptDrift"`
}

// CheckoutCommit re-quotes the cart and stores a priced order snapshot.
func CheckoutCommit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload commitRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Commit(r.Context(), checkoutsvc.CommitInput{
			Items:          payload.Items,
			QuotedSubtotal: payload.QuotedSubtotal,
			AcceptDrift:    payload.AcceptDrift,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func CheckoutOrder(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		orderID, err := validators.UUIDURLParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
