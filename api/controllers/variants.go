package controllers

import (
	"net/http"

	"github.com/angelmondragon/packfinderz-offers/api/responses"
	"github.com/angelmondragon/packfinderz-offers/api/validators"
	"github.com/angelmondragon/packfinderz-offers/internal/variants"
	pkgerrors "github.com/angelmondragon/packfinderz-offers/pkg/errors"
	"github.com/angelmondragon/packfinderz-offers/pkg/logger"
)

const maxProductIDLen = 128

// ValidateVariants checks a proposed variant set without writing it.
func ValidateVariants(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, input, ok := decodeVariantEdit(w, r, svc, logg)
		if !ok {
			return
		}
		if err := svc.ValidateEdit(r.Context(), productID, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"valid": true})
	}
}

// ReplaceVariants validates and persists the full variant set of a product.
func ReplaceVariants(svc variants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, input, ok := decodeVariantEdit(w, r, svc, logg)
		if !ok {
			return
		}
		rows, err := svc.ApplyEdit(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"productId": productID, "variants": rows})
	}
}

func decodeVariantEdit(w http.ResponseWriter, r *http.Request, svc variants.Service, logg *logger.Logger) (string, variants.EditInput, bool) {
	var input variants.EditInput
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "variant service unavailable"))
		return "", input, false
	}
	productID, err := validators.RequiredURLParam(r, "productId", maxProductIDLen)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return "", input, false
	}
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return "", input, false
	}
	return productID, input, true
}
