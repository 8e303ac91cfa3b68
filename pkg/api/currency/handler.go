// Package currency serves the USD exchange rate lookup.
package currency

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"stock_insight/pkg/api/respond"
	"stock_insight/pkg/core/fx"
)

// Handler serves the currency route.
type Handler struct {
	fx  *fx.Converter
	log zerolog.Logger
}

func NewHandler(converter *fx.Converter, log zerolog.Logger) *Handler {
	return &Handler{
		fx:  converter,
		log: log.With().Str("component", "currency_api").Logger(),
	}
}

// Rate returns the USD to target exchange rate.
func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	target := strings.ToUpper(r.URL.Query().Get("target"))
	if target == "" {
		target = "SGD"
	}
	rate := h.fx.Rate(r.Context(), "USD", target)
	respond.JSON(w, http.StatusOK, map[string]float64{"rate": rate})
}
