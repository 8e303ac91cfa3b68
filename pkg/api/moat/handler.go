// Package moat serves the economic moat evaluation endpoint.
package moat

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"stock_insight/pkg/api/respond"
	"stock_insight/pkg/core/prompt"
	"stock_insight/pkg/core/utils"
)

// Generator produces text for a named agent role.
type Generator interface {
	Generate(ctx context.Context, agentType, prompt, systemPrompt string, options map[string]interface{}) (string, error)
}

// Handler serves the moat route.
type Handler struct {
	agents Generator
	log    zerolog.Logger
}

func NewHandler(agents Generator, log zerolog.Logger) *Handler {
	return &Handler{
		agents: agents,
		log:    log.With().Str("component", "moat_api").Logger(),
	}
}

// Evaluate asks the model to rate the five moat criteria and returns
// the structured verdict.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	text, err := h.agents.Generate(r.Context(), "moat", prompt.Moat(ticker, time.Now()), "",
		map[string]interface{}{"response_format": "json"})
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("moat generation failed")
		respond.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	var eval prompt.MoatEvaluation
	if err := utils.SmartParse(utils.CleanMarkdown(text), &eval); err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("moat response unparseable")
		respond.Error(w, http.StatusInternalServerError, "model returned malformed moat evaluation")
		return
	}
	respond.JSON(w, http.StatusOK, eval)
}
