package moat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_insight/pkg/core/prompt"
)

type stubGenerator struct {
	prompt    string
	agentType string
	options   map[string]interface{}
	response  string
	err       error
}

func (s *stubGenerator) Generate(ctx context.Context, agentType, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	s.agentType = agentType
	s.prompt = prompt
	s.options = options
	return s.response, s.err
}

func serve(h *Handler, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/api/evaluate_moat/{ticker}", h.Evaluate)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestEvaluateParsesStructuredVerdict(t *testing.T) {
	gen := &stubGenerator{response: "```json\n" + `{
		"brandMonopoly": "High",
		"networkEffect": "Low",
		"economyOfScale": "High",
		"highBarrierToEntry": "High",
		"highSwitchingCost": "None",
		"description": "Strong brand and scale."
	}` + "\n```"}
	h := NewHandler(gen, zerolog.Nop())

	rec := serve(h, "/api/evaluate_moat/aapl")
	require.Equal(t, http.StatusOK, rec.Code)

	var eval prompt.MoatEvaluation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eval))
	assert.Equal(t, "High", eval.BrandMonopoly)
	assert.Equal(t, "None", eval.HighSwitchingCost)
	assert.Equal(t, "Strong brand and scale.", eval.Description)

	assert.Equal(t, "moat", gen.agentType)
	assert.Contains(t, gen.prompt, "AAPL")
	assert.Equal(t, "json", gen.options["response_format"])
}

func TestEvaluateRecoversSloppyJSON(t *testing.T) {
	gen := &stubGenerator{response: `{brandMonopoly: 'High', networkEffect: 'Low', economyOfScale: 'Low',
		highBarrierToEntry: 'Low', highSwitchingCost: 'Low', description: 'Commodity business',}`}
	h := NewHandler(gen, zerolog.Nop())

	rec := serve(h, "/api/evaluate_moat/XOM")
	require.Equal(t, http.StatusOK, rec.Code)

	var eval prompt.MoatEvaluation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eval))
	assert.Equal(t, "High", eval.BrandMonopoly)
	assert.Equal(t, "Commodity business", eval.Description)
}

func TestEvaluateReportsModelFailure(t *testing.T) {
	gen := &stubGenerator{err: fmt.Errorf("all models failed: quota exhausted")}
	h := NewHandler(gen, zerolog.Nop())

	rec := serve(h, "/api/evaluate_moat/AAPL")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "all models failed")
}
