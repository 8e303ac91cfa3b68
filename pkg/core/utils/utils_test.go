package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type moatShape struct {
	BrandMonopoly bool   `json:"brandMonopoly"`
	Description   string `json:"description"`
}

func TestSmartParseStrictJSON(t *testing.T) {
	var out moatShape
	require.NoError(t, SmartParse(`{"brandMonopoly": true, "description": "sticky"}`, &out))
	assert.True(t, out.BrandMonopoly)
	assert.Equal(t, "sticky", out.Description)
}

func TestSmartParseRepairsFencedOutput(t *testing.T) {
	raw := "```json\n{'brandMonopoly': true, 'description': 'wide',}\n```"
	var out moatShape
	require.NoError(t, SmartParse(raw, &out))
	assert.True(t, out.BrandMonopoly)
	assert.Equal(t, "wide", out.Description)
}

func TestSmartParseHjsonFallback(t *testing.T) {
	raw := "{\n  brandMonopoly: true\n  description: narrow moat\n}"
	var out moatShape
	require.NoError(t, SmartParse(raw, &out))
	assert.True(t, out.BrandMonopoly)
	assert.Equal(t, "narrow moat", out.Description)
}

func TestSmartParseGarbage(t *testing.T) {
	var out moatShape
	assert.Error(t, SmartParse("not even close [", &out))
}

func TestCleanMarkdown(t *testing.T) {
	assert.Equal(t, "# Title", CleanMarkdown("```markdown\n# Title\n```"))
	assert.Equal(t, "plain text", CleanMarkdown("  plain text  "))
	assert.Equal(t, "# Fenced", CleanMarkdown("```\n# Fenced\n```"))
}

func TestCleanNaN(t *testing.T) {
	payload := map[string]interface{}{
		"price": 42.5,
		"roe":   math.NaN(),
		"ratios": map[string]interface{}{
			"gearing": math.Inf(1),
			"current": 1.2,
		},
		"series": []interface{}{1.0, math.NaN(), 3.0},
		"name":   "AAPL",
	}

	cleaned := CleanNaN(payload).(map[string]interface{})
	assert.Equal(t, 42.5, cleaned["price"])
	assert.Nil(t, cleaned["roe"])
	assert.Equal(t, "AAPL", cleaned["name"])

	ratios := cleaned["ratios"].(map[string]interface{})
	assert.Nil(t, ratios["gearing"])
	assert.Equal(t, 1.2, ratios["current"])

	series := cleaned["series"].([]interface{})
	assert.Nil(t, series[1])
	assert.Equal(t, 3.0, series[2])
}
