package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

func TestCleanModelJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading prose", `Here is the result: {"a":1}`, `{"a":1}`},
		{"trailing prose", `{"a":1} hope that helps`, `{"a":1}`},
		{"nested braces", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{"no object at all", "not json", "not json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CleanModelJSON(tt.in))
		})
	}
}

func TestParseExtraction(t *testing.T) {
	t.Parallel()

	resp := `{"extract_objective":"Ship software","extract_experiences":"3 years",` +
		`"extract_skills":"Go","extract_education":0,"extract_certificate":"0"}`
	f, err := ParseExtraction(resp)
	require.NoError(t, err)
	assert.Equal(t, "Ship software", f.Objective)
	assert.Equal(t, "3 years", f.Experiences)
	assert.Equal(t, "Go", f.Skills)
	// Both the number 0 and the string "0" persist as the sentinel.
	assert.Equal(t, domain.FieldSentinel, f.Education)
	assert.Equal(t, domain.FieldSentinel, f.Certificate)
}

func TestParseExtraction_FencedResponse(t *testing.T) {
	t.Parallel()

	resp := "```json\n" +
		`{"extract_objective":"x","extract_experiences":"x","extract_skills":"x","extract_education":"x","extract_certificate":"x"}` +
		"\n```"
	f, err := ParseExtraction(resp)
	require.NoError(t, err)
	assert.Equal(t, "x", f.Objective)
}

func TestParseExtraction_EmptyStringBecomesSentinel(t *testing.T) {
	t.Parallel()

	resp := `{"extract_objective":"  ","extract_experiences":"x","extract_skills":"x","extract_education":"x","extract_certificate":"x"}`
	f, err := ParseExtraction(resp)
	require.NoError(t, err)
	assert.Equal(t, domain.FieldSentinel, f.Objective)
}

func TestParseExtraction_MissingKey(t *testing.T) {
	t.Parallel()

	resp := `{"extract_objective":"x","extract_experiences":"x","extract_skills":"x","extract_education":"x"}`
	_, err := ParseExtraction(resp)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSchemaInvalid)
}

func TestParseExtraction_NotJSON(t *testing.T) {
	t.Parallel()

	_, err := ParseExtraction("I could not find any information.")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSchemaInvalid)
}

func TestParseEvaluation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		in         string
		wantScore  float64
		wantReason string
		wantErr    bool
	}{
		{"number score", `{"score": 87.5, "summary_reason": "solid"}`, 87.5, "solid", false},
		{"string score", `{"score": "62", "summary_reason": "ok"}`, 62, "ok", false},
		{"fenced", "```json\n{\"score\": 10, \"summary_reason\": \"weak\"}\n```", 10, "weak", false},
		{"score too high", `{"score": 120, "summary_reason": "x"}`, 0, "", true},
		{"score negative", `{"score": -1, "summary_reason": "x"}`, 0, "", true},
		{"missing score", `{"summary_reason": "x"}`, 0, "", true},
		{"missing reason", `{"score": 50}`, 0, "", true},
		{"non-numeric score", `{"score": "high", "summary_reason": "x"}`, 0, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			eval, err := ParseEvaluation(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrSchemaInvalid)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.wantScore, eval.Score, 0.001)
			assert.Equal(t, tt.wantReason, eval.SummaryReason)
		})
	}
}
