package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

// CleanModelJSON strips markdown fences and surrounding prose from a model
// response. The prompts forbid code blocks, but models add them anyway.
func CleanModelJSON(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	// Extract the first balanced JSON object from mixed content.
	start := strings.Index(response, "{")
	if start == -1 {
		return response
	}
	braceCount := 0
	end := start
	for i := start; i < len(response); i++ {
		switch response[i] {
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				end = i
				return response[start : end+1]
			}
		}
	}
	return response
}

// fieldValue normalizes one extracted value. The model may return the absent
// sentinel as the JSON number 0 or the string "0"; both persist as "0".
func fieldValue(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return domain.FieldSentinel, nil
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if n.String() == "0" {
			return domain.FieldSentinel, nil
		}
		return n.String(), nil
	}
	return "", fmt.Errorf("field is neither string nor number")
}

// ParseExtraction decodes the extraction response into the five fields.
// All five keys must be present; anything else is a schema violation.
func ParseExtraction(response string) (domain.ExtractedFields, error) {
	cleaned := CleanModelJSON(response)
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return domain.ExtractedFields{}, fmt.Errorf("op=parse.extraction: %v: %w", err, domain.ErrSchemaInvalid)
	}

	var f domain.ExtractedFields
	for _, kv := range []struct {
		key  string
		dest *string
	}{
		{KeyObjective, &f.Objective},
		{KeyExperiences, &f.Experiences},
		{KeySkills, &f.Skills},
		{KeyEducation, &f.Education},
		{KeyCertificate, &f.Certificate},
	} {
		raw, ok := obj[kv.key]
		if !ok {
			return domain.ExtractedFields{}, fmt.Errorf("op=parse.extraction: missing key %s: %w", kv.key, domain.ErrSchemaInvalid)
		}
		v, err := fieldValue(raw)
		if err != nil {
			return domain.ExtractedFields{}, fmt.Errorf("op=parse.extraction: key %s: %v: %w", kv.key, err, domain.ErrSchemaInvalid)
		}
		*kv.dest = v
	}
	return f, nil
}

// Evaluation is the decoded scoring response.
type Evaluation struct {
	Score         float64
	SummaryReason string
}

// ParseEvaluation decodes the evaluation response. The score may arrive as a
// JSON number or a numeric string.
func ParseEvaluation(response string) (Evaluation, error) {
	cleaned := CleanModelJSON(response)
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
		return Evaluation{}, fmt.Errorf("op=parse.evaluation: %v: %w", err, domain.ErrSchemaInvalid)
	}

	rawScore, ok := obj[KeyScore]
	if !ok {
		return Evaluation{}, fmt.Errorf("op=parse.evaluation: missing key %s: %w", KeyScore, domain.ErrSchemaInvalid)
	}
	var score float64
	if err := json.Unmarshal(rawScore, &score); err != nil {
		var s string
		if err2 := json.Unmarshal(rawScore, &s); err2 != nil {
			return Evaluation{}, fmt.Errorf("op=parse.evaluation: score not numeric: %w", domain.ErrSchemaInvalid)
		}
		if _, err2 := fmt.Sscanf(strings.TrimSpace(s), "%f", &score); err2 != nil {
			return Evaluation{}, fmt.Errorf("op=parse.evaluation: score not numeric: %w", domain.ErrSchemaInvalid)
		}
	}
	if score < 0 || score > 100 {
		return Evaluation{}, fmt.Errorf("op=parse.evaluation: score %v out of range: %w", score, domain.ErrSchemaInvalid)
	}

	rawReason, ok := obj[KeySummaryReason]
	if !ok {
		return Evaluation{}, fmt.Errorf("op=parse.evaluation: missing key %s: %w", KeySummaryReason, domain.ErrSchemaInvalid)
	}
	var reason string
	if err := json.Unmarshal(rawReason, &reason); err != nil {
		return Evaluation{}, fmt.Errorf("op=parse.evaluation: summary_reason not a string: %w", domain.ErrSchemaInvalid)
	}
	return Evaluation{Score: score, SummaryReason: reason}, nil
}
