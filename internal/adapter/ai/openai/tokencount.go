package openai

import (
	"log/slog"

	"github.com/pkoukk/tiktoken-go"
)

// CountTokens estimates the token count of text for the given model. Falls
// back to a rough bytes/4 heuristic if the encoding is unknown.
func CountTokens(model, text string) int {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		slog.Debug("unknown model encoding, using heuristic", slog.String("model", model), slog.Any("error", err))
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}
