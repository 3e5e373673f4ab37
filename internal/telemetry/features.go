package telemetry

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Features holds size features of a text, safe to log in place of the text.
type Features struct {
	Bytes int `json:"bytes"`
	Runes int `json:"runes"`
	Words int `json:"words"`
	Lines int `json:"lines"`
}

// CountFeatures measures s. Lines is 0 for "" and otherwise 1 plus the number of newlines.
func CountFeatures(s string) Features {
	f := Features{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: len(strings.Fields(s)),
	}
	if s != "" {
		f.Lines = 1 + strings.Count(s, "\n")
	}
	return f
}

// EmitPromptFeatures records the size of the prompt that opened a run.
func EmitPromptFeatures(ctx context.Context, mode, prompt string) {
	if !Enabled() {
		return
	}
	turnID, _ := TurnIDFromContext(ctx)
	Emit("prompt_features", map[string]any{
		"turn_id": turnID,
		"mode":    mode,
		"prompt":  CountFeatures(prompt),
	})
}
