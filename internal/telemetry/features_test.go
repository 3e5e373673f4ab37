package telemetry_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/petasbytes/gpt/internal/telemetry"
)

func TestCountFeatures_Table(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want telemetry.Features
	}{
		{"Empty", "", telemetry.Features{}},
		{"ASCII", "hello world", telemetry.Features{Bytes: 11, Runes: 11, Words: 2, Lines: 1}},
		{"Multibyte", "héllö 世界", telemetry.Features{Bytes: 14, Runes: 8, Words: 2, Lines: 1}},
		{"Multiline_NoTrailing", "a\nb\ncd", telemetry.Features{Bytes: 6, Runes: 6, Words: 3, Lines: 3}},
		{"Multiline_Trailing", "a\nb\n", telemetry.Features{Bytes: 4, Runes: 4, Words: 2, Lines: 3}},
		{"Whitespace_Only", " \t ", telemetry.Features{Bytes: 3, Runes: 3, Words: 0, Lines: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := telemetry.CountFeatures(tc.in); got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestEmitPromptFeatures_NoRawTextLeakage(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GPT_ARTIFACTS_DIR", dir)
	t.Setenv("GPT_OBSERVE_JSON", "1")

	prompt := "__SECRET_PROMPT__ please"
	ctx := telemetry.WithTurnID(context.Background(), "turn-privacy")
	telemetry.EmitPromptFeatures(ctx, "ask", prompt)

	events := readEvents(t, dir)
	ev := events[len(events)-1]
	if ev["event"] != "prompt_features" || ev["turn_id"] != "turn-privacy" || ev["mode"] != "ask" {
		t.Fatalf("unexpected event: %v", ev)
	}
	p, ok := ev["prompt"].(map[string]any)
	if !ok || p["words"] != float64(2) {
		t.Fatalf("unexpected prompt features: %v", ev["prompt"])
	}

	raw, err := os.ReadFile(dir + "/events.jsonl")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(raw), "__SECRET_PROMPT__") {
		t.Fatal("raw prompt text leaked into events.jsonl")
	}
}
