// Package telemetry appends structured events to a local JSONL file.
//
// Emission is off unless GPT_OBSERVE_JSON=1. Events carry sizes and names,
// never prompt, argument or result text.
package telemetry

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	defaultDir = ".gpt"
	eventsFile = "events.jsonl"
)

// Enabled reports whether JSONL emission is on.
func Enabled() bool {
	return os.Getenv("GPT_OBSERVE_JSON") == "1"
}

// Dir returns the directory events are written to ($GPT_ARTIFACTS_DIR or .gpt).
func Dir() string {
	if d := os.Getenv("GPT_ARTIFACTS_DIR"); d != "" {
		return d
	}
	return defaultDir
}

// Path is the events file inside Dir.
func Path() string {
	return filepath.Join(Dir(), eventsFile)
}

// Emit appends one JSON line to Path, adding RFC3339Nano time and the event
// name to a copy of fields. Failures are logged, never returned.
func Emit(name string, fields map[string]any) {
	if !Enabled() {
		return
	}
	if err := appendEvent(Path(), name, time.Now(), fields); err != nil {
		log.WithError(err).WithField("event", name).Warn("telemetry: event dropped")
	}
}

// mu serializes appends from concurrent emitters in one process.
var mu sync.Mutex

func appendEvent(path, name string, at time.Time, fields map[string]any) error {
	rec := maps.Clone(fields)
	if rec == nil {
		rec = make(map[string]any, 2)
	}
	rec["time"] = at.UTC().Format(time.RFC3339Nano)
	rec["event"] = name
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	_, werr := f.Write(append(line, '\n'))
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	return werr
}
