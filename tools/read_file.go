package tools

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/petasbytes/gpt/internal/sandbox"
)

type ReadFileInput struct {
	Path   string `json:"path" jsonschema_description:"File path relative to the working directory."`
	Offset int    `json:"offset,omitempty" jsonschema_description:"Line offset (0-based) to start reading from."`
	Limit  int    `json:"limit,omitempty" jsonschema_description:"Maximum lines to return from offset (default 200)."`
}

const (
	defaultReadFileLimit = 200
	maxLineRunes         = 2000
	overallRuneCap       = 12_000
	truncationSentinel   = "-- truncated; use offset/limit to fetch more --\n"
)

var ReadFileDefinition = ToolDefinition{
	Name:        "read_file",
	Description: "Read a text file addressed by a path relative to the working directory. Returns at most limit lines starting at offset.",
	InputSchema: ReadFileInputSchema,
	Function:    ReadFile,
}

var ReadFileInputSchema = GenerateSchema[ReadFileInput]()

func clampRunes(s string, n int) (string, bool) {
	if utf8.RuneCountInString(s) <= n {
		return s, false
	}
	return string([]rune(s)[:n]), true
}

// ReadFile returns a window of lines from a file under the working directory.
// When the window does not cover the whole file, or a cap cut it short, the
// output ends with a truncation sentinel.
func ReadFile(_ context.Context, input json.RawMessage) (string, error) {
	var in ReadFileInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", err
	}

	sb, err := sandbox.Open("")
	if err != nil {
		return "", err
	}
	path, err := sb.Path(in.Path, sandbox.Read)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if fi.IsDir() {
		return "", sandbox.PathError{Code: sandbox.CodeNotAFile, Message: "path is a directory"}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultReadFileLimit
	}
	lines := strings.Split(string(b), "\n")
	offset := min(max(in.Offset, 0), len(lines))
	end := min(offset+limit, len(lines))

	truncated := end < len(lines)
	for i := offset; i < end; i++ {
		if clamped, did := clampRunes(lines[i], maxLineRunes); did {
			lines[i] = clamped
			truncated = true
		}
	}
	out := strings.Join(lines[offset:end], "\n")
	if clamped, did := clampRunes(out, overallRuneCap); did {
		out = clamped
		truncated = true
	}

	if truncated {
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		out += truncationSentinel
	}
	return out, nil
}
