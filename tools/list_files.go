package tools

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/petasbytes/gpt/internal/sandbox"
)

type ListFilesInput struct {
	Path     string `json:"path,omitempty" jsonschema_description:"Directory relative to the working directory (default \".\")."`
	Page     int    `json:"page,omitempty" jsonschema_description:"1-based page number (default 1)."`
	PageSize int    `json:"page_size,omitempty" jsonschema_description:"Entries per page (default 200)."`
}

const defaultListFilesPageSize = 200

var ListFilesDefinition = ToolDefinition{
	Name:        "list_files",
	Description: "List the entries of a directory under the working directory (non-recursive). Directories end in \"/\". Returns a JSON array of names.",
	InputSchema: ListFilesInputSchema,
	Function:    ListFiles,
}

var ListFilesInputSchema = GenerateSchema[ListFilesInput]()

// ListFiles returns one sorted page of a directory listing as a JSON array.
// Entries the sandbox would refuse to open are left out. A page past the end
// is "[]".
func ListFiles(_ context.Context, input json.RawMessage) (string, error) {
	var in ListFilesInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", err
	}
	rel := in.Path
	if rel == "" {
		rel = "."
	}
	page := max(in.Page, 1)
	pageSize := in.PageSize
	if pageSize <= 0 {
		pageSize = defaultListFilesPageSize
	}

	sb, err := sandbox.Open("")
	if err != nil {
		return "", err
	}
	dir, err := sb.Path(rel, sandbox.Read)
	if err != nil {
		return "", err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, err := sb.Path(filepath.Join(rel, e.Name()), sandbox.Read); err != nil {
			var pe sandbox.PathError
			if errors.As(err, &pe) {
				continue
			}
			return "", err
		}
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	start := (page - 1) * pageSize
	if start >= len(names) {
		return "[]", nil
	}
	b, err := json.Marshal(names[start:min(start+pageSize, len(names))])
	if err != nil {
		return "", err
	}
	return string(b), nil
}
