package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/petasbytes/gpt/internal/sandbox"
)

type EditFileInput struct {
	Path   string `json:"path" jsonschema_description:"File path relative to the working directory."`
	OldStr string `json:"old_str" jsonschema_description:"Exact text to replace. Empty only when creating a new file."`
	NewStr string `json:"new_str" jsonschema_description:"Replacement text, or the contents of a new file."`
}

var EditFileDefinition = ToolDefinition{
	Name: "edit_file",
	Description: `Create or modify a text file addressed by a path relative to the working directory.

With an empty old_str and a missing file, the file is created with new_str as its contents.
Otherwise every occurrence of old_str is replaced with new_str; the two must differ.`,
	InputSchema: EditFileInputSchema,
	Function:    EditFile,
}

var EditFileInputSchema = GenerateSchema[EditFileInput]()

// EditFile creates a file or replaces text in one. Both the read and the
// write go through the sandbox; missing parent directories are created.
func EditFile(_ context.Context, input json.RawMessage) (string, error) {
	var in EditFileInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", err
	}
	if in.Path == "" || in.OldStr == in.NewStr {
		return "", errors.New("invalid edit parameters: path is required and old_str must differ from new_str")
	}

	sb, err := sandbox.Open("")
	if err != nil {
		return "", err
	}
	path, err := sb.Path(in.Path, sandbox.Write)
	if err != nil {
		return "", err
	}

	old, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if in.OldStr != "" {
			return "", fmt.Errorf("%s does not exist; use an empty old_str to create it", in.Path)
		}
		if err := writeFile(path, in.NewStr); err != nil {
			return "", err
		}
		return fmt.Sprintf("Successfully created file %s", in.Path), nil
	case err != nil:
		return "", err
	case in.OldStr == "":
		return "", errors.New("old_str must be provided when editing an existing file")
	}

	updated := strings.ReplaceAll(string(old), in.OldStr, in.NewStr)
	if updated == string(old) {
		return "", errors.New("old_str not found in file")
	}
	if err := writeFile(path, updated); err != nil {
		return "", err
	}
	return "OK", nil
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
