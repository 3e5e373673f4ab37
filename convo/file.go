package convo

import (
	"errors"
	"os"
	"strings"
)

// LoadConversation reads and decodes a buffer file. A missing or empty file
// yields nil turns.
func LoadConversation(path string, f Format) ([]Turn, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if strings.TrimSpace(string(b)) == "" {
		return nil, nil
	}
	return Decode(string(b), f)
}

func SaveConversation(path string, turns []Turn, f Format) error {
	text, err := Encode(turns, f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}
