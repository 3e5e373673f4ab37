package convo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedInvocation = errors.New("malformed tool invocation")

// Invocation is a model's request to run a tool. Arguments is a JSON-encoded
// object interpreted only by the named tool.
type Invocation struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ParseInvocation decodes the content of a function_call turn.
func ParseInvocation(content string) (Invocation, error) {
	var inv Invocation
	if err := json.Unmarshal([]byte(content), &inv); err != nil {
		return Invocation{}, fmt.Errorf("%w: %v", ErrMalformedInvocation, err)
	}
	if err := inv.Validate(); err != nil {
		return Invocation{}, err
	}
	return inv, nil
}

// Validate checks that the invocation names a tool and carries a JSON object.
func (i Invocation) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("%w: missing tool name", ErrMalformedInvocation)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(i.Args(), &obj); err != nil || obj == nil {
		return fmt.Errorf("%w: arguments for %q are not a JSON object", ErrMalformedInvocation, i.Name)
	}
	return nil
}

// Args returns the raw arguments, treating an empty payload as "{}".
func (i Invocation) Args() json.RawMessage {
	if strings.TrimSpace(i.Arguments) == "" {
		return json.RawMessage("{}")
	}
	return json.RawMessage(i.Arguments)
}

// Encode renders the invocation as function_call turn content.
func (i Invocation) Encode() string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(i) // two strings always marshal
	return strings.TrimSuffix(buf.String(), "\n")
}
