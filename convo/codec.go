package convo

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrMalformedConversation = errors.New("malformed conversation")
	ErrInvalidWidth          = errors.New("invalid delimiter width")
	ErrInvalidRole           = errors.New("invalid role")
	ErrInvalidSeparator      = errors.New("invalid separator")
)

// Roles with a fixed meaning. Any other role names an agent.
const (
	RoleUser         = "user"
	RoleFunctionCall = "function_call"
	RoleFunction     = "function"
)

// Kind classifies a turn by its role.
type Kind int

const (
	KindAgent Kind = iota
	KindUser
	KindFunctionCall
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindFunctionCall:
		return "function_call"
	case KindFunction:
		return "function"
	default:
		return "agent"
	}
}

// Turn is one role-tagged block of a conversation buffer.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (t Turn) Kind() Kind {
	switch t.Role {
	case RoleUser:
		return KindUser
	case RoleFunctionCall:
		return KindFunctionCall
	case RoleFunction:
		return KindFunction
	default:
		return KindAgent
	}
}

// Format describes delimiter lines: total width in characters and the separator character.
type Format struct {
	Width int
	Sep   string
}

var DefaultFormat = Format{Width: 80, Sep: "#"}

func (f Format) Validate() error {
	if utf8.RuneCountInString(f.Sep) != 1 || strings.TrimSpace(f.Sep) == "" {
		return fmt.Errorf("%w: %q must be a single non-space character", ErrInvalidSeparator, f.Sep)
	}
	if f.Width <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWidth, f.Width)
	}
	return nil
}

// Delimiter renders the delimiter line that opens a turn for role.
func Delimiter(role string, f Format) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	if role == "" || strings.IndexFunc(role, unicode.IsSpace) >= 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	prefix := f.Sep + " " + role + " "
	n := f.Width - utf8.RuneCountInString(prefix)
	if n < 1 {
		return "", fmt.Errorf("%w: %d is too small for role %q", ErrInvalidWidth, f.Width, role)
	}
	return prefix + strings.Repeat(f.Sep, n), nil
}

// ParseDelimiter returns the role of a delimiter line. Matching is strict:
// exact width, exactly three fields, and separator-only first and last fields.
func ParseDelimiter(line string, f Format) (string, bool) {
	if utf8.RuneCountInString(line) != f.Width {
		return "", false
	}
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != f.Sep || strings.Trim(parts[2], f.Sep) != "" {
		return "", false
	}
	return parts[1], true
}

// Decode splits a conversation buffer into turns.
func Decode(text string, f Format) ([]Turn, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty buffer", ErrMalformedConversation)
	}

	lines := strings.Split(text, "\n")
	var turns []Turn
	if _, ok := ParseDelimiter(lines[0], f); !ok {
		turns = append(turns, Turn{Role: RoleUser})
	}

	var body []string
	flush := func() {
		if len(turns) > 0 {
			turns[len(turns)-1].Content = strings.Join(body, "\n")
		}
		body = body[:0]
	}
	for _, line := range lines {
		if role, ok := ParseDelimiter(line, f); ok {
			flush()
			turns = append(turns, Turn{Role: role})
			continue
		}
		body = append(body, line)
	}
	flush()
	return turns, nil
}

// Encode renders turns as a conversation buffer. Decode(Encode(turns)) returns
// turns unchanged as long as no content line is itself a delimiter.
func Encode(turns []Turn, f Format) (string, error) {
	blocks := make([]string, 0, len(turns))
	for _, t := range turns {
		d, err := Delimiter(t.Role, f)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, d+"\n"+t.Content)
	}
	return strings.Join(blocks, "\n"), nil
}
