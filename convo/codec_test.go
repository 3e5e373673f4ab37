package convo_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/gpt/convo"
)

func delim(t *testing.T, role string) string {
	t.Helper()
	d, err := convo.Delimiter(role, convo.DefaultFormat)
	require.NoError(t, err)
	return d
}

func TestDelimiter_Shape(t *testing.T) {
	d := delim(t, "user")
	assert.Len(t, d, 80)
	assert.True(t, strings.HasPrefix(d, "# user #"))
	assert.Equal(t, strings.Repeat("#", 80-len("# user ")), strings.TrimPrefix(d, "# user "))

	role, ok := convo.ParseDelimiter(d, convo.DefaultFormat)
	require.True(t, ok)
	assert.Equal(t, "user", role)
}

func TestParseDelimiter_Strictness(t *testing.T) {
	f := convo.DefaultFormat
	good := delim(t, "bot")
	tests := []struct {
		name string
		line string
	}{
		{"too_short", good[:79]},
		{"too_long", good + "#"},
		{"markdown_heading", "# Heading with # signs"},
		{"four_tokens", "# two words " + strings.Repeat("#", 80-len("# two words "))},
		{"two_tokens", "# " + strings.Repeat("#", 78)},
		{"first_not_sep", "## bot " + strings.Repeat("#", 80-len("## bot "))},
		{"third_not_pure", "# bot " + strings.Repeat("#", 80-len("# bot ")-1) + "x"},
		{"other_sep", "= bot " + strings.Repeat("=", 80-len("= bot "))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := convo.ParseDelimiter(tt.line, f)
			assert.False(t, ok, "line %q must not be a delimiter", tt.line)
		})
	}
}

func TestParseDelimiter_CustomFormat(t *testing.T) {
	f := convo.Format{Width: 20, Sep: "="}
	d, err := convo.Delimiter("bot", f)
	require.NoError(t, err)
	assert.Equal(t, "= bot ==============", d)

	role, ok := convo.ParseDelimiter(d, f)
	require.True(t, ok)
	assert.Equal(t, "bot", role)

	_, ok = convo.ParseDelimiter(d, convo.DefaultFormat)
	assert.False(t, ok)
}

func TestDecode_ImplicitUser(t *testing.T) {
	turns, err := convo.Decode("hello\nworld", convo.DefaultFormat)
	require.NoError(t, err)
	assert.Equal(t, []convo.Turn{{Role: "user", Content: "hello\nworld"}}, turns)

	explicit, err := convo.Decode(delim(t, "user")+"\nhello\nworld", convo.DefaultFormat)
	require.NoError(t, err)
	assert.Equal(t, turns, explicit)
}

func TestDecode_Turns(t *testing.T) {
	text := strings.Join([]string{
		delim(t, "user"),
		"what is in this dir?",
		delim(t, "bot"),
		"",
		delim(t, "function_call"),
		`{"name":"run_shell_command","arguments":"{\"shell_command\":\"ls\"}"}`,
		delim(t, "function"),
		"a.txt",
		"b.txt",
		"",
		delim(t, "user"),
	}, "\n")

	turns, err := convo.Decode(text, convo.DefaultFormat)
	require.NoError(t, err)

	want := []convo.Turn{
		{Role: "user", Content: "what is in this dir?"},
		{Role: "bot", Content: ""},
		{Role: "function_call", Content: `{"name":"run_shell_command","arguments":"{\"shell_command\":\"ls\"}"}`},
		{Role: "function", Content: "a.txt\nb.txt\n"},
		{Role: "user", Content: ""},
	}
	if diff := cmp.Diff(want, turns); diff != "" {
		t.Fatalf("decode mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, convo.KindAgent, turns[1].Kind())
	assert.Equal(t, convo.KindFunctionCall, turns[2].Kind())
	assert.Equal(t, convo.KindFunction, turns[3].Kind())
}

func TestDecode_Empty(t *testing.T) {
	_, err := convo.Decode("", convo.DefaultFormat)
	require.ErrorIs(t, err, convo.ErrMalformedConversation)
}

func TestDecode_InvalidSeparator(t *testing.T) {
	_, err := convo.Decode("hi", convo.Format{Width: 80, Sep: "##"})
	require.ErrorIs(t, err, convo.ErrInvalidSeparator)
}

func TestRoundTrip(t *testing.T) {
	cases := [][]convo.Turn{
		{{Role: "user", Content: "hi"}},
		{{Role: "user", Content: ""}},
		{{Role: "user", Content: "a\n\nb\n"}, {Role: "bot", Content: "# not a delimiter\n###"}},
		{
			{Role: "user", Content: "list files"},
			{Role: "bot", Content: ""},
			{Role: "function_call", Content: `{"name":"t","arguments":"{}"}`},
			{Role: "function", Content: "r"},
			{Role: "bot", Content: "done"},
		},
		{{Role: "bot", Content: "starts with an agent"}, {Role: "user", Content: "\n"}},
	}
	for _, turns := range cases {
		text, err := convo.Encode(turns, convo.DefaultFormat)
		require.NoError(t, err)
		got, err := convo.Decode(text, convo.DefaultFormat)
		require.NoError(t, err)
		if diff := cmp.Diff(turns, got); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestEncode_ImplicitUserBecomesExplicit(t *testing.T) {
	turns, err := convo.Decode("bare prompt", convo.DefaultFormat)
	require.NoError(t, err)
	text, err := convo.Encode(turns, convo.DefaultFormat)
	require.NoError(t, err)
	assert.Equal(t, delim(t, "user")+"\nbare prompt", text)
}

func TestEncode_WidthGuard(t *testing.T) {
	f := convo.Format{Width: 10, Sep: "#"}

	_, err := convo.Encode([]convo.Turn{{Role: "abcdef", Content: "x"}}, f) // width-4
	require.NoError(t, err)

	_, err = convo.Encode([]convo.Turn{{Role: "abcdefg", Content: "x"}}, f)
	require.ErrorIs(t, err, convo.ErrInvalidWidth)
}

func TestEncode_InvalidRole(t *testing.T) {
	for _, role := range []string{"", "two words", "tab\trole"} {
		_, err := convo.Encode([]convo.Turn{{Role: role}}, convo.DefaultFormat)
		assert.ErrorIs(t, err, convo.ErrInvalidRole, "role %q", role)
	}
}
