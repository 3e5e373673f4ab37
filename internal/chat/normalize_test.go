package chat_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/gpt/convo"
	"github.com/petasbytes/gpt/internal/chat"
	"github.com/petasbytes/gpt/tools"
)

func TestToMessages_TripletFolding(t *testing.T) {
	turns := []convo.Turn{
		{Role: "bot", Content: ""},
		{Role: "function_call", Content: `{"name":"t","arguments":"{}"}`},
		{Role: "function", Content: "r"},
	}
	msgs, err := chat.ToMessages(turns, nil)
	require.NoError(t, err)

	want := []chat.Message{
		{Role: chat.RoleAssistant, Content: "", Call: &convo.Invocation{Name: "t", Arguments: "{}"}},
		{Role: chat.RoleFunction, Content: "r", Name: "t"},
	}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestToMessages_RoleMapping(t *testing.T) {
	turns := []convo.Turn{
		{Role: "user", Content: "u"},
		{Role: "assistant", Content: "a"},
		{Role: "Marvin", Content: "m"},
		{Role: "function_call", Content: `{"name":"x","arguments":"{}"}`}, // dangling: next is not a result
		{Role: "user", Content: "u2"},
		{Role: "function", Content: "orphan"},
		{Role: "function_call", Content: `not even json`}, // not after an agent
		{Role: "system", Content: "s"},
	}
	msgs, err := chat.ToMessages(turns, nil)
	require.NoError(t, err)

	var roles []chat.Role
	for _, m := range msgs {
		roles = append(roles, m.Role)
		assert.Nil(t, m.Call, "no triplet is complete")
	}
	assert.Equal(t, []chat.Role{
		chat.RoleUser, chat.RoleAssistant, chat.RoleAssistant, chat.RoleUser, chat.RoleFunction, chat.RoleAssistant,
	}, roles)
	assert.Equal(t, "", msgs[4].Name)
}

func TestToMessages_MultipleRounds(t *testing.T) {
	turns := []convo.Turn{
		{Role: "user", Content: "go"},
		{Role: "bot", Content: "first"},
		{Role: "function_call", Content: `{"name":"a","arguments":"{\"n\":1}"}`},
		{Role: "function", Content: "ra"},
		{Role: "bot", Content: ""},
		{Role: "function_call", Content: `{"name":"b","arguments":"{}"}`},
		{Role: "function", Content: "rb"},
		{Role: "bot", Content: "done"},
		{Role: "user", Content: ""},
	}
	msgs, err := chat.ToMessages(turns, nil)
	require.NoError(t, err)
	require.Len(t, msgs, 7)

	assert.Equal(t, &convo.Invocation{Name: "a", Arguments: `{"n":1}`}, msgs[1].Call)
	assert.Equal(t, "a", msgs[2].Name)
	assert.Equal(t, "b", msgs[3].Call.Name)
	assert.Equal(t, "b", msgs[4].Name)
	assert.Nil(t, msgs[5].Call)
	assert.Equal(t, chat.UserMessage(""), msgs[6])
}

func TestToMessages_MalformedCall(t *testing.T) {
	turns := []convo.Turn{
		{Role: "bot", Content: ""},
		{Role: "function_call", Content: `{"name":"t","arguments":"{oops"}`},
		{Role: "function", Content: "r"},
	}
	_, err := chat.ToMessages(turns, nil)
	require.ErrorIs(t, err, convo.ErrMalformedInvocation)
}

func TestToMessages_UnknownTool(t *testing.T) {
	turns := []convo.Turn{
		{Role: "bot", Content: ""},
		{Role: "function_call", Content: `{"name":"rm_rf","arguments":"{}"}`},
		{Role: "function", Content: "r"},
	}
	_, err := chat.ToMessages(turns, tools.Default().Has)
	require.ErrorIs(t, err, tools.ErrUnknownTool)
}

func TestFromResponse(t *testing.T) {
	plain := chat.Response{Finish: chat.FinishStop, Message: chat.AssistantMessage("hello", nil)}
	assert.Equal(t, []convo.Turn{{Role: "bot", Content: "hello"}}, chat.FromResponse(plain, "bot"))

	call := &convo.Invocation{Name: "run_shell_command", Arguments: `{"shell_command":"ls"}`}
	tool := chat.Response{Finish: chat.FinishToolCall, Message: chat.AssistantMessage("", call)}
	turns := chat.FromResponse(tool, "bot")
	require.Len(t, turns, 2)
	assert.Equal(t, convo.Turn{Role: "bot", Content: ""}, turns[0])
	assert.Equal(t, convo.KindFunctionCall, turns[1].Kind())

	got, err := convo.ParseInvocation(turns[1].Content)
	require.NoError(t, err)
	assert.Equal(t, *call, got)
}

func TestFromResponse_ThenToMessages(t *testing.T) {
	call := &convo.Invocation{Name: "t", Arguments: `{"a":"b"}`}
	turns := chat.FromResponse(chat.Response{Finish: chat.FinishToolCall, Message: chat.AssistantMessage("thinking", call)}, "bot")
	turns = append(turns, convo.Turn{Role: convo.RoleFunction, Content: "out"})

	text, err := convo.Encode(turns, convo.DefaultFormat)
	require.NoError(t, err)
	decoded, err := convo.Decode(text, convo.DefaultFormat)
	require.NoError(t, err)

	msgs, err := chat.ToMessages(decoded, nil)
	require.NoError(t, err)
	want := []chat.Message{
		chat.AssistantMessage("thinking", call),
		chat.FunctionMessage("t", "out"),
	}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}
