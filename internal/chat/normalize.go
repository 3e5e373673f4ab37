package chat

import (
	"fmt"

	"github.com/petasbytes/gpt/convo"
	"github.com/petasbytes/gpt/tools"
)

type foldState int

const (
	expectAgent foldState = iota
	expectCall
	expectResult
)

// ToMessages maps buffer turns onto service messages in one pass.
//
// An agent turn, a function_call turn and a function turn in that order form
// a triplet: the invocation is folded onto the agent message and its tool name
// onto the function message. function_call turns never appear in the output;
// one that is not completed by a function turn is dropped. Roles map as
// user->user, function->function, anything else->assistant.
//
// known, when non-nil, must accept every folded tool name.
func ToMessages(turns []convo.Turn, known func(name string) bool) ([]Message, error) {
	out := make([]Message, 0, len(turns))
	state := expectAgent
	agentIdx := -1
	var pending *convo.Invocation

	for i, t := range turns {
		switch t.Kind() {
		case convo.KindAgent:
			out = append(out, AssistantMessage(t.Content, nil))
			agentIdx = len(out) - 1
			state = expectCall

		case convo.KindFunctionCall:
			if state != expectCall {
				pending = nil
				state = expectAgent
				continue
			}
			inv, err := convo.ParseInvocation(t.Content)
			if err != nil {
				return nil, fmt.Errorf("turn %d: %w", i, err)
			}
			if known != nil && !known(inv.Name) {
				return nil, fmt.Errorf("turn %d: %w: %q", i, tools.ErrUnknownTool, inv.Name)
			}
			pending = &inv
			state = expectResult

		case convo.KindFunction:
			msg := FunctionMessage("", t.Content)
			if state == expectResult {
				out[agentIdx].Call = pending
				msg.Name = pending.Name
			}
			out = append(out, msg)
			pending = nil
			state = expectAgent

		default:
			out = append(out, UserMessage(t.Content))
			pending = nil
			state = expectAgent
		}
	}
	return out, nil
}

// FromResponse turns a service reply into buffer turns spoken by agent: the
// agent's text, followed by a function_call turn when the model asked for a
// tool. The function result that must follow is the caller's business.
func FromResponse(resp Response, agent string) []convo.Turn {
	turns := []convo.Turn{{Role: agent, Content: resp.Message.Content}}
	if resp.IsToolCall() {
		turns = append(turns, convo.Turn{Role: convo.RoleFunctionCall, Content: resp.Message.Call.Encode()})
	}
	return turns
}
