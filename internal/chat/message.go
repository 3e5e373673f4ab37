package chat

import (
	"github.com/petasbytes/gpt/convo"
)

// Role is a speaker in the service's chat protocol.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleFunction  Role = "function"
)

// Message is one entry of the history submitted to the service. Only
// assistant messages carry Call and only function messages carry Name;
// build messages with the constructors below.
type Message struct {
	Role    Role
	Content string
	Name    string
	Call    *convo.Invocation
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds a model turn; call is nil for a plain answer.
func AssistantMessage(content string, call *convo.Invocation) Message {
	return Message{Role: RoleAssistant, Content: content, Call: call}
}

// FunctionMessage builds the result of running the named tool.
func FunctionMessage(name, content string) Message {
	return Message{Role: RoleFunction, Content: content, Name: name}
}
