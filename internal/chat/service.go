package chat

import (
	"context"
	"errors"

	"github.com/petasbytes/gpt/tools"
)

// ErrService marks failures of the remote service: transport errors, API
// errors and responses of an unexpected shape.
var ErrService = errors.New("chat service")

// FinishReason is why the service stopped generating.
type FinishReason string

const (
	FinishStop     FinishReason = "stop"
	FinishToolCall FinishReason = "tool_call"
	FinishLength   FinishReason = "length"
	FinishOther    FinishReason = "other"
)

type Request struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Messages    []Message
	// Tools are offered to the model; empty means no tool calling.
	Tools []tools.ToolDefinition
}

type Response struct {
	Finish  FinishReason
	Message Message
}

// IsToolCall reports whether the model asked for a tool and named one.
func (r Response) IsToolCall() bool {
	return r.Finish == FinishToolCall && r.Message.Call != nil
}

// Service submits a full history and returns the model's next message.
// The service keeps no state between calls.
type Service interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
