package provider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/invopop/jsonschema"
	openai "github.com/sashabaranov/go-openai"

	"github.com/petasbytes/gpt/convo"
	"github.com/petasbytes/gpt/internal/chat"
)

// OpenAI serves chat requests through the chat completions API using
// function calling: assistant function_call, role "function" results.
type OpenAI struct {
	client *openai.Client
}

// NewOpenAI builds a client; baseURL and httpClient are optional.
func NewOpenAI(apiKey, baseURL string, httpClient *http.Client) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg)}
}

func (o *OpenAI) Complete(ctx context.Context, req chat.Request) (chat.Response, error) {
	creq := openai.ChatCompletionRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
		Messages:    openaiMessages(req.Messages),
	}
	for _, d := range req.Tools {
		creq.Functions = append(creq.Functions, openai.FunctionDefinition{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  openaiSchema(d.InputSchema),
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		return chat.Response{}, fmt.Errorf("%w: %w", chat.ErrService, err)
	}
	if len(resp.Choices) == 0 {
		return chat.Response{}, fmt.Errorf("%w: response has no choices", chat.ErrService)
	}

	choice := resp.Choices[0]
	out := chat.Response{Message: chat.AssistantMessage(choice.Message.Content, nil)}
	switch choice.FinishReason {
	case openai.FinishReasonFunctionCall:
		fc := choice.Message.FunctionCall
		if fc == nil {
			return chat.Response{}, fmt.Errorf("%w: finish reason function_call without a function call", chat.ErrService)
		}
		out.Finish = chat.FinishToolCall
		out.Message.Call = &convo.Invocation{Name: fc.Name, Arguments: fc.Arguments}
	case openai.FinishReasonToolCalls:
		if len(choice.Message.ToolCalls) == 0 {
			return chat.Response{}, fmt.Errorf("%w: finish reason tool_calls without tool calls", chat.ErrService)
		}
		fn := choice.Message.ToolCalls[0].Function
		out.Finish = chat.FinishToolCall
		out.Message.Call = &convo.Invocation{Name: fn.Name, Arguments: fn.Arguments}
	case openai.FinishReasonStop:
		out.Finish = chat.FinishStop
	case openai.FinishReasonLength:
		out.Finish = chat.FinishLength
	default:
		out.Finish = chat.FinishOther
	}
	return out, nil
}

// openaiSchema drops the $schema marker; the API wants a bare object schema.
func openaiSchema(s *jsonschema.Schema) any {
	if s == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	cp := *s
	cp.Version = ""
	return &cp
}

func openaiMessages(msgs []chat.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		cm := openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
		switch m.Role {
		case chat.RoleFunction:
			cm.Name = m.Name
		case chat.RoleAssistant:
			if m.Call != nil {
				cm.FunctionCall = &openai.FunctionCall{Name: m.Call.Name, Arguments: m.Call.Arguments}
			}
		}
		out = append(out, cm)
	}
	return out
}
