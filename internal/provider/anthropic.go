package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/invopop/jsonschema"

	"github.com/petasbytes/gpt/convo"
	"github.com/petasbytes/gpt/internal/chat"
)

// DefaultAnthropicModel answers for agents that name no model.
const DefaultAnthropicModel = anthropic.ModelClaude3_7SonnetLatest

// Anthropic serves chat requests through the Messages API. Tool calls map to
// tool_use/tool_result blocks with positional ids, since the text buffer has
// no room for the ids the API hands out.
type Anthropic struct {
	client anthropic.Client
}

// NewAnthropic builds a client. An empty apiKey falls back to the SDK's
// environment lookup; baseURL and httpClient are optional.
func NewAnthropic(apiKey, baseURL string, httpClient *http.Client) *Anthropic {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &Anthropic{client: anthropic.NewClient(opts...)}
}

func (a *Anthropic) Complete(ctx context.Context, req chat.Request) (chat.Response, error) {
	system, msgs := anthropicMessages(req.Messages)
	model := anthropic.Model(req.Model)
	if model == "" {
		model = DefaultAnthropicModel
	}
	params := anthropic.MessageNewParams{
		Model:       model,
		MaxTokens:   int64(req.MaxTokens),
		Messages:    msgs,
		Temperature: anthropic.Float(req.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	for _, d := range req.Tools {
		params.Tools = append(params.Tools, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        d.Name,
			Description: anthropic.String(d.Description),
			InputSchema: anthropicSchema(d.InputSchema),
		}})
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return chat.Response{}, fmt.Errorf("%w: %w", chat.ErrService, err)
	}

	var (
		text []string
		call *convo.Invocation
	)
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			text = append(text, v.Text)
		case anthropic.ToolUseBlock:
			// One call per round; later tool_use blocks are not carried.
			if call == nil {
				call = &convo.Invocation{Name: v.Name, Arguments: v.JSON.Input.Raw()}
			}
		}
	}

	resp := chat.Response{Message: chat.AssistantMessage(strings.Join(text, "\n"), nil)}
	switch msg.StopReason {
	case anthropic.StopReasonToolUse:
		if call == nil {
			return chat.Response{}, fmt.Errorf("%w: stop reason tool_use without a tool_use block", chat.ErrService)
		}
		resp.Finish = chat.FinishToolCall
		resp.Message.Call = call
	case anthropic.StopReasonEndTurn, anthropic.StopReasonStopSequence:
		resp.Finish = chat.FinishStop
	case anthropic.StopReasonMaxTokens:
		resp.Finish = chat.FinishLength
	default:
		resp.Finish = chat.FinishOther
	}
	return resp, nil
}

func anthropicSchema(s *jsonschema.Schema) anthropic.ToolInputSchemaParam {
	if s == nil {
		return anthropic.ToolInputSchemaParam{}
	}
	return anthropic.ToolInputSchemaParam{
		Properties: s.Properties,
		Required:   s.Required,
	}
}

// anthropicMessages folds system messages into one system prompt and maps
// the rest onto user/assistant messages, merging consecutive messages of
// the same role. Empty text is skipped; the API rejects empty text blocks.
func anthropicMessages(msgs []chat.Message) (string, []anthropic.MessageParam) {
	var (
		system []string
		out    []anthropic.MessageParam
		n      int
		openID string
	)
	push := func(role anthropic.MessageParamRole, blocks ...anthropic.ContentBlockParamUnion) {
		if len(blocks) == 0 {
			return
		}
		if len(out) > 0 && out[len(out)-1].Role == role {
			out[len(out)-1].Content = append(out[len(out)-1].Content, blocks...)
			return
		}
		out = append(out, anthropic.MessageParam{Role: role, Content: blocks})
	}

	for _, m := range msgs {
		switch m.Role {
		case chat.RoleSystem:
			if m.Content != "" {
				system = append(system, m.Content)
			}
		case chat.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			openID = ""
			if m.Call != nil {
				n++
				openID = fmt.Sprintf("call_%d", n)
				blocks = append(blocks, anthropic.NewToolUseBlock(openID, m.Call.Args(), m.Call.Name))
			}
			push(anthropic.MessageParamRoleAssistant, blocks...)
		case chat.RoleFunction:
			if openID != "" {
				push(anthropic.MessageParamRoleUser, toolResult(openID, m.Content))
				openID = ""
			} else if m.Content != "" {
				push(anthropic.MessageParamRoleUser, anthropic.NewTextBlock(m.Content))
			}
		default:
			if m.Content != "" {
				push(anthropic.MessageParamRoleUser, anthropic.NewTextBlock(m.Content))
			}
		}
	}
	return strings.Join(system, "\n\n"), out
}

// toolResult answers the tool_use block id. Commands with no output get a
// result without content blocks.
func toolResult(id, content string) anthropic.ContentBlockParamUnion {
	if content == "" {
		return anthropic.ContentBlockParamUnion{OfToolResult: &anthropic.ToolResultBlockParam{ToolUseID: id}}
	}
	return anthropic.NewToolResultBlock(id, content, false)
}
