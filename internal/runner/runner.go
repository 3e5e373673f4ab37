package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/petasbytes/gpt/convo"
	"github.com/petasbytes/gpt/internal/chat"
	"github.com/petasbytes/gpt/internal/config"
	"github.com/petasbytes/gpt/internal/telemetry"
	"github.com/petasbytes/gpt/tools"
)

// DeniedResult is the function result recorded when the operator refuses a call.
const DeniedResult = "not allowed to run this command"

const DefaultMaxSteps = 10

// ErrStepLimit means the model was still asking for tools when the step budget ran out.
var ErrStepLimit = errors.New("tool-call step limit reached")

// State is a position in the round state machine.
type State int

const (
	AwaitingModel State = iota
	AwaitingApproval
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingModel:
		return "awaiting_model"
	case AwaitingApproval:
		return "awaiting_approval"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Runner struct {
	Service  chat.Service
	Tools    *tools.Registry
	Approver Approver
	Log      logrus.FieldLogger
	// Out receives the echo of every call, decision and result.
	Out io.Writer
	// MaxSteps caps model submissions per Run; <= 0 means DefaultMaxSteps.
	MaxSteps int
}

func New(svc chat.Service, reg *tools.Registry, approver Approver) *Runner {
	return &Runner{Service: svc, Tools: reg, Approver: approver}
}

// Session is the agent answering and the history submitted on the first step.
type Session struct {
	Agent   config.Agent
	History []chat.Message
}

// SingleShot seeds a session with the agent's system message and one prompt.
func SingleShot(agent config.Agent, prompt string) Session {
	return Session{
		Agent:   agent,
		History: []chat.Message{chat.SystemMessage(agent.SystemMsg), chat.UserMessage(prompt)},
	}
}

// Continue seeds a session with the agent's system message and a decoded
// buffer. Folded calls must name tools in reg when reg is not empty.
func Continue(agent config.Agent, turns []convo.Turn, reg *tools.Registry) (Session, error) {
	var known func(string) bool
	if reg.Len() > 0 {
		known = reg.Has
	}
	msgs, err := chat.ToMessages(turns, known)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Agent:   agent,
		History: append([]chat.Message{chat.SystemMessage(agent.SystemMsg)}, msgs...),
	}, nil
}

// Result of a Run. Turns are the new turns in buffer form: agent,
// function_call and function turns for each tool round, then the answer.
type Result struct {
	Answer  string
	Finish  chat.FinishReason
	History []chat.Message
	Turns   []convo.Turn
	Steps   int
}

// Run alternates model submissions and approved tool calls until the model
// answers without a tool call. On error the Result, when non-nil, holds the
// history up to the failure.
func (r *Runner) Run(ctx context.Context, s Session) (*Result, error) {
	ctx, turnID := telemetry.EnsureTurnID(ctx)
	log := r.logger().WithFields(logrus.Fields{"turn_id": turnID, "agent": s.Agent.Name})

	res := &Result{}
	history := slices.Clone(s.History)
	state := AwaitingModel
	var pending convo.Invocation

	for state != Done {
		log.WithField("state", state).Debug("runner: step")
		switch state {
		case AwaitingModel:
			if res.Steps >= r.maxSteps() {
				res.History = history
				return res, fmt.Errorf("%w: %d model calls", ErrStepLimit, res.Steps)
			}
			resp, err := r.complete(ctx, s.Agent, history)
			res.Steps++
			if err != nil {
				res.History = history
				return res, err
			}
			res.Turns = append(res.Turns, chat.FromResponse(resp, s.Agent.Name)...)
			if !resp.IsToolCall() {
				res.Answer = resp.Message.Content
				res.Finish = resp.Finish
				state = Done
				continue
			}
			if resp.Message.Content != "" {
				r.echo(color.FgYellow, "%s: %s\n", s.Agent.Name, resp.Message.Content)
			}
			history = append(history, resp.Message)
			pending = *resp.Message.Call
			state = AwaitingApproval

		case AwaitingApproval:
			content, err := r.Execute(ctx, pending)
			if err != nil {
				res.History = history
				return res, err
			}
			history = append(history, chat.FunctionMessage(pending.Name, content))
			res.Turns = append(res.Turns, convo.Turn{Role: convo.RoleFunction, Content: content})
			state = AwaitingModel
		}
	}

	res.History = history
	log.WithFields(logrus.Fields{"steps": res.Steps, "finish": res.Finish}).Debug("runner: done")
	return res, nil
}

// Step submits the session once and returns the reply as buffer turns,
// without running any tool.
func (r *Runner) Step(ctx context.Context, s Session) ([]convo.Turn, error) {
	ctx, _ = telemetry.EnsureTurnID(ctx)
	resp, err := r.complete(ctx, s.Agent, s.History)
	if err != nil {
		return nil, err
	}
	return chat.FromResponse(resp, s.Agent.Name), nil
}

// Execute validates call, asks the approver and, if allowed, runs the tool.
// It returns the function result content: the tool output, the tool's error
// text when it failed, or DeniedResult. Malformed calls, unknown tools and
// approval failures are returned as errors.
func (r *Runner) Execute(ctx context.Context, call convo.Invocation) (string, error) {
	if err := call.Validate(); err != nil {
		return "", err
	}
	if !r.Tools.Has(call.Name) {
		return "", fmt.Errorf("%w: %q", tools.ErrUnknownTool, call.Name)
	}
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	log := r.logger().WithFields(logrus.Fields{"turn_id": turnID, "tool": call.Name})

	r.echo(color.FgCyan, "%s\n", call.Encode())

	approver := r.Approver
	if approver == nil {
		approver = DenyAll
	}
	ok, err := approver.Approve(ctx, call)
	if err != nil {
		return "", fmt.Errorf("approval for %q: %w", call.Name, err)
	}
	telemetry.Emit("approval", map[string]any{"turn_id": turnID, "tool_name": call.Name, "approved": ok})
	if !ok {
		log.Info("tool call denied")
		r.echo(color.FgRed, "%s\n", DeniedResult)
		return DeniedResult, nil
	}

	start := time.Now()
	out, err := r.Tools.Run(ctx, call.Name, call.Args())
	fields := map[string]any{
		"turn_id":     turnID,
		"tool_name":   call.Name,
		"duration_ms": time.Since(start).Milliseconds(),
		"input_size":  len(call.Args()),
		"output_size": len(out),
		"error":       nil,
	}
	if err != nil {
		var execErr *tools.ExecError
		if !errors.As(err, &execErr) {
			return "", err
		}
		if cerr := ctx.Err(); cerr != nil {
			return "", cerr
		}
		// The model sees the failure and can react to it.
		fields["error"] = "tool error"
		log.WithError(execErr.Err).Warn("tool failed")
		out = execErr.Err.Error()
	}
	telemetry.Emit("tool_exec", fields)
	r.echo(color.FgGreen, "%s\n", out)
	return out, nil
}

func (r *Runner) complete(ctx context.Context, agent config.Agent, history []chat.Message) (chat.Response, error) {
	req := chat.Request{
		Model:       agent.Model,
		MaxTokens:   agent.MaxTokens,
		Temperature: agent.Temperature,
		Messages:    history,
	}
	if r.Tools.Len() > 0 {
		req.Tools = r.Tools.Definitions()
	}

	start := time.Now()
	resp, err := r.Service.Complete(ctx, req)
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	fields := map[string]any{
		"turn_id":     turnID,
		"model":       agent.Model,
		"messages":    len(history),
		"tools":       len(req.Tools),
		"duration_ms": time.Since(start).Milliseconds(),
		"finish":      string(resp.Finish),
		"error":       nil,
	}
	if err != nil {
		fields["error"] = "service error"
		telemetry.Emit("service_call", fields)
		if !errors.Is(err, chat.ErrService) {
			err = fmt.Errorf("%w: %w", chat.ErrService, err)
		}
		return chat.Response{}, err
	}
	telemetry.Emit("service_call", fields)
	r.logger().WithFields(logrus.Fields{"turn_id": turnID, "finish": resp.Finish}).Debug("service replied")
	return resp, nil
}

func (r *Runner) maxSteps() int {
	if r.MaxSteps <= 0 {
		return DefaultMaxSteps
	}
	return r.MaxSteps
}

func (r *Runner) logger() logrus.FieldLogger {
	if r.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		r.Log = l
	}
	return r.Log
}

func (r *Runner) echo(attr color.Attribute, format string, args ...any) {
	if r.Out == nil {
		return
	}
	color.New(attr).Fprintf(r.Out, format, args...)
}

// ErrNoPendingCall means a buffer does not end in a tool call awaiting its result.
var ErrNoPendingCall = errors.New("no pending function_call")

// Pending returns the invocation of the function_call turn that ends turns.
// Trailing turns with blank content, such as an empty function turn opened
// for the result, are ignored.
func Pending(turns []convo.Turn) (convo.Invocation, error) {
	i := len(turns) - 1
	for i >= 0 && strings.TrimSpace(turns[i].Content) == "" && turns[i].Kind() != convo.KindFunctionCall {
		i--
	}
	if i < 0 || turns[i].Kind() != convo.KindFunctionCall {
		return convo.Invocation{}, ErrNoPendingCall
	}
	return convo.ParseInvocation(turns[i].Content)
}
