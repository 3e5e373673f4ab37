package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/petasbytes/gpt/convo"
)

// Approver decides whether a requested tool call may run. Implementations
// block until a decision is made.
type Approver interface {
	Approve(ctx context.Context, call convo.Invocation) (bool, error)
}

// ApproverFunc adapts a function to Approver.
type ApproverFunc func(ctx context.Context, call convo.Invocation) (bool, error)

func (f ApproverFunc) Approve(ctx context.Context, call convo.Invocation) (bool, error) {
	return f(ctx, call)
}

// DenyAll refuses every call.
var DenyAll = ApproverFunc(func(context.Context, convo.Invocation) (bool, error) { return false, nil })

// ApproveAll allows every call. Only wire it behind an explicit opt-in.
var ApproveAll = ApproverFunc(func(context.Context, convo.Invocation) (bool, error) { return true, nil })

// PromptApprover asks an operator on Out and reads the answer from In.
// Only "y" or "yes" approve; anything else, including EOF, denies.
type PromptApprover struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPromptApprover(in io.Reader, out io.Writer) *PromptApprover {
	return &PromptApprover{in: bufio.NewReader(in), out: out}
}

func (p *PromptApprover) Approve(_ context.Context, call convo.Invocation) (bool, error) {
	color.New(color.FgMagenta, color.Bold).Fprintf(p.out, "Run %s with %s? [y/N] ", call.Name, call.Args())
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read approval: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		fmt.Fprintln(p.out)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
