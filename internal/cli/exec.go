package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/petasbytes/gpt/convo"
	"github.com/petasbytes/gpt/internal/runner"
	"github.com/petasbytes/gpt/internal/telemetry"
)

func newExecCmd(env Env, g *globals) *cobra.Command {
	var (
		format convo.Format
		yes    bool
	)
	cmd := &cobra.Command{
		Use:   "exec [BUFFER...|-]",
		Short: "Run the tool call pending at the end of a conversation",
		Long: `Finds the function_call turn that ends the buffer, asks for approval and
prints the raw tool result, or the denial text when refused.

When the buffer comes from stdin the approval is read from the terminal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := argText(env, args)
			if err != nil {
				return err
			}
			turns, err := convo.Decode(text, format)
			if err != nil {
				return err
			}
			call, err := runner.Pending(turns)
			if err != nil {
				return err
			}

			var approver runner.Approver = runner.ApproveAll
			if !yes {
				in := env.In
				if len(args) == 1 && args[0] == "-" {
					tty, err := env.OpenApprovals()
					if err != nil {
						return fmt.Errorf("open terminal for approval (use --yes to skip): %w", err)
					}
					defer tty.Close()
					in = tty
				}
				approver = runner.NewPromptApprover(in, env.Err)
			}

			ctx, _ := telemetry.EnsureTurnID(cmd.Context())
			r := g.runner(env, nil, approver)
			r.Out = nil
			result, err := r.Execute(ctx, call)
			if err != nil {
				return err
			}
			_, err = io.WriteString(env.Out, result)
			return err
		},
	}
	formatFlags(cmd, &format)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "run without asking")
	return cmd
}
