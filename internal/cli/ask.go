package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petasbytes/gpt/internal/runner"
	"github.com/petasbytes/gpt/internal/telemetry"
)

func newAskCmd(env Env, g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "ask AGENT PROMPT...",
		Short: "Send one prompt and print the answer",
		Long: `Sends a single prompt to AGENT and prints the final answer.

Tool calls requested by the model are shown on stderr and run only after
you approve them.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := g.agent(args[0])
			if err != nil {
				return err
			}
			svc, err := g.service(env, agent)
			if err != nil {
				return err
			}
			prompt := strings.Join(args[1:], " ")

			ctx, _ := telemetry.EnsureTurnID(cmd.Context())
			telemetry.EmitPromptFeatures(ctx, "ask", prompt)

			r := g.runner(env, svc, runner.NewPromptApprover(env.In, env.Err))
			res, err := r.Run(ctx, runner.SingleShot(agent, prompt))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(env.Out, res.Answer)
			return err
		},
	}
}
