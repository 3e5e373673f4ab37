package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petasbytes/gpt/internal/config"
)

func newAgentsCmd(env Env, g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List configured agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			agents, err := config.LoadAgents(g.agentsPath)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(env.Out, strings.Join(agents.Names(), " "))
			return err
		},
	}
}
