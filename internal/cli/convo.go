package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petasbytes/gpt/convo"
	"github.com/petasbytes/gpt/internal/runner"
	"github.com/petasbytes/gpt/internal/telemetry"
)

func newConvoCmd(env Env, g *globals) *cobra.Command {
	var (
		format convo.Format
		file   string
		write  bool
	)
	cmd := &cobra.Command{
		Use:   "convo AGENT [PROMPT...|-]",
		Short: "Continue a text conversation by one round",
		Long: `Reads a conversation buffer, sends it to AGENT and prints the new turns
followed by the delimiter of the next expected speaker.

The buffer is PROMPT, stdin when PROMPT is "-", or the --file contents with
PROMPT (stdin for "-") appended as a user turn. Tool calls are printed, never
run; pipe the output to "gpt exec" to run them.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if write && file == "" {
				return errors.New("--write needs --file")
			}
			turns, err := loadTurns(env, args[1:], file, format)
			if err != nil {
				return err
			}
			agent, err := g.agent(args[0])
			if err != nil {
				return err
			}
			// Fail before the remote call if the reply could not be written back.
			for _, role := range []string{agent.Name, convo.RoleFunctionCall} {
				if _, err := convo.Delimiter(role, format); err != nil {
					return err
				}
			}
			svc, err := g.service(env, agent)
			if err != nil {
				return err
			}

			ctx, _ := telemetry.EnsureTurnID(cmd.Context())
			if last := turns[len(turns)-1]; last.Kind() == convo.KindUser {
				telemetry.EmitPromptFeatures(ctx, "convo", last.Content)
			}

			r := g.runner(env, svc, runner.DenyAll)
			session, err := runner.Continue(agent, turns, env.Tools)
			if err != nil {
				return err
			}
			added, err := r.Step(ctx, session)
			if err != nil {
				return err
			}
			added = append(added, convo.Turn{Role: nextSpeaker(added)})

			out, err := convo.Encode(added, format)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(env.Out, out); err != nil {
				return err
			}
			if write {
				return convo.SaveConversation(file, append(turns, added...), format)
			}
			return nil
		},
	}
	formatFlags(cmd, &format)
	cmd.Flags().StringVarP(&file, "file", "f", "", "conversation file to read")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "append the new turns to --file")
	return cmd
}

// nextSpeaker is the role expected after added: the tool result after a call,
// otherwise the user.
func nextSpeaker(added []convo.Turn) string {
	if n := len(added); n > 0 && added[n-1].Kind() == convo.KindFunctionCall {
		return convo.RoleFunction
	}
	return convo.RoleUser
}

// loadTurns decodes the conversation named by args and file. With a file,
// args (or stdin for "-") are a new user turn; a blank trailing user turn is
// filled in place.
func loadTurns(env Env, args []string, file string, f convo.Format) ([]convo.Turn, error) {
	if file == "" {
		text, err := argText(env, args)
		if err != nil {
			return nil, err
		}
		return convo.Decode(text, f)
	}

	turns, err := convo.LoadConversation(file, f)
	if err != nil {
		return nil, err
	}
	prompt, err := argText(env, args)
	if err != nil {
		return nil, err
	}
	if prompt = strings.TrimRight(prompt, "\n"); prompt != "" {
		n := len(turns)
		if n > 0 && turns[n-1].Kind() == convo.KindUser && strings.TrimSpace(turns[n-1].Content) == "" {
			turns[n-1].Content = prompt
		} else {
			turns = append(turns, convo.Turn{Role: convo.RoleUser, Content: prompt})
		}
	}
	if len(turns) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", convo.ErrMalformedConversation, file)
	}
	return turns, nil
}

// argText is the buffer given on the command line, or stdin for "-".
func argText(env Env, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		b, err := io.ReadAll(env.In)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	return strings.Join(args, " "), nil
}
