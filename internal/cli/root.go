// Package cli wires the gpt commands.
package cli

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/petasbytes/gpt/convo"
	"github.com/petasbytes/gpt/internal/chat"
	"github.com/petasbytes/gpt/internal/config"
	"github.com/petasbytes/gpt/internal/provider"
	"github.com/petasbytes/gpt/internal/runner"
	"github.com/petasbytes/gpt/tools"
)

// Env is what the commands read from and write to. The zero value of the
// optional fields selects the real implementations.
type Env struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	// NewService builds the chat service for an agent.
	NewService func(config.Agent, config.Credentials) (chat.Service, error)
	// OpenApprovals opens the operator's input when In carries a buffer.
	OpenApprovals func() (io.ReadCloser, error)
	Tools         *tools.Registry
}

// StdEnv is the process environment.
func StdEnv() Env {
	return Env{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

type globals struct {
	agentsPath string
	envFile    string
	verbose    bool
	log        *logrus.Logger
}

// NewRootCmd returns the gpt command tree bound to env.
func NewRootCmd(env Env) *cobra.Command {
	if env.NewService == nil {
		env.NewService = func(a config.Agent, c config.Credentials) (chat.Service, error) {
			return provider.New(a, c, nil)
		}
	}
	if env.OpenApprovals == nil {
		env.OpenApprovals = func() (io.ReadCloser, error) { return os.Open("/dev/tty") }
	}
	if env.Tools == nil {
		env.Tools = tools.Default()
	}

	g := &globals{log: logrus.New()}
	root := &cobra.Command{
		Use:           "gpt",
		Short:         "Talk to language models through plain text conversations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupOutput(env.Err, g)
		},
	}
	root.SetIn(env.In)
	root.SetOut(env.Out)
	root.SetErr(env.Err)

	pf := root.PersistentFlags()
	pf.StringVar(&g.agentsPath, "agents", config.DefaultAgentsPath(), "agents file (TOML or YAML)")
	pf.StringVar(&g.envFile, "env", ".env", "dotenv file with API keys")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newAskCmd(env, g),
		newAgentsCmd(env, g),
		newConvoCmd(env, g),
		newExecCmd(env, g),
	)
	return root
}

// setupOutput points logging at w and turns colour off unless w is a terminal.
func setupOutput(w io.Writer, g *globals) {
	level := logrus.InfoLevel
	if g.verbose {
		level = logrus.DebugLevel
	}
	formatter := &logrus.TextFormatter{DisableTimestamp: true}
	for _, l := range []*logrus.Logger{g.log, logrus.StandardLogger()} {
		l.SetOutput(w)
		l.SetLevel(level)
		l.SetFormatter(formatter)
	}

	f, ok := w.(*os.File)
	color.NoColor = !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func (g *globals) agent(name string) (config.Agent, error) {
	agents, err := config.LoadAgents(g.agentsPath)
	if err != nil {
		return config.Agent{}, err
	}
	return agents.Get(name)
}

func (g *globals) service(env Env, agent config.Agent) (chat.Service, error) {
	creds, err := config.LoadCredentials(g.envFile)
	if err != nil {
		return nil, err
	}
	return env.NewService(agent, creds)
}

func (g *globals) runner(env Env, svc chat.Service, approver runner.Approver) *runner.Runner {
	r := runner.New(svc, env.Tools, approver)
	r.Log = g.log
	r.Out = env.Err
	return r
}

// formatFlags registers the buffer format flags on cmd.
func formatFlags(cmd *cobra.Command, f *convo.Format) {
	*f = convo.DefaultFormat
	cmd.Flags().StringVar(&f.Sep, "sep", f.Sep, "delimiter separator character")
	cmd.Flags().IntVar(&f.Width, "length", f.Width, "delimiter line width")
}
