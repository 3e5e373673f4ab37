package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

type RunShellCommandInput struct {
	ShellCommand string `json:"shell_command" jsonschema_description:"Shell command to execute, e.g. ls, cd ..., cat ..., curl ..."`
}

var RunShellCommandDefinition = ToolDefinition{
	Name:        "run_shell_command",
	Description: "Run shell command",
	InputSchema: RunShellCommandInputSchema,
	Function:    RunShellCommand,
}

var RunShellCommandInputSchema = GenerateSchema[RunShellCommandInput]()

// waitDelay bounds how long output pipes are drained after the process exits
// or is killed.
const waitDelay = 2 * time.Second

// RunShellCommand runs the command through "sh -c" and returns its stdout.
// A non-zero exit is an error carrying the exit status and stderr. Cancelling
// ctx kills the command and everything it started.
func RunShellCommand(ctx context.Context, input json.RawMessage) (string, error) {
	var in RunShellCommandInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", err
	}
	if strings.TrimSpace(in.ShellCommand) == "" {
		return "", fmt.Errorf("shell_command is empty")
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", in.ShellCommand)
	killGroupOnCancel(cmd)
	cmd.WaitDelay = waitDelay
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err == nil {
		return string(out), nil
	}
	if cerr := ctx.Err(); cerr != nil {
		return "", fmt.Errorf("command %q stopped: %w", in.ShellCommand, cerr)
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return "", err
	}
	msg := strings.TrimSpace(stderr.String())
	if exitErr.ExitCode() == -1 {
		// ProcessState renders as "signal: killed" and the like.
		return "", fmt.Errorf("command %q terminated by %s: %s", in.ShellCommand, exitErr.ProcessState, msg)
	}
	return "", fmt.Errorf("command %q returned non-zero exit status %d: %s", in.ShellCommand, exitErr.ExitCode(), msg)
}
