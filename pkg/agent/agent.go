// Package agent invokes the external opencode CLI agent against a fixture
// file and captures its combined output. The agent itself is a black box;
// only the text it emits is of interest to grading.
package agent

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Defaults for the external agent invocation.
const (
	DefaultBin     = "opencode"
	DefaultAgent   = "proto-event-contracts"
	DefaultTimeout = 120 * time.Second
)

// DefaultInstruction is the review instruction sent with every invocation.
// It is not case-specific.
const DefaultInstruction = "Review this proto file against the event contract standard. " +
	"List any must-fix or should-fix findings. " +
	"If the file is clean, say so explicitly."

// ErrAgentNotFound indicates the agent binary could not be resolved on PATH.
// This is fatal for an entire run, not just a single case.
var ErrAgentNotFound = errors.New("agent binary not found")

// ErrTimeout indicates an invocation exceeded its deadline. The affected
// case fails; the run continues.
var ErrTimeout = errors.New("agent timed out")

// Invocation holds the observable outcome of one agent run. Output is the
// interleaved stdout and stderr text. ExitCode is recorded but is not used
// for grading.
type Invocation struct {
	ExitCode int
	Output   string
}

// Invoker abstracts the external agent call so the run loop can be tested
// against a deterministic stub.
type Invoker interface {
	Invoke(ctx context.Context, fixturePath, modelOverride string) (Invocation, error)
}

// CLIInvoker runs the agent through its command-line interface, one child
// process per call.
type CLIInvoker struct {
	Bin         string
	Agent       string
	Instruction string
	Timeout     time.Duration
}

// NewCLIInvoker creates a CLIInvoker, filling in defaults for any zero fields.
func NewCLIInvoker(bin, agentName, instruction string, timeout time.Duration) *CLIInvoker {
	if bin == "" {
		bin = DefaultBin
	}
	if agentName == "" {
		agentName = DefaultAgent
	}
	if instruction == "" {
		instruction = DefaultInstruction
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CLIInvoker{Bin: bin, Agent: agentName, Instruction: instruction, Timeout: timeout}
}

// args builds the argv tail for a single invocation:
//
//	run --agent <agent> -f <fixture> "<instruction>" [--model <override>]
func (i *CLIInvoker) args(fixturePath, modelOverride string) []string {
	args := []string{"run", "--agent", i.Agent, "-f", fixturePath, i.Instruction}
	if modelOverride != "" {
		args = append(args, "--model", modelOverride)
	}
	return args
}

// Invoke runs the agent against fixturePath and blocks until it exits or the
// timeout elapses. The agent's own exit code is not an error: the combined
// output is returned regardless, since grading only looks at the text.
func (i *CLIInvoker) Invoke(ctx context.Context, fixturePath, modelOverride string) (Invocation, error) {
	timeout := i.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, i.Bin, i.args(fixturePath, modelOverride)...)
	out, err := cmd.CombinedOutput()

	inv := Invocation{Output: string(out)}
	if err == nil {
		return inv, nil
	}

	if errors.Is(err, exec.ErrNotFound) {
		return inv, fmt.Errorf("%w: %q is not installed or not on PATH", ErrAgentNotFound, i.Bin)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return inv, ErrTimeout
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		inv.ExitCode = exitErr.ExitCode()
		return inv, nil
	}
	return inv, fmt.Errorf("running %s: %w", i.Bin, err)
}
