package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/queuectl/queuectl/pkg/security"
)

// runCommand executes a job's shell command with a hard wall-clock timeout.
// It returns success=true only for a clean zero exit. Every failure mode is
// reduced to a message: a non-zero exit (with a stderr snippet), a timeout
// (the child is forcibly terminated), or a command that never started.
func runCommand(command string, timeout time.Duration) (success bool, errMsg string) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// Give the child a moment to die after the kill signal before Wait
	// gives up on its pipes.
	cmd.WaitDelay = 5 * time.Second

	err := cmd.Run()
	if err == nil {
		return true, ""
	}

	if ctx.Err() == context.DeadlineExceeded {
		return false, fmt.Sprintf("command timed out after %s", timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := fmt.Sprintf("command exited with code %d", exitErr.ExitCode())
		if snippet := security.TruncateStderr(stderr.String()); snippet != "" {
			msg += ": " + snippet
		}
		return false, msg
	}

	return false, fmt.Sprintf("command could not be started: %v", err)
}
