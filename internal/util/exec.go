package util

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/markusressel/bmc2go/internal/ui"
)

// SafeCmdExecution runs the given executable after checking its permissions.
// The command is killed if ctx is done or the timeout elapses. Additional
// environment variables are appended to the environment of the current process.
func SafeCmdExecution(ctx context.Context, executable string, args []string, env []string, timeout time.Duration) (string, error) {
	if _, err := CheckFilePermissionsForExecution(executable); err != nil {
		return "", fmt.Errorf("cannot execute %s: %w", executable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, executable, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		ui.Warning("Command timed out: %s", executable)
		return "", fmt.Errorf("%s timed out after %s", executable, timeout)
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	if err != nil {
		ui.Debug("Command failed to execute: %s: %s", executable, strings.TrimSpace(stderr.String()))
		message := strings.TrimSpace(stderr.String())
		if len(message) > 0 {
			return "", fmt.Errorf("%w: %s", err, message)
		}
		return "", err
	}

	strout := string(out)
	strout = strings.Trim(strout, "\n")

	return strout, nil
}
