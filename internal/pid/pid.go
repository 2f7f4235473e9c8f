package pid

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/natefinch/atomic"
)

var ErrAlreadyRunning = errors.New("another instance is already running")

// Write writes the current process ID to the given PID file. It fails if
// the file references another process that is still alive.
func Write(path string) error {
	pid := os.Getpid()

	if other, err := read(path); err == nil && other != pid && isRunning(other) {
		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, other)
	}

	err := atomic.WriteFile(path, strings.NewReader(strconv.Itoa(pid)))
	if err != nil {
		return fmt.Errorf("unable to write pid file %s: %w", path, err)
	}
	return nil
}

// Remove removes the PID file.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unable to remove pid file %s: %w", path, err)
	}
	return nil
}

func read(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func isRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
