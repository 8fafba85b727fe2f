package wifi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// Runner executes external commands. Tests substitute a fake.
type Runner interface {
	// Run executes a command to completion and returns its stdout.
	Run(ctx context.Context, name string, args ...string) (string, error)
	// Start launches a long-lived command.
	Start(name string, args ...string) (Process, error)
}

// Process is a handle to a long-lived command started by a Runner.
type Process interface {
	// Exited reports whether the process has terminated.
	Exited() bool
	// Stop sends SIGTERM, waits up to grace, then kills. Stopping an
	// exited process is a no-op.
	Stop(grace time.Duration) error
	// Stderr returns what the process wrote to stderr. Only complete
	// once Exited reports true.
	Stderr() string
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return stdout.String(), fmt.Errorf("%s %s: %w (stderr: %s)",
			name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// Start implements Runner.
func (ExecRunner) Start(name string, args ...string) (Process, error) {
	p := &execProcess{done: make(chan struct{})}
	p.cmd = exec.Command(name, args...)
	p.cmd.Stderr = &p.stderr

	if err := p.cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}
	go func() {
		_ = p.cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stderr bytes.Buffer
	done   chan struct{}
}

func (p *execProcess) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *execProcess) Stop(grace time.Duration) error {
	if p.Exited() {
		return nil
	}

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to signal process %d: %w", p.cmd.Process.Pid, err)
	}

	select {
	case <-p.done:
		return nil
	case <-time.After(grace):
	}

	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to kill process %d: %w", p.cmd.Process.Pid, err)
	}
	<-p.done
	return nil
}

func (p *execProcess) Stderr() string {
	if !p.Exited() {
		return ""
	}
	return strings.TrimSpace(p.stderr.String())
}
