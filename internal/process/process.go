// Package process manages the external engine child process: spawn with an
// explicit environment, exit tracking, signaling, and teardown.
//
// A crashed engine is fatal to the session; this package deliberately has no
// restart or backoff logic.
package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// State represents the state of a process.
type State int

const (
	// StateRunning indicates the process is currently running.
	StateRunning State = iota
	// StateExited indicates the process has exited normally or with an error.
	StateExited
	// StateKilled indicates the process was killed by a signal.
	StateKilled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateKilled:
		return "killed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Config describes a child process to launch.
type Config struct {
	// Command is the executable to run.
	Command string

	// Args are command-line arguments.
	Args []string

	// Dir is the working directory (defaults to the parent's).
	Dir string

	// Env holds additional environment variables for the child.
	// They are merged over the parent environment for the child only;
	// the parent's environment is never mutated.
	Env map[string]string
}

// Process represents the managed child process.
//
// It wraps an exec.Cmd with lifecycle tracking, exit observation, and
// standard I/O access. It is safe for concurrent use.
type Process struct {
	// ID is the unique identifier for this process.
	ID string

	// Name is a human-readable name for the process.
	Name string

	started time.Time

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser

	// done is closed when the process exits.
	done chan struct{}

	state    atomic.Int32
	exitCode atomic.Int32

	mu      sync.RWMutex
	exitErr error

	onExit func(*Process)

	waitOnce sync.Once
}

// Option configures a Process before it starts.
type Option func(*Process)

// WithID sets a specific process id instead of a generated one.
func WithID(id string) Option {
	return func(p *Process) { p.ID = id }
}

// WithName sets a human-readable process name.
func WithName(name string) Option {
	return func(p *Process) { p.Name = name }
}

// WithExitCallback sets a callback invoked once, after the process exits
// and its state has been recorded. The callback runs on the wait goroutine.
func WithExitCallback(fn func(p *Process)) Option {
	return func(p *Process) { p.onExit = fn }
}

// Start launches the configured child process with piped standard I/O.
func Start(cfg Config, opts ...Option) (*Process, error) {
	cmd := exec.Command(cfg.Command, cfg.Args...)
	cmd.Dir = cfg.Dir

	cmd.Env = os.Environ()
	for k, v := range cfg.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	p := &Process{
		ID:   uuid.New().String(),
		Name: cfg.Command,
		cmd:  cmd,
		done: make(chan struct{}),
	}
	p.exitCode.Store(-1) // -1 indicates not exited
	for _, opt := range opts {
		opt(p)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdin.Close()
		stdout.Close()
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		stderr.Close()
		return nil, fmt.Errorf("start %s: %w", cfg.Command, err)
	}

	p.stdin = stdin
	p.stdout = stdout
	p.stderr = stderr
	p.started = time.Now()
	p.state.Store(int32(StateRunning))

	go p.waitLoop()

	return p, nil
}

// waitLoop waits for the process to exit and updates state.
func (p *Process) waitLoop() {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()

		p.mu.Lock()
		p.exitErr = err
		p.mu.Unlock()

		exitCode := 0
		state := StateExited

		if err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				exitCode = exitErr.ExitCode()
				if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
					state = StateKilled
				}
			} else {
				exitCode = -1
			}
		}

		p.exitCode.Store(int32(exitCode))
		p.state.Store(int32(state))
		close(p.done)

		if p.onExit != nil {
			p.onExit(p)
		}
	})
}

// State returns the current process state.
func (p *Process) State() State {
	return State(p.state.Load())
}

// ExitCode returns the process exit code, or -1 if it has not exited.
func (p *Process) ExitCode() int {
	return int(p.exitCode.Load())
}

// ExitError returns any error from waiting on the process.
func (p *Process) ExitError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.exitErr
}

// Done returns a channel that is closed when the process exits.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// IsRunning returns true if the process is currently running.
func (p *Process) IsRunning() bool {
	return p.State() == StateRunning
}

// PID returns the operating system process id, or -1 if not available.
func (p *Process) PID() int {
	if p.cmd.Process == nil {
		return -1
	}
	return p.cmd.Process.Pid
}

// Runtime returns the duration the process has been running.
// If the process has exited, returns the total runtime.
func (p *Process) Runtime() time.Duration {
	if p.started.IsZero() {
		return 0
	}
	return time.Since(p.started)
}

// Stdin provides write access to the process's stdin.
func (p *Process) Stdin() io.WriteCloser { return p.stdin }

// Stdout provides read access to the process's stdout.
func (p *Process) Stdout() io.ReadCloser { return p.stdout }

// Stderr provides read access to the process's stderr.
func (p *Process) Stderr() io.ReadCloser { return p.stderr }

// Signal sends a signal to the process.
// Returns an error if the process is not running.
func (p *Process) Signal(sig os.Signal) error {
	if !p.IsRunning() {
		return ErrNotRunning
	}
	if p.cmd.Process == nil {
		return ErrNotRunning
	}
	return p.cmd.Process.Signal(sig)
}

// Terminate sends SIGTERM to the process.
func (p *Process) Terminate() error {
	return p.Signal(syscall.SIGTERM)
}

// Kill sends SIGKILL to the process.
func (p *Process) Kill() error {
	return p.Signal(syscall.SIGKILL)
}

// Shutdown terminates the process, escalating to SIGKILL if it has not
// exited within the grace period. It returns once the process has exited.
func (p *Process) Shutdown(grace time.Duration) {
	if !p.IsRunning() {
		return
	}

	_ = p.Terminate()

	select {
	case <-p.done:
		return
	case <-time.After(grace):
	}

	_ = p.Kill()
	<-p.done
}

// Close closes all I/O handles associated with the process.
// This does not kill the process.
func (p *Process) Close() error {
	var errs []error

	if p.stdin != nil {
		if err := p.stdin.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close stdin: %w", err))
		}
	}
	if p.stdout != nil {
		if err := p.stdout.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close stdout: %w", err))
		}
	}
	if p.stderr != nil {
		if err := p.stderr.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close stderr: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close process I/O: %v", errs)
	}
	return nil
}

// Sentinel errors for the process package.
var (
	// ErrNotRunning is returned when operations require a running process.
	ErrNotRunning = errors.New("process not running")
)
