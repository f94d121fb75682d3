package engine

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// process is a spawned CLI whose output can be streamed and which can be
// signalled. The indirection keeps subprocess handling out of tests.
type process interface {
	PID() int
	Stdout() io.Reader
	Stderr() io.Reader
	Wait() error
	Terminate() error
}

// launcher starts a process in a working directory.
type launcher interface {
	Launch(dir, command string, args ...string) (process, error)
}

type execLauncher struct{}

type execProcess struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr io.ReadCloser
}

func (execLauncher) Launch(dir, command string, args ...string) (process, error) {
	cmd := exec.Command(command, args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", command, err)
	}
	return &execProcess{cmd: cmd, stdout: stdout, stderr: stderr}, nil
}

func (p *execProcess) PID() int          { return p.cmd.Process.Pid }
func (p *execProcess) Stdout() io.Reader { return p.stdout }
func (p *execProcess) Stderr() io.Reader { return p.stderr }
func (p *execProcess) Wait() error       { return p.cmd.Wait() }

// Terminate asks the process to stop and kills it if it lingers.
func (p *execProcess) Terminate() error {
	proc := p.cmd.Process
	if proc == nil {
		return nil
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return proc.Kill()
	}
	time.AfterFunc(2*time.Second, func() {
		_ = proc.Kill()
	})
	return nil
}
