package brew

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Runner starts external processes. ExecRunner is the production
// implementation; tests substitute a fake.
type Runner interface {
	LookPath(name string) (string, error)
	Start(name string, args ...string) (Process, error)
}

// Process is a started, single-shot external process.
type Process interface {
	// Done is closed once the process has exited.
	Done() <-chan struct{}
	// Result returns captured stdout and the exit error. Only valid after Done.
	Result() ([]byte, error)
	// Terminate asks the process to stop. It does not wait for exit.
	Terminate() error
}

// ExecRunner runs processes with os/exec. Grace is how long a terminated
// process may take to exit before it is killed.
type ExecRunner struct {
	Grace time.Duration
}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (r ExecRunner) Start(name string, args ...string) (Process, error) {
	cmd := exec.Command(name, args...)
	p := &execProcess{cmd: cmd, done: make(chan struct{}), grace: r.Grace}
	if p.grace <= 0 {
		p.grace = 2 * time.Second
	}
	cmd.Stdout = &p.stdout
	cmd.Stderr = &p.stderr
	setProcessGroup(cmd)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("cannot start %s: %w", name, err)
	}
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout bytes.Buffer
	stderr bytes.Buffer
	err    error
	done   chan struct{}
	grace  time.Duration
	once   sync.Once
}

func (p *execProcess) Done() <-chan struct{} { return p.done }

func (p *execProcess) Result() ([]byte, error) {
	<-p.done
	if p.err != nil {
		if msg := strings.TrimSpace(p.stderr.String()); msg != "" {
			return p.stdout.Bytes(), fmt.Errorf("%w: %s", p.err, msg)
		}
		return p.stdout.Bytes(), p.err
	}
	return p.stdout.Bytes(), nil
}

func (p *execProcess) Terminate() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	var err error
	p.once.Do(func() {
		err = terminateProcess(p.cmd.Process)
		time.AfterFunc(p.grace, func() {
			select {
			case <-p.done:
			default:
				_ = killProcess(p.cmd.Process)
			}
		})
	})
	return err
}
