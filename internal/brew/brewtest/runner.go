// Package brewtest provides a scripted stand-in for the brew executable.
package brewtest

import (
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/kamusis/brewq/internal/brew"
)

// Response scripts one fake process.
type Response struct {
	Stdout []byte
	Err    error
	// Delay postpones exit. Block keeps the process running until terminated.
	Delay time.Duration
	Block bool
}

// Runner implements brew.Runner. Handle decides the response per invocation.
type Runner struct {
	Missing bool
	Handle  func(args []string) Response

	mu    sync.Mutex
	calls [][]string
	procs []*Process
}

var _ brew.Runner = (*Runner)(nil)

func (r *Runner) LookPath(name string) (string, error) {
	if r.Missing {
		return "", errors.New("executable file not found in $PATH")
	}
	return "/usr/local/bin/" + name, nil
}

func (r *Runner) Start(_ string, args ...string) (brew.Process, error) {
	resp := Response{}
	if r.Handle != nil {
		resp = r.Handle(args)
	}
	p := &Process{
		Args:   slices.Clone(args),
		stdout: resp.Stdout,
		err:    resp.Err,
		done:   make(chan struct{}),
	}
	r.mu.Lock()
	r.calls = append(r.calls, p.Args)
	r.procs = append(r.procs, p)
	r.mu.Unlock()

	switch {
	case resp.Block:
	case resp.Delay > 0:
		time.AfterFunc(resp.Delay, p.exit)
	default:
		p.exit()
	}
	return p, nil
}

// Calls returns the argument lists of every started process.
func (r *Runner) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// CallsOf counts started processes whose first argument is sub.
func (r *Runner) CallsOf(sub string) int {
	n := 0
	for _, c := range r.Calls() {
		if len(c) > 0 && c[0] == sub {
			n++
		}
	}
	return n
}

// Processes returns every started process.
func (r *Runner) Processes() []*Process {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.procs)
}

// Process is a fake brew.Process.
type Process struct {
	Args []string

	stdout     []byte
	err        error
	done       chan struct{}
	once       sync.Once
	mu         sync.Mutex
	terminated bool
}

func (p *Process) exit() { p.once.Do(func() { close(p.done) }) }

func (p *Process) Done() <-chan struct{} { return p.done }

func (p *Process) Result() ([]byte, error) {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stdout, p.err
}

func (p *Process) Terminate() error {
	if p.Exited() {
		return nil
	}
	p.mu.Lock()
	p.terminated = true
	p.stdout = nil
	p.err = errors.New("signal: terminated")
	p.mu.Unlock()
	p.exit()
	return nil
}

// Terminated reports whether Terminate was called.
func (p *Process) Terminated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminated
}

// Exited reports whether the process has finished.
func (p *Process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Catalog answers `casks`, `formulae` and `info --json=v2` from fixed data.
type Catalog struct {
	Casks    []brew.CaskInfo
	Formulae []brew.FormulaInfo
	// InfoDelay, when set, is applied to every info invocation.
	InfoDelay time.Duration
}

// Handle is suitable as Runner.Handle.
func (c *Catalog) Handle(args []string) Response {
	if len(args) == 0 {
		return Response{Err: errors.New("no command")}
	}
	switch args[0] {
	case "casks":
		var b []byte
		for _, k := range c.Casks {
			b = append(b, k.Token+"\n"...)
		}
		return Response{Stdout: b}
	case "formulae":
		var b []byte
		for _, f := range c.Formulae {
			b = append(b, f.Name+"\n"...)
		}
		return Response{Stdout: b}
	case "info":
		want := args[2:]
		m := brew.Manifest{Casks: []brew.CaskInfo{}, Formulae: []brew.FormulaInfo{}}
		for _, k := range c.Casks {
			if slices.Contains(want, k.Token) {
				m.Casks = append(m.Casks, k)
			}
		}
		for _, f := range c.Formulae {
			if slices.Contains(want, f.Name) {
				m.Formulae = append(m.Formulae, f)
			}
		}
		b, err := json.Marshal(m)
		if err != nil {
			return Response{Err: err}
		}
		return Response{Stdout: b, Delay: c.InfoDelay}
	}
	return Response{Err: errors.New("unknown command " + args[0])}
}
