// Package launcher runs item actions: shell scripts in a terminal and URLs in
// the user's browser.
package launcher

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"slices"
)

// ErrInvalidURL is returned by OpenURL for anything but absolute http(s) URLs.
var ErrInvalidURL = errors.New("invalid url")

// RunFunc starts cmd. When detach is true it must not wait for the command.
type RunFunc func(cmd *exec.Cmd, detach bool) error

// Launcher implements pipeline.Launcher on top of external commands.
type Launcher struct {
	terminal []string
	opener   []string
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	run      RunFunc
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithTerminal sets the command prefix used to open a terminal. The script is
// appended as the final argument, e.g. [x-terminal-emulator -e sh -c]. With no
// prefix scripts run inline with the launcher's stdio.
func WithTerminal(argv []string) Option {
	return func(l *Launcher) { l.terminal = slices.Clone(argv) }
}

// WithOpener sets the URL opener command. The URL is appended.
func WithOpener(argv []string) Option {
	return func(l *Launcher) {
		if len(argv) > 0 {
			l.opener = slices.Clone(argv)
		}
	}
}

// WithStdio sets the streams used by inline scripts.
func WithStdio(in io.Reader, out, errOut io.Writer) Option {
	return func(l *Launcher) {
		l.stdin, l.stdout, l.stderr = in, out, errOut
	}
}

// WithRunFunc replaces process start-up. Tests use it to record commands.
func WithRunFunc(fn RunFunc) Option {
	return func(l *Launcher) { l.run = fn }
}

// New returns a Launcher with the platform's default opener.
func New(opts ...Option) *Launcher {
	l := &Launcher{
		opener: defaultOpener(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		run:    startCommand,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func defaultOpener() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler"}
	default:
		return []string{"xdg-open"}
	}
}

// RunTerminal runs script with sh, in a new terminal when one is configured.
func (l *Launcher) RunTerminal(script string) error {
	if script == "" {
		return errors.New("empty script")
	}
	if len(l.terminal) == 0 {
		c := exec.Command("sh", "-c", script)
		c.Stdin, c.Stdout, c.Stderr = l.stdin, l.stdout, l.stderr
		slog.Debug("running script inline", "script", script)
		if err := l.run(c, false); err != nil {
			return fmt.Errorf("script %q: %w", script, err)
		}
		return nil
	}

	argv := append(slices.Clone(l.terminal), script)
	slog.Debug("opening terminal", "argv", argv)
	if err := l.run(exec.Command(argv[0], argv[1:]...), true); err != nil {
		return fmt.Errorf("cannot open terminal %s: %w", argv[0], err)
	}
	return nil
}

// OpenURL hands an absolute http or https URL to the opener.
func (l *Launcher) OpenURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}

	argv := append(slices.Clone(l.opener), u.String())
	slog.Debug("opening url", "argv", argv)
	if err := l.run(exec.Command(argv[0], argv[1:]...), true); err != nil {
		return fmt.Errorf("cannot open %s: %w", raw, err)
	}
	return nil
}

func startCommand(c *exec.Cmd, detach bool) error {
	if !detach {
		return c.Run()
	}
	if err := c.Start(); err != nil {
		return err
	}
	go func() {
		if err := c.Wait(); err != nil {
			slog.Debug("detached command exited", "argv", c.Args, "reason", err)
		}
	}()
	return nil
}
