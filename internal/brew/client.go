package brew

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned by New when the brew executable cannot be resolved.
var ErrNotFound = errors.New("homebrew executable not found")

// DefaultPollInterval is how often a running brew process is checked for
// cancellation.
const DefaultPollInterval = 10 * time.Millisecond

// Client invokes the brew executable.
type Client struct {
	path   string
	runner Runner
	poll   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(c *Client) { c.runner = r }
}

// WithPollInterval sets the cancellation poll interval used while waiting on
// brew. Non-positive values keep the default.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.poll = d
		}
	}
}

// New resolves the brew executable. An empty path means "brew" on PATH.
func New(path string, opts ...Option) (*Client, error) {
	c := &Client{runner: ExecRunner{}, poll: DefaultPollInterval}
	for _, o := range opts {
		o(c)
	}
	if path == "" {
		path = "brew"
	}
	resolved, err := c.runner.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %v", ErrNotFound, path, err)
	}
	c.path = resolved
	slog.Debug("found homebrew executable", "path", resolved)
	return c, nil
}

// Path returns the resolved brew executable.
func (c *Client) Path() string { return c.path }

// ListNames returns the union of `brew casks` and `brew formulae`, casks
// first, with no marker of origin. Both listings run concurrently and may fail
// independently; a failed listing contributes whatever it printed. An error is
// returned only when every listing failed or ctx was cancelled.
func (c *Client) ListNames(ctx context.Context) ([]string, error) {
	catalogs := []string{"casks", "formulae"}
	lists := make([][]string, len(catalogs))
	errs := make([]error, len(catalogs))

	var g errgroup.Group
	for i, catalog := range catalogs {
		g.Go(func() error {
			lists[i], errs[i] = c.listCatalog(ctx, catalog)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	names := slices.Concat(lists...)
	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			slog.WarnContext(ctx, "brew listing failed", "catalog", catalogs[i], "reason", err)
		}
	}
	if failed == len(catalogs) {
		return names, fmt.Errorf("cannot list package names: %w", errors.Join(errs...))
	}
	return names, nil
}

func (c *Client) listCatalog(ctx context.Context, catalog string) ([]string, error) {
	out, err := c.run(ctx, catalog)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	var names []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if name := strings.TrimSpace(sc.Text()); name != "" {
			names = append(names, name)
		}
	}
	if err != nil {
		return names, fmt.Errorf("brew %s: %w", catalog, err)
	}
	return names, sc.Err()
}

// Info runs `brew info --json=v2` for exactly names and decodes the result.
// If ctx is cancelled while brew runs, the process is terminated, its exit is
// awaited, and ctx.Err() is returned.
func (c *Client) Info(ctx context.Context, names []string) (*Manifest, error) {
	if len(names) == 0 {
		return &Manifest{}, nil
	}
	args := append([]string{"info", "--json=v2"}, names...)
	out, err := c.run(ctx, args...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil && len(bytes.TrimSpace(out)) == 0 {
		return nil, fmt.Errorf("brew info: %w", err)
	}
	m, perr := ParseInfo(out)
	if perr != nil {
		return nil, errors.Join(perr, err)
	}
	return m, nil
}

// run starts brew with args and waits for it, polling ctx every tick.
func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	invocationsCounter.WithLabelValues(args[0]).Inc()
	p, err := c.runner.Start(c.path, args...)
	if err != nil {
		return nil, err
	}

	tick := time.NewTicker(c.poll)
	defer tick.Stop()
	for {
		select {
		case <-p.Done():
			return p.Result()
		case <-tick.C:
			if err := ctx.Err(); err != nil {
				if terr := p.Terminate(); terr != nil {
					slog.WarnContext(ctx, "cannot terminate brew", "args", args, "reason", terr)
				}
				<-p.Done()
				slog.DebugContext(ctx, "brew terminated", "args", args)
				return nil, err
			}
		}
	}
}
