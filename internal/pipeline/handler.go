// Package pipeline turns a query into a stream of Homebrew result batches.
//
// A Handler ranks the cached package names against the query, then fetches
// brew info for the best matches a batch at a time. Callers pull batches from
// a Stream and may stop, or cancel the query context, between or during
// batches.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kamusis/brewq/internal/brew"
)

// DefaultBatchSize is the maximum number of names sent to one brew info call.
const DefaultBatchSize = 10

// DefaultTrigger is the keyword prefix that activates the handler.
const DefaultTrigger = "brew "

// ErrUnknownItem is returned by Resolve for IDs that name no package.
var ErrUnknownItem = errors.New("unknown item")

// NameSource provides the cached package names. The slice passed to fn is
// only valid during the call.
type NameSource interface {
	WithNames(ctx context.Context, fn func(names []string))
}

// DetailSource fetches brew info for a batch of names.
type DetailSource interface {
	Info(ctx context.Context, names []string) (*brew.Manifest, error)
}

// Handler answers queries. It is safe for concurrent use.
type Handler struct {
	names     NameSource
	details   DetailSource
	launcher  Launcher
	brew      string
	trigger   string
	batchSize int
	fuzzy     bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithBatchSize sets how many names are fetched per batch.
func WithBatchSize(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.batchSize = n
		}
	}
}

// WithTrigger sets the activation keyword.
func WithTrigger(t string) Option {
	return func(h *Handler) {
		if strings.TrimSpace(t) != "" {
			h.trigger = t
		}
	}
}

// WithFuzzy enables typo-tolerant matching.
func WithFuzzy(on bool) Option {
	return func(h *Handler) { h.fuzzy = on }
}

// WithBrewCommand sets the executable used in terminal scripts.
func WithBrewCommand(path string) Option {
	return func(h *Handler) {
		if path != "" {
			h.brew = path
		}
	}
}

// New wires a Handler. The launcher runs item actions.
func New(names NameSource, details DetailSource, launcher Launcher, opts ...Option) *Handler {
	h := &Handler{
		names:     names,
		details:   details,
		launcher:  launcher,
		brew:      "brew",
		trigger:   DefaultTrigger,
		batchSize: DefaultBatchSize,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Trigger returns the activation keyword, including its trailing space.
func (h *Handler) Trigger() string { return h.trigger }

// ParseTrigger strips trigger from input and returns the trimmed query. ok is
// false when input does not start with trigger.
func ParseTrigger(input, trigger string) (query string, ok bool) {
	rest, ok := strings.CutPrefix(input, trigger)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// Search starts a query. Nothing runs until the first Stream.Next call.
// Cancelling ctx ends the stream silently and terminates any running brew.
func (h *Handler) Search(ctx context.Context, query string) *Stream {
	return &Stream{
		ctx:   ctx,
		h:     h,
		query: strings.TrimSpace(query),
		seen:  make(map[string]struct{}),
	}
}

// Resolve rebuilds the item with the given ID.
func (h *Handler) Resolve(ctx context.Context, id string) (Item, error) {
	if id == UpdateItemID {
		return h.updateItem(), nil
	}
	var kind Kind
	name, ok := strings.CutPrefix(id, Formula.prefix())
	if !ok {
		name, ok = strings.CutPrefix(id, Cask.prefix())
		kind = Cask
	}
	if !ok || name == "" {
		return Item{}, fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}

	items, err := h.fetchBatch(ctx, []string{name})
	if err != nil {
		return Item{}, err
	}
	for _, it := range items {
		if it.ID == kind.prefix()+name {
			return it, nil
		}
	}
	return Item{}, fmt.Errorf("%w: %q", ErrUnknownItem, id)
}
