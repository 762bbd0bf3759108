package namecache

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

type fakeLister struct {
	mu    sync.Mutex
	calls int
	names []string
	err   error
	hook  func(ctx context.Context)
}

func (f *fakeLister) ListNames(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	f.calls++
	names, err, hook := slices.Clone(f.names), f.err, f.hook
	f.mu.Unlock()
	if hook != nil {
		hook(ctx)
	}
	return names, err
}

func (f *fakeLister) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func names(t *testing.T, c *Cache) []string {
	t.Helper()
	var out []string
	c.WithNames(context.Background(), func(n []string) { out = slices.Clone(n) })
	return out
}

func TestWithNames_StalenessWindow(t *testing.T) {
	l := &fakeLister{names: []string{"wget", "curl", "git"}}
	clk := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := New(l, WithClock(clk.Now))

	if got := names(t, c); !slices.Equal(got, []string{"wget", "curl", "git"}) {
		t.Fatalf("unexpected names: %v", got)
	}
	if l.Calls() != 1 {
		t.Fatalf("expected 1 listing, got %d", l.Calls())
	}

	clk.Advance(30 * time.Second)
	names(t, c)
	clk.Advance(30 * time.Second)
	names(t, c)
	if l.Calls() != 1 {
		t.Fatalf("queries within the window must not relist, got %d calls", l.Calls())
	}

	clk.Advance(time.Millisecond)
	names(t, c)
	if l.Calls() != 2 {
		t.Fatalf("query past the window must relist, got %d calls", l.Calls())
	}
}

func TestWithNames_ReplacesWholesale(t *testing.T) {
	l := &fakeLister{names: []string{"a", "b"}}
	clk := &fakeClock{t: time.Unix(0, 0)}
	c := New(l, WithClock(clk.Now), WithStaleness(time.Minute))
	names(t, c)

	l.mu.Lock()
	l.names = []string{"c"}
	l.mu.Unlock()
	clk.Advance(2 * time.Minute)

	if got := names(t, c); !slices.Equal(got, []string{"c"}) {
		t.Fatalf("expected replaced list, got %v", got)
	}
}

func TestWithNames_FailedRefreshKeepsPrevious(t *testing.T) {
	l := &fakeLister{names: []string{"wget"}}
	clk := &fakeClock{t: time.Unix(0, 0)}
	c := New(l, WithClock(clk.Now))
	names(t, c)

	l.mu.Lock()
	l.names, l.err = nil, errors.New("brew exploded")
	l.mu.Unlock()
	clk.Advance(2 * time.Minute)

	if got := names(t, c); !slices.Equal(got, []string{"wget"}) {
		t.Fatalf("expected previous list, got %v", got)
	}
	names(t, c)
	if l.Calls() != 2 {
		t.Fatalf("failed refresh must still advance the refresh time, got %d calls", l.Calls())
	}
}

func TestWithNames_CancelledRefreshRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := &fakeLister{names: []string{"wget"}, hook: func(context.Context) { cancel() }}
	clk := &fakeClock{t: time.Unix(0, 0)}
	c := New(l, WithClock(clk.Now))

	var got []string
	c.WithNames(ctx, func(n []string) { got = n })
	if len(got) != 0 {
		t.Fatalf("cancelled refresh must not install names, got %v", got)
	}

	l.mu.Lock()
	l.hook = nil
	l.mu.Unlock()
	if got := names(t, c); !slices.Equal(got, []string{"wget"}) {
		t.Fatalf("expected retry on next query, got %v", got)
	}
	if l.Calls() != 2 {
		t.Fatalf("expected 2 listings, got %d", l.Calls())
	}
}

func TestWithNames_Concurrent(t *testing.T) {
	l := &fakeLister{names: []string{"a", "b", "c"}}
	clk := &fakeClock{t: time.Unix(0, 0)}
	c := New(l, WithClock(clk.Now))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				clk.Advance(10 * time.Second)
				c.WithNames(context.Background(), func(n []string) {
					if len(n) != 3 {
						t.Errorf("torn read: %v", n)
					}
				})
			}
		}()
	}
	wg.Wait()
}

func TestInvalidate(t *testing.T) {
	l := &fakeLister{names: []string{"a"}}
	clk := &fakeClock{t: time.Unix(0, 0)}
	c := New(l, WithClock(clk.Now))
	names(t, c)
	c.Invalidate()
	names(t, c)
	if l.Calls() != 2 {
		t.Fatalf("Invalidate must force a refresh, got %d calls", l.Calls())
	}
}

func TestFileStore_SeedsAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brewq", "names.json")
	store := NewFileStore(path)
	clk := &fakeClock{t: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}

	first := &fakeLister{names: []string{"wget", "git"}}
	names(t, New(first, WithClock(clk.Now), WithStore(store)))
	if first.Calls() != 1 {
		t.Fatalf("expected initial listing, got %d", first.Calls())
	}

	// A second process within the window reuses the persisted list.
	clk.Advance(20 * time.Second)
	second := &fakeLister{names: []string{"other"}}
	got := names(t, New(second, WithClock(clk.Now), WithStore(store)))
	if second.Calls() != 0 {
		t.Fatalf("fresh snapshot must not relist, got %d calls", second.Calls())
	}
	if !slices.Equal(got, []string{"wget", "git"}) {
		t.Fatalf("unexpected seeded names: %v", got)
	}

	clk.Advance(time.Minute)
	got = names(t, New(second, WithClock(clk.Now), WithStore(store)))
	if second.Calls() != 1 || !slices.Equal(got, []string{"other"}) {
		t.Fatalf("stale snapshot must relist: calls=%d names=%v", second.Calls(), got)
	}

	snap, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !snap.RefreshedAt.Equal(clk.Now()) || !slices.Equal(snap.Names, []string{"other"}) {
		t.Fatalf("snapshot not updated: %+v", snap)
	}
}

func TestFileStore_MissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "names.json"))
	if _, err := store.Load(); err == nil {
		t.Fatalf("expected error for missing snapshot")
	}
}
