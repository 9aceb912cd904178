package fetched

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// State is the lifecycle state of a Cell
type State int

const (
	// StateUninitialized means the cell was never loaded
	StateUninitialized State = iota
	// StateLoading means a load is in flight
	StateLoading
	// StateLoaded means the last load produced a value
	StateLoaded
	// StateFailed means the last load failed before producing a value
	StateFailed
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// Loader produces the value of a Cell
type Loader[T any] func(ctx context.Context) (T, error)

// Snapshot is a consistent view of a Cell at one instant
type Snapshot[T any] struct {
	State    State
	Value    T
	HasValue bool
	Loading  bool
	Err      error
}

// Option configures a Cell
type Option func(*options)

type options struct {
	name   string
	logger zerolog.Logger
}

// WithName names the cell in log output
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger used for load events
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

type subscriber[T any] struct {
	id int
	fn func(Snapshot[T])
}

// Cell holds the latest outcome of a Loader
type Cell[T any] struct {
	load   Loader[T]
	name   string
	logger zerolog.Logger
	group  singleflight.Group

	mu       sync.RWMutex
	value    T
	hasValue bool
	loading  bool
	err      error

	subMu       sync.Mutex
	subscribers []subscriber[T]
	nextID      int
}

// New creates an uninitialized Cell. Nothing is loaded until Get or Reload.
func New[T any](load Loader[T], opts ...Option) *Cell[T] {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	return &Cell[T]{
		load:   load,
		name:   o.name,
		logger: o.logger,
	}
}

// Value returns the last loaded value, if any
func (c *Cell[T]) Value() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.hasValue
}

// IsLoading reports whether a load is in flight
func (c *Cell[T]) IsLoading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err returns the error of the last load, or nil if it succeeded
func (c *Cell[T]) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// State returns the current lifecycle state
func (c *Cell[T]) State() State {
	return c.Snapshot().State
}

// Snapshot returns the current state of the cell
func (c *Cell[T]) Snapshot() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Cell[T]) snapshotLocked() Snapshot[T] {
	s := Snapshot[T]{
		Value:    c.value,
		HasValue: c.hasValue,
		Loading:  c.loading,
		Err:      c.err,
	}
	switch {
	case c.loading:
		s.State = StateLoading
	case c.err != nil:
		s.State = StateFailed
	case c.hasValue:
		s.State = StateLoaded
	default:
		s.State = StateUninitialized
	}
	return s
}

// Get returns the cached value, loading it first if the cell was never loaded
func (c *Cell[T]) Get(ctx context.Context) (T, error) {
	if value, ok := c.Value(); ok {
		return value, nil
	}
	if err := c.Reload(ctx); err != nil {
		var zero T
		return zero, err
	}
	value, _ := c.Value()
	return value, nil
}

// Reload loads a fresh value. A call made while a load is in flight joins it
// and returns its error. The load runs with the context of the caller that
// started it; other callers only stop waiting when their own ctx is done.
func (c *Cell[T]) Reload(ctx context.Context) error {
	ch := c.group.DoChan("reload", func() (any, error) {
		return nil, c.reload(ctx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.logger.Debug().Str("cell", c.name).Msg("Joined in-flight reload")
		}
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Cell[T]) reload(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()
	c.notify()

	c.logger.Debug().Str("cell", c.name).Msg("Reloading")
	value, err := c.load(ctx)

	c.mu.Lock()
	if err != nil {
		c.err = err
	} else {
		c.value = value
		c.hasValue = true
		c.err = nil
	}
	c.loading = false
	c.mu.Unlock()
	c.notify()

	if err != nil {
		c.logger.Debug().Err(err).Str("cell", c.name).Msg("Reload failed")
	}
	return err
}

// Subscribe registers fn to receive a Snapshot after every state change. The
// returned function removes the subscription. fn runs on the reloading
// goroutine and must not wait for Reload.
func (c *Cell[T]) Subscribe(fn func(Snapshot[T])) (cancel func()) {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subscribers = append(c.subscribers, subscriber[T]{id: id, fn: fn})
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			defer c.subMu.Unlock()
			for i, s := range c.subscribers {
				if s.id == id {
					c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

func (c *Cell[T]) notify() {
	snapshot := c.Snapshot()

	c.subMu.Lock()
	subs := make([]subscriber[T], len(c.subscribers))
	copy(subs, c.subscribers)
	c.subMu.Unlock()

	for _, s := range subs {
		s.fn(snapshot)
	}
}
