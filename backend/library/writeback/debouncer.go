package writeback

import (
	"context"
	"errors"
	"sync"
	"time"
)

// FlushFunc persists whatever is dirty for key.
type FlushFunc func(ctx context.Context, key string) error

type entry struct {
	timer   *time.Timer
	running bool
	again   bool
}

// Debouncer coalesces bursts of mutations per key into a single flush that
// runs once the key has been quiet for the configured delay. A mark that
// arrives while a flush is in flight schedules one more flush, so the newest
// state always reaches the store.
type Debouncer struct {
	delay   time.Duration
	flush   FlushFunc
	OnError func(key string, err error)

	mu      sync.Mutex
	pending map[string]*entry
	closed  bool
}

// New creates a debouncer. A delay <= 0 makes Mark flush synchronously.
func New(delay time.Duration, flush FlushFunc) *Debouncer {
	return &Debouncer{
		delay:   delay,
		flush:   flush,
		pending: make(map[string]*entry),
	}
}

// Delay returns the quiescence window.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Mark records that key is dirty. It only returns an error in synchronous mode.
func (d *Debouncer) Mark(key string) error {
	d.mu.Lock()
	if d.delay <= 0 || d.closed {
		d.mu.Unlock()
		return d.flush(context.Background(), key)
	}
	e, ok := d.pending[key]
	if !ok {
		e = &entry{}
		d.pending[key] = e
	}
	switch {
	case e.running:
		e.again = true
	case e.timer != nil:
		e.timer.Reset(d.delay)
	default:
		e.timer = time.AfterFunc(d.delay, func() { d.fire(key) })
	}
	d.mu.Unlock()
	return nil
}

// Pending reports whether a flush is scheduled or running for key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

func (d *Debouncer) fire(key string) {
	d.mu.Lock()
	e, ok := d.pending[key]
	if !ok {
		d.mu.Unlock()
		return
	}
	if e.running {
		e.again = true
		d.mu.Unlock()
		return
	}
	e.running = true
	e.timer = nil
	d.mu.Unlock()

	err := d.flush(context.Background(), key)

	d.mu.Lock()
	e.running = false
	if e.again && !d.closed {
		e.again = false
		e.timer = time.AfterFunc(d.delay, func() { d.fire(key) })
	} else {
		delete(d.pending, key)
	}
	d.mu.Unlock()

	if err != nil && d.OnError != nil {
		d.OnError(key, err)
	}
}

// Flush cancels the pending timer for key and flushes right away.
func (d *Debouncer) Flush(ctx context.Context, key string) error {
	d.mu.Lock()
	if e, ok := d.pending[key]; ok {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
		if !e.running {
			delete(d.pending, key)
		}
	}
	d.mu.Unlock()
	return d.flush(ctx, key)
}

// Close stops accepting delayed marks and flushes every pending key.
func (d *Debouncer) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	keys := make([]string, 0, len(d.pending))
	for key, e := range d.pending {
		if e.timer != nil {
			e.timer.Stop()
		}
		keys = append(keys, key)
	}
	d.pending = make(map[string]*entry)
	d.mu.Unlock()

	var errs []error
	for _, key := range keys {
		if err := d.flush(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
