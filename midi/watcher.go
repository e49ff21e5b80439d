package midi

import (
	"context"
	"slices"
	"sync"
	"time"
)

// PortEvent is emitted when an output port appears or goes away
type PortEvent struct {
	Type PortEventType
	Name string
}

type PortEventType int

const (
	PortAppeared PortEventType = iota
	PortVanished
)

// PortWatcher polls the driver for output ports so a configured port can be
// reconnected after hot-plug.
type PortWatcher struct {
	list     func() []string
	ports    []string
	mu       sync.RWMutex
	events   chan PortEvent
	pollRate time.Duration
	timeout  time.Duration
}

// NewPortWatcher creates a watcher. A nil list means ListOutPorts.
func NewPortWatcher(list func() []string) *PortWatcher {
	if list == nil {
		list = ListOutPorts
	}
	return &PortWatcher{
		list:     list,
		events:   make(chan PortEvent, 16),
		pollRate: time.Second,
		timeout:  3 * time.Second,
	}
}

// Events returns a channel of port events. It is closed when Run returns.
func (w *PortWatcher) Events() <-chan PortEvent {
	return w.events
}

// Ports returns the ports seen by the last scan
func (w *PortWatcher) Ports() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.ports)
}

// Run starts the polling loop (blocking - run in goroutine)
func (w *PortWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollRate)
	defer ticker.Stop()
	defer close(w.events)

	// Initial scan
	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *PortWatcher) scan(ctx context.Context) {
	// Port enumeration can hang on some drivers
	ch := make(chan []string, 1)
	go func() {
		ch <- w.list()
	}()

	var now []string
	select {
	case now = <-ch:
	case <-time.After(w.timeout):
		return
	case <-ctx.Done():
		return
	}

	w.mu.Lock()
	before := w.ports
	w.ports = now
	w.mu.Unlock()

	for _, name := range now {
		if !slices.Contains(before, name) {
			w.emit(ctx, PortEvent{Type: PortAppeared, Name: name})
		}
	}
	for _, name := range before {
		if !slices.Contains(now, name) {
			w.emit(ctx, PortEvent{Type: PortVanished, Name: name})
		}
	}
}

func (w *PortWatcher) emit(ctx context.Context, ev PortEvent) {
	select {
	case w.events <- ev:
	case <-ctx.Done():
	}
}
