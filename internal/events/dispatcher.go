// Package events distributes collection change events to observers.
package events

import (
	"log/slog"
	"sync"
)

// Event is a named payload delivered to observers.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Observer receives dispatched events.
type Observer interface {
	// OnEvent handles one event. An error is logged and does not stop
	// delivery to the remaining observers.
	OnEvent(event Event) error

	// Name identifies the observer in logs.
	Name() string

	// ShouldHandle reports whether the observer wants events of eventType.
	ShouldHandle(eventType string) bool
}

// Dispatcher fans events out to registered observers in registration
// order. It is safe for concurrent use.
type Dispatcher struct {
	mu        sync.RWMutex
	observers []Observer
	logger    *slog.Logger
}

// NewDispatcher creates an empty dispatcher. A nil logger means slog.Default().
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{logger: logger}
}

// Register adds an observer.
func (d *Dispatcher) Register(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.observers = append(d.observers, observer)
	d.logger.Debug("registered observer", "observer", observer.Name())
}

// Unregister removes an observer, keeping the order of the others.
func (d *Dispatcher) Unregister(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, obs := range d.observers {
		if obs == observer {
			d.observers = append(d.observers[:i:i], d.observers[i+1:]...)
			d.logger.Debug("unregistered observer", "observer", observer.Name())
			return
		}
	}
}

// Dispatch delivers event synchronously to every interested observer.
func (d *Dispatcher) Dispatch(event Event) {
	d.mu.RLock()
	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	d.mu.RUnlock()

	for _, observer := range observers {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		if err := observer.OnEvent(event); err != nil {
			d.logger.Warn("observer failed to handle event",
				"observer", observer.Name(),
				"event", event.Type,
				"error", err)
		}
	}
}

// ObserverCount returns the number of registered observers.
func (d *Dispatcher) ObserverCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.observers)
}

// FuncObserver adapts a function into an Observer for the listed event
// types, or for every type when none are listed.
type FuncObserver struct {
	name  string
	types map[string]bool
	fn    func(Event) error
}

// NewFuncObserver creates a FuncObserver.
func NewFuncObserver(name string, fn func(Event) error, eventTypes ...string) *FuncObserver {
	types := make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		types[t] = true
	}
	return &FuncObserver{name: name, types: types, fn: fn}
}

func (o *FuncObserver) OnEvent(event Event) error { return o.fn(event) }

func (o *FuncObserver) Name() string { return o.name }

func (o *FuncObserver) ShouldHandle(eventType string) bool {
	return len(o.types) == 0 || o.types[eventType]
}
