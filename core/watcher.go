// Package core implements the tools shared by the components of the host.
package core

import "sync"

// Observer is the interface to implement to watch events.
type Observer interface {
	NotifyCallback(event interface{})
}

// Observable provides primitives to add and remove observers and to notify
// them of new events.
type Observable interface {
	// Add adds the observer to the list of observers that will be notified of
	// new events.
	Add(observer Observer)

	// Remove removes the observer from the list thus stopping it from receiving
	// new events.
	Remove(observer Observer)

	// Notify notifies the observers of a new event.
	Notify(event interface{})
}

// Watcher is an implementation of the Observable interface. Observers are
// notified in the order they were added.
//
// - implements core.Observable
type Watcher struct {
	sync.Mutex

	observers []Observer
}

// NewWatcher creates a new empty watcher.
func NewWatcher() *Watcher {
	return &Watcher{}
}

// Add implements core.Observable. It adds the observer to the list of observers
// that will be notified of new events. Adding the same observer twice has no
// effect.
func (w *Watcher) Add(observer Observer) {
	w.Lock()
	defer w.Unlock()

	for _, obs := range w.observers {
		if obs == observer {
			return
		}
	}

	w.observers = append(w.observers, observer)
}

// Remove implements core.Observable. It removes the observer from the list thus
// stopping it from receiving new events.
func (w *Watcher) Remove(observer Observer) {
	w.Lock()
	defer w.Unlock()

	for i, obs := range w.observers {
		if obs == observer {
			w.observers = append(w.observers[:i:i], w.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of observers.
func (w *Watcher) Len() int {
	w.Lock()
	defer w.Unlock()

	return len(w.observers)
}

// Notify implements core.Observable. It notifies the observers one after each
// other. An observer can add or remove observers while being notified.
func (w *Watcher) Notify(event interface{}) {
	w.Lock()
	observers := append([]Observer{}, w.observers...)
	w.Unlock()

	for _, obs := range observers {
		obs.NotifyCallback(event)
	}
}
