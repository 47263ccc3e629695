package events

import "github.com/ramonehamilton/rifty/internal/collection"

// CollectionUpdated is dispatched after every committed change to the owned list.
const CollectionUpdated = "collection:updated"

// CollectionNotifier turns engine changes into CollectionUpdated events.
type CollectionNotifier struct {
	dispatcher *Dispatcher
}

// NewCollectionNotifier creates a notifier that dispatches through d.
func NewCollectionNotifier(d *Dispatcher) *CollectionNotifier {
	return &CollectionNotifier{dispatcher: d}
}

// CollectionChanged implements collection.Notifier.
func (n *CollectionNotifier) CollectionChanged(change collection.Change) {
	n.dispatcher.Dispatch(Event{Type: CollectionUpdated, Data: change})
}

var _ collection.Notifier = (*CollectionNotifier)(nil)
