package xsdedit

import (
	"log/slog"
	"sync"
)

// ChangeKind classifies what a notification describes.
type ChangeKind int

const (
	// PropertyChanged reports a scalar mutation on a node.
	PropertyChanged ChangeKind = iota
	// ChildAdded reports a new child attached under Node.
	ChildAdded
	// ChildRemoved reports a child detached from Node.
	ChildRemoved
)

// Event describes a single structural or property change. Events fire
// on the affected node and then bubble through every ancestor, so a
// listener on the schema root observes the whole document.
type Event struct {
	Kind ChangeKind
	// Node is the node the change happened on: the mutated node for
	// property changes, the parent for child changes.
	Node *Node
	// Child is set for ChildAdded and ChildRemoved.
	Child *Node
	// Property names the mutated field for PropertyChanged.
	Property string
	Old      any
	New      any
}

// Listener receives change notifications.
type Listener interface {
	Notify(ev Event)
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func(ev Event)

func (f ListenerFunc) Notify(ev Event) { f(ev) }

// Subscription identifies a registered listener for later removal.
type Subscription uint64

type subscription struct {
	id       Subscription
	listener Listener
}

// Bus fans change events out to listeners registered per node.
// Delivery is synchronous and in registration order. A panicking
// listener is isolated: the panic is logged and remaining listeners
// still run.
type Bus struct {
	mu      sync.Mutex
	nextSub Subscription
	subs    map[NodeID][]subscription
	logger  *slog.Logger
}

// NewBus returns an empty bus. A nil logger falls back to slog.Default.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[NodeID][]subscription),
		logger: logger,
	}
}

// Subscribe registers a listener for events on the node with the given
// ID, including events bubbling up from its descendants. Subscriptions
// are keyed by node identity, so they survive undo and redo of edits
// elsewhere in the tree.
func (b *Bus) Subscribe(id NodeID, l Listener) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextSub++
	sub := b.nextSub
	b.subs[id] = append(b.subs[id], subscription{id: sub, listener: l})
	return sub
}

// Unsubscribe removes a previously registered listener. Unknown
// subscriptions are ignored.
func (b *Bus) Unsubscribe(id NodeID, sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[id]
	for i, s := range list {
		if s.id == sub {
			b.subs[id] = append(list[:i:i], list[i+1:]...)
			if len(b.subs[id]) == 0 {
				delete(b.subs, id)
			}
			return
		}
	}
}

// Publish delivers an event to listeners of the affected node and of
// every ancestor. Safe on a nil bus.
func (b *Bus) Publish(ev Event) {
	if b == nil || ev.Node == nil {
		return
	}
	for n := ev.Node; n != nil; n = n.Parent() {
		b.deliver(n.ID(), ev)
	}
}

func (b *Bus) deliver(id NodeID, ev Event) {
	b.mu.Lock()
	list := make([]subscription, len(b.subs[id]))
	copy(list, b.subs[id])
	b.mu.Unlock()

	for _, s := range list {
		b.notifyOne(s.listener, ev)
	}
}

func (b *Bus) notifyOne(l Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("listener panicked",
				"node", ev.Node.ID(),
				"panic", r)
		}
	}()
	l.Notify(ev)
}
