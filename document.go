package xsdedit

import (
	"log/slog"
)

// Document ties a parsed schema tree to its edit history, change bus,
// and reparse cache. It is the entry point for editor frontends: load
// text, execute commands, observe changes, serialize back out.
type Document struct {
	cache   *DocumentCache
	history *History
	bus     *Bus
	logger  *slog.Logger
	root    *Node
}

// DocumentOption configures a Document.
type DocumentOption func(*Document)

// WithLogger sets the logger used for listener panics and load
// diagnostics.
func WithLogger(logger *slog.Logger) DocumentOption {
	return func(d *Document) { d.logger = logger }
}

// WithHistoryLimit caps the number of undo entries.
func WithHistoryLimit(limit int) DocumentOption {
	return func(d *Document) { d.history = NewHistoryWithLimit(limit) }
}

// NewDocument returns an empty document with no tree loaded.
func NewDocument(opts ...DocumentOption) *Document {
	d := &Document{
		cache:   NewDocumentCache(),
		history: NewHistory(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.bus = NewBus(d.logger)
	return d
}

// Load parses text into the document's tree, reusing the cached tree
// when the text is unchanged since the last load. A fresh parse clears
// the edit history; a cache hit preserves it along with all node
// identities.
func (d *Document) Load(text string) error {
	prev := d.root
	tree, err := d.cache.GetOrReparse(text)
	if err != nil {
		d.logger.Error("schema load failed", "error", err)
		return err
	}
	if tree != prev {
		d.root = tree
		d.history.Clear()
	}
	return nil
}

// Root returns the schema root, or nil before the first Load.
func (d *Document) Root() *Node { return d.root }

// Execute runs cmd through the history and marks the cache dirty.
func (d *Document) Execute(cmd Command) error {
	if d.root == nil {
		return commandErr(cmd.Description(), ErrInvalidArgument)
	}
	if err := d.history.Execute(d.bus, cmd); err != nil {
		return err
	}
	d.cache.MarkDirty()
	return nil
}

// Undo reverts the most recent edit.
func (d *Document) Undo() error {
	if err := d.history.Undo(d.bus); err != nil {
		return err
	}
	d.cache.MarkDirty()
	return nil
}

// Redo re-applies the most recently undone edit.
func (d *Document) Redo() error {
	if err := d.history.Redo(d.bus); err != nil {
		return err
	}
	d.cache.MarkDirty()
	return nil
}

// CanUndo reports whether Undo would succeed.
func (d *Document) CanUndo() bool { return d.history.CanUndo() }

// CanRedo reports whether Redo would succeed.
func (d *Document) CanRedo() bool { return d.history.CanRedo() }

// Subscribe registers a listener for changes on the node with the
// given ID and its descendants.
func (d *Document) Subscribe(id NodeID, l Listener) Subscription {
	return d.bus.Subscribe(id, l)
}

// Unsubscribe removes a listener registered with Subscribe.
func (d *Document) Unsubscribe(id NodeID, sub Subscription) {
	d.bus.Unsubscribe(id, sub)
}

// Text serializes the current tree and refreshes the cache, so loading
// the returned text again is a cache hit that keeps node identities.
func (d *Document) Text(opts SerializeOptions) (string, error) {
	if d.root == nil {
		return "", &SerializationError{Message: "no document loaded"}
	}
	text, err := Serialize(d.root, opts)
	if err != nil {
		return "", err
	}
	d.cache.Refresh(text, d.root)
	return text, nil
}

// CacheState exposes the reparse cache state, mainly for frontends
// that surface a modified indicator.
func (d *Document) CacheState() CacheState { return d.cache.State() }
