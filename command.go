package xsdedit

import "fmt"

// Command is a reversible edit on a node tree. Apply performs the edit
// and Revert restores the exact prior state. Both validate before
// mutating, so a failed command leaves the tree untouched, and both
// publish change events on the given bus (nil is allowed).
type Command interface {
	Apply(bus *Bus) error
	Revert(bus *Bus) error
	Description() string
}

// mergeable lets a command absorb an immediately following command of
// the same shape, collapsing rapid edits into one history entry.
type mergeable interface {
	merge(next Command) bool
}

// AddChild inserts child under parent at the given index. An index of
// -1 appends. The child must be detached and must not be an ancestor
// of the parent.
func AddChild(parent, child *Node, index int) Command {
	return &addChildCommand{parent: parent, child: child, index: index}
}

type addChildCommand struct {
	parent *Node
	child  *Node
	index  int
}

func (c *addChildCommand) Apply(bus *Bus) error {
	if c.parent == nil || c.child == nil {
		return commandErr("add child", ErrInvalidArgument)
	}
	idx := c.index
	if idx == -1 {
		idx = c.parent.ChildCount()
	}
	if err := c.parent.insertChild(c.child, idx); err != nil {
		return commandErr("add child", err)
	}
	bus.Publish(Event{Kind: ChildAdded, Node: c.parent, Child: c.child})
	return nil
}

func (c *addChildCommand) Revert(bus *Bus) error {
	if _, err := c.parent.detachChild(c.child); err != nil {
		return commandErr("add child", err)
	}
	bus.Publish(Event{Kind: ChildRemoved, Node: c.parent, Child: c.child})
	return nil
}

func (c *addChildCommand) Description() string {
	return fmt.Sprintf("add %s", c.child.Kind())
}

// RemoveChild detaches child from its parent. Revert reinserts it at
// its original position.
func RemoveChild(child *Node) Command {
	return &removeChildCommand{child: child}
}

type removeChildCommand struct {
	child  *Node
	parent *Node
	index  int
}

func (c *removeChildCommand) Apply(bus *Bus) error {
	if c.child == nil || c.child.Parent() == nil {
		return commandErr("remove child", ErrNotAChild)
	}
	parent := c.child.Parent()
	idx, err := parent.detachChild(c.child)
	if err != nil {
		return commandErr("remove child", err)
	}
	c.parent, c.index = parent, idx
	bus.Publish(Event{Kind: ChildRemoved, Node: parent, Child: c.child})
	return nil
}

func (c *removeChildCommand) Revert(bus *Bus) error {
	if err := c.parent.insertChild(c.child, c.index); err != nil {
		return commandErr("remove child", err)
	}
	bus.Publish(Event{Kind: ChildAdded, Node: c.parent, Child: c.child})
	return nil
}

func (c *removeChildCommand) Description() string {
	return fmt.Sprintf("remove %s", c.child.Kind())
}

// Rename changes a node's name. Consecutive renames of the same node
// merge into a single history entry, so undoing a burst of keystrokes
// restores the name from before the first one.
func Rename(node *Node, name string) Command {
	return &renameCommand{node: node, name: name}
}

type renameCommand struct {
	node    *Node
	name    string
	oldName string
	applied bool
}

func (c *renameCommand) Apply(bus *Bus) error {
	if c.node == nil {
		return commandErr("rename", ErrInvalidArgument)
	}
	if c.name == "" {
		return commandErr("rename", ErrInvalidName)
	}
	if !c.applied {
		c.oldName = c.node.Name()
		c.applied = true
	}
	old := c.node.Name()
	c.node.setName(c.name)
	bus.Publish(Event{Kind: PropertyChanged, Node: c.node, Property: "name", Old: old, New: c.name})
	return nil
}

func (c *renameCommand) Revert(bus *Bus) error {
	old := c.node.Name()
	c.node.setName(c.oldName)
	bus.Publish(Event{Kind: PropertyChanged, Node: c.node, Property: "name", Old: old, New: c.oldName})
	return nil
}

func (c *renameCommand) Description() string {
	return fmt.Sprintf("rename to %q", c.name)
}

func (c *renameCommand) merge(next Command) bool {
	n, ok := next.(*renameCommand)
	if !ok || n.node != c.node {
		return false
	}
	// Keep the original oldName so one undo spans the whole burst.
	c.name = n.name
	return true
}

// ChangeCardinality sets a node's occurrence bounds.
func ChangeCardinality(node *Node, occurs Occurs) Command {
	return &cardinalityCommand{node: node, occurs: occurs}
}

type cardinalityCommand struct {
	node   *Node
	occurs Occurs
	old    Occurs
}

func (c *cardinalityCommand) Apply(bus *Bus) error {
	if c.node == nil {
		return commandErr("change cardinality", ErrInvalidArgument)
	}
	old := c.node.Occurs()
	if err := c.node.setOccurs(c.occurs); err != nil {
		return commandErr("change cardinality", err)
	}
	c.old = old
	bus.Publish(Event{Kind: PropertyChanged, Node: c.node, Property: "occurs", Old: old, New: c.occurs})
	return nil
}

func (c *cardinalityCommand) Revert(bus *Bus) error {
	old := c.node.Occurs()
	if err := c.node.setOccurs(c.old); err != nil {
		return commandErr("change cardinality", err)
	}
	bus.Publish(Event{Kind: PropertyChanged, Node: c.node, Property: "occurs", Old: old, New: c.old})
	return nil
}

func (c *cardinalityCommand) Description() string {
	return fmt.Sprintf("set occurs %s", c.occurs)
}

// DuplicateSubtree deep-copies source and inserts the copy as its next
// sibling. The copy is materialized once: redo reinserts the same
// instance, so node identities stay stable across undo and redo.
func DuplicateSubtree(source *Node) Command {
	return &duplicateCommand{source: source}
}

type duplicateCommand struct {
	source *Node
	clone  *Node
}

// Clone returns the inserted copy, once the command has been applied.
func (c *duplicateCommand) Clone() *Node { return c.clone }

func (c *duplicateCommand) Apply(bus *Bus) error {
	if c.source == nil || c.source.Parent() == nil {
		return commandErr("duplicate", ErrNotAChild)
	}
	if c.clone == nil {
		c.clone = c.source.cloneSubtree()
	}
	parent := c.source.Parent()
	if err := parent.insertChild(c.clone, c.source.Index()+1); err != nil {
		return commandErr("duplicate", err)
	}
	bus.Publish(Event{Kind: ChildAdded, Node: parent, Child: c.clone})
	return nil
}

func (c *duplicateCommand) Revert(bus *Bus) error {
	parent := c.clone.Parent()
	if _, err := parent.detachChild(c.clone); err != nil {
		return commandErr("duplicate", err)
	}
	bus.Publish(Event{Kind: ChildRemoved, Node: parent, Child: c.clone})
	return nil
}

func (c *duplicateCommand) Description() string {
	return fmt.Sprintf("duplicate %s", c.source.Kind())
}

// MoveChild detaches node from its current parent and inserts it under
// newParent at index (-1 appends). Moving a node into its own subtree
// is rejected before anything is detached.
func MoveChild(node, newParent *Node, index int) Command {
	return &moveChildCommand{node: node, newParent: newParent, newIndex: index}
}

type moveChildCommand struct {
	node      *Node
	newParent *Node
	newIndex  int
	oldParent *Node
	oldIndex  int
}

func (c *moveChildCommand) Apply(bus *Bus) error {
	if c.node == nil || c.newParent == nil {
		return commandErr("move", ErrInvalidArgument)
	}
	if c.node.Parent() == nil {
		return commandErr("move", ErrNotAChild)
	}
	if c.node == c.newParent || c.node.IsAncestorOf(c.newParent) {
		return commandErr("move", ErrCycle)
	}
	oldParent := c.node.Parent()
	oldIndex, err := oldParent.detachChild(c.node)
	if err != nil {
		return commandErr("move", err)
	}
	idx := c.newIndex
	if idx == -1 {
		idx = c.newParent.ChildCount()
	}
	if err := c.newParent.insertChild(c.node, idx); err != nil {
		// Reattach so a failed move leaves the tree unchanged.
		oldParent.insertChild(c.node, oldIndex)
		return commandErr("move", err)
	}
	c.oldParent, c.oldIndex = oldParent, oldIndex
	bus.Publish(Event{Kind: ChildRemoved, Node: oldParent, Child: c.node})
	bus.Publish(Event{Kind: ChildAdded, Node: c.newParent, Child: c.node})
	return nil
}

func (c *moveChildCommand) Revert(bus *Bus) error {
	if _, err := c.newParent.detachChild(c.node); err != nil {
		return commandErr("move", err)
	}
	if err := c.oldParent.insertChild(c.node, c.oldIndex); err != nil {
		return commandErr("move", err)
	}
	bus.Publish(Event{Kind: ChildRemoved, Node: c.newParent, Child: c.node})
	bus.Publish(Event{Kind: ChildAdded, Node: c.oldParent, Child: c.node})
	return nil
}

func (c *moveChildCommand) Description() string {
	return fmt.Sprintf("move %s", c.node.Kind())
}

// SetFacetValue changes a facet's value. Facets fixed by their base
// type reject the edit with ErrImmutableFacet.
func SetFacetValue(node *Node, value string) Command {
	return &facetValueCommand{node: node, value: value}
}

type facetValueCommand struct {
	node  *Node
	value string
	old   string
}

func (c *facetValueCommand) Apply(bus *Bus) error {
	if c.node == nil {
		return commandErr("set facet", ErrInvalidArgument)
	}
	old := c.node.Facet().Value
	if err := c.node.setFacetValue(c.value); err != nil {
		return commandErr("set facet", err)
	}
	c.old = old
	bus.Publish(Event{Kind: PropertyChanged, Node: c.node, Property: "value", Old: old, New: c.value})
	return nil
}

func (c *facetValueCommand) Revert(bus *Bus) error {
	old := c.node.Facet().Value
	if err := c.node.setFacetValue(c.old); err != nil {
		return commandErr("set facet", err)
	}
	bus.Publish(Event{Kind: PropertyChanged, Node: c.node, Property: "value", Old: old, New: c.old})
	return nil
}

func (c *facetValueCommand) Description() string {
	return fmt.Sprintf("set facet value %q", c.value)
}

// SetDocumentation replaces a node's documentation text. Consecutive
// edits of the same node's documentation merge.
func SetDocumentation(node *Node, text string) Command {
	return &documentationCommand{node: node, text: text}
}

type documentationCommand struct {
	node    *Node
	text    string
	old     string
	applied bool
}

func (c *documentationCommand) Apply(bus *Bus) error {
	if c.node == nil {
		return commandErr("set documentation", ErrInvalidArgument)
	}
	if !c.applied {
		c.old = c.node.Documentation()
		c.applied = true
	}
	old := c.node.Documentation()
	c.node.setDocumentation(c.text)
	bus.Publish(Event{Kind: PropertyChanged, Node: c.node, Property: "documentation", Old: old, New: c.text})
	return nil
}

func (c *documentationCommand) Revert(bus *Bus) error {
	old := c.node.Documentation()
	c.node.setDocumentation(c.old)
	bus.Publish(Event{Kind: PropertyChanged, Node: c.node, Property: "documentation", Old: old, New: c.old})
	return nil
}

func (c *documentationCommand) Description() string { return "edit documentation" }

func (c *documentationCommand) merge(next Command) bool {
	n, ok := next.(*documentationCommand)
	if !ok || n.node != c.node {
		return false
	}
	c.text = n.text
	return true
}

// SetTypeRef changes the type reference of an element or attribute,
// resolving it against the named types of the owning schema.
func SetTypeRef(node *Node, ref string) Command {
	return &typeRefCommand{node: node, ref: ref}
}

type typeRefCommand struct {
	node        *Node
	ref         string
	oldRef      string
	oldResolved *Node
}

func (c *typeRefCommand) Apply(bus *Bus) error {
	if c.node == nil {
		return commandErr("set type", ErrInvalidArgument)
	}
	oldRef, oldResolved := typeRefOf(c.node)
	resolved := lookupNamedType(c.node.Root(), c.ref)
	if err := c.node.setTypeRef(c.ref, resolved); err != nil {
		return commandErr("set type", err)
	}
	c.oldRef, c.oldResolved = oldRef, oldResolved
	bus.Publish(Event{Kind: PropertyChanged, Node: c.node, Property: "type", Old: oldRef, New: c.ref})
	return nil
}

func (c *typeRefCommand) Revert(bus *Bus) error {
	old, _ := typeRefOf(c.node)
	if err := c.node.setTypeRef(c.oldRef, c.oldResolved); err != nil {
		return commandErr("set type", err)
	}
	bus.Publish(Event{Kind: PropertyChanged, Node: c.node, Property: "type", Old: old, New: c.oldRef})
	return nil
}

func (c *typeRefCommand) Description() string {
	return fmt.Sprintf("set type %q", c.ref)
}

func typeRefOf(n *Node) (string, *Node) {
	switch n.Kind() {
	case KindElement:
		d := n.Element()
		return d.TypeRef, d.ResolvedType
	case KindAttribute:
		d := n.Attribute()
		return d.TypeRef, d.ResolvedType
	}
	return "", nil
}

// SetAttributeUse changes an attribute's use mode.
func SetAttributeUse(node *Node, use UseMode) Command {
	return &attributeUseCommand{node: node, use: use}
}

type attributeUseCommand struct {
	node *Node
	use  UseMode
	old  UseMode
}

func (c *attributeUseCommand) Apply(bus *Bus) error {
	if c.node == nil {
		return commandErr("set use", ErrInvalidArgument)
	}
	old := c.node.Attribute().Use
	if err := c.node.setAttributeUse(c.use); err != nil {
		return commandErr("set use", err)
	}
	c.old = old
	bus.Publish(Event{Kind: PropertyChanged, Node: c.node, Property: "use", Old: old, New: c.use})
	return nil
}

func (c *attributeUseCommand) Revert(bus *Bus) error {
	old := c.node.Attribute().Use
	if err := c.node.setAttributeUse(c.old); err != nil {
		return commandErr("set use", err)
	}
	bus.Publish(Event{Kind: PropertyChanged, Node: c.node, Property: "use", Old: old, New: c.old})
	return nil
}

func (c *attributeUseCommand) Description() string {
	return fmt.Sprintf("set use %s", c.use)
}

// Compound bundles several commands into one history entry. Apply runs
// them in order; a failure reverts the already-applied prefix. Revert
// runs in reverse order.
func Compound(description string, cmds ...Command) Command {
	return &compoundCommand{description: description, cmds: cmds}
}

type compoundCommand struct {
	description string
	cmds        []Command
}

func (c *compoundCommand) Apply(bus *Bus) error {
	for i, cmd := range c.cmds {
		if err := cmd.Apply(bus); err != nil {
			for j := i - 1; j >= 0; j-- {
				c.cmds[j].Revert(bus)
			}
			return err
		}
	}
	return nil
}

func (c *compoundCommand) Revert(bus *Bus) error {
	for i := len(c.cmds) - 1; i >= 0; i-- {
		if err := c.cmds[i].Revert(bus); err != nil {
			return err
		}
	}
	return nil
}

func (c *compoundCommand) Description() string { return c.description }
