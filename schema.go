package xsdedit

import (
	"fmt"
	"sync/atomic"
)

// XSDNamespace is the XML Schema namespace
const XSDNamespace = "http://www.w3.org/2001/XMLSchema"

// NodeID is an opaque identifier, unique within the process and stable for
// the node's lifetime.
type NodeID uint64

var nextNodeID atomic.Uint64

func newNodeID() NodeID {
	return NodeID(nextNodeID.Add(1))
}

// Kind identifies the schema construct a Node represents.
type Kind int

const (
	KindSchema Kind = iota
	KindElement
	KindAttribute
	KindComplexType
	KindSimpleType
	KindSequence
	KindChoice
	KindAll
	KindRestriction
	KindList
	KindUnion
	KindFacet
	KindGroup
	KindAttributeGroup
	KindConstraint
	KindImport
	KindInclude
	KindAny
	KindAnyAttribute
	KindOpaque
)

var kindNames = map[Kind]string{
	KindSchema:         "schema",
	KindElement:        "element",
	KindAttribute:      "attribute",
	KindComplexType:    "complexType",
	KindSimpleType:     "simpleType",
	KindSequence:       "sequence",
	KindChoice:         "choice",
	KindAll:            "all",
	KindRestriction:    "restriction",
	KindList:           "list",
	KindUnion:          "union",
	KindFacet:          "facet",
	KindGroup:          "group",
	KindAttributeGroup: "attributeGroup",
	KindConstraint:     "constraint",
	KindImport:         "import",
	KindInclude:        "include",
	KindAny:            "any",
	KindAnyAttribute:   "anyAttribute",
	KindOpaque:         "opaque",
}

// String returns the XSD-flavored name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsCompositor reports whether the kind is one of the particle grouping
// constructs (sequence, choice, all).
func (k Kind) IsCompositor() bool {
	return k == KindSequence || k == KindChoice || k == KindAll
}

// UseMode is the use mode of an attribute declaration.
type UseMode string

const (
	UseOptional   UseMode = "optional"
	UseRequired   UseMode = "required"
	UseProhibited UseMode = "prohibited"
)

// ConstraintKind distinguishes the identity constraint flavors.
type ConstraintKind string

const (
	KeyConstraint    ConstraintKind = "key"
	KeyRefConstraint ConstraintKind = "keyref"
	UniqueConstraint ConstraintKind = "unique"
)

// Prefix is one namespace-prefix binding declared on the schema root.
type Prefix struct {
	Name string // empty for the default namespace
	URI  string
}

// SchemaData holds the root-only settings of a schema document.
type SchemaData struct {
	TargetNamespace      string
	Prefixes             []Prefix
	ElementFormDefault   string
	AttributeFormDefault string
}

// ElementData holds the element-declaration fields of a Node.
type ElementData struct {
	Ref               string // reference to a global element, exclusive with a name
	TypeRef           string // named type reference as written, e.g. "xs:string"
	ResolvedType      *Node  // top-level type the reference resolved to, nil for built-ins
	Nillable          bool
	Abstract          bool
	Default           string
	Fixed             string
	SubstitutionGroup string
	Form              string
}

// AttributeData holds the attribute-declaration fields of a Node.
type AttributeData struct {
	Ref          string
	TypeRef      string
	ResolvedType *Node
	Use          UseMode
	Default      string
	Fixed        string
	Form         string
}

// ComplexTypeData holds the complex-type fields of a Node.
type ComplexTypeData struct {
	Mixed    bool
	Abstract bool
}

// RestrictionData holds the base-type reference of a restriction.
type RestrictionData struct {
	Base string
}

// ListData holds the item-type reference of a list simple type.
type ListData struct {
	ItemType string
}

// UnionData holds the member-type references of a union simple type.
type UnionData struct {
	MemberTypes []string
}

// FacetData holds a single constraining facet. Fixed facets reject value
// mutation; the flag is set either from the document (fixed="true") or
// because the facet kind is fixed for the restriction's built-in base type.
type FacetData struct {
	Kind  FacetKind
	Value string
	Fixed bool
}

// GroupData holds the reference field of a group or attributeGroup use.
// Named definitions carry their name in the shared name field instead.
type GroupData struct {
	Ref string
}

// ConstraintData holds an identity constraint. The selector and field
// expressions are XPath strings the model does not interpret.
type ConstraintData struct {
	Kind     ConstraintKind
	Refer    string // keyref only
	Selector string
	Fields   []string
}

// ImportData holds an import or include reference.
type ImportData struct {
	Namespace      string // imports only
	SchemaLocation string
}

// AnyData holds a wildcard (xs:any or xs:anyAttribute).
type AnyData struct {
	Namespace       string
	ProcessContents string
}

// OpaqueAttr is one attribute preserved on an opaque node.
type OpaqueAttr struct {
	Name  string
	Value string
}

// OpaqueData preserves an unrecognized but well-formed construct verbatim
// so serialization can reproduce it. A node with an empty Tag is a text
// run inside mixed content. Space carries the construct's namespace URI
// so the emitter can re-qualify the tag under the document's bindings.
type OpaqueData struct {
	Tag   string
	Space string
	Attrs []OpaqueAttr
	Text  string
}

// Node is one element of the structural document tree. Shared fields are
// hoisted here; kind-specific payloads hang off exactly one of the data
// pointers. Fields are mutated only by the command layer in this package.
type Node struct {
	id            NodeID
	kind          Kind
	name          string
	occurs        Occurs
	documentation string
	appInfo       string

	parent   *Node
	children []*Node

	schema      *SchemaData
	element     *ElementData
	attribute   *AttributeData
	complexType *ComplexTypeData
	restriction *RestrictionData
	list        *ListData
	union       *UnionData
	facet       *FacetData
	group       *GroupData
	constraint  *ConstraintData
	importRef   *ImportData
	wildcard    *AnyData
	opaque      *OpaqueData
}

func newNode(kind Kind, name string) *Node {
	return &Node{
		id:     newNodeID(),
		kind:   kind,
		name:   name,
		occurs: DefaultOccurs(),
	}
}

// NewSchema creates a detached schema root node.
func NewSchema(targetNamespace string) *Node {
	n := newNode(KindSchema, "")
	n.schema = &SchemaData{
		TargetNamespace: targetNamespace,
		Prefixes:        []Prefix{{Name: "xs", URI: XSDNamespace}},
	}
	return n
}

// NewElement creates a detached element declaration.
func NewElement(name string) *Node {
	n := newNode(KindElement, name)
	n.element = &ElementData{}
	return n
}

// NewElementRef creates a detached element reference particle.
func NewElementRef(ref string) *Node {
	n := newNode(KindElement, "")
	n.element = &ElementData{Ref: ref}
	return n
}

// NewAttribute creates a detached attribute declaration.
func NewAttribute(name string) *Node {
	n := newNode(KindAttribute, name)
	n.attribute = &AttributeData{Use: UseOptional}
	return n
}

// NewComplexType creates a detached complex type. The name may be empty
// for anonymous inline types.
func NewComplexType(name string) *Node {
	n := newNode(KindComplexType, name)
	n.complexType = &ComplexTypeData{}
	return n
}

// NewSimpleType creates a detached simple type. The name may be empty for
// anonymous inline types.
func NewSimpleType(name string) *Node {
	return newNode(KindSimpleType, name)
}

// NewCompositor creates a detached sequence, choice or all group.
func NewCompositor(kind Kind) *Node {
	if !kind.IsCompositor() {
		panic(fmt.Sprintf("xsdedit: %v is not a compositor kind", kind))
	}
	return newNode(kind, "")
}

// NewRestriction creates a detached restriction with the given base type
// reference.
func NewRestriction(base string) *Node {
	n := newNode(KindRestriction, "")
	n.restriction = &RestrictionData{Base: base}
	return n
}

// NewList creates a detached list simple-type content node.
func NewList(itemType string) *Node {
	n := newNode(KindList, "")
	n.list = &ListData{ItemType: itemType}
	return n
}

// NewUnion creates a detached union simple-type content node.
func NewUnion(memberTypes ...string) *Node {
	n := newNode(KindUnion, "")
	n.union = &UnionData{MemberTypes: memberTypes}
	return n
}

// NewFacet creates a detached facet node.
func NewFacet(kind FacetKind, value string) *Node {
	n := newNode(KindFacet, "")
	n.facet = &FacetData{Kind: kind, Value: value}
	return n
}

// NewGroup creates a detached named model group definition.
func NewGroup(name string) *Node {
	n := newNode(KindGroup, name)
	n.group = &GroupData{}
	return n
}

// NewGroupRef creates a detached model group reference particle.
func NewGroupRef(ref string) *Node {
	n := newNode(KindGroup, "")
	n.group = &GroupData{Ref: ref}
	return n
}

// NewAttributeGroup creates a detached attribute group definition.
func NewAttributeGroup(name string) *Node {
	n := newNode(KindAttributeGroup, name)
	n.group = &GroupData{}
	return n
}

// NewAttributeGroupRef creates a detached attribute group reference.
func NewAttributeGroupRef(ref string) *Node {
	n := newNode(KindAttributeGroup, "")
	n.group = &GroupData{Ref: ref}
	return n
}

// NewConstraint creates a detached identity constraint.
func NewConstraint(kind ConstraintKind, name, selector string, fields ...string) *Node {
	n := newNode(KindConstraint, name)
	n.constraint = &ConstraintData{Kind: kind, Selector: selector, Fields: fields}
	return n
}

// NewImport creates a detached import reference.
func NewImport(namespace, location string) *Node {
	n := newNode(KindImport, "")
	n.importRef = &ImportData{Namespace: namespace, SchemaLocation: location}
	return n
}

// NewInclude creates a detached include reference.
func NewInclude(location string) *Node {
	n := newNode(KindInclude, "")
	n.importRef = &ImportData{SchemaLocation: location}
	return n
}

// NewAny creates a detached element wildcard.
func NewAny(namespace, processContents string) *Node {
	n := newNode(KindAny, "")
	n.wildcard = &AnyData{Namespace: namespace, ProcessContents: processContents}
	return n
}

// NewAnyAttribute creates a detached attribute wildcard.
func NewAnyAttribute(namespace, processContents string) *Node {
	n := newNode(KindAnyAttribute, "")
	n.wildcard = &AnyData{Namespace: namespace, ProcessContents: processContents}
	return n
}

// ID returns the node's identifier.
func (n *Node) ID() NodeID { return n.id }

// Kind returns the node's kind.
func (n *Node) Kind() Kind { return n.kind }

// Name returns the node's display name; empty for anonymous constructs.
func (n *Node) Name() string { return n.name }

// Occurs returns the node's cardinality.
func (n *Node) Occurs() Occurs { return n.occurs }

// Documentation returns the node's documentation payload.
func (n *Node) Documentation() string { return n.documentation }

// AppInfo returns the node's tool-annotation payload.
func (n *Node) AppInfo() string { return n.appInfo }

// Parent returns the owning parent, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the ordered child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of owned children.
func (n *Node) ChildCount() int { return len(n.children) }

// ChildAt returns the child at index i, or nil when out of range.
func (n *Node) ChildAt(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// Index returns the node's position under its parent, or -1 for the root.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

// Root walks up to the tree root.
func (n *Node) Root() *Node {
	r := n
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// IsAncestorOf reports whether n is a strict ancestor of other.
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// Walk visits n and its subtree in document order. Returning false from
// the visitor stops the walk.
func (n *Node) Walk(visit func(*Node) bool) bool {
	if !visit(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(visit) {
			return false
		}
	}
	return true
}

// FindByID returns the node with the given identifier within n's subtree.
func (n *Node) FindByID(id NodeID) *Node {
	var found *Node
	n.Walk(func(cur *Node) bool {
		if cur.id == id {
			found = cur
			return false
		}
		return true
	})
	return found
}

// Kind payload accessors. Each returns a copy so callers outside the
// command layer cannot mutate the live node.

// Schema returns the schema payload of a KindSchema node.
func (n *Node) Schema() SchemaData {
	if n.schema == nil {
		return SchemaData{}
	}
	d := *n.schema
	d.Prefixes = append([]Prefix(nil), n.schema.Prefixes...)
	return d
}

// Element returns the element payload of a KindElement node.
func (n *Node) Element() ElementData {
	if n.element == nil {
		return ElementData{}
	}
	return *n.element
}

// Attribute returns the attribute payload of a KindAttribute node.
func (n *Node) Attribute() AttributeData {
	if n.attribute == nil {
		return AttributeData{}
	}
	return *n.attribute
}

// ComplexType returns the complex-type payload.
func (n *Node) ComplexType() ComplexTypeData {
	if n.complexType == nil {
		return ComplexTypeData{}
	}
	return *n.complexType
}

// Restriction returns the restriction payload.
func (n *Node) Restriction() RestrictionData {
	if n.restriction == nil {
		return RestrictionData{}
	}
	return *n.restriction
}

// List returns the list payload.
func (n *Node) List() ListData {
	if n.list == nil {
		return ListData{}
	}
	return *n.list
}

// Union returns the union payload.
func (n *Node) Union() UnionData {
	if n.union == nil {
		return UnionData{}
	}
	d := *n.union
	d.MemberTypes = append([]string(nil), n.union.MemberTypes...)
	return d
}

// Facet returns the facet payload.
func (n *Node) Facet() FacetData {
	if n.facet == nil {
		return FacetData{}
	}
	return *n.facet
}

// Group returns the group payload of a KindGroup or KindAttributeGroup node.
func (n *Node) Group() GroupData {
	if n.group == nil {
		return GroupData{}
	}
	return *n.group
}

// Constraint returns the identity-constraint payload.
func (n *Node) Constraint() ConstraintData {
	if n.constraint == nil {
		return ConstraintData{}
	}
	d := *n.constraint
	d.Fields = append([]string(nil), n.constraint.Fields...)
	return d
}

// Import returns the import/include payload.
func (n *Node) Import() ImportData {
	if n.importRef == nil {
		return ImportData{}
	}
	return *n.importRef
}

// Wildcard returns the any/anyAttribute payload.
func (n *Node) Wildcard() AnyData {
	if n.wildcard == nil {
		return AnyData{}
	}
	return *n.wildcard
}

// Opaque returns the preserved content of an unrecognized construct.
func (n *Node) Opaque() OpaqueData {
	if n.opaque == nil {
		return OpaqueData{}
	}
	d := *n.opaque
	d.Attrs = append([]OpaqueAttr(nil), n.opaque.Attrs...)
	return d
}

// simpleContentChild returns the restriction/list/union child of a simple
// type, or nil when none is attached yet.
func (n *Node) simpleContentChild() *Node {
	for _, c := range n.children {
		switch c.kind {
		case KindRestriction, KindList, KindUnion:
			return c
		}
	}
	return nil
}

// Mutation primitives. Unexported: all mutation outside this package goes
// through the command layer. Preconditions are validated before any state
// changes so a failure leaves the tree untouched.

func (n *Node) insertChild(child *Node, index int) error {
	if child == nil {
		return fmt.Errorf("add child to %s: %w", n.kind, ErrInvalidArgument)
	}
	if child.parent != nil {
		return fmt.Errorf("add %s to %s: %w", child.kind, n.kind, ErrAlreadyOwned)
	}
	if child == n || child.IsAncestorOf(n) {
		return fmt.Errorf("add %s to %s: %w", child.kind, n.kind, ErrCycle)
	}
	if index < 0 || index > len(n.children) {
		return fmt.Errorf("add %s to %s at %d: %w", child.kind, n.kind, index, ErrIndexOutOfRange)
	}
	if n.kind == KindSimpleType {
		switch child.kind {
		case KindRestriction, KindList, KindUnion:
			if existing := n.simpleContentChild(); existing != nil {
				return fmt.Errorf("simpleType already has %s content: %w", existing.kind, ErrContentConflict)
			}
		}
	}

	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	child.parent = n
	return nil
}

func (n *Node) detachChild(child *Node) (int, error) {
	idx := -1
	for i, c := range n.children {
		if c == child {
			idx = i
			break
		}
	}
	if idx < 0 {
		return -1, fmt.Errorf("detach %s from %s: %w", child.kind, n.kind, ErrNotAChild)
	}
	n.children = append(n.children[:idx], n.children[idx+1:]...)
	child.parent = nil
	return idx, nil
}

func (n *Node) setName(name string) {
	n.name = name
}

func (n *Node) setOccurs(o Occurs) error {
	if err := o.Validate(); err != nil {
		return err
	}
	n.occurs = o
	return nil
}

func (n *Node) setDocumentation(text string) { n.documentation = text }

func (n *Node) setAppInfo(text string) { n.appInfo = text }

func (n *Node) setFacetValue(value string) error {
	if n.facet == nil {
		return fmt.Errorf("set facet value on %s: %w", n.kind, ErrInvalidArgument)
	}
	if n.facet.Fixed {
		return fmt.Errorf("facet %s: %w", n.facet.Kind, ErrImmutableFacet)
	}
	n.facet.Value = value
	return nil
}

func (n *Node) setTypeRef(ref string, resolved *Node) error {
	switch {
	case n.element != nil:
		n.element.TypeRef = ref
		n.element.ResolvedType = resolved
	case n.attribute != nil:
		n.attribute.TypeRef = ref
		n.attribute.ResolvedType = resolved
	default:
		return fmt.Errorf("set type on %s: %w", n.kind, ErrInvalidArgument)
	}
	return nil
}

func (n *Node) setAttributeUse(use UseMode) error {
	if n.attribute == nil {
		return fmt.Errorf("set use on %s: %w", n.kind, ErrInvalidArgument)
	}
	switch use {
	case UseOptional, UseRequired, UseProhibited:
	default:
		return fmt.Errorf("use %q: %w", use, ErrInvalidArgument)
	}
	n.attribute.Use = use
	return nil
}

// cloneSubtree deep-copies the subtree rooted at n. Every copied node gets
// a fresh identifier; scalar fields and payloads are preserved.
func (n *Node) cloneSubtree() *Node {
	c := &Node{
		id:            newNodeID(),
		kind:          n.kind,
		name:          n.name,
		occurs:        n.occurs,
		documentation: n.documentation,
		appInfo:       n.appInfo,
	}
	if n.schema != nil {
		d := *n.schema
		d.Prefixes = append([]Prefix(nil), n.schema.Prefixes...)
		c.schema = &d
	}
	if n.element != nil {
		d := *n.element
		c.element = &d
	}
	if n.attribute != nil {
		d := *n.attribute
		c.attribute = &d
	}
	if n.complexType != nil {
		d := *n.complexType
		c.complexType = &d
	}
	if n.restriction != nil {
		d := *n.restriction
		c.restriction = &d
	}
	if n.list != nil {
		d := *n.list
		c.list = &d
	}
	if n.union != nil {
		d := *n.union
		d.MemberTypes = append([]string(nil), n.union.MemberTypes...)
		c.union = &d
	}
	if n.facet != nil {
		d := *n.facet
		c.facet = &d
	}
	if n.group != nil {
		d := *n.group
		c.group = &d
	}
	if n.constraint != nil {
		d := *n.constraint
		d.Fields = append([]string(nil), n.constraint.Fields...)
		c.constraint = &d
	}
	if n.importRef != nil {
		d := *n.importRef
		c.importRef = &d
	}
	if n.wildcard != nil {
		d := *n.wildcard
		c.wildcard = &d
	}
	if n.opaque != nil {
		d := *n.opaque
		d.Attrs = append([]OpaqueAttr(nil), n.opaque.Attrs...)
		c.opaque = &d
	}
	for _, child := range n.children {
		cc := child.cloneSubtree()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}

// StructurallyEqual reports whether two subtrees carry the same kinds,
// scalar fields and child order. Node identities are ignored, as are
// resolved-type pointers (which are structural back-references).
func StructurallyEqual(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind || a.name != b.name || a.occurs != b.occurs {
		return false
	}
	if a.documentation != b.documentation || a.appInfo != b.appInfo {
		return false
	}
	ae, be := a.Element(), b.Element()
	ae.ResolvedType, be.ResolvedType = nil, nil
	if ae != be {
		return false
	}
	aa, ba := a.Attribute(), b.Attribute()
	aa.ResolvedType, ba.ResolvedType = nil, nil
	if aa != ba {
		return false
	}
	if a.ComplexType() != b.ComplexType() || a.Restriction() != b.Restriction() {
		return false
	}
	if a.List() != b.List() || a.Facet() != b.Facet() || a.Group() != b.Group() {
		return false
	}
	if a.Import() != b.Import() || a.Wildcard() != b.Wildcard() {
		return false
	}
	if !equalStrings(a.Union().MemberTypes, b.Union().MemberTypes) {
		return false
	}
	ac, bc := a.Constraint(), b.Constraint()
	if ac.Kind != bc.Kind || ac.Refer != bc.Refer || ac.Selector != bc.Selector ||
		!equalStrings(ac.Fields, bc.Fields) {
		return false
	}
	as, bs := a.Schema(), b.Schema()
	if as.TargetNamespace != bs.TargetNamespace ||
		as.ElementFormDefault != bs.ElementFormDefault ||
		as.AttributeFormDefault != bs.AttributeFormDefault ||
		!equalPrefixes(as.Prefixes, bs.Prefixes) {
		return false
	}
	ao, bo := a.Opaque(), b.Opaque()
	if ao.Tag != bo.Tag || ao.Space != bo.Space || ao.Text != bo.Text || len(ao.Attrs) != len(bo.Attrs) {
		return false
	}
	for i := range ao.Attrs {
		if ao.Attrs[i] != bo.Attrs[i] {
			return false
		}
	}
	if len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if !StructurallyEqual(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalPrefixes(a, b []Prefix) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
