package xsdedit

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/agentflare-ai/go-xmldom"
)

// Parse converts schema text into a node tree. It is deterministic and
// total: every well-formed document yields either a tree or a ParseError,
// never a partial tree. Inline and referenced type definitions both
// produce nodes; named-type references are resolved in a second pass.
// Unrecognized but well-formed constructs are preserved as opaque nodes.
func Parse(text string) (*Node, error) {
	doc, err := xmldom.Decode(strings.NewReader(text))
	if err != nil {
		line, col := locateSyntaxError(text)
		return nil, &ParseError{Line: line, Column: col, Message: err.Error()}
	}

	root := doc.DocumentElement()
	if root == nil {
		return nil, &ParseError{Line: 1, Column: 1, Message: "no root element"}
	}
	if string(root.NamespaceURI()) != XSDNamespace || string(root.LocalName()) != "schema" {
		return nil, &ParseError{Line: 1, Column: 1, Message: "not an XSD schema document"}
	}

	f := &factory{}
	schema, err := f.parseSchema(root)
	if err != nil {
		return nil, err
	}

	// Second pass: record back-references for named-type lookups.
	resolveTypeRefs(schema)

	return schema, nil
}

// locateSyntaxError re-tokenizes the text with encoding/xml to recover a
// line and column for the failure xmldom reported.
func locateSyntaxError(text string) (int, int) {
	dec := xml.NewDecoder(strings.NewReader(text))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return 0, 0
		}
		if err != nil {
			off := int(dec.InputOffset())
			if off > len(text) {
				off = len(text)
			}
			line, col := 1, 1
			for _, r := range text[:off] {
				if r == '\n' {
					line++
					col = 1
				} else {
					col++
				}
			}
			return line, col
		}
	}
}

// factory builds a node tree from a DOM. Structural errors carry the
// path of the offending construct since the DOM layer does not retain
// source positions.
type factory struct {
	targetNamespace string
	prefixes        []Prefix
}

func (f *factory) errf(path, format string, args ...any) error {
	return &ParseError{Message: path + ": " + fmt.Sprintf(format, args...)}
}

// attach adds child under parent, converting a rejected mutation (which
// indicates malformed structure, e.g. two content models under one
// simpleType) into a ParseError.
func (f *factory) attach(parent, child *Node, path string) error {
	if err := parent.insertChild(child, parent.ChildCount()); err != nil {
		return f.errf(path, "%v", err)
	}
	return nil
}

func (f *factory) parseSchema(root xmldom.Element) (*Node, error) {
	schema := newNode(KindSchema, "")
	schema.schema = &SchemaData{
		TargetNamespace:      string(root.GetAttribute("targetNamespace")),
		ElementFormDefault:   string(root.GetAttribute("elementFormDefault")),
		AttributeFormDefault: string(root.GetAttribute("attributeFormDefault")),
	}
	f.targetNamespace = schema.schema.TargetNamespace

	// Collect namespace-prefix bindings from the root element.
	attrs := root.Attributes()
	for i := uint(0); i < attrs.Length(); i++ {
		attr := attrs.Item(i)
		if attr == nil {
			continue
		}
		name := string(attr.NodeName())
		if name == "xmlns" {
			schema.schema.Prefixes = append(schema.schema.Prefixes, Prefix{URI: string(attr.NodeValue())})
		} else if rest, ok := strings.CutPrefix(name, "xmlns:"); ok {
			schema.schema.Prefixes = append(schema.schema.Prefixes, Prefix{Name: rest, URI: string(attr.NodeValue())})
		}
	}
	f.prefixes = schema.schema.Prefixes

	children := root.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil {
			continue
		}
		path := fmt.Sprintf("schema/%s[%d]", child.LocalName(), i)

		if string(child.NamespaceURI()) != XSDNamespace {
			if err := f.attach(schema, f.parseOpaque(child), path); err != nil {
				return nil, err
			}
			continue
		}

		var (
			node *Node
			err  error
		)
		switch string(child.LocalName()) {
		case "annotation":
			f.applyAnnotation(schema, child)
			continue
		case "element":
			node, err = f.parseElement(child, path)
		case "attribute":
			node, err = f.parseAttribute(child, path)
		case "complexType":
			node, err = f.parseComplexType(child, path, true)
		case "simpleType":
			node, err = f.parseSimpleType(child, path, true)
		case "group":
			node, err = f.parseGroup(child, path)
		case "attributeGroup":
			node, err = f.parseAttributeGroup(child, path)
		case "import":
			node = NewImport(string(child.GetAttribute("namespace")), string(child.GetAttribute("schemaLocation")))
		case "include":
			node = NewInclude(string(child.GetAttribute("schemaLocation")))
		default:
			// Unknown construct: preserve for round trip.
			node = f.parseOpaque(child)
		}
		if err != nil {
			return nil, err
		}
		if err := f.attach(schema, node, path); err != nil {
			return nil, err
		}
	}

	return schema, nil
}

func (f *factory) parseElement(elem xmldom.Element, path string) (*Node, error) {
	name := string(elem.GetAttribute("name"))
	ref := string(elem.GetAttribute("ref"))
	if name == "" && ref == "" {
		return nil, f.errf(path, "element requires a name or ref")
	}

	var node *Node
	if ref != "" {
		node = NewElementRef(ref)
	} else {
		node = NewElement(name)
	}

	occurs, err := f.parseOccurs(elem, path)
	if err != nil {
		return nil, err
	}
	if err := node.setOccurs(occurs); err != nil {
		return nil, f.errf(path, "%v", err)
	}

	node.element.Nillable = string(elem.GetAttribute("nillable")) == "true"
	node.element.Abstract = string(elem.GetAttribute("abstract")) == "true"
	node.element.Default = string(elem.GetAttribute("default"))
	node.element.Fixed = string(elem.GetAttribute("fixed"))
	node.element.SubstitutionGroup = string(elem.GetAttribute("substitutionGroup"))
	node.element.Form = string(elem.GetAttribute("form"))
	node.element.TypeRef = string(elem.GetAttribute("type"))

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil {
			continue
		}
		childPath := fmt.Sprintf("%s/%s[%d]", path, child.LocalName(), i)
		if string(child.NamespaceURI()) != XSDNamespace {
			if err := f.attach(node, f.parseOpaque(child), childPath); err != nil {
				return nil, err
			}
			continue
		}

		var cn *Node
		switch string(child.LocalName()) {
		case "annotation":
			f.applyAnnotation(node, child)
			continue
		case "simpleType":
			cn, err = f.parseSimpleType(child, childPath, false)
		case "complexType":
			cn, err = f.parseComplexType(child, childPath, false)
		case "key":
			cn, err = f.parseConstraint(child, KeyConstraint, childPath)
		case "keyref":
			cn, err = f.parseConstraint(child, KeyRefConstraint, childPath)
		case "unique":
			cn, err = f.parseConstraint(child, UniqueConstraint, childPath)
		default:
			cn = f.parseOpaque(child)
		}
		if err != nil {
			return nil, err
		}
		if err := f.attach(node, cn, childPath); err != nil {
			return nil, err
		}
	}

	return node, nil
}

func (f *factory) parseAttribute(elem xmldom.Element, path string) (*Node, error) {
	name := string(elem.GetAttribute("name"))
	ref := string(elem.GetAttribute("ref"))
	if name == "" && ref == "" {
		return nil, f.errf(path, "attribute requires a name or ref")
	}

	node := NewAttribute(name)
	node.attribute.Ref = ref
	node.attribute.TypeRef = string(elem.GetAttribute("type"))
	node.attribute.Default = string(elem.GetAttribute("default"))
	node.attribute.Fixed = string(elem.GetAttribute("fixed"))
	node.attribute.Form = string(elem.GetAttribute("form"))

	if use := string(elem.GetAttribute("use")); use != "" {
		switch UseMode(use) {
		case UseOptional, UseRequired, UseProhibited:
			node.attribute.Use = UseMode(use)
		default:
			return nil, f.errf(path, "invalid use %q", use)
		}
	}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil {
			continue
		}
		childPath := fmt.Sprintf("%s/%s[%d]", path, child.LocalName(), i)
		if string(child.NamespaceURI()) != XSDNamespace {
			if err := f.attach(node, f.parseOpaque(child), childPath); err != nil {
				return nil, err
			}
			continue
		}
		switch string(child.LocalName()) {
		case "annotation":
			f.applyAnnotation(node, child)
		case "simpleType":
			cn, err := f.parseSimpleType(child, childPath, false)
			if err != nil {
				return nil, err
			}
			if err := f.attach(node, cn, childPath); err != nil {
				return nil, err
			}
		default:
			if err := f.attach(node, f.parseOpaque(child), childPath); err != nil {
				return nil, err
			}
		}
	}

	return node, nil
}

func (f *factory) parseComplexType(elem xmldom.Element, path string, topLevel bool) (*Node, error) {
	name := string(elem.GetAttribute("name"))
	if topLevel && name == "" {
		return nil, f.errf(path, "top-level complexType requires a name")
	}

	node := NewComplexType(name)
	node.complexType.Mixed = string(elem.GetAttribute("mixed")) == "true"
	node.complexType.Abstract = string(elem.GetAttribute("abstract")) == "true"

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil {
			continue
		}
		childPath := fmt.Sprintf("%s/%s[%d]", path, child.LocalName(), i)
		if string(child.NamespaceURI()) != XSDNamespace {
			if err := f.attach(node, f.parseOpaque(child), childPath); err != nil {
				return nil, err
			}
			continue
		}

		var (
			cn  *Node
			err error
		)
		switch string(child.LocalName()) {
		case "annotation":
			f.applyAnnotation(node, child)
			continue
		case "sequence", "choice", "all":
			cn, err = f.parseCompositor(child, childPath)
		case "group":
			cn, err = f.parseGroup(child, childPath)
		case "attribute":
			cn, err = f.parseAttribute(child, childPath)
		case "attributeGroup":
			cn, err = f.parseAttributeGroup(child, childPath)
		case "anyAttribute":
			cn = NewAnyAttribute(string(child.GetAttribute("namespace")), string(child.GetAttribute("processContents")))
		default:
			// simpleContent, complexContent and friends flow through
			// the passthrough path untouched.
			cn = f.parseOpaque(child)
		}
		if err != nil {
			return nil, err
		}
		if err := f.attach(node, cn, childPath); err != nil {
			return nil, err
		}
	}

	return node, nil
}

func (f *factory) parseSimpleType(elem xmldom.Element, path string, topLevel bool) (*Node, error) {
	name := string(elem.GetAttribute("name"))
	if topLevel && name == "" {
		return nil, f.errf(path, "top-level simpleType requires a name")
	}

	node := NewSimpleType(name)

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil {
			continue
		}
		childPath := fmt.Sprintf("%s/%s[%d]", path, child.LocalName(), i)
		if string(child.NamespaceURI()) != XSDNamespace {
			if err := f.attach(node, f.parseOpaque(child), childPath); err != nil {
				return nil, err
			}
			continue
		}

		var (
			cn  *Node
			err error
		)
		switch string(child.LocalName()) {
		case "annotation":
			f.applyAnnotation(node, child)
			continue
		case "restriction":
			cn, err = f.parseRestriction(child, childPath)
		case "list":
			cn, err = f.parseList(child, childPath)
		case "union":
			cn, err = f.parseUnion(child, childPath)
		default:
			cn = f.parseOpaque(child)
		}
		if err != nil {
			return nil, err
		}
		if err := f.attach(node, cn, childPath); err != nil {
			return nil, err
		}
	}

	return node, nil
}

func (f *factory) parseRestriction(elem xmldom.Element, path string) (*Node, error) {
	base := string(elem.GetAttribute("base"))
	node := NewRestriction(base)

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil {
			continue
		}
		childPath := fmt.Sprintf("%s/%s[%d]", path, child.LocalName(), i)
		if string(child.NamespaceURI()) != XSDNamespace {
			if err := f.attach(node, f.parseOpaque(child), childPath); err != nil {
				return nil, err
			}
			continue
		}

		local := string(child.LocalName())
		switch local {
		case "annotation":
			f.applyAnnotation(node, child)
			continue
		case "simpleType":
			// Inline base type; the base attribute stays empty.
			cn, err := f.parseSimpleType(child, childPath, false)
			if err != nil {
				return nil, err
			}
			if err := f.attach(node, cn, childPath); err != nil {
				return nil, err
			}
			continue
		}

		kind, ok := ParseFacetKind(local)
		if !ok {
			if err := f.attach(node, f.parseOpaque(child), childPath); err != nil {
				return nil, err
			}
			continue
		}

		value := string(child.GetAttribute("value"))
		if kind == FacetAssertion {
			value = string(child.GetAttribute("test"))
		} else if child.GetAttributeNode("value") == nil {
			// An empty value attribute is legal (enumeration value="");
			// only a missing one is an error.
			return nil, f.errf(childPath, "facet %s requires a value", kind)
		}

		fn := NewFacet(kind, value)
		if string(child.GetAttribute("fixed")) == "true" {
			fn.facet.Fixed = true
		}
		// A facet whose kind is fixed for the built-in base type is
		// read-only regardless of what the document says.
		if _, fixed := FixedFacetValue(base, kind); fixed {
			fn.facet.Fixed = true
		}
		if err := f.attach(node, fn, childPath); err != nil {
			return nil, err
		}
	}

	return node, nil
}

func (f *factory) parseList(elem xmldom.Element, path string) (*Node, error) {
	node := NewList(string(elem.GetAttribute("itemType")))

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil {
			continue
		}
		childPath := fmt.Sprintf("%s/%s[%d]", path, child.LocalName(), i)
		switch {
		case string(child.NamespaceURI()) == XSDNamespace && string(child.LocalName()) == "annotation":
			f.applyAnnotation(node, child)
		case string(child.NamespaceURI()) == XSDNamespace && string(child.LocalName()) == "simpleType":
			cn, err := f.parseSimpleType(child, childPath, false)
			if err != nil {
				return nil, err
			}
			if err := f.attach(node, cn, childPath); err != nil {
				return nil, err
			}
		default:
			if err := f.attach(node, f.parseOpaque(child), childPath); err != nil {
				return nil, err
			}
		}
	}

	return node, nil
}

func (f *factory) parseUnion(elem xmldom.Element, path string) (*Node, error) {
	var members []string
	if mt := string(elem.GetAttribute("memberTypes")); mt != "" {
		members = strings.Fields(mt)
	}
	node := NewUnion(members...)

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil {
			continue
		}
		childPath := fmt.Sprintf("%s/%s[%d]", path, child.LocalName(), i)
		switch {
		case string(child.NamespaceURI()) == XSDNamespace && string(child.LocalName()) == "annotation":
			f.applyAnnotation(node, child)
		case string(child.NamespaceURI()) == XSDNamespace && string(child.LocalName()) == "simpleType":
			cn, err := f.parseSimpleType(child, childPath, false)
			if err != nil {
				return nil, err
			}
			if err := f.attach(node, cn, childPath); err != nil {
				return nil, err
			}
		default:
			if err := f.attach(node, f.parseOpaque(child), childPath); err != nil {
				return nil, err
			}
		}
	}

	return node, nil
}

func (f *factory) parseCompositor(elem xmldom.Element, path string) (*Node, error) {
	var kind Kind
	switch string(elem.LocalName()) {
	case "sequence":
		kind = KindSequence
	case "choice":
		kind = KindChoice
	case "all":
		kind = KindAll
	default:
		return nil, f.errf(path, "unknown compositor %s", elem.LocalName())
	}

	node := NewCompositor(kind)
	occurs, err := f.parseOccurs(elem, path)
	if err != nil {
		return nil, err
	}
	if err := node.setOccurs(occurs); err != nil {
		return nil, f.errf(path, "%v", err)
	}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil {
			continue
		}
		childPath := fmt.Sprintf("%s/%s[%d]", path, child.LocalName(), i)
		if string(child.NamespaceURI()) != XSDNamespace {
			if err := f.attach(node, f.parseOpaque(child), childPath); err != nil {
				return nil, err
			}
			continue
		}

		var cn *Node
		switch string(child.LocalName()) {
		case "annotation":
			f.applyAnnotation(node, child)
			continue
		case "element":
			cn, err = f.parseElement(child, childPath)
		case "group":
			cn, err = f.parseGroup(child, childPath)
		case "sequence", "choice", "all":
			cn, err = f.parseCompositor(child, childPath)
		case "any":
			cn, err = f.parseAny(child, childPath)
		default:
			cn = f.parseOpaque(child)
		}
		if err != nil {
			return nil, err
		}
		if err := f.attach(node, cn, childPath); err != nil {
			return nil, err
		}
	}

	return node, nil
}

func (f *factory) parseAny(elem xmldom.Element, path string) (*Node, error) {
	node := NewAny(string(elem.GetAttribute("namespace")), string(elem.GetAttribute("processContents")))
	occurs, err := f.parseOccurs(elem, path)
	if err != nil {
		return nil, err
	}
	if err := node.setOccurs(occurs); err != nil {
		return nil, f.errf(path, "%v", err)
	}
	return node, nil
}

func (f *factory) parseGroup(elem xmldom.Element, path string) (*Node, error) {
	name := string(elem.GetAttribute("name"))
	ref := string(elem.GetAttribute("ref"))

	var node *Node
	switch {
	case ref != "":
		node = NewGroupRef(ref)
		occurs, err := f.parseOccurs(elem, path)
		if err != nil {
			return nil, err
		}
		if err := node.setOccurs(occurs); err != nil {
			return nil, f.errf(path, "%v", err)
		}
		return node, nil
	case name != "":
		node = NewGroup(name)
	default:
		return nil, f.errf(path, "group requires a name or ref")
	}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil {
			continue
		}
		childPath := fmt.Sprintf("%s/%s[%d]", path, child.LocalName(), i)
		if string(child.NamespaceURI()) != XSDNamespace {
			if err := f.attach(node, f.parseOpaque(child), childPath); err != nil {
				return nil, err
			}
			continue
		}
		switch string(child.LocalName()) {
		case "annotation":
			f.applyAnnotation(node, child)
		case "sequence", "choice", "all":
			cn, err := f.parseCompositor(child, childPath)
			if err != nil {
				return nil, err
			}
			if err := f.attach(node, cn, childPath); err != nil {
				return nil, err
			}
		default:
			if err := f.attach(node, f.parseOpaque(child), childPath); err != nil {
				return nil, err
			}
		}
	}

	return node, nil
}

func (f *factory) parseAttributeGroup(elem xmldom.Element, path string) (*Node, error) {
	name := string(elem.GetAttribute("name"))
	ref := string(elem.GetAttribute("ref"))

	var node *Node
	switch {
	case ref != "":
		return NewAttributeGroupRef(ref), nil
	case name != "":
		node = NewAttributeGroup(name)
	default:
		return nil, f.errf(path, "attributeGroup requires a name or ref")
	}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil {
			continue
		}
		childPath := fmt.Sprintf("%s/%s[%d]", path, child.LocalName(), i)
		if string(child.NamespaceURI()) != XSDNamespace {
			if err := f.attach(node, f.parseOpaque(child), childPath); err != nil {
				return nil, err
			}
			continue
		}
		switch string(child.LocalName()) {
		case "annotation":
			f.applyAnnotation(node, child)
		case "attribute":
			cn, err := f.parseAttribute(child, childPath)
			if err != nil {
				return nil, err
			}
			if err := f.attach(node, cn, childPath); err != nil {
				return nil, err
			}
		case "attributeGroup":
			cn, err := f.parseAttributeGroup(child, childPath)
			if err != nil {
				return nil, err
			}
			if err := f.attach(node, cn, childPath); err != nil {
				return nil, err
			}
		case "anyAttribute":
			cn := NewAnyAttribute(string(child.GetAttribute("namespace")), string(child.GetAttribute("processContents")))
			if err := f.attach(node, cn, childPath); err != nil {
				return nil, err
			}
		default:
			if err := f.attach(node, f.parseOpaque(child), childPath); err != nil {
				return nil, err
			}
		}
	}

	return node, nil
}

func (f *factory) parseConstraint(elem xmldom.Element, kind ConstraintKind, path string) (*Node, error) {
	name := string(elem.GetAttribute("name"))
	if name == "" {
		return nil, f.errf(path, "%s requires a name", kind)
	}

	node := NewConstraint(kind, name, "")
	if kind == KeyRefConstraint {
		node.constraint.Refer = string(elem.GetAttribute("refer"))
	}

	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "annotation":
			f.applyAnnotation(node, child)
		case "selector":
			node.constraint.Selector = string(child.GetAttribute("xpath"))
		case "field":
			if xpath := string(child.GetAttribute("xpath")); xpath != "" {
				node.constraint.Fields = append(node.constraint.Fields, xpath)
			}
		}
	}

	if node.constraint.Selector == "" || len(node.constraint.Fields) == 0 {
		return nil, f.errf(path, "%s %s requires a selector and at least one field", kind, name)
	}

	return node, nil
}

// applyAnnotation folds an xs:annotation block into the owning node's
// documentation and appinfo payloads. The model keeps them as opaque
// strings rather than child nodes.
func (f *factory) applyAnnotation(node *Node, elem xmldom.Element) {
	children := elem.Children()
	for i := uint(0); i < children.Length(); i++ {
		child := children.Item(i)
		if child == nil || string(child.NamespaceURI()) != XSDNamespace {
			continue
		}
		switch string(child.LocalName()) {
		case "documentation":
			text := strings.TrimSpace(string(child.TextContent()))
			if node.documentation == "" {
				node.setDocumentation(text)
			} else {
				node.setDocumentation(node.documentation + "\n" + text)
			}
		case "appinfo":
			text := f.annotationContent(child)
			if node.appInfo == "" {
				node.setAppInfo(text)
			} else {
				node.setAppInfo(node.appInfo + "\n" + text)
			}
		}
	}
}

// annotationContent extracts an appinfo payload in its markup form. A
// plain-text block comes back trimmed and escaped; element children are
// re-rendered verbatim so tooling payloads keep their structure. Either
// way the stored string is what the emitter writes between the appinfo
// tags, so the payload is stable across parse and serialize.
func (f *factory) annotationContent(elem xmldom.Element) string {
	if elem.Children().Length() == 0 {
		return escapeText(strings.TrimSpace(string(elem.TextContent())))
	}
	op := f.parseOpaque(elem)
	parts := make([]string, 0, op.ChildCount())
	for _, c := range op.Children() {
		parts = append(parts, renderFragment(c, f.prefixes))
	}
	return strings.Join(parts, "\n")
}

// parseOpaque preserves an unrecognized construct: tag, namespace,
// attributes, text and children, recursively. Text interleaved with
// element children becomes ordered text-run children so mixed content
// survives the round trip. Serialization reproduces it all.
func (f *factory) parseOpaque(elem xmldom.Element) *Node {
	node := newNode(KindOpaque, "")
	node.opaque = &OpaqueData{
		Tag:   string(elem.LocalName()),
		Space: string(elem.NamespaceURI()),
	}

	attrs := elem.Attributes()
	for i := uint(0); i < attrs.Length(); i++ {
		attr := attrs.Item(i)
		if attr == nil {
			continue
		}
		node.opaque.Attrs = append(node.opaque.Attrs, OpaqueAttr{
			Name:  string(attr.NodeName()),
			Value: string(attr.NodeValue()),
		})
	}

	elems := elem.Children()
	if elems.Length() == 0 {
		node.opaque.Text = strings.TrimSpace(string(elem.TextContent()))
		return node
	}

	// Mixed content: walk the full node list so text runs keep their
	// position among the element children.
	const textNode, elementNode = 3, 1
	nodes := elem.ChildNodes()
	ei := uint(0)
	for i := uint(0); i < nodes.Length(); i++ {
		nd := nodes.Item(i)
		if nd == nil {
			continue
		}
		switch nd.NodeType() {
		case textNode:
			text := strings.TrimSpace(string(nd.NodeValue()))
			if text == "" {
				continue
			}
			run := newNode(KindOpaque, "")
			run.opaque = &OpaqueData{Text: text}
			run.parent = node
			node.children = append(node.children, run)
		case elementNode:
			child := elems.Item(ei)
			ei++
			if child == nil {
				continue
			}
			cn := f.parseOpaque(child)
			cn.parent = node
			node.children = append(node.children, cn)
		}
	}
	return node
}

// parseOccurs reads minOccurs/maxOccurs with the implicit (1, 1) default.
func (f *factory) parseOccurs(elem xmldom.Element, path string) (Occurs, error) {
	occurs := DefaultOccurs()
	if min := string(elem.GetAttribute("minOccurs")); min != "" {
		v, err := strconv.Atoi(min)
		if err != nil {
			return occurs, f.errf(path, "invalid minOccurs %q", min)
		}
		occurs.Min = v
	}
	if max := string(elem.GetAttribute("maxOccurs")); max != "" {
		if max == "unbounded" {
			occurs.Max = Unbounded
		} else {
			v, err := strconv.Atoi(max)
			if err != nil {
				return occurs, f.errf(path, "invalid maxOccurs %q", max)
			}
			occurs.Max = v
		}
	}
	return occurs, nil
}

// resolveTypeRefs walks the tree and records, on every element and
// attribute carrying a named type reference, a back-reference to the
// top-level type it denotes. Built-in types resolve to nil.
func resolveTypeRefs(schema *Node) {
	schema.Walk(func(n *Node) bool {
		switch {
		case n.element != nil && n.element.TypeRef != "":
			n.element.ResolvedType = lookupNamedType(schema, n.element.TypeRef)
		case n.attribute != nil && n.attribute.TypeRef != "":
			n.attribute.ResolvedType = lookupNamedType(schema, n.attribute.TypeRef)
		}
		return true
	})
}

// lookupNamedType finds the top-level type a reference denotes, matching
// by local name. Returns nil for built-ins and unresolved references.
func lookupNamedType(schema *Node, ref string) *Node {
	if IsBuiltinType(ref) {
		return nil
	}
	local := ref
	if idx := strings.Index(ref, ":"); idx >= 0 {
		local = ref[idx+1:]
	}
	for _, child := range schema.children {
		switch child.kind {
		case KindComplexType, KindSimpleType:
			if child.name == local {
				return child
			}
		}
	}
	return nil
}
