package xsdedit

import (
	"fmt"
	"strings"
)

// SerializeOptions configures the emitter.
type SerializeOptions struct {
	// IndentWidth is the number of spaces per nesting level.
	IndentWidth int
	// PreserveComments controls whether documentation and appinfo
	// payloads are emitted as annotation blocks.
	PreserveComments bool
}

// DefaultSerializeOptions returns the options used by Document.Text.
func DefaultSerializeOptions() SerializeOptions {
	return SerializeOptions{IndentWidth: 2, PreserveComments: true}
}

// Serialize converts a node tree back into canonical schema text. Every
// construct is emitted only when it carries non-default data, so a parse
// and re-serialize of hand-written text stays close to the original.
// Reparsing the output yields a structurally equivalent tree.
func Serialize(root *Node, opts SerializeOptions) (string, error) {
	if root == nil {
		return "", &SerializationError{Message: "nil tree"}
	}
	if opts.IndentWidth < 0 {
		opts.IndentWidth = 0
	}

	s := &serializer{
		opts:   opts,
		prefix: "xs:",
	}
	if root.Kind() == KindSchema {
		// Honor the document's own prefix binding for the XSD namespace.
		s.prefixes = root.Schema().Prefixes
		for _, p := range s.prefixes {
			if p.URI == XSDNamespace {
				if p.Name == "" {
					s.prefix = ""
				} else {
					s.prefix = p.Name + ":"
				}
				break
			}
		}
		s.b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	}

	if err := s.writeNode(root, 0); err != nil {
		return "", err
	}
	return s.b.String(), nil
}

type serializer struct {
	b        strings.Builder
	opts     SerializeOptions
	prefix   string
	prefixes []Prefix
}

func (s *serializer) indent(depth int) {
	s.b.WriteString(strings.Repeat(" ", depth*s.opts.IndentWidth))
}

type xmlAttr struct {
	name  string
	value string
}

// open writes an element start tag; selfClose emits <tag/> instead.
func (s *serializer) open(depth int, tag string, attrs []xmlAttr, selfClose bool) {
	s.indent(depth)
	s.b.WriteString("<" + tag)
	for _, a := range attrs {
		s.b.WriteString(" " + a.name + `="` + escapeAttr(a.value) + `"`)
	}
	if selfClose {
		s.b.WriteString("/>\n")
	} else {
		s.b.WriteString(">\n")
	}
}

func (s *serializer) close(depth int, tag string) {
	s.indent(depth)
	s.b.WriteString("</" + tag + ">\n")
}

// writeConstruct emits a tag with attributes, an optional annotation
// block, and the node's children.
func (s *serializer) writeConstruct(n *Node, depth int, tag string, attrs []xmlAttr) error {
	hasAnnotation := s.opts.PreserveComments && (n.Documentation() != "" || n.AppInfo() != "")
	if n.ChildCount() == 0 && !hasAnnotation {
		s.open(depth, tag, attrs, true)
		return nil
	}

	s.open(depth, tag, attrs, false)
	if hasAnnotation {
		s.writeAnnotation(n, depth+1)
	}
	for _, c := range n.Children() {
		if err := s.writeNode(c, depth+1); err != nil {
			return err
		}
	}
	s.close(depth, tag)
	return nil
}

func (s *serializer) writeAnnotation(n *Node, depth int) {
	tag := s.prefix + "annotation"
	s.open(depth, tag, nil, false)
	if doc := n.Documentation(); doc != "" {
		s.indent(depth + 1)
		s.b.WriteString("<" + s.prefix + "documentation>")
		s.b.WriteString(escapeText(doc))
		s.b.WriteString("</" + s.prefix + "documentation>\n")
	}
	// Appinfo payloads are stored in markup form, so they go out as-is.
	if info := n.AppInfo(); info != "" {
		s.indent(depth + 1)
		s.b.WriteString("<" + s.prefix + "appinfo>")
		s.b.WriteString(info)
		s.b.WriteString("</" + s.prefix + "appinfo>\n")
	}
	s.close(depth, tag)
}

func occursAttrs(o Occurs) []xmlAttr {
	var attrs []xmlAttr
	if o.Min != 1 {
		attrs = append(attrs, xmlAttr{"minOccurs", fmt.Sprintf("%d", o.Min)})
	}
	if o.Max != 1 {
		attrs = append(attrs, xmlAttr{"maxOccurs", o.MaxString()})
	}
	return attrs
}

func (s *serializer) writeNode(n *Node, depth int) error {
	switch n.Kind() {
	case KindSchema:
		return s.writeSchema(n, depth)

	case KindElement:
		d := n.Element()
		var attrs []xmlAttr
		if d.Ref != "" {
			attrs = append(attrs, xmlAttr{"ref", d.Ref})
		} else {
			attrs = append(attrs, xmlAttr{"name", n.Name()})
		}
		if d.TypeRef != "" {
			attrs = append(attrs, xmlAttr{"type", d.TypeRef})
		}
		attrs = append(attrs, occursAttrs(n.Occurs())...)
		if d.Nillable {
			attrs = append(attrs, xmlAttr{"nillable", "true"})
		}
		if d.Abstract {
			attrs = append(attrs, xmlAttr{"abstract", "true"})
		}
		if d.Default != "" {
			attrs = append(attrs, xmlAttr{"default", d.Default})
		}
		if d.Fixed != "" {
			attrs = append(attrs, xmlAttr{"fixed", d.Fixed})
		}
		if d.SubstitutionGroup != "" {
			attrs = append(attrs, xmlAttr{"substitutionGroup", d.SubstitutionGroup})
		}
		if d.Form != "" {
			attrs = append(attrs, xmlAttr{"form", d.Form})
		}
		return s.writeConstruct(n, depth, s.prefix+"element", attrs)

	case KindAttribute:
		d := n.Attribute()
		var attrs []xmlAttr
		if d.Ref != "" {
			attrs = append(attrs, xmlAttr{"ref", d.Ref})
		} else {
			attrs = append(attrs, xmlAttr{"name", n.Name()})
		}
		if d.TypeRef != "" {
			attrs = append(attrs, xmlAttr{"type", d.TypeRef})
		}
		if d.Use != "" && d.Use != UseOptional {
			attrs = append(attrs, xmlAttr{"use", string(d.Use)})
		}
		if d.Default != "" {
			attrs = append(attrs, xmlAttr{"default", d.Default})
		}
		if d.Fixed != "" {
			attrs = append(attrs, xmlAttr{"fixed", d.Fixed})
		}
		if d.Form != "" {
			attrs = append(attrs, xmlAttr{"form", d.Form})
		}
		return s.writeConstruct(n, depth, s.prefix+"attribute", attrs)

	case KindComplexType:
		d := n.ComplexType()
		var attrs []xmlAttr
		if n.Name() != "" {
			attrs = append(attrs, xmlAttr{"name", n.Name()})
		}
		if d.Mixed {
			attrs = append(attrs, xmlAttr{"mixed", "true"})
		}
		if d.Abstract {
			attrs = append(attrs, xmlAttr{"abstract", "true"})
		}
		return s.writeConstruct(n, depth, s.prefix+"complexType", attrs)

	case KindSimpleType:
		var attrs []xmlAttr
		if n.Name() != "" {
			attrs = append(attrs, xmlAttr{"name", n.Name()})
		}
		return s.writeConstruct(n, depth, s.prefix+"simpleType", attrs)

	case KindSequence, KindChoice, KindAll:
		return s.writeConstruct(n, depth, s.prefix+n.Kind().String(), occursAttrs(n.Occurs()))

	case KindRestriction:
		var attrs []xmlAttr
		if base := n.Restriction().Base; base != "" {
			attrs = append(attrs, xmlAttr{"base", base})
		}
		return s.writeConstruct(n, depth, s.prefix+"restriction", attrs)

	case KindList:
		var attrs []xmlAttr
		if it := n.List().ItemType; it != "" {
			attrs = append(attrs, xmlAttr{"itemType", it})
		}
		return s.writeConstruct(n, depth, s.prefix+"list", attrs)

	case KindUnion:
		var attrs []xmlAttr
		if members := n.Union().MemberTypes; len(members) > 0 {
			attrs = append(attrs, xmlAttr{"memberTypes", strings.Join(members, " ")})
		}
		return s.writeConstruct(n, depth, s.prefix+"union", attrs)

	case KindFacet:
		d := n.Facet()
		var attrs []xmlAttr
		if d.Kind == FacetAssertion {
			attrs = append(attrs, xmlAttr{"test", d.Value})
		} else {
			attrs = append(attrs, xmlAttr{"value", d.Value})
		}
		// Omit fixed="true" when reparse re-derives it from the base
		// type; keeps output close to hand-written input.
		if d.Fixed && !facetFixedByBase(n, d.Kind) {
			attrs = append(attrs, xmlAttr{"fixed", "true"})
		}
		return s.writeConstruct(n, depth, s.prefix+string(d.Kind), attrs)

	case KindGroup, KindAttributeGroup:
		tag := s.prefix + n.Kind().String()
		if ref := n.Group().Ref; ref != "" {
			attrs := []xmlAttr{{"ref", ref}}
			if n.Kind() == KindGroup {
				attrs = append(attrs, occursAttrs(n.Occurs())...)
			}
			return s.writeConstruct(n, depth, tag, attrs)
		}
		return s.writeConstruct(n, depth, tag, []xmlAttr{{"name", n.Name()}})

	case KindConstraint:
		return s.writeConstraint(n, depth)

	case KindImport:
		d := n.Import()
		var attrs []xmlAttr
		if d.Namespace != "" {
			attrs = append(attrs, xmlAttr{"namespace", d.Namespace})
		}
		if d.SchemaLocation != "" {
			attrs = append(attrs, xmlAttr{"schemaLocation", d.SchemaLocation})
		}
		return s.writeConstruct(n, depth, s.prefix+"import", attrs)

	case KindInclude:
		var attrs []xmlAttr
		if loc := n.Import().SchemaLocation; loc != "" {
			attrs = append(attrs, xmlAttr{"schemaLocation", loc})
		}
		return s.writeConstruct(n, depth, s.prefix+"include", attrs)

	case KindAny:
		d := n.Wildcard()
		var attrs []xmlAttr
		if d.Namespace != "" {
			attrs = append(attrs, xmlAttr{"namespace", d.Namespace})
		}
		if d.ProcessContents != "" {
			attrs = append(attrs, xmlAttr{"processContents", d.ProcessContents})
		}
		attrs = append(attrs, occursAttrs(n.Occurs())...)
		return s.writeConstruct(n, depth, s.prefix+"any", attrs)

	case KindAnyAttribute:
		d := n.Wildcard()
		var attrs []xmlAttr
		if d.Namespace != "" {
			attrs = append(attrs, xmlAttr{"namespace", d.Namespace})
		}
		if d.ProcessContents != "" {
			attrs = append(attrs, xmlAttr{"processContents", d.ProcessContents})
		}
		return s.writeConstruct(n, depth, s.prefix+"anyAttribute", attrs)

	case KindOpaque:
		return s.writeOpaque(n, depth)

	default:
		return &SerializationError{Node: n, Message: "unknown node kind"}
	}
}

func (s *serializer) writeSchema(n *Node, depth int) error {
	d := n.Schema()
	var attrs []xmlAttr
	bound := false
	for _, p := range d.Prefixes {
		if p.URI == XSDNamespace {
			bound = true
		}
		if p.Name == "" {
			attrs = append(attrs, xmlAttr{"xmlns", p.URI})
		} else {
			attrs = append(attrs, xmlAttr{"xmlns:" + p.Name, p.URI})
		}
	}
	// Trees built in code carry no prefix table; bind the schema
	// namespace so the output stands alone.
	if !bound {
		attrs = append([]xmlAttr{{"xmlns:xs", XSDNamespace}}, attrs...)
	}
	if d.TargetNamespace != "" {
		attrs = append(attrs, xmlAttr{"targetNamespace", d.TargetNamespace})
	}
	if d.ElementFormDefault != "" {
		attrs = append(attrs, xmlAttr{"elementFormDefault", d.ElementFormDefault})
	}
	if d.AttributeFormDefault != "" {
		attrs = append(attrs, xmlAttr{"attributeFormDefault", d.AttributeFormDefault})
	}
	return s.writeConstruct(n, depth, s.prefix+"schema", attrs)
}

func (s *serializer) writeConstraint(n *Node, depth int) error {
	d := n.Constraint()
	tag := s.prefix + string(d.Kind)
	attrs := []xmlAttr{{"name", n.Name()}}
	if d.Refer != "" {
		attrs = append(attrs, xmlAttr{"refer", d.Refer})
	}
	s.open(depth, tag, attrs, false)
	if s.opts.PreserveComments && (n.Documentation() != "" || n.AppInfo() != "") {
		s.writeAnnotation(n, depth+1)
	}
	s.open(depth+1, s.prefix+"selector", []xmlAttr{{"xpath", d.Selector}}, true)
	for _, field := range d.Fields {
		s.open(depth+1, s.prefix+"field", []xmlAttr{{"xpath", field}}, true)
	}
	s.close(depth, tag)
	return nil
}

func (s *serializer) writeOpaque(n *Node, depth int) error {
	d := n.Opaque()

	// A tagless opaque node is a text run inside mixed content.
	if d.Tag == "" {
		s.indent(depth)
		s.b.WriteString(escapeText(d.Text) + "\n")
		return nil
	}

	tag, attrs := s.opaqueTag(d)
	for _, a := range d.Attrs {
		attrs = append(attrs, xmlAttr{a.Name, a.Value})
	}
	if n.ChildCount() == 0 && d.Text == "" {
		s.open(depth, tag, attrs, true)
		return nil
	}
	if n.ChildCount() == 0 {
		s.indent(depth)
		s.b.WriteString("<" + tag)
		for _, a := range attrs {
			s.b.WriteString(" " + a.name + `="` + escapeAttr(a.value) + `"`)
		}
		s.b.WriteString(">")
		s.b.WriteString(escapeText(d.Text))
		s.b.WriteString("</" + tag + ">\n")
		return nil
	}
	s.open(depth, tag, attrs, false)
	for _, c := range n.Children() {
		if err := s.writeNode(c, depth+1); err != nil {
			return err
		}
	}
	s.close(depth, tag)
	return nil
}

// opaqueTag re-qualifies an opaque construct's tag under the document's
// prefix bindings. Parsing resolves prefixes away, so an unprefixed Tag
// with a namespace must be re-bound before emission; a tag whose
// namespace has no binding gets a local xmlns declaration instead.
func (s *serializer) opaqueTag(d OpaqueData) (string, []xmlAttr) {
	if strings.Contains(d.Tag, ":") || d.Space == "" {
		return d.Tag, nil
	}
	// A binding carried on the construct itself wins.
	for _, a := range d.Attrs {
		if a.Value != d.Space {
			continue
		}
		if a.Name == "xmlns" {
			return d.Tag, nil
		}
		if rest, ok := strings.CutPrefix(a.Name, "xmlns:"); ok {
			return rest + ":" + d.Tag, nil
		}
	}
	if d.Space == XSDNamespace {
		return s.prefix + d.Tag, nil
	}
	for _, p := range s.prefixes {
		if p.URI == d.Space {
			if p.Name == "" {
				return d.Tag, nil
			}
			return p.Name + ":" + d.Tag, nil
		}
	}
	return d.Tag, []xmlAttr{{"xmlns", d.Space}}
}

// renderFragment emits an opaque subtree as standalone unindented
// markup. Appinfo payloads are stored in this form so their structure
// survives the trip through the model's string representation.
func renderFragment(n *Node, prefixes []Prefix) string {
	s := &serializer{
		opts:     SerializeOptions{IndentWidth: 0},
		prefix:   "xs:",
		prefixes: prefixes,
	}
	for _, p := range prefixes {
		if p.URI == XSDNamespace {
			if p.Name == "" {
				s.prefix = ""
			} else {
				s.prefix = p.Name + ":"
			}
			break
		}
	}
	if err := s.writeOpaque(n, 0); err != nil {
		return ""
	}
	return strings.TrimRight(s.b.String(), "\n")
}

// facetFixedByBase reports whether the facet node's kind is mandated
// fixed by the owning restriction's built-in base type.
func facetFixedByBase(facet *Node, kind FacetKind) bool {
	parent := facet.Parent()
	if parent == nil || parent.Kind() != KindRestriction {
		return false
	}
	_, fixed := FixedFacetValue(parent.Restriction().Base, kind)
	return fixed
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

func escapeAttr(s string) string { return attrEscaper.Replace(s) }

func escapeText(s string) string { return textEscaper.Replace(s) }
