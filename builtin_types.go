package xsdedit

import "strings"

// typeCategory groups the built-in types by their facet surface.
type typeCategory int

const (
	stringCategory typeCategory = iota
	booleanCategory
	decimalCategory
	integerCategory
	floatCategory
	durationCategory
	dateTimeCategory
	binaryCategory
	uriCategory
	qnameCategory
)

// categoryFacets maps each category to the facet kinds legal on it.
var categoryFacets = map[typeCategory][]FacetKind{
	stringCategory: {
		FacetLength, FacetMinLength, FacetMaxLength,
		FacetPattern, FacetEnumeration, FacetWhiteSpace, FacetAssertion,
	},
	booleanCategory: {
		FacetPattern, FacetWhiteSpace, FacetAssertion,
	},
	decimalCategory: {
		FacetTotalDigits, FacetFractionDigits,
		FacetPattern, FacetEnumeration, FacetWhiteSpace,
		FacetMaxInclusive, FacetMaxExclusive, FacetMinInclusive, FacetMinExclusive,
		FacetAssertion,
	},
	integerCategory: {
		FacetTotalDigits, FacetFractionDigits,
		FacetPattern, FacetEnumeration, FacetWhiteSpace,
		FacetMaxInclusive, FacetMaxExclusive, FacetMinInclusive, FacetMinExclusive,
		FacetAssertion,
	},
	floatCategory: {
		FacetPattern, FacetEnumeration, FacetWhiteSpace,
		FacetMaxInclusive, FacetMaxExclusive, FacetMinInclusive, FacetMinExclusive,
		FacetAssertion,
	},
	durationCategory: {
		FacetPattern, FacetEnumeration, FacetWhiteSpace,
		FacetMaxInclusive, FacetMaxExclusive, FacetMinInclusive, FacetMinExclusive,
		FacetAssertion,
	},
	dateTimeCategory: {
		FacetPattern, FacetEnumeration, FacetWhiteSpace,
		FacetMaxInclusive, FacetMaxExclusive, FacetMinInclusive, FacetMinExclusive,
		FacetAssertion, FacetExplicitTimezone,
	},
	binaryCategory: {
		FacetLength, FacetMinLength, FacetMaxLength,
		FacetPattern, FacetEnumeration, FacetWhiteSpace, FacetAssertion,
	},
	uriCategory: {
		FacetLength, FacetMinLength, FacetMaxLength,
		FacetPattern, FacetEnumeration, FacetWhiteSpace, FacetAssertion,
	},
	qnameCategory: {
		FacetLength, FacetMinLength, FacetMaxLength,
		FacetPattern, FacetEnumeration, FacetWhiteSpace, FacetAssertion,
	},
}

// builtinTypeInfo is one row of the built-in datatype table: its facet
// category plus the facet kinds whose value the datatype fixes.
type builtinTypeInfo struct {
	category typeCategory
	fixed    map[FacetKind]string
}

var (
	wsCollapseFixed = map[FacetKind]string{FacetWhiteSpace: "collapse"}
	integerFixed    = map[FacetKind]string{
		FacetWhiteSpace:     "collapse",
		FacetFractionDigits: "0",
	}
)

// builtinTypes covers the 44 built-in datatypes: 19 primitives and their
// derived string and numeric families. Data-driven so applicability stays
// a table lookup, not hand-coded branches.
var builtinTypes = map[string]*builtinTypeInfo{
	// Primitive types
	"string":       {category: stringCategory},
	"boolean":      {category: booleanCategory, fixed: wsCollapseFixed},
	"decimal":      {category: decimalCategory, fixed: wsCollapseFixed},
	"float":        {category: floatCategory, fixed: wsCollapseFixed},
	"double":       {category: floatCategory, fixed: wsCollapseFixed},
	"duration":     {category: durationCategory, fixed: wsCollapseFixed},
	"dateTime":     {category: dateTimeCategory, fixed: wsCollapseFixed},
	"time":         {category: dateTimeCategory, fixed: wsCollapseFixed},
	"date":         {category: dateTimeCategory, fixed: wsCollapseFixed},
	"gYearMonth":   {category: dateTimeCategory, fixed: wsCollapseFixed},
	"gYear":        {category: dateTimeCategory, fixed: wsCollapseFixed},
	"gMonthDay":    {category: dateTimeCategory, fixed: wsCollapseFixed},
	"gDay":         {category: dateTimeCategory, fixed: wsCollapseFixed},
	"gMonth":       {category: dateTimeCategory, fixed: wsCollapseFixed},
	"hexBinary":    {category: binaryCategory, fixed: wsCollapseFixed},
	"base64Binary": {category: binaryCategory, fixed: wsCollapseFixed},
	"anyURI":       {category: uriCategory, fixed: wsCollapseFixed},
	"QName":        {category: qnameCategory, fixed: wsCollapseFixed},
	"NOTATION":     {category: qnameCategory, fixed: wsCollapseFixed},

	// Derived string types. The token family collapses whitespace by
	// definition, so the facet is read-only there.
	"normalizedString": {category: stringCategory},
	"token":            {category: stringCategory, fixed: wsCollapseFixed},
	"language":         {category: stringCategory, fixed: wsCollapseFixed},
	"Name":             {category: stringCategory, fixed: wsCollapseFixed},
	"NCName":           {category: stringCategory, fixed: wsCollapseFixed},
	"ID":               {category: stringCategory, fixed: wsCollapseFixed},
	"IDREF":            {category: stringCategory, fixed: wsCollapseFixed},
	"IDREFS":           {category: stringCategory, fixed: wsCollapseFixed},
	"ENTITY":           {category: stringCategory, fixed: wsCollapseFixed},
	"ENTITIES":         {category: stringCategory, fixed: wsCollapseFixed},
	"NMTOKEN":          {category: stringCategory, fixed: wsCollapseFixed},
	"NMTOKENS":         {category: stringCategory, fixed: wsCollapseFixed},

	// Derived numeric types
	"integer":            {category: integerCategory, fixed: integerFixed},
	"nonPositiveInteger": {category: integerCategory, fixed: integerFixed},
	"negativeInteger":    {category: integerCategory, fixed: integerFixed},
	"long":               {category: integerCategory, fixed: integerFixed},
	"int":                {category: integerCategory, fixed: integerFixed},
	"short":              {category: integerCategory, fixed: integerFixed},
	"byte":               {category: integerCategory, fixed: integerFixed},
	"nonNegativeInteger": {category: integerCategory, fixed: integerFixed},
	"unsignedLong":       {category: integerCategory, fixed: integerFixed},
	"unsignedInt":        {category: integerCategory, fixed: integerFixed},
	"unsignedShort":      {category: integerCategory, fixed: integerFixed},
	"unsignedByte":       {category: integerCategory, fixed: integerFixed},
	"positiveInteger":    {category: integerCategory, fixed: integerFixed},
}

// builtinInfo looks up a built-in type by name, stripping any namespace
// prefix first.
func builtinInfo(name string) *builtinTypeInfo {
	if idx := strings.Index(name, ":"); idx >= 0 {
		name = name[idx+1:]
	}
	return builtinTypes[name]
}

// IsBuiltinType checks if a type reference names a built-in XSD type.
func IsBuiltinType(name string) bool {
	return builtinInfo(name) != nil
}

// BuiltinTypeNames returns the names of all built-in datatypes, in no
// particular order. Intended for completion-style consumers.
func BuiltinTypeNames() []string {
	names := make([]string, 0, len(builtinTypes))
	for name := range builtinTypes {
		names = append(names, name)
	}
	return names
}
