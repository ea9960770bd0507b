package xsdedit

// FacetKind identifies one of the closed set of constraining facets. The
// values match the XSD element names so parse and serialize are direct.
type FacetKind string

const (
	FacetLength           FacetKind = "length"
	FacetMinLength        FacetKind = "minLength"
	FacetMaxLength        FacetKind = "maxLength"
	FacetPattern          FacetKind = "pattern"
	FacetEnumeration      FacetKind = "enumeration"
	FacetWhiteSpace       FacetKind = "whiteSpace"
	FacetMaxInclusive     FacetKind = "maxInclusive"
	FacetMaxExclusive     FacetKind = "maxExclusive"
	FacetMinInclusive     FacetKind = "minInclusive"
	FacetMinExclusive     FacetKind = "minExclusive"
	FacetTotalDigits      FacetKind = "totalDigits"
	FacetFractionDigits   FacetKind = "fractionDigits"
	FacetAssertion        FacetKind = "assertion"
	FacetExplicitTimezone FacetKind = "explicitTimezone"
)

var facetKinds = map[string]FacetKind{
	"length":           FacetLength,
	"minLength":        FacetMinLength,
	"maxLength":        FacetMaxLength,
	"pattern":          FacetPattern,
	"enumeration":      FacetEnumeration,
	"whiteSpace":       FacetWhiteSpace,
	"maxInclusive":     FacetMaxInclusive,
	"maxExclusive":     FacetMaxExclusive,
	"minInclusive":     FacetMinInclusive,
	"minExclusive":     FacetMinExclusive,
	"totalDigits":      FacetTotalDigits,
	"fractionDigits":   FacetFractionDigits,
	"assertion":        FacetAssertion,
	"explicitTimezone": FacetExplicitTimezone,
}

// ParseFacetKind maps an XSD facet element name to its kind.
func ParseFacetKind(name string) (FacetKind, bool) {
	k, ok := facetKinds[name]
	return k, ok
}

func (k FacetKind) String() string { return string(k) }

// FacetApplicable reports whether the facet kind is legal on a restriction
// of the given built-in base type. Unknown (user-defined) base types allow
// every kind; applicability then depends on the user type's own base,
// which is a linting concern above this model.
func FacetApplicable(baseType string, kind FacetKind) bool {
	info := builtinInfo(baseType)
	if info == nil {
		return true
	}
	for _, k := range categoryFacets[info.category] {
		if k == kind {
			return true
		}
	}
	return false
}

// FixedFacetValue returns the mandated value of a facet kind that is fixed
// for the given built-in base type, and whether it is fixed at all.
func FixedFacetValue(baseType string, kind FacetKind) (string, bool) {
	info := builtinInfo(baseType)
	if info == nil {
		return "", false
	}
	v, ok := info.fixed[kind]
	return v, ok
}
