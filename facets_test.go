package xsdedit

import "testing"

func TestParseFacetKind(t *testing.T) {
	for _, name := range []string{
		"length", "minLength", "maxLength", "pattern", "enumeration",
		"whiteSpace", "maxInclusive", "maxExclusive", "minInclusive",
		"minExclusive", "totalDigits", "fractionDigits", "assertion",
		"explicitTimezone",
	} {
		if _, ok := ParseFacetKind(name); !ok {
			t.Errorf("ParseFacetKind(%q) not recognized", name)
		}
	}
	if _, ok := ParseFacetKind("sequence"); ok {
		t.Error("ParseFacetKind accepted a non-facet construct")
	}
}

func TestFacetApplicable(t *testing.T) {
	tests := []struct {
		baseType string
		kind     FacetKind
		want     bool
	}{
		{"xs:string", FacetLength, true},
		{"xs:string", FacetPattern, true},
		{"xs:string", FacetFractionDigits, false},
		{"xs:integer", FacetTotalDigits, true},
		{"xs:integer", FacetLength, false},
		{"xs:decimal", FacetFractionDigits, true},
		{"xs:boolean", FacetPattern, true},
		{"xs:boolean", FacetEnumeration, false},
		{"xs:date", FacetMinInclusive, true},
		{"xs:date", FacetLength, false},
		{"xs:hexBinary", FacetLength, true},
		{"xs:anyURI", FacetMaxLength, true},
		{"xs:float", FacetMinExclusive, true},
		{"xs:float", FacetTotalDigits, false},
		// Unknown user-defined bases allow everything; the real
		// constraint set is only known after resolving the chain.
		{"tns:Custom", FacetFractionDigits, true},
	}
	for _, tt := range tests {
		if got := FacetApplicable(tt.baseType, tt.kind); got != tt.want {
			t.Errorf("FacetApplicable(%q, %s) = %v, want %v", tt.baseType, tt.kind, got, tt.want)
		}
	}
}

func TestFixedFacetValues(t *testing.T) {
	tests := []struct {
		baseType string
		kind     FacetKind
		value    string
		fixed    bool
	}{
		{"xs:integer", FacetFractionDigits, "0", true},
		{"xs:long", FacetFractionDigits, "0", true},
		{"xs:token", FacetWhiteSpace, "collapse", true},
		{"xs:integer", FacetWhiteSpace, "collapse", true},
		{"xs:string", FacetWhiteSpace, "", false},
		{"xs:string", FacetLength, "", false},
		{"xs:decimal", FacetFractionDigits, "", false},
	}
	for _, tt := range tests {
		value, fixed := FixedFacetValue(tt.baseType, tt.kind)
		if fixed != tt.fixed || value != tt.value {
			t.Errorf("FixedFacetValue(%q, %s) = (%q, %v), want (%q, %v)",
				tt.baseType, tt.kind, value, fixed, tt.value, tt.fixed)
		}
	}
}

func TestBuiltinTypeNames(t *testing.T) {
	if !IsBuiltinType("xs:string") || !IsBuiltinType("string") {
		t.Error("xs:string should be recognized with and without prefix")
	}
	if IsBuiltinType("PersonType") {
		t.Error("PersonType is not a built-in")
	}
	names := BuiltinTypeNames()
	if len(names) != 44 {
		t.Errorf("BuiltinTypeNames returned %d entries, want 44", len(names))
	}
}
