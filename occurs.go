package xsdedit

import (
	"fmt"
	"strconv"
)

// Unbounded is the maxOccurs sentinel for "unbounded".
const Unbounded = -1

// Occurs is a cardinality pair. Max is either a finite count or Unbounded.
type Occurs struct {
	Min int
	Max int
}

// DefaultOccurs returns the implicit XSD cardinality (1, 1).
func DefaultOccurs() Occurs {
	return Occurs{Min: 1, Max: 1}
}

// IsDefault reports whether the cardinality equals the implicit (1, 1).
func (o Occurs) IsDefault() bool {
	return o.Min == 1 && o.Max == 1
}

// Validate checks the cardinality invariant: Min >= 0 and Max >= Min
// unless Max is Unbounded.
func (o Occurs) Validate() error {
	if o.Min < 0 {
		return fmt.Errorf("minOccurs %d: %w", o.Min, ErrInvalidCardinality)
	}
	if o.Max != Unbounded && o.Max < o.Min {
		return fmt.Errorf("maxOccurs %d < minOccurs %d: %w", o.Max, o.Min, ErrInvalidCardinality)
	}
	return nil
}

// MaxString returns the maxOccurs attribute form of the upper bound.
func (o Occurs) MaxString() string {
	if o.Max == Unbounded {
		return "unbounded"
	}
	return strconv.Itoa(o.Max)
}

func (o Occurs) String() string {
	return fmt.Sprintf("(%d,%s)", o.Min, o.MaxString())
}
