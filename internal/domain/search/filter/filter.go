package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxLeaves is the maximum number of leaves in a predicate.
const MaxLeaves = 32

// Predicate is a conjunction (AND) of leaf conditions.
// A nil *Predicate means "no restriction".
type Predicate struct {
	leaves []Leaf
}

// And creates a predicate from leaves, dropping duplicates.
func And(leaves ...Leaf) (*Predicate, error) {
	p := &Predicate{}
	for _, l := range leaves {
		if err := p.Append(l); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Append adds a leaf to the conjunction. Appending an identical leaf twice is a no-op.
func (p *Predicate) Append(l Leaf) error {
	if l.attribute == "" {
		return fmt.Errorf("leaf attribute is required")
	}
	for _, existing := range p.leaves {
		if existing == l {
			return nil
		}
	}
	if len(p.leaves) >= MaxLeaves {
		return fmt.Errorf("too many predicate leaves (max %d)", MaxLeaves)
	}
	p.leaves = append(p.leaves, l)
	return nil
}

// Leaves returns a copy of the leaves in insertion order.
func (p *Predicate) Leaves() []Leaf {
	if p == nil {
		return nil
	}
	out := make([]Leaf, len(p.leaves))
	copy(out, p.leaves)
	return out
}

// Len returns the number of leaves.
func (p *Predicate) Len() int {
	if p == nil {
		return 0
	}
	return len(p.leaves)
}

// IsEmpty reports whether the predicate restricts nothing.
func (p *Predicate) IsEmpty() bool { return p.Len() == 0 }

// String renders the predicate as AND[leaf, leaf, ...]; stable for logs and cache keys.
func (p *Predicate) String() string {
	if p.IsEmpty() {
		return ""
	}
	parts := make([]string, len(p.leaves))
	for i, l := range p.leaves {
		parts[i] = l.String()
	}
	return "AND[" + strings.Join(parts, ", ") + "]"
}

// Leaf is a single (attribute, operator, value) condition.
// The value is either text (tag match) or a number.
type Leaf struct {
	attribute string
	op        Op
	text      string
	number    float64
	numeric   bool
}

// NewTagLeaf creates a text condition. Tags only support $eq and $ne.
func NewTagLeaf(attribute string, op Op, value string) (Leaf, error) {
	if attribute == "" {
		return Leaf{}, fmt.Errorf("leaf attribute is required")
	}
	if !op.IsEquality() {
		return Leaf{}, fmt.Errorf("operator %q is not supported on tag %q", op, attribute)
	}
	if value == "" {
		return Leaf{}, fmt.Errorf("value is required for tag %q", attribute)
	}
	return Leaf{attribute: attribute, op: op, text: value}, nil
}

// NewNumericLeaf creates a numeric comparison.
func NewNumericLeaf(attribute string, op Op, value float64) (Leaf, error) {
	if attribute == "" {
		return Leaf{}, fmt.Errorf("leaf attribute is required")
	}
	if !op.IsValid() {
		return Leaf{}, fmt.Errorf("invalid operator %q", op)
	}
	return Leaf{attribute: attribute, op: op, number: value, numeric: true}, nil
}

// Attribute returns the field name.
func (l Leaf) Attribute() string { return l.attribute }

// Op returns the comparison operator.
func (l Leaf) Op() Op { return l.op }

// Text returns the tag value.
func (l Leaf) Text() string { return l.text }

// Number returns the numeric value.
func (l Leaf) Number() float64 { return l.number }

// IsNumeric reports whether this is a numeric comparison.
func (l Leaf) IsNumeric() bool { return l.numeric }

// String renders the leaf as (attribute, op, value).
func (l Leaf) String() string {
	if l.numeric {
		return fmt.Sprintf("(%s, %s, %s)", l.attribute, l.op, strconv.FormatFloat(l.number, 'f', -1, 64))
	}
	return fmt.Sprintf("(%s, %s, %q)", l.attribute, l.op, l.text)
}
