package filter

// Op is a comparison operator of a predicate leaf.
type Op string

// Comparison operators. The set is closed.
const (
	Equal          Op = "$eq"
	NotEqual       Op = "$ne"
	GreaterThan    Op = "$gt"
	GreaterOrEqual Op = "$gte"
	LessThan       Op = "$lt"
	LessOrEqual    Op = "$lte"
)

var ops = []Op{Equal, NotEqual, GreaterThan, GreaterOrEqual, LessThan, LessOrEqual}

// Ops returns all operators.
func Ops() []Op {
	out := make([]Op, len(ops))
	copy(out, ops)
	return out
}

// ParseOp accepts the exact operator symbol.
func ParseOp(s string) (Op, bool) {
	op := Op(s)
	if !op.IsValid() {
		return "", false
	}
	return op, true
}

// IsValid reports whether op is one of the six operators.
func (op Op) IsValid() bool {
	switch op {
	case Equal, NotEqual, GreaterThan, GreaterOrEqual, LessThan, LessOrEqual:
		return true
	}
	return false
}

// IsEquality reports whether op only compares for (in)equality.
func (op Op) IsEquality() bool {
	return op == Equal || op == NotEqual
}

// Describe returns the natural-language meaning used in model prompts.
func (op Op) Describe() string {
	switch op {
	case Equal:
		return "equal to"
	case NotEqual:
		return "not equal to"
	case GreaterThan:
		return "greater than"
	case GreaterOrEqual:
		return "greater than or equal to"
	case LessThan:
		return "less than"
	case LessOrEqual:
		return "less than or equal to"
	}
	return "unknown"
}
