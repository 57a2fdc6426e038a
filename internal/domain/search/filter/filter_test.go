package filter

import (
	"strings"
	"testing"
)

func mustTag(t *testing.T, attr string, op Op, v string) Leaf {
	t.Helper()
	l, err := NewTagLeaf(attr, op, v)
	if err != nil {
		t.Fatalf("NewTagLeaf: %v", err)
	}
	return l
}

func mustNum(t *testing.T, attr string, op Op, v float64) Leaf {
	t.Helper()
	l, err := NewNumericLeaf(attr, op, v)
	if err != nil {
		t.Fatalf("NewNumericLeaf: %v", err)
	}
	return l
}

// --- Leaf tests ---

func TestNewTagLeaf_EqualityOnly(t *testing.T) {
	for _, op := range Ops() {
		_, err := NewTagLeaf("category", op, "Dresses")
		if op.IsEquality() && err != nil {
			t.Errorf("%s: unexpected error: %v", op, err)
		}
		if !op.IsEquality() && err == nil {
			t.Errorf("%s: expected error for ordering operator on tag", op)
		}
	}
}

func TestNewTagLeaf_Validation(t *testing.T) {
	if _, err := NewTagLeaf("", Equal, "x"); err == nil {
		t.Error("expected error for empty attribute")
	}
	_, err := NewTagLeaf("category", Equal, "")
	if err == nil {
		t.Fatal("expected error for empty value")
	}
	if !strings.Contains(err.Error(), "category") {
		t.Errorf("error = %q", err)
	}
}

func TestNewNumericLeaf_Validation(t *testing.T) {
	if _, err := NewNumericLeaf("", LessThan, 1); err == nil {
		t.Error("expected error for empty attribute")
	}
	if _, err := NewNumericLeaf("price", Op("$in"), 1); err == nil {
		t.Error("expected error for unknown operator")
	}
	l := mustNum(t, "price", LessThan, 300)
	if !l.IsNumeric() || l.Number() != 300 || l.Op() != LessThan || l.Attribute() != "price" {
		t.Errorf("unexpected leaf: %+v", l)
	}
}

func TestLeaf_String(t *testing.T) {
	if got := mustNum(t, "price_regular", LessThan, 300).String(); got != "(price_regular, $lt, 300)" {
		t.Errorf("numeric leaf = %q", got)
	}
	if got := mustNum(t, "price_regular", GreaterOrEqual, 99.5).String(); got != "(price_regular, $gte, 99.5)" {
		t.Errorf("decimal leaf = %q", got)
	}
	if got := mustTag(t, "category", Equal, "Dresses").String(); got != `(category, $eq, "Dresses")` {
		t.Errorf("tag leaf = %q", got)
	}
}

// --- Predicate tests ---

func TestAnd_PreservesOrder(t *testing.T) {
	base := mustTag(t, "gender", Equal, "women")
	price := mustNum(t, "price_regular", LessThan, 300)
	cat := mustTag(t, "category", Equal, "Dresses")

	p, err := And(base, price, cat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	leaves := p.Leaves()
	if len(leaves) != 3 || leaves[0] != base || leaves[1] != price || leaves[2] != cat {
		t.Fatalf("unexpected leaves: %v", leaves)
	}
	want := `AND[(gender, $eq, "women"), (price_regular, $lt, 300), (category, $eq, "Dresses")]`
	if p.String() != want {
		t.Errorf("String() = %q, want %q", p.String(), want)
	}
}

func TestAppend_DropsDuplicates(t *testing.T) {
	base := mustTag(t, "gender", Equal, "women")
	p, _ := And(base)
	if err := p.Append(base); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Len() != 1 {
		t.Fatalf("expected duplicate to be dropped, got %d leaves", p.Len())
	}
}

func TestAppend_RejectsZeroLeaf(t *testing.T) {
	p, _ := And()
	if err := p.Append(Leaf{}); err == nil {
		t.Fatal("expected error for zero leaf")
	}
}

func TestAppend_MaxLeaves(t *testing.T) {
	p, _ := And()
	for i := 0; i < MaxLeaves; i++ {
		if err := p.Append(mustNum(t, "n", Equal, float64(i))); err != nil {
			t.Fatalf("leaf %d: %v", i, err)
		}
	}
	if err := p.Append(mustNum(t, "n", Equal, -1)); err == nil {
		t.Fatal("expected error past MaxLeaves")
	}
}

func TestLeaves_ReturnsCopy(t *testing.T) {
	p, _ := And(mustTag(t, "gender", Equal, "women"))
	leaves := p.Leaves()
	leaves[0] = mustTag(t, "gender", Equal, "men")
	if p.Leaves()[0].Text() != "women" {
		t.Fatal("Leaves() must not expose internal slice")
	}
}

func TestNilPredicate(t *testing.T) {
	var p *Predicate
	if !p.IsEmpty() || p.Len() != 0 || p.Leaves() != nil || p.String() != "" {
		t.Fatal("nil predicate must behave as empty")
	}
}

// --- Op tests ---

func TestParseOp(t *testing.T) {
	for _, op := range Ops() {
		got, ok := ParseOp(string(op))
		if !ok || got != op {
			t.Errorf("ParseOp(%q) = %q, %v", op, got, ok)
		}
	}
	for _, bad := range []string{"", "<", "$in", "lt", "$LT"} {
		if _, ok := ParseOp(bad); ok {
			t.Errorf("ParseOp(%q) should fail", bad)
		}
	}
}

func TestOp_Describe(t *testing.T) {
	if LessOrEqual.Describe() != "less than or equal to" {
		t.Errorf("Describe() = %q", LessOrEqual.Describe())
	}
	if Op("?").Describe() != "unknown" {
		t.Errorf("unknown op Describe() = %q", Op("?").Describe())
	}
}
