package ast

import "testing"

func TestSignatureDistinguishesStructure(t *testing.T) {
	a := NewGreaterThan(NewInput(StaticInput(0)), NewLiteral(Number(10)))
	b := NewGreaterThan(NewInput(StaticInput(0)), NewLiteral(Number(10)))
	c := NewGreaterThan(NewInput(StaticInput(1)), NewLiteral(Number(10)))

	if a.Signature() != b.Signature() {
		t.Error("expected structurally identical expressions to share a signature")
	}
	if a.Signature() == c.Signature() {
		t.Error("did not expect different operands to share a signature")
	}
}

func TestStructurallyEqual(t *testing.T) {
	a := NewSum(NewInput(StaticInput(0)), NewLiteral(Number(1)))
	b := NewSum(NewInput(StaticInput(0)), NewLiteral(Number(1)))
	if !a.StructurallyEqual(b) {
		t.Error("expected equal structure to compare equal")
	}
	if a.StructurallyEqual(nil) {
		t.Error("did not expect a non-nil expression to equal nil")
	}
}

func TestPrecedenceOrdering(t *testing.T) {
	if Or.Precedence() >= And.Precedence() {
		t.Error("OR must bind looser than AND")
	}
	if And.Precedence() >= Xor.Precedence() {
		t.Error("AND must bind looser than XOR")
	}
	if Sum.Precedence() >= Multiply.Precedence() {
		t.Error("+ must bind looser than *")
	}
	if Multiply.Precedence() >= Not.Precedence() {
		t.Error("* must bind looser than unary NOT")
	}
}

func TestIsLeafAndIsBinary(t *testing.T) {
	lit := NewLiteral(Number(1))
	if !lit.IsLeaf() {
		t.Error("a literal must be a leaf")
	}
	if lit.IsBinary() {
		t.Error("a leaf is never binary")
	}

	unary := NewNot(lit)
	if unary.IsLeaf() || unary.IsBinary() {
		t.Error("NOT is unary, neither leaf nor binary")
	}

	bin := NewAnd(lit, lit)
	if bin.IsLeaf() || !bin.IsBinary() {
		t.Error("AND must report as binary, not leaf")
	}
}
