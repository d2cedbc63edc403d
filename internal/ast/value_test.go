package ast

import "testing"

func TestValueEqualNumbers(t *testing.T) {
	if !Number(3).Equal(Number(3)) {
		t.Error("expected 3 == 3")
	}
	if Number(3).Equal(Number(4)) {
		t.Error("did not expect 3 == 4")
	}
}

func TestValueEqualNaNIsFalse(t *testing.T) {
	nan := Number(nan())
	if nan.Equal(nan) {
		t.Error("NaN must not equal NaN under native double comparison")
	}
}

func TestValueEqualAcrossKinds(t *testing.T) {
	if Number(1).Equal(Bool(true)) {
		t.Error("values of different kinds must never be equal")
	}
	if Null().Equal(Number(0)) {
		t.Error("Null must not equal Number(0)")
	}
}

func TestValueSignatureStringHashesNaNConsistently(t *testing.T) {
	a := Number(nan())
	b := Number(nan())
	if a.SignatureString() != b.SignatureString() {
		t.Error("expected NaN to hash consistently with itself")
	}
	if Number(1).SignatureString() == Bool(true).SignatureString() {
		t.Error("did not expect Number and Bool signatures to collide")
	}
}

func TestValueStringIntegralNumber(t *testing.T) {
	if got := Number(30).String(); got != "30" {
		t.Errorf("expected \"30\", got %q", got)
	}
}

func TestValueKindName(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Number(1), "Number"},
		{Bool(true), "Bool"},
		{Null(), "Null"},
	}
	for _, c := range cases {
		if got := c.v.KindName(); got != c.want {
			t.Errorf("KindName() = %q, want %q", got, c.want)
		}
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}
