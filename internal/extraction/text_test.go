package extraction

import "testing"

func TestParseNumber(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{raw: "6,5", want: 6.5, ok: true},
		{raw: "1.234,5", want: 1234.5, ok: true},
		{raw: "42", want: 42, ok: true},
		{raw: " 120 cr", want: 120, ok: true},
		{raw: "3°", want: 3, ok: true},
		{raw: "-", ok: false},
		{raw: "s.v.", ok: false},
		{raw: "NaN", ok: false},
		{raw: "", ok: false},
	}
	for _, tc := range cases {
		got, ok := ParseNumber(tc.raw)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("ParseNumber(%q) = %v,%t want %v,%t", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestHasWord(t *testing.T) {
	t.Parallel()

	if !HasWord("Crea nuova competizione", []string{"crea"}) {
		t.Fatalf("expected whole word match")
	}
	if HasWord("Newcastle Trophy", []string{"new"}) {
		t.Fatalf("expected no match inside a word")
	}
	if !HasWord("Accept all cookies", []string{"accept all"}) {
		t.Fatalf("expected phrase match")
	}
}
