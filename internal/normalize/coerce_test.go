package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFloat(t *testing.T) {
	cases := []struct {
		in     any
		want   float64
		wantOK bool
	}{
		{in: 0.85, want: 0.85, wantOK: true},
		{in: " 1.25 ", want: 1.25, wantOK: true},
		{in: "heavy", wantOK: false},
		{in: nil, wantOK: false},
		{in: true, wantOK: false},
	}
	for _, tc := range cases {
		got, ok := Float(tc.in)
		if ok != tc.wantOK || got != tc.want {
			t.Fatalf("Float(%v) = %v,%v want %v,%v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestBool(t *testing.T) {
	truthy := []any{true, "Yes", "TRUE", "y", "1", 1.0}
	falsy := []any{false, "No", "", nil, 0.0, map[string]any{}}
	for _, v := range truthy {
		if !Bool(v) {
			t.Fatalf("Bool(%v) should be true", v)
		}
	}
	for _, v := range falsy {
		if Bool(v) {
			t.Fatalf("Bool(%v) should be false", v)
		}
	}
}

func TestStrings(t *testing.T) {
	if diff := cmp.Diff([]string{"Hills", "Frozen Plains"}, Strings([]any{"Hills", " Frozen Plains ", ""})); diff != "" {
		t.Fatalf("array form (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Hills", "Swamp"}, Strings("Hills, Swamp")); diff != "" {
		t.Fatalf("comma form (-want +got):\n%s", diff)
	}
	if Strings(42.0) != nil {
		t.Fatalf("expected nil for scalar")
	}
}

func TestFlags(t *testing.T) {
	got := Flags(map[string]any{"Iron": true, " water ": "yes", "lead": false, "": true})
	want := map[string]bool{"iron": true, "water": true, "lead": false}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected flags (-want +got):\n%s", diff)
	}
	if Flags([]any{"iron"}) != nil {
		t.Fatalf("expected nil for non-object")
	}
}

func TestStringAndDescribe(t *testing.T) {
	if String(2.5) != "2.5" || String(true) != "true" || String([]any{}) != "" {
		t.Fatalf("unexpected String conversions")
	}
	for v, want := range map[string]any{"null": nil, "object": map[string]any{}, "array": []any{}, "string": "x"} {
		if got := Describe(want); got != v {
			t.Fatalf("Describe(%v) = %s want %s", want, got, v)
		}
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, SortedKeys(map[string]int{"c": 1, "a": 2, "b": 3})); diff != "" {
		t.Fatalf("SortedKeys:\n%s", diff)
	}
}
