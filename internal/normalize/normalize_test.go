package normalize

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestKeysLowercasesEveryDepth(t *testing.T) {
	in := decode(t, `{"System":[{"Name":"Alpha","Planets":[{"NAME":"Rigel-II","Resources":{"Iron":true},"Fauna":[{"Temperament":"Wary","Biomes":["Hills","Swamp"]}]}]}]}`)
	want := decode(t, `{"system":[{"name":"Alpha","planets":[{"name":"Rigel-II","resources":{"iron":true},"fauna":[{"temperament":"Wary","biomes":["Hills","Swamp"]}]}]}]}`)
	if diff := cmp.Diff(want, Keys(in)); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestKeysLeavesValuesUntouched(t *testing.T) {
	in := decode(t, `{"Notes":"Keep CASE","Traits":["Boiled Seas"],"Gravity":0.5,"Outpost":true,"Nothing":null}`)
	got := Keys(in).(map[string]any)
	if got["notes"] != "Keep CASE" {
		t.Fatalf("scalar value changed: %v", got["notes"])
	}
	if traits := got["traits"].([]any); traits[0] != "Boiled Seas" {
		t.Fatalf("sequence value changed: %v", traits)
	}
	if got["gravity"] != 0.5 || got["outpost"] != true {
		t.Fatalf("unexpected scalars %v", got)
	}
	if v, ok := got["nothing"]; !ok || v != nil {
		t.Fatalf("null should pass through, got %v %v", v, ok)
	}
}

func TestKeysDoesNotMutateInput(t *testing.T) {
	in := map[string]any{"Outer": map[string]any{"Inner": []any{map[string]any{"Deep": 1}}}}
	_ = Keys(in)
	outer, ok := in["Outer"].(map[string]any)
	if !ok {
		t.Fatalf("input key rewritten: %v", in)
	}
	deep := outer["Inner"].([]any)[0].(map[string]any)
	if _, ok := deep["Deep"]; !ok {
		t.Fatalf("nested input key rewritten: %v", deep)
	}
}

func TestKeysIdentityOnLowercased(t *testing.T) {
	cases := []string{
		`{}`,
		`[]`,
		`"scalar"`,
		`{"systems":[{"planets":[{"name":"X","resources":{"iron":true,"water":false}}]}]}`,
		`[{"a":{"b":{"c":[1,2,{"d":"E"}]}}}]`,
	}
	for _, raw := range cases {
		in := decode(t, raw)
		if diff := cmp.Diff(in, Keys(in)); diff != "" {
			t.Fatalf("normalising %s changed it:\n%s", raw, diff)
		}
		twice := Keys(Keys(in))
		if diff := cmp.Diff(Keys(in), twice); diff != "" {
			t.Fatalf("normalising twice differs for %s:\n%s", raw, diff)
		}
	}
}

func TestKeysCollisionIsDeterministic(t *testing.T) {
	in := map[string]any{"Iron": false, "iron": true, "IRON": "x"}
	for i := 0; i < 20; i++ {
		got := Keys(in).(map[string]any)
		if len(got) != 1 || got["iron"] != true {
			t.Fatalf("expected lexicographically last key to win, got %v", got)
		}
	}
}

func TestMapNil(t *testing.T) {
	if Map(nil) != nil {
		t.Fatalf("expected nil")
	}
	if got := Map(map[string]any{"A": 1}); got["a"] != 1 {
		t.Fatalf("unexpected %v", got)
	}
}
