package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter([]byte(`{"and":[{"field":"type","operator":"eq","value":"A"},{"or":[{"field":"ttl","operator":">=","value":300},{"field":"name","operator":"in","value":["a","b"]}]}]}`))
	if err != nil {
		t.Fatalf("ParseFilter failed: %v", err)
	}
	want := And{
		Condition{Field: "type", Operator: OpEq, Value: "A"},
		Or{
			Condition{Field: "ttl", Operator: OpGte, Value: float64(300)},
			Condition{Field: "name", Operator: OpIn, Value: []any{"a", "b"}},
		},
	}
	if !reflect.DeepEqual(f, want) {
		t.Errorf("got %#v\nwant %#v", f, want)
	}

	f, err = ParseFilter([]byte(`{"field":"name","value":"www"}`))
	if err != nil || !reflect.DeepEqual(f, Eq("name", "www")) {
		t.Errorf("default operator: got %#v, %v", f, err)
	}

	if f, err := ParseFilter([]byte("  ")); f != nil || err != nil {
		t.Errorf("empty filter: got %#v, %v", f, err)
	}
}

func TestParseFilter_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"malformed", `{"and":`},
		{"not an object", `[1,2]`},
		{"and not array", `{"and":{"field":"x"}}`},
		{"both and or", `{"and":[],"or":[]}`},
		{"missing field", `{"operator":"eq","value":1}`},
		{"unknown operator", `{"field":"name","operator":"~","value":"x"}`},
		{"in needs array", `{"field":"name","operator":"in","value":"x"}`},
		{"like needs string", `{"field":"name","operator":"like","value":3}`},
		{"eq needs scalar", `{"field":"name","operator":"eq","value":[1]}`},
		{"too deep", deepFilter(maxFilterDepth + 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFilter([]byte(tt.in))
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func deepFilter(depth int) string {
	s := `{"field":"name","value":"x"}`
	for i := 0; i < depth; i++ {
		s = `{"and":[` + s + `]}`
	}
	return s
}

func TestAllOfAnyOf(t *testing.T) {
	if AllOf(nil, nil) != nil {
		t.Error("AllOf of nils should be nil")
	}
	a := Eq("a", 1)
	if got := AllOf(nil, a); !reflect.DeepEqual(got, a) {
		t.Errorf("AllOf single = %#v", got)
	}
	got := AllOf(And{a, Eq("b", 2)}, Eq("c", 3))
	if and, ok := got.(And); !ok || len(and) != 3 {
		t.Errorf("AllOf should flatten nested And, got %#v", got)
	}
	if got := AnyOf(a, nil); !reflect.DeepEqual(got, a) {
		t.Errorf("AnyOf single = %#v", got)
	}
	if got := In("id", "x", "y"); !reflect.DeepEqual(got.Value, []any{"x", "y"}) {
		t.Errorf("In = %#v", got)
	}
}

func TestSearchFilter(t *testing.T) {
	if SearchFilter("   ", "name") != nil {
		t.Error("blank search should be nil")
	}
	got := SearchFilter("50%_off", "name", "content")
	want := Or{
		Condition{Field: "name", Operator: OpLike, Value: `%50\%\_off%`},
		Condition{Field: "content", Operator: OpLike, Value: `%50\%\_off%`},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v", got)
	}
}

func TestParseOperator(t *testing.T) {
	for in, want := range map[string]Operator{"=": OpEq, "NEQ": OpNe, "<>": OpNe, "<=": OpLte, "like": OpLike} {
		if op, err := ParseOperator(in); err != nil || op != want {
			t.Errorf("ParseOperator(%q) = %q, %v", in, op, err)
		}
	}
}
