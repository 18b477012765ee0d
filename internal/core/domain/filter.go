package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Operator is a comparison applied by a filter Condition.
type Operator string

const (
	OpEq   Operator = "eq"
	OpNe   Operator = "ne"
	OpLike Operator = "like"
	OpGt   Operator = "gt"
	OpLt   Operator = "lt"
	OpGte  Operator = "gte"
	OpLte  Operator = "lte"
	OpIn   Operator = "in"
)

var operatorAliases = map[string]Operator{
	"eq": OpEq, "=": OpEq, "==": OpEq,
	"ne": OpNe, "neq": OpNe, "!=": OpNe, "<>": OpNe,
	"like": OpLike,
	"gt":   OpGt, ">": OpGt,
	"lt": OpLt, "<": OpLt,
	"gte": OpGte, ">=": OpGte,
	"lte": OpLte, "<=": OpLte,
	"in": OpIn,
}

// ParseOperator accepts both the symbolic and the short names of an operator.
func ParseOperator(s string) (Operator, error) {
	op, ok := operatorAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", NewValidationError("operator", fmt.Sprintf("unknown operator %q", s))
	}
	return op, nil
}

// Filter is a node of a boolean filter tree: a Condition, an And or an Or.
// A nil Filter matches every row.
type Filter interface {
	isFilter()
}

// Condition is a leaf comparing Field against Value.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value"`
}

// And matches rows matching every child. An empty And matches everything.
type And []Filter

// Or matches rows matching at least one child. An empty Or matches nothing.
type Or []Filter

func (Condition) isFilter() {}
func (And) isFilter()       {}
func (Or) isFilter()        {}

// Eq is shorthand for an equality condition.
func Eq(field string, value any) Condition {
	return Condition{Field: field, Operator: OpEq, Value: value}
}

// In is shorthand for a set membership condition.
func In[T any](field string, values ...T) Condition {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return Condition{Field: field, Operator: OpIn, Value: vs}
}

// AllOf conjoins filters, dropping nils. It returns nil when nothing is left
// and the single survivor when only one is.
func AllOf(filters ...Filter) Filter {
	out := make(And, 0, len(filters))
	for _, f := range filters {
		if f == nil {
			continue
		}
		if inner, ok := f.(And); ok {
			out = append(out, inner...)
			continue
		}
		out = append(out, f)
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}

// AnyOf disjoins filters, dropping nils.
func AnyOf(filters ...Filter) Filter {
	out := make(Or, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			out = append(out, f)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

// EscapeLike escapes the LIKE wildcards of s with a backslash.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// SearchFilter expands free text into a substring match over fields.
func SearchFilter(text string, fields ...string) Filter {
	text = strings.TrimSpace(text)
	if text == "" || len(fields) == 0 {
		return nil
	}
	pattern := "%" + EscapeLike(text) + "%"
	or := make(Or, 0, len(fields))
	for _, f := range fields {
		or = append(or, Condition{Field: f, Operator: OpLike, Value: pattern})
	}
	return AnyOf(or...)
}

const maxFilterDepth = 16

// ParseFilter decodes the JSON form of a filter tree:
//
//	{"and": [{"field": "type", "operator": "eq", "value": "A"}, {"or": [...]}]}
//
// An empty document yields a nil filter.
func ParseFilter(data []byte) (Filter, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, NewValidationError("filter", "malformed JSON: "+err.Error())
	}
	return parseFilterNode(raw, 0)
}

func parseFilterNode(raw json.RawMessage, depth int) (Filter, error) {
	if depth > maxFilterDepth {
		return nil, NewValidationError("filter", "nested too deeply")
	}
	var node map[string]json.RawMessage
	if err := json.Unmarshal(raw, &node); err != nil {
		return nil, NewValidationError("filter", "each node must be an object")
	}

	children := func(key string) ([]Filter, error) {
		var items []json.RawMessage
		if err := json.Unmarshal(node[key], &items); err != nil {
			return nil, NewValidationError("filter", fmt.Sprintf("%q must be an array", key))
		}
		out := make([]Filter, 0, len(items))
		for _, item := range items {
			child, err := parseFilterNode(item, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, child)
		}
		return out, nil
	}

	_, hasAnd := node["and"]
	_, hasOr := node["or"]
	switch {
	case hasAnd && hasOr:
		return nil, NewValidationError("filter", "a node cannot hold both \"and\" and \"or\"")
	case hasAnd:
		c, err := children("and")
		if err != nil {
			return nil, err
		}
		return And(c), nil
	case hasOr:
		c, err := children("or")
		if err != nil {
			return nil, err
		}
		return Or(c), nil
	}

	var leaf struct {
		Field    string `json:"field"`
		Operator string `json:"operator"`
		Value    any    `json:"value"`
	}
	if err := json.Unmarshal(raw, &leaf); err != nil {
		return nil, NewValidationError("filter", "malformed condition")
	}
	if leaf.Field == "" {
		return nil, NewValidationError("filter", "condition without field")
	}
	op := OpEq
	if leaf.Operator != "" {
		var err error
		if op, err = ParseOperator(leaf.Operator); err != nil {
			return nil, err
		}
	}
	cond := Condition{Field: leaf.Field, Operator: op, Value: leaf.Value}
	if err := cond.Validate(); err != nil {
		return nil, err
	}
	return cond, nil
}

// Validate checks the shape of the condition value against its operator.
func (c Condition) Validate() error {
	if c.Field == "" {
		return NewValidationError("filter", "condition without field")
	}
	switch c.Operator {
	case OpIn:
		if _, ok := c.Value.([]any); !ok {
			return NewValidationError(c.Field, "\"in\" expects an array value")
		}
	case OpLike:
		if _, ok := c.Value.(string); !ok {
			return NewValidationError(c.Field, "\"like\" expects a string value")
		}
	case OpEq, OpNe, OpGt, OpLt, OpGte, OpLte:
		switch c.Value.(type) {
		case []any, map[string]any:
			return NewValidationError(c.Field, fmt.Sprintf("%q expects a scalar value", c.Operator))
		}
	default:
		return NewValidationError(c.Field, fmt.Sprintf("unknown operator %q", c.Operator))
	}
	return nil
}
