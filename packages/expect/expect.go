package expect

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Operator string

const (
	OpEquals         Operator = "=="
	OpNotEquals      Operator = "!="
	OpGreaterThan    Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLessThan       Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpContains       Operator = "contains"
	OpNotContains    Operator = "!contains"
	OpStartsWith     Operator = "startsWith"
	OpEndsWith       Operator = "endsWith"
	OpMatches        Operator = "matches"
	OpExists         Operator = "exists"
	OpNotExists      Operator = "!exists"
	OpLength         Operator = "length"
	OpIncludes       Operator = "includes"
	OpNotIncludes    Operator = "!includes"
	OpIn             Operator = "in"
	OpNotIn          Operator = "!in"
	OpType           Operator = "type"
)

var operators = map[Operator]bool{
	OpEquals: true, OpNotEquals: true,
	OpGreaterThan: true, OpGreaterOrEqual: true, OpLessThan: true, OpLessOrEqual: true,
	OpContains: true, OpNotContains: true, OpStartsWith: true, OpEndsWith: true,
	OpMatches: true, OpExists: true, OpNotExists: true, OpLength: true,
	OpIncludes: true, OpNotIncludes: true, OpIn: true, OpNotIn: true, OpType: true,
}

// unary operators take no expected value
func (o Operator) unary() bool {
	return o == OpExists || o == OpNotExists
}

// Expectation is one parsed check
type Expectation struct {
	Subject  string
	Operator Operator
	Expected any
	Source   string
}

func (e *Expectation) String() string {
	return e.Source
}

// Parse reads "<subject> <operator> [expected]"
func Parse(expr string) (*Expectation, error) {
	rest := strings.TrimSpace(expr)

	subject, rest := nextToken(rest)
	if subject == "" {
		return nil, fmt.Errorf("expectation %q: missing subject", expr)
	}
	if subject == "header" {
		var name string
		name, rest = nextToken(rest)
		if name == "" {
			return nil, fmt.Errorf("expectation %q: header name required", expr)
		}
		subject += " " + name
	}

	opText, rest := nextToken(rest)
	op := Operator(opText)
	if !operators[op] {
		return nil, fmt.Errorf("expectation %q: unknown operator %q", expr, opText)
	}

	e := &Expectation{Subject: subject, Operator: op, Source: strings.TrimSpace(expr)}
	switch {
	case op.unary() && rest != "":
		return nil, fmt.Errorf("expectation %q: %s takes no value", expr, op)
	case !op.unary() && rest == "":
		return nil, fmt.Errorf("expectation %q: %s needs a value", expr, op)
	case rest != "":
		e.Expected = parseValue(rest)
	}
	return e, nil
}

func nextToken(s string) (token, rest string) {
	s = strings.TrimLeft(s, " \t")
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimLeft(s[i:], " \t")
	}
	return s, ""
}

func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}
