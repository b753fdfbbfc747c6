package expect

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/webbrowser/packages/http"
	"github.com/tidwall/gjson"
)

var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)

type Result struct {
	Expectation *Expectation
	Passed      bool
	Actual      any
	Message     string
}

// Error lists the expectations a response did not meet
type Error struct {
	Failures []*Result
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = fmt.Sprintf("%s: %s", f.Expectation, f.Message)
	}
	return "expectations failed: " + strings.Join(msgs, "; ")
}

type Evaluator struct {
	response *http.Response
	bodyJSON gjson.Result
	isJSON   bool
}

func NewEvaluator(resp *http.Response) *Evaluator {
	e := &Evaluator{response: resp}
	if resp.IsJSON() || gjson.ValidBytes(resp.Body) {
		e.bodyJSON = gjson.ParseBytes(resp.Body)
		e.isJSON = true
	}
	return e
}

func (e *Evaluator) Evaluate(exp *Expectation) *Result {
	actual := e.actual(exp.Subject)
	passed, msg := compare(actual, exp.Operator, exp.Expected)

	result := &Result{Expectation: exp, Passed: passed, Actual: actual, Message: msg}
	if exp.Operator == OpLength {
		result.Actual = length(actual)
	}
	return result
}

func (e *Evaluator) actual(subject string) any {
	switch {
	case subject == "status":
		return e.response.StatusCode
	case subject == "duration":
		return e.response.DurationMs()
	case strings.HasPrefix(subject, "header "):
		if v := e.response.Header(strings.TrimPrefix(subject, "header ")); v != "" {
			return v
		}
		return nil
	case subject == "body" || strings.HasPrefix(subject, "body.") || strings.HasPrefix(subject, "body["):
		return e.body(strings.TrimPrefix(subject, "body"))
	default:
		return e.body("." + subject)
	}
}

func (e *Evaluator) body(path string) any {
	if !e.isJSON {
		if path == "" {
			return e.response.BodyString()
		}
		return nil
	}

	path = strings.TrimPrefix(bracketIndex.ReplaceAllString(path, ".$1"), ".")
	if path == "" {
		return e.bodyJSON.Value()
	}
	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil
	}
	return result.Value()
}

// EvaluateAll runs every expectation and returns an *Error when any fails
func EvaluateAll(resp *http.Response, exps []*Expectation) ([]*Result, error) {
	evaluator := NewEvaluator(resp)
	results := make([]*Result, len(exps))

	var failed []*Result
	for i, exp := range exps {
		results[i] = evaluator.Evaluate(exp)
		if !results[i].Passed {
			failed = append(failed, results[i])
		}
	}
	if len(failed) > 0 {
		return results, &Error{Failures: failed}
	}
	return results, nil
}

func compare(actual any, op Operator, expected any) (bool, string) {
	switch op {
	case OpEquals:
		return equals(actual, expected)
	case OpNotEquals:
		passed, _ := equals(actual, expected)
		return check(!passed, "expected not to equal %v", expected)
	case OpGreaterThan, OpGreaterOrEqual, OpLessThan, OpLessOrEqual:
		return compareNumeric(actual, expected, op)
	case OpContains:
		return check(strings.Contains(str(actual), str(expected)), "expected '%v' to contain '%v'", actual, expected)
	case OpNotContains:
		return check(!strings.Contains(str(actual), str(expected)), "expected '%v' not to contain '%v'", actual, expected)
	case OpStartsWith:
		return check(strings.HasPrefix(str(actual), str(expected)), "expected '%v' to start with '%v'", actual, expected)
	case OpEndsWith:
		return check(strings.HasSuffix(str(actual), str(expected)), "expected '%v' to end with '%v'", actual, expected)
	case OpMatches:
		return matches(actual, expected)
	case OpExists:
		return check(actual != nil, "expected to exist")
	case OpNotExists:
		return check(actual == nil, "expected not to exist, got %v", actual)
	case OpLength:
		return hasLength(actual, expected)
	case OpIncludes:
		return includes(actual, expected)
	case OpNotIncludes:
		passed, _ := includes(actual, expected)
		return check(!passed, "expected array not to include %v", expected)
	case OpIn:
		return in(actual, expected)
	case OpNotIn:
		passed, _ := in(actual, expected)
		return check(!passed, "expected %v not to be in %v", actual, expected)
	case OpType:
		return typeCheck(actual, expected)
	default:
		return false, fmt.Sprintf("unknown operator: %s", op)
	}
}

func check(ok bool, format string, args ...any) (bool, string) {
	if ok {
		return true, ""
	}
	return false, fmt.Sprintf(format, args...)
}

func str(v any) string {
	return fmt.Sprintf("%v", v)
}

func equals(actual, expected any) (bool, string) {
	if reflect.DeepEqual(actual, expected) {
		return true, ""
	}
	a, aOk := toFloat64(actual)
	b, bOk := toFloat64(expected)
	if aOk && bOk && a == b {
		return true, ""
	}
	return check(str(actual) == str(expected), "expected %v, got %v", expected, actual)
}

func compareNumeric(actual, expected any, op Operator) (bool, string) {
	a, aOk := toFloat64(actual)
	b, bOk := toFloat64(expected)
	if !aOk || !bOk {
		return false, fmt.Sprintf("cannot compare non-numeric values: %v %s %v", actual, op, expected)
	}

	var passed bool
	switch op {
	case OpGreaterThan:
		passed = a > b
	case OpGreaterOrEqual:
		passed = a >= b
	case OpLessThan:
		passed = a < b
	case OpLessOrEqual:
		passed = a <= b
	}
	return check(passed, "expected %v %s %v", actual, op, expected)
}

func matches(actual, expected any) (bool, string) {
	pattern := strings.TrimSuffix(strings.TrimPrefix(str(expected), "/"), "/")
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, fmt.Sprintf("invalid regex pattern: %v", err)
	}
	return check(re.MatchString(str(actual)), "expected '%v' to match /%v/", actual, pattern)
}

// length returns the length of a value, or -1 if it has none
func length(v any) int {
	switch val := v.(type) {
	case string:
		return len(val)
	case []any:
		return len(val)
	case map[string]any:
		return len(val)
	default:
		return -1
	}
}

func hasLength(actual, expected any) (bool, string) {
	want, ok := toFloat64(expected)
	if !ok {
		return false, fmt.Sprintf("expected length must be a number, got %v", expected)
	}
	got := length(actual)
	if got == -1 {
		return false, fmt.Sprintf("cannot get length of %T", actual)
	}
	return check(got == int(want), "expected length %d, got %d", int(want), got)
}

func includes(actual, expected any) (bool, string) {
	arr, ok := actual.([]any)
	if !ok {
		return false, fmt.Sprintf("expected array, got %T", actual)
	}
	for _, item := range arr {
		if passed, _ := equals(item, expected); passed {
			return true, ""
		}
	}
	return false, fmt.Sprintf("expected array to include %v", expected)
}

func in(actual, expected any) (bool, string) {
	arr, ok := expected.([]any)
	if !ok {
		return false, fmt.Sprintf("expected array for 'in' operator, got %T", expected)
	}
	for _, item := range arr {
		if passed, _ := equals(actual, item); passed {
			return true, ""
		}
	}
	return false, fmt.Sprintf("expected %v to be in %v", actual, expected)
}

func typeCheck(actual, expected any) (bool, string) {
	var actualType string
	switch actual.(type) {
	case nil:
		actualType = "null"
	case bool:
		actualType = "boolean"
	case float64, int, int64:
		actualType = "number"
	case string:
		actualType = "string"
	case []any:
		actualType = "array"
	case map[string]any:
		actualType = "object"
	default:
		actualType = reflect.TypeOf(actual).String()
	}
	return check(actualType == str(expected), "expected type %v, got %s", expected, actualType)
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
