package cron

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Field is one parsed cron field: either a wildcard that matches any
// value, or an explicit ascending set of allowed values.
type Field struct {
	wildcard bool
	values   []int
}

// IsWildcard reports whether the field matches every value.
func (f Field) IsWildcard() bool {
	return f.wildcard
}

// Values returns a copy of the allowed values in ascending order.
// Wildcard fields return nil.
func (f Field) Values() []int {
	if f.wildcard {
		return nil
	}
	out := make([]int, len(f.values))
	copy(out, f.values)
	return out
}

// Contains reports whether value satisfies the field.
func (f Field) Contains(value int) bool {
	if f.wildcard {
		return true
	}
	// values is sorted, so a binary search is enough
	i := sort.SearchInts(f.values, value)
	return i < len(f.values) && f.values[i] == value
}

// equal reports whether two fields describe the same set.
func (f Field) equal(other Field) bool {
	if f.wildcard != other.wildcard {
		return false
	}
	if len(f.values) != len(other.values) {
		return false
	}
	for i := range f.values {
		if f.values[i] != other.values[i] {
			return false
		}
	}
	return true
}

// ParseField parses a single field token against the domain [min, max].
// symbols, when non-nil, resolves names such as "JAN" or "mon"
// case-insensitively.
func ParseField(token string, min, max int, symbols map[string]int) (Field, error) {
	field, err := parseField(token, min, max, symbols)
	if err != nil {
		return Field{}, &FormatError{Expression: token, Err: err}
	}
	return field, nil
}

// parseField does the work for ParseField and returns unwrapped errors so
// the expression parser can attach the field name.
func parseField(token string, min, max int, symbols map[string]int) (Field, error) {
	if token == "" {
		return Field{}, fmt.Errorf("empty field")
	}

	if token == "*" || token == "?" {
		return Field{wildcard: true}, nil
	}

	// Step applies to everything before the slash: "1-10,20-30/5"
	body, stepText, hasStep := strings.Cut(token, "/")
	step := 1
	if hasStep {
		parsed, err := strconv.Atoi(stepText)
		if err != nil {
			return Field{}, fmt.Errorf("invalid step %q", stepText)
		}
		if parsed <= 0 {
			return Field{}, fmt.Errorf("step must be positive, got %d", parsed)
		}
		step = parsed
	}

	if body == "" {
		return Field{}, fmt.Errorf("missing value before step")
	}

	var values []int
	for _, item := range strings.Split(body, ",") {
		vals, err := parseItem(item, min, max, step, symbols)
		if err != nil {
			return Field{}, err
		}
		values = append(values, vals...)
	}

	if len(values) == 0 {
		return Field{}, fmt.Errorf("%q matches no values in [%d, %d]", token, min, max)
	}

	sort.Ints(values)
	return Field{values: deduplicate(values)}, nil
}

// parseItem parses one comma-separated item: "*", "a-b" or a bare value.
func parseItem(item string, min, max, step int, symbols map[string]int) ([]int, error) {
	if item == "" {
		return nil, fmt.Errorf("empty value in list")
	}

	if item == "*" {
		return expandRange(min, max, step, min, max), nil
	}

	if start, end, isRange := strings.Cut(item, "-"); isRange {
		a, err := resolveValue(start, symbols)
		if err != nil {
			return nil, fmt.Errorf("invalid range start: %w", err)
		}
		b, err := resolveValue(end, symbols)
		if err != nil {
			return nil, fmt.Errorf("invalid range end: %w", err)
		}
		if a > b {
			return nil, fmt.Errorf("invalid range: start %d > end %d", a, b)
		}
		return expandRange(a, b, step, min, max), nil
	}

	val, err := resolveValue(item, symbols)
	if err != nil {
		return nil, err
	}
	if val < min || val > max {
		return nil, fmt.Errorf("value %d out of bounds [%d, %d]", val, min, max)
	}
	return []int{val}, nil
}

// resolveValue parses a numeric value, falling back to the symbol table.
func resolveValue(text string, symbols map[string]int) (int, error) {
	if text == "" {
		return 0, fmt.Errorf("missing value")
	}
	if val, err := strconv.Atoi(text); err == nil {
		return val, nil
	}
	if val, ok := symbols[strings.ToUpper(text)]; ok {
		return val, nil
	}
	return 0, fmt.Errorf("invalid value %q", text)
}

// expandRange returns start, start+step, ... up to end, keeping only the
// values inside [min, max].
func expandRange(start, end, step, min, max int) []int {
	if end > max {
		end = max
	}
	result := []int{}
	for v := start; v <= end; v += step {
		if v >= min {
			result = append(result, v)
		}
		if step > end-v {
			break
		}
	}
	return result
}

// deduplicate removes duplicate values from a sorted slice
func deduplicate(vals []int) []int {
	if len(vals) == 0 {
		return vals
	}

	result := []int{vals[0]}
	for i := 1; i < len(vals); i++ {
		if vals[i] != vals[i-1] {
			result = append(result, vals[i])
		}
	}
	return result
}
