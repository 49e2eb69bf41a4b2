package cron

import (
	"fmt"
	"strings"
)

// Expression is a parsed cron expression. It is immutable and safe to
// share between goroutines.
type Expression struct {
	hasSeconds bool

	seconds    Field // 0-59, wildcard when hasSeconds is false
	minutes    Field // 0-59
	hours      Field // 0-23
	days       Field // 1-31
	months     Field // 1-12
	daysOfWeek Field // 0-6 (0=Sunday)
}

// fieldSpec describes one position in the grammar.
type fieldSpec struct {
	name     string
	min, max int
}

var (
	secondSpec  = fieldSpec{"second", 0, 59}
	minuteSpec  = fieldSpec{"minute", 0, 59}
	hourSpec    = fieldSpec{"hour", 0, 23}
	daySpec     = fieldSpec{"day-of-month", 1, 31}
	monthSpec   = fieldSpec{"month", 1, 12}
	weekdaySpec = fieldSpec{"day-of-week", 0, 6}
)

// ParseExpression parses a 5-field (minute hour day month weekday) or
// 6-field (second minute hour day month weekday) cron expression, or
// one of the macros listed by PredefinedExpressions. Every failure is
// reported as a *FormatError.
func ParseExpression(text string) (*Expression, error) {
	expanded := expandMacro(strings.TrimSpace(text))

	tokens := strings.Fields(expanded)

	var specs []fieldSpec
	switch len(tokens) {
	case 5:
		specs = []fieldSpec{minuteSpec, hourSpec, daySpec, monthSpec, weekdaySpec}
	case 6:
		specs = []fieldSpec{secondSpec, minuteSpec, hourSpec, daySpec, monthSpec, weekdaySpec}
	default:
		return nil, &FormatError{
			Expression: text,
			Err:        fmt.Errorf("expected 5 or 6 fields, got %d", len(tokens)),
		}
	}

	fields := make([]Field, len(tokens))
	for i, token := range tokens {
		spec := specs[i]
		field, err := parseField(token, spec.min, spec.max, symbolsFor(spec.max))
		if err != nil {
			return nil, &FormatError{Expression: text, Field: spec.name, Err: err}
		}
		fields[i] = field
	}

	expr := &Expression{seconds: Field{wildcard: true}}
	if len(fields) == 6 {
		expr.hasSeconds = true
		expr.seconds = fields[0]
		fields = fields[1:]
	}
	expr.minutes = fields[0]
	expr.hours = fields[1]
	expr.days = fields[2]
	expr.months = fields[3]
	expr.daysOfWeek = fields[4]

	return expr, nil
}

// IsValidExpression reports whether text parses.
func IsValidExpression(text string) bool {
	_, err := ParseExpression(text)
	return err == nil
}

// HasSeconds reports whether the expression uses the 6-field grammar.
func (e *Expression) HasSeconds() bool { return e.hasSeconds }

// Seconds returns the seconds field. It is a wildcard for 5-field
// expressions.
func (e *Expression) Seconds() Field { return e.seconds }

// Minutes returns the minutes field.
func (e *Expression) Minutes() Field { return e.minutes }

// Hours returns the hours field.
func (e *Expression) Hours() Field { return e.hours }

// Days returns the day-of-month field.
func (e *Expression) Days() Field { return e.days }

// Months returns the months field.
func (e *Expression) Months() Field { return e.months }

// DaysOfWeek returns the day-of-week field, with Sunday as 0.
func (e *Expression) DaysOfWeek() Field { return e.daysOfWeek }

// Equal reports whether both expressions use the same grammar and
// accept the same values in every field.
func (e *Expression) Equal(other *Expression) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.hasSeconds == other.hasSeconds &&
		e.seconds.equal(other.seconds) &&
		e.minutes.equal(other.minutes) &&
		e.hours.equal(other.hours) &&
		e.days.equal(other.days) &&
		e.months.equal(other.months) &&
		e.daysOfWeek.equal(other.daysOfWeek)
}

// String returns the canonical form produced by Format.
func (e *Expression) String() string {
	return Format(e)
}
