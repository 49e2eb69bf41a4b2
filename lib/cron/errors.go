package cron

import "fmt"

// FormatError is returned for every cron parse failure: wrong token
// count, empty field, malformed range or step, or an unresolvable or
// out-of-range value. Any failing field rejects the whole expression.
type FormatError struct {
	// Expression is the text that failed to parse.
	Expression string
	// Field names the failing field ("minute", "day-of-week", ...).
	// Empty when the failure is not specific to one field.
	Field string
	Err   error
}

func (e *FormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("cron: invalid expression %q: %v", e.Expression, e.Err)
	}
	return fmt.Sprintf("cron: invalid expression %q: %s field: %v", e.Expression, e.Field, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
