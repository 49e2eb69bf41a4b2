package cron

import "strings"

// Format re-serializes a parsed expression in canonical form: "*" for
// wildcard fields and comma-joined values otherwise. Step and range
// syntax from the original text is not preserved, so "*/15" comes back
// as "0,15,30,45". Formatting a parsed Format result is idempotent.
func Format(e *Expression) string {
	fields := []Field{e.minutes, e.hours, e.days, e.months, e.daysOfWeek}
	if e.hasSeconds {
		fields = append([]Field{e.seconds}, fields...)
	}

	parts := make([]string, len(fields))
	for i, f := range fields {
		if f.wildcard {
			parts[i] = "*"
			continue
		}
		parts[i] = joinInts(f.values, ",")
	}
	return strings.Join(parts, " ")
}
