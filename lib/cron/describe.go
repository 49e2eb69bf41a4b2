package cron

import (
	"fmt"
	"strconv"
	"strings"
)

// InvalidDescription is what Describe returns for text that does not parse.
const InvalidDescription = "invalid expression"

// maxListedValues is the largest set Describe spells out value by value.
const maxListedValues = 5

// Describe renders text as an English sentence, for example
// "Runs at minute 0, at hour 9, on weekday 1,2,3,4,5". It never
// fails; unparseable input yields InvalidDescription.
func Describe(text string) string {
	expr, err := ParseExpression(text)
	if err != nil {
		return InvalidDescription
	}
	return expr.Describe()
}

// Describe renders the expression as an English sentence.
func (e *Expression) Describe() string {
	var clauses []string
	add := func(f Field, format string) {
		if f.wildcard {
			return
		}
		clauses = append(clauses, fmt.Sprintf(format, describeValues(f.values)))
	}

	if e.hasSeconds {
		add(e.seconds, "at second %s")
	}
	add(e.minutes, "at minute %s")
	add(e.hours, "at hour %s")
	add(e.days, "on day %s of month")
	add(e.months, "in month %s")
	add(e.daysOfWeek, "on weekday %s")

	if len(clauses) == 0 {
		return "Runs every minute"
	}
	return "Runs " + strings.Join(clauses, ", ")
}

func describeValues(values []int) string {
	if len(values) > maxListedValues {
		return fmt.Sprintf("%d-%d (%d values)", values[0], values[len(values)-1], len(values))
	}
	return joinInts(values, ",")
}

func joinInts(values []int, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, sep)
}
