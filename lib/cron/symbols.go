package cron

import "strings"

// macros maps the supported @-shorthands to their 5-field expansion.
// Keys are lower case; lookups fold the input first.
var macros = map[string]string{
	"@yearly":   "0 0 1 1 *",
	"@annually": "0 0 1 1 *",
	"@monthly":  "0 0 1 * *",
	"@weekly":   "0 0 * * 0",
	"@daily":    "0 0 * * *",
	"@midnight": "0 0 * * *",
	"@hourly":   "0 * * * *",
}

// monthNames resolves JAN..DEC. Keys are upper case.
var monthNames = map[string]int{
	"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
	"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
}

// weekdayNames resolves SUN..SAT with Sunday as 0, matching time.Weekday.
var weekdayNames = map[string]int{
	"SUN": 0, "MON": 1, "TUE": 2, "WED": 3, "THU": 4, "FRI": 5, "SAT": 6,
}

// PredefinedExpressions returns the supported macros and the 5-field
// expression each expands to. The returned map is a copy.
func PredefinedExpressions() map[string]string {
	out := make(map[string]string, len(macros))
	for name, expr := range macros {
		out[name] = expr
	}
	return out
}

// expandMacro returns the expansion of text if it names a macro, and
// text unchanged otherwise.
func expandMacro(text string) string {
	if expr, ok := macros[strings.ToLower(text)]; ok {
		return expr
	}
	return text
}

// symbolsFor picks the name table for a field domain.
func symbolsFor(max int) map[string]int {
	switch max {
	case 12:
		return monthNames
	case 6:
		return weekdayNames
	}
	return nil
}
