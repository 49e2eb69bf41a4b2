package cron

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// Test helpers

func mustParse(t *testing.T, expr string) *Expression {
	t.Helper()
	e, err := ParseExpression(expr)
	if err != nil {
		t.Fatalf("ParseExpression(%q) unexpected error: %v", expr, err)
	}
	return e
}

func assertTimes(t *testing.T, expected, actual []time.Time) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Fatalf("length mismatch: expected %d times, got %d (%v)", len(expected), len(actual), actual)
	}
	for i := range expected {
		if !expected[i].Equal(actual[i]) {
			t.Errorf("time[%d] mismatch: expected %v, got %v", i, expected[i], actual[i])
		}
	}
}

func assertInts(t *testing.T, expected, actual []int) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Fatalf("length mismatch: expected %v, got %v", expected, actual)
	}
	for i := range expected {
		if expected[i] != actual[i] {
			t.Fatalf("values mismatch: expected %v, got %v", expected, actual)
		}
	}
}

func makeTime(year, month, day, hour, minute int) time.Time {
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
}

func intRange(start, end int) []int {
	out := []int{}
	for v := start; v <= end; v++ {
		out = append(out, v)
	}
	return out
}

// ParseField

func TestParseField_Valid(t *testing.T) {
	tests := []struct {
		token    string
		min, max int
		symbols  map[string]int
		wildcard bool
		want     []int
	}{
		{"*", 0, 59, nil, true, nil},
		{"?", 1, 31, nil, true, nil},
		{"5", 0, 59, nil, false, []int{5}},
		{"1-5", 0, 59, nil, false, []int{1, 2, 3, 4, 5}},
		{"*/15", 0, 59, nil, false, []int{0, 15, 30, 45}},
		{"1-10/3", 0, 59, nil, false, []int{1, 4, 7, 10}},
		{"1,5,3,5", 0, 59, nil, false, []int{1, 3, 5}},
		{"1-10,20-25/5", 0, 59, nil, false, []int{1, 6, 20, 25}},
		{"*/20,5", 0, 59, nil, false, []int{0, 5, 20, 40}},
		{"50-70", 0, 59, nil, false, intRange(50, 59)},
		{"*/10", 1, 31, nil, false, []int{1, 11, 21, 31}},
		{"MON-FRI", 0, 6, weekdayNames, false, []int{1, 2, 3, 4, 5}},
		{"sun,Sat", 0, 6, weekdayNames, false, []int{0, 6}},
		{"jan,Mar,12", 1, 12, monthNames, false, []int{1, 3, 12}},
		{"JAN-DEC/3", 1, 12, monthNames, false, []int{1, 4, 7, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			f, err := ParseField(tt.token, tt.min, tt.max, tt.symbols)
			if err != nil {
				t.Fatalf("ParseField(%q) unexpected error: %v", tt.token, err)
			}
			if f.IsWildcard() != tt.wildcard {
				t.Fatalf("ParseField(%q) wildcard = %v, want %v", tt.token, f.IsWildcard(), tt.wildcard)
			}
			if !tt.wildcard {
				assertInts(t, tt.want, f.Values())
			}
		})
	}
}

func TestParseField_Invalid(t *testing.T) {
	tests := []struct {
		desc    string
		token   string
		symbols map[string]int
		wantErr string
	}{
		{"empty token", "", nil, "empty field"},
		{"zero step", "*/0", nil, "step must be positive"},
		{"negative step", "*/-1", nil, "step must be positive"},
		{"non-numeric step", "*/x", nil, "invalid step"},
		{"incomplete step", "*/", nil, "invalid step"},
		{"missing body", "/5", nil, "missing value before step"},
		{"reversed range", "5-2", nil, "start 5 > end 2"},
		{"out of range", "60", nil, "out of bounds"},
		{"unknown name", "FOO", weekdayNames, "invalid value"},
		{"name without table", "MON", nil, "invalid value"},
		{"double comma", "1,,2", nil, "empty value in list"},
		{"trailing comma", "1,2,", nil, "empty value in list"},
		{"incomplete range", "-", nil, "invalid range start"},
		{"open range", "1-", nil, "invalid range end"},
		{"range outside domain", "70-80", nil, "matches no values"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := ParseField(tt.token, 0, 59, tt.symbols)
			if err == nil {
				t.Fatalf("ParseField(%q) expected error, got nil", tt.token)
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("ParseField(%q) error %T is not a *FormatError", tt.token, err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ParseField(%q) = %q, want error containing %q", tt.token, err, tt.wantErr)
			}
		})
	}
}

func TestField_Contains(t *testing.T) {
	f, err := ParseField("1,15,30", 1, 31, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []int{1, 15, 30} {
		if !f.Contains(v) {
			t.Errorf("Contains(%d) = false, want true", v)
		}
	}
	for _, v := range []int{0, 2, 31} {
		if f.Contains(v) {
			t.Errorf("Contains(%d) = true, want false", v)
		}
	}

	wild, _ := ParseField("*", 0, 59, nil)
	if !wild.Contains(42) {
		t.Error("wildcard field should contain every value")
	}
	if wild.Values() != nil {
		t.Errorf("wildcard Values() = %v, want nil", wild.Values())
	}
}

func TestField_ValuesIsACopy(t *testing.T) {
	f, _ := ParseField("1,2,3", 0, 59, nil)
	vals := f.Values()
	vals[0] = 42
	if f.Contains(42) {
		t.Error("mutating Values() result changed the field")
	}
}

// ParseExpression

func TestParseExpression_Valid(t *testing.T) {
	tests := []struct {
		expr string
		desc string
	}{
		{"* * * * *", "every minute"},
		{"0 0 * * 0", "every Sunday"},
		{"*/15 9-17 * * 1-5", "business hours"},
		{"0,30 8-18 * * *", "twice an hour"},
		{"0 0 1,15 * 1", "day-of-month 1,15 and Mondays"},
		{"0 12 * JAN-MAR MON,wed", "names"},
		{"0 0 ? * ?", "question marks"},
		{"0 0 31 4 *", "April 31st parses"},
		{"30 0 0 * * *", "6 fields"},
		{"  0 \t 0  *  *  *  ", "extra whitespace"},
		{"@daily", "macro"},
		{"@Weekly", "macro mixed case"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if _, err := ParseExpression(tt.expr); err != nil {
				t.Errorf("ParseExpression(%q) unexpected error: %v", tt.expr, err)
			}
			if !IsValidExpression(tt.expr) {
				t.Errorf("IsValidExpression(%q) = false, want true", tt.expr)
			}
		})
	}
}

func TestParseExpression_Invalid(t *testing.T) {
	tests := []struct {
		expr      string
		desc      string
		wantField string
		wantErr   string
	}{
		{"", "empty string", "", "got 0"},
		{"bad", "one token", "", "got 1"},
		{"1 2 3 4", "4 fields", "", "got 4"},
		{"* * * * * * *", "7 fields", "", "got 7"},
		{"@every 5m", "unknown macro", "", "got 2"},
		{"60 * * * *", "minute out of range", "minute", "out of bounds"},
		{"* 24 * * *", "hour out of range", "hour", "out of bounds"},
		{"* * 0 * *", "day 0 invalid", "day-of-month", "out of bounds"},
		{"* * 32 * *", "day out of range", "day-of-month", "out of bounds"},
		{"* * * 13 *", "month out of range", "month", "out of bounds"},
		{"* * * * 7", "day-of-week out of range", "day-of-week", "out of bounds"},
		{"* * * * JAN", "month name in weekday field", "day-of-week", "invalid value"},
		{"* * * MON *", "weekday name in month field", "month", "invalid value"},
		{"5-2 * * * *", "invalid range", "minute", "start 5 > end 2"},
		{"*/0 * * * *", "step of 0", "minute", "step must be positive"},
		{"61 * * * * *", "second out of range", "second", "out of bounds"},
		{"* * * * * x", "non-numeric weekday", "day-of-week", "invalid value"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := ParseExpression(tt.expr)
			if err == nil {
				t.Fatalf("ParseExpression(%q) expected error, got nil", tt.expr)
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("ParseExpression(%q) error %T is not a *FormatError", tt.expr, err)
			}
			if fe.Field != tt.wantField {
				t.Errorf("ParseExpression(%q) field = %q, want %q", tt.expr, fe.Field, tt.wantField)
			}
			if fe.Expression != tt.expr {
				t.Errorf("ParseExpression(%q) error expression = %q", tt.expr, fe.Expression)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ParseExpression(%q) = %q, want error containing %q", tt.expr, err, tt.wantErr)
			}
			if IsValidExpression(tt.expr) {
				t.Errorf("IsValidExpression(%q) = true, want false", tt.expr)
			}
		})
	}
}

func TestParseExpression_GrammarArity(t *testing.T) {
	five := []string{"* * * * *", "0 0 1 1 *", "*/5 1-3 ? JAN SUN", "@hourly"}
	for _, expr := range five {
		if mustParse(t, expr).HasSeconds() {
			t.Errorf("%q: HasSeconds() = true, want false", expr)
		}
	}

	six := []string{"* * * * * *", "0 0 0 1 1 *", "*/10 */5 1-3 ? JAN SUN"}
	for _, expr := range six {
		if !mustParse(t, expr).HasSeconds() {
			t.Errorf("%q: HasSeconds() = false, want true", expr)
		}
	}
}

func TestParseExpression_FiveFieldSecondsIsWildcard(t *testing.T) {
	e := mustParse(t, "0 0 * * *")
	if !e.Seconds().IsWildcard() {
		t.Error("5-field expression should have a wildcard seconds field")
	}
}

// Examples from the expression engine's documented behavior

func TestExample_DailyAtMidnight(t *testing.T) {
	e := mustParse(t, "0 0 * * *")

	if e.HasSeconds() {
		t.Error("expected 5-field expression")
	}
	assertInts(t, []int{0}, e.Minutes().Values())
	assertInts(t, []int{0}, e.Hours().Values())
	for name, f := range map[string]Field{
		"days":       e.Days(),
		"months":     e.Months(),
		"daysOfWeek": e.DaysOfWeek(),
	} {
		if !f.IsWildcard() {
			t.Errorf("%s should be wildcard", name)
		}
	}

	if !e.IsMatch(makeTime(2024, 1, 1, 0, 0)) {
		t.Error("expected match at 2024-01-01T00:00:00")
	}
	if e.IsMatch(makeTime(2024, 1, 1, 0, 1)) {
		t.Error("expected no match at 2024-01-01T00:01:00")
	}
}

func TestExample_DailyMacroEqualsExpansion(t *testing.T) {
	if !mustParse(t, "@daily").Equal(mustParse(t, "0 0 * * *")) {
		t.Error("@daily should be field-equal to 0 0 * * *")
	}
}

func TestExample_StepMinutes(t *testing.T) {
	assertInts(t, []int{0, 15, 30, 45}, mustParse(t, "*/15 * * * *").Minutes().Values())
}

func TestExample_NextNewYear(t *testing.T) {
	e := mustParse(t, "0 0 1 1 *")
	next, ok := e.NextOccurrence(makeTime(2024, 6, 15, 10, 0))
	if !ok {
		t.Fatal("expected an occurrence")
	}
	if want := makeTime(2025, 1, 1, 0, 0); !next.Equal(want) {
		t.Errorf("NextOccurrence = %v, want %v", next, want)
	}
}

func TestExample_February30NeverOccurs(t *testing.T) {
	e := mustParse(t, "0 0 30 2 *")
	if next, ok := e.NextOccurrence(makeTime(2024, 1, 1, 0, 0)); ok {
		t.Errorf("NextOccurrence = %v, want none", next)
	}
	if prev, ok := e.PreviousOccurrence(makeTime(2024, 1, 1, 0, 0)); ok {
		t.Errorf("PreviousOccurrence = %v, want none", prev)
	}
}

func TestExample_InvalidInputs(t *testing.T) {
	for _, expr := range []string{"bad", "1 2 3 4"} {
		if IsValidExpression(expr) {
			t.Errorf("IsValidExpression(%q) = true, want false", expr)
		}
		_, err := ParseExpression(expr)
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Errorf("ParseExpression(%q) error = %v, want *FormatError", expr, err)
		}
	}
}

// Macros

func TestMacros_MatchExpansion(t *testing.T) {
	tests := map[string]string{
		"@yearly":   "0 0 1 1 *",
		"@annually": "0 0 1 1 *",
		"@monthly":  "0 0 1 * *",
		"@weekly":   "0 0 * * 0",
		"@daily":    "0 0 * * *",
		"@midnight": "0 0 * * *",
		"@hourly":   "0 * * * *",
	}

	predefined := PredefinedExpressions()
	if len(predefined) != len(tests) {
		t.Fatalf("PredefinedExpressions() has %d entries, want %d", len(predefined), len(tests))
	}

	for name, expansion := range tests {
		t.Run(name, func(t *testing.T) {
			if predefined[name] != expansion {
				t.Errorf("PredefinedExpressions()[%q] = %q, want %q", name, predefined[name], expansion)
			}
			want := mustParse(t, expansion)
			for _, text := range []string{name, strings.ToUpper(name), "  " + name + "\t"} {
				if !mustParse(t, text).Equal(want) {
					t.Errorf("%q should equal %q", text, expansion)
				}
			}
		})
	}
}

func TestPredefinedExpressions_ReturnsCopy(t *testing.T) {
	first := PredefinedExpressions()
	first["@daily"] = "1 1 1 1 1"
	delete(first, "@hourly")

	second := PredefinedExpressions()
	if second["@daily"] != "0 0 * * *" {
		t.Errorf("@daily = %q after mutating a copy", second["@daily"])
	}
	if _, ok := second["@hourly"]; !ok {
		t.Error("@hourly missing after mutating a copy")
	}
}

// Matcher

func TestIsMatch(t *testing.T) {
	tests := []struct {
		expr string
		at   time.Time
		want bool
	}{
		{"* * * * *", makeTime(2024, 3, 10, 13, 37), true},
		{"30 14 * * *", makeTime(2024, 3, 10, 14, 30), true},
		{"30 14 * * *", makeTime(2024, 3, 10, 14, 31), false},
		{"0 9 * * MON-FRI", makeTime(2024, 1, 1, 9, 0), true},  // Monday
		{"0 9 * * MON-FRI", makeTime(2024, 1, 6, 9, 0), false}, // Saturday
		{"0 0 * * 0", makeTime(2024, 1, 7, 0, 0), true},        // Sunday
		{"0 0 29 2 *", makeTime(2024, 2, 29, 0, 0), true},
		{"0 0 1 JUL *", makeTime(2024, 7, 1, 0, 0), true},
		{"0 0 1 JUL *", makeTime(2024, 8, 1, 0, 0), false},
		// Day-of-month and day-of-week must both match.
		{"0 0 15 * FRI", makeTime(2024, 3, 15, 0, 0), true},  // Friday the 15th
		{"0 0 15 * FRI", makeTime(2024, 3, 8, 0, 0), false},  // Friday the 8th
		{"0 0 15 * FRI", makeTime(2024, 4, 15, 0, 0), false}, // Monday the 15th
	}

	for _, tt := range tests {
		t.Run(tt.expr+" "+tt.at.Format(time.RFC3339), func(t *testing.T) {
			got, err := IsMatch(tt.expr, tt.at)
			if err != nil {
				t.Fatalf("IsMatch(%q) unexpected error: %v", tt.expr, err)
			}
			if got != tt.want {
				t.Errorf("IsMatch(%q, %v) = %v, want %v", tt.expr, tt.at, got, tt.want)
			}
		})
	}
}

func TestIsMatch_Seconds(t *testing.T) {
	e := mustParse(t, "30 15 9 * * *")
	if !e.IsMatch(time.Date(2024, 1, 1, 9, 15, 30, 0, time.UTC)) {
		t.Error("expected match at 09:15:30")
	}
	if e.IsMatch(time.Date(2024, 1, 1, 9, 15, 0, 0, time.UTC)) {
		t.Error("expected no match at 09:15:00")
	}

	// 5-field expressions ignore seconds entirely.
	five := mustParse(t, "15 9 * * *")
	if !five.IsMatch(time.Date(2024, 1, 1, 9, 15, 42, 0, time.UTC)) {
		t.Error("5-field expression should match regardless of seconds")
	}
}

func TestIsMatch_InvalidExpression(t *testing.T) {
	if _, err := IsMatch("* * *", makeTime(2024, 1, 1, 0, 0)); err == nil {
		t.Error("expected error for invalid expression")
	}
}

func TestIsMatch_UsesWallClock(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	e := mustParse(t, "0 9 * * *")
	if !e.IsMatch(time.Date(2024, 1, 1, 9, 0, 0, 0, loc)) {
		t.Error("expected match at 09:00 local wall clock")
	}
}

// NextOccurrence

func TestNext_EveryMinute(t *testing.T) {
	e := mustParse(t, "* * * * *")
	after := time.Date(2024, 1, 1, 10, 30, 45, 0, time.UTC)

	results := e.NextOccurrences(3, after)
	expected := []time.Time{
		makeTime(2024, 1, 1, 10, 31),
		makeTime(2024, 1, 1, 10, 32),
		makeTime(2024, 1, 1, 10, 33),
	}

	assertTimes(t, expected, results)
}

func TestNext_EveryHour(t *testing.T) {
	e := mustParse(t, "0 * * * *")
	after := time.Date(2024, 1, 1, 10, 30, 45, 0, time.UTC)

	results := e.NextOccurrences(3, after)
	expected := []time.Time{
		makeTime(2024, 1, 1, 11, 0),
		makeTime(2024, 1, 1, 12, 0),
		makeTime(2024, 1, 1, 13, 0),
	}

	assertTimes(t, expected, results)
}

func TestNext_DailyAtSpecificTime(t *testing.T) {
	e := mustParse(t, "30 14 * * *")

	results := e.NextOccurrences(3, makeTime(2024, 1, 1, 10, 0))
	expected := []time.Time{
		makeTime(2024, 1, 1, 14, 30),
		makeTime(2024, 1, 2, 14, 30),
		makeTime(2024, 1, 3, 14, 30),
	}
	assertTimes(t, expected, results)

	// After the target time the first run moves to the next day.
	results = e.NextOccurrences(2, makeTime(2024, 1, 1, 15, 0))
	expected = []time.Time{
		makeTime(2024, 1, 2, 14, 30),
		makeTime(2024, 1, 3, 14, 30),
	}
	assertTimes(t, expected, results)
}

func TestNext_StrictlyAfterSeed(t *testing.T) {
	e := mustParse(t, "0 7 * * *")
	next, ok := e.NextOccurrence(makeTime(2026, 2, 18, 7, 0))
	if !ok {
		t.Fatal("expected an occurrence")
	}
	if want := makeTime(2026, 2, 19, 7, 0); !next.Equal(want) {
		t.Errorf("NextOccurrence at 07:00 = %v, want %v", next, want)
	}
}

func TestNext_TruncatesSeed(t *testing.T) {
	e := mustParse(t, "31 10 * * *")
	// 10:30:59.999 truncates to 10:30, so 10:31 is still ahead.
	after := time.Date(2024, 1, 1, 10, 30, 59, 999_000_000, time.UTC)
	next, ok := e.NextOccurrence(after)
	if !ok {
		t.Fatal("expected an occurrence")
	}
	if want := makeTime(2024, 1, 1, 10, 31); !next.Equal(want) {
		t.Errorf("NextOccurrence = %v, want %v", next, want)
	}
}

func TestNext_Weekdays(t *testing.T) {
	e := mustParse(t, "0 9 * * 1-5")
	after := makeTime(2024, 1, 5, 10, 0) // Friday after 9am

	results := e.NextOccurrences(3, after)
	expected := []time.Time{
		makeTime(2024, 1, 8, 9, 0),  // Mon
		makeTime(2024, 1, 9, 9, 0),  // Tue
		makeTime(2024, 1, 10, 9, 0), // Wed
	}

	assertTimes(t, expected, results)
}

func TestNext_SpecificDaysOfMonth(t *testing.T) {
	e := mustParse(t, "0 0 1,15 * *")

	results := e.NextOccurrences(4, makeTime(2024, 1, 1, 0, 0))
	expected := []time.Time{
		makeTime(2024, 1, 15, 0, 0), // Skip current time at Jan 1
		makeTime(2024, 2, 1, 0, 0),
		makeTime(2024, 2, 15, 0, 0),
		makeTime(2024, 3, 1, 0, 0),
	}

	assertTimes(t, expected, results)
}

func TestNext_YearBoundary(t *testing.T) {
	e := mustParse(t, "0 0 * * *")

	results := e.NextOccurrences(3, makeTime(2024, 12, 30, 10, 0))
	expected := []time.Time{
		makeTime(2024, 12, 31, 0, 0),
		makeTime(2025, 1, 1, 0, 0),
		makeTime(2025, 1, 2, 0, 0),
	}

	assertTimes(t, expected, results)
}

func TestNext_LeapYear_Feb29(t *testing.T) {
	e := mustParse(t, "0 0 29 2 *")

	next, ok := e.NextOccurrence(makeTime(2025, 1, 1, 0, 0)) // 2025 is not a leap year
	if !ok {
		t.Fatal("expected an occurrence")
	}
	if want := makeTime(2028, 2, 29, 0, 0); !next.Equal(want) {
		t.Errorf("NextOccurrence = %v, want %v", next, want)
	}
}

func TestNext_LastDayOfMonth(t *testing.T) {
	e := mustParse(t, "0 0 31 * *")

	// Should only match months with 31 days
	results := e.NextOccurrences(7, makeTime(2024, 1, 1, 0, 0))
	expected := []time.Time{
		makeTime(2024, 1, 31, 0, 0),
		makeTime(2024, 3, 31, 0, 0),
		makeTime(2024, 5, 31, 0, 0),
		makeTime(2024, 7, 31, 0, 0),
		makeTime(2024, 8, 31, 0, 0),
		makeTime(2024, 10, 31, 0, 0),
		makeTime(2024, 12, 31, 0, 0),
	}

	assertTimes(t, expected, results)
}

func TestNextOccurrences_StopsAtHorizon(t *testing.T) {
	e := mustParse(t, "0 0 29 2 *")

	// The Feb 29 after 2024 is 1461 days away, one day past the horizon.
	results := e.NextOccurrences(3, makeTime(2024, 1, 1, 0, 0))
	assertTimes(t, []time.Time{makeTime(2024, 2, 29, 0, 0)}, results)
}

func TestNextOccurrences_NonPositiveCount(t *testing.T) {
	e := mustParse(t, "* * * * *")
	for _, count := range []int{0, -1} {
		if got := e.NextOccurrences(count, makeTime(2024, 1, 1, 0, 0)); len(got) != 0 {
			t.Errorf("NextOccurrences(%d) = %v, want empty", count, got)
		}
	}
}

func TestNext_SecondsLimitation(t *testing.T) {
	// Second 0 is reachable by the minute walk.
	e := mustParse(t, "0 30 9 * * *")
	next, ok := e.NextOccurrence(makeTime(2024, 1, 1, 0, 0))
	if !ok {
		t.Fatal("expected an occurrence")
	}
	if want := makeTime(2024, 1, 1, 9, 30); !next.Equal(want) {
		t.Errorf("NextOccurrence = %v, want %v", next, want)
	}

	// Any other second is not.
	e = mustParse(t, "30 * * * * *")
	if next, ok := e.NextOccurrence(makeTime(2024, 1, 1, 0, 0)); ok {
		t.Errorf("NextOccurrence = %v, want none", next)
	}
	if prev, ok := e.PreviousOccurrence(makeTime(2024, 1, 1, 0, 0)); ok {
		t.Errorf("PreviousOccurrence = %v, want none", prev)
	}
}

// PreviousOccurrence

func TestPrevious(t *testing.T) {
	tests := []struct {
		expr string
		from time.Time
		want time.Time
	}{
		{"0 0 * * *", time.Date(2024, 1, 1, 10, 30, 45, 0, time.UTC), makeTime(2024, 1, 1, 0, 0)},
		{"0 0 * * *", makeTime(2024, 1, 1, 0, 0), makeTime(2023, 12, 31, 0, 0)},
		{"0 0 1 1 *", makeTime(2024, 6, 15, 10, 0), makeTime(2024, 1, 1, 0, 0)},
		{"*/15 * * * *", makeTime(2024, 3, 1, 0, 7), makeTime(2024, 3, 1, 0, 0)},
		{"0 0 29 2 *", makeTime(2025, 1, 1, 0, 0), makeTime(2024, 2, 29, 0, 0)},
		{"0 12 * * SAT", makeTime(2024, 1, 1, 0, 0), makeTime(2023, 12, 30, 12, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			prev, ok := mustParse(t, tt.expr).PreviousOccurrence(tt.from)
			if !ok {
				t.Fatal("expected an occurrence")
			}
			if !prev.Equal(tt.want) {
				t.Errorf("PreviousOccurrence(%v) = %v, want %v", tt.from, prev, tt.want)
			}
		})
	}
}

// Between

func TestBetween_BoundariesInclusiveExclusive(t *testing.T) {
	e := mustParse(t, "0 * * * *")
	results := e.Between(makeTime(2024, 1, 1, 10, 0), makeTime(2024, 1, 1, 13, 0))
	expected := []time.Time{
		makeTime(2024, 1, 1, 10, 0),
		makeTime(2024, 1, 1, 11, 0),
		makeTime(2024, 1, 1, 12, 0),
	}
	assertTimes(t, expected, results)
}

func TestBetween_StartAfterEnd(t *testing.T) {
	e := mustParse(t, "* * * * *")
	if got := e.Between(makeTime(2024, 1, 2, 0, 0), makeTime(2024, 1, 1, 0, 0)); len(got) != 0 {
		t.Errorf("Between = %v, want empty", got)
	}
}

// Search properties

func TestNext_ConsistentWithMatcher(t *testing.T) {
	exprs := []string{
		"*/7 * * * *",
		"0 */3 * * *",
		"15,45 9-17 * * MON-FRI",
		"0 0 * * SUN",
		"5 4 1-3 * *",
	}
	seeds := []time.Time{
		makeTime(2024, 2, 28, 23, 50),
		time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC),
		makeTime(2024, 6, 15, 8, 0),
	}

	for _, text := range exprs {
		e := mustParse(t, text)
		for _, seed := range seeds {
			next, ok := e.NextOccurrence(seed)
			if !ok {
				t.Fatalf("%q from %v: expected an occurrence", text, seed)
			}
			if !e.IsMatch(next) {
				t.Errorf("%q: NextOccurrence %v does not match", text, next)
			}
			for m := truncateMinute(seed).Add(time.Minute); m.Before(next); m = m.Add(time.Minute) {
				if e.IsMatch(m) {
					t.Errorf("%q from %v: skipped matching minute %v before %v", text, seed, m, next)
					break
				}
			}

			prev, ok := e.PreviousOccurrence(next)
			if !ok {
				t.Fatalf("%q: expected a previous occurrence before %v", text, next)
			}
			if !prev.Before(next) || !e.IsMatch(prev) {
				t.Errorf("%q: PreviousOccurrence(%v) = %v", text, next, prev)
			}
		}
	}
}

func TestSearchContext_Cancelled(t *testing.T) {
	e := mustParse(t, "0 0 30 2 *")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := e.NextOccurrenceContext(ctx, makeTime(2024, 1, 1, 0, 0))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("NextOccurrenceContext error = %v, want context.Canceled", err)
	}
	if ok {
		t.Error("cancelled search should not report an occurrence")
	}

	_, _, err = e.PreviousOccurrenceContext(ctx, makeTime(2024, 1, 1, 0, 0))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("PreviousOccurrenceContext error = %v, want context.Canceled", err)
	}
}

func TestSearchContext_Found(t *testing.T) {
	e := mustParse(t, "0 0 1 * *")
	next, ok, err := e.NextOccurrenceContext(context.Background(), makeTime(2024, 1, 15, 0, 0))
	if err != nil || !ok {
		t.Fatalf("NextOccurrenceContext = %v, %v, %v", next, ok, err)
	}
	if want := makeTime(2024, 2, 1, 0, 0); !next.Equal(want) {
		t.Errorf("NextOccurrenceContext = %v, want %v", next, want)
	}
}

// Text entry points

func TestTextEntryPoints(t *testing.T) {
	from := makeTime(2024, 1, 1, 0, 0)

	next, ok, err := NextOccurrence("@hourly", from)
	if err != nil || !ok || !next.Equal(makeTime(2024, 1, 1, 1, 0)) {
		t.Errorf("NextOccurrence = %v, %v, %v", next, ok, err)
	}

	prev, ok, err := PreviousOccurrence("@hourly", from)
	if err != nil || !ok || !prev.Equal(makeTime(2023, 12, 31, 23, 0)) {
		t.Errorf("PreviousOccurrence = %v, %v, %v", prev, ok, err)
	}

	list, err := NextOccurrences("@daily", 2, from)
	if err != nil {
		t.Fatal(err)
	}
	assertTimes(t, []time.Time{makeTime(2024, 1, 2, 0, 0), makeTime(2024, 1, 3, 0, 0)}, list)

	if _, _, err := NextOccurrence("nope", from); err == nil {
		t.Error("NextOccurrence: expected error for invalid expression")
	}
	if _, _, err := PreviousOccurrence("nope", from); err == nil {
		t.Error("PreviousOccurrence: expected error for invalid expression")
	}
	if _, err := NextOccurrences("nope", 1, from); err == nil {
		t.Error("NextOccurrences: expected error for invalid expression")
	}
}

func TestTextEntryPoints_ZeroSeedUsesNow(t *testing.T) {
	saved := now
	now = func() time.Time { return time.Date(2024, 5, 5, 5, 5, 5, 0, time.UTC) }
	t.Cleanup(func() { now = saved })

	next, ok, err := NextOccurrence("0 6 * * *", time.Time{})
	if err != nil || !ok {
		t.Fatalf("NextOccurrence = %v, %v, %v", next, ok, err)
	}
	if want := makeTime(2024, 5, 5, 6, 0); !next.Equal(want) {
		t.Errorf("NextOccurrence = %v, want %v", next, want)
	}
}

// Describe

func TestDescribe(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"* * * * *", "Runs every minute"},
		{"* * * * * *", "Runs every minute"},
		{"0 0 * * *", "Runs at minute 0, at hour 0"},
		{"@weekly", "Runs at minute 0, at hour 0, on weekday 0"},
		{"0 9 * * MON-FRI", "Runs at minute 0, at hour 9, on weekday 1,2,3,4,5"},
		{"*/5 * * * *", "Runs at minute 0-55 (12 values)"},
		{"15 30 8 1 JAN *", "Runs at second 15, at minute 30, at hour 8, on day 1 of month, in month 1"},
		{"0 0 1-10 * *", "Runs at minute 0, at hour 0, on day 1-10 (10 values) of month"},
		{"bad", InvalidDescription},
		{"1 2 3 4", InvalidDescription},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			if got := Describe(tt.expr); got != tt.want {
				t.Errorf("Describe(%q) = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

// Builder

func TestBuilder(t *testing.T) {
	tests := []struct {
		desc string
		got  string
		want string
	}{
		{"defaults", NewBuilder().Build(), "* * * * *"},
		{"minutes and hours", NewBuilder().Minutes("0").Hours("9-17").Build(), "0 9-17 * * *"},
		{"seconds switches grammar", NewBuilder().Seconds("30").Build(), "30 * * * * *"},
		{"all fields", NewBuilder().Seconds("0").Minutes("5").Hours("4").Days("3").Months("2").DaysOfWeek("1").Build(), "0 5 4 3 2 1"},
		{"create", CreateExpression("0", "12", "*", "*", "MON"), "0 12 * * MON"},
		{"create with seconds", CreateExpressionWithSeconds("10", "0", "12", "*", "*", "*"), "10 0 12 * * *"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestBuilder_DoesNotValidate(t *testing.T) {
	// April 31st never happens but is well formed.
	text := CreateExpression("0", "0", "31", "4", "*")
	e := mustParse(t, text)
	if _, ok := e.NextOccurrence(makeTime(2024, 1, 1, 0, 0)); ok {
		t.Error("April 31st should never occur")
	}

	// Garbage goes straight through; the parser rejects it.
	text = NewBuilder().Minutes("banana").Build()
	if text != "banana * * * *" {
		t.Errorf("Build() = %q", text)
	}
	if IsValidExpression(text) {
		t.Error("expected builder output with garbage to be invalid")
	}
}

// Format

func TestFormat(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"* * * * *", "* * * * *"},
		{"?  ?  *  *  *", "* * * * *"},
		{"*/15 * * * *", "0,15,30,45 * * * *"},
		{"0 9-11 * JAN,feb MON-WED", "0 9,10,11 * 1,2 1,2,3"},
		{"@monthly", "0 0 1 * *"},
		{"30 */20 * * * *", "30 0,20,40 * * * *"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e := mustParse(t, tt.expr)
			if got := Format(e); got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.expr, got, tt.want)
			}
			if got := e.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat_RoundTripIdempotent(t *testing.T) {
	inputs := []string{
		CreateExpression("*/10", "9-17", "*", "*", "MON-FRI"),
		CreateExpression("0", "0", "1,15", "JAN-JUN/2", "*"),
		CreateExpression("5", "*", "31", "4", "?"),
		CreateExpressionWithSeconds("*/30", "0", "12", "*", "*", "SUN"),
	}

	for _, text := range inputs {
		t.Run(text, func(t *testing.T) {
			e := mustParse(t, text)
			once := Format(e)
			reparsed := mustParse(t, once)
			twice := Format(reparsed)
			if once != twice {
				t.Errorf("Format not idempotent: %q then %q", once, twice)
			}
			if !e.Equal(reparsed) {
				t.Errorf("reparsed %q differs from %q", once, text)
			}
		})
	}
}

// Cache

func TestCache_ReturnsSameExpression(t *testing.T) {
	c := NewCache()
	first, err := c.Parse("0 0 * * *")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Parse("0 0 * * *")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("expected the cached pointer on the second parse")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCache_DoesNotCacheErrors(t *testing.T) {
	c := NewCache()
	if _, err := c.Parse("1 2 3"); err == nil {
		t.Fatal("expected error")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestCache_ConcurrentParse(t *testing.T) {
	c := NewCache()
	exprs := []string{"* * * * *", "@daily", "*/5 * * * *", "0 0 1 1 *"}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := exprs[i%len(exprs)]
			if _, err := c.Parse(text); err != nil {
				t.Errorf("Parse(%q): %v", text, err)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != len(exprs) {
		t.Errorf("Len() = %d, want %d", c.Len(), len(exprs))
	}
}
