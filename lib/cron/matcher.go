package cron

import "time"

// IsMatch reports whether t satisfies every field of the expression.
// The seconds field is only consulted for 6-field expressions. Fields
// are compared against t's wall clock in its own location.
func (e *Expression) IsMatch(t time.Time) bool {
	if e.hasSeconds && !e.seconds.Contains(t.Second()) {
		return false
	}
	return e.minutes.Contains(t.Minute()) &&
		e.hours.Contains(t.Hour()) &&
		e.days.Contains(t.Day()) &&
		e.months.Contains(int(t.Month())) &&
		e.daysOfWeek.Contains(int(t.Weekday()))
}

// IsMatch parses text and reports whether t satisfies it.
func IsMatch(text string, t time.Time) (bool, error) {
	expr, err := ParseExpression(text)
	if err != nil {
		return false, err
	}
	return expr.IsMatch(t), nil
}
