package cron

import "strings"

// Builder composes cron expression strings field by field. Fields
// default to "*". Builder does not validate anything; pass the result
// to ParseExpression for that.
type Builder struct {
	seconds    string
	minutes    string
	hours      string
	days       string
	months     string
	daysOfWeek string

	withSeconds bool
}

// NewBuilder returns a Builder with every field set to "*".
func NewBuilder() *Builder {
	return &Builder{
		seconds:    "*",
		minutes:    "*",
		hours:      "*",
		days:       "*",
		months:     "*",
		daysOfWeek: "*",
	}
}

// Seconds sets the seconds field and switches the output to the
// 6-field grammar.
func (b *Builder) Seconds(value string) *Builder {
	b.seconds = value
	b.withSeconds = true
	return b
}

func (b *Builder) Minutes(value string) *Builder {
	b.minutes = value
	return b
}

func (b *Builder) Hours(value string) *Builder {
	b.hours = value
	return b
}

func (b *Builder) Days(value string) *Builder {
	b.days = value
	return b
}

func (b *Builder) Months(value string) *Builder {
	b.months = value
	return b
}

func (b *Builder) DaysOfWeek(value string) *Builder {
	b.daysOfWeek = value
	return b
}

// Build joins the fields with single spaces.
func (b *Builder) Build() string {
	parts := []string{b.minutes, b.hours, b.days, b.months, b.daysOfWeek}
	if b.withSeconds {
		parts = append([]string{b.seconds}, parts...)
	}
	return strings.Join(parts, " ")
}

// CreateExpression builds a 5-field expression string.
func CreateExpression(minute, hour, day, month, weekday string) string {
	return NewBuilder().
		Minutes(minute).
		Hours(hour).
		Days(day).
		Months(month).
		DaysOfWeek(weekday).
		Build()
}

// CreateExpressionWithSeconds builds a 6-field expression string.
func CreateExpressionWithSeconds(second, minute, hour, day, month, weekday string) string {
	return NewBuilder().
		Seconds(second).
		Minutes(minute).
		Hours(hour).
		Days(day).
		Months(month).
		DaysOfWeek(weekday).
		Build()
}
