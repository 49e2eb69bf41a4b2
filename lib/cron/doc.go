// Package cron parses cron expressions and searches for the times they
// match.
//
// Two grammars are accepted. Five fields: minute hour day-of-month
// month day-of-week. Six fields: second minute hour day-of-month month
// day-of-week. Each field is "*" or "?" (any value), or a comma list of
// values, ranges "a-b" and "*", optionally followed by "/step". Months
// accept JAN-DEC and weekdays SUN-SAT (0=Sunday), case-insensitively.
// The macros @yearly, @annually, @monthly, @weekly, @daily, @midnight
// and @hourly expand to 5-field expressions.
//
// Matching is a plain AND across fields. Day-of-month and day-of-week
// are both required to match when both are restricted.
//
// Occurrence searches walk minute by minute for at most SearchHorizon
// steps and report "not found" instead of an error when nothing
// matches, as happens for "0 0 30 2 *".
//
// Times are treated as naive wall-clock values; no time zone or DST
// adjustment is applied.
package cron
