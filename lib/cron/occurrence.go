package cron

import (
	"context"
	"time"
)

// SearchHorizon is the number of minutes the occurrence search inspects
// before giving up, roughly four years.
const SearchHorizon = 4 * 365 * 24 * 60

// cancelCheckInterval is how many steps run between context checks.
const cancelCheckInterval = 24 * 60

// now is replaced in tests.
var now = time.Now

// NextOccurrence returns the first minute strictly after from that
// matches the expression. from is truncated to the minute first. ok is
// false when nothing matches within SearchHorizon minutes.
//
// The search steps whole minutes, so candidates always have second 0.
// A 6-field expression whose seconds field excludes 0 never produces
// an occurrence even though IsMatch evaluates seconds normally.
func (e *Expression) NextOccurrence(from time.Time) (time.Time, bool) {
	t, ok, _ := e.search(context.Background(), from, time.Minute)
	return t, ok
}

// PreviousOccurrence returns the last minute strictly before the
// truncated from that matches the expression.
func (e *Expression) PreviousOccurrence(from time.Time) (time.Time, bool) {
	t, ok, _ := e.search(context.Background(), from, -time.Minute)
	return t, ok
}

// NextOccurrenceContext is NextOccurrence that stops early with
// ctx.Err() once ctx is done.
func (e *Expression) NextOccurrenceContext(ctx context.Context, from time.Time) (time.Time, bool, error) {
	return e.search(ctx, from, time.Minute)
}

// PreviousOccurrenceContext is PreviousOccurrence that stops early with
// ctx.Err() once ctx is done.
func (e *Expression) PreviousOccurrenceContext(ctx context.Context, from time.Time) (time.Time, bool, error) {
	return e.search(ctx, from, -time.Minute)
}

// NextOccurrences returns up to count occurrences in chronological
// order, each seeded from the one before. It stops early when a search
// comes back empty, so the result may be shorter than count.
func (e *Expression) NextOccurrences(count int, from time.Time) []time.Time {
	results := make([]time.Time, 0, max(count, 0))
	seed := from
	for len(results) < count {
		next, ok := e.NextOccurrence(seed)
		if !ok {
			break
		}
		results = append(results, next)
		seed = next
	}
	return results
}

// Between returns every matching minute in [start, end) in
// chronological order. start is truncated to the minute.
func (e *Expression) Between(start, end time.Time) []time.Time {
	results := []time.Time{}
	if e.hasSeconds && !e.seconds.Contains(0) {
		return results
	}

	for current := truncateMinute(start); current.Before(end); current = current.Add(time.Minute) {
		if e.IsMatch(current) {
			results = append(results, current)
		}
	}
	return results
}

func (e *Expression) search(ctx context.Context, from time.Time, step time.Duration) (time.Time, bool, error) {
	if e.hasSeconds && !e.seconds.Contains(0) {
		// every candidate has second 0; the full walk cannot succeed
		return time.Time{}, false, nil
	}

	current := truncateMinute(from)
	for i := 0; i < SearchHorizon; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return time.Time{}, false, err
			}
		}
		current = current.Add(step)
		if e.IsMatch(current) {
			return current, true, nil
		}
	}
	return time.Time{}, false, nil
}

// truncateMinute drops seconds and sub-seconds from t's wall clock.
// time.Truncate works on absolute time and would misbehave for zones
// with sub-minute offsets.
func truncateMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

func seedOrNow(from time.Time) time.Time {
	if from.IsZero() {
		return now()
	}
	return from
}

// NextOccurrence parses text and returns its next occurrence after
// from. A zero from means the current time.
func NextOccurrence(text string, from time.Time) (time.Time, bool, error) {
	expr, err := ParseExpression(text)
	if err != nil {
		return time.Time{}, false, err
	}
	t, ok := expr.NextOccurrence(seedOrNow(from))
	return t, ok, nil
}

// PreviousOccurrence parses text and returns its previous occurrence
// before from. A zero from means the current time.
func PreviousOccurrence(text string, from time.Time) (time.Time, bool, error) {
	expr, err := ParseExpression(text)
	if err != nil {
		return time.Time{}, false, err
	}
	t, ok := expr.PreviousOccurrence(seedOrNow(from))
	return t, ok, nil
}

// NextOccurrences parses text and returns up to count occurrences after
// from. A zero from means the current time.
func NextOccurrences(text string, count int, from time.Time) ([]time.Time, error) {
	expr, err := ParseExpression(text)
	if err != nil {
		return nil, err
	}
	return expr.NextOccurrences(count, seedOrNow(from)), nil
}
