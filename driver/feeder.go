// Package driver provides host-facing helpers around the synchronous
// interpreter.StateChart API. spec.md §5 leaves pacing and cancellation to
// the host; RateLimitedFeeder is the one sanctioned place in this module a
// host may wrap interpreter.StateChart.SendEvent with its own throttling,
// using golang.org/x/time/rate — a direct dependency of the teacher
// module with no call site among the retrieved files until now.
package driver

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/fluxstate/scxml"
	"github.com/fluxstate/scxml/interpreter"
)

// RateLimitedFeeder pumps events into a StateChart, no faster than
// Limiter allows. It does not change send_event's semantics — each call
// still produces a new, independent StateChart (spec.md §5) — it only
// paces how quickly a host driving loop may call it.
type RateLimitedFeeder struct {
	Limiter *rate.Limiter
}

// NewRateLimitedFeeder builds a feeder allowing at most eventsPerSecond
// sustained events, with a burst of burst events.
func NewRateLimitedFeeder(eventsPerSecond float64, burst int) *RateLimitedFeeder {
	return &RateLimitedFeeder{Limiter: rate.NewLimiter(rate.Limit(eventsPerSecond), burst)}
}

// Feed waits for the limiter to admit one token (respecting ctx
// cancellation — the host's deadline, per spec.md §5) then calls
// SendEvent, returning the resulting StateChart.
func (f *RateLimitedFeeder) Feed(ctx context.Context, sc *interpreter.StateChart, event scxml.Event) (*interpreter.StateChart, error) {
	if err := f.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}
	return sc.SendEvent(ctx, event), nil
}

// FeedAll feeds events in order, stopping early if ctx is canceled or a
// limiter wait fails. Returns the final StateChart reached.
func (f *RateLimitedFeeder) FeedAll(ctx context.Context, sc *interpreter.StateChart, events []scxml.Event) (*interpreter.StateChart, error) {
	cur := sc
	for _, ev := range events {
		next, err := f.Feed(ctx, cur, ev)
		if err != nil {
			return cur, err
		}
		cur = next
	}
	return cur, nil
}
