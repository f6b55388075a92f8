package models

import (
	"errors"
	"fmt"
	"strings"
)

// Counter names one of the three vote columns of a recommendation.
type Counter string

const (
	CounterLove Counter = "votesLove"
	CounterUp   Counter = "votesUp"
	CounterDown Counter = "votesDown"
)

var ErrUnknownCounter = errors.New("unknown vote counter")

// Counters lists the counters in display order.
func Counters() []Counter {
	return []Counter{CounterLove, CounterUp, CounterDown}
}

// ParseCounter accepts the column names and the short forms love, up and down.
func ParseCounter(s string) (Counter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "voteslove", "love":
		return CounterLove, nil
	case "votesup", "up":
		return CounterUp, nil
	case "votesdown", "down":
		return CounterDown, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCounter, s)
}

// Column is the table column backing the counter. The columns are
// camelCase, so raw SQL must quote them.
func (c Counter) Column() string {
	switch c {
	case CounterLove, CounterUp, CounterDown:
		return string(c)
	}
	return ""
}

// Of returns the counter's current value on r.
func (c Counter) Of(r Recommendation) int {
	switch c {
	case CounterLove:
		return r.VotesLove
	case CounterUp:
		return r.VotesUp
	case CounterDown:
		return r.VotesDown
	}
	return 0
}

// Increment adds one to the counter on r.
func (c Counter) Increment(r *Recommendation) {
	switch c {
	case CounterLove:
		r.VotesLove++
	case CounterUp:
		r.VotesUp++
	case CounterDown:
		r.VotesDown++
	}
}

// Valid reports whether c is one of the three known counters.
func (c Counter) Valid() bool {
	return c.Column() != ""
}
