package ws

import (
	"time"

	"github.com/google/uuid"
)

// BuzzKind classifies a buzz within the current round
type BuzzKind int

const (
	BuzzAlready BuzzKind = iota
	BuzzFirst
	BuzzLater
)

func (k BuzzKind) String() string {
	switch k {
	case BuzzAlready:
		return "already"
	case BuzzFirst:
		return "first"
	default:
		return "later"
	}
}

// BuzzResult is the outcome of Run.Buzz. Diff is only meaningful for BuzzLater.
type BuzzResult struct {
	Kind BuzzKind
	Diff time.Duration
}

type buzz struct {
	participant uuid.UUID
	at          time.Time
}

// Run holds the buzz order of a single round. It is owned by one room
// goroutine and never shared.
type Run struct {
	buzzes []buzz
	cursor int
}

func NewRun() *Run { return &Run{} }

// Buzz records a participant's buzz. A participant already in the round
// gets BuzzAlready and the order is left untouched.
func (r *Run) Buzz(id uuid.UUID, at time.Time) BuzzResult {
	// newest first: the usual duplicate is someone hammering the button
	for i := len(r.buzzes) - 1; i >= 0; i-- {
		if r.buzzes[i].participant == id {
			return BuzzResult{Kind: BuzzAlready}
		}
	}
	r.buzzes = append(r.buzzes, buzz{participant: id, at: at})
	if len(r.buzzes) == 1 {
		return BuzzResult{Kind: BuzzFirst}
	}
	diff := at.Sub(r.buzzes[0].at)
	if diff < 0 {
		diff = 0
	}
	return BuzzResult{Kind: BuzzLater, Diff: diff}
}

// SelectNext moves the selection to the buzzer after the current one.
// ok is false when fewer than two buzzed or the last one is already selected.
func (r *Run) SelectNext() (prev, next uuid.UUID, ok bool) {
	if len(r.buzzes) < 2 || r.cursor >= len(r.buzzes)-1 {
		return uuid.Nil, uuid.Nil, false
	}
	prev = r.buzzes[r.cursor].participant
	r.cursor++
	return prev, r.buzzes[r.cursor].participant, true
}

// Winner returns the first buzzer of the round, if any
func (r *Run) Winner() (uuid.UUID, bool) {
	if len(r.buzzes) == 0 {
		return uuid.Nil, false
	}
	return r.buzzes[0].participant, true
}

// Len reports how many participants buzzed this round
func (r *Run) Len() int { return len(r.buzzes) }
