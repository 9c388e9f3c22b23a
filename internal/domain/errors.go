package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a turn arrives for a player with
	// no stored session.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrInvalidTransition is returned when an event is not valid for the
	// session's current phase.
	ErrInvalidTransition = errors.New("event not valid in current phase")
)

// DeckFetchError wraps any failure to obtain a valid shuffled deck:
// transport errors, non-success statuses, and responses that fail deck
// validation. Fatal to the start transition; never retried internally.
type DeckFetchError struct {
	URL string
	Err error
}

func (e *DeckFetchError) Error() string {
	return "fetch deck " + e.URL + ": " + e.Err.Error()
}

func (e *DeckFetchError) Unwrap() error { return e.Err }

// PersistenceError wraps a session store read or write failure. A failed
// save desynchronizes volatile and durable state, so it is always
// surfaced, never swallowed.
type PersistenceError struct {
	Op  string // "load" or "save"
	Err error
}

func (e *PersistenceError) Error() string {
	return "session " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }
