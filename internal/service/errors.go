package service

import "fmt"

// Fatal errors abort the evaluation before a decision exists; the boundary
// turns them into the terminal fallback status. WriteError and ChannelError
// happen downstream of a decision and are logged but never escalated.

// FetchError means the session row could not be read or parsed.
type FetchError struct {
	BookingID string
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch session %s: %v", e.BookingID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StrategyError means no rule chain applies to the session's combination of
// start time and completion targets.
type StrategyError struct {
	BookingID string
	Err       error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("select strategy for session %s: %v", e.BookingID, e.Err)
}

func (e *StrategyError) Unwrap() error { return e.Err }

// ChainExhaustionError means the rule chain ran but produced no result,
// which signals a missing rule for a reachable state.
type ChainExhaustionError struct {
	BookingID string
	Err       error
}

func (e *ChainExhaustionError) Error() string {
	return fmt.Sprintf("evaluate rule chain for session %s: %v", e.BookingID, e.Err)
}

func (e *ChainExhaustionError) Unwrap() error { return e.Err }

// WriteError means the decided update record could not be persisted.
type WriteError struct {
	BookingID string
	Err       error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write session update %s: %v", e.BookingID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ChannelError means the live update could not reach the client.
type ChannelError struct {
	ConnectionID string
	Err          error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("push live update to connection %q: %v", e.ConnectionID, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }
