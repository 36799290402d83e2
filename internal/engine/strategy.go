package engine

import "errors"

// CheckID names one rule check the executor can dispatch.
type CheckID string

const (
	CheckBookingTimeout    CheckID = "booking_timeout"
	CheckStartFailure      CheckID = "start_failure"
	CheckSuccessfulStart   CheckID = "successful_start"
	CheckTermination       CheckID = "termination"
	CheckUnknownError      CheckID = "unknown_error"
	CheckUserInterruption  CheckID = "user_interruption"
	CheckTimeBasedStatus   CheckID = "time_based_status"
	CheckEnergyBasedStatus CheckID = "energy_based_status"
)

// ErrNoStrategy means the session state maps to no rule chain: the session
// has started but neither completion mode is configured.
var ErrNoStrategy = errors.New("engine: no rule chain applicable to session state")

// SelectStrategy returns the ordered rule chain for this evaluation.
// Terminal and override checks come before the completion-threshold check so
// an explicit failure, termination or user stop always wins over a
// still-progressing duration or energy reading.
func SelectStrategy(started, timeTarget, energyTarget bool) ([]CheckID, error) {
	switch {
	case !started:
		return []CheckID{
			CheckBookingTimeout,
			CheckStartFailure,
			CheckUnknownError,
		}, nil
	case timeTarget:
		return []CheckID{
			CheckSuccessfulStart,
			CheckTermination,
			CheckUnknownError,
			CheckUserInterruption,
			CheckTimeBasedStatus,
		}, nil
	case energyTarget:
		return []CheckID{
			CheckSuccessfulStart,
			CheckTermination,
			CheckUnknownError,
			CheckUserInterruption,
			CheckEnergyBasedStatus,
		}, nil
	default:
		return nil, ErrNoStrategy
	}
}
