package engine

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chargepulse/internal/models"
	"chargepulse/internal/timing"
)

// ErrChainExhausted means every check in the chain declined to decide. The
// chain is assumed exhaustive for its phase, so this signals a missing rule
// for a reachable state and is never silently defaulted.
var ErrChainExhausted = errors.New("engine: rule chain produced no result")

// Executor evaluates a rule chain strictly in order and returns the first
// decisive status.
type Executor struct {
	bookingTimeout time.Duration
	logger         *zap.Logger
}

// NewExecutor builds an executor. bookingTimeout bounds how long a BOOKED
// session may wait for the user to start charging.
func NewExecutor(bookingTimeout time.Duration, logger *zap.Logger) *Executor {
	return &Executor{
		bookingTimeout: bookingTimeout,
		logger:         logger,
	}
}

// Evaluate runs the chain against the snapshot and duration bundle. Checks
// after the first decisive one are not evaluated.
func (e *Executor) Evaluate(chain []CheckID, snapshot *models.SessionSnapshot, durations *timing.Durations) (models.ChargingStatus, error) {
	if len(chain) == 0 {
		return "", ErrChainExhausted
	}
	for _, id := range chain {
		status, decided, err := e.run(id, snapshot, durations)
		if err != nil {
			return "", err
		}
		if decided {
			e.logger.Info("rule chain decided",
				zap.String("check", string(id)),
				zap.String("booking_id", snapshot.BookingID),
				zap.String("status", status.String()))
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: current_status %s", ErrChainExhausted, snapshot.CurrentStatus)
}

func (e *Executor) run(id CheckID, snapshot *models.SessionSnapshot, durations *timing.Durations) (models.ChargingStatus, bool, error) {
	switch id {
	case CheckBookingTimeout:
		status, decided := e.checkBookingTimeout(snapshot, durations)
		return status, decided, nil
	case CheckStartFailure:
		status, decided := e.checkStartFailure(snapshot)
		return status, decided, nil
	case CheckSuccessfulStart:
		status, decided := e.checkSuccessfulStart(snapshot)
		return status, decided, nil
	case CheckTermination:
		status, decided := e.checkTermination(snapshot)
		return status, decided, nil
	case CheckUnknownError:
		status, decided := e.checkUnknownError(snapshot)
		return status, decided, nil
	case CheckUserInterruption:
		status, decided := e.checkUserInterruption(snapshot)
		return status, decided, nil
	case CheckTimeBasedStatus:
		status, decided := e.checkTimeBasedStatus(snapshot, durations)
		return status, decided, nil
	case CheckEnergyBasedStatus:
		status, decided := e.checkEnergyBasedStatus(snapshot)
		return status, decided, nil
	default:
		return "", false, fmt.Errorf("engine: unknown check %q", id)
	}
}
