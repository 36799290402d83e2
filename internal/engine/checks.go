package engine

import (
	"time"

	"go.uber.org/zap"

	"chargepulse/internal/models"
	"chargepulse/internal/timing"
)

// checkBookingTimeout handles the pre-start phase. A BOOKED session either
// stays BOOKED or becomes START_FAILED once the booking timeout elapses; a
// REBOOKED session supersedes this booking and keeps its status.
func (e *Executor) checkBookingTimeout(snapshot *models.SessionSnapshot, durations *timing.Durations) (models.ChargingStatus, bool) {
	switch snapshot.CurrentStatus {
	case models.StatusBooked:
		if durations == nil || durations.BookingElapsed == nil {
			// No booking_time to measure against; let the chain exhaust
			// rather than guess an elapsed time.
			return "", false
		}
		if truncateSeconds(durations.BookingElapsed.Delta) > truncateSeconds(e.bookingTimeout) {
			e.logger.Info("booking timed out before charge start",
				zap.String("booking_id", snapshot.BookingID),
				zap.String("elapsed", durations.BookingElapsed.Formatted))
			return models.StatusStartFailed, true
		}
		e.logger.Info("session booked, waiting for user to start",
			zap.String("booking_id", snapshot.BookingID))
		return models.StatusBooked, true
	case models.StatusRebooked:
		e.logger.Info("booking superseded by a rebooking",
			zap.String("booking_id", snapshot.BookingID))
		return models.StatusRebooked, true
	default:
		return "", false
	}
}

// checkStartFailure passes a previously failed start through unchanged.
func (e *Executor) checkStartFailure(snapshot *models.SessionSnapshot) (models.ChargingStatus, bool) {
	if snapshot.CurrentStatus == models.StatusStartFailed {
		e.logger.Info("start attempted but failed",
			zap.String("booking_id", snapshot.BookingID))
		return models.StatusStartFailed, true
	}
	return "", false
}

// checkSuccessfulStart promotes a confirmed start to IN_PROGRESS.
func (e *Executor) checkSuccessfulStart(snapshot *models.SessionSnapshot) (models.ChargingStatus, bool) {
	if snapshot.CurrentStatus == models.StatusStarted {
		e.logger.Info("charge start confirmed, marking session in progress",
			zap.String("booking_id", snapshot.BookingID))
		return models.StatusInProgress, true
	}
	return "", false
}

// checkTermination keeps a terminated session terminated.
func (e *Executor) checkTermination(snapshot *models.SessionSnapshot) (models.ChargingStatus, bool) {
	if snapshot.CurrentStatus == models.StatusTerminated {
		e.logger.Info("session terminated, keeping state",
			zap.String("booking_id", snapshot.BookingID))
		return models.StatusTerminated, true
	}
	return "", false
}

// checkUnknownError keeps an errored session in its error state.
func (e *Executor) checkUnknownError(snapshot *models.SessionSnapshot) (models.ChargingStatus, bool) {
	switch snapshot.CurrentStatus {
	case models.StatusUnknownError, models.StatusProgressUpdateUnknown:
		e.logger.Info("session in unknown error state, keeping state",
			zap.String("booking_id", snapshot.BookingID),
			zap.String("status", snapshot.CurrentStatus.String()))
		return snapshot.CurrentStatus, true
	default:
		return "", false
	}
}

// checkUserInterruption resolves user-initiated stops before any completion
// threshold is consulted. A failed stop keeps STOP_FAILED even when the
// target has already been reached; the session only completes on a later
// evaluation once user_stopped is cleared.
func (e *Executor) checkUserInterruption(snapshot *models.SessionSnapshot) (models.ChargingStatus, bool) {
	if !snapshot.UserStopped {
		return "", false
	}
	switch snapshot.CurrentStatus {
	case models.StatusCompleted:
		e.logger.Info("user stopped charging, session completed",
			zap.String("booking_id", snapshot.BookingID))
		return models.StatusCompleted, true
	case models.StatusStopFailed:
		e.logger.Info("user stop attempt failed, keeping state",
			zap.String("booking_id", snapshot.BookingID))
		return models.StatusStopFailed, true
	default:
		return "", false
	}
}

// checkTimeBasedStatus compares elapsed charging time against the target
// duration. Reaching the target exactly counts as completed.
func (e *Executor) checkTimeBasedStatus(snapshot *models.SessionSnapshot, durations *timing.Durations) (models.ChargingStatus, bool) {
	if durations == nil || durations.ChargeElapsed == nil || durations.Target == nil {
		return "", false
	}
	elapsed := truncateSeconds(durations.ChargeElapsed.Delta)
	if elapsed >= truncateSeconds(*durations.Target) {
		e.logger.Info("target duration reached, session completed",
			zap.String("booking_id", snapshot.BookingID),
			zap.String("elapsed", durations.ChargeElapsed.Formatted))
		return models.StatusCompleted, true
	}
	e.logger.Info("charging in progress",
		zap.String("booking_id", snapshot.BookingID),
		zap.String("elapsed", durations.ChargeElapsed.Formatted))
	return models.StatusInProgress, true
}

// checkEnergyBasedStatus compares delivered energy against the target.
// Reaching the target exactly counts as completed.
func (e *Executor) checkEnergyBasedStatus(snapshot *models.SessionSnapshot) (models.ChargingStatus, bool) {
	if snapshot.EnergyConsumedKW == nil || snapshot.TargetEnergyKW == nil {
		return "", false
	}
	if *snapshot.EnergyConsumedKW >= *snapshot.TargetEnergyKW {
		e.logger.Info("target energy reached, session completed",
			zap.String("booking_id", snapshot.BookingID),
			zap.Int("energy_kw", *snapshot.EnergyConsumedKW))
		return models.StatusCompleted, true
	}
	e.logger.Info("charging in progress",
		zap.String("booking_id", snapshot.BookingID),
		zap.Int("energy_kw", *snapshot.EnergyConsumedKW))
	return models.StatusInProgress, true
}

// truncateSeconds drops fractional seconds so threshold crossings are judged
// on whole elapsed seconds.
func truncateSeconds(d time.Duration) time.Duration {
	return d.Truncate(time.Second)
}
