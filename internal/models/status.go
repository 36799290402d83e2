package models

// ChargingStatus is the lifecycle state of a charging session as stored in
// the session table.
type ChargingStatus string

// Lifecycle values. The set is closed: rows carrying anything else are
// rejected when the snapshot is built.
const (
	StatusBooked                ChargingStatus = "BOOKED"
	StatusRebooked              ChargingStatus = "REBOOKED"
	StatusStartFailed           ChargingStatus = "START_FAILED"
	StatusStarted               ChargingStatus = "STARTED"
	StatusInProgress            ChargingStatus = "IN_PROGRESS"
	StatusTerminated            ChargingStatus = "TERMINATED"
	StatusUnknownError          ChargingStatus = "UNKNOWN_ERROR"
	StatusProgressUpdateUnknown ChargingStatus = "PROGRESS_UPDATE_UNKNOWN"
	StatusCompleted             ChargingStatus = "COMPLETED"
	StatusUserStopped           ChargingStatus = "USER_STOPPED"
	StatusStopFailed            ChargingStatus = "STOP_FAILED"
)

// AllStatuses lists every lifecycle value. The final-state mapper is tested
// against this list to stay in bijection with the enumeration.
func AllStatuses() []ChargingStatus {
	return []ChargingStatus{
		StatusBooked,
		StatusRebooked,
		StatusStartFailed,
		StatusStarted,
		StatusInProgress,
		StatusTerminated,
		StatusUnknownError,
		StatusProgressUpdateUnknown,
		StatusCompleted,
		StatusUserStopped,
		StatusStopFailed,
	}
}

// Known reports whether s is one of the closed lifecycle values.
func (s ChargingStatus) Known() bool {
	switch s {
	case StatusBooked, StatusRebooked, StatusStartFailed, StatusStarted,
		StatusInProgress, StatusTerminated, StatusUnknownError,
		StatusProgressUpdateUnknown, StatusCompleted, StatusUserStopped,
		StatusStopFailed:
		return true
	}
	return false
}

// Terminal reports whether s is passed through unchanged once reached within
// an evaluation cycle.
func (s ChargingStatus) Terminal() bool {
	switch s {
	case StatusTerminated, StatusUnknownError, StatusProgressUpdateUnknown,
		StatusCompleted, StatusStopFailed:
		return true
	}
	return false
}

func (s ChargingStatus) String() string {
	return string(s)
}
