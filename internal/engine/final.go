package engine

import (
	"fmt"

	"chargepulse/internal/models"
	"chargepulse/internal/timing"
)

// Mapper turns a decided status into the update record written back to the
// session table. The dispatch below is kept in bijection with the status
// enumeration; an unlisted status is a programming error.
type Mapper struct {
	tableName string
}

// NewMapper builds a mapper targeting the given session table.
func NewMapper(tableName string) *Mapper {
	return &Mapper{tableName: tableName}
}

// Map builds the persistable record for the decided status. Every status
// produces the same record shape, differing only in current_status; the
// embedded live projection carries the pre-update session facts.
func (m *Mapper) Map(status models.ChargingStatus, snapshot *models.SessionSnapshot, durations *timing.Durations) (*models.UpdateRecord, error) {
	switch status {
	case models.StatusBooked,
		models.StatusRebooked,
		models.StatusStartFailed,
		models.StatusStarted,
		models.StatusInProgress,
		models.StatusTerminated,
		models.StatusUnknownError,
		models.StatusProgressUpdateUnknown,
		models.StatusCompleted,
		models.StatusUserStopped,
		models.StatusStopFailed:
		return m.record(status, snapshot, durations), nil
	default:
		return nil, fmt.Errorf("engine: no final-state mapping for status %q", status)
	}
}

func (m *Mapper) record(status models.ChargingStatus, snapshot *models.SessionSnapshot, durations *timing.Durations) *models.UpdateRecord {
	var timer string
	if durations != nil && durations.ChargeElapsed != nil {
		timer = durations.ChargeElapsed.Formatted
	}
	return &models.UpdateRecord{
		UpdateTable: true,
		TableName:   m.tableName,
		PrimaryKey:  map[string]string{"booking_id": snapshot.BookingID},
		SortKey:     map[string]string{"vendor_id": snapshot.VendorID},
		DataToUpdate: models.UpdateFields{
			CurrentStatus:         status,
			CurrentEnergyConsumed: snapshot.CurrentEnergyConsumed,
			MaxEnergy:             snapshot.MaxEnergy,
			CurrentChargingTimer:  timer,
			ChargingStates:        snapshot.Live,
		},
	}
}
