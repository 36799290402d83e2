package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TriggerEvent is the inbound payload that asks for one evaluation of a
// session. Identity and targets are set at booking time; the session row
// carries everything that changes while charging.
type TriggerEvent struct {
	BookingID           string                 `json:"booking_id"`
	StationID           string                 `json:"station_id"`
	VendorID            string                 `json:"vendor_id"`
	ChargerPointID      string                 `json:"charger_point_id"`
	ConnectorPointID    string                 `json:"connector_point_id"`
	TargetDuration      string                 `json:"target_duration_timestamp"`
	TargetEnergyKW      *int                   `json:"target_energy_kw"`
	SocketConnectionID  string                 `json:"socket_connection_id"`
	ExpandedVehicleData map[string]interface{} `json:"expanded_vehicle_data"`
}

// Validate checks the identity fields the engine cannot work without.
func (e TriggerEvent) Validate() error {
	required := map[string]string{
		"booking_id":         e.BookingID,
		"station_id":         e.StationID,
		"vendor_id":          e.VendorID,
		"charger_point_id":   e.ChargerPointID,
		"connector_point_id": e.ConnectorPointID,
	}
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("event: %s is required", name)
		}
	}
	return nil
}

// SessionSnapshot is the immutable view of one session for one evaluation,
// assembled from the trigger event and the fetched session row. The loosely
// typed row is validated here so rule evaluation never touches raw maps.
type SessionSnapshot struct {
	BookingID        string
	StationID        string
	VendorID         string
	ChargerPointID   string
	ConnectorPointID string

	// Completion targets. Exactly one of them drives the rule chain once
	// charging has started.
	TargetDuration string
	TargetEnergyKW *int

	// StartTime is empty until the charger confirms the start.
	StartTime   string
	BookingTime string

	CurrentStatus ChargingStatus
	UserStopped   bool

	// CurrentEnergyConsumed keeps the row value verbatim for the update
	// record; EnergyConsumedKW is the truncated integer the energy check
	// compares, nil when the row value is absent or unparseable.
	CurrentEnergyConsumed string
	EnergyConsumedKW      *int

	// MaxEnergy is the vehicle power capacity reported in the row.
	MaxEnergy string

	// Live is the projection of the fetched row that gets broadcast and
	// embedded into the update record. It reflects pre-update facts,
	// including the row's own current_status.
	Live LiveUpdate
}

// NewSessionSnapshot validates the event and the fetched row and builds the
// snapshot for this evaluation.
func NewSessionSnapshot(event TriggerEvent, row map[string]interface{}) (*SessionSnapshot, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("session row: empty row for booking %s", event.BookingID)
	}

	rawStatus := strings.TrimSpace(stringField(row, "current_status"))
	if rawStatus == "" {
		return nil, fmt.Errorf("session row: current_status missing for booking %s", event.BookingID)
	}
	status := ChargingStatus(rawStatus)
	if !status.Known() {
		return nil, fmt.Errorf("session row: unknown current_status %q for booking %s", rawStatus, event.BookingID)
	}

	snapshot := &SessionSnapshot{
		BookingID:             event.BookingID,
		StationID:             event.StationID,
		VendorID:              event.VendorID,
		ChargerPointID:        event.ChargerPointID,
		ConnectorPointID:      event.ConnectorPointID,
		TargetDuration:        strings.TrimSpace(event.TargetDuration),
		TargetEnergyKW:        event.TargetEnergyKW,
		StartTime:             strings.TrimSpace(stringField(row, "start_time")),
		BookingTime:           strings.TrimSpace(stringField(row, "booking_time")),
		CurrentStatus:         status,
		UserStopped:           boolField(row, "user_stopped"),
		CurrentEnergyConsumed: stringField(row, "current_energy_consumed"),
		MaxEnergy:             vehicleCapacity(row),
		Live:                  liveProjection(row),
	}

	if kw, ok := truncateEnergy(snapshot.CurrentEnergyConsumed); ok {
		snapshot.EnergyConsumedKW = &kw
	}

	return snapshot, nil
}

// Started reports whether the charger has confirmed a start for this session.
func (s *SessionSnapshot) Started() bool {
	return s.StartTime != ""
}

func liveProjection(row map[string]interface{}) LiveUpdate {
	return LiveUpdate{
		CurrentChargingTimer:    stringField(row, "current_charging_timer"),
		TargetDurationTimestamp: stringField(row, "target_duration_timestamp"),
		TargetEnergyKW:          stringField(row, "target_energy_kw"),
		CurrentStatus:           stringField(row, "current_status"),
		EmissionSaved:           stringField(row, "emission_saved"),
		BatteryStatus:           stringField(row, "battery_status"),
		CurrentEnergyConsumed:   stringField(row, "current_energy_consumed"),
		CurrentRange:            stringField(row, "current_range"),
		MaxEnergy:               stringField(row, "max_energy"),
	}
}

func vehicleCapacity(row map[string]interface{}) string {
	vehicle, ok := row["expanded_vehicle_data"].(map[string]interface{})
	if !ok {
		return ""
	}
	return stringField(vehicle, "power_capacity")
}

// truncateEnergy parses a meter reading and truncates it toward zero, so a
// reading of "12.7" compares as 12 against an integer target.
func truncateEnergy(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return int(math.Trunc(parsed)), true
}

func stringField(row map[string]interface{}, key string) string {
	value, ok := row[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func boolField(row map[string]interface{}, key string) bool {
	value, ok := row[key]
	if !ok || value == nil {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && parsed
	default:
		return false
	}
}
