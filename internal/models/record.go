package models

// LiveUpdate is the subset of session fields safe to broadcast to a
// connected client. Everything except the status is optional.
type LiveUpdate struct {
	CurrentChargingTimer    string `json:"current_charging_timer,omitempty"`
	TargetDurationTimestamp string `json:"target_duration_timestamp,omitempty"`
	TargetEnergyKW          string `json:"target_energy_kw,omitempty"`
	CurrentStatus           string `json:"current_status"`
	EmissionSaved           string `json:"emission_saved,omitempty"`
	BatteryStatus           string `json:"battery_status,omitempty"`
	CurrentEnergyConsumed   string `json:"current_energy_consumed,omitempty"`
	CurrentRange            string `json:"current_range,omitempty"`
	MaxEnergy               string `json:"max_energy,omitempty"`
}

// UpdateFields is the field mapping written back to the session row.
type UpdateFields struct {
	CurrentStatus         ChargingStatus `json:"current_status"`
	CurrentEnergyConsumed string         `json:"current_energy_consumed"`
	MaxEnergy             string         `json:"max_energy"`
	CurrentChargingTimer  string         `json:"current_charging_timer"`
	ChargingStates        LiveUpdate     `json:"charging_states"`
}

// UpdateRecord is the mutation the table service applies to the session row.
// Its JSON shape is the table-service write contract.
type UpdateRecord struct {
	UpdateTable  bool              `json:"update_table"`
	TableName    string            `json:"table_name"`
	PrimaryKey   map[string]string `json:"primary_key"`
	SortKey      map[string]string `json:"sort_key"`
	DataToUpdate UpdateFields      `json:"data_to_update"`
}
