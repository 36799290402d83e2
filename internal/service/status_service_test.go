package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"chargepulse/internal/clients"
	"chargepulse/internal/engine"
	"chargepulse/internal/models"
	"chargepulse/internal/observability"
	"chargepulse/internal/timing"
)

// fakeTableService plays the generic table service: answers reads with a
// canned row and records writes.
type fakeTableService struct {
	mu          sync.Mutex
	row         map[string]interface{}
	readStatus  int
	writeStatus int
	writes      []map[string]interface{}
}

func newFakeTableService(row map[string]interface{}) *fakeTableService {
	return &fakeTableService{row: row, readStatus: http.StatusOK, writeStatus: http.StatusOK}
}

func (f *fakeTableService) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if payload["read_table"] == true {
			if f.readStatus >= 300 {
				w.WriteHeader(f.readStatus)
				return
			}
			_ = json.NewEncoder(w).Encode(f.row)
			return
		}
		f.mu.Lock()
		f.writes = append(f.writes, payload)
		f.mu.Unlock()
		w.WriteHeader(f.writeStatus)
	}
}

func (f *fakeTableService) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeTableService) lastWrite() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) == 0 {
		return nil
	}
	return f.writes[len(f.writes)-1]
}

type fakeNotifier struct {
	mu     sync.Mutex
	pushes map[string][][]byte
	err    error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{pushes: make(map[string][][]byte)}
}

func (f *fakeNotifier) Push(connectionID string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.pushes[connectionID] = append(f.pushes[connectionID], payload)
	return nil
}

func (f *fakeNotifier) pushCount(connectionID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushes[connectionID])
}

func (f *fakeNotifier) lastPush(connectionID string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	pushes := f.pushes[connectionID]
	if len(pushes) == 0 {
		return nil
	}
	return pushes[len(pushes)-1]
}

func nowString(offset time.Duration) string {
	return time.Now().UTC().Add(offset).Format(timing.TimestampLayout)
}

func testRow(status string) map[string]interface{} {
	return map[string]interface{}{
		"current_status":          status,
		"user_stopped":            false,
		"booking_time":            nowString(-2 * time.Minute),
		"start_time":              "",
		"current_energy_consumed": "5",
		"battery_status":          "80",
		"expanded_vehicle_data": map[string]interface{}{
			"power_capacity": "60",
		},
	}
}

func testEvent() models.TriggerEvent {
	return models.TriggerEvent{
		BookingID:          "booking-1",
		StationID:          "station-1",
		VendorID:           "vendor-1",
		ChargerPointID:     "charger-1",
		ConnectorPointID:   "connector-1",
		SocketConnectionID: "conn-1",
	}
}

func newTestService(t *testing.T, table *fakeTableService, notifier Notifier, statusURL string) (*StatusService, func()) {
	t.Helper()
	server := httptest.NewServer(table.handler())

	logger := zap.NewNop()
	svc := NewStatusService(
		clients.NewTableClient(server.URL, "ChargingSessionRecords", logger),
		clients.NewStatusClient(statusURL, logger),
		notifier,
		nil,
		engine.NewExecutor(5*time.Minute, logger),
		engine.NewMapper("ChargingSessionRecords"),
		observability.NewMetrics(),
		logger,
	)
	return svc, server.Close
}

func TestBookedSessionStaysBooked(t *testing.T) {
	table := newFakeTableService(testRow("BOOKED"))
	svc, closeServer := newTestService(t, table, newFakeNotifier(), "")
	defer closeServer()

	status, err := svc.Evaluate(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if status != models.StatusBooked {
		t.Fatalf("expected BOOKED, got %s", status)
	}
}

func TestBookedSessionTimesOut(t *testing.T) {
	row := testRow("BOOKED")
	row["booking_time"] = nowString(-6 * time.Minute)
	table := newFakeTableService(row)
	svc, closeServer := newTestService(t, table, newFakeNotifier(), "")
	defer closeServer()

	status, err := svc.Evaluate(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if status != models.StatusStartFailed {
		t.Fatalf("expected START_FAILED, got %s", status)
	}
}

func TestStartedSessionPromotedAndPersisted(t *testing.T) {
	row := testRow("STARTED")
	row["start_time"] = nowString(-2 * time.Minute)
	table := newFakeTableService(row)
	notifier := newFakeNotifier()
	svc, closeServer := newTestService(t, table, notifier, "")
	defer closeServer()

	event := testEvent()
	event.TargetDuration = "00:10:00"

	status, err := svc.Evaluate(context.Background(), event)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if status != models.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", status)
	}

	write := table.lastWrite()
	if write == nil {
		t.Fatal("expected a persisted update record")
	}
	data, _ := write["data_to_update"].(map[string]interface{})
	if data == nil {
		t.Fatalf("missing data_to_update: %v", write)
	}
	if data["current_status"] != "IN_PROGRESS" {
		t.Fatalf("expected persisted IN_PROGRESS, got %v", data["current_status"])
	}
	if data["current_charging_timer"] != "00:02:00" {
		t.Fatalf("expected timer 00:02:00, got %v", data["current_charging_timer"])
	}
	if data["max_energy"] != "60" {
		t.Fatalf("expected max_energy 60, got %v", data["max_energy"])
	}

	// The live projection carries the pre-update row facts.
	if notifier.pushCount("conn-1") != 1 {
		t.Fatalf("expected one live push, got %d", notifier.pushCount("conn-1"))
	}
	var live map[string]interface{}
	if err := json.Unmarshal(notifier.lastPush("conn-1"), &live); err != nil {
		t.Fatalf("decode live payload: %v", err)
	}
	if live["current_status"] != "STARTED" {
		t.Fatalf("expected live projection with row status STARTED, got %v", live["current_status"])
	}
	if live["battery_status"] != "80" {
		t.Fatalf("expected live battery status, got %v", live)
	}
}

func TestTimeTargetReachedCompletes(t *testing.T) {
	row := testRow("IN_PROGRESS")
	row["start_time"] = nowString(-2 * time.Minute)
	table := newFakeTableService(row)
	svc, closeServer := newTestService(t, table, newFakeNotifier(), "")
	defer closeServer()

	event := testEvent()
	event.TargetDuration = "00:02:00"

	status, err := svc.Evaluate(context.Background(), event)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if status != models.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", status)
	}
}

func TestEnergyTargetReachedCompletes(t *testing.T) {
	row := testRow("IN_PROGRESS")
	row["start_time"] = nowString(-2 * time.Minute)
	row["current_energy_consumed"] = "21"
	table := newFakeTableService(row)
	svc, closeServer := newTestService(t, table, newFakeNotifier(), "")
	defer closeServer()

	event := testEvent()
	target := 20
	event.TargetEnergyKW = &target

	status, err := svc.Evaluate(context.Background(), event)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if status != models.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", status)
	}
}

func TestFailedUserStopWinsOverElapsedTarget(t *testing.T) {
	row := testRow("STOP_FAILED")
	row["start_time"] = nowString(-2 * time.Minute)
	row["user_stopped"] = true
	table := newFakeTableService(row)
	svc, closeServer := newTestService(t, table, newFakeNotifier(), "")
	defer closeServer()

	event := testEvent()
	event.TargetDuration = "00:01:00"

	status, err := svc.Evaluate(context.Background(), event)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if status != models.StatusStopFailed {
		t.Fatalf("expected STOP_FAILED, got %s", status)
	}
}

func TestFetchFailureIsFatal(t *testing.T) {
	table := newFakeTableService(testRow("BOOKED"))
	table.readStatus = http.StatusInternalServerError
	svc, closeServer := newTestService(t, table, newFakeNotifier(), "")
	defer closeServer()

	_, err := svc.Evaluate(context.Background(), testEvent())
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}

	if status := svc.EvaluateWithFallback(context.Background(), testEvent()); status != models.StatusTerminated {
		t.Fatalf("expected fallback TERMINATED, got %s", status)
	}
}

func TestUnparsableRowIsFatal(t *testing.T) {
	row := testRow("BOOKED")
	delete(row, "current_status")
	table := newFakeTableService(row)
	svc, closeServer := newTestService(t, table, newFakeNotifier(), "")
	defer closeServer()

	_, err := svc.Evaluate(context.Background(), testEvent())
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError for unparsable row, got %v", err)
	}
}

func TestStartedSessionWithoutTargetsIsStrategyError(t *testing.T) {
	row := testRow("IN_PROGRESS")
	row["start_time"] = nowString(-2 * time.Minute)
	table := newFakeTableService(row)
	svc, closeServer := newTestService(t, table, newFakeNotifier(), "")
	defer closeServer()

	_, err := svc.Evaluate(context.Background(), testEvent())
	var strategyErr *StrategyError
	if !errors.As(err, &strategyErr) {
		t.Fatalf("expected StrategyError, got %v", err)
	}
	if !errors.Is(err, engine.ErrNoStrategy) {
		t.Fatalf("expected wrapped ErrNoStrategy, got %v", err)
	}

	if status := svc.EvaluateWithFallback(context.Background(), testEvent()); status != models.StatusTerminated {
		t.Fatalf("expected fallback TERMINATED, got %s", status)
	}
}

func TestWriteFailureDoesNotChangeDecision(t *testing.T) {
	row := testRow("STARTED")
	row["start_time"] = nowString(-2 * time.Minute)
	table := newFakeTableService(row)
	table.writeStatus = http.StatusBadGateway
	svc, closeServer := newTestService(t, table, newFakeNotifier(), "")
	defer closeServer()

	event := testEvent()
	event.TargetDuration = "00:10:00"

	status, err := svc.Evaluate(context.Background(), event)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if status != models.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS despite write failure, got %s", status)
	}
	if table.writeCount() != 1 {
		t.Fatalf("expected one write attempt, got %d", table.writeCount())
	}
}

func TestChannelFailureIsSwallowed(t *testing.T) {
	row := testRow("STARTED")
	row["start_time"] = nowString(-2 * time.Minute)
	table := newFakeTableService(row)
	notifier := newFakeNotifier()
	notifier.err = errors.New("socket gone")
	svc, closeServer := newTestService(t, table, notifier, "")
	defer closeServer()

	event := testEvent()
	event.TargetDuration = "00:10:00"

	status, err := svc.Evaluate(context.Background(), event)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if status != models.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS despite push failure, got %s", status)
	}
}

func TestMissingConnectionIDIsSwallowed(t *testing.T) {
	row := testRow("STARTED")
	row["start_time"] = nowString(-2 * time.Minute)
	table := newFakeTableService(row)
	notifier := newFakeNotifier()
	svc, closeServer := newTestService(t, table, notifier, "")
	defer closeServer()

	event := testEvent()
	event.TargetDuration = "00:10:00"
	event.SocketConnectionID = ""

	status, err := svc.Evaluate(context.Background(), event)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if status != models.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", status)
	}
	if notifier.pushCount("") != 0 {
		t.Fatal("expected no push without a connection id")
	}
}

func TestStatusPingHappensBeforeFetch(t *testing.T) {
	var pinged bool
	statusServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pinged = true
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer statusServer.Close()

	table := newFakeTableService(testRow("BOOKED"))
	svc, closeServer := newTestService(t, table, newFakeNotifier(), statusServer.URL)
	defer closeServer()

	if _, err := svc.Evaluate(context.Background(), testEvent()); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !pinged {
		t.Fatal("expected the status service to be pinged")
	}
}
