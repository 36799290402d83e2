package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestStatusClientPing(t *testing.T) {
	var query map[string]string
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{
			"booking_id": r.URL.Query().Get("booking_id"),
			"vendor_id":  r.URL.Query().Get("vendor_id"),
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"status": "refreshed"})
	}))
	defer server.Close()

	client := NewStatusClient(server.URL, zap.NewNop())
	result := client.Ping(context.Background(), "booking-1", "vendor-1", map[string]interface{}{"power_capacity": 60})

	if result["status"] != "refreshed" {
		t.Fatalf("unexpected ping result: %v", result)
	}
	if query["booking_id"] != "booking-1" || query["vendor_id"] != "vendor-1" {
		t.Fatalf("unexpected query params: %v", query)
	}
	vehicle, ok := body["expanded_vehicle_data"].(map[string]interface{})
	if !ok || vehicle["power_capacity"] != float64(60) {
		t.Fatalf("unexpected ping body: %v", body)
	}
}

func TestStatusClientPingSwallowsFailures(t *testing.T) {
	nonJSON := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("maintenance page"))
	}))
	defer nonJSON.Close()

	client := NewStatusClient(nonJSON.URL, zap.NewNop())
	result := client.Ping(context.Background(), "booking-1", "vendor-1", nil)
	if len(result) != 0 {
		t.Fatalf("expected empty result for non-JSON response, got %v", result)
	}

	client = NewStatusClient("http://127.0.0.1:1", zap.NewNop())
	result = client.Ping(context.Background(), "booking-1", "vendor-1", nil)
	if len(result) != 0 {
		t.Fatalf("expected empty result for unreachable service, got %v", result)
	}
}

func TestStatusClientDisabled(t *testing.T) {
	client := NewStatusClient("", zap.NewNop())
	result := client.Ping(context.Background(), "booking-1", "vendor-1", nil)
	if len(result) != 0 {
		t.Fatalf("expected empty result when disabled, got %v", result)
	}
}
