package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// StatusClient pings the external status service before an evaluation. The
// result is informational only and never blocks the flow.
type StatusClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewStatusClient builds the status-service client wrapper.
func NewStatusClient(baseURL string, logger *zap.Logger) *StatusClient {
	return &StatusClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger,
	}
}

type statusPingRequest struct {
	ExpandedVehicleData map[string]interface{} `json:"expanded_vehicle_data"`
}

// Ping asks the status service to refresh its view of the session. Any
// failure, including a non-JSON response, yields an empty result.
func (c *StatusClient) Ping(ctx context.Context, bookingID, vendorID string, vehicleData map[string]interface{}) map[string]interface{} {
	if c.baseURL == "" {
		c.logger.Debug("status client disabled, skipping ping")
		return map[string]interface{}{}
	}

	data, err := json.Marshal(statusPingRequest{ExpandedVehicleData: vehicleData})
	if err != nil {
		c.logger.Warn("status ping payload encode failed", zap.Error(err))
		return map[string]interface{}{}
	}

	params := url.Values{}
	params.Set("booking_id", bookingID)
	params.Set("vendor_id", vendorID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"?"+params.Encode(), bytes.NewReader(data))
	if err != nil {
		c.logger.Warn("status ping request build failed", zap.Error(err))
		return map[string]interface{}{}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("status ping failed", zap.Error(err))
		return map[string]interface{}{}
	}
	defer resp.Body.Close()

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("status ping returned non-JSON response",
			zap.String("booking_id", bookingID))
		return map[string]interface{}{}
	}

	c.logger.Debug("status ping succeeded", zap.String("booking_id", bookingID))
	return payload
}
