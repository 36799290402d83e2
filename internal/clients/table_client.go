package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"chargepulse/internal/models"
)

// TableClient talks to the generic table service holding session rows.
type TableClient struct {
	baseURL   string
	tableName string
	client    *http.Client
	logger    *zap.Logger
}

// NewTableClient builds the table-service client wrapper.
func NewTableClient(baseURL, tableName string, logger *zap.Logger) *TableClient {
	return &TableClient{
		baseURL:   baseURL,
		tableName: tableName,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger,
	}
}

type readRequest struct {
	ReadTable       bool   `json:"read_table"`
	TableName       string `json:"table_name"`
	PrimaryKey      string `json:"primary_key"`
	PrimaryKeyValue string `json:"primary_key_value"`
	SortKey         string `json:"sort_key"`
	SortKeyValue    string `json:"sort_key_value"`
}

// ReadSession fetches the session row for the booking/vendor pair.
func (c *TableClient) ReadSession(ctx context.Context, bookingID, vendorID string) (map[string]interface{}, error) {
	payload := readRequest{
		ReadTable:       true,
		TableName:       c.tableName,
		PrimaryKey:      "booking_id",
		PrimaryKeyValue: bookingID,
		SortKey:         "vendor_id",
		SortKeyValue:    vendorID,
	}

	resp, err := c.post(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("read session row: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("read session row: table service returned status %d", resp.StatusCode)
	}

	var row map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&row); err != nil {
		return nil, fmt.Errorf("read session row: decode response: %w", err)
	}

	c.logger.Debug("fetched session row",
		zap.String("booking_id", bookingID),
		zap.String("vendor_id", vendorID))
	return row, nil
}

// WriteRecord persists the update record back to the session table.
func (c *TableClient) WriteRecord(ctx context.Context, record *models.UpdateRecord) error {
	resp, err := c.post(ctx, record)
	if err != nil {
		return fmt.Errorf("write session row: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("write session row: table service returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *TableClient) post(ctx context.Context, body interface{}) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("table service request failed", zap.Error(err))
		return nil, err
	}
	return resp, nil
}
