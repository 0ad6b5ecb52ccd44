package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"gopherwatch/internal/models"
)

const (
	StatusPath  = "/api/status"
	AlertsPath  = "/api/alerts/history"
	maxBodySize = 16 << 20

	sourceStatus = "status"
	sourceAlerts = "alerts"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// StatusSource returns the current status of every known agent.
type StatusSource interface {
	FetchStatus(ctx context.Context) (models.StatusMap, error)
}

// AlertSource returns the alert history in backend order.
type AlertSource interface {
	FetchAlerts(ctx context.Context) (models.AlertList, error)
}

// BackendClient reads both sources from the GopherWatch REST API.
type BackendClient struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewBackendClient creates a client for baseURL. A nil httpClient uses a
// fresh http.Client; timeout bounds every single request.
func NewBackendClient(baseURL string, timeout time.Duration, httpClient *http.Client) *BackendClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &BackendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  httpClient,
	}
}

// FetchStatus implements StatusSource. A null or empty body yields an empty map.
func (c *BackendClient) FetchStatus(ctx context.Context) (models.StatusMap, error) {
	var status models.StatusMap

	if err := c.getJSON(ctx, sourceStatus, StatusPath, &status); err != nil {
		return nil, err
	}

	for id, report := range status {
		if report.Timestamp == "" {
			continue
		}

		if _, err := time.Parse(time.RFC3339Nano, report.Timestamp); err != nil {
			return nil, &DecodeError{
				Source: sourceStatus,
				Err:    fmt.Errorf("agent %q: %w: %q", id, models.ErrInvalidTimestamp, report.Timestamp),
			}
		}
	}

	if status == nil {
		status = models.StatusMap{}
	}

	return status, nil
}

// FetchAlerts implements AlertSource. A null or empty body yields an empty list.
func (c *BackendClient) FetchAlerts(ctx context.Context) (models.AlertList, error) {
	var alerts models.AlertList

	if err := c.getJSON(ctx, sourceAlerts, AlertsPath, &alerts); err != nil {
		return nil, err
	}

	if alerts == nil {
		alerts = models.AlertList{}
	}

	return alerts, nil
}

// getJSON leaves out untouched when the body is empty.
func (c *BackendClient) getJSON(ctx context.Context, source, path string, out interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return &TransportError{Source: source, Err: err}
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Source: source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return &HTTPError{Source: source, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &TransportError{Source: source, Err: err}
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}

	if err := jsonAPI.Unmarshal(body, out); err != nil {
		return &DecodeError{Source: source, Err: err}
	}

	return nil
}
