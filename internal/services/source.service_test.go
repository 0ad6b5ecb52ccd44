package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherwatch/internal/models"
)

const testBackend = "http://backend.test"

func newMockedClient(t *testing.T, timeout time.Duration) (*BackendClient, *httpmock.MockTransport) {
	t.Helper()

	transport := httpmock.NewMockTransport()
	client := NewBackendClient(testBackend+"/", timeout, &http.Client{Transport: transport})

	return client, transport
}

func TestFetchStatus(t *testing.T) {
	client, transport := newMockedClient(t, time.Second)
	transport.RegisterResponder(http.MethodGet, testBackend+StatusPath, httpmock.NewStringResponder(http.StatusOK,
		`{"svc-1":{"cpu_usage":42.567,"memory_usage":128.0,"request_count":10,"timestamp":"2024-01-01T00:00:00Z"}}`))

	status, err := client.FetchStatus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.StatusMap{
		"svc-1": {CPUUsage: 42.567, MemoryUsage: 128, RequestCount: 10, Timestamp: "2024-01-01T00:00:00Z"},
	}, status)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestFetchAlerts(t *testing.T) {
	client, transport := newMockedClient(t, time.Second)
	transport.RegisterResponder(http.MethodGet, testBackend+AlertsPath, httpmock.NewStringResponder(http.StatusOK,
		`[{"id":2,"service_name":"svc-2","metric":"MEMORY","value":8100.5,"triggered_at":1704067205000},
		  {"id":1,"service_name":"svc-1","metric":"cpu","value":95.1,"triggered_at":"2024-01-01T00:00:05Z"}]`))

	alerts, err := client.FetchAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	instant := time.Date(2024, 1, 1, 0, 0, 5, 0, time.UTC)

	assert.Equal(t, int64(2), alerts[0].ID, "order must be kept")
	assert.True(t, instant.Equal(alerts[0].TriggeredAt.Time))
	assert.Equal(t, "svc-1", alerts[1].ServiceName)
	assert.InDelta(t, 95.1, alerts[1].Value, 1e-9)
	assert.True(t, instant.Equal(alerts[1].TriggeredAt.Time))
}

func TestFetchEmptyPayloads(t *testing.T) {
	for _, body := range []string{"null", "", "  \n", "{}"} {
		client, transport := newMockedClient(t, time.Second)
		transport.RegisterResponder(http.MethodGet, testBackend+StatusPath, httpmock.NewStringResponder(http.StatusOK, body))

		status, err := client.FetchStatus(context.Background())
		require.NoError(t, err, "body %q", body)
		assert.NotNil(t, status)
		assert.Empty(t, status)
	}

	for _, body := range []string{"null", "", "[]"} {
		client, transport := newMockedClient(t, time.Second)
		transport.RegisterResponder(http.MethodGet, testBackend+AlertsPath, httpmock.NewStringResponder(http.StatusOK, body))

		alerts, err := client.FetchAlerts(context.Background())
		require.NoError(t, err, "body %q", body)
		assert.NotNil(t, alerts)
		assert.Empty(t, alerts)
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		responder httpmock.Responder
		check     func(t *testing.T, err error)
	}{
		{
			name:      "transport",
			path:      StatusPath,
			responder: httpmock.NewErrorResponder(errors.New("connection refused")),
			check: func(t *testing.T, err error) {
				var target *TransportError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, sourceStatus, target.Source)
			},
		},
		{
			name:      "http status",
			path:      AlertsPath,
			responder: httpmock.NewStringResponder(http.StatusServiceUnavailable, `{"error":"down"}`),
			check: func(t *testing.T, err error) {
				var target *HTTPError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, http.StatusServiceUnavailable, target.StatusCode)
				assert.Equal(t, sourceAlerts, target.Source)
			},
		},
		{
			name:      "malformed json",
			path:      StatusPath,
			responder: httpmock.NewStringResponder(http.StatusOK, `{"svc-1":`),
			check: func(t *testing.T, err error) {
				var target *DecodeError
				require.ErrorAs(t, err, &target)
			},
		},
		{
			name:      "wrong shape",
			path:      StatusPath,
			responder: httpmock.NewStringResponder(http.StatusOK, `[1,2,3]`),
			check: func(t *testing.T, err error) {
				var target *DecodeError
				require.ErrorAs(t, err, &target)
			},
		},
		{
			name:      "invalid status timestamp",
			path:      StatusPath,
			responder: httpmock.NewStringResponder(http.StatusOK, `{"svc-1":{"cpu_usage":1,"timestamp":"noon"}}`),
			check: func(t *testing.T, err error) {
				var target *DecodeError
				require.ErrorAs(t, err, &target)
				assert.ErrorIs(t, err, models.ErrInvalidTimestamp)
			},
		},
		{
			name:      "invalid alert timestamp",
			path:      AlertsPath,
			responder: httpmock.NewStringResponder(http.StatusOK, `[{"id":1,"triggered_at":true}]`),
			check: func(t *testing.T, err error) {
				var target *DecodeError
				require.ErrorAs(t, err, &target)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, transport := newMockedClient(t, time.Second)
			transport.RegisterResponder(http.MethodGet, testBackend+tt.path, tt.responder)

			var err error
			if tt.path == StatusPath {
				var status models.StatusMap
				status, err = client.FetchStatus(context.Background())
				assert.Nil(t, status)
			} else {
				var alerts models.AlertList
				alerts, err = client.FetchAlerts(context.Background())
				assert.Nil(t, alerts)
			}

			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestFetchTimeout(t *testing.T) {
	client, transport := newMockedClient(t, 20*time.Millisecond)
	transport.RegisterResponder(http.MethodGet, testBackend+StatusPath,
		func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		})

	start := time.Now()
	_, err := client.FetchStatus(context.Background())

	var target *TransportError
	require.ErrorAs(t, err, &target)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, models.OutcomeTransportError, classifyFetchError(err))
}

func TestClassifyFetchError(t *testing.T) {
	assert.Equal(t, models.OutcomeHTTPError, classifyFetchError(&HTTPError{StatusCode: 500}))
	assert.Equal(t, models.OutcomeDecodeError, classifyFetchError(&DecodeError{Err: errors.New("x")}))
	assert.Equal(t, models.OutcomeTransportError, classifyFetchError(&TransportError{Err: errors.New("x")}))
	assert.Equal(t, models.OutcomeTransportError, classifyFetchError(errors.New("anything else")))
}
