package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopherwatch/internal/models"
)

func TestRenderScenario(t *testing.T) {
	status := models.StatusMap{
		"svc-1": {CPUUsage: 42.567, MemoryUsage: 128.0, RequestCount: 10, Timestamp: "2024-01-01T00:00:00Z"},
	}
	alerts := models.AlertList{{
		ID:          1,
		ServiceName: "svc-1",
		Metric:      "cpu",
		Value:       95.1,
		TriggeredAt: models.Timestamp{Time: time.Date(2024, 1, 1, 0, 0, 5, 0, time.UTC)},
	}}

	tree := Render(status, alerts, time.UTC)

	require.Len(t, tree.Agents.Rows, 1)
	assert.Empty(t, tree.Agents.Placeholder)
	assert.Equal(t, models.AgentRow{
		ServiceID: "svc-1",
		CPU:       "42.57%",
		Memory:    "128.00 MB",
		Requests:  "10",
		UpdatedAt: "2024-01-01T00:00:00Z",
	}, tree.Agents.Rows[0])

	require.Len(t, tree.Alerts.Rows, 1)
	assert.Empty(t, tree.Alerts.Placeholder)
	assert.Equal(t, models.AlertRow{
		ID:          "#1",
		ServiceName: "svc-1",
		Metric:      "cpu",
		Value:       "95.10",
		TriggeredAt: "00:00:05",
	}, tree.Alerts.Rows[0])
}

func TestRenderUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	alerts := models.AlertList{{ID: 7, TriggeredAt: models.Timestamp{Time: time.Date(2024, 1, 1, 0, 0, 5, 0, time.UTC)}}}

	tree := Render(nil, alerts, tokyo)

	assert.Equal(t, "09:00:05", tree.Alerts.Rows[0].TriggeredAt)
}

func TestRenderPlaceholders(t *testing.T) {
	for _, tree := range []models.DisplayTree{
		Render(nil, nil, nil),
		Render(models.StatusMap{}, models.AlertList{}, time.UTC),
	} {
		assert.Empty(t, tree.Agents.Rows)
		assert.NotNil(t, tree.Agents.Rows)
		assert.Equal(t, NoAgentsPlaceholder, tree.Agents.Placeholder)
		assert.Empty(t, tree.Alerts.Rows)
		assert.Equal(t, NoAlertsPlaceholder, tree.Alerts.Placeholder)
	}
}

func TestRenderMissingFieldsShowZero(t *testing.T) {
	tree := Render(models.StatusMap{"bare": {}}, models.AlertList{{ID: 3}}, time.UTC)

	row := tree.Agents.Rows[0]
	assert.Equal(t, "0.00%", row.CPU)
	assert.Equal(t, "0.00 MB", row.Memory)
	assert.Equal(t, "0", row.Requests)
	assert.Equal(t, "-", tree.Alerts.Rows[0].TriggeredAt)
}

func TestRenderOrdering(t *testing.T) {
	status := models.StatusMap{"c": {}, "a": {}, "b": {}}
	alerts := models.AlertList{{ID: 9}, {ID: 2}, {ID: 5}}

	tree := Render(status, alerts, time.UTC)

	var ids []string
	for _, row := range tree.Agents.Rows {
		ids = append(ids, row.ServiceID)
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids)

	var alertIDs []string
	for _, row := range tree.Alerts.Rows {
		alertIDs = append(alertIDs, row.ID)
	}

	assert.Equal(t, []string{"#9", "#2", "#5"}, alertIDs)
}
