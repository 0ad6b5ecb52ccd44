// Package view projects the dashboard state into display strings. It owns no
// state; every call rebuilds the tree from its arguments.
package view

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"gopherwatch/internal/models"
)

const (
	NoAgentsPlaceholder = "No agents connected..."
	NoAlertsPlaceholder = "No alerts triggered yet."

	TimeOfDayLayout = "15:04:05"
)

// Render builds the display tree. Status rows are ordered by service ID;
// alerts keep the order of the list. A nil loc means time.Local.
func Render(status models.StatusMap, alerts models.AlertList, loc *time.Location) models.DisplayTree {
	if loc == nil {
		loc = time.Local
	}

	return models.DisplayTree{
		Agents: renderAgents(status),
		Alerts: renderAlerts(alerts, loc),
	}
}

func renderAgents(status models.StatusMap) models.AgentPanel {
	panel := models.AgentPanel{Rows: []models.AgentRow{}}

	if len(status) == 0 {
		panel.Placeholder = NoAgentsPlaceholder
		return panel
	}

	ids := make([]string, 0, len(status))
	for id := range status {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	for _, id := range ids {
		report := status[id]
		panel.Rows = append(panel.Rows, models.AgentRow{
			ServiceID: id,
			CPU:       fmt.Sprintf("%.2f%%", report.CPUUsage),
			Memory:    fmt.Sprintf("%.2f MB", report.MemoryUsage),
			Requests:  strconv.FormatInt(report.RequestCount, 10),
			UpdatedAt: report.Timestamp,
		})
	}

	return panel
}

func renderAlerts(alerts models.AlertList, loc *time.Location) models.AlertPanel {
	panel := models.AlertPanel{Rows: []models.AlertRow{}}

	if len(alerts) == 0 {
		panel.Placeholder = NoAlertsPlaceholder
		return panel
	}

	for _, alert := range alerts {
		triggered := "-"
		if !alert.TriggeredAt.IsZero() {
			triggered = alert.TriggeredAt.In(loc).Format(TimeOfDayLayout)
		}

		panel.Rows = append(panel.Rows, models.AlertRow{
			ID:          "#" + strconv.FormatInt(alert.ID, 10),
			ServiceName: alert.ServiceName,
			Metric:      alert.Metric,
			Value:       fmt.Sprintf("%.2f", alert.Value),
			TriggeredAt: triggered,
		})
	}

	return panel
}
