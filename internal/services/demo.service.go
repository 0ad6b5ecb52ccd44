package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"gopherwatch/internal/db"
	"gopherwatch/internal/logger"
	"gopherwatch/internal/models"
)

const (
	MetricCPU    = "CPU"
	MetricMemory = "MEMORY"

	defaultMaxAlerts   = 50
	simulatedMemoryMax = 16000.0
	simulatedMaxReqs   = 500
	churnProbability   = 0.05
	storeTimeout       = 3 * time.Second
)

// AlertRule fires when the named metric of a report exceeds Threshold.
type AlertRule struct {
	Metric    string
	Threshold float64
}

// DefaultAlertRules are the thresholds the demo backend evaluates.
var DefaultAlertRules = []AlertRule{
	{Metric: MetricCPU, Threshold: 90.0},
	{Metric: MetricMemory, Threshold: 8000.0},
}

// AlertStore keeps triggered alerts and assigns their IDs.
type AlertStore interface {
	SaveAlert(ctx context.Context, alert models.Alert) (models.Alert, error)
	RecentAlerts(ctx context.Context, limit int) (models.AlertList, error)
	Close() error
}

type DemoConfig struct {
	Agents int
	Rules  []AlertRule
	// MaxAlerts bounds the alert history served. Zero means 50.
	MaxAlerts int
	// Store defaults to an in-memory store holding MaxAlerts alerts.
	Store AlertStore
	// Seed makes the simulated agents reproducible. Zero picks a random seed.
	Seed       uint64
	SampleHost HostSampler
	Now        func() time.Time
}

// DemoBackend is a stand-in for the monitoring backend. It keeps the latest
// report per agent in memory and the alerts its rules triggered in an
// AlertStore, and serves both over the same endpoints the dashboard polls.
type DemoBackend struct {
	mu        sync.RWMutex
	agents    models.StatusMap
	requests  int64
	rules     []AlertRule
	maxAlerts int
	store     AlertStore

	simulated  int
	rng        *rand.Rand
	sampleHost HostSampler
	hostID     string
	now        func() time.Time
	logger     logger.Logger
}

func NewDemoBackend(cfg DemoConfig, log logger.Logger) *DemoBackend {
	if cfg.Rules == nil {
		cfg.Rules = DefaultAlertRules
	}

	if cfg.MaxAlerts <= 0 {
		cfg.MaxAlerts = defaultMaxAlerts
	}

	if cfg.Store == nil {
		cfg.Store = db.NewMemoryStore(cfg.MaxAlerts)
	}

	if cfg.Seed == 0 {
		cfg.Seed = rand.Uint64()
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "localhost"
	}

	return &DemoBackend{
		agents:     models.StatusMap{},
		rules:      cfg.Rules,
		maxAlerts:  cfg.MaxAlerts,
		store:      cfg.Store,
		simulated:  cfg.Agents,
		rng:        rand.New(rand.NewPCG(cfg.Seed, cfg.Seed>>1)),
		sampleHost: cfg.SampleHost,
		hostID:     "host-" + hostname,
		now:        cfg.Now,
		logger:     log.WithComponent("demo-backend"),
	}
}

// Report stores the latest report for serviceID and evaluates the rules
// against it.
func (d *DemoBackend) Report(serviceID string, report models.AgentStatusReport) {
	d.mu.Lock()
	d.agents[serviceID] = report
	d.mu.Unlock()

	d.save(d.evaluate(serviceID, report))
}

// RemoveAgent forgets an agent that disconnected.
func (d *DemoBackend) RemoveAgent(serviceID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.agents, serviceID)
}

// Status returns a copy of the latest report per agent.
func (d *DemoBackend) Status() models.StatusMap {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.agents.Clone()
}

// AlertHistory returns the most recent alerts, newest first.
func (d *DemoBackend) AlertHistory(ctx context.Context) (models.AlertList, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	return d.store.RecentAlerts(ctx, d.maxAlerts)
}

// Close releases the alert store.
func (d *DemoBackend) Close() error {
	return d.store.Close()
}

// Run simulates one reporting round right away and then one per interval
// until ctx is done.
func (d *DemoBackend) Run(ctx context.Context, interval time.Duration) {
	d.logger.Info().
		Int("agents", d.simulated).
		Bool("local_host", d.sampleHost != nil).
		Dur("interval", interval).
		Msg("Demo backend simulation started")

	d.Simulate()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info().Msg("Demo backend simulation stopped")
			return
		case <-ticker.C:
			d.Simulate()
		}
	}
}

// Simulate runs one round: every simulated agent either reports fresh
// random load or drops out until the next round, and the local host
// reports its real load.
func (d *DemoBackend) Simulate() {
	now := d.now()

	for i := 1; i <= d.simulated; i++ {
		serviceID := fmt.Sprintf("service-agent-%03d", i)

		d.mu.Lock()
		if d.rng.Float64() < churnProbability {
			delete(d.agents, serviceID)
			d.mu.Unlock()

			d.logger.Debug().Str("service_id", serviceID).Msg("Agent disconnected")

			continue
		}

		report := models.AgentStatusReport{
			CPUUsage:     d.rng.Float64() * 100.0,
			MemoryUsage:  d.rng.Float64() * simulatedMemoryMax,
			RequestCount: int64(d.rng.IntN(simulatedMaxReqs)),
			Timestamp:    now.UTC().Format(time.RFC3339),
		}
		d.agents[serviceID] = report
		d.mu.Unlock()

		d.save(d.evaluate(serviceID, report))
	}

	if d.sampleHost == nil {
		return
	}

	d.mu.Lock()
	d.requests++
	requests := d.requests
	d.mu.Unlock()

	report, err := hostReport(d.sampleHost, requests, now)
	if err != nil {
		d.logger.Warn().Err(err).Msg("Failed to sample local host")
		return
	}

	d.Report(d.hostID, report)
}

// evaluate returns the alerts report triggers, without IDs.
func (d *DemoBackend) evaluate(serviceID string, report models.AgentStatusReport) []models.Alert {
	var triggered []models.Alert

	for _, rule := range d.rules {
		var value float64

		switch rule.Metric {
		case MetricCPU:
			value = report.CPUUsage
		case MetricMemory:
			value = report.MemoryUsage
		default:
			continue
		}

		if value <= rule.Threshold {
			continue
		}

		triggered = append(triggered, models.Alert{
			ServiceName: serviceID,
			Metric:      rule.Metric,
			Value:       value,
			TriggeredAt: models.Timestamp{Time: d.now().UTC()},
		})
	}

	return triggered
}

func (d *DemoBackend) save(alerts []models.Alert) {
	for _, alert := range alerts {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		saved, err := d.store.SaveAlert(ctx, alert)
		cancel()

		if err != nil {
			d.logger.Error().Err(err).Str("service", alert.ServiceName).Msg("Failed to save alert")
			continue
		}

		d.logger.Debug().
			Int64("id", saved.ID).
			Str("service", saved.ServiceName).
			Str("metric", saved.Metric).
			Float64("value", saved.Value).
			Msg("Alert triggered")
	}
}
