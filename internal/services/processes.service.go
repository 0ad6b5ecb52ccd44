package services

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"gopherwatch/internal/logger"
	"gopherwatch/internal/models"
)

// ProcessSampler reads the resource usage of one process.
type ProcessSampler func() (models.ProcessStatus, error)

// SelfCollector keeps a recent sample of the dashboard's own resource usage
// for the health endpoint.
type SelfCollector struct {
	mu          sync.RWMutex
	status      models.ProcessStatus
	lastErr     error
	lastUpdated time.Time
	running     bool

	sample ProcessSampler
	logger logger.Logger
}

func NewSelfCollector(sample ProcessSampler, log logger.Logger) *SelfCollector {
	if sample == nil {
		sample = SampleSelf
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	return &SelfCollector{sample: sample, logger: log.WithComponent("self-collector")}
}

// Start samples once and then every interval until ctx is done.
func (c *SelfCollector) Start(ctx context.Context, interval time.Duration) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	c.Collect()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				c.mu.Lock()
				c.running = false
				c.mu.Unlock()

				c.logger.Debug().Msg("Self collector stopped")

				return
			case <-ticker.C:
				c.Collect()
			}
		}
	}()

	c.logger.Debug().Dur("interval", interval).Msg("Self collector started")
}

// Collect takes one sample and caches it.
func (c *SelfCollector) Collect() {
	status, err := c.sample()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastErr = err
	if err != nil {
		c.logger.Warn().Err(err).Msg("Self collection error")
		return
	}

	c.status = status
	c.lastUpdated = time.Now()
}

// Cached returns the latest sample. It returns the last collection error if
// nothing was ever collected.
func (c *SelfCollector) Cached() (models.ProcessStatus, time.Time, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.lastUpdated.IsZero() {
		if c.lastErr != nil {
			return models.ProcessStatus{}, time.Time{}, c.lastErr
		}

		return models.ProcessStatus{}, time.Time{}, errNoSample
	}

	return c.status, c.lastUpdated, nil
}

var errNoSample = fmt.Errorf("no process sample collected yet")

// SampleSelf reads the current process through gopsutil.
func SampleSelf() (models.ProcessStatus, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return models.ProcessStatus{}, fmt.Errorf("failed to open own process: %w", err)
	}

	name, err := p.Name()
	if err != nil {
		name = "unknown"
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		cpuPercent = 0
	}

	memPercent, err := p.MemoryPercent()
	if err != nil {
		memPercent = 0
	}

	var rssMB float64
	if info, err := p.MemoryInfo(); err == nil && info != nil {
		rssMB = float64(info.RSS) / MB
	}

	return models.ProcessStatus{
		PID:        p.Pid,
		Name:       name,
		CPUPercent: cpuPercent,
		MemPercent: memPercent,
		RSSMB:      rssMB,
		Goroutines: runtime.NumGoroutine(),
	}, nil
}
