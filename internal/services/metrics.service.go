package services

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"gopherwatch/internal/models"
)

const MB = 1024 * 1024

// HostSampler reads the local machine's load. It is swapped out in tests.
type HostSampler func() (cpuPercent, memoryMB float64, err error)

// SampleLocalHost returns the overall CPU percentage and used memory in MB
func SampleLocalHost() (float64, float64, error) {
	percentage, err := cpu.Percent(0, false)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get CPU usage: %w", err)
	}

	virtualMemory, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get memory usage: %w", err)
	}

	cpuPercent := 0.0
	if len(percentage) > 0 {
		cpuPercent = percentage[0]
	}

	return cpuPercent, float64(virtualMemory.Used) / MB, nil
}

// hostReport turns a host sample into an agent report.
func hostReport(sample HostSampler, requests int64, now time.Time) (models.AgentStatusReport, error) {
	cpuPercent, memoryMB, err := sample()
	if err != nil {
		return models.AgentStatusReport{}, err
	}

	return models.AgentStatusReport{
		CPUUsage:     cpuPercent,
		MemoryUsage:  memoryMB,
		RequestCount: requests,
		Timestamp:    now.UTC().Format(time.RFC3339),
	}, nil
}
