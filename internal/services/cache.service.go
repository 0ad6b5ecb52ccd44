package services

import (
	"sync"
	"time"

	"gopherwatch/internal/models"
)

// slot holds the last-known-good value of one source together with the
// generation of the fetch cycle that produced it.
type slot[T any] struct {
	mu         sync.RWMutex
	value      T
	generation uint64
	updatedAt  time.Time
}

// commit replaces the value wholesale if gen is newer than the stored one.
func (s *slot[T]) commit(gen uint64, value T, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen <= s.generation {
		return false
	}

	s.value = value
	s.generation = gen
	s.updatedAt = now

	return true
}

func (s *slot[T]) read() (T, uint64, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.value, s.generation, s.updatedAt
}

// StatusCell is the status map slot. Only the poller writes to it.
type StatusCell struct {
	slot slot[models.StatusMap]
}

func NewStatusCell() *StatusCell {
	c := &StatusCell{}
	c.slot.value = models.StatusMap{}

	return c
}

func (c *StatusCell) commit(gen uint64, value models.StatusMap, now time.Time) bool {
	if value == nil {
		value = models.StatusMap{}
	}

	return c.slot.commit(gen, value, now)
}

// Snapshot returns a copy of the current map.
func (c *StatusCell) Snapshot() StatusSnapshot {
	value, gen, at := c.slot.read()

	return StatusSnapshot{Agents: value.Clone(), Generation: gen, UpdatedAt: at}
}

// AlertCell is the alert list slot. Only the poller writes to it.
type AlertCell struct {
	slot slot[models.AlertList]
}

func NewAlertCell() *AlertCell {
	c := &AlertCell{}
	c.slot.value = models.AlertList{}

	return c
}

func (c *AlertCell) commit(gen uint64, value models.AlertList, now time.Time) bool {
	if value == nil {
		value = models.AlertList{}
	}

	return c.slot.commit(gen, value, now)
}

// Snapshot returns a copy of the current list.
func (c *AlertCell) Snapshot() AlertSnapshot {
	value, gen, at := c.slot.read()

	return AlertSnapshot{Alerts: value.Clone(), Generation: gen, UpdatedAt: at}
}

type StatusSnapshot struct {
	Agents     models.StatusMap `json:"agents"`
	Generation uint64           `json:"generation"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

type AlertSnapshot struct {
	Alerts     models.AlertList `json:"alerts"`
	Generation uint64           `json:"generation"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// DashboardState is the read-only view of both cells handed to consumers.
type DashboardState interface {
	StatusSnapshot() StatusSnapshot
	AlertSnapshot() AlertSnapshot
}

// State bundles the two cells.
type State struct {
	Status *StatusCell
	Alerts *AlertCell
}

func NewState() *State {
	return &State{Status: NewStatusCell(), Alerts: NewAlertCell()}
}

func (s *State) StatusSnapshot() StatusSnapshot { return s.Status.Snapshot() }
func (s *State) AlertSnapshot() AlertSnapshot   { return s.Alerts.Snapshot() }
