package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"gopherwatch/internal/logger"
	"gopherwatch/internal/models"
)

// DefaultRefreshInterval is the canonical dashboard cadence.
const DefaultRefreshInterval = time.Second

// PollerConfig wires a Poller to its sources and the cells it owns.
type PollerConfig struct {
	StatusSource StatusSource
	AlertSource  AlertSource
	StatusCell   *StatusCell
	AlertCell    *AlertCell
	Interval     time.Duration
	Clock        Clock
	History      *CycleHistory
}

// Poller drives the fetch cycle against both sources and reconciles the
// results into the state cells.
//
// At most one cycle per run is in flight: a tick that fires while the
// previous cycle of the same run is still pending is skipped. Each cycle also carries a generation
// number and the cells reject results older than what they hold, so a late
// completion can never overwrite a newer value.
//
// Results that arrive after Stop are discarded.
type Poller struct {
	statusSource StatusSource
	alertSource  AlertSource
	statusCell   *StatusCell
	alertCell    *AlertCell
	interval     time.Duration
	clock        Clock
	history      *CycleHistory
	logger       logger.Logger

	generation atomic.Uint64

	// mu serializes Start/Stop against result application.
	mu     sync.Mutex
	handle *PollHandle
}

// PollHandle cancels one Start. It is only valid for the poller that issued it.
type PollHandle struct {
	cancel  context.CancelFunc
	done    chan struct{}
	cycles  sync.WaitGroup
	stopped bool

	// inFlight is per run. A cycle left over from a cancelled run does not
	// hold back the next run's first cycle.
	inFlight atomic.Bool
}

func NewPoller(cfg PollerConfig, log logger.Logger) (*Poller, error) {
	if cfg.StatusSource == nil || cfg.AlertSource == nil {
		return nil, ErrNoSources
	}

	if cfg.StatusCell == nil || cfg.AlertCell == nil {
		return nil, ErrNoCells
	}

	if cfg.Interval <= 0 {
		cfg.Interval = DefaultRefreshInterval
	}

	if cfg.Clock == nil {
		cfg.Clock = realClock{}
	}

	if cfg.History == nil {
		cfg.History = NewCycleHistory(defaultMaxCycles)
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Poller{
		statusSource: cfg.StatusSource,
		alertSource:  cfg.AlertSource,
		statusCell:   cfg.StatusCell,
		alertCell:    cfg.AlertCell,
		interval:     cfg.Interval,
		clock:        cfg.Clock,
		history:      cfg.History,
		logger:       log.WithComponent("poller"),
	}, nil
}

// Start triggers one fetch cycle right away and then one per interval until
// Stop is called or ctx is cancelled.
func (p *Poller) Start(ctx context.Context) (*PollHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle != nil {
		return nil, ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	h := &PollHandle{cancel: cancel, done: make(chan struct{})}
	p.handle = h

	ticker := p.clock.Ticker(p.interval)

	p.logger.Info().Dur("interval", p.interval).Msg("Starting dashboard poller")

	p.tick(runCtx, h)

	go p.loop(runCtx, h, ticker)

	return h, nil
}

// Stop halts the ticker and waits for in-flight fetches to settle. Their
// results are not applied. Stopping twice is a no-op.
func (p *Poller) Stop(h *PollHandle) error {
	if h == nil {
		return ErrNilHandle
	}

	p.mu.Lock()
	alreadyStopped := h.stopped
	h.stopped = true

	if p.handle == h {
		p.handle = nil
	}
	p.mu.Unlock()

	h.cancel()
	<-h.done
	h.cycles.Wait()

	if !alreadyStopped {
		p.logger.Info().Msg("Dashboard poller stopped")
	}

	return nil
}

// Diagnostics returns the cycle history.
func (p *Poller) Diagnostics() models.Diagnostics {
	return p.history.Diagnostics()
}

func (p *Poller) loop(ctx context.Context, h *PollHandle, ticker Ticker) {
	defer close(h.done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			h.stopped = true
			if p.handle == h {
				p.handle = nil
			}
			p.mu.Unlock()

			return
		case <-ticker.Chan():
			p.tick(ctx, h)
		}
	}
}

// tick launches a cycle unless the previous one is still in flight.
func (p *Poller) tick(ctx context.Context, h *PollHandle) {
	if !h.inFlight.CompareAndSwap(false, true) {
		p.history.recordSkip()
		p.logger.Debug().Msg("Previous fetch cycle still in flight, skipping tick")

		return
	}

	gen := p.generation.Add(1)

	h.cycles.Add(1)

	go func() {
		defer h.cycles.Done()

		rec := p.runCycle(ctx, h, gen)

		h.inFlight.Store(false)
		p.history.recordCycle(rec)
	}()
}

// runCycle fetches both sources concurrently and applies each result on its own.
func (p *Poller) runCycle(ctx context.Context, h *PollHandle, gen uint64) models.CycleRecord {
	rec := models.CycleRecord{
		Generation: gen,
		StartedAt:  p.clock.Now(),
		Status:     models.OutcomePending,
		Alerts:     models.OutcomePending,
	}

	var g errgroup.Group

	g.Go(func() error {
		var err error
		rec.Status, err = reconcile(ctx, p, h, gen, sourceStatus, p.statusSource.FetchStatus, p.statusCell.commit,
			func(m models.StatusMap) int { return len(m) })

		return err
	})

	g.Go(func() error {
		var err error
		rec.Alerts, err = reconcile(ctx, p, h, gen, sourceAlerts, p.alertSource.FetchAlerts, p.alertCell.commit,
			func(l models.AlertList) int { return len(l) })

		return err
	})

	if err := g.Wait(); err != nil {
		p.logger.Debug().Err(err).Uint64("generation", gen).Msg("Fetch cycle finished with errors")
	}

	rec.Duration = p.clock.Now().Sub(rec.StartedAt)

	return rec
}

// reconcile runs the per-source update: fetch, then on success replace the
// cell wholesale. Any failure leaves the cell untouched.
func reconcile[T any](
	ctx context.Context,
	p *Poller,
	h *PollHandle,
	gen uint64,
	source string,
	fetch func(context.Context) (T, error),
	commit func(uint64, T, time.Time) bool,
	size func(T) int,
) (models.SourceOutcome, error) {
	value, err := guardedFetch(ctx, source, fetch)
	now := p.clock.Now()

	if err != nil {
		if !p.active(ctx, h) {
			return models.OutcomeDiscarded, nil
		}

		p.history.recordFetch(source, err, now)

		outcome := classifyFetchError(err)
		p.logger.Warn().
			Err(err).
			Str("source", source).
			Str("outcome", string(outcome)).
			Uint64("generation", gen).
			Msg("Fetch failed, keeping last known value")

		return outcome, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if h.stopped || ctx.Err() != nil {
		return models.OutcomeDiscarded, nil
	}

	if recovered := p.history.recordFetch(source, nil, now); recovered > 0 {
		p.logger.Info().Str("source", source).Int("failures", recovered).Msg("Source recovered")
	}

	if !commit(gen, value, now) {
		p.logger.Debug().Str("source", source).Uint64("generation", gen).Msg("Dropping stale fetch result")
		return models.OutcomeStale, nil
	}

	if size(value) == 0 {
		return models.OutcomeEmpty, nil
	}

	return models.OutcomeOK, nil
}

// guardedFetch turns a panic inside a source into a TransportError so that
// a misbehaving source cannot take the loop down.
func guardedFetch[T any](ctx context.Context, source string, fetch func(context.Context) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T

			value = zero
			err = &TransportError{Source: source, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	return fetch(ctx)
}

func (p *Poller) active(ctx context.Context, h *PollHandle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return !h.stopped && ctx.Err() == nil
}
