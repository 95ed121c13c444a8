// Package poller runs widget refreshes on a fixed interval without ever
// overlapping two runs of the same widget, and throttles manual refreshes.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrThrottled is returned by Trigger when manual refreshes arrive too fast.
var ErrThrottled = errors.New("refresh throttled")

// Default manual refresh budget.
const (
	DefaultPerMinute = 6
	DefaultBurst     = 2
)

// Job is one refresh.
type Job func(ctx context.Context) error

// Options tune the manual refresh limiter; zero values use the defaults.
type Options struct {
	PerMinute int
	Burst     int
	// Timeout bounds a single run; zero means the interval.
	Timeout time.Duration
}

// Stats describe the runs so far.
type Stats struct {
	Runs      uint64    `json:"runs"`
	Failures  uint64    `json:"failures"`
	Skipped   uint64    `json:"skipped"`
	LastRun   time.Time `json:"lastRun"`
	LastError string    `json:"lastError,omitempty"`
}

// Poller schedules one Job.
type Poller struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	job      Job
	log      zerolog.Logger
	limiter  *rate.Limiter

	runMu sync.Mutex // held while the job runs

	mu      sync.Mutex
	stats   Stats
	cron    *cron.Cron
	baseCtx context.Context
	cancel  context.CancelFunc
}

func New(name string, interval time.Duration, job Job, opts Options, log zerolog.Logger) *Poller {
	perMinute := opts.PerMinute
	if perMinute <= 0 {
		perMinute = DefaultPerMinute
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = DefaultBurst
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = interval
	}
	return &Poller{
		name:     name,
		interval: interval,
		timeout:  timeout,
		job:      job,
		log:      log.With().Str("poller", name).Logger(),
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst),
	}
}

func (p *Poller) Name() string { return p.name }

// Start runs the job once right away and then every interval until Stop or
// ctx is done. A tick that fires while the previous run is still going is
// skipped.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.cron != nil {
		p.mu.Unlock()
		return
	}
	p.baseCtx, p.cancel = context.WithCancel(ctx)
	logger := cron.PrintfLogger(&p.log)
	p.cron = cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	p.cron.Schedule(cron.Every(p.interval), cron.FuncJob(p.tick))
	p.cron.Start()
	p.mu.Unlock()

	go p.tick()
	p.log.Info().Dur("interval", p.interval).Msg("polling started")
}

func (p *Poller) tick() {
	p.mu.Lock()
	ctx := p.baseCtx
	p.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}
	if !p.runMu.TryLock() {
		p.mu.Lock()
		p.stats.Skipped++
		p.mu.Unlock()
		p.log.Debug().Msg("previous run still going; tick skipped")
		return
	}
	defer p.runMu.Unlock()
	_ = p.run(ctx)
}

// Trigger runs the job now, outside the schedule, waiting for a scheduled run
// in progress to finish first. It returns ErrThrottled when called faster
// than the limiter allows.
func (p *Poller) Trigger(ctx context.Context) error {
	if !p.limiter.Allow() {
		p.log.Warn().Msg("manual refresh throttled")
		return ErrThrottled
	}
	p.runMu.Lock()
	defer p.runMu.Unlock()
	return p.run(ctx)
}

func (p *Poller) run(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	start := time.Now()
	err := p.job(runCtx)

	p.mu.Lock()
	p.stats.Runs++
	p.stats.LastRun = start
	if err != nil {
		p.stats.Failures++
		p.stats.LastError = err.Error()
	} else {
		p.stats.LastError = ""
	}
	p.mu.Unlock()

	if err != nil {
		p.log.Warn().Err(err).Dur("took", time.Since(start)).Msg("refresh failed")
	} else {
		p.log.Debug().Dur("took", time.Since(start)).Msg("refresh done")
	}
	return err
}

// Stats returns a copy of the run counters.
func (p *Poller) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Stop halts the schedule and waits for a running job to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	c, cancel := p.cron, p.cancel
	p.cron = nil
	p.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	cancel()
	// wait for an in-flight manual or initial run
	p.runMu.Lock()
	p.runMu.Unlock()
	p.log.Info().Msg("polling stopped")
}
