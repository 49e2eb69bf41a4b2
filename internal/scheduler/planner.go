package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/livinlefevreloca/cronkit/internal/db"
	"github.com/livinlefevreloca/cronkit/internal/metrics"
	"github.com/livinlefevreloca/cronkit/internal/scheduler/index"
	"github.com/livinlefevreloca/cronkit/lib/cron"
)

// JobSource supplies the jobs the planner should schedule.
type JobSource interface {
	GetEnabledJobs() ([]db.Job, error)
}

// PlannerConfig wires a Planner. Source is required; everything else
// has a usable default.
type PlannerConfig struct {
	Source  JobSource
	Cache   *cron.Cache
	Index   *index.ScheduledRunIndex
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	// How far ahead to calculate scheduled runs
	LookaheadWindow time.Duration

	// How far back to include runs (prevents missing near-past jobs)
	GracePeriod time.Duration

	// Upper bound on runs kept per job in one rebuild
	MaxRunsPerJob int

	// Now defaults to time.Now
	Now func() time.Time
}

// Planner turns stored cron schedules into a time-ordered index of
// upcoming runs.
type Planner struct {
	config PlannerConfig
	logger *slog.Logger
	index  *index.ScheduledRunIndex
	cache  *cron.Cache

	rebuildChan chan struct{}
}

// NewPlanner validates config and returns a Planner with an empty index.
func NewPlanner(config PlannerConfig) (*Planner, error) {
	if err := validatePlannerConfig(config); err != nil {
		return nil, err
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Cache == nil {
		config.Cache = cron.NewCache()
	}
	if config.Index == nil {
		config.Index = index.NewScheduledRunIndex(nil)
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Planner{
		config:      config,
		logger:      config.Logger,
		index:       config.Index,
		cache:       config.Cache,
		rebuildChan: make(chan struct{}, 1),
	}, nil
}

func validatePlannerConfig(config PlannerConfig) error {
	if config.Source == nil {
		return fmt.Errorf("planner: job source is required")
	}
	if config.LookaheadWindow <= 0 {
		return fmt.Errorf("planner: LookaheadWindow must be positive, got %v", config.LookaheadWindow)
	}
	if config.GracePeriod < 0 {
		return fmt.Errorf("planner: GracePeriod must not be negative, got %v", config.GracePeriod)
	}
	if config.MaxRunsPerJob <= 0 {
		return fmt.Errorf("planner: MaxRunsPerJob must be positive, got %d", config.MaxRunsPerJob)
	}
	return nil
}

// Index returns the index the planner maintains.
func (p *Planner) Index() *index.ScheduledRunIndex {
	return p.index
}

// Upcoming returns indexed runs in [start, end).
func (p *Planner) Upcoming(start, end time.Time) []index.ScheduledRun {
	return p.index.Query(start, end)
}

// RequestRebuild asks a running Run loop to rebuild before its next tick.
func (p *Planner) RequestRebuild() {
	select {
	case p.rebuildChan <- struct{}{}:
	default:
	}
}

// Rebuild loads the enabled jobs, computes their runs in
// [now-GracePeriod, now+LookaheadWindow) and swaps them into the index.
// Jobs with unparseable schedules are logged and skipped. The index is
// left untouched when loading jobs fails or ctx is cancelled.
func (p *Planner) Rebuild(ctx context.Context) error {
	buildStart := time.Now()
	now := p.config.Now()
	start := now.Add(-p.config.GracePeriod)
	end := now.Add(p.config.LookaheadWindow)

	p.logger.Debug("starting index build",
		"start", start,
		"end", end)

	jobs, err := p.config.Source.GetEnabledJobs()
	if err != nil {
		p.logger.Error("failed to query job definitions",
			"error", err)
		p.config.Metrics.ObserveRebuild(0, 0, err)
		return fmt.Errorf("failed to query jobs: %w", err)
	}

	runs := []index.ScheduledRun{}
	for _, job := range jobs {
		jobRuns, err := p.planJob(ctx, job, start, end)
		if err != nil {
			p.config.Metrics.ObserveRebuild(0, 0, err)
			return err
		}
		runs = append(runs, jobRuns...)
	}

	p.index.Swap(runs)

	duration := time.Since(buildStart)
	p.config.Metrics.ObserveRebuild(duration, len(runs), nil)
	p.logger.Info("index build complete",
		"jobs", len(jobs),
		"runs", len(runs),
		"duration", duration)

	if next := p.index.Next(now); len(next) > 0 {
		p.logger.Info("next scheduled run",
			"scheduled_at", next[0].ScheduledAt,
			"job_id", next[0].JobID,
			"jobs", len(next))
	} else {
		p.logger.Info("no runs scheduled within lookahead window",
			"end", end)
	}

	return nil
}

// planJob returns the job's runs in [start, end), at most MaxRunsPerJob.
// Only context errors are returned; schedule problems are logged.
func (p *Planner) planJob(ctx context.Context, job db.Job, start, end time.Time) ([]index.ScheduledRun, error) {
	expr, err := p.cache.Parse(job.Schedule)
	if err != nil {
		p.logger.Error("failed to parse cron schedule",
			"job_id", job.ID,
			"schedule", job.Schedule,
			"error", err)
		p.config.Metrics.InvalidSchedule()
		return nil, nil
	}

	var runs []index.ScheduledRun

	// The search is strictly after its seed, so seed one minute early
	// to include a run exactly at start.
	seed := start.Add(-time.Minute)
	for len(runs) < p.config.MaxRunsPerJob {
		next, ok, err := expr.NextOccurrenceContext(ctx, seed)
		if err != nil {
			return nil, err
		}
		if !ok {
			if len(runs) == 0 {
				p.logger.Warn("no occurrence within search horizon",
					"job_id", job.ID,
					"schedule", job.Schedule)
				p.config.Metrics.ExhaustedSearch()
			}
			break
		}
		if next.Before(start) {
			// start was mid-minute; skip the truncated minute
			seed = next
			continue
		}
		if !next.Before(end) {
			break
		}
		runs = append(runs, index.ScheduledRun{
			JobID:       job.ID,
			JobName:     job.Name,
			ScheduledAt: next,
		})
		seed = next
	}

	if len(runs) == p.config.MaxRunsPerJob {
		p.logger.Debug("job run limit reached",
			"job_id", job.ID,
			"limit", p.config.MaxRunsPerJob)
	}

	return runs, nil
}

// Run rebuilds the index immediately and then every interval until ctx
// is done. Rebuild errors are logged and the loop keeps going.
func (p *Planner) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("planner: rebuild interval must be positive, got %v", interval)
	}

	p.logger.Info("starting planner",
		"interval", interval,
		"lookahead_window", p.config.LookaheadWindow)

	if err := p.Rebuild(ctx); err != nil && ctx.Err() == nil {
		p.logger.Error("initial index build failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("planner stopped")
			return nil

		case <-ticker.C:
			if err := p.Rebuild(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("index build failed", "error", err)
			}

		case <-p.rebuildChan:
			// Explicit rebuild requested (e.g., schedule change)
			if err := p.Rebuild(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("index build failed", "error", err)
			}
		}
	}
}
