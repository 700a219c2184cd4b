package jobwatch

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"go_releasehub/internal/model"
	"go_releasehub/internal/release"
)

// Controller is the part of a release workflow controller the watcher uses
type Controller interface {
	Snapshot() release.Snapshot
	LoadJobs(ctx context.Context) ([]model.ScheduledJob, error)
	NotifyJobFinished(ctx context.Context, job model.ScheduledJob)
	Refresh(ctx context.Context) error
}

// Source lists the releases currently tracked
type Source interface {
	IDs() []string
	Controller(releaseID string) (Controller, bool)
}

// Evicter is implemented by sources that drop releases nobody looks at
type Evicter interface {
	EvictIdle() []string
}

// RegistrySource adapts a release.Registry. Releases idle for MaxIdle stop
// being watched; zero keeps them forever.
type RegistrySource struct {
	Registry *release.Registry
	MaxIdle  time.Duration
}

func (s RegistrySource) IDs() []string {
	return s.Registry.IDs()
}

func (s RegistrySource) EvictIdle() []string {
	return s.Registry.EvictIdle(s.MaxIdle)
}

func (s RegistrySource) Controller(releaseID string) (Controller, bool) {
	ctrl, ok := s.Registry.Lookup(releaseID)
	if !ok {
		return nil, false
	}
	return ctrl, true
}

// Worker polls the scheduled jobs of tracked releases and reports jobs the
// CMA ran since the previous round
type Worker struct {
	ctx         context.Context
	cancel      context.CancelFunc
	source      Source
	logger      *logrus.Entry
	interval    time.Duration
	concurrency int
}

// Config holds the configuration for the job watcher
type Config struct {
	Source      Source
	Logger      *logrus.Entry
	IntervalSec int
	Concurrency int
}

// NewWorker creates a new job watcher
func NewWorker(cfg *Config) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	interval := time.Duration(cfg.IntervalSec) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Worker{
		ctx:         ctx,
		cancel:      cancel,
		source:      cfg.Source,
		logger:      logger.WithField("component", "job-watcher"),
		interval:    interval,
		concurrency: concurrency,
	}
}

// Start begins the periodic checks
func (w *Worker) Start() {
	w.logger.WithField("interval", w.interval).Info("Starting job watcher...")
	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.RunOnce()
			case <-w.ctx.Done():
				w.logger.Info("Stopping job watcher...")
				return
			}
		}
	}()
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	w.cancel()
}

// RunOnce checks every tracked release once
func (w *Worker) RunOnce() {
	if ev, ok := w.source.(Evicter); ok {
		if evicted := ev.EvictIdle(); len(evicted) > 0 {
			w.logger.WithField("releases", evicted).Info("Evicted idle releases")
		}
	}

	ids := w.source.IDs()
	if len(ids) == 0 {
		return
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, w.concurrency)

	for _, id := range ids {
		ctrl, ok := w.source.Controller(id)
		if !ok {
			continue
		}
		wg.Add(1)
		semaphore <- struct{}{}
		go func(id string, ctrl Controller) {
			defer wg.Done()
			defer func() { <-semaphore }()
			w.checkRelease(id, ctrl)
		}(id, ctrl)
	}

	wg.Wait()
}

func (w *Worker) checkRelease(releaseID string, ctrl Controller) {
	log := w.logger.WithField("release_id", releaseID)

	prev := ctrl.Snapshot().Jobs
	cur, err := ctrl.LoadJobs(w.ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch scheduled jobs")
		return
	}

	finished := Finished(prev, cur)
	if len(finished) == 0 {
		return
	}

	refresh := false
	for _, job := range finished {
		log.WithFields(logrus.Fields{"job_id": job.ID, "status": job.Status}).Info("Scheduled job finished")
		ctrl.NotifyJobFinished(w.ctx, job)
		if job.Status == model.JobStatusSucceeded {
			refresh = true
		}
	}

	// a job that ran changed the release and its entities
	if refresh {
		if err := ctrl.Refresh(w.ctx); err != nil {
			log.WithError(err).Warn("Failed to refresh release after scheduled job")
		}
	}
}

// Finished returns the jobs of cur that were scheduled in prev and have
// since succeeded or failed
func Finished(prev, cur []model.ScheduledJob) []model.ScheduledJob {
	wasScheduled := make(map[string]bool, len(prev))
	for _, j := range prev {
		if j.Status == model.JobStatusScheduled {
			wasScheduled[j.ID] = true
		}
	}

	var out []model.ScheduledJob
	for _, j := range cur {
		if !wasScheduled[j.ID] {
			continue
		}
		if j.Status == model.JobStatusSucceeded || j.Status == model.JobStatusFailed {
			out = append(out, j)
		}
	}
	return out
}
