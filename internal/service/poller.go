package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"docextract/internal/domain"
	"docextract/internal/metrics"
	"docextract/internal/port"
)

const (
	defaultPollInterval = 5 * time.Second
	cleanupTimeout      = 30 * time.Second
)

// PollConfig holds settings for the job poller. With the zero BackoffFactor and
// MaxWait the poller checks every Interval until the job is terminal.
type PollConfig struct {
	Interval      time.Duration
	MaxInterval   time.Duration
	BackoffFactor float64
	MaxWait       time.Duration
}

// PollInput describes the stored document to analyze.
type PollInput struct {
	Location domain.DocumentLocation
	Features []domain.FeatureType
	// Cleanup deletes the stored document once the job is over.
	Cleanup bool
}

// JobPoller starts an asynchronous analysis job, waits for it to finish and
// collects every result page.
type JobPoller struct {
	analyzer port.DocumentAnalyzer
	storage  port.ObjectStorage
	cfg      PollConfig
}

// NewJobPoller creates a new JobPoller.
func NewJobPoller(analyzer port.DocumentAnalyzer, storage port.ObjectStorage, cfg PollConfig) *JobPoller {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultPollInterval
	}
	if cfg.BackoffFactor < 1 {
		cfg.BackoffFactor = 1
	}
	if cfg.MaxInterval < cfg.Interval {
		cfg.MaxInterval = cfg.Interval
	}
	return &JobPoller{
		analyzer: analyzer,
		storage:  storage,
		cfg:      cfg,
	}
}

// Poll runs a job to completion and returns it with all result pages attached.
// A FAILED job yields a *domain.JobFailedError. Canceling ctx stops polling.
func (p *JobPoller) Poll(ctx context.Context, in PollInput) (*domain.Job, error) {
	if in.Cleanup {
		defer p.cleanup(ctx, in.Location)
	}

	ref, err := p.analyzer.StartAnalysis(ctx, in.Location, in.Features)
	if err != nil {
		return nil, fmt.Errorf("starting analysis: %w", err)
	}
	metrics.JobsStarted.Inc()

	job := &domain.Job{
		Ref:       ref,
		Location:  in.Location,
		Status:    domain.JobStatusInProgress,
		StartedAt: time.Now(),
	}
	log.Printf("jobPoller.Poll: started job %s for s3://%s/%s (features=%v)",
		ref.ID, in.Location.Bucket, in.Location.Key, in.Features)

	if err := p.waitForCompletion(ctx, job); err != nil {
		metrics.JobsFinished.WithLabelValues("aborted").Inc()
		return nil, err
	}
	metrics.JobsFinished.WithLabelValues(string(job.Status)).Inc()
	metrics.JobDuration.Observe(time.Since(job.StartedAt).Seconds())

	if !job.Status.HasResults() {
		msg := job.StatusMessage
		if job.Status != domain.JobStatusFailed {
			msg = fmt.Sprintf("unexpected job status %q", job.Status)
		}
		log.Printf("jobPoller.Poll: job %s finished with %s: %s", ref.ID, job.Status, msg)
		return nil, domain.NewJobFailedError(ref.ID, msg)
	}

	if err := p.fetchPages(ctx, job); err != nil {
		return nil, err
	}

	log.Printf("jobPoller.Poll: job %s %s after %d status checks, %d pages",
		ref.ID, job.Status, job.Polls, len(job.Pages))
	return job, nil
}

func (p *JobPoller) waitForCompletion(ctx context.Context, job *domain.Job) error {
	interval := p.cfg.Interval
	var deadline time.Time
	if p.cfg.MaxWait > 0 {
		deadline = job.StartedAt.Add(p.cfg.MaxWait)
	}

	for {
		out, err := p.analyzer.GetJobStatus(ctx, job.Ref)
		job.Polls++
		metrics.JobStatusChecks.Inc()
		if err != nil {
			return fmt.Errorf("checking status of job %s: %w", job.Ref.ID, err)
		}

		job.Status = out.Status
		job.StatusMessage = out.StatusMessage
		if job.Status.IsTerminal() {
			return nil
		}

		wait := interval
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return fmt.Errorf("job %s still %s after %s: %w",
					job.Ref.ID, job.Status, p.cfg.MaxWait, domain.ErrPollTimeout)
			}
			wait = min(wait, remaining)
		}

		if err := sleepContext(ctx, wait); err != nil {
			log.Printf("jobPoller.Poll: stopped polling job %s: %v", job.Ref.ID, err)
			return err
		}
		interval = p.nextInterval(interval)
	}
}

func (p *JobPoller) nextInterval(current time.Duration) time.Duration {
	next := time.Duration(float64(current) * p.cfg.BackoffFactor)
	return min(next, p.cfg.MaxInterval)
}

func (p *JobPoller) fetchPages(ctx context.Context, job *domain.Job) error {
	token := ""
	for {
		page, err := p.analyzer.GetJobPage(ctx, job.Ref, token)
		if err != nil {
			return fmt.Errorf("fetching page %d of job %s: %w", len(job.Pages)+1, job.Ref.ID, err)
		}
		job.Pages = append(job.Pages, *page)
		metrics.BlocksFetched.Add(float64(len(page.Blocks)))

		if page.NextToken == "" {
			return nil
		}
		token = page.NextToken
	}
}

// cleanup deletes the stored copy of an analyzed document. Failures are logged only.
func (p *JobPoller) cleanup(ctx context.Context, loc domain.DocumentLocation) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := p.storage.Delete(ctx, loc.Bucket, loc.Key); err != nil {
		metrics.CleanupFailures.Inc()
		log.Printf("jobPoller.cleanup: failed to delete s3://%s/%s: %v", loc.Bucket, loc.Key, err)
	}
}

// sleepContext blocks for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
