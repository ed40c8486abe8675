package printing

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/opdesk/opdesk/internal/model"
	"github.com/opdesk/opdesk/internal/repository"
	"github.com/opdesk/opdesk/pkg/logger"
	"github.com/opdesk/opdesk/pkg/messaging"
	"github.com/opdesk/opdesk/pkg/metrics"
)

// DocumentFetcher retrieves the rendered prescription for a patient.
type DocumentFetcher interface {
	FetchPrescription(ctx context.Context, patientID string) ([]byte, string, error)
}

type ProcessorConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// SettleDelay mirrors the pause the original flow gave a freshly
	// loaded document before invoking print.
	SettleDelay time.Duration
}

// Processor drains pending print jobs: fetch document, spool, settle,
// dispatch. Each job carries its own lifecycle; a failure marks the job
// failed with a reason and moves on. Registrations are never touched.
type Processor struct {
	repo    repository.PrintJobRepository
	fetcher DocumentFetcher
	spooler Spooler
	broker  messaging.Broker
	config  ProcessorConfig
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewProcessor(
	repo repository.PrintJobRepository,
	fetcher DocumentFetcher,
	spooler Spooler,
	broker messaging.Broker,
	config ProcessorConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *Processor {
	if config.BatchSize <= 0 {
		config.BatchSize = 10
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 2 * time.Second
	}
	return &Processor{
		repo:    repo,
		fetcher: fetcher,
		spooler: spooler,
		broker:  broker,
		config:  config,
		logger:  log,
		metrics: m,
	}
}

func (p *Processor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("starting print processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("shutting down print processor")
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil {
				p.logger.Error(err, "failed to process print jobs")
			}
		}
	}
}

func (p *Processor) processBatch(ctx context.Context) error {
	jobs, err := p.repo.NextPending(ctx, p.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to claim pending print jobs: %w", err)
	}

	for _, job := range jobs {
		if err := p.ProcessJob(ctx, job); err != nil {
			p.logger.Error(err, "print job failed",
				"job_id", job.ID.String(), "patient_id", job.PatientID)
		}
	}

	if p.metrics != nil {
		if n, err := p.repo.CountPending(ctx); err == nil {
			p.metrics.PrintQueueSize.Set(float64(n))
		}
	}
	return nil
}

// ProcessJob runs one job through its lifecycle. Exported so a desk can
// drive a single job synchronously in tests and manual retries.
func (p *Processor) ProcessJob(ctx context.Context, job *model.PrintJob) error {
	var timer *prometheus.Timer
	if p.metrics != nil {
		timer = prometheus.NewTimer(p.metrics.PrintSpoolLatency)
		defer timer.ObserveDuration()
	}

	job.Attempts++

	if err := p.transition(ctx, job, model.PrintJobFetching); err != nil {
		return err
	}
	document, contentType, err := p.fetcher.FetchPrescription(ctx, job.PatientID)
	if err != nil {
		return p.fail(ctx, job, fmt.Errorf("document fetch: %w", err))
	}

	if err := p.transition(ctx, job, model.PrintJobSpooling); err != nil {
		return err
	}
	path, err := p.spooler.Spool(job.ID.String(), document, contentType)
	if err != nil {
		return p.fail(ctx, job, fmt.Errorf("spool: %w", err))
	}
	job.DocumentPath = &path

	if p.config.SettleDelay > 0 {
		select {
		case <-ctx.Done():
			return p.fail(ctx, job, ctx.Err())
		case <-time.After(p.config.SettleDelay):
		}
	}

	if err := p.spooler.Dispatch(ctx, path); err != nil {
		return p.fail(ctx, job, fmt.Errorf("dispatch: %w", err))
	}

	now := time.Now()
	job.Status = model.PrintJobDone
	job.CompletedAt = &now
	job.UpdatedAt = now
	if err := p.repo.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to record job completion: %w", err)
	}

	if p.metrics != nil {
		p.metrics.PrintJobsCompleted.Inc()
	}
	p.publish(ctx, messaging.ChannelPrintCompleted, job)
	p.logger.Info("print job completed",
		"job_id", job.ID.String(), "op_number", job.OPNumber)
	return nil
}

func (p *Processor) transition(ctx context.Context, job *model.PrintJob, status model.PrintJobStatus) error {
	job.Status = status
	job.UpdatedAt = time.Now()
	if err := p.repo.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to update print job status: %w", err)
	}
	return nil
}

// fail records the failure and reports it as a warning. The registration
// that spawned the job is already persisted and stays untouched.
func (p *Processor) fail(ctx context.Context, job *model.PrintJob, cause error) error {
	msg := cause.Error()
	job.Status = model.PrintJobFailed
	job.ErrorMessage = &msg
	job.UpdatedAt = time.Now()
	if err := p.repo.Update(ctx, job); err != nil {
		p.logger.Error(err, "failed to record print job failure", "job_id", job.ID.String())
	}

	if p.metrics != nil {
		p.metrics.PrintJobsFailed.Inc()
	}
	p.publish(ctx, messaging.ChannelPrintFailed, job)
	return cause
}

func (p *Processor) publish(ctx context.Context, channel string, job *model.PrintJob) {
	if p.broker == nil {
		return
	}
	msg := messaging.Message{Type: channel, Payload: job}
	if err := p.broker.Publish(ctx, channel, msg); err != nil {
		p.logger.Error(err, "failed to publish print event",
			"channel", channel, "job_id", job.ID.String())
	}
}
