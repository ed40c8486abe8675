package printing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/opdesk/opdesk/internal/model"
	"github.com/opdesk/opdesk/internal/repository"
	"github.com/opdesk/opdesk/pkg/errors"
	"github.com/opdesk/opdesk/pkg/logger"
	"github.com/opdesk/opdesk/pkg/metrics"
)

// Service is the queue-facing side of the print pipeline: registration
// enqueues here, the desk inspects and re-queues here, and the processor
// drains from the shared repository.
type Service struct {
	repo    repository.PrintJobRepository
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(repo repository.PrintJobRepository, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{repo: repo, logger: log, metrics: m}
}

// Enqueue records a pending print job for a freshly registered patient.
// Called only after the backend has confirmed the registration.
func (s *Service) Enqueue(ctx context.Context, patient *model.Patient) (*model.PrintJob, error) {
	now := time.Now()
	job := &model.PrintJob{
		ID:          uuid.New(),
		PatientID:   patient.ID,
		OPNumber:    patient.OPNumber,
		PatientName: patient.Name,
		Status:      model.PrintJobPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, errors.NewInternal(err)
	}

	if s.metrics != nil {
		s.metrics.PrintJobsEnqueued.Inc()
		s.refreshQueueGauge(ctx)
	}
	s.logger.Info("print job enqueued",
		"job_id", job.ID.String(), "patient_id", patient.ID, "op_number", patient.OPNumber)
	return job, nil
}

// Get returns one job by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.PrintJob, error) {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NewNotFound("print job", err)
	}
	return job, nil
}

// List returns jobs in the given state, newest first.
func (s *Service) List(ctx context.Context, status model.PrintJobStatus, limit int) ([]*model.PrintJob, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, status, limit)
}

// Requeue puts a failed job back in the pending queue. Printing is
// best-effort; this is the manual retry path.
func (s *Service) Requeue(ctx context.Context, id uuid.UUID) (*model.PrintJob, error) {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NewNotFound("print job", err)
	}
	if job.Status != model.PrintJobFailed {
		return nil, errors.NewConflict("only failed print jobs can be re-queued", nil)
	}

	job.Status = model.PrintJobPending
	job.ErrorMessage = nil
	job.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, job); err != nil {
		return nil, errors.NewInternal(err)
	}
	s.refreshQueueGauge(ctx)
	return job, nil
}

func (s *Service) refreshQueueGauge(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	if n, err := s.repo.CountPending(ctx); err == nil {
		s.metrics.PrintQueueSize.Set(float64(n))
	}
}
