package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/opdesk/opdesk/internal/model"
	"github.com/opdesk/opdesk/internal/repository"
)

type printJobRepository struct {
	db *sqlx.DB
}

func NewPrintJobRepository(db *sqlx.DB) repository.PrintJobRepository {
	return &printJobRepository{db: db}
}

func (r *printJobRepository) Create(ctx context.Context, job *model.PrintJob) error {
	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}

	query := `
		INSERT INTO print_jobs (
			id, patient_id, op_number, patient_name, status, attempts,
			document_path, error_message, created_at, updated_at, completed_at
		) VALUES (
			:id, :patient_id, :op_number, :patient_name, :status, :attempts,
			:document_path, :error_message, :created_at, :updated_at, :completed_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, job)
	if err != nil {
		return fmt.Errorf("failed to create print job: %w", err)
	}
	return nil
}

func (r *printJobRepository) Get(ctx context.Context, id uuid.UUID) (*model.PrintJob, error) {
	var job model.PrintJob
	query := `SELECT * FROM print_jobs WHERE id = $1`
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, fmt.Errorf("failed to get print job: %w", err)
	}
	return &job, nil
}

func (r *printJobRepository) List(ctx context.Context, status model.PrintJobStatus, limit int) ([]*model.PrintJob, error) {
	jobs := []*model.PrintJob{}
	query := `
		SELECT * FROM print_jobs
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	if err := r.db.SelectContext(ctx, &jobs, query, status, limit); err != nil {
		return nil, fmt.Errorf("failed to list print jobs: %w", err)
	}
	return jobs, nil
}

// NextPending claims a batch by moving it to fetching in a single
// statement. The claim and the status change commit together, so two
// processors sharing the journal (gateway plus printworker) never pick
// up the same job.
func (r *printJobRepository) NextPending(ctx context.Context, limit int) ([]*model.PrintJob, error) {
	jobs := []*model.PrintJob{}
	query := `
		UPDATE print_jobs SET
			status = $1,
			updated_at = NOW()
		WHERE id IN (
			SELECT id FROM print_jobs
			WHERE status = $2
			ORDER BY created_at ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *
	`
	if err := r.db.SelectContext(ctx, &jobs, query, model.PrintJobFetching, model.PrintJobPending, limit); err != nil {
		return nil, fmt.Errorf("failed to claim pending print jobs: %w", err)
	}
	return jobs, nil
}

func (r *printJobRepository) Update(ctx context.Context, job *model.PrintJob) error {
	query := `
		UPDATE print_jobs SET
			status = :status,
			attempts = :attempts,
			document_path = :document_path,
			error_message = :error_message,
			updated_at = :updated_at,
			completed_at = :completed_at
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, job)
	if err != nil {
		return fmt.Errorf("failed to update print job: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("print job %s not found", job.ID)
	}
	return nil
}

func (r *printJobRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM print_jobs WHERE status = $1`
	if err := r.db.GetContext(ctx, &count, query, model.PrintJobPending); err != nil {
		return 0, fmt.Errorf("failed to count pending print jobs: %w", err)
	}
	return count, nil
}
