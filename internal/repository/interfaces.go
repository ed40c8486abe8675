package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/opdesk/opdesk/internal/model"
)

// PrintJobRepository is the journal behind the print pipeline. Jobs
// outlive the request that created them so they can be observed and
// re-queued independently of any form.
type PrintJobRepository interface {
	Create(ctx context.Context, job *model.PrintJob) error
	Get(ctx context.Context, id uuid.UUID) (*model.PrintJob, error)
	List(ctx context.Context, status model.PrintJobStatus, limit int) ([]*model.PrintJob, error)
	// NextPending claims up to limit pending jobs, atomically moving
	// them to fetching so concurrent processors never claim the same
	// job.
	NextPending(ctx context.Context, limit int) ([]*model.PrintJob, error)
	Update(ctx context.Context, job *model.PrintJob) error
	CountPending(ctx context.Context) (int, error)
}
