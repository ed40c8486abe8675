package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opdesk/opdesk/internal/model"
	"github.com/opdesk/opdesk/internal/repository"
)

// printJobRepository keeps jobs in memory. Used by tests and by desks
// running without a journal database; jobs do not survive a restart.
type printJobRepository struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]model.PrintJob
}

func NewPrintJobRepository() repository.PrintJobRepository {
	return &printJobRepository{jobs: make(map[uuid.UUID]model.PrintJob)}
}

func (r *printJobRepository) Create(ctx context.Context, job *model.PrintJob) error {
	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("print job %s already exists", job.ID)
	}
	r.jobs[job.ID] = *job
	return nil
}

func (r *printJobRepository) Get(ctx context.Context, id uuid.UUID) (*model.PrintJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("print job %s not found", id)
	}
	return &job, nil
}

func (r *printJobRepository) List(ctx context.Context, status model.PrintJobStatus, limit int) ([]*model.PrintJob, error) {
	jobs := r.collect(status)
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

// NextPending claims a batch under the lock, moving it to fetching so a
// second caller cannot pick up the same jobs.
func (r *printJobRepository) NextPending(ctx context.Context, limit int) ([]*model.PrintJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	jobs := make([]*model.PrintJob, 0)
	for _, job := range r.jobs {
		if job.Status == model.PrintJobPending {
			j := job
			jobs = append(jobs, &j)
		}
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	for _, job := range jobs {
		job.Status = model.PrintJobFetching
		job.UpdatedAt = time.Now()
		r.jobs[job.ID] = *job
	}
	return jobs, nil
}

func (r *printJobRepository) Update(ctx context.Context, job *model.PrintJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[job.ID]; !ok {
		return fmt.Errorf("print job %s not found", job.ID)
	}
	r.jobs[job.ID] = *job
	return nil
}

func (r *printJobRepository) CountPending(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, job := range r.jobs {
		if job.Status == model.PrintJobPending {
			count++
		}
	}
	return count, nil
}

func (r *printJobRepository) collect(status model.PrintJobStatus) []*model.PrintJob {
	r.mu.RLock()
	defer r.mu.RUnlock()
	jobs := make([]*model.PrintJob, 0)
	for _, job := range r.jobs {
		if job.Status == status {
			j := job
			jobs = append(jobs, &j)
		}
	}
	return jobs
}
