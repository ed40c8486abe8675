package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opdesk/opdesk/internal/model"
)

func pendingJob(created time.Time) *model.PrintJob {
	return &model.PrintJob{
		ID:        uuid.New(),
		PatientID: "P1",
		OPNumber:  "OP-1001",
		Status:    model.PrintJobPending,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestNextPendingClaimsJobsExactlyOnce(t *testing.T) {
	repo := NewPrintJobRepository()
	ctx := context.Background()

	now := time.Now()
	first := pendingJob(now.Add(-2 * time.Minute))
	second := pendingJob(now.Add(-time.Minute))
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	claimed, err := repo.NextPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 2)
	assert.Equal(t, first.ID, claimed[0].ID)
	for _, job := range claimed {
		assert.Equal(t, model.PrintJobFetching, job.Status)
	}

	// Claimed jobs are out of the pending queue; a second processor
	// sharing the journal gets nothing.
	again, err := repo.NextPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, again)

	count, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNextPendingHonorsLimit(t *testing.T) {
	repo := NewPrintJobRepository()
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, pendingJob(now.Add(time.Duration(i)*time.Second))))
	}

	claimed, err := repo.NextPending(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, claimed, 2)

	count, err := repo.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
