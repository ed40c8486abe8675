package model

import (
	"time"

	"github.com/google/uuid"
)

type PrintJobStatus string

const (
	PrintJobPending  PrintJobStatus = "pending"
	PrintJobFetching PrintJobStatus = "fetching"
	PrintJobSpooling PrintJobStatus = "spooling"
	PrintJobDone     PrintJobStatus = "done"
	PrintJobFailed   PrintJobStatus = "failed"
)

// PrintJob is one prescription print task. Jobs are created only after a
// registration has been persisted and carry their own lifecycle so a
// failed print never touches the registration that spawned it.
type PrintJob struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	PatientID    string         `json:"patient_id" db:"patient_id"`
	OPNumber     string         `json:"op_number" db:"op_number"`
	PatientName  string         `json:"patient_name" db:"patient_name"`
	Status       PrintJobStatus `json:"status" db:"status"`
	Attempts     int            `json:"attempts" db:"attempts"`
	DocumentPath *string        `json:"document_path,omitempty" db:"document_path"`
	ErrorMessage *string        `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty" db:"completed_at"`
}

// Terminal reports whether the job has reached a final state.
func (j *PrintJob) Terminal() bool {
	return j.Status == PrintJobDone || j.Status == PrintJobFailed
}
