package registration

import (
	"context"
	stderrors "errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opdesk/opdesk/internal/model"
	"github.com/opdesk/opdesk/pkg/errors"
	"github.com/opdesk/opdesk/pkg/logger"
	"github.com/opdesk/opdesk/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("opdesk_test", "registration")

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
}

type fakeRegistrar struct {
	mu           sync.Mutex
	registered   []model.RegistrationDraft
	appointments []model.AppointmentDraft
	err          error
	block        chan struct{}
	calls        int32
}

func (f *fakeRegistrar) RegisterPatient(ctx context.Context, draft model.RegistrationDraft) (*model.Patient, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.registered = append(f.registered, draft)
	f.mu.Unlock()
	return &model.Patient{ID: "P1", OPNumber: "OP-1001", Name: draft.Name}, nil
}

func (f *fakeRegistrar) AddAppointment(ctx context.Context, draft model.AppointmentDraft) (*model.Patient, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.appointments = append(f.appointments, draft)
	f.mu.Unlock()
	return &model.Patient{ID: draft.ExistingPatientID, OPNumber: "OP-1001"}, nil
}

type fakePrinter struct {
	mu       sync.Mutex
	enqueued []*model.Patient
	err      error
}

func (f *fakePrinter) Enqueue(ctx context.Context, patient *model.Patient) (*model.PrintJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.enqueued = append(f.enqueued, patient)
	return &model.PrintJob{ID: uuid.New(), PatientID: patient.ID, Status: model.PrintJobPending}, nil
}

func newTestService(registrar *fakeRegistrar, printer *fakePrinter) *Service {
	reducer := NewReducer(testDirectory())
	validator := NewDraftValidator(ValidationConfig{})
	return NewService(registrar, reducer, validator, printer, nil, testLogger(), testMetrics)
}

func fillDraft(t *testing.T, svc *Service, id uuid.UUID) {
	t.Helper()
	events := []Event{
		SetField{Name: "name", Value: "Jane Doe"},
		SetField{Name: "sex", Value: "female"},
		SetField{Name: "age", Value: "34"},
		SetField{Name: "homeName", Value: "Rose Villa"},
		SetField{Name: "place", Value: "Kochi"},
		SetField{Name: "phone", Value: "9876543210"},
		SelectDoctor{DoctorID: "D1"},
	}
	for _, ev := range events {
		_, err := svc.Apply(id, ev)
		require.NoError(t, err)
	}
}

func TestSubmitRegistersAndEnqueuesPrint(t *testing.T) {
	registrar := &fakeRegistrar{}
	printer := &fakePrinter{}
	svc := newTestService(registrar, printer)

	sess := svc.NewSession()
	fillDraft(t, svc, sess.ID)

	patient, err := svc.Submit(context.Background(), sess.ID)
	require.NoError(t, err)
	require.NotNil(t, patient)
	assert.Equal(t, "OP-1001", patient.OPNumber)

	require.Len(t, registrar.registered, 1)
	sent := registrar.registered[0]
	assert.Equal(t, "Jane Doe", sent.Name)
	assert.Equal(t, "D1", sent.DoctorID)
	assert.Equal(t, "Cardiology", sent.Department)
	assert.Equal(t, 500, sent.ConsultationFee)

	// Print follows persistence, never precedes it.
	require.Len(t, printer.enqueued, 1)
	assert.Equal(t, "P1", printer.enqueued[0].ID)

	// The draft resets for the next walk-in.
	assert.Empty(t, sess.Draft().Name)
	assert.Empty(t, sess.Draft().DoctorID)
}

func TestSubmitInvalidDraftMakesNoNetworkCall(t *testing.T) {
	registrar := &fakeRegistrar{}
	printer := &fakePrinter{}
	svc := newTestService(registrar, printer)

	sess := svc.NewSession()
	svc.Apply(sess.ID, SetField{Name: "age", Value: "-1"})

	patient, err := svc.Submit(context.Background(), sess.ID)
	assert.Nil(t, patient)

	var verr *ValidationError
	require.True(t, stderrors.As(err, &verr))
	assert.Contains(t, verr.Fields, "age")
	assert.Contains(t, verr.Fields, "name")

	assert.Zero(t, atomic.LoadInt32(&registrar.calls))
	assert.Empty(t, printer.enqueued)
}

func TestSubmitFailurePreservesDraft(t *testing.T) {
	registrar := &fakeRegistrar{err: errors.NewUnavailable("backend unreachable", nil)}
	printer := &fakePrinter{}
	svc := newTestService(registrar, printer)

	sess := svc.NewSession()
	fillDraft(t, svc, sess.ID)

	_, err := svc.Submit(context.Background(), sess.ID)
	require.Error(t, err)
	assert.Empty(t, printer.enqueued)

	// Input survives verbatim for correction and resubmission.
	draft := sess.Draft()
	assert.Equal(t, "Jane Doe", draft.Name)
	assert.Equal(t, "D1", draft.DoctorID)

	// The guard is released: a retry goes straight through.
	registrar.err = nil
	patient, err := svc.Submit(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "OP-1001", patient.OPNumber)
}

func TestSubmitWhileInFlightIsRejected(t *testing.T) {
	registrar := &fakeRegistrar{block: make(chan struct{})}
	printer := &fakePrinter{}
	svc := newTestService(registrar, printer)

	sess := svc.NewSession()
	fillDraft(t, svc, sess.ID)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), sess.ID)
		done <- err
	}()

	// Wait for the first submit to take the guard.
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&registrar.calls) == 1
	}, time.Second, 5*time.Millisecond)

	_, err := svc.Submit(context.Background(), sess.ID)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrConflict, appErr.Code)

	close(registrar.block)
	require.NoError(t, <-done)

	// Exactly one backend call for the double click.
	assert.Equal(t, int32(1), atomic.LoadInt32(&registrar.calls))
	assert.Len(t, registrar.registered, 1)
}

func TestPrintFailureLeavesRegistrationIntact(t *testing.T) {
	registrar := &fakeRegistrar{}
	printer := &fakePrinter{err: errors.NewUnavailable("journal down", nil)}
	svc := newTestService(registrar, printer)

	sess := svc.NewSession()
	fillDraft(t, svc, sess.ID)

	patient, err := svc.Submit(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "OP-1001", patient.OPNumber)
	assert.Len(t, registrar.registered, 1)
}

func TestSubmitAppointment(t *testing.T) {
	registrar := &fakeRegistrar{}
	printer := &fakePrinter{}
	svc := newTestService(registrar, printer)

	sess := svc.NewAppointmentSession("P42")
	_, err := svc.Apply(sess.ID, SelectDoctor{DoctorID: "D2"})
	require.NoError(t, err)

	patient, err := svc.Submit(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "P42", patient.ID)

	require.Len(t, registrar.appointments, 1)
	sent := registrar.appointments[0]
	assert.Equal(t, "P42", sent.ExistingPatientID)
	assert.Equal(t, "Dermatology", sent.Department)
	assert.Equal(t, 350, sent.ConsultationFee)
}

func TestSessionLookupAndClose(t *testing.T) {
	svc := newTestService(&fakeRegistrar{}, &fakePrinter{})

	sess := svc.NewSession()
	found, err := svc.Session(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, found.ID)

	svc.CloseSession(sess.ID)
	_, err = svc.Session(sess.ID)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}
