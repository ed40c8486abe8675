package registration

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/opdesk/opdesk/internal/model"
	"github.com/opdesk/opdesk/pkg/errors"
	"github.com/opdesk/opdesk/pkg/logger"
	"github.com/opdesk/opdesk/pkg/messaging"
	"github.com/opdesk/opdesk/pkg/metrics"
)

// Registrar is the slice of the receptionist client the service submits
// through.
type Registrar interface {
	RegisterPatient(ctx context.Context, draft model.RegistrationDraft) (*model.Patient, error)
	AddAppointment(ctx context.Context, draft model.AppointmentDraft) (*model.Patient, error)
}

// PrintEnqueuer accepts a registered patient for best-effort printing.
type PrintEnqueuer interface {
	Enqueue(ctx context.Context, patient *model.Patient) (*model.PrintJob, error)
}

// ValidationError carries the field-scoped messages of a rejected draft.
// It never reaches the network.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "draft validation failed"
}

// Service owns the draft sessions and drives the submit-then-print
// pipeline. A print job is enqueued only after the backend confirms the
// registration; a print failure never rolls the registration back.
type Service struct {
	registrar Registrar
	reducer   *Reducer
	validator *DraftValidator
	printer   PrintEnqueuer
	broker    messaging.Broker
	logger    *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewService(
	registrar Registrar,
	reducer *Reducer,
	validator *DraftValidator,
	printer PrintEnqueuer,
	broker messaging.Broker,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		registrar: registrar,
		reducer:   reducer,
		validator: validator,
		printer:   printer,
		broker:    broker,
		logger:    log,
		metrics:   m,
		now:       time.Now,
		sessions:  make(map[uuid.UUID]*Session),
	}
}

// NewSession opens a new-patient form.
func (s *Service) NewSession() *Session {
	sess := newPatientSession(s.now())
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// NewAppointmentSession opens an existing-patient appointment form.
func (s *Service) NewAppointmentSession(patientID string) *Session {
	sess := newAppointmentSession(patientID, s.now())
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Session resolves an open form by id.
func (s *Service) Session(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.NewNotFound("form session", nil)
	}
	return sess, nil
}

// CloseSession drops a form. An in-flight submission is not aborted; the
// request finishes on its own and the result is discarded.
func (s *Service) CloseSession(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Apply runs one edit event through the reducer.
func (s *Service) Apply(id uuid.UUID, ev Event) (*Session, error) {
	sess, err := s.Session(id)
	if err != nil {
		return nil, err
	}
	sess.apply(func() {
		if sess.Variant == VariantExistingPatient {
			sess.appointment = s.reducer.ApplyAppointment(sess.appointment, ev)
		} else {
			sess.draft = s.reducer.Apply(sess.draft, ev)
		}
	})
	return sess, nil
}

// Submit validates and persists the session's draft. Validation errors
// and duplicate submits are rejected locally with no network call. On
// success the draft is reset, a print job is enqueued, and a
// patient.registered event is published; on failure the draft is
// preserved verbatim for correction and resubmission.
func (s *Service) Submit(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	sess, err := s.Session(id)
	if err != nil {
		return nil, err
	}

	if sess.Variant == VariantExistingPatient {
		return s.submitAppointment(ctx, sess)
	}

	draft := sess.Draft()
	if fields := s.validator.Validate(draft); fields != nil {
		s.metrics.RegistrationsRejected.Inc()
		return nil, &ValidationError{Fields: fields}
	}

	if !sess.beginSubmit() {
		return nil, errors.NewConflict("a submission is already in progress", nil)
	}

	patient, err := s.persist(ctx, "new_patient", func() (*model.Patient, error) {
		return s.registrar.RegisterPatient(ctx, draft)
	})
	if err != nil {
		sess.endSubmit(false, s.now())
		return nil, err
	}
	sess.endSubmit(true, s.now())

	s.afterRegistration(patient)
	return patient, nil
}

func (s *Service) submitAppointment(ctx context.Context, sess *Session) (*model.Patient, error) {
	draft := sess.AppointmentDraft()
	if fields := s.validator.ValidateAppointment(draft); fields != nil {
		s.metrics.RegistrationsRejected.Inc()
		return nil, &ValidationError{Fields: fields}
	}

	if !sess.beginSubmit() {
		return nil, errors.NewConflict("a submission is already in progress", nil)
	}

	patient, err := s.persist(ctx, "existing_patient", func() (*model.Patient, error) {
		return s.registrar.AddAppointment(ctx, draft)
	})
	if err != nil {
		sess.endSubmit(false, s.now())
		return nil, err
	}
	sess.endSubmit(true, s.now())

	s.afterRegistration(patient)
	return patient, nil
}

func (s *Service) persist(ctx context.Context, variant string, fn func() (*model.Patient, error)) (*model.Patient, error) {
	s.metrics.SubmissionsInFlight.Inc()
	timer := prometheus.NewTimer(s.metrics.SubmissionLatency)
	patient, err := fn()
	timer.ObserveDuration()
	s.metrics.SubmissionsInFlight.Dec()

	if err != nil {
		s.metrics.RegistrationsSubmitted.WithLabelValues(variant, "error").Inc()
		s.logger.Error(err, "registration submit failed", "variant", variant)
		return nil, err
	}
	s.metrics.RegistrationsSubmitted.WithLabelValues(variant, "success").Inc()
	return patient, nil
}

// afterRegistration runs the best-effort side effects. Neither a print
// enqueue failure nor a publish failure affects the persisted record.
func (s *Service) afterRegistration(patient *model.Patient) {
	ctx := context.Background()

	if s.printer != nil {
		if _, err := s.printer.Enqueue(ctx, patient); err != nil {
			s.logger.Error(err, "failed to enqueue prescription print",
				"patient_id", patient.ID, "op_number", patient.OPNumber)
		}
	}

	if s.broker != nil {
		msg := messaging.Message{Type: messaging.ChannelPatientRegistered, Payload: patient}
		if err := s.broker.Publish(ctx, messaging.ChannelPatientRegistered, msg); err != nil {
			s.logger.Error(err, "failed to publish patient.registered",
				"patient_id", patient.ID)
		}
	}
}
