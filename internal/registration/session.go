package registration

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opdesk/opdesk/internal/model"
)

// Variant distinguishes the two draft workflows.
type Variant string

const (
	VariantNewPatient      Variant = "new_patient"
	VariantExistingPatient Variant = "existing_patient"
)

// Session is one mounted form: a draft, the variant it edits, and the
// in-flight submission guard. The guard is the only mutual exclusion in
// the workflow; it rejects a second submit while the first is on the
// wire.
type Session struct {
	ID      uuid.UUID
	Variant Variant

	mu          sync.Mutex
	draft       model.RegistrationDraft
	appointment model.AppointmentDraft
	inFlight    bool
	createdAt   time.Time
}

func newPatientSession(now time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		Variant:   VariantNewPatient,
		draft:     model.NewRegistrationDraft(now),
		createdAt: now,
	}
}

func newAppointmentSession(patientID string, now time.Time) *Session {
	return &Session{
		ID:          uuid.New(),
		Variant:     VariantExistingPatient,
		appointment: model.NewAppointmentDraft(patientID, now),
		createdAt:   now,
	}
}

// Draft returns a copy of the current registration draft.
func (s *Session) Draft() model.RegistrationDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// AppointmentDraft returns a copy of the current appointment draft.
func (s *Session) AppointmentDraft() model.AppointmentDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appointment
}

// beginSubmit takes the in-flight guard. It fails when a submission is
// already on the wire.
func (s *Session) beginSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

// endSubmit releases the guard. When reset is true the draft is replaced
// by a fresh one for the next entry; on failure the user's input is
// preserved verbatim.
func (s *Session) endSubmit(reset bool, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if reset && s.Variant == VariantNewPatient {
		s.draft = model.NewRegistrationDraft(now)
	}
}

func (s *Session) apply(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}
