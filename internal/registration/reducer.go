package registration

import (
	"github.com/opdesk/opdesk/internal/model"
)

// DoctorLookup resolves a doctor id against the directory cache.
type DoctorLookup interface {
	Lookup(id string) (model.Doctor, bool)
}

// Reducer computes draft transitions. Apply is a pure function of the
// draft, the event, and the directory snapshot: given the same inputs it
// returns the same draft, which keeps derivation testable without any
// HTTP wiring.
type Reducer struct {
	directory DoctorLookup
}

func NewReducer(directory DoctorLookup) *Reducer {
	return &Reducer{directory: directory}
}

// Apply returns the draft after one event. SelectDoctor sets doctor id,
// department, and fee in a single transition so no observer ever sees a
// doctor paired with a mismatched fee. An id missing from the directory
// keeps the previous derived values.
func (r *Reducer) Apply(draft model.RegistrationDraft, ev Event) model.RegistrationDraft {
	switch e := ev.(type) {
	case SetField:
		return applyField(draft, e)
	case SelectDoctor:
		doctor, ok := r.directory.Lookup(e.DoctorID)
		draft.DoctorID = e.DoctorID
		if ok {
			draft.Department = doctor.Department
			draft.ConsultationFee = doctor.ConsultationFee
		}
		return draft
	}
	return draft
}

// ApplyAppointment is the existing-patient variant: only appointment
// fields are editable, identity fields are fixed.
func (r *Reducer) ApplyAppointment(draft model.AppointmentDraft, ev Event) model.AppointmentDraft {
	switch e := ev.(type) {
	case SetField:
		switch e.Name {
		case "date":
			if t, ok := parseDate(e.Value); ok {
				draft.VisitDate = t
			}
		case "renewalDate":
			if t, ok := parseDate(e.Value); ok {
				draft.RenewalDate = t
			}
		}
		return draft
	case SelectDoctor:
		doctor, ok := r.directory.Lookup(e.DoctorID)
		draft.DoctorID = e.DoctorID
		if ok {
			draft.Department = doctor.Department
			draft.ConsultationFee = doctor.ConsultationFee
		}
		return draft
	}
	return draft
}

func applyField(draft model.RegistrationDraft, e SetField) model.RegistrationDraft {
	switch e.Name {
	case "name":
		draft.Name = e.Value
	case "sex":
		draft.Sex = e.Value
	case "age":
		draft.Age = parseAge(e.Value)
	case "homeName":
		draft.HomeName = e.Value
	case "place":
		draft.Place = e.Value
	case "phone":
		draft.Phone = e.Value
	case "date":
		if t, ok := parseDate(e.Value); ok {
			draft.VisitDate = t
		}
	case "renewalDate":
		if t, ok := parseDate(e.Value); ok {
			draft.RenewalDate = t
		}
	}
	// department and consultationFees are derived only; edits to them
	// are ignored.
	return draft
}
