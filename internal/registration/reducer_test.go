package registration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/opdesk/opdesk/internal/model"
)

type fakeDirectory struct {
	doctors map[string]model.Doctor
}

func (f *fakeDirectory) Lookup(id string) (model.Doctor, bool) {
	d, ok := f.doctors[id]
	return d, ok
}

func testDirectory() *fakeDirectory {
	return &fakeDirectory{doctors: map[string]model.Doctor{
		"D1": {ID: "D1", Name: "Dr. Anand", Department: "Cardiology", ConsultationFee: 500, Active: true},
		"D2": {ID: "D2", Name: "Dr. Beena", Department: "Dermatology", ConsultationFee: 350, Active: true},
	}}
}

func TestSelectDoctorDerivesDepartmentAndFee(t *testing.T) {
	r := NewReducer(testDirectory())
	draft := model.NewRegistrationDraft(time.Now())

	draft = r.Apply(draft, SelectDoctor{DoctorID: "D1"})

	assert.Equal(t, "D1", draft.DoctorID)
	assert.Equal(t, "Cardiology", draft.Department)
	assert.Equal(t, 500, draft.ConsultationFee)
}

func TestSelectDoctorSwitchesBothDerivedFields(t *testing.T) {
	r := NewReducer(testDirectory())
	draft := model.NewRegistrationDraft(time.Now())

	draft = r.Apply(draft, SelectDoctor{DoctorID: "D1"})
	draft = r.Apply(draft, SelectDoctor{DoctorID: "D2"})

	// Both derived fields move together in one transition.
	assert.Equal(t, "Dermatology", draft.Department)
	assert.Equal(t, 350, draft.ConsultationFee)
}

func TestSelectUnknownDoctorKeepsPreviousDerivedFields(t *testing.T) {
	r := NewReducer(testDirectory())
	draft := model.NewRegistrationDraft(time.Now())

	draft = r.Apply(draft, SelectDoctor{DoctorID: "D1"})
	draft = r.Apply(draft, SelectDoctor{DoctorID: "missing"})

	assert.Equal(t, "missing", draft.DoctorID)
	assert.Equal(t, "Cardiology", draft.Department)
	assert.Equal(t, 500, draft.ConsultationFee)
}

func TestSetFieldCoercesAge(t *testing.T) {
	r := NewReducer(testDirectory())
	draft := model.NewRegistrationDraft(time.Now())

	draft = r.Apply(draft, SetField{Name: "age", Value: "30"})
	if assert.NotNil(t, draft.Age) {
		assert.Equal(t, 30, *draft.Age)
	}

	// Bad numeric input is not coerced to zero; validation reports it.
	draft = r.Apply(draft, SetField{Name: "age", Value: "thirty"})
	assert.Nil(t, draft.Age)
}

func TestSetFieldIgnoresDerivedFields(t *testing.T) {
	r := NewReducer(testDirectory())
	draft := model.NewRegistrationDraft(time.Now())
	draft = r.Apply(draft, SelectDoctor{DoctorID: "D1"})

	draft = r.Apply(draft, SetField{Name: "department", Value: "Orthopedics"})
	draft = r.Apply(draft, SetField{Name: "consultationFees", Value: "9999"})

	assert.Equal(t, "Cardiology", draft.Department)
	assert.Equal(t, 500, draft.ConsultationFee)
}

func TestSetFieldParsesDates(t *testing.T) {
	r := NewReducer(testDirectory())
	draft := model.NewRegistrationDraft(time.Now())

	draft = r.Apply(draft, SetField{Name: "date", Value: "2026-09-01"})
	assert.Equal(t, 2026, draft.VisitDate.Year())
	assert.Equal(t, time.September, draft.VisitDate.Month())

	before := draft.RenewalDate
	draft = r.Apply(draft, SetField{Name: "renewalDate", Value: "not a date"})
	assert.Equal(t, before, draft.RenewalDate)
}

func TestDraftDefaults(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)
	draft := model.NewRegistrationDraft(now)

	assert.Equal(t, draft.VisitDate.Add(model.RenewalOffset), draft.RenewalDate)
}

func TestDraftDefaultsUseLocalCalendarDay(t *testing.T) {
	// 01:30 local in a UTC+5:30 desk is still 20:00 of the previous day
	// in UTC; the visit date must be the local day.
	ist := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, 8, 31, 1, 30, 0, 0, ist)

	draft := model.NewRegistrationDraft(now)

	y, m, d := draft.VisitDate.Date()
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.August, m)
	assert.Equal(t, 31, d)
	assert.Equal(t, ist, draft.VisitDate.Location())
	assert.Zero(t, draft.VisitDate.Hour())
}

func TestAppointmentReducerDerivesFields(t *testing.T) {
	r := NewReducer(testDirectory())
	draft := model.NewAppointmentDraft("P42", time.Now())

	draft = r.ApplyAppointment(draft, SelectDoctor{DoctorID: "D2"})

	assert.Equal(t, "P42", draft.ExistingPatientID)
	assert.Equal(t, "Dermatology", draft.Department)
	assert.Equal(t, 350, draft.ConsultationFee)
}
