package model

import "time"

// RenewalOffset is the default gap between visit date and renewal date.
const RenewalOffset = 7 * 24 * time.Hour

// RegistrationDraft holds an in-progress patient registration. Department
// and ConsultationFee are derived from the selected doctor and are never
// independently editable; the registration reducer is the only writer
// that keeps them in sync.
type RegistrationDraft struct {
	Name            string    `json:"name" validate:"required,min=2"`
	Sex             string    `json:"sex" validate:"required,oneof=male female other"`
	Age             *int      `json:"age" validate:"required,gte=0"`
	HomeName        string    `json:"homeName" validate:"required,min=2"`
	Place           string    `json:"place" validate:"required,min=2"`
	Phone           string    `json:"phone" validate:"required,min=10"`
	VisitDate       time.Time `json:"date" validate:"required"`
	RenewalDate     time.Time `json:"renewalDate" validate:"required"`
	DoctorID        string    `json:"doctorId" validate:"required"`
	Department      string    `json:"department"`
	ConsultationFee int       `json:"consultationFees" validate:"gte=0"`
}

// NewRegistrationDraft returns an empty draft with date defaults: visit
// today, renewal a week out. Today is the desk's local calendar day, not
// the UTC one.
func NewRegistrationDraft(now time.Time) RegistrationDraft {
	today := localMidnight(now)
	return RegistrationDraft{
		VisitDate:   today,
		RenewalDate: today.Add(RenewalOffset),
	}
}

// AppointmentDraft is the existing-patient variant: patient identity is
// fixed, only the appointment fields are editable.
type AppointmentDraft struct {
	ExistingPatientID string    `json:"existingPatientId" validate:"required"`
	DoctorID          string    `json:"doctorId" validate:"required"`
	VisitDate         time.Time `json:"date" validate:"required"`
	RenewalDate       time.Time `json:"renewalDate" validate:"required"`
	Department        string    `json:"department"`
	ConsultationFee   int       `json:"consultationFees" validate:"gte=0"`
}

// NewAppointmentDraft returns an appointment draft for patientID with the
// same date defaults as a fresh registration.
func NewAppointmentDraft(patientID string, now time.Time) AppointmentDraft {
	today := localMidnight(now)
	return AppointmentDraft{
		ExistingPatientID: patientID,
		VisitDate:         today,
		RenewalDate:       today.Add(RenewalOffset),
	}
}

func localMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
