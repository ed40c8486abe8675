package model

import "time"

// Sex values accepted on registration drafts.
const (
	SexMale   = "male"
	SexFemale = "female"
	SexOther  = "other"
)

// PrescriptionAdded states reported by the backend for a visit.
const (
	PrescriptionAdded    = "added"
	PrescriptionPending  = "pending"
	PrescriptionNotAdded = "not-added"
)

// Patient is the backend's record of a registered patient. It is
// immutable from the gateway's perspective once returned; the backend
// assigns the id and the OP number used for document generation.
type Patient struct {
	ID                string    `json:"_id"`
	Name              string    `json:"name"`
	Sex               string    `json:"sex"`
	Age               int       `json:"age"`
	HomeName          string    `json:"homeName"`
	Place             string    `json:"place"`
	Phone             string    `json:"phone"`
	Doctor            Doctor    `json:"doctor"`
	Department        string    `json:"department"`
	ConsultationFee   int       `json:"consultationFees"`
	PrescriptionState string    `json:"prescriptionAdded"`
	OPNumber          string    `json:"opNumber"`
	VisitDate         time.Time `json:"date"`
	RenewalDate       time.Time `json:"renewalDate"`
}

// MedicalRecord is one entry of a patient's visit history, keyed by OP
// number on the backend.
type MedicalRecord struct {
	ID                string    `json:"_id"`
	Doctor            Doctor    `json:"doctor"`
	Department        string    `json:"department"`
	ConsultationFee   int       `json:"consultationFees"`
	VisitDate         time.Time `json:"date"`
	RenewalDate       time.Time `json:"renewalDate"`
	PrescriptionState string    `json:"prescriptionAdded"`
}
