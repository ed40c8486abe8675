package model

// Doctor is the read-only reference entity served by the hospital backend.
// The gateway never mutates doctors; it caches the active set for
// selection and derived-field lookup.
type Doctor struct {
	ID              string `json:"_id"`
	Name            string `json:"name"`
	Department      string `json:"department"`
	ConsultationFee int    `json:"consultationFees"`
	Active          bool   `json:"status"`
}

// DoctorForm carries the fields the admin desk submits when creating a
// doctor record. Fee is editable here, unlike on patient drafts.
type DoctorForm struct {
	Name            string `json:"name" validate:"required,min=2"`
	Qualification   string `json:"qualification" validate:"required,min=2"`
	Specialization  string `json:"specialization" validate:"required,min=2"`
	Department      string `json:"department" validate:"required,min=2"`
	Gender          string `json:"gender" validate:"required,oneof=male female other"`
	Age             int    `json:"age" validate:"required,gte=18"`
	Phone           string `json:"phone" validate:"required,min=10"`
	Email           string `json:"email" validate:"required,email"`
	ConsultationFee int    `json:"consultationFees" validate:"gte=0"`
}
