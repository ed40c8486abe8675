package backend

import (
	"context"
	"fmt"

	"github.com/opdesk/opdesk/internal/model"
)

// ReceptionistClient consumes the receptionist-scoped backend contracts:
// the active-doctor directory, patient registration, appointments for
// existing patients, lookup/history, and prescription document fetch.
type ReceptionistClient struct {
	client *Client
}

func NewReceptionistClient(client *Client) *ReceptionistClient {
	return &ReceptionistClient{client: client}
}

// ListActiveDoctors fetches the set of doctors eligible for selection.
func (r *ReceptionistClient) ListActiveDoctors(ctx context.Context) ([]model.Doctor, error) {
	var doctors []model.Doctor
	if err := r.client.Get(ctx, "list_active_doctors", "doctors/active", &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

// RegisterPatient persists a validated draft and returns the backend's
// record, including the server-assigned id and OP number.
func (r *ReceptionistClient) RegisterPatient(ctx context.Context, draft model.RegistrationDraft) (*model.Patient, error) {
	var patient model.Patient
	if err := r.client.Post(ctx, "register_patient", "patients/add", draft, &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}

// AddAppointment creates a new visit for an existing patient.
func (r *ReceptionistClient) AddAppointment(ctx context.Context, draft model.AppointmentDraft) (*model.Patient, error) {
	var patient model.Patient
	if err := r.client.Post(ctx, "add_appointment", "patients/existing/add", draft, &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}

// GetPatient fetches one patient record by id.
func (r *ReceptionistClient) GetPatient(ctx context.Context, id string) (*model.Patient, error) {
	var patient model.Patient
	if err := r.client.Get(ctx, "get_patient", "patients/"+id, &patient); err != nil {
		return nil, err
	}
	return &patient, nil
}

// PatientHistory fetches all visits recorded under an OP number.
func (r *ReceptionistClient) PatientHistory(ctx context.Context, opNumber string) ([]model.MedicalRecord, error) {
	var records []model.MedicalRecord
	if err := r.client.Get(ctx, "patient_history", "patients/history/"+opNumber, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FetchPrescription retrieves the rendered prescription document for a
// registered patient. The backend serves either the binary stream
// directly or a JSON envelope carrying a URL; both paths end in bytes.
func (r *ReceptionistClient) FetchPrescription(ctx context.Context, patientID string) ([]byte, string, error) {
	doc, contentType, err := r.client.GetBinary(ctx, "fetch_prescription",
		fmt.Sprintf("patients/%s/print-prescription", patientID))
	if err != nil {
		return nil, "", err
	}
	return doc, contentType, nil
}
