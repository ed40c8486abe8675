package backend

import (
	"context"

	"github.com/opdesk/opdesk/internal/model"
)

// AdminClient consumes the admin-scoped contracts: doctor record
// management and staff approval. List/toggle screens in the admin desk
// are plain pass-throughs of these calls.
type AdminClient struct {
	client *Client
}

// StaffMember is a receptionist or PDEO account pending or holding
// approval.
type StaffMember struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Approved bool   `json:"isApproved"`
}

func NewAdminClient(client *Client) *AdminClient {
	return &AdminClient{client: client}
}

func (a *AdminClient) AddDoctor(ctx context.Context, form model.DoctorForm) (*model.Doctor, error) {
	var doctor model.Doctor
	if err := a.client.Post(ctx, "add_doctor", "doctors/add", form, &doctor); err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (a *AdminClient) ListDoctors(ctx context.Context) ([]model.Doctor, error) {
	var doctors []model.Doctor
	if err := a.client.Get(ctx, "list_doctors", "doctors", &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

// SetDoctorStatus toggles a doctor in or out of the active directory.
func (a *AdminClient) SetDoctorStatus(ctx context.Context, id string, active bool) error {
	body := map[string]bool{"status": active}
	return a.client.Patch(ctx, "set_doctor_status", "doctors/"+id+"/status", body, nil)
}

func (a *AdminClient) ListStaff(ctx context.Context, role string) ([]StaffMember, error) {
	var staff []StaffMember
	if err := a.client.Get(ctx, "list_staff", role, &staff); err != nil {
		return nil, err
	}
	return staff, nil
}

// ApproveStaff flips a pending receptionist/PDEO account to approved.
func (a *AdminClient) ApproveStaff(ctx context.Context, role, id string) error {
	return a.client.Patch(ctx, "approve_staff", role+"/"+id+"/approve", nil, nil)
}
