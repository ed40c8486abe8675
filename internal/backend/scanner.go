package backend

import (
	"context"
	"net/url"

	"github.com/opdesk/opdesk/internal/model"
)

// ScannerClient consumes the prescription-scanner contracts. Scanner
// stations learn about newly registered patients either by polling these
// endpoints or by subscribing to the gateway's patient.registered events.
type ScannerClient struct {
	client *Client
}

func NewScannerClient(client *Client) *ScannerClient {
	return &ScannerClient{client: client}
}

// PendingPatients lists patients whose prescription has not been
// scanned yet.
func (s *ScannerClient) PendingPatients(ctx context.Context) ([]model.Patient, error) {
	var patients []model.Patient
	if err := s.client.Get(ctx, "pending_patients", "pending-patients", &patients); err != nil {
		return nil, err
	}
	return patients, nil
}

func (s *ScannerClient) AllPatients(ctx context.Context) ([]model.Patient, error) {
	var patients []model.Patient
	if err := s.client.Get(ctx, "all_patients", "all-patients", &patients); err != nil {
		return nil, err
	}
	return patients, nil
}

// Search queries patients by name or OP number.
func (s *ScannerClient) Search(ctx context.Context, query string) ([]model.Patient, error) {
	var patients []model.Patient
	path := "search?q=" + url.QueryEscape(query)
	if err := s.client.Get(ctx, "search_patients", path, &patients); err != nil {
		return nil, err
	}
	return patients, nil
}
