package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opdesk/opdesk/internal/directory"
	"github.com/opdesk/opdesk/internal/model"
	"github.com/opdesk/opdesk/internal/registration"
	"github.com/opdesk/opdesk/pkg/logger"
	"github.com/opdesk/opdesk/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("opdesk_test", "registration_handler")

type fakeLister struct {
	doctors []model.Doctor
	err     error
}

func (f *fakeLister) ListActiveDoctors(ctx context.Context) ([]model.Doctor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doctors, nil
}

type fakeRegistrar struct {
	calls int
	err   error
}

func (f *fakeRegistrar) RegisterPatient(ctx context.Context, draft model.RegistrationDraft) (*model.Patient, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &model.Patient{
		ID:              "P1",
		OPNumber:        "OP-1001",
		Name:            draft.Name,
		Department:      draft.Department,
		ConsultationFee: draft.ConsultationFee,
	}, nil
}

func (f *fakeRegistrar) AddAppointment(ctx context.Context, draft model.AppointmentDraft) (*model.Patient, error) {
	f.calls++
	return &model.Patient{ID: draft.ExistingPatientID, OPNumber: "OP-1001"}, nil
}

func newTestRouter(t *testing.T, lister *fakeLister, registrar *fakeRegistrar) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})

	dir := directory.NewService(lister, directory.Config{}, log, nil)
	svc := registration.NewService(
		registrar,
		registration.NewReducer(dir),
		registration.NewDraftValidator(registration.ValidationConfig{}),
		nil, nil, log, testMetrics,
	)

	router := gin.New()
	api := router.Group("/api/v1")
	NewHandler(svc, dir).RegisterRoutes(api)
	return router
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type apiResponse struct {
	Success bool `json:"success"`
	Data    struct {
		SessionID string                 `json:"session_id"`
		Variant   string                 `json:"variant"`
		Draft     map[string]interface{} `json:"draft"`
		Doctors   []model.Doctor         `json:"doctors"`
		Warning   string                 `json:"warning"`
	} `json:"data"`
	Error *struct {
		Code    int               `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func activeDoctors() *fakeLister {
	return &fakeLister{doctors: []model.Doctor{
		{ID: "D1", Name: "Dr. Anand", Department: "Cardiology", ConsultationFee: 500, Active: true},
	}}
}

func TestCreateSessionReturnsDoctors(t *testing.T) {
	router := newTestRouter(t, activeDoctors(), &fakeRegistrar{})

	w := doJSON(router, http.MethodPost, "/api/v1/registrations/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "new_patient", resp.Data.Variant)
	assert.NotEmpty(t, resp.Data.SessionID)
	require.Len(t, resp.Data.Doctors, 1)
	assert.Equal(t, "Dr. Anand", resp.Data.Doctors[0].Name)
	assert.Empty(t, resp.Data.Warning)
}

func TestCreateSessionDegradesWhenDirectoryDown(t *testing.T) {
	lister := &fakeLister{err: context.DeadlineExceeded}
	router := newTestRouter(t, lister, &fakeRegistrar{})

	w := doJSON(router, http.MethodPost, "/api/v1/registrations/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// The form opens anyway, with no doctors and a warning.
	resp := decode(t, w)
	assert.Empty(t, resp.Data.Doctors)
	assert.NotEmpty(t, resp.Data.Warning)
}

func TestSelectDoctorEventFillsDerivedFields(t *testing.T) {
	router := newTestRouter(t, activeDoctors(), &fakeRegistrar{})

	created := decode(t, doJSON(router, http.MethodPost, "/api/v1/registrations/sessions", nil))
	path := "/api/v1/registrations/sessions/" + created.Data.SessionID + "/events"

	w := doJSON(router, http.MethodPost, path, gin.H{"type": "select_doctor", "doctorId": "D1"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "Cardiology", resp.Data.Draft["department"])
	assert.Equal(t, float64(500), resp.Data.Draft["consultationFees"])
}

func TestSubmitValidDraft(t *testing.T) {
	registrar := &fakeRegistrar{}
	router := newTestRouter(t, activeDoctors(), registrar)

	created := decode(t, doJSON(router, http.MethodPost, "/api/v1/registrations/sessions", nil))
	base := "/api/v1/registrations/sessions/" + created.Data.SessionID

	fields := map[string]string{
		"name": "Jane Doe", "sex": "female", "age": "34",
		"homeName": "Rose Villa", "place": "Kochi", "phone": "9876543210",
	}
	for name, value := range fields {
		w := doJSON(router, http.MethodPost, base+"/events",
			gin.H{"type": "set_field", "name": name, "value": value})
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := doJSON(router, http.MethodPost, base+"/events",
		gin.H{"type": "select_doctor", "doctorId": "D1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, registrar.calls)

	var submitted struct {
		Data model.Patient `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	assert.Equal(t, "OP-1001", submitted.Data.OPNumber)
	assert.Equal(t, 500, submitted.Data.ConsultationFee)
}

func TestSubmitInvalidDraftReturns422(t *testing.T) {
	registrar := &fakeRegistrar{}
	router := newTestRouter(t, activeDoctors(), registrar)

	created := decode(t, doJSON(router, http.MethodPost, "/api/v1/registrations/sessions", nil))
	path := "/api/v1/registrations/sessions/" + created.Data.SessionID + "/submit"

	w := doJSON(router, http.MethodPost, path, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	resp := decode(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Fields, "name")
	assert.Zero(t, registrar.calls)
}

func TestGetUnknownSession(t *testing.T) {
	router := newTestRouter(t, activeDoctors(), &fakeRegistrar{})

	w := doJSON(router, http.MethodGet,
		"/api/v1/registrations/sessions/6ba7b810-9dad-11d1-80b4-00c04fd430c8", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCloseSession(t *testing.T) {
	router := newTestRouter(t, activeDoctors(), &fakeRegistrar{})

	created := decode(t, doJSON(router, http.MethodPost, "/api/v1/registrations/sessions", nil))
	base := "/api/v1/registrations/sessions/" + created.Data.SessionID

	w := doJSON(router, http.MethodDelete, base, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAppointmentSession(t *testing.T) {
	router := newTestRouter(t, activeDoctors(), &fakeRegistrar{})

	w := doJSON(router, http.MethodPost, "/api/v1/registrations/sessions",
		gin.H{"existingPatientId": "P42"})
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "existing_patient", resp.Data.Variant)
	assert.Equal(t, "P42", resp.Data.Draft["existingPatientId"])
}
