package registration

import (
	"time"

	"github.com/opdesk/opdesk/internal/model"
	"github.com/opdesk/opdesk/pkg/validator"
)

// ValidationConfig gates the optional rules. Date ordering between visit
// and renewal is off by default: the backend's stance on renewal-before-
// visit is unknown, so enforcement is explicit configuration rather than
// a guess.
type ValidationConfig struct {
	EnforceDateOrder bool `mapstructure:"enforce_date_order"`
}

// DraftValidator runs the client-side rules. Validation is advisory: the
// backend remains the authority and may still reject.
type DraftValidator struct {
	v   validator.Validator
	cfg ValidationConfig
}

func NewDraftValidator(cfg ValidationConfig) *DraftValidator {
	return &DraftValidator{v: validator.New(), cfg: cfg}
}

// Validate returns a field-to-message mapping, empty (nil) when the
// draft is submittable. Repeated calls without mutation return the same
// set.
func (dv *DraftValidator) Validate(draft model.RegistrationDraft) map[string]string {
	fields := dv.v.Validate(draft)
	fields = dv.checkDates(fields, draft.VisitDate, draft.RenewalDate)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ValidateAppointment applies the existing-patient rules.
func (dv *DraftValidator) ValidateAppointment(draft model.AppointmentDraft) map[string]string {
	fields := dv.v.Validate(draft)
	fields = dv.checkDates(fields, draft.VisitDate, draft.RenewalDate)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (dv *DraftValidator) checkDates(fields map[string]string, visit, renewal time.Time) map[string]string {
	if !dv.cfg.EnforceDateOrder {
		return fields
	}
	if !visit.IsZero() && !renewal.IsZero() && renewal.Before(visit) {
		if fields == nil {
			fields = make(map[string]string, 1)
		}
		fields["renewalDate"] = "renewalDate must not be before date"
	}
	return fields
}
