package supplier

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/platform/apperr"
)

var (
	ErrNotFound   = fmt.Errorf("supplier %w", apperr.ErrNotFound)
	ErrDuplicate  = fmt.Errorf("supplier registration or tax number %w", apperr.ErrDuplicate)
	ErrValidation = fmt.Errorf("supplier %w", apperr.ErrValidation)
)

// Supplier is a vendor or merchant the business trades with. Status only
// changes through the lifecycle methods.
type Supplier struct {
	ID                  uuid.UUID        `json:"id"`
	Name                string           `json:"name"`
	LegalName           string           `json:"legal_name"`
	ShortName           string           `json:"short_name,omitempty"`
	RegistrationNumber  string           `json:"registration_number"`
	TaxNumber           string           `json:"tax_number"`
	LegalAddress        string           `json:"legal_address"`
	BusinessAddress     string           `json:"business_address,omitempty"`
	LegalRepresentative string           `json:"legal_representative,omitempty"`
	Type                Type             `json:"supplier_type"`
	CooperationModel    CooperationModel `json:"cooperation_model"`
	Industry            string           `json:"industry,omitempty"`
	Website             string           `json:"website,omitempty"`
	Remark              string           `json:"remark,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`

	status Status
}

// Input carries the editable supplier fields.
type Input struct {
	Name                string           `json:"name"`
	LegalName           string           `json:"legal_name"`
	ShortName           string           `json:"short_name,omitempty"`
	RegistrationNumber  string           `json:"registration_number"`
	TaxNumber           string           `json:"tax_number"`
	LegalAddress        string           `json:"legal_address"`
	BusinessAddress     string           `json:"business_address,omitempty"`
	LegalRepresentative string           `json:"legal_representative,omitempty"`
	Type                Type             `json:"supplier_type,omitempty"`
	CooperationModel    CooperationModel `json:"cooperation_model,omitempty"`
	Industry            string           `json:"industry,omitempty"`
	Website             string           `json:"website,omitempty"`
	Remark              string           `json:"remark,omitempty"`
}

// ValidateSupplierData reports whether every required identity field is
// present: name, legal name, legal address, registration and tax numbers.
func ValidateSupplierData(in Input) bool {
	for _, v := range []string{in.Name, in.LegalName, in.LegalAddress, in.RegistrationNumber, in.TaxNumber} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

func (in Input) check() error {
	if !ValidateSupplierData(in) {
		return fmt.Errorf("%w: name, legal_name, legal_address, registration_number and tax_number are required", ErrValidation)
	}
	if in.Type != "" && !in.Type.Valid() {
		return fmt.Errorf("%w: unknown supplier_type %q", ErrValidation, in.Type)
	}
	if in.CooperationModel != "" && !in.CooperationModel.Valid() {
		return fmt.Errorf("%w: unknown cooperation_model %q", ErrValidation, in.CooperationModel)
	}
	return nil
}

// New validates in and returns a DRAFT supplier.
func New(in Input) (*Supplier, error) {
	s := &Supplier{ID: uuid.New(), Type: TypeSupplier, CooperationModel: CooperationDistribution, status: StatusDraft}
	if err := s.apply(in); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces the editable fields after validating in. Status is untouched.
func (s *Supplier) Update(in Input) error {
	return s.apply(in)
}

func (s *Supplier) apply(in Input) error {
	if err := in.check(); err != nil {
		return err
	}
	s.Name = strings.TrimSpace(in.Name)
	s.LegalName = strings.TrimSpace(in.LegalName)
	s.ShortName = strings.TrimSpace(in.ShortName)
	s.RegistrationNumber = strings.TrimSpace(in.RegistrationNumber)
	s.TaxNumber = strings.TrimSpace(in.TaxNumber)
	s.LegalAddress = strings.TrimSpace(in.LegalAddress)
	s.BusinessAddress = strings.TrimSpace(in.BusinessAddress)
	s.LegalRepresentative = strings.TrimSpace(in.LegalRepresentative)
	if in.Type != "" {
		s.Type = in.Type
	}
	if in.CooperationModel != "" {
		s.CooperationModel = in.CooperationModel
	}
	s.Industry = in.Industry
	s.Website = in.Website
	s.Remark = in.Remark
	return nil
}

// Status returns the current lifecycle status.
func (s *Supplier) Status() Status { return s.status }

// IsActive reports whether the supplier is approved for trading.
func (s *Supplier) IsActive() bool { return s.status.IsActive() }

// SubmitForReview moves a DRAFT supplier to PENDING_REVIEW.
func (s *Supplier) SubmitForReview() error { return s.fire(ActionSubmit) }

// Approve moves a PENDING_REVIEW supplier to APPROVED.
func (s *Supplier) Approve() error { return s.fire(ActionApprove) }

// Reject moves a PENDING_REVIEW supplier to REJECTED.
func (s *Supplier) Reject() error { return s.fire(ActionReject) }

// Suspend moves an APPROVED supplier to SUSPENDED.
func (s *Supplier) Suspend() error { return s.fire(ActionSuspend) }

// Activate moves a SUSPENDED supplier back to APPROVED.
func (s *Supplier) Activate() error { return s.fire(ActionActivate) }

// Terminate ends cooperation with an APPROVED or SUSPENDED supplier.
func (s *Supplier) Terminate() error { return s.fire(ActionTerminate) }

func (s *Supplier) fire(action string) error {
	next, err := machine.Fire(action, s.status)
	if err != nil {
		return err
	}
	s.status = next
	return nil
}

// Touch stamps the update time; repositories call it before writing.
func (s *Supplier) Touch(now time.Time) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
}

func (s *Supplier) clone() *Supplier {
	c := *s
	return &c
}

// MarshalJSON adds the status and its labels to the encoded supplier.
func (s Supplier) MarshalJSON() ([]byte, error) {
	type alias Supplier
	return json.Marshal(struct {
		alias
		Status                Status `json:"status"`
		StatusLabel           string `json:"status_label"`
		TypeLabel             string `json:"supplier_type_label"`
		CooperationModelLabel string `json:"cooperation_model_label"`
	}{
		alias:                 alias(s),
		Status:                s.status,
		StatusLabel:           s.status.Label(),
		TypeLabel:             s.Type.Label(),
		CooperationModelLabel: s.CooperationModel.Label(),
	})
}
