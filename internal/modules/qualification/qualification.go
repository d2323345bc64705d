// Package qualification manages supplier certificates and licences and
// their review lifecycle.
package qualification

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/supplyhub/internal/platform/apperr"
)

var (
	ErrNotFound   = fmt.Errorf("qualification %w", apperr.ErrNotFound)
	ErrDuplicate  = fmt.Errorf("qualification certificate number %w", apperr.ErrDuplicate)
	ErrValidation = fmt.Errorf("qualification %w", apperr.ErrValidation)
)

// Qualification is a certificate held by a supplier.
type Qualification struct {
	ID                uuid.UUID  `json:"id"`
	SupplierID        uuid.UUID  `json:"supplier_id"`
	Name              string     `json:"name"`
	Type              string     `json:"qualification_type"`
	CertificateNumber string     `json:"certificate_number"`
	IssuingAuthority  string     `json:"issuing_authority,omitempty"`
	IssuedDate        *time.Time `json:"issued_date,omitempty"`
	ExpiryDate        *time.Time `json:"expiry_date,omitempty"`
	AttachmentURL     string     `json:"attachment_url,omitempty"`
	Remark            string     `json:"remark,omitempty"`
	IsActive          bool       `json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	status Status
}

// Input carries the editable qualification fields.
type Input struct {
	SupplierID        uuid.UUID  `json:"supplier_id"`
	Name              string     `json:"name"`
	Type              string     `json:"qualification_type"`
	CertificateNumber string     `json:"certificate_number"`
	IssuingAuthority  string     `json:"issuing_authority,omitempty"`
	IssuedDate        *time.Time `json:"issued_date,omitempty"`
	ExpiryDate        *time.Time `json:"expiry_date,omitempty"`
	AttachmentURL     string     `json:"attachment_url,omitempty"`
	Remark            string     `json:"remark,omitempty"`
}

func (in Input) check() error {
	switch {
	case in.SupplierID == uuid.Nil:
		return fmt.Errorf("%w: supplier_id is required", ErrValidation)
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case strings.TrimSpace(in.Type) == "":
		return fmt.Errorf("%w: qualification_type is required", ErrValidation)
	case strings.TrimSpace(in.CertificateNumber) == "":
		return fmt.Errorf("%w: certificate_number is required", ErrValidation)
	}
	if in.IssuedDate != nil && in.ExpiryDate != nil && in.ExpiryDate.Before(*in.IssuedDate) {
		return fmt.Errorf("%w: expiry_date precedes issued_date", ErrValidation)
	}
	return nil
}

// New validates in and returns an active DRAFT qualification.
func New(in Input) (*Qualification, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	q := &Qualification{ID: uuid.New(), SupplierID: in.SupplierID, IsActive: true, status: StatusDraft}
	q.apply(in)
	return q, nil
}

// Update replaces the editable fields. The owning supplier cannot change.
func (q *Qualification) Update(in Input) error {
	in.SupplierID = q.SupplierID
	if err := in.check(); err != nil {
		return err
	}
	q.apply(in)
	return nil
}

func (q *Qualification) apply(in Input) {
	q.Name = strings.TrimSpace(in.Name)
	q.Type = strings.TrimSpace(in.Type)
	q.CertificateNumber = strings.TrimSpace(in.CertificateNumber)
	q.IssuingAuthority = in.IssuingAuthority
	q.IssuedDate = in.IssuedDate
	q.ExpiryDate = in.ExpiryDate
	q.AttachmentURL = in.AttachmentURL
	q.Remark = in.Remark
}

func (q *Qualification) Status() Status { return q.status }

// IsValid reports whether the qualification is currently approved.
func (q *Qualification) IsValid() bool { return q.status == StatusApproved }

// IsExpired reports whether the expiry date lies before now. A qualification
// without an expiry date never expires.
func (q *Qualification) IsExpired(now time.Time) bool {
	return q.ExpiryDate != nil && q.ExpiryDate.Before(now)
}

// SetActive toggles the active flag independently of the review status.
func (q *Qualification) SetActive(active bool) { q.IsActive = active }

func (q *Qualification) SubmitForReview() error { return q.fire(ActionSubmit) }
func (q *Qualification) Approve() error         { return q.fire(ActionApprove) }
func (q *Qualification) Reject() error          { return q.fire(ActionReject) }

// MarkExpired moves an APPROVED qualification to EXPIRED.
func (q *Qualification) MarkExpired() error { return q.fire(ActionExpire) }

// Renew extends an APPROVED or EXPIRED qualification to newExpiry and
// reactivates it.
func (q *Qualification) Renew(newExpiry time.Time) error {
	if q.IssuedDate != nil && newExpiry.Before(*q.IssuedDate) {
		return fmt.Errorf("%w: new expiry date precedes issued_date", ErrValidation)
	}
	if err := q.fire(ActionRenew); err != nil {
		return err
	}
	q.ExpiryDate = &newExpiry
	q.IsActive = true
	return nil
}

func (q *Qualification) fire(action string) error {
	next, err := machine.Fire(action, q.status)
	if err != nil {
		return err
	}
	q.status = next
	return nil
}

func (q *Qualification) Touch(now time.Time) {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now
}

func (q *Qualification) clone() *Qualification {
	c := *q
	if q.IssuedDate != nil {
		d := *q.IssuedDate
		c.IssuedDate = &d
	}
	if q.ExpiryDate != nil {
		d := *q.ExpiryDate
		c.ExpiryDate = &d
	}
	return &c
}

func (q Qualification) MarshalJSON() ([]byte, error) {
	type alias Qualification
	return json.Marshal(struct {
		alias
		Status      Status `json:"status"`
		StatusLabel string `json:"status_label"`
		IsValid     bool   `json:"is_valid"`
	}{alias(q), q.status, q.status.Label(), q.IsValid()})
}
