package supplier

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/georgemunganga/supplyhub/internal/lifecycle"
)

func validInput() Input {
	return Input{
		Name:               "华东包装",
		LegalName:          "华东包装材料有限公司",
		RegistrationNumber: "91310000MA1FL0001X",
		TaxNumber:          "913100001234567890",
		LegalAddress:       "上海市浦东新区张江路 1 号",
	}
}

func TestValidateSupplierData(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		want   bool
	}{
		{"complete", func(*Input) {}, true},
		{"missing name", func(in *Input) { in.Name = "" }, false},
		{"blank legal name", func(in *Input) { in.LegalName = "   " }, false},
		{"missing registration", func(in *Input) { in.RegistrationNumber = "" }, false},
		{"missing tax number", func(in *Input) { in.TaxNumber = "" }, false},
		{"missing legal address", func(in *Input) { in.LegalAddress = "" }, false},
		{"optional fields empty", func(in *Input) { in.Website = ""; in.ShortName = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			if got := ValidateSupplierData(in); got != tt.want {
				t.Errorf("ValidateSupplierData() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	s, err := New(validInput())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Status() != StatusDraft {
		t.Errorf("status = %s, want DRAFT", s.Status())
	}
	if s.Type != TypeSupplier || s.CooperationModel != CooperationDistribution {
		t.Errorf("defaults = %s/%s", s.Type, s.CooperationModel)
	}

	in := validInput()
	in.CooperationModel = "BARTER"
	if _, err := New(in); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown cooperation model err = %v, want ErrValidation", err)
	}
}

func TestSubmitOnlyFromDraft(t *testing.T) {
	for _, from := range Statuses {
		t.Run(string(from), func(t *testing.T) {
			s := &Supplier{status: from}
			err := s.SubmitForReview()
			if from == StatusDraft {
				if err != nil || s.Status() != StatusPendingReview {
					t.Fatalf("submit from DRAFT: status=%s err=%v", s.Status(), err)
				}
				return
			}
			if !errors.Is(err, lifecycle.ErrIllegalTransition) {
				t.Fatalf("err = %v, want illegal transition", err)
			}
			if s.Status() != from {
				t.Errorf("status changed to %s on failure", s.Status())
			}
		})
	}
}

func TestFullLifecycle(t *testing.T) {
	s, err := New(validInput())
	if err != nil {
		t.Fatal(err)
	}
	steps := []struct {
		fn   func() error
		want Status
	}{
		{s.SubmitForReview, StatusPendingReview},
		{s.Approve, StatusApproved},
		{s.Suspend, StatusSuspended},
		{s.Activate, StatusApproved},
		{s.Terminate, StatusTerminated},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			t.Fatalf("moving to %s: %v", step.want, err)
		}
		if s.Status() != step.want {
			t.Fatalf("status = %s, want %s", s.Status(), step.want)
		}
	}
	if !s.Status().IsTerminal() {
		t.Error("TERMINATED should be terminal")
	}
	for _, fn := range []func() error{s.SubmitForReview, s.Approve, s.Reject, s.Suspend, s.Activate, s.Terminate} {
		if err := fn(); !errors.Is(err, lifecycle.ErrIllegalTransition) {
			t.Errorf("action after termination err = %v", err)
		}
	}
}

func TestApproveTwiceFails(t *testing.T) {
	s := &Supplier{status: StatusPendingReview}
	if err := s.Approve(); err != nil {
		t.Fatal(err)
	}
	err := s.Approve()
	te, ok := lifecycle.AsTransitionError(err)
	if !ok {
		t.Fatalf("second approve err = %v, want TransitionError", err)
	}
	if te.Current != string(StatusApproved) || te.Message != "只有待审核状态的供应商可以审核通过" {
		t.Errorf("transition error = %+v", te)
	}
}

func TestStatusPredicates(t *testing.T) {
	tests := []struct {
		status   Status
		active   bool
		terminal bool
	}{
		{StatusDraft, false, false},
		{StatusPendingReview, false, false},
		{StatusApproved, true, false},
		{StatusRejected, false, true},
		{StatusSuspended, false, false},
		{StatusTerminated, false, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsActive(); got != tt.active {
				t.Errorf("IsActive() = %v", got)
			}
			if got := tt.status.IsTerminal(); got != tt.terminal {
				t.Errorf("IsTerminal() = %v", got)
			}
			if tt.status.Label() == "" {
				t.Error("missing label")
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatusApproved, StatusTerminated) {
		t.Error("APPROVED -> TERMINATED should be allowed")
	}
	if CanTransition(StatusDraft, StatusApproved) {
		t.Error("DRAFT -> APPROVED should not be allowed")
	}
}

func TestMarshalJSONIncludesStatus(t *testing.T) {
	s, _ := New(validInput())
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got["status"] != "DRAFT" || got["status_label"] != "草稿" || got["cooperation_model_label"] != "经销" {
		t.Errorf("encoded = %s", b)
	}
}

func TestContactInput(t *testing.T) {
	if _, err := NewContact(validID, ContactInput{Name: "张三", Email: "not-an-email"}); !errors.Is(err, ErrValidation) {
		t.Errorf("bad email err = %v", err)
	}
	c, err := NewContact(validID, ContactInput{Name: " 张三 ", Email: "zhangsan@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "张三" || c.IsPrimary {
		t.Errorf("contact = %+v", c)
	}
	c.MakePrimary()
	c.MakePrimary()
	if !c.IsPrimary {
		t.Error("expected primary")
	}
	c.RemovePrimary()
	if c.IsPrimary {
		t.Error("expected not primary")
	}
}
