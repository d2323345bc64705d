package evaluation

import "github.com/georgemunganga/supplyhub/internal/lifecycle"

// Status represents the review state of a performance evaluation.
type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusPendingReview Status = "PENDING_REVIEW"
	StatusConfirmed     Status = "CONFIRMED"
	StatusRejected      Status = "REJECTED"
)

// Statuses lists every evaluation status.
var Statuses = []Status{StatusDraft, StatusPendingReview, StatusConfirmed, StatusRejected}

var statusLabels = map[Status]string{
	StatusDraft:         "草稿",
	StatusPendingReview: "待审核",
	StatusConfirmed:     "已确认",
	StatusRejected:      "已拒绝",
}

func (s Status) Label() string { return statusLabels[s] }

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// IsEditable reports whether items, score and comments may change.
func (s Status) IsEditable() bool { return s == StatusDraft || s == StatusRejected }

// IsCompleted reports whether the evaluation has been confirmed.
func (s Status) IsCompleted() bool { return s == StatusConfirmed }

// IsTerminal reports whether s has no outgoing transitions.
func (s Status) IsTerminal() bool { return machine.IsTerminal(s) }

const (
	ActionSubmit  = "submit"
	ActionApprove = "approve"
	ActionReject  = "reject"
)

var machine = lifecycle.New("evaluation", Statuses,
	lifecycle.Action[Status]{
		Name: ActionSubmit, From: []Status{StatusDraft}, To: StatusPendingReview,
		Message: "只有草稿状态的评估可以提交审核",
	},
	lifecycle.Action[Status]{
		Name: ActionApprove, From: []Status{StatusPendingReview}, To: StatusConfirmed,
		Message: "只有待审核状态的评估可以确认",
	},
	lifecycle.Action[Status]{
		Name: ActionReject, From: []Status{StatusPendingReview}, To: StatusRejected,
		Message: "只有待审核状态的评估可以被拒绝",
	},
)

// CanTransition returns true if some action moves an evaluation from current to next.
func CanTransition(current, next Status) bool {
	return machine.CanTransition(current, next)
}

// ItemType distinguishes measured indicators from judged ones.
type ItemType string

const (
	ItemQuantitative ItemType = "QUANTITATIVE"
	ItemQualitative  ItemType = "QUALITATIVE"
)

var itemTypeLabels = map[ItemType]string{
	ItemQuantitative: "定量",
	ItemQualitative:  "定性",
}

func (t ItemType) Label() string { return itemTypeLabels[t] }

func (t ItemType) Valid() bool {
	_, ok := itemTypeLabels[t]
	return ok
}
