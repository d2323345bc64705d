package qualification

import "github.com/georgemunganga/supplyhub/internal/lifecycle"

// Status represents the review state of a qualification certificate.
type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusPendingReview Status = "PENDING_REVIEW"
	StatusApproved      Status = "APPROVED"
	StatusRejected      Status = "REJECTED"
	StatusExpired       Status = "EXPIRED"
)

// Statuses lists every qualification status.
var Statuses = []Status{StatusDraft, StatusPendingReview, StatusApproved, StatusRejected, StatusExpired}

var statusLabels = map[Status]string{
	StatusDraft:         "草稿",
	StatusPendingReview: "待审核",
	StatusApproved:      "已批准",
	StatusRejected:      "已拒绝",
	StatusExpired:       "已过期",
}

func (s Status) Label() string { return statusLabels[s] }

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// IsTerminal reports whether s has no outgoing transitions.
func (s Status) IsTerminal() bool { return machine.IsTerminal(s) }

const (
	ActionSubmit  = "submit"
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionRenew   = "renew"
	ActionExpire  = "expire"
)

var machine = lifecycle.New("qualification", Statuses,
	lifecycle.Action[Status]{
		Name: ActionSubmit, From: []Status{StatusDraft}, To: StatusPendingReview,
		Message: "只有草稿状态的资质可以提交审核",
	},
	lifecycle.Action[Status]{
		Name: ActionApprove, From: []Status{StatusPendingReview}, To: StatusApproved,
		Message: "只有待审核状态的资质可以审核通过",
	},
	lifecycle.Action[Status]{
		Name: ActionReject, From: []Status{StatusPendingReview}, To: StatusRejected,
		Message: "只有待审核状态的资质可以被拒绝",
	},
	lifecycle.Action[Status]{
		Name: ActionRenew, From: []Status{StatusApproved, StatusExpired}, To: StatusApproved,
		Message: "只有已批准或已过期的资质可以续期",
	},
	lifecycle.Action[Status]{
		Name: ActionExpire, From: []Status{StatusApproved}, To: StatusExpired,
		Message: "只有已批准的资质可以标记为过期",
	},
)

// CanTransition returns true if some action moves a qualification from current to next.
func CanTransition(current, next Status) bool {
	return machine.CanTransition(current, next)
}
