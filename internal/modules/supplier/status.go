package supplier

import "github.com/georgemunganga/supplyhub/internal/lifecycle"

// Status represents the lifecycle state of a supplier.
type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusPendingReview Status = "PENDING_REVIEW"
	StatusApproved      Status = "APPROVED"
	StatusRejected      Status = "REJECTED"
	StatusSuspended     Status = "SUSPENDED"
	StatusTerminated    Status = "TERMINATED"
)

// Statuses lists every supplier status in lifecycle order.
var Statuses = []Status{
	StatusDraft, StatusPendingReview, StatusApproved,
	StatusRejected, StatusSuspended, StatusTerminated,
}

var statusLabels = map[Status]string{
	StatusDraft:         "草稿",
	StatusPendingReview: "待审核",
	StatusApproved:      "已批准",
	StatusRejected:      "已拒绝",
	StatusSuspended:     "已暂停",
	StatusTerminated:    "已终止",
}

// Label returns the display name of s.
func (s Status) Label() string { return statusLabels[s] }

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// IsActive reports whether a supplier in status s may be traded with.
func (s Status) IsActive() bool { return s == StatusApproved }

// IsTerminal reports whether s has no outgoing transitions.
func (s Status) IsTerminal() bool { return machine.IsTerminal(s) }

// Lifecycle actions.
const (
	ActionSubmit    = "submit"
	ActionApprove   = "approve"
	ActionReject    = "reject"
	ActionSuspend   = "suspend"
	ActionActivate  = "activate"
	ActionTerminate = "terminate"
)

var machine = lifecycle.New("supplier", Statuses,
	lifecycle.Action[Status]{
		Name: ActionSubmit, From: []Status{StatusDraft}, To: StatusPendingReview,
		Message: "只有草稿状态的供应商可以提交审核",
	},
	lifecycle.Action[Status]{
		Name: ActionApprove, From: []Status{StatusPendingReview}, To: StatusApproved,
		Message: "只有待审核状态的供应商可以审核通过",
	},
	lifecycle.Action[Status]{
		Name: ActionReject, From: []Status{StatusPendingReview}, To: StatusRejected,
		Message: "只有待审核状态的供应商可以被拒绝",
	},
	lifecycle.Action[Status]{
		Name: ActionSuspend, From: []Status{StatusApproved}, To: StatusSuspended,
		Message: "只有已批准的供应商可以暂停合作",
	},
	lifecycle.Action[Status]{
		Name: ActionActivate, From: []Status{StatusSuspended}, To: StatusApproved,
		Message: "只有已暂停的供应商可以恢复合作",
	},
	lifecycle.Action[Status]{
		Name: ActionTerminate, From: []Status{StatusApproved, StatusSuspended}, To: StatusTerminated,
		Message: "只有已批准或已暂停的供应商可以终止合作",
	},
)

// CanTransition returns true if some action moves a supplier from current to next.
func CanTransition(current, next Status) bool {
	return machine.CanTransition(current, next)
}

// Type classifies the business relationship.
type Type string

const (
	TypeSupplier Type = "SUPPLIER"
	TypeMerchant Type = "MERCHANT"
)

var typeLabels = map[Type]string{
	TypeSupplier: "供应商",
	TypeMerchant: "商户",
}

// Label returns the display name of t.
func (t Type) Label() string { return typeLabels[t] }

// Valid reports whether t is a known supplier type.
func (t Type) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

// CooperationModel describes how goods are supplied.
type CooperationModel string

const (
	CooperationDistribution CooperationModel = "DISTRIBUTION"
	CooperationConsignment  CooperationModel = "CONSIGNMENT"
	CooperationJointVenture CooperationModel = "JOINT_VENTURE"
)

var cooperationLabels = map[CooperationModel]string{
	CooperationDistribution: "经销",
	CooperationConsignment:  "代销",
	CooperationJointVenture: "联营",
}

// Label returns the display name of m.
func (m CooperationModel) Label() string { return cooperationLabels[m] }

// Valid reports whether m is a known cooperation model.
func (m CooperationModel) Valid() bool {
	_, ok := cooperationLabels[m]
	return ok
}
