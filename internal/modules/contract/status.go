package contract

// Status represents the lifecycle state of a contract. Contract status is
// set directly; any known status may follow any other.
type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusPendingReview Status = "PENDING_REVIEW"
	StatusApproved      Status = "APPROVED"
	StatusActive        Status = "ACTIVE"
	StatusCompleted     Status = "COMPLETED"
	StatusTerminated    Status = "TERMINATED"
)

// Statuses lists every contract status.
var Statuses = []Status{
	StatusDraft, StatusPendingReview, StatusApproved,
	StatusActive, StatusCompleted, StatusTerminated,
}

var statusLabels = map[Status]string{
	StatusDraft:         "草稿",
	StatusPendingReview: "待审核",
	StatusApproved:      "已批准",
	StatusActive:        "执行中",
	StatusCompleted:     "已完成",
	StatusTerminated:    "已终止",
}

func (s Status) Label() string { return statusLabels[s] }

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// IsActive reports whether the contract is in force.
func (s Status) IsActive() bool { return s == StatusActive }

// IsTerminal reports whether the contract has ended. It is informational
// only and does not block further status changes.
func (s Status) IsTerminal() bool { return s == StatusCompleted || s == StatusTerminated }

// Type classifies a contract.
type Type string

const (
	TypePurchase  Type = "PURCHASE"
	TypeSales     Type = "SALES"
	TypeFramework Type = "FRAMEWORK"
	TypeService   Type = "SERVICE"
)

var typeLabels = map[Type]string{
	TypePurchase:  "采购合同",
	TypeSales:     "销售合同",
	TypeFramework: "框架协议",
	TypeService:   "服务合同",
}

func (t Type) Label() string { return typeLabels[t] }

func (t Type) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}
