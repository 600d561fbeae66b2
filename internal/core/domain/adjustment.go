package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalaryAdjustmentStatus is the lifecycle state of a single-employee salary
// change. Implemented and Rejected are terminal.
type SalaryAdjustmentStatus string

const (
	AdjustmentDraft         SalaryAdjustmentStatus = "DRAFT"
	AdjustmentPendingReview SalaryAdjustmentStatus = "PENDING_REVIEW"
	AdjustmentApproved      SalaryAdjustmentStatus = "APPROVED"
	AdjustmentImplemented   SalaryAdjustmentStatus = "IMPLEMENTED"
	AdjustmentRejected      SalaryAdjustmentStatus = "REJECTED"
)

var adjustmentOrder = map[SalaryAdjustmentStatus]int{
	AdjustmentDraft:         0,
	AdjustmentPendingReview: 1,
	AdjustmentApproved:      2,
	AdjustmentImplemented:   3,
}

// CanTransitionTo validates a proposed adjustment status change. The machine
// is linear with Rejected reachable from any pre-Implemented state.
func (s SalaryAdjustmentStatus) CanTransitionTo(next SalaryAdjustmentStatus) bool {
	if s == AdjustmentImplemented || s == AdjustmentRejected {
		return false
	}
	if next == AdjustmentRejected {
		return true
	}
	cur, ok := adjustmentOrder[s]
	nxt, ok2 := adjustmentOrder[next]
	return ok && ok2 && nxt == cur+1
}

// SalaryAdjustment is a single-employee salary change record. Created
// manually, by a grade revision cascade, or by a batch workflow. Exactly one
// actor is recorded per transition.
type SalaryAdjustment struct {
	AdjustmentID     string                 `json:"adjustmentID"`
	EmployeeID       string                 `json:"employeeID"`
	GradeID          *string                `json:"gradeID,omitempty"`
	StepID           *string                `json:"stepID,omitempty"`
	OldSalary        decimal.Decimal        `json:"oldSalary"`
	NewSalary        decimal.Decimal        `json:"newSalary"`
	Reason           string                 `json:"reason"`
	Justification    string                 `json:"justification"`
	IsCorrection     bool                   `json:"isCorrection"` // allows NewSalary == OldSalary
	Status           SalaryAdjustmentStatus `json:"status"`
	EffectiveDate    time.Time              `json:"effectiveDate"`
	InitiatedBy      string                 `json:"initiatedBy"`
	ReviewedBy       *string                `json:"reviewedBy,omitempty"`
	ApprovedBy       *string                `json:"approvedBy,omitempty"`
	ImplementedBy    *string                `json:"implementedBy,omitempty"`
	SourceRevisionID *string                `json:"sourceRevisionID,omitempty"`
	SourceWorkflowID *string                `json:"sourceWorkflowID,omitempty"`
	AuditFields
}
