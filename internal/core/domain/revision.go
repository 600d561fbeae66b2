package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GradeRevisionStatus is the lifecycle state of a grade revision proposal.
// Rejected and Implemented are terminal.
type GradeRevisionStatus string

const (
	RevisionDraft         GradeRevisionStatus = "DRAFT"
	RevisionPendingReview GradeRevisionStatus = "PENDING_REVIEW"
	RevisionApproved      GradeRevisionStatus = "APPROVED"
	RevisionImplemented   GradeRevisionStatus = "IMPLEMENTED"
	RevisionRejected      GradeRevisionStatus = "REJECTED"
)

// GradeRevision proposes new band values or a uniform percentage uplift for a
// grade. The two strategies are mutually exclusive: either all three band
// values are supplied, or only Percentage is.
type GradeRevision struct {
	RevisionID    string              `json:"revisionID"`
	GradeID       string              `json:"gradeID"`
	BeforeMin     decimal.Decimal     `json:"beforeMin"`
	BeforeMid     decimal.Decimal     `json:"beforeMid"`
	BeforeMax     decimal.Decimal     `json:"beforeMax"`
	AfterMin      *decimal.Decimal    `json:"afterMin,omitempty"`
	AfterMid      *decimal.Decimal    `json:"afterMid,omitempty"`
	AfterMax      *decimal.Decimal    `json:"afterMax,omitempty"`
	Percentage    *decimal.Decimal    `json:"percentage,omitempty"`
	Reason        string              `json:"reason"`
	Status        GradeRevisionStatus `json:"status"`
	EffectiveDate time.Time           `json:"effectiveDate"`
	ReviewedBy    *string             `json:"reviewedBy,omitempty"`
	ApprovedBy    *string             `json:"approvedBy,omitempty"`
	ImplementedBy *string             `json:"implementedBy,omitempty"`
	RejectedBy    *string             `json:"rejectedBy,omitempty"`
	AuditFields
}

// HasBandValues reports whether the revision supplies explicit after-band values.
func (r GradeRevision) HasBandValues() bool {
	return r.AfterMin != nil && r.AfterMid != nil && r.AfterMax != nil
}

// HasPercentage reports whether the revision supplies a percentage uplift.
func (r GradeRevision) HasPercentage() bool {
	return r.Percentage != nil
}

// revisionOrder defines the one-way progression; Rejected is reachable from
// any non-terminal state.
var revisionOrder = map[GradeRevisionStatus]int{
	RevisionDraft:         0,
	RevisionPendingReview: 1,
	RevisionApproved:      2,
	RevisionImplemented:   3,
}

// CanTransitionTo validates a proposed revision status change.
func (s GradeRevisionStatus) CanTransitionTo(next GradeRevisionStatus) bool {
	if s == RevisionImplemented || s == RevisionRejected {
		return false
	}
	if next == RevisionRejected {
		return true
	}
	cur, ok := revisionOrder[s]
	nxt, ok2 := revisionOrder[next]
	return ok && ok2 && nxt == cur+1
}
