package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
)

// CreateRevisionRequest proposes a grade revision. Supply either all three
// after-band values or a percentage, never both; the service rejects
// contradictory input.
type CreateRevisionRequest struct {
	GradeID       string           `json:"gradeID" binding:"required,uuid"`
	AfterMin      *decimal.Decimal `json:"afterMin"`
	AfterMid      *decimal.Decimal `json:"afterMid"`
	AfterMax      *decimal.Decimal `json:"afterMax"`
	Percentage    *decimal.Decimal `json:"percentage"`
	Reason        string           `json:"reason" binding:"required"`
	EffectiveDate time.Time        `json:"effectiveDate" binding:"required" time_format:"2006-01-02"`
}

// ListRevisionsParams filters and paginates revision listings.
type ListRevisionsParams struct {
	ListParams
	GradeID *string `form:"gradeID" binding:"omitempty,uuid"`
	Status  *string `form:"status" binding:"omitempty,oneof=DRAFT PENDING_REVIEW APPROVED IMPLEMENTED REJECTED"`
}

// RevisionResponse is the API shape of a grade revision.
type RevisionResponse struct {
	RevisionID    string           `json:"revisionID"`
	GradeID       string           `json:"gradeID"`
	BeforeMin     decimal.Decimal  `json:"beforeMin"`
	BeforeMid     decimal.Decimal  `json:"beforeMid"`
	BeforeMax     decimal.Decimal  `json:"beforeMax"`
	AfterMin      *decimal.Decimal `json:"afterMin,omitempty"`
	AfterMid      *decimal.Decimal `json:"afterMid,omitempty"`
	AfterMax      *decimal.Decimal `json:"afterMax,omitempty"`
	Percentage    *decimal.Decimal `json:"percentage,omitempty"`
	Reason        string           `json:"reason"`
	Status        string           `json:"status"`
	EffectiveDate time.Time        `json:"effectiveDate"`
}

// ListRevisionsResponse wraps a page of revisions.
type ListRevisionsResponse struct {
	Revisions []RevisionResponse `json:"revisions"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// ImplementRevisionResponse reports the cascade outcome.
type ImplementRevisionResponse struct {
	RevisionID        string   `json:"revisionID"`
	AdjustmentIDs     []string `json:"adjustmentIDs"`
	AffectedEmployees int      `json:"affectedEmployees"`
}

// ToRevisionResponse converts a domain revision to its API shape.
func ToRevisionResponse(r *domain.GradeRevision) RevisionResponse {
	return RevisionResponse{
		RevisionID:    r.RevisionID,
		GradeID:       r.GradeID,
		BeforeMin:     r.BeforeMin,
		BeforeMid:     r.BeforeMid,
		BeforeMax:     r.BeforeMax,
		AfterMin:      r.AfterMin,
		AfterMid:      r.AfterMid,
		AfterMax:      r.AfterMax,
		Percentage:    r.Percentage,
		Reason:        r.Reason,
		Status:        string(r.Status),
		EffectiveDate: r.EffectiveDate,
	}
}

// ToRevisionResponses converts a slice of domain revisions.
func ToRevisionResponses(revisions []domain.GradeRevision) []RevisionResponse {
	out := make([]RevisionResponse, len(revisions))
	for i := range revisions {
		out[i] = ToRevisionResponse(&revisions[i])
	}
	return out
}
