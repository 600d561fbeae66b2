package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
)

// CreateAdjustmentRequest creates a manual salary adjustment draft.
type CreateAdjustmentRequest struct {
	EmployeeID    string          `json:"employeeID" binding:"required,uuid"`
	NewSalary     decimal.Decimal `json:"newSalary" binding:"required,dgt0"`
	Reason        string          `json:"reason" binding:"required"`
	Justification string          `json:"justification"`
	IsCorrection  bool            `json:"isCorrection"`
	EffectiveDate time.Time       `json:"effectiveDate" binding:"required" time_format:"2006-01-02"`
}

// SetAdjustmentStatusRequest advances the adjustment state machine.
type SetAdjustmentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING_REVIEW APPROVED IMPLEMENTED REJECTED"`
}

// ListAdjustmentsParams filters and paginates adjustment listings.
type ListAdjustmentsParams struct {
	ListParams
	DateRange
	EmployeeID *string `form:"employeeID" binding:"omitempty,uuid"`
	Status     *string `form:"status" binding:"omitempty,oneof=DRAFT PENDING_REVIEW APPROVED IMPLEMENTED REJECTED"`
}

// AdjustmentResponse is the API shape of a salary adjustment.
type AdjustmentResponse struct {
	AdjustmentID  string          `json:"adjustmentID"`
	EmployeeID    string          `json:"employeeID"`
	GradeID       *string         `json:"gradeID,omitempty"`
	StepID        *string         `json:"stepID,omitempty"`
	OldSalary     decimal.Decimal `json:"oldSalary"`
	NewSalary     decimal.Decimal `json:"newSalary"`
	Reason        string          `json:"reason"`
	Justification string          `json:"justification"`
	Status        string          `json:"status"`
	EffectiveDate time.Time       `json:"effectiveDate"`
	InitiatedBy   string          `json:"initiatedBy"`
	ReviewedBy    *string         `json:"reviewedBy,omitempty"`
	ApprovedBy    *string         `json:"approvedBy,omitempty"`
	ImplementedBy *string         `json:"implementedBy,omitempty"`
}

// ListAdjustmentsResponse wraps a page of adjustments.
type ListAdjustmentsResponse struct {
	Adjustments []AdjustmentResponse `json:"adjustments"`
	NextToken   *string              `json:"nextToken,omitempty"`
}

// ToAdjustmentResponse converts a domain adjustment to its API shape.
func ToAdjustmentResponse(a *domain.SalaryAdjustment) AdjustmentResponse {
	return AdjustmentResponse{
		AdjustmentID:  a.AdjustmentID,
		EmployeeID:    a.EmployeeID,
		GradeID:       a.GradeID,
		StepID:        a.StepID,
		OldSalary:     a.OldSalary,
		NewSalary:     a.NewSalary,
		Reason:        a.Reason,
		Justification: a.Justification,
		Status:        string(a.Status),
		EffectiveDate: a.EffectiveDate,
		InitiatedBy:   a.InitiatedBy,
		ReviewedBy:    a.ReviewedBy,
		ApprovedBy:    a.ApprovedBy,
		ImplementedBy: a.ImplementedBy,
	}
}

// ToAdjustmentResponses converts a slice of domain adjustments.
func ToAdjustmentResponses(adjustments []domain.SalaryAdjustment) []AdjustmentResponse {
	out := make([]AdjustmentResponse, len(adjustments))
	for i := range adjustments {
		out[i] = ToAdjustmentResponse(&adjustments[i])
	}
	return out
}
