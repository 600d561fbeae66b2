package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
)

// CreateWorkflowRequest creates a Draft batch adjustment workflow. Target
// sets are OR-combined; at least one dimension must be supplied.
type CreateWorkflowRequest struct {
	Name                string          `json:"name" binding:"required"`
	AdjustmentType      string          `json:"adjustmentType" binding:"required,oneof=PERCENTAGE FIXED_AMOUNT GRADE_BASED POSITION_BASED"`
	AdjustmentValue     decimal.Decimal `json:"adjustmentValue" binding:"required"`
	TargetGradeIDs      []string        `json:"targetGradeIDs" binding:"omitempty,dive,uuid"`
	TargetDepartmentIDs []string        `json:"targetDepartmentIDs" binding:"omitempty,dive,uuid"`
	TargetPositionIDs   []string        `json:"targetPositionIDs" binding:"omitempty,dive,uuid"`
}

// ListWorkflowsParams filters and paginates workflow listings.
type ListWorkflowsParams struct {
	ListParams
	Status *string `form:"status" binding:"omitempty,oneof=DRAFT APPROVED IMPLEMENTED"`
}

// WorkflowResponse is the API shape of a batch workflow.
type WorkflowResponse struct {
	WorkflowID          string          `json:"workflowID"`
	Name                string          `json:"name"`
	AdjustmentType      string          `json:"adjustmentType"`
	AdjustmentValue     decimal.Decimal `json:"adjustmentValue"`
	TargetGradeIDs      []string        `json:"targetGradeIDs"`
	TargetDepartmentIDs []string        `json:"targetDepartmentIDs"`
	TargetPositionIDs   []string        `json:"targetPositionIDs"`
	Status              string          `json:"status"`
	TotalImpact         decimal.Decimal `json:"totalImpact"`
	AffectedCount       int             `json:"affectedCount"`
	ImpactComputedAt    *time.Time      `json:"impactComputedAt,omitempty"`
}

// ListWorkflowsResponse wraps a page of workflows.
type ListWorkflowsResponse struct {
	Workflows []WorkflowResponse `json:"workflows"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// ImpactResponse is the dry-run impact estimate. It is a point-in-time
// snapshot; re-invoke before approval if source data may have changed.
type ImpactResponse struct {
	WorkflowID    string          `json:"workflowID"`
	TotalImpact   decimal.Decimal `json:"totalImpact"`
	AffectedCount int             `json:"affectedCount"`
	ComputedAt    time.Time       `json:"computedAt"`
}

// ImplementWorkflowResponse reports the per-employee cascade outcome.
type ImplementWorkflowResponse struct {
	WorkflowID        string   `json:"workflowID"`
	AdjustmentIDs     []string `json:"adjustmentIDs"`
	AffectedEmployees int      `json:"affectedEmployees"`
}

// ToWorkflowResponse converts a domain workflow to its API shape.
func ToWorkflowResponse(w *domain.PayAdjustmentWorkflow) WorkflowResponse {
	return WorkflowResponse{
		WorkflowID:          w.WorkflowID,
		Name:                w.Name,
		AdjustmentType:      string(w.AdjustmentType),
		AdjustmentValue:     w.AdjustmentValue,
		TargetGradeIDs:      w.TargetGradeIDs,
		TargetDepartmentIDs: w.TargetDepartmentIDs,
		TargetPositionIDs:   w.TargetPositionIDs,
		Status:              string(w.Status),
		TotalImpact:         w.TotalImpact,
		AffectedCount:       w.AffectedCount,
		ImpactComputedAt:    w.ImpactComputedAt,
	}
}

// ToWorkflowResponses converts a slice of domain workflows.
func ToWorkflowResponses(workflows []domain.PayAdjustmentWorkflow) []WorkflowResponse {
	out := make([]WorkflowResponse, len(workflows))
	for i := range workflows {
		out[i] = ToWorkflowResponse(&workflows[i])
	}
	return out
}
