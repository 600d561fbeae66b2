package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayAdjustmentType selects how a batch workflow computes each employee's new
// salary.
type PayAdjustmentType string

const (
	AdjustPercentage    PayAdjustmentType = "PERCENTAGE"
	AdjustFixedAmount   PayAdjustmentType = "FIXED_AMOUNT"
	AdjustGradeBased    PayAdjustmentType = "GRADE_BASED"
	AdjustPositionBased PayAdjustmentType = "POSITION_BASED"
)

// PayAdjustmentWorkflowStatus is the batch workflow lifecycle.
type PayAdjustmentWorkflowStatus string

const (
	WorkflowDraft       PayAdjustmentWorkflowStatus = "DRAFT"
	WorkflowApproved    PayAdjustmentWorkflowStatus = "APPROVED"
	WorkflowImplemented PayAdjustmentWorkflowStatus = "IMPLEMENTED"
)

// PayAdjustmentWorkflow defines a bulk adjustment targeted at grades,
// departments and positions. Target sets are OR-combined: an employee
// matching any dimension is included. Impact figures are a cached snapshot,
// recomputed on demand.
type PayAdjustmentWorkflow struct {
	WorkflowID          string                      `json:"workflowID"`
	Name                string                      `json:"name"`
	AdjustmentType      PayAdjustmentType           `json:"adjustmentType"`
	AdjustmentValue     decimal.Decimal             `json:"adjustmentValue"`
	TargetGradeIDs      []string                    `json:"targetGradeIDs"`
	TargetDepartmentIDs []string                    `json:"targetDepartmentIDs"`
	TargetPositionIDs   []string                    `json:"targetPositionIDs"`
	Status              PayAdjustmentWorkflowStatus `json:"status"`
	TotalImpact         decimal.Decimal             `json:"totalImpact"`
	AffectedCount       int                         `json:"affectedCount"`
	ImpactComputedAt    *time.Time                  `json:"impactComputedAt,omitempty"`
	ApprovedBy          *string                     `json:"approvedBy,omitempty"`
	ImplementedBy       *string                     `json:"implementedBy,omitempty"`
	AuditFields
}

// WorkflowDetail is one materialized per-employee row of a batch workflow.
// Uniqueness per (workflow, employee) is enforced by the store with
// replace-on-conflict semantics.
type WorkflowDetail struct {
	DetailID   string          `json:"detailID"`
	WorkflowID string          `json:"workflowID"`
	EmployeeID string          `json:"employeeID"`
	OldSalary  decimal.Decimal `json:"oldSalary"`
	NewSalary  decimal.Decimal `json:"newSalary"`
	Impact     decimal.Decimal `json:"impact"`
	AuditFields
}
