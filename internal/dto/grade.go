package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
)

// CreateStepRequest is one step of a new grade.
type CreateStepRequest struct {
	StepNumber int             `json:"stepNumber" binding:"required,min=1"`
	MinRate    decimal.Decimal `json:"minRate" binding:"required"`
	BaseRate   decimal.Decimal `json:"baseRate" binding:"required"`
	MaxRate    decimal.Decimal `json:"maxRate" binding:"required"`
}

// CreateGradeRequest creates a Draft salary grade with its steps.
type CreateGradeRequest struct {
	Code          string              `json:"code" binding:"required"`
	Name          string              `json:"name" binding:"required"`
	DepartmentID  *string             `json:"departmentID" binding:"omitempty,uuid"`
	BranchID      *string             `json:"branchID" binding:"omitempty,uuid"`
	MinRate       decimal.Decimal     `json:"minRate" binding:"required"`
	MidRate       decimal.Decimal     `json:"midRate" binding:"required"`
	MaxRate       decimal.Decimal     `json:"maxRate" binding:"required"`
	EffectiveDate time.Time           `json:"effectiveDate" binding:"required" time_format:"2006-01-02"`
	Steps         []CreateStepRequest `json:"steps" binding:"required,min=1,dive"`
}

// ListGradesParams filters and paginates grade listings.
type ListGradesParams struct {
	ListParams
	BranchID     *string `form:"branchID" binding:"omitempty,uuid"`
	DepartmentID *string `form:"departmentID" binding:"omitempty,uuid"`
	Status       *string `form:"status" binding:"omitempty,oneof=DRAFT ACTIVE SUPERSEDED"`
	Code         *string `form:"code"`
}

// StepResponse is the API shape of a salary step.
type StepResponse struct {
	StepID     string          `json:"stepID"`
	StepNumber int             `json:"stepNumber"`
	MinRate    decimal.Decimal `json:"minRate"`
	BaseRate   decimal.Decimal `json:"baseRate"`
	MaxRate    decimal.Decimal `json:"maxRate"`
}

// GradeResponse is the API shape of a salary grade.
type GradeResponse struct {
	GradeID       string          `json:"gradeID"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	DepartmentID  *string         `json:"departmentID,omitempty"`
	BranchID      *string         `json:"branchID,omitempty"`
	MinRate       decimal.Decimal `json:"minRate"`
	MidRate       decimal.Decimal `json:"midRate"`
	MaxRate       decimal.Decimal `json:"maxRate"`
	EffectiveDate time.Time       `json:"effectiveDate"`
	EndDate       *time.Time      `json:"endDate,omitempty"`
	Status        string          `json:"status"`
	Steps         []StepResponse  `json:"steps,omitempty"`
}

// ListGradesResponse wraps a page of grades.
type ListGradesResponse struct {
	Grades    []GradeResponse `json:"grades"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToGradeResponse converts a domain grade to its API shape.
func ToGradeResponse(g *domain.SalaryGrade) GradeResponse {
	steps := make([]StepResponse, len(g.Steps))
	for i, s := range g.Steps {
		steps[i] = StepResponse{
			StepID:     s.StepID,
			StepNumber: s.StepNumber,
			MinRate:    s.MinRate,
			BaseRate:   s.BaseRate,
			MaxRate:    s.MaxRate,
		}
	}
	return GradeResponse{
		GradeID:       g.GradeID,
		Code:          g.Code,
		Name:          g.Name,
		DepartmentID:  g.DepartmentID,
		BranchID:      g.BranchID,
		MinRate:       g.MinRate,
		MidRate:       g.MidRate,
		MaxRate:       g.MaxRate,
		EffectiveDate: g.EffectiveDate,
		EndDate:       g.EndDate,
		Status:        string(g.Status),
		Steps:         steps,
	}
}

// ToGradeResponses converts a slice of domain grades.
func ToGradeResponses(grades []domain.SalaryGrade) []GradeResponse {
	out := make([]GradeResponse, len(grades))
	for i := range grades {
		out[i] = ToGradeResponse(&grades[i])
	}
	return out
}
