package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
)

// CreateMappingRequest proposes a new grade assignment for an employee. It
// stays Pending Review until approved.
type CreateMappingRequest struct {
	EmployeeID    string          `json:"employeeID" binding:"required,uuid"`
	GradeID       string          `json:"gradeID" binding:"required,uuid"`
	StepID        string          `json:"stepID" binding:"required,uuid"`
	CurrentSalary decimal.Decimal `json:"currentSalary" binding:"required,dgt0"`
	EffectiveDate time.Time       `json:"effectiveDate" binding:"required" time_format:"2006-01-02"`
}

// ListMappingsParams filters and paginates mapping listings.
type ListMappingsParams struct {
	ListParams
	EmployeeID  *string `form:"employeeID" binding:"omitempty,uuid"`
	GradeID     *string `form:"gradeID" binding:"omitempty,uuid"`
	CurrentOnly bool    `form:"currentOnly"`
}

// MappingResponse is the API shape of an employee grade mapping.
type MappingResponse struct {
	MappingID     string          `json:"mappingID"`
	EmployeeID    string          `json:"employeeID"`
	GradeID       string          `json:"gradeID"`
	StepID        string          `json:"stepID"`
	CurrentSalary decimal.Decimal `json:"currentSalary"`
	BandMin       decimal.Decimal `json:"bandMin"`
	BandMax       decimal.Decimal `json:"bandMax"`
	Status        string          `json:"status"`
	EffectiveDate time.Time       `json:"effectiveDate"`
	EndDate       *time.Time      `json:"endDate,omitempty"`
	ApprovedBy    *string         `json:"approvedBy,omitempty"`
}

// ListMappingsResponse wraps a page of mappings.
type ListMappingsResponse struct {
	Mappings  []MappingResponse `json:"mappings"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToMappingResponse converts a domain mapping to its API shape.
func ToMappingResponse(m *domain.EmployeeGradeMapping) MappingResponse {
	return MappingResponse{
		MappingID:     m.MappingID,
		EmployeeID:    m.EmployeeID,
		GradeID:       m.GradeID,
		StepID:        m.StepID,
		CurrentSalary: m.CurrentSalary,
		BandMin:       m.BandMin,
		BandMax:       m.BandMax,
		Status:        string(m.Status),
		EffectiveDate: m.EffectiveDate,
		EndDate:       m.EndDate,
		ApprovedBy:    m.ApprovedBy,
	}
}

// ToMappingResponses converts a slice of domain mappings.
func ToMappingResponses(mappings []domain.EmployeeGradeMapping) []MappingResponse {
	out := make([]MappingResponse, len(mappings))
	for i := range mappings {
		out[i] = ToMappingResponse(&mappings[i])
	}
	return out
}
