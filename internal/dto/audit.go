package dto

import (
	"time"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
)

// ListAuditParams filters and paginates audit trail listings.
type ListAuditParams struct {
	ListParams
	RunID     *string `form:"runID" binding:"omitempty,uuid"`
	PayslipID *string `form:"payslipID" binding:"omitempty,uuid"`
	ActorID   *string `form:"actorID" binding:"omitempty,uuid"`
}

// AuditEntryResponse is the API shape of an audit entry.
type AuditEntryResponse struct {
	EntryID   string         `json:"entryID"`
	RunID     *string        `json:"runID,omitempty"`
	PayslipID *string        `json:"payslipID,omitempty"`
	Action    string         `json:"action"`
	ActorID   string         `json:"actorID"`
	ActorRole string         `json:"actorRole"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ListAuditResponse wraps a page of audit entries.
type ListAuditResponse struct {
	Entries   []AuditEntryResponse `json:"entries"`
	NextToken *string              `json:"nextToken,omitempty"`
}

// ToAuditEntryResponses converts domain audit entries to API shapes.
func ToAuditEntryResponses(entries []domain.AuditEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = AuditEntryResponse{
			EntryID:   e.EntryID,
			RunID:     e.RunID,
			PayslipID: e.PayslipID,
			Action:    e.Action,
			ActorID:   e.ActorID,
			ActorRole: e.ActorRole,
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		}
	}
	return out
}
