package domain

import "time"

// AuditEntry is one append-only action trail row. Writes are fire-and-forget
// from the caller's perspective; a failed audit write never fails the
// underlying operation.
type AuditEntry struct {
	EntryID   string         `json:"entryID"`
	RunID     *string        `json:"runID,omitempty"`
	PayslipID *string        `json:"payslipID,omitempty"`
	Action    string         `json:"action"`
	ActorID   string         `json:"actorID"`
	ActorRole string         `json:"actorRole"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}
