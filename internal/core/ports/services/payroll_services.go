package services

import (
	"context"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
	"github.com/hospicore/hr_payroll_app/internal/dto"
)

// PayrollRunSvcFacade is the payroll run engine surface.
type PayrollRunSvcFacade interface {
	CreateRun(ctx context.Context, req dto.CreateRunRequest, actorID string) (*domain.PayrollRun, error)
	GetRunByID(ctx context.Context, runID string) (*domain.PayrollRun, error)
	ListRuns(ctx context.Context, params dto.ListRunsParams) (*dto.ListRunsResponse, error)

	// ProcessRun computes and persists every payslip for the run
	// atomically, returning the completed run and the per-employee skip
	// list.
	ProcessRun(ctx context.Context, runID string, actorID string, actorRole string) (*domain.RunResult, error)

	ApproveRun(ctx context.Context, runID string, actorID string, actorRole string) (*domain.PayrollRun, error)
	LockRun(ctx context.Context, runID string, actorID string, actorRole string) (*domain.PayrollRun, error)

	GetPayslipByID(ctx context.Context, payslipID string) (*domain.Payslip, error)
	ListPayslipsByRun(ctx context.Context, runID string, params dto.ListParams) (*dto.ListPayslipsResponse, error)
	VoidPayslip(ctx context.Context, payslipID string, actorID string, actorRole string) error
}

// BranchConfigSvcFacade is the rate/config provider surface.
type BranchConfigSvcFacade interface {
	// GetBranchConfig never fails on a missing row; it returns the
	// documented defaults instead.
	GetBranchConfig(ctx context.Context, branchID string) (domain.BranchConfig, error)

	// GetTaxTable resolves a versioned withholding table, falling back to
	// the compiled-in default for the default version.
	GetTaxTable(ctx context.Context, version string) (domain.TaxTable, error)
}

// AuditSvcFacade exposes the read side of the audit trail and implements the
// AuditSink port for writers.
type AuditSvcFacade interface {
	AuditSink
	ListEntries(ctx context.Context, params dto.ListAuditParams) (*dto.ListAuditResponse, error)
}
