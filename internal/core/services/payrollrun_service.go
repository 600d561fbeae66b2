package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hospicore/hr_payroll_app/internal/apperrors"
	"github.com/hospicore/hr_payroll_app/internal/core/domain"
	portsrepo "github.com/hospicore/hr_payroll_app/internal/core/ports/repositories"
	portssvc "github.com/hospicore/hr_payroll_app/internal/core/ports/services"
	"github.com/hospicore/hr_payroll_app/internal/dto"
	"github.com/hospicore/hr_payroll_app/internal/middleware"
	"github.com/hospicore/hr_payroll_app/internal/utils/payrollcalc"
)

var (
	ErrPeriodOrder     = errors.New("period end must not precede period start")
	ErrPayDateOrder    = errors.New("pay date must not precede period end")
	ErrPeriodOverlap   = errors.New("a run already covers part of this period for the branch")
	ErrRunNotDraft     = errors.New("only a draft run can be processed")
	ErrRunNotCompleted = errors.New("only a completed run can be approved")
	ErrRunNotApproved  = errors.New("only an approved run can be locked")
)

const (
	skipNoSalary = "no current salary record"
)

// payrollRunService is the run engine. Processing computes every payslip in
// memory first, then persists run totals and payslips in a single atomic
// repository call, so a run is either fully Completed or still Draft.
type payrollRunService struct {
	runRepo        portsrepo.RunRepositoryFacade
	configSvc      portssvc.BranchConfigSvcFacade
	directory      portssvc.EmployeeDirectory
	timesheets     portssvc.TimesheetAggregator
	bonuses        portssvc.BonusSource
	allowances     portssvc.AllowanceSource
	deductions     portssvc.DeductionSource
	auditSink      portssvc.AuditSink
	processTimeout time.Duration
}

// NewPayrollRunService creates a new PayrollRunService.
func NewPayrollRunService(
	runRepo portsrepo.RunRepositoryFacade,
	configSvc portssvc.BranchConfigSvcFacade,
	directory portssvc.EmployeeDirectory,
	timesheets portssvc.TimesheetAggregator,
	bonuses portssvc.BonusSource,
	allowances portssvc.AllowanceSource,
	deductions portssvc.DeductionSource,
	auditSink portssvc.AuditSink,
	processTimeout time.Duration,
) portssvc.PayrollRunSvcFacade {
	return &payrollRunService{
		runRepo:        runRepo,
		configSvc:      configSvc,
		directory:      directory,
		timesheets:     timesheets,
		bonuses:        bonuses,
		allowances:     allowances,
		deductions:     deductions,
		auditSink:      auditSink,
		processTimeout: processTimeout,
	}
}

var _ portssvc.PayrollRunSvcFacade = (*payrollRunService)(nil)

// CreateRun opens a Draft run after rejecting period overlaps for the branch.
func (s *payrollRunService) CreateRun(ctx context.Context, req dto.CreateRunRequest, actorID string) (*domain.PayrollRun, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.PeriodEnd.Before(req.PeriodStart) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrPeriodOrder)
	}
	if req.PayDate.Before(req.PeriodEnd) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, ErrPayDateOrder)
	}

	existing, err := s.runRepo.FindOverlappingRun(ctx, req.BranchID, req.PeriodStart, req.PeriodEnd)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check period overlap: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %v (run %s)", apperrors.ErrConflict, ErrPeriodOverlap, existing.RunID)
	}

	now := time.Now().UTC()
	run := domain.PayrollRun{
		RunID:       uuid.NewString(),
		BranchID:    req.BranchID,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		PayDate:     req.PayDate,
		Status:      domain.RunDraft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.runRepo.SaveRun(ctx, run); err != nil {
		logger.Error("Failed to save run", slog.String("error", err.Error()), slog.String("branch_id", req.BranchID))
		return nil, fmt.Errorf("failed to save run: %w", err)
	}

	logger.Info("Payroll run created",
		slog.String("run_id", run.RunID),
		slog.String("branch_id", req.BranchID),
		slog.Time("period_start", req.PeriodStart),
		slog.Time("period_end", req.PeriodEnd))
	return &run, nil
}

// GetRunByID retrieves a single run.
func (s *payrollRunService) GetRunByID(ctx context.Context, runID string) (*domain.PayrollRun, error) {
	run, err := s.runRepo.FindRunByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to find run %s: %w", runID, err)
	}
	return run, nil
}

// ListRuns returns a filtered page of runs.
func (s *payrollRunService) ListRuns(ctx context.Context, params dto.ListRunsParams) (*dto.ListRunsResponse, error) {
	filter := portsrepo.RunFilter{
		BranchID: params.BranchID,
		From:     params.From,
		To:       params.To,
	}
	if params.Status != nil {
		status := domain.PayrollRunStatus(*params.Status)
		filter.Status = &status
	}

	runs, nextToken, err := s.runRepo.ListRuns(ctx, filter, params.Limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return &dto.ListRunsResponse{
		Runs:      dto.ToRunResponses(runs),
		NextToken: nextToken,
	}, nil
}

// ProcessRun computes every eligible employee's payslip and persists the
// outcome atomically. Employees without a salary record are skipped and
// reported; a failing deduction source degrades to zero; any other
// collaborator failure aborts the whole run, leaving it Draft.
func (s *payrollRunService) ProcessRun(ctx context.Context, runID string, actorID string, actorRole string) (*domain.RunResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	ctx, cancel := context.WithTimeout(ctx, s.processTimeout)
	defer cancel()

	run, err := s.runRepo.FindRunByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to find run %s: %w", runID, err)
	}
	if run.Status != domain.RunDraft {
		return nil, fmt.Errorf("%w: %v (run is %s)", apperrors.ErrInvalidState, ErrRunNotDraft, run.Status)
	}

	cfg, err := s.configSvc.GetBranchConfig(ctx, run.BranchID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve branch config: %w", err)
	}
	taxTable, err := s.configSvc.GetTaxTable(ctx, cfg.TaxTableVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tax table: %w", err)
	}

	employees, err := s.directory.ListActiveByBranch(ctx, run.BranchID, run.PeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees for branch %s: %w", run.BranchID, err)
	}

	payslips := make([]domain.Payslip, 0, len(employees))
	var skipped []domain.SkippedEmployee
	now := time.Now().UTC()

	for i := range employees {
		emp := &employees[i]
		if !emp.HasSalary {
			skipped = append(skipped, domain.SkippedEmployee{EmployeeID: emp.EmployeeID, Reason: skipNoSalary})
			continue
		}

		slip, err := s.computePayslip(ctx, run, cfg, taxTable, emp, actorID, now)
		if err != nil {
			return nil, fmt.Errorf("failed to compute payslip for employee %s: %w", emp.EmployeeID, err)
		}
		payslips = append(payslips, *slip)
	}

	completed := *run
	completed.Status = domain.RunCompleted
	completed.EmployeeCount = len(payslips)
	completed.LastUpdatedAt = now
	completed.LastUpdatedBy = actorID
	for i := range payslips {
		completed.TotalGross = completed.TotalGross.Add(payslips[i].Gross)
		completed.TotalDeductions = completed.TotalDeductions.Add(payslips[i].TotalDeductions())
		completed.TotalNet = completed.TotalNet.Add(payslips[i].Net)
	}

	if err := s.runRepo.CompleteRunAtomic(ctx, completed, payslips); err != nil {
		logger.Error("Failed to complete run", slog.String("error", err.Error()), slog.String("run_id", runID))
		return nil, fmt.Errorf("failed to complete run %s: %w", runID, err)
	}

	s.auditSink.Record(ctx, domain.AuditEntry{
		RunID:     &runID,
		Action:    "run.processed",
		ActorID:   actorID,
		ActorRole: actorRole,
		Details: map[string]any{
			"employeeCount": len(payslips),
			"skippedCount":  len(skipped),
			"totalGross":    completed.TotalGross.String(),
			"totalNet":      completed.TotalNet.String(),
		},
	})

	logger.Info("Payroll run processed",
		slog.String("run_id", runID),
		slog.Int("payslip_count", len(payslips)),
		slog.Int("skipped_count", len(skipped)))

	return &domain.RunResult{Run: completed, Skipped: skipped}, nil
}

// computePayslip builds one employee's payslip for the run's period.
func (s *payrollRunService) computePayslip(
	ctx context.Context,
	run *domain.PayrollRun,
	cfg domain.BranchConfig,
	taxTable domain.TaxTable,
	emp *domain.EmployeePayProfile,
	actorID string,
	now time.Time,
) (*domain.Payslip, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	timesheet, err := s.timesheets.Summarize(ctx, emp.EmployeeID, run.PeriodStart, run.PeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("timesheet summary: %w", err)
	}
	bonuses, err := s.bonuses.SumBonuses(ctx, emp.EmployeeID, run.PeriodStart, run.PeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("bonus summary: %w", err)
	}
	allowances, err := s.allowances.SumAllowances(ctx, emp.EmployeeID, run.PeriodStart, run.PeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("allowance summary: %w", err)
	}

	// A dead deduction source must not block payday. Zero is substituted and
	// the voided amounts are recovered in the next cycle.
	otherDeductions := decimal.Zero
	deductionSummary, err := s.deductions.Summarize(ctx, emp.EmployeeID, run.PeriodStart, run.PeriodEnd)
	if err != nil {
		logger.Warn("Deduction source unavailable, substituting zero",
			slog.String("employee_id", emp.EmployeeID),
			slog.String("error", err.Error()))
	} else {
		otherDeductions = deductionSummary.Total()
	}

	weekdays := payrollcalc.CountWeekdays(run.PeriodStart, run.PeriodEnd)
	basicPay := payrollcalc.BasicPay(emp.PayFrequency, emp.BaseSalary, weekdays)
	hourlyRate := payrollcalc.HourlyRate(emp.PayFrequency, emp.BaseSalary)
	overtimePay := payrollcalc.OvertimePay(hourlyRate, cfg.OvertimeMultiplier, timesheet.OvertimeHours)
	nightDiffPay := payrollcalc.NightDiffPay(hourlyRate, timesheet.NightHours)

	gross := basicPay.Add(overtimePay).Add(nightDiffPay).Add(allowances).Add(bonuses)

	socialInsurance := payrollcalc.StatutoryContribution(gross, cfg.SocialInsuranceRate)
	healthInsurance := payrollcalc.StatutoryContribution(gross, cfg.HealthInsuranceRate)
	housingFund := payrollcalc.StatutoryContribution(gross, cfg.HousingFundRate)

	taxable := gross.Sub(socialInsurance).Sub(healthInsurance).Sub(housingFund)
	tax, bracketIdx := payrollcalc.WithholdingTax(taxTable, taxable)

	slip := domain.Payslip{
		PayslipID:       uuid.NewString(),
		RunID:           run.RunID,
		EmployeeID:      emp.EmployeeID,
		BranchID:        run.BranchID,
		PeriodStart:     run.PeriodStart,
		PeriodEnd:       run.PeriodEnd,
		BasicPay:        basicPay,
		OvertimePay:     overtimePay,
		NightDiffPay:    nightDiffPay,
		Allowances:      allowances,
		Bonuses:         bonuses,
		Gross:           gross,
		SocialInsurance: socialInsurance,
		HealthInsurance: healthInsurance,
		HousingFund:     housingFund,
		WithholdingTax:  tax,
		OtherDeductions: otherDeductions,
		Status:          domain.PayslipActive,
		Trace: domain.ComputationTrace{
			SchemaVersion:      domain.TraceSchemaVersion,
			PayFrequency:       emp.PayFrequency,
			BaseSalary:         emp.BaseSalary,
			WorkingDays:        weekdays,
			HourlyRate:         payrollcalc.Round2(hourlyRate),
			OvertimeHours:      timesheet.OvertimeHours,
			OvertimeMultiplier: cfg.OvertimeMultiplier,
			NightHours:         timesheet.NightHours,
			TaxTableVersion:    taxTable.Version,
			TaxableIncome:      payrollcalc.Round2(taxable),
			TaxBracket:         bracketIdx,
		},
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
	slip.Net = gross.Sub(slip.TotalDeductions())
	return &slip, nil
}

// ApproveRun moves a Completed run to Approved.
func (s *payrollRunService) ApproveRun(ctx context.Context, runID string, actorID string, actorRole string) (*domain.PayrollRun, error) {
	return s.transition(ctx, runID, domain.RunCompleted, domain.RunApproved, ErrRunNotCompleted, actorID, actorRole)
}

// LockRun moves an Approved run to Locked, freezing its payslips for good.
func (s *payrollRunService) LockRun(ctx context.Context, runID string, actorID string, actorRole string) (*domain.PayrollRun, error) {
	return s.transition(ctx, runID, domain.RunApproved, domain.RunLocked, ErrRunNotApproved, actorID, actorRole)
}

func (s *payrollRunService) transition(
	ctx context.Context,
	runID string,
	from, to domain.PayrollRunStatus,
	guardErr error,
	actorID string,
	actorRole string,
) (*domain.PayrollRun, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	run, err := s.runRepo.FindRunByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to find run %s: %w", runID, err)
	}
	if run.Status != from {
		return nil, fmt.Errorf("%w: %v (run is %s)", apperrors.ErrInvalidState, guardErr, run.Status)
	}

	if err := s.runRepo.UpdateRunStatus(ctx, runID, from, to, actorID, time.Now().UTC()); err != nil {
		logger.Error("Failed to update run status",
			slog.String("error", err.Error()),
			slog.String("run_id", runID),
			slog.String("to", string(to)))
		return nil, fmt.Errorf("failed to move run %s to %s: %w", runID, to, err)
	}

	s.auditSink.Record(ctx, domain.AuditEntry{
		RunID:     &runID,
		Action:    "run.status_changed",
		ActorID:   actorID,
		ActorRole: actorRole,
		Details:   map[string]any{"from": string(from), "to": string(to)},
	})

	logger.Info("Run status changed",
		slog.String("run_id", runID),
		slog.String("from", string(from)),
		slog.String("to", string(to)))

	updated, err := s.runRepo.FindRunByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload run %s: %w", runID, err)
	}
	return updated, nil
}

// GetPayslipByID retrieves a single payslip with its trace.
func (s *payrollRunService) GetPayslipByID(ctx context.Context, payslipID string) (*domain.Payslip, error) {
	slip, err := s.runRepo.FindPayslipByID(ctx, payslipID)
	if err != nil {
		return nil, fmt.Errorf("failed to find payslip %s: %w", payslipID, err)
	}
	return slip, nil
}

// ListPayslipsByRun returns a page of the run's payslips.
func (s *payrollRunService) ListPayslipsByRun(ctx context.Context, runID string, params dto.ListParams) (*dto.ListPayslipsResponse, error) {
	payslips, nextToken, err := s.runRepo.ListPayslipsByRun(ctx, runID, params.Limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips for run %s: %w", runID, err)
	}
	return &dto.ListPayslipsResponse{
		Payslips:  dto.ToPayslipResponses(payslips),
		NextToken: nextToken,
	}, nil
}

// VoidPayslip soft-deletes a payslip of a not-yet-locked run.
func (s *payrollRunService) VoidPayslip(ctx context.Context, payslipID string, actorID string, actorRole string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.runRepo.VoidPayslip(ctx, payslipID, actorID, time.Now().UTC()); err != nil {
		logger.Error("Failed to void payslip", slog.String("error", err.Error()), slog.String("payslip_id", payslipID))
		return fmt.Errorf("failed to void payslip %s: %w", payslipID, err)
	}

	s.auditSink.Record(ctx, domain.AuditEntry{
		PayslipID: &payslipID,
		Action:    "payslip.voided",
		ActorID:   actorID,
		ActorRole: actorRole,
	})

	logger.Info("Payslip voided", slog.String("payslip_id", payslipID), slog.String("actor_id", actorID))
	return nil
}
