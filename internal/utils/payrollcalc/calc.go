package payrollcalc

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
)

// Payroll arithmetic shared by the run engine. Every function is pure; all
// rounding is half-away-from-zero to 2 decimal places, applied at each
// monetary sub-total rather than only at the end.

const (
	// WorkingDaysPerMonth is the assumed divisor for monthly salaries.
	WorkingDaysPerMonth = 22
	// HoursPerDay is the assumed regular working day length.
	HoursPerDay = 8
)

var (
	monthlyDivisor = decimal.NewFromInt(WorkingDaysPerMonth)
	hoursPerDay    = decimal.NewFromInt(HoursPerDay)
	nightDiffRate  = decimal.NewFromFloat(0.10)
)

// Round2 rounds a monetary amount to 2 decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// CountWeekdays returns the number of Monday-Friday days in [start, end]
// inclusive. Returns 0 when end precedes start.
func CountWeekdays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

// BasicPay computes the pro-rated base pay for the period.
//
// Monthly: salary x min(weekdays, 22)/22 - a full month pays exactly the
// monthly salary regardless of calendar weekday count.
// Daily: daily rate x weekdays.
// Hourly: rate x weekdays x 8 assumed regular hours.
func BasicPay(freq domain.PayFrequency, baseSalary decimal.Decimal, weekdays int) decimal.Decimal {
	days := decimal.NewFromInt(int64(weekdays))
	switch freq {
	case domain.Monthly:
		if weekdays >= WorkingDaysPerMonth {
			return Round2(baseSalary)
		}
		return Round2(baseSalary.Mul(days).Div(monthlyDivisor))
	case domain.Daily:
		return Round2(baseSalary.Mul(days))
	case domain.Hourly:
		return Round2(baseSalary.Mul(days).Mul(hoursPerDay))
	}
	return decimal.Zero
}

// HourlyRate converts a base salary at any pay frequency to its hourly
// equivalent, used for overtime and night differential.
func HourlyRate(freq domain.PayFrequency, baseSalary decimal.Decimal) decimal.Decimal {
	switch freq {
	case domain.Monthly:
		return baseSalary.Div(monthlyDivisor).Div(hoursPerDay)
	case domain.Daily:
		return baseSalary.Div(hoursPerDay)
	case domain.Hourly:
		return baseSalary
	}
	return decimal.Zero
}

// OvertimePay = hourly-equivalent rate x multiplier x overtime hours.
func OvertimePay(hourlyRate, multiplier, hours decimal.Decimal) decimal.Decimal {
	return Round2(hourlyRate.Mul(multiplier).Mul(hours))
}

// NightDiffPay = hourly-equivalent rate x 10% x night-shift hours.
func NightDiffPay(hourlyRate, hours decimal.Decimal) decimal.Decimal {
	return Round2(hourlyRate.Mul(nightDiffRate).Mul(hours))
}

// StatutoryContribution = gross x rate, rounded to the cent.
func StatutoryContribution(gross, rate decimal.Decimal) decimal.Decimal {
	return Round2(gross.Mul(rate))
}
