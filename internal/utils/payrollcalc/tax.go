package payrollcalc

import (
	"github.com/shopspring/decimal"

	"github.com/hospicore/hr_payroll_app/internal/core/domain"
)

// WithholdingTax computes progressive tax on taxable income using the given
// versioned table. The result is monotonically non-decreasing in taxable
// income and continuous at bracket boundaries; it is never negative.
// The bracket index is returned for the computation trace.
func WithholdingTax(table domain.TaxTable, taxable decimal.Decimal) (decimal.Decimal, int) {
	if taxable.LessThanOrEqual(decimal.Zero) || len(table.Brackets) == 0 {
		return decimal.Zero, 0
	}
	bracket, idx := table.BracketFor(taxable)
	tax := bracket.BaseTax.Add(bracket.Rate.Mul(taxable.Sub(bracket.LowerBound)))
	if tax.IsNegative() {
		return decimal.Zero, idx
	}
	return Round2(tax), idx
}
