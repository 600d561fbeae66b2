package domain

import "github.com/shopspring/decimal"

// TaxBracket is one band of a progressive withholding table. Tax for income
// in this band = BaseTax + Rate * (income - LowerBound).
type TaxBracket struct {
	LowerBound decimal.Decimal `json:"lowerBound"`
	BaseTax    decimal.Decimal `json:"baseTax"`
	Rate       decimal.Decimal `json:"rate"`
}

// TaxTable is a versioned progressive bracket table. Brackets are ordered by
// ascending LowerBound; the first must start at zero so the table is total.
type TaxTable struct {
	Version  string       `json:"version"`
	Brackets []TaxBracket `json:"brackets"`
}

// BracketFor returns the bracket covering the given taxable income and its
// index. Negative income falls into the first bracket.
func (t TaxTable) BracketFor(taxable decimal.Decimal) (TaxBracket, int) {
	idx := 0
	for i, b := range t.Brackets {
		if taxable.GreaterThanOrEqual(b.LowerBound) {
			idx = i
		}
	}
	return t.Brackets[idx], idx
}

// DefaultTaxTable is the compiled-in monthly withholding table for
// DefaultTaxTableVersion: six bands, continuous at every boundary.
func DefaultTaxTable() TaxTable {
	d := func(s string) decimal.Decimal { v, _ := decimal.NewFromString(s); return v }
	return TaxTable{
		Version: DefaultTaxTableVersion,
		Brackets: []TaxBracket{
			{LowerBound: d("0"), BaseTax: d("0"), Rate: d("0")},
			{LowerBound: d("20833"), BaseTax: d("0"), Rate: d("0.20")},
			{LowerBound: d("33333"), BaseTax: d("2500"), Rate: d("0.25")},
			{LowerBound: d("66667"), BaseTax: d("10833.33"), Rate: d("0.30")},
			{LowerBound: d("166667"), BaseTax: d("40833.33"), Rate: d("0.32")},
			{LowerBound: d("666667"), BaseTax: d("200833.33"), Rate: d("0.35")},
		},
	}
}
