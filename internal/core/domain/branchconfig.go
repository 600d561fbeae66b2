package domain

import "github.com/shopspring/decimal"

// BranchConfig holds the statutory rates and tax table version for one
// branch. Rates are fractions (0.045 = 4.5%).
type BranchConfig struct {
	BranchID            string          `json:"branchID"`
	OvertimeMultiplier  decimal.Decimal `json:"overtimeMultiplier"`
	SocialInsuranceRate decimal.Decimal `json:"socialInsuranceRate"`
	HealthInsuranceRate decimal.Decimal `json:"healthInsuranceRate"`
	HousingFundRate     decimal.Decimal `json:"housingFundRate"`
	TaxTableVersion     string          `json:"taxTableVersion"`
}

// DefaultTaxTableVersion is used when a branch has no config row.
const DefaultTaxTableVersion = "2023A"

// DefaultBranchConfig returns the documented fallback rates applied when no
// branch-specific row exists. Missing config is a degrade-gracefully case,
// not an error.
func DefaultBranchConfig(branchID string) BranchConfig {
	return BranchConfig{
		BranchID:            branchID,
		OvertimeMultiplier:  decimal.NewFromFloat(1.25),
		SocialInsuranceRate: decimal.NewFromFloat(0.045),
		HealthInsuranceRate: decimal.NewFromFloat(0.02),
		HousingFundRate:     decimal.NewFromFloat(0.01),
		TaxTableVersion:     DefaultTaxTableVersion,
	}
}
