package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// decimalGTZero reports whether a shopspring decimal field is strictly
// positive. Gin's built-in gt=0 only understands numeric kinds, and decimals
// arrive as structs.
func decimalGTZero(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return value.IsPositive()
}

// RegisterCustomValidators attaches payroll-specific rules to gin's binding
// validator. Must run once at startup, before any request is bound.
func RegisterCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("dgt0", decimalGTZero)
	}
}
