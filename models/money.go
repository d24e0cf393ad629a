package models

import "github.com/shopspring/decimal"

// Money columns are numeric(12,2): two decimal places, magnitude below 10^10.
const moneyPlaces = 2

var moneyLimit = decimal.New(1, 10)

// AmountProblem describes why d cannot be stored in a money column, or
// returns "" when it fits.
func AmountProblem(field string, d decimal.Decimal) string {
	switch {
	case d.IsNegative():
		return field + " must not be negative"
	case !d.Round(moneyPlaces).Equal(d):
		return field + " must have at most 2 decimal places"
	case d.GreaterThanOrEqual(moneyLimit):
		return field + " must be less than 10000000000"
	}
	return ""
}
