package core

import "github.com/shopspring/decimal"

// monthlyFactors maps each payment cadence to its monthly-equivalent
// multiplier. Variable income is treated as already monthly.
var monthlyFactors = map[Frequency]decimal.Decimal{
	Weekly:    decimal.NewFromInt(52).Div(decimal.NewFromInt(12)),
	Biweekly:  decimal.NewFromInt(26).Div(decimal.NewFromInt(12)),
	Monthly:   decimal.NewFromInt(1),
	Quarterly: decimal.NewFromInt(1).Div(decimal.NewFromInt(3)),
	Annually:  decimal.NewFromInt(1).Div(decimal.NewFromInt(12)),
	Variable:  decimal.NewFromInt(1),
}

func (f Frequency) Valid() bool {
	_, ok := monthlyFactors[f]
	return ok
}

// MonthlyEquivalent converts a periodic amount to its monthly figure using
// the fixed factor table, rounded half-up to whole cents. An unrecognized
// frequency yields zero.
func MonthlyEquivalent(amount Money, f Frequency) Money {
	factor, ok := monthlyFactors[f]
	if !ok {
		return Money{}
	}
	cents := decimal.NewFromInt(amount.Cents).Mul(factor).Round(0).IntPart()
	return Money{Cents: cents}
}
