package grading

import "github.com/shopspring/decimal"

// Round2 rounds half away from zero to two decimals.
func Round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

// Outturn is output as a percentage of input, to two decimals. No input
// means no outturn.
func Outturn(outputKgs, inputKgs float64) float64 {
	if inputKgs == 0 {
		return 0
	}
	out := decimal.NewFromFloat(outputKgs)
	in := decimal.NewFromFloat(inputKgs)
	return out.Div(in).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

// Sum adds weights without float drift.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}
