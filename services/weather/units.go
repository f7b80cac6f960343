package weather

import "github.com/shopspring/decimal"

var (
	nine          = decimal.NewFromInt(9)
	five          = decimal.NewFromInt(5)
	fahrenheitOff = decimal.RequireFromString("459.67")
)

// KelvinToFahrenheit converts using (K × 9/5) − 459.67, rounded to two places
func KelvinToFahrenheit(kelvin decimal.Decimal) decimal.Decimal {
	return kelvin.Mul(nine).Div(five).Sub(fahrenheitOff).Round(2)
}
