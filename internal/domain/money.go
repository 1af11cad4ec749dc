package domain

import "github.com/shopspring/decimal"

// MoneyScale is the canonical number of fractional digits for prices,
// quantities and P&L at persistence boundaries. Eight digits matches the
// smallest unit traded on most crypto venues (one satoshi).
const MoneyScale = 8

// RoundMoney rounds a decimal to the canonical scale using banker's
// rounding (round-half-to-even). Intermediate arithmetic keeps full
// precision; only values crossing a persistence boundary are rounded.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(MoneyScale)
}

// IsPositive reports whether the value is strictly greater than zero.
// Prices and quantities must satisfy this before a trade is accepted.
func IsPositive(d decimal.Decimal) bool {
	return d.Sign() > 0
}
