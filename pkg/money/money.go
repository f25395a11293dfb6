// Package money is the monetary boundary layer. The simulation hot path
// (indicators, rule evaluation, position math) runs entirely on float64,
// because NaN is a first-class "unavailable" sentinel throughout that layer
// and shopspring/decimal has no NaN representation. money exists at the
// edges instead: commission computation against an instrument's quoted
// precision, and human-readable monetary formatting (FormatAmount; no other
// package in this module calls it) — both places where decimal's exactness
// earns its keep and NaN never appears.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CommissionType mirrors Strategy.trading_costs.commission_type.
type CommissionType int

const (
	FixedPerLot CommissionType = iota
	Percentage
)

// TradingCosts holds the decimal-precision cost model for a strategy.
type TradingCosts struct {
	SpreadPips      float64
	CommissionType  CommissionType
	CommissionValue decimal.Decimal
	SlippagePips    float64
	SlippageRandom  bool
}

// Commission computes the commission owed for one fill of notional
// (lots * lotSize * price), using decimal arithmetic so repeated
// accumulation across thousands of trades never drifts from float rounding.
func (c TradingCosts) Commission(lots, lotSize, price float64) decimal.Decimal {
	switch c.CommissionType {
	case FixedPerLot:
		return c.CommissionValue.Mul(decimal.NewFromFloat(lots))
	case Percentage:
		notional := decimal.NewFromFloat(lots).Mul(decimal.NewFromFloat(lotSize)).Mul(decimal.NewFromFloat(price))
		return notional.Mul(c.CommissionValue).Div(decimal.NewFromInt(100))
	default:
		return decimal.Zero
	}
}

// FormatAmount renders a float P&L/equity value as a currency string with
// the conventional precision for common quote currencies, following the
// teacher's FormatMoney switch.
func FormatAmount(value float64, currency string) string {
	d := decimal.NewFromFloat(value)
	switch strings.ToUpper(currency) {
	case "USD", "USDT", "USDC":
		return "$" + d.StringFixed(2)
	case "GBP":
		return "£" + d.StringFixed(2)
	case "EUR":
		return "€" + d.StringFixed(2)
	case "BTC":
		return d.StringFixed(8) + " BTC"
	case "ETH":
		return d.StringFixed(6) + " ETH"
	default:
		return fmt.Sprintf("%s %s", d.String(), currency)
	}
}

// RoundToTick rounds a price down to the nearest instrument tick size.
func RoundToTick(price, tickSize float64) float64 {
	if tickSize == 0 {
		return price
	}
	p := decimal.NewFromFloat(price)
	t := decimal.NewFromFloat(tickSize)
	f, _ := p.Div(t).Floor().Mul(t).Float64()
	return f
}
