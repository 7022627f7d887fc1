// Package fx provides stateless currency conversion and exchange-rate
// lookup. Conversion never fetches rates itself; the rate is always an
// explicit input supplied or defaulted by the caller.
package fx

import (
	"github.com/shopspring/decimal"

	"contas/internal/core"
)

// Convert multiplies a foreign-currency amount by an exchange rate and
// rounds half-up to whole cents of the target currency.
func Convert(amount core.Money, rate decimal.Decimal) core.Money {
	converted := decimal.New(amount.Cents, 0).Mul(rate)
	return core.Money{Cents: converted.Round(0).IntPart()}
}
