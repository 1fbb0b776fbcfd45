package domain

import "github.com/shopspring/decimal"

type CartState string

const (
	CartEmpty    CartState = "EMPTY"
	CartNonEmpty CartState = "NON_EMPTY"
)

// CartLine is one product in the live cart. UnitPrice is locked in when the line is created.
type CartLine struct {
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	UnitsPerCase int             `json:"units_per_case"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cases returns the number of whole cases in the line; the remainder stays in units.
func (l CartLine) Cases() int {
	perCase := l.UnitsPerCase
	if perCase <= 0 {
		perCase = 1
	}
	return l.Quantity / perCase
}
