package domain

// Product is read-only reference data fetched from the backend.
// Prices stay nil when the backend omits them so callers can tell "missing" from zero.
type Product struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	SKU            string   `json:"sku"`
	Category       string   `json:"category"`
	Unit           string   `json:"unit"`
	UnitsPerCase   int      `json:"units_per_case"`
	LogisticsPrice *float64 `json:"logistics_price"`
	DealerPrice    *float64 `json:"dealer_price"`
	StockQuantity  int      `json:"stock_quantity"`
	Active         bool     `json:"active"`
}

// Orderable reports whether the product can be put into a cart at all.
func (p Product) Orderable() bool {
	return p.Active && p.StockQuantity > 0
}
