package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/fjod/orderdesk/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownChannel   = errors.New("unknown channel type")
	ErrPriceUnavailable = errors.New("price unavailable for channel")
)

// Resolve selects the unit price of a product for the given channel.
// It never falls back to the other channel's price.
func Resolve(product domain.Product, channel domain.ChannelType) (decimal.Decimal, error) {
	var price *float64
	switch channel {
	case domain.ChannelLogistics:
		price = product.LogisticsPrice
	case domain.ChannelDealer:
		price = product.DealerPrice
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
	}

	if price == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: product %d has no %s price", ErrPriceUnavailable, product.ID, channel)
	}
	v := *price
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: product %d has invalid %s price %v", ErrPriceUnavailable, product.ID, channel, v)
	}

	return decimal.NewFromFloat(v), nil
}
