package pricing

import (
	"math"
	"testing"

	"github.com/fjod/orderdesk/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v float64) *float64 { return &v }

func TestResolve(t *testing.T) {
	milk := domain.Product{ID: 1, LogisticsPrice: price(10.5), DealerPrice: price(12.25)}

	tests := []struct {
		name    string
		product domain.Product
		channel domain.ChannelType
		want    string
		wantErr error
	}{
		{name: "logistics", product: milk, channel: domain.ChannelLogistics, want: "10.5"},
		{name: "dealer", product: milk, channel: domain.ChannelDealer, want: "12.25"},
		{name: "zero price is valid", product: domain.Product{DealerPrice: price(0)}, channel: domain.ChannelDealer, want: "0"},
		{name: "unknown channel", product: milk, channel: "retail", wantErr: ErrUnknownChannel},
		{name: "empty channel", product: milk, channel: "", wantErr: ErrUnknownChannel},
		{name: "missing logistics price", product: domain.Product{DealerPrice: price(3)}, channel: domain.ChannelLogistics, wantErr: ErrPriceUnavailable},
		{name: "missing dealer price", product: domain.Product{LogisticsPrice: price(3)}, channel: domain.ChannelDealer, wantErr: ErrPriceUnavailable},
		{name: "negative", product: domain.Product{DealerPrice: price(-1)}, channel: domain.ChannelDealer, wantErr: ErrPriceUnavailable},
		{name: "NaN", product: domain.Product{DealerPrice: price(math.NaN())}, channel: domain.ChannelDealer, wantErr: ErrPriceUnavailable},
		{name: "Inf", product: domain.Product{LogisticsPrice: price(math.Inf(1))}, channel: domain.ChannelLogistics, wantErr: ErrPriceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.product, tt.channel)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestResolve_ChannelsDiffer(t *testing.T) {
	p := domain.Product{LogisticsPrice: price(7), DealerPrice: price(9)}

	logistics, err := Resolve(p, domain.ChannelLogistics)
	require.NoError(t, err)
	dealer, err := Resolve(p, domain.ChannelDealer)
	require.NoError(t, err)

	assert.False(t, logistics.Equal(dealer))
}

func TestResolve_NoFallbackToOtherChannel(t *testing.T) {
	p := domain.Product{DealerPrice: price(9)}

	_, err := Resolve(p, domain.ChannelLogistics)
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}
