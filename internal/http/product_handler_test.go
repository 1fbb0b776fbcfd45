package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/fjod/orderdesk/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProducts_Success(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/products", customerToken(t), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ProductsResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Products, 4)
	assert.Equal(t, int64(1), resp.Products[0].ID)
	assert.Nil(t, resp.Products[1].DealerPrice, "missing price stays missing")
}

func TestGetProducts_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"breaker open", gateway.ErrUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
		{"backend 500", &gateway.Error{StatusCode: 500, Detail: "boom"}, http.StatusBadGateway, "backend_error"},
		{"unexpected", errors.New("weird"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.catalog.err = tt.err

			rec := env.do(t, http.MethodGet, "/api/v1/products", customerToken(t), nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}
