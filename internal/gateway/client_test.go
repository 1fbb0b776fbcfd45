package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/orderdesk/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 2*time.Second, zap.NewNop())
}

func submission() *domain.OrderSubmission {
	return &domain.OrderSubmission{
		IdempotencyKey: "key-1",
		ActorID:        "agent-7",
		CustomerID:     "cust-3",
		Channel:        domain.ChannelLogistics,
		Lines: []domain.SubmissionLine{
			{ProductID: 1, Units: 5, Cases: 0, UnitPrice: decimal.NewFromInt(10), TotalPrice: decimal.NewFromInt(50)},
			{ProductID: 2, Units: 12, Cases: 2, UnitPrice: decimal.RequireFromString("2.5"), TotalPrice: decimal.NewFromInt(30)},
		},
	}
}

func TestRouteFor(t *testing.T) {
	assert.Equal(t, RouteSelfService, RouteFor(domain.RoleCustomer))
	assert.Equal(t, RouteSalesAgent, RouteFor(domain.RoleSalesAgent))
	assert.Equal(t, RouteWarehouse, RouteFor(domain.RoleWarehouse))
}

func TestSubmitOrder_Success(t *testing.T) {
	var got submitRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/salesrep/order", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"order_number":"ORD-1001","status":"pending"}`))
	})

	receipt, err := client.SubmitOrder(context.Background(), "tok", RouteSalesAgent, submission())
	require.NoError(t, err)
	assert.Equal(t, "ORD-1001", receipt.OrderNumber)
	assert.Equal(t, domain.OrderStatusPending, receipt.Status)

	assert.Equal(t, "cust-3", got.CustomerID)
	assert.Equal(t, domain.ChannelLogistics, got.ChannelType)
	require.Len(t, got.Products, 2)
	assert.Equal(t, submitLine{ProductID: 1, Units: 5, Cases: 0, UnitPrice: 10, TotalPrice: 50}, got.Products[0])
	assert.Equal(t, submitLine{ProductID: 2, Units: 12, Cases: 2, UnitPrice: 2.5, TotalPrice: 30}, got.Products[1])
}

func TestSubmitOrder_DefaultsStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"order_number":"ORD-1"}`))
	})

	receipt, err := client.SubmitOrder(context.Background(), "", RouteSelfService, submission())
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, receipt.Status)
}

func TestSubmitOrder_MissingOrderNumber(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"pending"}`))
	})

	_, err := client.SubmitOrder(context.Background(), "", RouteSelfService, submission())
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestSubmitOrder_ClientErrorDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Yetersiz stok"}`))
	})

	_, err := client.SubmitOrder(context.Background(), "", RouteSelfService, submission())

	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusBadRequest, gwErr.StatusCode)
	assert.Equal(t, "Yetersiz stok", UserMessage(err))
}

func TestSubmitOrder_ValidationDetailList(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","items",0],"msg":"field required","type":"missing"},{"msg":"invalid channel"}]}`))
	})

	_, err := client.SubmitOrder(context.Background(), "", RouteSelfService, submission())

	require.Error(t, err)
	assert.Equal(t, "field required; invalid channel", UserMessage(err))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "bad", UserMessage(&Error{StatusCode: 422, Detail: "bad"}))
	assert.Equal(t, DefaultFailureMessage, UserMessage(&Error{StatusCode: 400}))
	assert.Equal(t, DefaultFailureMessage, UserMessage(&Error{StatusCode: 500, Detail: "stack trace"}))
	assert.Equal(t, DefaultFailureMessage, UserMessage(errors.New("dial tcp: refused")))
}

func TestParseDetail(t *testing.T) {
	assert.Equal(t, "a", parseDetail([]byte(`{"detail":"a","error":"b"}`)))
	assert.Equal(t, "b", parseDetail([]byte(`{"error":"b","message":"c"}`)))
	assert.Equal(t, "c", parseDetail([]byte(`{"message":"c"}`)))
	assert.Equal(t, "", parseDetail([]byte(`{"detail":[{"loc":["body"]}]}`)))
	assert.Equal(t, "quantity must be positive; customer_id is required",
		parseDetail([]byte(`{"detail":[{"loc":["body","quantity"],"msg":"quantity must be positive"},{"msg":"customer_id is required"}]}`)))
	assert.Equal(t, "x", parseDetail([]byte(`{"detail":[{"loc":["body"]},"raw",{"msg":"x"}]}`)))
	assert.Equal(t, "b", parseDetail([]byte(`{"detail":[],"error":"b"}`)))
	assert.Equal(t, "", parseDetail([]byte(`not json`)))
}

func TestListProducts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":1,"name":"Ayran","units_per_case":12,"logistics_price":4.5,"stock_quantity":10,"active":true}]`))
	})

	products, err := client.ListProducts(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Ayran", products[0].Name)
	require.NotNil(t, products[0].LogisticsPrice)
	assert.Equal(t, 4.5, *products[0].LogisticsPrice)
	assert.Nil(t, products[0].DealerPrice)
}

func TestGetCustomer_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/customers/c-9", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetCustomer(context.Background(), "tok", "c-9")
	assert.True(t, IsNotFound(err))
}

func TestBreaker_OpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 5; i++ {
		_, err := client.ListProducts(context.Background(), "")
		var gwErr *Error
		require.ErrorAs(t, err, &gwErr)
	}

	_, err := client.ListProducts(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(5), calls.Load())
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	})

	for i := 0; i < 8; i++ {
		_, err := client.ListProducts(context.Background(), "")
		assert.NotErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, int32(8), calls.Load())
}
