package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fjod/orderdesk/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Route is the backend endpoint an order is posted to, chosen by who places it.
type Route string

const (
	RouteSelfService Route = "/orders"
	RouteSalesAgent  Route = "/salesrep/order"
	RouteWarehouse   Route = "/salesrep/warehouse-order"
)

func RouteFor(role domain.Role) Route {
	switch role {
	case domain.RoleSalesAgent:
		return RouteSalesAgent
	case domain.RoleWarehouse:
		return RouteWarehouse
	default:
		return RouteSelfService
	}
}

const maxResponseBody = 1 << 20

type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	log        *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "order-backend",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			var gwErr *Error
			if errors.As(err, &gwErr) {
				return !gwErr.serverSide()
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c
}

type submitLine struct {
	ProductID  int64   `json:"product_id"`
	Units      int     `json:"units"`
	Cases      int     `json:"cases"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
}

type submitRequest struct {
	CustomerID  string             `json:"customer_id"`
	ChannelType domain.ChannelType `json:"channel_type"`
	Products    []submitLine       `json:"products"`
}

// SubmitOrder posts the snapshot once. The idempotency key travels as a header so the backend can drop replays.
func (c *Client) SubmitOrder(ctx context.Context, token string, route Route, sub *domain.OrderSubmission) (*domain.OrderReceipt, error) {
	body := submitRequest{
		CustomerID:  sub.CustomerID,
		ChannelType: sub.Channel,
		Products:    make([]submitLine, len(sub.Lines)),
	}
	for i, l := range sub.Lines {
		body.Products[i] = submitLine{
			ProductID:  l.ProductID,
			Units:      l.Units,
			Cases:      l.Cases,
			UnitPrice:  l.UnitPrice.InexactFloat64(),
			TotalPrice: l.TotalPrice.InexactFloat64(),
		}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	headers := http.Header{}
	headers.Set("Idempotency-Key", sub.IdempotencyKey)

	raw, err := c.do(ctx, http.MethodPost, string(route), token, payload, headers)
	if err != nil {
		return nil, err
	}

	var receipt domain.OrderReceipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if receipt.OrderNumber == "" {
		return nil, fmt.Errorf("%w: missing order number", ErrInvalidResponse)
	}
	if receipt.Status == "" {
		receipt.Status = domain.OrderStatusPending
	}
	return &receipt, nil
}

func (c *Client) ListProducts(ctx context.Context, token string) ([]domain.Product, error) {
	raw, err := c.do(ctx, http.MethodGet, "/products", token, nil, nil)
	if err != nil {
		return nil, err
	}
	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return products, nil
}

func (c *Client) GetCustomer(ctx context.Context, token, customerID string) (*domain.Customer, error) {
	raw, err := c.do(ctx, http.MethodGet, "/customers/"+url.PathEscape(customerID), token, nil, nil)
	if err != nil {
		return nil, err
	}
	var customer domain.Customer
	if err := json.Unmarshal(raw, &customer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &customer, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body []byte, headers http.Header) ([]byte, error) {
	raw, err := c.breaker.Execute(func() ([]byte, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		for k, vs := range headers {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &Error{StatusCode: resp.StatusCode, Detail: parseDetail(data)}
		}
		return data, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return raw, err
}
