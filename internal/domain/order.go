package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const OrderStatusPending = "pending"

type SubmissionLine struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"-"`
	Units       int             `json:"units"`
	Cases       int             `json:"cases"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// OrderSubmission is an immutable snapshot of a cart taken at checkout time.
type OrderSubmission struct {
	IdempotencyKey string
	ActorID        string
	ActorRole      Role
	CustomerID     string
	Channel        ChannelType
	Lines          []SubmissionLine
	TotalAmount    decimal.Decimal
	CapturedAt     time.Time
}

// OrderReceipt is what the backend returns for an accepted order.
// CustomerID and Channel are those of the submitted snapshot, not read back from the backend.
type OrderReceipt struct {
	OrderNumber string      `json:"order_number"`
	Status      string      `json:"status"`
	CustomerID  string      `json:"-"`
	Channel     ChannelType `json:"-"`
}
