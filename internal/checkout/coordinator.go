package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/orderdesk/internal/cart"
	"github.com/fjod/orderdesk/internal/domain"
	"github.com/fjod/orderdesk/internal/events"
	"github.com/fjod/orderdesk/internal/gateway"
	"github.com/fjod/orderdesk/internal/logger"
	"github.com/fjod/orderdesk/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

type OrderGateway interface {
	SubmitOrder(ctx context.Context, token string, route gateway.Route, sub *domain.OrderSubmission) (*domain.OrderReceipt, error)
}

// Coordinator turns the session's cart into at most one in-flight order submission.
type Coordinator struct {
	actor     domain.Actor
	cart      *cart.Store
	gateway   OrderGateway
	publisher events.Publisher
	timeout   time.Duration
	log       *zap.Logger

	mu          sync.Mutex
	state       State
	lastOutcome State
	beneficiary *domain.Customer
}

func NewCoordinator(actor domain.Actor, store *cart.Store, gw OrderGateway, publisher events.Publisher, timeout time.Duration, log *zap.Logger) *Coordinator {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Coordinator{
		actor:     actor,
		cart:      store,
		gateway:   gw,
		publisher: publisher,
		timeout:   timeout,
		log:       log,
		state:     StateIdle,
	}
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastOutcome is Succeeded or Failed for the most recent dispatched submission, empty before the first.
func (c *Coordinator) LastOutcome() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastOutcome
}

func (c *Coordinator) Beneficiary() (domain.Customer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.beneficiary == nil {
		return domain.Customer{}, false
	}
	return *c.beneficiary, true
}

// SelectCustomer sets who an agent is ordering for. The cart is re-channelled to the
// customer's pricing channel, which fails while it holds lines of another channel.
// The beneficiary is fixed while a submission is in flight.
func (c *Coordinator) SelectCustomer(customer domain.Customer) error {
	if !c.actor.OrdersForOthers() {
		return ErrNotAgent
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return ErrConcurrentSubmission
	}
	if err := c.cart.SetChannel(customer.ChannelType); err != nil {
		return err
	}
	c.beneficiary = &customer
	return nil
}

// Submit validates the cart and sends it to the backend exactly once.
// On success the cart is cleared; on any failure it is left as is and the coordinator is Idle again.
func (c *Coordinator) Submit(ctx context.Context, token string) (*domain.OrderReceipt, error) {
	log := logger.FromContext(ctx, c.log).With(zap.String("actor_id", c.actor.ID))

	c.mu.Lock()
	if state := c.state; state != StateIdle {
		c.mu.Unlock()
		log.Warn("rejected concurrent submission", zap.Stringer("state", state))
		return nil, ErrConcurrentSubmission
	}
	if c.cart.IsEmpty() {
		c.mu.Unlock()
		return nil, &ValidationError{Reason: ErrEmptyCart}
	}

	c.state = StateValidating
	sub, err := c.snapshot()
	if err != nil {
		c.state = StateIdle
		c.mu.Unlock()
		log.Info("checkout validation failed", zap.Error(err))
		return nil, err
	}
	c.state = StateSubmitting
	c.mu.Unlock()

	log = log.With(zap.String("idempotency_key", sub.IdempotencyKey), zap.String("customer_id", sub.CustomerID))
	log.Info("submitting order", zap.Int("lines", len(sub.Lines)), zap.Stringer("total", sub.TotalAmount))

	// a dispatched order ends only by its own timeout, never by the caller going away
	submitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	receipt, err := c.gateway.SubmitOrder(submitCtx, token, gateway.RouteFor(c.actor.Role), sub)
	cancel()

	if err != nil {
		c.finish(StateFailed)
		log.Warn("order submission failed", zap.Error(err))
		return nil, newSubmissionError(err)
	}

	receipt.CustomerID = sub.CustomerID
	receipt.Channel = sub.Channel

	c.cart.Clear()
	c.finish(StateSucceeded)
	log.Info("order submitted", zap.String("order_number", receipt.OrderNumber))

	c.publish(context.WithoutCancel(ctx), sub, receipt, log)
	return receipt, nil
}

func (c *Coordinator) finish(outcome State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastOutcome = outcome
	c.state = StateIdle
}

// snapshot must be called with c.mu held.
func (c *Coordinator) snapshot() (*domain.OrderSubmission, error) {
	customerID, channel := c.actor.ID, c.actor.Channel
	if c.actor.OrdersForOthers() {
		if c.beneficiary == nil || c.beneficiary.ID == "" {
			return nil, &ValidationError{Reason: ErrMissingBeneficiary}
		}
		customerID, channel = c.beneficiary.ID, c.beneficiary.ChannelType
	}
	if customerID == "" {
		return nil, &ValidationError{Reason: ErrMissingBeneficiary}
	}
	if !channel.Valid() {
		return nil, &ValidationError{Reason: pricing.ErrUnknownChannel}
	}

	cartLines := c.cart.Lines()
	if len(cartLines) == 0 {
		return nil, &ValidationError{Reason: ErrEmptyCart}
	}

	lines := make([]domain.SubmissionLine, 0, len(cartLines))
	total := decimal.Zero
	for _, l := range cartLines {
		if l.Quantity < 1 || l.UnitPrice.IsNegative() {
			return nil, &ValidationError{Reason: ErrInvalidLine}
		}
		subtotal := l.Subtotal()
		lines = append(lines, domain.SubmissionLine{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Units:       l.Quantity,
			Cases:       l.Cases(),
			UnitPrice:   l.UnitPrice,
			TotalPrice:  subtotal,
		})
		total = total.Add(subtotal)
	}

	return &domain.OrderSubmission{
		IdempotencyKey: uuid.NewString(),
		ActorID:        c.actor.ID,
		ActorRole:      c.actor.Role,
		CustomerID:     customerID,
		Channel:        channel,
		Lines:          lines,
		TotalAmount:    total,
		CapturedAt:     time.Now(),
	}, nil
}

func (c *Coordinator) publish(ctx context.Context, sub *domain.OrderSubmission, receipt *domain.OrderReceipt, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := c.publisher.PublishOrderSubmitted(ctx, events.OrderSubmitted{
		OrderNumber: receipt.OrderNumber,
		Status:      receipt.Status,
		ActorID:     sub.ActorID,
		CustomerID:  sub.CustomerID,
		Channel:     sub.Channel,
		Lines:       sub.Lines,
		TotalAmount: sub.TotalAmount,
		SubmittedAt: time.Now(),
	})
	if err != nil {
		log.Error("failed to publish order submitted event", zap.Error(err))
	}
}
