package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/coursedesk/internal/clock"
	"github.com/Domenick1991/coursedesk/internal/domain"
	"github.com/Domenick1991/coursedesk/internal/kafka"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentBackend interface {
	CreateOrder(ctx context.Context, token string, req domain.CreateOrderRequest) (*domain.ExternalOrder, error)
	CaptureOrder(ctx context.Context, token, orderID string) (*domain.CaptureResult, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Checkout is the presentation view of one purchase attempt.
type Checkout struct {
	IntentID  string               `json:"intent_id"`
	PackageID string               `json:"package_id"`
	Amount    string               `json:"amount"`
	Currency  string               `json:"currency"`
	State     domain.CheckoutState `json:"state"`
	OrderID   string               `json:"order_id,omitempty"`
	Detail    string               `json:"detail,omitempty"`
	Capture   map[string]any       `json:"capture,omitempty"`
}

// Coordinator drives a single PurchaseIntent through create, approval and
// capture. Capture is attempted at most once.
type Coordinator struct {
	intent   domain.PurchaseIntent
	backend  PaymentBackend
	producer Producer
	topic    string
	clock    clock.Clock
	logger   *zap.Logger

	mu               sync.Mutex
	state            domain.CheckoutState
	order            *domain.ExternalOrder
	capture          *domain.CaptureResult
	detail           string
	captureAttempted bool
	finishedAt       time.Time
}

type CoordinatorOption func(*Coordinator)

// WithProducer publishes checkout events to topic.
func WithProducer(p Producer, topic string) CoordinatorOption {
	return func(c *Coordinator) {
		c.producer = p
		c.topic = topic
	}
}

func WithClock(clk clock.Clock) CoordinatorOption {
	return func(c *Coordinator) {
		c.clock = clk
	}
}

func WithLogger(l *zap.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewCoordinator(intent domain.PurchaseIntent, backend PaymentBackend, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		intent:  intent,
		backend: backend,
		clock:   clock.NewSystem(),
		logger:  zap.NewNop(),
		state:   domain.CheckoutIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("intent_id", intent.ID), zap.String("package_id", intent.PackageID))
	return c
}

func (c *Coordinator) State() domain.CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) Snapshot() Checkout {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() Checkout {
	out := Checkout{
		IntentID:  c.intent.ID,
		PackageID: c.intent.PackageID,
		Amount:    c.intent.Amount.Decimal(),
		Currency:  c.intent.Currency,
		State:     c.state,
		Detail:    c.detail,
	}
	if c.order != nil {
		out.OrderID = c.order.OrderID
	}
	if c.capture != nil {
		out.Capture = c.capture.Raw
	}
	return out
}

// Begin creates the external order. On a transport failure the coordinator
// returns to Idle so the caller may begin again; a backend rejection is
// terminal.
func (c *Coordinator) Begin(ctx context.Context, token string) (Checkout, error) {
	c.mu.Lock()
	if !canTransition(c.state, domain.CheckoutCreating) {
		defer c.mu.Unlock()
		return c.snapshotLocked(), domain.NewSequencingError("begin checkout",
			fmt.Sprintf("checkout is %s", c.state))
	}
	c.state = domain.CheckoutCreating
	c.mu.Unlock()

	order, err := c.backend.CreateOrder(ctx, token, domain.CreateOrderRequest{
		PackageID:  c.intent.PackageID,
		BuyerEmail: c.intent.BuyerEmail,
		Amount:     c.intent.Amount,
	})

	c.mu.Lock()
	if c.state == domain.CheckoutAbandoned {
		defer c.mu.Unlock()
		c.logger.Info("discarding order result for abandoned checkout")
		return c.snapshotLocked(), nil
	}

	if err != nil {
		if domain.IsKind(err, domain.KindNetworkFailure) {
			c.state = domain.CheckoutIdle
			snap := c.snapshotLocked()
			c.mu.Unlock()
			c.logger.Warn("create order failed, checkout can be retried", zap.Error(err))
			return snap, err
		}
		c.failLocked(domain.DetailOf(err))
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.logger.Info("create order rejected", zap.Error(err))
		c.publish(ctx, kafka.EventCheckoutFailed, snap)
		return snap, err
	}

	c.order = order
	c.state = domain.CheckoutAwaitingApproval
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("order created, awaiting buyer approval", zap.String("order_id", order.OrderID))
	c.publish(ctx, kafka.EventCheckoutOrderCreated, snap)
	return snap, nil
}

// Approve captures orderID after the buyer approved it in the payment UI.
// Any second call, and any call outside AwaitingApproval, is rejected with a
// sequencing error without contacting the backend.
func (c *Coordinator) Approve(ctx context.Context, token, orderID string) (Checkout, error) {
	c.mu.Lock()
	if c.captureAttempted || !canTransition(c.state, domain.CheckoutCapturing) {
		defer c.mu.Unlock()
		return c.snapshotLocked(), domain.NewSequencingError("approve checkout",
			fmt.Sprintf("checkout is %s, capture not allowed", c.state))
	}
	if c.order == nil || c.order.OrderID != orderID {
		defer c.mu.Unlock()
		return c.snapshotLocked(), domain.NewSequencingError("approve checkout",
			fmt.Sprintf("order %s does not belong to this checkout", orderID))
	}
	c.state = domain.CheckoutCapturing
	c.captureAttempted = true
	c.order.Status = domain.OrderStatusApproved
	c.mu.Unlock()

	res, err := c.backend.CaptureOrder(ctx, token, orderID)

	c.mu.Lock()
	if c.state == domain.CheckoutAbandoned {
		defer c.mu.Unlock()
		c.logger.Info("discarding capture result for abandoned checkout", zap.String("order_id", orderID))
		return c.snapshotLocked(), nil
	}

	captured, detail := classifyCapture(res, err)
	if captured {
		c.state = domain.CheckoutCaptured
		c.order.Status = domain.OrderStatusCaptured
		c.capture = res
		c.finishedAt = c.clock.Now()
		snap := c.snapshotLocked()
		c.mu.Unlock()
		if err != nil {
			c.logger.Info("order already captured server-side", zap.String("order_id", orderID))
		} else {
			c.logger.Info("order captured", zap.String("order_id", orderID))
		}
		c.publish(ctx, kafka.EventCheckoutCaptured, snap)
		return snap, nil
	}

	c.order.Status = domain.OrderStatusFailed
	c.capture = res
	c.failLocked(detail)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("capture failed", zap.String("order_id", orderID), zap.String("detail", detail))
	c.publish(ctx, kafka.EventCheckoutFailed, snap)
	if err == nil {
		err = domain.NewBackendRejection("capture order", 0, detail)
	}
	return snap, err
}

// Abandon stops the checkout. An in-flight backend call is not cancelled; its
// result is discarded when it arrives.
func (c *Coordinator) Abandon(ctx context.Context) (Checkout, error) {
	c.mu.Lock()
	if !canTransition(c.state, domain.CheckoutAbandoned) {
		defer c.mu.Unlock()
		return c.snapshotLocked(), domain.NewSequencingError("abandon checkout",
			fmt.Sprintf("checkout is already %s", c.state))
	}
	c.state = domain.CheckoutAbandoned
	c.finishedAt = c.clock.Now()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("checkout abandoned")
	c.publish(ctx, kafka.EventCheckoutAbandoned, snap)
	return snap, nil
}

// FinishedAt is when the checkout reached a terminal state, or zero.
func (c *Coordinator) FinishedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finishedAt
}

func (c *Coordinator) failLocked(detail string) {
	c.state = domain.CheckoutFailed
	c.detail = detail
	c.finishedAt = c.clock.Now()
}

func (c *Coordinator) publish(ctx context.Context, eventType string, snap Checkout) {
	if c.producer == nil || c.topic == "" {
		return
	}
	event := kafka.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Email:      c.intent.BuyerEmail,
		IntentID:   c.intent.ID,
		PackageID:  c.intent.PackageID,
		OrderID:    snap.OrderID,
		Amount:     int64(c.intent.Amount),
		Currency:   c.intent.Currency,
		Status:     string(snap.State),
		Detail:     snap.Detail,
		OccurredAt: c.clock.Now().UTC(),
	}
	if err := c.producer.Publish(ctx, c.topic, c.intent.ID, event); err != nil {
		c.logger.Warn("failed to publish checkout event", zap.String("type", eventType), zap.Error(err))
	}
}

var failedCaptureStatuses = map[string]bool{
	"DECLINED": true,
	"FAILED":   true,
	"VOIDED":   true,
	"DENIED":   true,
}

// classifyCapture decides whether a capture response proves payment. A
// rejection saying the order was already captured counts as captured.
func classifyCapture(res *domain.CaptureResult, err error) (bool, string) {
	if err != nil {
		if alreadyCaptured(err) {
			return true, ""
		}
		return false, domain.DetailOf(err)
	}
	if res == nil {
		return true, ""
	}
	status := strings.ToUpper(strings.TrimSpace(res.Status))
	if failedCaptureStatuses[status] {
		return false, fmt.Sprintf("payment %s", strings.ToLower(status))
	}
	return true, ""
}

func alreadyCaptured(err error) bool {
	if !domain.IsKind(err, domain.KindBackendRejection) {
		return false
	}
	detail := strings.ToLower(domain.DetailOf(err))
	return strings.Contains(detail, "order_already_captured") || strings.Contains(detail, "already captured")
}
