package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/Domenick1991/coursedesk/internal/clock"
	"github.com/Domenick1991/coursedesk/internal/domain"
	"github.com/Domenick1991/coursedesk/internal/service/gate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Terminal checkouts stay addressable for this long so a late approval still
// gets a sequencing error instead of not found.
const terminalRetention = time.Hour

// CheckoutUseCase addresses a checkout by its intent id or, once the external
// order exists, by its order id. Approve takes the order id only.
type CheckoutUseCase interface {
	Begin(ctx context.Context, packageID string) (Checkout, error)
	Retry(ctx context.Context, id string) (Checkout, error)
	Approve(ctx context.Context, orderID string) (Checkout, error)
	Abandon(ctx context.Context, id string) (Checkout, error)
	Get(ctx context.Context, id string) (Checkout, error)
}

type Catalog interface {
	Get(ctx context.Context, id string) (*domain.CoursePackage, error)
}

type Session interface {
	Current() domain.Snapshot
	Token() string
	Refresh(ctx context.Context) error
}

type CheckoutService struct {
	catalog  Catalog
	session  Session
	backend  PaymentBackend
	producer Producer
	topic    string
	currency string
	clock    clock.Clock
	logger   *zap.Logger

	mu        sync.Mutex
	checkouts map[string]*Coordinator
}

type CheckoutServiceOption func(*CheckoutService)

func WithEvents(p Producer, topic string) CheckoutServiceOption {
	return func(s *CheckoutService) {
		s.producer = p
		s.topic = topic
	}
}

func WithServiceClock(clk clock.Clock) CheckoutServiceOption {
	return func(s *CheckoutService) {
		s.clock = clk
	}
}

// WithDefaultCurrency is used for packages whose catalog entry has none.
func WithDefaultCurrency(currency string) CheckoutServiceOption {
	return func(s *CheckoutService) {
		s.currency = currency
	}
}

func NewCheckoutService(catalog Catalog, session Session, backend PaymentBackend, logger *zap.Logger, opts ...CheckoutServiceOption) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CheckoutService{
		catalog:  catalog,
		session:  session,
		backend:  backend,
		currency: "EUR",
		clock:    clock.NewSystem(),
		logger:   logger,
		checkouts: make(map[string]*Coordinator),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin gates the purchase, builds the PurchaseIntent from the catalog price
// and opens the external order. The checkout is addressable by its intent id
// before the order exists, so it can be abandoned while Creating or retried
// after a transport failure.
func (s *CheckoutService) Begin(ctx context.Context, packageID string) (Checkout, error) {
	snap := s.session.Current()
	if err := domain.DecisionError(gate.Authorize(domain.ActionPurchase, snap, packageID)); err != nil {
		return Checkout{}, err
	}

	pkg, err := s.catalog.Get(ctx, packageID)
	if err != nil {
		return Checkout{}, err
	}

	intent := domain.PurchaseIntent{
		ID:         uuid.NewString(),
		PackageID:  pkg.ID,
		Amount:     pkg.Price,
		Currency:   pkg.Currency,
		BuyerEmail: snap.Identity.Email,
		CreatedAt:  s.clock.Now(),
	}
	if intent.Currency == "" {
		intent.Currency = s.currency
	}

	opts := []CoordinatorOption{WithClock(s.clock), WithLogger(s.logger)}
	if s.producer != nil {
		opts = append(opts, WithProducer(s.producer, s.topic))
	}
	coord := NewCoordinator(intent, s.backend, opts...)

	s.mu.Lock()
	s.pruneLocked()
	s.checkouts[intent.ID] = coord
	s.mu.Unlock()

	return s.begin(ctx, coord)
}

// Retry reopens the external order for a checkout whose previous attempt
// failed in transport and left it Idle.
func (s *CheckoutService) Retry(ctx context.Context, id string) (Checkout, error) {
	coord, err := s.lookup(id)
	if err != nil {
		return Checkout{}, err
	}
	snap := s.session.Current()
	if err := domain.DecisionError(gate.Authorize(domain.ActionPurchase, snap, coord.intent.PackageID)); err != nil {
		return coord.Snapshot(), err
	}
	return s.begin(ctx, coord)
}

func (s *CheckoutService) begin(ctx context.Context, coord *Coordinator) (Checkout, error) {
	out, err := coord.Begin(ctx, s.session.Token())
	if err != nil {
		return out, err
	}
	if out.OrderID != "" {
		s.mu.Lock()
		s.checkouts[out.OrderID] = coord
		s.mu.Unlock()
	}
	return out, nil
}

// Approve captures the order and, once captured, refreshes the identity in
// place so the new entitlement is visible.
func (s *CheckoutService) Approve(ctx context.Context, orderID string) (Checkout, error) {
	coord, err := s.lookup(orderID)
	if err != nil {
		return Checkout{}, err
	}

	out, err := coord.Approve(ctx, s.session.Token(), orderID)
	if err != nil {
		return out, err
	}
	if out.State == domain.CheckoutCaptured {
		if err := s.session.Refresh(ctx); err != nil {
			s.logger.Warn("identity refresh after purchase failed", zap.String("order_id", orderID), zap.Error(err))
		}
	}
	return out, nil
}

func (s *CheckoutService) Abandon(ctx context.Context, id string) (Checkout, error) {
	coord, err := s.lookup(id)
	if err != nil {
		return Checkout{}, err
	}
	return coord.Abandon(ctx)
}

func (s *CheckoutService) Get(_ context.Context, id string) (Checkout, error) {
	coord, err := s.lookup(id)
	if err != nil {
		return Checkout{}, err
	}
	return coord.Snapshot(), nil
}

func (s *CheckoutService) lookup(id string) (*Coordinator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	coord, ok := s.checkouts[id]
	if !ok {
		return nil, domain.ErrCheckoutNotFound
	}
	return coord, nil
}

// pruneLocked drops terminal checkouts past retention, and Idle ones whose
// intent is that old and was never retried.
func (s *CheckoutService) pruneLocked() {
	now := s.clock.Now()
	for id, coord := range s.checkouts {
		finished := coord.FinishedAt()
		switch {
		case !finished.IsZero() && now.Sub(finished) > terminalRetention:
			delete(s.checkouts, id)
		case coord.State() == domain.CheckoutIdle && now.Sub(coord.intent.CreatedAt) > terminalRetention:
			delete(s.checkouts, id)
		}
	}
}

var _ CheckoutUseCase = (*CheckoutService)(nil)
