package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/coursedesk/internal/clock"
	"github.com/Domenick1991/coursedesk/internal/domain"
	"github.com/Domenick1991/coursedesk/internal/kafka"
	"github.com/Domenick1991/coursedesk/internal/service/gate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type BookingUseCase interface {
	Submit(ctx context.Context, input SubmitInput) (*domain.BookingRequest, error)
	ListMine(ctx context.Context) ([]domain.BookingRequest, error)
	Bookings() []domain.BookingRequest
	Slots() domain.TimeSlotCatalog
}

type Backend interface {
	SubmitBooking(ctx context.Context, sub domain.BookingSubmission) (*domain.BookingRequest, error)
	ListBookings(ctx context.Context, token string) ([]domain.BookingRequest, error)
}

type Session interface {
	Current() domain.Snapshot
	Token() string
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type SubmitInput struct {
	PreferredDate string `json:"preferred_date"`
	PreferredTime string `json:"preferred_time"`
	Notes         string `json:"notes"`
}

type BookingService struct {
	backend     Backend
	session     Session
	producer    Producer
	topic       string
	slots       domain.TimeSlotCatalog
	horizonDays int
	location    *time.Location
	clock       clock.Clock
	logger      *zap.Logger

	mu         sync.Mutex
	bookings   []domain.BookingRequest
	fetchSeq   uint64
	appliedSeq uint64
}

type BookingServiceOption func(*BookingService)

func WithProducer(p Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = p
		s.topic = topic
	}
}

func WithClock(clk clock.Clock) BookingServiceOption {
	return func(s *BookingService) {
		s.clock = clk
	}
}

// WithLocation sets the zone in which "today" is evaluated.
func WithLocation(loc *time.Location) BookingServiceOption {
	return func(s *BookingService) {
		if loc != nil {
			s.location = loc
		}
	}
}

func NewBookingService(
	backend Backend,
	session Session,
	slots domain.TimeSlotCatalog,
	horizonDays int,
	logger *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	service := &BookingService{
		backend:     backend,
		session:     session,
		slots:       append(domain.TimeSlotCatalog(nil), slots...),
		horizonDays: horizonDays,
		location:    time.UTC,
		clock:       clock.NewSystem(),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) Slots() domain.TimeSlotCatalog {
	return append(domain.TimeSlotCatalog(nil), s.slots...)
}

// Submit validates the requested slot locally, then forwards it verbatim.
// The accepted request is appended to the caller's booking list.
func (s *BookingService) Submit(ctx context.Context, input SubmitInput) (*domain.BookingRequest, error) {
	snap := s.session.Current()
	if err := domain.DecisionError(gate.Authorize(domain.ActionBookSlot, snap, "")); err != nil {
		return nil, err
	}
	if err := s.validate(input); err != nil {
		return nil, err
	}

	sub := domain.BookingSubmission{
		UserEmail:     snap.Identity.Email,
		PreferredDate: input.PreferredDate,
		PreferredTime: input.PreferredTime,
		Notes:         input.Notes,
	}
	created, err := s.backend.SubmitBooking(ctx, sub)
	if err != nil {
		s.logger.Info("booking submit failed", zap.String("kind", string(domain.KindOf(err))), zap.Error(err))
		return nil, err
	}

	b := s.complete(*created, sub)

	s.mu.Lock()
	s.bookings = append(s.bookings, b)
	s.mu.Unlock()

	s.logger.Info("booking submitted",
		zap.String("booking_id", b.ID),
		zap.String("date", b.PreferredDate),
		zap.String("time", b.PreferredTime),
	)
	s.publish(ctx, b)
	return &b, nil
}

// ListMine fetches the caller's bookings. When fetches overlap, the most
// recently issued one wins.
func (s *BookingService) ListMine(ctx context.Context) ([]domain.BookingRequest, error) {
	if err := domain.DecisionError(gate.Authorize(domain.ActionBookSlot, s.session.Current(), "")); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.mu.Unlock()

	bookings, err := s.backend.ListBookings(ctx, s.session.Token())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if seq > s.appliedSeq {
		s.appliedSeq = seq
		s.bookings = append([]domain.BookingRequest(nil), bookings...)
	}
	s.mu.Unlock()
	return bookings, nil
}

// Bookings returns the list as last fetched plus any submissions since.
func (s *BookingService) Bookings() []domain.BookingRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.BookingRequest(nil), s.bookings...)
}

func (s *BookingService) validate(input SubmitInput) error {
	date, err := time.Parse(dateLayout, input.PreferredDate)
	if err != nil {
		return domain.NewValidationError("submit booking", "preferred date must be in YYYY-MM-DD format")
	}
	now := s.clock.Now().In(s.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(date.Sub(today).Hours() / 24)
	if days < 1 {
		return domain.NewValidationError("submit booking", "preferred date must be after today")
	}
	if days > s.horizonDays {
		return domain.NewValidationError("submit booking",
			fmt.Sprintf("preferred date must be within %d days", s.horizonDays))
	}
	if !s.slots.Contains(input.PreferredTime) {
		return domain.NewValidationError("submit booking", "preferred time is not an available slot")
	}
	return nil
}

// complete fills what an acknowledgement-only response leaves out.
func (s *BookingService) complete(b domain.BookingRequest, sub domain.BookingSubmission) domain.BookingRequest {
	if b.UserEmail == "" {
		b.UserEmail = sub.UserEmail
	}
	if b.PreferredDate == "" {
		b.PreferredDate = sub.PreferredDate
	}
	if b.PreferredTime == "" {
		b.PreferredTime = sub.PreferredTime
	}
	if b.Notes == "" {
		b.Notes = sub.Notes
	}
	if b.Status == "" {
		b.Status = domain.BookingStatusPending
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.clock.Now()
	}
	return b
}

func (s *BookingService) publish(ctx context.Context, b domain.BookingRequest) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := kafka.Event{
		ID:         uuid.NewString(),
		Type:       kafka.EventBookingSubmitted,
		Email:      b.UserEmail,
		BookingID:  b.ID,
		Date:       b.PreferredDate,
		Time:       b.PreferredTime,
		Status:     string(b.Status),
		OccurredAt: s.clock.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.topic, b.UserEmail, event); err != nil {
		s.logger.Warn("failed to publish booking event", zap.String("booking_id", b.ID), zap.Error(err))
	}
}

var _ BookingUseCase = (*BookingService)(nil)
