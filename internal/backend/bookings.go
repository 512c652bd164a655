package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Domenick1991/coursedesk/internal/domain"
)

type bookingWire struct {
	ID            json.RawMessage `json:"id"`
	BookingID     json.RawMessage `json:"booking_id"`
	UserEmail     string          `json:"user_email"`
	PreferredDate string          `json:"preferred_date"`
	PreferredTime string          `json:"preferred_time"`
	Notes         *string         `json:"notes"`
	Status        string          `json:"status"`
	CreatedAt     string          `json:"created_at"`
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func (w bookingWire) toBooking() domain.BookingRequest {
	b := domain.BookingRequest{
		ID:            rawID(w.ID),
		UserEmail:     w.UserEmail,
		PreferredDate: w.PreferredDate,
		PreferredTime: w.PreferredTime,
		Status:        domain.BookingStatus(w.Status),
	}
	if b.ID == "" {
		b.ID = rawID(w.BookingID)
	}
	if w.Notes != nil {
		b.Notes = *w.Notes
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, w.CreatedAt); err == nil {
			b.CreatedAt = t
			break
		}
	}
	return b
}

// SubmitBooking calls POST /api/bookings/request. The endpoint is
// unauthenticated; the submission is sent verbatim. The returned booking may
// be partial when the backend only acknowledges with a booking id.
func (c *Client) SubmitBooking(ctx context.Context, sub domain.BookingSubmission) (*domain.BookingRequest, error) {
	var out bookingWire
	if err := c.do(ctx, "submit booking", http.MethodPost, "/api/bookings/request", "", sub, &out); err != nil {
		return nil, err
	}
	b := out.toBooking()
	return &b, nil
}

// ListBookings calls GET /api/bookings/my.
func (c *Client) ListBookings(ctx context.Context, token string) ([]domain.BookingRequest, error) {
	var out struct {
		Bookings []bookingWire `json:"bookings"`
	}
	if err := c.do(ctx, "list bookings", http.MethodGet, "/api/bookings/my", token, nil, &out); err != nil {
		return nil, err
	}
	bookings := make([]domain.BookingRequest, 0, len(out.Bookings))
	for _, w := range out.Bookings {
		bookings = append(bookings, w.toBooking())
	}
	return bookings, nil
}
