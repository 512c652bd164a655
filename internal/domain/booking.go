package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// BookingRequest is a free-lesson slot request. Status is owned by the
// backend; the client only displays what it last fetched.
type BookingRequest struct {
	ID            string        `json:"id"`
	UserEmail     string        `json:"user_email"`
	PreferredDate string        `json:"preferred_date"`
	PreferredTime string        `json:"preferred_time"`
	Notes         string        `json:"notes"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// BookingSubmission is the body forwarded to the backend.
type BookingSubmission struct {
	UserEmail     string `json:"user_email"`
	PreferredDate string `json:"preferred_date"`
	PreferredTime string `json:"preferred_time"`
	Notes         string `json:"notes"`
}

// TimeSlotCatalog is the ordered set of offerable times of day ("HH:MM").
type TimeSlotCatalog []string

func (c TimeSlotCatalog) Contains(slot string) bool {
	for _, s := range c {
		if s == slot {
			return true
		}
	}
	return false
}
