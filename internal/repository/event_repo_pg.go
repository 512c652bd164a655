package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/coursedesk/internal/kafka"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createEventsTable = `CREATE TABLE IF NOT EXISTS client_events (
	id          TEXT PRIMARY KEY,
	type        TEXT NOT NULL,
	email       TEXT NOT NULL,
	intent_id   TEXT,
	package_id  TEXT,
	order_id    TEXT,
	amount      BIGINT,
	currency    TEXT,
	booking_id  TEXT,
	status      TEXT,
	detail      TEXT,
	occurred_at TIMESTAMPTZ NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EventRepository is the worker's ledger of client events.
type EventRepository interface {
	EnsureSchema(ctx context.Context) error
	// Record stores event and reports whether it was new. Redelivered events
	// are ignored.
	Record(ctx context.Context, event kafka.Event) (bool, error)
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PGEventRepository struct {
	db execer
}

func NewEventRepository(db *pgxpool.Pool) EventRepository {
	return &PGEventRepository{db: db}
}

func (r *PGEventRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createEventsTable); err != nil {
		return fmt.Errorf("create client_events: %w", err)
	}
	return nil
}

func (r *PGEventRepository) Record(ctx context.Context, event kafka.Event) (bool, error) {
	tag, err := r.db.Exec(ctx, `INSERT INTO client_events
		(id, type, email, intent_id, package_id, order_id, amount, currency, booking_id, status, detail, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING`,
		event.ID, event.Type, event.Email, event.IntentID, event.PackageID, event.OrderID,
		event.Amount, event.Currency, event.BookingID, event.Status, event.Detail, event.OccurredAt)
	if err != nil {
		return false, fmt.Errorf("record event %s: %w", event.ID, err)
	}
	return tag.RowsAffected() == 1, nil
}
