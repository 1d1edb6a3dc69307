// Package sqlite provides the SQLite-backed booking store, including the
// transactional outbox.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/hotelio/bookings/internal/platform/storage/sqlitemigrate"
	"github.com/hotelio/bookings/internal/services/booking/storage"
	"github.com/hotelio/bookings/internal/services/booking/storage/sqlite/migrations"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Store persists bookings and outbox events in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

type execContexter interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func money(value decimal.Decimal) string {
	return value.StringFixed(2)
}

// Open opens a SQLite booking store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func normalizeBooking(booking storage.Booking, now time.Time) (storage.Booking, error) {
	booking.UserID = strings.TrimSpace(booking.UserID)
	booking.HotelID = strings.TrimSpace(booking.HotelID)
	booking.PromoCode = strings.TrimSpace(booking.PromoCode)
	if booking.UserID == "" {
		return storage.Booking{}, fmt.Errorf("user id is required")
	}
	if booking.HotelID == "" {
		return storage.Booking{}, fmt.Errorf("hotel id is required")
	}
	booking.Discount = booking.Discount.Round(2)
	booking.Price = booking.Price.Round(2)
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	if booking.UpdatedAt.IsZero() {
		booking.UpdatedAt = booking.CreatedAt
	}
	booking.CreatedAt = booking.CreatedAt.UTC().Truncate(time.Millisecond)
	booking.UpdatedAt = booking.UpdatedAt.UTC().Truncate(time.Millisecond)
	return booking, nil
}

// CreateBooking inserts one booking and returns it with its assigned id.
func (s *Store) CreateBooking(ctx context.Context, booking storage.Booking) (storage.Booking, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Booking{}, err
	}
	normalized, err := normalizeBooking(booking, s.now())
	if err != nil {
		return storage.Booking{}, err
	}
	id, err := insertBooking(ctx, s.sqlDB, normalized)
	if err != nil {
		return storage.Booking{}, err
	}
	normalized.ID = id
	return normalized, nil
}

// CreateBookingWithOutbox inserts the booking and its outbox event atomically.
func (s *Store) CreateBookingWithOutbox(ctx context.Context, booking storage.Booking, build storage.OutboxBuilder) (storage.Booking, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Booking{}, err
	}
	if build == nil {
		return storage.Booking{}, fmt.Errorf("outbox builder is required")
	}
	normalized, err := normalizeBooking(booking, s.now())
	if err != nil {
		return storage.Booking{}, err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.Booking{}, fmt.Errorf("start booking transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	id, err := insertBooking(ctx, tx, normalized)
	if err != nil {
		return storage.Booking{}, err
	}
	normalized.ID = id

	event, err := build(normalized)
	if err != nil {
		return storage.Booking{}, fmt.Errorf("build outbox event: %w", err)
	}
	if err := enqueueOutboxEvent(ctx, tx, event, normalized.CreatedAt); err != nil {
		return storage.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return storage.Booking{}, fmt.Errorf("commit booking transaction: %w", err)
	}
	return normalized, nil
}

func insertBooking(ctx context.Context, target execContexter, booking storage.Booking) (int64, error) {
	result, err := target.ExecContext(ctx, `
INSERT INTO bookings (
	user_id,
	hotel_id,
	promo_code,
	discount_amount,
	price,
	created_at,
	updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?)
`,
		booking.UserID,
		booking.HotelID,
		booking.PromoCode,
		money(booking.Discount),
		money(booking.Price),
		toMillis(booking.CreatedAt),
		toMillis(booking.UpdatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert booking: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("booking id: %w", err)
	}
	return id, nil
}

const bookingColumns = `id, user_id, hotel_id, promo_code, discount_amount, price, created_at, updated_at`

// GetBooking returns one booking by id.
func (s *Store) GetBooking(ctx context.Context, id int64) (storage.Booking, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Booking{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	booking, err := scanBooking(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Booking{}, storage.ErrNotFound
		}
		return storage.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return booking, nil
}

// ListBookingsByUser returns the user's bookings newest first; equal
// timestamps order by descending id.
func (s *Store) ListBookingsByUser(ctx context.Context, userID string) ([]storage.Booking, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+bookingColumns+`
FROM bookings
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]storage.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// UpdateBooking rewrites promo, discount, and price, stamping updated_at
// with the current time. created_at is preserved.
func (s *Store) UpdateBooking(ctx context.Context, booking storage.Booking) (storage.Booking, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Booking{}, err
	}
	if booking.ID <= 0 {
		return storage.Booking{}, fmt.Errorf("booking id is required")
	}
	updatedAt := s.now()
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE bookings
SET
	promo_code = ?,
	discount_amount = ?,
	price = ?,
	updated_at = ?
WHERE id = ?
`,
		strings.TrimSpace(booking.PromoCode),
		money(booking.Discount),
		money(booking.Price),
		toMillis(updatedAt),
		booking.ID,
	)
	if err != nil {
		return storage.Booking{}, fmt.Errorf("update booking: %w", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return storage.Booking{}, fmt.Errorf("update booking rows affected: %w", err)
	} else if affected == 0 {
		return storage.Booking{}, storage.ErrNotFound
	}
	return s.GetBooking(ctx, booking.ID)
}

// DeleteBooking removes one booking.
func (s *Store) DeleteBooking(ctx context.Context, id int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete booking rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type rowScanner func(dest ...any) error

func scanBooking(scan rowScanner) (storage.Booking, error) {
	var booking storage.Booking
	var discount, price string
	var createdAt, updatedAt int64
	if err := scan(
		&booking.ID,
		&booking.UserID,
		&booking.HotelID,
		&booking.PromoCode,
		&discount,
		&price,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.Booking{}, err
	}
	var err error
	if booking.Discount, err = decimal.NewFromString(discount); err != nil {
		return storage.Booking{}, fmt.Errorf("parse discount %q: %w", discount, err)
	}
	if booking.Price, err = decimal.NewFromString(price); err != nil {
		return storage.Booking{}, fmt.Errorf("parse price %q: %w", price, err)
	}
	booking.CreatedAt = fromMillis(createdAt)
	booking.UpdatedAt = fromMillis(updatedAt)
	return booking, nil
}

var (
	_ storage.BookingStore = (*Store)(nil)
	_ storage.OutboxStore  = (*Store)(nil)
)
