// Package sqlstore implements the history store on sqlx. Production uses
// Postgres through lib/pq; local runs and tests use SQLite.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hotelio/bookings/internal/services/history/storage"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const recordColumns = `id, booking_id, user_id, hotel_id, promo_code, discount_amount, price, created_at, event_processed_at`

// Store is the sqlx-backed history store.
type Store struct {
	db *sqlx.DB
}

var _ storage.Store = (*Store)(nil)

// Open connects, sizes the pool for driver, and ensures the schema.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported history db driver %q", driver)
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("history db dsn is required")
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if driver == DriverPostgres {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	} else {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}
	store := &Store{db: db}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// EnsureSchema creates the history table and indexes when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	schema := sqliteSchema
	if s.db.DriverName() == DriverPostgres {
		schema = postgresSchema
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure history schema: %w", err)
		}
	}
	return nil
}

type recordRow struct {
	ID               int64           `db:"id"`
	BookingID        string          `db:"booking_id"`
	UserID           string          `db:"user_id"`
	HotelID          string          `db:"hotel_id"`
	PromoCode        string          `db:"promo_code"`
	Discount         decimal.Decimal `db:"discount_amount"`
	Price            decimal.Decimal `db:"price"`
	CreatedAt        int64           `db:"created_at"`
	EventProcessedAt int64           `db:"event_processed_at"`
}

func (r recordRow) record() storage.Record {
	return storage.Record{
		ID:               r.ID,
		BookingID:        r.BookingID,
		UserID:           r.UserID,
		HotelID:          r.HotelID,
		PromoCode:        r.PromoCode,
		Discount:         r.Discount.Round(2),
		Price:            r.Price.Round(2),
		CreatedAt:        time.UnixMilli(r.CreatedAt).UTC(),
		EventProcessedAt: time.UnixMilli(r.EventProcessedAt).UTC(),
	}
}

// AppendRecord inserts record; a duplicate booking id is skipped.
func (s *Store) AppendRecord(ctx context.Context, record storage.Record) (bool, error) {
	record.BookingID = strings.TrimSpace(record.BookingID)
	if record.BookingID == "" {
		return false, errors.New("booking id is required")
	}
	if record.EventProcessedAt.IsZero() {
		record.EventProcessedAt = time.Now()
	}
	query := s.db.Rebind(`
INSERT INTO booking_history (booking_id, user_id, hotel_id, promo_code, discount_amount, price, created_at, event_processed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (booking_id) DO NOTHING`)
	result, err := s.db.ExecContext(ctx, query,
		record.BookingID,
		strings.TrimSpace(record.UserID),
		strings.TrimSpace(record.HotelID),
		strings.TrimSpace(record.PromoCode),
		record.Discount.Round(2).String(),
		record.Price.Round(2).String(),
		record.CreatedAt.UnixMilli(),
		record.EventProcessedAt.UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("insert history record %s: %w", record.BookingID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert history record %s rows affected: %w", record.BookingID, err)
	}
	if affected == 0 {
		log.Printf("history record for booking %s already stored", record.BookingID)
	}
	return affected > 0, nil
}

// ListRecords returns every record, newest booking first.
func (s *Store) ListRecords(ctx context.Context) ([]storage.Record, error) {
	return s.selectRecords(ctx, `SELECT `+recordColumns+` FROM booking_history ORDER BY created_at DESC, id DESC`)
}

// ListRecordsByUser returns the user's records, newest booking first.
func (s *Store) ListRecordsByUser(ctx context.Context, userID string) ([]storage.Record, error) {
	return s.selectRecords(ctx, `SELECT `+recordColumns+` FROM booking_history WHERE user_id = ? ORDER BY created_at DESC, id DESC`, strings.TrimSpace(userID))
}

func (s *Store) selectRecords(ctx context.Context, query string, args ...any) ([]storage.Record, error) {
	var rows []recordRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select history records: %w", err)
	}
	records := make([]storage.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

// GetStats counts records and sums their prices. The average is rounded
// to two decimal places.
func (s *Store) GetStats(ctx context.Context) (storage.Stats, error) {
	var row struct {
		Total   int64               `db:"total"`
		Revenue decimal.NullDecimal `db:"revenue"`
	}
	if err := s.db.GetContext(ctx, &row, `SELECT COUNT(*) AS total, SUM(price) AS revenue FROM booking_history`); err != nil {
		return storage.Stats{}, fmt.Errorf("select history stats: %w", err)
	}
	stats := storage.Stats{
		TotalBookings: row.Total,
		TotalRevenue:  decimal.Zero,
		AveragePrice:  decimal.Zero,
	}
	if row.Revenue.Valid {
		stats.TotalRevenue = row.Revenue.Decimal.Round(2)
	}
	if row.Total > 0 {
		stats.AveragePrice = stats.TotalRevenue.Div(decimal.NewFromInt(row.Total)).Round(2)
	}
	return stats, nil
}
