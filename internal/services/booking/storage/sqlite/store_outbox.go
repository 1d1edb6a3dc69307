package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hotelio/bookings/internal/services/booking/storage"
)

const outboxColumns = `
	id,
	event_type,
	payload_json,
	dedupe_key,
	status,
	attempt_count,
	next_attempt_at,
	lease_owner,
	lease_expires_at,
	last_error,
	processed_at,
	created_at,
	updated_at`

// leaseablePredicate matches pending rows that are due and leased rows whose
// lease has expired. It binds: pending, now, leased, now.
const leaseablePredicate = `(
	(status = ? AND next_attempt_at <= ?)
	OR
	(status = ? AND lease_expires_at IS NOT NULL AND lease_expires_at <= ?)
)`

func normalizeOutboxEvent(event storage.OutboxEvent, now time.Time) (storage.OutboxEvent, error) {
	event.ID = strings.TrimSpace(event.ID)
	event.EventType = strings.TrimSpace(event.EventType)
	event.DedupeKey = strings.TrimSpace(event.DedupeKey)
	if event.ID == "" {
		return storage.OutboxEvent{}, fmt.Errorf("outbox event id is required")
	}
	if event.EventType == "" {
		return storage.OutboxEvent{}, fmt.Errorf("outbox event type is required")
	}
	if len(event.PayloadJSON) == 0 {
		return storage.OutboxEvent{}, fmt.Errorf("outbox payload is required")
	}
	if event.Status == "" {
		event.Status = storage.OutboxStatusPending
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	if event.UpdatedAt.IsZero() {
		event.UpdatedAt = event.CreatedAt
	}
	if event.NextAttemptAt.IsZero() {
		event.NextAttemptAt = event.CreatedAt
	}
	return event, nil
}

func enqueueOutboxEvent(ctx context.Context, target execContexter, event storage.OutboxEvent, now time.Time) error {
	normalized, err := normalizeOutboxEvent(event, now)
	if err != nil {
		return err
	}
	_, err = target.ExecContext(ctx, `
INSERT INTO booking_outbox (`+outboxColumns+`
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, NULL, ?, ?)
ON CONFLICT(dedupe_key) WHERE dedupe_key <> '' DO NOTHING
`,
		normalized.ID,
		normalized.EventType,
		normalized.PayloadJSON,
		normalized.DedupeKey,
		string(normalized.Status),
		normalized.AttemptCount,
		toMillis(normalized.NextAttemptAt),
		normalized.LeaseOwner,
		normalized.LastError,
		toMillis(normalized.CreatedAt),
		toMillis(normalized.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("enqueue outbox event: %w", err)
	}
	return nil
}

// GetOutboxEvent returns one outbox event by id.
func (s *Store) GetOutboxEvent(ctx context.Context, id string) (storage.OutboxEvent, error) {
	if err := s.ready(ctx); err != nil {
		return storage.OutboxEvent{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.OutboxEvent{}, fmt.Errorf("event id is required")
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT`+outboxColumns+` FROM booking_outbox WHERE id = ?`, id)
	event, err := scanOutboxEvent(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.OutboxEvent{}, storage.ErrNotFound
		}
		return storage.OutboxEvent{}, fmt.Errorf("get outbox event: %w", err)
	}
	return event, nil
}

// LeaseOutboxEvents leases up to limit due events to consumer until
// now+leaseTTL. Rows another relay leased in between are skipped.
func (s *Store) LeaseOutboxEvents(ctx context.Context, consumer string, limit int, now time.Time, leaseTTL time.Duration) ([]storage.OutboxEvent, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	consumer = strings.TrimSpace(consumer)
	if consumer == "" {
		return nil, fmt.Errorf("consumer is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	if leaseTTL <= 0 {
		return nil, fmt.Errorf("lease ttl must be greater than zero")
	}
	if now.IsZero() {
		now = s.now()
	}
	nowMillis := toMillis(now)
	leaseExpiresAt := toMillis(now.Add(leaseTTL))

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("start lease transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	candidateIDs, err := leaseCandidates(ctx, tx, nowMillis, limit)
	if err != nil {
		return nil, err
	}

	leased := make([]storage.OutboxEvent, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		result, err := tx.ExecContext(ctx, `
UPDATE booking_outbox
SET
	status = ?,
	lease_owner = ?,
	lease_expires_at = ?,
	updated_at = ?
WHERE id = ?
AND `+leaseablePredicate,
			string(storage.OutboxStatusLeased),
			consumer,
			leaseExpiresAt,
			nowMillis,
			id,
			string(storage.OutboxStatusPending), nowMillis,
			string(storage.OutboxStatusLeased), nowMillis,
		)
		if err != nil {
			return nil, fmt.Errorf("lease outbox event %s: %w", id, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("lease rows affected for %s: %w", id, err)
		}
		if affected == 0 {
			continue
		}
		row := tx.QueryRowContext(ctx, `SELECT`+outboxColumns+` FROM booking_outbox WHERE id = ?`, id)
		event, err := scanOutboxEvent(row.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan leased outbox event %s: %w", id, err)
		}
		leased = append(leased, event)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit lease transaction: %w", err)
	}
	return leased, nil
}

func leaseCandidates(ctx context.Context, tx *sql.Tx, nowMillis int64, limit int) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `
SELECT id
FROM booking_outbox
WHERE `+leaseablePredicate+`
ORDER BY next_attempt_at ASC, created_at ASC, id ASC
LIMIT ?
`,
		string(storage.OutboxStatusPending), nowMillis,
		string(storage.OutboxStatusLeased), nowMillis,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select lease candidates: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan lease candidate: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lease candidates: %w", err)
	}
	return ids, nil
}

// MarkOutboxSucceeded settles an event the relay published.
func (s *Store) MarkOutboxSucceeded(ctx context.Context, id string, consumer string, processedAt time.Time) error {
	if processedAt.IsZero() {
		processedAt = s.now()
	}
	return s.settle(ctx, id, consumer, "mark outbox succeeded", `
	status = ?,
	lease_owner = '',
	lease_expires_at = NULL,
	last_error = '',
	processed_at = ?,
	updated_at = ?`,
		string(storage.OutboxStatusSucceeded),
		toMillis(processedAt),
		toMillis(processedAt),
	)
}

// MarkOutboxRetry returns an event to pending with one more attempt counted.
func (s *Store) MarkOutboxRetry(ctx context.Context, id string, consumer string, nextAttemptAt time.Time, lastError string) error {
	if nextAttemptAt.IsZero() {
		return fmt.Errorf("next attempt at is required")
	}
	return s.settle(ctx, id, consumer, "mark outbox retry", `
	status = ?,
	attempt_count = attempt_count + 1,
	next_attempt_at = ?,
	lease_owner = '',
	lease_expires_at = NULL,
	last_error = ?,
	processed_at = NULL,
	updated_at = ?`,
		string(storage.OutboxStatusPending),
		toMillis(nextAttemptAt),
		strings.TrimSpace(lastError),
		toMillis(s.now()),
	)
}

// MarkOutboxDead parks an event that exhausted its attempts.
func (s *Store) MarkOutboxDead(ctx context.Context, id string, consumer string, lastError string, processedAt time.Time) error {
	if processedAt.IsZero() {
		processedAt = s.now()
	}
	return s.settle(ctx, id, consumer, "mark outbox dead", `
	status = ?,
	attempt_count = attempt_count + 1,
	lease_owner = '',
	lease_expires_at = NULL,
	last_error = ?,
	processed_at = ?,
	updated_at = ?`,
		string(storage.OutboxStatusDead),
		strings.TrimSpace(lastError),
		toMillis(processedAt),
		toMillis(processedAt),
	)
}

// settle applies assignments to a row leased by consumer.
func (s *Store) settle(ctx context.Context, id, consumer, op, assignments string, args ...any) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	consumer = strings.TrimSpace(consumer)
	if id == "" {
		return fmt.Errorf("event id is required")
	}
	if consumer == "" {
		return fmt.Errorf("consumer is required")
	}
	args = append(args, id, string(storage.OutboxStatusLeased), consumer)
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE booking_outbox
SET`+assignments+`
WHERE id = ?
AND status = ?
AND lease_owner = ?
`, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanOutboxEvent(scan rowScanner) (storage.OutboxEvent, error) {
	var event storage.OutboxEvent
	var status string
	var nextAttemptAt, createdAt, updatedAt int64
	var leaseExpiresAt, processedAt sql.NullInt64
	if err := scan(
		&event.ID,
		&event.EventType,
		&event.PayloadJSON,
		&event.DedupeKey,
		&status,
		&event.AttemptCount,
		&nextAttemptAt,
		&event.LeaseOwner,
		&leaseExpiresAt,
		&event.LastError,
		&processedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.OutboxEvent{}, err
	}
	event.Status = storage.OutboxStatus(status)
	event.NextAttemptAt = fromMillis(nextAttemptAt)
	event.CreatedAt = fromMillis(createdAt)
	event.UpdatedAt = fromMillis(updatedAt)
	if leaseExpiresAt.Valid {
		value := fromMillis(leaseExpiresAt.Int64)
		event.LeaseExpiresAt = &value
	}
	if processedAt.Valid {
		value := fromMillis(processedAt.Int64)
		event.ProcessedAt = &value
	}
	return event, nil
}
