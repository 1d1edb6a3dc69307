package sqlstore

const postgresSchema = `
CREATE TABLE IF NOT EXISTS booking_history (
	id BIGSERIAL PRIMARY KEY,
	booking_id TEXT NOT NULL UNIQUE,
	user_id TEXT NOT NULL,
	hotel_id TEXT NOT NULL,
	promo_code TEXT NOT NULL DEFAULT '',
	discount_amount NUMERIC(12, 2) NOT NULL DEFAULT 0,
	price NUMERIC(12, 2) NOT NULL,
	created_at BIGINT NOT NULL,
	event_processed_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_booking_history_user_created
	ON booking_history (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_booking_history_created
	ON booking_history (created_at DESC);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS booking_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	booking_id TEXT NOT NULL UNIQUE,
	user_id TEXT NOT NULL,
	hotel_id TEXT NOT NULL,
	promo_code TEXT NOT NULL DEFAULT '',
	discount_amount NUMERIC NOT NULL DEFAULT 0,
	price NUMERIC NOT NULL,
	created_at INTEGER NOT NULL,
	event_processed_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_booking_history_user_created
	ON booking_history (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_booking_history_created
	ON booking_history (created_at DESC);
`
