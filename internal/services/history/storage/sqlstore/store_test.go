package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hotelio/bookings/internal/services/history/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	return store
}

func record(bookingID, userID string, price string, createdAt time.Time) storage.Record {
	return storage.Record{
		BookingID:        bookingID,
		UserID:           userID,
		HotelID:          "h1",
		Price:            decimal.RequireFromString(price),
		CreatedAt:        createdAt,
		EventProcessedAt: createdAt.Add(time.Second),
	}
}

func TestOpenValidatesArguments(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn")
	require.Error(t, err)
	_, err = Open(context.Background(), DriverSQLite, " ")
	require.Error(t, err)
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.EnsureSchema(context.Background()))
}

func TestAppendRecordRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := record("42", "u1", "65.50", createdAt)
	in.PromoCode = "PROMO1"
	in.Discount = decimal.NewFromInt(15)

	inserted, err := store.AppendRecord(ctx, in)
	require.NoError(t, err)
	assert.True(t, inserted)

	records, err := store.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	got := records[0]
	assert.NotZero(t, got.ID)
	assert.Equal(t, "42", got.BookingID)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "PROMO1", got.PromoCode)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("65.5")), "price = %s", got.Price)
	assert.True(t, got.Discount.Equal(decimal.NewFromInt(15)), "discount = %s", got.Discount)
	assert.True(t, got.CreatedAt.Equal(createdAt))
	assert.True(t, got.EventProcessedAt.Equal(createdAt.Add(time.Second)))
}

func TestAppendRecordDeduplicatesByBookingID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	inserted, err := store.AppendRecord(ctx, record("7", "u1", "100", createdAt))
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = store.AppendRecord(ctx, record("7", "u1", "100", createdAt))
	require.NoError(t, err)
	assert.False(t, inserted)

	records, err := store.ListRecords(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestAppendRecordRequiresBookingID(t *testing.T) {
	store := openTestStore(t)
	_, err := store.AppendRecord(context.Background(), record(" ", "u1", "100", time.Now()))
	require.Error(t, err)
}

func TestListRecordsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"1", "2", "3"} {
		userID := "u1"
		if id == "2" {
			userID = "u2"
		}
		_, err := store.AppendRecord(ctx, record(id, userID, "100", base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	all, err := store.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"3", "2", "1"}, []string{all[0].BookingID, all[1].BookingID, all[2].BookingID})

	mine, err := store.ListRecordsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "3", mine[0].BookingID)
	assert.Equal(t, "1", mine[1].BookingID)

	none, err := store.ListRecordsByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	empty, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.TotalBookings)
	assert.True(t, empty.TotalRevenue.IsZero())
	assert.True(t, empty.AveragePrice.IsZero())

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, price := range []string{"100", "80", "65.5"} {
		_, err := store.AppendRecord(ctx, record(decimal.NewFromInt(int64(i)).String(), "u1", price, now))
		require.NoError(t, err)
	}

	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalBookings)
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("245.5")), "revenue = %s", stats.TotalRevenue)
	assert.True(t, stats.AveragePrice.Equal(decimal.RequireFromString("81.83")), "average = %s", stats.AveragePrice)
}
