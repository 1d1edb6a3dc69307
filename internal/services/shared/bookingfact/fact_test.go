package bookingfact

import (
	"errors"
	"testing"
	"time"

	"github.com/hotelio/bookings/internal/platform/broker"
)

func TestDecodeAcceptsWireShape(t *testing.T) {
	data := []byte(`{"id":"7","userId":"u1","hotelId":"h1","promoCode":null,"discountPercent":15,"price":65,"createdAt":"2026-03-01T10:20:30Z"}`)

	f, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f.ID != "7" || f.UserID != "u1" || f.HotelID != "h1" {
		t.Fatalf("unexpected ids: %+v", f)
	}
	if f.PromoCode != "" {
		t.Fatalf("promo = %q, want empty for null", f.PromoCode)
	}
	if f.DiscountPercent != 15 || f.Price != 65 {
		t.Fatalf("discount/price = %v/%v, want 15/65", f.DiscountPercent, f.Price)
	}
	created, err := f.CreatedTime()
	if err != nil {
		t.Fatalf("created time: %v", err)
	}
	if want := time.Date(2026, 3, 1, 10, 20, 30, 0, time.UTC); !created.Equal(want) {
		t.Fatalf("created = %v, want %v", created, want)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":   `{"id":`,
		"missing id": `{"userId":"u1","hotelId":"h1","createdAt":"2026-03-01T10:20:30Z"}`,
		"no user":    `{"id":"1","hotelId":"h1","createdAt":"2026-03-01T10:20:30Z"}`,
		"no hotel":   `{"id":"1","userId":"u1","createdAt":"2026-03-01T10:20:30Z"}`,
		"bad time":   `{"id":"1","userId":"u1","hotelId":"h1","createdAt":"yesterday"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(body))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("err = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestFormatCreatedAtUsesUTCSeconds(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	got := FormatCreatedAt(time.Date(2026, 3, 1, 12, 0, 0, 999_000_000, loc))
	if got != "2026-03-01T10:00:00Z" {
		t.Fatalf("FormatCreatedAt = %q", got)
	}
}

func TestMessageCarriesHeadersAndNoKey(t *testing.T) {
	msg, err := Message(Fact{ID: "42", UserID: "u", HotelID: "h", CreatedAt: "2026-03-01T10:00:00Z"})
	if err != nil {
		t.Fatalf("message: %v", err)
	}
	if msg.Topic != Topic {
		t.Fatalf("topic = %q, want %q", msg.Topic, Topic)
	}
	if msg.Key != nil {
		t.Fatalf("expected nil key, got %q", msg.Key)
	}
	if msg.Headers[broker.HeaderFactID] != "42" || msg.Headers[broker.HeaderEventType] != EventType {
		t.Fatalf("headers = %v", msg.Headers)
	}
	back, err := Decode(msg.Value)
	if err != nil {
		t.Fatalf("decode message value: %v", err)
	}
	if back.DedupeKey() != "booking:42" {
		t.Fatalf("dedupe key = %q", back.DedupeKey())
	}
}
