package providers

import "context"

// HotelClient queries the hotel directory.
type HotelClient struct {
	c *client
}

// IsOperational reports whether the hotel accepts bookings at all.
func (h *HotelClient) IsOperational(ctx context.Context, hotelID string) (bool, error) {
	return h.c.getBool(ctx, resourcePath("/api/hotels/%s/operational", hotelID))
}

// IsFullyBooked reports whether the hotel has no remaining capacity.
func (h *HotelClient) IsFullyBooked(ctx context.Context, hotelID string) (bool, error) {
	return h.c.getBool(ctx, resourcePath("/api/hotels/%s/fully-booked", hotelID))
}

// ReviewClient queries the review aggregator.
type ReviewClient struct {
	c *client
}

// IsTrusted reports whether the hotel's reviews qualify it as trusted.
func (r *ReviewClient) IsTrusted(ctx context.Context, hotelID string) (bool, error) {
	return r.c.getBool(ctx, resourcePath("/api/reviews/hotel/%s/trusted", hotelID))
}
