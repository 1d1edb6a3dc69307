package providers

import (
	"context"
	"net/http"
)

// UserClient queries the user directory.
type UserClient struct {
	c *client
}

// IsActive reports whether the user account is active.
func (u *UserClient) IsActive(ctx context.Context, userID string) (bool, error) {
	return u.c.getBool(ctx, resourcePath("/api/users/%s/active", userID))
}

// IsBlacklisted reports whether the user is barred from booking.
func (u *UserClient) IsBlacklisted(ctx context.Context, userID string) (bool, error) {
	return u.c.getBool(ctx, resourcePath("/api/users/%s/blacklisted", userID))
}

// IsAuthorized reports whether the user passed identity verification.
func (u *UserClient) IsAuthorized(ctx context.Context, userID string) (bool, error) {
	return u.c.getBool(ctx, resourcePath("/api/users/%s/authorized", userID))
}

// IsVIP reports the monolith's own VIP flag for the user.
func (u *UserClient) IsVIP(ctx context.Context, userID string) (bool, error) {
	return u.c.getBool(ctx, resourcePath("/api/users/%s/vip", userID))
}

// Status returns the user's loyalty status, e.g. "VIP". A user without a
// status yields "" and no error.
func (u *UserClient) Status(ctx context.Context, userID string) (string, error) {
	path := resourcePath("/api/users/%s/status", userID)
	code, body, err := u.c.get(ctx, path)
	if err != nil {
		return "", err
	}
	switch {
	case code == http.StatusNotFound || code == http.StatusNoContent:
		return "", nil
	case code < 200 || code > 299:
		return "", &StatusError{Method: http.MethodGet, Path: path, StatusCode: code}
	}
	return unquote(body), nil
}
