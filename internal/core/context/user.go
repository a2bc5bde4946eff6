// Package context provides request-scoped values extraction.
package context

import "context"

// UserContext contains the user on whose behalf a manager operation runs.
type UserContext struct {
	UserID   string
	Username string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// WithUsername is a shortcut for callers that only know the username.
func WithUsername(ctx context.Context, username string) context.Context {
	return WithUser(ctx, &UserContext{Username: username})
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetUsername returns the username recorded in audit stamps or empty string.
func GetUsername(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.Username
	}
	return ""
}
