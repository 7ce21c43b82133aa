package middleware

import "context"

// contextKey is a private type for context keys defined in this package.
// Using a custom type prevents collisions.
type contextKey string

const (
	loggerKey = contextKey("logger")
	userIDKey = contextKey("userID")
	orgIDKey  = contextKey("orgID")
)

// GetUserIDFromCtx retrieves the authenticated user ID from the context.
func GetUserIDFromCtx(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// GetOrgIDFromCtx retrieves the authenticated org ID from the context. This
// is the only source of tenant scoping: it comes from verified JWT claims,
// never from a request body or header the caller controls.
func GetOrgIDFromCtx(ctx context.Context) (string, bool) {
	orgID, ok := ctx.Value(orgIDKey).(string)
	return orgID, ok && orgID != ""
}
