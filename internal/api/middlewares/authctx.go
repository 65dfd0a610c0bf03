package middlewares

import "context"

const userIDKey ctxKey = 1

// WithUserID records the authenticated actor for downstream handlers.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFrom returns the actor set by WithUserID.
func UserIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok && v != ""
}
