package middleware

import "context"

type contextKey string

const (
	ctxUserID     contextKey = "user_id"
	ctxActorName  contextKey = "actor_name"
	ctxActorEmail contextKey = "actor_email"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func ActorNameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActorName).(string); ok {
		return v
	}
	return ""
}

func ActorEmailFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActorEmail).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the staff user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithActorName injects the staff display name used for audit attribution.
func WithActorName(ctx context.Context, name string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActorName, name)
}

// WithActorEmail injects the staff email into the context for downstream handlers.
func WithActorEmail(ctx context.Context, email string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActorEmail, email)
}
