package middleware

import "context"

type contextKey string

const ctxAuthorID contextKey = "author_id"

// AuthorIDFromContext returns the authenticated author, "" when absent.
func AuthorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAuthorID).(string); ok {
		return v
	}
	return ""
}

// WithAuthorID injects the author identifier into the context.
func WithAuthorID(ctx context.Context, authorID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAuthorID, authorID)
}
