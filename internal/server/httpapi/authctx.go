package httpapi

import (
	"context"
	"time"

	"github.com/mbaudry/moustass-web/internal/model"
)

type ctxKey string

const sessionKey ctxKey = "mw.session"

// sessionInfo is the verified token state attached to authenticated requests.
type sessionInfo struct {
	Principal model.Principal
	JTI       string
	ExpiresAt time.Time
}

// withSession stores the authenticated session in context.
func withSession(ctx context.Context, s sessionInfo) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// sessionFromCtx fetches the authenticated session from context.
func sessionFromCtx(ctx context.Context) (sessionInfo, bool) {
	s, ok := ctx.Value(sessionKey).(sessionInfo)
	return s, ok
}
