package requestdata

import (
	"context"

	"github.com/google/uuid"

	"github.com/tbamaint/hogrisk-backend/internal/access"
)

type contextKey struct{}

var requestDataKey = contextKey{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey).(*RequestData); ok {
		return rd
	}
	return nil
}

// RequestData is the already-authenticated caller identity. The identity
// provider resolves credentials upstream; nothing below the middleware ever
// sees a raw token.
type RequestData struct {
	UserID uuid.UUID
	Name   string
	Role   access.Role
}
