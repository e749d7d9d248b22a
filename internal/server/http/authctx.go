package httpserver

import (
	"context"

	"github.com/tracknest/tracknest/internal/model"
)

type ctxKey string

const principalKey ctxKey = "tn.principal"

// WithPrincipal stores the authenticated principal in the context.
func WithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromCtx fetches the authenticated principal from the context.
// ok is false for anonymous requests.
func PrincipalFromCtx(ctx context.Context) (model.Principal, bool) {
	v := ctx.Value(principalKey)
	if v == nil {
		return model.Principal{}, false
	}
	p, ok := v.(model.Principal)
	return p, ok
}
