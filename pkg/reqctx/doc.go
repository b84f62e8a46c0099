// Package reqctx carries request-scoped values through context.Context.
//
// HTTP middleware sets them; services and the backend client read them:
//
//	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{RequestID: rid})
//	ctx = reqctx.WithSession(ctx, &reqctx.Session{ID: sid, Role: reqctx.RoleDentist})
//
//	rid := reqctx.RequestIDFromContext(ctx)
//	sess, ok := reqctx.SessionFromContext(ctx)
//
// All keys are private so values can only be reached through these helpers.
// RequestMeta is present on every HTTP request; Session only on routes
// behind the session middleware.
package reqctx
