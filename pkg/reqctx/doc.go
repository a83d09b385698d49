// Package reqctx carries request-scoped metadata through context.Context.
//
// HTTP middleware stores a RequestMeta for every request; services read it
// back to correlate their log lines:
//
//	ctx = reqctx.WithRequestMeta(ctx, &reqctx.RequestMeta{RequestID: rid})
//	reqctx.Logger(ctx, slog.Default()).Warn("calendar unavailable")
//
// Context keys are unexported so other packages cannot collide with them.
package reqctx
