package ports

import "context"

// ProgressFunc receives byte counts for a running download. total is -1 or
// 0 when the size is unknown.
type ProgressFunc func(downloaded, total int64)

type progressKey struct{}

// WithProgress returns a context carrying a download progress callback.
// Fetchers and engines that download report through it.
func WithProgress(ctx context.Context, progress ProgressFunc) context.Context {
	if progress == nil {
		return ctx
	}
	return context.WithValue(ctx, progressKey{}, progress)
}

// ProgressFrom returns the callback stored in ctx, or nil
func ProgressFrom(ctx context.Context) ProgressFunc {
	progress, _ := ctx.Value(progressKey{}).(ProgressFunc)
	return progress
}
