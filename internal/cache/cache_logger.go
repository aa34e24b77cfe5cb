package cache

import (
	"context"
	"log/slog"
)

// SafeDelete deletes cache keys, logging instead of failing. Invalidation
// after a committed write must never bubble an error back to the caller.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// SafeInvalidatePattern invalidates a cache pattern, logging instead of
// failing.
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}
