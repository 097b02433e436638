package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern invalidates a pattern, logging instead of failing.
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes cache keys, logging instead of failing.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateCustomerCache drops every cache entry a customer mutation can
// stale: the record itself, the list pages, and the dashboard stats.
func InvalidateCustomerCache(ctx context.Context, cm *CacheManager, customerID uint) {
	SafeDelete(ctx, cm.Customer, fmt.Sprintf("id:%d", customerID))
	SafeInvalidatePattern(ctx, cm.Customer, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, "*")
}

// InvalidateUserCache drops cached identity lookups after user mutations.
func InvalidateUserCache(ctx context.Context, cm *CacheManager, userID uint) {
	SafeDelete(ctx, cm.User, fmt.Sprintf("id:%d", userID))
	SafeInvalidatePattern(ctx, cm.User, "email:*")
}
