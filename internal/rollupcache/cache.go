// Package rollupcache memoizes fully computed dashboard rollups for a short
// TTL. There is no per-key invalidation tied to ledger writes: the TTL is the
// system's consistency bound, and Flush is the operator-triggered correction.
package rollupcache

import (
	"context"
	"time"
)

// Cache fronts the aggregation engine. Get returns the cached payload
// verbatim with no revalidation; ok is false on a miss or expired entry.
// Implementations insert entries only once fully computed.
type Cache interface {
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Flush(ctx context.Context) error
}
