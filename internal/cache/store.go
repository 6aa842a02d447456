package cache

import (
	"context"

	"github.com/zunou-lab/chatsync/internal/entity"
)

// Updater computes the replacement for a cached list. It receives a private
// copy and must return the value to store; returning the argument unchanged
// is the defensive no-op for lists that do not match expectations.
type Updater func(entity.CachedList) entity.CachedList

// Listener observes writes and invalidations below a key prefix.
type Listener func(key Key)

// Refresher refetches one key after an invalidation. Registered per family by
// the domain layer that knows how to rebuild that view.
type Refresher func(ctx context.Context, key Key)

// Store is the process-wide paginated cache. It is shared mutably across all
// coordinators; nobody owns a key beyond the duration of one patch-to-settle
// sequence. Reads and writes are synchronous; only TrackRead-registered
// fetches span a suspension point.
type Store interface {
	// Get returns a deep copy of the cached list, so callers may keep it as
	// a rollback snapshot without further copying.
	Get(key Key) (entity.CachedList, bool)

	Set(ctx context.Context, key Key, list entity.CachedList)

	// Update applies fn to the current value and stores the result. Reports
	// false, without calling fn, when the key is not cached.
	Update(ctx context.Context, key Key, fn Updater) bool

	Delete(ctx context.Context, key Key)

	// Keys lists every cached key at or below the prefix.
	Keys(prefix Key) []Key

	// TrackRead registers an in-flight fetch for the key and returns the
	// context the fetch must use. The release func must be called when the
	// fetch settles, whatever the outcome.
	TrackRead(ctx context.Context, key Key) (context.Context, func())

	// CancelInFlight aborts every tracked read below the prefix and waits
	// until each has released, so a patch applied next cannot be clobbered
	// by a concurrent refetch landing late.
	CancelInFlight(ctx context.Context, prefix Key)

	// Invalidate schedules a refetch for every key below the prefix. When no
	// cached key matches, the registered refresher still runs once for the
	// prefix itself so views that were never cached converge too.
	Invalidate(ctx context.Context, prefix Key)

	Subscribe(prefix Key, l Listener) (unsubscribe func())

	RegisterRefresher(family Family, fn Refresher)
}
