package optimistic

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync"
	"github.com/zunou-lab/chatsync/internal/cache"
	"github.com/zunou-lab/chatsync/internal/common"
	"github.com/zunou-lab/chatsync/internal/entity"
	"github.com/zunou-lab/chatsync/internal/model"
	"github.com/zunou-lab/chatsync/pkg/errorx"
	"github.com/zunou-lab/chatsync/pkg/xcontext"
)

// RemoteFunc performs the server call of a mutation. For creations it returns
// the confirmed message; other mutations return nil on success. The context
// is canceled when a newer mutation supersedes this one on the same target.
type RemoteFunc func(ctx context.Context) (*entity.Message, error)

// UserFunc supplies the acting user, or false when no session is established.
type UserFunc func() (entity.User, bool)

type MutateOption func(*mutateOptions)

type mutateOptions struct {
	patch cache.Updater
}

// WithPatch overrides the default optimistic patch for intents whose cache
// shape the built-in patch functions do not cover.
func WithPatch(fn cache.Updater) MutateOption {
	return func(o *mutateOptions) { o.patch = fn }
}

type inflightCall struct {
	seq    int64
	cancel context.CancelFunc
}

// Coordinator runs every mutation through the same sequence: resolve fan-out,
// cancel in-flight reads, snapshot, patch, call the server, then reconcile or
// roll back, and finally invalidate. For one mutation that sequence is atomic
// from the caller's point of view; across mutations on the same target the
// newest call wins and earlier in-flight calls are aborted.
type Coordinator struct {
	store     cache.Store
	resolver  *Resolver
	allocator *common.TempAllocator
	user      UserFunc

	seq      int64
	inflight *xsync.MapOf[string, *inflightCall]
}

func NewCoordinator(
	store cache.Store,
	resolver *Resolver,
	allocator *common.TempAllocator,
	user UserFunc,
) *Coordinator {
	return &Coordinator{
		store:     store,
		resolver:  resolver,
		allocator: allocator,
		user:      user,
		inflight:  xsync.NewMapOf[*inflightCall](),
	}
}

// Mutate applies the intent optimistically, performs the remote call, and
// settles. The returned message is the server-confirmed entity for creations.
// A mutation superseded mid-flight returns errorx.Canceled and leaves the
// cache to its successor: no rollback, no invalidation.
func (c *Coordinator) Mutate(
	ctx context.Context, intent model.MutationIntent, remote RemoteFunc, opts ...MutateOption,
) (*entity.Message, error) {
	options := mutateOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	actor, hasActor := c.user()
	plan := c.resolver.Resolve(intent)

	target := intent.TargetID()
	seq := atomic.AddInt64(&c.seq, 1)
	mctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if target != "" {
		call := &inflightCall{seq: seq, cancel: cancel}
		if prev, loaded := c.inflight.LoadAndStore(target, call); loaded {
			// Abort the stale call so its outcome cannot be misapplied to
			// state this mutation is about to own.
			prev.cancel()
		}
	}

	for _, prefix := range plan.Cancel {
		c.store.CancelInFlight(ctx, prefix)
	}

	var tempID string
	if intent.Kind == model.KindCreateMessage {
		tempID = c.allocator.Next()
	}

	patch := options.patch
	if patch == nil && hasActor {
		patch = buildPatch(intent, actor, tempID, time.Now())
	}

	snapshots := make(map[string]entity.CachedList)
	var patched []cache.Key
	if patch != nil {
		for _, key := range plan.Patch {
			prev, ok := c.store.Get(key)
			if !ok {
				// Entry evicted or never fetched; settle-time invalidation
				// converges this view.
				continue
			}

			snapshots[key.String()] = prev
			c.store.Update(ctx, key, patch)
			patched = append(patched, key)
		}
	}

	confirmed, err := remote(mctx)

	if mctx.Err() != nil && ctx.Err() == nil {
		// Superseded. The newer mutation snapshotted our patched state as
		// its baseline; touching the cache now would corrupt it.
		return nil, errorx.New(errorx.Canceled, "Mutation superseded by a newer one")
	}

	if err != nil {
		for _, key := range patched {
			c.store.Set(ctx, key, snapshots[key.String()])
		}
	} else if tempID != "" && confirmed != nil {
		reconcile := reconcilePatch(tempID, *confirmed)
		for _, key := range patched {
			c.store.Update(ctx, key, reconcile)
		}
	}

	c.releaseTarget(target, seq)

	// Unconditional: on success it pulls in server-side effects the patch
	// could not predict, on failure it heals any partial local damage.
	for _, prefix := range plan.Invalidate {
		c.store.Invalidate(ctx, prefix)
	}

	if err != nil {
		return nil, c.classify(ctx, intent, err)
	}

	return confirmed, nil
}

func (c *Coordinator) releaseTarget(target string, seq int64) {
	if target == "" {
		return
	}

	if cur, ok := c.inflight.Load(target); ok && cur.seq == seq {
		c.inflight.Delete(target)
	}
}

func (c *Coordinator) classify(ctx context.Context, intent model.MutationIntent, err error) error {
	var appErr errorx.Error
	if errors.As(err, &appErr) {
		return appErr
	}

	xcontext.Logger(ctx).Errorf("Mutation %s failed: %v", intent.Kind, err)
	return errorx.New(errorx.TransportFailed, "Cannot reach the server")
}
