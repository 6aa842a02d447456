package search

import (
	"context"

	"github.com/zunou-lab/chatsync/internal/cache"
	"github.com/zunou-lab/chatsync/internal/common"
	"github.com/zunou-lab/chatsync/pkg/xcontext"
)

// Feeder keeps the full-text index in sync with the cache. It subscribes to
// every team message family and reindexes a view whenever it changes, so
// search always reflects what the user can currently see, optimistic edits
// included.
type Feeder struct {
	store cache.Store
	index Indexer
}

func NewFeeder(store cache.Store, index Indexer) *Feeder {
	return &Feeder{store: store, index: index}
}

// Start registers the cache subscriptions and returns a function removing
// them again.
func (f *Feeder) Start(ctx context.Context) func() {
	// Reply threads are keyed by reply thread id, not pulse id, so they
	// cannot land in a per-pulse document and stay out of the index.
	families := []cache.Family{
		cache.FamilyTeamMessages,
		cache.FamilyTeamThreadMessages,
	}

	var unsubs []func()
	for _, family := range families {
		unsubs = append(unsubs, f.store.Subscribe(cache.NewKey(family), func(key cache.Key) {
			f.reindex(ctx, key)
		}))
	}

	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

func (f *Feeder) reindex(ctx context.Context, key cache.Key) {
	if len(key.Scope) == 0 {
		return
	}

	list, ok := f.store.Get(key)
	if !ok {
		return
	}

	// Cached search views over this pulse are stale the moment the backing
	// messages change; they are recomputed lazily on the next search.
	for _, stale := range f.store.Keys(cache.NewKey(cache.FamilyMessageSearch, key.Scope[0])) {
		f.store.Delete(ctx, stale)
	}

	document := DocumentForPulse(key.Scope[0])
	for _, page := range list.Pages {
		for _, msg := range page.Data {
			// Placeholders get indexed after reconciliation under their real
			// id; indexing a temp id would leave an orphan behind.
			if common.IsTempID(msg.ID) {
				continue
			}

			if msg.DeletedAt != nil {
				if err := f.index.Delete(document, msg.ID); err != nil {
					xcontext.Logger(ctx).Warnf("Cannot deindex message %s: %v", msg.ID, err)
				}
				continue
			}

			data := MessageData{Content: msg.Content, SenderName: msg.Sender.Name}
			if err := f.index.Index(document, msg.ID, data); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot index message %s: %v", msg.ID, err)
			}
		}
	}
}
