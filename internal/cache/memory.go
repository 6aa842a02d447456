package cache

import (
	"context"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync"
	"github.com/zunou-lab/chatsync/internal/entity"
	"github.com/zunou-lab/chatsync/pkg/xcontext"
)

type entry struct {
	key  Key
	list entity.CachedList
}

type readHandle struct {
	cancel  context.CancelFunc
	done    chan struct{}
	release sync.Once
}

type readBucket struct {
	key     Key
	handles []*readHandle
}

type subscription struct {
	id     int
	prefix Key
	l      Listener
}

type memoryStore struct {
	baseCtx context.Context
	entries *xsync.MapOf[string, *entry]

	debounce time.Duration
	mirror   Mirror

	mu         sync.Mutex
	reads      map[string]*readBucket
	subs       []*subscription
	nextSubID  int
	refreshers map[Family]Refresher
	timers     map[string]*time.Timer
}

// NewMemoryStore builds the in-process store. The given context is kept for
// background refetches, which outlive the mutation that triggered them.
func NewMemoryStore(ctx context.Context) *memoryStore {
	return &memoryStore{
		baseCtx:    ctx,
		entries:    xsync.NewMapOf[*entry](),
		debounce:   xcontext.Configs(ctx).Sync.RefreshDebounce,
		reads:      make(map[string]*readBucket),
		refreshers: make(map[Family]Refresher),
		timers:     make(map[string]*time.Timer),
	}
}

// SetMirror attaches a write-through mirror. Must be called before the store
// is shared.
func (s *memoryStore) SetMirror(m Mirror) {
	s.mirror = m
}

func (s *memoryStore) Get(key Key) (entity.CachedList, bool) {
	e, ok := s.entries.Load(key.String())
	if !ok {
		return entity.CachedList{}, false
	}

	return e.list.Clone(), true
}

func (s *memoryStore) Set(ctx context.Context, key Key, list entity.CachedList) {
	s.entries.Store(key.String(), &entry{key: key, list: list.Clone()})
	if s.mirror != nil {
		s.mirror.Store(ctx, key, list)
	}

	s.notify(key)
}

func (s *memoryStore) Update(ctx context.Context, key Key, fn Updater) bool {
	e, ok := s.entries.Load(key.String())
	if !ok {
		return false
	}

	s.Set(ctx, key, fn(e.list.Clone()))
	return true
}

func (s *memoryStore) Delete(ctx context.Context, key Key) {
	s.entries.Delete(key.String())
	if s.mirror != nil {
		s.mirror.Drop(ctx, key)
	}
}

func (s *memoryStore) Keys(prefix Key) []Key {
	var keys []Key
	s.entries.Range(func(_ string, e *entry) bool {
		if e.key.HasPrefix(prefix) {
			keys = append(keys, e.key)
		}

		return true
	})

	return keys
}

func (s *memoryStore) TrackRead(ctx context.Context, key Key) (context.Context, func()) {
	rctx, cancel := context.WithCancel(ctx)
	h := &readHandle{cancel: cancel, done: make(chan struct{})}

	ks := key.String()
	s.mu.Lock()
	bucket, ok := s.reads[ks]
	if !ok {
		bucket = &readBucket{key: key}
		s.reads[ks] = bucket
	}
	bucket.handles = append(bucket.handles, h)
	s.mu.Unlock()

	return rctx, func() {
		h.release.Do(func() {
			close(h.done)
			s.mu.Lock()
			for i, other := range bucket.handles {
				if other == h {
					bucket.handles = append(bucket.handles[:i], bucket.handles[i+1:]...)
					break
				}
			}
			if len(bucket.handles) == 0 {
				delete(s.reads, ks)
			}
			s.mu.Unlock()
		})
	}
}

func (s *memoryStore) CancelInFlight(ctx context.Context, prefix Key) {
	s.mu.Lock()
	var matched []*readHandle
	for _, bucket := range s.reads {
		if bucket.key.HasPrefix(prefix) {
			matched = append(matched, bucket.handles...)
		}
	}
	s.mu.Unlock()

	for _, h := range matched {
		h.cancel()
	}

	for _, h := range matched {
		select {
		case <-h.done:
		case <-ctx.Done():
			return
		}
	}
}

func (s *memoryStore) Invalidate(ctx context.Context, prefix Key) {
	s.invalidate(ctx, prefix, true)
}

func (s *memoryStore) invalidate(ctx context.Context, prefix Key, propagate bool) {
	if propagate && s.mirror != nil {
		s.mirror.Invalidate(ctx, prefix)
	}

	keys := s.Keys(prefix)
	if len(keys) == 0 {
		keys = []Key{prefix}
	}

	for _, key := range keys {
		s.notify(key)
		s.scheduleRefresh(key)
	}
}

func (s *memoryStore) Subscribe(prefix Key, l Listener) func() {
	s.mu.Lock()
	s.nextSubID++
	sub := &subscription{id: s.nextSubID, prefix: prefix, l: l}
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		for i, other := range s.subs {
			if other.id == sub.id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	}
}

func (s *memoryStore) RegisterRefresher(family Family, fn Refresher) {
	s.mu.Lock()
	s.refreshers[family] = fn
	s.mu.Unlock()
}

func (s *memoryStore) notify(key Key) {
	s.mu.Lock()
	listeners := make([]Listener, 0, len(s.subs))
	for _, sub := range s.subs {
		if key.HasPrefix(sub.prefix) {
			listeners = append(listeners, sub.l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(key)
	}
}

func (s *memoryStore) scheduleRefresh(key Key) {
	s.mu.Lock()
	fn, ok := s.refreshers[key.Family]
	if !ok {
		s.mu.Unlock()
		return
	}

	ks := key.String()
	if _, pending := s.timers[ks]; pending {
		// A refetch for this key is already queued; the burst collapses.
		s.mu.Unlock()
		return
	}

	run := func() {
		s.mu.Lock()
		delete(s.timers, ks)
		s.mu.Unlock()
		fn(s.baseCtx, key)
	}

	if s.debounce <= 0 {
		s.timers[ks] = time.AfterFunc(0, run)
	} else {
		s.timers[ks] = time.AfterFunc(s.debounce, run)
	}
	s.mu.Unlock()
}
