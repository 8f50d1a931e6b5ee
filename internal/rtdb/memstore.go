package rtdb

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemStore is the in-process Store used when no DATABASE_URL is configured
// and by tests. A single mutex orders writes; subscribers receive coalesced
// snapshots through buffered channels.
type MemStore struct {
	mu     sync.Mutex
	root   map[string]any
	subs   map[int]*memSub
	nextID int
}

type memSub struct {
	segs []string
	ch   chan Snapshot
}

func NewMemStore() *MemStore {
	return &MemStore{
		root: map[string]any{},
		subs: map[int]*memSub{},
	}
}

func (s *MemStore) Get(_ context.Context, path string) (Snapshot, error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return marshalAt(s.root, segs)
}

func (s *MemStore) Set(_ context.Context, path string, value any) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	node, err := normalize(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	setAt(s.root, segs, node)
	s.notify(segs)
	return nil
}

func (s *MemStore) Update(_ context.Context, path string, fields map[string]any) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	node, err := normalize(fields)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	mergeAt(s.root, segs, node.(map[string]any))
	s.notify(segs)
	return nil
}

func (s *MemStore) Push(_ context.Context, path string, value any) (string, error) {
	segs, err := splitPath(path)
	if err != nil {
		return "", err
	}
	node, err := normalize(value)
	if err != nil {
		return "", err
	}
	key := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	setAt(s.root, append(segs, key), node)
	s.notify(segs)
	return key, nil
}

func (s *MemStore) Subscribe(ctx context.Context, path string) (<-chan Snapshot, func(), error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, nil, err
	}
	sub := &memSub{segs: segs, ch: make(chan Snapshot, 1)}

	s.mu.Lock()
	snap, err := marshalAt(s.root, segs)
	if err != nil {
		s.mu.Unlock()
		return nil, nil, err
	}
	sub.ch <- snap
	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	s.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(sub.ch)
		})
	}
	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			stop()
		}()
	}
	return sub.ch, stop, nil
}

// notify fans the post-write snapshot out to affected subscribers.
// Caller holds s.mu. Channel sends are coalescing: a pending unread
// snapshot is replaced by the newer one.
func (s *MemStore) notify(writeSegs []string) {
	for _, sub := range s.subs {
		if !touches(writeSegs, sub.segs) {
			continue
		}
		snap, err := marshalAt(s.root, sub.segs)
		if err != nil {
			continue
		}
		select {
		case sub.ch <- snap:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- snap:
			default:
			}
		}
	}
}
