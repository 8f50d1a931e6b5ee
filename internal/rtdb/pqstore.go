package rtdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const notifyChannel = "rtdb_changed"

// PQStore keeps each top-level node ("parking", "slots", "bookings") as one
// jsonb document in Postgres. Every write re-notifies the node name on a
// LISTEN/NOTIFY channel; the listener re-reads the node and fans out to
// subscribers. Writes are atomic per operation only, matching the
// last-write-wins contract of the Store interface.
type PQStore struct {
	db       *sql.DB
	listener *pq.Listener

	mu     sync.Mutex
	subs   map[int]*pqSub
	nextID int
	done   chan struct{}
}

type pqSub struct {
	segs []string
	ch   chan Snapshot
}

func NewPQStore(databaseURL string) (*PQStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS rtdb_nodes (name text PRIMARY KEY, doc jsonb NOT NULL)`); err != nil {
		return nil, fmt.Errorf("creating rtdb_nodes table: %w", err)
	}

	listener := pq.NewListener(databaseURL, 10*time.Second, time.Minute, func(_ pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("rtdb listener event error: %v", err)
		}
	})
	if err := listener.Listen(notifyChannel); err != nil {
		return nil, fmt.Errorf("listening on %s: %w", notifyChannel, err)
	}

	s := &PQStore{
		db:       db,
		listener: listener,
		subs:     map[int]*pqSub{},
		done:     make(chan struct{}),
	}
	go s.listenLoop()
	return s, nil
}

func (s *PQStore) Close() error {
	close(s.done)
	s.listener.Close()
	return s.db.Close()
}

func (s *PQStore) Get(ctx context.Context, path string) (Snapshot, error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	doc, err := s.readNode(ctx, s.db, segs[0])
	if err != nil || doc == nil {
		return nil, err
	}
	return marshalAt(map[string]any{segs[0]: doc}, segs)
}

func (s *PQStore) Set(ctx context.Context, path string, value any) error {
	return s.write(ctx, path, func(root map[string]any, segs []string) error {
		node, err := normalize(value)
		if err != nil {
			return err
		}
		setAt(root, segs, node)
		return nil
	})
}

func (s *PQStore) Update(ctx context.Context, path string, fields map[string]any) error {
	return s.write(ctx, path, func(root map[string]any, segs []string) error {
		node, err := normalize(fields)
		if err != nil {
			return err
		}
		mergeAt(root, segs, node.(map[string]any))
		return nil
	})
}

func (s *PQStore) Push(ctx context.Context, path string, value any) (string, error) {
	key := uuid.NewString()
	err := s.write(ctx, path, func(root map[string]any, segs []string) error {
		node, err := normalize(value)
		if err != nil {
			return err
		}
		setAt(root, append(segs, key), node)
		return nil
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (s *PQStore) Subscribe(ctx context.Context, path string) (<-chan Snapshot, func(), error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, nil, err
	}
	snap, err := s.Get(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	sub := &pqSub{segs: segs, ch: make(chan Snapshot, 1)}
	sub.ch <- snap

	s.mu.Lock()
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
			select {
			case <-ctx.Done():
				stop()
			case <-s.done:
			}
		}()
	}
	return sub.ch, stop, nil
}

type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PQStore) readNode(ctx context.Context, q execer, name string) (any, error) {
	var raw []byte
	err := q.QueryRowContext(ctx, `SELECT doc FROM rtdb_nodes WHERE name = $1`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading node %q: %w", name, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding node %q: %w", name, err)
	}
	return doc, nil
}

// write runs a read-modify-write of one top-level node inside a
// transaction and notifies listeners after commit.
func (s *PQStore) write(ctx context.Context, path string, mutate func(root map[string]any, segs []string) error) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	node := segs[0]

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning write: %w", err)
	}
	defer tx.Rollback()

	// Row lock serializes writers of the same node.
	var raw []byte
	err = tx.QueryRowContext(ctx, `SELECT doc FROM rtdb_nodes WHERE name = $1 FOR UPDATE`, node).Scan(&raw)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("locking node %q: %w", node, err)
	}

	root := map[string]any{}
	if raw != nil {
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("decoding node %q: %w", node, err)
		}
		root[node] = doc
	}
	if err := mutate(root, segs); err != nil {
		return err
	}

	out, err := json.Marshal(root[node])
	if err != nil {
		return fmt.Errorf("encoding node %q: %w", node, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO rtdb_nodes (name, doc) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET doc = EXCLUDED.doc`, node, out); err != nil {
		return fmt.Errorf("writing node %q: %w", node, err)
	}
	if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, node); err != nil {
		return fmt.Errorf("notifying node %q: %w", node, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing write: %w", err)
	}
	return nil
}

func (s *PQStore) listenLoop() {
	for {
		select {
		case <-s.done:
			return
		case n := <-s.listener.Notify:
			if n == nil {
				// Connection reset; re-deliver current state to everyone.
				s.fanOut("")
				continue
			}
			s.fanOut(n.Extra)
		case <-time.After(90 * time.Second):
			if err := s.listener.Ping(); err != nil {
				log.Printf("rtdb listener ping failed: %v", err)
			}
		}
	}
}

// fanOut re-reads affected nodes and delivers coalesced snapshots. An
// empty node name means every subscription is refreshed.
func (s *PQStore) fanOut(node string) {
	s.mu.Lock()
	nodes := map[string]bool{}
	for _, sub := range s.subs {
		if node == "" || sub.segs[0] == node {
			nodes[sub.segs[0]] = true
		}
	}
	s.mu.Unlock()
	if len(nodes) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	docs := map[string]any{}
	for name := range nodes {
		doc, err := s.readNode(ctx, s.db, name)
		if err != nil {
			log.Printf("rtdb: refreshing node %q failed: %v", name, err)
			continue
		}
		docs[name] = doc
	}

	// Sends happen under the lock so a concurrent stop cannot close a
	// channel mid-delivery.
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		doc, ok := docs[sub.segs[0]]
		if !ok {
			continue
		}
		snap, err := marshalAt(map[string]any{sub.segs[0]: doc}, sub.segs)
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
