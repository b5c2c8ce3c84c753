// Package memory provides an in-process Store used by tests and local
// development. Snapshot fan-out mirrors the behaviour of the managed store:
// subscribers get the current state immediately and a fresh full snapshot
// after every change.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	nuts "github.com/vaudience/go-nuts"

	"github.com/Rajveerk82/MCD-SmartLight/internal/store"
)

type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
	subscribers map[string][]*subscription
	closed      bool

	batchWrites int
}

type subscription struct {
	collection string
	updates    chan store.Snapshot
	store      *Store
	closeOnce  sync.Once
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		collections: make(map[string]map[string]json.RawMessage),
		subscribers: make(map[string][]*subscription),
	}
}

func (s *Store) ReadOnce(ctx context.Context, path string) (json.RawMessage, error) {
	collection, key, err := store.SplitPath(path)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	raw, ok := s.collections[collection][key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return raw, nil
}

func (s *Store) Write(ctx context.Context, path string, fields map[string]any) error {
	collection, key, err := store.SplitPath(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return store.ErrClosed
	}
	s.mergeLocked(collection, key, fields)
	snap := s.snapshotLocked(collection)
	subs := append([]*subscription(nil), s.subscribers[collection]...)
	s.mu.Unlock()

	notify(subs, snap)
	return nil
}

func (s *Store) WriteBatch(ctx context.Context, base string, updates map[string]any) error {
	byRecord := make(map[string]map[string]any)
	for rel, value := range updates {
		id, field, err := store.SplitPath(rel)
		if err != nil {
			return err
		}
		if byRecord[id] == nil {
			byRecord[id] = make(map[string]any)
		}
		byRecord[id][field] = value
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return store.ErrClosed
	}
	s.batchWrites++
	for id, fields := range byRecord {
		s.mergeLocked(base, id, fields)
	}
	snap := s.snapshotLocked(base)
	subs := append([]*subscription(nil), s.subscribers[base]...)
	s.mu.Unlock()

	notify(subs, snap)
	return nil
}

func (s *Store) Create(ctx context.Context, path string, record any) error {
	collection, key, err := store.SplitPath(path)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return store.ErrClosed
	}
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]json.RawMessage)
	}
	s.collections[collection][key] = raw
	snap := s.snapshotLocked(collection)
	subs := append([]*subscription(nil), s.subscribers[collection]...)
	s.mu.Unlock()

	notify(subs, snap)
	return nil
}

func (s *Store) Append(ctx context.Context, path string, record any) (string, error) {
	// Millisecond prefix keeps generated keys roughly chronological, the way
	// the managed store assigns push keys.
	id := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), nuts.NID("p", 6))
	if err := s.Create(ctx, path+"/"+id, record); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	collection, key, err := store.SplitPath(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return store.ErrClosed
	}
	delete(s.collections[collection], key)
	prefix := key + "/"
	for k := range s.collections[collection] {
		if strings.HasPrefix(k, prefix) {
			delete(s.collections[collection], k)
		}
	}
	snap := s.snapshotLocked(collection)
	subs := append([]*subscription(nil), s.subscribers[collection]...)
	s.mu.Unlock()

	notify(subs, snap)
	return nil
}

func (s *Store) Subscribe(ctx context.Context, collection string) (store.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	sub := &subscription{
		collection: collection,
		updates:    make(chan store.Snapshot, 10),
		store:      s,
	}
	s.subscribers[collection] = append(s.subscribers[collection], sub)
	// First delivery carries the current state.
	sub.updates <- s.snapshotLocked(collection)
	return sub, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	var subs []*subscription
	for _, list := range s.subscribers {
		subs = append(subs, list...)
	}
	s.subscribers = make(map[string][]*subscription)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.closeOnce.Do(func() { close(sub.updates) })
	}
	return nil
}

// BatchWrites reports how many WriteBatch calls the store has served.
func (s *Store) BatchWrites() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batchWrites
}

func (s *Store) mergeLocked(collection, key string, fields map[string]any) {
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]json.RawMessage)
	}
	doc := make(map[string]any)
	if raw, ok := s.collections[collection][key]; ok {
		json.Unmarshal(raw, &doc)
	}
	for k, v := range fields {
		doc[k] = v
	}
	raw, _ := json.Marshal(doc)
	s.collections[collection][key] = raw
}

func (s *Store) snapshotLocked(collection string) store.Snapshot {
	snap := make(store.Snapshot, len(s.collections[collection]))
	for k, v := range s.collections[collection] {
		snap[k] = v
	}
	return snap
}

// notify delivers a snapshot without blocking. A slow subscriber loses
// intermediate snapshots, never the most recent one.
func notify(subs []*subscription, snap store.Snapshot) {
	for _, sub := range subs {
		select {
		case sub.updates <- snap:
		default:
			select {
			case <-sub.updates:
			default:
			}
			select {
			case sub.updates <- snap:
			default:
			}
		}
	}
}

func (sub *subscription) Updates() <-chan store.Snapshot {
	return sub.updates
}

func (sub *subscription) Close() error {
	s := sub.store
	s.mu.Lock()
	list := s.subscribers[sub.collection]
	for i, candidate := range list {
		if candidate == sub {
			s.subscribers[sub.collection] = append(list[:i], list[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	sub.closeOnce.Do(func() { close(sub.updates) })
	return nil
}
