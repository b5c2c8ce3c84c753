// Package redis implements the store contract against a Redis instance.
// Each collection lives in one hash keyed by record id; every mutation
// publishes a change notification, and subscribers re-read the whole hash so
// each delivery is a complete snapshot.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"

	"github.com/Rajveerk82/MCD-SmartLight/internal/config"
	"github.com/Rajveerk82/MCD-SmartLight/internal/store"
)

type Store struct {
	client *redis.Client
	prefix string

	mu     sync.Mutex
	closed bool
}

// New connects to Redis and verifies the connection.
func New(cfg config.RedisConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}

	nuts.L.Infof("[Store] Connected to redis at %s:%d (db %d)", cfg.Host, cfg.Port, cfg.DB)
	return &Store{client: client, prefix: cfg.KeyPrefix}, nil
}

func (s *Store) hashKey(collection string) string {
	return s.prefix + ":" + collection
}

func (s *Store) channel(collection string) string {
	return s.prefix + ":changed:" + collection
}

func (s *Store) ReadOnce(ctx context.Context, path string) (json.RawMessage, error) {
	collection, key, err := store.SplitPath(path)
	if err != nil {
		return nil, err
	}
	raw, err := s.client.HGet(ctx, s.hashKey(collection), key).Result()
	if err == redis.Nil {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return json.RawMessage(raw), nil
}

func (s *Store) Write(ctx context.Context, path string, fields map[string]any) error {
	collection, key, err := store.SplitPath(path)
	if err != nil {
		return err
	}
	doc, err := s.mergedDoc(ctx, collection, key, fields)
	if err != nil {
		return err
	}
	if err := s.client.HSet(ctx, s.hashKey(collection), key, doc).Err(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return s.publish(ctx, collection)
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

	docs := make(map[string]string, len(byRecord))
	for id, fields := range byRecord {
		doc, err := s.mergedDoc(ctx, base, id, fields)
		if err != nil {
			return err
		}
		docs[id] = doc
	}

	// All records of the batch land in one MULTI/EXEC so a partially applied
	// batch is never observable.
	pipe := s.client.TxPipeline()
	for id, doc := range docs {
		pipe.HSet(ctx, s.hashKey(base), id, doc)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("batch write %s: %w", base, err)
	}
	return s.publish(ctx, base)
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
	if err := s.client.HSet(ctx, s.hashKey(collection), key, string(raw)).Err(); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return s.publish(ctx, collection)
}

func (s *Store) Append(ctx context.Context, path string, record any) (string, error) {
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
	hk := s.hashKey(collection)
	if err := s.client.HDel(ctx, hk, key).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	// Children live as "<key>/<child>" fields in the same hash.
	var cursor uint64
	for {
		pairs, next, err := s.client.HScan(ctx, hk, cursor, key+"/*", 100).Result()
		if err != nil {
			return fmt.Errorf("delete children of %s: %w", path, err)
		}
		fields := make([]string, 0, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			fields = append(fields, pairs[i])
		}
		if len(fields) > 0 {
			if err := s.client.HDel(ctx, hk, fields...).Err(); err != nil {
				return fmt.Errorf("delete children of %s: %w", path, err)
			}
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	return s.publish(ctx, collection)
}

// Subscribe opens a pub/sub feed for the collection. The first snapshot is
// delivered immediately; afterwards every change notification triggers a
// fresh full read, so subscribers always converge on the latest state.
func (s *Store) Subscribe(ctx context.Context, collection string) (store.Subscription, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, store.ErrClosed
	}
	s.mu.Unlock()

	pubsub := s.client.Subscribe(ctx, s.channel(collection))
	// Force the SUBSCRIBE to complete before the initial read so no change
	// between read and subscribe is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", collection, err)
	}

	sub := &subscription{
		updates: make(chan store.Snapshot, 10),
		pubsub:  pubsub,
	}

	initial, err := s.readCollection(ctx, collection)
	if err != nil {
		pubsub.Close()
		return nil, err
	}

	go sub.run(s, collection, initial)
	return sub, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}

func (s *Store) readCollection(ctx context.Context, collection string) (store.Snapshot, error) {
	all, err := s.client.HGetAll(ctx, s.hashKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", collection, err)
	}
	snap := make(store.Snapshot, len(all))
	for k, v := range all {
		snap[k] = json.RawMessage(v)
	}
	return snap, nil
}

func (s *Store) mergedDoc(ctx context.Context, collection, key string, fields map[string]any) (string, error) {
	doc := make(map[string]any)
	raw, err := s.client.HGet(ctx, s.hashKey(collection), key).Result()
	if err != nil && err != redis.Nil {
		return "", fmt.Errorf("read %s/%s: %w", collection, key, err)
	}
	if err == nil {
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			nuts.L.Warnf("[Store] Discarding unreadable record %s/%s: %v", collection, key, err)
			doc = make(map[string]any)
		}
	}
	for k, v := range fields {
		doc[k] = v
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(merged), nil
}

func (s *Store) publish(ctx context.Context, collection string) error {
	if err := s.client.Publish(ctx, s.channel(collection), "changed").Err(); err != nil {
		return fmt.Errorf("notify %s: %w", collection, err)
	}
	return nil
}

type subscription struct {
	updates   chan store.Snapshot
	pubsub    *redis.PubSub
	closeOnce sync.Once
}

func (sub *subscription) run(s *Store, collection string, initial store.Snapshot) {
	defer close(sub.updates)

	sub.deliver(initial)
	for range sub.pubsub.Channel() {
		snap, err := s.readCollection(context.Background(), collection)
		if err != nil {
			nuts.L.Errorf("[Store] Snapshot read for %s failed: %v", collection, err)
			continue
		}
		sub.deliver(snap)
	}
}

// deliver never blocks; a slow consumer loses intermediate snapshots but
// always ends up with the most recent one.
func (sub *subscription) deliver(snap store.Snapshot) {
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

func (sub *subscription) Updates() <-chan store.Snapshot {
	return sub.updates
}

func (sub *subscription) Close() error {
	var err error
	sub.closeOnce.Do(func() {
		err = sub.pubsub.Close()
	})
	return err
}
