package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"storebot/pkg"
)

// RedisHistory stores session history as a JSON blob per user under
// "conversation:<user>", with the TTL refreshed on access. Useful when
// history should survive restarts; the in-memory Manager stays the
// default. A keyed in-process mutex serializes the load-modify-save
// cycle per user id, matching the History contract; distinct users
// proceed in parallel.
type RedisHistory struct {
	client      *redis.Client
	ttl         time.Duration
	maxMessages int

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

type historyBlob struct {
	Messages []pkg.ConversationMessage `json:"messages"`
}

// NewRedisHistory connects to the Redis at url and verifies it with a
// ping. A ttl of zero keeps sessions without expiry.
func NewRedisHistory(ctx context.Context, url string, ttl time.Duration, maxMessages int) (*RedisHistory, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &RedisHistory{
		client:      client,
		ttl:         ttl,
		maxMessages: maxMessages,
		users:       make(map[string]*sync.Mutex),
	}, nil
}

func historyKey(userID string) string {
	return "conversation:" + userID
}

// userLock returns the mutex guarding one user's blob, creating it on
// first use.
func (r *RedisHistory) userLock(userID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock := r.users[userID]
	if lock == nil {
		lock = &sync.Mutex{}
		r.users[userID] = lock
	}
	return lock
}

func (r *RedisHistory) load(ctx context.Context, userID string) (*historyBlob, error) {
	data, err := r.client.Get(ctx, historyKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return &historyBlob{}, nil
		}
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	var blob historyBlob
	if err := sonic.Unmarshal([]byte(data), &blob); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return &blob, nil
}

func (r *RedisHistory) save(ctx context.Context, userID string, blob *historyBlob) error {
	data, err := sonic.Marshal(blob)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	return r.client.Set(ctx, historyKey(userID), data, r.ttl).Err()
}

// Append implements History. The whole read-append-write cycle runs
// under the user's lock so concurrent messages from one user never
// overwrite each other.
func (r *RedisHistory) Append(ctx context.Context, userID string, msg pkg.ConversationMessage) error {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	blob, err := r.load(ctx, userID)
	if err != nil {
		return err
	}

	msg.Seq = 1
	if n := len(blob.Messages); n > 0 {
		msg.Seq = blob.Messages[n-1].Seq + 1
	}
	blob.Messages = append(blob.Messages, msg)
	if len(blob.Messages) > r.maxMessages {
		blob.Messages = blob.Messages[len(blob.Messages)-r.maxMessages:]
	}
	return r.save(ctx, userID, blob)
}

// Snapshot implements History.
func (r *RedisHistory) Snapshot(ctx context.Context, userID string) ([]pkg.ConversationMessage, error) {
	blob, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if r.ttl > 0 {
		if err := r.client.Expire(ctx, historyKey(userID), r.ttl).Err(); err != nil {
			return nil, fmt.Errorf("failed to refresh history TTL: %w", err)
		}
	}
	return blob.Messages, nil
}

// Reset implements History. Serialized against Append so an in-flight
// save cannot resurrect a just-cleared session.
func (r *RedisHistory) Reset(ctx context.Context, userID string) error {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	return r.client.Del(ctx, historyKey(userID)).Err()
}
