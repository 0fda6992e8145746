// Package redisstore keeps token rows in Redis. Keys carry no TTL, so an
// expired row stays until a verification or an explicit prune removes it.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/library/internal/models"
	"github.com/Skotchmaster/library/internal/tokens"
)

const DefaultPrefix = "library:pat:"

var createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('SET', KEYS[2], ARGV[2])
return 1
`)

var deleteScript = redis.NewScript(`
local digest = redis.call('GET', KEYS[1])
if not digest then
	return 0
end
redis.call('DEL', KEYS[1])
redis.call('DEL', ARGV[1] .. digest)
return 1
`)

type record struct {
	ID            uint       `json:"id"`
	TokenableType string     `json:"tokenable_type"`
	TokenableID   uint       `json:"tokenable_id"`
	Name          string     `json:"name"`
	Token         string     `json:"token"`
	Abilities     []string   `json:"abilities"`
	ExpiresAt     *time.Time `json:"expires_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toRecord(t *models.PersonalAccessToken) record {
	return record{
		ID:            t.ID,
		TokenableType: t.TokenableType,
		TokenableID:   t.TokenableID,
		Name:          t.Name,
		Token:         t.Token,
		Abilities:     t.Abilities,
		ExpiresAt:     t.ExpiresAt,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func (r record) model() *models.PersonalAccessToken {
	return &models.PersonalAccessToken{
		ID:            r.ID,
		TokenableType: r.TokenableType,
		TokenableID:   r.TokenableID,
		Name:          r.Name,
		Token:         r.Token,
		Abilities:     r.Abilities,
		ExpiresAt:     r.ExpiresAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type Store struct {
	client *redis.Client
	prefix string
}

func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Dial connects and pings before returning a store.
func Dial(ctx context.Context, addr, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return New(client, DefaultPrefix), nil
}

func (s *Store) tokenPrefix() string { return s.prefix + "token:" }

func (s *Store) tokenKey(digest string) string { return s.tokenPrefix() + digest }

func (s *Store) idKey(id uint) string { return s.prefix + "id:" + strconv.FormatUint(uint64(id), 10) }

func (s *Store) Create(ctx context.Context, t *models.PersonalAccessToken) error {
	id, err := s.client.Incr(ctx, s.prefix+"seq").Result()
	if err != nil {
		return fmt.Errorf("redis incr: %w", err)
	}
	t.ID = uint(id)

	data, err := json.Marshal(toRecord(t))
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	created, err := createScript.Run(ctx, s.client,
		[]string{s.tokenKey(t.Token), s.idKey(t.ID)},
		data, t.Token,
	).Int()
	if err != nil {
		return fmt.Errorf("redis create: %w", err)
	}
	if created == 0 {
		return tokens.ErrDuplicateToken
	}
	return nil
}

func (s *Store) FindByToken(ctx context.Context, digest string) (*models.PersonalAccessToken, error) {
	data, err := s.client.Get(ctx, s.tokenKey(digest)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, tokens.ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return r.model(), nil
}

func (s *Store) Delete(ctx context.Context, id uint) error {
	deleted, err := deleteScript.Run(ctx, s.client, []string{s.idKey(id)}, s.tokenPrefix()).Int()
	if err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	if deleted == 0 {
		return tokens.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	iter := s.client.Scan(ctx, 0, s.tokenPrefix()+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return n, fmt.Errorf("redis get: %w", err)
		}

		var r record
		if err := json.Unmarshal(data, &r); err != nil {
			return n, fmt.Errorf("decode token: %w", err)
		}
		if !r.model().Expired(before) {
			continue
		}

		if err := s.Delete(ctx, r.ID); err != nil {
			if errors.Is(err, tokens.ErrNotFound) {
				continue
			}
			return n, err
		}
		n++
	}
	if err := iter.Err(); err != nil {
		return n, fmt.Errorf("redis scan: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
