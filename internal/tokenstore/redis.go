// Copyright 2025 The SpeechScribe Authors
// Licensed under the EUPL-1.2

package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "magic_link:"

// RedisStore is a Store backed by a Redis server. Expiry is enforced by
// Redis itself (SET with EX), and Consume maps to GETDEL, which is atomic on
// the server.
type RedisStore struct {
	client *redis.Client
}

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) key(token string) string {
	return keyPrefix + hashToken(token)
}

// Put stores the token→email association with the given TTL.
func (s *RedisStore) Put(ctx context.Context, token, email string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(token), email, ttl).Err(); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}
	return nil
}

// Get returns the email for a live token.
func (s *RedisStore) Get(ctx context.Context, token string) (string, error) {
	email, err := s.client.Get(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting token: %w", err)
	}
	return email, nil
}

// Delete removes a token. Absent tokens are a no-op.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	return nil
}

// Consume fetches and deletes the token in a single GETDEL round-trip, so
// two racing verifications cannot both succeed.
func (s *RedisStore) Consume(ctx context.Context, token string) (string, error) {
	email, err := s.client.GetDel(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("consuming token: %w", err)
	}
	return email, nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
