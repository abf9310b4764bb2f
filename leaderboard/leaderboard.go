// Package leaderboard serves ranked power views. When a Redis client is
// configured, views are cached under a version key that Invalidate bumps
// after every power change.
package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vitya-bot/logger"
	"vitya-bot/model"
	"vitya-bot/store"

	"github.com/redis/go-redis/v9"
)

const (
	Limit      = 10
	versionKey = "leaderboard:version"
)

type Entry struct {
	Rank   int    `json:"rank"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Power  int64  `json:"power"`
}

type Service struct {
	store *store.Store
	cache *redis.Client
	ttl   time.Duration
}

// New returns a Service. cache may be nil, which disables caching.
func New(st *store.Store, cache *redis.Client, ttl time.Duration) *Service {
	return &Service{store: st, cache: cache, ttl: ttl}
}

// Chat ranks the group's recorded members. An empty slice means nobody yet.
func (s *Service) Chat(ctx context.Context, chatID int64) ([]Entry, error) {
	return s.cached(ctx, fmt.Sprintf("chat:%d", chatID), func() ([]model.User, error) {
		return s.store.ChatTop(ctx, chatID, Limit)
	})
}

func (s *Service) Global(ctx context.Context) ([]Entry, error) {
	return s.cached(ctx, "global", func() ([]model.User, error) {
		return s.store.GlobalTop(ctx, Limit)
	})
}

// Invalidate drops every cached view.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, versionKey).Err(); err != nil {
		logger.Warn("Failed to invalidate leaderboard cache: ", err)
	}
}

func (s *Service) cached(ctx context.Context, view string, load func() ([]model.User, error)) ([]Entry, error) {
	if s.cache == nil {
		users, err := load()
		if err != nil {
			return nil, err
		}
		return rank(users), nil
	}

	version, err := s.cache.Get(ctx, versionKey).Result()
	if errors.Is(err, redis.Nil) {
		version = "0"
	} else if err != nil {
		logger.Warn("Leaderboard cache unavailable: ", err)
		users, err := load()
		if err != nil {
			return nil, err
		}
		return rank(users), nil
	}

	key := fmt.Sprintf("leaderboard:%s:%s", version, view)
	if raw, err := s.cache.Get(ctx, key).Bytes(); err == nil {
		var entries []Entry
		if err := json.Unmarshal(raw, &entries); err == nil {
			return entries, nil
		}
	}

	users, err := load()
	if err != nil {
		return nil, err
	}
	entries := rank(users)
	if raw, err := json.Marshal(entries); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
			logger.Warn("Failed to cache leaderboard: ", err)
		}
	}
	return entries, nil
}

func rank(users []model.User) []Entry {
	entries := make([]Entry, 0, len(users))
	for i := range users {
		entries = append(entries, Entry{
			Rank:   i + 1,
			UserID: users[i].UserID,
			Name:   users[i].DisplayName(),
			Power:  users[i].Power,
		})
	}
	return entries
}
