package leaderboard

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"vitya-bot/model"
	"vitya-bot/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func seed(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.Open("sqlite", filepath.Join(t.TempDir(), "lb.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close(db) })
	s := store.New(db)

	ctx := context.Background()
	users := []struct {
		user  model.User
		power int64
	}{
		{model.User{UserID: 1, Username: "vitya"}, 40},
		{model.User{UserID: 2, FirstName: "Петя"}, 15},
		{model.User{UserID: 3}, -3},
	}
	for _, u := range users {
		user := u.user
		user.PendingPowerMultiplier = 1
		user.PendingCooldownMultiplier = 1
		user.CooldownSeconds = 86400
		if _, err := s.UpsertUser(ctx, &user); err != nil {
			t.Fatalf("create user: %v", err)
		}
		if _, err := s.AddPower(ctx, user.UserID, u.power, 0); err != nil {
			t.Fatalf("add power: %v", err)
		}
	}
	return s
}

func TestGlobalRanksAllUsers(t *testing.T) {
	svc := New(seed(t), nil, 0)

	entries, err := svc.Global(context.Background())
	if err != nil {
		t.Fatalf("global: %v", err)
	}
	want := []Entry{
		{Rank: 1, UserID: 1, Name: "@vitya", Power: 40},
		{Rank: 2, UserID: 2, Name: "Петя", Power: 15},
		{Rank: 3, UserID: 3, Name: "User 3", Power: -3},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, entries[i], want[i])
		}
	}
}

func TestChatRanksMembersOnly(t *testing.T) {
	ctx := context.Background()
	s := seed(t)
	s.AddMember(ctx, -7, 2)
	s.AddMember(ctx, -7, 3)
	svc := New(s, nil, 0)

	entries, err := svc.Chat(ctx, -7)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if len(entries) != 2 || entries[0].UserID != 2 || entries[1].UserID != 3 {
		t.Fatalf("unexpected chat leaderboard %+v", entries)
	}

	empty, err := svc.Chat(ctx, -8)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v err=%v", empty, err)
	}
}

func TestGlobalIsCappedAtLimit(t *testing.T) {
	ctx := context.Background()
	s := seed(t)
	for id := int64(10); id < 25; id++ {
		s.UpsertUser(ctx, &model.User{UserID: id, PendingPowerMultiplier: 1, PendingCooldownMultiplier: 1, CooldownSeconds: 1})
	}
	svc := New(s, nil, 0)
	svc.Invalidate(ctx)

	entries, _ := svc.Global(ctx)
	if len(entries) != Limit {
		t.Fatalf("expected %d entries, got %d", Limit, len(entries))
	}
}

func TestNewRedisClientWithoutAddr(t *testing.T) {
	if NewRedisClient("", "", 0) != nil {
		t.Fatal("expected nil client when no address configured")
	}
}

func newCachedService(t *testing.T, s *store.Store) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(s, client, time.Minute), mr
}

func TestCachedChatViewRefreshesAfterInvalidate(t *testing.T) {
	ctx := context.Background()
	s := seed(t)
	s.AddMember(ctx, -1, 1)
	svc, mr := newCachedService(t, s)

	first, err := svc.Chat(ctx, -1)
	if err != nil || len(first) != 1 {
		t.Fatalf("expected one member, got %+v err=%v", first, err)
	}
	if !mr.Exists("leaderboard:0:chat:-1") {
		t.Fatalf("expected chat view cached, keys: %v", mr.Keys())
	}

	if inserted, err := s.AddMember(ctx, -1, 2); err != nil || !inserted {
		t.Fatalf("add member: inserted=%v err=%v", inserted, err)
	}
	stale, _ := svc.Chat(ctx, -1)
	if len(stale) != 1 {
		t.Fatalf("expected cached view before invalidation, got %+v", stale)
	}

	svc.Invalidate(ctx)
	fresh, err := svc.Chat(ctx, -1)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if len(fresh) != 2 || fresh[0].UserID != 1 || fresh[1].UserID != 2 {
		t.Fatalf("expected refreshed view with new member, got %+v", fresh)
	}
}

func TestCachedViewExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	s := seed(t)
	svc, mr := newCachedService(t, s)

	if _, err := svc.Global(ctx); err != nil {
		t.Fatalf("global: %v", err)
	}
	if ttl := mr.TTL("leaderboard:0:global"); ttl != time.Minute {
		t.Fatalf("expected cache ttl 1m, got %v", ttl)
	}
	mr.FastForward(2 * time.Minute)
	if mr.Exists("leaderboard:0:global") {
		t.Fatal("expected cached view to expire")
	}
}

func TestCachedViewFallsBackWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	s := seed(t)
	svc, mr := newCachedService(t, s)
	mr.Close()

	entries, err := svc.Global(ctx)
	if err != nil {
		t.Fatalf("global: %v", err)
	}
	if len(entries) != 3 || entries[0].UserID != 1 {
		t.Fatalf("expected database view, got %+v", entries)
	}
	svc.Invalidate(ctx)
}
