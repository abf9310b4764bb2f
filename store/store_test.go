package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"vitya-bot/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open("sqlite", filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { Close(db) })
	return New(db)
}

func newUser(id int64) *model.User {
	return &model.User{
		UserID:                    id,
		Username:                  "user",
		PendingPowerMultiplier:    1,
		PendingCooldownMultiplier: 1,
		CooldownSeconds:           86400,
	}
}

func TestUpsertUserKeepsGameState(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if changed, err := s.UpsertUser(ctx, newUser(1)); err != nil || !changed {
		t.Fatalf("expected new user reported, got changed=%v err=%v", changed, err)
	}
	if _, err := s.AddPower(ctx, 1, 12, 3); err != nil {
		t.Fatalf("add power: %v", err)
	}

	if changed, err := s.UpsertUser(ctx, newUser(1)); err != nil || changed {
		t.Fatalf("expected unchanged repeat upsert, got changed=%v err=%v", changed, err)
	}

	renamed := newUser(1)
	renamed.Username = "vitya"
	renamed.FirstName = "Витя"
	if changed, err := s.UpsertUser(ctx, renamed); err != nil || !changed {
		t.Fatalf("expected rename reported, got changed=%v err=%v", changed, err)
	}

	user, err := s.User(ctx, 1)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Username != "vitya" || user.FirstName != "Витя" {
		t.Fatalf("expected refreshed names, got %q/%q", user.Username, user.FirstName)
	}
	if user.Power != 12 || user.RespectPoints != 3 {
		t.Fatalf("expected power 12 respect 3, got %d/%d", user.Power, user.RespectPoints)
	}
}

func TestUserNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.User(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyHitConsumesBoostsAndGuardsLastHit(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	user := newUser(7)
	if _, err := s.UpsertUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if ok, err := s.BuyBoost(ctx, 7, PowerMultiplierColumn, 2.0, 0); err != nil || !ok {
		t.Fatalf("buy boost: ok=%v err=%v", ok, err)
	}

	total, err := s.ApplyHit(ctx, HitUpdate{UserID: 7, PrevLastHitTS: 0, Delta: 16, Now: 1000, CooldownSeconds: 43200})
	if err != nil {
		t.Fatalf("apply hit: %v", err)
	}
	if total != 16 {
		t.Fatalf("expected total 16, got %d", total)
	}

	got, _ := s.User(ctx, 7)
	if got.LastHitTS != 1000 || got.CooldownSeconds != 43200 || got.RespectPoints != 1 {
		t.Fatalf("unexpected user after hit: %+v", got)
	}
	if got.PendingPowerMultiplier != 1 || got.PendingCooldownMultiplier != 1 {
		t.Fatalf("expected boosts consumed, got %v/%v", got.PendingPowerMultiplier, got.PendingCooldownMultiplier)
	}

	_, err = s.ApplyHit(ctx, HitUpdate{UserID: 7, PrevLastHitTS: 0, Delta: 5, Now: 1001, CooldownSeconds: 86400})
	if !errors.Is(err, ErrStale) {
		t.Fatalf("expected stale guard to reject second hit, got %v", err)
	}
}

func TestBuyBoostGuards(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	if _, err := s.UpsertUser(ctx, newUser(3)); err != nil {
		t.Fatalf("create user: %v", err)
	}

	ok, err := s.BuyBoost(ctx, 3, CooldownMultiplierColumn, 0.5, 5)
	if err != nil || ok {
		t.Fatalf("expected empty balance to refuse purchase, ok=%v err=%v", ok, err)
	}

	if _, err := s.AddPower(ctx, 3, 0, 10); err != nil {
		t.Fatalf("add respect: %v", err)
	}
	if ok, _ := s.BuyBoost(ctx, 3, CooldownMultiplierColumn, 0.5, 5); !ok {
		t.Fatal("expected purchase with balance 10 to succeed")
	}
	if ok, _ := s.BuyBoost(ctx, 3, CooldownMultiplierColumn, 0.5, 5); ok {
		t.Fatal("expected second purchase on same axis to be refused")
	}

	user, _ := s.User(ctx, 3)
	if user.RespectPoints != 5 {
		t.Fatalf("expected balance 5, got %d", user.RespectPoints)
	}
	if user.PendingPowerMultiplier != 1 {
		t.Fatalf("expected untouched power multiplier, got %v", user.PendingPowerMultiplier)
	}
}

func TestAddClickIsAtMostOnce(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	first, err := s.AddClick(ctx, 1, 9)
	if err != nil || !first {
		t.Fatalf("expected first click to insert, ok=%v err=%v", first, err)
	}
	second, err := s.AddClick(ctx, 1, 9)
	if err != nil {
		t.Fatalf("second click: %v", err)
	}
	if second {
		t.Fatal("expected duplicate click to be refused")
	}
	other, _ := s.AddClick(ctx, 1, 10)
	if !other {
		t.Fatal("expected another user to claim")
	}
}

func TestDeleteEventRemovesClicks(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	event := &model.Event{ChatID: -100, EventType: "fight", StartTS: 0, EndTS: 300}
	if err := s.CreateEvent(ctx, event); err != nil {
		t.Fatalf("create event: %v", err)
	}
	if _, err := s.AddClick(ctx, event.ID, 1); err != nil {
		t.Fatalf("add click: %v", err)
	}
	if err := s.DeleteEvent(ctx, event.ID); err != nil {
		t.Fatalf("delete event: %v", err)
	}
	if _, err := s.Event(ctx, event.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected event gone, got %v", err)
	}
	if n, _ := s.ClickCount(ctx, event.ID); n != 0 {
		t.Fatalf("expected clicks gone, got %d", n)
	}
}

func TestLiveEvent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.CreateEvent(ctx, &model.Event{ChatID: -1, EventType: "women", StartTS: 0, EndTS: 300}); err != nil {
		t.Fatalf("create event: %v", err)
	}

	live, err := s.LiveEvent(ctx, -1, 300)
	if err != nil || live == nil {
		t.Fatalf("expected live event at end_ts, got %v err=%v", live, err)
	}
	live, err = s.LiveEvent(ctx, -1, 301)
	if err != nil || live != nil {
		t.Fatalf("expected no live event after end_ts, got %v err=%v", live, err)
	}
	if live, _ := s.LiveEvent(ctx, -2, 0); live != nil {
		t.Fatal("expected other chat to have no live event")
	}
}

func TestScheduleForCreatesOnce(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	next, err := s.ScheduleFor(ctx, -5, 1000)
	if err != nil || next != 1000 {
		t.Fatalf("expected initialized schedule 1000, got %d err=%v", next, err)
	}
	next, _ = s.ScheduleFor(ctx, -5, 9999)
	if next != 1000 {
		t.Fatalf("expected existing schedule to be kept, got %d", next)
	}

	if err := s.SetNextEventAt(ctx, -5, 2000); err != nil {
		t.Fatalf("set next: %v", err)
	}
	if got, _ := s.NextEventAt(ctx, -5); got != 2000 {
		t.Fatalf("expected 2000, got %d", got)
	}

	chats, err := s.ScheduledChats(ctx)
	if err != nil || len(chats) != 1 || chats[0] != -5 {
		t.Fatalf("unexpected scheduled chats %v err=%v", chats, err)
	}
}

func TestChatTopOnlyCountsMembers(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for id, power := range map[int64]int64{1: 5, 2: 50, 3: -4} {
		if _, err := s.UpsertUser(ctx, newUser(id)); err != nil {
			t.Fatalf("create user: %v", err)
		}
		if _, err := s.AddPower(ctx, id, power, 0); err != nil {
			t.Fatalf("add power: %v", err)
		}
	}
	for _, m := range []struct {
		user     int64
		inserted bool
	}{{1, true}, {3, true}, {3, false}} {
		inserted, err := s.AddMember(ctx, -10, m.user)
		if err != nil {
			t.Fatalf("add member: %v", err)
		}
		if inserted != m.inserted {
			t.Fatalf("AddMember(-10, %d) inserted=%v, want %v", m.user, inserted, m.inserted)
		}
	}

	top, err := s.ChatTop(ctx, -10, 10)
	if err != nil {
		t.Fatalf("chat top: %v", err)
	}
	if len(top) != 2 || top[0].UserID != 1 || top[1].UserID != 3 {
		t.Fatalf("unexpected chat top %+v", top)
	}

	global, _ := s.GlobalTop(ctx, 10)
	if len(global) != 3 || global[0].UserID != 2 {
		t.Fatalf("unexpected global top %+v", global)
	}

	empty, _ := s.ChatTop(ctx, -99, 10)
	if len(empty) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v", empty)
	}
}
