package game

import (
	"context"
	"errors"
	"math"
	"time"

	"vitya-bot/logger"
	"vitya-bot/model"
	"vitya-bot/store"

	"github.com/sirupsen/logrus"
)

// Armer makes sure a chat has its next event timer armed.
type Armer interface {
	Ensure(ctx context.Context, chatID int64) error
}

type Player struct {
	ID        int64
	Username  string
	FirstName string
}

func (p Player) DisplayName() string {
	return model.DisplayName(p.Username, p.FirstName, p.ID)
}

// Ranking is told whenever something shown on a leaderboard changes.
type Ranking interface {
	Invalidate(ctx context.Context)
}

type Config struct {
	Cooldown time.Duration
	Boosts   []Boost
	// Ranking may be nil.
	Ranking Ranking
}

func (c Config) cooldownSeconds() int64 {
	return int64(c.Cooldown / time.Second)
}

type Engine struct {
	store    *store.Store
	rng      Random
	armer    Armer
	cfg      Config
	outcomes []Outcome
}

func NewEngine(st *store.Store, rng Random, armer Armer, cfg Config) *Engine {
	return &Engine{
		store:    st,
		rng:      rng,
		armer:    armer,
		cfg:      cfg,
		outcomes: Outcomes,
	}
}

func (e *Engine) Boosts() []Boost {
	return e.cfg.Boosts
}

// Register materializes the player, refreshing their names.
func (e *Engine) Register(ctx context.Context, p Player) error {
	changed, err := e.store.UpsertUser(ctx, &model.User{
		UserID:                    p.ID,
		Username:                  p.Username,
		FirstName:                 p.FirstName,
		PendingPowerMultiplier:    1,
		PendingCooldownMultiplier: 1,
		CooldownSeconds:           e.cfg.cooldownSeconds(),
	})
	if err != nil {
		return err
	}
	if changed {
		e.rankingChanged(ctx)
	}
	return nil
}

func (e *Engine) rankingChanged(ctx context.Context) {
	if e.cfg.Ranking != nil {
		e.cfg.Ranking.Invalidate(ctx)
	}
}

// Profile registers the player and returns their current state.
func (e *Engine) Profile(ctx context.Context, p Player) (*model.User, error) {
	if err := e.Register(ctx, p); err != nil {
		return nil, err
	}
	return e.store.User(ctx, p.ID)
}

// TouchGroup records group membership and arms the chat's event schedule.
// Failures are logged; they never fail the user's action.
func (e *Engine) TouchGroup(ctx context.Context, chatID, userID int64) {
	e.RecordMember(ctx, chatID, userID)
	e.Arm(ctx, chatID)
}

// RecordMember notes that the user has been seen in the group.
func (e *Engine) RecordMember(ctx context.Context, chatID, userID int64) {
	inserted, err := e.store.AddMember(ctx, chatID, userID)
	if err != nil {
		logger.WithFields(logrus.Fields{"chat_id": chatID, "user_id": userID}).Error("Failed to record group member: ", err)
		return
	}
	if inserted {
		e.rankingChanged(ctx)
	}
}

func (e *Engine) Arm(ctx context.Context, chatID int64) {
	if e.armer == nil {
		return
	}
	if err := e.armer.Ensure(ctx, chatID); err != nil {
		logger.WithFields(logrus.Fields{"chat_id": chatID}).Error("Failed to arm event schedule: ", err)
	}
}

type HitRequest struct {
	Player Player
	ChatID int64
	Group  bool
	Now    time.Time
}

type HitResult struct {
	Roll               Roll
	Delta              int64
	Total              int64
	PowerMultiplier    float64
	CooldownMultiplier float64
	NextCooldown       int64
}

// Boosts lists the multipliers consumed by this hit.
func (r *HitResult) Boosts() []ActiveBoost {
	return ActiveBoosts(r.PowerMultiplier, r.CooldownMultiplier)
}

// Hit performs the cooldown-gated scoring action. A rejected hit returns a
// *CooldownError and changes nothing.
func (e *Engine) Hit(ctx context.Context, req HitRequest) (*HitResult, error) {
	if err := e.Register(ctx, req.Player); err != nil {
		return nil, err
	}
	now := req.Now.Unix()

	var result *HitResult
	err := e.store.Transaction(ctx, func(tx *store.Store) error {
		user, err := tx.User(ctx, req.Player.ID)
		if err != nil {
			return err
		}
		if remaining := remainingCooldown(user, now); remaining > 0 {
			return &CooldownError{Remaining: remaining}
		}

		roll := RollOutcome(e.rng, e.outcomes)
		delta := roll.Power
		if user.PendingPowerMultiplier != 1.0 {
			delta = ApplyMultiplier(delta, user.PendingPowerMultiplier)
		}
		next := int64(float64(e.cfg.cooldownSeconds()) * user.PendingCooldownMultiplier)

		total, err := tx.ApplyHit(ctx, store.HitUpdate{
			UserID:          user.UserID,
			PrevLastHitTS:   user.LastHitTS,
			Delta:           delta,
			Now:             now,
			CooldownSeconds: next,
		})
		if errors.Is(err, store.ErrStale) {
			fresh, ferr := tx.User(ctx, req.Player.ID)
			if ferr != nil {
				return ferr
			}
			return &CooldownError{Remaining: max(remainingCooldown(fresh, now), 1)}
		}
		if err != nil {
			return err
		}

		result = &HitResult{
			Roll:               roll,
			Delta:              delta,
			Total:              total,
			PowerMultiplier:    user.PendingPowerMultiplier,
			CooldownMultiplier: user.PendingCooldownMultiplier,
			NextCooldown:       next,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.rankingChanged(ctx)

	if req.Group {
		e.TouchGroup(ctx, req.ChatID, req.Player.ID)
	}
	return result, nil
}

// Purchase buys a boost for the player's next hit.
func (e *Engine) Purchase(ctx context.Context, p Player, kind string) (*Boost, error) {
	user, err := e.Profile(ctx, p)
	if err != nil {
		return nil, err
	}

	boost := findBoost(e.cfg.Boosts, kind)
	if boost == nil {
		return nil, ErrUnknownBoost
	}
	if err := purchaseBlocked(user, boost); err != nil {
		return nil, err
	}

	ok, err := e.store.BuyBoost(ctx, p.ID, boost.Column, boost.Multiplier, boost.Cost)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race with another purchase or hit; report the current reason.
		fresh, err := e.store.User(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if err := purchaseBlocked(fresh, boost); err != nil {
			return nil, err
		}
		return nil, ErrInsufficientRespect
	}

	logger.WithFields(logrus.Fields{
		"user_id": p.ID,
		"boost":   boost.Kind,
		"cost":    boost.Cost,
	}).Debug("Boost purchased")
	return boost, nil
}

func purchaseBlocked(user *model.User, boost *Boost) error {
	pending := user.PendingPowerMultiplier
	if boost.Column == store.CooldownMultiplierColumn {
		pending = user.PendingCooldownMultiplier
	}
	if pending != 1.0 {
		return ErrBoostActive
	}
	if user.RespectPoints < boost.Cost {
		return ErrInsufficientRespect
	}
	return nil
}

type ClaimResult struct {
	Event model.Event
	Kind  *EventKind

	// Power-affecting kinds.
	Roll  Roll
	Delta int64
	Total int64

	// Cooldown kind: seconds left after the reduction.
	Remaining int64
}

// Claim redeems an event for the player at most once. Expired or missing
// events return ErrEventOver; repeated claims return ErrAlreadyClaimed.
func (e *Engine) Claim(ctx context.Context, eventID uint, p Player, now time.Time) (*ClaimResult, error) {
	if err := e.Register(ctx, p); err != nil {
		return nil, err
	}
	ts := now.Unix()

	var result *ClaimResult
	err := e.store.Transaction(ctx, func(tx *store.Store) error {
		event, err := tx.Event(ctx, eventID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrEventOver
		}
		if err != nil {
			return err
		}
		if !event.Live(ts) {
			return ErrEventOver
		}

		inserted, err := tx.AddClick(ctx, event.ID, p.ID)
		if err != nil {
			return err
		}
		if !inserted {
			return ErrAlreadyClaimed
		}

		kind := LookupEvent(event.EventType)
		result = &ClaimResult{Event: *event, Kind: kind}

		if kind.AffectsCooldown() {
			user, err := tx.User(ctx, p.ID)
			if err != nil {
				return err
			}
			remaining := remainingCooldown(user, ts)
			reduced := int64(float64(remaining) * kind.CooldownMultiplier)
			if remaining > 0 {
				if err := tx.SetLastHit(ctx, p.ID, ts-(user.CooldownSeconds-reduced)); err != nil {
					return err
				}
			}
			result.Remaining = reduced
			return nil
		}

		roll := RollOutcome(e.rng, e.outcomes)
		delta := ApplyMultiplier(roll.Power, kind.PowerMultiplier)
		total, err := tx.AddPower(ctx, p.ID, delta, 1)
		if err != nil {
			return err
		}
		result.Roll = roll
		result.Delta = delta
		result.Total = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Kind.AffectsCooldown() {
		e.rankingChanged(ctx)
	}
	return result, nil
}

// ApplyMultiplier scales power, rounding half to even.
func ApplyMultiplier(power int64, multiplier float64) int64 {
	return int64(math.RoundToEven(float64(power) * multiplier))
}

func remainingCooldown(user *model.User, now int64) int64 {
	elapsed := now - user.LastHitTS
	if elapsed >= user.CooldownSeconds {
		return 0
	}
	return user.CooldownSeconds - elapsed
}
