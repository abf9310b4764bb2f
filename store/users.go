package store

import (
	"context"
	"errors"
	"time"

	"vitya-bot/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Columns holding the pending boost multipliers.
const (
	PowerMultiplierColumn    = "pending_power_multiplier"
	CooldownMultiplierColumn = "pending_cooldown_multiplier"
)

// UpsertUser creates the user or refreshes the handle and first name, and
// reports whether anything visible on a leaderboard changed. Game fields of
// an existing user are left untouched.
func (s *Store) UpsertUser(ctx context.Context, user *model.User) (bool, error) {
	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.User
		err := tx.Select("user_id", "username", "first_name").
			First(&existing, "user_id = ?", user.UserID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(user)
			changed = result.RowsAffected > 0
			return result.Error
		}
		if err != nil {
			return err
		}
		if existing.Username == user.Username && existing.FirstName == user.FirstName {
			return nil
		}
		changed = true
		return tx.Model(&model.User{}).
			Where("user_id = ?", user.UserID).
			Updates(map[string]interface{}{
				"username":   user.Username,
				"first_name": user.FirstName,
				"updated_at": time.Now(),
			}).Error
	})
	return changed, err
}

func (s *Store) User(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, "user_id = ?", userID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

type HitUpdate struct {
	UserID          int64
	PrevLastHitTS   int64 // guard: the value the cooldown check was made against
	Delta           int64
	Now             int64
	CooldownSeconds int64
}

// ApplyHit records a successful hit, consumes both pending boosts and returns
// the new total power. It fails with ErrStale when last_hit_ts moved since the
// cooldown check.
func (s *Store) ApplyHit(ctx context.Context, upd HitUpdate) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ? AND last_hit_ts = ?", upd.UserID, upd.PrevLastHitTS).
		Updates(map[string]interface{}{
			"power":                  gorm.Expr("power + ?", upd.Delta),
			"last_hit_ts":            upd.Now,
			"cooldown_seconds":       upd.CooldownSeconds,
			"respect_points":         gorm.Expr("respect_points + ?", 1),
			PowerMultiplierColumn:    1.0,
			CooldownMultiplierColumn: 1.0,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrStale
	}
	return s.power(ctx, upd.UserID)
}

// AddPower adds to power and respect without touching cooldown or boosts.
func (s *Store) AddPower(ctx context.Context, userID, delta, respect int64) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"power":          gorm.Expr("power + ?", delta),
			"respect_points": gorm.Expr("respect_points + ?", respect),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return s.power(ctx, userID)
}

func (s *Store) SetLastHit(ctx context.Context, userID, lastHitTS int64) error {
	return s.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("last_hit_ts", lastHitTS).Error
}

// BuyBoost debits cost and sets the multiplier column in one statement. It
// reports false, without changing anything, when the balance does not cover
// the cost or a boost on that column is already pending.
func (s *Store) BuyBoost(ctx context.Context, userID int64, column string, multiplier float64, cost int64) (bool, error) {
	result := s.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ? AND respect_points >= ? AND "+column+" = ?", userID, cost, 1.0).
		Updates(map[string]interface{}{
			"respect_points": gorm.Expr("respect_points - ?", cost),
			column:           multiplier,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// AddMember records that the user was active in the group and reports
// whether this is the first time. Repeats are no-ops.
func (s *Store) AddMember(ctx context.Context, groupID, userID int64) (bool, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.GroupMember{GroupID: groupID, UserID: userID})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) power(ctx context.Context, userID int64) (int64, error) {
	var power int64
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", userID).
		Select("power").
		Scan(&power).Error
	return power, err
}
