package store

import (
	"context"

	"vitya-bot/model"
)

// ChatTop ranks users recorded as members of the group by power.
func (s *Store) ChatTop(ctx context.Context, groupID int64, limit int) ([]model.User, error) {
	var users []model.User
	err := s.db.WithContext(ctx).
		Select("users.*").
		Joins("JOIN group_members gm ON gm.user_id = users.user_id").
		Where("gm.group_id = ?", groupID).
		Order("users.power DESC, users.user_id").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (s *Store) GlobalTop(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	err := s.db.WithContext(ctx).
		Order("power DESC, user_id").
		Limit(limit).
		Find(&users).Error
	return users, err
}
