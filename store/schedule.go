package store

import (
	"context"

	"vitya-bot/model"

	"gorm.io/gorm/clause"
)

// ScheduleFor returns the chat's next_event_ts, creating the row with
// defaultNext when the chat has no schedule yet.
func (s *Store) ScheduleFor(ctx context.Context, chatID, defaultNext int64) (int64, error) {
	schedule := model.ChatEvent{}
	err := s.db.WithContext(ctx).
		Where(model.ChatEvent{ChatID: chatID}).
		Attrs(model.ChatEvent{NextEventTS: defaultNext}).
		FirstOrCreate(&schedule).Error
	if err != nil {
		return 0, err
	}
	return schedule.NextEventTS, nil
}

func (s *Store) NextEventAt(ctx context.Context, chatID int64) (int64, error) {
	var schedule model.ChatEvent
	if err := s.db.WithContext(ctx).First(&schedule, "chat_id = ?", chatID).Error; err != nil {
		return 0, notFound(err)
	}
	return schedule.NextEventTS, nil
}

func (s *Store) SetNextEventAt(ctx context.Context, chatID, nextEventTS int64) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"next_event_ts"}),
	}).Create(&model.ChatEvent{ChatID: chatID, NextEventTS: nextEventTS}).Error
}

// ScheduledChats lists every chat that has a schedule row.
func (s *Store) ScheduledChats(ctx context.Context) ([]int64, error) {
	var chatIDs []int64
	err := s.db.WithContext(ctx).Model(&model.ChatEvent{}).
		Order("chat_id").
		Pluck("chat_id", &chatIDs).Error
	return chatIDs, err
}
