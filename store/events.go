package store

import (
	"context"

	"vitya-bot/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateEvent(ctx context.Context, event *model.Event) error {
	return s.db.WithContext(ctx).Create(event).Error
}

func (s *Store) SetEventMessage(ctx context.Context, eventID uint, messageID int) error {
	return s.db.WithContext(ctx).Model(&model.Event{}).
		Where("id = ?", eventID).
		Update("message_id", messageID).Error
}

func (s *Store) Event(ctx context.Context, eventID uint) (*model.Event, error) {
	var event model.Event
	if err := s.db.WithContext(ctx).First(&event, eventID).Error; err != nil {
		return nil, notFound(err)
	}
	return &event, nil
}

// LiveEvent returns the chat's event that is still claimable at now, or nil.
func (s *Store) LiveEvent(ctx context.Context, chatID, now int64) (*model.Event, error) {
	var events []model.Event
	err := s.db.WithContext(ctx).
		Where("chat_id = ? AND end_ts >= ?", chatID, now).
		Order("end_ts DESC").
		Limit(1).
		Find(&events).Error
	if err != nil || len(events) == 0 {
		return nil, err
	}
	return &events[0], nil
}

func (s *Store) Events(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	err := s.db.WithContext(ctx).Order("id").Find(&events).Error
	return events, err
}

// EventsEndedBefore lists events whose claim window closed before ts.
func (s *Store) EventsEndedBefore(ctx context.Context, ts int64) ([]model.Event, error) {
	var events []model.Event
	err := s.db.WithContext(ctx).
		Where("end_ts < ?", ts).
		Order("id").
		Find(&events).Error
	return events, err
}

// DeleteEvent removes the event and all of its claims.
func (s *Store) DeleteEvent(ctx context.Context, eventID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", eventID).Delete(&model.EventClick{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Event{}, eventID).Error
	})
}

// AddClick records the user's claim on the event. It reports false when the
// pair already exists; the primary key on (event_id, user_id) decides.
func (s *Store) AddClick(ctx context.Context, eventID uint, userID int64) (bool, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.EventClick{EventID: eventID, UserID: userID})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *Store) ClickCount(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.EventClick{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	return count, err
}
