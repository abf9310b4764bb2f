package model

import (
	"fmt"
	"time"
)

type User struct {
	UserID    int64 `gorm:"column:user_id;primaryKey;autoIncrement:false"` // Telegram User ID
	Username  string
	FirstName string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Game state
	Power         int64 `gorm:"not null;default:0;index"`
	LastHitTS     int64 `gorm:"column:last_hit_ts;not null;default:0"`
	RespectPoints int64 `gorm:"not null;default:0"`

	// Pending boosts, consumed by the next hit
	PendingPowerMultiplier    float64 `gorm:"not null;default:1"`
	PendingCooldownMultiplier float64 `gorm:"not null;default:1"`
	CooldownSeconds           int64   `gorm:"not null"`
}

// DisplayName prefers the @handle, then the first name.
func (u *User) DisplayName() string {
	return DisplayName(u.Username, u.FirstName, u.UserID)
}

func DisplayName(username, firstName string, userID int64) string {
	if username != "" {
		return "@" + username
	}
	if firstName != "" {
		return firstName
	}
	return fmt.Sprintf("User %d", userID)
}

type GroupMember struct {
	GroupID int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID  int64 `gorm:"primaryKey;autoIncrement:false"`
}

type Event struct {
	ID        uint   `gorm:"primaryKey"`
	ChatID    int64  `gorm:"not null;index"`
	EventType string `gorm:"not null"`
	StartTS   int64  `gorm:"column:start_ts;not null"`
	EndTS     int64  `gorm:"column:end_ts;not null;index"`
	MessageID int    // 0 until the announcement is posted
}

// Live reports whether the event can still be claimed at now (epoch seconds).
func (e *Event) Live(now int64) bool {
	return now <= e.EndTS
}

type EventClick struct {
	EventID uint  `gorm:"primaryKey;autoIncrement:false"`
	UserID  int64 `gorm:"primaryKey;autoIncrement:false"`
}

type ChatEvent struct {
	ChatID      int64 `gorm:"primaryKey;autoIncrement:false"`
	NextEventTS int64 `gorm:"column:next_event_ts;not null"`
}
