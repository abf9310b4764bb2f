// Package scheduler raises timed events in group chats.
//
// Each chat cycles Idle -> Armed -> Live -> Expiring -> Armed. The durable part
// of the cycle is the chat's next_event_ts row; whether a raise timer is
// currently armed is tracked in memory per chat, so Ensure can be called from
// every user action and after a restart.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"vitya-bot/game"
	"vitya-bot/logger"
	"vitya-bot/model"
	"vitya-bot/store"

	"github.com/sirupsen/logrus"
)

// sweepGrace keeps the periodic sweep from racing an expiry timer that is due.
const sweepGrace = time.Minute

// Announcer posts and removes event announcements in a chat.
type Announcer interface {
	Announce(ctx context.Context, chatID int64, kind *game.EventKind, eventID uint) (int, error)
	Retract(ctx context.Context, chatID int64, messageID int) error
}

type Config struct {
	Interval time.Duration
	Duration time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type Scheduler struct {
	store     *store.Store
	timer     Timer
	announcer Announcer
	rng       game.Random
	interval  time.Duration
	duration  time.Duration
	now       func() time.Time

	mu    sync.Mutex
	armed map[int64]bool
}

func New(st *store.Store, timer Timer, announcer Announcer, rng game.Random, cfg Config) *Scheduler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		store:     st,
		timer:     timer,
		announcer: announcer,
		rng:       rng,
		interval:  cfg.Interval,
		duration:  cfg.Duration,
		now:       now,
		armed:     make(map[int64]bool),
	}
}

// Armed reports whether a raise timer is pending for the chat.
func (s *Scheduler) Armed(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed[chatID]
}

// Ensure arms the chat's raise timer unless one is already pending. A chat
// without a schedule row gets one at now + interval.
func (s *Scheduler) Ensure(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	if s.armed[chatID] {
		s.mu.Unlock()
		return nil
	}
	s.armed[chatID] = true
	s.mu.Unlock()

	now := s.now()
	next, err := s.store.ScheduleFor(ctx, chatID, now.Add(s.interval).Unix())
	if err != nil {
		s.disarm(chatID)
		return err
	}

	delay := time.Unix(next, 0).Sub(now)
	if delay < time.Second {
		delay = time.Second
	}
	s.timer.Once(now.Add(delay), func() { s.fire(chatID) })

	logger.WithFields(logrus.Fields{
		"chat_id": chatID,
		"delay":   delay.String(),
	}).Debug("Event timer armed")
	return nil
}

func (s *Scheduler) disarm(chatID int64) {
	s.mu.Lock()
	delete(s.armed, chatID)
	s.mu.Unlock()
}

// fire runs one raise cycle, advances the schedule and re-arms.
func (s *Scheduler) fire(chatID int64) {
	ctx := context.Background()
	now := s.now()
	log := logger.WithFields(logrus.Fields{"chat_id": chatID})

	if _, err := s.Raise(ctx, chatID, now); err != nil {
		log.Error("Failed to raise event: ", err)
	}
	if err := s.store.SetNextEventAt(ctx, chatID, now.Add(s.interval).Unix()); err != nil {
		log.Error("Failed to advance event schedule: ", err)
	}
	// Stay armed until the schedule has advanced so a concurrent Ensure
	// cannot arm a second raise against the old next_event_ts.
	s.disarm(chatID)
	if err := s.Ensure(ctx, chatID); err != nil {
		log.Error("Failed to re-arm event schedule: ", err)
	}
}

// Raise creates and announces a random event in the chat and arms its expiry.
// It returns nil without posting when the chat already has a live event.
func (s *Scheduler) Raise(ctx context.Context, chatID int64, now time.Time) (*model.Event, error) {
	live, err := s.store.LiveEvent(ctx, chatID, now.Unix())
	if err != nil {
		return nil, err
	}
	if live != nil {
		logger.WithFields(logrus.Fields{
			"chat_id":  chatID,
			"event_id": live.ID,
		}).Warn("Skipping event, previous one is still live")
		return nil, nil
	}

	kind := game.PickEvent(s.rng)
	event := &model.Event{
		ChatID:    chatID,
		EventType: kind.Type,
		StartTS:   now.Unix(),
		EndTS:     now.Add(s.duration).Unix(),
	}
	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	messageID, err := s.announcer.Announce(ctx, chatID, kind, event.ID)
	if err != nil {
		if derr := s.store.DeleteEvent(ctx, event.ID); derr != nil {
			return nil, errors.Join(err, derr)
		}
		return nil, err
	}
	event.MessageID = messageID
	if err := s.store.SetEventMessage(ctx, event.ID, messageID); err != nil {
		return nil, err
	}

	eventID := event.ID
	s.timer.Once(now.Add(s.duration), func() {
		if err := s.Expire(context.Background(), chatID, eventID, messageID); err != nil {
			logger.WithFields(logrus.Fields{"chat_id": chatID, "event_id": eventID}).
				Error("Failed to clean up event: ", err)
		}
	})

	logger.WithFields(logrus.Fields{
		"chat_id":    chatID,
		"event_id":   event.ID,
		"event_type": kind.Type,
	}).Info("Event raised")
	return event, nil
}

// Expire retracts the announcement (best effort) and deletes the event with
// its claims.
func (s *Scheduler) Expire(ctx context.Context, chatID int64, eventID uint, messageID int) error {
	if messageID != 0 {
		if err := s.announcer.Retract(ctx, chatID, messageID); err != nil {
			logger.WithFields(logrus.Fields{
				"chat_id":    chatID,
				"message_id": messageID,
			}).Debug("Announcement not removed: ", err)
		}
	}
	return s.store.DeleteEvent(ctx, eventID)
}

// TimeUntilNext arms the chat and returns the time left until its next event.
func (s *Scheduler) TimeUntilNext(ctx context.Context, chatID int64) (time.Duration, error) {
	if err := s.Ensure(ctx, chatID); err != nil {
		return 0, err
	}
	next, err := s.store.NextEventAt(ctx, chatID)
	if err != nil {
		return 0, err
	}
	remaining := time.Unix(next, 0).Sub(s.now())
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Restore re-arms every chat that has a schedule and reconciles events left
// over from a previous run: expired ones are cleaned up, live ones get their
// expiry timer back.
func (s *Scheduler) Restore(ctx context.Context) error {
	chatIDs, err := s.store.ScheduledChats(ctx)
	if err != nil {
		return err
	}
	for _, chatID := range chatIDs {
		if err := s.Ensure(ctx, chatID); err != nil {
			return err
		}
	}

	events, err := s.store.Events(ctx)
	if err != nil {
		return err
	}
	now := s.now().Unix()
	for _, event := range events {
		ev := event
		if !ev.Live(now) {
			if err := s.Expire(ctx, ev.ChatID, ev.ID, ev.MessageID); err != nil {
				return err
			}
			continue
		}
		s.timer.Once(time.Unix(ev.EndTS, 0), func() {
			if err := s.Expire(context.Background(), ev.ChatID, ev.ID, ev.MessageID); err != nil {
				logger.WithFields(logrus.Fields{"event_id": ev.ID}).Error("Failed to clean up event: ", err)
			}
		})
	}

	logger.WithFields(logrus.Fields{
		"chats":  len(chatIDs),
		"events": len(events),
	}).Info("Event schedules restored")
	return nil
}

// Sweep deletes events whose expiry timer should have fired long ago.
func (s *Scheduler) Sweep() {
	ctx := context.Background()
	events, err := s.store.EventsEndedBefore(ctx, s.now().Add(-sweepGrace).Unix())
	if err != nil {
		logger.Error("Failed to list stale events: ", err)
		return
	}
	for _, ev := range events {
		if err := s.Expire(ctx, ev.ChatID, ev.ID, ev.MessageID); err != nil {
			logger.WithFields(logrus.Fields{"event_id": ev.ID}).Error("Failed to sweep event: ", err)
		}
	}
}
