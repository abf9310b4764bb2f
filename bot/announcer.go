package bot

import (
	"context"
	"strconv"
	"time"

	"vitya-bot/apperr"
	"vitya-bot/game"

	"gopkg.in/telebot.v3"
)

// Announcer posts event announcements with a claim button.
type Announcer struct {
	B        *telebot.Bot
	duration time.Duration
}

func NewAnnouncer(b *telebot.Bot, duration time.Duration) *Announcer {
	return &Announcer{B: b, duration: duration}
}

func (a *Announcer) Announce(_ context.Context, chatID int64, kind *game.EventKind, eventID uint) (int, error) {
	markup := &telebot.ReplyMarkup{
		InlineKeyboard: [][]telebot.InlineButton{{
			{Text: kind.ButtonText, Data: eventPayload(eventID)},
		}},
	}
	msg, err := a.B.Send(&telebot.Chat{ID: chatID}, announcementText(kind, int64(a.duration/time.Minute)), markup)
	if err != nil {
		return 0, apperr.New(apperr.CodeTransport, "send announcement", err)
	}
	return msg.ID, nil
}

func (a *Announcer) Retract(_ context.Context, chatID int64, messageID int) error {
	err := a.B.Delete(telebot.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID})
	if err != nil {
		return apperr.New(apperr.CodeTransport, "delete announcement", err)
	}
	return nil
}
