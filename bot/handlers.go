package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vitya-bot/apperr"
	"vitya-bot/game"
	"vitya-bot/logger"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func (bot *Bot) handleStart(c telebot.Context) error {
	if c.Sender() == nil {
		return nil
	}
	ctx := context.Background()
	if err := bot.Engine.Register(ctx, playerOf(c.Sender())); err != nil {
		return bot.fail(c, err)
	}
	if isGroup(c) {
		bot.Engine.TouchGroup(ctx, c.Chat().ID, c.Sender().ID)
		return c.Send(helpText)
	}
	return c.Send(helpText, menuKeyboard)
}

func (bot *Bot) handleBeat(c telebot.Context) error {
	if c.Sender() == nil {
		return nil
	}
	ctx := context.Background()
	player := playerOf(c.Sender())

	res, err := bot.Engine.Hit(ctx, game.HitRequest{
		Player: player,
		ChatID: c.Chat().ID,
		Group:  isGroup(c),
		Now:    time.Now(),
	})
	var cooldown *game.CooldownError
	if errors.As(err, &cooldown) {
		return c.Send(cooldownText(cooldown.Remaining))
	}
	if err != nil {
		return bot.fail(c, err)
	}

	logger.WithFields(logrus.Fields{
		"user_id": player.ID,
		"chat_id": c.Chat().ID,
		"delta":   res.Delta,
		"total":   res.Total,
	}).Info("Hit")
	return c.Send(hitText(player, res))
}

func (bot *Bot) handleRep(c telebot.Context) error {
	if c.Sender() == nil {
		return nil
	}
	user, err := bot.Engine.Profile(context.Background(), playerOf(c.Sender()))
	if err != nil {
		return bot.fail(c, err)
	}
	return c.Send(respectText(user))
}

func (bot *Bot) handleShop(c telebot.Context) error {
	return c.Send(shopText(bot.Engine.Boosts()))
}

func (bot *Bot) handleBuy(c telebot.Context) error {
	if c.Sender() == nil {
		return nil
	}
	args := c.Args()
	if len(args) == 0 {
		return c.Send("Использование: /buy &lt;vodka|time&gt;")
	}

	boost, err := bot.Engine.Purchase(context.Background(), playerOf(c.Sender()), args[0])
	switch {
	case errors.Is(err, game.ErrUnknownBoost):
		return c.Send("Неизвестный буст. Доступно: vodka, time.")
	case errors.Is(err, game.ErrBoostActive):
		return c.Send("Этот буст уже активен. Используй его перед новой покупкой.")
	case errors.Is(err, game.ErrInsufficientRespect):
		return c.Send(fmt.Sprintf("Недостаточно респекта. Нужно %d.", costOf(bot.Engine.Boosts(), args[0])))
	case err != nil:
		return bot.fail(c, err)
	}
	return c.Send(fmt.Sprintf("✅ Куплен буст %s: %s на следующий удар.", boost.Kind, boost.Label+" "+formatMultiplier(boost.Multiplier)))
}

func costOf(boosts []game.Boost, kind string) int64 {
	for _, b := range boosts {
		if strings.EqualFold(b.Kind, strings.TrimSpace(kind)) {
			return b.Cost
		}
	}
	return 0
}

func (bot *Bot) handleEvent(c telebot.Context) error {
	if !isGroup(c) {
		return c.Send("Ивенты работают только в групповых чатах.")
	}
	remaining, err := bot.Sched.TimeUntilNext(context.Background(), c.Chat().ID)
	if err != nil {
		return bot.fail(c, err)
	}
	return c.Send("⏱️ До следующего ивента: " + formatCooldown(int64(remaining/time.Second)))
}

func (bot *Bot) handleTop(c telebot.Context) error {
	if !isGroup(c) {
		return c.Send("Команда работает только в группах. Используйте /global.")
	}
	ctx := context.Background()
	if c.Sender() != nil {
		bot.Engine.TouchGroup(ctx, c.Chat().ID, c.Sender().ID)
	}
	entries, err := bot.Board.Chat(ctx, c.Chat().ID)
	if err != nil {
		return bot.fail(c, err)
	}
	return c.Send(formatLeaderboard("🏆 Топ чата", entries))
}

func (bot *Bot) handleGlobal(c telebot.Context) error {
	entries, err := bot.Board.Global(context.Background())
	if err != nil {
		return bot.fail(c, err)
	}
	return c.Send(formatLeaderboard("🌍 Общий топ", entries))
}

func (bot *Bot) handleCallback(c telebot.Context) error {
	cb := c.Callback()
	if cb == nil || c.Sender() == nil {
		return nil
	}
	eventID, ok := parseEventPayload(cb.Data)
	if !ok {
		return c.Respond()
	}

	ctx := context.Background()
	player := playerOf(c.Sender())
	res, err := bot.Engine.Claim(ctx, eventID, player, time.Now())
	switch {
	case errors.Is(err, game.ErrEventOver):
		return c.Respond(&telebot.CallbackResponse{Text: "Ивент уже закончился.", ShowAlert: true})
	case errors.Is(err, game.ErrAlreadyClaimed):
		return c.Respond(&telebot.CallbackResponse{Text: "Ты уже участвовал.", ShowAlert: true})
	case err != nil:
		logger.WithFields(logrus.Fields{"event_id": eventID, "user_id": player.ID}).Error("Failed to claim event: ", err)
		return c.Respond(&telebot.CallbackResponse{Text: "Что-то пошло не так.", ShowAlert: true})
	}

	if _, err := bot.B.Send(&telebot.Chat{ID: res.Event.ChatID}, claimText(player, res)); err != nil {
		logger.WithFields(logrus.Fields{"chat_id": res.Event.ChatID, "event_id": eventID}).Warn("Failed to post claim result: ", err)
	}

	if res.Kind.AffectsCooldown() {
		return c.Respond(&telebot.CallbackResponse{Text: "Кулдаун ускорен!"})
	}
	return c.Respond(&telebot.CallbackResponse{Text: "Готово!"})
}

// handleText dispatches command aliases that telebot does not route itself,
// such as Cyrillic or mixed-case commands, and records group membership.
func (bot *Bot) handleText(c telebot.Context) error {
	if c.Sender() == nil {
		return nil
	}
	if isGroup(c) {
		bot.Engine.RecordMember(context.Background(), c.Chat().ID, c.Sender().ID)
	}

	command, ok := extractCommand(c.Text())
	if !ok {
		return nil
	}
	switch {
	case beatAliases[command]:
		return bot.handleBeat(c)
	case topAliases[command]:
		return bot.handleTop(c)
	case globalAliases[command]:
		return bot.handleGlobal(c)
	}
	return nil
}

func (bot *Bot) fail(c telebot.Context, err error) error {
	fields := logrus.Fields{"code": apperr.CodeOf(err)}
	if c.Sender() != nil {
		fields["user_id"] = c.Sender().ID
	}
	if c.Chat() != nil {
		fields["chat_id"] = c.Chat().ID
	}
	logFailure(fields, err)

	var appErr *apperr.AppError
	if apperr.IsUserFacing(err) && errors.As(err, &appErr) {
		return c.Send("Не получилось: " + escapeHTML(appErr.Message))
	}
	return c.Send("Что-то пошло не так, попробуй позже.")
}

// logFailure records a failed request. Rejections reported back to the user
// are not failures and only show up at debug level.
func logFailure(fields logrus.Fields, err error) {
	log := logger.WithFields(fields)
	if apperr.IsUserFacing(err) {
		log.Debug("Request rejected: ", err)
		return
	}
	log.Error("Request failed: ", err)
}
