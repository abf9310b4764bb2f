package bot

import (
	"time"

	"vitya-bot/game"
	"vitya-bot/leaderboard"
	"vitya-bot/scheduler"

	"gopkg.in/telebot.v3"
)

type Bot struct {
	B      *telebot.Bot
	Engine *game.Engine
	Sched  *scheduler.Scheduler
	Board  *leaderboard.Service
}

// Keyboards
var (
	// Private chat menu
	menuBtnBeat   = telebot.Btn{Text: "🥊 Ударить"}
	menuBtnRep    = telebot.Btn{Text: "🪙 Респект"}
	menuBtnShop   = telebot.Btn{Text: "🛒 Магазин"}
	menuBtnGlobal = telebot.Btn{Text: "🌍 Общий топ"}
	menuKeyboard  = &telebot.ReplyMarkup{ResizeKeyboard: true}
)

func init() {
	menuKeyboard.Reply(
		menuKeyboard.Row(menuBtnBeat),
		menuKeyboard.Row(menuBtnRep, menuBtnShop),
		menuKeyboard.Row(menuBtnGlobal),
	)
}

// NewTelebot connects to the Bot API with long polling.
func NewTelebot(token string) (*telebot.Bot, error) {
	return telebot.NewBot(telebot.Settings{
		Token: token,
		Poller: &telebot.LongPoller{
			Timeout:        10 * time.Second,
			AllowedUpdates: []string{"message", "callback_query"},
		},
		ParseMode: telebot.ModeHTML,
	})
}

func NewBot(b *telebot.Bot, engine *game.Engine, sched *scheduler.Scheduler, board *leaderboard.Service) *Bot {
	bot := &Bot{
		B:      b,
		Engine: engine,
		Sched:  sched,
		Board:  board,
	}
	bot.registerHandlers()
	return bot
}

func (bot *Bot) Start() {
	bot.B.Start()
}

func (bot *Bot) Stop() {
	bot.B.Stop()
}

func (bot *Bot) registerHandlers() {
	// Commands
	bot.handleAll(bot.handleStart, "/start", "/help")
	bot.handleAll(bot.handleBeat, "/beat", "/hit")
	bot.B.Handle("/rep", bot.handleRep)
	bot.B.Handle("/shop", bot.handleShop)
	bot.B.Handle("/buy", bot.handleBuy)
	bot.B.Handle("/event", bot.handleEvent)
	bot.handleAll(bot.handleTop, "/top", "/leaderboard")
	bot.handleAll(bot.handleGlobal, "/global", "/all", "/globaltop")

	// Menu Buttons
	bot.B.Handle(&menuBtnBeat, bot.handleBeat)
	bot.B.Handle(&menuBtnRep, bot.handleRep)
	bot.B.Handle(&menuBtnShop, bot.handleShop)
	bot.B.Handle(&menuBtnGlobal, bot.handleGlobal)

	// Event buttons carry raw "event:<id>" payloads
	bot.B.Handle(telebot.OnCallback, bot.handleCallback)

	// Aliases and membership tracking
	bot.B.Handle(telebot.OnText, bot.handleText)
}

func (bot *Bot) handleAll(h telebot.HandlerFunc, commands ...string) {
	for _, cmd := range commands {
		bot.B.Handle(cmd, h)
	}
}

func isGroup(c telebot.Context) bool {
	chat := c.Chat()
	return chat != nil && (chat.Type == telebot.ChatGroup || chat.Type == telebot.ChatSuperGroup)
}

func playerOf(u *telebot.User) game.Player {
	return game.Player{ID: u.ID, Username: u.Username, FirstName: u.FirstName}
}
