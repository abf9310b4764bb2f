package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vitya-bot/bot"
	"vitya-bot/config"
	"vitya-bot/game"
	"vitya-bot/leaderboard"
	"vitya-bot/logger"
	"vitya-bot/scheduler"
	"vitya-bot/store"
	"vitya-bot/web"

	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: ", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := store.Open(cfg.DBDriver, cfg.DBPath)
	if err != nil {
		logger.Fatal("Failed to open database: ", err)
	}
	defer store.Close(db)
	st := store.New(db)

	tb, err := bot.NewTelebot(cfg.BotToken)
	if err != nil {
		logger.Fatal("Failed to connect to Telegram: ", err)
	}

	rng := game.NewSeededRandom()
	c := cron.New()

	sched := scheduler.New(st, scheduler.NewCronTimer(c), bot.NewAnnouncer(tb, cfg.EventDuration()), rng, scheduler.Config{
		Interval: cfg.EventInterval(),
		Duration: cfg.EventDuration(),
	})
	board := leaderboard.New(st, leaderboard.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.CacheTTL())
	engine := game.NewEngine(st, rng, sched, game.Config{
		Cooldown: cfg.Cooldown(),
		Boosts:   game.DefaultBoosts(cfg.VodkaCost, cfg.TimeCost),
		Ranking:  board,
	})
	b := bot.NewBot(tb, engine, sched, board)

	if _, err := c.AddFunc(cfg.SweepCron, sched.Sweep); err != nil {
		logger.Fatal("Invalid sweep schedule: ", err)
	}
	c.Start()

	// Re-arm chats and reconcile events left over from the last run.
	// The cron must already be running so overdue timers fire.
	if err := sched.Restore(context.Background()); err != nil {
		logger.Error("Failed to restore event schedules: ", err)
	}

	var srv *http.Server
	if cfg.HTTPAddr != "" {
		e := web.NewServer(board)
		srv = &http.Server{Addr: cfg.HTTPAddr, Handler: e}
		go func() {
			logger.Info("Leaderboard API listening on ", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Leaderboard API stopped: ", err)
			}
		}()
	}

	go func() {
		logger.Info("Bot started...")
		b.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	b.Stop()
	<-c.Stop().Done()

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Leaderboard API shutdown failed: ", err)
		}
	}
}
