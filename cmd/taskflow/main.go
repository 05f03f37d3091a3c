// Package main contains the entrypoint for the TaskFlow Telegram bot.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/redis/go-redis/v9"

	"github.com/edgard/taskflowbot/internal/bot"
	"github.com/edgard/taskflowbot/internal/bot/handlers"
	"github.com/edgard/taskflowbot/internal/bot/tasks"
	"github.com/edgard/taskflowbot/internal/config"
	"github.com/edgard/taskflowbot/internal/database"
	"github.com/edgard/taskflowbot/internal/dispatch"
	"github.com/edgard/taskflowbot/internal/logger"
	"github.com/edgard/taskflowbot/internal/session"
	"github.com/edgard/taskflowbot/internal/telegram"
	"github.com/edgard/taskflowbot/internal/wizard"

	_ "time/tzdata"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires config, logger, database, sessions, router, Telegram bot and
// scheduler, then blocks until shutdown. It returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	loc, err := cfg.Location()
	if err != nil {
		log.Error("Invalid timezone", "timezone", cfg.Timezone, "error", err)
		return 1
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log, database.WithLocation(loc))

	sessions, closeSessions, err := newSessionRepository(ctx, cfg.Session, log)
	if err != nil {
		log.Error("Failed to initialize session storage", "backend", cfg.Session.Backend, "error", err)
		return 1
	}
	defer closeSessions()

	wiz := wizard.New(sessions, store, log, wizard.WithLocation(loc))
	queries := dispatch.NewQueries(store, dispatch.Messages{
		Welcome:      cfg.Messages.Welcome,
		Help:         cfg.Messages.Help,
		GeneralError: cfg.Messages.GeneralError,
		Settings:     cfg.Messages.Settings,
	}, log)
	router := dispatch.NewTaskRouter(sessions, wiz, queries, log)

	hDeps := handlers.HandlerDeps{
		Logger: log,
		Config: cfg,
		Router: router,
	}
	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewDefaultHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	if _, err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.SetCommands(ctx, tg, handlers.BotCommands()); err != nil {
		log.Warn("Failed to publish command menu", "error", err)
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps), loc)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	app := bot.NewBot(log, store, tg, sched)

	log.Info("Starting bot...", "routes", len(router.Routes()))
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}

// newSessionRepository builds the configured session backend and returns a
// function that releases it.
func newSessionRepository(ctx context.Context, cfg config.SessionConfig, log *slog.Logger) (session.Repository, func(), error) {
	switch cfg.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		repo := session.NewRedisRepository(client, cfg.KeyPrefix, cfg.TTL)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := repo.Ping(pingCtx); err != nil {
			_ = repo.Close()
			return nil, nil, fmt.Errorf("redis at %s: %w", cfg.Redis.Addr, err)
		}

		log.Info("Using redis session storage", "addr", cfg.Redis.Addr, "prefix", cfg.KeyPrefix, "ttl", cfg.TTL)
		return repo, func() {
			if err := repo.Close(); err != nil {
				log.Error("Failed to close redis client", "error", err)
			}
		}, nil

	default:
		log.Info("Using in-memory session storage")
		return session.NewMemoryRepository(), func() {}, nil
	}
}
