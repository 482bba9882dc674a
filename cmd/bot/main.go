package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/aliskhannn/examprep-bot/internal/api"
	"github.com/aliskhannn/examprep-bot/internal/config"
	ophttp "github.com/aliskhannn/examprep-bot/internal/delivery/http"
	"github.com/aliskhannn/examprep-bot/internal/delivery/telegram"
	"github.com/aliskhannn/examprep-bot/internal/infra/postgres"
	"github.com/aliskhannn/examprep-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/examprep-bot/internal/logger"
	"github.com/aliskhannn/examprep-bot/internal/metrics"
	"github.com/aliskhannn/examprep-bot/internal/service"
	"github.com/aliskhannn/examprep-bot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil && !errors.Is(err, context.Canceled) {
		lg.Fatal("bot stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, lg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Database.
	dsn, err := cfg.DB.DSN()
	if err != nil {
		return err
	}
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
		ConnectTimeout:  cfg.DB.ConnectTimeout,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	transactor := postgres.NewTransactor(pool)
	if err := postgres.Migrate(ctx, pool, transactor, lg); err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)
	remindersRepo := repository.NewRemindersRepository(pool)

	// Exam backend.
	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, lg, m)

	// Services.
	quizStorage := storage.NewQuizStorage()
	reminderStorage := storage.NewReminderStorage()
	profileDrafts := storage.NewProfileDrafts()

	quizService := service.NewQuizService(
		client,
		service.NewTestLoader(client, lg),
		service.NewFinalizer(client, m, lg),
		quizStorage,
		m,
		lg,
		service.QuizOptions{
			TimeLimit:    cfg.Quiz.TimeLimit,
			DefaultCount: cfg.Quiz.DefaultCount,
		},
	)
	userService := service.NewUserService(userRepo, client, lg)
	settingsService := service.NewSettingsService(settingsRepo)
	catalogService := service.NewCatalogService(client, client)
	reminderService := service.NewReminderService(remindersRepo, client, m, lg)
	resetService := service.NewResetService(transactor, lg)

	// Telegram.
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		return err
	}
	bot.Debug = cfg.Telegram.Debug
	lg.Info("authorized on telegram", zap.String("username", bot.Self.UserName))

	if _, err := bot.Request(tgbotapi.NewSetMyCommands(telegram.Commands()...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	handler := telegram.NewHandler(
		bot,
		lg,
		m,
		userService,
		quizService,
		settingsService,
		catalogService,
		resetService,
		quizStorage,
		reminderStorage,
		profileDrafts,
		telegram.Options{
			TickInterval: cfg.Quiz.TickInterval,
			RateLimit:    cfg.Telegram.RateLimit,
			DefaultCount: cfg.Quiz.DefaultCount,
		},
	)
	reminderService.SetNotifier(handler)
	go reminderService.Start(ctx)

	// Ops server.
	var ops *ophttp.Server
	if cfg.HTTP.Addr != "" {
		ops = ophttp.NewServer(cfg.HTTP.Addr, ophttp.NewRouter(pool, reg, lg), lg)
		ops.Start()
	}

	err = handler.Run(ctx)

	lg.Info("shutdown signal received")
	quizStorage.StopAll()

	if ops != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
		defer cancel()
		if err := ops.Shutdown(shutdownCtx); err != nil {
			lg.Warn("ops server shutdown", zap.Error(err))
		}
	}

	return err
}

func shutdownTimeout(cfg *config.Config) time.Duration {
	if cfg.HTTP.ShutdownTimeout > 0 {
		return cfg.HTTP.ShutdownTimeout
	}
	return 5 * time.Second
}
