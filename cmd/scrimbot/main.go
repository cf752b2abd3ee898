package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/voltstriker/scrimbot/bot"
	"github.com/voltstriker/scrimbot/config"
	"github.com/voltstriker/scrimbot/database"
	"github.com/voltstriker/scrimbot/repositories"
	"github.com/voltstriker/scrimbot/services"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.String("database", cfg.DatabasePath), slog.Int("ops_port", cfg.OpsPort))

	// Подключение к базе данных
	dbConn, err := database.Connect(cfg.DatabasePath, 5*time.Second)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		} else {
			logger.Info("database closed")
		}
	}()

	if err := database.InitSchema(context.Background(), dbConn); err != nil {
		logger.Error("failed to initialise schema", slog.Any("error", err))
		os.Exit(1)
	}

	// С этого момента журнал дублируется в таблицу logs.
	logger = slog.New(database.NewLogHandler(dbConn, logger.Handler()))
	logger.Info("database ready")

	// Инициализация репозиториев
	userRepo := repositories.NewSQLiteUserRepository(dbConn)
	teamRepo := repositories.NewSQLiteTeamRepository(dbConn)
	membershipRepo := repositories.NewSQLiteMembershipRepository(dbConn)
	inviteRepo := repositories.NewSQLiteInviteRepository(dbConn)
	leagueRepo := repositories.NewSQLiteLeagueRepository(dbConn)
	gameRepo := repositories.NewSQLiteGameRepository(dbConn)
	matchRepo := repositories.NewSQLiteMatchRepository(dbConn)
	adminRepo := repositories.NewSQLiteAdminRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	engine := database.NewEngine(dbConn, logger)
	userService := services.NewUserService(userRepo)
	teamService := services.NewTeamService(teamRepo, membershipRepo, userRepo)
	inviteService := services.NewInviteService(inviteRepo, teamRepo, membershipRepo)
	leagueService := services.NewLeagueService(leagueRepo, teamRepo, gameRepo)
	matchService := services.NewMatchService(matchRepo, leagueRepo, teamRepo, gameRepo)
	gameService := services.NewGameService(gameRepo)
	adminService := services.NewAdminService(adminRepo, engine, dbConn, logger)
	logger.Info("services initialized")

	// Инициализация бота
	discordBot, err := bot.New(
		cfg.DiscordToken, cfg.CommandPrefix,
		userService, teamService, inviteService, leagueService, matchService, gameService, adminService,
		logger,
	)
	if err != nil {
		logger.Error("failed to create bot", slog.Any("error", err))
		os.Exit(1)
	}

	// Служебный HTTP-сервер: health-check и базовый статус.
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbConn.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"database":%q,"prefix":%q}`, cfg.DatabasePath, cfg.CommandPrefix)
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.OpsPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("starting ops server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		return discordBot.Start(groupCtx)
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logger.Info("shutting down ops server")
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("shutdown with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}
