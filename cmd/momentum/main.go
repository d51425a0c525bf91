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

	"github.com/spf13/cobra"

	"momentum/internal/ai"
	"momentum/internal/config"
	"momentum/internal/notify"
	"momentum/internal/scheduler"
	"momentum/internal/server"
	"momentum/internal/service"
	"momentum/internal/storage"
	"momentum/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "momentum",
		Short: "Personal productivity: tasks, notes, habits, goals, and an AI assistant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(configPath)
			if err != nil {
				return err
			}
			defer app.close()
			return tui.Run(tui.Deps{
				Lists:  app.lists,
				Tasks:  app.tasks,
				Notes:  app.notes,
				Habits: app.habits,
				Stats:  app.stats,
				Chat:   app.chat,
			})
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the notification scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(configPath)
			if err != nil {
				return err
			}
			defer app.close()
			return app.serve(cmd.Context())
		},
	}
	root.AddCommand(serve)

	check := &cobra.Command{
		Use:   "check",
		Short: "Run one notification pass and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := buildApp(configPath)
			if err != nil {
				return err
			}
			defer app.close()
			app.checker.RunOnce(cmd.Context())
			return nil
		},
	}
	root.AddCommand(check)

	return root
}

type app struct {
	cfg     config.Config
	log     *slog.Logger
	repo    storage.Repository
	gateway *ai.Gateway

	lists     *service.Lists
	tasks     *service.Tasks
	notes     *service.Notes
	goals     *service.Goals
	habits    *service.Habits
	reminders *service.Reminders
	stats     *service.Stats
	chat      *service.Chat

	checker *scheduler.Checker
}

func buildApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg.Log)

	var repo storage.Repository
	switch cfg.Database.Driver {
	case "memory":
		repo = storage.NewMemoryRepository()
	default:
		repo, err = storage.OpenSQLite(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
	}

	var attachments storage.AttachmentStore
	if cfg.Data.Attachments == "inline" {
		attachments = storage.NewInlineAttachmentStore()
	} else {
		attachments, err = storage.NewFileAttachmentStore(cfg.Data.Dir)
		if err != nil {
			return nil, err
		}
	}

	ctx := context.Background()
	aiCfg := ai.Config{APIKey: cfg.AI.APIKey, Model: cfg.AI.Model}
	// A key saved through the settings API wins over the environment.
	if saved, err := repo.GetSetting(ctx, "ai:api-key"); err == nil && saved != "" {
		aiCfg.APIKey = saved
	}
	gateway := ai.NewGateway(ctx, aiCfg, log)

	stats := service.NewStats(repo)
	lists := service.NewLists(repo)
	tasks := service.NewTasks(repo, stats, attachments)
	notes := service.NewNotes(repo, attachments)
	goals := service.NewGoals(repo, lists, tasks)
	habits := service.NewHabits(repo, stats)
	reminders := service.NewReminders(repo)
	chat := service.NewChat(repo, gateway, tasks, notes, log)

	var notifier notify.Notifier
	if cfg.Notify.Backend == "log" {
		notifier = &notify.Logger{Log: log}
	} else {
		notifier = &notify.Desktop{}
	}
	checker := scheduler.NewChecker(repo, notifier, gateway, log)
	checker.DigestCooldown = cfg.Scheduler.DigestCooldown
	checker.NudgeCooldown = cfg.Scheduler.NudgeCooldown

	return &app{
		cfg:       cfg,
		log:       log,
		repo:      repo,
		gateway:   gateway,
		lists:     lists,
		tasks:     tasks,
		notes:     notes,
		goals:     goals,
		habits:    habits,
		reminders: reminders,
		stats:     stats,
		chat:      chat,
		checker:   checker,
	}, nil
}

func (a *app) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, err := scheduler.NewRunner(a.checker, a.cfg.Scheduler.Interval, a.cfg.Location(), a.log)
	if err != nil {
		return err
	}
	runner.Start(ctx)
	defer runner.Stop()

	srv := &http.Server{
		Addr: a.cfg.Server.Addr,
		Handler: server.New(server.Deps{
			Repo:      a.repo,
			Gateway:   a.gateway,
			Lists:     a.lists,
			Tasks:     a.tasks,
			Notes:     a.notes,
			Goals:     a.goals,
			Habits:    a.habits,
			Reminders: a.reminders,
			Stats:     a.stats,
			Chat:      a.chat,
		}, a.log),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (a *app) close() {
	if err := a.repo.Close(); err != nil {
		a.log.Error("close repository", slog.String("error", err.Error()))
	}
}

func newLogger(cfg config.Log) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
