package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"

	"github.com/influence-hub/community-bot/internal/app"
	"github.com/influence-hub/community-bot/internal/service"
	"github.com/influence-hub/community-bot/internal/storage/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := ParseFlags()
	setupLog(cfg.Debug)

	if cfg.Debug {
		log.Printf("DEBUG running with config")
		fmt.Fprintln(os.Stdout, cfg.String())
	}
	if cfg.Token.Unmask() == "" {
		log.Fatalf("FATAL telegram token is required")
	}

	db, err := sqlite.Connect(cfg.DBPath)
	if err != nil {
		log.Fatalf("FATAL could not open database: %s", err)
	}
	defer db.Close()

	userStorage := sqlite.NewUserStorage(db)
	taskStorage := sqlite.NewTaskStorage(db)
	assignmentStorage := sqlite.NewAssignmentStorage(db)
	mentorshipStorage := sqlite.NewMentorshipStorage(db)
	eventStorage := sqlite.NewEventStorage(db)
	statsStorage := sqlite.NewStatsStorage(db)

	svc := app.Services{
		Users: service.NewUserService(userStorage),
		Tasks: service.NewTaskService(taskStorage, assignmentStorage),
		Lifecycle: service.NewLifecycleService(
			service.LifecycleConfig{RetakeAfterRejection: cfg.RetakeAfterRejection},
			taskStorage, userStorage, assignmentStorage,
		),
		Rating:     service.NewRatingService(userStorage),
		Mentorship: service.NewMentorshipService(userStorage, mentorshipStorage),
		Events:     service.NewEventService(userStorage, eventStorage),
		Stats:      service.NewStatsService(statsStorage),
	}

	if cfg.Seed {
		n, err := svc.Tasks.SeedIfEmpty(ctx)
		if err != nil {
			log.Fatalf("FATAL could not seed tasks: %s", err)
		}
		if n > 0 {
			log.Printf("INFO seeded %d demo tasks", n)
		}
	}

	botCfg := app.BotConfig{
		UpdateTimeout: 60,
		AdminIDs:      cfg.AdminIDs,
		PageSize:      cfg.PageSize,
	}
	bot, err := app.NewBot(botCfg, cfg.Token.Unmask(), BotDebugLogger{}, svc)
	if err != nil {
		log.Fatalf("FATAL could not init bot: %s", err)
	}
	bot.SetDebug(cfg.Debug)
	log.Printf("INFO authorized as @%s", bot.GetSelf().UserName)

	if cfg.Webhook.URL != "" {
		if err := bot.StartWebhook(ctx, cfg.Webhook.Listen, cfg.Webhook.URL, cfg.Webhook.Secret.Unmask()); err != nil {
			log.Fatalf("FATAL %s", err)
		}
		return
	}
	bot.Start(ctx)
}

func setupLog(dbg bool) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	lgr.SetupStdLogger(logOpts...)
}

// BotDebugLogger routes tgbotapi chatter to the debug level.
type BotDebugLogger struct{}

func (l BotDebugLogger) Printf(msg string, args ...interface{}) {
	log.Printf("DEBUG %s", fmt.Sprintf(msg, args...))
}

func (l BotDebugLogger) Println(v ...interface{}) {
	log.Printf("DEBUG %s", fmt.Sprintln(v...))
}
