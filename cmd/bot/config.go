package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/agalitsyn/flagutils"
	"github.com/agalitsyn/secret"

	"github.com/influence-hub/community-bot/version"
)

const EnvPrefix = "HUB_BOT"

type Config struct {
	Debug bool

	Token  secret.String
	DBPath string

	AdminIDs             []int64
	PageSize             int
	RetakeAfterRejection bool
	Seed                 bool

	Webhook struct {
		URL    string
		Listen string
		Secret secret.String
	}
}

func (c Config) String() string {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stdout, err)
		os.Exit(0)
	}
	return string(b)
}

func ParseFlags() Config {
	var cfg Config

	printVersion := flag.Bool("version", false, "Show version.")
	debug := flag.Bool("debug", false, "Verbose logging.")
	token := flag.String("token", "", "Telegram bot token.")
	dbPath := flag.String("db-path", "bot.db", "Path to SQLite database file.")
	adminIDs := flag.String("admin-ids", "", "Comma-separated Telegram IDs with admin access.")
	pageSize := flag.Int("page-size", 5, "Items per page in lists.")
	retake := flag.Bool("retake-after-rejection", true, "Allow taking a task again after a rejection.")
	seed := flag.Bool("seed", false, "Seed demo tasks on startup if the catalog is empty.")
	webhookURL := flag.String("webhook-url", "", "Public HTTPS URL for webhook mode. Empty means long polling.")
	webhookListen := flag.String("webhook-listen", ":8080", "Address for the webhook HTTP server.")
	webhookSecret := flag.String("webhook-secret", "", "Secret path segment for the webhook endpoint.")

	flagutils.Prefix = EnvPrefix
	flagutils.Parse()
	flag.Parse()

	cfg.Debug = *debug
	cfg.Token = secret.NewString(*token)
	cfg.DBPath = *dbPath
	cfg.PageSize = *pageSize
	cfg.RetakeAfterRejection = *retake
	cfg.Seed = *seed
	cfg.Webhook.URL = *webhookURL
	cfg.Webhook.Listen = *webhookListen
	cfg.Webhook.Secret = secret.NewString(*webhookSecret)

	for _, s := range strings.Split(*adminIDs, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid admin id %q\n", s)
			os.Exit(1)
		}
		cfg.AdminIDs = append(cfg.AdminIDs, id)
	}

	if *printVersion {
		fmt.Fprintln(os.Stdout, version.String())
		os.Exit(0)
	}

	return cfg
}
