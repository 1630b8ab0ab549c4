package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"gamestracker/backend/internal/config"
	"gamestracker/backend/internal/database"
	"gamestracker/backend/internal/notify"
	"gamestracker/backend/internal/pipeline"
	"gamestracker/backend/internal/scraper"
)

func init() {
	config.LoadConfig()
}

// Runs one daily ingestion pass and sends the genre digests. Intended to be
// scheduled once per day.
func main() {
	dateFlag := flag.String("date", "", "release date to ingest (YYYY-MM-DD), defaults to today")
	skipNotify := flag.Bool("skip-notifications", false, "upload without sending genre digests")
	flag.Parse()

	date := time.Now()
	if *dateFlag != "" {
		parsed, err := time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			log.Fatalf("invalid -date %q: %v", *dateFlag, err)
		}
		date = parsed
	}

	database.Connect(config.AppConfig.DatabaseURL)

	ctx := context.Background()
	runner := pipeline.NewRunner(database.DB,
		scraper.NewSteam(""),
		scraper.NewGOG(""),
		scraper.NewEpic(""),
	)

	result, err := runner.Run(ctx, date)
	if err != nil {
		slog.Error("ingestion run failed", "err", err)
		os.Exit(1)
	}

	if *skipNotify || len(result.Records) == 0 {
		return
	}

	cfg := config.AppConfig
	mailer := notify.NewMailer(notify.SmtpConfig{
		Host:     cfg.SmtpHost,
		Port:     cfg.SmtpPort,
		Username: cfg.SmtpUsername,
		Password: cfg.SmtpPassword,
		Sender:   cfg.SenderEmail,
	})
	notifier := notify.NewNotifier(database.DB, mailer, cfg.TopicPrefix)

	if err := notifier.SendGenreDigests(ctx, result.Records); err != nil {
		slog.Error("sending genre digests failed", "err", err)
		os.Exit(1)
	}
}
