package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"gamestracker/backend/internal/config"
	"gamestracker/backend/internal/database"
	"gamestracker/backend/internal/notify"
	"gamestracker/backend/internal/report"
)

func init() {
	config.LoadConfig()
}

// Sends the weekly industry report covering the current Monday-to-Sunday
// window. Intended to be scheduled at the end of each week.
func main() {
	database.Connect(config.AppConfig.DatabaseURL)

	cfg := config.AppConfig
	mailer := notify.NewMailer(notify.SmtpConfig{
		Host:     cfg.SmtpHost,
		Port:     cfg.SmtpPort,
		Username: cfg.SmtpUsername,
		Password: cfg.SmtpPassword,
		Sender:   cfg.SenderEmail,
	})

	generator := report.NewGenerator(database.DB, mailer)
	if err := generator.SendWeeklyReport(context.Background(), time.Now()); err != nil {
		slog.Error("weekly report failed", "err", err)
		os.Exit(1)
	}
}
