package report

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"gamestracker/backend/internal/models"
	"gamestracker/backend/internal/notify"

	"gorm.io/gorm"
)

// Generator builds the weekly industry report and emails it to opted-in
// subscribers.
type Generator struct {
	db     *gorm.DB
	mailer notify.Sender
}

// NewGenerator returns a report Generator.
func NewGenerator(db *gorm.DB, mailer notify.Sender) *Generator {
	return &Generator{db: db, mailer: mailer}
}

// SendWeeklyReport collects the week's aggregates, renders the report and
// emails it to every weekly-report subscriber.
func (g *Generator) SendWeeklyReport(ctx context.Context, now time.Time) error {
	data, err := CollectWeekData(ctx, g.db, now)
	if err != nil {
		return fmt.Errorf("collecting report data: %w", err)
	}

	var subscribers []models.Subscriber
	err = g.db.WithContext(ctx).Where("weekly_report = ?", true).Find(&subscribers).Error
	if err != nil {
		return fmt.Errorf("loading report subscribers: %w", err)
	}
	if len(subscribers) == 0 {
		slog.InfoContext(ctx, "no weekly report subscribers, skipping send")
		return nil
	}

	emails := make([]string, len(subscribers))
	for i, sub := range subscribers {
		emails[i] = sub.Email
	}

	subject := fmt.Sprintf("Weekly Gaming Industry Report %s - %s",
		data.Start.Format("02/01/06"), data.End.Format("02/01/06"))

	if err := g.mailer.Send(emails, subject, RenderHTML(data)); err != nil {
		return fmt.Errorf("sending weekly report: %w", err)
	}

	slog.InfoContext(ctx, "sent weekly report", "recipients", len(emails))
	return nil
}

// RenderHTML renders the report as a single HTML document.
func RenderHTML(data WeekData) string {
	var b strings.Builder

	b.WriteString("<html><head><title>Weekly Gaming Industry Report</title></head><body>")
	b.WriteString("<h1>Weekly Gaming Industry Report</h1>")
	fmt.Fprintf(&b, "<p>%s - %s</p>",
		data.Start.Format("02/01/06"), data.End.Format("02/01/06"))

	fmt.Fprintf(&b, "<h2>This week: <b>%d</b> different games were released across <b>%d</b> platforms.</h2>",
		data.TotalGames, data.TotalPlatforms)

	b.WriteString("<h2>Releases per platform:</h2>")
	writeTable(&b, "Platform", "Number of Releases", func(write func(string, string)) {
		for _, row := range data.Releases {
			write(row.Platform, fmt.Sprintf("%d", row.Releases))
		}
	})

	b.WriteString("<h2>Average price per platform:</h2>")
	writeTable(&b, "Platform", "Average Price", func(write func(string, string)) {
		for _, row := range data.AveragePrices {
			write(row.Platform, notify.FormatDisplayPrice(int(row.AveragePrice)))
		}
	})

	b.WriteString("<h2>Breakdown by game genre:</h2>")
	writeTable(&b, "Game Genre", "Number of Releases", func(write func(string, string)) {
		for _, row := range data.Genres {
			write(row.Genre, fmt.Sprintf("%d", row.Releases))
		}
	})

	b.WriteString("<h2>Currently <b>Free to Play</b></h2>")
	writeTable(&b, "Game Title", "Platform", func(write func(string, string)) {
		for _, row := range data.FreeToPlay {
			write(row.Title, row.Platform)
		}
	})

	b.WriteString("</body></html>")
	return b.String()
}

func writeTable(b *strings.Builder, leftHeader, rightHeader string, rows func(write func(string, string))) {
	b.WriteString(`<table border="1" cellspacing="0" cellpadding="5"><thead><tr>`)
	fmt.Fprintf(b, "<th>%s</th><th>%s</th>", leftHeader, rightHeader)
	b.WriteString("</tr></thead><tbody>")
	rows(func(left, right string) {
		fmt.Fprintf(b, "<tr><td>%s</td><td>%s</td></tr>",
			html.EscapeString(left), html.EscapeString(right))
	})
	b.WriteString("</tbody></table>")
}
