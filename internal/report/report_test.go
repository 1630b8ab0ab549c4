package report

import (
	"context"
	"testing"
	"time"

	"gamestracker/backend/internal/database"
	"gamestracker/backend/internal/models"
	"gamestracker/backend/internal/pipeline"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeSender struct {
	sent []sentMail
}

type sentMail struct {
	recipients []string
	subject    string
	body       string
}

func (f *fakeSender) Send(recipients []string, subject, htmlBody string) error {
	f.sent = append(f.sent, sentMail{recipients: recipients, subject: subject, body: htmlBody})
	return nil
}

func setupReportDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func uploadRecords(t *testing.T, db *gorm.DB, records ...pipeline.Record) {
	t.Helper()
	summary, err := pipeline.NewUploader(db).Upload(context.Background(), records)
	require.NoError(t, err)
	require.Equal(t, len(records), summary.Uploaded)
}

func TestWeekBounds(t *testing.T) {
	cases := []struct {
		name      string
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			"wednesday",
			time.Date(2025, 7, 16, 15, 30, 0, 0, time.UTC),
			time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			"monday",
			time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			"sunday closes the week",
			time.Date(2025, 7, 20, 23, 59, 0, 0, time.UTC),
			time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := weekBounds(tc.now)
			require.True(t, start.Equal(tc.wantStart), "start=%v", start)
			require.True(t, end.Equal(tc.wantEnd), "end=%v", end)
		})
	}
}

func TestCollectWeekData(t *testing.T) {
	db := setupReportDB(t)
	monday := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)

	uploadRecords(t, db,
		pipeline.Record{
			Platform: "Steam", Title: "Game A", URL: "https://steam.example/a",
			PriceMinor: 2000, ReleaseDate: monday, Genres: []string{"Action"},
		},
		pipeline.Record{
			Platform: "Steam", Title: "Game B", URL: "https://steam.example/b",
			PriceMinor: 0, ReleaseDate: monday.AddDate(0, 0, 2), Genres: []string{"Action", "Indie"},
		},
		pipeline.Record{
			Platform: "GOG", Title: "Game C", URL: "https://gog.example/c",
			PriceMinor: 1000, ReleaseDate: monday.AddDate(0, 0, 6),
		},
		// Outside the week, must not count.
		pipeline.Record{
			Platform: "Epic", Title: "Game D", URL: "https://epic.example/d",
			PriceMinor: 500, ReleaseDate: monday.AddDate(0, 0, 7),
		},
	)

	data, err := CollectWeekData(context.Background(), db, monday.AddDate(0, 0, 3))
	require.NoError(t, err)

	require.EqualValues(t, 3, data.TotalGames)
	require.EqualValues(t, 2, data.TotalPlatforms)

	releases := make(map[string]int)
	for _, row := range data.Releases {
		releases[row.Platform] = row.Releases
	}
	require.Equal(t, map[string]int{"Steam": 2, "GOG": 1}, releases)

	prices := make(map[string]float64)
	for _, row := range data.AveragePrices {
		prices[row.Platform] = row.AveragePrice
	}
	require.InDelta(t, 1000, prices["Steam"], 0.01)
	require.InDelta(t, 1000, prices["GOG"], 0.01)

	genres := make(map[string]int)
	for _, row := range data.Genres {
		genres[row.Genre] = row.Releases
	}
	require.Equal(t, map[string]int{"Action": 2, "Indie": 1}, genres)

	require.Len(t, data.FreeToPlay, 1)
	require.Equal(t, "Game B", data.FreeToPlay[0].Title)
}

func TestSendWeeklyReport(t *testing.T) {
	db := setupReportDB(t)
	monday := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)

	uploadRecords(t, db, pipeline.Record{
		Platform: "Steam", Title: "Game A", URL: "https://steam.example/a",
		PriceMinor: 0, ReleaseDate: monday, Genres: []string{"Action"},
	})

	require.NoError(t, db.Create(&models.Subscriber{Email: "alex@example.com", WeeklyReport: true}).Error)
	require.NoError(t, db.Create(&models.Subscriber{Email: "sam@example.com", WeeklyReport: false}).Error)

	sender := &fakeSender{}
	require.NoError(t, NewGenerator(db, sender).SendWeeklyReport(context.Background(), monday))

	require.Len(t, sender.sent, 1)
	mail := sender.sent[0]
	require.Equal(t, []string{"alex@example.com"}, mail.recipients)
	require.Equal(t, "Weekly Gaming Industry Report 14/07/25 - 20/07/25", mail.subject)
	require.Contains(t, mail.body, "Game A")
	require.Contains(t, mail.body, "FREE")
}

func TestSendWeeklyReportNoSubscribers(t *testing.T) {
	db := setupReportDB(t)

	sender := &fakeSender{}
	require.NoError(t, NewGenerator(db, sender).SendWeeklyReport(context.Background(), time.Now()))
	require.Empty(t, sender.sent)
}
