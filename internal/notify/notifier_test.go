package notify

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

// fakeSender records outgoing digests instead of talking SMTP.
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

func setupNotifierDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func subscribe(t *testing.T, db *gorm.DB, email string, includeNSFW bool, genreNames ...string) {
	t.Helper()

	var genres []*models.Genre
	for _, name := range genreNames {
		genre := models.Genre{Name: name}
		require.NoError(t, db.Where("name = ?", name).FirstOrCreate(&genre).Error)
		genres = append(genres, &genre)
	}
	sub := models.Subscriber{Email: email, IncludeNSFW: includeNSFW, Genres: genres}
	require.NoError(t, db.Create(&sub).Error)
}

func TestSendGenreDigests(t *testing.T) {
	db := setupNotifierDB(t)
	subscribe(t, db, "alex@example.com", true, "Action")
	subscribe(t, db, "sam@example.com", false, "Action")
	subscribe(t, db, "kit@example.com", false, "Racing")

	records := []pipeline.Record{
		{Title: "Clean Game", Genres: []string{"Action"}, URL: "https://steam.example/a",
			ReleaseDate: time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)},
		{Title: "Spicy Game", Genres: []string{"Action"}, NSFW: true, URL: "https://steam.example/b",
			ReleaseDate: time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)},
	}

	sender := &fakeSender{}
	notifier := NewNotifier(db, sender, "c14-games-tracker-")
	require.NoError(t, notifier.SendGenreDigests(context.Background(), records))

	// One variant per NSFW preference; nobody subscribed to a genre with
	// releases beyond Action.
	require.Len(t, sender.sent, 2)

	byRecipient := make(map[string]sentMail)
	for _, mail := range sender.sent {
		require.Equal(t, "New Action games for you!", mail.subject)
		for _, r := range mail.recipients {
			byRecipient[r] = mail
		}
	}

	require.Contains(t, byRecipient["alex@example.com"].body, "Spicy Game")
	require.Contains(t, byRecipient["sam@example.com"].body, "Clean Game")
	require.NotContains(t, byRecipient["sam@example.com"].body, "Spicy Game")
	require.NotContains(t, byRecipient, "kit@example.com")
}

func TestSendGenreDigestsNoMatchingReleases(t *testing.T) {
	db := setupNotifierDB(t)
	subscribe(t, db, "alex@example.com", false, "Racing")

	records := []pipeline.Record{
		{Title: "Clean Game", Genres: []string{"Action"}, URL: "https://steam.example/a"},
	}

	sender := &fakeSender{}
	notifier := NewNotifier(db, sender, "c14-games-tracker-")
	require.NoError(t, notifier.SendGenreDigests(context.Background(), records))
	require.Empty(t, sender.sent)
}

func TestSendGenreDigestsSkipsAllNSFWForOptedOut(t *testing.T) {
	db := setupNotifierDB(t)
	subscribe(t, db, "sam@example.com", false, "Action")

	records := []pipeline.Record{
		{Title: "Spicy Game", Genres: []string{"Action"}, NSFW: true, URL: "https://steam.example/b"},
	}

	sender := &fakeSender{}
	notifier := NewNotifier(db, sender, "c14-games-tracker-")
	require.NoError(t, notifier.SendGenreDigests(context.Background(), records))
	require.Empty(t, sender.sent)
}
