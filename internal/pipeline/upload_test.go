package pipeline

import (
	"context"
	"testing"
	"time"

	"gamestracker/backend/internal/database"
	"gamestracker/backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB prepares a migrated in-memory database with the fixed
// platform and operating-system vocabularies seeded.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func testRecord() Record {
	return Record{
		Platform:         "Steam",
		Title:            "Game A",
		Description:      "A fine game.",
		ImageURL:         "https://img.example/a.jpg",
		URL:              "https://steam.example/a",
		PriceMinor:       1999,
		ReleaseDate:      time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC),
		NSFW:             false,
		Genres:           []string{"Action", "Indie"},
		OperatingSystems: []string{"Windows", "Mac"},
	}
}

func TestUploadCreatesGameListingAndAssignments(t *testing.T) {
	db := setupTestDB(t)

	summary, err := NewUploader(db).Upload(context.Background(), []Record{testRecord()})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Uploaded)
	require.Equal(t, 0, summary.Skipped)

	var game models.Game
	err = db.Preload("Genres").Preload("OperatingSystems").Preload("Listings.Platform").
		First(&game, "title = ?", "Game A").Error
	require.NoError(t, err)

	require.Len(t, game.Genres, 2)
	require.Len(t, game.OperatingSystems, 2)
	require.Len(t, game.Listings, 1)
	require.Equal(t, "Steam", game.Listings[0].Platform.Name)
	require.Equal(t, 1999, game.Listings[0].ReleasePrice)
}

func TestUploadReusesExistingGenres(t *testing.T) {
	db := setupTestDB(t)

	first := testRecord()
	second := testRecord()
	second.Title = "Game B"
	second.URL = "https://steam.example/b"
	second.Genres = []string{"action"} // case differs, same genre

	summary, err := NewUploader(db).Upload(context.Background(), []Record{first, second})
	require.NoError(t, err)
	require.Equal(t, 2, summary.Uploaded)

	var count int64
	require.NoError(t, db.Model(&models.Genre{}).Where("LOWER(name) = ?", "action").Count(&count).Error)
	require.EqualValues(t, 1, count)

	var assignments int64
	require.NoError(t, db.Table("game_genre_assignments").Count(&assignments).Error)
	require.EqualValues(t, 3, assignments)
}

func TestUploadLinksPaddedGenreNames(t *testing.T) {
	db := setupTestDB(t)

	record := testRecord()
	record.Genres = []string{" Action "}

	summary, err := NewUploader(db).Upload(context.Background(), []Record{record})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Uploaded)

	var genres []models.Genre
	require.NoError(t, db.Find(&genres).Error)
	require.Len(t, genres, 1)
	require.Equal(t, "Action", genres[0].Name)

	// The created row must also be assigned, not just inserted.
	var assignments int64
	require.NoError(t, db.Table("game_genre_assignments").Count(&assignments).Error)
	require.EqualValues(t, 1, assignments)
}

func TestUploadFoldsCaseVariantGenres(t *testing.T) {
	db := setupTestDB(t)

	record := testRecord()
	record.Genres = []string{"Action", "ACTION", " action "}

	summary, err := NewUploader(db).Upload(context.Background(), []Record{record})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Uploaded)

	var genres []models.Genre
	require.NoError(t, db.Find(&genres).Error)
	require.Len(t, genres, 1)

	var assignments int64
	require.NoError(t, db.Table("game_genre_assignments").Count(&assignments).Error)
	require.EqualValues(t, 1, assignments)
}

func TestUploadSkipsUnknownPlatform(t *testing.T) {
	db := setupTestDB(t)

	bad := testRecord()
	bad.Platform = "itch.io"
	good := testRecord()
	good.URL = "https://steam.example/good"

	summary, err := NewUploader(db).Upload(context.Background(), []Record{bad, good})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Uploaded)
	require.Equal(t, 1, summary.Skipped)
}

func TestUploadIgnoresUnknownOperatingSystems(t *testing.T) {
	db := setupTestDB(t)

	record := testRecord()
	record.OperatingSystems = []string{"Windows", "Amiga"}

	summary, err := NewUploader(db).Upload(context.Background(), []Record{record})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Uploaded)

	var game models.Game
	require.NoError(t, db.Preload("OperatingSystems").First(&game, "title = ?", "Game A").Error)
	require.Len(t, game.OperatingSystems, 1)
	require.Equal(t, "Windows", game.OperatingSystems[0].Name)

	// The fixed vocabulary did not grow.
	var count int64
	require.NoError(t, db.Model(&models.OperatingSystem{}).Count(&count).Error)
	require.EqualValues(t, len(database.OperatingSystemNames), count)
}

func TestUploadStopsOnCancelledContext(t *testing.T) {
	db := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewUploader(db).Upload(ctx, []Record{testRecord()})
	require.ErrorIs(t, err, context.Canceled)
}

func TestListingURLsOnDate(t *testing.T) {
	db := setupTestDB(t)
	day := time.Date(2025, 7, 14, 0, 0, 0, 0, time.UTC)

	sameDay := testRecord()
	otherDay := testRecord()
	otherDay.Title = "Game B"
	otherDay.URL = "https://steam.example/b"
	otherDay.ReleaseDate = day.AddDate(0, 0, 1)

	_, err := NewUploader(db).Upload(context.Background(), []Record{sameDay, otherDay})
	require.NoError(t, err)

	urls, err := ListingURLsOnDate(context.Background(), db, day)
	require.NoError(t, err)
	require.Equal(t, []string{"https://steam.example/a"}, urls)
}
