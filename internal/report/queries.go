package report

import (
	"context"
	"time"

	"gamestracker/backend/internal/models"

	"gorm.io/gorm"
)

// PlatformCount is a per-platform release tally.
type PlatformCount struct {
	Platform string
	Releases int
}

// PlatformPrice is a per-platform average listing price in minor units.
type PlatformPrice struct {
	Platform     string
	AveragePrice float64
}

// GenreCount is a per-genre release tally.
type GenreCount struct {
	Genre    string
	Releases int
}

// FreeGame is a free-to-play release with its platform.
type FreeGame struct {
	Title    string
	Platform string
}

// WeekData holds everything the weekly report renders.
type WeekData struct {
	Start time.Time
	End   time.Time

	TotalGames     int64
	TotalPlatforms int64
	Releases       []PlatformCount
	AveragePrices  []PlatformPrice
	Genres         []GenreCount
	FreeToPlay     []FreeGame
}

// CollectWeekData runs the report's aggregate queries for the week that
// contains the given date (Monday through Sunday).
func CollectWeekData(ctx context.Context, db *gorm.DB, now time.Time) (WeekData, error) {
	start, end := weekBounds(now)
	data := WeekData{Start: start, End: end}
	week := db.WithContext(ctx).
		Model(&models.Game{}).
		Where("games.release_date >= ? AND games.release_date < ?", start, end.AddDate(0, 0, 1))

	err := week.Session(&gorm.Session{}).
		Distinct("games.title").
		Count(&data.TotalGames).Error
	if err != nil {
		return data, err
	}

	err = week.Session(&gorm.Session{}).
		Joins("JOIN game_listings ON game_listings.game_id = games.id").
		Distinct("game_listings.platform_id").
		Count(&data.TotalPlatforms).Error
	if err != nil {
		return data, err
	}

	err = week.Session(&gorm.Session{}).
		Select("platforms.name AS platform, COUNT(*) AS releases").
		Joins("JOIN game_listings ON game_listings.game_id = games.id").
		Joins("JOIN platforms ON platforms.id = game_listings.platform_id").
		Group("platforms.name").
		Order("releases DESC").
		Scan(&data.Releases).Error
	if err != nil {
		return data, err
	}

	err = week.Session(&gorm.Session{}).
		Select("platforms.name AS platform, AVG(game_listings.release_price) AS average_price").
		Joins("JOIN game_listings ON game_listings.game_id = games.id").
		Joins("JOIN platforms ON platforms.id = game_listings.platform_id").
		Group("platforms.name").
		Scan(&data.AveragePrices).Error
	if err != nil {
		return data, err
	}

	err = week.Session(&gorm.Session{}).
		Select("genres.name AS genre, COUNT(*) AS releases").
		Joins("JOIN game_genre_assignments ON game_genre_assignments.game_id = games.id").
		Joins("JOIN genres ON genres.id = game_genre_assignments.genre_id").
		Group("genres.name").
		Order("releases DESC").
		Scan(&data.Genres).Error
	if err != nil {
		return data, err
	}

	err = week.Session(&gorm.Session{}).
		Select("games.title AS title, platforms.name AS platform").
		Joins("JOIN game_listings ON game_listings.game_id = games.id").
		Joins("JOIN platforms ON platforms.id = game_listings.platform_id").
		Where("game_listings.release_price = 0").
		Scan(&data.FreeToPlay).Error
	if err != nil {
		return data, err
	}

	return data, nil
}

func weekBounds(now time.Time) (time.Time, time.Time) {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday closes the week
	}
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -(weekday - 1))
	return start, start.AddDate(0, 0, 6)
}
