package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gamestracker/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Uploader persists normalized records. Platform and operating-system id
// maps are prefetched once per batch; the genre map is refreshed whenever
// unseen genre names get created.
type Uploader struct {
	db *gorm.DB

	platforms map[string]models.Platform
	oses      map[string]models.OperatingSystem
	genres    map[string]models.Genre
}

// UploadSummary reports what a batch upload did.
type UploadSummary struct {
	Uploaded int
	Skipped  int
}

// NewUploader returns an Uploader bound to the given database handle.
func NewUploader(db *gorm.DB) *Uploader {
	return &Uploader{db: db}
}

// Upload inserts each record's game, listing and assignment rows inside one
// transaction per record. A failed record is logged and skipped; only a
// cancelled context or a failed prefetch aborts the batch.
func (u *Uploader) Upload(ctx context.Context, records []Record) (UploadSummary, error) {
	var summary UploadSummary

	if err := u.prefetchMaps(ctx); err != nil {
		return summary, err
	}

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if err := u.uploadRecord(ctx, record); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return summary, err
			}
			slog.WarnContext(ctx, "skipping listing", "title", record.Title, "url", record.URL, "err", err)
			summary.Skipped++
			continue
		}
		summary.Uploaded++
	}

	return summary, nil
}

func (u *Uploader) prefetchMaps(ctx context.Context) error {
	var platforms []models.Platform
	if err := u.db.WithContext(ctx).Find(&platforms).Error; err != nil {
		return fmt.Errorf("%w: loading platforms: %s", ErrPersistenceFailure, err)
	}
	u.platforms = make(map[string]models.Platform, len(platforms))
	for _, p := range platforms {
		u.platforms[strings.ToLower(p.Name)] = p
	}

	var oses []models.OperatingSystem
	if err := u.db.WithContext(ctx).Find(&oses).Error; err != nil {
		return fmt.Errorf("%w: loading operating systems: %s", ErrPersistenceFailure, err)
	}
	u.oses = make(map[string]models.OperatingSystem, len(oses))
	for _, os := range oses {
		u.oses[strings.ToLower(os.Name)] = os
	}

	return u.refreshGenreMap(ctx)
}

func (u *Uploader) refreshGenreMap(ctx context.Context) error {
	var genres []models.Genre
	if err := u.db.WithContext(ctx).Find(&genres).Error; err != nil {
		return fmt.Errorf("%w: loading genres: %s", ErrPersistenceFailure, err)
	}
	u.genres = make(map[string]models.Genre, len(genres))
	for _, g := range genres {
		u.genres[strings.ToLower(g.Name)] = g
	}
	return nil
}

func (u *Uploader) uploadRecord(ctx context.Context, record Record) error {
	platform, ok := u.platforms[strings.ToLower(record.Platform)]
	if !ok {
		return fmt.Errorf("%w: unknown platform %q", ErrValidationFailure, record.Platform)
	}

	if err := u.ensureGenres(ctx, record.Genres); err != nil {
		return err
	}

	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		game := models.Game{
			Title:       record.Title,
			Description: record.Description,
			ReleaseDate: record.ReleaseDate,
			IsNSFW:      record.NSFW,
			ImageURL:    record.ImageURL,
		}
		if err := tx.Create(&game).Error; err != nil {
			return err
		}

		listing := models.GameListing{
			GameID:       game.ID,
			PlatformID:   platform.ID,
			ReleasePrice: record.PriceMinor,
			ListingURL:   record.URL,
		}
		if err := tx.Create(&listing).Error; err != nil {
			return err
		}

		var genres []*models.Genre
		linked := make(map[string]bool)
		for _, name := range record.Genres {
			key := strings.ToLower(strings.TrimSpace(name))
			if linked[key] {
				continue
			}
			if genre, ok := u.genres[key]; ok {
				linked[key] = true
				genres = append(genres, &genre)
			}
		}
		if len(genres) > 0 {
			if err := tx.Model(&game).Association("Genres").Append(genres); err != nil {
				return err
			}
		}

		// No lazy-create path for OS; the vocabulary is fixed.
		var oses []*models.OperatingSystem
		for _, name := range record.OperatingSystems {
			if os, ok := u.oses[strings.ToLower(name)]; ok {
				oses = append(oses, &os)
			}
		}
		if len(oses) > 0 {
			if err := tx.Model(&game).Association("OperatingSystems").Append(oses); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %s", ErrPersistenceFailure, err)
	}
	return nil
}

// ensureGenres batch-creates any unseen genre names before the record's
// transaction, then refreshes the map. The upsert tolerates concurrent or
// duplicate genre names.
func (u *Uploader) ensureGenres(ctx context.Context, names []string) error {
	var unseen []models.Genre
	pending := make(map[string]bool)
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if pending[key] {
			continue
		}
		if _, ok := u.genres[key]; !ok {
			pending[key] = true
			unseen = append(unseen, models.Genre{Name: trimmed})
		}
	}
	if len(unseen) == 0 {
		return nil
	}

	err := u.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&unseen).Error
	if err != nil {
		return fmt.Errorf("%w: creating genres: %s", ErrPersistenceFailure, err)
	}

	return u.refreshGenreMap(ctx)
}

// ListingURLsOnDate returns every listing URL already persisted for games
// released on the given day. The result seeds the deduplicator and is read
// once per run.
func ListingURLsOnDate(ctx context.Context, db *gorm.DB, day time.Time) ([]string, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	var urls []string
	err := db.WithContext(ctx).
		Model(&models.GameListing{}).
		Joins("JOIN games ON games.id = game_listings.game_id").
		Where("games.release_date >= ? AND games.release_date < ?", start, end).
		Pluck("game_listings.listing_url", &urls).Error
	if err != nil {
		return nil, fmt.Errorf("%w: loading scraped listings: %s", ErrPersistenceFailure, err)
	}
	return urls, nil
}
