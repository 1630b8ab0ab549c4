package pipeline

import (
	"context"
	"log/slog"
	"time"

	"gamestracker/backend/internal/scraper"

	"gorm.io/gorm"
)

// SourceStats counts what happened to one source's payload during a run.
type SourceStats struct {
	Scraped    int
	Duplicates int
	Invalid    int
}

// RunSummary reports a full ingestion run.
type RunSummary struct {
	Date      time.Time
	PerSource map[string]SourceStats
	Uploaded  int
	Skipped   int
}

// RunResult carries the summary plus the normalized records that made it
// through the pipeline, for downstream notification building.
type RunResult struct {
	Summary RunSummary
	Records []Record
}

// Runner wires the extract → dedup → normalize → upload stages for one
// daily batch. Sources run sequentially; a failed source degrades to an
// empty payload and the run continues.
type Runner struct {
	db      *gorm.DB
	sources []scraper.Source
}

// NewRunner returns a Runner over the given sources.
func NewRunner(db *gorm.DB, sources ...scraper.Source) *Runner {
	return &Runner{db: db, sources: sources}
}

// Run executes one full ingestion pass for the given date.
func (r *Runner) Run(ctx context.Context, date time.Time) (RunResult, error) {
	result := RunResult{
		Summary: RunSummary{Date: date, PerSource: make(map[string]SourceStats)},
	}

	alreadyScraped, err := ListingURLsOnDate(ctx, r.db, date)
	if err != nil {
		return result, err
	}

	var payloads []scraper.SourcePayload
	for _, source := range r.sources {
		payload, err := source.Extract(ctx, date)
		if err != nil {
			slog.WarnContext(ctx, "source extraction failed, continuing with empty payload",
				"platform", source.Platform(), "err", err)
			payload = scraper.SourcePayload{Platform: source.Platform(), Listings: []scraper.RawListing{}}
		}
		slog.InfoContext(ctx, "extracted source", "platform", payload.Platform, "listings", len(payload.Listings))
		payloads = append(payloads, payload)
	}

	deduped := RemoveDuplicates(payloads, alreadyScraped)

	for i, payload := range deduped {
		stats := SourceStats{
			Scraped:    len(payloads[i].Listings),
			Duplicates: len(payloads[i].Listings) - len(payload.Listings),
		}

		for _, raw := range payload.Listings {
			record, err := Normalize(raw, payload.Platform)
			if err != nil {
				slog.WarnContext(ctx, "dropping unnormalizable listing",
					"platform", payload.Platform, "title", raw.Title, "err", err)
				stats.Invalid++
				continue
			}
			result.Records = append(result.Records, record)
		}

		result.Summary.PerSource[payload.Platform] = stats
	}

	uploaded, err := NewUploader(r.db).Upload(ctx, result.Records)
	if err != nil {
		return result, err
	}
	result.Summary.Uploaded = uploaded.Uploaded
	result.Summary.Skipped = uploaded.Skipped

	slog.InfoContext(ctx, "ingestion run complete",
		"date", date.Format("2006-01-02"),
		"uploaded", result.Summary.Uploaded,
		"skipped", result.Summary.Skipped)

	return result, nil
}
