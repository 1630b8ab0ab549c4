package scraper

import (
	"context"
	"time"
)

// Source is a storefront extractor. Extract returns the listings released on
// the given date in the uniform payload shape.
type Source interface {
	Platform() string
	Extract(ctx context.Context, date time.Time) (SourcePayload, error)
}

// RawListing is a single listing exactly as a storefront presents it.
// Prices and release dates are kept in their platform-specific raw form;
// the pipeline normalizer is the only place they get interpreted.
type RawListing struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	ImageURL         string   `json:"img_url"`
	Genres           []string `json:"genres"`
	Tags             []string `json:"tags"`
	OperatingSystems []string `json:"operating_systems"`
	CurrentPrice     string   `json:"current_price"`
	ReleaseDate      string   `json:"release_date"`
	URL              string   `json:"url"`
}

// SourcePayload is the structurally uniform output of every extractor.
type SourcePayload struct {
	Platform string       `json:"platform"`
	Listings []RawListing `json:"listings"`
}
