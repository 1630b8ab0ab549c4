package scraper

import "errors"

var (
	// ErrSourceUnavailable marks a transport or query failure against a
	// storefront. The run degrades that source to an empty payload.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrParseFailure marks unexpected page or response structure. Usually a
	// maintenance signal that the storefront changed its markup.
	ErrParseFailure = errors.New("parse failure")
)
