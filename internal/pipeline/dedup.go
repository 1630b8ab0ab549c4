package pipeline

import "gamestracker/backend/internal/scraper"

// RemoveDuplicates drops every listing whose URL has already been persisted
// today, independently per source payload. It is a pure set-membership
// filter: the same game under different URLs on different platforms stays
// distinct, intentionally. Running it twice yields the same result as once.
func RemoveDuplicates(payloads []scraper.SourcePayload, alreadyScraped []string) []scraper.SourcePayload {
	seen := make(map[string]bool, len(alreadyScraped))
	for _, url := range alreadyScraped {
		seen[url] = true
	}

	filtered := make([]scraper.SourcePayload, 0, len(payloads))
	for _, payload := range payloads {
		kept := []scraper.RawListing{}
		for _, listing := range payload.Listings {
			if !seen[listing.URL] {
				kept = append(kept, listing)
			}
		}
		filtered = append(filtered, scraper.SourcePayload{
			Platform: payload.Platform,
			Listings: kept,
		})
	}
	return filtered
}
