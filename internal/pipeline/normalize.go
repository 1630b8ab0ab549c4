package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gamestracker/backend/internal/scraper"
)

// Tags that flag a game as NSFW. Matching is by case-insensitive equality.
var nsfwTags = []string{
	"psychedelic", "adult content", "hentai", "sexual content",
	"mature", "nudity", "nsfw",
}

// The fixed operating-system vocabulary, in match order.
var osVocabulary = []struct {
	keyword   string
	canonical string
}{
	{"windows", "Windows"},
	{"mac", "Mac"},
	{"linux", "Linux"},
}

// Raw release-date shapes seen across the three sources.
var releaseDateFormats = []string{
	"02/01/2006",
	"2 Jan 2006",
	"2006-01-02",
	time.RFC3339,
}

// CanonicalDateFormat is the single textual form release dates take at the
// payload boundary.
const CanonicalDateFormat = "02/01/2006"

// Record is the canonical shape every source's listing is normalized into
// before persistence.
type Record struct {
	Platform         string
	Title            string
	Description      string
	ImageURL         string
	URL              string
	PriceMinor       int
	ReleaseDate      time.Time
	NSFW             bool
	Genres           []string
	OperatingSystems []string
}

// FormatPrice parses a raw price string into integer minor currency units.
// "free" in any case, with surrounding whitespace, is 0. Everything but
// digits and the decimal point is stripped before parsing, so currency
// symbols never trip it up; strings with no numeric content return an error
// rather than panicking.
func FormatPrice(raw string) (int, error) {
	if strings.EqualFold(strings.TrimSpace(raw), "free") {
		return 0, nil
	}

	var cleaned strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			cleaned.WriteRune(r)
		}
	}

	value, err := strconv.ParseFloat(cleaned.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: price %q has no numeric content", ErrValidationFailure, raw)
	}
	return int(math.Round(value * 100)), nil
}

// FormatOS maps a free-text operating-system string onto the fixed
// vocabulary. Matches are by case-insensitive substring containment and come
// back in keyword order, each name at most once.
func FormatOS(raw string) []string {
	lowered := strings.ToLower(raw)

	oses := []string{}
	for _, os := range osVocabulary {
		if strings.Contains(lowered, os.keyword) {
			oses = append(oses, os.canonical)
		}
	}
	return oses
}

// HasNSFWTags reports whether any tag equals a known NSFW keyword,
// case-insensitively.
func HasNSFWTags(tags []string) bool {
	for _, tag := range tags {
		for _, nsfw := range nsfwTags {
			if strings.EqualFold(strings.TrimSpace(tag), nsfw) {
				return true
			}
		}
	}
	return false
}

// ParseReleaseDate parses any of the raw release-date shapes the sources
// produce.
func ParseReleaseDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	for _, format := range releaseDateFormats {
		if t, err := time.Parse(format, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised release date %q", ErrValidationFailure, raw)
}

// Normalize converts a raw listing into the canonical record.
func Normalize(raw scraper.RawListing, platform string) (Record, error) {
	price, err := FormatPrice(raw.CurrentPrice)
	if err != nil {
		return Record{}, err
	}

	released, err := ParseReleaseDate(raw.ReleaseDate)
	if err != nil {
		return Record{}, err
	}

	if raw.URL == "" {
		return Record{}, fmt.Errorf("%w: listing %q has no URL", ErrValidationFailure, raw.Title)
	}

	return Record{
		Platform:         platform,
		Title:            raw.Title,
		Description:      raw.Description,
		ImageURL:         raw.ImageURL,
		URL:              raw.URL,
		PriceMinor:       price,
		ReleaseDate:      released,
		NSFW:             HasNSFWTags(raw.Tags),
		Genres:           raw.Genres,
		OperatingSystems: normalizeOperatingSystems(raw.OperatingSystems),
	}, nil
}

// normalizeOperatingSystems runs FormatOS over every raw OS string and
// deduplicates the union, keeping first-seen order.
func normalizeOperatingSystems(raw []string) []string {
	seen := make(map[string]bool)

	oses := []string{}
	for _, entry := range raw {
		for _, name := range FormatOS(entry) {
			if !seen[name] {
				seen[name] = true
				oses = append(oses, name)
			}
		}
	}
	return oses
}
