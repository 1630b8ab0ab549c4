package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	steamBaseURL   = "https://store.steampowered.com"
	steamSearchURL = "/search/?sort_by=Released_DESC&category1=998"
)

// Date formats seen on the Steam search results page.
var steamDateFormats = []string{
	"2 January, 2006",
	"January 2006",
	"2 Jan, 2006",
	"2006-01-02",
}

// Steam scrapes the Steam new-releases search page. Each matching search
// result row is followed to its app page for description, tags, genres and
// supported operating systems.
type Steam struct {
	http *resty.Client
}

// NewSteam returns a Steam extractor. baseURL is overridable for tests; pass
// "" for the live storefront.
func NewSteam(baseURL string) *Steam {
	if baseURL == "" {
		baseURL = steamBaseURL
	}
	return &Steam{http: newHTTPClient(baseURL)}
}

// Platform implements Source.
func (s *Steam) Platform() string { return "steam" }

// Extract returns the listings released on the given date.
func (s *Steam) Extract(ctx context.Context, date time.Time) (SourcePayload, error) {
	payload := SourcePayload{Platform: s.Platform(), Listings: []RawListing{}}

	doc, err := fetchDocument(ctx, s.http, steamSearchURL)
	if err != nil {
		return payload, fmt.Errorf("%w: steam search page: %s", ErrSourceUnavailable, err)
	}

	doc.Find("a.search_result_row").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}

		released, ok := parseSteamReleaseDate(row)
		if !ok || !sameDay(released, date) {
			return true
		}

		listing, err := s.scrapeListing(ctx, row, released)
		if err != nil {
			slog.WarnContext(ctx, "skipping steam listing", "url", row.AttrOr("href", ""), "err", err)
			return true
		}
		payload.Listings = append(payload.Listings, listing)
		return true
	})

	return payload, ctx.Err()
}

func (s *Steam) scrapeListing(ctx context.Context, row *goquery.Selection, released time.Time) (RawListing, error) {
	appID := row.AttrOr("data-ds-appid", "")
	if appID == "" {
		return RawListing{}, fmt.Errorf("%w: search result row has no app id", ErrParseFailure)
	}

	appDoc, err := fetchDocument(ctx, s.http, fmt.Sprintf("/app/%s/", appID))
	if err != nil {
		return RawListing{}, err
	}

	return RawListing{
		Title:            row.Find("span.title").Text(),
		Description:      scrapeSteamDescription(appDoc),
		ImageURL:         row.Find("img").AttrOr("src", ""),
		Genres:           scrapeSteamGenres(appDoc),
		Tags:             scrapeSteamTags(appDoc),
		OperatingSystems: scrapeSteamOperatingSystems(appDoc),
		CurrentPrice:     strings.TrimSpace(row.Find("div.discount_final_price").Text()),
		ReleaseDate:      released.Format("02 Jan 2006"),
		URL:              row.AttrOr("href", ""),
	}, nil
}

func parseSteamReleaseDate(row *goquery.Selection) (time.Time, bool) {
	text := strings.TrimSpace(row.Find("div.search_released").Text())
	if text == "" {
		return time.Time{}, false
	}
	for _, format := range steamDateFormats {
		if t, err := time.Parse(format, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func scrapeSteamDescription(doc *goquery.Document) string {
	description := strings.TrimSpace(doc.Find("div.game_description_snippet").Text())
	if description == "" {
		return "No description available."
	}
	return description
}

func scrapeSteamTags(doc *goquery.Document) []string {
	var tags []string
	doc.Find("a.app_tag").Each(func(_ int, tag *goquery.Selection) {
		tags = append(tags, strings.TrimSpace(tag.Text()))
	})
	if len(tags) == 0 {
		return []string{"No tags available."}
	}
	return tags
}

func scrapeSteamGenres(doc *goquery.Document) []string {
	genres := []string{}
	doc.Find("#genresAndManufacturer a[href]").Each(func(_ int, link *goquery.Selection) {
		if strings.Contains(link.AttrOr("href", ""), "genre") {
			genres = append(genres, strings.TrimSpace(link.Text()))
		}
	})
	return genres
}

// scrapeSteamOperatingSystems reads the platform icon classes on the app
// page. The second class of each span.platform_img names the OS.
func scrapeSteamOperatingSystems(doc *goquery.Document) []string {
	names := map[string]string{"win": "Windows", "mac": "Mac", "linux": "Linux"}

	oses := []string{}
	doc.Find("span.platform_img").Each(func(_ int, icon *goquery.Selection) {
		classes := strings.Fields(icon.AttrOr("class", ""))
		if len(classes) < 2 {
			return
		}
		if name, ok := names[classes[1]]; ok {
			oses = append(oses, name)
		}
	})
	return oses
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
