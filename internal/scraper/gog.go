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
	gogBaseURL = "https://www.gog.com"
	gogListURL = "/en/games?releaseStatuses=new-arrival&order=desc:releaseDate&hideDLCs=true&page="

	// The listing pages are sorted newest-first, so paging stops as soon as a
	// listing older than the target date shows up.
	gogMaxPages = 10
)

// GOG scrapes the GOG new-arrivals storefront. Each product tile is followed
// to its product page, whose details table is parsed into a label-keyed
// lookup since GOG does not guarantee row ordering.
type GOG struct {
	http *resty.Client
}

// NewGOG returns a GOG extractor. baseURL is overridable for tests; pass ""
// for the live storefront.
func NewGOG(baseURL string) *GOG {
	if baseURL == "" {
		baseURL = gogBaseURL
	}
	return &GOG{http: newHTTPClient(baseURL)}
}

// Platform implements Source.
func (g *GOG) Platform() string { return "gog" }

// Extract returns the listings released on the given date.
func (g *GOG) Extract(ctx context.Context, date time.Time) (SourcePayload, error) {
	payload := SourcePayload{Platform: g.Platform(), Listings: []RawListing{}}

	for page := 1; page <= gogMaxPages; page++ {
		doc, err := fetchDocument(ctx, g.http, fmt.Sprintf("%s%d", gogListURL, page))
		if err != nil {
			return payload, fmt.Errorf("%w: gog listing page %d: %s", ErrSourceUnavailable, page, err)
		}

		urls := gameURLsFromPage(doc)
		if len(urls) == 0 {
			break
		}

		done, err := g.collectTimelyListings(ctx, &payload, urls, date)
		if err != nil {
			return payload, err
		}
		if done {
			break
		}
	}

	return payload, ctx.Err()
}

// collectTimelyListings appends every listing released on the target date and
// reports whether an older listing was seen, meaning paging can stop.
func (g *GOG) collectTimelyListings(ctx context.Context, payload *SourcePayload, urls []string, date time.Time) (bool, error) {
	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return true, err
		}

		listing, released, err := g.scrapeGamePage(ctx, url)
		if err != nil {
			slog.WarnContext(ctx, "skipping gog listing", "url", url, "err", err)
			continue
		}

		target := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		if released.Before(target) {
			return true, nil
		}
		if sameDay(released, date) {
			payload.Listings = append(payload.Listings, listing)
		}
	}
	return false, nil
}

func gameURLsFromPage(doc *goquery.Document) []string {
	var urls []string
	doc.Find("a.product-tile").Each(func(_ int, tile *goquery.Selection) {
		if href := tile.AttrOr("href", ""); href != "" {
			urls = append(urls, href)
		}
	})
	return urls
}

// detailsTable is a label-keyed view of GOG's product details rows.
type detailsTable struct {
	rows []*goquery.Selection
}

func newDetailsTable(doc *goquery.Document, rowSelector string) detailsTable {
	var rows []*goquery.Selection
	doc.Find(rowSelector).Each(func(_ int, row *goquery.Selection) {
		rows = append(rows, row)
	})
	return detailsTable{rows: rows}
}

// find returns the first row whose label contains the given text,
// case-insensitively.
func (t detailsTable) find(label string) *goquery.Selection {
	for _, row := range t.rows {
		rowLabel := row.Find("div.details__category.table__row-label").Text()
		if strings.Contains(strings.ToLower(rowLabel), label) {
			return row
		}
	}
	return nil
}

func (t detailsTable) links(label string) []string {
	row := t.find(label)
	if row == nil {
		return []string{}
	}
	var values []string
	row.Find("a").Each(func(_ int, link *goquery.Selection) {
		values = append(values, strings.TrimSpace(link.Text()))
	})
	return values
}

func (t detailsTable) text(label string) string {
	row := t.find(label)
	if row == nil {
		return ""
	}
	return strings.TrimSpace(row.Find("div.details__content.table__row-content").Text())
}

func (g *GOG) scrapeGamePage(ctx context.Context, url string) (RawListing, time.Time, error) {
	doc, err := fetchDocument(ctx, g.http, url)
	if err != nil {
		return RawListing{}, time.Time{}, err
	}

	title := strings.TrimSpace(doc.Find("h1.productcard-basics__title").Text())
	if title == "" {
		return RawListing{}, time.Time{}, fmt.Errorf("%w: no title on %s", ErrParseFailure, url)
	}

	price, err := findGogPrice(doc)
	if err != nil {
		return RawListing{}, time.Time{}, err
	}

	details := newDetailsTable(doc, "div.table__row.details__row")
	ratings := newDetailsTable(doc, "div.table__row.details__rating.details__row")

	releaseText := ratings.text("release")
	released, err := parseGogReleaseDate(releaseText)
	if err != nil {
		return RawListing{}, time.Time{}, err
	}

	listing := RawListing{
		Title:            title,
		Description:      strings.TrimSpace(doc.Find("div.description").Text()),
		ImageURL:         doc.Find("img.mobile-slider__image").AttrOr("src", ""),
		Genres:           details.links("genre"),
		Tags:             details.links("tag"),
		OperatingSystems: []string{ratings.text("works")},
		CurrentPrice:     price,
		ReleaseDate:      released.Format("2006-01-02"),
		URL:              url,
	}
	return listing, released, nil
}

func findGogPrice(doc *goquery.Document) (string, error) {
	actions := doc.Find(`div[selenium-id="ProductActionsBody"]`)

	price := actions.Find(`span[selenium-id="ProductFinalPrice"]`)
	if price.Length() == 0 {
		price = actions.Find("span.product-actions-price__final-amount")
	}
	if price.Length() == 0 {
		return "", fmt.Errorf("%w: the price is somewhere else", ErrParseFailure)
	}
	return strings.TrimSpace(price.Text()), nil
}

// parseGogReleaseDate reads the date out of a release row like
// "({ 2024-10-18 }) ...": the timestamp sits at a fixed offset in the text.
func parseGogReleaseDate(text string) (time.Time, error) {
	if len(text) < 13 {
		return time.Time{}, fmt.Errorf("%w: release date row too short: %q", ErrParseFailure, text)
	}
	released, err := time.Parse("2006-01-02", text[3:13])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: release date %q: %s", ErrParseFailure, text, err)
	}
	return released, nil
}
