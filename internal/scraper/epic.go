package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	epicGraphqlURL  = "https://graphql.epicgames.com/graphql"
	epicStoreURL    = "https://store.epicgames.com/en-US/p/"
	epicDatePattern = "{{RELEASE_DATE}}"
)

// Category path fragments that mark a listing as something other than a game.
var epicExcludedCategories = []string{"addons", "digitalextras", "spthidden", "soundtracks"}

const epicSearchQuery = `
query searchStoreQuery($count: Int = 40) {
  Catalog {
    searchStore(
      category: "games"
      count: $count
      releaseDate: "` + epicDatePattern + `"
      sortBy: "releaseDate"
      sortDir: "DESC"
    ) {
      elements {
        title
        description
        keyImages { type url }
        categories { path }
        tags { name groupName }
        catalogNs { mappings(pageType: "productHome") { pageSlug } }
        price(country: "GB") { totalPrice { fmtPrice(locale: "en-GB") { discountPrice } } }
        releaseDate
      }
    }
  }
}`

type epicImage struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type epicCategory struct {
	Path string `json:"path"`
}

type epicTag struct {
	Name      string `json:"name"`
	GroupName string `json:"groupName"`
}

type epicMapping struct {
	PageSlug string `json:"pageSlug"`
}

type epicElement struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	KeyImages   []epicImage    `json:"keyImages"`
	Categories  []epicCategory `json:"categories"`
	Tags        []epicTag      `json:"tags"`
	CatalogNs   struct {
		Mappings []epicMapping `json:"mappings"`
	} `json:"catalogNs"`
	Price struct {
		TotalPrice struct {
			FmtPrice struct {
				DiscountPrice string `json:"discountPrice"`
			} `json:"fmtPrice"`
		} `json:"totalPrice"`
	} `json:"price"`
	ReleaseDate string `json:"releaseDate"`
}

type epicResponse struct {
	Data struct {
		Catalog struct {
			SearchStore struct {
				Elements []epicElement `json:"elements"`
			} `json:"searchStore"`
		} `json:"Catalog"`
	} `json:"data"`
}

// Epic queries the Epic Games GraphQL endpoint for the day's releases. The
// date-range filter is substituted directly into the query text.
type Epic struct {
	http *resty.Client
	url  string
}

// NewEpic returns an Epic extractor. endpoint is overridable for tests; pass
// "" for the live GraphQL endpoint.
func NewEpic(endpoint string) *Epic {
	if endpoint == "" {
		endpoint = epicGraphqlURL
	}
	return &Epic{http: newHTTPClient(""), url: endpoint}
}

// Platform implements Source.
func (e *Epic) Platform() string { return "epic" }

// Extract returns the listings released on the given date.
func (e *Epic) Extract(ctx context.Context, date time.Time) (SourcePayload, error) {
	payload := SourcePayload{Platform: e.Platform(), Listings: []RawListing{}}

	elements, err := e.query(ctx, date)
	if err != nil {
		return payload, err
	}

	for _, element := range elements {
		if !listingIsGame(element.Categories) {
			continue
		}
		payload.Listings = append(payload.Listings, RawListing{
			Title:            element.Title,
			Description:      element.Description,
			ImageURL:         listingImage(element.KeyImages),
			Genres:           tagsInGroup(element.Tags, "genre"),
			Tags:             tagsInGroup(element.Tags, "feature"),
			OperatingSystems: tagsInGroup(element.Tags, "platform"),
			CurrentPrice:     element.Price.TotalPrice.FmtPrice.DiscountPrice,
			ReleaseDate:      element.ReleaseDate,
			URL:              gameURL(element.CatalogNs.Mappings),
		})
	}

	return payload, nil
}

func (e *Epic) query(ctx context.Context, date time.Time) ([]epicElement, error) {
	day := date.Format("2006-01-02")
	dateRange := fmt.Sprintf("[%sT00:00:00.000Z,%sT18:00:00.000Z]", day, day)
	query := strings.Replace(epicSearchQuery, epicDatePattern, dateRange, 1)

	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, err
	}

	res, err := e.http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetBody(body).
		Post(e.url)
	if err != nil {
		return nil, fmt.Errorf("%w: epic graphql: %s", ErrSourceUnavailable, err)
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("%w: epic graphql: status %d", ErrSourceUnavailable, res.StatusCode())
	}

	var decoded epicResponse
	if err := json.Unmarshal(res.Body(), &decoded); err != nil {
		return nil, fmt.Errorf("%w: epic graphql response: %s", ErrParseFailure, err)
	}
	return decoded.Data.Catalog.SearchStore.Elements, nil
}

// listingIsGame reports whether a listing is an actual game rather than an
// add-on, extra or other non-game category.
func listingIsGame(categories []epicCategory) bool {
	for _, category := range categories {
		for _, excluded := range epicExcludedCategories {
			if strings.Contains(category.Path, excluded) {
				return false
			}
		}
	}
	return true
}

// listingImage returns the URL of the first thumbnail image, or "".
func listingImage(images []epicImage) string {
	for _, image := range images {
		if image.Type == "Thumbnail" {
			return image.URL
		}
	}
	return ""
}

func gameURL(mappings []epicMapping) string {
	if len(mappings) == 0 {
		return ""
	}
	return epicStoreURL + mappings[0].PageSlug
}

// tagsInGroup returns the names of the tags in the given groupName bucket.
// Epic groups its tags with groupName ∈ {platform, genre, feature}.
func tagsInGroup(tags []epicTag, group string) []string {
	names := []string{}
	for _, tag := range tags {
		if tag.GroupName == group {
			names = append(names, tag.Name)
		}
	}
	return names
}
