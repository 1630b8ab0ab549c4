package scraper

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const requestTimeout = 10 * time.Second

func newHTTPClient(baseURL string) *resty.Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(requestTimeout)
	jar, err := cookiejar.New(nil)
	if err == nil {
		client.SetCookieJar(jar)
	}
	client.SetHeader("user-agent", "Mozilla/5.0 (X11; Linux x86_64) games-tracker/1.0")
	return client
}

// fetchDocument GETs a page and parses it into a goquery document.
func fetchDocument(ctx context.Context, client *resty.Client, url string) (*goquery.Document, error) {
	res, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("failed to connect to %s: status %d", url, res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}
	return doc, nil
}
