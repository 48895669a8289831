// Package streamsearch looks up movie titles on a streaming site by
// scraping its search listing and quick-content fragments.
package streamsearch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/moovbot/core/logger"

	"github.com/PuerkitoBio/goquery"
)

const (
	searchPath  = "/search/"
	detailsPath = "/engine/ajax/quick_content.php"

	// maxResults caps the listing; one inline button is rendered per result.
	maxResults = 10
)

// Result is one entry of the search listing.
type Result struct {
	ID    int64
	Title string
	Info  string
	Link  string
}

// Details is the expanded description of a single title.
type Details struct {
	ID          int64
	Title       string
	Description string
	Rating      string
	Link        string
}

// Client scrapes the streaming site.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient builds a client for the site at baseURL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("streamsearch: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("streamsearch: incomplete base url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout},
	}, nil
}

// Search queries the site's search listing.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	u := *c.base
	u.Path += searchPath
	u.RawQuery = url.Values{
		"do":        {"search"},
		"subaction": {"search"},
		"q":         {query},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("streamsearch: build search request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("streamsearch: search %q: %w", query, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("streamsearch: search %q: status %s", query, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("streamsearch: parse search page: %w", err)
	}
	results := parseSearch(doc)
	logger.LogEvent(ctx, logger.STREAM, slog.LevelDebug, "search.scrape",
		slog.String("status", "ok"),
		slog.Int("count", len(results)),
	)
	return results, nil
}

// Details fetches the quick-content fragment of a single title.
func (c *Client) Details(ctx context.Context, id int64) (*Details, error) {
	u := *c.base
	u.Path += detailsPath
	form := url.Values{
		"id":       {strconv.FormatInt(id, 10)},
		"is_touch": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("streamsearch: build details request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("streamsearch: details %d: %w", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("streamsearch: details %d: status %s", id, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("streamsearch: parse details fragment: %w", err)
	}
	d := parseDetails(doc)
	d.ID = id
	return d, nil
}

func parseSearch(doc *goquery.Document) []Result {
	var results []Result
	doc.Find(".b-content__inline_item").Each(func(_ int, s *goquery.Selection) {
		if len(results) >= maxResults {
			return
		}
		idAttr, ok := s.Attr("data-id")
		if !ok {
			return
		}
		id, err := strconv.ParseInt(strings.TrimSpace(idAttr), 10, 64)
		if err != nil {
			return
		}

		link := s.Find(".b-content__inline_item-link a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return
		}
		href, _ := link.Attr("href")
		info := strings.TrimSpace(s.Find(".b-content__inline_item-link div").First().Text())

		results = append(results, Result{
			ID:    id,
			Title: title,
			Info:  info,
			Link:  href,
		})
	})
	return results
}

func parseDetails(doc *goquery.Document) *Details {
	title := doc.Find(".b-content__bubble_title a").First()
	href, _ := title.Attr("href")
	return &Details{
		Title:       strings.TrimSpace(title.Text()),
		Rating:      strings.TrimSpace(doc.Find(".b-content__bubble_rating").First().Text()),
		Description: strings.TrimSpace(doc.Find(".b-content__bubble_text").First().Text()),
		Link:        href,
	}
}
