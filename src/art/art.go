package art

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// ErrImageNotFound is returned when no suitable image was found at a source.
var ErrImageNotFound = errors.New("image not found")

// ErrImageTooBig is returned when some image has been find but it is deemed to big
// for the server to handle.
var ErrImageTooBig = errors.New("image is too big")

// Kinds of catalog objects as they appear in the Discogs URLs.
const (
	KindArtist  = "artist"
	KindRelease = "release"
)

const (
	searchResultSelector = ".search_result_title"
	objectIDAttribute    = "data-object-id"
	imageListSelector    = "#view_images > p > span > img"
)

// Client scrapes the Discogs web site for catalog object IDs and their images.
// It throttles itself so that no more than one request per `delay` is made.
// It is safe for concurrent use.
type Client struct {
	useragent  string
	limiter    *rate.Limiter
	httpClient *http.Client
}

// NewClient returns fully configured Client. Requests are identified with
// `useragent`, spaced at least `delay` apart and each one of them must finish
// within `timeout`.
func NewClient(useragent string, delay, timeout time.Duration) *Client {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}

	return &Client{
		useragent:  useragent,
		limiter:    rate.NewLimiter(limit, 1),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ResolveID loads the search results page at `searchURL` and returns the catalog
// object ID of the first result which title is exactly `title`. An empty ID and
// nil error are returned when there is no such result.
func (c *Client) ResolveID(ctx context.Context, searchURL, title string) (string, error) {
	doc, err := c.getHTML(ctx, searchURL)
	if err != nil {
		return "", err
	}

	var objectID string
	doc.Find(searchResultSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if resTitle, ok := s.Attr("title"); !ok || resTitle != title {
			return true
		}

		objectID, _ = s.Parent().Parent().Attr(objectIDAttribute)
		return false
	})

	return objectID, nil
}

// ResolveImageURL loads the images page at `pageURL` and returns the absolute URL
// of its first full-size image. An empty URL and nil error are returned when the
// page has no images.
func (c *Client) ResolveImageURL(ctx context.Context, pageURL string) (string, error) {
	doc, err := c.getHTML(ctx, pageURL)
	if err != nil {
		return "", err
	}

	src, ok := doc.Find(imageListSelector).First().Attr("src")
	if !ok || strings.TrimSpace(src) == "" {
		return "", nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parsing page URL: %w", err)
	}

	imgURL, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return "", fmt.Errorf("malformed image URL `%s`: %w", src, err)
	}

	return base.ResolveReference(imgURL).String(), nil
}

func (c *Client) getHTML(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating Discogs req: %w", err)
	}
	req.Header.Set("User-Agent", c.useragent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Discogs page %s returned HTTP %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML of %s: %w", pageURL, err)
	}

	return doc, nil
}

// SearchURL returns the URL of the search page for `query` limited to catalog
// objects of `kind`.
func SearchURL(base, query, kind string) string {
	values := url.Values{}
	values.Set("q", query)
	values.Set("type", kind)

	return fmt.Sprintf("%s/search/?%s", strings.TrimSuffix(base, "/"), values.Encode())
}

// ImagesURL returns the URL of the page listing the images of object `id`.
func ImagesURL(base, kind, id string) string {
	return fmt.Sprintf("%s/%s/%s/images",
		strings.TrimSuffix(base, "/"),
		url.PathEscape(kind),
		url.PathEscape(id),
	)
}
