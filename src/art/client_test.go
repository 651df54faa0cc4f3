package art_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ironsmile/aquarelle/src/art"
	"github.com/ironsmile/aquarelle/src/assert"
)

const searchResultsHTML = `<html><body>
<div id="search_results">
	<div class="card" data-object-id="111">
		<h4><a class="search_result_title" title="boards of canada" href="/artist/111">boards of canada</a></h4>
	</div>
	<div class="card" data-object-id="12345">
		<h4><a class="search_result_title" title="Boards of Canada" href="/artist/12345">Boards of Canada</a></h4>
	</div>
	<div class="card" data-object-id="999">
		<h4><a class="search_result_title" title="Boards of Canada" href="/artist/999">Boards of Canada</a></h4>
	</div>
	<div class="card">
		<h4><a class="search_result_title" title="No Grandparent ID" href="/artist/0">No ID</a></h4>
	</div>
</div>
</body></html>`

// TestClientResolveID makes sure that the search result with exactly the same
// title is used and its object ID is returned.
func TestClientResolveID(t *testing.T) {
	const userAgent = "aquarelle/testing"

	var (
		requests    int
		serverError string
	)
	handler := func(w http.ResponseWriter, req *http.Request) {
		requests++
		if req.UserAgent() != userAgent {
			serverError = fmt.Sprintf("expected user agent '%s' but got '%s'",
				userAgent, req.UserAgent())
		}
		if req.URL.Path != "/search/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, searchResultsHTML)
	}
	srv := httptest.NewServer(http.HandlerFunc(handler))
	defer srv.Close()

	c := art.NewClient(userAgent, 0, 5*time.Second)
	ctx := context.Background()
	searchURL := art.SearchURL(srv.URL, "Boards of Canada", art.KindArtist)

	tests := []struct {
		title    string
		expected string
	}{
		{title: "Boards of Canada", expected: "12345"},
		{title: "boards of canada", expected: "111"},
		{title: "BOARDS OF CANADA", expected: ""},
		{title: "Boards of", expected: ""},
		{title: "No Grandparent ID", expected: ""},
		{title: `Quote's "title"`, expected: ""},
	}

	for _, test := range tests {
		id, err := c.ResolveID(ctx, searchURL, test.title)
		assert.NilErr(t, err, "title %s", test.title)
		assert.Equal(t, test.expected, id, "title %s", test.title)
	}

	if serverError != "" {
		t.Errorf("test server error: %s", serverError)
	}
	assert.Equal(t, len(tests), requests)

	_, err := c.ResolveID(ctx, srv.URL+"/not-search", "Boards of Canada")
	if err == nil || !strings.Contains(err.Error(), "returned HTTP 404") {
		t.Errorf("expected an error showing the returned HTTP status but got %v", err)
	}
}

// TestClientResolveImageURL checks that the first image from the images listing
// is found and its URL is made absolute.
func TestClientResolveImageURL(t *testing.T) {
	handler := func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/artist/12345/images":
			fmt.Fprint(w, `<html><body><div id="view_images">
				<p><span><img src="/image1.jpg" alt="first"></span></p>
				<p><span><img src="/image2.jpg" alt="second"></span></p>
			</div></body></html>`)
		case "/release/7/images":
			fmt.Fprint(w, `<html><body><div id="view_images">
				<p><span><img src="https://img.example.com/r-7.jpeg"></span></p>
			</div></body></html>`)
		case "/release/8/images":
			fmt.Fprint(w, `<html><body><div id="view_images">
				<p><img src="/not-in-a-span.jpg"></p>
			</div></body></html>`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
	srv := httptest.NewServer(http.HandlerFunc(handler))
	defer srv.Close()

	c := art.NewClient("aquarelle/testing", 0, 5*time.Second)
	ctx := context.Background()

	imgURL, err := c.ResolveImageURL(ctx, art.ImagesURL(srv.URL, art.KindArtist, "12345"))
	assert.NilErr(t, err)
	assert.Equal(t, srv.URL+"/image1.jpg", imgURL)

	imgURL, err = c.ResolveImageURL(ctx, art.ImagesURL(srv.URL, art.KindRelease, "7"))
	assert.NilErr(t, err)
	assert.Equal(t, "https://img.example.com/r-7.jpeg", imgURL)

	imgURL, err = c.ResolveImageURL(ctx, art.ImagesURL(srv.URL, art.KindRelease, "8"))
	assert.NilErr(t, err)
	assert.Equal(t, "", imgURL)

	_, err = c.ResolveImageURL(ctx, art.ImagesURL(srv.URL, art.KindRelease, "9"))
	assert.NotNilErr(t, err)
}

// TestClientThrottling makes sure requests are spaced by the configured delay.
func TestClientThrottling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html></html>`)
	}))
	defer srv.Close()

	const delay = 50 * time.Millisecond
	c := art.NewClient("aquarelle/testing", delay, 5*time.Second)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.ResolveImageURL(context.Background(), srv.URL)
		assert.NilErr(t, err)
	}

	if elapsed := time.Since(start); elapsed < 2*delay {
		t.Errorf("three requests finished in %s, expected at least %s", elapsed, 2*delay)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ResolveID(ctx, srv.URL, "anything")
	assert.NotNilErr(t, err, "cancelled context")
}

// TestURLBuilders checks the format of the URLs for the Discogs pages.
func TestURLBuilders(t *testing.T) {
	searchURL := art.SearchURL("https://www.discogs.com/", "Boards of Canada - Geogaddi", art.KindRelease)

	parsed, err := url.Parse(searchURL)
	assert.NilErr(t, err)
	assert.Equal(t, "/search/", parsed.Path)
	assert.Equal(t, "Boards of Canada - Geogaddi", parsed.Query().Get("q"))
	assert.Equal(t, "release", parsed.Query().Get("type"))
	assert.Equal(t, "www.discogs.com", parsed.Host)

	assert.Equal(t,
		"https://www.discogs.com/artist/12345/images",
		art.ImagesURL("https://www.discogs.com", art.KindArtist, "12345"),
	)
}
