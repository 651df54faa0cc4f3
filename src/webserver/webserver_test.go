package webserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ironsmile/aquarelle/src/artwork"
	"github.com/ironsmile/aquarelle/src/config"
	"github.com/ironsmile/aquarelle/src/library"
	"github.com/ironsmile/aquarelle/src/store"
	"github.com/ironsmile/aquarelle/src/webserver"
	"github.com/ironsmile/aquarelle/src/webserver/webserverfakes"
)

var hqImage = []byte("\x89PNG high quality artwork")

type testDeps struct {
	artworks *store.Collection
	catalog  *library.Catalog
}

// newTestDeps opens a temporary store with one artist which has only an "hq"
// artwork and an artwork for an entity with a slash in its ID.
func newTestDeps(t *testing.T, ctx context.Context) testDeps {
	st, err := store.Open(
		ctx,
		filepath.Join(t.TempDir(), "webserver.sqlite"),
		os.DirFS("../../sqls"),
	)
	if err != nil {
		t.Fatalf("opening store: %s", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	deps := testDeps{
		artworks: st.Collection(artwork.CollectionName),
		catalog: library.NewCatalog(
			st.Collection(library.ArtistsCollection),
			st.Collection(library.AlbumsCollection),
		),
	}

	err = deps.catalog.AddArtist(ctx, library.Artist{ID: "boc", Name: "Boards of Canada"})
	if err != nil {
		t.Fatalf("adding artist: %s", err)
	}

	for _, entityID := range []string{"boc", "a/b"} {
		_, err := deps.artworks.PutAttachment(
			ctx,
			artwork.DocID(entityID),
			artwork.RenditionHQ,
			"",
			hqImage,
			"image/png",
		)
		if err != nil {
			t.Fatalf("storing artwork for %s: %s", entityID, err)
		}
	}

	return deps
}

func newTestServer(
	ctx context.Context,
	deps testDeps,
	downloader webserver.ArtworkDownloader,
) *webserver.Server {
	cfg := config.Config{
		Listen:       "127.0.0.1:0",
		ReadTimeout:  5,
		WriteTimeout: 5,
	}
	return webserver.NewServer(ctx, cfg, deps.artworks, deps.catalog, downloader)
}

// TestArtworkHandler checks that renditions are served with their content type
// and that the missing ones are reported with JSON errors.
func TestArtworkHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := newTestDeps(t, ctx)
	handler := newTestServer(ctx, deps, &webserverfakes.FakeArtworkDownloader{}).Handler()

	tests := []struct {
		desc       string
		url        string
		statusCode int
		body       []byte
	}{
		{
			desc:       "existing rendition",
			url:        "/v1/artwork/boc/hq",
			statusCode: http.StatusOK,
			body:       hqImage,
		},
		{
			desc:       "entity ID with slash",
			url:        "/v1/artwork/a%2Fb/hq",
			statusCode: http.StatusOK,
			body:       hqImage,
		},
		{
			desc:       "missing rendition",
			url:        "/v1/artwork/boc/small",
			statusCode: http.StatusNotFound,
		},
		{
			desc:       "missing artwork",
			url:        "/v1/artwork/autechre/hq",
			statusCode: http.StatusNotFound,
		},
		{
			desc:       "unknown rendition",
			url:        "/v1/artwork/boc/huge",
			statusCode: http.StatusBadRequest,
		},
	}

	for _, test := range tests {
		resp := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, test.url, nil)
		handler.ServeHTTP(resp, req)

		if resp.Code != test.statusCode {
			t.Errorf("%s: expected status %d but got %d", test.desc,
				test.statusCode, resp.Code)
			continue
		}

		if test.statusCode != http.StatusOK {
			var errResp struct {
				Error string `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
				t.Errorf("%s: error response was not JSON: %s", test.desc, err)
			} else if errResp.Error == "" {
				t.Errorf("%s: error response had an empty error", test.desc)
			}
			continue
		}

		if !bytes.Equal(test.body, resp.Body.Bytes()) {
			t.Errorf("%s: expected body `%s` but got `%s`", test.desc,
				test.body, resp.Body.Bytes())
		}

		if ct := resp.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("%s: expected content type image/png but got %s", test.desc, ct)
		}

		if cc := resp.Header().Get("Cache-Control"); cc != "max-age=604800" {
			t.Errorf("%s: unexpected Cache-Control: %s", test.desc, cc)
		}
	}

	// Clients which already have the artwork get it from their cache.
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/v1/artwork/boc/hq", nil))
	etag := resp.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("artwork response did not have an ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/artwork/boc/hq", nil)
	req.Header.Set("If-None-Match", etag)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotModified {
		t.Errorf("expected status %d for matching ETag but got %d",
			http.StatusNotModified, resp.Code)
	}
}

// TestFetchHandler makes sure a single entity download is started for known
// entities only.
func TestFetchHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := newTestDeps(t, ctx)
	fakeDownloader := &webserverfakes.FakeArtworkDownloader{}
	handler := newTestServer(ctx, deps, fakeDownloader).Handler()

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/v1/artwork/boc", nil))

	if resp.Code != http.StatusNoContent {
		t.Errorf("expected status %d but got %d", http.StatusNoContent, resp.Code)
	}

	if fakeDownloader.DownloadHQCoverCallCount() != 1 {
		t.Fatalf("expected one download but there were %d",
			fakeDownloader.DownloadHQCoverCallCount())
	}

	_, ent := fakeDownloader.DownloadHQCoverArgsForCall(0)
	expected := library.Entity{ID: "boc", Name: "Boards of Canada"}
	if ent != expected {
		t.Errorf("expected download for %#v but it was for %#v", expected, ent)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/v1/artwork/autechre", nil))

	if resp.Code != http.StatusNotFound {
		t.Errorf("unknown entity: expected status %d but got %d",
			http.StatusNotFound, resp.Code)
	}
	if fakeDownloader.DownloadHQCoverCallCount() != 1 {
		t.Errorf("download was started for an unknown entity")
	}

	fakeDownloader.DownloadHQCoverReturns(errors.New("discogs is down"))

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/v1/artwork/boc", nil))

	if resp.Code != http.StatusBadGateway {
		t.Errorf("failed download: expected status %d but got %d",
			http.StatusBadGateway, resp.Code)
	}
}

// TestProcessAllHandler checks that processing of the whole catalog is started
// in the background and only once at a time.
func TestProcessAllHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := newTestDeps(t, ctx)

	release := make(chan struct{})
	fakeDownloader := &webserverfakes.FakeArtworkDownloader{
		ProcessAllStub: func(context.Context) {
			<-release
		},
	}
	srv := newTestServer(ctx, deps, fakeDownloader)
	handler := srv.Handler()

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/v1/artwork", nil))
	if resp.Code != http.StatusAccepted {
		t.Errorf("expected status %d but got %d", http.StatusAccepted, resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/v1/artwork", nil))
	if resp.Code != http.StatusConflict {
		t.Errorf("second run: expected status %d but got %d",
			http.StatusConflict, resp.Code)
	}

	close(release)
	srv.Wait()

	if fakeDownloader.ProcessAllCallCount() != 1 {
		t.Errorf("expected one processing run but there were %d",
			fakeDownloader.ProcessAllCallCount())
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/v1/artwork", nil))
	if resp.Code != http.StatusAccepted {
		t.Errorf("after finishing: expected status %d but got %d",
			http.StatusAccepted, resp.Code)
	}
	srv.Wait()
}

// TestServerServeAndStop starts a real server, makes a request to it and then
// stops it. Background processing must be stopped with the server.
func TestServerServeAndStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := newTestDeps(t, ctx)
	fakeDownloader := &webserverfakes.FakeArtworkDownloader{
		ProcessAllStub: func(ctx context.Context) {
			<-ctx.Done()
		},
	}
	srv := newTestServer(ctx, deps, fakeDownloader)

	if err := srv.Serve(); err != nil {
		t.Fatalf("starting server: %s", err)
	}

	baseURL := fmt.Sprintf("http://%s", srv.Addr())
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(baseURL + "/v1/artwork/boc/hq")
	if err != nil {
		t.Fatalf("getting artwork: %s", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK || !bytes.Equal(hqImage, body) {
		t.Errorf("unexpected artwork response %d: %s", resp.StatusCode, body)
	}

	resp, err = client.Post(baseURL+"/v1/artwork", "application/json", nil)
	if err != nil {
		t.Fatalf("starting processing: %s", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("expected status %d but got %d", http.StatusAccepted, resp.StatusCode)
	}

	stopped := make(chan struct{})
	go func() {
		srv.Stop()
		srv.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop in time")
	}

	if _, err := client.Get(baseURL + "/v1/artwork/boc/hq"); err == nil {
		t.Errorf("expected an error after the server was stopped")
	}
}

// TestFetchAndProcessAllExclusive makes sure a single entity download and the
// processing of the whole catalog never write artwork at the same time.
func TestFetchAndProcessAllExclusive(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := newTestDeps(t, ctx)

	release := make(chan struct{})
	fakeDownloader := &webserverfakes.FakeArtworkDownloader{
		ProcessAllStub: func(context.Context) {
			<-release
		},
	}
	srv := newTestServer(ctx, deps, fakeDownloader)
	handler := srv.Handler()

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/v1/artwork", nil))
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected status %d but got %d", http.StatusAccepted, resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/v1/artwork/boc", nil))
	if resp.Code != http.StatusConflict {
		t.Errorf("fetch during processing: expected status %d but got %d",
			http.StatusConflict, resp.Code)
	}
	if fakeDownloader.DownloadHQCoverCallCount() != 0 {
		t.Errorf("download was started while processing all artwork")
	}

	close(release)
	srv.Wait()

	downloading := make(chan struct{})
	finishDownload := make(chan struct{})
	fakeDownloader.DownloadHQCoverCalls(func(context.Context, library.Entity) error {
		close(downloading)
		<-finishDownload
		return nil
	})

	fetchDone := make(chan int)
	go func() {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/v1/artwork/boc", nil))
		fetchDone <- resp.Code
	}()

	select {
	case <-downloading:
	case <-time.After(5 * time.Second):
		t.Fatalf("download was not started in time")
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/v1/artwork", nil))
	if resp.Code != http.StatusConflict {
		t.Errorf("processing during fetch: expected status %d but got %d",
			http.StatusConflict, resp.Code)
	}

	close(finishDownload)
	if code := <-fetchDone; code != http.StatusNoContent {
		t.Errorf("expected status %d for the fetch but got %d", http.StatusNoContent, code)
	}

	if fakeDownloader.ProcessAllCallCount() != 1 {
		t.Errorf("expected one processing run but there were %d",
			fakeDownloader.ProcessAllCallCount())
	}
}
