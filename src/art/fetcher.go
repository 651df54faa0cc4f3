package art

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/spf13/afero"
)

// MaxImageSize is the biggest image in bytes which Fetcher will download.
const MaxImageSize = 10 * 1024 * 1024

// mediaExtensions are the files from which an embedded picture is read instead of
// treating them as images.
var mediaExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".m4a":  true,
	".ogg":  true,
}

// Fetcher retrieves raw image bytes from the local filesystem or over HTTP.
type Fetcher struct {
	fs         afero.Fs
	useragent  string
	httpClient *http.Client
}

// NewFetcher returns a Fetcher which reads local files from `fs`.
func NewFetcher(fs afero.Fs, useragent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		fs:         fs,
		useragent:  useragent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch returns the image at `source`. Sources starting with "/" are local files,
// everything else is downloaded.
func (f *Fetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "/") {
		return f.readLocal(source)
	}

	return f.download(ctx, source)
}

func (f *Fetcher) readLocal(path string) ([]byte, error) {
	if !mediaExtensions[strings.ToLower(filepath.Ext(path))] {
		return afero.ReadFile(f.fs, path)
	}

	fh, err := f.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	meta, err := tag.ReadFrom(fh)
	if err != nil {
		return nil, fmt.Errorf("reading tags of %s: %w", path, err)
	}

	pic := meta.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return nil, ErrImageNotFound
	}

	return pic.Data, nil
}

func (f *Fetcher) download(ctx context.Context, imgURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imgURL, nil)
	if err != nil {
		return nil, fmt.Errorf("malformed image URL (%s): %w", imgURL, err)
	}
	req.Header.Set("User-Agent", f.useragent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request for image failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image %s returned HTTP %d", imgURL, resp.StatusCode)
	}

	imgBytes, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("getting image failed: %w", err)
	}
	if len(imgBytes) > MaxImageSize {
		return nil, ErrImageTooBig
	}

	return imgBytes, nil
}
