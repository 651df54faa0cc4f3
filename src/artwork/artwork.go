// Package artwork finds artwork for artists and albums on the internet and stores
// it as attachments of documents in the "artworks" collection. Every artwork is
// stored in three renditions: "hq", "large" and "small".
package artwork

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/ironsmile/aquarelle/src/art"
	"github.com/ironsmile/aquarelle/src/library"
	"github.com/ironsmile/aquarelle/src/scaler"
	"github.com/ironsmile/aquarelle/src/store"
)

// CollectionName is the name of the document collection for artworks.
const CollectionName = "artworks"

// Names of the artwork renditions.
const (
	RenditionHQ    = "hq"
	RenditionLarge = "large"
	RenditionSmall = "small"
)

// Rendition is one sized variant of an artwork.
type Rendition struct {
	Name  string
	Width int
}

// Renditions lists all renditions in the order in which they are stored.
var Renditions = []Rendition{
	{Name: RenditionHQ, Width: 600},
	{Name: RenditionLarge, Width: 300},
	{Name: RenditionSmall, Width: 64},
}

// IsRendition returns true when `name` is the name of a rendition.
func IsRendition(name string) bool {
	for _, r := range Renditions {
		if r.Name == name {
			return true
		}
	}
	return false
}

// DocID returns the ID of the artwork document of an entity.
func DocID(entityID string) string {
	return "artworks/" + entityID
}

// Finder locates artwork images on the internet.
type Finder interface {
	ResolveID(ctx context.Context, searchURL, title string) (string, error)
	ResolveImageURL(ctx context.Context, pageURL string) (string, error)
}

// ImageFetcher returns the bytes of the image found at source.
type ImageFetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// Cropper crops images. It must not fail: it returns its input when cropping
// is not possible.
type Cropper interface {
	Crop(ctx context.Context, data []byte, width, height int) []byte
}

// Scaler resizes images to a width while keeping their aspect ratio.
type Scaler interface {
	Scale(ctx context.Context, img io.Reader, toWidth int) ([]byte, error)
}

// Catalog gives access to the entities whose artwork is managed.
type Catalog interface {
	Artist(ctx context.Context, id string) (library.Artist, error)
	Entity(ctx context.Context, id string) (library.Entity, error)
	IDs(ctx context.Context) ([]string, error)
}

// artworkBody is the JSON body of an artwork document.
type artworkBody struct {
	Owner string `json:"owner"`
	Date  int64  `json:"date"`
}

// Downloader finds, crops and stores artwork.
type Downloader struct {
	// Retries is how many times a failed task is retried by ProcessAll
	// before it is given up.
	Retries int

	artworks store.AttachmentStore
	catalog  Catalog
	finder   Finder
	fetcher  ImageFetcher
	cropper  Cropper
	scaler   Scaler
	baseURL  string
	now      func() time.Time
}

// NewDownloader returns a Downloader which stores artwork in `artworks` and
// searches for it in the site at `baseURL`.
func NewDownloader(
	artworks store.AttachmentStore,
	catalog Catalog,
	finder Finder,
	fetcher ImageFetcher,
	cropper Cropper,
	resizer Scaler,
	baseURL string,
) *Downloader {
	return &Downloader{
		Retries:  1,
		artworks: artworks,
		catalog:  catalog,
		finder:   finder,
		fetcher:  fetcher,
		cropper:  cropper,
		scaler:   resizer,
		baseURL:  baseURL,
		now:      time.Now,
	}
}

// DownloadHQCover finds the artwork for `ent` and stores it. Entities which
// already have an "hq" rendition are skipped. Not finding an artwork is not
// an error.
func (d *Downloader) DownloadHQCover(ctx context.Context, ent library.Entity) error {
	doc, err := d.artworks.Get(ctx, DocID(ent.ID))
	if err == nil && doc.HasAttachment(RenditionHQ) {
		log.Printf("Skipping artwork for %s, already downloaded\n", ent.ID)
		return nil
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("checking artwork document: %w", err)
	}

	kind := art.KindArtist
	if ent.IsAlbum() {
		kind = art.KindRelease
	}

	name, err := d.displayName(ctx, ent)
	if err != nil {
		return err
	}

	log.Printf("Fetching artwork for %s\n", ent.ID)

	objectID, err := d.finder.ResolveID(ctx, art.SearchURL(d.baseURL, name, kind), ent.Name)
	if err != nil {
		return fmt.Errorf("searching for `%s`: %w", name, err)
	}
	if objectID == "" {
		return nil
	}

	imgURL, err := d.finder.ResolveImageURL(ctx, art.ImagesURL(d.baseURL, kind, objectID))
	if err != nil {
		return fmt.Errorf("finding images of %s %s: %w", kind, objectID, err)
	}
	if imgURL == "" {
		return nil
	}

	log.Printf("Found image %s for %s\n", imgURL, ent.ID)

	return d.SaveArtwork(ctx, ent.ID, imgURL)
}

// displayName is the name used for searching: the artist name for artists and
// "<artist> - <album>" for albums.
func (d *Downloader) displayName(ctx context.Context, ent library.Entity) (string, error) {
	if !ent.IsAlbum() {
		return ent.Name, nil
	}

	artist, err := d.catalog.Artist(ctx, ent.ArtistID)
	if err != nil {
		return "", fmt.Errorf("owner of album %s: %w", ent.ID, err)
	}

	return fmt.Sprintf("%s - %s", artist.Name, ent.Name), nil
}

// SaveArtwork gets the image at `source` and stores all of its renditions as
// the artwork of entity `entityID`. The source is a URL or an absolute path.
func (d *Downloader) SaveArtwork(ctx context.Context, entityID, source string) error {
	docID := DocID(entityID)

	doc, err := d.ensureDocument(ctx, docID, entityID)
	if err != nil {
		return err
	}

	imgData, err := d.fetcher.Fetch(ctx, source)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", source, err)
	}

	hq := Renditions[0]
	cropped := d.cropper.Crop(ctx, imgData, hq.Width, hq.Width)

	if err := d.putRendition(ctx, docID, hq.Name, doc.Rev, cropped); err != nil {
		return err
	}

	for _, rendition := range Renditions[1:] {
		resized, err := d.scaler.Scale(ctx, bytes.NewReader(cropped), rendition.Width)
		if err != nil {
			return fmt.Errorf("resizing to %s: %w", rendition.Name, err)
		}

		doc, err = d.artworks.Get(ctx, docID)
		if err != nil {
			return fmt.Errorf("re-reading %s: %w", docID, err)
		}

		if err := d.putRendition(ctx, docID, rendition.Name, doc.Rev, resized); err != nil {
			return err
		}
	}

	return nil
}

func (d *Downloader) putRendition(
	ctx context.Context,
	docID, name, rev string,
	data []byte,
) error {
	mimeType, err := scaler.MIMEType(data)
	if err != nil {
		return fmt.Errorf("rendition %s: %w", name, err)
	}

	if _, err := d.artworks.PutAttachment(ctx, docID, name, rev, data, mimeType); err != nil {
		return err
	}

	return nil
}

// ensureDocument returns the artwork document, creating it when missing.
func (d *Downloader) ensureDocument(
	ctx context.Context,
	docID, entityID string,
) (*store.Document, error) {
	doc, err := d.artworks.Get(ctx, docID)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	newDoc, err := store.NewDocument(docID, artworkBody{
		Owner: entityID,
		Date:  d.now().UnixMilli(),
	})
	if err != nil {
		return nil, err
	}

	if _, err := d.artworks.Put(ctx, newDoc); err != nil {
		return nil, fmt.Errorf("creating %s: %w", docID, err)
	}

	return d.artworks.Get(ctx, docID)
}
