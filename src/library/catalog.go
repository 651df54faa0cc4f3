// Package library knows about the artists and albums whose artwork is managed.
// They are stored as documents in the "artists" and "albums" collections.
package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/ironsmile/aquarelle/src/store"
)

// ErrEntityNotFound is returned when there is neither an artist nor an album
// with a particular ID.
var ErrEntityNotFound = errors.New("entity not found")

// Names of the document collections used by the library.
const (
	ArtistsCollection = "artists"
	AlbumsCollection  = "albums"
)

// Artist is a music artist.
type Artist struct {
	ID   string `json:"-"`
	Name string `json:"name"`
}

// Album is a release by a particular artist.
type Album struct {
	ID       string `json:"-"`
	Name     string `json:"name"`
	ArtistID string `json:"artist"`
}

// Entity is an artist or an album. Albums have a non-empty ArtistID.
type Entity struct {
	ID       string
	Name     string
	ArtistID string
}

// IsAlbum returns true when the entity is an album.
func (e Entity) IsAlbum() bool {
	return e.ArtistID != ""
}

// EntityFromArtist converts an artist into an Entity.
func EntityFromArtist(a Artist) Entity {
	return Entity{ID: a.ID, Name: a.Name}
}

// EntityFromAlbum converts an album into an Entity.
func EntityFromAlbum(a Album) Entity {
	return Entity{ID: a.ID, Name: a.Name, ArtistID: a.ArtistID}
}

// Catalog gives access to the artists and albums.
type Catalog struct {
	artists store.AttachmentStore
	albums  store.AttachmentStore
}

// NewCatalog returns a catalog which reads from these two collections.
func NewCatalog(artists, albums store.AttachmentStore) *Catalog {
	return &Catalog{
		artists: artists,
		albums:  albums,
	}
}

// Artist returns the artist with this ID.
func (c *Catalog) Artist(ctx context.Context, id string) (Artist, error) {
	var artist Artist
	if err := getDecoded(ctx, c.artists, id, &artist); err != nil {
		return artist, fmt.Errorf("artist %s: %w", id, err)
	}
	artist.ID = id
	return artist, nil
}

// Album returns the album with this ID.
func (c *Catalog) Album(ctx context.Context, id string) (Album, error) {
	var album Album
	if err := getDecoded(ctx, c.albums, id, &album); err != nil {
		return album, fmt.Errorf("album %s: %w", id, err)
	}
	album.ID = id
	return album, nil
}

// Entity loads `id` as an artist. If there is no such artist it is loaded as
// an album instead.
func (c *Catalog) Entity(ctx context.Context, id string) (Entity, error) {
	artist, err := c.Artist(ctx, id)
	if err == nil {
		return EntityFromArtist(artist), nil
	}
	if !errors.Is(err, ErrEntityNotFound) {
		return Entity{}, err
	}

	album, err := c.Album(ctx, id)
	if err != nil {
		return Entity{}, err
	}

	return EntityFromAlbum(album), nil
}

// IDs returns the IDs of all artists followed by the IDs of all albums.
func (c *Catalog) IDs(ctx context.Context) ([]string, error) {
	artistIDs, err := c.artists.AllIDs(ctx)
	if err != nil {
		return nil, err
	}

	albumIDs, err := c.albums.AllIDs(ctx)
	if err != nil {
		return nil, err
	}

	return append(artistIDs, albumIDs...), nil
}

// AddArtist creates the artist document.
func (c *Catalog) AddArtist(ctx context.Context, artist Artist) error {
	return putNew(ctx, c.artists, artist.ID, artist)
}

// AddAlbum creates the album document.
func (c *Catalog) AddAlbum(ctx context.Context, album Album) error {
	return putNew(ctx, c.albums, album.ID, album)
}

func getDecoded(ctx context.Context, coll store.AttachmentStore, id string, v any) error {
	doc, err := coll.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrEntityNotFound
	} else if err != nil {
		return err
	}

	return doc.Decode(v)
}

func putNew(ctx context.Context, coll store.AttachmentStore, id string, body any) error {
	doc, err := store.NewDocument(id, body)
	if err != nil {
		return err
	}

	_, err = coll.Put(ctx, doc)
	return err
}
