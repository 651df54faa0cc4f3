package webserver

import (
	"context"

	"github.com/ironsmile/aquarelle/src/library"
	"github.com/ironsmile/aquarelle/src/store"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

// AttachmentGetter returns the attachments of the artwork documents.
type AttachmentGetter interface {
	GetAttachment(ctx context.Context, docID, name string) (*store.Attachment, error)
}

// EntityFinder resolves artist and album IDs.
type EntityFinder interface {
	Entity(ctx context.Context, id string) (library.Entity, error)
}

//counterfeiter:generate . ArtworkDownloader

// ArtworkDownloader finds and stores artwork for the catalog entities.
type ArtworkDownloader interface {
	DownloadHQCover(ctx context.Context, ent library.Entity) error
	ProcessAll(ctx context.Context)
}
