package webserver

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ironsmile/aquarelle/src/artwork"
	"github.com/ironsmile/aquarelle/src/store"
	"github.com/ironsmile/aquarelle/src/webserver/webutils"
)

// ArtworkHandler is a http.Handler which serves a single rendition of the artwork
// of an artist or album.
type ArtworkHandler struct {
	artworks AttachmentGetter
}

// NewArtworkHandler returns a new ArtworkHandler which reads artwork from
// `artworks`.
func NewArtworkHandler(artworks AttachmentGetter) *ArtworkHandler {
	return &ArtworkHandler{
		artworks: artworks,
	}
}

// ServeHTTP is required by the http.Handler's interface
func (ah *ArtworkHandler) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	entityID, ok := pathVar(req, "entityID")
	if !ok {
		http.NotFoundHandler().ServeHTTP(writer, req)
		return
	}

	rendition, ok := pathVar(req, "rendition")
	if !ok {
		http.NotFoundHandler().ServeHTTP(writer, req)
		return
	}

	if !artwork.IsRendition(rendition) {
		webutils.JSONError(
			writer,
			fmt.Sprintf("unknown rendition `%s`", rendition),
			http.StatusBadRequest,
		)
		return
	}

	att, err := ah.artworks.GetAttachment(req.Context(), artwork.DocID(entityID), rendition)
	if errors.Is(err, store.ErrNotFound) {
		webutils.JSONError(writer, "artwork not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Printf("Error reading artwork %s of %s: %s\n", rendition, entityID, err)
		webutils.JSONError(writer, "reading artwork failed", http.StatusInternalServerError)
		return
	}

	writer.Header().Set("Content-Type", att.ContentType)
	writer.Header().Set("Cache-Control", "max-age=604800")
	writer.Header().Set("ETag", fmt.Sprintf(`"%s"`, att.Digest))

	http.ServeContent(writer, req, "", time.Time{}, bytes.NewReader(att.Data))
}
