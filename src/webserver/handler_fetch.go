package webserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ironsmile/aquarelle/src/library"
	"github.com/ironsmile/aquarelle/src/webserver/webutils"
)

// FetchHandler is a http.Handler which finds and stores the artwork of a single
// artist or album.
type FetchHandler struct {
	entities   EntityFinder
	downloader ArtworkDownloader

	// downloads is read locked while downloading. It is write locked while
	// the whole catalog is being processed.
	downloads *sync.RWMutex
}

// NewFetchHandler returns a FetchHandler which looks up entities in `entities`.
func NewFetchHandler(
	entities EntityFinder,
	downloader ArtworkDownloader,
	downloads *sync.RWMutex,
) *FetchHandler {
	return &FetchHandler{
		entities:   entities,
		downloader: downloader,
		downloads:  downloads,
	}
}

// ServeHTTP is required by the http.Handler's interface
func (fh *FetchHandler) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	entityID, ok := pathVar(req, "entityID")
	if !ok {
		http.NotFoundHandler().ServeHTTP(writer, req)
		return
	}

	ctx, cancel := context.WithTimeout(req.Context(), 5*time.Minute)
	defer cancel()

	ent, err := fh.entities.Entity(ctx, entityID)
	if errors.Is(err, library.ErrEntityNotFound) {
		webutils.JSONError(writer, "no such artist or album", http.StatusNotFound)
		return
	} else if err != nil {
		log.Printf("Error finding entity %s: %s\n", entityID, err)
		webutils.JSONError(writer, "finding entity failed", http.StatusInternalServerError)
		return
	}

	if !fh.downloads.TryRLock() {
		webutils.JSONError(writer, "processing of all artwork is running",
			http.StatusConflict)
		return
	}
	defer fh.downloads.RUnlock()

	if err := fh.downloader.DownloadHQCover(ctx, ent); err != nil {
		log.Printf("Error downloading artwork for %s: %s\n", entityID, err)
		webutils.JSONError(writer, err.Error(), http.StatusBadGateway)
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}
