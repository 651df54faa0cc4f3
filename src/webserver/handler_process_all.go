package webserver

import (
	"context"
	"net/http"
	"sync"

	"github.com/ironsmile/aquarelle/src/webserver/webutils"
)

// ProcessAllHandler is a http.Handler which starts downloading artwork for the
// whole catalog in the background. Only one such run is possible at a time and
// not while single entity downloads are in progress.
type ProcessAllHandler struct {
	ctx        context.Context
	downloader ArtworkDownloader

	// downloads is write locked for the duration of a run.
	downloads *sync.RWMutex
	wg        sync.WaitGroup
}

// NewProcessAllHandler returns a ProcessAllHandler. Background runs are stopped
// when ctx is cancelled.
func NewProcessAllHandler(
	ctx context.Context,
	downloader ArtworkDownloader,
	downloads *sync.RWMutex,
) *ProcessAllHandler {
	return &ProcessAllHandler{
		ctx:        ctx,
		downloader: downloader,
		downloads:  downloads,
	}
}

// ServeHTTP is required by the http.Handler's interface
func (ph *ProcessAllHandler) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	if !ph.downloads.TryLock() {
		webutils.JSONError(writer, "artwork downloading is already running",
			http.StatusConflict)
		return
	}

	ph.wg.Add(1)
	go func() {
		defer ph.wg.Done()
		defer ph.downloads.Unlock()

		ph.downloader.ProcessAll(ph.ctx)
	}()

	writer.WriteHeader(http.StatusAccepted)
}

// Wait blocks until the background run started by this handler, if any, finishes.
func (ph *ProcessAllHandler) Wait() {
	ph.wg.Wait()
}
