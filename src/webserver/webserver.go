// Package webserver contains the HTTP server which serves the stored artwork and
// lets clients trigger artwork downloads.
package webserver

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/ironsmile/aquarelle/src/config"
	"github.com/ironsmile/aquarelle/src/webserver/webutils"
)

// Server represents our webserver. It will be controlled from here
type Server struct {
	// Configuration of this server
	cfg config.Config

	// ctx is cancelled on Stop. Background work started by handlers uses it.
	ctx    context.Context
	cancel context.CancelFunc

	// WG used in Server.Wait to sync with server's end
	wg sync.WaitGroup

	// The actual http.Server doing the HTTP work
	httpSrv *http.Server

	// The server's net.Listener. Used in the Server.Stop func
	listener net.Listener

	artworks   AttachmentGetter
	entities   EntityFinder
	downloader ArtworkDownloader
	processAll *ProcessAllHandler

	// downloads keeps single entity downloads and whole catalog runs apart.
	downloads *sync.RWMutex
}

// NewServer returns a new Server using the supplied configuration cfg. The returned
// server is ready and calling its Serve method will start it.
func NewServer(
	ctx context.Context,
	cfg config.Config,
	artworks AttachmentGetter,
	entities EntityFinder,
	downloader ArtworkDownloader,
) *Server {
	ctx, cancel := context.WithCancel(ctx)
	downloads := &sync.RWMutex{}

	return &Server{
		cfg:        cfg,
		ctx:        ctx,
		cancel:     cancel,
		artworks:   artworks,
		entities:   entities,
		downloader: downloader,
		processAll: NewProcessAllHandler(ctx, downloader, downloads),
		downloads:  downloads,
	}
}

// Serve starts listening on the configured address and serving requests in
// a separate goroutine. Trying to call this method more than once for the same
// server will result in panic.
func (srv *Server) Serve() error {
	if srv.httpSrv != nil {
		panic("Second Server.Serve call for the same server")
	}

	addr := srv.cfg.Listen
	if addr == "" {
		addr = ":http"
	}

	lsn, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv.listener = lsn
	srv.httpSrv = &http.Server{
		Handler:      srv.Handler(),
		ReadTimeout:  time.Duration(srv.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(srv.cfg.WriteTimeout) * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return srv.ctx
		},
	}

	srv.wg.Add(1)
	go srv.serveGoroutine()

	log.Printf("Webserver started on %s\n", lsn.Addr())
	return nil
}

func (srv *Server) serveGoroutine() {
	defer srv.wg.Done()

	reason := srv.httpSrv.Serve(srv.listener)
	log.Println("Webserver stopped.")

	if reason != nil && !errors.Is(reason, http.ErrServerClosed) {
		log.Printf("Reason: %s\n", reason.Error())
	}
}

// Handler returns the router with all API endpoints.
func (srv *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.StrictSlash(true)
	router.UseEncodedPath()

	endpoints := map[string]http.Handler{
		APIv1EndpointArtwork:     NewArtworkHandler(srv.artworks),
		APIv1EndpointFetchEntity: NewFetchHandler(srv.entities, srv.downloader, srv.downloads),
		APIv1EndpointProcessAll:  srv.processAll,
	}

	for path, handler := range endpoints {
		router.Handle(path, handler).Methods(APIv1Methods[path]...)
	}

	router.NotFoundHandler = http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			webutils.JSONError(w, "not found", http.StatusNotFound)
		},
	)

	return router
}

// Addr returns the address on which the server listens. It is nil before Serve.
func (srv *Server) Addr() net.Addr {
	if srv.listener == nil {
		return nil
	}
	return srv.listener.Addr()
}

// Stop stops the webserver and any artwork processing started through it.
func (srv *Server) Stop() {
	srv.cancel()

	if srv.httpSrv == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.httpSrv.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down webserver: %s\n", err)
	}
}

// Wait syncs whoever called this with the server's stop
func (srv *Server) Wait() {
	srv.wg.Wait()
	srv.processAll.Wait()
}
