// Package src contains the Main function of Aquarelle. It reads the configuration,
// wires all the components together and runs the action selected on the command
// line.
//
// At the moment it is in package src because it is imported from the project's root
// folder.
package src

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/ironsmile/aquarelle/src/art"
	"github.com/ironsmile/aquarelle/src/artwork"
	"github.com/ironsmile/aquarelle/src/config"
	"github.com/ironsmile/aquarelle/src/crop"
	"github.com/ironsmile/aquarelle/src/daemon"
	"github.com/ironsmile/aquarelle/src/helpers"
	"github.com/ironsmile/aquarelle/src/library"
	"github.com/ironsmile/aquarelle/src/scaler"
	"github.com/ironsmile/aquarelle/src/store"
	"github.com/ironsmile/aquarelle/src/version"
	"github.com/ironsmile/aquarelle/src/webserver"
)

// Main is the only thing run in the project's root main.go file. For all intent
// and purposes this is the main function. `sqlFiles` holds the database migrations.
func Main(sqlFiles fs.FS) {
	flag.Parse()

	if daemon.ShowVersion {
		version.Print(os.Stdout)
		os.Exit(0)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), daemon.StopSignals...)
	err := run(ctx, sqlFiles)
	cancel()

	if err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, sqlFiles fs.FS) error {
	osFS := afero.NewOsFs()

	cfg := new(config.Config)
	if err := cfg.FindAndParse(osFS, daemon.ConfigPath); err != nil {
		return fmt.Errorf("parsing configuration: %w", err)
	}

	if err := osFS.MkdirAll(cfg.UserDir(), 0700); err != nil {
		return fmt.Errorf("creating user directory: %w", err)
	}

	if !daemon.Debug {
		logCloser, err := setUpLogs(osFS, cfg)
		if err != nil {
			return err
		}
		if logCloser != nil {
			defer logCloser.Close()
		}
	}

	st, err := store.Open(ctx, cfg.DatabasePath(), sqlFiles)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("Error closing database: %s\n", err)
		}
	}()

	imgScaler := scaler.New(ctx)
	defer imgScaler.Cancel()

	artworks := st.Collection(artwork.CollectionName)
	catalog := library.NewCatalog(
		st.Collection(library.ArtistsCollection),
		st.Collection(library.AlbumsCollection),
	)

	downloader := artwork.NewDownloader(
		artworks,
		catalog,
		art.NewClient(cfg.UserAgent, cfg.RequestDelayDuration(), cfg.RequestTimeoutDuration()),
		art.NewFetcher(osFS, cfg.UserAgent, cfg.RequestTimeoutDuration()),
		crop.NewSmartCropper(crop.NewFaceDetector(osFS, cfg.FaceCascade), imgScaler),
		imgScaler,
		cfg.DiscogsURL,
	)
	downloader.Retries = cfg.Retries

	switch {
	case daemon.EntityID != "" || daemon.Source != "":
		if daemon.EntityID == "" || daemon.Source == "" {
			return errors.New("-entity and -source must be used together")
		}
		return downloader.SaveArtwork(ctx, daemon.EntityID, sourcePath(daemon.Source))

	case daemon.FetchID != "":
		ent, err := catalog.Entity(ctx, daemon.FetchID)
		if err != nil {
			return fmt.Errorf("finding %s: %w", daemon.FetchID, err)
		}
		return downloader.DownloadHQCover(ctx, ent)

	case daemon.Serve:
		srv := webserver.NewServer(ctx, *cfg, artworks, catalog, downloader)
		if err := srv.Serve(); err != nil {
			return fmt.Errorf("starting webserver: %w", err)
		}

		<-ctx.Done()
		log.Println("Stopping the webserver...")
		srv.Stop()
		srv.Wait()
		return nil

	default:
		downloader.ProcessAll(ctx)
		return nil
	}
}

// setUpLogs sends the logs to the configured log file. The returned closer is nil
// when the log file is not rotated.
func setUpLogs(appFS afero.Fs, cfg *config.Config) (io.Closer, error) {
	logFile := cfg.LogFilePath()

	if cfg.LogMaxSizeMB > 0 {
		return helpers.SetRotatingLogsFile(logFile, cfg.LogMaxSizeMB), nil
	}

	if err := helpers.SetLogsFile(appFS, logFile); err != nil {
		return nil, fmt.Errorf("setting up logs: %w", err)
	}
	return nil, nil
}

// sourcePath makes local image paths absolute so that they are not mistaken
// for URLs.
func sourcePath(source string) string {
	if strings.Contains(source, "://") || filepath.IsAbs(source) {
		return source
	}

	abs, err := filepath.Abs(source)
	if err != nil {
		return source
	}
	return abs
}
