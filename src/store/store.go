// Package store is a small document database on top of SQLite. Documents are JSON
// bodies grouped in collections and keyed by string IDs. A document may have named
// binary attachments. Every write bumps the document revision and writers must
// present the revision they have last seen, otherwise ErrConflict is returned.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"runtime"
	"sync"

	migrate "github.com/ironsmile/sql-migrate"
	_ "github.com/mattn/go-sqlite3"
)

// sqlMigrateDirectory is the directory whithin the migrations fs.FS which
// contains the .sql files for sql-migrate.
const sqlMigrateDirectory = "migrations"

// DatabaseExecutable is the type used for passing "work unit" to the databaseWorker.
// Every function which wants to do something with the database creates one and sends
// it to the databaseWorker for execution.
type DatabaseExecutable func(db *sql.DB) error

// Store is an open document database.
type Store struct {
	db *sql.DB

	ctx        context.Context
	cancel     context.CancelFunc
	dbExecutes chan DatabaseExecutable
	workerWG   sync.WaitGroup
}

// Open opens (or creates) the SQLite database at `path` and brings its schema up
// to date using the migrations found in `sqlFiles` under "migrations/".
func Open(ctx context.Context, path string, sqlFiles fs.FS) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	if err := applyMigrations(db, sqlFiles); err != nil {
		db.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	st := &Store{
		db:         db,
		ctx:        ctx,
		cancel:     cancel,
		dbExecutes: make(chan DatabaseExecutable),
	}

	st.workerWG.Add(1)
	go st.databaseWorker()

	return st, nil
}

// Collection returns the collection with this name. Collections do not need to be
// created beforehand.
func (st *Store) Collection(name string) *Collection {
	return &Collection{
		name:  name,
		store: st,
	}
}

// Close stops the database worker and closes the database.
func (st *Store) Close() error {
	st.cancel()
	st.workerWG.Wait()
	return st.db.Close()
}

// applyMigrations reads the database migrations dir and applies them to the
// database if it is necessary.
func applyMigrations(db *sql.DB, sqlFiles fs.FS) error {
	migrationFiles, err := fs.Sub(sqlFiles, sqlMigrateDirectory)
	if err != nil {
		return fmt.Errorf("locating migrate dir within sqlFiles fs.FS failed: %w", err)
	}

	migrations := &migrate.HttpFileSystemMigrationSource{
		FileSystem: http.FS(migrationFiles),
	}

	_, err = migrate.ExecMax(db, "sqlite3", migrations, migrate.Up, 0)
	if err == nil {
		return nil
	}

	if _, ok := err.(*migrate.PlanError); ok {
		log.Printf("Error applying database migrations: %s\n", err)
		return nil
	}

	return fmt.Errorf("executing db migration failed: %w", err)
}

// databaseWorker executes every received DatabaseExecutable one after another
// on the same OS thread.
func (st *Store) databaseWorker() {
	defer st.workerWG.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case executable := <-st.dbExecutes:
			if err := executable(st.db); err != nil {
				log.Printf("Error from db executable: %s", err)
			}
		case <-st.ctx.Done():
			return
		}
	}
}

// The only possible error from executeDBJob is one from the closed context.
func (st *Store) executeDBJob(ctx context.Context, executable DatabaseExecutable) error {
	select {
	case st.dbExecutes <- executable:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-st.ctx.Done():
		return errStoreClosed
	}
}

// executeDBJobAndWait executes the `executable`, waits for it to finish. Then returns
// its error.
func (st *Store) executeDBJobAndWait(
	ctx context.Context,
	executable DatabaseExecutable,
) error {
	var executableErr error
	done := make(chan struct{}, 1)

	work := func(db *sql.DB) error {
		defer func() {
			done <- struct{}{}
		}()
		executableErr = executable(db)
		return nil
	}

	if err := st.executeDBJob(ctx, work); err != nil {
		return err
	}

	<-done
	return executableErr
}

var errStoreClosed = errors.New("store is closed")
