package artwork

import (
	"context"
	"fmt"
	"log"
)

// Task is a deferred unit of work for a single entity.
type Task func(ctx context.Context) error

// Tasks returns one task for every artist and album, artists first.
func (d *Downloader) Tasks(ctx context.Context) ([]Task, error) {
	ids, err := d.catalog.IDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing entities: %w", err)
	}

	tasks := make([]Task, 0, len(ids))
	for _, id := range ids {
		ent, err := d.catalog.Entity(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading entity %s: %w", id, err)
		}

		tasks = append(tasks, func(ctx context.Context) error {
			return d.DownloadHQCover(ctx, ent)
		})
	}

	return tasks, nil
}

// ProcessAll downloads artwork for every artist and album which does not have
// it yet. Entities are processed one at a time. Failures are logged and never
// stop the batch.
func (d *Downloader) ProcessAll(ctx context.Context) {
	tasks, err := d.Tasks(ctx)
	if err != nil {
		log.Printf("Processing all artwork failed: %s\n", err)
		return
	}

	failed := RunTasks(ctx, tasks, d.Retries)
	log.Printf("Artwork processing finished: %d tasks, %d failed\n", len(tasks), failed)
}

// RunTasks runs tasks strictly one after another in order. A failed task is
// immediately retried up to `retries` times and its last error is discarded.
// RunTasks returns the number of tasks which failed on their last attempt. It
// stops early only when ctx is done.
func RunTasks(ctx context.Context, tasks []Task, retries int) int {
	var failed int

	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			log.Printf("Stopping artwork tasks after %d of %d: %s\n", i, len(tasks), err)
			return failed
		}

		err := task(ctx)
		for try := 0; err != nil && try < retries && ctx.Err() == nil; try++ {
			log.Printf("Artwork task %d failed, retrying: %s\n", i, err)
			err = task(ctx)
		}

		if err != nil {
			log.Printf("Artwork task %d failed: %s\n", i, err)
			failed++
		}
	}

	return failed
}
