package store

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// Collection is a named group of documents in a Store. It implements
// AttachmentStore.
type Collection struct {
	name  string
	store *Store
}

var _ AttachmentStore = (*Collection)(nil)

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Get implements AttachmentStore.
func (c *Collection) Get(ctx context.Context, id string) (*Document, error) {
	doc := &Document{
		ID:          id,
		Attachments: make(map[string]AttachmentStub),
	}

	work := func(db *sql.DB) error {
		var body []byte
		err := db.QueryRowContext(ctx, `
			SELECT
				rev,
				body
			FROM
				documents
			WHERE
				collection = ? AND id = ?
		`, c.name, id).Scan(&doc.Rev, &body)
		if err == sql.ErrNoRows {
			return ErrNotFound
		} else if err != nil {
			return fmt.Errorf("querying document %s/%s: %w", c.name, id, err)
		}
		doc.Body = body

		rows, err := db.QueryContext(ctx, `
			SELECT
				name,
				content_type,
				length(data),
				digest
			FROM
				attachments
			WHERE
				collection = ? AND doc_id = ?
		`, c.name, id)
		if err != nil {
			return fmt.Errorf("querying attachments of %s/%s: %w", c.name, id, err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				name string
				stub AttachmentStub
			)
			if err := rows.Scan(&name, &stub.ContentType, &stub.Length, &stub.Digest); err != nil {
				return fmt.Errorf("scanning attachment: %w", err)
			}
			doc.Attachments[name] = stub
		}

		return rows.Err()
	}
	if err := c.store.executeDBJobAndWait(ctx, work); err != nil {
		return nil, err
	}

	return doc, nil
}

// Put implements AttachmentStore.
func (c *Collection) Put(ctx context.Context, doc *Document) (string, error) {
	if doc.ID == "" {
		return "", fmt.Errorf("document without an ID")
	}

	var newRev string
	work := func(db *sql.DB) error {
		return c.inTx(ctx, db, func(tx *sql.Tx) error {
			current, generation, err := currentRevision(ctx, tx, c.name, doc.ID)
			if errors.Is(err, ErrNotFound) {
				if doc.Rev != "" {
					return ErrConflict
				}
				newRev = newRevision(1)
				_, err = tx.ExecContext(ctx, `
					INSERT INTO
						documents (collection, id, rev, generation, body, updated_at)
					VALUES
						(?, ?, ?, ?, ?, ?)
				`, c.name, doc.ID, newRev, 1, []byte(doc.Body), time.Now().Unix())
				return err
			} else if err != nil {
				return err
			}

			if doc.Rev != current {
				return ErrConflict
			}

			newRev = newRevision(generation + 1)
			_, err = tx.ExecContext(ctx, `
				UPDATE
					documents
				SET
					rev = ?,
					generation = ?,
					body = ?,
					updated_at = ?
				WHERE
					collection = ? AND id = ?
			`, newRev, generation+1, []byte(doc.Body), time.Now().Unix(), c.name, doc.ID)
			return err
		})
	}
	if err := c.store.executeDBJobAndWait(ctx, work); err != nil {
		return "", fmt.Errorf("putting %s/%s: %w", c.name, doc.ID, err)
	}

	return newRev, nil
}

// PutAttachment implements AttachmentStore. When the document does not exist and
// `rev` is empty, an empty document is created for the attachment.
func (c *Collection) PutAttachment(
	ctx context.Context,
	docID, name, rev string,
	data []byte,
	contentType string,
) (string, error) {
	var newRev string
	work := func(db *sql.DB) error {
		return c.inTx(ctx, db, func(tx *sql.Tx) error {
			current, generation, err := currentRevision(ctx, tx, c.name, docID)
			if errors.Is(err, ErrNotFound) {
				if rev != "" {
					return ErrNotFound
				}
				_, err = tx.ExecContext(ctx, `
					INSERT INTO
						documents (collection, id, rev, generation, body, updated_at)
					VALUES
						(?, ?, '', 0, '{}', ?)
				`, c.name, docID, time.Now().Unix())
				if err != nil {
					return err
				}
			} else if err != nil {
				return err
			} else if rev != current {
				return ErrConflict
			}

			_, err = tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO
					attachments (collection, doc_id, name, content_type, digest, data)
				VALUES
					(?, ?, ?, ?, ?, ?)
			`, c.name, docID, name, contentType, digest(data), data)
			if err != nil {
				return err
			}

			newRev = newRevision(generation + 1)
			_, err = tx.ExecContext(ctx, `
				UPDATE
					documents
				SET
					rev = ?,
					generation = ?,
					updated_at = ?
				WHERE
					collection = ? AND id = ?
			`, newRev, generation+1, time.Now().Unix(), c.name, docID)
			return err
		})
	}
	if err := c.store.executeDBJobAndWait(ctx, work); err != nil {
		return "", fmt.Errorf("putting attachment %s of %s/%s: %w",
			name, c.name, docID, err)
	}

	return newRev, nil
}

// GetAttachment implements AttachmentStore.
func (c *Collection) GetAttachment(
	ctx context.Context,
	docID, name string,
) (*Attachment, error) {
	att := &Attachment{}

	work := func(db *sql.DB) error {
		err := db.QueryRowContext(ctx, `
			SELECT
				content_type,
				digest,
				data
			FROM
				attachments
			WHERE
				collection = ? AND doc_id = ? AND name = ?
		`, c.name, docID, name).Scan(&att.ContentType, &att.Digest, &att.Data)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	if err := c.store.executeDBJobAndWait(ctx, work); err != nil {
		return nil, fmt.Errorf("getting attachment %s of %s/%s: %w",
			name, c.name, docID, err)
	}

	att.Length = int64(len(att.Data))
	return att, nil
}

// AllIDs implements AttachmentStore.
func (c *Collection) AllIDs(ctx context.Context) ([]string, error) {
	var ids []string

	work := func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `
			SELECT
				id
			FROM
				documents
			WHERE
				collection = ?
			ORDER BY
				id
		`, c.name)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}

		return rows.Err()
	}
	if err := c.store.executeDBJobAndWait(ctx, work); err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.name, err)
	}

	return ids, nil
}

func (c *Collection) inTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func currentRevision(
	ctx context.Context,
	tx *sql.Tx,
	collection, id string,
) (string, int64, error) {
	var (
		rev        string
		generation int64
	)
	err := tx.QueryRowContext(ctx, `
		SELECT
			rev,
			generation
		FROM
			documents
		WHERE
			collection = ? AND id = ?
	`, collection, id).Scan(&rev, &generation)
	if err == sql.ErrNoRows {
		return "", 0, ErrNotFound
	}

	return rev, generation, err
}

func digest(data []byte) string {
	sum := md5.Sum(data)
	return "md5-" + base64.StdEncoding.EncodeToString(sum[:])
}
