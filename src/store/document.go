package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pborman/uuid"
)

// ErrNotFound is returned when a document or an attachment does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write is made with a revision which is not the
// latest one for the document.
var ErrConflict = errors.New("document update conflict")

// AttachmentStore is a collection of JSON documents keyed by string ID. Every
// document may carry named binary attachments. All writes require the latest
// revision token of the document.
type AttachmentStore interface {
	// Get returns the document with its attachment stubs. ErrNotFound is
	// returned when there is no such document.
	Get(ctx context.Context, id string) (*Document, error)

	// Put creates (empty doc.Rev) or updates (doc.Rev set to the current revision)
	// a document. It returns the new revision.
	Put(ctx context.Context, doc *Document) (string, error)

	// PutAttachment stores `data` as attachment `name` of document `docID`. The
	// `rev` must be the current revision of the document. It returns the new
	// revision of the document.
	PutAttachment(
		ctx context.Context,
		docID, name, rev string,
		data []byte,
		contentType string,
	) (string, error)

	// GetAttachment returns the attachment `name` of document `docID`.
	GetAttachment(ctx context.Context, docID, name string) (*Attachment, error)

	// AllIDs returns the IDs of all documents in the collection, sorted.
	AllIDs(ctx context.Context) ([]string, error)
}

// Document is a single JSON document with its revision and attachment stubs.
type Document struct {
	ID          string
	Rev         string
	Body        json.RawMessage
	Attachments map[string]AttachmentStub
}

// NewDocument returns a document with ID `id` which body is `body` encoded as JSON.
func NewDocument(id string, body any) (*Document, error) {
	enc, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding document %s: %w", id, err)
	}

	return &Document{
		ID:   id,
		Body: enc,
	}, nil
}

// Decode unmarshals the document body into v.
func (d *Document) Decode(v any) error {
	if len(d.Body) == 0 {
		return nil
	}
	return json.Unmarshal(d.Body, v)
}

// HasAttachment returns true when the document has an attachment with this name.
func (d *Document) HasAttachment(name string) bool {
	_, ok := d.Attachments[name]
	return ok
}

// AttachmentStub describes an attachment without its data.
type AttachmentStub struct {
	ContentType string
	Length      int64
	Digest      string
}

// Attachment is an attachment together with its data.
type Attachment struct {
	AttachmentStub

	Data []byte
}

// newRevision returns the revision token for the `generation`-th write of a
// document.
func newRevision(generation int64) string {
	return fmt.Sprintf("%d-%s", generation, strings.ReplaceAll(uuid.New(), "-", ""))
}
