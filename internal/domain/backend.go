package domain

import (
	"errors"

	"orcamentos/internal/schema"
)

var (
	// ErrNotFound means the targeted row (or user) does not exist. An update
	// against a missing id is an error, never a silent success.
	ErrNotFound = errors.New("not found")
)

// Backend is the storage adapter both the Google-backed and the local
// file-backed stores implement. Rows cross this boundary only as
// schema.Record string maps; every read re-fetches from the store.
type Backend interface {
	// ListTable returns every row of the table in append order, creating the
	// table with its header first if the store has never seen it.
	ListTable(t schema.Table) ([]schema.Record, error)

	// AppendRow appends one record, serialized in the table's fixed column
	// order. Creates the table with its header on first use.
	AppendRow(t schema.Table, rec schema.Record) error

	// UpdateFields locates the row whose id column equals id and overwrites
	// only the named fields in place. Returns ErrNotFound when no row matches.
	UpdateFields(t schema.Table, id string, updates schema.Record) error

	// UploadBlob stores one attachment and returns a fetchable link: a public
	// URL on the remote store, a local path on the fallback store.
	UploadBlob(owner, filename string, data []byte, mimeType string) (string, error)
}
