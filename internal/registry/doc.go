// Package registry is the record lifecycle manager for stored files.
//
// It owns the multi-step mutations that touch both the metadata store and
// the binary object store: create records the metadata for bytes that are
// already durable, delete removes the backing object best-effort before the
// row. Listing input is normalized here (unknown filter values coerce to
// defaults) so the store only ever sees well-formed filters.
package registry
