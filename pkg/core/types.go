// Package core provides the core types and interfaces for the zonegen dataset generator.
package core

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// DatasetReader defines an interface for reading record batches from a row source.
type DatasetReader interface {
	// Read returns the next record batch.
	// Returns io.EOF when there are no more batches.
	Read(ctx context.Context) (arrow.Record, error)

	// Schema returns the schema of the dataset.
	Schema() *arrow.Schema

	// Close closes the reader and releases resources.
	Close() error
}

// DatasetWriter defines an interface for writing record batches to a destination.
type DatasetWriter interface {
	// Write writes a record to the destination.
	Write(ctx context.Context, record arrow.Record) error

	// Close closes the writer and flushes any pending data.
	Close() error
}

// WriterConfig provides configuration for creating a writer.
type WriterConfig struct {
	// Type is the type of the writer.
	Type string

	// Path is the path to the output file. Parent directories are
	// created by the writer as needed.
	Path string

	// Compression is the compression codec name (uncompressed, snappy,
	// gzip, zstd, lz4, brotli).
	Compression string

	// RowGroupBytes is a size hint for parquet row groups, in bytes.
	RowGroupBytes int64

	// Schema is the output schema. Required for the writer to produce
	// a valid file when no record is ever written (zero-row parts).
	Schema *arrow.Schema
}

// PartSelection selects which parts of the dataset a run produces.
// It is either SinglePart or AllParts; there is no placeholder part value.
type PartSelection interface {
	isPartSelection()
}

// SinglePart requests exactly one part, identified by its 1-based index.
// Only that part's rows are ever materialized (offset/limit pushdown).
type SinglePart struct {
	Part int32
}

// AllParts requests every part in one run. The full row sequence is
// materialized once and each part's range is sliced out of it.
type AllParts struct{}

func (SinglePart) isPartSelection() {}
func (AllParts) isPartSelection()   {}

// ExecutionError wraps a row-source or writer failure. It is never
// retried; the invocation terminates with the underlying cause attached.
type ExecutionError struct {
	// Stage names the pipeline stage that failed (scan, transform, write).
	Stage string

	// Err is the underlying cause.
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
