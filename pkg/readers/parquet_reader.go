// Package readers provides dataset readers used to inspect generated output.
package readers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/TFMV/zonegen/pkg/core"
)

// ParquetReader implements a streaming reader over a Parquet file.
type ParquetReader struct {
	schema       *arrow.Schema
	fileReader   *file.Reader
	recordReader pqarrow.RecordReader
	file         *os.File
	totalRows    int64
	numRowGroups int
}

// NewParquetReader opens a Parquet file for streaming reads.
func NewParquetReader(path string, batchSize int64) (*ParquetReader, error) {
	if path == "" {
		return nil, errors.New("path is required for Parquet reader")
	}

	if batchSize <= 0 {
		batchSize = 10000
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Parquet file: %w", err)
	}

	parquetReader, err := file.NewParquetReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create Parquet file reader: %w", err)
	}

	arrowReader, err := pqarrow.NewFileReader(parquetReader, pqarrow.ArrowReadProperties{
		BatchSize: batchSize,
	}, memory.NewGoAllocator())
	if err != nil {
		parquetReader.Close()
		f.Close()
		return nil, fmt.Errorf("failed to create Arrow reader: %w", err)
	}

	schema, err := arrowReader.Schema()
	if err != nil {
		parquetReader.Close()
		f.Close()
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}

	recordReader, err := arrowReader.GetRecordReader(context.Background(), nil, nil)
	if err != nil {
		parquetReader.Close()
		f.Close()
		return nil, fmt.Errorf("failed to create record reader: %w", err)
	}

	return &ParquetReader{
		schema:       schema,
		fileReader:   parquetReader,
		recordReader: recordReader,
		file:         f,
		totalRows:    parquetReader.NumRows(),
		numRowGroups: parquetReader.NumRowGroups(),
	}, nil
}

// Read returns the next batch of records.
func (r *ParquetReader) Read(ctx context.Context) (arrow.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if !r.recordReader.Next() {
		if err := r.recordReader.Err(); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		return nil, io.EOF
	}

	rec := r.recordReader.Record()
	rec.Retain()
	return rec, nil
}

// Schema returns the schema of the file.
func (r *ParquetReader) Schema() *arrow.Schema {
	return r.schema
}

// NumRows returns the total row count from the file metadata.
func (r *ParquetReader) NumRows() int64 {
	return r.totalRows
}

// NumRowGroups returns the number of row groups in the file.
func (r *ParquetReader) NumRowGroups() int {
	return r.numRowGroups
}

// Close closes the reader and releases resources.
func (r *ParquetReader) Close() error {
	if r.recordReader != nil {
		r.recordReader.Release()
		r.recordReader = nil
	}
	var err error
	if r.fileReader != nil {
		err = r.fileReader.Close()
		r.fileReader = nil
	}
	if r.file != nil {
		// The parquet reader may have closed the underlying file already.
		if closeErr := r.file.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) && err == nil {
			err = closeErr
		}
		r.file = nil
	}
	return err
}

var _ core.DatasetReader = (*ParquetReader)(nil)
