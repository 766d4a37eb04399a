package writers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/TFMV/zonegen/pkg/core"
	"github.com/TFMV/zonegen/utils"
)

// ParquetWriter implements a writer for Parquet files.
type ParquetWriter struct {
	writer        *pqarrow.FileWriter
	file          *os.File
	schema        *arrow.Schema
	properties    pqarrow.ArrowWriterProperties
	codec         compress.Compression
	rowGroupBytes int64
}

// CompressionCodec maps a codec name to its parquet compression. The
// empty name defaults to snappy.
func CompressionCodec(name string) (compress.Compression, error) {
	switch name {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "uncompressed", "none":
		return compress.Codecs.Uncompressed, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "lz4":
		return compress.Codecs.Lz4Raw, nil
	case "brotli":
		return compress.Codecs.Brotli, nil
	default:
		return compress.Codecs.Uncompressed, fmt.Errorf("unsupported compression codec: %s", name)
	}
}

// NewParquetWriter creates a new Parquet writer. Parent directories of
// the target path are created as needed.
func NewParquetWriter(config core.WriterConfig) (core.DatasetWriter, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for Parquet writer")
	}

	codec, err := CompressionCodec(config.Compression)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create Parquet file: %w", err)
	}

	// The writer is created on the first record because row-group
	// sizing needs a representative batch to estimate row width. The
	// configured schema covers the zero-row case at Close.
	return &ParquetWriter{
		file:          file,
		schema:        config.Schema,
		properties:    pqarrow.NewArrowWriterProperties(),
		codec:         codec,
		rowGroupBytes: config.RowGroupBytes,
	}, nil
}

// initWriter creates the pqarrow writer. The record supplies the schema
// and the row-group estimate when present; otherwise the configured
// schema is used so empty outputs still get a valid parquet footer.
func (w *ParquetWriter) initWriter(record arrow.Record) error {
	schema := w.schema
	if record != nil {
		schema = record.Schema()
	}
	if schema == nil {
		return errors.New("schema is required to write an empty Parquet file")
	}

	opts := []parquet.WriterProperty{
		parquet.WithCompression(w.codec),
		parquet.WithDictionaryDefault(false),
	}
	if record != nil {
		if rows := w.rowGroupRows(record); rows > 0 {
			opts = append(opts, parquet.WithMaxRowGroupLength(rows))
		}
	}

	writer, err := pqarrow.NewFileWriter(
		schema,
		w.file,
		parquet.NewWriterProperties(opts...),
		w.properties,
	)
	if err != nil {
		return fmt.Errorf("failed to create Parquet writer: %w", err)
	}

	w.writer = writer
	w.schema = schema
	return nil
}

// Write writes a record to the file.
func (w *ParquetWriter) Write(ctx context.Context, record arrow.Record) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if w.writer == nil {
		if err := w.initWriter(record); err != nil {
			return err
		}
	}

	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	return nil
}

// rowGroupRows converts the byte threshold into a row count using the
// first record's average row width.
func (w *ParquetWriter) rowGroupRows(record arrow.Record) int64 {
	if w.rowGroupBytes <= 0 {
		return 0
	}
	avg := utils.AvgRowBytes(record)
	if avg <= 0 {
		return 0
	}
	return max(w.rowGroupBytes/avg, 1)
}

// Close closes the writer and flushes any pending data.
func (w *ParquetWriter) Close() error {
	var err error

	// A part can legitimately contain zero rows; serialize a
	// schema-only file rather than leaving bytes without a footer.
	if w.writer == nil && w.schema != nil && w.file != nil {
		err = w.initWriter(nil)
	}

	if w.writer != nil {
		if closeErr := w.writer.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if w.file != nil {
		// The parquet writer closes the underlying file when it owns one.
		if closeErr := w.file.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) && err == nil {
			err = closeErr
		}
	}

	return err
}
