package zone

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"go.uber.org/zap"

	"github.com/TFMV/zonegen/config"
	"github.com/TFMV/zonegen/logger"
	"github.com/TFMV/zonegen/pkg/core"
	"github.com/TFMV/zonegen/pkg/partition"
	"github.com/TFMV/zonegen/pkg/writers"
	"github.com/TFMV/zonegen/report"
)

// Generate runs one zone generation invocation. With SinglePart, the
// part's range is pushed into the scan so only its rows are ever
// materialized. With AllParts, the full sequence is materialized once
// and every part's range is sliced out of the same batch set.
func Generate(ctx context.Context, cfg *config.Config, sel core.PartSelection) (*report.Manifest, error) {
	return GenerateWith(ctx, cfg, NewGenerator(cfg.ScaleFactor), sel)
}

// GenerateWith runs a generation invocation against a caller-supplied
// row source.
func GenerateWith(ctx context.Context, cfg *config.Config, gen *Generator, sel core.PartSelection) (*report.Manifest, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	started := time.Now()
	manifest := &report.Manifest{
		Table:         "zone",
		ScaleFactor:   cfg.ScaleFactor,
		TotalRows:     gen.TotalRows(),
		Parts:         cfg.Parts,
		Compression:   cfg.Compression,
		RowGroupBytes: cfg.RowGroupBytes,
		StartedAt:     started.UTC(),
	}

	var err error
	switch s := sel.(type) {
	case core.SinglePart:
		if s.Part < 1 || s.Part > cfg.Parts {
			return nil, &config.ConfigError{Msg: fmt.Sprintf("invalid part %d for parts=%d", s.Part, cfg.Parts)}
		}
		err = generateSingle(ctx, cfg, gen, s.Part, manifest)
	case core.AllParts:
		err = generateAll(ctx, cfg, gen, manifest)
	default:
		err = fmt.Errorf("unknown part selection %T", sel)
	}
	if err != nil {
		return nil, err
	}

	manifest.Duration = time.Since(started).String()
	return manifest, nil
}

// generateSingle produces one part via offset/limit pushdown.
func generateSingle(ctx context.Context, cfg *config.Config, gen *Generator, part int32, manifest *report.Manifest) error {
	log := logger.GetLogger()
	log.Info("generating single part",
		zap.Int32("part", part),
		zap.Int32("parts", cfg.Parts),
		zap.Int64("total_rows", gen.TotalRows()))

	rng := partition.Calculate(gen.TotalRows(), cfg.Parts, part)

	scan := gen.Scan()
	rng.ApplyToPlan(scan)

	reader, err := scan.Execute(ctx)
	if err != nil {
		return &core.ExecutionError{Stage: "scan", Err: err}
	}
	defer reader.Close()

	path := cfg.OutputPath(part)
	rows, err := writePart(ctx, cfg, path, rng, reader)
	if err != nil {
		return err
	}

	manifest.Files = append(manifest.Files, report.PartFile{
		Part: part, Path: path, Offset: rng.Offset, Rows: rows,
	})
	return nil
}

// generateAll materializes the full row sequence once and writes every
// part from in-memory slices of it.
func generateAll(ctx context.Context, cfg *config.Config, gen *Generator, manifest *report.Manifest) error {
	log := logger.GetLogger()
	log.Info("generating all parts",
		zap.Int32("parts", cfg.Parts),
		zap.Int64("total_rows", gen.TotalRows()))

	batches, err := gen.Scan().Materialize(ctx)
	if err != nil {
		return &core.ExecutionError{Stage: "scan", Err: err}
	}
	defer func() {
		for _, b := range batches {
			b.Release()
		}
	}()

	for part := int32(1); part <= cfg.Parts; part++ {
		rng := partition.Calculate(gen.TotalRows(), cfg.Parts, part)
		slices := rng.ApplyToBatches(batches)

		path := cfg.OutputPath(part)
		rows, err := writePart(ctx, cfg, path, rng, &sliceReader{schema: gen.Schema(), batches: slices})
		if err != nil {
			return err
		}

		manifest.Files = append(manifest.Files, report.PartFile{
			Part: part, Path: path, Offset: rng.Offset, Rows: rows,
		})
	}
	return nil
}

// writePart streams one part's raw batches through the transformer into
// a parquet file, returning the rows written.
func writePart(ctx context.Context, cfg *config.Config, path string, rng partition.Range, reader core.DatasetReader) (int64, error) {
	transformer := NewTransformer(rng.Offset)

	writer, err := writers.DefaultFactory.Create(core.WriterConfig{
		Type:          "parquet",
		Path:          path,
		Compression:   cfg.Compression,
		RowGroupBytes: cfg.RowGroupBytes,
		Schema:        transformer.Schema(),
	})
	if err != nil {
		return 0, &core.ExecutionError{Stage: "write", Err: err}
	}

	var rows int64
	for {
		rec, err := reader.Read(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			writer.Close()
			return 0, &core.ExecutionError{Stage: "scan", Err: err}
		}

		out, err := transformer.Transform(ctx, rec)
		rec.Release()
		if err != nil {
			writer.Close()
			return 0, &core.ExecutionError{Stage: "transform", Err: err}
		}

		if err := writer.Write(ctx, out); err != nil {
			out.Release()
			writer.Close()
			return 0, &core.ExecutionError{Stage: "write", Err: err}
		}
		rows += out.NumRows()
		out.Release()
	}

	if err := writer.Close(); err != nil {
		return 0, &core.ExecutionError{Stage: "write", Err: err}
	}

	logger.GetLogger().Info("part written",
		zap.String("path", path),
		zap.Int64("offset", rng.Offset),
		zap.Int64("rows", rows))

	return rows, nil
}

// sliceReader adapts an in-memory batch slice to core.DatasetReader.
// Reads hand out one reference per batch; the underlying buffers stay
// owned by the materialized set.
type sliceReader struct {
	schema  *arrow.Schema
	batches []arrow.Record
	next    int
}

func (r *sliceReader) Read(ctx context.Context) (arrow.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if r.next >= len(r.batches) {
		return nil, io.EOF
	}
	rec := r.batches[r.next]
	r.next++
	return rec, nil
}

func (r *sliceReader) Schema() *arrow.Schema {
	return r.schema
}

func (r *sliceReader) Close() error {
	r.next = len(r.batches)
	return nil
}
