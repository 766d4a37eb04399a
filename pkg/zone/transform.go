package zone

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// KeyColumn is the globally contiguous primary key of the output schema.
const KeyColumn = "z_zonekey"

// Derivation maps one output column to a source column. String sources
// default null values to the empty string; passthrough sources (the
// geometry) are carried unchanged.
type Derivation struct {
	Output      string
	Source      string
	Passthrough bool
}

// derivations is the full column mapping, in output order after the key.
var derivations = []Derivation{
	{Output: "z_gersid", Source: "id"},
	{Output: "z_country", Source: "country"},
	{Output: "z_region", Source: "region"},
	{Output: "z_name", Source: "name"},
	{Output: "z_subtype", Source: "subtype"},
	{Output: "z_boundary", Source: "geometry", Passthrough: true},
}

// Derivations returns the column mapping as a flat table, for callers
// that validate or display it.
func Derivations() []Derivation {
	out := make([]Derivation, len(derivations))
	copy(out, derivations)
	return out
}

// OutputSchema returns the zone output schema without materializing rows.
func OutputSchema() *arrow.Schema {
	fields := make([]arrow.Field, 0, len(derivations)+1)
	fields = append(fields, arrow.Field{Name: KeyColumn, Type: arrow.PrimitiveTypes.Int64})
	for _, d := range derivations {
		typ := arrow.DataType(arrow.BinaryTypes.String)
		if d.Passthrough {
			typ = arrow.BinaryTypes.Binary
		}
		fields = append(fields, arrow.Field{Name: d.Output, Type: typ})
	}
	return arrow.NewSchema(fields, nil)
}

// Transformer maps part-restricted raw batches into the output schema,
// assigning each row a key of offset plus its 1-based position.
//
// Keys are contiguous across all parts of one dataset provided the row
// source orders rows the same way before partitioning; the generator
// guarantees that by embedding the global index in the id column.
type Transformer struct {
	offset int64
	next   int64
	alloc  memory.Allocator
}

// NewTransformer creates a transformer for a part whose range starts at
// the given global row offset.
func NewTransformer(offset int64) *Transformer {
	return &Transformer{offset: offset, next: offset, alloc: memory.NewGoAllocator()}
}

// Schema returns the output schema.
func (t *Transformer) Schema() *arrow.Schema {
	return OutputSchema()
}

// Transform derives one output batch from one raw batch. Batches must
// arrive in row order; the transformer keeps a running key cursor. The
// input record is not released; the caller retains ownership.
func (t *Transformer) Transform(ctx context.Context, record arrow.Record) (arrow.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	n := record.NumRows()
	cols := make([]arrow.Array, 0, len(derivations)+1)
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	keyB := array.NewInt64Builder(t.alloc)
	defer keyB.Release()
	for i := int64(0); i < n; i++ {
		keyB.Append(t.next + i + 1)
	}
	cols = append(cols, keyB.NewArray())

	for _, d := range derivations {
		idx := record.Schema().FieldIndices(d.Source)
		if len(idx) == 0 {
			return nil, fmt.Errorf("source column %q not found for %q", d.Source, d.Output)
		}
		src := record.Column(idx[0])

		if d.Passthrough {
			src.Retain()
			cols = append(cols, src)
			continue
		}

		strs, ok := src.(*array.String)
		if !ok {
			return nil, fmt.Errorf("source column %q for %q is %s, want utf8", d.Source, d.Output, src.DataType())
		}

		b := array.NewStringBuilder(t.alloc)
		for i := 0; i < strs.Len(); i++ {
			if strs.IsNull(i) {
				b.Append("")
			} else {
				b.Append(strs.Value(i))
			}
		}
		cols = append(cols, b.NewArray())
		b.Release()
	}

	t.next += n
	return array.NewRecord(OutputSchema(), cols, n), nil
}

// TransformAll derives output batches from a full part's batch sequence.
func (t *Transformer) TransformAll(ctx context.Context, batches []arrow.Record) ([]arrow.Record, error) {
	out := make([]arrow.Record, 0, len(batches))
	for _, rec := range batches {
		transformed, err := t.Transform(ctx, rec)
		if err != nil {
			for _, o := range out {
				o.Release()
			}
			return nil, err
		}
		out = append(out, transformed)
	}
	return out, nil
}
