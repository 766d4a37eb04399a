// Package zone generates the zone table of the synthetic geospatial
// benchmark: a deterministic row source, a transformer that derives the
// output schema with a globally contiguous key, and the single-part /
// multi-part orchestration that writes partitioned parquet.
package zone

import (
	"context"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/TFMV/zonegen/pkg/core"
)

// DefaultBatchSize is the number of rows per generated record batch.
const DefaultBatchSize = 8192

// RowCountForScale returns the zone row count for a scale factor. The
// zone table does not scale linearly; it grows in steps because zones
// model administrative divisions rather than per-trip activity.
func RowCountForScale(scaleFactor float64) int64 {
	switch {
	case scaleFactor < 10:
		return 231_930
	case scaleFactor < 100:
		return 3_422_508
	case scaleFactor < 1000:
		return 9_298_556
	default:
		return 13_107_200
	}
}

// Generator is a deterministic synthetic row source for the raw zone
// schema. Row content is a pure function of the global row index, so a
// pushdown scan and a slice of a materialized scan yield identical rows.
// The id column embeds the zero-padded global index, making the source
// ordering total; key numbering downstream depends on that.
type Generator struct {
	rows      int64
	batchSize int64
	alloc     memory.Allocator
}

// Option configures a Generator.
type Option func(*Generator)

// WithRowCount overrides the scale-derived row count.
func WithRowCount(rows int64) Option {
	return func(g *Generator) { g.rows = rows }
}

// WithBatchSize sets the rows per generated batch.
func WithBatchSize(n int64) Option {
	return func(g *Generator) { g.batchSize = n }
}

// WithAllocator sets the memory allocator used for generated batches.
func WithAllocator(alloc memory.Allocator) Option {
	return func(g *Generator) { g.alloc = alloc }
}

// NewGenerator creates a generator sized for the given scale factor.
func NewGenerator(scaleFactor float64, opts ...Option) *Generator {
	g := &Generator{
		rows:      RowCountForScale(scaleFactor),
		batchSize: DefaultBatchSize,
		alloc:     memory.NewGoAllocator(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// TotalRows returns the number of rows in the full sequence.
func (g *Generator) TotalRows() int64 {
	return g.rows
}

// Schema returns the raw zone schema produced by the generator.
func (g *Generator) Schema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.BinaryTypes.String},
		{Name: "country", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "region", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "subtype", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "geometry", Type: arrow.BinaryTypes.Binary},
	}, nil)
}

// Scan returns a lazily-executed plan over the full row sequence.
func (g *Generator) Scan() *Scan {
	return &Scan{g: g, offset: 0, limit: g.rows}
}

// Scan is an unexecuted plan over a contiguous slice of the synthetic
// row sequence. PushRange restricts it before execution so only the
// needed rows are ever computed.
type Scan struct {
	g      *Generator
	offset int64
	limit  int64
}

// PushRange restricts the scan to [offset, offset+limit) of the full
// sequence. Implements partition.Pushdown.
func (s *Scan) PushRange(offset, limit int64) {
	s.offset = offset
	s.limit = limit
}

// Execute starts the scan, returning a streaming reader over its batches.
func (s *Scan) Execute(ctx context.Context) (core.DatasetReader, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	end := min(s.offset+s.limit, s.g.rows)
	return &scanReader{g: s.g, next: s.offset, end: end}, nil
}

// Materialize runs the scan to completion and returns all batches. The
// caller owns the returned records and must release them.
func (s *Scan) Materialize(ctx context.Context) ([]arrow.Record, error) {
	reader, err := s.Execute(ctx)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var batches []arrow.Record
	for {
		rec, err := reader.Read(ctx)
		if err == io.EOF {
			return batches, nil
		}
		if err != nil {
			for _, b := range batches {
				b.Release()
			}
			return nil, err
		}
		batches = append(batches, rec)
	}
}

// scanReader streams generated batches for one scan.
type scanReader struct {
	g    *Generator
	next int64
	end  int64
}

func (r *scanReader) Read(ctx context.Context) (arrow.Record, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if r.next >= r.end {
		return nil, io.EOF
	}

	stop := min(r.next+r.g.batchSize, r.end)
	rec := r.g.buildBatch(r.next, stop)
	r.next = stop
	return rec, nil
}

func (r *scanReader) Schema() *arrow.Schema {
	return r.g.Schema()
}

func (r *scanReader) Close() error {
	r.next = r.end
	return nil
}

var (
	countries = []string{"US", "MX", "CA", "BR", "DE", "FR", "ES", "JP", "AU", "IN", "GB", "ZA"}
	subtypes  = []string{"county", "locality", "neighborhood", "borough", "macrohood", "microhood"}
)

// buildBatch materializes rows [start, stop) of the global sequence.
func (g *Generator) buildBatch(start, stop int64) arrow.Record {
	n := stop - start

	idB := array.NewStringBuilder(g.alloc)
	countryB := array.NewStringBuilder(g.alloc)
	regionB := array.NewStringBuilder(g.alloc)
	nameB := array.NewStringBuilder(g.alloc)
	subtypeB := array.NewStringBuilder(g.alloc)
	geomB := array.NewBinaryBuilder(g.alloc, arrow.BinaryTypes.Binary)
	defer func() {
		idB.Release()
		countryB.Release()
		regionB.Release()
		nameB.Release()
		subtypeB.Release()
		geomB.Release()
	}()

	for i := start; i < stop; i++ {
		h := rowHash(i)

		// Zero-padded global index keeps lexicographic id order equal
		// to row order, so the ordering key is total with no tiebreak.
		idB.Append(fmt.Sprintf("zone.%012d.%08x", i, uint32(h)))

		country := countries[h%uint64(len(countries))]
		countryB.Append(country)

		if h%41 == 0 {
			regionB.AppendNull()
		} else {
			regionB.Append(fmt.Sprintf("%s-R%02d", country, (h>>8)%64))
		}

		if h%23 == 0 {
			nameB.AppendNull()
		} else {
			nameB.Append(fmt.Sprintf("Zone %s %d", country, (h>>16)%100_000))
		}

		if h%17 == 0 {
			subtypeB.AppendNull()
		} else {
			subtypeB.Append(subtypes[(h>>24)%uint64(len(subtypes))])
		}

		lon := -180.0 + float64(h%36_000)/100.0
		lat := -85.0 + float64((h>>20)%17_000)/100.0
		half := 0.005 + float64((h>>36)%100)/1000.0
		geomB.Append(boundaryWKB(lon, lat, half, half))
	}

	cols := []arrow.Array{
		idB.NewArray(),
		countryB.NewArray(),
		regionB.NewArray(),
		nameB.NewArray(),
		subtypeB.NewArray(),
		geomB.NewArray(),
	}
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	return array.NewRecord(g.Schema(), cols, n)
}

// rowHash mixes the global row index into a well-distributed 64-bit
// value (splitmix64 finalizer).
func rowHash(i int64) uint64 {
	z := uint64(i) + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
