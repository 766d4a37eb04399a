// Package partition splits an ordered row sequence into contiguous,
// remainder-fair parts and applies a part's range either as a pushdown
// on an unexecuted scan or as a zero-copy slice over materialized batches.
package partition

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/TFMV/zonegen/logger"
	"go.uber.org/zap"
)

// Range is a half-open row range [Offset, Offset+Limit) over the full
// ordered row sequence. Ranges are derived by Calculate and never
// constructed by callers.
type Range struct {
	Offset int64
	Limit  int64
}

// Pushdown is any lazily-executed row scan that accepts an offset/limit
// restriction before execution.
type Pushdown interface {
	PushRange(offset, limit int64)
}

// Calculate computes the row range for one part of a fair contiguous
// split of totalRows into parts. Parts are 1-indexed. The first
// totalRows%parts parts each absorb one extra row, so the limits sum
// to totalRows exactly and the ranges are gap-free. Holds for
// totalRows < parts (some parts get limit 0) and parts == 1.
func Calculate(totalRows int64, parts, part int32) Range {
	k := int64(parts)
	i := int64(part) - 1

	base := totalRows / k
	rem := totalRows % k

	var extra int64
	if i < rem {
		extra = 1
	}

	r := Range{
		Offset: i*base + min(i, rem),
		Limit:  base + extra,
	}

	logger.GetLogger().Debug("partition range",
		zap.Int64("total_rows", totalRows),
		zap.Int32("parts", parts),
		zap.Int32("part", part),
		zap.Int64("offset", r.Offset),
		zap.Int64("limit", r.Limit))

	return r
}

// End returns the exclusive end of the range.
func (r Range) End() int64 {
	return r.Offset + r.Limit
}

// ApplyToPlan pushes the range into a not-yet-executed scan so the row
// source only ever computes the rows inside it.
func (r Range) ApplyToPlan(plan Pushdown) {
	plan.PushRange(r.Offset, r.Limit)
}

// ApplyToBatches slices the range out of an already-materialized batch
// sequence. Batches wholly outside the range are skipped; overlapping
// batches are narrowed with Record.NewSlice, which shares the
// underlying column buffers rather than copying rows. The returned
// batches concatenate to exactly [Offset, Offset+Limit). Input batches
// are not released; callers keep ownership of the materialized set.
func (r Range) ApplyToBatches(batches []arrow.Record) []arrow.Record {
	result := make([]arrow.Record, 0, len(batches))
	end := r.End()

	var cursor int64
	for _, batch := range batches {
		batchRows := batch.NumRows()
		batchEnd := cursor + batchRows

		if batchEnd <= r.Offset || cursor >= end {
			cursor = batchEnd
			continue
		}

		start := max(r.Offset-cursor, 0)
		stop := min(end-cursor, batchRows)

		if stop > start {
			result = append(result, batch.NewSlice(start, stop))
		}

		cursor = batchEnd
	}

	return result
}
