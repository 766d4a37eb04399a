// Package utils provides small Arrow helpers shared across packages.
package utils

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// RecordByteSize returns the in-memory size of a record's column
// buffers. Used to convert a row-group byte threshold into a row count.
func RecordByteSize(record arrow.Record) int64 {
	var total int64
	for i := 0; i < int(record.NumCols()); i++ {
		data := record.Column(i).Data()
		for _, buf := range data.Buffers() {
			if buf != nil {
				total += int64(buf.Len())
			}
		}
	}
	return total
}

// AvgRowBytes estimates the average row width of a record.
func AvgRowBytes(record arrow.Record) int64 {
	rows := record.NumRows()
	if rows == 0 {
		return 0
	}
	return RecordByteSize(record) / rows
}
