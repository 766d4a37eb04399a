package zone

import (
	"encoding/binary"
	"math"
)

// wkbPolygonType is the WKB geometry type code for a polygon.
const wkbPolygonType uint32 = 3

// boundaryWKB encodes a closed rectangular ring centered at (lon, lat)
// as a little-endian WKB polygon. Layout: byte order marker, geometry
// type, ring count, point count, then lon/lat doubles with the first
// point repeated to close the ring.
func boundaryWKB(lon, lat, halfWidth, halfHeight float64) []byte {
	points := [][2]float64{
		{lon - halfWidth, lat - halfHeight},
		{lon + halfWidth, lat - halfHeight},
		{lon + halfWidth, lat + halfHeight},
		{lon - halfWidth, lat + halfHeight},
		{lon - halfWidth, lat - halfHeight},
	}

	// 1 order byte + 4 type + 4 ring count + 4 point count + 16 per point
	buf := make([]byte, 0, 13+len(points)*16)
	buf = append(buf, 1) // little-endian
	buf = binary.LittleEndian.AppendUint32(buf, wkbPolygonType)
	buf = binary.LittleEndian.AppendUint32(buf, 1)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(points)))

	for _, p := range points {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p[0]))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p[1]))
	}

	return buf
}
