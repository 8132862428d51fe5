// Package scenefile reads scene snapshot files from disk.
//
// A snapshot file is a small binary header followed by an opaque content
// blob. The header carries just enough structure to derive the snapshot's
// spatial bounds; the blob itself is never interpreted here and is handed
// to the environment controller as-is.
//
// Layout (big endian):
//
//	0  magic "SBX1" (4 bytes)
//	4  version (1 byte, currently 1)
//	5  reserved (1 byte)
//	6  item count (uint16)
//	8  items: position x,y,z then size x,y,z as float32 (24 bytes each)
//	.. content blob (rest of file, opaque)
package scenefile

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/errors"

	"github.com/mkaji/scenebox/internal/domain/scene"
)

// Ext is the snapshot file extension recognized by the loader.
const Ext = ".sbx"

const (
	headerSize = 8
	itemSize   = 24
	version    = 1
)

var magic = [4]byte{'S', 'B', 'X', '1'}

// Parse decodes a snapshot file into a Scene. The returned scene keeps the
// full raw bytes as its payload; only the header is interpreted.
func Parse(name string, data []byte) (*scene.Scene, error) {
	if len(data) < headerSize {
		return nil, errors.Newf("snapshot too short: %d bytes", len(data))
	}
	if data[0] != magic[0] || data[1] != magic[1] || data[2] != magic[2] || data[3] != magic[3] {
		return nil, errors.New("not a scene snapshot: bad magic")
	}
	if data[4] != version {
		return nil, errors.Newf("unsupported snapshot version %d", data[4])
	}

	count := int(binary.BigEndian.Uint16(data[6:8]))
	if count == 0 {
		return nil, errors.New("snapshot has no items")
	}
	if len(data) < headerSize+count*itemSize {
		return nil, errors.Newf("snapshot truncated: %d items declared, %d bytes present", count, len(data))
	}

	var lo, hi scene.Vec3
	for i := 0; i < count; i++ {
		off := headerSize + i*itemSize
		pos := readVec3(data[off:])
		size := readVec3(data[off+12:])
		half := size.Scale(0.5)
		itemLo := pos.Add(half.Scale(-1))
		itemHi := pos.Add(half)
		if i == 0 {
			lo, hi = itemLo, itemHi
		} else {
			lo = lo.Min(itemLo)
			hi = hi.Max(itemHi)
		}
	}

	return &scene.Scene{
		Name:   name,
		Items:  count,
		Data:   data,
		Bounds: scene.RegionFromCorners(lo, hi),
	}, nil
}

func readVec3(b []byte) scene.Vec3 {
	return scene.Vec3{
		X: float64(math.Float32frombits(binary.BigEndian.Uint32(b[0:4]))),
		Y: float64(math.Float32frombits(binary.BigEndian.Uint32(b[4:8]))),
		Z: float64(math.Float32frombits(binary.BigEndian.Uint32(b[8:12]))),
	}
}
