// Package sbvx implements the SBVX binary voxel container: a fixed
// header plus a dense bit-packed or sparse Morton-ordered payload, with
// auto-selection between the two based on occupancy.
package sbvx

import (
	"encoding/binary"
	"io"
	"math/bits"
	"sort"

	"github.com/chazu/vxcsg/pkg/cell"
	"github.com/chazu/vxcsg/pkg/kernel"
)

// Encoding selects the payload layout.
type Encoding uint8

const (
	EncodingDense  Encoding = 0
	EncodingSparse Encoding = 1
)

var magic = [5]byte{'S', 'B', 'V', 'X', 0}

const currentVersion byte = 1

const headerLen = 5 + 1 + 1 + 12 + 12 + 8

// Write encodes s to w, auto-selecting dense or sparse: empty solids use
// sparse; otherwise dense iff 4*|V| >= totalCells.
func Write(w io.Writer, s *kernel.VoxelSolid) error {
	return WriteWithEncoding(w, s, selectEncoding(s))
}

func selectEncoding(s *kernel.VoxelSolid) Encoding {
	if s.Volume() == 0 {
		return EncodingSparse
	}
	_, sizeX, sizeY, sizeZ := boundsAndSize(s)
	total := uint64(sizeX) * uint64(sizeY) * uint64(sizeZ)
	if total > 0 && 4*uint64(s.Volume()) >= total {
		return EncodingDense
	}
	return EncodingSparse
}

func boundsAndSize(s *kernel.VoxelSolid) (origin cell.Cell, sizeX, sizeY, sizeZ uint32) {
	min, maxExcl := s.Bounds()
	if s.Volume() == 0 {
		return cell.Cell{}, 0, 0, 0
	}
	return min, uint32(maxExcl.X - min.X), uint32(maxExcl.Y - min.Y), uint32(maxExcl.Z - min.Z)
}

// WriteWithEncoding encodes s to w using the requested encoding.
func WriteWithEncoding(w io.Writer, s *kernel.VoxelSolid, enc Encoding) error {
	origin, sizeX, sizeY, sizeZ := boundsAndSize(s)

	var payload []byte
	switch enc {
	case EncodingDense:
		payload = encodeDense(s, origin, sizeX, sizeY, sizeZ)
	case EncodingSparse:
		payload = encodeSparse(s, origin)
	default:
		return cell.Newf(cell.InvalidArgument, "sbvx.WriteWithEncoding", "unknown encoding %d", enc)
	}

	hdr := make([]byte, headerLen)
	copy(hdr[0:5], magic[:])
	hdr[5] = currentVersion
	hdr[6] = byte(enc)
	binary.LittleEndian.PutUint32(hdr[7:11], uint32(origin.X))
	binary.LittleEndian.PutUint32(hdr[11:15], uint32(origin.Y))
	binary.LittleEndian.PutUint32(hdr[15:19], uint32(origin.Z))
	binary.LittleEndian.PutUint32(hdr[19:23], sizeX)
	binary.LittleEndian.PutUint32(hdr[23:27], sizeY)
	binary.LittleEndian.PutUint32(hdr[27:31], sizeZ)
	binary.LittleEndian.PutUint64(hdr[31:39], uint64(len(payload)))

	if _, err := w.Write(hdr); err != nil {
		return cell.Wrap(cell.IoError, "sbvx.WriteWithEncoding", err, "writing header")
	}
	if _, err := w.Write(payload); err != nil {
		return cell.Wrap(cell.IoError, "sbvx.WriteWithEncoding", err, "writing payload")
	}
	return nil
}

func denseIndex(x, y, z, sizeX, sizeY uint32) uint64 {
	return uint64(x) + uint64(y)*uint64(sizeX) + uint64(z)*uint64(sizeX)*uint64(sizeY)
}

// checkedTotal multiplies the three dense-grid dimensions, surfacing
// InvalidFormat instead of silently wrapping if the product overflows a
// uint64 (reachable only from a maliciously or corruptly encoded header).
func checkedTotal(op string, sizeX, sizeY, sizeZ uint32) (uint64, error) {
	hi, xy := bits.Mul64(uint64(sizeX), uint64(sizeY))
	if hi != 0 {
		return 0, cell.Newf(cell.InvalidFormat, op, "size overflow: %d*%d*%d", sizeX, sizeY, sizeZ)
	}
	hi, total := bits.Mul64(xy, uint64(sizeZ))
	if hi != 0 {
		return 0, cell.Newf(cell.InvalidFormat, op, "size overflow: %d*%d*%d", sizeX, sizeY, sizeZ)
	}
	return total, nil
}

func encodeDense(s *kernel.VoxelSolid, origin cell.Cell, sizeX, sizeY, sizeZ uint32) []byte {
	total := uint64(sizeX) * uint64(sizeY) * uint64(sizeZ)
	buf := make([]byte, (total+7)/8)
	for _, c := range s.Cells() {
		idx := denseIndex(uint32(c.X-origin.X), uint32(c.Y-origin.Y), uint32(c.Z-origin.Z), sizeX, sizeY)
		buf[idx/8] |= 1 << (idx % 8)
	}
	return buf
}

func decodeDense(payload []byte, origin cell.Cell, sizeX, sizeY, sizeZ uint32) (*kernel.VoxelSolid, error) {
	total, err := checkedTotal("sbvx.decodeDense", sizeX, sizeY, sizeZ)
	if err != nil {
		return nil, err
	}
	if uint64(len(payload)) != (total+7)/8 {
		return nil, cell.Newf(cell.InvalidFormat, "sbvx.decodeDense", "payload length %d does not match expected %d", len(payload), (total+7)/8)
	}
	out := kernel.New()
	for z := uint32(0); z < sizeZ; z++ {
		for y := uint32(0); y < sizeY; y++ {
			for x := uint32(0); x < sizeX; x++ {
				idx := denseIndex(x, y, z, sizeX, sizeY)
				if payload[idx/8]&(1<<(idx%8)) != 0 {
					out.Add(cell.Cell{X: origin.X + int32(x), Y: origin.Y + int32(y), Z: origin.Z + int32(z)})
				}
			}
		}
	}
	return out, nil
}

// morton21 interleaves the low 21 bits of x, y, z into a 64-bit Morton
// key (z in the highest bit-group, matching the documented tie-break
// priority of z, then y, then x).
func morton21(x, y, z uint32) uint64 {
	return spread21(uint64(x)) | spread21(uint64(y))<<1 | spread21(uint64(z))<<2
}

func spread21(v uint64) uint64 {
	v &= 0x1FFFFF
	v = (v | (v << 32)) & 0x1F00000000FFFF
	v = (v | (v << 16)) & 0x1F0000FF0000FF
	v = (v | (v << 8)) & 0x100F00F00F00F00F
	v = (v | (v << 4)) & 0x10C30C30C30C30C3
	v = (v | (v << 2)) & 0x1249249249249249
	return v
}

func encodeSparse(s *kernel.VoxelSolid, origin cell.Cell) []byte {
	cells := s.Cells()
	type entry struct {
		c      cell.Cell
		morton uint64
	}
	entries := make([]entry, len(cells))
	for i, c := range cells {
		entries[i] = entry{c: c, morton: morton21(uint32(c.X-origin.X), uint32(c.Y-origin.Y), uint32(c.Z-origin.Z))}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].morton != entries[j].morton {
			return entries[i].morton < entries[j].morton
		}
		a, b := entries[i].c, entries[j].c
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	buf := make([]byte, 4+12*len(entries))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(entries)))
	off := 4
	for _, e := range entries {
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(e.c.X))
		binary.LittleEndian.PutUint32(buf[off+4:off+8], uint32(e.c.Y))
		binary.LittleEndian.PutUint32(buf[off+8:off+12], uint32(e.c.Z))
		off += 12
	}
	return buf
}

func decodeSparse(payload []byte, origin cell.Cell, sizeX, sizeY, sizeZ uint32) (*kernel.VoxelSolid, error) {
	if len(payload) < 4 {
		return nil, cell.Newf(cell.InvalidFormat, "sbvx.decodeSparse", "payload too short for voxel count")
	}
	count := binary.LittleEndian.Uint32(payload[0:4])
	want := 4 + 12*int(count)
	if len(payload) != want {
		return nil, cell.Newf(cell.InvalidFormat, "sbvx.decodeSparse", "payload length %d does not match expected %d for %d voxels", len(payload), want, count)
	}
	out := kernel.New()
	off := 4
	for i := uint32(0); i < count; i++ {
		x := int32(binary.LittleEndian.Uint32(payload[off : off+4]))
		y := int32(binary.LittleEndian.Uint32(payload[off+4 : off+8]))
		z := int32(binary.LittleEndian.Uint32(payload[off+8 : off+12]))
		off += 12
		if sizeX > 0 && (x < origin.X || x >= origin.X+int32(sizeX) ||
			y < origin.Y || y >= origin.Y+int32(sizeY) ||
			z < origin.Z || z >= origin.Z+int32(sizeZ)) {
			return nil, cell.Newf(cell.InvalidFormat, "sbvx.decodeSparse", "voxel (%d,%d,%d) outside declared box", x, y, z)
		}
		out.Add(cell.Cell{X: x, Y: y, Z: z})
	}
	return out, nil
}

// Read decodes a VoxelSolid from r, dispatching on the encoding byte and
// validating magic, version, and payload size.
func Read(r io.Reader) (*kernel.VoxelSolid, error) {
	hdr := make([]byte, headerLen)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, cell.Wrap(cell.IoError, "sbvx.Read", err, "reading header")
	}
	var gotMagic [5]byte
	copy(gotMagic[:], hdr[0:5])
	if gotMagic != magic {
		return nil, cell.Newf(cell.InvalidFormat, "sbvx.Read", "bad magic %v", gotMagic)
	}
	if hdr[5] != currentVersion {
		return nil, cell.Newf(cell.InvalidFormat, "sbvx.Read", "unsupported version %d", hdr[5])
	}
	enc := Encoding(hdr[6])
	origin := cell.Cell{
		X: int32(binary.LittleEndian.Uint32(hdr[7:11])),
		Y: int32(binary.LittleEndian.Uint32(hdr[11:15])),
		Z: int32(binary.LittleEndian.Uint32(hdr[15:19])),
	}
	sizeX := binary.LittleEndian.Uint32(hdr[19:23])
	sizeY := binary.LittleEndian.Uint32(hdr[23:27])
	sizeZ := binary.LittleEndian.Uint32(hdr[27:31])
	payloadLen := binary.LittleEndian.Uint64(hdr[31:39])

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, cell.Wrap(cell.IoError, "sbvx.Read", err, "reading payload")
	}

	switch enc {
	case EncodingDense:
		return decodeDense(payload, origin, sizeX, sizeY, sizeZ)
	case EncodingSparse:
		return decodeSparse(payload, origin, sizeX, sizeY, sizeZ)
	default:
		return nil, cell.Newf(cell.InvalidFormat, "sbvx.Read", "unknown encoding byte %d", enc)
	}
}
