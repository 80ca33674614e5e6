// Package stlw writes a MeshD out as a binary STL file.
package stlw

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/chazu/vxcsg/pkg/cell"
	"github.com/chazu/vxcsg/pkg/meshd"
)

const headerSize = 80

// WriteBinary writes m to w in binary STL format: an 80-byte header
// (name, zero-padded), a 32-bit triangle count, then per triangle three
// 32-bit normal floats, nine 32-bit vertex floats, and a zero 16-bit
// attribute, all little-endian.
func WriteBinary(w io.Writer, m *meshd.MeshD, name string) error {
	var hdr [headerSize]byte
	copy(hdr[:], name)
	if _, err := w.Write(hdr[:]); err != nil {
		return cell.Wrap(cell.IoError, "stlw.WriteBinary", err, "writing header")
	}

	if len(m.Triangles) > math.MaxUint32 {
		return cell.Newf(cell.InvalidArgument, "stlw.WriteBinary", "triangle count %d exceeds uint32 range", len(m.Triangles))
	}
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(m.Triangles)))
	if _, err := w.Write(countBuf[:]); err != nil {
		return cell.Wrap(cell.IoError, "stlw.WriteBinary", err, "writing triangle count")
	}

	var rec [50]byte // 3 normal floats + 9 vertex floats + 2-byte attribute
	for _, t := range m.Triangles {
		v0, v1, v2 := m.Vertices[t.A], m.Vertices[t.B], m.Vertices[t.C]
		n := faceNormal(v0, v1, v2)

		putFloat32(rec[0:4], n.X)
		putFloat32(rec[4:8], n.Y)
		putFloat32(rec[8:12], n.Z)
		putFloat32(rec[12:16], v0.X)
		putFloat32(rec[16:20], v0.Y)
		putFloat32(rec[20:24], v0.Z)
		putFloat32(rec[24:28], v1.X)
		putFloat32(rec[28:32], v1.Y)
		putFloat32(rec[32:36], v1.Z)
		putFloat32(rec[36:40], v2.X)
		putFloat32(rec[40:44], v2.Y)
		putFloat32(rec[44:48], v2.Z)
		rec[48] = 0
		rec[49] = 0

		if _, err := w.Write(rec[:]); err != nil {
			return cell.Wrap(cell.IoError, "stlw.WriteBinary", err, "writing triangle record")
		}
	}
	return nil
}

func putFloat32(b []byte, v float64) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
}

// faceNormal computes the normalized normal of triangle (v0,v1,v2).
// Degenerate (zero-area) triangles emit a zero normal.
func faceNormal(v0, v1, v2 meshd.Vec3) meshd.Vec3 {
	e1 := meshd.Vec3{X: v1.X - v0.X, Y: v1.Y - v0.Y, Z: v1.Z - v0.Z}
	e2 := meshd.Vec3{X: v2.X - v0.X, Y: v2.Y - v0.Y, Z: v2.Z - v0.Z}
	n := meshd.Vec3{
		X: e1.Y*e2.Z - e1.Z*e2.Y,
		Y: e1.Z*e2.X - e1.X*e2.Z,
		Z: e1.X*e2.Y - e1.Y*e2.X,
	}
	length := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
	if length == 0 {
		return meshd.Vec3{}
	}
	return meshd.Vec3{X: n.X / length, Y: n.Y / length, Z: n.Z / length}
}
