package kernel

import "github.com/chazu/vxcsg/pkg/cell"

// Translate returns a new solid with every cell of s shifted by d.
func Translate(s *VoxelSolid, d cell.Cell) *VoxelSolid {
	out := New()
	for c := range s.v {
		out.Add(c.Add(d))
	}
	return out
}

func rx(c cell.Cell) cell.Cell { return cell.Cell{X: c.X, Y: -c.Z, Z: c.Y} }
func ry(c cell.Cell) cell.Cell { return cell.Cell{X: c.Z, Y: c.Y, Z: -c.X} }
func rz(c cell.Cell) cell.Cell { return cell.Cell{X: -c.Y, Y: c.X, Z: c.Z} }

// Rotate90 returns a new solid rotated by k*90 degrees (k mod 4) about the
// origin, using the canonical lattice rotation for axis.
func Rotate90(s *VoxelSolid, axis cell.Axis, k int) *VoxelSolid {
	k = ((k % 4) + 4) % 4
	var step func(cell.Cell) cell.Cell
	switch axis {
	case cell.AxisX:
		step = rx
	case cell.AxisY:
		step = ry
	default:
		step = rz
	}
	out := New()
	for c := range s.v {
		r := c
		for i := 0; i < k; i++ {
			r = step(r)
		}
		out.Add(r)
	}
	return out
}

// Mirror returns a new solid reflected across axis so the occupied region
// continues to occupy the same half-open coordinate space: for axis X,
// x maps to -x-1 (Y, Z analogous).
func Mirror(s *VoxelSolid, axis cell.Axis) *VoxelSolid {
	out := New()
	for c := range s.v {
		m := c
		switch axis {
		case cell.AxisX:
			m.X = -c.X - 1
		case cell.AxisY:
			m.Y = -c.Y - 1
		case cell.AxisZ:
			m.Z = -c.Z - 1
		}
		out.Add(m)
	}
	return out
}
