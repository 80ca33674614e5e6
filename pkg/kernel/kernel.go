// Package kernel implements the voxel occupancy kernel: an incrementally
// maintained set of occupied lattice cells and boundary faces, boolean
// operations, rigid transforms, connectivity/watertightness predicates,
// and morphology.
package kernel

import "github.com/chazu/vxcsg/pkg/cell"

// VoxelSolid exclusively owns a set of occupied cells and a set of
// boundary faces. The two are kept in lockstep by Add/Remove: a face
// belongs to the boundary set iff exactly one of its two adjacent voxels
// is occupied (the B<=>V invariant). Every mutation goes through Add or
// Remove so this invariant never has to be rebuilt from scratch.
type VoxelSolid struct {
	v map[cell.Cell]struct{}
	b map[cell.FaceKey]int8 // value is the outward normal sign, +1 or -1
}

// New returns an empty VoxelSolid.
func New() *VoxelSolid {
	return &VoxelSolid{
		v: make(map[cell.Cell]struct{}),
		b: make(map[cell.FaceKey]int8),
	}
}

// Contains reports whether c is occupied.
func (s *VoxelSolid) Contains(c cell.Cell) bool {
	_, ok := s.v[c]
	return ok
}

// Volume returns the number of occupied cells.
func (s *VoxelSolid) Volume() int {
	return len(s.v)
}

// SurfaceArea returns the number of boundary faces.
func (s *VoxelSolid) SurfaceArea() int {
	return len(s.b)
}

// Cells returns every occupied cell. The order is unspecified.
func (s *VoxelSolid) Cells() []cell.Cell {
	out := make([]cell.Cell, 0, len(s.v))
	for c := range s.v {
		out = append(out, c)
	}
	return out
}

// Faces returns a copy of every boundary face together with its outward
// normal sign (+1 or -1, per spec.md §4.4). The order is unspecified.
func (s *VoxelSolid) Faces() map[cell.FaceKey]int8 {
	out := make(map[cell.FaceKey]int8, len(s.b))
	for k, sign := range s.b {
		out[k] = sign
	}
	return out
}

// FaceSign reports the outward normal sign of face fk and whether it is
// present in the boundary set at all.
func (s *VoxelSolid) FaceSign(fk cell.FaceKey) (int8, bool) {
	sign, ok := s.b[fk]
	return sign, ok
}

var axes = [3]cell.Axis{cell.AxisX, cell.AxisY, cell.AxisZ}

func neighbor(c cell.Cell, axis cell.Axis, dir int32) cell.Cell {
	switch axis {
	case cell.AxisX:
		return cell.Cell{X: c.X + dir, Y: c.Y, Z: c.Z}
	case cell.AxisY:
		return cell.Cell{X: c.X, Y: c.Y + dir, Z: c.Z}
	default:
		return cell.Cell{X: c.X, Y: c.Y, Z: c.Z + dir}
	}
}

// Add inserts c into the occupied set, toggling its six adjacent faces to
// preserve the B<=>V invariant. A no-op if c is already present.
func (s *VoxelSolid) Add(c cell.Cell) {
	if _, ok := s.v[c]; ok {
		return
	}
	s.v[c] = struct{}{}
	s.retoggleFaces(c, true)
}

// Remove deletes c from the occupied set, toggling its six adjacent faces
// to preserve the B<=>V invariant. A no-op if c is absent.
func (s *VoxelSolid) Remove(c cell.Cell) {
	if _, ok := s.v[c]; !ok {
		return
	}
	delete(s.v, c)
	s.retoggleFaces(c, false)
}

// retoggleFaces recomputes the presence and sign of c's six adjacent
// faces given that c's occupancy just became cFilled.
func (s *VoxelSolid) retoggleFaces(c cell.Cell, cFilled bool) {
	for _, axis := range axes {
		for _, dir := range [2]int32{-1, 1} {
			n := neighbor(c, axis, dir)
			_, nFilled := s.v[n]
			fk := cell.NewFaceKey(axis, c, dir == -1)
			if cFilled == nFilled {
				delete(s.b, fk)
				continue
			}
			// Exactly one of the two adjacent cells is filled. dir==-1
			// means n sits on the negative side of the plane and c on
			// the positive side; dir==+1 is the reverse.
			var negFilled bool
			if dir == -1 {
				negFilled = nFilled
			} else {
				negFilled = cFilled
			}
			if negFilled {
				s.b[fk] = +1
			} else {
				s.b[fk] = -1
			}
		}
	}
}

// Clone returns an independent copy built by replaying every cell through
// Add, so the boundary set is freshly derived rather than copied raw.
func (s *VoxelSolid) Clone() *VoxelSolid {
	out := New()
	for c := range s.v {
		out.Add(c)
	}
	return out
}

// FromCells builds a new solid containing exactly the given cells, added
// incrementally.
func FromCells(cells []cell.Cell) *VoxelSolid {
	out := New()
	for _, c := range cells {
		out.Add(c)
	}
	return out
}

// Bounds returns the inclusive minimum and exclusive maximum corners of
// the occupied set. An empty solid returns ((0,0,0),(0,0,0)).
func (s *VoxelSolid) Bounds() (min, maxExcl cell.Cell) {
	if len(s.v) == 0 {
		return cell.Cell{}, cell.Cell{}
	}
	first := true
	for c := range s.v {
		if first {
			min, maxExcl = c, c
			first = false
			continue
		}
		if c.X < min.X {
			min.X = c.X
		}
		if c.Y < min.Y {
			min.Y = c.Y
		}
		if c.Z < min.Z {
			min.Z = c.Z
		}
		if c.X > maxExcl.X {
			maxExcl.X = c.X
		}
		if c.Y > maxExcl.Y {
			maxExcl.Y = c.Y
		}
		if c.Z > maxExcl.Z {
			maxExcl.Z = c.Z
		}
	}
	maxExcl = cell.Cell{X: maxExcl.X + 1, Y: maxExcl.Y + 1, Z: maxExcl.Z + 1}
	return min, maxExcl
}
