package kernel

import "github.com/chazu/vxcsg/pkg/cell"

// Is6Connected reports whether every occupied cell is reachable from any
// other via a path of 6-neighbor steps. An empty solid is connected.
func (s *VoxelSolid) Is6Connected() bool {
	if len(s.v) == 0 {
		return true
	}
	var seed cell.Cell
	for c := range s.v {
		seed = c
		break
	}
	visited := map[cell.Cell]struct{}{seed: {}}
	queue := []cell.Cell{seed}
	for len(queue) > 0 {
		cur := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		for _, axis := range axes {
			for _, dir := range [2]int32{-1, 1} {
				n := neighbor(cur, axis, dir)
				if _, in := s.v[n]; !in {
					continue
				}
				if _, seen := visited[n]; seen {
					continue
				}
				visited[n] = struct{}{}
				queue = append(queue, n)
			}
		}
	}
	return len(visited) == len(s.v)
}

// edgeKey canonically identifies a unit lattice edge by its direction axis
// and its lower-coordinate corner, independent of which face or axis
// plane the edge was derived from.
type edgeKey struct {
	dir cell.Axis
	low cell.Cell
}

// faceCorner returns the 3D lattice point of face fk's corner offset by
// (aOff, bOff) along the face's local A/B axes, per the axis-specific
// ordering documented on cell.FaceKey.
func faceCorner(fk cell.FaceKey, aOff, bOff int32) cell.Cell {
	a := fk.A + aOff
	b := fk.B + bOff
	switch fk.Axis {
	case cell.AxisX:
		return cell.Cell{X: fk.K, Y: a, Z: b}
	case cell.AxisY:
		return cell.Cell{X: a, Y: fk.K, Z: b}
	default:
		return cell.Cell{X: a, Y: b, Z: fk.K}
	}
}

// faceLocalAxes returns the two global axes that correspond to a face's
// local A and B coordinates.
func faceLocalAxes(axis cell.Axis) (aAxis, bAxis cell.Axis) {
	switch axis {
	case cell.AxisX:
		return cell.AxisY, cell.AxisZ
	case cell.AxisY:
		return cell.AxisX, cell.AxisZ
	default:
		return cell.AxisX, cell.AxisY
	}
}

// edgesOfFace returns the four unit edges bounding fk's unit square, each
// canonicalized to its direction axis and lower corner so that two faces
// sharing a physical edge produce identical edgeKeys.
func edgesOfFace(fk cell.FaceKey) [4]edgeKey {
	c00 := faceCorner(fk, 0, 0)
	c01 := faceCorner(fk, 0, 1)
	c10 := faceCorner(fk, 1, 0)
	aAxis, bAxis := faceLocalAxes(fk.Axis)
	return [4]edgeKey{
		{dir: aAxis, low: c00},
		{dir: aAxis, low: c01},
		{dir: bAxis, low: c00},
		{dir: bAxis, low: c10},
	}
}

// IsWatertight reports whether s's boundary forms a closed 2-manifold: V
// is empty, or B is non-empty and every edge of the face complex is
// shared by exactly two faces.
func (s *VoxelSolid) IsWatertight() bool {
	if len(s.v) == 0 {
		return true
	}
	if len(s.b) == 0 {
		return false
	}
	counts := make(map[edgeKey]int)
	for fk := range s.b {
		for _, e := range edgesOfFace(fk) {
			counts[e]++
		}
	}
	for _, n := range counts {
		if n != 2 {
			return false
		}
	}
	return true
}
