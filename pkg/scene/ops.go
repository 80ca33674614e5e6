package scene

import "github.com/chazu/vxcsg/pkg/kernel"
import "github.com/chazu/vxcsg/pkg/cell"

// AABB is an axis-aligned box in cell space, used to mask BridgeAxis fill.
type AABB struct {
	Min, MaxExcl cell.Cell
}

// Contains reports whether c lies within the box.
func (box AABB) Contains(c cell.Cell) bool {
	return c.X >= box.Min.X && c.X < box.MaxExcl.X &&
		c.Y >= box.Min.Y && c.Y < box.MaxExcl.Y &&
		c.Z >= box.Min.Z && c.Z < box.MaxExcl.Z
}

// Weld unions a and b, and if the union isn't already 6-connected, searches
// for the smallest closing radius (under metric) that connects them: a
// doubling search from a Chebyshev-gap guess establishes an upper bound,
// then a binary search finds the minimum radius within it. The closed
// result is registered as a new part on the scene. If even the doubled
// upper bound fails to connect, that radius's result is registered instead
// of looping forever.
func (s *Scene) Weld(name string, a, b *kernel.VoxelSolid, metric kernel.Metric) (*Part, int32, error) {
	u := kernel.Union(a, b)
	if u.Is6Connected() {
		return s.AddPart(name, u, RoleSolid), 0, nil
	}

	rHigh := chebyshevGap(a, b)
	if rHigh < 1 {
		rHigh = 1
	}
	var closed *kernel.VoxelSolid
	connected := false
	for i := 0; i < 16; i++ {
		closed = kernel.Close(u, rHigh, metric)
		if closed.Is6Connected() {
			connected = true
			break
		}
		rHigh *= 2
	}
	if !connected {
		// rHigh was doubled once more after the last failed attempt.
		return s.AddPart(name, closed, RoleSolid), rHigh / 2, nil
	}

	rLow := int32(1)
	for rLow < rHigh {
		mid := rLow + (rHigh-rLow)/2
		if kernel.Close(u, mid, metric).Is6Connected() {
			rHigh = mid
		} else {
			rLow = mid + 1
		}
	}
	result := kernel.Close(u, rHigh, metric)
	return s.AddPart(name, result, RoleSolid), rHigh, nil
}

// chebyshevGap returns the Chebyshev distance between the bounding boxes of
// a and b: the largest per-axis separation, or 0 if the boxes touch or
// overlap on every axis.
func chebyshevGap(a, b *kernel.VoxelSolid) int32 {
	aMin, aMax := a.Bounds()
	bMin, bMax := b.Bounds()

	gap := axisGap(aMin.X, aMax.X, bMin.X, bMax.X)
	if g := axisGap(aMin.Y, aMax.Y, bMin.Y, bMax.Y); g > gap {
		gap = g
	}
	if g := axisGap(aMin.Z, aMax.Z, bMin.Z, bMax.Z); g > gap {
		gap = g
	}
	return gap
}

func axisGap(aMin, aMaxExcl, bMin, bMaxExcl int32) int32 {
	if bMin >= aMaxExcl {
		return bMin - aMaxExcl
	}
	if aMin >= bMaxExcl {
		return aMin - bMaxExcl
	}
	return 0
}

// BridgeAxis fills the gap between a and b along axis: it projects both
// solids onto the plane perpendicular to axis, and for every footprint
// cell shared by both projections (falling back to the AABB overlap
// rectangle if the projections don't intersect), fills cells along axis
// from the near face of the solid on the lower side to the near face of
// the solid on the higher side, extended by thickness-1 on the near side
// and thickness on the far side. mask, if non-nil, restricts which filled
// cells are kept. The result is unioned with both inputs.
func BridgeAxis(a, b *kernel.VoxelSolid, axis cell.Axis, thickness int32, mask *AABB) *kernel.VoxelSolid {
	aMin, aMax := a.Bounds()
	bMin, bMax := b.Bounds()

	aAxisMin, aAxisMax := axisRange(aMin, aMax, axis)
	bAxisMin, bAxisMax := axisRange(bMin, bMax, axis)
	aCenter := float64(aAxisMin+aAxisMax) / 2
	bCenter := float64(bAxisMin+bAxisMax) / 2

	earlierMax, laterMin := aAxisMax, bAxisMin
	if aCenter > bCenter {
		earlierMax, laterMin = bAxisMax, aAxisMin
	}
	start := earlierMax - (thickness - 1)
	end := laterMin + thickness // exclusive

	footprint := intersectFootprint(footprintOf(a, axis), footprintOf(b, axis))
	if len(footprint) == 0 {
		footprint = aabbOverlapFootprint(aMin, aMax, bMin, bMax, axis)
	}

	bridge := kernel.New()
	for fp := range footprint {
		for k := start; k < end; k++ {
			c := cellFromFootprint(axis, fp, k)
			if mask != nil && !mask.Contains(c) {
				continue
			}
			bridge.Add(c)
		}
	}

	return kernel.Union(kernel.Union(a, b), bridge)
}

func axisRange(min, maxExcl cell.Cell, axis cell.Axis) (int32, int32) {
	switch axis {
	case cell.AxisX:
		return min.X, maxExcl.X
	case cell.AxisY:
		return min.Y, maxExcl.Y
	default:
		return min.Z, maxExcl.Z
	}
}

// otherRanges returns the (a, b) ranges of the box perpendicular to axis,
// in the same axis-specific order as footprintOf/cellFromFootprint.
func otherRanges(min, maxExcl cell.Cell, axis cell.Axis) (a0, a1, b0, b1 int32) {
	switch axis {
	case cell.AxisX:
		return min.Y, maxExcl.Y, min.Z, maxExcl.Z
	case cell.AxisY:
		return min.X, maxExcl.X, min.Z, maxExcl.Z
	default:
		return min.X, maxExcl.X, min.Y, maxExcl.Y
	}
}

func otherCoords(c cell.Cell, axis cell.Axis) (int32, int32) {
	switch axis {
	case cell.AxisX:
		return c.Y, c.Z
	case cell.AxisY:
		return c.X, c.Z
	default:
		return c.X, c.Y
	}
}

func cellFromFootprint(axis cell.Axis, fp [2]int32, k int32) cell.Cell {
	switch axis {
	case cell.AxisX:
		return cell.Cell{X: k, Y: fp[0], Z: fp[1]}
	case cell.AxisY:
		return cell.Cell{X: fp[0], Y: k, Z: fp[1]}
	default:
		return cell.Cell{X: fp[0], Y: fp[1], Z: k}
	}
}

func footprintOf(s *kernel.VoxelSolid, axis cell.Axis) map[[2]int32]struct{} {
	out := make(map[[2]int32]struct{})
	for _, c := range s.Cells() {
		a, b := otherCoords(c, axis)
		out[[2]int32{a, b}] = struct{}{}
	}
	return out
}

func intersectFootprint(a, b map[[2]int32]struct{}) map[[2]int32]struct{} {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	out := make(map[[2]int32]struct{})
	for k := range small {
		if _, ok := large[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func aabbOverlapFootprint(aMin, aMax, bMin, bMax cell.Cell, axis cell.Axis) map[[2]int32]struct{} {
	aA0, aA1, aB0, aB1 := otherRanges(aMin, aMax, axis)
	bA0, bA1, bB0, bB1 := otherRanges(bMin, bMax, axis)
	a0, a1 := maxI32(aA0, bA0), minI32(aA1, bA1)
	b0, b1 := maxI32(aB0, bB0), minI32(aB1, bB1)

	out := make(map[[2]int32]struct{})
	if a0 >= a1 || b0 >= b1 {
		return out
	}
	for i := a0; i < a1; i++ {
		for j := b0; j < b1; j++ {
			out[[2]int32{i, j}] = struct{}{}
		}
	}
	return out
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func minI32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// Strut finds the closest pair of 6-exposed surface cells between a and b
// by squared Euclidean distance, rasterizes a 3D Bresenham line between
// them, thickens it by radius under the L-infinity metric, and unions the
// result with both inputs. Returns the union of a and b unchanged if
// either has no surface cells.
func Strut(a, b *kernel.VoxelSolid, radius int32) *kernel.VoxelSolid {
	aSurf := surfaceCells(a)
	bSurf := surfaceCells(b)
	if len(aSurf) == 0 || len(bSurf) == 0 {
		return kernel.Union(a, b)
	}

	var best1, best2 cell.Cell
	bestDist := int64(-1)
	for _, p := range aSurf {
		for _, q := range bSurf {
			d := sqDist(p, q)
			if bestDist < 0 || d < bestDist {
				bestDist = d
				best1, best2 = p, q
			}
		}
	}

	line := kernel.New()
	for _, c := range bresenham3D(best1, best2) {
		line.Add(c)
	}
	thick := kernel.Dilate(line, radius, kernel.MetricLInf)
	return kernel.Union(kernel.Union(a, b), thick)
}

// surfaceCells returns every cell of s with at least one of its 6
// face-neighbors unoccupied.
func surfaceCells(s *kernel.VoxelSolid) []cell.Cell {
	var out []cell.Cell
	for _, c := range s.Cells() {
		if isExposed(s, c) {
			out = append(out, c)
		}
	}
	return out
}

func isExposed(s *kernel.VoxelSolid, c cell.Cell) bool {
	neighbors := [6]cell.Cell{
		{X: c.X - 1, Y: c.Y, Z: c.Z}, {X: c.X + 1, Y: c.Y, Z: c.Z},
		{X: c.X, Y: c.Y - 1, Z: c.Z}, {X: c.X, Y: c.Y + 1, Z: c.Z},
		{X: c.X, Y: c.Y, Z: c.Z - 1}, {X: c.X, Y: c.Y, Z: c.Z + 1},
	}
	for _, n := range neighbors {
		if !s.Contains(n) {
			return true
		}
	}
	return false
}

func sqDist(a, b cell.Cell) int64 {
	dx := int64(a.X - b.X)
	dy := int64(a.Y - b.Y)
	dz := int64(a.Z - b.Z)
	return dx*dx + dy*dy + dz*dz
}

// bresenham3D rasterizes a 3D line from p0 to p1 inclusive using the
// standard driving-axis Bresenham extension.
func bresenham3D(p0, p1 cell.Cell) []cell.Cell {
	dx := abs32(p1.X - p0.X)
	dy := abs32(p1.Y - p0.Y)
	dz := abs32(p1.Z - p0.Z)

	sx, sy, sz := int32(1), int32(1), int32(1)
	if p0.X > p1.X {
		sx = -1
	}
	if p0.Y > p1.Y {
		sy = -1
	}
	if p0.Z > p1.Z {
		sz = -1
	}

	x, y, z := p0.X, p0.Y, p0.Z
	var out []cell.Cell

	switch {
	case dx >= dy && dx >= dz:
		p1d, p2d := 2*dy-dx, 2*dz-dx
		for i := int32(0); i <= dx; i++ {
			out = append(out, cell.Cell{X: x, Y: y, Z: z})
			if p1d >= 0 {
				y += sy
				p1d -= 2 * dx
			}
			if p2d >= 0 {
				z += sz
				p2d -= 2 * dx
			}
			p1d += 2 * dy
			p2d += 2 * dz
			x += sx
		}
	case dy >= dx && dy >= dz:
		p1d, p2d := 2*dx-dy, 2*dz-dy
		for i := int32(0); i <= dy; i++ {
			out = append(out, cell.Cell{X: x, Y: y, Z: z})
			if p1d >= 0 {
				x += sx
				p1d -= 2 * dy
			}
			if p2d >= 0 {
				z += sz
				p2d -= 2 * dy
			}
			p1d += 2 * dx
			p2d += 2 * dz
			y += sy
		}
	default:
		p1d, p2d := 2*dy-dz, 2*dx-dz
		for i := int32(0); i <= dz; i++ {
			out = append(out, cell.Cell{X: x, Y: y, Z: z})
			if p1d >= 0 {
				y += sy
				p1d -= 2 * dz
			}
			if p2d >= 0 {
				x += sx
				p2d -= 2 * dz
			}
			p1d += 2 * dy
			p2d += 2 * dx
			z += sz
		}
	}
	return out
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
