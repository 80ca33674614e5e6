// Package revoxel resamples a voxel solid through an arbitrary rotation,
// producing a new solid on the integer lattice via either a conservative
// oriented-bounding-box test or deterministic supersampling.
package revoxel

import (
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/vxcsg/pkg/cell"
	"github.com/chazu/vxcsg/pkg/kernel"
)

// Options configures a Revoxelize call.
type Options struct {
	Axis            cell.Axis
	Degrees         float64
	Pivot           [3]float64
	ConservativeObb bool
	SamplesPerAxis  int
	Epsilon         float64
}

// DefaultOptions returns the documented default sampling parameters with
// the given axis/degrees/pivot.
func DefaultOptions(axis cell.Axis, degrees float64, pivot [3]float64) Options {
	return Options{
		Axis:            axis,
		Degrees:         degrees,
		Pivot:           pivot,
		ConservativeObb: false,
		SamplesPerAxis:  3,
		Epsilon:         1e-9,
	}
}

// mat3 is a row-major 3x3 matrix.
type mat3 [3][3]float64

func (m mat3) mulVec(v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

func (m mat3) transpose() mat3 {
	var t mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] = m[j][i]
		}
	}
	return t
}

// rotationMatrix builds the double-precision rotation matrix around axis
// by degrees.
func rotationMatrix(axis cell.Axis, degrees float64) (mat3, error) {
	rad := degrees * math.Pi / 180.0
	c, s := math.Cos(rad), math.Sin(rad)
	switch axis {
	case cell.AxisX:
		return mat3{{1, 0, 0}, {0, c, -s}, {0, s, c}}, nil
	case cell.AxisY:
		return mat3{{c, 0, s}, {0, 1, 0}, {-s, 0, c}}, nil
	case cell.AxisZ:
		return mat3{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}, nil
	default:
		return mat3{}, cell.Newf(cell.InvalidArgument, "revoxel.rotationMatrix", "unknown axis %v", axis)
	}
}

func toSource(pInv mat3, pivot [3]float64, p [3]float64) [3]float64 {
	d := [3]float64{p[0] - pivot[0], p[1] - pivot[1], p[2] - pivot[2]}
	r := pInv.mulVec(d)
	return [3]float64{r[0] + pivot[0], r[1] + pivot[1], r[2] + pivot[2]}
}

// Revoxelize resamples s through the rotation described by opts, returning
// a new solid on the integer lattice.
func Revoxelize(s *kernel.VoxelSolid, opts Options) (*kernel.VoxelSolid, error) {
	if opts.SamplesPerAxis <= 0 {
		return nil, cell.Newf(cell.InvalidArgument, "revoxel.Revoxelize", "samplesPerAxis must be > 0, got %d", opts.SamplesPerAxis)
	}
	if opts.Epsilon <= 0 {
		return nil, cell.Newf(cell.InvalidArgument, "revoxel.Revoxelize", "epsilon must be > 0, got %g", opts.Epsilon)
	}
	r, err := rotationMatrix(opts.Axis, opts.Degrees)
	if err != nil {
		return nil, err
	}
	rInv := r.transpose()

	out := kernel.New()
	if s.Volume() == 0 {
		return out, nil
	}

	min, maxExcl := s.Bounds()
	tmin, tmaxExcl := targetBounds(min, maxExcl, r, opts.Pivot, opts.Epsilon)

	type hit struct {
		cells []cell.Cell
	}
	nz := int(tmaxExcl.Z - tmin.Z)
	if nz <= 0 {
		return out, nil
	}
	hits := make([]hit, nz)

	g := new(errgroup.Group)
	for zi := 0; zi < nz; zi++ {
		zi := zi
		z := tmin.Z + int32(zi)
		g.Go(func() error {
			var local []cell.Cell
			for x := tmin.X; x < tmaxExcl.X; x++ {
				for y := tmin.Y; y < tmaxExcl.Y; y++ {
					t := cell.Cell{X: x, Y: y, Z: z}
					var filled bool
					if opts.ConservativeObb {
						filled = testObb(s, t, rInv, opts.Pivot, opts.Epsilon)
					} else {
						filled = testSupersample(s, t, rInv, opts.Pivot, opts.SamplesPerAxis, opts.Epsilon)
					}
					if filled {
						local = append(local, t)
					}
				}
			}
			hits[zi] = hit{cells: local}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, h := range hits {
		for _, c := range h.cells {
			out.Add(c)
		}
	}
	return out, nil
}

// targetBounds computes the floor/ceil envelope of the rotated, epsilon
// and padded source AABB.
func targetBounds(min, maxExcl cell.Cell, r mat3, pivot [3]float64, eps float64) (cell.Cell, cell.Cell) {
	lo := [3]float64{float64(min.X) - 1, float64(min.Y) - 1, float64(min.Z) - 1}
	hi := [3]float64{float64(maxExcl.X) + 1, float64(maxExcl.Y) + 1, float64(maxExcl.Z) + 1}

	var minF, maxF [3]float64
	first := true
	for _, x := range []float64{lo[0], hi[0]} {
		for _, y := range []float64{lo[1], hi[1]} {
			for _, z := range []float64{lo[2], hi[2]} {
				p := [3]float64{x, y, z}
				d := [3]float64{p[0] - pivot[0], p[1] - pivot[1], p[2] - pivot[2]}
				w := r.mulVec(d)
				w = [3]float64{w[0] + pivot[0], w[1] + pivot[1], w[2] + pivot[2]}
				if first {
					minF, maxF = w, w
					first = false
					continue
				}
				for i := 0; i < 3; i++ {
					if w[i] < minF[i] {
						minF[i] = w[i]
					}
					if w[i] > maxF[i] {
						maxF[i] = w[i]
					}
				}
			}
		}
	}
	tmin := cell.Cell{
		X: int32(math.Floor(minF[0] - eps)),
		Y: int32(math.Floor(minF[1] - eps)),
		Z: int32(math.Floor(minF[2] - eps)),
	}
	tmaxExcl := cell.Cell{
		X: int32(math.Ceil(maxF[0] + eps)),
		Y: int32(math.Ceil(maxF[1] + eps)),
		Z: int32(math.Ceil(maxF[2] + eps)),
	}
	return tmin, tmaxExcl
}

// testSupersample implements the supersampling fill test for target cell t.
func testSupersample(s *kernel.VoxelSolid, t cell.Cell, rInv mat3, pivot [3]float64, n int, eps float64) bool {
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				p := [3]float64{
					float64(t.X) + (float64(i)+0.5)/float64(n),
					float64(t.Y) + (float64(j)+0.5)/float64(n),
					float64(t.Z) + (float64(k)+0.5)/float64(n),
				}
				pp := toSource(rInv, pivot, p)
				src := cell.Cell{
					X: int32(math.Floor(pp[0] + eps)),
					Y: int32(math.Floor(pp[1] + eps)),
					Z: int32(math.Floor(pp[2] + eps)),
				}
				if !s.Contains(src) {
					continue
				}
				if pp[0] >= float64(src.X)-eps && pp[0] <= float64(src.X)+1+eps &&
					pp[1] >= float64(src.Y)-eps && pp[1] <= float64(src.Y)+1+eps &&
					pp[2] >= float64(src.Z)-eps && pp[2] <= float64(src.Z)+1+eps {
					return true
				}
			}
		}
	}
	return false
}

// testObb implements the conservative OBB/SAT fill test for target cell t.
func testObb(s *kernel.VoxelSolid, t cell.Cell, rInv mat3, pivot [3]float64, eps float64) bool {
	center := [3]float64{float64(t.X) + 0.5, float64(t.Y) + 0.5, float64(t.Z) + 0.5}
	srcCenter := toSource(rInv, pivot, center)

	axesR := [3][3]float64{
		{rInv[0][0], rInv[1][0], rInv[2][0]},
		{rInv[0][1], rInv[1][1], rInv[2][1]},
		{rInv[0][2], rInv[1][2], rInv[2][2]},
	}

	var extent [3]float64
	for i := 0; i < 3; i++ {
		extent[i] = 0.5 * (math.Abs(axesR[0][i]) + math.Abs(axesR[1][i]) + math.Abs(axesR[2][i]))
	}

	lo := [3]int32{
		int32(math.Floor(srcCenter[0] - extent[0])),
		int32(math.Floor(srcCenter[1] - extent[1])),
		int32(math.Floor(srcCenter[2] - extent[2])),
	}
	hi := [3]int32{
		int32(math.Ceil(srcCenter[0] + extent[0])),
		int32(math.Ceil(srcCenter[1] + extent[1])),
		int32(math.Ceil(srcCenter[2] + extent[2])),
	}

	for x := lo[0]; x < hi[0]; x++ {
		for y := lo[1]; y < hi[1]; y++ {
			for z := lo[2]; z < hi[2]; z++ {
				c := cell.Cell{X: x, Y: y, Z: z}
				if !s.Contains(c) {
					continue
				}
				voxelCenter := [3]float64{float64(x) + 0.5, float64(y) + 0.5, float64(z) + 0.5}
				if obbAabbIntersect(srcCenter, axesR, [3]float64{0.5, 0.5, 0.5}, voxelCenter, [3]float64{0.5, 0.5, 0.5}, eps) {
					return true
				}
			}
		}
	}
	return false
}

// obbAabbIntersect runs the 15-axis SAT between an OBB (center, local
// axes, half-extents) and an AABB (center, half-extents).
func obbAabbIntersect(obbCenter [3]float64, obbAxes [3][3]float64, obbHalf [3]float64, aabbCenter [3]float64, aabbHalf [3]float64, eps float64) bool {
	d := [3]float64{obbCenter[0] - aabbCenter[0], obbCenter[1] - aabbCenter[1], obbCenter[2] - aabbCenter[2]}

	// Rotation matrix expressing obbAxes in the AABB's (world) frame, plus
	// its absolute value with epsilon padding for near-parallel axes.
	var rot, absRot [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rot[i][j] = obbAxes[i][j]
			absRot[i][j] = math.Abs(rot[i][j]) + eps
		}
	}

	// World axes (AABB axes).
	for i := 0; i < 3; i++ {
		ra := aabbHalf[i]
		rb := obbHalf[0]*absRot[0][i] + obbHalf[1]*absRot[1][i] + obbHalf[2]*absRot[2][i]
		if math.Abs(d[i]) > ra+rb {
			return false
		}
	}

	// OBB axes.
	for i := 0; i < 3; i++ {
		ra := aabbHalf[0]*absRot[i][0] + aabbHalf[1]*absRot[i][1] + aabbHalf[2]*absRot[i][2]
		rb := obbHalf[i]
		proj := d[0]*rot[i][0] + d[1]*rot[i][1] + d[2]*rot[i][2]
		if math.Abs(proj) > ra+rb {
			return false
		}
	}

	// 9 cross-product axes: world axis ei x obb axis rot[j].
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var axis [3]float64
			switch i {
			case 0:
				axis = [3]float64{0, -rot[j][2], rot[j][1]}
			case 1:
				axis = [3]float64{rot[j][2], 0, -rot[j][0]}
			default:
				axis = [3]float64{-rot[j][1], rot[j][0], 0}
			}
			proj := d[0]*axis[0] + d[1]*axis[1] + d[2]*axis[2]

			ra := aabbHalf[0]*math.Abs(axis[0]) + aabbHalf[1]*math.Abs(axis[1]) + aabbHalf[2]*math.Abs(axis[2])
			rb := 0.0
			for k := 0; k < 3; k++ {
				rowDot := axis[0]*rot[k][0] + axis[1]*rot[k][1] + axis[2]*rot[k][2]
				rb += obbHalf[k] * math.Abs(rowDot)
			}
			if math.Abs(proj) > ra+rb+eps {
				return false
			}
		}
	}
	return true
}
