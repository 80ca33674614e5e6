// Package meshd extracts a triangle boundary mesh from a voxel solid's
// boundary face set via per-plane greedy quad merging, and provides the
// short-lived post-processing steps (quantize/weld, outward-normal
// reorientation) a mesh goes through before export.
package meshd

import (
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/vxcsg/pkg/cell"
	"github.com/chazu/vxcsg/pkg/kernel"
)

// Vec3 is a double-precision point or vector.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func cross(a, b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func dot(a, b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func length(v Vec3) float64 { return math.Sqrt(dot(v, v)) }

// MeshD is an ordered list of vertices and index triangles. Its lifecycle
// is short: built from a solid by ToMesh, optionally passed through
// Quantize and EnsureOutwardNormals, then serialized by pkg/stlw.
type MeshD struct {
	Vertices  []Vec3
	Triangles []cell.TriIdx
}

// planeKey groups boundary faces that lie in the same oriented plane:
// same axis, same plane coordinate, same outward-normal sign.
type planeKey struct {
	axis cell.Axis
	k    int32
	sign int8
}

// ToMesh extracts a mesh from s's boundary faces. Faces are grouped by
// oriented plane, planes are processed in deterministic (axis, k, sign)
// order, and each plane is greedily merged into maximal rectangles before
// triangulation; coincident quad corners are then merged into shared
// vertices. Output is a function only of the input cell set, not of map
// iteration or goroutine scheduling order.
func ToMesh(s *kernel.VoxelSolid) *MeshD {
	faces := s.Faces()
	groups := make(map[planeKey][]cell.FaceKey)
	for fk, sign := range faces {
		pk := planeKey{axis: fk.Axis, k: fk.K, sign: sign}
		groups[pk] = append(groups[pk], fk)
	}

	keys := make([]planeKey, 0, len(groups))
	for pk := range groups {
		keys = append(keys, pk)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].axis != keys[j].axis {
			return keys[i].axis < keys[j].axis
		}
		if keys[i].k != keys[j].k {
			return keys[i].k < keys[j].k
		}
		return keys[i].sign < keys[j].sign
	})

	results := make([][]quad, len(keys))
	g := new(errgroup.Group)
	for i, pk := range keys {
		i, pk := i, pk
		g.Go(func() error {
			results[i] = greedyMergePlane(groups[pk])
			return nil
		})
	}
	_ = g.Wait() // greedyMergePlane never errors; Wait only joins goroutines

	m := &MeshD{}
	for i, pk := range keys {
		for _, q := range results[i] {
			emitQuad(m, pk, q)
		}
	}
	// Adjacent quads emit the same lattice corners; welding on the unit
	// grid makes triangles that meet along an edge share its vertices.
	return Quantize(m, 1, 1)
}

// quad is a maximal axis-aligned rectangle of coplanar faces, in the
// plane's local (a, b) coordinates, a1/b1 exclusive.
type quad struct {
	a0, a1, b0, b1 int32
}

// greedyMergePlane scans a single oriented plane's faces into maximal
// rectangles: from each unvisited filled cell, extend width along a,
// then extend height along b as long as every cell of the same width is
// filled and unvisited, per spec.md §4.4 stage 2.
func greedyMergePlane(faces []cell.FaceKey) []quad {
	if len(faces) == 0 {
		return nil
	}
	aMin, aMax := faces[0].A, faces[0].A
	bMin, bMax := faces[0].B, faces[0].B
	for _, f := range faces[1:] {
		if f.A < aMin {
			aMin = f.A
		}
		if f.A > aMax {
			aMax = f.A
		}
		if f.B < bMin {
			bMin = f.B
		}
		if f.B > bMax {
			bMax = f.B
		}
	}
	wA := int(aMax-aMin) + 1
	wB := int(bMax-bMin) + 1

	filled := make([][]bool, wA)
	visited := make([][]bool, wA)
	for i := range filled {
		filled[i] = make([]bool, wB)
		visited[i] = make([]bool, wB)
	}
	for _, f := range faces {
		filled[f.A-aMin][f.B-bMin] = true
	}

	var quads []quad
	for ai := 0; ai < wA; ai++ {
		for bi := 0; bi < wB; bi++ {
			if !filled[ai][bi] || visited[ai][bi] {
				continue
			}
			width := 1
			for ai+width < wA && filled[ai+width][bi] && !visited[ai+width][bi] {
				width++
			}
			height := 1
		heightLoop:
			for bi+height < wB {
				for da := 0; da < width; da++ {
					if !filled[ai+da][bi+height] || visited[ai+da][bi+height] {
						break heightLoop
					}
				}
				height++
			}
			for da := 0; da < width; da++ {
				for db := 0; db < height; db++ {
					visited[ai+da][bi+db] = true
				}
			}
			quads = append(quads, quad{
				a0: aMin + int32(ai),
				a1: aMin + int32(ai+width),
				b0: bMin + int32(bi),
				b1: bMin + int32(bi+height),
			})
		}
	}
	return quads
}

// emitQuad appends the two triangles for one merged rectangle, using the
// per-axis corner order from spec.md §4.4 and winding chosen by sign.
func emitQuad(m *MeshD, pk planeKey, q quad) {
	k := float64(pk.k)
	a0, a1, b0, b1 := float64(q.a0), float64(q.a1), float64(q.b0), float64(q.b1)

	var p0, p1, p2, p3 Vec3
	switch pk.axis {
	case cell.AxisX:
		p0 = Vec3{X: k, Y: a0, Z: b0}
		p1 = Vec3{X: k, Y: a0, Z: b1}
		p2 = Vec3{X: k, Y: a1, Z: b1}
		p3 = Vec3{X: k, Y: a1, Z: b0}
	case cell.AxisY:
		p0 = Vec3{X: a0, Y: k, Z: b0}
		p1 = Vec3{X: a1, Y: k, Z: b0}
		p2 = Vec3{X: a1, Y: k, Z: b1}
		p3 = Vec3{X: a0, Y: k, Z: b1}
	default:
		p0 = Vec3{X: a0, Y: b0, Z: k}
		p1 = Vec3{X: a1, Y: b0, Z: k}
		p2 = Vec3{X: a1, Y: b1, Z: k}
		p3 = Vec3{X: a0, Y: b1, Z: k}
	}

	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, p0, p1, p2, p3)

	// With these corner orders (p0, p1, p2) turns counter-clockwise about +Z
	// but about -X and -Y, so the winding is flipped on X and Y planes to
	// keep every triangle facing along its plane's outward-normal sign.
	outward := pk.sign > 0
	if pk.axis != cell.AxisZ {
		outward = !outward
	}
	if outward {
		m.Triangles = append(m.Triangles,
			cell.TriIdx{A: base, B: base + 1, C: base + 2},
			cell.TriIdx{A: base, B: base + 2, C: base + 3},
		)
	} else {
		m.Triangles = append(m.Triangles,
			cell.TriIdx{A: base, B: base + 2, C: base + 1},
			cell.TriIdx{A: base, B: base + 3, C: base + 2},
		)
	}
}

// SignedVolume computes (1/6) * sum(dot(cross(v0,v1),v2)) over every
// triangle's vertices taken as vectors from the origin (the standard
// divergence-theorem volume of a closed mesh).
func SignedVolume(m *MeshD) float64 {
	var sum float64
	for _, t := range m.Triangles {
		a, b, c := m.Vertices[t.A], m.Vertices[t.B], m.Vertices[t.C]
		sum += dot(cross(a, b), c)
	}
	return sum / 6
}

// EnsureOutwardNormals swaps the second and third index of every triangle
// if the mesh's signed volume is negative, so the winding consistently
// points outward afterward.
func EnsureOutwardNormals(m *MeshD) {
	if SignedVolume(m) < 0 {
		for i := range m.Triangles {
			m.Triangles[i].B, m.Triangles[i].C = m.Triangles[i].C, m.Triangles[i].B
		}
	}
}

// Quantize snaps every vertex to a grid of spacing stepUnits*voxelsPerUnit
// and merges collocated vertices, dropping degenerate triangles (any two
// indices equal) and duplicate triangles (same unordered index triple).
// stepUnits <= 0 disables quantization; Quantize then returns an
// independent copy of m with no welding applied.
func Quantize(m *MeshD, stepUnits float64, voxelsPerUnit int) *MeshD {
	step := stepUnits * float64(voxelsPerUnit)
	if step <= 0 {
		return &MeshD{
			Vertices:  append([]Vec3(nil), m.Vertices...),
			Triangles: append([]cell.TriIdx(nil), m.Triangles...),
		}
	}

	type gridKey struct{ x, y, z int64 }
	snap := func(v Vec3) gridKey {
		return gridKey{
			x: int64(math.Round(v.X / step)),
			y: int64(math.Round(v.Y / step)),
			z: int64(math.Round(v.Z / step)),
		}
	}

	indexOf := make(map[gridKey]uint32)
	var newVerts []Vec3
	remap := make([]uint32, len(m.Vertices))
	for i, v := range m.Vertices {
		k := snap(v)
		idx, ok := indexOf[k]
		if !ok {
			idx = uint32(len(newVerts))
			newVerts = append(newVerts, Vec3{X: float64(k.x) * step, Y: float64(k.y) * step, Z: float64(k.z) * step})
			indexOf[k] = idx
		}
		remap[i] = idx
	}

	seen := make(map[cell.TriIdx]bool)
	var newTris []cell.TriIdx
	for _, t := range m.Triangles {
		a, b, c := remap[t.A], remap[t.B], remap[t.C]
		if a == b || b == c || a == c {
			continue
		}
		canon := canonicalTri(a, b, c)
		if seen[canon] {
			continue
		}
		seen[canon] = true
		newTris = append(newTris, cell.TriIdx{A: a, B: b, C: c})
	}

	return &MeshD{Vertices: newVerts, Triangles: newTris}
}

// canonicalTri returns a winding-independent, sorted-index key for t, used
// to detect duplicate triangles produced by welding.
func canonicalTri(a, b, c uint32) cell.TriIdx {
	idx := [3]uint32{a, b, c}
	sort.Slice(idx[:], func(i, j int) bool { return idx[i] < idx[j] })
	return cell.TriIdx{A: idx[0], B: idx[1], C: idx[2]}
}

// IsClosedManifold reports whether every undirected edge of m's triangles
// is shared by exactly two triangles. Degenerate triangles should already
// be dropped (Quantize does so at weld time); a mesh that still carries
// one has a zero-area triangle and registers as non-manifold here.
func IsClosedManifold(m *MeshD) bool {
	if len(m.Triangles) == 0 {
		return true
	}
	type edge struct{ a, b uint32 }
	counts := make(map[edge]int)
	bump := func(a, b uint32) {
		if a > b {
			a, b = b, a
		}
		counts[edge{a: a, b: b}]++
	}
	for _, t := range m.Triangles {
		bump(t.A, t.B)
		bump(t.B, t.C)
		bump(t.C, t.A)
	}
	for _, n := range counts {
		if n != 2 {
			return false
		}
	}
	return true
}
