package meshd

import (
	"math"
	"testing"

	"github.com/chazu/vxcsg/pkg/cell"
	"github.com/chazu/vxcsg/pkg/kernel"
)

func TestToMeshBoxTriangleCount(t *testing.T) {
	b := kernel.Box(cell.Cell{0, 0, 0}, cell.Cell{2, 2, 1})
	m := ToMesh(b)
	if len(m.Triangles) > b.SurfaceArea() {
		t.Errorf("triangles = %d, want <= surface area %d", len(m.Triangles), b.SurfaceArea())
	}
	// A single 2x2x1 box has 6 faces, one per axis-aligned side; greedy
	// merge should collapse each side to one quad, so 12 triangles.
	if len(m.Triangles) != 12 {
		t.Errorf("triangles = %d, want 12", len(m.Triangles))
	}
}

func TestToMeshSlabGreedyMergeReduction(t *testing.T) {
	b := kernel.Box(cell.Cell{0, 0, 0}, cell.Cell{30, 300, 4})
	m := ToMesh(b)
	naive := 2 * b.SurfaceArea()
	if len(m.Triangles) > b.SurfaceArea() {
		t.Errorf("triangles = %d, want <= surface area %d", len(m.Triangles), b.SurfaceArea())
	}
	if len(m.Triangles)*2 > naive {
		t.Errorf("triangles = %d, want at least 2x reduction vs naive %d", len(m.Triangles), naive)
	}
}

func TestSignedVolumePositiveForBox(t *testing.T) {
	b := kernel.Box(cell.Cell{0, 0, 0}, cell.Cell{2, 3, 4})
	m := ToMesh(b)
	vol := SignedVolume(m)
	if vol <= 0 {
		t.Fatalf("SignedVolume = %v, want > 0", vol)
	}
	if math.Abs(vol-24) > 1e-9 {
		t.Errorf("SignedVolume = %v, want 24", vol)
	}
}

func TestEnsureOutwardNormalsFixesInvertedMesh(t *testing.T) {
	b := kernel.Box(cell.Cell{0, 0, 0}, cell.Cell{2, 2, 2})
	m := ToMesh(b)
	for i := range m.Triangles {
		m.Triangles[i].B, m.Triangles[i].C = m.Triangles[i].C, m.Triangles[i].B
	}
	if SignedVolume(m) >= 0 {
		t.Fatal("test setup: expected inverted mesh to have negative signed volume")
	}
	EnsureOutwardNormals(m)
	if SignedVolume(m) <= 0 {
		t.Error("after EnsureOutwardNormals, signed volume should be positive")
	}
	if !IsClosedManifold(m) {
		t.Error("reorienting normals should not break manifoldness")
	}
}

func TestToMeshIsClosedManifold(t *testing.T) {
	b := kernel.Box(cell.Cell{0, 0, 0}, cell.Cell{3, 3, 3})
	hole := kernel.Box(cell.Cell{1, 1, 1}, cell.Cell{2, 2, 2})
	s := kernel.Subtract(b, hole)
	m := ToMesh(s)
	if !IsClosedManifold(m) {
		t.Error("hollowed box boundary should be a closed manifold")
	}
}

func TestQuantizeDropsDegenerateAndDuplicateTriangles(t *testing.T) {
	m := &MeshD{
		Vertices: []Vec3{
			{0, 0, 0}, {0, 0, 0.0001}, {1, 0, 0}, {0, 1, 0},
		},
		Triangles: []cell.TriIdx{
			{A: 0, B: 1, C: 2}, // collapses to degenerate (0,0 after snap equal 0,1)
			{A: 0, B: 2, C: 3},
			{A: 0, B: 2, C: 3}, // exact duplicate
		},
	}
	q := Quantize(m, 1.0, 1)
	if len(q.Triangles) != 1 {
		t.Fatalf("Quantize triangles = %d, want 1 (degenerate + duplicate dropped)", len(q.Triangles))
	}
}

func TestQuantizeZeroStepDisablesWelding(t *testing.T) {
	b := kernel.Box(cell.Cell{0, 0, 0}, cell.Cell{2, 2, 2})
	m := ToMesh(b)
	q := Quantize(m, 0, 1)
	if len(q.Vertices) != len(m.Vertices) || len(q.Triangles) != len(m.Triangles) {
		t.Error("step<=0 should leave the mesh unchanged")
	}
}

func TestEmptySolidProducesEmptyMesh(t *testing.T) {
	s := kernel.New()
	m := ToMesh(s)
	if len(m.Vertices) != 0 || len(m.Triangles) != 0 {
		t.Error("empty solid should produce an empty mesh")
	}
	if !IsClosedManifold(m) {
		t.Error("empty mesh is vacuously closed")
	}
}
