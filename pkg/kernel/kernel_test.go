package kernel

import (
	"testing"

	"github.com/chazu/vxcsg/pkg/cell"
)

// checkInvariant verifies every boundary face has exactly one adjacent
// filled cell whose side matches the stored sign, and that every face
// adjacent to an occupied cell across an unoccupied neighbor is present.
func checkInvariant(t *testing.T, s *VoxelSolid) {
	t.Helper()
	for fk, sign := range s.b {
		var lowCell, highCell cell.Cell
		switch fk.Axis {
		case cell.AxisX:
			lowCell = cell.Cell{X: fk.K - 1, Y: fk.A, Z: fk.B}
			highCell = cell.Cell{X: fk.K, Y: fk.A, Z: fk.B}
		case cell.AxisY:
			lowCell = cell.Cell{X: fk.A, Y: fk.K - 1, Z: fk.B}
			highCell = cell.Cell{X: fk.A, Y: fk.K, Z: fk.B}
		default:
			lowCell = cell.Cell{X: fk.A, Y: fk.B, Z: fk.K - 1}
			highCell = cell.Cell{X: fk.A, Y: fk.B, Z: fk.K}
		}
		_, lowFilled := s.v[lowCell]
		_, highFilled := s.v[highCell]
		if lowFilled == highFilled {
			t.Fatalf("face %+v has inconsistent occupancy: low=%v high=%v", fk, lowFilled, highFilled)
		}
		wantSign := int8(-1)
		if lowFilled {
			wantSign = +1
		}
		if sign != wantSign {
			t.Errorf("face %+v sign = %d, want %d", fk, sign, wantSign)
		}
	}
	for c := range s.v {
		for _, axis := range axes {
			for _, dir := range [2]int32{-1, 1} {
				if _, in := s.v[neighbor(c, axis, dir)]; in {
					continue
				}
				if _, ok := s.b[cell.NewFaceKey(axis, c, dir == -1)]; !ok {
					t.Errorf("cell %+v is missing its boundary face along %v dir %d", c, axis, dir)
				}
			}
		}
	}
}

func TestAddRemoveInvariant(t *testing.T) {
	s := New()
	cells := []cell.Cell{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 0, 1}}
	for _, c := range cells {
		s.Add(c)
		checkInvariant(t, s)
	}
	if s.Volume() != len(cells) {
		t.Errorf("Volume = %d, want %d", s.Volume(), len(cells))
	}
	for _, c := range cells {
		s.Remove(c)
		checkInvariant(t, s)
	}
	if s.Volume() != 0 || s.SurfaceArea() != 0 {
		t.Errorf("after removing all: volume=%d surface=%d, want 0,0", s.Volume(), s.SurfaceArea())
	}
}

func TestAddIsNoOpWhenPresent(t *testing.T) {
	s := New()
	s.Add(cell.Cell{0, 0, 0})
	before := s.SurfaceArea()
	s.Add(cell.Cell{0, 0, 0})
	if s.SurfaceArea() != before || s.Volume() != 1 {
		t.Errorf("duplicate Add changed state: surface=%d volume=%d", s.SurfaceArea(), s.Volume())
	}
}

func TestBoxWatertight(t *testing.T) {
	b := Box(cell.Cell{0, 0, 0}, cell.Cell{2, 2, 1})
	if b.Volume() != 4 {
		t.Errorf("Volume = %d, want 4", b.Volume())
	}
	if b.SurfaceArea() != 16 {
		t.Errorf("SurfaceArea = %d, want 16", b.SurfaceArea())
	}
	checkInvariant(t, b)
	if !b.IsWatertight() {
		t.Error("box should be watertight")
	}
	if !b.Is6Connected() {
		t.Error("box should be 6-connected")
	}
}

func TestEmptySolidWatertightAndConnected(t *testing.T) {
	s := New()
	if !s.IsWatertight() {
		t.Error("empty solid should be watertight")
	}
	if !s.Is6Connected() {
		t.Error("empty solid should be connected")
	}
}

func TestDisconnectedSolidIsNotConnected(t *testing.T) {
	s := New()
	s.Add(cell.Cell{0, 0, 0})
	s.Add(cell.Cell{10, 10, 10})
	if s.Is6Connected() {
		t.Error("two isolated cells should not be 6-connected")
	}
}

func TestBoundsEmpty(t *testing.T) {
	s := New()
	min, maxExcl := s.Bounds()
	if min != (cell.Cell{}) || maxExcl != (cell.Cell{}) {
		t.Errorf("empty bounds = (%v,%v), want zero", min, maxExcl)
	}
}

func TestBoundsNonEmpty(t *testing.T) {
	b := Box(cell.Cell{-1, 2, 0}, cell.Cell{3, 5, 1})
	min, maxExcl := b.Bounds()
	if min != (cell.Cell{-1, 2, 0}) {
		t.Errorf("min = %v, want (-1,2,0)", min)
	}
	if maxExcl != (cell.Cell{3, 5, 1}) {
		t.Errorf("maxExcl = %v, want (3,5,1)", maxExcl)
	}
}

func TestUnionSubtractIntersect(t *testing.T) {
	a := Box(cell.Cell{0, 0, 0}, cell.Cell{2, 1, 1})
	b := Box(cell.Cell{1, 0, 0}, cell.Cell{3, 1, 1})

	u := Union(a, b)
	checkInvariant(t, u)
	if u.Volume() != 3 {
		t.Errorf("Union volume = %d, want 3", u.Volume())
	}

	i := Intersect(a, b)
	checkInvariant(t, i)
	if i.Volume() != 1 || !i.Contains(cell.Cell{1, 0, 0}) {
		t.Errorf("Intersect volume = %d, want 1 at (1,0,0)", i.Volume())
	}

	d := Subtract(a, b)
	checkInvariant(t, d)
	if d.Volume() != 1 || !d.Contains(cell.Cell{0, 0, 0}) {
		t.Errorf("Subtract volume = %d, want 1 at (0,0,0)", d.Volume())
	}
}

func TestTranslate(t *testing.T) {
	b := Box(cell.Cell{0, 0, 0}, cell.Cell{2, 2, 2})
	moved := Translate(b, cell.Cell{5, -3, 1})
	checkInvariant(t, moved)
	if moved.Volume() != b.Volume() {
		t.Errorf("volume changed under translate")
	}
	if !moved.Contains(cell.Cell{5, -3, 1}) {
		t.Error("translated box missing expected cell")
	}
}

func TestRotate90Canonical(t *testing.T) {
	s := New()
	s.Add(cell.Cell{1, 2, 3})

	got := Rotate90(s, cell.AxisX, 1)
	if !got.Contains(cell.Cell{1, -3, 2}) {
		t.Errorf("Rx rotation incorrect: %v", got.Cells())
	}

	got = Rotate90(s, cell.AxisY, 1)
	if !got.Contains(cell.Cell{3, 2, -1}) {
		t.Errorf("Ry rotation incorrect: %v", got.Cells())
	}

	got = Rotate90(s, cell.AxisZ, 1)
	if !got.Contains(cell.Cell{-2, 1, 3}) {
		t.Errorf("Rz rotation incorrect: %v", got.Cells())
	}
}

func TestRotate90FourTimesIsIdentity(t *testing.T) {
	b := Box(cell.Cell{0, 0, 0}, cell.Cell{2, 3, 4})
	r := Rotate90(b, cell.AxisZ, 4)
	for _, c := range b.Cells() {
		if !r.Contains(c) {
			t.Fatalf("4x rotation missing original cell %v", c)
		}
	}
	if r.Volume() != b.Volume() {
		t.Errorf("volume changed after 4x90 rotation")
	}
}

func TestRotate90NegativeK(t *testing.T) {
	s := New()
	s.Add(cell.Cell{1, 0, 0})
	// Rotating by -1 about Z should equal rotating by 3.
	a := Rotate90(s, cell.AxisZ, -1)
	b := Rotate90(s, cell.AxisZ, 3)
	if a.Volume() != 1 || !a.Contains(b.Cells()[0]) {
		t.Errorf("Rotate90 k=-1 should match k=3")
	}
}

func TestMirror(t *testing.T) {
	s := New()
	s.Add(cell.Cell{0, 0, 0})
	s.Add(cell.Cell{2, 0, 0})
	m := Mirror(s, cell.AxisX)
	if !m.Contains(cell.Cell{-1, 0, 0}) || !m.Contains(cell.Cell{-3, 0, 0}) {
		t.Errorf("mirror incorrect: %v", m.Cells())
	}
}

func TestMorphologyIdentityAtNonPositiveRadius(t *testing.T) {
	b := Box(cell.Cell{0, 0, 0}, cell.Cell{2, 2, 2})
	for _, r := range []int32{0, -1, -5} {
		if Dilate(b, r, MetricLInf).Volume() != b.Volume() {
			t.Errorf("Dilate r=%d should be identity", r)
		}
		if Erode(b, r, MetricLInf).Volume() != b.Volume() {
			t.Errorf("Erode r=%d should be identity", r)
		}
	}
}

func TestDilateErodeRoundTrip(t *testing.T) {
	s := New()
	s.Add(cell.Cell{0, 0, 0})
	dilated := Dilate(s, 1, MetricLInf)
	// A 1-voxel seed dilated by LInf radius 1 is a 3x3x3 cube: 27 cells.
	if dilated.Volume() != 27 {
		t.Errorf("Dilate volume = %d, want 27", dilated.Volume())
	}
	eroded := Erode(dilated, 1, MetricLInf)
	if eroded.Volume() != 1 || !eroded.Contains(cell.Cell{0, 0, 0}) {
		t.Errorf("Erode(Dilate) should recover the seed, got volume %d", eroded.Volume())
	}
}

func TestOpenRemovesThinProtrusion(t *testing.T) {
	s := Box(cell.Cell{0, 0, 0}, cell.Cell{5, 5, 3})
	s.Add(cell.Cell{2, 5, 1}) // thin single-cell spike
	opened := Open(s, 1, MetricLInf)
	if opened.Contains(cell.Cell{2, 5, 1}) {
		t.Error("open should remove a thin protrusion")
	}
	if !opened.Contains(cell.Cell{2, 2, 1}) {
		t.Error("open should preserve the solid core")
	}
}

func TestCloseFillsThinGap(t *testing.T) {
	a := Box(cell.Cell{0, 0, 0}, cell.Cell{2, 5, 1})
	b := Box(cell.Cell{3, 0, 0}, cell.Cell{5, 5, 1})
	s := Union(a, b) // one-cell gap at x=2
	closed := Close(s, 1, MetricLInf)
	if !closed.Contains(cell.Cell{2, 2, 0}) {
		t.Error("close should fill a one-cell gap")
	}
}

func TestCloneIndependence(t *testing.T) {
	s := New()
	s.Add(cell.Cell{0, 0, 0})
	c := s.Clone()
	s.Add(cell.Cell{1, 0, 0})
	if c.Volume() != 1 {
		t.Errorf("clone should not see mutations to original, volume=%d", c.Volume())
	}
}

func TestFromCells(t *testing.T) {
	cells := []cell.Cell{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	s := FromCells(cells)
	checkInvariant(t, s)
	if s.Volume() != len(cells) {
		t.Errorf("Volume = %d, want %d", s.Volume(), len(cells))
	}
}
