package scene

import (
	"testing"

	"github.com/chazu/vxcsg/pkg/cell"
	"github.com/chazu/vxcsg/pkg/kernel"
)

func TestBakeUnionRoleComposesInOrder(t *testing.T) {
	s := New(Settings{VoxelsPerUnit: 1})
	base := s.AddPart("base", kernel.Box(cell.Cell{0, 0, 0}, cell.Cell{4, 4, 4}), RoleSolid)
	hole := s.AddPart("hole", kernel.Box(cell.Cell{0, 0, 0}, cell.Cell{2, 2, 2}), RoleHole)

	s.AddInstance(&Instance{Part: base, Frame: Identity(), Role: RoleSolid})
	s.AddInstance(&Instance{Part: hole, Frame: Identity(), Role: RoleHole})

	result, err := s.Bake(nil)
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if want := 64 - 8; result.Volume() != want {
		t.Errorf("volume = %d, want %d", result.Volume(), want)
	}
}

func TestBakeEmptySceneProducesEmptySolid(t *testing.T) {
	s := New(Settings{VoxelsPerUnit: 1})
	result, err := s.Bake(nil)
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if result.Volume() != 0 {
		t.Errorf("volume = %d, want 0", result.Volume())
	}
}

func TestBakeAppliesFrameTranslation(t *testing.T) {
	s := New(Settings{VoxelsPerUnit: 1})
	p := s.AddPart("unit", kernel.Box(cell.Cell{0, 0, 0}, cell.Cell{1, 1, 1}), RoleSolid)
	s.AddInstance(&Instance{
		Part:  p,
		Frame: Frame{Matrix: Identity().Matrix, Translation: cell.Cell{X: 10, Y: 0, Z: 0}},
		Role:  RoleSolid,
	})

	result, err := s.Bake(nil)
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if !result.Contains(cell.Cell{X: 10}) {
		t.Error("expected translated cell to be present")
	}
	if result.Volume() != 1 {
		t.Errorf("volume = %d, want 1", result.Volume())
	}
}

func TestBakeOverrideReplicatesVoxelsPerUnit(t *testing.T) {
	s := New(Settings{VoxelsPerUnit: 1})
	p := s.AddPart("unit", kernel.Box(cell.Cell{0, 0, 0}, cell.Cell{1, 1, 1}), RoleSolid)
	s.AddInstance(&Instance{Part: p, Frame: Identity(), Role: RoleSolid})

	result, err := s.Bake(&BakeOverrides{VoxelsPerUnit: 2})
	if err != nil {
		t.Fatalf("Bake: %v", err)
	}
	if result.Volume() != 8 {
		t.Errorf("volume = %d, want 8", result.Volume())
	}
}

func TestBakeOverrideRejectsNonMultiple(t *testing.T) {
	s := New(Settings{VoxelsPerUnit: 2})
	p := s.AddPart("unit", kernel.Box(cell.Cell{0, 0, 0}, cell.Cell{1, 1, 1}), RoleSolid)
	s.AddInstance(&Instance{Part: p, Frame: Identity(), Role: RoleSolid})

	if _, err := s.Bake(&BakeOverrides{VoxelsPerUnit: 3}); err == nil {
		t.Error("expected an error for a non-multiple voxelsPerUnit override")
	}
}

func TestBakeForQualityProfiles(t *testing.T) {
	s := New(Settings{VoxelsPerUnit: 1})
	p := s.AddPart("unit", kernel.Box(cell.Cell{0, 0, 0}, cell.Cell{3, 3, 3}), RoleSolid)
	s.AddInstance(&Instance{Part: p, Frame: Identity(), Role: RoleSolid})

	draft, err := s.BakeForQuality(nil, QualityDraft)
	if err != nil {
		t.Fatalf("BakeForQuality(Draft): %v", err)
	}
	if draft.Volume() != 27 {
		t.Errorf("draft volume = %d, want 27", draft.Volume())
	}

	medium, err := s.BakeForQuality(nil, QualityMedium)
	if err != nil {
		t.Fatalf("BakeForQuality(Medium): %v", err)
	}
	if medium.Volume() != 6*6*6 {
		t.Errorf("medium volume = %d, want %d", medium.Volume(), 6*6*6)
	}

	high, err := s.BakeForQuality(nil, QualityHigh)
	if err != nil {
		t.Fatalf("BakeForQuality(High): %v", err)
	}
	if high.Volume() != 9*9*9 {
		t.Errorf("high volume = %d, want %d", high.Volume(), 9*9*9)
	}
}

func TestWeldAlreadyConnectedReturnsZeroRadius(t *testing.T) {
	s := New(Settings{VoxelsPerUnit: 1})
	a := kernel.Box(cell.Cell{0, 0, 0}, cell.Cell{2, 2, 2})
	b := kernel.Box(cell.Cell{1, 0, 0}, cell.Cell{3, 2, 2})

	part, radius, err := s.Weld("welded", a, b, kernel.MetricLInf)
	if err != nil {
		t.Fatalf("Weld: %v", err)
	}
	if radius != 0 {
		t.Errorf("radius = %d, want 0 for an already-connected union", radius)
	}
	if !part.Solid.Is6Connected() {
		t.Error("welded part should be 6-connected")
	}
}

func TestWeldDisjointBoxesFindsConnectingRadius(t *testing.T) {
	s := New(Settings{VoxelsPerUnit: 1})
	a := kernel.Box(cell.Cell{0, 0, 0}, cell.Cell{2, 2, 2})
	b := kernel.Box(cell.Cell{5, 0, 0}, cell.Cell{7, 2, 2})

	part, radius, err := s.Weld("welded", a, b, kernel.MetricLInf)
	if err != nil {
		t.Fatalf("Weld: %v", err)
	}
	if radius <= 0 {
		t.Errorf("radius = %d, want > 0 for disjoint boxes", radius)
	}
	if !part.Solid.Is6Connected() {
		t.Error("welded part should be 6-connected")
	}
	if _, ok := s.Part("welded"); !ok {
		t.Error("Weld should register the result as a named part")
	}
}

func TestBridgeAxisFillsGapBetweenBoxes(t *testing.T) {
	a := kernel.Box(cell.Cell{0, 0, 0}, cell.Cell{2, 2, 2})
	b := kernel.Box(cell.Cell{5, 0, 0}, cell.Cell{7, 2, 2})

	bridged := BridgeAxis(a, b, cell.AxisX, 2, nil)
	for x := int32(2); x < 5; x++ {
		if !bridged.Contains(cell.Cell{X: x, Y: 0, Z: 0}) {
			t.Errorf("expected bridge cell at x=%d", x)
		}
	}
	if bridged.Volume() < a.Volume()+b.Volume() {
		t.Error("bridged solid should contain both inputs")
	}
}

func TestBridgeAxisMaskRestrictsFill(t *testing.T) {
	a := kernel.Box(cell.Cell{0, 0, 0}, cell.Cell{2, 2, 2})
	b := kernel.Box(cell.Cell{5, 0, 0}, cell.Cell{7, 2, 2})

	mask := &AABB{Min: cell.Cell{0, 0, 0}, MaxExcl: cell.Cell{3, 1, 1}}
	bridged := BridgeAxis(a, b, cell.AxisX, 2, mask)
	if bridged.Contains(cell.Cell{X: 3, Y: 1, Z: 1}) {
		t.Error("mask should have excluded this bridge cell")
	}
}

func TestStrutConnectsClosestSurfaces(t *testing.T) {
	a := kernel.Box(cell.Cell{0, 0, 0}, cell.Cell{2, 2, 2})
	b := kernel.Box(cell.Cell{6, 0, 0}, cell.Cell{8, 2, 2})

	strut := Strut(a, b, 0)
	if !strut.Is6Connected() {
		t.Error("strut result connecting two boxes via their nearest faces should be 6-connected")
	}
	if strut.Volume() < a.Volume()+b.Volume() {
		t.Error("strut result should contain both inputs")
	}
}

func TestStrutEmptyInputReturnsUnion(t *testing.T) {
	a := kernel.New()
	b := kernel.Box(cell.Cell{0, 0, 0}, cell.Cell{1, 1, 1})
	result := Strut(a, b, 1)
	if result.Volume() != 1 {
		t.Errorf("volume = %d, want 1", result.Volume())
	}
}
