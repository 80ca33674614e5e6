// Package scene composes named parts into placed instances and bakes them
// into a single voxel solid: an ordered union/subtract/intersect pipeline
// over per-instance exact frames and optional arbitrary rotations, plus
// quality profiles and the derived Weld/BridgeAxis/Strut operators.
package scene

import (
	"github.com/chazu/vxcsg/pkg/cell"
	"github.com/chazu/vxcsg/pkg/kernel"
	"github.com/chazu/vxcsg/pkg/revoxel"
)

// Role selects how an instance combines into the bake accumulator.
type Role int

const (
	RoleSolid Role = iota
	RoleHole
	RoleIntersect
)

// Part is a named, immutable solid together with a default combination
// role for instances that don't specify their own.
type Part struct {
	Name        string
	Solid       *kernel.VoxelSolid
	DefaultRole Role
}

// Frame is an instance's exact integer placement: a 3x3 matrix composed
// from 90-degree rotations and axis mirrors, plus an integer translation,
// applied as cell -> Matrix*cell + Translation.
type Frame struct {
	Matrix      [3][3]int32
	Translation cell.Cell
}

// Identity returns the frame that leaves cells unchanged.
func Identity() Frame {
	return Frame{Matrix: [3][3]int32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

// Apply maps c through the frame.
func (f Frame) Apply(c cell.Cell) cell.Cell {
	return cell.Cell{
		X: f.Matrix[0][0]*c.X + f.Matrix[0][1]*c.Y + f.Matrix[0][2]*c.Z + f.Translation.X,
		Y: f.Matrix[1][0]*c.X + f.Matrix[1][1]*c.Y + f.Matrix[1][2]*c.Z + f.Translation.Y,
		Z: f.Matrix[2][0]*c.X + f.Matrix[2][1]*c.Y + f.Matrix[2][2]*c.Z + f.Translation.Z,
	}
}

// Instance references a Part with a mutable exact Frame, an optional
// arbitrary rotation applied after the frame during bake, and a
// combination Role. Instances are mutable containers; frames may be
// updated in place until bake.
type Instance struct {
	Part              *Part
	Frame             Frame
	ArbitraryRotation *revoxel.Options
	Role              Role
}

// Settings holds scene-wide project settings.
type Settings struct {
	VoxelsPerUnit int
}

// Scene is an ordered list of instances plus project-wide settings and a
// registry of named parts (populated by AddPart and by derived operators
// like Weld that register their result as a new part).
type Scene struct {
	Instances []*Instance
	Settings  Settings
	parts     map[string]*Part
}

// New returns an empty Scene with the given settings.
func New(settings Settings) *Scene {
	return &Scene{Settings: settings, parts: make(map[string]*Part)}
}

// AddPart registers a named part and returns it.
func (s *Scene) AddPart(name string, solid *kernel.VoxelSolid, role Role) *Part {
	p := &Part{Name: name, Solid: solid, DefaultRole: role}
	s.parts[name] = p
	return p
}

// Part looks up a previously registered part by name.
func (s *Scene) Part(name string) (*Part, bool) {
	p, ok := s.parts[name]
	return p, ok
}

// AddInstance appends inst to the scene's ordered instance list.
func (s *Scene) AddInstance(inst *Instance) {
	s.Instances = append(s.Instances, inst)
}

// BakeOverrides optionally overrides the scene's voxels-per-unit for a
// single Bake call; every instance's part is replicated to match.
type BakeOverrides struct {
	VoxelsPerUnit int // 0 means "use the scene's"
}

// Bake composes every instance in insertion order into a single solid:
// clone the part, replicate for any voxels-per-unit override, apply the
// exact frame, optionally revoxelize through an arbitrary rotation, then
// combine into the accumulator per the instance's role. Returns an empty
// solid if the scene has no instances.
func (s *Scene) Bake(overrides *BakeOverrides) (*kernel.VoxelSolid, error) {
	vpu := s.Settings.VoxelsPerUnit
	if vpu <= 0 {
		return nil, cell.Newf(cell.InvalidArgument, "scene.Bake", "voxelsPerUnit must be > 0, got %d", vpu)
	}

	acc := kernel.New()
	for i, inst := range s.Instances {
		solid := inst.Part.Solid.Clone()

		if overrides != nil && overrides.VoxelsPerUnit > 0 && overrides.VoxelsPerUnit != vpu {
			if overrides.VoxelsPerUnit%vpu != 0 {
				return nil, cell.Newf(cell.InvalidArgument, "scene.Bake", "override voxelsPerUnit %d is not a multiple of scene voxelsPerUnit %d", overrides.VoxelsPerUnit, vpu)
			}
			factor := int32(overrides.VoxelsPerUnit / vpu)
			solid = replicate(solid, factor)
		}

		solid = applyFrame(solid, inst.Frame)

		if inst.ArbitraryRotation != nil {
			rotated, err := revoxel.Revoxelize(solid, *inst.ArbitraryRotation)
			if err != nil {
				return nil, cell.Wrap(cell.InvalidArgument, "scene.Bake", err, "revoxelizing instance %d", i)
			}
			solid = rotated
		}

		switch inst.Role {
		case RoleSolid:
			acc = kernel.Union(acc, solid)
		case RoleHole:
			acc = kernel.Subtract(acc, solid)
		case RoleIntersect:
			acc = kernel.Intersect(acc, solid)
		default:
			return nil, cell.Newf(cell.InvalidArgument, "scene.Bake", "instance %d has unknown role %d", i, inst.Role)
		}
	}
	return acc, nil
}

// Quality selects a bake-time morphological refinement profile.
type Quality int

const (
	QualityDraft Quality = iota
	QualityMedium
	QualityHigh
)

// BakeForQuality bakes then applies the quality profile: Draft returns the
// raw bake; Medium upscales by 2 and closes with radius 1 under
// L-infinity; High upscales by 3, closes, then opens.
func (s *Scene) BakeForQuality(overrides *BakeOverrides, q Quality) (*kernel.VoxelSolid, error) {
	base, err := s.Bake(overrides)
	if err != nil {
		return nil, err
	}
	switch q {
	case QualityDraft:
		return base, nil
	case QualityMedium:
		up := replicate(base, 2)
		return kernel.Close(up, 1, kernel.MetricLInf), nil
	case QualityHigh:
		up := replicate(base, 3)
		closed := kernel.Close(up, 1, kernel.MetricLInf)
		return kernel.Open(closed, 1, kernel.MetricLInf), nil
	default:
		return nil, cell.Newf(cell.InvalidArgument, "scene.BakeForQuality", "unknown quality %d", q)
	}
}

// replicate upscales s by factor, turning each occupied cell into a
// factor^3 block of cells in the new lattice.
func replicate(s *kernel.VoxelSolid, factor int32) *kernel.VoxelSolid {
	out := kernel.New()
	for _, c := range s.Cells() {
		base := cell.Cell{X: c.X * factor, Y: c.Y * factor, Z: c.Z * factor}
		for dx := int32(0); dx < factor; dx++ {
			for dy := int32(0); dy < factor; dy++ {
				for dz := int32(0); dz < factor; dz++ {
					out.Add(cell.Cell{X: base.X + dx, Y: base.Y + dy, Z: base.Z + dz})
				}
			}
		}
	}
	return out
}

// applyFrame maps every cell of s through f into a new solid.
func applyFrame(s *kernel.VoxelSolid, f Frame) *kernel.VoxelSolid {
	out := kernel.New()
	for _, c := range s.Cells() {
		out.Add(f.Apply(c))
	}
	return out
}
