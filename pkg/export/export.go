// Package export collects the structured bake/export/save options from
// the external-interfaces key table into plain Go structs, and wires them
// into the scene, mesher, and SBVX codec packages: it is the boundary a
// host program configures instead of calling each package directly.
package export

import (
	"io"

	"github.com/chazu/vxcsg/pkg/cell"
	"github.com/chazu/vxcsg/pkg/kernel"
	"github.com/chazu/vxcsg/pkg/meshd"
	"github.com/chazu/vxcsg/pkg/revoxel"
	"github.com/chazu/vxcsg/pkg/sbvx"
	"github.com/chazu/vxcsg/pkg/scene"
	"github.com/chazu/vxcsg/pkg/stlw"
)

// Units labels a bake's logical unit for downstream consumers. It never
// affects lattice math.
type Units int

const (
	UnitsMillimeters Units = iota
	UnitsInches
)

// Engine selects the meshing algorithm used by Export. EngineSurfaceNets
// is accepted as a value but always fails with NotImplemented.
type Engine int

const (
	EngineVoxelFaces Engine = iota
	EngineSurfaceNets
)

// RevoxelizationOptions mirrors revoxel.Options' tunables without coupling
// callers to a per-instance Axis/Degrees/Pivot, which are scene-instance
// concerns rather than project-wide ones.
type RevoxelizationOptions struct {
	ConservativeObb bool
	SamplesPerAxis  int
	Epsilon         float64
}

// DefaultRevoxelizationOptions returns the documented defaults: 3 samples
// per axis, epsilon 1e-9, supersampling (not conservative OBB) mode.
func DefaultRevoxelizationOptions() RevoxelizationOptions {
	return RevoxelizationOptions{SamplesPerAxis: 3, Epsilon: 1e-9}
}

// BakeOptions configures a scene bake: units label, lattice resolution,
// revoxelization tunables applied to any instance carrying an arbitrary
// rotation, and the morphological quality profile.
type BakeOptions struct {
	Units          Units
	VoxelsPerUnit  int
	Revoxelization RevoxelizationOptions
	Quality        scene.Quality
}

// DefaultBakeOptions returns voxelsPerUnit=1, Draft quality, and the
// default revoxelization tunables.
func DefaultBakeOptions() BakeOptions {
	return BakeOptions{
		VoxelsPerUnit:  1,
		Revoxelization: DefaultRevoxelizationOptions(),
		Quality:        scene.QualityDraft,
	}
}

// QuantizeOptions configures the mesher's post-pass vertex snap/weld.
type QuantizeOptions struct {
	// StepUnits, in logical units, is the quantize grid spacing before
	// scaling by voxelsPerUnit. Zero disables quantize-and-weld.
	StepUnits float64
}

// ExportOptions configures mesh generation from a baked solid.
type ExportOptions struct {
	Engine          Engine
	IsoLevel        float64
	SmoothingPasses int
	Quantize        QuantizeOptions
}

// DefaultExportOptions returns EngineVoxelFaces, isoLevel 0.5,
// smoothingPasses 0, and quantize disabled.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{Engine: EngineVoxelFaces, IsoLevel: 0.5}
}

// SaveOptions configures the SBVX outer compression wrapper.
type SaveOptions struct {
	Compression      sbvx.CompressionKind
	CompressionLevel int
}

// DefaultSaveOptions returns no compression.
func DefaultSaveOptions() SaveOptions {
	return SaveOptions{Compression: sbvx.CompressionNone}
}

// levelFromInt maps the integer compressionLevel key onto the three
// codec-independent speed/size tiers: <=1 fastest, >=9 smallest, else
// balanced.
func levelFromInt(level int) sbvx.Level {
	switch {
	case level <= 1:
		return sbvx.LevelFastest
	case level >= 9:
		return sbvx.LevelSmallest
	default:
		return sbvx.LevelBalanced
	}
}

// revoxelOptionsFor builds a revoxel.Options for inst's arbitrary
// rotation, falling back to opts.Revoxelization for any tunable the
// instance leaves zero.
func revoxelOptionsFor(base *revoxel.Options, defaults RevoxelizationOptions) revoxel.Options {
	out := *base
	if out.SamplesPerAxis <= 0 {
		out.SamplesPerAxis = defaults.SamplesPerAxis
	}
	if out.Epsilon <= 0 {
		out.Epsilon = defaults.Epsilon
	}
	if defaults.ConservativeObb {
		out.ConservativeObb = true
	}
	return out
}

// Bake applies opts to sc: it sets up a BakeOverrides matching
// opts.VoxelsPerUnit, fills in any per-instance arbitrary rotation's
// unset tunables from opts.Revoxelization, and bakes at opts.Quality.
func Bake(sc *scene.Scene, opts BakeOptions) (*kernel.VoxelSolid, error) {
	if opts.VoxelsPerUnit <= 0 {
		return nil, cell.Newf(cell.InvalidArgument, "export.Bake", "voxelsPerUnit must be > 0, got %d", opts.VoxelsPerUnit)
	}
	for _, inst := range sc.Instances {
		if inst.ArbitraryRotation != nil {
			filled := revoxelOptionsFor(inst.ArbitraryRotation, opts.Revoxelization)
			inst.ArbitraryRotation = &filled
		}
	}
	overrides := &scene.BakeOverrides{VoxelsPerUnit: opts.VoxelsPerUnit}
	return sc.BakeForQuality(overrides, opts.Quality)
}

// Mesh converts a baked solid into a MeshD per opts: EngineVoxelFaces
// greedily merges boundary faces, ensures outward normals, and applies
// the quantize pass when opts.Quantize.StepUnits > 0. EngineSurfaceNets
// is reserved and always fails with NotImplemented.
func Mesh(solid *kernel.VoxelSolid, voxelsPerUnit int, opts ExportOptions) (*meshd.MeshD, error) {
	switch opts.Engine {
	case EngineVoxelFaces:
		m := meshd.ToMesh(solid)
		meshd.EnsureOutwardNormals(m)
		if opts.Quantize.StepUnits > 0 {
			m = meshd.Quantize(m, opts.Quantize.StepUnits, voxelsPerUnit)
		}
		return m, nil
	case EngineSurfaceNets:
		return nil, cell.Newf(cell.NotImplemented, "export.Mesh", "export.engine = SurfaceNets is not implemented")
	default:
		return nil, cell.Newf(cell.InvalidArgument, "export.Mesh", "unknown engine %d", opts.Engine)
	}
}

// WriteSTL writes m to w as binary STL.
func WriteSTL(w io.Writer, m *meshd.MeshD, name string) error {
	return stlw.WriteBinary(w, m, name)
}

// SaveSBVX writes solid to w as an SBVX stream (auto-selecting dense or
// sparse encoding), wrapped by opts' compression kind and level. An
// unknown compression kind surfaces InvalidArgument per the documented
// error-handling propagation rule.
func SaveSBVX(w io.Writer, solid *kernel.VoxelSolid, opts SaveOptions) error {
	cw, err := sbvx.CompressWriter(w, opts.Compression, levelFromInt(opts.CompressionLevel))
	if err != nil {
		return err
	}
	if err := sbvx.Write(cw, solid); err != nil {
		cw.Close()
		return err
	}
	return cw.Close()
}

// LoadSBVX reads an SBVX stream from r, unwrapping compression kind first.
func LoadSBVX(r io.Reader, compression sbvx.CompressionKind) (*kernel.VoxelSolid, error) {
	cr, err := sbvx.DecompressReader(r, compression)
	if err != nil {
		return nil, err
	}
	defer cr.Close()
	return sbvx.Read(cr)
}
