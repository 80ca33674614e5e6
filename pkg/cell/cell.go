// Package cell defines the shared lattice value types and error taxonomy
// used across the voxel kernel, revoxelizer, codec, mesher, builder, and
// scene packages.
package cell

import "fmt"

// Cell is an integer lattice coordinate. A voxel at Cell{x,y,z} occupies
// the axis-aligned unit cube [x, x+1) x [y, y+1) x [z, z+1).
type Cell struct {
	X, Y, Z int32
}

// Add returns the componentwise sum of c and d.
func (c Cell) Add(d Cell) Cell {
	return Cell{c.X + d.X, c.Y + d.Y, c.Z + d.Z}
}

// Scale returns c with every component multiplied by k.
func (c Cell) Scale(k int32) Cell {
	return Cell{c.X * k, c.Y * k, c.Z * k}
}

// Axis enumerates the three lattice axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// String renders the axis as a single uppercase letter.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// FaceKey identifies a voxel-cube face in a canonical global frame: the
// plane coordinate K along Axis, and the lower corner (A, B) of the face
// in the other two axes.
//
// The (A, B) ordering is axis-specific and must be applied uniformly
// everywhere a FaceKey is constructed or consumed: X-axis faces use
// (Y, Z), Y-axis faces use (X, Z), Z-axis faces use (X, Y). See
// NewFaceKey, which is the single place this convention is encoded.
type FaceKey struct {
	Axis Axis
	K    int32
	A    int32
	B    int32
}

// NewFaceKey builds the FaceKey for the face of cell c on the low side
// (normal pointing toward -axis) when low is true, or the high side
// (normal pointing toward +axis, i.e. the face shared with cell c+1 along
// axis) when low is false. This is the single place the axis-specific
// (A, B) ordering is encoded; every other package must go through it.
func NewFaceKey(axis Axis, c Cell, low bool) FaceKey {
	k := planeCoord(axis, c, low)
	a, b := faceABFromCell(axis, c)
	return FaceKey{Axis: axis, K: k, A: a, B: b}
}

func planeCoord(axis Axis, c Cell, low bool) int32 {
	var base int32
	switch axis {
	case AxisX:
		base = c.X
	case AxisY:
		base = c.Y
	case AxisZ:
		base = c.Z
	}
	if low {
		return base
	}
	return base + 1
}

// faceABFromCell returns the (A, B) pair for the face-plane that cell c's
// low or high face lies in, using the axis-specific ordering documented on
// FaceKey.
func faceABFromCell(axis Axis, c Cell) (int32, int32) {
	switch axis {
	case AxisX:
		return c.Y, c.Z
	case AxisY:
		return c.X, c.Z
	case AxisZ:
		return c.X, c.Y
	default:
		return 0, 0
	}
}

// TriIdx is a triangle referencing three vertex indices into a mesh's
// vertex list.
type TriIdx struct {
	A, B, C uint32
}

// Kind distinguishes error categories. Kinds are flat tags, not a
// hierarchy: callers switch on Kind, never on a concrete error type.
type Kind int

const (
	// InvalidArgument covers non-positive radii where positivity is
	// required, non-positive voxels-per-unit, non-multiple resolution
	// overrides, empty AABBs, and unknown axis/enum values.
	InvalidArgument Kind = iota
	// InvalidFormat covers SBVX magic/version/encoding mismatches,
	// payload size mismatches, and out-of-bounds sparse voxels.
	InvalidFormat
	// Invariant signals an internal inconsistency (e.g. a boundary face
	// without exactly one adjacent filled voxel). Fatal; should never
	// occur from well-formed input.
	Invariant
	// NotImplemented marks a deliberately unimplemented operation
	// (the Surface Nets export engine).
	NotImplemented
	// IoError wraps a failure from the underlying stream or filesystem.
	IoError
)

// String renders the Kind for diagnostic messages.
func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case InvalidFormat:
		return "invalid_format"
	case Invariant:
		return "invariant"
	case NotImplemented:
		return "not_implemented"
	case IoError:
		return "io_error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the single error type returned across package boundaries. Op
// names the failing operation; Kind classifies the failure; Err, if
// non-nil, is the wrapped underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Newf builds an *Error with a formatted message and no wrapped cause.
func Newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error that wraps err with a formatted message.
func Wrap(kind Kind, op string, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}
