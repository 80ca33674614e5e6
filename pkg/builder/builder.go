// Package builder provides a fluent, stateful composition API over a
// single owned voxel solid: primitive emission under a stack of pending
// rigid transforms, and nested transform/boolean scopes that spawn
// independent child builders.
package builder

import (
	"github.com/chazu/vxcsg/pkg/cell"
	"github.com/chazu/vxcsg/pkg/kernel"
	"github.com/chazu/vxcsg/pkg/revoxel"
)

// xform is one pending rigid transform: kind selects which fields are
// meaningful (delta for translate, axis and k for rotate90, axis for mirror).
type xform struct {
	kind  xformKind
	delta cell.Cell // translate
	axis  cell.Axis // rotate90 / mirror
	k     int       // rotate90 turn count
}

type xformKind int

const (
	xformTranslate xformKind = iota
	xformRotate90
	xformMirror
)

// Builder owns one VoxelSolid and a current stack of pending transforms,
// applied in order to every subsequently emitted primitive. Nested scopes
// (Place, Union, Subtract, Intersect, RotateAny...) spawn a child Builder
// with a cloned transform list or a fresh solid; a child never holds a
// back-reference to its parent, so the parent/child relation is a tree.
type Builder struct {
	solid *kernel.VoxelSolid
	stack []xform

	// RevoxelDefaults supplies the Options used by RotateAnyWith's sibling
	// convenience entry points when the caller does not specify Options
	// directly.
	RevoxelDefaults revoxel.Options
}

// New returns a Builder over an empty solid with an empty transform stack
// and the documented default revoxelization sampling parameters (3 samples
// per axis, epsilon 1e-9) as RevoxelDefaults.
func New() *Builder {
	return &Builder{
		solid: kernel.New(),
		RevoxelDefaults: revoxel.Options{
			SamplesPerAxis: 3,
			Epsilon:        1e-9,
		},
	}
}

// Solid returns the builder's owned solid. The caller must not mutate it
// directly; use the builder's own operations.
func (b *Builder) Solid() *kernel.VoxelSolid {
	return b.solid
}

// Translate pushes a translation onto the transform stack.
func (b *Builder) Translate(d cell.Cell) {
	b.stack = append(b.stack, xform{kind: xformTranslate, delta: d})
}

// Rotate90 pushes a k*90-degree rotation about axis onto the transform
// stack.
func (b *Builder) Rotate90(axis cell.Axis, k int) {
	b.stack = append(b.stack, xform{kind: xformRotate90, axis: axis, k: k})
}

// Mirror pushes a reflection across axis onto the transform stack.
func (b *Builder) Mirror(axis cell.Axis) {
	b.stack = append(b.stack, xform{kind: xformMirror, axis: axis})
}

// ResetTransform clears the transform stack.
func (b *Builder) ResetTransform() {
	b.stack = nil
}

// applyStack applies every pending transform to s in order, returning a
// new solid.
func (b *Builder) applyStack(s *kernel.VoxelSolid) *kernel.VoxelSolid {
	for _, x := range b.stack {
		switch x.kind {
		case xformTranslate:
			s = kernel.Translate(s, x.delta)
		case xformRotate90:
			s = kernel.Rotate90(s, x.axis, x.k)
		case xformMirror:
			s = kernel.Mirror(s, x.axis)
		}
	}
	return s
}

// emit materializes prim, applies the current transform stack, and adds
// every resulting cell into the owned solid.
func (b *Builder) emit(prim *kernel.VoxelSolid) {
	xformed := b.applyStack(prim)
	for _, c := range xformed.Cells() {
		b.solid.Add(c)
	}
}

// cut is emit's inverse: it removes every resulting cell instead of
// adding it, for the Cut* primitive variants.
func (b *Builder) cut(prim *kernel.VoxelSolid) {
	xformed := b.applyStack(prim)
	for _, c := range xformed.Cells() {
		b.solid.Remove(c)
	}
}

// Merge applies the current transform stack to solid and unions the
// result into b, the same way Box/Sphere/... fold a freshly constructed
// primitive in. It lets a caller fold an externally built solid into the
// builder instead of only ones the builder constructed itself.
func (b *Builder) Merge(solid *kernel.VoxelSolid) { b.emit(solid) }

// Cut is Merge's inverse: it applies the current transform stack to solid
// and removes the result from b.
func (b *Builder) Cut(solid *kernel.VoxelSolid) { b.cut(solid) }

// Box emits a box primitive spanning [min, maxExcl) under the current
// transform stack.
func (b *Builder) Box(min, maxExcl cell.Cell) { b.emit(kernel.Box(min, maxExcl)) }

// CutBox removes a box primitive spanning [min, maxExcl) under the
// current transform stack.
func (b *Builder) CutBox(min, maxExcl cell.Cell) { b.cut(kernel.Box(min, maxExcl)) }

// CylinderX emits a cylinder primitive along X under the current
// transform stack.
func (b *Builder) CylinderX(x0, x1, centerY, centerZ, radius int32) {
	b.emit(kernel.CylinderX(x0, x1, centerY, centerZ, radius))
}

// CutCylinderX removes a cylinder primitive along X.
func (b *Builder) CutCylinderX(x0, x1, centerY, centerZ, radius int32) {
	b.cut(kernel.CylinderX(x0, x1, centerY, centerZ, radius))
}

// CylinderY emits a cylinder primitive along Y under the current
// transform stack.
func (b *Builder) CylinderY(y0, y1, centerX, centerZ, radius int32) {
	b.emit(kernel.CylinderY(y0, y1, centerX, centerZ, radius))
}

// CutCylinderY removes a cylinder primitive along Y.
func (b *Builder) CutCylinderY(y0, y1, centerX, centerZ, radius int32) {
	b.cut(kernel.CylinderY(y0, y1, centerX, centerZ, radius))
}

// CylinderZ emits a cylinder primitive along Z under the current
// transform stack.
func (b *Builder) CylinderZ(z0, z1, centerX, centerY, radius int32) {
	b.emit(kernel.CylinderZ(z0, z1, centerX, centerY, radius))
}

// CutCylinderZ removes a cylinder primitive along Z.
func (b *Builder) CutCylinderZ(z0, z1, centerX, centerY, radius int32) {
	b.cut(kernel.CylinderZ(z0, z1, centerX, centerY, radius))
}

// Sphere emits a sphere primitive under the current transform stack.
func (b *Builder) Sphere(center cell.Cell, radius int32) { b.emit(kernel.Sphere(center, radius)) }

// CutSphere removes a sphere primitive.
func (b *Builder) CutSphere(center cell.Cell, radius int32) { b.cut(kernel.Sphere(center, radius)) }

// child returns a new Builder seeded with a copy of b's transform stack
// (optionally extended by an offset) and an empty solid, with b's
// revoxelization defaults carried over.
func (b *Builder) child(extra *xform) *Builder {
	stack := make([]xform, len(b.stack), len(b.stack)+1)
	copy(stack, b.stack)
	if extra != nil {
		stack = append(stack, *extra)
	}
	return &Builder{solid: kernel.New(), stack: stack, RevoxelDefaults: b.RevoxelDefaults}
}

// Place runs scope on a child builder whose transform stack is b's current
// stack extended by a translation of offset, then unions the child's
// result into b.
func (b *Builder) Place(offset cell.Cell, scope func(*Builder)) {
	c := b.child(&xform{kind: xformTranslate, delta: offset})
	scope(c)
	b.unionChild(c)
}

// ArrayX runs scope n times, copy i at a translation of i*step along X
// from b's frame (so consecutive copies are step apart), and unions every
// result into b.
func (b *Builder) ArrayX(n int, step int32, scope func(i int, child *Builder)) {
	for i := 0; i < n; i++ {
		off := cell.Cell{X: step * int32(i)}
		c := b.child(&xform{kind: xformTranslate, delta: off})
		scope(i, c)
		b.unionChild(c)
	}
}

// ArrayY runs scope n times, copy i at a translation of i*step along Y
// from b's frame (so consecutive copies are step apart), and unions every
// result into b.
func (b *Builder) ArrayY(n int, step int32, scope func(i int, child *Builder)) {
	for i := 0; i < n; i++ {
		off := cell.Cell{Y: step * int32(i)}
		c := b.child(&xform{kind: xformTranslate, delta: off})
		scope(i, c)
		b.unionChild(c)
	}
}

// Grid runs scope once per (i, j) cell of an nx-by-ny grid, offset by
// (i*stepX, j*stepY), and unions every result into b.
func (b *Builder) Grid(nx, ny int, stepX, stepY int32, scope func(i, j int, child *Builder)) {
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			off := cell.Cell{X: stepX * int32(i), Y: stepY * int32(j)}
			c := b.child(&xform{kind: xformTranslate, delta: off})
			scope(i, j, c)
			b.unionChild(c)
		}
	}
}

// Union runs scope on a child builder sharing b's transform stack, then
// unions the child's result into b. Equivalent to Place with a zero
// offset, provided separately because it names the boolean intent.
func (b *Builder) Union(scope func(*Builder)) {
	c := b.child(nil)
	scope(c)
	b.unionChild(c)
}

// Subtract runs scope on a child builder sharing b's transform stack, then
// subtracts the child's result from b.
func (b *Builder) Subtract(scope func(*Builder)) {
	c := b.child(nil)
	scope(c)
	b.solid = kernel.Subtract(b.solid, c.solid)
}

// Intersect runs scope on a child builder sharing b's transform stack,
// then intersects the child's result with b.
func (b *Builder) Intersect(scope func(*Builder)) {
	c := b.child(nil)
	scope(c)
	b.solid = kernel.Intersect(b.solid, c.solid)
}

// RotateAny runs scope into a fresh child solid, revoxelizes the result
// using b's RevoxelDefaults, and unions it into b.
func (b *Builder) RotateAny(axis cell.Axis, degrees float64, pivot [3]float64, scope func(*Builder)) error {
	opts := b.RevoxelDefaults
	opts.Axis, opts.Degrees, opts.Pivot = axis, degrees, pivot
	return b.RotateAnyWith(opts, scope)
}

// RotateAnyAround is RotateAny with an explicit pivot supplied as a Cell
// (the common case of rotating about a lattice point).
func (b *Builder) RotateAnyAround(axis cell.Axis, degrees float64, pivot cell.Cell, scope func(*Builder)) error {
	return b.RotateAny(axis, degrees, [3]float64{float64(pivot.X), float64(pivot.Y), float64(pivot.Z)}, scope)
}

// RotateAnyWith runs scope into a fresh child solid, applies revoxel.Revoxelize
// with the given options, then unions the result into b.
func (b *Builder) RotateAnyWith(opts revoxel.Options, scope func(*Builder)) error {
	c := b.child(nil)
	scope(c)
	rotated, err := revoxel.Revoxelize(c.solid, opts)
	if err != nil {
		return err
	}
	b.solid = kernel.Union(b.solid, rotated)
	return nil
}

func (b *Builder) unionChild(c *Builder) {
	b.solid = kernel.Union(b.solid, c.solid)
}
