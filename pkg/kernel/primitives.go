package kernel

import "github.com/chazu/vxcsg/pkg/cell"

// Box returns a new VoxelSolid containing every cell in the axis-aligned
// range [min, maxExcl). An empty or inverted range yields an empty solid.
func Box(min, maxExcl cell.Cell) *VoxelSolid {
	out := New()
	for x := min.X; x < maxExcl.X; x++ {
		for y := min.Y; y < maxExcl.Y; y++ {
			for z := min.Z; z < maxExcl.Z; z++ {
				out.Add(cell.Cell{X: x, Y: y, Z: z})
			}
		}
	}
	return out
}

// CylinderX returns a solid approximating a cylinder whose axis runs
// along X, centered at (centerY, centerZ), with the given integer radius
// and spanning x in [x0, x1). A non-positive radius or empty x-range
// yields an empty solid.
func CylinderX(x0, x1 int32, centerY, centerZ, radius int32) *VoxelSolid {
	out := New()
	if radius <= 0 {
		return out
	}
	r2 := radius * radius
	for x := x0; x < x1; x++ {
		for dy := -radius; dy <= radius; dy++ {
			for dz := -radius; dz <= radius; dz++ {
				if dy*dy+dz*dz <= r2 {
					out.Add(cell.Cell{X: x, Y: centerY + dy, Z: centerZ + dz})
				}
			}
		}
	}
	return out
}

// CylinderY returns a solid approximating a cylinder whose axis runs
// along Y, centered at (centerX, centerZ).
func CylinderY(y0, y1 int32, centerX, centerZ, radius int32) *VoxelSolid {
	out := New()
	if radius <= 0 {
		return out
	}
	r2 := radius * radius
	for y := y0; y < y1; y++ {
		for dx := -radius; dx <= radius; dx++ {
			for dz := -radius; dz <= radius; dz++ {
				if dx*dx+dz*dz <= r2 {
					out.Add(cell.Cell{X: centerX + dx, Y: y, Z: centerZ + dz})
				}
			}
		}
	}
	return out
}

// CylinderZ returns a solid approximating a cylinder whose axis runs
// along Z, centered at (centerX, centerY).
func CylinderZ(z0, z1 int32, centerX, centerY, radius int32) *VoxelSolid {
	out := New()
	if radius <= 0 {
		return out
	}
	r2 := radius * radius
	for z := z0; z < z1; z++ {
		for dx := -radius; dx <= radius; dx++ {
			for dy := -radius; dy <= radius; dy++ {
				if dx*dx+dy*dy <= r2 {
					out.Add(cell.Cell{X: centerX + dx, Y: centerY + dy, Z: z})
				}
			}
		}
	}
	return out
}

// Sphere returns a solid approximating a sphere of the given integer
// radius centered at center. A non-positive radius yields an empty solid.
func Sphere(center cell.Cell, radius int32) *VoxelSolid {
	out := New()
	if radius <= 0 {
		return out
	}
	r2 := radius * radius
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			for dz := -radius; dz <= radius; dz++ {
				if dx*dx+dy*dy+dz*dz <= r2 {
					out.Add(cell.Cell{X: center.X + dx, Y: center.Y + dy, Z: center.Z + dz})
				}
			}
		}
	}
	return out
}
