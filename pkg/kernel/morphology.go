package kernel

import "github.com/chazu/vxcsg/pkg/cell"

// Metric selects the distance used to build a morphological structuring
// element.
type Metric int

const (
	// MetricLInf is the Chebyshev (max-coordinate) distance.
	MetricLInf Metric = iota
	// MetricL1 is the Manhattan (sum-of-absolute) distance.
	MetricL1
	// MetricL2 is the Euclidean distance.
	MetricL2
)

// structuringElement returns every offset δ with ‖δ‖_metric ≤ r.
func structuringElement(r int32, metric Metric) []cell.Cell {
	if r <= 0 {
		return nil
	}
	var out []cell.Cell
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			for dz := -r; dz <= r; dz++ {
				if withinMetric(dx, dy, dz, r, metric) {
					out = append(out, cell.Cell{X: dx, Y: dy, Z: dz})
				}
			}
		}
	}
	return out
}

func withinMetric(dx, dy, dz, r int32, metric Metric) bool {
	switch metric {
	case MetricLInf:
		return abs32(dx) <= r && abs32(dy) <= r && abs32(dz) <= r
	case MetricL1:
		return abs32(dx)+abs32(dy)+abs32(dz) <= r
	default: // MetricL2
		return dx*dx+dy*dy+dz*dz <= r*r
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Dilate returns the Minkowski sum of s with the structuring element
// E(r, metric). r <= 0 returns a copy of s unchanged.
func Dilate(s *VoxelSolid, r int32, metric Metric) *VoxelSolid {
	if r <= 0 {
		return s.Clone()
	}
	elem := structuringElement(r, metric)
	out := New()
	for c := range s.v {
		for _, d := range elem {
			out.Add(c.Add(d))
		}
	}
	return out
}

// Erode returns every cell c of s such that c+δ is occupied for every δ
// in the structuring element E(r, metric). r <= 0 returns a copy of s
// unchanged.
func Erode(s *VoxelSolid, r int32, metric Metric) *VoxelSolid {
	if r <= 0 {
		return s.Clone()
	}
	elem := structuringElement(r, metric)
	out := New()
	for c := range s.v {
		keep := true
		for _, d := range elem {
			if _, in := s.v[c.Add(d)]; !in {
				keep = false
				break
			}
		}
		if keep {
			out.Add(c)
		}
	}
	return out
}

// Open returns erode(s, r, metric) followed by dilate with the same
// parameters.
func Open(s *VoxelSolid, r int32, metric Metric) *VoxelSolid {
	return Dilate(Erode(s, r, metric), r, metric)
}

// Close returns dilate(s, r, metric) followed by erode with the same
// parameters.
func Close(s *VoxelSolid, r int32, metric Metric) *VoxelSolid {
	return Erode(Dilate(s, r, metric), r, metric)
}
