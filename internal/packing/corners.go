package packing

import "sort"

// CornerPoints returns the candidate insertion points for the current
// placement state: the origin plus, for every placed box, the seven corners
// formed by its min or max coordinate on each axis (the all-min corner is the
// box's own origin and is skipped). Points outside [0, dim) on any axis are
// dropped. The result is deduplicated and sorted by (z, y, x) so lower layers
// fill first.
func CornerPoints(container Container, placed []PlacedBox) []Point {
	set := make(map[Point]struct{}, 1+7*len(placed))
	set[Point{}] = struct{}{}

	for _, b := range placed {
		xs := [2]float64{b.X, b.X + b.Length}
		ys := [2]float64{b.Y, b.Y + b.Width}
		zs := [2]float64{b.Z, b.Z + b.Height}
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				for k := 0; k < 2; k++ {
					if i == 0 && j == 0 && k == 0 {
						continue
					}
					set[Point{X: xs[i], Y: ys[j], Z: zs[k]}] = struct{}{}
				}
			}
		}
	}

	points := make([]Point, 0, len(set))
	for p := range set {
		if insideContainer(p, container) {
			points = append(points, p)
		}
	}

	sort.Slice(points, func(i, j int) bool {
		a, b := points[i], points[j]
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return points
}

func insideContainer(p Point, c Container) bool {
	return p.X >= 0 && p.X < c.Length &&
		p.Y >= 0 && p.Y < c.Width &&
		p.Z >= 0 && p.Z < c.Height
}
