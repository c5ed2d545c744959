package packing

// Fits reports whether o placed with its minimum corner at p stays inside the
// container and overlaps none of the placed boxes. Boxes that merely touch
// are not overlapping.
func Fits(o Orientation, p Point, placed []PlacedBox, container Container) bool {
	if p.X+o.Length > container.Length ||
		p.Y+o.Width > container.Width ||
		p.Z+o.Height > container.Height {
		return false
	}

	for _, other := range placed {
		if overlaps(o, p, other) {
			return false
		}
	}
	return true
}

// overlaps is true when no axis separates the candidate from other.
func overlaps(o Orientation, p Point, other PlacedBox) bool {
	separated := p.X >= other.X+other.Length || p.X+o.Length <= other.X ||
		p.Y >= other.Y+other.Width || p.Y+o.Width <= other.Y ||
		p.Z >= other.Z+other.Height || p.Z+o.Height <= other.Z
	return !separated
}

// WeightFits reports whether one more box of o's weight keeps the load within
// the container's weight capacity. It does not depend on position, so the
// packer evaluates it once per attempt.
func WeightFits(o Orientation, placed []PlacedBox, container Container) bool {
	if container.WeightCapacity == nil {
		return true
	}
	return totalWeight(placed)+o.Weight <= *container.WeightCapacity
}

func totalWeight(placed []PlacedBox) float64 {
	var sum float64
	for _, b := range placed {
		sum += b.Weight
	}
	return sum
}
