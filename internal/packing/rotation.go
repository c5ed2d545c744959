package packing

// dims is an oriented (length, width, height) triplet. It is comparable and
// serves as the set key when collapsing identical rotations.
type dims [3]float64

// Rotations returns the distinct axis-aligned orientations of box in the
// canonical order (l,w,h), (l,h,w), (w,l,h), (w,h,l), (h,l,w), (h,w,l).
// A permutation that reproduces an already emitted triplet is dropped, so a
// cube yields one orientation, a box with two equal sides three, and any
// other box six. The packer takes the first orientation that fits, which
// makes this order part of the result.
func Rotations(box BoxType) []Orientation {
	l, w, h := box.Length, box.Width, box.Height
	perms := [6]dims{
		{l, w, h},
		{l, h, w},
		{w, l, h},
		{w, h, l},
		{h, l, w},
		{h, w, l},
	}

	seen := make(map[dims]struct{}, len(perms))
	out := make([]Orientation, 0, len(perms))
	for _, p := range perms {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, Orientation{
			Name:   box.Name,
			Length: p[0],
			Width:  p[1],
			Height: p[2],
			Weight: box.Weight,
		})
	}
	return out
}
