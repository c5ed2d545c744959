package packing

import "fmt"

// Validate checks a request before it reaches the packer. The packer itself
// tolerates degenerate geometry; these rules reject requests a caller should
// fix instead.
func (r Request) Validate() error {
	c := r.Container
	if c == nil {
		return ErrMissingContainer
	}
	if c.Length <= 0 || c.Width <= 0 || c.Height <= 0 {
		return ErrInvalidContainer
	}
	if c.WeightCapacity != nil && *c.WeightCapacity <= 0 {
		return ErrInvalidWeightCapacity
	}
	if len(r.Boxes) == 0 {
		return ErrMissingBoxes
	}

	for i, box := range r.Boxes {
		if box.Name == "" || box.Length <= 0 || box.Width <= 0 || box.Height <= 0 {
			return fmt.Errorf("box at index %d: %w", i, ErrInvalidBox)
		}
		if c.WeightCapacity != nil && box.Weight <= 0 {
			return fmt.Errorf("box at index %d: %w", i, ErrMissingBoxWeight)
		}
		if box.Quantity != nil && *box.Quantity < 1 {
			return fmt.Errorf("box at index %d: %w", i, ErrInvalidQuantity)
		}
	}
	return nil
}
