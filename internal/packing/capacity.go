package packing

import "math"

// DefaultPackingEfficiency discounts the volume-only bound to account for the
// space a greedy layout cannot use. It is empirical, not derived from the
// placement search.
const DefaultPackingEfficiency = 0.7

// maxCount bounds estimates so target × attempt multipliers cannot overflow.
const maxCount = math.MaxInt32

// Estimator computes how many instances of a box type could fit from
// geometry and weight alone.
type Estimator struct {
	efficiency float64
}

// NewEstimator returns an Estimator using the given packing efficiency.
// Values outside (0, 1] fall back to DefaultPackingEfficiency.
func NewEstimator(efficiency float64) Estimator {
	if !(efficiency > 0 && efficiency <= 1) {
		efficiency = DefaultPackingEfficiency
	}
	return Estimator{efficiency: efficiency}
}

// Efficiency returns the packing efficiency in use.
func (e Estimator) Efficiency() float64 {
	if e.efficiency == 0 {
		return DefaultPackingEfficiency
	}
	return e.efficiency
}

// Estimate returns the capacity estimate for box inside container.
func (e Estimator) Estimate(box BoxType, container Container) CapacityEstimate {
	byVolume := e.practicalByVolume(box, container)

	est := CapacityEstimate{
		Name:           box.Name,
		MaxPossible:    byVolume,
		MaxByVolume:    byVolume,
		LimitingFactor: LimitSpace,
	}

	if container.WeightCapacity != nil && box.Weight > 0 {
		byWeight := floorCount(*container.WeightCapacity / box.Weight)
		est.MaxByWeight = &byWeight
		if byWeight < byVolume {
			est.MaxPossible = byWeight
			est.LimitingFactor = LimitWeight
		}
	}

	est.RequestedQuantity = est.MaxPossible
	if box.Quantity != nil {
		est.RequestedQuantity = *box.Quantity
	}
	return est
}

// EstimateAll returns one estimate per box type, in input order.
func (e Estimator) EstimateAll(boxes []BoxType, container Container) []CapacityEstimate {
	out := make([]CapacityEstimate, 0, len(boxes))
	for _, box := range boxes {
		out = append(out, e.Estimate(box, container))
	}
	return out
}

// TheoreticalMax is floor(container volume / box volume), 0 for a
// non-positive box volume.
func TheoreticalMax(box BoxType, container Container) int {
	boxVolume := box.Volume()
	if boxVolume <= 0 {
		return 0
	}
	return floorCount(container.Volume() / boxVolume)
}

func (e Estimator) practicalByVolume(box BoxType, container Container) int {
	theoretical := TheoreticalMax(box, container)
	if theoretical <= 0 {
		return 0
	}
	return max(1, floorCount(float64(theoretical)*e.Efficiency()))
}

func floorCount(v float64) int {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= maxCount:
		return maxCount
	default:
		return int(math.Floor(v))
	}
}
