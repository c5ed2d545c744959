package packing

import "math"

// Reporting thresholds, in percent. They do not influence placement.
const (
	DefaultFullThreshold        = 95.0
	DefaultWeightLimitThreshold = 95.0
)

// SpaceUtilization returns the placed volume as a percentage of the
// container volume, 0 for a degenerate container.
func SpaceUtilization(container Container, placed []PlacedBox) float64 {
	volume := container.Volume()
	if volume <= 0 {
		return 0
	}
	var used float64
	for _, b := range placed {
		used += b.Volume()
	}
	return used / volume * 100
}

// WeightUtilization returns the placed weight as a percentage of the weight
// capacity, 0 when the capacity is absent or not positive.
func WeightUtilization(container Container, placed []PlacedBox) float64 {
	if container.WeightCapacity == nil || *container.WeightCapacity <= 0 {
		return 0
	}
	return totalWeight(placed) / *container.WeightCapacity * 100
}

func (p *greedyPacker) buildResult(container Container, boxes []BoxType, placed []PlacedBox, summaries []TypeSummary) Result {
	space := SpaceUtilization(container, placed)
	weight := WeightUtilization(container, placed)
	total := totalWeight(placed)

	res := Result{
		ContainerFull:      space > p.fullThreshold,
		WeightLimitReached: weight > p.weightLimitThreshold,
		TotalBoxes:         len(placed),
		TotalWeight:        round2(total),
		SpaceUtilization:   round2(space),
		WeightUtilization:  round2(weight),
		MaxPossibleBoxes:   p.estimator.EstimateAll(boxes, container),
		BoxSummary:         summaries,
	}

	if container.WeightCapacity != nil {
		capacity := *container.WeightCapacity
		remaining := round2(capacity - total)
		res.WeightCapacity = &capacity
		res.RemainingWeightCapacity = &remaining
	}
	return res
}

// EfficiencyReport summarizes how much of the request was satisfied.
type EfficiencyReport struct {
	TotalRequested          int      `json:"total_requested"`
	TotalPlaced             int      `json:"total_placed"`
	TotalNotPlaced          int      `json:"total_not_placed"`
	PlacementSuccessRate    float64  `json:"placement_success_rate"`
	SpaceUtilization        float64  `json:"space_utilization"`
	TotalWeight             float64  `json:"total_weight"`
	WeightCapacity          *float64 `json:"weight_capacity,omitempty"`
	WeightUtilization       *float64 `json:"weight_utilization,omitempty"`
	WeightLimitReached      *bool    `json:"weight_limit_reached,omitempty"`
	RemainingWeightCapacity *float64 `json:"remaining_weight_capacity,omitempty"`
}

// Efficiency derives the efficiency report from the result.
func (r Result) Efficiency() EfficiencyReport {
	var rep EfficiencyReport
	for _, s := range r.BoxSummary {
		rep.TotalRequested += s.RequestedQuantity
		rep.TotalPlaced += s.Count
		rep.TotalNotPlaced += s.NotPlaced
	}
	if rep.TotalRequested > 0 {
		rep.PlacementSuccessRate = round2(float64(rep.TotalPlaced) / float64(rep.TotalRequested) * 100)
	}
	rep.SpaceUtilization = r.SpaceUtilization
	rep.TotalWeight = r.TotalWeight

	if r.WeightCapacity != nil {
		capacity := *r.WeightCapacity
		utilization := r.WeightUtilization
		reached := r.WeightLimitReached
		remaining := round2(capacity - r.TotalWeight)
		rep.WeightCapacity = &capacity
		rep.WeightUtilization = &utilization
		rep.WeightLimitReached = &reached
		rep.RemainingWeightCapacity = &remaining
	}
	return rep
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
