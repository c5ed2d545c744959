package packing

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
)

// attemptsPerTarget bounds the placement loop at target × attemptsPerTarget.
// The bound is never the binding condition: a failed sweep over every
// orientation and candidate point ends the type, and the container does not
// change between attempts, so a retry would fail identically. Removing the
// early exit in favour of the cap would change not_placed.
const attemptsPerTarget = 10

type greedyPacker struct {
	estimator            Estimator
	fullThreshold        float64
	weightLimitThreshold float64
	logger               *zap.Logger
}

// Option configures the packer returned by New.
type Option func(*greedyPacker)

// WithPackingEfficiency sets the discount applied to the volume bound when
// estimating default quantities.
func WithPackingEfficiency(efficiency float64) Option {
	return func(p *greedyPacker) {
		p.estimator = NewEstimator(efficiency)
	}
}

// WithFullThreshold sets the space utilization percentage above which the
// container is reported full.
func WithFullThreshold(percent float64) Option {
	return func(p *greedyPacker) {
		if percent > 0 {
			p.fullThreshold = percent
		}
	}
}

// WithWeightLimitThreshold sets the weight utilization percentage above which
// the weight limit is reported reached.
func WithWeightLimitThreshold(percent float64) Option {
	return func(p *greedyPacker) {
		if percent > 0 {
			p.weightLimitThreshold = percent
		}
	}
}

// WithLogger attaches a logger for per-type diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(p *greedyPacker) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a first-fit greedy Packer.
func New(opts ...Option) Packer {
	p := &greedyPacker{
		estimator:            NewEstimator(DefaultPackingEfficiency),
		fullThreshold:        DefaultFullThreshold,
		weightLimitThreshold: DefaultWeightLimitThreshold,
		logger:               zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Pack loads box types in descending volume order. Each type is placed one
// instance at a time at the first (orientation, corner point) pair that fits
// until its target is met, its weight no longer fits, or no pair fits.
func (p *greedyPacker) Pack(ctx context.Context, container Container, boxes []BoxType) (Result, error) {
	ordered := make([]BoxType, len(boxes))
	copy(ordered, boxes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Volume() > ordered[j].Volume()
	})

	var placed []PlacedBox
	summaries := make([]TypeSummary, 0, len(ordered))

	for _, box := range ordered {
		target := p.targetQuantity(box, container)
		rotations := Rotations(box)
		local := make([]PlacedBox, 0)
		stop := "target reached"

		limit := attemptLimit(target)
		for attempts := 0; len(local) < target && attempts < limit; attempts++ {
			if err := ctx.Err(); err != nil {
				return Result{}, fmt.Errorf("%w: %w", ErrPackCanceled, err)
			}
			if !WeightFits(rotations[0], placed, container) {
				stop = "weight capacity"
				break
			}
			next, ok := placeFirstFit(rotations, container, placed)
			if !ok {
				stop = "no space"
				break
			}
			placed = append(placed, next)
			local = append(local, next)
		}

		notPlaced := 0
		if box.Quantity != nil {
			notPlaced = max(0, target-len(local))
		}

		p.logger.Debug("box type exhausted",
			zap.String("name", box.Name),
			zap.Int("target", target),
			zap.Int("placed", len(local)),
			zap.String("reason", stop),
		)

		summaries = append(summaries, TypeSummary{
			Name:              box.Name,
			Length:            box.Length,
			Width:             box.Width,
			Height:            box.Height,
			Weight:            box.Weight,
			RequestedQuantity: target,
			Count:             len(local),
			NotPlaced:         notPlaced,
			Boxes:             local,
		})
	}

	return p.buildResult(container, boxes, placed, summaries), nil
}

// attemptLimit saturates target × attemptsPerTarget at math.MaxInt so very
// large explicit quantities still reach the early exit.
func attemptLimit(target int) int {
	if target > math.MaxInt/attemptsPerTarget {
		return math.MaxInt
	}
	return target * attemptsPerTarget
}

func (p *greedyPacker) targetQuantity(box BoxType, container Container) int {
	if box.Quantity != nil {
		return *box.Quantity
	}
	return p.estimator.Estimate(box, container).MaxPossible
}

// placeFirstFit returns the first orientation, in enumerator order, that has
// a legal corner point, placed at the first such point.
func placeFirstFit(rotations []Orientation, container Container, placed []PlacedBox) (PlacedBox, bool) {
	points := CornerPoints(container, placed)
	for _, o := range rotations {
		for _, pt := range points {
			if !Fits(o, pt, placed, container) {
				continue
			}
			return PlacedBox{
				X:             pt.X,
				Y:             pt.Y,
				Z:             pt.Z,
				Length:        o.Length,
				Width:         o.Width,
				Height:        o.Height,
				Name:          o.Name,
				Weight:        o.Weight,
				ContainerName: container.Name,
			}, true
		}
	}
	return PlacedBox{}, false
}
