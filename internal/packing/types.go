package packing

import "context"

// Container is the rigid box every placement must stay inside.
// A nil WeightCapacity means the load is unconstrained by weight.
type Container struct {
	Name           string   `json:"name,omitempty"`
	Length         float64  `json:"length"`
	Width          float64  `json:"width"`
	Height         float64  `json:"height"`
	WeightCapacity *float64 `json:"weight_capacity,omitempty"`
}

// Volume returns length × width × height.
func (c Container) Volume() float64 {
	return c.Length * c.Width * c.Height
}

// BoxType describes one kind of box to load. A nil Quantity asks the packer
// to place as many instances as the capacity estimate allows.
type BoxType struct {
	Name     string  `json:"name"`
	Length   float64 `json:"length"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Weight   float64 `json:"weight,omitempty"`
	Quantity *int    `json:"quantity,omitempty"`
}

// Volume returns length × width × height.
func (b BoxType) Volume() float64 {
	return b.Length * b.Width * b.Height
}

// Orientation is a BoxType with its dimensions permuted by one axis rotation.
type Orientation struct {
	Name   string
	Length float64
	Width  float64
	Height float64
	Weight float64
}

// Point is a candidate minimum corner inside the container.
type Point struct {
	X float64
	Y float64
	Z float64
}

// PlacedBox is an orientation bound to its minimum corner.
type PlacedBox struct {
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Z             float64 `json:"z"`
	Length        float64 `json:"length"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	Name          string  `json:"name"`
	Weight        float64 `json:"weight"`
	ContainerName string  `json:"container_name,omitempty"`
}

// Volume returns length × width × height.
func (p PlacedBox) Volume() float64 {
	return p.Length * p.Width * p.Height
}

// TypeSummary aggregates the outcome for one box type.
type TypeSummary struct {
	Name              string      `json:"name"`
	Length            float64     `json:"length"`
	Width             float64     `json:"width"`
	Height            float64     `json:"height"`
	Weight            float64     `json:"weight"`
	RequestedQuantity int         `json:"requested_quantity"`
	Count             int         `json:"count"`
	NotPlaced         int         `json:"not_placed"`
	Boxes             []PlacedBox `json:"boxes"`
}

// Limiting factors reported by the capacity estimator.
const (
	LimitSpace  = "space"
	LimitWeight = "weight"
)

// CapacityEstimate is the informational per-type maximum derived from
// geometry and weight alone.
type CapacityEstimate struct {
	Name              string `json:"name"`
	MaxPossible       int    `json:"max_possible"`
	MaxByVolume       int    `json:"max_by_volume"`
	MaxByWeight       *int   `json:"max_by_weight"`
	LimitingFactor    string `json:"limiting_factor"`
	RequestedQuantity int    `json:"requested_quantity"`
}

// Result is the complete outcome of one packing run.
type Result struct {
	ContainerFull           bool               `json:"container_full"`
	WeightLimitReached      bool               `json:"weight_limit_reached"`
	TotalBoxes              int                `json:"total_boxes"`
	TotalWeight             float64            `json:"total_weight"`
	SpaceUtilization        float64            `json:"space_utilization"`
	WeightUtilization       float64            `json:"weight_utilization"`
	WeightCapacity          *float64           `json:"weight_capacity,omitempty"`
	RemainingWeightCapacity *float64           `json:"remaining_weight_capacity,omitempty"`
	MaxPossibleBoxes        []CapacityEstimate `json:"max_possible_boxes"`
	BoxSummary              []TypeSummary      `json:"box_summary"`
}

// Placements returns every placed box in placement order.
func (r Result) Placements() []PlacedBox {
	var out []PlacedBox
	for _, summary := range r.BoxSummary {
		out = append(out, summary.Boxes...)
	}
	return out
}

// Request is a parsed packing request.
type Request struct {
	Container *Container `json:"container"`
	Boxes     []BoxType  `json:"boxes"`
}

// Packer describes the behaviour required from a container packer.
type Packer interface {
	Pack(ctx context.Context, container Container, boxes []BoxType) (Result, error)
}
