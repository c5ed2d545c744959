package packing

import (
	"errors"
	"testing"
)

func TestRequestValidate(t *testing.T) {
	t.Parallel()

	container := &Container{Length: 10, Width: 10, Height: 10}
	limited := &Container{Length: 10, Width: 10, Height: 10, WeightCapacity: ptr(50.0)}
	box := BoxType{Name: "cube", Length: 1, Width: 1, Height: 1}

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{name: "Valid", req: Request{Container: container, Boxes: []BoxType{box}}},
		{
			name: "ValidWithWeights",
			req:  Request{Container: limited, Boxes: []BoxType{{Name: "cube", Length: 1, Width: 1, Height: 1, Weight: 2, Quantity: ptr(3)}}},
		},
		{name: "MissingContainer", req: Request{Boxes: []BoxType{box}}, wantErr: ErrMissingContainer},
		{name: "ZeroDimension", req: Request{Container: &Container{Length: 10, Width: 0, Height: 10}, Boxes: []BoxType{box}}, wantErr: ErrInvalidContainer},
		{
			name:    "NonPositiveCapacity",
			req:     Request{Container: &Container{Length: 1, Width: 1, Height: 1, WeightCapacity: ptr(0.0)}, Boxes: []BoxType{box}},
			wantErr: ErrInvalidWeightCapacity,
		},
		{name: "NoBoxes", req: Request{Container: container}, wantErr: ErrMissingBoxes},
		{name: "UnnamedBox", req: Request{Container: container, Boxes: []BoxType{{Length: 1, Width: 1, Height: 1}}}, wantErr: ErrInvalidBox},
		{name: "NegativeBoxDimension", req: Request{Container: container, Boxes: []BoxType{{Name: "x", Length: -1, Width: 1, Height: 1}}}, wantErr: ErrInvalidBox},
		{name: "WeightlessBoxWithCapacity", req: Request{Container: limited, Boxes: []BoxType{box}}, wantErr: ErrMissingBoxWeight},
		{
			name:    "ZeroQuantity",
			req:     Request{Container: container, Boxes: []BoxType{{Name: "cube", Length: 1, Width: 1, Height: 1, Quantity: ptr(0)}}},
			wantErr: ErrInvalidQuantity,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if err := tc.req.Validate(); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}
