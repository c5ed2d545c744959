package packing

import "errors"

var (
	// ErrMissingContainer is returned when the request carries no container.
	ErrMissingContainer = errors.New("container dimensions (length, width, height) are required")
	// ErrInvalidContainer is returned when a container dimension is not positive.
	ErrInvalidContainer = errors.New("container dimensions must be positive numbers")
	// ErrInvalidWeightCapacity is returned when a provided weight capacity is not positive.
	ErrInvalidWeightCapacity = errors.New("container weight capacity must be a positive number")
	// ErrMissingBoxes is returned when the request carries no box types.
	ErrMissingBoxes = errors.New("at least one box type is required")
	// ErrInvalidBox is returned when a box type lacks a name or a positive dimension.
	ErrInvalidBox = errors.New("box is missing required fields (name, length, width, height)")
	// ErrMissingBoxWeight is returned when a weight-limited container receives a weightless box.
	ErrMissingBoxWeight = errors.New("box must have a positive weight when container has weight capacity")
	// ErrInvalidQuantity is returned when a provided quantity is below one.
	ErrInvalidQuantity = errors.New("box has invalid quantity, must be a positive integer")
	// ErrPackCanceled is returned when the context ends before packing completes.
	ErrPackCanceled = errors.New("packing canceled before completion")
)
