// Package packing loads rectangular boxes into a single rectangular container.
// It enumerates axis-aligned rotations, generates corner-point candidates from
// the boxes already placed, and fills the container first-fit, largest box
// type first. The result carries per-type summaries, capacity estimates and
// utilization figures. Placement is greedy and never backtracks.
package packing
