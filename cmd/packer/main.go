// Command packer runs a single packing calculation: it reads one JSON request,
// writes one JSON result and exits. Malformed requests still produce a result
// record carrying an error message.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/container-loader/internal/logging"
	"github.com/eugenenazirov/container-loader/internal/packing"
)

// errMissingInput mirrors the message callers of the one-shot process match on.
var errMissingInput = errors.New("Container and boxes data are required")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run returns the process exit status. Only unusable flags or an unwritable
// output destination are failures; a bad request is reported in the record.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	app := kingpin.New("packer", "Packs one container from a JSON request read on stdin")
	app.ErrorWriter(stderr)
	app.UsageWriter(stderr)
	input := app.Flag("input", "Read the request from this file instead of stdin").String()
	output := app.Flag("output", "Write the result to this file instead of stdout").String()
	timeout := app.Flag("timeout", "Abort the calculation after this long (0 disables)").Default("0s").Duration()
	efficiency := app.Flag("packing-efficiency", "Fraction of the volume bound used for default quantities").
		Default(fmt.Sprint(packing.DefaultPackingEfficiency)).Float64()
	logLevel := app.Flag("log-level", "Log level for diagnostics written to stderr").Default("warn").String()

	if _, err := app.Parse(args); err != nil {
		fmt.Fprintf(stderr, "packer: %v\n", err)
		return 2
	}

	logger, err := logging.New(*logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "packer: %v\n", err)
		return 2
	}
	defer func() {
		_ = logger.Sync()
	}()

	in := stdin
	if *input != "" {
		f, err := os.Open(*input)
		if err != nil {
			logger.Warn("failed to open input", zap.String("path", *input), zap.Error(err))
			in = errReader{err: err}
		} else {
			defer f.Close()
			in = f
		}
	}

	out := stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			logger.Error("failed to create output", zap.String("path", *output), zap.Error(err))
			return 1
		}
		defer f.Close()
		out = f
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	packer := packing.New(
		packing.WithPackingEfficiency(*efficiency),
		packing.WithLogger(logger.Named("packer")),
	)

	start := time.Now()
	record := calculate(ctx, packer, in)
	logger.Debug("calculation finished", zap.Duration("duration", time.Since(start)))

	if err := writeRecord(out, record); err != nil {
		logger.Error("failed to write result", zap.Error(err))
		return 1
	}
	return 0
}

// calculate never fails; any problem becomes the fallback record.
func calculate(ctx context.Context, packer packing.Packer, in io.Reader) any {
	var raw json.RawMessage
	if err := json.NewDecoder(in).Decode(&raw); err != nil {
		return newErrorRecord(err)
	}
	if err := checkRequired(raw); err != nil {
		return newErrorRecord(err)
	}

	var req packing.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return newErrorRecord(err)
	}

	result, err := packer.Pack(ctx, *req.Container, req.Boxes)
	if err != nil {
		return newErrorRecord(err)
	}
	return result
}

var (
	containerKeys = []string{"length", "width", "height"}
	boxKeys       = []string{"name", "length", "width", "height"}
)

// checkRequired rejects requests whose container or boxes lack the keys the
// packer reads. Present but degenerate values are left to the packer.
func checkRequired(raw json.RawMessage) error {
	var shape struct {
		Container map[string]json.RawMessage   `json:"container"`
		Boxes     []map[string]json.RawMessage `json:"boxes"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return err
	}
	if len(shape.Container) == 0 || len(shape.Boxes) == 0 {
		return errMissingInput
	}
	if key, ok := missingKey(shape.Container, containerKeys); ok {
		return fmt.Errorf("container is missing %q", key)
	}
	for i, box := range shape.Boxes {
		if key, ok := missingKey(box, boxKeys); ok {
			return fmt.Errorf("box at index %d is missing %q", i, key)
		}
	}
	return nil
}

func missingKey(obj map[string]json.RawMessage, keys []string) (string, bool) {
	for _, key := range keys {
		v, ok := obj[key]
		if !ok || string(v) == "null" {
			return key, true
		}
	}
	return "", false
}

type errorRecord struct {
	Error                   string                `json:"error"`
	ContainerFull           bool                  `json:"container_full"`
	WeightLimitReached      bool                  `json:"weight_limit_reached"`
	TotalBoxes              int                   `json:"total_boxes"`
	TotalWeight             float64               `json:"total_weight"`
	SpaceUtilization        float64               `json:"space_utilization"`
	WeightUtilization       float64               `json:"weight_utilization"`
	WeightCapacity          float64               `json:"weight_capacity"`
	RemainingWeightCapacity float64               `json:"remaining_weight_capacity"`
	BoxSummary              []packing.TypeSummary `json:"box_summary"`
}

func newErrorRecord(err error) errorRecord {
	return errorRecord{
		Error:      err.Error(),
		BoxSummary: []packing.TypeSummary{},
	}
}

func writeRecord(w io.Writer, record any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

// errReader defers an input open failure so it surfaces as a fallback record.
type errReader struct {
	err error
}

func (r errReader) Read([]byte) (int, error) {
	return 0, r.err
}
