// Package export renders stored packing results as spreadsheet workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/eugenenazirov/container-loader/internal/packing"
	"github.com/eugenenazirov/container-loader/internal/storage"
)

// Sheet names in the exported workbook.
const (
	SummarySheet    = "Summary"
	PlacementsSheet = "Placements"
)

// ContentType is the MIME type of the workbook written by WriteXLSX.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteXLSX writes rec as a workbook with a Summary sheet (totals and one row
// per box type) and a Placements sheet (one row per placed box).
func WriteXLSX(w io.Writer, rec storage.Record) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	if _, err := f.NewSheet(PlacementsSheet); err != nil {
		return fmt.Errorf("create placements sheet: %w", err)
	}

	if err := writeRows(f, SummarySheet, summaryRows(rec)); err != nil {
		return err
	}
	if err := writeRows(f, PlacementsSheet, placementRows(rec.Result)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func summaryRows(rec storage.Record) [][]any {
	res := rec.Result
	rows := [][]any{
		{"Result ID", rec.ID},
		{"Created At", rec.CreatedAt.UTC().Format(time.RFC3339)},
	}
	if c := rec.Request.Container; c != nil {
		rows = append(rows,
			[]any{"Container", c.Name},
			[]any{"Length", c.Length},
			[]any{"Width", c.Width},
			[]any{"Height", c.Height},
		)
	}
	rows = append(rows,
		[]any{"Total Boxes", res.TotalBoxes},
		[]any{"Total Weight", res.TotalWeight},
		[]any{"Space Utilization (%)", res.SpaceUtilization},
		[]any{"Weight Utilization (%)", res.WeightUtilization},
		[]any{"Container Full", res.ContainerFull},
		[]any{"Weight Limit Reached", res.WeightLimitReached},
	)
	if res.WeightCapacity != nil && res.RemainingWeightCapacity != nil {
		rows = append(rows,
			[]any{"Weight Capacity", *res.WeightCapacity},
			[]any{"Remaining Weight Capacity", *res.RemainingWeightCapacity},
		)
	}

	estimates := make(map[string]packing.CapacityEstimate, len(res.MaxPossibleBoxes))
	for _, est := range res.MaxPossibleBoxes {
		estimates[est.Name] = est
	}

	rows = append(rows, nil, []any{"Box Type", "Requested", "Placed", "Not Placed", "Max Possible", "Limiting Factor"})
	for _, s := range res.BoxSummary {
		est := estimates[s.Name]
		rows = append(rows, []any{s.Name, s.RequestedQuantity, s.Count, s.NotPlaced, est.MaxPossible, est.LimitingFactor})
	}
	return rows
}

func placementRows(res packing.Result) [][]any {
	rows := [][]any{{"#", "Box Type", "X", "Y", "Z", "Length", "Width", "Height", "Weight"}}
	for i, b := range res.Placements() {
		rows = append(rows, []any{i + 1, b.Name, b.X, b.Y, b.Z, b.Length, b.Width, b.Height, b.Weight})
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell reference: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
