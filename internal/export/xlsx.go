package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"mfdiff/internal/mfdiff"
)

// Workbook sheet names.
const (
	SheetFiles = "Files"
	SheetSizes = "Sizes"
)

// WriteXLSX writes a workbook with one row per record on SheetFiles and an
// identity by period size matrix on SheetSizes.
func WriteXLSX(w io.Writer, g *mfdiff.Grouping) error {
	f, err := BuildWorkbook(g)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// BuildWorkbook builds the report workbook in memory.
func BuildWorkbook(g *mfdiff.Grouping) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetFiles); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetSizes); err != nil {
		f.Close()
		return nil, fmt.Errorf("creating sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	if err := writeFilesSheet(f, g, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSizesSheet(f, g, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeFilesSheet(f *excelize.File, g *mfdiff.Grouping, style int) error {
	header := make([]any, len(CSVHeader))
	for i, h := range CSVHeader {
		header[i] = h
	}
	if err := setRow(f, SheetFiles, 1, header); err != nil {
		return err
	}

	row := 2
	for identity, records := range g.All() {
		for _, r := range records {
			values := []any{identity, r.PeriodLabel, r.ActualName, r.Size, r.Created, r.Modified, r.RelativePath}
			if err := setRow(f, SheetFiles, row, values); err != nil {
				return err
			}
			row++
		}
	}

	f.SetColWidth(SheetFiles, "A", "A", 40)
	f.SetColWidth(SheetFiles, "B", "B", 10)
	f.SetColWidth(SheetFiles, "C", "C", 30)
	f.SetColWidth(SheetFiles, "D", "F", 18)
	f.SetColWidth(SheetFiles, "G", "G", 40)
	return finishHeader(f, SheetFiles, style)
}

// writeSizesSheet leaves a cell blank where the identity has no file in
// that period.
func writeSizesSheet(f *excelize.File, g *mfdiff.Grouping, style int) error {
	var labels []string
	column := make(map[string]int)
	for _, p := range g.Periods() {
		if _, ok := column[p.Label()]; ok {
			continue
		}
		column[p.Label()] = len(labels) + 2
		labels = append(labels, p.Label())
	}

	header := []any{"normalized_rel_path"}
	for _, l := range labels {
		header = append(header, l)
	}
	if err := setRow(f, SheetSizes, 1, header); err != nil {
		return err
	}

	row := 2
	for identity, records := range g.All() {
		values := make([]any, len(labels)+1)
		values[0] = identity
		for _, r := range records {
			if col, ok := column[r.PeriodLabel]; ok {
				values[col-1] = r.Size
			}
		}
		if err := setRow(f, SheetSizes, row, values); err != nil {
			return err
		}
		row++
	}

	f.SetColWidth(SheetSizes, "A", "A", 40)
	return finishHeader(f, SheetSizes, style)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func finishHeader(f *excelize.File, sheet string, style int) error {
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}
	err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		return fmt.Errorf("freezing %s header: %w", sheet, err)
	}
	return nil
}
