// Package excel exports render series as spreadsheets for users who
// want the aggregated numbers behind a chart.
package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"notelens/domain/chart"
	"notelens/internal/errors"
)

const sheetName = "Series"

// Writer serializes render series to xlsx
type Writer struct{}

// NewWriter creates a series writer
func NewWriter() *Writer {
	return &Writer{}
}

// Write streams a workbook with one sheet holding the series data:
// label/value/count columns for 1-D charts, a row-by-column matrix for
// heatmaps.
func (w *Writer) Write(out io.Writer, series chart.RenderSeries) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return errors.Wrap(err, "failed to create sheet")
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return errors.Wrap(err, "failed to drop default sheet")
	}

	if series.ChartType == chart.TypeHeatmap {
		err = writeGrid(f, series)
	} else {
		err = writeBuckets(f, series)
	}
	if err != nil {
		return err
	}

	if err := f.Write(out); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}

func writeBuckets(f *excelize.File, series chart.RenderSeries) error {
	metric := series.Metric
	if metric == "" {
		metric = chart.CountMetric
	}
	header := []interface{}{series.AxisField, metric, "rows"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	for i, bucket := range series.Buckets {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{bucket.Label, bucket.Value, bucket.Count}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return errors.Wrap(err, "failed to write bucket row")
		}
	}
	return nil
}

func writeGrid(f *excelize.File, series chart.RenderSeries) error {
	header := make([]interface{}, 0, len(series.Cols)+1)
	header = append(header, series.RowField+" \\ "+series.ColField)
	for _, col := range series.Cols {
		header = append(header, col)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return errors.Wrap(err, "failed to write header")
	}

	values := make(map[string]map[string]float64, len(series.Rows))
	for _, cell := range series.Cells {
		if values[cell.Row] == nil {
			values[cell.Row] = make(map[string]float64)
		}
		values[cell.Row][cell.Col] = cell.Value
	}

	for i, rowLabel := range series.Rows {
		row := make([]interface{}, 0, len(series.Cols)+1)
		row = append(row, rowLabel)
		for _, col := range series.Cols {
			if v, ok := values[rowLabel][col]; ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return errors.Wrap(err, "failed to write grid row")
		}
	}
	return nil
}
