// pkg/export/xlsx.go

// Package export renders a field's cached observations as a spreadsheet
// for the dashboard's data download.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"soilwatch/entities"
)

const sheet = "Observations"

func Build(f *entities.Field, obs []entities.Observation) (*excelize.File, error) {
	x := excelize.NewFile()
	if err := x.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"Date", "Mean index", "Min index", "Max index", "Cloud cover %", "Data cover %", "Source"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := x.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, o := range obs {
		vals := []any{
			o.Date.Format("2006-01-02"),
			o.MeanIndex, o.MinIndex, o.MaxIndex,
			o.CloudCoverPct, o.DataCoverPct,
			o.Source,
		}
		for col, v := range vals {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := x.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	_ = x.SetColWidth(sheet, "A", "G", 14)
	return x, nil
}

func Filename(f *entities.Field) string {
	return fmt.Sprintf("field_%d_observations.xlsx", f.FieldID)
}
