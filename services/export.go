package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"hotel-recommender/models"
)

type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"
)

const exportSheet = "Hotels"

func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case "", ExportXLSX:
		return ExportXLSX, nil
	case ExportCSV:
		return ExportCSV, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

func (f ExportFormat) ContentType() string {
	if f == ExportCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// ExportHotels writes hotels as a table with one column per aspect and
// sub-aspect found in any row.
func ExportHotels(w io.Writer, format ExportFormat, hotels []models.HotelSummary) error {
	header, rows := exportTable(hotels)
	switch format {
	case ExportCSV:
		return writeCSV(w, header, rows)
	case ExportXLSX:
		return writeXLSX(w, header, rows)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

func exportTable(hotels []models.HotelSummary) ([]string, [][]interface{}) {
	aspects := columnNames(hotels, func(h models.HotelSummary) map[string]float64 { return h.Aspects })
	subAspects := columnNames(hotels, func(h models.HotelSummary) map[string]float64 { return h.SubAspects })

	header := []string{"Hotel", "Rating", "Price", "Face Score", "Face Emoji", "Image URL"}
	for _, a := range aspects {
		header = append(header, "aspect:"+a)
	}
	for _, a := range subAspects {
		header = append(header, "subaspect:"+a)
	}

	rows := make([][]interface{}, 0, len(hotels))
	for _, h := range hotels {
		var rating interface{} = ""
		if h.Rating != nil {
			rating = *h.Rating
		}
		row := []interface{}{h.HotelName, rating, h.Price, h.FaceScore, h.FaceEmoji, h.ImageURL}
		for _, a := range aspects {
			row = append(row, h.Aspects[a])
		}
		for _, a := range subAspects {
			row = append(row, h.SubAspects[a])
		}
		rows = append(rows, row)
	}
	return header, rows
}

func columnNames(hotels []models.HotelSummary, pick func(models.HotelSummary) map[string]float64) []string {
	seen := make(map[string]bool)
	var names []string
	for _, h := range hotels {
		for name := range pick(h) {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func writeCSV(w io.Writer, header []string, rows [][]interface{}) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, v := range row {
			switch x := v.(type) {
			case float64:
				record[i] = strconv.FormatFloat(x, 'f', -1, 64)
			default:
				record[i] = fmt.Sprint(x)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, header []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	return f.Write(w)
}
