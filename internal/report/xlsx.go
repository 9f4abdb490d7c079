package report

import (
	"fmt"
	"io"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Summary"
	DishesSheet  = "Dishes"

	// ContentType is the media type of the workbook written by WriteMonthly
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var dishHeader = []interface{}{"Dish ID", "Name (EN)", "Name (ZH)", "Quantity", "Revenue"}

// Filename returns the download name of a monthly report
func Filename(r *models.MonthlyReport) string {
	return fmt.Sprintf("monthly-report-%04d-%02d.xlsx", r.Year, r.Month)
}

// WriteMonthly renders r as a workbook with a summary sheet and a per dish sheet
func WriteMonthly(w io.Writer, r *models.MonthlyReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(DishesSheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	average := ""
	if r.AverageRating != nil {
		average = r.AverageRating.StringFixed(2)
	}
	summary := [][]interface{}{
		{"Period", fmt.Sprintf("%04d-%02d", r.Year, r.Month)},
		{"Orders", r.OrderCount},
		{"Finished orders", r.FinishedCount},
		{"Revenue", r.Revenue.StringFixed(2)},
		{"Reviews", r.ReviewCount},
		{"Average rating", average},
	}
	for i, row := range summary {
		if err := setRow(f, SummarySheet, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return err
	}

	if err := setRow(f, DishesSheet, 1, dishHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(DishesSheet, "A1", "E1", bold); err != nil {
		return err
	}
	for i, d := range r.Dishes {
		row := []interface{}{d.DishID, d.NameEn, d.NameZh, d.Quantity, d.Revenue.StringFixed(2)}
		if err := setRow(f, DishesSheet, i+2, row); err != nil {
			return err
		}
	}

	for _, sheet := range []string{SummarySheet, DishesSheet} {
		if err := f.SetColWidth(sheet, "A", "E", 18); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
