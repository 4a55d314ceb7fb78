package excel

import (
	"fmt"
	"io"

	"restobackend/internal/forecast"
	"restobackend/internal/profit"

	"github.com/xuri/excelize/v2"
)

const (
	ForecastSheet = "Forecast"
	ProfitSheet   = "Profit"
)

var forecastHeaders = []string{
	"Ingredient", "Unit", "Stock", "Min stock", "Consumed", "Avg daily", "Days remaining", "Status", "Depletes on",
}

var profitHeaders = []string{
	"Product", "Units", "Revenue", "Cost", "Commission", "Profit",
}

// WriteForecastWorkbook renders the depletion forecast, and the period
// summary when given, into an xlsx workbook written to w.
func WriteForecastWorkbook(w io.Writer, result forecast.Forecast, summary *profit.PeriodSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ForecastSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeHeader(f, ForecastSheet, forecastHeaders, headerStyle); err != nil {
		return err
	}
	for idx, p := range result.Predictions {
		values := []any{
			p.Name,
			p.Unit,
			p.CurrentStock,
			p.MinStock,
			p.TotalConsumed,
			p.AvgDailyConsumption,
			coverageCell(p.DaysRemaining),
			string(p.Status),
			"",
		}
		if p.ProjectedDepletion != nil {
			values[8] = p.ProjectedDepletion.Format("2006-01-02")
		}
		if err := writeRow(f, ForecastSheet, idx+2, values); err != nil {
			return err
		}
	}
	if result.InsufficientData {
		if err := f.SetCellValue(ForecastSheet, "A2", "No completed sales in the lookback window"); err != nil {
			return fmt.Errorf("write forecast note: %w", err)
		}
	}

	if summary != nil {
		if _, err := f.NewSheet(ProfitSheet); err != nil {
			return fmt.Errorf("create profit sheet: %w", err)
		}
		if err := writeHeader(f, ProfitSheet, profitHeaders, headerStyle); err != nil {
			return err
		}
		row := 2
		for _, p := range summary.Products {
			values := []any{
				p.ProductName,
				p.Units,
				p.Revenue.InexactFloat64(),
				p.Cost.InexactFloat64(),
				p.Commission.InexactFloat64(),
				p.Profit.InexactFloat64(),
			}
			if err := writeRow(f, ProfitSheet, row, values); err != nil {
				return err
			}
			row++
		}
		totals := []any{
			"Total",
			summary.Sales,
			summary.Revenue.InexactFloat64(),
			summary.Cost.InexactFloat64(),
			summary.Commission.InexactFloat64(),
			summary.NetProfit.InexactFloat64(),
		}
		if err := writeRow(f, ProfitSheet, row, totals); err != nil {
			return err
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		end, _ := excelize.CoordinatesToCellName(len(profitHeaders), row)
		if err := f.SetCellStyle(ProfitSheet, start, end, headerStyle); err != nil {
			return fmt.Errorf("style totals: %w", err)
		}
	}

	if err := f.SetColWidth(ForecastSheet, "A", "A", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func coverageCell(c forecast.Coverage) any {
	if c.IsFinite() {
		return c.Days
	}
	return string(c.Kind)
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for idx, header := range headers {
		cell, err := excelize.CoordinatesToCellName(idx+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("write header %s: %w", cell, err)
		}
	}
	end, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", end, style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
