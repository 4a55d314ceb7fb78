package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"restobackend/internal/domain"

	"github.com/xuri/excelize/v2"
)

var headerAliases = map[string]string{
	"name":            "name",
	"ingredient":      "name",
	"ingredient name": "name",
	"insumo":          "name",
	"ingrediente":     "name",
	"nombre":          "name",
	"unit":            "unit",
	"unidad":          "unit",
	"stock":           "stock",
	"quantity":        "stock",
	"qty":             "stock",
	"cantidad":        "stock",
	"min stock":       "min_stock",
	"minimum stock":   "min_stock",
	"stock minimo":    "min_stock",
	"stock mínimo":    "min_stock",
	"cost per unit":   "cost_per_unit",
	"unit cost":       "cost_per_unit",
	"cost":            "cost_per_unit",
	"costo":           "cost_per_unit",
	"costo unitario":  "cost_per_unit",
}

// ParseIngredientRows reads a stock-count sheet. name and stock are
// required columns; unit, min_stock and cost_per_unit are optional.
func ParseIngredientRows(reader io.Reader) ([]domain.IngredientStockRow, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}

	colMap := mapColumns(rows[0])
	for _, required := range []string{"name", "stock"} {
		if _, ok := colMap[required]; !ok {
			return nil, fmt.Errorf("missing required column: %s", required)
		}
	}

	result := make([]domain.IngredientStockRow, 0, len(rows)-1)
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		name := strings.TrimSpace(readCell(cells, colMap["name"]))
		if name == "" {
			continue
		}

		stock, err := parseFloat(readCell(cells, colMap["stock"]))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid stock: %w", index+1, err)
		}

		row := domain.IngredientStockRow{Name: name, Stock: stock}
		if idx, ok := colMap["unit"]; ok {
			row.Unit = strings.TrimSpace(readCell(cells, idx))
		}
		if row.MinStock, err = optionalFloat(cells, colMap, "min_stock"); err != nil {
			return nil, fmt.Errorf("row %d invalid min_stock: %w", index+1, err)
		}
		if row.CostPerUnit, err = optionalFloat(cells, colMap, "cost_per_unit"); err != nil {
			return nil, fmt.Errorf("row %d invalid cost_per_unit: %w", index+1, err)
		}

		result = append(result, row)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("excel file has no valid data rows")
	}
	return result, nil
}

func optionalFloat(cells []string, colMap map[string]int, column string) (*float64, error) {
	idx, ok := colMap[column]
	if !ok {
		return nil, nil
	}
	raw := strings.TrimSpace(readCell(cells, idx))
	if raw == "" {
		return nil, nil
	}
	value, err := parseFloat(raw)
	if err != nil {
		return nil, err
	}
	if value < 0 {
		return nil, fmt.Errorf("cannot be negative")
	}
	return &value, nil
}

func mapColumns(header []string) map[string]int {
	mapped := make(map[string]int)
	for idx, col := range header {
		normalized := normalizeHeader(col)
		if normalized == "" {
			continue
		}
		canonical, ok := headerAliases[normalized]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

func normalizeHeader(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\ufeff")
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "_", " ")
	value = strings.Join(strings.Fields(value), " ")
	return value
}

func readCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parseFloat accepts thousands separators ("1,250.5").
func parseFloat(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("value is empty")
	}
	parsed, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	return parsed, nil
}
