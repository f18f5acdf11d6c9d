package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"restaurant-demand-api/pkg/models"

	"github.com/xuri/excelize/v2"
)

// 列名の候補（先頭が正式名）
var (
	dateColumns     = []string{"Date", "日付"}
	dayColumns      = []string{"Day", "day_of_week", "曜日"}
	sessionColumns  = []string{"Session", "時間帯"}
	waiterColumns   = []string{"Waiter", "担当者"}
	weatherColumns  = []string{"Weather", "天気"}
	categoryColumns = []string{"Category", "カテゴリ"}
	quantityColumns = []string{"Quantity", "数量", "販売数"}
)

// findIndex finds the index of the first candidate in a slice
func findIndex(slice []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, item := range slice {
			if strings.EqualFold(strings.TrimSpace(item), candidate) {
				return i
			}
		}
	}
	return -1
}

// LoadSalesRecords 売上明細ファイル（.csv / .xlsx）を読み込む
func LoadSalesRecords(path string) ([]models.SaleRecord, error) {
	var rows [][]string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open excel file %s: %w", path, err)
		}
		defer f.Close()
		rows, err = f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("failed to read excel rows: %w", err)
		}
	default:
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sales data %s: %w", path, err)
		}
		defer file.Close()
		return ParseSalesCSV(file)
	}

	return parseSalesRows(rows)
}

// ParseSalesCSV CSVストリームから売上明細を読み込む
func ParseSalesCSV(r io.Reader) ([]models.SaleRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return parseSalesRows(rows)
}

func parseSalesRows(rows [][]string) ([]models.SaleRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sales data has no header row", ErrInsufficientData)
	}

	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	idx := map[string]int{
		"Date":     findIndex(header, dateColumns...),
		"Day":      findIndex(header, dayColumns...),
		"Session":  findIndex(header, sessionColumns...),
		"Waiter":   findIndex(header, waiterColumns...),
		"Weather":  findIndex(header, weatherColumns...),
		"Category": findIndex(header, categoryColumns...),
		"Quantity": findIndex(header, quantityColumns...),
	}

	var missingCols []string
	for _, name := range []string{"Date", "Day", "Session", "Waiter", "Weather", "Category", "Quantity"} {
		if idx[name] == -1 {
			missingCols = append(missingCols, name)
		}
	}
	if len(missingCols) > 0 {
		return nil, fmt.Errorf("required columns not found: %s (header: %v)", strings.Join(missingCols, ", "), header)
	}

	cell := func(row []string, name string) string {
		i := idx[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]models.SaleRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}

		qtyStr := cell(row, "Quantity")
		qty, err := strconv.ParseFloat(qtyStr, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid quantity %q", n+1, qtyStr)
		}

		records = append(records, models.SaleRecord{
			Date:     cell(row, "Date"),
			Day:      cell(row, "Day"),
			Session:  cell(row, "Session"),
			Waiter:   cell(row, "Waiter"),
			Weather:  cell(row, "Weather"),
			Category: cell(row, "Category"),
			Quantity: qty,
		})
	}

	return records, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
