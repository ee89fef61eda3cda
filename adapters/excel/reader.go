package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"craftcheck/domain/crafting"
)

// MaterialReader reads a material table from an Excel or CSV file
type MaterialReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewMaterialReader picks the format from the file extension
func NewMaterialReader(filePath string) *MaterialReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &MaterialReader{filePath: filePath, fileType: fileType}
}

// IsSheetFile reports whether a path is something MaterialReader can open
func IsSheetFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".csv":
		return true
	}
	return false
}

// ReadMaterials parses every data row into a MaterialInfo.
// Rows without an id are skipped; a missing tier defaults to 1.
func (r *MaterialReader) ReadMaterials() ([]crafting.MaterialInfo, error) {
	data, err := r.ReadSheet()
	if err != nil {
		return nil, err
	}
	if !hasHeader(data.Headers, ColumnID) || !hasHeader(data.Headers, ColumnCategory) {
		return nil, fmt.Errorf("material sheet needs %q and %q columns, got %v", ColumnID, ColumnCategory, data.Headers)
	}

	out := make([]crafting.MaterialInfo, 0, len(data.Rows))
	skipped := 0
	for i, row := range data.Rows {
		id := strings.TrimSpace(row[ColumnID])
		if id == "" {
			skipped++
			continue
		}
		tier := crafting.MinTier
		if raw := strings.TrimSpace(row[ColumnTier]); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d (%s): invalid tier %q", i+2, id, raw)
			}
			tier = v
		}
		rarity := crafting.RarityCommon
		if raw := strings.TrimSpace(row[ColumnRarity]); raw != "" {
			rarity = crafting.ParseRarity(raw)
		}
		out = append(out, crafting.MaterialInfo{
			ID:       id,
			Name:     strings.TrimSpace(row[ColumnName]),
			Category: crafting.ParseCategory(row[ColumnCategory]),
			Tier:     crafting.ClampTier(tier),
			Rarity:   rarity,
			Element:  crafting.ParseElement(row[ColumnElement]),
		})
	}
	if skipped > 0 {
		log.Printf("[MaterialReader] Skipped %d rows without an id", skipped)
	}
	log.Printf("[MaterialReader] Read %d materials from %s", len(out), r.filePath)
	return out, nil
}

// ReadSheet reads the raw header and rows
func (r *MaterialReader) ReadSheet() (*SheetData, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

func (r *MaterialReader) readExcelData() (*SheetData, error) {
	start := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(DefaultSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", DefaultSheet, err)
	}
	log.Printf("[MaterialReader] %s read in %.2fms (%d rows)", DefaultSheet, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	if len(rows) < 1 {
		return nil, fmt.Errorf("Excel file has no header row")
	}
	return processRows(rows), nil
}

func (r *MaterialReader) readCSVData() (*SheetData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("CSV file has no header row")
	}
	return processRows(rows), nil
}

// processRows keys each data row by its lower-cased header. Short rows (excelize
// trims trailing empty cells) read as empty strings.
func processRows(rows [][]string) *SheetData {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	data := &SheetData{Headers: headers, Rows: make([]RawRowData, 0, len(rows)-1)}
	for _, raw := range rows[1:] {
		row := make(RawRowData, len(headers))
		for i, h := range headers {
			if i < len(raw) {
				row[h] = raw[i]
			} else {
				row[h] = ""
			}
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

func hasHeader(headers []string, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}
