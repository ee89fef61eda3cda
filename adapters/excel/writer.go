package excel

import (
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"

	"craftcheck/domain/crafting"
)

// TensorWriter exports encoded tensors to a workbook for golden-value review
type TensorWriter struct {
	f *excelize.File
}

// NewTensorWriter starts an empty workbook
func NewTensorWriter() *TensorWriter {
	return &TensorWriter{f: excelize.NewFile()}
}

// WriteSheet writes headers and rows to the named sheet, creating it if needed.
// The first sheet written replaces the default Sheet1.
func (w *TensorWriter) WriteSheet(name string, headers []string, rows [][]interface{}) error {
	idx, err := w.f.GetSheetIndex(name)
	if err != nil {
		return err
	}
	if idx == -1 {
		if _, err := w.f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := w.f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		r := row
		if err := w.f.SetSheetRow(name, cell, &r); err != nil {
			return err
		}
	}

	if name != DefaultSheet {
		if i, _ := w.f.GetSheetIndex(DefaultSheet); i != -1 && len(w.f.GetSheetList()) > 1 {
			if err := w.f.DeleteSheet(DefaultSheet); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteTensor writes one discipline's tensor to a sheet named after it
func (w *TensorWriter) WriteTensor(d crafting.Discipline, headers []string, rows [][]interface{}) error {
	return w.WriteSheet(string(d), headers, rows)
}

// SaveAs writes the workbook to path
func (w *TensorWriter) SaveAs(path string) error {
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	log.Printf("[TensorWriter] Saved %s", path)
	return nil
}

// Close releases the workbook
func (w *TensorWriter) Close() error {
	return w.f.Close()
}

// WriteMaterials stores a material table in the layout MaterialReader reads
func WriteMaterials(path string, materials []crafting.MaterialInfo) error {
	w := NewTensorWriter()
	defer w.Close()

	rows := make([][]interface{}, len(materials))
	for i, m := range materials {
		rows[i] = []interface{}{m.ID, m.Name, string(m.Category), m.Tier, string(m.Rarity), string(m.Element)}
	}
	headers := []string{ColumnID, ColumnName, ColumnCategory, ColumnTier, ColumnRarity, ColumnElement}
	if err := w.WriteSheet(DefaultSheet, headers, rows); err != nil {
		return err
	}
	return w.SaveAs(path)
}
