package excel

// RawRowData is one sheet row keyed by lower-cased header
type RawRowData map[string]string

// SheetData is a parsed header plus data rows
type SheetData struct {
	Headers []string
	Rows    []RawRowData
}

// Material sheet columns; only id and category are required
const (
	ColumnID       = "id"
	ColumnName     = "name"
	ColumnCategory = "category"
	ColumnTier     = "tier"
	ColumnRarity   = "rarity"
	ColumnElement  = "element"
)

// DefaultSheet is the sheet read from and written to
const DefaultSheet = "Sheet1"
