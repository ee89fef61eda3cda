package preprocess

import "fmt"

// DumpHeaders returns column headers for DumpRows
func DumpHeaders(s Shape) []string {
	if s.IsImage() {
		return []string{"y", "x", "r", "g", "b"}
	}
	return []string{"index", "value"}
}

// DumpRows flattens a tensor into table rows for golden-value comparison.
// Images produce one row per pixel in row-major order; feature vectors one row per index.
func DumpRows(tensor []float32, s Shape) ([][]interface{}, error) {
	if len(tensor) != s.Length {
		return nil, fmt.Errorf("tensor length %d does not match shape length %d", len(tensor), s.Length)
	}
	if !s.IsImage() {
		rows := make([][]interface{}, len(tensor))
		for i, v := range tensor {
			rows[i] = []interface{}{i, float64(v)}
		}
		return rows, nil
	}

	rows := make([][]interface{}, 0, s.Height*s.Width)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			i := (y*s.Width + x) * s.Channels
			row := []interface{}{y, x}
			for c := 0; c < s.Channels; c++ {
				row = append(row, float64(tensor[i+c]))
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// NonZero counts the non-zero entries of a tensor
func NonZero(tensor []float32) int {
	n := 0
	for _, v := range tensor {
		if v != 0 {
			n++
		}
	}
	return n
}
