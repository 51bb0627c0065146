package csv

import "strings"

// utf8BOM is stripped from the first cell of the input if present.
const utf8BOM = "\uFEFF"

// StripHeaderBOM removes a UTF-8 BOM from the first cell if present.
func StripHeaderBOM(cells []string) []string {
	if len(cells) == 0 {
		return cells
	}
	cells[0] = strings.TrimPrefix(cells[0], utf8BOM)
	return cells
}
