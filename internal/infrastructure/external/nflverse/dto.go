// Package nflverse implements the nflverse play-by-play data client.
// Season data is published as gzipped CSV release assets; this package
// downloads, decodes and maps them into the domain play model.
package nflverse

import (
	"fmt"
	"strconv"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// CSV DOCUMENT
// ══════════════════════════════════════════════════════════════════════════════

// csvDocument is a parsed CSV payload: a header index plus raw rows. Values
// stay strings until the mapper asks for a typed view, so rows with partial
// data never abort the whole file.
type csvDocument struct {
	header map[string]int
	rows   [][]string
}

func newCSVDocument(records [][]string) (*csvDocument, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("csv payload has no header row")
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.TrimSpace(name)] = i
	}

	return &csvDocument{header: header, rows: records[1:]}, nil
}

// hasColumn reports whether the source provided the named column.
func (d *csvDocument) hasColumn(name string) bool {
	_, ok := d.header[name]
	return ok
}

// columns returns every header name the source provided.
func (d *csvDocument) columns() []string {
	out := make([]string, 0, len(d.header))
	for name := range d.header {
		out = append(out, name)
	}
	return out
}

// cell returns the raw value of a column in a row, or "" when the column is
// absent or the row is short. nflverse encodes NA as an empty string.
func (d *csvDocument) cell(row []string, col string) string {
	idx, ok := d.header[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// str returns a string cell.
func (d *csvDocument) str(row []string, col string) string {
	return d.cell(row, col)
}

// float returns a float cell, or nil when empty or unparseable.
func (d *csvDocument) float(row []string, col string) *float64 {
	raw := d.cell(row, col)
	if raw == "" || raw == "NA" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// intPtr returns an integer cell, or nil when empty. nflverse serializes
// some integer columns as floats ("1.0"), so it parses through float64.
func (d *csvDocument) intPtr(row []string, col string) *int {
	f := d.float(row, col)
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}

// intVal returns an integer cell, or 0 when empty.
func (d *csvDocument) intVal(row []string, col string) int {
	if p := d.intPtr(row, col); p != nil {
		return *p
	}
	return 0
}

// floatVal returns a float cell, or 0 when empty.
func (d *csvDocument) floatVal(row []string, col string) float64 {
	if p := d.float(row, col); p != nil {
		return *p
	}
	return 0
}

// flag returns a binary indicator cell. nflverse writes these as "1"/"0"
// or "1.0"/"0.0"; NA counts as false.
func (d *csvDocument) flag(row []string, col string) bool {
	f := d.float(row, col)
	return f != nil && *f != 0
}
