// Package render turns fetched records into the tool's two output shapes: an
// aligned text table and pretty-printed JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"tmc/internal/fieldpath"
)

// NoDataMarker is written in place of a table when a query yields nothing.
const NoDataMarker = "- no data -"

// Column maps a field path to a table column.
type Column struct {
	// Path resolves the cell value within each record.
	Path string
	// Label heads the column. Empty defaults to Path.
	Label string
}

func (c Column) label() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Path
}

// TableWriter renders records as an aligned table: a 1-based index column
// with a blank header, one column per field path, cells joined with " | ",
// and a dashed separator row joined with " + " between header and data.
// Column widths fit the widest content, so rendering happens only after the
// full record set is materialized.
type TableWriter struct {
	// columns describe the table's field paths and labels.
	columns []Column
	// paths are the column paths, parsed once and reused for every record.
	paths []fieldpath.Path
	// rows contains the resolved cell values.
	rows [][]string
	// columnWidths tracks the maximum width of each column.
	columnWidths []int
	// output is the writer to output to.
	output io.Writer
}

// NewTableWriter creates a table writer for the given columns.
func NewTableWriter(output io.Writer, columns []Column) *TableWriter {
	w := &TableWriter{
		columns:      columns,
		paths:        make([]fieldpath.Path, len(columns)),
		columnWidths: make([]int, len(columns)),
		output:       output,
	}
	for i, c := range columns {
		w.paths[i] = fieldpath.Parse(c.Path)
		w.columnWidths[i] = len(c.label())
	}
	return w
}

// Append resolves the column paths against one record and adds the row.
// Fields the record does not have become empty cells.
func (w *TableWriter) Append(record any) {
	row := make([]string, len(w.columns))
	for i := range w.columns {
		v, ok := fieldpath.Navigate(record, w.paths[i])
		if !ok {
			continue
		}
		row[i] = Cell(v)
		if len(row[i]) > w.columnWidths[i] {
			w.columnWidths[i] = len(row[i])
		}
	}
	w.rows = append(w.rows, row)
}

// Render writes the table. An empty record set writes the no-data marker
// instead.
func (w *TableWriter) Render() {
	if len(w.rows) == 0 {
		fmt.Fprintln(w.output, NoDataMarker)
		return
	}

	indexWidth := len(strconv.Itoa(len(w.rows)))

	header := make([]string, 0, len(w.columns)+1)
	header = append(header, strings.Repeat(" ", indexWidth))
	for _, c := range w.columns {
		header = append(header, c.label())
	}
	w.printRow(header, indexWidth, " | ")

	separator := make([]string, 0, len(w.columns)+1)
	separator = append(separator, strings.Repeat("-", indexWidth))
	for _, width := range w.columnWidths {
		separator = append(separator, strings.Repeat("-", width))
	}
	w.printRow(separator, indexWidth, " + ")

	for i, row := range w.rows {
		cells := append([]string{strconv.Itoa(i + 1)}, row...)
		w.printRow(cells, indexWidth, " | ")
	}
}

// printRow pads every cell to its column width, joins with the separator,
// and trims trailing space so lines end at content.
func (w *TableWriter) printRow(cells []string, indexWidth int, sep string) {
	var sb strings.Builder
	for i, cell := range cells {
		if i > 0 {
			sb.WriteString(sep)
		}
		width := indexWidth
		if i > 0 {
			width = w.columnWidths[i-1]
		}
		sb.WriteString(fmt.Sprintf(fmt.Sprintf("%%-%ds", width), cell))
	}
	fmt.Fprintln(w.output, strings.TrimRight(sb.String(), " "))
}

// Cell formats one extracted value for table output. Scalars print plainly;
// nested values fall back to compact JSON.
func Cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return flatten(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(raw)
	}
}

// AutoColumns derives a header set from the first record: its top-level
// scalar fields, sorted. It is the fallback when neither the query nor the
// caller names any headers.
func AutoColumns(records []any) []Column {
	if len(records) == 0 {
		return nil
	}
	first, ok := records[0].(map[string]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(first))
	for name, v := range first {
		if isScalar(v) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	columns := make([]Column, 0, len(names))
	for _, name := range names {
		columns = append(columns, Column{Path: name})
	}
	return columns
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, float64, json.Number:
		return true
	}
	return false
}

// flatten keeps cell content on one line. Embedded newlines or tabs would
// break row alignment, so whitespace runs collapse to single spaces.
func flatten(s string) string {
	if !strings.ContainsAny(s, "\n\r\t") {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}

// JSON pretty-prints a value with two-space indentation and a trailing
// newline. Map keys come out sorted, so output is stable.
func JSON(output io.Writer, value any) error {
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(output, string(raw))
	return err
}
