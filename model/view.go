package model

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lychee-technology/notionmap"
)

// DefaultIndexName is the index column name used by WithIndex("").
const DefaultIndexName = "index"

// View is a tabular presentation of database rows. Views are immutable;
// every operation returns a new view.
type View struct {
	db        *Database
	pages     []*Page
	columns   []string
	titleCol  string
	indexName string
}

// NewView presents pages with the columns of db's schema.
func NewView(db *Database, pages []*Page) *View {
	schema := db.Schema()
	return &View{
		db:       db,
		pages:    slices.Clone(pages),
		columns:  schema.ToDict().Names(),
		titleCol: schema.TitleColumn(),
	}
}

func (v *View) Database() *Database { return v.db }

// Columns returns the column headers, the index column first when present.
func (v *View) Columns() []string { return slices.Clone(v.columns) }

func (v *View) Pages() []*Page { return slices.Clone(v.pages) }

func (v *View) Len() int { return len(v.pages) }

func (v *View) HasIndex() bool { return v.indexName != "" }

// Clone returns an independent copy.
func (v *View) Clone() *View {
	return &View{
		db:        v.db,
		pages:     slices.Clone(v.pages),
		columns:   slices.Clone(v.columns),
		titleCol:  v.titleCol,
		indexName: v.indexName,
	}
}

// Row returns the native values of row idx in column order. The title column
// holds the page title, the index column the row number.
func (v *View) Row(idx int) ([]any, error) {
	if idx < 0 || idx >= len(v.pages) {
		return nil, notionmap.NewValidationError("row", fmt.Sprintf("index %d out of range [0, %d)", idx, len(v.pages)))
	}
	page := v.pages[idx]
	dict, err := page.ToDict()
	if err != nil {
		return nil, err
	}

	row := make([]any, 0, len(v.columns))
	for _, col := range v.columns {
		switch {
		case v.HasIndex() && col == v.indexName:
			row = append(row, idx)
		case col == v.titleCol:
			row = append(row, page.Title())
		default:
			value, ok := dict[col]
			if !ok {
				return nil, notionmap.NewMissingKeyError(col)
			}
			row = append(row, value)
		}
	}
	return row, nil
}

// Rows returns every row.
func (v *View) Rows() ([][]any, error) {
	rows := make([][]any, 0, len(v.pages))
	for idx := range v.pages {
		row, err := v.Row(idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", idx, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WithIndex prepends a row number column. The name must not be a column already.
func (v *View) WithIndex(name string) (*View, error) {
	if v.HasIndex() {
		return v, nil
	}
	if name == "" {
		name = DefaultIndexName
	}
	if slices.Contains(v.columns, name) {
		return nil, notionmap.NewValidationError("index", fmt.Sprintf("index '%s' is already a column name", name))
	}
	view := v.Clone()
	view.indexName = name
	view.columns = append([]string{name}, view.columns...)
	return view, nil
}

// WithoutIndex drops the index column.
func (v *View) WithoutIndex() *View {
	if !v.HasIndex() {
		return v
	}
	view := v.Clone()
	view.columns = slices.DeleteFunc(view.columns, func(col string) bool { return col == v.indexName })
	view.indexName = ""
	return view
}

// Head keeps the first n rows.
func (v *View) Head(n int) *View {
	view := v.Clone()
	view.pages = view.pages[:clamp(n, len(view.pages))]
	return view
}

// Limit is an alias of Head.
func (v *View) Limit(n int) *View { return v.Head(n) }

// Tail keeps the last n rows.
func (v *View) Tail(n int) *View {
	view := v.Clone()
	view.pages = view.pages[len(view.pages)-clamp(n, len(view.pages)):]
	return view
}

func clamp(n, size int) int {
	if n < 0 {
		return 0
	}
	if n > size {
		return size
	}
	return n
}

// String renders the view as an aligned text table.
func (v *View) String() string {
	var sb strings.Builder
	if err := v.WriteTable(&sb); err != nil {
		return err.Error()
	}
	return sb.String()
}

// WriteTable writes the view as an aligned text table.
func (v *View) WriteTable(w io.Writer) error {
	rows, err := v.Rows()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(v.columns, "\t"))
	rule := make([]string, len(v.columns))
	for i, col := range v.columns {
		rule[i] = strings.Repeat("-", len([]rune(col)))
	}
	fmt.Fprintln(tw, strings.Join(rule, "\t"))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = FormatCell(cell)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// WriteCSV writes the view without its index column as CSV with a header row.
func (v *View) WriteCSV(w io.Writer) error {
	view := v.WithoutIndex()
	rows, err := view.Rows()
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(view.columns); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = FormatCell(cell)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatCell renders a native value for tables and CSV.
func FormatCell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	case DateRangeValue:
		return v.Start.String() + " - " + v.End.String()
	case []string:
		return strings.Join(v, ", ")
	case []*Option:
		return joinStringers(v)
	case []*User:
		return joinStringers(v)
	case []*File:
		return joinStringers(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func joinStringers[T fmt.Stringer](items []T) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.String())
	}
	return strings.Join(parts, ", ")
}

// Select is not supported yet.
func (v *View) Select(columns ...string) (*View, error) {
	return nil, notionmap.NewNotImplementedError("view select")
}

// Apply is not supported yet.
func (v *View) Apply(fn func([]any) []any) (*View, error) {
	return nil, notionmap.NewNotImplementedError("view apply")
}

// Rename is not supported yet.
func (v *View) Rename(mapping map[string]string) (*View, error) {
	return nil, notionmap.NewNotImplementedError("view rename")
}

// Reverse is not supported yet.
func (v *View) Reverse() (*View, error) {
	return nil, notionmap.NewNotImplementedError("view reverse")
}

// Sort is not supported yet.
func (v *View) Sort(columns ...string) (*View, error) {
	return nil, notionmap.NewNotImplementedError("view sort")
}

// Filter is not supported yet.
func (v *View) Filter(pred func(*Page) bool) (*View, error) {
	return nil, notionmap.NewNotImplementedError("view filter")
}

// Append is not supported yet.
func (v *View) Append(pages ...*Page) (*View, error) {
	return nil, notionmap.NewNotImplementedError("view append")
}
