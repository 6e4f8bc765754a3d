package airquality

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Source column names.
const (
	ColumnDatetime      = "datetime"
	ColumnStation       = "station"
	ColumnCategory      = "Category"
	ColumnWindDirection = "wd"
)

const timestampLayout = "2006-01-02 15:04:05"

var timestampLayouts = []string{
	timestampLayout,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

var (
	// ErrParse matches every *ParseError.
	ErrParse = errors.New("malformed timestamp")

	// ErrMissingColumn is returned when a required column is absent from the source.
	ErrMissingColumn = errors.New("missing required column")
)

// ParseError reports a timestamp that could not be parsed.
type ParseError struct {
	Row   int // 1-based data row, header excluded
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse timestamp %q: %v", e.Row, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ParseTable reads a comma-separated readings table. Only the timestamp column is
// validated; unparseable numeric cells and unknown categories are kept as missing or
// unknown values.
func ParseTable(r io.Reader) (*Table, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read csv: %w", df.Err)
	}

	names := make(map[string]string, df.Ncol())
	for _, n := range df.Names() {
		names[strings.TrimSpace(n)] = n
	}

	for _, required := range []string{ColumnDatetime, ColumnStation} {
		if _, ok := names[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	timestamps := stringColumn(df, names[ColumnDatetime])
	stations := stringColumn(df, names[ColumnStation])
	categories := stringColumn(df, names[ColumnCategory])
	winds := stringColumn(df, names[ColumnWindDirection])

	var columns []Parameter
	values := make(map[Parameter][]float64)
	for _, p := range allParams {
		name, ok := names[string(p)]
		if !ok {
			continue
		}
		columns = append(columns, p)
		values[p] = floatColumn(df, name)
	}

	n := df.Nrow()
	rows := make([]*Reading, 0, n)
	for i := 0; i < n; i++ {
		ts, err := parseTimestamp(timestamps[i])
		if err != nil {
			return nil, &ParseError{Row: i + 1, Value: timestamps[i], Err: err}
		}

		vals := make(map[Parameter]float64, len(columns))
		for _, p := range columns {
			vals[p] = values[p][i]
		}
		rows = append(rows, NewReading(ts, stations[i], categories[i], winds[i], vals))
	}

	return NewTable(rows, columns), nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range timestampLayouts {
		ts, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return ts.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// stringColumn returns the trimmed cells of a column; NA cells and absent columns yield "".
func stringColumn(df dataframe.DataFrame, name string) []string {
	out := make([]string, df.Nrow())
	if name == "" {
		return out
	}
	col := df.Col(name)
	for i := 0; i < col.Len(); i++ {
		el := col.Elem(i)
		if el.IsNA() {
			continue
		}
		out[i] = strings.TrimSpace(el.String())
	}
	return out
}

// floatColumn parses a column as float64, mapping empty and unparseable cells to NaN.
func floatColumn(df dataframe.DataFrame, name string) []float64 {
	cells := stringColumn(df, name)
	out := make([]float64, len(cells))
	for i, c := range cells {
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

// WriteCSV writes the table in the source layout. Missing values are written as empty cells.
func WriteCSV(w io.Writer, t *Table) error {
	columns := t.Columns()

	header := []string{ColumnDatetime, ColumnStation}
	for _, p := range columns {
		header = append(header, string(p))
	}
	header = append(header, ColumnWindDirection, ColumnCategory)

	// gota refuses to build a frame without data rows.
	if t.Len() == 0 {
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	}

	records := make([][]string, 0, t.Len()+1)
	records = append(records, header)
	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		rec := make([]string, 0, len(header))
		rec = append(rec, r.Timestamp.Format(timestampLayout), r.Station)
		for _, p := range columns {
			m := r.Measurement(p)
			if m.Valid {
				rec = append(rec, strconv.FormatFloat(m.Value, 'f', -1, 64))
			} else {
				rec = append(rec, "")
			}
		}
		rec = append(rec, r.WindDirection, r.CategoryLabel)
		records = append(records, rec)
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return fmt.Errorf("build export frame: %w", df.Err)
	}
	return df.WriteCSV(w)
}
