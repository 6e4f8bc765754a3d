package airquality

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownParameter is returned when a parameter name is not a dataset column.
var ErrUnknownParameter = errors.New("unknown parameter")

// Category is the ordinal air-quality classification of a reading.
// The zero value is the least severe category.
type Category int

const (
	CategoryGood Category = iota
	CategoryModerate
	CategoryUnhealthySensitive
	CategoryUnhealthy
	CategoryVeryUnhealthy
	CategoryHazardous

	// CategoryUnknown marks labels outside the fixed domain. It sorts after every known category.
	CategoryUnknown
)

var categoryLabels = [...]string{
	CategoryGood:               "Good",
	CategoryModerate:           "Moderate",
	CategoryUnhealthySensitive: "Unhealthy for Sensitive Groups",
	CategoryUnhealthy:          "Unhealthy",
	CategoryVeryUnhealthy:      "Very Unhealthy",
	CategoryHazardous:          "Hazardous",
}

// Categories returns the known categories from least to most severe.
func Categories() []Category {
	out := make([]Category, 0, len(categoryLabels))
	for c := range categoryLabels {
		out = append(out, Category(c))
	}
	return out
}

// CategoryLabels returns the labels of the known categories in ordinal order.
func CategoryLabels() []string {
	out := make([]string, len(categoryLabels))
	copy(out, categoryLabels[:])
	return out
}

// ParseCategory maps a label to its category. Unrecognized labels map to CategoryUnknown.
func ParseCategory(label string) Category {
	label = strings.TrimSpace(label)
	for c, l := range categoryLabels {
		if l == label {
			return Category(c)
		}
	}
	return CategoryUnknown
}

func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryLabels) {
		return categoryLabels[c]
	}
	return "Unknown"
}

// Rank is the position of the category in the ordinal domain.
func (c Category) Rank() int {
	if c < 0 || c > CategoryUnknown {
		return int(CategoryUnknown)
	}
	return int(c)
}

// compareLabels orders raw category labels by rank, unknown labels last and alphabetically.
func compareLabels(a, b string) int {
	ra, rb := ParseCategory(a).Rank(), ParseCategory(b).Rank()
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	}
	return strings.Compare(a, b)
}

// Parameter names a numeric column of the dataset.
type Parameter string

const (
	ParamPM25      Parameter = "PM2.5"
	ParamPM10      Parameter = "PM10"
	ParamSO2       Parameter = "SO2"
	ParamNO2       Parameter = "NO2"
	ParamCO        Parameter = "CO"
	ParamO3        Parameter = "O3"
	ParamTemp      Parameter = "TEMP"
	ParamPressure  Parameter = "PRES"
	ParamDewPoint  Parameter = "DEWP"
	ParamRain      Parameter = "RAIN"
	ParamWindSpeed Parameter = "WSPM"
)

var (
	pollutantParams = []Parameter{ParamPM25, ParamPM10, ParamSO2, ParamNO2, ParamCO, ParamO3}
	weatherParams   = []Parameter{ParamTemp, ParamPressure, ParamDewPoint, ParamRain, ParamWindSpeed}
	allParams       = append(append([]Parameter{}, pollutantParams...), weatherParams...)
)

const numParameters = 11

// Pollutants returns the pollutant parameters in column order.
func Pollutants() []Parameter { return append([]Parameter(nil), pollutantParams...) }

// WeatherParameters returns the weather parameters in column order.
func WeatherParameters() []Parameter { return append([]Parameter(nil), weatherParams...) }

// Parameters returns every numeric parameter, pollutants first.
func Parameters() []Parameter { return append([]Parameter(nil), allParams...) }

// ParseParameter resolves a parameter name, case-insensitively.
func ParseParameter(name string) (Parameter, error) {
	name = strings.TrimSpace(name)
	for _, p := range allParams {
		if strings.EqualFold(string(p), name) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownParameter, name)
}

// IsPollutant reports whether p is one of the six pollutant measurements.
func (p Parameter) IsPollutant() bool {
	for _, q := range pollutantParams {
		if q == p {
			return true
		}
	}
	return false
}

func (p Parameter) index() (int, bool) {
	for i, q := range allParams {
		if q == p {
			return i, true
		}
	}
	return 0, false
}

// Measurement is a numeric value that may be missing.
type Measurement struct {
	Value float64
	Valid bool
}

// MeasurementOf wraps v, treating NaN and infinities as missing.
func MeasurementOf(v float64) Measurement {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Measurement{}
	}
	return Measurement{Value: v, Valid: true}
}

// Float returns the value, or NaN when missing.
func (m Measurement) Float() float64 {
	if !m.Valid {
		return math.NaN()
	}
	return m.Value
}

func (m Measurement) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, m.Value, 'f', -1, 64), nil
}

func (m *Measurement) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*m = Measurement{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*m = MeasurementOf(v)
	return nil
}

const dateLayout = "2006-01-02"

// Date is a calendar date without a time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool { return d == Date{} }

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.String())), nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Reading is one timestamped observation of a station.
// Readings are immutable once a Table holds them.
type Reading struct {
	Timestamp     time.Time
	Station       string
	CategoryLabel string
	Category      Category
	WindDirection string

	// Derived from Timestamp at load time.
	Date Date
	Hour int

	values [numParameters]float64
}

// NewReading builds a reading and derives its calendar columns. Parameters absent from
// values are missing.
func NewReading(ts time.Time, station, category, windDirection string, values map[Parameter]float64) *Reading {
	r := &Reading{
		Timestamp:     ts,
		Station:       station,
		CategoryLabel: category,
		Category:      ParseCategory(category),
		WindDirection: windDirection,
		Date:          DateOf(ts),
		Hour:          ts.Hour(),
	}
	for i := range r.values {
		r.values[i] = math.NaN()
	}
	for p, v := range values {
		if i, ok := p.index(); ok {
			r.values[i] = v
		}
	}
	return r
}

// Value returns the parameter value, NaN when missing.
func (r *Reading) Value(p Parameter) float64 {
	i, ok := p.index()
	if !ok {
		return math.NaN()
	}
	return r.values[i]
}

func (r *Reading) Measurement(p Parameter) Measurement {
	return MeasurementOf(r.Value(p))
}

// Rank is the ordinal rank of the reading's category.
func (r *Reading) Rank() int { return r.Category.Rank() }

// Table is an immutable, ordered collection of readings. Filtered tables share
// readings with the table they were derived from.
type Table struct {
	rows    []*Reading
	columns []Parameter
}

// NewTable wraps rows. columns lists the parameters present in the source.
func NewTable(rows []*Reading, columns []Parameter) *Table {
	return &Table{rows: rows, columns: columns}
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

func (t *Table) Row(i int) *Reading { return t.rows[i] }

// Rows returns a copy of the row slice.
func (t *Table) Rows() []*Reading {
	if t == nil {
		return nil
	}
	return append([]*Reading(nil), t.rows...)
}

func (t *Table) Columns() []Parameter {
	if t == nil {
		return nil
	}
	return append([]Parameter(nil), t.columns...)
}

// view returns a table over the given rows keeping the column set.
func (t *Table) view(rows []*Reading) *Table {
	return &Table{rows: rows, columns: t.columns}
}

// Stations lists distinct stations in order of first appearance.
func (t *Table) Stations() []string {
	seen := make(map[string]struct{})
	var out []string
	for i := 0; i < t.Len(); i++ {
		s := t.rows[i].Station
		if s == "" {
			continue
		}
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// CategoryLabels lists distinct category labels ordered by rank, unknown labels last.
func (t *Table) CategoryLabels() []string {
	seen := make(map[string]struct{})
	var out []string
	for i := 0; i < t.Len(); i++ {
		l := t.rows[i].CategoryLabel
		if l == "" {
			continue
		}
		if _, ok := seen[l]; !ok {
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return compareLabels(out[i], out[j]) < 0 })
	return out
}

// DateBounds returns the earliest and latest reading dates. Both are zero for an empty table.
func (t *Table) DateBounds() (min, max Date) {
	for i := 0; i < t.Len(); i++ {
		d := t.rows[i].Date
		if i == 0 || d.Before(min) {
			min = d
		}
		if i == 0 || d.After(max) {
			max = d
		}
	}
	return min, max
}
