package airquality

import (
	"sort"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CategoryCount is the number of rows (or distinct timestamps) of one category.
type CategoryCount struct {
	Category string  `json:"category"`
	Rank     int     `json:"rank"`
	Count    int     `json:"count"`
	Share    float64 `json:"share,omitempty"`
}

// Metric is a summary figure shown above the charts.
type Metric struct {
	Category string `json:"category"`
	Days     int    `json:"days"`
	Display  string `json:"display"`
}

// SeriesPoint is the mean of one parameter for a station over one time bucket.
type SeriesPoint struct {
	Station string      `json:"station"`
	Bucket  time.Time   `json:"bucket"`
	Mean    Measurement `json:"mean"`
	Samples int         `json:"samples"`
}

// PairPoint holds two parameter values of a single reading.
type PairPoint struct {
	Station   string      `json:"station"`
	Timestamp time.Time   `json:"timestamp"`
	X         Measurement `json:"x"`
	Y         Measurement `json:"y"`
}

// Pivot counts rows per station (rows) and category (columns).
type Pivot struct {
	Stations   []string `json:"stations"`
	Categories []string `json:"categories"`
	Counts     [][]int  `json:"counts"`
}

// Count returns the cell for station and category, zero when either is absent.
func (p Pivot) Count(station, category string) int {
	for i, s := range p.Stations {
		if s != station {
			continue
		}
		for j, c := range p.Categories {
			if c == category {
				return p.Counts[i][j]
			}
		}
	}
	return 0
}

// WindCount is the number of rows for a wind direction and category pair.
type WindCount struct {
	WindDirection string `json:"windDirection"`
	Category      string `json:"category"`
	Rank          int    `json:"rank"`
	Count         int    `json:"count"`
}

// CategoryDayCounts counts distinct timestamps per category in order of first
// appearance. Categories without rows are absent.
func CategoryDayCounts(t *Table) []CategoryCount {
	index := make(map[string]int)
	seen := make(map[string]map[int64]struct{})
	var out []CategoryCount

	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		if r.CategoryLabel == "" {
			continue
		}
		pos, ok := index[r.CategoryLabel]
		if !ok {
			pos = len(out)
			index[r.CategoryLabel] = pos
			seen[r.CategoryLabel] = make(map[int64]struct{})
			out = append(out, CategoryCount{Category: r.CategoryLabel, Rank: r.Rank()})
		}
		ts := r.Timestamp.Unix()
		if _, dup := seen[r.CategoryLabel][ts]; dup {
			continue
		}
		seen[r.CategoryLabel][ts] = struct{}{}
		out[pos].Count++
	}
	return out
}

var metricPrinter = message.NewPrinter(language.English)

// SummaryMetrics formats day counts for display, e.g. "1,234 Days".
func SummaryMetrics(counts []CategoryCount) []Metric {
	out := make([]Metric, 0, len(counts))
	for _, c := range counts {
		out = append(out, Metric{
			Category: c.Category,
			Days:     c.Count,
			Display:  metricPrinter.Sprintf("%d Days", c.Count),
		})
	}
	return out
}

// CategoryShare counts rows per category, ordered by rank with unknown labels last.
// The dashboard computes it over the unfiltered table.
func CategoryShare(t *Table) []CategoryCount {
	index := make(map[string]int)
	var out []CategoryCount
	total := 0

	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		if r.CategoryLabel == "" {
			continue
		}
		pos, ok := index[r.CategoryLabel]
		if !ok {
			pos = len(out)
			index[r.CategoryLabel] = pos
			out = append(out, CategoryCount{Category: r.CategoryLabel, Rank: r.Rank()})
		}
		out[pos].Count++
		total++
	}

	sort.SliceStable(out, func(i, j int) bool {
		return compareLabels(out[i].Category, out[j].Category) < 0
	})
	for i := range out {
		out[i].Share = float64(out[i].Count) / float64(total)
	}
	return out
}

// TimeSeries averages parameter p per station and time bucket, skipping missing
// values. A bucket whose values are all missing yields a missing mean. Points are
// ordered by station, then bucket.
func TimeSeries(t *Table, p Parameter, f Frequency) ([]SeriesPoint, error) {
	p, err := ParseParameter(string(p))
	if err != nil {
		return nil, err
	}
	f, err = ParseFrequency(string(f))
	if err != nil {
		return nil, err
	}

	type key struct {
		station string
		bucket  int64
	}
	type acc struct {
		bucket time.Time
		sum    float64
		n      int
	}

	groups := make(map[key]*acc)
	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		if r.Station == "" {
			continue
		}
		b := f.Bucket(r.Timestamp)
		k := key{station: r.Station, bucket: b.Unix()}
		a, ok := groups[k]
		if !ok {
			a = &acc{bucket: b}
			groups[k] = a
		}
		if m := r.Measurement(p); m.Valid {
			a.sum += m.Value
			a.n++
		}
	}

	keys := make([]key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].station != keys[j].station {
			return keys[i].station < keys[j].station
		}
		return keys[i].bucket < keys[j].bucket
	})

	out := make([]SeriesPoint, 0, len(keys))
	for _, k := range keys {
		a := groups[k]
		pt := SeriesPoint{Station: k.station, Bucket: a.bucket, Samples: a.n}
		if a.n > 0 {
			pt.Mean = MeasurementOf(a.sum / float64(a.n))
		}
		out = append(out, pt)
	}
	return out, nil
}

// Pairwise passes through the station and the values of x and y for every row.
func Pairwise(t *Table, x, y Parameter) ([]PairPoint, error) {
	x, err := ParseParameter(string(x))
	if err != nil {
		return nil, err
	}
	y, err = ParseParameter(string(y))
	if err != nil {
		return nil, err
	}

	out := make([]PairPoint, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		out = append(out, PairPoint{
			Station:   r.Station,
			Timestamp: r.Timestamp,
			X:         r.Measurement(x),
			Y:         r.Measurement(y),
		})
	}
	return out, nil
}

// StationCategoryPivot counts rows per station and category. Columns are the known
// categories in ordinal order followed by any unknown labels present; stations are
// sorted. A station without rows of a category has a zero cell.
func StationCategoryPivot(t *Table) Pivot {
	columns := CategoryLabels()
	colIndex := make(map[string]int, len(columns))
	for i, c := range columns {
		colIndex[c] = i
	}
	for _, l := range t.CategoryLabels() {
		if _, ok := colIndex[l]; !ok {
			colIndex[l] = len(columns)
			columns = append(columns, l)
		}
	}

	stationRows := make(map[string][]int)
	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		if r.Station == "" || r.CategoryLabel == "" {
			continue
		}
		row, ok := stationRows[r.Station]
		if !ok {
			row = make([]int, len(columns))
			stationRows[r.Station] = row
		}
		row[colIndex[r.CategoryLabel]]++
	}

	stations := make([]string, 0, len(stationRows))
	for s := range stationRows {
		stations = append(stations, s)
	}
	sort.Strings(stations)

	counts := make([][]int, 0, len(stations))
	for _, s := range stations {
		counts = append(counts, stationRows[s])
	}
	return Pivot{Stations: stations, Categories: columns, Counts: counts}
}

// WindCategoryCounts counts rows per wind direction and category, sorted by category
// rank and then wind direction. The dashboard computes it over the unfiltered table.
func WindCategoryCounts(t *Table) []WindCount {
	type key struct{ wd, cat string }
	index := make(map[key]int)
	var out []WindCount

	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		if r.WindDirection == "" || r.CategoryLabel == "" {
			continue
		}
		k := key{wd: r.WindDirection, cat: r.CategoryLabel}
		pos, ok := index[k]
		if !ok {
			pos = len(out)
			index[k] = pos
			out = append(out, WindCount{WindDirection: k.wd, Category: k.cat, Rank: r.Rank()})
		}
		out[pos].Count++
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := compareLabels(out[i].Category, out[j].Category); c != 0 {
			return c < 0
		}
		return out[i].WindDirection < out[j].WindDirection
	})
	return out
}
