package airquality

import "strings"

// AllCategories selects every category.
const AllCategories = "all"

// Selector values that mean "no restriction". The dashboard controls use the
// "Overall ..." labels.
var (
	allStationSentinels  = []string{"all", "Overall Station"}
	allCategorySentinels = []string{"", AllCategories, "Overall Category"}
)

// Criteria describes one user selection. Date and hour bounds are inclusive; a zero
// date leaves that side unbounded.
type Criteria struct {
	Stations  []string `json:"stations"`
	Category  string   `json:"category"`
	StartDate Date     `json:"startDate"`
	EndDate   Date     `json:"endDate"`
	StartHour int      `json:"startHour"`
	EndHour   int      `json:"endHour"`
}

// DefaultCriteria selects the whole table: all stations, all categories, the full date
// range and every hour.
func DefaultCriteria(t *Table) Criteria {
	minDate, maxDate := t.DateBounds()
	return Criteria{
		Category:  AllCategories,
		StartDate: minDate,
		EndDate:   maxDate,
		StartHour: 0,
		EndHour:   23,
	}
}

// stationSet returns the selected stations, or nil when every station is selected.
func (c Criteria) stationSet() map[string]struct{} {
	var set map[string]struct{}
	for _, s := range c.Stations {
		s = strings.TrimSpace(s)
		if s == "" || isSentinel(s, allStationSentinels) {
			continue
		}
		if set == nil {
			set = make(map[string]struct{})
		}
		set[s] = struct{}{}
	}
	return set
}

// AnyCategory reports whether the category clause is inactive.
func (c Criteria) AnyCategory() bool {
	return isSentinel(strings.TrimSpace(c.Category), allCategorySentinels)
}

// SelectedStations returns the explicit station selection without sentinels.
func (c Criteria) SelectedStations() []string {
	set := c.stationSet()
	var out []string
	for _, s := range c.Stations {
		s = strings.TrimSpace(s)
		if _, ok := set[s]; ok {
			out = append(out, s)
			delete(set, s)
		}
	}
	return out
}

func isSentinel(v string, sentinels []string) bool {
	for _, s := range sentinels {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

type predicate struct {
	stations map[string]struct{}
	category string
	anyCat   bool
	criteria Criteria
}

func (c Criteria) predicate() predicate {
	return predicate{
		stations: c.stationSet(),
		category: strings.TrimSpace(c.Category),
		anyCat:   c.AnyCategory(),
		criteria: c,
	}
}

func (p predicate) match(r *Reading) bool {
	if p.stations != nil {
		if _, ok := p.stations[r.Station]; !ok {
			return false
		}
	}
	if !p.anyCat && r.CategoryLabel != p.category {
		return false
	}
	c := p.criteria
	if !c.StartDate.IsZero() && r.Date.Before(c.StartDate) {
		return false
	}
	if !c.EndDate.IsZero() && r.Date.After(c.EndDate) {
		return false
	}
	return r.Hour >= c.StartHour && r.Hour <= c.EndHour
}

// Matches reports whether r satisfies every active clause of c.
func (c Criteria) Matches(r *Reading) bool {
	return c.predicate().match(r)
}

// Filter returns the rows of t matching c, in table order. The result shares
// readings with t.
func Filter(t *Table, c Criteria) *Table {
	if t == nil {
		return NewTable(nil, nil)
	}
	p := c.predicate()
	rows := make([]*Reading, 0, len(t.rows))
	for _, r := range t.rows {
		if p.match(r) {
			rows = append(rows, r)
		}
	}
	return t.view(rows)
}
