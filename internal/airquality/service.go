package airquality

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Options selects the parameters of the series and scatter projections.
type Options struct {
	Parameter Parameter `json:"parameter"`
	Frequency Frequency `json:"frequency"`
	X         Parameter `json:"x"`
	Y         Parameter `json:"y"`
}

// DefaultOptions mirrors the initial state of the dashboard controls.
func DefaultOptions() Options {
	return Options{
		Parameter: ParamPM25,
		Frequency: Hourly,
		X:         ParamPM25,
		Y:         ParamPM10,
	}
}

// Normalize fills empty fields with defaults and validates the rest.
func (o Options) Normalize() (Options, error) {
	def := DefaultOptions()
	var err error

	if o.Parameter == "" {
		o.Parameter = def.Parameter
	} else if o.Parameter, err = ParseParameter(string(o.Parameter)); err != nil {
		return o, err
	}
	if o.Frequency == "" {
		o.Frequency = def.Frequency
	} else if o.Frequency, err = ParseFrequency(string(o.Frequency)); err != nil {
		return o, err
	}
	if o.X == "" {
		o.X = def.X
	} else if o.X, err = ParseParameter(string(o.X)); err != nil {
		return o, err
	}
	if o.Y == "" {
		o.Y = def.Y
	} else if o.Y, err = ParseParameter(string(o.Y)); err != nil {
		return o, err
	}
	return o, nil
}

// Dashboard is every projection the dashboard renders for one selection.
type Dashboard struct {
	Dataset           string          `json:"dataset"`
	Criteria          Criteria        `json:"criteria"`
	Options           Options         `json:"options"`
	Rows              int             `json:"rows"`
	Metrics           []Metric        `json:"metrics"`
	CategoryDays      []CategoryCount `json:"categoryDays"`
	CategoryShare     []CategoryCount `json:"categoryShare"`
	Series            []SeriesPoint   `json:"series"`
	Pairwise          []PairPoint     `json:"pairwise"`
	StationCategories Pivot           `json:"stationCategories"`
	WindCategories    []WindCount     `json:"windCategories"`
}

// BuildDashboard filters ds once and derives every projection from the subset.
// Category share and wind counts use the full table regardless of c.
func BuildDashboard(ds *Dataset, c Criteria, opts Options) (Dashboard, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return Dashboard{}, err
	}

	subset := Filter(ds.Table, c)

	series, err := TimeSeries(subset, opts.Parameter, opts.Frequency)
	if err != nil {
		return Dashboard{}, err
	}
	pairs, err := Pairwise(subset, opts.X, opts.Y)
	if err != nil {
		return Dashboard{}, err
	}

	days := CategoryDayCounts(subset)

	return Dashboard{
		Dataset:           ds.ID,
		Criteria:          c,
		Options:           opts,
		Rows:              subset.Len(),
		Metrics:           SummaryMetrics(days),
		CategoryDays:      days,
		CategoryShare:     CategoryShare(ds.Table),
		Series:            series,
		Pairwise:          pairs,
		StationCategories: StationCategoryPivot(subset),
		WindCategories:    WindCategoryCounts(ds.Table),
	}, nil
}

// Service loads the source table into the store and answers dashboard queries
// against the latest snapshot.
type Service struct {
	store  Store
	source Source
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(store Store, source Source, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		source: source,
		logger: logger,
	}
}

// Load fetches and parses the source table and stores it as the latest snapshot.
// On failure the previous snapshot, if any, stays current.
func (s *Service) Load(ctx context.Context) (*Dataset, error) {
	if s.source == nil {
		return nil, errors.New("no dataset source configured")
	}

	start := time.Now()
	s.logger.Info("loading dataset", "source", s.source.Name())

	body, err := s.source.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.source.Name(), err)
	}
	defer body.Close()

	table, err := ParseTable(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.source.Name(), err)
	}

	ds := NewDataset(s.source.Name(), table)
	s.store.Save(ds)

	s.logger.Info("dataset loaded",
		"id", ds.ID,
		"rows", ds.Rows,
		"stations", len(ds.Stations),
		"from", ds.MinDate.String(),
		"to", ds.MaxDate.String(),
		"took", time.Since(start),
	)
	return ds, nil
}

// Current returns the latest snapshot.
func (s *Service) Current() (*Dataset, error) {
	return s.store.Latest()
}

// Dataset returns a snapshot by id.
func (s *Service) Dataset(id string) (*Dataset, error) {
	return s.store.Get(id)
}

// History lists the retained snapshots, oldest first.
func (s *Service) History() []DatasetInfo {
	return s.store.History()
}

// Dashboard computes every projection for c against the latest snapshot.
func (s *Service) Dashboard(c Criteria, opts Options) (Dashboard, error) {
	ds, err := s.Current()
	if err != nil {
		return Dashboard{}, err
	}
	return BuildDashboard(ds, c, opts)
}
