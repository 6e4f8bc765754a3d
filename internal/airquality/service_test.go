package airquality

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"
	"testing"
)

var errNoSnapshot = errors.New("no snapshot")

type stubSource struct {
	body string
	err  error
}

func (s stubSource) Name() string { return "stub" }

func (s stubSource) Open(context.Context) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.body)), nil
}

type stubStore struct {
	mu    sync.Mutex
	saved []*Dataset
}

func (s *stubStore) Save(ds *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, ds)
}

func (s *stubStore) Latest() (*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saved) == 0 {
		return nil, errNoSnapshot
	}
	return s.saved[len(s.saved)-1], nil
}

func (s *stubStore) Get(id string) (*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ds := range s.saved {
		if ds.ID == id {
			return ds, nil
		}
	}
	return nil, errNoSnapshot
}

func (s *stubStore) History() []DatasetInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DatasetInfo, 0, len(s.saved))
	for _, ds := range s.saved {
		out = append(out, ds.DatasetInfo)
	}
	return out
}

func TestServiceLoad(t *testing.T) {
	st := &stubStore{}
	svc := NewService(st, stubSource{body: sampleCSV}, nil)

	ds, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ds.ID == "" || ds.Source != "stub" || ds.Rows != 6 {
		t.Fatalf("unexpected dataset info %+v", ds.DatasetInfo)
	}
	if ds.MinDate.String() != "2013-03-01" || ds.MaxDate.String() != "2013-03-03" {
		t.Fatalf("unexpected bounds %s..%s", ds.MinDate, ds.MaxDate)
	}
	if !reflect.DeepEqual(ds.Stations, []string{"Aotizhongxin", "Changping", "Dingling"}) {
		t.Fatalf("unexpected stations %v", ds.Stations)
	}

	cur, err := svc.Current()
	if err != nil || cur != ds {
		t.Fatalf("expected loaded dataset to be current, got %v %v", cur, err)
	}
	if got, err := svc.Dataset(ds.ID); err != nil || got != ds {
		t.Fatalf("expected lookup by id to succeed, got %v %v", got, err)
	}
}

func TestServiceLoadFailureKeepsSnapshot(t *testing.T) {
	st := &stubStore{}
	good := NewService(st, stubSource{body: sampleCSV}, nil)
	first, err := good.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := NewService(st, stubSource{body: "datetime,station\nnot-a-date,A\n"}, nil)
	if _, err := bad.Load(context.Background()); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}

	down := NewService(st, stubSource{err: io.ErrUnexpectedEOF}, nil)
	if _, err := down.Load(context.Background()); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected source error, got %v", err)
	}

	cur, _ := good.Current()
	if cur != first || len(good.History()) != 1 {
		t.Fatalf("expected first snapshot to stay current")
	}
}

func TestServiceLoadWithoutSource(t *testing.T) {
	svc := NewService(&stubStore{}, nil, nil)
	if _, err := svc.Load(context.Background()); err == nil {
		t.Fatalf("expected error without a source")
	}
}

func TestServiceDashboard(t *testing.T) {
	svc := NewService(&stubStore{}, stubSource{body: sampleCSV}, nil)
	if _, err := svc.Dashboard(Criteria{}, Options{}); !errors.Is(err, errNoSnapshot) {
		t.Fatalf("expected store error before load, got %v", err)
	}

	ds, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dash, err := svc.Dashboard(Criteria{Stations: []string{"Changping"}, EndHour: 23}, Options{Frequency: Daily})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dash.Dataset != ds.ID || dash.Rows != 2 {
		t.Fatalf("unexpected dashboard header %+v", dash)
	}
	if dash.Options != (Options{Parameter: ParamPM25, Frequency: Daily, X: ParamPM25, Y: ParamPM10}) {
		t.Fatalf("expected defaults to fill options, got %+v", dash.Options)
	}
	if len(dash.Series) != 2 || len(dash.Pairwise) != 2 {
		t.Fatalf("expected series and pairs from the subset, got %d and %d", len(dash.Series), len(dash.Pairwise))
	}
	if !reflect.DeepEqual(dash.StationCategories.Stations, []string{"Changping"}) {
		t.Fatalf("unexpected pivot stations %v", dash.StationCategories.Stations)
	}
	if len(dash.Metrics) != 2 || dash.Metrics[0].Display != "1 Days" {
		t.Fatalf("unexpected metrics %+v", dash.Metrics)
	}
}

func TestDashboardShareIgnoresSelection(t *testing.T) {
	ds := NewDataset("test", sampleTable(t))

	full, err := BuildDashboard(ds, DefaultCriteria(ds.Table), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	narrow, err := BuildDashboard(ds, Criteria{Stations: []string{"Dingling"}, Category: "Smoky", StartHour: 10, EndHour: 10}, DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if narrow.Rows != 1 {
		t.Fatalf("expected 1 row in selection, got %d", narrow.Rows)
	}
	if !reflect.DeepEqual(full.CategoryShare, narrow.CategoryShare) {
		t.Fatalf("category share changed with selection")
	}
	if !reflect.DeepEqual(full.WindCategories, narrow.WindCategories) {
		t.Fatalf("wind counts changed with selection")
	}
}

func TestOptionsNormalize(t *testing.T) {
	got, err := Options{Parameter: "pm10", Frequency: "Monthly"}.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Parameter != ParamPM10 || got.Frequency != Monthly || got.X != ParamPM25 || got.Y != ParamPM10 {
		t.Fatalf("unexpected options %+v", got)
	}

	if _, err := (Options{Y: "bogus"}).Normalize(); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("expected ErrUnknownParameter, got %v", err)
	}
}
