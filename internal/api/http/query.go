package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
	"github.com/i474232898/air-quality-dashboard/internal/common"
)

// selectionQuery holds the dashboard controls passed as query parameters.
type selectionQuery struct {
	Stations  []string
	Category  string
	StartDate string `validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `validate:"omitempty,datetime=2006-01-02"`
	StartHour int    `validate:"gte=0,lte=23"`
	EndHour   int    `validate:"gte=0,lte=23"`
	Parameter string
	Frequency string
	X         string
	Y         string
}

func (q *selectionQuery) bind(c *fiber.Ctx) error {
	// Accept both ?stations=A,B and ?stations=A&stations=B.
	for _, raw := range c.Context().QueryArgs().PeekMulti("stations") {
		q.Stations = append(q.Stations, common.SplitList(string(raw))...)
	}

	q.Category = strings.TrimSpace(c.Query("category"))
	q.StartDate = strings.TrimSpace(c.Query("start_date"))
	q.EndDate = strings.TrimSpace(c.Query("end_date"))

	var err error
	if q.StartHour, err = parseHour(c.Query("start_hour"), 0); err != nil {
		return fmt.Errorf("start_hour: %w", err)
	}
	if q.EndHour, err = parseHour(c.Query("end_hour"), 23); err != nil {
		return fmt.Errorf("end_hour: %w", err)
	}

	q.Parameter = strings.TrimSpace(c.Query("parameter"))
	q.Frequency = strings.TrimSpace(c.Query("frequency"))
	q.X = strings.TrimSpace(c.Query("x"))
	q.Y = strings.TrimSpace(c.Query("y"))
	return nil
}

func parseHour(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	h, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("must be an integer between 0 and 23")
	}
	return h, nil
}

// criteria resolves the query against ds; absent dates default to the dataset bounds.
// Inverted or out-of-range bounds are not errors, they select no rows.
func (q selectionQuery) criteria(ds *airquality.Dataset) (airquality.Criteria, error) {
	crit := airquality.DefaultCriteria(ds.Table)
	crit.Stations = q.Stations
	if q.Category != "" {
		crit.Category = q.Category
	}

	if q.StartDate != "" {
		d, err := airquality.ParseDate(q.StartDate)
		if err != nil {
			return crit, fmt.Errorf("start_date: %w", err)
		}
		crit.StartDate = d
	}
	if q.EndDate != "" {
		d, err := airquality.ParseDate(q.EndDate)
		if err != nil {
			return crit, fmt.Errorf("end_date: %w", err)
		}
		crit.EndDate = d
	}

	crit.StartHour = q.StartHour
	crit.EndHour = q.EndHour
	return crit, nil
}

func (q selectionQuery) options() (airquality.Options, error) {
	return airquality.Options{
		Parameter: airquality.Parameter(q.Parameter),
		Frequency: airquality.Frequency(q.Frequency),
		X:         airquality.Parameter(q.X),
		Y:         airquality.Parameter(q.Y),
	}.Normalize()
}

// selection is a validated request against one dataset snapshot.
type selection struct {
	dataset  *airquality.Dataset
	criteria airquality.Criteria
	options  airquality.Options
}

func (s selection) subset() *airquality.Table {
	return airquality.Filter(s.dataset.Table, s.criteria)
}

// resolveSelection binds and validates the query and pins the current snapshot.
// Returned errors are *fiber.Error values.
func resolveSelection(c *fiber.Ctx, service *airquality.Service) (selection, error) {
	var q selectionQuery
	if err := q.bind(c); err != nil {
		return selection{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(q); err != nil {
		return selection{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	ds, err := currentDataset(service)
	if err != nil {
		return selection{}, err
	}

	crit, err := q.criteria(ds)
	if err != nil {
		return selection{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	opts, err := q.options()
	if err != nil {
		return selection{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return selection{dataset: ds, criteria: crit, options: opts}, nil
}
