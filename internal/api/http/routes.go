package httpapi

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
	"github.com/i474232898/air-quality-dashboard/internal/charts"
	"github.com/i474232898/air-quality-dashboard/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *airquality.Service, renderer *charts.Renderer) {
	v1 := app.Group("/api/v1")

	v1.Get("/options", func(c *fiber.Ctx) error {
		ds, err := currentDataset(service)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"dataset":     ds.ID,
			"stations":    ds.Stations,
			"categories":  categoryOptions(ds.Table),
			"pollutants":  airquality.Pollutants(),
			"weather":     airquality.WeatherParameters(),
			"frequencies": airquality.Frequencies(),
			"minDate":     ds.MinDate,
			"maxDate":     ds.MaxDate,
			"minHour":     0,
			"maxHour":     23,
			"charts":      charts.Names(),
		})
	})

	v1.Get("/datasets", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"datasets": service.History(),
		})
	})

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		sel, err := resolveSelection(c, service)
		if err != nil {
			return err
		}
		dash, err := airquality.BuildDashboard(sel.dataset, sel.criteria, sel.options)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(dash)
	})

	v1.Get("/metrics", func(c *fiber.Ctx) error {
		sel, err := resolveSelection(c, service)
		if err != nil {
			return err
		}
		days := airquality.CategoryDayCounts(sel.subset())
		return c.JSON(fiber.Map{
			"dataset":  sel.dataset.ID,
			"stations": stationsLabel(sel.criteria),
			"category": categoryLabel(sel.criteria),
			"metrics":  airquality.SummaryMetrics(days),
		})
	})

	v1.Get("/category-share", func(c *fiber.Ctx) error {
		ds, err := currentDataset(service)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"dataset": ds.ID,
			"share":   airquality.CategoryShare(ds.Table),
		})
	})

	v1.Get("/series", func(c *fiber.Ctx) error {
		sel, err := resolveSelection(c, service)
		if err != nil {
			return err
		}
		points, err := airquality.TimeSeries(sel.subset(), sel.options.Parameter, sel.options.Frequency)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{
			"dataset":   sel.dataset.ID,
			"parameter": sel.options.Parameter,
			"frequency": sel.options.Frequency,
			"points":    points,
		})
	})

	v1.Get("/pairwise", func(c *fiber.Ctx) error {
		sel, err := resolveSelection(c, service)
		if err != nil {
			return err
		}
		points, err := airquality.Pairwise(sel.subset(), sel.options.X, sel.options.Y)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{
			"dataset": sel.dataset.ID,
			"x":       sel.options.X,
			"y":       sel.options.Y,
			"points":  points,
		})
	})

	v1.Get("/station-categories", func(c *fiber.Ctx) error {
		sel, err := resolveSelection(c, service)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"dataset": sel.dataset.ID,
			"pivot":   airquality.StationCategoryPivot(sel.subset()),
		})
	})

	v1.Get("/wind-categories", func(c *fiber.Ctx) error {
		ds, err := currentDataset(service)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"dataset": ds.ID,
			"counts":  airquality.WindCategoryCounts(ds.Table),
		})
	})

	v1.Get("/charts/:name", func(c *fiber.Ctx) error {
		name := c.Params("name")
		if !knownChart(name) {
			return fiber.NewError(fiber.StatusNotFound, "unknown chart "+strconv.Quote(name))
		}

		sel, err := resolveSelection(c, service)
		if err != nil {
			return err
		}
		dash, err := airquality.BuildDashboard(sel.dataset, sel.criteria, sel.options)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var buf bytes.Buffer
		if err := renderer.Render(&buf, name, dash); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render chart")
		}
		c.Set(fiber.HeaderContentType, "image/png")
		return c.Send(buf.Bytes())
	})

	v1.Get("/readings.csv", func(c *fiber.Ctx) error {
		sel, err := resolveSelection(c, service)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := airquality.WriteCSV(&buf, sel.subset()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to export readings")
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="readings.csv"`)
		return c.Send(buf.Bytes())
	})
}

// currentDataset maps a missing snapshot to 503.
func currentDataset(service *airquality.Service) (*airquality.Dataset, error) {
	ds, err := service.Current()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fiber.NewError(fiber.StatusServiceUnavailable, "dataset not loaded yet")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to read dataset")
	}
	return ds, nil
}

func knownChart(name string) bool {
	for _, n := range charts.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// categoryOptions lists the category selector values: the "all" sentinel first, then
// the labels present in the table in ordinal order.
func categoryOptions(t *airquality.Table) []string {
	return append([]string{airquality.AllCategories}, t.CategoryLabels()...)
}

func stationsLabel(c airquality.Criteria) []string {
	if s := c.SelectedStations(); len(s) > 0 {
		return s
	}
	return []string{"All Stations"}
}

func categoryLabel(c airquality.Criteria) string {
	if c.AnyCategory() {
		return "Overall Category"
	}
	return c.Category
}
