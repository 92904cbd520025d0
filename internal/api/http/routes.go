package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/meteo-template/internal/binding"
	"github.com/i474232898/meteo-template/internal/export"
	"github.com/i474232898/meteo-template/internal/sheet"
	"github.com/i474232898/meteo-template/internal/upload"
	"github.com/i474232898/meteo-template/internal/weather"
)

var validate = validator.New()

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeXLSM = "application/vnd.ms-excel.sheet.macroEnabled.12"
)

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	Service   *weather.Service
	Uploads   *upload.Store
	Sheet     binding.SpreadsheetScheme
	Flat      binding.FlatScheme
	SheetName string
	Logger    *slog.Logger
}

type handlers struct {
	Deps
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.SheetName == "" {
		deps.SheetName = "METEO"
	}
	h := &handlers{Deps: deps}

	v1 := app.Group("/api/v1")
	v1.Post("/sheet/extract", h.extractCities)
	v1.Post("/sheet/update", h.updateSheet)
	v1.Get("/forecast", h.cityForecast)
	v1.Get("/forecast/all", h.allForecasts)
	v1.Get("/export", h.flatExport)
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// httpError maps domain errors to HTTP status codes.
func httpError(err error) error {
	var (
		providerErr *weather.ProviderError
		rowErr      *binding.RowRangeError
		missingErr  *binding.MissingCityError
	)
	switch {
	case errors.Is(err, upload.ErrMissingUpload),
		errors.Is(err, upload.ErrEmptyFile),
		errors.Is(err, upload.ErrInvalidType),
		errors.Is(err, sheet.ErrSheetNotFound),
		errors.Is(err, sheet.ErrUnreadableWorkbook),
		errors.Is(err, binding.ErrNoCitiesInSheet),
		errors.Is(err, weather.ErrInvalidTarget),
		errors.As(err, &rowErr),
		errors.As(err, &missingErr):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &providerErr), errors.Is(err, weather.ErrNoCitySucceeded):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

// openTemplate stores the upload, opens the workbook and locates the template sheet.
// The returned release func must always be called.
func (h *handlers) openTemplate(c *fiber.Ctx) (*upload.File, *sheet.Workbook, *sheet.Sheet, func(), error) {
	fh, err := c.FormFile("excel_file")
	if err != nil {
		return nil, nil, nil, func() {}, upload.ErrMissingUpload
	}

	file, err := h.Uploads.SaveMultipart(fh)
	if err != nil {
		return nil, nil, nil, func() {}, err
	}

	wb, err := sheet.Open(file.Path)
	if err != nil {
		file.Release()
		return nil, nil, nil, func() {}, err
	}
	release := func() {
		if err := wb.Close(); err != nil {
			h.Logger.Warn("failed to close workbook", "error", err)
		}
		file.Release()
	}

	sh, err := wb.Sheet(h.SheetName)
	if err != nil {
		release()
		return nil, nil, nil, func() {}, err
	}
	return file, wb, sh, release, nil
}

func (h *handlers) extractCities(c *fiber.Ctx) error {
	_, _, sh, release, err := h.openTemplate(c)
	defer release()
	if err != nil {
		return httpError(err)
	}

	cities, err := h.Sheet.ExtractCities(sh)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{"cities": cities})
}

func (h *handlers) updateSheet(c *fiber.Ctx) error {
	file, wb, sh, release, err := h.openTemplate(c)
	defer release()
	if err != nil {
		return httpError(err)
	}

	targets := h.Service.FixedTargets()

	var sets []weather.CityForecastSet
	if raw := c.FormValue("weather_data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sets); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid weather data format: "+err.Error())
		}
	} else {
		cities := h.Service.Cities()
		if h.Sheet.Lookup == binding.RowByName {
			extracted, err := h.Sheet.ExtractCities(sh)
			if err != nil {
				return httpError(err)
			}
			cities = binding.UniqueCityNames(extracted)
		}
		batch, err := h.Service.Collect(c.UserContext(), cities, targets)
		if err != nil {
			return httpError(err)
		}
		sets = batch.Sets
	}

	b, err := h.Sheet.Bind(sh, h.Service.Cities(), sets, targets)
	if err != nil {
		return httpError(err)
	}
	if err := sheet.Apply(sh, b); err != nil {
		return httpError(err)
	}

	var buf bytes.Buffer
	if _, err := wb.WriteTo(&buf); err != nil {
		return httpError(fmt.Errorf("failed to write workbook: %w", err))
	}

	contentType := contentTypeXLSX
	if file.Extension == "xlsm" {
		contentType = contentTypeXLSM
	}
	// Attachment sets a content type from the extension; override it afterwards.
	c.Attachment(file.OriginalName)
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(buf.Bytes())
}

type cityQuery struct {
	City string `validate:"required"`
}

func (h *handlers) cityForecast(c *fiber.Ctx) error {
	q := cityQuery{City: strings.TrimSpace(c.Query("city"))}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	set, err := h.Service.GetWeatherData(c.UserContext(), q.City, h.Service.FixedTargets())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(set)
}

func (h *handlers) allForecasts(c *fiber.Ctx) error {
	batch, err := h.Service.CollectAll(c.UserContext(), h.Service.FixedTargets())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{
		"cities":   batch.Sets,
		"failures": failureMessages(batch.Failures),
	})
}

func failureMessages(failures map[string]error) map[string]string {
	out := make(map[string]string, len(failures))
	for city, err := range failures {
		out[city] = err.Error()
	}
	return out
}

// exportQuery holds query parameters for the flat export endpoint.
type exportQuery struct {
	Dates  []string `validate:"required,min=1,dive,datetime=2006-01-02"`
	Format string   `validate:"omitempty,oneof=json csv"`
}

func (q *exportQuery) bind(c *fiber.Ctx) {
	for _, d := range strings.Split(c.Query("dates"), ",") {
		if d = strings.TrimSpace(d); d != "" {
			q.Dates = append(q.Dates, d)
		}
	}
	q.Format = c.Query("format", "json")
}

func (h *handlers) flatExport(c *fiber.Ctx) error {
	var q exportQuery
	q.bind(c)
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	loc := h.Service.Selector().Location()
	dates := make([]time.Time, 0, len(q.Dates))
	for _, d := range q.Dates {
		t, err := time.ParseInLocation("2006-01-02", d, loc)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		dates = append(dates, t)
	}

	targets, err := weather.CalendarTargets(h.Service.Selector().Now(), dates)
	if err != nil {
		return httpError(err)
	}

	batch, err := h.Service.CollectAll(c.UserContext(), targets)
	if err != nil {
		return httpError(err)
	}

	sink, err := export.ForFormat(q.Format)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	b, err := h.Flat.Bind(h.Service.Cities(), batch.Sets, targets)
	if err != nil {
		return httpError(err)
	}

	var buf bytes.Buffer
	if err := sink.Write(&buf, b); err != nil {
		return httpError(err)
	}

	if c.QueryBool("download") {
		c.Attachment("weather." + sink.Extension())
	}
	c.Set(fiber.HeaderContentType, sink.ContentType())
	return c.Send(buf.Bytes())
}
