package refcurve

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wellchild/wellchild/internal/platform/chrono"
)

type Handler struct {
	loader *Loader
}

func NewHandler(loader *Loader) *Handler {
	return &Handler{loader: loader}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/growth/reference-curves", h.GetCurves)
}

// GetCurves returns the overlay series for a chart. An empty array means
// the reference data is unavailable; clients show the patient data alone.
func (h *Handler) GetCurves(c echo.Context) error {
	metric := MetricKind(c.QueryParam("metric"))
	if !metric.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "metric must be weight, length or head-circumference")
	}
	sex := Sex(c.QueryParam("sex"))
	if !sex.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "sex must be M or F")
	}
	birthDate, err := chrono.ParseInstant(c.QueryParam("birth_date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid birth_date")
	}

	return c.JSON(http.StatusOK, h.loader.Load(metric, sex, birthDate))
}
