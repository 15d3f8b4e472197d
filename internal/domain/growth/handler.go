package growth

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wellchild/wellchild/internal/platform/chrono"
	"github.com/wellchild/wellchild/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients/:id/growth/timeline", h.GetTimeline)
	api.GET("/patients/:id/growth/velocity", h.GetVelocity)
	api.GET("/patients/:id/growth/measurements", h.ListMeasurements)
}

// GetTimeline returns the fused growth timeline for a patient. An empty
// array covers both no data and an unavailable store; clients render either
// as "no growth data".
func (h *Handler) GetTimeline(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	return c.JSON(http.StatusOK, h.svc.Timeline(c.Request().Context(), id))
}

// GetVelocity computes weight-gain velocity at the reference instant given
// by the `at` query parameter (defaults to now). A 204 means no
// weight-bearing observation existed at or before the reference instant.
func (h *Handler) GetVelocity(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}

	at := time.Now()
	if raw := c.QueryParam("at"); raw != "" {
		parsed, err := chrono.ParseInstant(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid reference instant")
		}
		at = parsed
	}

	result := h.svc.VelocityForPatient(c.Request().Context(), id, at)
	if result == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) ListMeasurements(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.RawMeasurements(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
