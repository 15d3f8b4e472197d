package findings

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wellchild/wellchild/internal/domain/growth"
	"github.com/wellchild/wellchild/internal/domain/visit"
	"github.com/wellchild/wellchild/internal/platform/chrono"
)

type Handler struct {
	growth *growth.Service
}

func NewHandler(growthService *growth.Service) *Handler {
	return &Handler{growth: growthService}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/findings/synthesize", h.Synthesize)
}

type synthesizeRequest struct {
	VisitTypeID string   `json:"visit_type_id"`
	PatientID   string   `json:"patient_id,omitempty"`
	VisitedAt   string   `json:"visited_at,omitempty"`
	Snapshot    Snapshot `json:"snapshot"`
}

type synthesizeResponse struct {
	Lines []string `json:"lines"`
	Text  string   `json:"text"`
}

// Synthesize resolves the layout profile for the requested visit type,
// optionally computes weight-gain velocity for the patient at the visit
// instant, and returns the ordered problem listing. The listing replaces
// any previously generated one; callers store the result wholesale.
func (h *Handler) Synthesize(c echo.Context) error {
	var req synthesizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.VisitTypeID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "visit_type_id is required")
	}

	profile := visit.Resolve(req.VisitTypeID)

	var vel *growth.VelocityResult
	if req.PatientID != "" && req.VisitedAt != "" {
		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		at, err := chrono.ParseInstant(req.VisitedAt)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid visited_at timestamp")
		}
		vel = h.growth.VelocityForPatient(c.Request().Context(), patientID, at)
	}

	lines := Synthesize(req.Snapshot, profile, vel)
	return c.JSON(http.StatusOK, synthesizeResponse{
		Lines: lines,
		Text:  strings.Join(lines, "\n"),
	})
}
