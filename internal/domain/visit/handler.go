package visit

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/visit-types", h.ListVisitTypes)
	api.GET("/visit-types/:id/layout", h.GetLayout)
}

type visitTypeInfo struct {
	ID       string   `json:"id"`
	AgeGroup AgeGroup `json:"age_group"`
}

func (h *Handler) ListVisitTypes(c echo.Context) error {
	ids := VisitTypes()
	sort.Strings(ids)
	infos := make([]visitTypeInfo, len(ids))
	for i, id := range ids {
		infos[i] = visitTypeInfo{ID: id, AgeGroup: AgeGroupOf(id)}
	}
	return c.JSON(http.StatusOK, infos)
}

type layoutResponse struct {
	VisitTypeID string        `json:"visit_type_id"`
	AgeGroup    AgeGroup      `json:"age_group"`
	Layout      LayoutProfile `json:"layout"`
}

// GetLayout resolves a visit type to its layout profile. Unknown
// identifiers resolve to the infant profile rather than a 404; the
// fallback is part of the resolver's contract.
func (h *Handler) GetLayout(c echo.Context) error {
	id := c.Param("id")
	return c.JSON(http.StatusOK, layoutResponse{
		VisitTypeID: id,
		AgeGroup:    AgeGroupOf(id),
		Layout:      Resolve(id),
	})
}
