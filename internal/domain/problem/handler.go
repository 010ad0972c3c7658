package problem

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/auth"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/db"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/fhir"
	"github.com/Keerthivasan-cpu/mandara-connect/pkg/pagination"
)

// DataQualityHeader carries non-fatal findings about a stored entry.
const DataQualityHeader = "X-Data-Quality-Warning"

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := auth.RequireRole(auth.RolePractitioner, auth.RoleStaff)
	write := auth.RequireRole(auth.RolePractitioner)

	g := api.Group("/problems")
	g.GET("", h.List, read)
	g.GET("/:id", h.Get, read)
	g.POST("", h.Create, write)
}

func (h *Handler) Create(c echo.Context) error {
	var p ProblemEntry
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome(err.Error()))
	}
	ctx := c.Request().Context()
	if err := h.svc.Create(ctx, db.ClinicFromContext(ctx), auth.UserIDFromContext(ctx), &p); err != nil {
		if errors.Is(err, ErrInvalidProblem) {
			return c.JSON(http.StatusBadRequest, fhir.ValidationOutcome("", err.Error()))
		}
		return c.JSON(http.StatusInternalServerError, fhir.ErrorOutcome(err.Error()))
	}
	if w := p.DateOrderWarning(); w != "" {
		h.logger.Warn().
			Str("problem_id", p.ID).
			Str("clinic_id", p.ClinicID).
			Msg(w)
		c.Response().Header().Set(DataQualityHeader, w)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	p, err := h.svc.Get(ctx, db.ClinicFromContext(ctx), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, fhir.NotFoundOutcome("ProblemEntry", id))
		}
		return c.JSON(http.StatusInternalServerError, fhir.ErrorOutcome(err.Error()))
	}
	return c.JSON(http.StatusOK, p)
}

// List handles GET /api/v1/problems?patient=...
func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()
	items, total, err := h.svc.List(ctx, db.ClinicFromContext(ctx), c.QueryParam("patient"), pg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, fhir.ErrorOutcome(err.Error()))
	}
	if items == nil {
		items = []*ProblemEntry{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
