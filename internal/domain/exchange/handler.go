package exchange

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/auth"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/db"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/fhir"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/metrics"
	"github.com/Keerthivasan-cpu/mandara-connect/pkg/pagination"
)

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/exchange", auth.RequireRole(auth.RolePractitioner))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PATCH("/:id/status", h.UpdateStatus)
}

func (h *Handler) Create(c echo.Context) error {
	var r Request
	if err := c.Bind(&r); err != nil {
		return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome(err.Error()))
	}
	ctx := c.Request().Context()
	if err := h.svc.Create(ctx, db.ClinicFromContext(ctx), auth.UserIDFromContext(ctx), &r); err != nil {
		return h.errorResponse(c, err)
	}
	metrics.RecordExchange(r.RequestType, r.Status)
	h.logger.Info().
		Str("exchange_id", r.ID).
		Str("requesting_clinic_id", r.RequestingClinicID).
		Str("target_clinic_id", r.TargetClinicID).
		Str("request_type", r.RequestType).
		Msg("exchange request created")
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	r, err := h.svc.Get(ctx, db.ClinicFromContext(ctx), c.Param("id"))
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// List handles GET /api/v1/exchange?direction=incoming|outgoing&status=...
func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()
	items, total, err := h.svc.List(ctx, db.ClinicFromContext(ctx), c.QueryParam("direction"), c.QueryParam("status"), pg)
	if err != nil {
		return h.errorResponse(c, err)
	}
	if items == nil {
		items = []*Request{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	var u StatusUpdate
	if err := json.NewDecoder(c.Request().Body).Decode(&u); err != nil {
		return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome("invalid status update body"))
	}
	ctx := c.Request().Context()
	r, from, err := h.svc.UpdateStatus(ctx, db.ClinicFromContext(ctx), auth.UserIDFromContext(ctx), c.Param("id"), u)
	if err != nil {
		return h.errorResponse(c, err)
	}
	metrics.RecordExchange(r.RequestType, r.Status)
	h.logger.Info().
		Str("exchange_id", r.ID).
		Str("from", from).
		Str("to", r.Status).
		Str("user_id", auth.UserIDFromContext(ctx)).
		Msg("exchange request status changed")
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, fhir.ValidationOutcome("", err.Error()))
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, fhir.NotFoundOutcome("ExchangeRequest", c.Param("id")))
	case errors.Is(err, ErrForbidden):
		return c.JSON(http.StatusForbidden, fhir.NewOperationOutcome(fhir.IssueSeverityError, "forbidden", err.Error()))
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrConflict):
		return c.JSON(http.StatusConflict, fhir.NewOperationOutcome(fhir.IssueSeverityError, "conflict", err.Error()))
	default:
		h.logger.Error().Err(err).Msg("exchange request failed")
		return c.JSON(http.StatusInternalServerError, fhir.ErrorOutcome(err.Error()))
	}
}
