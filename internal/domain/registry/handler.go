package registry

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/auth"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/fhir"
)

// Handler provides REST endpoints over the NAMASTE and ICD-11 registries.
type Handler struct {
	svc *Service
}

// NewHandler creates a new registry handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers registry routes on the API and FHIR groups.
func (h *Handler) RegisterRoutes(api *echo.Group, fhirGroup *echo.Group) {
	reg := api.Group("/registry", auth.RequireRole(auth.RoleAdmin, auth.RolePractitioner, auth.RoleStaff))
	reg.GET("/namaste", h.SearchNAMASTE)
	reg.GET("/namaste/:code/mappings", h.SuggestMappings)
	reg.GET("/icd11", h.SearchICD11)

	fhirTerm := fhirGroup.Group("", auth.RequireRole(auth.RoleAdmin, auth.RolePractitioner, auth.RoleStaff))
	fhirTerm.POST("/CodeSystem/$lookup", h.FHIRLookup)
	fhirTerm.POST("/CodeSystem/$validate-code", h.FHIRValidateCode)
}

func getLimit(c echo.Context) int {
	limit, _ := strconv.Atoi(c.QueryParam("_count"))
	if limit <= 0 {
		limit, _ = strconv.Atoi(c.QueryParam("limit"))
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return limit
}

func searchError(err error) error {
	switch {
	case errors.Is(err, ErrQueryRequired):
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'q' is required")
	case errors.Is(err, ErrUnknownSystem):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// SearchNAMASTE handles GET /api/v1/registry/namaste?q=...&system=...
func (h *Handler) SearchNAMASTE(c echo.Context) error {
	results, err := h.svc.SearchSources(c.Request().Context(), c.QueryParam("q"), c.QueryParam("system"), getLimit(c))
	if err != nil {
		return searchError(err)
	}
	if results == nil {
		results = []*SourceCode{}
	}
	return c.JSON(http.StatusOK, results)
}

// SearchICD11 handles GET /api/v1/registry/icd11?q=...&module=...
func (h *Handler) SearchICD11(c echo.Context) error {
	results, err := h.svc.SearchTargets(c.Request().Context(), c.QueryParam("q"), c.QueryParam("module"), getLimit(c))
	if err != nil {
		return searchError(err)
	}
	if results == nil {
		results = []*TargetCode{}
	}
	return c.JSON(http.StatusOK, results)
}

// SuggestMappings handles GET /api/v1/registry/namaste/:code/mappings
func (h *Handler) SuggestMappings(c echo.Context) error {
	code := c.Param("code")
	results, err := h.svc.SuggestTargets(c.Request().Context(), code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, fhir.NotFoundOutcome("CodeSystem/namaste", code))
		}
		return c.JSON(http.StatusInternalServerError, fhir.ErrorOutcome(err.Error()))
	}
	return c.JSON(http.StatusOK, results)
}

// FHIRLookup handles POST /fhir/CodeSystem/$lookup
func (h *Handler) FHIRLookup(c echo.Context) error {
	var req LookupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome(err.Error()))
	}
	resp, err := h.svc.Lookup(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(http.StatusNotFound, fhir.ErrorOutcome(err.Error()))
		}
		return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome(err.Error()))
	}
	return c.JSON(http.StatusOK, resp)
}

// FHIRValidateCode handles POST /fhir/CodeSystem/$validate-code
func (h *Handler) FHIRValidateCode(c echo.Context) error {
	var req ValidateCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome(err.Error()))
	}
	resp, err := h.svc.ValidateCode(c.Request().Context(), &req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome(err.Error()))
	}
	return c.JSON(http.StatusOK, resp)
}
