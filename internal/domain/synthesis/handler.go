package synthesis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Keerthivasan-cpu/mandara-connect/internal/domain/problem"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/auth"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/db"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/fhir"
	"github.com/Keerthivasan-cpu/mandara-connect/internal/platform/metrics"
)

// Response headers carrying the build report of a collection document.
const (
	DanglingReferencesHeader = "X-Dangling-References"
	DataQualityHeader        = "X-Data-Quality-Warnings"
)

// Pusher delivers a rendered bundle to a receiving FHIR server and returns
// the receiver's status code.
type Pusher interface {
	Push(ctx context.Context, a *fhir.Artifact) (int, error)
}

type Handler struct {
	svc    *Service
	pusher Pusher
	logger zerolog.Logger
}

// NewHandler creates a synthesis handler. pusher may be nil, in which case
// the push route is not registered.
func NewHandler(svc *Service, pusher Pusher, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, pusher: pusher, logger: logger}
}

func (h *Handler) RegisterRoutes(fhirGroup *echo.Group) {
	g := fhirGroup.Group("", auth.RequireRole(auth.RolePractitioner))
	g.POST("/$synthesize/:kind", h.Synthesize)
	if h.pusher != nil {
		g.POST("/$push", h.Push)
	}
}

// Synthesize handles POST /fhir/$synthesize/:kind. The body is a Request;
// ?download=true adds an attachment disposition.
func (h *Handler) Synthesize(c echo.Context) error {
	kind := c.Param("kind")
	if !IsValidKind(kind) {
		return c.JSON(http.StatusNotFound, fhir.NewOperationOutcome(fhir.IssueSeverityError, fhir.IssueTypeNotSupported,
			fmt.Sprintf("unknown artifact kind %q", kind)))
	}
	var req Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome(err.Error()))
	}
	download, _ := strconv.ParseBool(c.QueryParam("download"))

	a, err := h.render(c, kind, req)
	if err != nil {
		metrics.RecordSynthesis(kind, "error")
		return h.synthesisError(c, err)
	}
	if a == nil {
		metrics.RecordSynthesis(kind, "empty")
		return c.NoContent(http.StatusNoContent)
	}
	metrics.RecordSynthesis(kind, "ok")
	return a.Send(c, download)
}

// render builds the artifact for kind. A nil artifact with no error means
// the selection yields no ConceptMap.
func (h *Handler) render(c echo.Context, kind string, req Request) (*fhir.Artifact, error) {
	ctx := c.Request().Context()
	switch kind {
	case KindCodeSystem:
		cs, err := h.svc.CodeSystem(ctx, req)
		if err != nil {
			return nil, err
		}
		return CodeSystemArtifact(cs)
	case KindConceptMap, KindMappingTable:
		opt, err := h.svc.ConceptMap(ctx, req)
		if err != nil {
			return nil, err
		}
		cm, ok := opt.Get()
		if !ok {
			return nil, nil
		}
		if kind == KindMappingTable {
			return MappingTableArtifact(cm)
		}
		return ConceptMapArtifact(cm)
	default:
		b, err := h.bundle(c, req)
		if err != nil {
			return nil, err
		}
		if kind == KindConditions {
			return ConditionsArtifact(b)
		}
		return BundleArtifact(b)
	}
}

func (h *Handler) bundle(c echo.Context, req Request) (*Bundle, error) {
	ctx := c.Request().Context()
	clinicID := db.ClinicFromContext(ctx)
	b, report, _, err := h.svc.Bundle(ctx, clinicID, req)
	if err != nil {
		return nil, err
	}
	h.applyReport(c, clinicID, b, report)
	return b, nil
}

func (h *Handler) applyReport(c echo.Context, clinicID string, b *Bundle, report *Report) {
	metrics.RecordDanglingReferences(RefKindSource, report.OmittedByKind(RefKindSource))
	metrics.RecordDanglingReferences(RefKindTarget, report.OmittedByKind(RefKindTarget))
	metrics.RecordDataQualityWarnings(len(report.Warnings))

	for _, d := range report.DanglingReferences {
		h.logger.Warn().
			Str("clinic_id", clinicID).
			Str("generation_id", GenerationID(b)).
			Str("problem_id", d.ProblemID).
			Str("kind", d.Kind).
			Str("code_id", d.CodeID).
			Msg("coding omitted: code not in registry")
	}
	for _, w := range report.Warnings {
		h.logger.Warn().Str("clinic_id", clinicID).Msg(w)
	}

	c.Response().Header().Set(DanglingReferencesHeader, strconv.Itoa(report.Omitted()))
	if len(report.Warnings) > 0 {
		c.Response().Header().Set(DataQualityHeader, strconv.Itoa(len(report.Warnings)))
	}
}

// Push handles POST /fhir/$push: builds the collection document for the
// request and forwards it to the configured receiver.
func (h *Handler) Push(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome(err.Error()))
	}
	b, err := h.bundle(c, req)
	if err != nil {
		metrics.RecordSynthesis(KindBundle, "error")
		return h.synthesisError(c, err)
	}
	metrics.RecordSynthesis(KindBundle, "ok")
	a, err := BundleArtifact(b)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, fhir.ErrorOutcome(err.Error()))
	}

	status, err := h.pusher.Push(c.Request().Context(), a)
	if err != nil {
		h.logger.Error().Err(err).Int("receiver_status", status).Str("generation_id", GenerationID(b)).Msg("bundle push failed")
		return c.JSON(http.StatusBadGateway, fhir.ErrorOutcome(err.Error()))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"generation_id":   GenerationID(b),
		"receiver_status": status,
		"entries":         len(b.Entry),
	})
}

func (h *Handler) synthesisError(c echo.Context, err error) error {
	var vocab *UnknownVocabularyValueError
	switch {
	case errors.As(err, &vocab):
		oo := fhir.CodeInvalidOutcome(vocab.Field, vocab.Value)
		oo.Issue[0].Diagnostics = err.Error()
		return c.JSON(http.StatusUnprocessableEntity, oo)
	case errors.Is(err, ErrSelectionNotFound):
		return c.JSON(http.StatusBadRequest, fhir.ValidationOutcome("selection", err.Error()))
	case errors.Is(err, problem.ErrNotFound):
		return c.JSON(http.StatusNotFound, fhir.NewOperationOutcome(fhir.IssueSeverityError, fhir.IssueTypeNotFound, err.Error()))
	default:
		h.logger.Error().Err(err).Msg("synthesis failed")
		return c.JSON(http.StatusInternalServerError, fhir.ErrorOutcome(err.Error()))
	}
}
