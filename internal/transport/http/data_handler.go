package http

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "trendpulse/internal/errors"
	"trendpulse/internal/exporter"
	"trendpulse/internal/middleware"
	"trendpulse/internal/services"
	api "trendpulse/pkg/contracts/api/v1"
	"trendpulse/pkg/contracts/domain"
)

type categoryKey struct{}

// DataHandler serves the dashboard data API with RFC 7807 errors
type DataHandler struct {
	service        DataService
	validator      *middleware.Validator
	queryValidator *middleware.QueryParamValidator
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewDataHandler creates a new data handler
func NewDataHandler(service DataService, validator *middleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:        service,
		validator:      validator,
		queryValidator: middleware.NewQueryParamValidator(logger, errorHandler),
		logger:         logger.With(slog.String("component", "data_handler")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the data routes. reload guards POST /reload, typically
// with API key authentication and audit logging.
func (h *DataHandler) Routes(reload ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/keywords", h.GetKeywords)
	r.Get("/dashboard", h.GetDashboard)
	r.Get("/diagnostics", h.GetDiagnostics)
	r.With(reload...).Post("/reload", h.Reload)

	r.With(h.CategoryCtx).Get("/export/{category}", h.Export)
	r.With(h.CategoryCtx).Get("/{category}", h.GetTable)

	return r
}

// CategoryCtx resolves the {category} URL parameter.
func (h *DataHandler) CategoryCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := api.TableRequest{Category: chi.URLParam(r, "category")}
		category, err := domain.ParseCategory(req.Category)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), categoryKey{}, category)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func categoryFrom(ctx context.Context) domain.Category {
	c, _ := ctx.Value(categoryKey{}).(domain.Category)
	return c
}

// GetKeywords handles GET /api/data/keywords
func (h *DataHandler) GetKeywords(w http.ResponseWriter, r *http.Request) {
	if !h.checkETag(w, r) {
		return
	}

	keywords, err := h.service.Keywords(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.respond(w, r, keywords.Fingerprint, keywords, len(keywords.Keywords))
}

// GetTable handles GET /api/data/{category}
func (h *DataHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	q, ok := h.bindQuery(w, r)
	if !ok {
		return
	}
	if !h.checkETag(w, r) {
		return
	}

	category := categoryFrom(r.Context())
	view, err := h.service.Table(r.Context(), category, q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "table served",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("category", category.String()),
		slog.Int("rows", view.Count))

	h.respond(w, r, view.Fingerprint, view, view.Count)
}

// GetDashboard handles GET /api/data/dashboard
func (h *DataHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	q, ok := h.bindQuery(w, r)
	if !ok {
		return
	}
	if !h.checkETag(w, r) {
		return
	}

	view, err := h.service.Dashboard(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.respond(w, r, view.Fingerprint, view, -1)
}

// GetDiagnostics handles GET /api/data/diagnostics
func (h *DataHandler) GetDiagnostics(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Diagnostics(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.respond(w, r, report.Fingerprint, report, len(report.Diagnostics))
}

// Reload handles POST /api/data/reload
func (h *DataHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "dataset reload requested",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("client", middleware.APIClient(r.Context())))

	result, err := h.service.Reload(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.respond(w, r, result.Fingerprint, result, -1)
}

// Export handles GET /api/data/export/{category}
func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	q, ok := h.bindQuery(w, r)
	if !ok {
		return
	}

	name, ok := h.queryValidator.ValidateEnum(w, r, "format",
		[]string{string(exporter.FormatCSV), string(exporter.FormatXLSX)}, string(exporter.FormatCSV))
	if !ok {
		return
	}
	format, err := exporter.ParseFormat(name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	category := categoryFrom(r.Context())

	// Buffer so a failed export can still be answered with a problem document.
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), category, format, q, &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporter.FileName(category, format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write failed",
			slog.String("category", category.String()),
			slog.String("error", err.Error()))
	}
}

// bindQuery reads and validates the shared filter parameters, filling
// missing dates from the configured default range.
func (h *DataHandler) bindQuery(w http.ResponseWriter, r *http.Request) (services.Query, bool) {
	values := r.URL.Query()

	raw, ok := h.queryValidator.ValidateBool(w, r, "raw", false)
	if !ok {
		return services.Query{}, false
	}

	req := api.DataQueryRequest{
		Keywords: splitKeywords(values["keywords"]),
		Start:    strings.TrimSpace(values.Get("start")),
		End:      strings.TrimSpace(values.Get("end")),
		Raw:      raw,
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return services.Query{}, false
	}

	q, err := h.service.DefaultQuery()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return services.Query{}, false
	}
	q.Keywords = req.Keywords
	q.Raw = req.Raw
	if req.Start != "" {
		q.Start, _ = time.Parse(domain.DateLayout, req.Start)
	}
	if req.End != "" {
		q.End, _ = time.Parse(domain.DateLayout, req.End)
	}

	if err := q.Validate(); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return services.Query{}, false
	}
	return q, true
}

// splitKeywords accepts both ?keywords=a,b and ?keywords=a&keywords=b.
func splitKeywords(params []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range params {
		for _, kw := range strings.Split(p, ",") {
			kw = strings.TrimSpace(kw)
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			out = append(out, kw)
		}
	}
	return out
}

// checkETag answers 304 when the client already holds the current dataset.
// It returns false once a response has been written. Full responses take
// their ETag from the served view instead.
func (h *DataHandler) checkETag(w http.ResponseWriter, r *http.Request) bool {
	fingerprint, err := h.service.Fingerprint(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return false
	}

	etag := strconv.Quote(fingerprint)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return false
	}
	return true
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

// respond writes the success envelope. count < 0 omits the count member.
func (h *DataHandler) respond(w http.ResponseWriter, r *http.Request, fingerprint string, data interface{}, count int) {
	if fingerprint != "" {
		w.Header().Set("ETag", strconv.Quote(fingerprint))
	}

	body := map[string]interface{}{
		"status": "success",
		"data":   data,
	}
	if count >= 0 {
		body["count"] = count
	}
	render.JSON(w, r, body)
}
