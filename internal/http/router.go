package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"prediction-dashboard-service/internal/analytics"
	"prediction-dashboard-service/internal/app"
	"prediction-dashboard-service/internal/charts"
	"prediction-dashboard-service/internal/models"
	"prediction-dashboard-service/internal/schema"
)

// maxBodyBytes bounds batch request bodies.
const maxBodyBytes = 32 << 20

// chartView is one entry of the chart listing.
type chartView struct {
	charts.Definition
	Latest *charts.Snapshot `json:"latest,omitempty"`
}

type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// NewRouter constructs the HTTP router for the service.
func NewRouter(application *app.Application) http.Handler {
	r := chi.NewRouter()
	h := &handlers{app: application}

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API routes
	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(application.Cfg.Dashboard.RateLimit, application.Cfg.Dashboard.RateBurst))
			r.Post("/batches", h.postBatch)
			r.Post("/stats", h.postStats)
		})

		r.Get("/charts", h.listCharts)
		r.Get("/charts/{name}", h.getChart)
		r.Get("/charts/{name}/png", h.getChartPNG)
		r.Handle("/ws", application.Hub)
	})

	return otelhttp.NewHandler(r, "dashboard")
}

// rateLimit rejects requests above limit per second. A non-positive limit
// disables it.
func rateLimit(limit float64, burst int) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(limit), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type handlers struct {
	app *app.Application
}

func (h *handlers) postBatch(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.decode(w, r)
	if !ok {
		return
	}
	report := h.app.Ingest(r.Context(), batch)
	writeJSON(w, http.StatusOK, report)
}

func (h *handlers) postStats(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.decode(w, r)
	if !ok {
		return
	}
	stats, err := h.app.Stats(batch)
	if errors.Is(err, analytics.ErrEmptyBatch) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// decode reads and validates a batch envelope, writing the error response
// itself when the envelope is rejected.
func (h *handlers) decode(w http.ResponseWriter, r *http.Request) (models.Batch, bool) {
	batch, err := h.app.Validator.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err == nil {
		return batch, true
	}

	status, reason := http.StatusBadRequest, schema.ReasonMalformed
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		reason = verr.Reason
	}
	var maxErr *http.MaxBytesError
	if reason == schema.ReasonTooLarge || errors.As(err, &maxErr) {
		status, reason = http.StatusRequestEntityTooLarge, schema.ReasonTooLarge
	}
	h.app.Metrics.RecordRejected(reason)
	h.app.Logger.Warn().
		Err(err).
		Str("reason", reason).
		Str("path", r.URL.Path).
		Msg("Batch rejected")
	writeJSON(w, status, errorBody{Error: err.Error(), Reason: reason})
	return models.Batch{}, false
}

func (h *handlers) listCharts(w http.ResponseWriter, _ *http.Request) {
	latest := h.app.Store.All()
	views := make([]chartView, 0, len(h.app.Charts))
	for _, def := range charts.Catalog {
		if _, ok := h.app.Charts[def.Name]; !ok {
			continue
		}
		v := chartView{Definition: def}
		if snap, ok := latest[def.Name]; ok {
			v.Latest = &snap
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

// lookup resolves the {name} parameter to a displayed chart and its latest
// snapshot, writing 404 or 204 itself.
func (h *handlers) lookup(w http.ResponseWriter, r *http.Request) (charts.Definition, charts.Snapshot, bool) {
	name := analytics.ChartName(chi.URLParam(r, "name"))
	def, ok := charts.Lookup(name)
	if _, displayed := h.app.Charts[name]; !ok || !displayed {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "unknown chart " + string(name)})
		return charts.Definition{}, charts.Snapshot{}, false
	}
	snap, ok := h.app.Store.Get(name)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return charts.Definition{}, charts.Snapshot{}, false
	}
	return def, snap, true
}

func (h *handlers) getChart(w http.ResponseWriter, r *http.Request) {
	_, snap, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *handlers) getChartPNG(w http.ResponseWriter, r *http.Request) {
	def, snap, ok := h.lookup(w, r)
	if !ok {
		return
	}
	width, _ := strconv.Atoi(r.URL.Query().Get("width"))
	height, _ := strconv.Atoi(r.URL.Query().Get("height"))

	var buf bytes.Buffer
	err := charts.RenderPNG(&buf, def, snap.Series, width, height)
	if errors.Is(err, charts.ErrNothingToRender) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		h.app.Logger.Error().Err(err).Str("chart", string(def.Name)).Msg("Failed to render chart")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
