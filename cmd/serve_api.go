package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/nps-cli/internal/config"
	"github.com/sells-group/nps-cli/internal/dashboard"
	"github.com/sells-group/nps-cli/internal/export"
	"github.com/sells-group/nps-cli/internal/model"
	"github.com/sells-group/nps-cli/internal/nps"
)

// statusWritesPerMinute caps status changes per client IP.
const statusWritesPerMinute = 60

// api serves the dashboard views over HTTP.
type api struct {
	state *dashboard.State
	cfg   *config.Config
	now   func() time.Time
}

// buildRouter wires the dashboard API onto a chi router.
func buildRouter(state *dashboard.State, c *config.Config, now func() time.Time) http.Handler {
	a := &api{state: state, cfg: c, now: now}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: c.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", a.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/overview", a.overview)
		r.Get("/detractors", a.detractors)
		r.Get("/analytics", a.analytics)
		r.Get("/branches", a.branches)
		r.Get("/export/{format}", a.export)
		r.Post("/reload", a.reload)

		r.Route("/responses", func(r chi.Router) {
			r.Get("/", a.responses)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", a.response)
				r.With(httprate.LimitByIP(statusWritesPerMinute, time.Minute)).
					Patch("/status", a.setStatus)
			})
		})
	})

	return r
}

func (a *api) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"responses": a.state.Len(),
		"loaded_at": a.state.LoadedAt(),
		"connected": a.state.LoadErr() == nil,
	})
}

func (a *api) overview(w http.ResponseWriter, r *http.Request) {
	rs := a.state.Responses()

	if category := r.URL.Query().Get("category"); category != "" {
		cat, ok := nps.ParseCategory(category)
		if !ok {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid category %q", category))
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"notice":    a.state.Notice(),
			"category":  cat,
			"responses": nonNil(categoryList(rs, cat, a.now())),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"notice":     a.state.Notice(),
		"kpis":       nps.Overview(rs),
		"detractors": nonNil(nps.DetractorQueue(rs, a.now())),
	})
}

func (a *api) detractors(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, nonNil(nps.DetractorQueue(a.state.Responses(), a.now())))
}

func (a *api) responses(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFromQuery(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	rs := a.state.Filter(c)
	respondJSON(w, http.StatusOK, map[string]any{
		"notice":    a.state.Notice(),
		"total":     a.state.Len(),
		"count":     len(rs),
		"responses": nonNil(rs),
	})
}

func (a *api) response(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	resp, ok := a.state.Find(id)
	if !ok {
		respondError(w, http.StatusNotFound, "response not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"response":   resp,
		"assessment": nps.Assess(resp, a.now()),
		"category":   nps.Classify(resp.NPS),
	})
}

func (a *api) setStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := a.state.SetStatus(r.Context(), chi.URLParam(r, "id"), model.TicketStatus(req.Status))
	switch {
	case res.OK():
		respondJSON(w, http.StatusOK, res)
	case eris.Is(res.Err, dashboard.ErrInvalidStatus):
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid ticket status %q", req.Status))
	case eris.Is(res.Err, dashboard.ErrUnknownResponse):
		respondError(w, http.StatusNotFound, "response not found")
	default:
		// The local edit may still stand; report both.
		respondJSON(w, http.StatusBadGateway, map[string]any{
			"error":  "status change could not be saved",
			"result": res,
		})
	}
}

func (a *api) analytics(w http.ResponseWriter, r *http.Request) {
	c, err := criteriaFromQuery(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	days := a.cfg.Dashboard.TrendDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > nps.MaxTrendDays {
			respondError(w, http.StatusBadRequest,
				fmt.Sprintf("days must be an integer between 1 and %d", nps.MaxTrendDays))
			return
		}
		days = n
	}
	respondJSON(w, http.StatusOK, nps.Analyze(a.state.Filter(c), a.now(), days))
}

func (a *api) branches(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, nonNil(nps.Branches(a.state.Responses())))
}

func (a *api) export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	write, err := exportWriter(format)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := criteriaFromQuery(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rs := a.state.Filter(c)
	var buf bytes.Buffer
	if err := write(&buf, rs); err != nil {
		if eris.Is(err, export.ErrEmpty) {
			respondError(w, http.StatusNotFound, "no data to export")
			return
		}
		zap.L().Error("export failed", zap.String("format", format), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == "xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	name := export.FileName(a.cfg.Export.Prefix, a.now(), format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (a *api) reload(w http.ResponseWriter, r *http.Request) {
	a.state.Reload(r.Context(), a.now())
	respondJSON(w, http.StatusOK, map[string]any{
		"notice":    a.state.Notice(),
		"responses": a.state.Len(),
		"loaded_at": a.state.LoadedAt(),
	})
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("write response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, map[string]string{"error": msg})
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
