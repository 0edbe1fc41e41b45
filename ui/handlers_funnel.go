package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"funnelboard/adapters/canvas"
	"funnelboard/adapters/excel"
	"funnelboard/app"
	"funnelboard/domain/core"
	"funnelboard/domain/funnel"
	"funnelboard/internal/errors"
)

type indexData struct {
	Title        string
	Funnels      []core.FunnelName
	Selected     core.FunnelName
	QueryID      core.QueryID
	CanvasHeight float64
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	names := a.funnels.Names()
	data := indexData{
		Title:        a.config.Title,
		Funnels:      names,
		CanvasHeight: a.config.DefaultArea.Height,
	}

	if len(names) > 0 {
		data.Selected = names[0]
		if requested := r.URL.Query().Get("funnel"); requested != "" {
			for _, name := range names {
				if name.String() == requested {
					data.Selected = name
				}
			}
		}
		data.QueryID = a.queryFor(data.Selected)
	}

	a.renderTemplate(w, "dashboard.html", data)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":               "ok",
		"funnels":              len(a.funnels.Names()),
		"render_cache_entries": a.funnels.CacheSize(),
	})
}

func (a *App) handleListFunnels(w http.ResponseWriter, r *http.Request) {
	results, err := a.funnels.LoadAll(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (a *App) handleFunnel(w http.ResponseWriter, r *http.Request) {
	name, err := funnelParam(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	spec, err := a.funnels.Get(r.Context(), name)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

func (a *App) handleSummary(w http.ResponseWriter, r *http.Request) {
	name, err := funnelParam(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	summary, err := a.funnels.Summary(r.Context(), name)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *App) handlePyramid(format canvas.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := funnelParam(r)
		if err != nil {
			a.writeError(w, err)
			return
		}
		area, err := parseArea(r, a.config.DefaultArea)
		if err != nil {
			a.writeError(w, err)
			return
		}

		out, err := a.funnels.RenderImage(r.Context(), name, format, area)
		if err != nil {
			a.writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", out.ContentType)
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("X-Render-ID", out.RenderID.String())
		if out.CacheHit {
			w.Header().Set("X-Render-Cache", "hit")
		} else {
			w.Header().Set("X-Render-Cache", "miss")
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(out.Data); err != nil {
			a.logger.Debug("[ui] write pyramid %s: %v", name, err)
		}
	}
}

func (a *App) handleExport(w http.ResponseWriter, r *http.Request) {
	name, err := funnelParam(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	summary, err := a.funnels.Summary(r.Context(), name)
	if err != nil {
		a.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name.String()+".xlsx"))
	if err := excel.WriteSummary(w, summary); err != nil {
		a.logger.Error("[ui] export %s: %v", name, err)
	}
}

func funnelParam(r *http.Request) (core.FunnelName, error) {
	name, err := core.ParseFunnelName(chi.URLParam(r, "name"))
	if err != nil {
		return "", errors.InvalidInput(err.Error())
	}
	return name, nil
}

// parseArea reads ?width=&height=, falling back to def for missing values
func parseArea(r *http.Request, def funnel.Area) (funnel.Area, error) {
	area := def
	q := r.URL.Query()
	for _, p := range []struct {
		key string
		dst *float64
	}{{"width", &area.Width}, {"height", &area.Height}} {
		raw := q.Get(p.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return funnel.Area{}, errors.InvalidInput(fmt.Sprintf("%s must be a number", p.key))
		}
		*p.dst = v
	}
	if err := canvas.ValidateArea(area); err != nil {
		return funnel.Area{}, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return area, nil
}

// errorResponse is the JSON body of every API error
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	code := app.ErrorCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		a.logger.Error("[ui] request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: code, Message: err.Error()})
}

func statusFor(code string) int {
	switch code {
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeEmptyFunnel, errors.CodeValidationError:
		return http.StatusUnprocessableEntity
	case errors.CodeInvalidInput:
		return http.StatusBadRequest
	case errors.CodeDatabaseError:
		return http.StatusServiceUnavailable
	case errors.CodeExternalService:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
