package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"funnelboard/domain/core"
	"funnelboard/ports"
)

type queryResponse struct {
	ports.QueryEntry
	DescriptionHTML string `json:"description_html,omitempty"`
}

func (a *App) handleListQueries(w http.ResponseWriter, r *http.Request) {
	out := make(map[core.QueryID]queryResponse)
	if a.queries != nil {
		for _, entry := range a.queries.List() {
			out[entry.ID] = a.queryResponse(entry)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *App) handleGetQuery(w http.ResponseWriter, r *http.Request) {
	if a.queries == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Query not found"})
		return
	}
	entry, err := a.queries.Get(core.QueryID(chi.URLParam(r, "id")))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Query not found"})
		return
	}
	writeJSON(w, http.StatusOK, a.queryResponse(entry))
}

func (a *App) handleMetricsMetadata(w http.ResponseWriter, r *http.Request) {
	md := ports.MetricsMetadata{Categories: []ports.MetricCategory{}}
	if a.queries != nil {
		md = a.queries.Metadata()
	}
	writeJSON(w, http.StatusOK, md)
}

func (a *App) queryResponse(entry ports.QueryEntry) queryResponse {
	html, err := a.queries.DescriptionHTML(entry.ID)
	if err != nil {
		a.logger.Warn("[ui] description for query %s: %v", entry.ID, err)
	}
	return queryResponse{QueryEntry: entry, DescriptionHTML: html}
}

// queryFor returns the first catalog entry attached to a funnel chart
func (a *App) queryFor(name core.FunnelName) core.QueryID {
	if a.queries == nil {
		return ""
	}
	if entries := a.queries.ForChart(name); len(entries) > 0 {
		return entries[0].ID
	}
	return ""
}
