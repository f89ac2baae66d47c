package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gomarkdown/markdown"

	"heartpanel/domain/core"
	"heartpanel/internal/errors"
	"heartpanel/internal/query"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("[API] failed to encode response", "error", err)
	}
}

// writeError maps "no data" to 404, bad parameters to 400 and the rest to 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsNoData(err):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "no data available"})
	case stderrors.Is(err, core.ErrInvalidFilter), errors.GetCode(err) == errors.CodeInvalidInput:
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("[API] request failed", "path", r.URL.Path, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// listParam accepts repeated keys and comma-separated values
func listParam(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func parseFilterParams(r *http.Request) (query.FilterParams, error) {
	q := r.URL.Query()
	p := query.FilterParams{
		Regions: listParam(r, "regions"),
		Income:  q.Get("income"),
		Gender:  q.Get("gender"),
		Metric:  q.Get("metric"),
		Age:     q.Get("age"),
		Cause:   q.Get("cause"),
	}
	if y := q.Get("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return p, errors.InvalidInput(fmt.Sprintf("year %q is not a whole number", y))
		}
		p.Year = year
	}
	return p, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ix, err := s.store.Index(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ix)
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	ix, err := s.store.Index(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"countries": ix.CountriesFor(listParam(r, "regions"))})
}

func (s *Server) handleMetricLabels(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"metrics": s.store.Catalog().Labels()})
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	p, err := parseFilterParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.store.Filter(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	p, err := parseFilterParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	countries := listParam(r, "countries")
	ctx := r.Context()

	var res *query.Result
	switch name := chi.URLParam(r, "name"); name {
	case "worldmap":
		res, err = s.store.WorldMap(ctx, p)
	case "geoeco":
		res, err = s.store.GeoEco(ctx, p, countries)
	case "healthcare":
		res, err = s.store.Healthcare(ctx, p, countries)
	case "sankey":
		res, err = s.store.Sankey(ctx, p.Regions, p.Income, p.Gender, p.Metric)
	case "risk":
		res, err = s.store.Risk(ctx, p.Gender, p.Metric)
	case "trends":
		res, err = s.store.Trends(ctx, p.Gender, p.Metric)
	default:
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown view %q", name)})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if s.config.ReportPath == "" {
		s.writeError(w, r, core.ErrNoData)
		return
	}
	md, err := os.ReadFile(s.config.ReportPath)
	if err != nil {
		if os.IsNotExist(err) {
			s.writeError(w, r, core.ErrNoData)
			return
		}
		s.writeError(w, r, errors.StorageError("failed to read report", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(markdown.ToHTML(md, nil, nil))
}
