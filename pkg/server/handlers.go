package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/repostats/pkg/buildinfo"
	errs "github.com/matzehuels/repostats/pkg/errors"
	"github.com/matzehuels/repostats/pkg/integrations/github"
	"github.com/matzehuels/repostats/pkg/render"
)

const (
	svgContentType  = "image/svg+xml"
	jsonContentType = "application/json"
)

var endpoints = map[string]string{
	"/api/embed/{owner}/{repo}.svg":                  "Generate repository stats SVG",
	"/api/contributor/{owner}/{repo}/{username}.svg": "Generate contributor stats SVG",
	"/api/activity/{owner}/{repo}.svg":               "Generate commit activity chart SVG",
	"/api/repobeats/{owner}/{repo}.svg":              "Generate RepoBeats-style comprehensive dashboard SVG",
	"/api/modern/{owner}/{repo}.svg":                 "Generate modern dark dashboard SVG",
	"/api/stats/{owner}/{repo}.json":                 "Repository statistics as JSON",
	"/api/text":                                      "Generate animated typing text SVG",
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "GitHub Stats SVG API",
		"version":   buildinfo.Version,
		"endpoints": endpoints,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]string{"status": "ok", "cache": "memory"}
	if p, ok := s.runner.Cache.(interface{ Primary() string }); ok && p.Primary() != "" {
		body["cache"] = p.Primary()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleRepoCard(kind render.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spec, ok := s.repoSpec(w, r, ".svg")
		if !ok {
			return
		}
		svg, hit, err := s.runner.Repo(r.Context(), kind, spec, r.URL.Query().Get("theme"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.write(w, svgContentType, svg, hit)
	}
}

func (s *Server) handleContributorCard(w http.ResponseWriter, r *http.Request) {
	username, ok := strings.CutSuffix(chi.URLParam(r, "file"), ".svg")
	if !ok {
		http.NotFound(w, r)
		return
	}
	spec := github.FetchSpec{Owner: chi.URLParam(r, "owner"), Repo: chi.URLParam(r, "repo"), Username: username}
	err := validate(spec)
	if err == nil {
		err = errs.ValidateUsername(username)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	svg, hit, err := s.runner.Contributor(r.Context(), spec, r.URL.Query().Get("theme"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, svgContentType, svg, hit)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	spec, ok := s.repoSpec(w, r, ".json")
	if !ok {
		return
	}
	data, hit, err := s.runner.RepoStats(r.Context(), spec)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, jsonContentType, data, hit)
}

// handleText serves the animated text card. Query parameters: text,
// font_size, color, bg_color, speed and theme.
func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	opts, err := textOptions(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	svg, hit, err := s.runner.Text(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.write(w, svgContentType, svg, hit)
}

func textOptions(q url.Values) (render.TextOptions, error) {
	opts := render.TextOptions{
		Text:       q.Get("text"),
		Color:      q.Get("color"),
		Background: q.Get("bg_color"),
		Theme:      q.Get("theme"),
	}
	if v := q.Get("font_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidInput, "font_size must be an integer, got %q", v)
		}
		opts.FontSize = n
	}
	if v := q.Get("speed"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) {
			return opts, errs.New(errs.ErrCodeInvalidInput, "speed must be a number, got %q", v)
		}
		opts.Speed = f
	}
	return opts, nil
}

// repoSpec reads {owner}/{file} where file is the repository name plus
// suffix. It answers the request itself and returns false on bad input.
func (s *Server) repoSpec(w http.ResponseWriter, r *http.Request, suffix string) (github.FetchSpec, bool) {
	repo, ok := strings.CutSuffix(chi.URLParam(r, "file"), suffix)
	if !ok {
		http.NotFound(w, r)
		return github.FetchSpec{}, false
	}
	spec := github.FetchSpec{Owner: chi.URLParam(r, "owner"), Repo: repo}
	if err := validate(spec); err != nil {
		s.fail(w, r, err)
		return github.FetchSpec{}, false
	}
	return spec, true
}

func validate(spec github.FetchSpec) error {
	if err := errs.ValidateRepoRef(spec.Owner, spec.Repo); err != nil {
		return err
	}
	if spec.Username != "" {
		return errs.ValidateUsername(spec.Username)
	}
	return nil
}

func (s *Server) write(w http.ResponseWriter, contentType string, body []byte, hit bool) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.maxAge.Seconds())))
	if hit {
		h.Set("X-Cache", "HIT")
	} else {
		h.Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// fail answers 400 for invalid input and 500 for everything else.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errs.Is(err, errs.ErrCodeInvalidInput) {
		status = http.StatusBadRequest
	}
	s.logger.Warn("request failed",
		"path", r.URL.Path,
		"code", errs.GetCode(err),
		"err", err,
		"request_id", RequestID(r.Context()))
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
