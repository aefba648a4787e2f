package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"calgen/internal/config"
	"calgen/internal/definition"
	"calgen/internal/index"
	appLog "calgen/internal/log"
	"calgen/internal/pipeline"
)

// Year bounds accepted from query strings; the Gregorian rules hold from
// 1583 on.
const (
	minYear = 1583
	maxYear = 9999
)

// pageCacheSize caps the rendered documents kept in memory. Least recently
// served pages are evicted first.
const pageCacheSize = 32

// Server serves rendered calendars and the definitions behind them.
type Server struct {
	cfg     *config.Config
	builder *pipeline.Builder
	mux     *http.ServeMux
	now     func() time.Time

	// groups is the last successfully parsed definitions file.
	mu       sync.RWMutex
	groups   []definition.Group
	loadedAt time.Time
	gen      uint64

	// pages caches rendered documents of the current generation.
	pages *lru.Cache[pageKey, []byte]
}

type pageKey struct {
	gen    uint64
	output pipeline.Output
	year   int
	groups string
}

// NewServer loads the definitions named by cfg and registers routes.
func NewServer(cfg *config.Config, builder *pipeline.Builder) (*Server, error) {
	pages, err := lru.New[pageKey, []byte](pageCacheSize)
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:     cfg,
		builder: builder,
		mux:     http.NewServeMux(),
		now:     time.Now,
		pages:   pages,
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	s.registerRoutes()
	return s, nil
}

// Reload reparses the definitions file. On failure the previous
// definitions stay in place.
func (s *Server) Reload() error {
	names, err := s.cfg.NameTable()
	if err != nil {
		return err
	}
	groups, err := pipeline.LoadDefinitions(s.cfg.Input, names)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.groups = groups
	s.loadedAt = s.now()
	s.gen++
	s.mu.Unlock()
	s.pages.Purge()

	appLog.Info("definitions loaded", "path", s.cfg.Input, "groups", len(groups))
	return nil
}

// Groups returns the current definitions.
func (s *Server) Groups() []definition.Group {
	groups, _ := s.snapshot()
	return groups
}

// snapshot returns the definitions with the reload generation they belong to.
func (s *Server) snapshot() ([]definition.Group, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groups, s.gen
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	return s.cfg.BasicAuth != nil && s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="calgen", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Serve listens on cfg.Listen until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/groups", s.handleGroups)
	s.mux.HandleFunc("GET /api/occurrences", s.handleOccurrences)
	s.mux.HandleFunc("GET /calendar/{kind}", s.handleCalendar)
	s.mux.HandleFunc("GET /calendar.ics", s.handleICS)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/calendar/yearly", http.StatusFound)
}

// groupDTO is a JSON-friendly view of a group.
type groupDTO struct {
	ID    int       `json:"id"`
	Title string    `json:"title"`
	Style string    `json:"style,omitempty"`
	Class string    `json:"class"`
	Rules []ruleDTO `json:"rules"`
}

type ruleDTO struct {
	Title      string `json:"title"`
	Recurrence string `json:"recurrence"`
	Line       int    `json:"line"`
}

type groupsResponse struct {
	Groups   []groupDTO `json:"groups"`
	LoadedAt time.Time  `json:"loaded_at"`
}

func (s *Server) handleGroups(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	groups, loadedAt := s.groups, s.loadedAt
	s.mu.RUnlock()

	names, _ := s.cfg.NameTable()
	resp := groupsResponse{Groups: make([]groupDTO, 0, len(groups)), LoadedAt: loadedAt}
	for _, g := range groups {
		dto := groupDTO{
			ID:    int(g.ID),
			Title: g.Title,
			Style: g.Style,
			Class: g.ID.CSSClass(),
			Rules: make([]ruleDTO, 0, len(g.Rules)),
		}
		for _, r := range g.Rules {
			dto.Rules = append(dto.Rules, ruleDTO{
				Title:      r.Title,
				Recurrence: definition.FormatRecurrence(r.Recurrence, names),
				Line:       r.Line,
			})
		}
		resp.Groups = append(resp.Groups, dto)
	}
	writeJSON(w, http.StatusOK, resp)
}

// occurrenceDTO is a JSON-friendly view of occurrences.
type occurrenceDTO struct {
	Date    string `json:"date"`
	GroupID int    `json:"group_id"`
	Group   string `json:"group"`
	Title   string `json:"title"`
}

type occurrencesResponse struct {
	Year        int             `json:"year"`
	Occurrences []occurrenceDTO `json:"occurrences"`
}

// handleOccurrences lists the resolved events of one year.
//
// GET /api/occurrences?year=2025&group=Holidays
func (s *Server) handleOccurrences(w http.ResponseWriter, r *http.Request) {
	year, groups, _, ok := s.requestScope(w, r)
	if !ok {
		return
	}

	idx := index.Build(groups, year)
	resp := occurrencesResponse{Year: year, Occurrences: make([]occurrenceDTO, 0, idx.Len())}
	for _, occ := range idx.Occurrences() {
		resp.Occurrences = append(resp.Occurrences, occurrenceDTO{
			Date:    occ.Date.String(),
			GroupID: int(occ.GroupID),
			Group:   occ.Group,
			Title:   occ.Title,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCalendar renders a page style.
//
// GET /calendar/{yearly|halfyear|monthly|diary}?year=2025&format=pdf&group=...
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	kind, err := pipeline.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	format := pipeline.HTML
	if f := r.URL.Query().Get("format"); f != "" {
		format, err = pipeline.ParseFormat(f)
		if err != nil || format == pipeline.ICS {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", f))
			return
		}
	}
	s.servePage(w, r, pipeline.Output{Kind: kind, Format: format})
}

// handleICS exports the occurrences of one year as iCalendar.
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	s.servePage(w, r, pipeline.Output{Kind: pipeline.Yearly, Format: pipeline.ICS})
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request, out pipeline.Output) {
	year, groups, gen, ok := s.requestScope(w, r)
	if !ok {
		return
	}

	key := pageKey{gen: gen, output: out, year: year, groups: groupKey(groups)}
	data, hit := s.pages.Get(key)

	if !hit {
		start := time.Now()
		var err error
		data, err = s.builder.Build(r.Context(), groups, year, out)
		if err != nil {
			appLog.Error("render failed", err, "output", out.String(), "year", year)
			writeError(w, http.StatusInternalServerError, "failed to render calendar")
			return
		}
		s.storePage(key, data)
		appLog.Debug("page rendered", "output", out.String(), "year", year, "elapsed", time.Since(start))
	}
	writePage(w, out, year, data)
}

// storePage caches data unless a reload happened while it was rendered.
// Holding the read lock orders the store before the next generation's purge.
func (s *Server) storePage(key pageKey, data []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if key.gen == s.gen {
		s.pages.Add(key, data)
	}
}

func writePage(w http.ResponseWriter, out pipeline.Output, year int, data []byte) {
	w.Header().Set("Content-Type", out.Format.ContentType())
	if out.Format != pipeline.HTML {
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", out.FileName(year)))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// requestScope reads ?year= and ?group= (repeatable). Without groups the
// configured selection applies.
func (s *Server) requestScope(w http.ResponseWriter, r *http.Request) (int, []definition.Group, uint64, bool) {
	q := r.URL.Query()

	year := s.cfg.Year
	if year == 0 {
		year = s.now().Year()
	}
	if v := q.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < minYear || n > maxYear {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("year must be between %d and %d", minYear, maxYear))
			return 0, nil, 0, false
		}
		year = n
	}

	titles := q["group"]
	if len(titles) == 0 {
		titles = s.cfg.Groups
	}
	all, gen := s.snapshot()
	groups, err := pipeline.Select(all, titles)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, nil, 0, false
	}
	return year, groups, gen, true
}

func groupKey(groups []definition.Group) string {
	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, strconv.Itoa(int(g.ID)))
	}
	slices.Sort(ids)
	return strings.Join(ids, ",")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
