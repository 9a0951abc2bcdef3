// Package api provides the HTTP API for observing and running the park.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/talgya/mini-park/internal/catalog"
	"github.com/talgya/mini-park/internal/engine"
	"github.com/talgya/mini-park/internal/park"
	"github.com/talgya/mini-park/internal/persistence"
	"github.com/talgya/mini-park/internal/world"
)

// Server serves the park over HTTP.
type Server struct {
	Eng         *engine.Engine
	DB          *persistence.DB // Optional. History, archived news and snapshots need it.
	Hub         *Hub            // Optional. Nil disables the stream endpoint.
	Port        int
	AdminKey    string   // Bearer token for POST endpoints. Empty = POST disabled.
	CORSOrigins []string // Extra allowed origins; localhost dev servers are always allowed
	BuildRate   int      // Build requests per IP per minute (default 60)
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	rate := s.BuildRate
	if rate <= 0 {
		rate = 60
	}
	buildLimiter := NewRateLimiter(rate, time.Minute)

	r := chi.NewRouter()
	r.Use(corsMiddleware(s.CORSOrigins))

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (GET, read-only).
		r.Get("/status", s.handleStatus)
		r.Get("/facilities", s.handleFacilities)
		r.Get("/visitors", s.handleVisitors)
		r.Get("/map", s.handleMap)
		r.Get("/map/pick", s.handlePick)
		r.Get("/news", s.handleNews)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/history", s.handleHistory)
		r.Get("/snapshots", s.handleSnapshots)
		r.Get("/stream", s.handleStream)

		// Admin endpoints (POST, require bearer token).
		r.Group(func(r chi.Router) {
			r.Use(s.adminOnly)
			r.With(buildLimiter.Middleware).Post("/build", s.handleBuild)
			r.Post("/facility/{x}/{y}/upgrade", s.handleUpgrade)
			r.Post("/facility/{x}/{y}/repair", s.handleRepair)
			r.Post("/facility/{x}/{y}/demolish", s.handleDemolish)
			r.Post("/research", s.handleResearch)
			r.Post("/entry-fee", s.handleEntryFee)
			r.Post("/speed", s.handleSpeed)
			r.Post("/pause", s.handlePause)
			r.Post("/resume", s.handleResume)
			r.Post("/snapshot", s.handleSnapshot)
		})
	})
	return r
}

// Start serves the API in a goroutine until ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", srv.Addr, "admin_auth", s.AdminKey != "", "stream", s.Hub != nil)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP shutdown error", "error", err)
		}
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(extra []string) func(http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range extra {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowedOrigins[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires the admin bearer token.
func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no PARKSIM_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Status is the payload of GET /status and of every stream message.
type Status struct {
	park.Report
	Name    string  `json:"name"`
	SimTime string  `json:"sim_time"`
	Speed   float64 `json:"speed"`
	Paused  bool    `json:"paused"`
}

// Status builds the status payload for st.
func (s *Server) Status(st *park.State) Status {
	return Status{
		Report:  st.Report(),
		Name:    "mini-park",
		SimTime: engine.SimTime(st),
		Speed:   s.Eng.Speed(),
		Paused:  s.Eng.Paused(),
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Status(s.Eng.Snapshot()))
}

func (s *Server) handleFacilities(w http.ResponseWriter, r *http.Request) {
	list := s.Eng.Snapshot().FacilityList()
	if list == nil {
		list = []park.FacilityInfo{}
	}
	if r.URL.Query().Get("broken") == "true" {
		list = slices.DeleteFunc(list, func(f park.FacilityInfo) bool { return !f.Broken })
	}
	writeJSON(w, list)
}

func (s *Server) handleVisitors(w http.ResponseWriter, r *http.Request) {
	st := s.Eng.Snapshot()
	limit := queryInt(r, "limit", 200, 1000)
	visitors := st.Visitors
	if len(visitors) > limit {
		visitors = visitors[:limit]
	}
	if visitors == nil {
		visitors = []park.Visitor{}
	}
	writeJSON(w, map[string]any{
		"count":            len(st.Visitors),
		"max_visitors":     st.MaxVisitors,
		"avg_satisfaction": st.AverageSatisfaction(),
		"visitors":         visitors,
	})
}

// mapTile is one non-empty tile with its isometric screen offset.
type mapTile struct {
	Pos      world.Coord        `json:"pos"`
	Kind     string             `json:"kind"`
	Building catalog.BuildingID `json:"building,omitempty"`
	Broken   bool               `json:"broken,omitempty"`
	Visitors int                `json:"visitors,omitempty"`
	ScreenX  float64            `json:"screen_x"`
	ScreenY  float64            `json:"screen_y"`
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	st := s.Eng.Snapshot()

	crowd := make(map[world.Coord]int)
	for _, v := range st.Visitors {
		crowd[v.Pos]++
	}

	tiles := []mapTile{}
	for x := 0; x < world.Size; x++ {
		for y := 0; y < world.Size; y++ {
			c := world.Coord{X: x, Y: y}
			t := st.Grid.At(c)
			if t.Kind == world.KindEmpty {
				continue
			}
			mt := mapTile{Pos: c, Kind: t.Kind.String(), Building: t.Building, Visitors: crowd[c]}
			if f, ok := st.Facilities[c]; ok {
				mt.Broken = f.Broken
			}
			mt.ScreenX, mt.ScreenY = world.WorldToScreen(x, y)
			tiles = append(tiles, mt)
		}
	}

	writeJSON(w, map[string]any{
		"size":        world.Size,
		"tile_width":  world.TileWidth,
		"tile_height": world.TileHeight,
		"tiles":       tiles,
	})
}

// handlePick maps a pointer position to the tile under it.
// GET /api/v1/map/pick?px=..&py=..&cam_x=..&cam_y=..&zoom=..
func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var vals [5]float64
	for i, key := range []string{"px", "py", "cam_x", "cam_y", "zoom"} {
		raw := q.Get(key)
		if raw == "" {
			if key == "zoom" {
				vals[i] = 1
			}
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "invalid "+key, http.StatusBadRequest)
			return
		}
		vals[i] = v
	}
	if vals[4] <= 0 {
		http.Error(w, "zoom must be positive", http.StatusBadRequest)
		return
	}

	c := world.ScreenToWorld(vals[0], vals[1], vals[2], vals[3], vals[4])
	resp := map[string]any{"pos": c, "in_bounds": c.InBounds()}
	if c.InBounds() {
		st := s.Eng.Snapshot()
		t := st.Grid.At(c)
		resp["kind"] = t.Kind.String()
		if t.Building != "" {
			resp["building"] = t.Building
		}
	}
	writeJSON(w, resp)
}

// handleNews serves the newest entries first. The archive is written hourly,
// so entries logged since the last write come from the in-memory log.
func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50, 500)
	var archived []park.News
	if s.DB != nil {
		var err error
		archived, err = s.DB.RecentNews(limit)
		if err != nil {
			slog.Error("news query failed", "error", err)
			archived = nil
		}
	}
	writeJSON(w, mergeNews(s.Eng.Snapshot().News, archived, limit))
}

// mergeNews puts in-memory entries not yet archived ahead of the archived
// ones. live is oldest first, archived newest first.
func mergeNews(live, archived []park.News, limit int) []park.News {
	out := make([]park.News, 0, limit)
	stored := map[park.News]int{}
	if len(archived) > 0 {
		last := archived[0].Tick
		for _, n := range archived {
			if n.Tick != last {
				break
			}
			stored[n]++
		}
		var fresh []park.News
		for i := len(live) - 1; i >= 0; i-- {
			n := live[i]
			if n.Tick < last {
				break
			}
			if n.Tick == last && stored[n] > 0 {
				stored[n]--
				continue
			}
			fresh = append(fresh, n)
		}
		out = append(out, fresh...)
	} else {
		for i := len(live) - 1; i >= 0; i-- {
			out = append(out, live[i])
		}
	}
	out = append(out, archived...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// catalogEntry is a catalog building with its unlock status in this park.
type catalogEntry struct {
	catalog.Building
	Unlocked bool `json:"unlocked"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	st := s.Eng.Snapshot()
	all := catalog.All()
	out := make([]catalogEntry, 0, len(all))
	for _, b := range all {
		out = append(out, catalogEntry{Building: b, Unlocked: st.IsUnlocked(b.ID)})
	}
	writeJSON(w, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	days, err := s.DB.History(queryInt(r, "limit", 30, 365))
	if err != nil {
		slog.Error("history query failed", "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if days == nil {
		days = []engine.DayStats{}
	}
	writeJSON(w, days)
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	list, err := s.DB.Snapshots(queryInt(r, "limit", 20, 200))
	if err != nil {
		slog.Error("snapshot query failed", "error", err)
		http.Error(w, "snapshots unavailable", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []persistence.SnapshotInfo{}
	}
	writeJSON(w, list)
}

// queryInt reads a positive integer query parameter, clamped to upper.
func queryInt(r *http.Request, key string, def, upper int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return min(n, upper)
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSONStatus(w, status, map[string]string{"error": err.Error()})
}
