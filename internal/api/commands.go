package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/talgya/mini-park/internal/catalog"
	"github.com/talgya/mini-park/internal/park"
	"github.com/talgya/mini-park/internal/world"
)

// maxBodyBytes bounds command request bodies.
const maxBodyBytes = 1 << 16

// commandStatus maps a rejected command to an HTTP status.
func commandStatus(err error) int {
	switch {
	case errors.Is(err, park.ErrFacilityNotFound):
		return http.StatusNotFound
	case errors.Is(err, park.ErrOutOfBounds),
		errors.Is(err, park.ErrUnknownBuilding),
		errors.Is(err, park.ErrNotResearchable):
		return http.StatusBadRequest
	case errors.Is(err, park.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, park.ErrTileOccupied),
		errors.Is(err, park.ErrNoAdjacentPath),
		errors.Is(err, park.ErrLocked),
		errors.Is(err, park.ErrNotBroken),
		errors.Is(err, park.ErrResearchInProgress),
		errors.Is(err, park.ErrAlreadyUnlocked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// command runs fn through the engine and returns the state it produced. On
// rejection it writes the error response and returns nil.
func (s *Server) command(w http.ResponseWriter, action string, fn func(st *park.State) error) *park.State {
	var after *park.State
	err := s.Eng.Do(func(st *park.State) error {
		if err := fn(st); err != nil {
			return err
		}
		after = st
		return nil
	})
	if err != nil {
		slog.Info("command rejected", "action", action, "error", err)
		writeError(w, commandStatus(err), err)
		return nil
	}
	slog.Info("command applied", "action", action, "tick", after.Tick, "money", after.Money)
	return after
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

// facilityCoord reads the {x}/{y} route parameters.
func facilityCoord(w http.ResponseWriter, r *http.Request) (world.Coord, bool) {
	x, errX := strconv.Atoi(chi.URLParam(r, "x"))
	y, errY := strconv.Atoi(chi.URLParam(r, "y"))
	if errX != nil || errY != nil {
		http.Error(w, "invalid coordinates", http.StatusBadRequest)
		return world.Coord{}, false
	}
	return world.Coord{X: x, Y: y}, true
}

func facilityInfo(st *park.State, c world.Coord) (park.FacilityInfo, bool) {
	for _, f := range st.FacilityList() {
		if f.Pos == c {
			return f, true
		}
	}
	return park.FacilityInfo{}, false
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X        int                `json:"x"`
		Y        int                `json:"y"`
		Building catalog.BuildingID `json:"building"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	st := s.command(w, "build", func(st *park.State) error {
		return st.PlaceBuilding(req.X, req.Y, req.Building)
	})
	if st == nil {
		return
	}

	resp := map[string]any{
		"pos":      world.Coord{X: req.X, Y: req.Y},
		"building": req.Building,
		"money":    st.Money,
	}
	if f, ok := facilityInfo(st, world.Coord{X: req.X, Y: req.Y}); ok {
		resp["facility"] = f
	}
	writeJSONStatus(w, http.StatusCreated, resp)
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	c, ok := facilityCoord(w, r)
	if !ok {
		return
	}
	st := s.command(w, "upgrade", func(st *park.State) error { return st.Upgrade(c) })
	if st == nil {
		return
	}
	f, _ := facilityInfo(st, c)
	writeJSON(w, map[string]any{"facility": f, "money": st.Money})
}

func (s *Server) handleRepair(w http.ResponseWriter, r *http.Request) {
	c, ok := facilityCoord(w, r)
	if !ok {
		return
	}
	st := s.command(w, "repair", func(st *park.State) error { return st.Repair(c) })
	if st == nil {
		return
	}
	f, _ := facilityInfo(st, c)
	writeJSON(w, map[string]any{"facility": f, "money": st.Money})
}

func (s *Server) handleDemolish(w http.ResponseWriter, r *http.Request) {
	c, ok := facilityCoord(w, r)
	if !ok {
		return
	}
	st := s.command(w, "demolish", func(st *park.State) error { return st.Demolish(c) })
	if st == nil {
		return
	}
	writeJSON(w, map[string]any{"pos": c, "money": st.Money})
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Building catalog.BuildingID `json:"building"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	st := s.command(w, "research", func(st *park.State) error { return st.StartResearch(req.Building) })
	if st == nil {
		return
	}
	writeJSON(w, map[string]any{"research": st.Research, "money": st.Money})
}

func (s *Server) handleEntryFee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fee *int64 `json:"fee"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Fee == nil {
		http.Error(w, "fee is required", http.StatusBadRequest)
		return
	}
	var applied int64
	st := s.command(w, "entry-fee", func(st *park.State) error {
		applied = st.SetEntryFee(*req.Fee)
		return nil
	})
	if st == nil {
		return
	}
	writeJSON(w, map[string]int64{"requested": *req.Fee, "entry_fee": applied})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speed *float64 `json:"speed"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Speed == nil {
		http.Error(w, "speed is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]float64{"speed": s.Eng.SetSpeed(*req.Speed)})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.Eng.Pause()
	writeJSON(w, map[string]bool{"paused": s.Eng.Paused()})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.Eng.Resume()
	writeJSON(w, map[string]bool{"paused": s.Eng.Paused()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	st := s.Eng.Snapshot()
	id, err := s.DB.SaveParkState(st)
	if err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"id":      id,
		"tick":    st.Tick,
		"message": fmt.Sprintf("snapshot saved at %s", park.ClockLabel(st.GameMinutes)),
	})
}
