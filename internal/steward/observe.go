// Package steward implements the autonomous park caretaker.
// It observes the park via the public API, decides on upkeep with
// deterministic rules, and acts via the admin command endpoints.
package steward

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ParkSnapshot holds all data collected during an observation cycle.
type ParkSnapshot struct {
	Status  ParkStatus     `json:"status"`
	Broken  []FacilityInfo `json:"broken"`
	History []DayRow       `json:"history"`
}

// ParkStatus mirrors the fields of GET /api/v1/status the steward uses.
type ParkStatus struct {
	Name            string  `json:"name"`
	Tick            uint64  `json:"tick"`
	SimTime         string  `json:"sim_time"`
	Paused          bool    `json:"paused"`
	Money           int64   `json:"money"`
	EntryFee        int64   `json:"entry_fee"`
	Rating          int     `json:"rating"`
	Visitors        int     `json:"visitors"`
	AvgSatisfaction float64 `json:"avg_satisfaction"`
}

// Coord mirrors the "x,y" position encoding.
type Coord struct {
	X, Y int
}

// MarshalText formats "x,y".
func (c Coord) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%d,%d", c.X, c.Y)), nil
}

// UnmarshalText parses "x,y".
func (c *Coord) UnmarshalText(text []byte) error {
	_, err := fmt.Sscanf(string(text), "%d,%d", &c.X, &c.Y)
	return err
}

// FacilityInfo mirrors items from GET /api/v1/facilities.
type FacilityInfo struct {
	Pos       Coord  `json:"pos"`
	Building  string `json:"building"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Level     int    `json:"level"`
	Broken    bool   `json:"broken"`
	Users     int64  `json:"users"`
	RepairFee int64  `json:"repair_fee"`
}

// DayRow mirrors items from GET /api/v1/history.
type DayRow struct {
	Day           int   `json:"day"`
	Income        int64 `json:"income"`
	Expense       int64 `json:"expense"`
	PeakVisitors  int   `json:"peak_visitors"`
	Breakdowns    int   `json:"breakdowns"`
	ClosingMoney  int64 `json:"closing_money"`
	ClosingRating int   `json:"closing_rating"`
}

// Observer fetches park state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches status, broken facilities and recent days. History is
// optional: a park running without a database still gets tended.
func (o *Observer) Observe() (*ParkSnapshot, error) {
	snap := &ParkSnapshot{}

	if err := o.fetchJSON("/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON("/api/v1/facilities?broken=true", &snap.Broken); err != nil {
		return nil, fmt.Errorf("fetch facilities: %w", err)
	}
	if err := o.fetchJSON("/api/v1/history?limit=7", &snap.History); err != nil {
		snap.History = nil
	}

	return snap, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(path string, target any) error {
	resp, err := o.HTTPClient.Get(o.BaseURL + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
