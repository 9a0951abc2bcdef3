package steward

import (
	"encoding/json"
	"log/slog"
	"os"
)

const maxRecords = 20

// CycleRecord captures what happened in a single steward cycle.
type CycleRecord struct {
	Tick        uint64   `json:"tick"`
	Actions     []Action `json:"actions"`
	Failed      int      `json:"failed"`
	Money       int64    `json:"money"`
	Rating      int      `json:"rating"`
	CrisisLevel string   `json:"crisis_level"`
}

// CycleMemory manages a ring of recent steward cycle records.
type CycleMemory struct {
	Records []CycleRecord `json:"records"`
	path    string
}

// LoadMemory reads the memory file at path. Returns empty memory if it is
// missing or unreadable.
func LoadMemory(path string) *CycleMemory {
	mem := &CycleMemory{path: path}
	if path == "" {
		return mem
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return mem
	}
	if err := json.Unmarshal(data, mem); err != nil {
		slog.Warn("steward memory corrupted, starting fresh", "error", err)
		return &CycleMemory{path: path}
	}
	return mem
}

// Save writes the memory to disk. In-memory instances are not persisted.
func (m *CycleMemory) Save() {
	if m.path == "" {
		return
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		slog.Error("failed to marshal steward memory", "error", err)
		return
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		slog.Error("failed to write steward memory", "error", err)
	}
}

// Record adds a cycle record, trimming to maxRecords.
func (m *CycleMemory) Record(r CycleRecord) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// ChangedFeeLastCycle reports whether the previous cycle moved the entry fee.
func (m *CycleMemory) ChangedFeeLastCycle() bool {
	if len(m.Records) == 0 {
		return false
	}
	for _, a := range m.Records[len(m.Records)-1].Actions {
		if a.Kind == ActionEntryFee {
			return true
		}
	}
	return false
}
