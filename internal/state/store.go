package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store reads and writes workflow records under a single agents directory.
type Store struct {
	agentsDir string
}

// NewStore creates a Store rooted at the given agents directory
// (conventionally "agents" relative to the project root).
func NewStore(agentsDir string) *Store {
	return &Store{agentsDir: agentsDir}
}

// Path returns the state file path for a workflow id:
// <agents-dir>/<adw-id>/adw_state.json.
func (s *Store) Path(adwID string) string {
	return filepath.Join(s.agentsDir, adwID, "adw_state.json")
}

// Create builds a new record for the given workflow, persists it, and
// returns it. The record starts at the classify phase with no completed
// phases.
func (s *Store) Create(adwID, issueNumber string, workflow Workflow) (*Record, error) {
	ts := now()
	record := &Record{
		ADWID:           adwID,
		IssueNumber:     issueNumber,
		Workflow:        workflow,
		CurrentPhase:    PhaseClassify,
		CompletedPhases: []Phase{},
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
	if err := s.write(record); err != nil {
		return nil, err
	}
	return record, nil
}

// Load reads the record for a workflow id. Returns (nil, nil) when no state
// file exists: callers distinguish "not started" from real read failures.
func (s *Store) Load(adwID string) (*Record, error) {
	data, err := os.ReadFile(s.Path(adwID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("state: reading %q: %w", s.Path(adwID), err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("state: parsing %q: %w", s.Path(adwID), err)
	}
	return &record, nil
}

// Save persists the record, refreshing its UpdatedAt timestamp.
func (s *Store) Save(record *Record) error {
	record.UpdatedAt = now()
	return s.write(record)
}

// Advance marks the current phase as completed and moves to the next phase,
// persisting the record. The current phase is appended to CompletedPhases
// only when not already present, so rerunning a phase does not duplicate the
// bookkeeping.
func (s *Store) Advance(record *Record, next Phase) error {
	completed := false
	for _, p := range record.CompletedPhases {
		if p == record.CurrentPhase {
			completed = true
			break
		}
	}
	if !completed {
		record.CompletedPhases = append(record.CompletedPhases, record.CurrentPhase)
	}
	record.CurrentPhase = next
	return s.Save(record)
}

// MarkError records a failure message and persists the record.
func (s *Store) MarkError(record *Record, message string) error {
	record.Error = message
	return s.Save(record)
}

// write serializes the record to a temp file in the state directory and
// renames it into place. Indented JSON keeps the file diffable for audit.
func (s *Store) write(record *Record) error {
	path := s.Path(record.ADWID)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("state: creating directory %q: %w", dir, err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("state: encoding record %q: %w", record.ADWID, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("state: writing temp file %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return fmt.Errorf("state: renaming temp file to %q: %w", path, err)
	}
	return nil
}
