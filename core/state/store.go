package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Store is the durable state store for all tracked sources. It persists to
// a single JSON file, keyed by source identity (the table file name).
//
// The store exclusively owns all SourceState entries. Callers that need to
// mutate a source's state work on a Clone and hand it back via Commit.
// Save serializes writes under a store-wide mutex, so two sources saving in
// the same cycle never race on the temporary file.
type Store struct {
	mu      sync.Mutex
	path    string
	logger  *zap.Logger
	sources map[string]*SourceState
}

// NewStore creates a store backed by the given file path. Call Load before
// first use.
func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{
		path:    path,
		logger:  logger,
		sources: make(map[string]*SourceState),
	}
}

// Load reads persisted state from disk. A missing file is not an error:
// the store starts empty. A corrupt or unreadable file is logged and the
// store starts fresh rather than failing the process; the cost is one-time
// re-detection of every record as new.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("No existing state file, starting with empty state",
				zap.String("path", s.path))
		} else {
			s.logger.Warn("Could not read state file, starting fresh",
				zap.String("path", s.path), zap.Error(err))
		}
		s.sources = make(map[string]*SourceState)
		return
	}

	var loaded map[string]*SourceState
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Warn("State file is corrupt, starting fresh; all records will re-detect as new once",
			zap.String("path", s.path), zap.Error(err))
		s.sources = make(map[string]*SourceState)
		return
	}

	for _, st := range loaded {
		if st.Records == nil {
			st.Records = make(map[string]*RecordState)
		}
	}
	s.sources = loaded

	s.logger.Info("State loaded", zap.String("path", s.path), zap.Int("sources", len(loaded)))
	for name, st := range loaded {
		s.logger.Debug("Tracked source",
			zap.String("source", name), zap.Int("records", len(st.Records)))
	}
}

// SourceState returns the state for a source, lazily creating an empty one.
// The returned value is owned by the store; callers must Clone before
// mutating and must not retain the reference past a detection pass.
func (s *Store) SourceState(sourceID string) *SourceState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sources[sourceID]
	if !ok {
		st = NewSourceState()
		s.sources[sourceID] = st
	}
	return st
}

// Commit replaces a source's state wholesale. The store takes ownership of
// the passed value.
func (s *Store) Commit(sourceID string, st *SourceState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources[sourceID] = st
}

// Save atomically persists the full store to disk: state is written to a
// temporary file in the same directory, fsynced, then promoted with an
// atomic rename. A crash mid-write leaves the canonical file exactly as it
// was; readers only ever observe the previous or the new complete state.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.sources, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("promote state file: %w", err)
	}

	s.logger.Debug("State saved", zap.String("path", s.path), zap.Int("sources", len(s.sources)))
	return nil
}

// Reset drops the tracked state for one source. The caller decides whether
// to Save afterwards.
func (s *Store) Reset(sourceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sources[sourceID]; !ok {
		return false
	}
	delete(s.sources, sourceID)
	return true
}

// ResetAll drops all tracked state.
func (s *Store) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = make(map[string]*SourceState)
}

// Sources returns the tracked source names in sorted order.
func (s *Store) Sources() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.sources))
	for name := range s.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a read-only summary of every tracked source.
func (s *Store) Snapshot() map[string]SourceInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]SourceInfo, len(s.sources))
	for name, st := range s.sources {
		info := SourceInfo{
			LastProcessed: st.LastProcessed,
			LastDocNo:     st.LastDocNo,
		}
		for _, rs := range st.Records {
			if rs.Deleted {
				info.DeletedRecords++
			} else {
				info.TrackedRecords++
			}
		}
		out[name] = info
	}
	return out
}
