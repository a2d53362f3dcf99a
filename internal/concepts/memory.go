package concepts

import (
	"context"
	"sort"
	"sync"

	"archetypon/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	concepts    map[int]model.Concept
	runs        map[string]model.RunRecord
	history     map[string][]float64
	diagnostics map[string][]model.EpochDiagnostics
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.concepts = make(map[int]model.Concept)
	s.runs = make(map[string]model.RunRecord)
	s.history = make(map[string][]float64)
	s.diagnostics = make(map[string][]model.EpochDiagnostics)
	return nil
}

func (s *MemoryStore) SaveConcept(_ context.Context, concept model.Concept) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.concepts[concept.Index] = concept
	return nil
}

func (s *MemoryStore) GetConcept(_ context.Context, index int) (model.Concept, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	concept, ok := s.concepts[index]
	return concept, ok, nil
}

func (s *MemoryStore) ListConcepts(_ context.Context) ([]model.Concept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Concept, 0, len(s.concepts))
	for _, concept := range s.concepts {
		out = append(out, concept)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (s *MemoryStore) SaveRunRecord(_ context.Context, record model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[record.RunID] = record
	return nil
}

func (s *MemoryStore) GetRunRecord(_ context.Context, runID string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.runs[runID]
	return record, ok, nil
}

func (s *MemoryStore) ListRunRecords(_ context.Context) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.RunRecord, 0, len(s.runs))
	for _, record := range s.runs {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAtUTC < out[j].CreatedAtUTC })
	return out, nil
}

func (s *MemoryStore) SaveFitnessHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[runID] = append([]float64(nil), history...)
	return nil
}

func (s *MemoryStore) GetFitnessHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]float64(nil), history...), true, nil
}

func (s *MemoryStore) SaveDiagnostics(_ context.Context, runID string, diagnostics []model.EpochDiagnostics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.EpochDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	s.diagnostics[runID] = copied
	return nil
}

func (s *MemoryStore) GetDiagnostics(_ context.Context, runID string) ([]model.EpochDiagnostics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diagnostics, ok := s.diagnostics[runID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.EpochDiagnostics, len(diagnostics))
	copy(copied, diagnostics)
	return copied, true, nil
}
