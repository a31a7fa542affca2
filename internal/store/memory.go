package store

import (
	"context"
	"sort"
	"sync"

	"github.com/nikhilbhat/courtwatch/internal/models"
)

// Memory is an in-process Store for tests and one-shot CLI use.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*models.CaseRecord
	prints  map[string]models.Fingerprint
	tracked map[string]TrackedCase
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]*models.CaseRecord),
		prints:  make(map[string]models.Fingerprint),
		tracked: make(map[string]TrackedCase),
	}
}

// Track enrolls a case without storing a record, so the bulk driver
// picks it up on the next run.
func (m *Memory) Track(tc TrackedCase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracked[tc.CNR] = tc
}

func (m *Memory) Upsert(_ context.Context, rec *models.CaseRecord, fp models.Fingerprint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[rec.CNR] = rec
	m.prints[rec.CNR] = fp
	if _, ok := m.tracked[rec.CNR]; !ok {
		m.tracked[rec.CNR] = TrackedCase{CNR: rec.CNR, Court: rec.Court}
	}
	return nil
}

func (m *Memory) GetFingerprint(_ context.Context, cnr string) (*models.Fingerprint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	fp, ok := m.prints[cnr]
	if !ok {
		return nil, nil
	}
	return &fp, nil
}

func (m *Memory) GetRecord(_ context.Context, cnr string) (*models.CaseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[cnr]
	if !ok {
		return nil, ErrNotTracked
	}
	return rec, nil
}

func (m *Memory) ListTracked(_ context.Context) ([]TrackedCase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]TrackedCase, 0, len(m.tracked))
	for _, tc := range m.tracked {
		out = append(out, tc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CNR < out[j].CNR })
	return out, nil
}
