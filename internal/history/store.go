// Package history keeps completed scans in a single persisted blob and
// derives the chart views from it.
package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/ai-detector/internal/domain/detection"
	"github.com/bryanwahyu/ai-detector/internal/infra/storage"
)

// Store holds the history newest first. Every mutation rewrites the whole
// blob while holding mu, so flushes follow the order of their mutations.
type Store struct {
	mu      sync.Mutex
	backend storage.Backend
	key     string
	log     *zap.Logger
	records []detection.ScanRecord
	agg     *Aggregates
	newID   func() string
}

func NewStore(backend storage.Backend, key string, log *zap.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		backend: backend,
		key:     key,
		log:     log,
		agg:     NewAggregates(),
		newID:   uuid.NewString,
	}
}

// Load reads the persisted history. An absent or unusable blob leaves an
// empty history; only backend read failures are returned.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range LegacyKeys {
		if k == s.key {
			continue
		}
		if err := s.backend.Remove(ctx, k); err != nil {
			s.log.Warn("remove legacy history key", zap.String("key", k), zap.Error(err))
		}
	}

	s.records = nil
	s.agg.Reset()

	blob, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("%w: read history: %w", detection.ErrPersistence, err)
	}
	if !ok {
		return nil
	}

	records, dropped, err := Decode(blob)
	if err != nil {
		s.log.Warn("discarding unreadable history", zap.String("key", s.key), zap.Error(err))
		if err := s.backend.Remove(ctx, s.key); err != nil {
			s.log.Warn("remove unreadable history", zap.Error(err))
		}
		return nil
	}
	if dropped > 0 {
		s.log.Info("dropped malformed history entries", zap.Int("dropped", dropped), zap.Int("kept", len(records)))
	}

	s.records = records
	s.agg.Rebuild(records)
	return nil
}

// Prepend adds rec as the newest entry and persists the full history. The
// in-memory history keeps the record even when the write fails.
func (s *Store) Prepend(ctx context.Context, rec detection.ScanRecord) (detection.ScanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ScanID == "" {
		rec.ScanID = s.newID()
	}
	rec = cloneRecord(rec)

	s.records = append([]detection.ScanRecord{rec}, s.records...)
	s.agg.Add(rec)

	if err := s.flush(ctx); err != nil {
		return cloneRecord(rec), err
	}
	return cloneRecord(rec), nil
}

// Clear empties the history and removes the blob.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.agg.Reset()
	if err := s.backend.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("%w: clear history: %w", detection.ErrPersistence, err)
	}
	return nil
}

// Records returns a copy of the history, newest first.
func (s *Store) Records() []detection.ScanRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]detection.ScanRecord, len(s.records))
	for i, r := range s.records {
		out[i] = cloneRecord(r)
	}
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Trend is RiskOverTime over the current history.
func (s *Store) Trend() []TrendPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agg.Trend()
}

// Distribution is RiskByType over the current history.
func (s *Store) Distribution() []TypeRisk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agg.Distribution()
}

func (s *Store) flush(ctx context.Context) error {
	blob, err := Encode(s.records)
	if err != nil {
		return fmt.Errorf("%w: encode history: %w", detection.ErrPersistence, err)
	}
	if err := s.backend.Set(ctx, s.key, blob); err != nil {
		s.log.Error("persist history", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("%w: write history: %w", detection.ErrPersistence, err)
	}
	return nil
}

func cloneRecord(r detection.ScanRecord) detection.ScanRecord {
	r.Detection.Signals = append([]string(nil), r.Detection.Signals...)
	r.Detection.ModelSuspected = clonePtr(r.Detection.ModelSuspected)
	r.Recommendations = append([]string{}, r.Recommendations...)
	r.Humanizer.ChangesMade = append([]string{}, r.Humanizer.ChangesMade...)
	r.Humanizer.HumanizedText = clonePtr(r.Humanizer.HumanizedText)
	r.Humanizer.Notes = clonePtr(r.Humanizer.Notes)
	r.FileInfo.Name = clonePtr(r.FileInfo.Name)
	r.FileInfo.SizeBytes = clonePtr(r.FileInfo.SizeBytes)
	r.FileInfo.Pages = clonePtr(r.FileInfo.Pages)
	return r
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
