package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/cabell132/FitnessTracker/internal/domain"
	"github.com/cabell132/FitnessTracker/internal/healthexport"
	"github.com/cabell132/FitnessTracker/internal/observability"
	"github.com/cabell132/FitnessTracker/internal/watermark"
)

// HealthSource lists and opens export files from the drop directory.
type HealthSource interface {
	ListNewFiles(subdir string, since time.Time) ([]healthexport.File, error)
	Open(f healthexport.File) (io.ReadCloser, error)
}

// HealthStore persists parsed export rows.
type HealthStore interface {
	UpsertHealthRecords(ctx context.Context, records []domain.HealthRecord) error
	PromoteHealthRecords(ctx context.Context) (int64, error)
}

// WatermarkStore loads and saves the per-category watermark file.
type WatermarkStore interface {
	Load() (watermark.Marks, error)
	Save(watermark.Marks) error
}

// DefaultHealthCategories are the export subdirectories scanned per
// run, each with its own watermark.
var DefaultHealthCategories = []string{"metrics", "workouts"}

// HealthSyncer pulls the health CSV export into the canonical store.
type HealthSyncer struct {
	source     HealthSource
	store      HealthStore
	marks      WatermarkStore
	categories []string
	logger     *log.Logger
}

// HealthOption configures a HealthSyncer.
type HealthOption func(*HealthSyncer)

// WithHealthLogger sets a custom logger.
func WithHealthLogger(l *log.Logger) HealthOption {
	return func(s *HealthSyncer) { s.logger = l }
}

// WithHealthCategories overrides the scanned subdirectories.
func WithHealthCategories(categories []string) HealthOption {
	return func(s *HealthSyncer) { s.categories = categories }
}

// NewHealthSyncer constructs a HealthSyncer.
func NewHealthSyncer(source HealthSource, store HealthStore, marks WatermarkStore, opts ...HealthOption) *HealthSyncer {
	s := &HealthSyncer{
		source:     source,
		store:      store,
		marks:      marks,
		categories: DefaultHealthCategories,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run ingests every new export file. Each category's watermark only
// advances after its whole batch of files is stored, so a failed run
// replays the same files next time.
func (s *HealthSyncer) Run(ctx context.Context) error {
	marks, err := s.marks.Load()
	if err != nil {
		return fmt.Errorf("load watermarks: %w", err)
	}

	changed := false
	for _, category := range s.categories {
		key := "health." + category
		since := marks.Get(key, time.Time{})

		latest, err := s.runCategory(ctx, category, since)
		if err != nil {
			return fmt.Errorf("health category %s: %w", category, err)
		}
		if latest.After(since) {
			marks.Set(key, latest)
			observability.RecordWatermark(key, latest)
			changed = true
		}
	}

	if _, err := s.store.PromoteHealthRecords(ctx); err != nil {
		return fmt.Errorf("promote health records: %w", err)
	}

	if !changed {
		return nil
	}
	if err := s.marks.Save(marks); err != nil {
		return fmt.Errorf("save watermarks: %w", err)
	}
	return nil
}

// runCategory parses and stores one category's new files. Returns the
// newest file time stored.
func (s *HealthSyncer) runCategory(ctx context.Context, category string, since time.Time) (time.Time, error) {
	files, err := s.source.ListNewFiles(category, since)
	if err != nil {
		return time.Time{}, err
	}

	var latest time.Time
	var batch []domain.HealthRecord
	for _, file := range files {
		records, err := s.parseFile(file)
		if errors.Is(err, healthexport.ErrNoDateColumn) {
			s.logger.Printf("health: skipping %s: no date column", file.Path)
			continue
		}
		if err != nil {
			return time.Time{}, err
		}
		batch = append(batch, records...)
		if file.Modified.After(latest) {
			latest = file.Modified
		}
	}

	if len(batch) == 0 {
		return latest, nil
	}
	if err := s.store.UpsertHealthRecords(ctx, batch); err != nil {
		return time.Time{}, err
	}
	s.logger.Printf("health: stored %d records from %d files in %s", len(batch), len(files), category)
	observability.RecordWorkoutSynced("health")
	return latest, nil
}

func (s *HealthSyncer) parseFile(file healthexport.File) ([]domain.HealthRecord, error) {
	r, err := s.source.Open(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return healthexport.ParseRecords(r)
}
