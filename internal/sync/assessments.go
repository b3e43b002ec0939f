package sync

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/cabell132/FitnessTracker/internal/domain"
	"github.com/cabell132/FitnessTracker/internal/observability"
	"github.com/cabell132/FitnessTracker/internal/persistence/postgres"
	"github.com/cabell132/FitnessTracker/internal/truecoach"
)

// AssessmentStore reads unpushed metric values and records pushes.
type AssessmentStore interface {
	UnpushedAssessments(ctx context.Context) ([]postgres.PendingAssessment, error)
	MarkAssessmentPushed(ctx context.Context, metricItemID int64, item domain.CoachAssessmentItem) error
}

// AssessmentWriter posts assessment values to the coaching platform.
type AssessmentWriter interface {
	PostAssessmentItem(ctx context.Context, req truecoach.AssessmentItemRequest) (*truecoach.AssessmentItem, error)
}

// AssessmentPusher pushes recorded metric values to their mapped
// coaching-platform assessments.
type AssessmentPusher struct {
	store  AssessmentStore
	target AssessmentWriter
	logger *log.Logger
}

// AssessmentOption configures an AssessmentPusher.
type AssessmentOption func(*AssessmentPusher)

// WithAssessmentLogger sets a custom logger.
func WithAssessmentLogger(l *log.Logger) AssessmentOption {
	return func(p *AssessmentPusher) { p.logger = l }
}

// NewAssessmentPusher constructs an AssessmentPusher.
func NewAssessmentPusher(store AssessmentStore, target AssessmentWriter, opts ...AssessmentOption) *AssessmentPusher {
	p := &AssessmentPusher{store: store, target: target, logger: log.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run pushes every unpushed value. Each push records the platform's id
// before moving on, so an interrupted run resumes where it stopped and
// never posts a value twice.
func (p *AssessmentPusher) Run(ctx context.Context) error {
	pending, err := p.store.UnpushedAssessments(ctx)
	if err != nil {
		return fmt.Errorf("list unpushed assessments: %w", err)
	}

	for _, item := range pending {
		req := truecoach.AssessmentItemRequest{
			AssessmentID: item.AssessmentID,
			Value:        strconv.FormatFloat(item.Value, 'f', -1, 64),
			Date:         item.RecordedAt.Format("2006-01-02"),
		}
		res, err := p.target.PostAssessmentItem(ctx, req)
		if err != nil {
			p.logger.Printf("assessments: skipping metric item %d: %v", item.MetricItemID, err)
			observability.RecordWorkoutFailure("assessments")
			continue
		}

		pushed := domain.CoachAssessmentItem{
			ID:           res.ID,
			AssessmentID: res.AssessmentID,
			RecordedAt:   item.RecordedAt,
			Value:        res.Value,
		}
		if err := p.store.MarkAssessmentPushed(ctx, item.MetricItemID, pushed); err != nil {
			return fmt.Errorf("record pushed assessment %d: %w", res.ID, err)
		}
		observability.RecordWorkoutSynced("assessments")
	}
	return nil
}
