package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cabell132/FitnessTracker/internal/domain"
	"github.com/cabell132/FitnessTracker/internal/persistence/postgres"
	"github.com/cabell132/FitnessTracker/internal/truecoach"
)

type stubAssessmentStore struct {
	pending []postgres.PendingAssessment
	pushed  map[int64]domain.CoachAssessmentItem
}

func (s *stubAssessmentStore) UnpushedAssessments(context.Context) ([]postgres.PendingAssessment, error) {
	return s.pending, nil
}

func (s *stubAssessmentStore) MarkAssessmentPushed(_ context.Context, metricItemID int64, item domain.CoachAssessmentItem) error {
	if s.pushed == nil {
		s.pushed = map[int64]domain.CoachAssessmentItem{}
	}
	s.pushed[metricItemID] = item
	return nil
}

type stubAssessmentWriter struct {
	posted []truecoach.AssessmentItemRequest
	fail   bool
	nextID int64
}

func (w *stubAssessmentWriter) PostAssessmentItem(_ context.Context, req truecoach.AssessmentItemRequest) (*truecoach.AssessmentItem, error) {
	if w.fail {
		return nil, &domain.UpstreamAPIError{Message: "server error", StatusCode: 500}
	}
	w.posted = append(w.posted, req)
	w.nextID++
	return &truecoach.AssessmentItem{
		ID:           w.nextID,
		AssessmentID: req.AssessmentID,
		Value:        req.Value,
		Date:         req.Date,
	}, nil
}

func TestAssessmentPushRecordsEveryPushedItem(t *testing.T) {
	recorded := time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)
	store := &stubAssessmentStore{pending: []postgres.PendingAssessment{
		{MetricItemID: 1, AssessmentID: 13513325, Value: 82.4, RecordedAt: recorded},
		{MetricItemID: 2, AssessmentID: 13513325, Value: 82.1, RecordedAt: recorded.Add(24 * time.Hour)},
	}}
	writer := &stubAssessmentWriter{}

	pusher := NewAssessmentPusher(store, writer, WithAssessmentLogger(quiet()))
	require.NoError(t, pusher.Run(context.Background()))

	require.Len(t, writer.posted, 2)
	require.Equal(t, "82.4", writer.posted[0].Value)
	require.Equal(t, "2025-03-01", writer.posted[0].Date)

	require.Len(t, store.pushed, 2)
	require.EqualValues(t, 1, store.pushed[1].ID)
	require.Equal(t, recorded, store.pushed[1].RecordedAt)
}

func TestAssessmentPushFailureLeavesItemPending(t *testing.T) {
	store := &stubAssessmentStore{pending: []postgres.PendingAssessment{
		{MetricItemID: 1, AssessmentID: 13513325, Value: 82.4, RecordedAt: time.Now().UTC()},
	}}
	writer := &stubAssessmentWriter{fail: true}

	pusher := NewAssessmentPusher(store, writer, WithAssessmentLogger(quiet()))
	require.NoError(t, pusher.Run(context.Background()))

	require.Empty(t, store.pushed, "failed post never gets marked pushed")
}
