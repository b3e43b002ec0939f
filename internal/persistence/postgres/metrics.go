package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cabell132/FitnessTracker/internal/domain"
)

// CaloriesMetricName is the derived per-workout energy metric.
const CaloriesMetricName = "Calories Burned"

// caloriesPerMinute is the flat estimate applied to workout duration.
const caloriesPerMinute = 7.0

// RecomputeCalories rewrites the derived calories metric for every
// workout with known start and end. Idempotent: the (workout, metric)
// pair is unique and the value is recomputed in place.
func (s *Store) RecomputeCalories(ctx context.Context) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		const ensureMetric = `INSERT INTO metrics (name, unit)
            VALUES ($1, 'kcal')
            ON CONFLICT (name) DO NOTHING`
		if _, err := tx.Exec(ctx, ensureMetric, CaloriesMetricName); err != nil {
			return err
		}

		const recompute = `INSERT INTO metric_items (metric_id, value, recorded_at, workout_id)
            SELECT m.id,
                EXTRACT(EPOCH FROM w.end_date - w.start_date) / 60.0 * $2,
                w.end_date,
                w.id
            FROM workouts w
            JOIN metrics m ON m.name = $1
            WHERE w.start_date IS NOT NULL AND w.end_date IS NOT NULL
            ON CONFLICT (workout_id, metric_id) DO UPDATE SET
                value = EXCLUDED.value,
                recorded_at = EXCLUDED.recorded_at`
		_, err := tx.Exec(ctx, recompute, CaloriesMetricName, caloriesPerMinute)
		return err
	})
}

// MapMetricToAssessment links a metric to a coaching-platform
// assessment so its items get pushed back.
func (s *Store) MapMetricToAssessment(ctx context.Context, metricName string, assessmentID int64) error {
	const upsert = `INSERT INTO metrics (name, coach_assessment_id)
        VALUES ($1,$2)
        ON CONFLICT (name) DO UPDATE SET
            coach_assessment_id = COALESCE(metrics.coach_assessment_id, EXCLUDED.coach_assessment_id)`
	_, err := s.pool.Exec(ctx, upsert, metricName, assessmentID)
	return err
}

// PendingAssessment is one metric value awaiting push to the coaching
// platform.
type PendingAssessment struct {
	MetricItemID int64
	AssessmentID int64
	Value        float64
	RecordedAt   time.Time
}

// UnpushedAssessments lists metric items whose metric maps to an
// assessment but which have never been pushed, oldest first.
func (s *Store) UnpushedAssessments(ctx context.Context) ([]PendingAssessment, error) {
	const query = `SELECT mi.id, m.coach_assessment_id, mi.value, mi.recorded_at
        FROM metric_items mi
        JOIN metrics m ON m.id = mi.metric_id
        WHERE m.coach_assessment_id IS NOT NULL AND mi.coach_item_id IS NULL
        ORDER BY mi.recorded_at`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingAssessment
	for rows.Next() {
		var p PendingAssessment
		if err := rows.Scan(&p.MetricItemID, &p.AssessmentID, &p.Value, &p.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkAssessmentPushed records the platform's id for a pushed metric
// item and mirrors the returned assessment row. Re-running the push
// skips items that already carry a coach item id.
func (s *Store) MarkAssessmentPushed(ctx context.Context, metricItemID int64, item domain.CoachAssessmentItem) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE metric_items SET coach_item_id = COALESCE(coach_item_id, $2) WHERE id = $1`,
			metricItemID, item.ID,
		); err != nil {
			return err
		}

		const mirror = `INSERT INTO coach_assessment_items (id, assessment_id, recorded_at, value)
            VALUES ($1,$2,$3,$4)
            ON CONFLICT (id) DO UPDATE SET
                assessment_id = EXCLUDED.assessment_id,
                recorded_at = EXCLUDED.recorded_at,
                value = EXCLUDED.value`
		_, err := tx.Exec(ctx, mirror, item.ID, item.AssessmentID, item.RecordedAt, item.Value)
		return err
	})
}
