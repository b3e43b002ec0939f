package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/cabell132/FitnessTracker/internal/domain"
)

// ApplyCoachWorkout absorbs one programmed workout from the coaching
// platform: mirror rows are replaced, the canonical workout is created
// or updated by its coach id, and each item gets a canonical slot and
// an exercise named after it. One transaction per workout. Returns the
// canonical workout id.
func (s *Store) ApplyCoachWorkout(ctx context.Context, w domain.CoachWorkout) (int64, error) {
	var workoutID int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		if err := upsertCoachMirror(ctx, tx, w); err != nil {
			return err
		}

		const upsertWorkout = `INSERT INTO workouts (title, description, start_date, coach_id)
            VALUES ($1,$2,$3,$4)
            ON CONFLICT (coach_id) DO UPDATE SET
                title = EXCLUDED.title,
                description = EXCLUDED.description,
                start_date = COALESCE(workouts.start_date, EXCLUDED.start_date)
            RETURNING id`
		if err := tx.QueryRow(ctx, upsertWorkout,
			w.Title, w.ShortDescription, w.Due, w.ID,
		).Scan(&workoutID); err != nil {
			return err
		}

		const upsertExercise = `INSERT INTO exercises (name, coach_id)
            VALUES ($1,$2)
            ON CONFLICT (name) DO UPDATE SET
                coach_id = COALESCE(exercises.coach_id, EXCLUDED.coach_id)
            RETURNING id`

		const upsertItem = `INSERT INTO workout_items (workout_id, position, exercise_id, coach_item_id)
            VALUES ($1,$2,$3,$4)
            ON CONFLICT (coach_item_id) DO UPDATE SET
                position = EXCLUDED.position,
                exercise_id = COALESCE(workout_items.exercise_id, EXCLUDED.exercise_id)`

		for _, item := range w.Items {
			var exerciseID int64
			if err := tx.QueryRow(ctx, upsertExercise, item.Name, item.ExerciseID).Scan(&exerciseID); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, upsertItem, workoutID, item.Position, exerciseID, item.ID); err != nil {
				return err
			}
		}
		return nil
	})
	return workoutID, err
}

// upsertCoachMirror replaces the mirror rows for one programmed
// workout. Items the platform dropped are removed.
func upsertCoachMirror(ctx context.Context, tx pgx.Tx, w domain.CoachWorkout) error {
	const upsertWorkout = `INSERT INTO coach_workouts (id, title, due, short_description, state, rest_day)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (id) DO UPDATE SET
            title = EXCLUDED.title,
            due = EXCLUDED.due,
            short_description = EXCLUDED.short_description,
            state = EXCLUDED.state,
            rest_day = EXCLUDED.rest_day`

	if _, err := tx.Exec(ctx, upsertWorkout,
		w.ID, w.Title, w.Due, w.ShortDescription, w.State, w.RestDay,
	); err != nil {
		return err
	}

	keep := make([]int64, 0, len(w.Items))
	for _, item := range w.Items {
		keep = append(keep, item.ID)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM coach_workout_items WHERE workout_id = $1 AND NOT (id = ANY($2))`,
		w.ID, keep,
	); err != nil {
		return err
	}

	const upsertItem = `INSERT INTO coach_workout_items (id, workout_id, name, info, result, is_circuit, state, position, exercise_id, assessment_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            info = EXCLUDED.info,
            result = EXCLUDED.result,
            is_circuit = EXCLUDED.is_circuit,
            state = EXCLUDED.state,
            position = EXCLUDED.position,
            exercise_id = EXCLUDED.exercise_id,
            assessment_id = EXCLUDED.assessment_id`

	for _, item := range w.Items {
		if _, err := tx.Exec(ctx, upsertItem,
			item.ID, item.WorkoutID, item.Name, item.Info, item.Result,
			item.IsCircuit, item.State, item.Position, item.ExerciseID, item.AssessmentID,
		); err != nil {
			return err
		}
	}
	return nil
}

// SaveCoachItemResult persists the result text and state echoed back by
// the coaching platform after a push.
func (s *Store) SaveCoachItemResult(ctx context.Context, itemID int64, result, state string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE coach_workout_items SET result = $2, state = $3 WHERE id = $1`,
		itemID, result, state,
	)
	return err
}

// SetCoachWorkoutState records a state transition confirmed by the
// platform.
func (s *Store) SetCoachWorkoutState(ctx context.Context, workoutID int64, state string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE coach_workouts SET state = $2 WHERE id = $1`,
		workoutID, state,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWorkoutNotFound
	}
	return nil
}

// LinkedWorkout names a canonical workout linked on both sides.
type LinkedWorkout struct {
	WorkoutID int64
	HevyID    string
	CoachID   int64
}

// LinkedPendingWorkouts lists workouts linked to both services whose
// coach side still awaits results.
func (s *Store) LinkedPendingWorkouts(ctx context.Context) ([]LinkedWorkout, error) {
	const query = `SELECT w.id, w.hevy_id, w.coach_id
        FROM workouts w
        JOIN coach_workouts cw ON cw.id = w.coach_id
        WHERE w.hevy_id IS NOT NULL AND cw.state = 'pending'
        ORDER BY w.id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LinkedWorkout
	for rows.Next() {
		var lw LinkedWorkout
		if err := rows.Scan(&lw.WorkoutID, &lw.HevyID, &lw.CoachID); err != nil {
			return nil, err
		}
		out = append(out, lw)
	}
	return out, rows.Err()
}

// LinkedItem is one canonical item linked on both sides, carrying what
// the results push needs: the coach item to write back, the logged
// sets, and the exercise type that selects the formatter.
type LinkedItem struct {
	Coach        domain.CoachWorkoutItem
	ExerciseType domain.ExerciseType
	Sets         []domain.Set
}

// LinkedItems returns the both-sided items of a canonical workout in
// coach position order.
func (s *Store) LinkedItems(ctx context.Context, workoutID int64) ([]LinkedItem, error) {
	const itemQuery = `SELECT ci.id, ci.workout_id, ci.name, ci.info, ci.result, ci.is_circuit,
            ci.state, ci.position, ci.exercise_id, ci.assessment_id,
            COALESCE(he.type, ''), wi.hevy_item_id
        FROM workout_items wi
        JOIN coach_workout_items ci ON ci.id = wi.coach_item_id
        JOIN hevy_workout_items hi ON hi.id = wi.hevy_item_id
        LEFT JOIN hevy_exercises he ON he.id = hi.exercise_id
        WHERE wi.workout_id = $1
        ORDER BY ci.position`

	rows, err := s.pool.Query(ctx, itemQuery, workoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LinkedItem
	var mirrorIDs []int64
	for rows.Next() {
		var item LinkedItem
		var mirrorID int64
		if err := rows.Scan(
			&item.Coach.ID, &item.Coach.WorkoutID, &item.Coach.Name, &item.Coach.Info,
			&item.Coach.Result, &item.Coach.IsCircuit, &item.Coach.State, &item.Coach.Position,
			&item.Coach.ExerciseID, &item.Coach.AssessmentID,
			&item.ExerciseType, &mirrorID,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
		mirrorIDs = append(mirrorIDs, mirrorID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, mirrorID := range mirrorIDs {
		sets, err := s.hevySets(ctx, mirrorID)
		if err != nil {
			return nil, err
		}
		out[i].Sets = sets
	}
	return out, nil
}

func (s *Store) hevySets(ctx context.Context, mirrorItemID int64) ([]domain.Set, error) {
	const query = `SELECT idx, type, weight_kg, reps, distance_meters, duration_seconds, rpe
        FROM hevy_sets WHERE workout_item_id = $1 ORDER BY idx`

	rows, err := s.pool.Query(ctx, query, mirrorItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []domain.Set
	for rows.Next() {
		var set domain.Set
		if err := rows.Scan(
			&set.Index, &set.Type, &set.WeightKg, &set.Reps,
			&set.DistanceMeters, &set.DurationSeconds, &set.RPE,
		); err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

// PendingRoutineWorkouts lists programmed workouts that have no logged
// counterpart yet, oldest due first. Rest days never become routines.
func (s *Store) PendingRoutineWorkouts(ctx context.Context) ([]domain.CoachWorkout, error) {
	const query = `SELECT cw.id, cw.title, cw.due, cw.short_description, cw.state, cw.rest_day
        FROM coach_workouts cw
        LEFT JOIN workouts w ON w.coach_id = cw.id
        WHERE cw.state = 'pending' AND NOT cw.rest_day
            AND (w.id IS NULL OR w.hevy_id IS NULL)
        ORDER BY cw.due`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CoachWorkout
	for rows.Next() {
		var w domain.CoachWorkout
		if err := rows.Scan(&w.ID, &w.Title, &w.Due, &w.ShortDescription, &w.State, &w.RestDay); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := s.CoachItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

// CoachItems returns the mirror items of one programmed workout in
// position order.
func (s *Store) CoachItems(ctx context.Context, coachWorkoutID int64) ([]domain.CoachWorkoutItem, error) {
	const query = `SELECT id, workout_id, name, info, result, is_circuit, state, position, exercise_id, assessment_id
        FROM coach_workout_items WHERE workout_id = $1 ORDER BY position`

	rows, err := s.pool.Query(ctx, query, coachWorkoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CoachWorkoutItem
	for rows.Next() {
		var item domain.CoachWorkoutItem
		if err := rows.Scan(
			&item.ID, &item.WorkoutID, &item.Name, &item.Info, &item.Result,
			&item.IsCircuit, &item.State, &item.Position, &item.ExerciseID, &item.AssessmentID,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ExerciseTemplateForName resolves a canonical exercise name to its
// logged-service template id, when one is linked.
func (s *Store) ExerciseTemplateForName(ctx context.Context, name string) (string, error) {
	const query = `SELECT hevy_id FROM exercises WHERE name = $1 AND hevy_id IS NOT NULL`
	var id string
	err := s.pool.QueryRow(ctx, query, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}
