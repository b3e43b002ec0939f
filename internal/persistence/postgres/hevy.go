package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/cabell132/FitnessTracker/internal/domain"
	"github.com/cabell132/FitnessTracker/internal/linker"
)

// ApplyHevyWorkout absorbs one updated workout from the workout-log
// service: the source-local mirror is replaced, the canonical workout
// is created or linked (anchored by coachID when present), unlinked
// items are paired via match, and canonical sets are rewritten. The
// whole workout commits or rolls back as one unit. Returns the
// canonical workout id.
func (s *Store) ApplyHevyWorkout(ctx context.Context, w domain.HevyWorkout, coachID *int64, match MatchFunc) (int64, error) {
	var workoutID int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		itemIDs, setIDs, err := upsertHevyMirror(ctx, tx, w)
		if err != nil {
			return err
		}

		workoutID, err = upsertCanonicalWorkout(ctx, tx, w, coachID)
		if err != nil {
			return err
		}

		exerciseIDs, err := upsertCanonicalExercises(ctx, tx, w)
		if err != nil {
			return err
		}

		if err := linkCanonicalItems(ctx, tx, workoutID, w, itemIDs, exerciseIDs, match); err != nil {
			return err
		}

		return rewriteCanonicalSets(ctx, tx, workoutID, w, itemIDs, setIDs)
	})
	return workoutID, err
}

// upsertHevyMirror replaces the source-local rows for one workout.
// Returns the mirror row ids keyed by item index and by (item index,
// set index).
func upsertHevyMirror(ctx context.Context, tx pgx.Tx, w domain.HevyWorkout) (map[int]int64, map[[2]int]int64, error) {
	const upsertWorkout = `INSERT INTO hevy_workouts (id, title, description, start_time, end_time, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (id) DO UPDATE SET
            title = EXCLUDED.title,
            description = EXCLUDED.description,
            start_time = EXCLUDED.start_time,
            end_time = EXCLUDED.end_time,
            updated_at = EXCLUDED.updated_at`

	if _, err := tx.Exec(ctx, upsertWorkout,
		w.ID, w.Title, w.Description, w.StartTime, w.EndTime, w.CreatedAt, w.UpdatedAt,
	); err != nil {
		return nil, nil, err
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM hevy_workout_items WHERE workout_id = $1 AND idx >= $2`,
		w.ID, len(w.Items),
	); err != nil {
		return nil, nil, err
	}

	const upsertItem = `INSERT INTO hevy_workout_items (workout_id, idx, name, notes, superset_id, exercise_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (workout_id, idx) DO UPDATE SET
            name = EXCLUDED.name,
            notes = EXCLUDED.notes,
            superset_id = EXCLUDED.superset_id,
            exercise_id = EXCLUDED.exercise_id
        RETURNING id`

	const upsertSet = `INSERT INTO hevy_sets (workout_item_id, idx, type, weight_kg, reps, distance_meters, duration_seconds, rpe)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (workout_item_id, idx) DO UPDATE SET
            type = EXCLUDED.type,
            weight_kg = EXCLUDED.weight_kg,
            reps = EXCLUDED.reps,
            distance_meters = EXCLUDED.distance_meters,
            duration_seconds = EXCLUDED.duration_seconds,
            rpe = EXCLUDED.rpe
        RETURNING id`

	itemIDs := make(map[int]int64, len(w.Items))
	setIDs := make(map[[2]int]int64)
	for _, item := range w.Items {
		var itemID int64
		if err := tx.QueryRow(ctx, upsertItem,
			w.ID, item.Index, item.Name, item.Notes, item.SupersetID, item.ExerciseID,
		).Scan(&itemID); err != nil {
			return nil, nil, err
		}
		itemIDs[item.Index] = itemID

		if _, err := tx.Exec(ctx,
			`DELETE FROM hevy_sets WHERE workout_item_id = $1 AND idx >= $2`,
			itemID, len(item.Sets),
		); err != nil {
			return nil, nil, err
		}
		for _, set := range item.Sets {
			var setID int64
			if err := tx.QueryRow(ctx, upsertSet,
				itemID, set.Index, set.Type, set.WeightKg, set.Reps, set.DistanceM, set.DurationS, set.RPE,
			).Scan(&setID); err != nil {
				return nil, nil, err
			}
			setIDs[[2]int{item.Index, set.Index}] = setID
		}
	}
	return itemIDs, setIDs, nil
}

// upsertCanonicalWorkout creates or links the canonical row. When the
// title anchor names a known coach workout, the coach-side canonical
// row is reused and its hevy link filled; links are never overwritten.
// An anchor that names no known coach workout is treated as no anchor
// at all, so the workout still lands and can link on a later pull.
func upsertCanonicalWorkout(ctx context.Context, tx pgx.Tx, w domain.HevyWorkout, coachID *int64) (int64, error) {
	var workoutID int64
	if coachID != nil {
		known, err := coachWorkoutExists(ctx, tx, *coachID)
		if err != nil {
			return 0, err
		}
		if known {
			// A log-only canonical row from before the coach side
			// arrived would collide with the coach row's hevy link.
			// Fold it in: its items and sets are rebuilt from the
			// mirror later in this transaction.
			const foldIn = `DELETE FROM workouts
                WHERE hevy_id = $1 AND coach_id IS NULL
                    AND EXISTS (SELECT 1 FROM workouts linked WHERE linked.coach_id = $2)`
			if _, err := tx.Exec(ctx, foldIn, w.ID, *coachID); err != nil {
				return 0, err
			}

			const linkByCoach = `UPDATE workouts SET
                    hevy_id = COALESCE(workouts.hevy_id, $2),
                    start_date = COALESCE(workouts.start_date, $3),
                    end_date = COALESCE(workouts.end_date, $4)
                WHERE coach_id = $1
                RETURNING id`
			err := tx.QueryRow(ctx, linkByCoach, *coachID, w.ID, w.StartTime, w.EndTime).Scan(&workoutID)
			if err == nil {
				return workoutID, nil
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return 0, err
			}

			const insertLinked = `INSERT INTO workouts (title, description, start_date, end_date, hevy_id, coach_id)
                VALUES ($1,$2,$3,$4,$5,$6)
                ON CONFLICT (hevy_id) DO UPDATE SET
                    coach_id = COALESCE(workouts.coach_id, EXCLUDED.coach_id),
                    title = EXCLUDED.title,
                    description = EXCLUDED.description
                RETURNING id`
			err = tx.QueryRow(ctx, insertLinked, w.Title, w.Description, w.StartTime, w.EndTime, w.ID, *coachID).Scan(&workoutID)
			return workoutID, err
		}
	}

	const upsertByHevy = `INSERT INTO workouts (title, description, start_date, end_date, hevy_id)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (hevy_id) DO UPDATE SET
            title = EXCLUDED.title,
            description = EXCLUDED.description,
            start_date = EXCLUDED.start_date,
            end_date = EXCLUDED.end_date
        RETURNING id`
	err := tx.QueryRow(ctx, upsertByHevy, w.Title, w.Description, w.StartTime, w.EndTime, w.ID).Scan(&workoutID)
	return workoutID, err
}

func coachWorkoutExists(ctx context.Context, tx pgx.Tx, id int64) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM coach_workouts WHERE id = $1)`, id,
	).Scan(&exists)
	return exists, err
}

// upsertCanonicalExercises ensures one canonical exercise per distinct
// item name and fills its template link. Returns canonical exercise id
// keyed by item name.
func upsertCanonicalExercises(ctx context.Context, tx pgx.Tx, w domain.HevyWorkout) (map[string]int64, error) {
	const upsert = `INSERT INTO exercises (name, hevy_id)
        VALUES ($1,$2)
        ON CONFLICT (name) DO UPDATE SET
            hevy_id = COALESCE(exercises.hevy_id, EXCLUDED.hevy_id)
        RETURNING id`

	ids := make(map[string]int64)
	for _, item := range w.Items {
		if _, done := ids[item.Name]; done {
			continue
		}
		var id int64
		if err := tx.QueryRow(ctx, upsert, item.Name, item.ExerciseID).Scan(&id); err != nil {
			return nil, err
		}
		ids[item.Name] = id
	}
	return ids, nil
}

// linkCanonicalItems pairs still-unlinked canonical items (coach side)
// with still-unlinked logged items, then creates canonical rows for the
// leftovers. Existing links are never rewritten.
func linkCanonicalItems(ctx context.Context, tx pgx.Tx, workoutID int64, w domain.HevyWorkout, itemIDs map[int]int64, exerciseIDs map[string]int64, match MatchFunc) error {
	const unlinkedCanonical = `SELECT wi.id, wi.position, COALESCE(ci.name, '')
        FROM workout_items wi
        LEFT JOIN coach_workout_items ci ON ci.id = wi.coach_item_id
        WHERE wi.workout_id = $1 AND wi.hevy_item_id IS NULL
        ORDER BY wi.position`

	rows, err := tx.Query(ctx, unlinkedCanonical, workoutID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var left []linker.Summary
	for rows.Next() {
		var id int64
		var position int
		var name string
		if err := rows.Scan(&id, &position, &name); err != nil {
			return err
		}
		left = append(left, linker.Summary{
			NativeID: strconv.FormatInt(id, 10),
			Name:     name,
			Position: position,
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	linked := make(map[int64]bool)
	const alreadyLinked = `SELECT hevy_item_id FROM workout_items
        WHERE workout_id = $1 AND hevy_item_id IS NOT NULL`
	rows, err = tx.Query(ctx, alreadyLinked, workoutID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		linked[id] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var right []linker.Summary
	for _, item := range w.Items {
		mirrorID := itemIDs[item.Index]
		if linked[mirrorID] {
			continue
		}
		right = append(right, linker.Summary{
			NativeID: strconv.FormatInt(mirrorID, 10),
			Name:     item.Name,
			Position: item.Index + 1,
		})
	}

	nameByMirror := make(map[int64]string, len(w.Items))
	positionByMirror := make(map[int64]int, len(w.Items))
	for _, item := range w.Items {
		nameByMirror[itemIDs[item.Index]] = item.Name
		positionByMirror[itemIDs[item.Index]] = item.Index + 1
	}

	const fillLink = `UPDATE workout_items SET
            hevy_item_id = COALESCE(hevy_item_id, $2),
            exercise_id = COALESCE(exercise_id, $3)
        WHERE id = $1`

	const insertItem = `INSERT INTO workout_items (workout_id, position, exercise_id, hevy_item_id)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (hevy_item_id) DO NOTHING`

	for _, pair := range match(left, right) {
		if pair.Right == nil {
			continue
		}
		mirrorID, err := strconv.ParseInt(*pair.Right, 10, 64)
		if err != nil {
			return err
		}
		exerciseID := exerciseIDs[nameByMirror[mirrorID]]

		if pair.Left != nil {
			canonicalID, err := strconv.ParseInt(*pair.Left, 10, 64)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, fillLink, canonicalID, mirrorID, exerciseID); err != nil {
				return err
			}
			continue
		}

		if _, err := tx.Exec(ctx, insertItem, workoutID, positionByMirror[mirrorID], exerciseID, mirrorID); err != nil {
			return err
		}
	}
	return nil
}

// rewriteCanonicalSets replaces the canonical sets of every linked item
// with the logged sets.
func rewriteCanonicalSets(ctx context.Context, tx pgx.Tx, workoutID int64, w domain.HevyWorkout, itemIDs map[int]int64, setIDs map[[2]int]int64) error {
	canonicalByMirror := make(map[int64]int64)
	const linkedItems = `SELECT id, hevy_item_id FROM workout_items
        WHERE workout_id = $1 AND hevy_item_id IS NOT NULL`
	rows, err := tx.Query(ctx, linkedItems, workoutID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id, mirrorID int64
		if err := rows.Scan(&id, &mirrorID); err != nil {
			return err
		}
		canonicalByMirror[mirrorID] = id
	}
	if err := rows.Err(); err != nil {
		return err
	}

	const upsertSet = `INSERT INTO sets (workout_item_id, idx, type, weight_kg, reps, distance_meters, duration_seconds, rpe, fallback, hevy_set_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,FALSE,$9)
        ON CONFLICT (workout_item_id, idx) DO UPDATE SET
            type = EXCLUDED.type,
            weight_kg = EXCLUDED.weight_kg,
            reps = EXCLUDED.reps,
            distance_meters = EXCLUDED.distance_meters,
            duration_seconds = EXCLUDED.duration_seconds,
            rpe = EXCLUDED.rpe,
            fallback = FALSE,
            hevy_set_id = EXCLUDED.hevy_set_id`

	for _, item := range w.Items {
		canonicalID, ok := canonicalByMirror[itemIDs[item.Index]]
		if !ok {
			continue
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM sets WHERE workout_item_id = $1 AND idx >= $2`,
			canonicalID, len(item.Sets),
		); err != nil {
			return err
		}
		for _, set := range item.Sets {
			setID := setIDs[[2]int{item.Index, set.Index}]
			if _, err := tx.Exec(ctx, upsertSet,
				canonicalID, set.Index, set.Type, set.WeightKg, set.Reps, set.DistanceM, set.DurationS, set.RPE, setID,
			); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteHevyWorkout handles a delete event: the mirror rows go away and
// a canonical workout that only ever existed on the log side goes with
// them. A coach-linked canonical workout survives with its link
// cleared by the foreign key.
func (s *Store) DeleteHevyWorkout(ctx context.Context, hevyID string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM workouts WHERE hevy_id = $1 AND coach_id IS NULL`, hevyID,
		); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM hevy_workouts WHERE id = $1`, hevyID)
		return err
	})
}

// UpsertHevyExercise caches one exercise template from the service
// library.
func (s *Store) UpsertHevyExercise(ctx context.Context, e domain.HevyExercise) error {
	const upsert = `INSERT INTO hevy_exercises (id, name, type, equipment, is_default)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            type = EXCLUDED.type,
            equipment = EXCLUDED.equipment,
            is_default = EXCLUDED.is_default`
	_, err := s.pool.Exec(ctx, upsert, e.ID, e.Name, e.Type, e.Equipment, e.IsDefault)
	return err
}

// HevyExercise returns one cached template, or nil when the template
// is not cached yet.
func (s *Store) HevyExercise(ctx context.Context, id string) (*domain.HevyExercise, error) {
	const query = `SELECT id, name, type, equipment, is_default FROM hevy_exercises WHERE id = $1`
	var e domain.HevyExercise
	err := s.pool.QueryRow(ctx, query, id).Scan(&e.ID, &e.Name, &e.Type, &e.Equipment, &e.IsDefault)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// PlaceholderTemplates lists cached placeholder template ids, the pool
// used when a programmed exercise has no real template yet.
func (s *Store) PlaceholderTemplates(ctx context.Context) ([]string, error) {
	const query = `SELECT id FROM hevy_exercises WHERE name = $1 ORDER BY id`
	rows, err := s.pool.Query(ctx, query, domain.PlaceholderExerciseName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
