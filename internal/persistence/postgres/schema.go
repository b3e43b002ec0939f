package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates all tables. Safe to call repeatedly, everything is
// IF NOT EXISTS.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

const schema = `
-- Workout-log service mirror
CREATE TABLE IF NOT EXISTS hevy_workouts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    start_time TIMESTAMPTZ,
    end_time TIMESTAMPTZ,
    created_at TIMESTAMPTZ,
    updated_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS hevy_workout_items (
    id BIGSERIAL PRIMARY KEY,
    workout_id TEXT NOT NULL REFERENCES hevy_workouts(id) ON DELETE CASCADE,
    idx INT NOT NULL,
    name TEXT NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    superset_id INT,
    exercise_id TEXT NOT NULL,
    UNIQUE (workout_id, idx)
);

CREATE TABLE IF NOT EXISTS hevy_sets (
    id BIGSERIAL PRIMARY KEY,
    workout_item_id BIGINT NOT NULL REFERENCES hevy_workout_items(id) ON DELETE CASCADE,
    idx INT NOT NULL,
    type TEXT NOT NULL,
    weight_kg DOUBLE PRECISION,
    reps INT,
    distance_meters INT,
    duration_seconds INT,
    rpe DOUBLE PRECISION,
    UNIQUE (workout_item_id, idx)
);

CREATE TABLE IF NOT EXISTS hevy_exercises (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    equipment TEXT NOT NULL DEFAULT '',
    is_default BOOLEAN NOT NULL DEFAULT FALSE
);

-- Coaching platform mirror
CREATE TABLE IF NOT EXISTS coach_workouts (
    id BIGINT PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    due TIMESTAMPTZ,
    short_description TEXT NOT NULL DEFAULT '',
    state TEXT NOT NULL,
    rest_day BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS coach_workout_items (
    id BIGINT PRIMARY KEY,
    workout_id BIGINT NOT NULL REFERENCES coach_workouts(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    info TEXT NOT NULL DEFAULT '',
    result TEXT NOT NULL DEFAULT '',
    is_circuit BOOLEAN NOT NULL DEFAULT FALSE,
    state TEXT NOT NULL,
    position INT NOT NULL,
    exercise_id BIGINT,
    assessment_id BIGINT
);

CREATE TABLE IF NOT EXISTS coach_exercises (
    id BIGINT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS coach_assessment_items (
    id BIGINT PRIMARY KEY,
    assessment_id BIGINT NOT NULL,
    recorded_at TIMESTAMPTZ NOT NULL,
    value TEXT NOT NULL
);

-- Health-metrics export mirror
CREATE TABLE IF NOT EXISTS health_data_types (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    unit TEXT NOT NULL DEFAULT '',
    UNIQUE (name, unit)
);

CREATE TABLE IF NOT EXISTS health_data_records (
    id BIGSERIAL PRIMARY KEY,
    data_type_id BIGINT NOT NULL REFERENCES health_data_types(id) ON DELETE CASCADE,
    recorded_at TIMESTAMPTZ NOT NULL,
    value DOUBLE PRECISION NOT NULL,
    UNIQUE (data_type_id, recorded_at)
);

-- Canonical family
CREATE TABLE IF NOT EXISTS workouts (
    id BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    start_date TIMESTAMPTZ,
    end_date TIMESTAMPTZ,
    hevy_id TEXT UNIQUE REFERENCES hevy_workouts(id) ON DELETE SET NULL,
    coach_id BIGINT UNIQUE REFERENCES coach_workouts(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS exercises (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    hevy_id TEXT UNIQUE,
    coach_id BIGINT UNIQUE
);

CREATE TABLE IF NOT EXISTS workout_items (
    id BIGSERIAL PRIMARY KEY,
    workout_id BIGINT NOT NULL REFERENCES workouts(id) ON DELETE CASCADE,
    position INT NOT NULL,
    exercise_id BIGINT REFERENCES exercises(id),
    hevy_item_id BIGINT UNIQUE REFERENCES hevy_workout_items(id) ON DELETE SET NULL,
    coach_item_id BIGINT UNIQUE REFERENCES coach_workout_items(id) ON DELETE SET NULL,
    rest_seconds INT NOT NULL DEFAULT 90
);

CREATE TABLE IF NOT EXISTS sets (
    id BIGSERIAL PRIMARY KEY,
    workout_item_id BIGINT NOT NULL REFERENCES workout_items(id) ON DELETE CASCADE,
    idx INT NOT NULL,
    type TEXT NOT NULL,
    weight_kg DOUBLE PRECISION,
    reps INT,
    distance_meters INT,
    duration_seconds INT,
    rpe DOUBLE PRECISION,
    fallback BOOLEAN NOT NULL DEFAULT FALSE,
    hevy_set_id BIGINT,
    UNIQUE (workout_item_id, idx)
);

CREATE TABLE IF NOT EXISTS metrics (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    unit TEXT,
    coach_assessment_id BIGINT UNIQUE
);

CREATE TABLE IF NOT EXISTS metric_items (
    id BIGSERIAL PRIMARY KEY,
    metric_id BIGINT NOT NULL REFERENCES metrics(id) ON DELETE CASCADE,
    value DOUBLE PRECISION NOT NULL,
    recorded_at TIMESTAMPTZ NOT NULL,
    coach_item_id BIGINT UNIQUE,
    health_record_id BIGINT UNIQUE REFERENCES health_data_records(id) ON DELETE CASCADE,
    workout_id BIGINT REFERENCES workouts(id) ON DELETE CASCADE,
    UNIQUE (workout_id, metric_id)
);

CREATE INDEX IF NOT EXISTS idx_workout_items_workout_id ON workout_items(workout_id);
CREATE INDEX IF NOT EXISTS idx_sets_workout_item_id ON sets(workout_item_id);
CREATE INDEX IF NOT EXISTS idx_metric_items_metric_id ON metric_items(metric_id);
`
