package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/cabell132/FitnessTracker/internal/domain"
)

// UpsertHealthRecords stores one batch of parsed export rows. The whole
// batch is one transaction so a failed file leaves no partial data and
// the watermark can stay put.
func (s *Store) UpsertHealthRecords(ctx context.Context, records []domain.HealthRecord) error {
	if len(records) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx pgx.Tx) error {
		const upsertType = `INSERT INTO health_data_types (name, unit)
            VALUES ($1,$2)
            ON CONFLICT (name, unit) DO UPDATE SET name = EXCLUDED.name
            RETURNING id`

		const upsertRecord = `INSERT INTO health_data_records (data_type_id, recorded_at, value)
            VALUES ($1,$2,$3)
            ON CONFLICT (data_type_id, recorded_at) DO UPDATE SET value = EXCLUDED.value`

		typeIDs := make(map[[2]string]int64)
		for _, record := range records {
			key := [2]string{record.TypeName, record.Unit}
			typeID, ok := typeIDs[key]
			if !ok {
				if err := tx.QueryRow(ctx, upsertType, record.TypeName, record.Unit).Scan(&typeID); err != nil {
					return err
				}
				typeIDs[key] = typeID
			}
			if _, err := tx.Exec(ctx, upsertRecord, typeID, record.RecordedAt, record.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

// PromoteHealthRecords turns health rows without a metric item into
// metric items, creating metrics named after their data type. Re-runs
// are no-ops thanks to the unique health_record_id reference.
func (s *Store) PromoteHealthRecords(ctx context.Context) (int64, error) {
	var promoted int64
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		const ensureMetrics = `INSERT INTO metrics (name, unit)
            SELECT DISTINCT t.name, NULLIF(t.unit, '')
            FROM health_data_types t
            ON CONFLICT (name) DO NOTHING`
		if _, err := tx.Exec(ctx, ensureMetrics); err != nil {
			return err
		}

		const promote = `INSERT INTO metric_items (metric_id, value, recorded_at, health_record_id)
            SELECT m.id, r.value, r.recorded_at, r.id
            FROM health_data_records r
            JOIN health_data_types t ON t.id = r.data_type_id
            JOIN metrics m ON m.name = t.name
            LEFT JOIN metric_items mi ON mi.health_record_id = r.id
            WHERE mi.id IS NULL
            ON CONFLICT (health_record_id) DO NOTHING`
		tag, err := tx.Exec(ctx, promote)
		if err != nil {
			return err
		}
		promoted = tag.RowsAffected()
		return nil
	})
	return promoted, err
}
