package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/yusufkecer/body-measurements-backend/internal/domain"
)

const measurementColumns = `id, user_id, date, weight, chest, waist, hips, bicep, thigh, calves, created_at, updated_at`

type MeasurementRepository struct {
	db *sql.DB
}

func NewMeasurementRepository(db *sql.DB) *MeasurementRepository {
	return &MeasurementRepository{db: db}
}

// List returns every measurement of userID. Callers that need date order
// must sort the result themselves.
func (r *MeasurementRepository) List(ctx context.Context, userID int64) ([]domain.Measurement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+measurementColumns+`
		 FROM measurements
		 WHERE user_id = ?`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	defer rows.Close()

	var measurements []domain.Measurement
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		measurements = append(measurements, m)
	}
	return measurements, rows.Err()
}

func (r *MeasurementRepository) GetByID(ctx context.Context, id string) (*domain.Measurement, error) {
	m, err := scanMeasurement(r.db.QueryRowContext(ctx,
		`SELECT `+measurementColumns+` FROM measurements WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get measurement: %w", err)
	}
	return &m, nil
}

// Insert stores m under a freshly generated id and returns the stored copy.
func (r *MeasurementRepository) Insert(ctx context.Context, m domain.Measurement) (domain.Measurement, error) {
	m.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO measurements (id, user_id, date, weight, chest, waist, hips, bicep, thigh, calves)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.Date, m.Weight, m.Chest, m.Waist, m.Hips, m.Bicep, m.Thigh, m.Calves,
	)
	if err != nil {
		return domain.Measurement{}, fmt.Errorf("failed to create measurement: %w", err)
	}
	return m, nil
}

// Update replaces every user-editable column of the row identified by m.ID
// and owned by m.UserID.
func (r *MeasurementRepository) Update(ctx context.Context, m domain.Measurement) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE measurements
		 SET date = ?, weight = ?, chest = ?, waist = ?, hips = ?, bicep = ?, thigh = ?, calves = ?
		 WHERE id = ? AND user_id = ?`,
		m.Date, m.Weight, m.Chest, m.Waist, m.Hips, m.Bicep, m.Thigh, m.Calves, m.ID, m.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update measurement: %w", err)
	}
	return nil
}

func (r *MeasurementRepository) Delete(ctx context.Context, userID int64, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM measurements WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete measurement: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeasurement(row rowScanner) (domain.Measurement, error) {
	var m domain.Measurement
	err := row.Scan(
		&m.ID, &m.UserID, &m.Date,
		&m.Weight, &m.Chest, &m.Waist, &m.Hips, &m.Bicep, &m.Thigh, &m.Calves,
		&m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}
