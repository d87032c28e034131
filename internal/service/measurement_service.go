package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/yusufkecer/body-measurements-backend/internal/domain"
	"github.com/yusufkecer/body-measurements-backend/internal/trend"
)

// MeasurementStore persists measurements. List makes no ordering promise and
// GetByID returns nil, nil for a missing row.
type MeasurementStore interface {
	List(ctx context.Context, userID int64) ([]domain.Measurement, error)
	GetByID(ctx context.Context, id string) (*domain.Measurement, error)
	Insert(ctx context.Context, m domain.Measurement) (domain.Measurement, error)
	Update(ctx context.Context, m domain.Measurement) error
	Delete(ctx context.Context, userID int64, id string) error
}

type Order string

const (
	Ascending  Order = "asc"
	Descending Order = "desc"
)

type MeasurementService struct {
	store MeasurementStore
	now   func() time.Time
}

func NewMeasurementService(store MeasurementStore) *MeasurementService {
	return &MeasurementService{store: store, now: time.Now}
}

// WithClock replaces the clock used to reject future dates.
func (s *MeasurementService) WithClock(now func() time.Time) *MeasurementService {
	s.now = now
	return s
}

// List returns the caller's measurements sorted by date.
func (s *MeasurementService) List(ctx context.Context, session domain.Session, order Order) ([]domain.Measurement, error) {
	series, err := s.series(ctx, session)
	if err != nil {
		return nil, err
	}
	if order == Descending {
		for i, j := 0, len(series)-1; i < j; i, j = i+1, j-1 {
			series[i], series[j] = series[j], series[i]
		}
	}
	return series, nil
}

func (s *MeasurementService) Get(ctx context.Context, session domain.Session, id string) (*domain.Measurement, error) {
	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil || m.UserID != session.AccountID {
		return nil, ErrNotFound
	}
	return m, nil
}

// Create stores a new measurement and returns the row as read back from the
// store.
func (s *MeasurementService) Create(ctx context.Context, session domain.Session, in domain.MeasurementInput) (*domain.Measurement, error) {
	m, err := s.build(session, in)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.Insert(ctx, m)
	if err != nil {
		return nil, err
	}
	return s.confirm(ctx, session, stored.ID)
}

// Replace overwrites every field of an existing measurement.
func (s *MeasurementService) Replace(ctx context.Context, session domain.Session, id string, in domain.MeasurementInput) (*domain.Measurement, error) {
	if _, err := s.Get(ctx, session, id); err != nil {
		return nil, err
	}
	m, err := s.build(session, in)
	if err != nil {
		return nil, err
	}
	m.ID = id
	if err := s.store.Update(ctx, m); err != nil {
		return nil, err
	}
	return s.confirm(ctx, session, id)
}

func (s *MeasurementService) Delete(ctx context.Context, session domain.Session, id string) error {
	if _, err := s.Get(ctx, session, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, session.AccountID, id)
}

func (s *MeasurementService) series(ctx context.Context, session domain.Session) ([]domain.Measurement, error) {
	rows, err := s.store.List(ctx, session.AccountID)
	if err != nil {
		return nil, err
	}
	return trend.SortByDate(rows), nil
}

func (s *MeasurementService) confirm(ctx context.Context, session domain.Session, id string) (*domain.Measurement, error) {
	m, err := s.Get(ctx, session, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read back measurement %s: %w", id, err)
	}
	return m, nil
}

func (s *MeasurementService) build(session domain.Session, in domain.MeasurementInput) (domain.Measurement, error) {
	if strings.TrimSpace(in.Date) == "" {
		return domain.Measurement{}, &ValidationError{Field: "date", Message: "is required"}
	}
	date, err := domain.ParseDate(in.Date)
	if err != nil {
		return domain.Measurement{}, &ValidationError{Field: "date", Message: "must be formatted as " + domain.DateLayout}
	}
	if date.After(domain.DateOf(s.now().UTC()).Time) {
		return domain.Measurement{}, &ValidationError{Field: "date", Message: "must not be in the future"}
	}

	for _, metric := range domain.AllMetrics {
		v := in.Value(metric)
		if v != nil && (*v < 0 || math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return domain.Measurement{}, &ValidationError{Field: string(metric), Message: "must be a non-negative number"}
		}
	}

	return domain.Measurement{
		UserID: session.AccountID,
		Date:   date,
		Weight: in.Weight,
		Chest:  in.Chest,
		Waist:  in.Waist,
		Hips:   in.Hips,
		Bicep:  in.Bicep,
		Thigh:  in.Thigh,
		Calves: in.Calves,
	}, nil
}
