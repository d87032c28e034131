package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/yusufkecer/body-measurements-backend/internal/domain"
)

type MeasurementRepositorySuite struct {
	suite.Suite
	mock sqlmock.Sqlmock
	repo *MeasurementRepository
	ctx  context.Context
}

func (s *MeasurementRepositorySuite) SetupTest() {
	conn, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.T().Cleanup(func() { conn.Close() })

	s.mock = mock
	s.repo = NewMeasurementRepository(conn)
	s.ctx = context.Background()
}

func (s *MeasurementRepositorySuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestMeasurementRepositorySuite(t *testing.T) {
	suite.Run(t, new(MeasurementRepositorySuite))
}

var columns = []string{"id", "user_id", "date", "weight", "chest", "waist", "hips", "bicep", "thigh", "calves", "created_at", "updated_at"}

func (s *MeasurementRepositorySuite) TestList() {
	created := time.Date(2024, time.January, 15, 9, 30, 0, 0, time.UTC)
	rows := sqlmock.NewRows(columns).
		AddRow("b", 7, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), 78.0, nil, 80.5, nil, nil, nil, nil, created, created).
		AddRow("a", 7, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), 80.0, 101.0, nil, nil, nil, nil, nil, created, created)

	s.mock.ExpectQuery(regexp.QuoteMeta("FROM measurements")).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	got, err := s.repo.List(s.ctx, 7)
	s.Require().NoError(err)
	s.Require().Len(got, 2)

	s.Equal("b", got[0].ID)
	s.Equal("2024-01-15", got[0].Date.String())
	s.Require().NotNil(got[0].Weight)
	s.Equal(78.0, *got[0].Weight)
	s.Nil(got[0].Chest)
	s.Require().NotNil(got[0].Waist)
	s.Equal(80.5, *got[0].Waist)
	s.Equal(created, got[0].CreatedAt)

	s.Equal("a", got[1].ID)
	s.Require().NotNil(got[1].Chest)
	s.Equal(101.0, *got[1].Chest)
}

func (s *MeasurementRepositorySuite) TestListError() {
	s.mock.ExpectQuery("FROM measurements").WillReturnError(errors.New("connection lost"))

	_, err := s.repo.List(s.ctx, 7)
	s.ErrorContains(err, "failed to list measurements")
}

func (s *MeasurementRepositorySuite) TestGetByIDNotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM measurements WHERE id = ?")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(columns))

	m, err := s.repo.GetByID(s.ctx, "missing")
	s.NoError(err)
	s.Nil(m)
}

func (s *MeasurementRepositorySuite) TestInsertAssignsID() {
	weight := 80.0
	in := domain.Measurement{UserID: 7, Date: domain.NewDate(2024, time.January, 1), Weight: &weight}

	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO measurements")).
		WithArgs(sqlmock.AnyArg(), int64(7), "2024-01-01", 80.0, nil, nil, nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := s.repo.Insert(s.ctx, in)
	s.Require().NoError(err)

	_, parseErr := uuid.Parse(got.ID)
	s.NoError(parseErr)
	s.Equal(in.Date, got.Date)
	s.Empty(in.ID)
}

func (s *MeasurementRepositorySuite) TestUpdateReplacesRow() {
	waist := 79.0
	m := domain.Measurement{ID: "abc", UserID: 7, Date: domain.NewDate(2024, time.February, 2), Waist: &waist}

	s.mock.ExpectExec(regexp.QuoteMeta("UPDATE measurements")).
		WithArgs("2024-02-02", nil, nil, 79.0, nil, nil, nil, nil, "abc", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.repo.Update(s.ctx, m))
}

func (s *MeasurementRepositorySuite) TestDelete() {
	s.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM measurements WHERE id = ? AND user_id = ?")).
		WithArgs("abc", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.repo.Delete(s.ctx, 7, "abc"))
}

func TestAccountRepository(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	repo := NewAccountRepository(conn)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts (email, password_hash) VALUES (?, ?)")).
		WithArgs("a@b.co", "hash").
		WillReturnResult(sqlmock.NewResult(42, 1))

	id, err := repo.Create(ctx, "a@b.co", "hash")
	require.NoError(t, err)
	require.Equal(t, int64(42), id)

	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE email = ?")).
		WithArgs("a@b.co").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash"}).AddRow(42, "a@b.co", "hash"))

	account, err := repo.GetByEmail(ctx, "a@b.co")
	require.NoError(t, err)
	require.Equal(t, &domain.Account{ID: 42, Email: "a@b.co", PasswordHash: "hash"}, account)

	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE email = ?")).
		WithArgs("nobody@b.co").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash"}))

	account, err = repo.GetByEmail(ctx, "nobody@b.co")
	require.NoError(t, err)
	require.Nil(t, account)

	require.NoError(t, mock.ExpectationsWereMet())
}
