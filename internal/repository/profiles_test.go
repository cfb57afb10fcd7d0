package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGXProfilesRepository_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rec := sampleRecord()
	id := uuid.New()
	created := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO company_profiles").
		WithArgs(
			rec.UserID,
			"Acme",
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
			rec.LastAnalyzedAt,
		).
		WillReturnRows(pgxmock.NewRows([]string{"profile_id", "created_at"}).AddRow(id, created))

	repo := NewPGXProfilesRepository(mock, time.Minute)
	saved, err := repo.Insert(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, id, saved.ID)
	assert.Equal(t, created, saved.CreatedAt)
	assert.Equal(t, rec.TechStack, saved.TechStack)
	assert.Equal(t, uuid.Nil, rec.ID, "input record must not be mutated")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGXProfilesRepository_InsertFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO company_profiles").WillReturnError(errors.New("connection reset"))

	repo := NewPGXProfilesRepository(mock, 0)
	_, err = repo.Insert(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert profile")
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = repo.Insert(context.Background(), nil)
	assert.Error(t, err)
}

func TestPGXProfilesRepository_DeleteByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id, owner, stranger := uuid.New(), uuid.New(), uuid.New()
	mock.ExpectExec("DELETE FROM company_profiles").
		WithArgs(id, stranger).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("DELETE FROM company_profiles").
		WithArgs(id, owner).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM company_profiles").
		WithArgs(id, owner).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewPGXProfilesRepository(mock, time.Minute)
	assert.ErrorIs(t, repo.DeleteByID(context.Background(), id, stranger), ErrProfileNotFound)
	assert.NoError(t, repo.DeleteByID(context.Background(), id, owner))
	assert.ErrorIs(t, repo.DeleteByID(context.Background(), id, owner), ErrProfileNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGXProfilesRepository_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id, owner := uuid.New(), uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM company_profiles").
		WithArgs(id, owner).
		WillReturnError(pgx.ErrNoRows)

	repo := NewPGXProfilesRepository(mock, time.Minute)
	_, err = repo.GetByID(context.Background(), id, owner)
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// profileScan fills a company_profiles row in select-column order.
func profileScan(id, owner uuid.UUID, name string, created time.Time, cols profileColumns) func(dest ...any) error {
	return func(dest ...any) error {
		*dest[0].(*uuid.UUID) = id
		*dest[1].(*uuid.UUID) = owner
		*dest[2].(*string) = name
		*dest[3].(*sql.NullString) = cols.Overview
		*dest[4].(*sql.NullString) = cols.TechStack
		*dest[5].(*sql.NullString) = cols.RecentNewsSignals
		*dest[6].(*sql.NullString) = cols.KeyContacts
		*dest[7].(*sql.NullString) = cols.ExecutiveSummary
		*dest[8].(*sql.NullString) = cols.PainPoints
		*dest[9].(*sql.NullString) = cols.OpeningLines
		*dest[10].(*sql.NullString) = cols.DataSources
		*dest[11].(**time.Time) = nil
		*dest[12].(*time.Time) = created
		return nil
	}
}

func TestPGXProfilesRepository_GetByID(t *testing.T) {
	id, owner := uuid.New(), uuid.New()
	cols, err := encodeProfileColumns(sampleRecord())
	require.NoError(t, err)

	repo := NewPGXProfilesRepository(&stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			assert.Equal(t, []any{id, owner}, args)
			return &stubRow{scan: profileScan(id, owner, "Acme", time.Now(), cols)}
		},
	}, time.Minute)

	rec, err := repo.GetByID(context.Background(), id, owner)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, owner, rec.UserID)
	assert.Equal(t, []string{"Go", "Postgres"}, rec.TechStack)
	require.NotNil(t, rec.ExecutiveSummary)
	assert.Equal(t, "Acme builds tools.", *rec.ExecutiveSummary)
	assert.Nil(t, rec.LastAnalyzedAt)
}

func TestPGXProfilesRepository_ListByOwner(t *testing.T) {
	owner := uuid.New()
	newer, older := uuid.New(), uuid.New()
	now := time.Now()
	nullCols := profileColumns{TechStack: sql.NullString{String: "[]", Valid: true}}

	var captured string
	pool := &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			captured = query
			assert.Equal(t, []any{owner}, args)
			return &stubRows{scans: []func(dest ...any) error{
				profileScan(newer, owner, "Beta", now, nullCols),
				profileScan(older, owner, "Acme", now.Add(-time.Hour), profileColumns{}),
			}}, nil
		},
	}
	repo := NewPGXProfilesRepository(pool, time.Minute)

	first, err := repo.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.Contains(t, captured, "ORDER BY created_at DESC, profile_id DESC")
	require.Len(t, first, 2)
	assert.Equal(t, newer, first[0].ID)
	assert.Equal(t, []string{}, first[0].TechStack)
	assert.Nil(t, first[1].TechStack)
	assert.Nil(t, first[1].Overview)

	second, err := repo.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPGXProfilesRepository_ListByOwnerEmpty(t *testing.T) {
	repo := NewPGXProfilesRepository(&stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			return &stubRows{}, nil
		},
	}, 0)

	records, err := repo.ListByOwner(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestPGXProfilesRepository_ListByOwnerErrors(t *testing.T) {
	repo := NewPGXProfilesRepository(&stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			return nil, errors.New("boom")
		},
	}, 0)
	_, err := repo.ListByOwner(context.Background(), uuid.New())
	assert.Error(t, err)

	repo = NewPGXProfilesRepository(&stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			return &stubRows{err: errors.New("conn lost")}, nil
		},
	}, 0)
	_, err = repo.ListByOwner(context.Background(), uuid.New())
	assert.ErrorContains(t, err, "iterate profiles")
}
