package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/octobees/sift-profiler/internal/entity"
)

// ErrProfileNotFound is returned when a profile does not exist or belongs to another user.
var ErrProfileNotFound = errors.New("profile not found")

// ProfilesRepository persists company profile records.
type ProfilesRepository interface {
	Insert(ctx context.Context, rec *entity.ProfileRecord) (*entity.ProfileRecord, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.ProfileRecord, error)
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*entity.ProfileRecord, error)
	DeleteByID(ctx context.Context, id, ownerID uuid.UUID) error
}

// PGXProfilesRepository implements ProfilesRepository using pgx.
type PGXProfilesRepository struct {
	pool         pgxPool
	queryTimeout time.Duration
}

// NewPGXProfilesRepository wires a pgx backed repository. A zero queryTimeout
// leaves the caller's deadline untouched.
func NewPGXProfilesRepository(pool pgxPool, queryTimeout time.Duration) *PGXProfilesRepository {
	return &PGXProfilesRepository{pool: pool, queryTimeout: queryTimeout}
}

const profileSelectColumns = `profile_id, user_id, company_name, overview, tech_stack, recent_news_signals,
            key_contacts, executive_summary, pain_points, opening_lines, data_sources,
            last_analyzed_at, created_at`

// Insert stores a new record and returns it with the generated id and creation time.
func (r *PGXProfilesRepository) Insert(ctx context.Context, rec *entity.ProfileRecord) (*entity.ProfileRecord, error) {
	if rec == nil {
		return nil, fmt.Errorf("profile record is nil")
	}

	cols, err := encodeProfileColumns(rec)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
        INSERT INTO company_profiles (
            user_id,
            company_name,
            overview,
            tech_stack,
            recent_news_signals,
            key_contacts,
            executive_summary,
            pain_points,
            opening_lines,
            data_sources,
            last_analyzed_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING profile_id, created_at
    `,
		rec.UserID,
		rec.CompanyName,
		cols.Overview,
		cols.TechStack,
		cols.RecentNewsSignals,
		cols.KeyContacts,
		cols.ExecutiveSummary,
		cols.PainPoints,
		cols.OpeningLines,
		cols.DataSources,
		rec.LastAnalyzedAt,
	)

	saved := *rec
	if err := row.Scan(&saved.ID, &saved.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return &saved, nil
}

// ListByOwner returns the owner's records, newest first.
func (r *PGXProfilesRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]entity.ProfileRecord, error) {
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `
        SELECT `+profileSelectColumns+`
        FROM company_profiles
        WHERE user_id = $1
        ORDER BY created_at DESC, profile_id DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	records := make([]entity.ProfileRecord, 0)
	for rows.Next() {
		rec, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return records, nil
}

// GetByID fetches one record owned by ownerID.
func (r *PGXProfilesRepository) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*entity.ProfileRecord, error) {
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
        SELECT `+profileSelectColumns+`
        FROM company_profiles
        WHERE profile_id = $1 AND user_id = $2
    `, id, ownerID)

	rec, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return rec, nil
}

// DeleteByID removes one record owned by ownerID.
func (r *PGXProfilesRepository) DeleteByID(ctx context.Context, id, ownerID uuid.UUID) error {
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	cmd, err := r.pool.Exec(ctx, `DELETE FROM company_profiles WHERE profile_id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func scanProfile(row pgx.Row) (*entity.ProfileRecord, error) {
	var (
		rec  entity.ProfileRecord
		cols profileColumns
	)
	if err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.CompanyName,
		&cols.Overview,
		&cols.TechStack,
		&cols.RecentNewsSignals,
		&cols.KeyContacts,
		&cols.ExecutiveSummary,
		&cols.PainPoints,
		&cols.OpeningLines,
		&cols.DataSources,
		&rec.LastAnalyzedAt,
		&rec.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan profile row: %w", err)
	}
	if err := decodeProfileColumns(cols, &rec); err != nil {
		return nil, fmt.Errorf("profile %s: %w", rec.ID, err)
	}
	return &rec, nil
}

func withQueryTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

var _ ProfilesRepository = (*PGXProfilesRepository)(nil)
