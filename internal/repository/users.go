package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/octobees/sift-profiler/internal/entity"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup criteria.
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailDuplicate    = errors.New("email already exists")
	ErrUsernameDuplicate = errors.New("username already exists")
)

const uniqueViolation = "23505"

// UsersRepository declares persistence operations for user accounts.
type UsersRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	Create(ctx context.Context, username, email, passwordHash string) (*entity.User, error)
	Update(ctx context.Context, id uuid.UUID, username, email, passwordHash *string) (*entity.User, error)
	ExistsByUsername(ctx context.Context, username string, excludeID uuid.UUID) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
}

// PGXUsersRepository implements UsersRepository with pgx.
type PGXUsersRepository struct {
	pool         pgxPool
	queryTimeout time.Duration
}

// NewPGXUsersRepository instantiates a users repository.
func NewPGXUsersRepository(pool pgxPool, queryTimeout time.Duration) *PGXUsersRepository {
	return &PGXUsersRepository{pool: pool, queryTimeout: queryTimeout}
}

const userColumns = `user_id, username, email, password_hash, created_at`

// FindByEmail fetches a user by email if present.
func (r *PGXUsersRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return user, nil
}

// FindByID retrieves a user by identifier.
func (r *PGXUsersRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

// Create inserts a new user row.
func (r *PGXUsersRepository) Create(ctx context.Context, username, email, passwordHash string) (*entity.User, error) {
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	row := r.pool.QueryRow(ctx, `
        INSERT INTO users (username, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING `+userColumns, username, email, passwordHash)

	user, err := scanUser(row)
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// Update patches user attributes. Nil arguments are left unchanged.
func (r *PGXUsersRepository) Update(ctx context.Context, id uuid.UUID, username, email, passwordHash *string) (*entity.User, error) {
	setClauses := make([]string, 0)
	args := make([]any, 0)
	idx := 1

	if username != nil {
		setClauses = append(setClauses, fmt.Sprintf("username = $%d", idx))
		args = append(args, *username)
		idx++
	}
	if email != nil {
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", idx))
		args = append(args, *email)
		idx++
	}
	if passwordHash != nil {
		setClauses = append(setClauses, fmt.Sprintf("password_hash = $%d", idx))
		args = append(args, *passwordHash)
		idx++
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE user_id = $%d RETURNING `+userColumns, strings.Join(setClauses, ", "), idx)

	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if dup := duplicateError(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// ExistsByUsername reports whether another user already uses username.
// Pass uuid.Nil to check against every user.
func (r *PGXUsersRepository) ExistsByUsername(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND user_id <> $2)`, username, excludeID)
}

// ExistsByEmail reports whether another user already uses email.
func (r *PGXUsersRepository) ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND user_id <> $2)`, email, excludeID)
}

func (r *PGXUsersRepository) exists(ctx context.Context, query, value string, excludeID uuid.UUID) (bool, error) {
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	var found bool
	if err := r.pool.QueryRow(ctx, query, value, excludeID).Scan(&found); err != nil {
		return false, fmt.Errorf("check user uniqueness: %w", err)
	}
	return found, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var user entity.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}

func duplicateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	switch {
	case pgErr.ConstraintName == "users_email_key" || strings.Contains(pgErr.Message, "users_email_key"):
		return fmt.Errorf("%w: %v", ErrEmailDuplicate, pgErr)
	case pgErr.ConstraintName == "users_username_key" || strings.Contains(pgErr.Message, "users_username_key"):
		return fmt.Errorf("%w: %v", ErrUsernameDuplicate, pgErr)
	}
	return nil
}

var _ UsersRepository = (*PGXUsersRepository)(nil)
