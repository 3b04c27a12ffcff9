package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-account-api/app/observability/metrics"
	"github.com/FACorreiaa/go-account-api/internal/types"
)

const uniqueViolation = "23505"

var _ AccountRepo = (*PostgresAccountRepo)(nil)

// AccountRepo defines the contract for user record persistence.
type AccountRepo interface {
	// CreateUser inserts a new user record and returns it. Returns
	// types.ErrConflict when the email is already taken.
	CreateUser(ctx context.Context, name, email, hashedPassword string) (*types.User, error)

	// GetUserByEmail retrieves a user by email (case-insensitive).
	// Returns types.ErrNotFound when no record exists.
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)

	// GetUserByID retrieves a user by ID. Returns types.ErrNotFound when
	// no record exists.
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)

	// UpdateProfile mutates only the supplied fields and returns the
	// updated record. Returns types.ErrConflict when the new email
	// collides with a different user, types.ErrNotFound when the user is
	// gone.
	UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpdateProfileRequest) (*types.User, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, userID uuid.UUID, newHashedPassword string) error

	// UpdateLastLogin sets the last_login_at timestamp and returns it.
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) (time.Time, error)

	// DeleteUser removes the record permanently (hard delete).
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

type PostgresAccountRepo struct {
	logger *slog.Logger
	pgpool PGXQuerier
}

// PGXQuerier is the subset of pgxpool.Pool the repository needs; it lets
// tests substitute pgxmock.
type PGXQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func NewPostgresAccountRepo(pgpool PGXQuerier, logger *slog.Logger) *PostgresAccountRepo {
	return &PostgresAccountRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const userColumns = "id, name, email, password_hash, role, is_active, created_at, updated_at, last_login_at"

func scanUser(row pgx.Row) (*types.User, error) {
	var user types.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Role,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt, &user.LastLoginAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// observeQuery records query duration and errors when metrics are up.
func observeQuery(ctx context.Context, start time.Time, err error) {
	m := metrics.Get()
	if m == nil {
		return
	}
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		m.DbQueryErrorsTotal.Add(ctx, 1)
	}
}

func (r *PostgresAccountRepo) CreateUser(ctx context.Context, name, email, hashedPassword string) (*types.User, error) {
	query := `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	start := time.Now()
	user, err := scanUser(r.pgpool.QueryRow(ctx, query, name, email, hashedPassword))
	observeQuery(ctx, start, err)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("email already registered: %w", types.ErrConflict)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

func (r *PostgresAccountRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE LOWER(email) = LOWER($1)"

	start := time.Now()
	user, err := scanUser(r.pgpool.QueryRow(ctx, query, email))
	observeQuery(ctx, start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", types.ErrNotFound)
		}
		return nil, fmt.Errorf("get user by email: query failed: %w", err)
	}

	return user, nil
}

func (r *PostgresAccountRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = $1"

	start := time.Now()
	user, err := scanUser(r.pgpool.QueryRow(ctx, query, userID))
	observeQuery(ctx, start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", types.ErrNotFound)
		}
		return nil, fmt.Errorf("get user by id: query failed: %w", err)
	}

	return user, nil
}

func (r *PostgresAccountRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, params types.UpdateProfileRequest) (*types.User, error) {
	ctx, span := otel.Tracer("AccountRepo").Start(ctx, "UpdateProfile", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "UpdateProfile"), slog.String("userID", userID.String()))

	var setClauses []string
	var args []interface{}
	argID := 1

	if params.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argID))
		args = append(args, *params.Name)
		argID++
		span.SetAttributes(attribute.Bool("update.name", true))
	}
	if params.Email != nil {
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", argID))
		args = append(args, *params.Email)
		argID++
		span.SetAttributes(attribute.Bool("update.email", true))
	}

	// No fields supplied: nothing to mutate, return the current record.
	if len(setClauses) == 0 {
		span.SetStatus(codes.Ok, "No update fields provided")
		return r.GetUserByID(ctx, userID)
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++

	args = append(args, userID)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "),
		argID,
		userColumns,
	)

	l.DebugContext(ctx, "Executing dynamic update query", slog.String("query", query), slog.Int("arg_count", len(args)))

	start := time.Now()
	user, err := scanUser(r.pgpool.QueryRow(ctx, query, args...))
	observeQuery(ctx, start, err)
	if err != nil {
		if isUniqueViolation(err) {
			span.SetStatus(codes.Error, "Email conflict")
			return nil, fmt.Errorf("email already registered: %w", types.ErrConflict)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "User not found")
			return nil, fmt.Errorf("user not found for update: %w", types.ErrNotFound)
		}
		l.ErrorContext(ctx, "Failed to execute update profile query", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB UPDATE failed")
		return nil, fmt.Errorf("database error updating profile: %w", err)
	}

	span.SetStatus(codes.Ok, "Profile updated")
	return user, nil
}

func (r *PostgresAccountRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, newHashedPassword string) error {
	start := time.Now()
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		newHashedPassword, time.Now(), userID)
	observeQuery(ctx, start, err)
	if err != nil {
		return fmt.Errorf("update password: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", types.ErrNotFound)
	}
	return nil
}

func (r *PostgresAccountRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID) (time.Time, error) {
	var lastLogin time.Time
	start := time.Now()
	err := r.pgpool.QueryRow(ctx,
		`UPDATE users SET last_login_at = now() WHERE id = $1 RETURNING last_login_at`,
		userID).Scan(&lastLogin)
	observeQuery(ctx, start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, fmt.Errorf("user not found: %w", types.ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("update last login: db update failed: %w", err)
	}
	return lastLogin, nil
}

func (r *PostgresAccountRepo) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	ctx, span := otel.Tracer("AccountRepo").Start(ctx, "DeleteUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("db.sql.table", "users"),
		attribute.String("db.user.id", userID.String()),
	))
	defer span.End()

	start := time.Now()
	tag, err := r.pgpool.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	observeQuery(ctx, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "DB DELETE failed")
		return fmt.Errorf("delete user: db delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "User not found")
		return fmt.Errorf("user not found: %w", types.ErrNotFound)
	}

	span.SetStatus(codes.Ok, "User deleted")
	return nil
}
