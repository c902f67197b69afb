package storage

import (
	"api/domain"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (pgr *PostgresRepo) Close() {
	pgr.pool.Close()
}

func (pgr *PostgresRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	user := domain.User{Username: username}

	row := pgr.pool.QueryRow(ctx, "SELECT id, password_hash, coins FROM users WHERE username = $1", username)

	err := row.Scan(&user.Id, &user.PasswordHash, &user.Coins)

	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.User{}, domain.ErrUserNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.User{}, err
		default:
			return domain.User{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}

	return user, nil
}

func (pgr *PostgresRepo) GetUserById(ctx context.Context, id string) (domain.User, error) {
	user := domain.User{Id: id}

	row := pgr.pool.QueryRow(ctx, "SELECT username, password_hash, coins FROM users WHERE id = $1", id)

	err := row.Scan(&user.Username, &user.PasswordHash, &user.Coins)

	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.User{}, domain.ErrUserNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.User{}, err
		default:
			return domain.User{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}

	return user, nil
}

func (pgr *PostgresRepo) CreateUser(ctx context.Context, username string, passwordHash string) (string, error) {
	row := pgr.pool.QueryRow(ctx, "INSERT INTO users(username, password_hash) VALUES($1, $2) RETURNING id", username, passwordHash)

	var id string
	err := row.Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// "23505" is the PostgreSQL error code for unique_violation
			if pgErr.Code == "23505" {
				return "", domain.ErrDuplicateUsername
			}
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}

		return "", fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}

	return id, nil
}

func (pgr *PostgresRepo) Balance(ctx context.Context, id string) (int64, error) {
	row := pgr.pool.QueryRow(ctx, "SELECT coins FROM users WHERE id = $1", id)

	var coins int64
	err := row.Scan(&coins)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return 0, domain.ErrUserNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return 0, err
		default:
			return 0, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}

	return coins, nil
}

// Settle applies every coin delta in a single transaction. Either all
// entries land or none do, so a failed debit never leaves a dangling credit.
func (pgr *PostgresRepo) Settle(ctx context.Context, entries []domain.SettlementEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := pgr.pool.Begin(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	defer tx.Rollback(ctx)

	for _, entry := range entries {
		tag, err := tx.Exec(ctx, "UPDATE users SET coins = coins + $1 WHERE id = $2", entry.Delta, entry.UserId)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) {
				// "23514" is the PostgreSQL error code for check_violation,
				// raised when a debit would push coins below zero
				if pgErr.Code == "23514" {
					return domain.ErrInsufficientFunds
				}
			}

			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}

			return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrUserNotFound
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}

	return nil
}
