package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/contextauth/pkg/domain"
)

// AccountsRepository handles account persistence.
type AccountsRepository struct {
	db *sql.DB
}

// NewAccountsRepository creates a new accounts repository.
func NewAccountsRepository(db *sql.DB) *AccountsRepository {
	return &AccountsRepository{db: db}
}

const accountColumns = `id, email, role, email_verified, suspended_until, authenticator_secret, created_at, updated_at`

func scanAccount(row *sql.Row) (*domain.Account, error) {
	account := &domain.Account{}
	err := row.Scan(
		&account.ID, &account.Email, &account.Role, &account.EmailVerified,
		&account.SuspendedUntil, &account.AuthenticatorSecret,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Create inserts a new account.
func (r *AccountsRepository) Create(ctx context.Context, q Querier, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, email, role, email_verified, suspended_until, authenticator_secret, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := q.ExecContext(ctx, query,
		account.ID, account.Email, account.Role, account.EmailVerified,
		account.SuspendedUntil, account.AuthenticatorSecret, account.CreatedAt, account.UpdatedAt,
	)
	return err
}

// FindByEmail retrieves an account by its normalized email.
func (r *AccountsRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, email))
}

// FindByID retrieves an account by ID.
func (r *AccountsRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

// SetSuspendedUntil writes the suspension marker. A nil until clears it.
func (r *AccountsRepository) SetSuspendedUntil(ctx context.Context, id uuid.UUID, until *time.Time) error {
	query := `UPDATE accounts SET suspended_until = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, until, time.Now())
	if err != nil {
		return err
	}
	return requireOneRow(result)
}

// MarkEmailVerified marks the account's email as verified.
func (r *AccountsRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE accounts SET email_verified = TRUE, updated_at = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return err
	}
	return requireOneRow(result)
}

// ClearExpiredSuspensions removes suspension markers that ended before now
// and returns how many were cleared.
func (r *AccountsRepository) ClearExpiredSuspensions(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE accounts
		SET suspended_until = NULL, updated_at = $1
		WHERE suspended_until IS NOT NULL AND suspended_until <= $1
	`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func requireOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
