package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/Earth-Kumar-Roy/Waste-Reporting-and-Redressal-System/internal/domain"
)

// Constraint names declared in migrations/001_init.sql.
const (
	AccountsEmailConstraint    = "accounts_email_key"
	AccountsUsernameConstraint = "accounts_username_lower_key"
)

// AccountRepository defines persistence access for worker accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	List(ctx context.Context) ([]domain.Account, error)
	ListByStatus(ctx context.Context, status domain.AccountStatus) ([]domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByEmailFold(ctx context.Context, email string) (*domain.Account, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExistsFold(ctx context.Context, username string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type accountRepository struct {
	db DBTX
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(db DBTX) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, name, email, phone, region, username, password_hash,
               id_card_number, id_card_image_url, status, created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (name, email, phone, region, username, password_hash, id_card_number, id_card_image_url, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		account.Name,
		account.Email,
		account.Phone,
		account.Region,
		account.Username,
		account.PasswordHash,
		account.IDCardNumber,
		account.IDCardImageURL,
		account.Status,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	return wrapUniqueViolation(err)
}

func (r *accountRepository) List(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func (r *accountRepository) ListByStatus(ctx context.Context, status domain.AccountStatus) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE status=$1 ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username=$1 ORDER BY created_at, id LIMIT 1`
	return r.fetchSingle(ctx, query, username)
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email=$1 ORDER BY created_at, id LIMIT 1`
	return r.fetchSingle(ctx, query, email)
}

func (r *accountRepository) GetByEmailFold(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(email)=LOWER($1) ORDER BY created_at, id LIMIT 1`
	return r.fetchSingle(ctx, query, email)
}

// GetByIdentifier returns the first account whose email or username matches identifier, ignoring case.
func (r *accountRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
        WHERE LOWER(email)=LOWER($1) OR LOWER(username)=LOWER($1)
        ORDER BY created_at, id LIMIT 1`
	return r.fetchSingle(ctx, query, identifier)
}

func (r *accountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM accounts WHERE email=$1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *accountRepository) UsernameExistsFold(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM accounts WHERE LOWER(username)=LOWER($1))`
	var exists bool
	if err := r.db.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *accountRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) error {
	const query = `UPDATE accounts SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE accounts SET password_hash=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.db.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Account, error) {
	var account domain.Account
	if err := r.db.QueryRow(ctx, query, arg).Scan(accountFields(&account)...); err != nil {
		return nil, err
	}
	return &account, nil
}

func accountFields(a *domain.Account) []any {
	return []any{
		&a.ID,
		&a.Name,
		&a.Email,
		&a.Phone,
		&a.Region,
		&a.Username,
		&a.PasswordHash,
		&a.IDCardNumber,
		&a.IDCardImageURL,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	}
}

func scanAccounts(rows pgx.Rows) ([]domain.Account, error) {
	var result []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(accountFields(&account)...); err != nil {
			return nil, err
		}
		result = append(result, account)
	}
	return result, rows.Err()
}
