package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/oklog/ulid/v2"

	"github.com/noah-isme/backoffice-api/internal/models"
)

const userColumns = `id, email, password_hash, first_name, last_name, role, status, logins_count, created_at, updated_at`

// UserRepository provides database access for user management.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// EmailTaken reports whether another account than exceptID already uses email.
func (r *UserRepository) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`
	var taken bool
	if err := r.db.GetContext(ctx, &taken, query, email, exceptID); err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return taken, nil
}

// List returns one page of users other than excludeID with the total count.
func (r *UserRepository) List(ctx context.Context, excludeID string, page int) ([]models.User, int, error) {
	if page < 0 {
		page = 0
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id <> $1 ORDER BY first_name ASC, last_name ASC, logins_count DESC LIMIT $2 OFFSET $3`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, excludeID, models.PageSize, page*models.PageSize); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users WHERE id <> $1`, excludeID); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	return users, total, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	prepareUser(user)
	if _, err := r.db.NamedExecContext(ctx, insertUserQuery, user); err != nil {
		return translate(err, "create user")
	}
	return nil
}

const insertUserQuery = `INSERT INTO users (id, email, password_hash, first_name, last_name, role, status, logins_count, created_at, updated_at) VALUES (:id, :email, :password_hash, :first_name, :last_name, :role, :status, :logins_count, :created_at, :updated_at)`

func prepareUser(user *models.User) {
	if user.ID == "" {
		user.ID = ulid.Make().String()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
}

// Update writes the mutable fields of a user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET email = :email, password_hash = :password_hash, first_name = :first_name, last_name = :last_name, status = :status, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return translate(err, "update user")
	}
	return requireRow(res, "update user")
}

// Delete removes a user; the user's sessions cascade.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRow(res, "delete user")
}

// CreateWithSession inserts a user and its first session in one transaction.
func (r *UserRepository) CreateWithSession(ctx context.Context, user *models.User) (*models.Session, error) {
	prepareUser(user)
	session := newSession(user.ID)

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, insertUserQuery, user); err != nil {
			return translate(err, "create user")
		}
		if _, err := tx.NamedExecContext(ctx, insertSessionQuery, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// CreateLoginSession opens a new session for userID and counts the login.
func (r *UserRepository) CreateLoginSession(ctx context.Context, userID string) (*models.Session, error) {
	session := newSession(userID)

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, insertSessionQuery, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		const query = `UPDATE users SET logins_count = logins_count + 1, updated_at = $2 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, query, userID, session.CreatedAt); err != nil {
			return fmt.Errorf("increment logins: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// CreateAuditLog stores an audit log entry.
func (r *UserRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = ulid.Make().String()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, new_values, ip_address, user_agent, created_at) VALUES (:id, :user_id, :action, :resource, :resource_id, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (r *UserRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *UserRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return withTx(ctx, r.db, fn)
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func requireRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
