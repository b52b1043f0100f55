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

const insertSessionQuery = `INSERT INTO sessions (id, user_id, created_at, terminated_at) VALUES (:id, :user_id, :created_at, :terminated_at)`

func newSession(userID string) *models.Session {
	return &models.Session{ID: ulid.Make().String(), UserID: userID, CreatedAt: time.Now().UTC()}
}

// SessionRepository persists the durable session rows used for auditing and hand-off.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create opens a new session row for userID.
func (r *SessionRepository) Create(ctx context.Context, userID string) (*models.Session, error) {
	session := newSession(userID)
	if _, err := r.db.NamedExecContext(ctx, insertSessionQuery, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// FindOpen returns the newest non-terminated session of userID.
func (r *SessionRepository) FindOpen(ctx context.Context, userID string) (*models.Session, error) {
	const query = `SELECT id, user_id, created_at, terminated_at FROM sessions WHERE user_id = $1 AND terminated_at IS NULL ORDER BY created_at DESC LIMIT 1`
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find open session: %w", err)
	}
	return &session, nil
}

// FindWithOwner returns a session joined with its owner's status and role.
func (r *SessionRepository) FindWithOwner(ctx context.Context, sessionID string) (*models.SessionOwner, error) {
	const query = `SELECT s.id, s.user_id, s.created_at, s.terminated_at, u.status, u.role FROM sessions s JOIN users u ON u.id = s.user_id WHERE s.id = $1 LIMIT 1`
	var owner models.SessionOwner
	if err := r.db.GetContext(ctx, &owner, query, sessionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find session owner: %w", err)
	}
	return &owner, nil
}

// Terminate marks a session as ended. Already terminated sessions keep their original timestamp.
func (r *SessionRepository) Terminate(ctx context.Context, sessionID string) error {
	const query = `UPDATE sessions SET terminated_at = COALESCE(terminated_at, $2) WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, sessionID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("terminate session: %w", err)
	}
	return requireRow(res, "terminate session")
}

// ListOpenIDs returns the ids of every non-terminated session of userID.
func (r *SessionRepository) ListOpenIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM sessions WHERE user_id = $1 AND terminated_at IS NULL`, userID); err != nil {
		return nil, fmt.Errorf("list open sessions: %w", err)
	}
	return ids, nil
}

// TerminateAll marks every open session of userID as ended.
func (r *SessionRepository) TerminateAll(ctx context.Context, userID string) error {
	const query = `UPDATE sessions SET terminated_at = $2 WHERE user_id = $1 AND terminated_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("terminate user sessions: %w", err)
	}
	return nil
}

// List returns one page of sessions not owned by excludeUserID with the total count.
func (r *SessionRepository) List(ctx context.Context, excludeUserID string, page int) ([]models.SessionListItem, int, error) {
	if page < 0 {
		page = 0
	}

	const query = `SELECT s.id, s.created_at, s.terminated_at, u.id AS "user.id", u.first_name AS "user.first_name", u.last_name AS "user.last_name", u.email AS "user.email" FROM sessions s JOIN users u ON u.id = s.user_id WHERE s.user_id <> $1 ORDER BY s.terminated_at DESC NULLS FIRST, s.created_at DESC, u.first_name ASC, u.last_name ASC, u.logins_count DESC LIMIT $2 OFFSET $3`
	var items []models.SessionListItem
	if err := r.db.SelectContext(ctx, &items, query, excludeUserID, models.PageSize, page*models.PageSize); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM sessions WHERE user_id <> $1`, excludeUserID); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	return items, total, nil
}
