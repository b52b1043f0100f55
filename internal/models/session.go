package models

import "time"

// SessionRecord is the fast-store entry keyed by session id. RefreshJTI is the only
// refresh token identifier currently allowed to rotate the session.
type SessionRecord struct {
	UserID     string
	SessionID  string
	FirstName  string
	LastName   string
	Role       UserRole
	RefreshJTI string
	CreatedAt  time.Time
}

// Payload returns the token identity stored in the record.
func (r *SessionRecord) Payload() TokenPayload {
	return TokenPayload{
		UserID:    r.UserID,
		SessionID: r.SessionID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Role:      r.Role,
	}
}

// NewSessionRecord builds a store record from a user and a durable session id.
func NewSessionRecord(user *User, sessionID, refreshJTI string) *SessionRecord {
	return &SessionRecord{
		UserID:     user.ID,
		SessionID:  sessionID,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Role:       user.Role,
		RefreshJTI: refreshJTI,
	}
}

// Session is the durable audit row of a session in the sessions table.
type Session struct {
	ID           string     `db:"id" json:"id"`
	UserID       string     `db:"user_id" json:"userId"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	TerminatedAt *time.Time `db:"terminated_at" json:"terminatedAt"`
}

// Terminated reports whether the session has been ended.
func (s *Session) Terminated() bool {
	return s != nil && s.TerminatedAt != nil
}

// SessionOwner joins a durable session with the account that owns it.
type SessionOwner struct {
	Session
	Status UserStatus `db:"status"`
	Role   UserRole   `db:"role"`
}

// SessionListItem is a row of the admin session listing.
type SessionListItem struct {
	ID           string      `db:"id" json:"id"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	TerminatedAt *time.Time  `db:"terminated_at" json:"terminatedAt"`
	User         SessionUser `db:"user" json:"user"`
}

// SessionUser is the owner summary embedded in session listings.
type SessionUser struct {
	ID        string `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`
	Email     string `db:"email" json:"email"`
}

// CreateHandoffRequest asks for a join link for a user.
type CreateHandoffRequest struct {
	UserID string `json:"userId" validate:"required,max=64"`
}

// HandoffResponse is returned when a join link is issued.
type HandoffResponse struct {
	SessionID string `json:"sessionId"`
	JoinURL   string `json:"joinUrl"`
}
