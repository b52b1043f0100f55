package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// UserStatus controls whether an account may sign in or be handed off.
type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
)

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FirstName    string     `db:"first_name" json:"firstName"`
	LastName     string     `db:"last_name" json:"lastName"`
	Role         UserRole   `db:"role" json:"role"`
	Status       UserStatus `db:"status" json:"status"`
	LoginsCount  int        `db:"logins_count" json:"loginsCount"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// Active reports whether the account is enabled.
func (u *User) Active() bool {
	return u != nil && u.Status == StatusActive
}

// Info projects the user into the shape returned to clients.
func (u *User) Info() UserInfo {
	return UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

// CreateUserRequest is the admin payload for adding an account. Accounts created
// this way always start active with the user role.
type CreateUserRequest struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=255"`
	LastName  string `json:"lastName" validate:"required,min=2,max=255"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=128,password"`
}

// UpdateUserRequest is a partial update; nil fields are left untouched.
type UpdateUserRequest struct {
	FirstName *string     `json:"firstName" validate:"omitempty,min=2,max=255"`
	LastName  *string     `json:"lastName" validate:"omitempty,min=2,max=255"`
	Email     *string     `json:"email" validate:"omitempty,email,max=255"`
	Password  *string     `json:"password" validate:"omitempty,min=8,max=128,password"`
	Status    *UserStatus `json:"status" validate:"omitempty,oneof=active inactive"`
}

// Page is the paging envelope used by the admin listings.
type Page[T any] struct {
	Data        []T `json:"data"`
	TotalUsers  int `json:"totalUsers"`
	CurrentPage int `json:"currentPage"`
	NextPage    int `json:"nextPage"`
	TotalPages  int `json:"totalPages"`
}

// PageSize is the fixed page size of admin listings.
const PageSize = 6

// NewPage computes the paging metadata for a zero-based page.
func NewPage[T any](data []T, total, page int) Page[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := (total + PageSize - 1) / PageSize
	next := page + 1
	if next > totalPages-1 {
		next = totalPages - 1
	}
	if next < 0 {
		next = 0
	}
	return Page[T]{
		Data:        data,
		TotalUsers:  total,
		CurrentPage: page,
		NextPage:    next,
		TotalPages:  totalPages,
	}
}
