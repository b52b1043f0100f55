package models

// SignInRequest holds credentials for authenticating a user.
type SignInRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,max=128"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// SignUpRequest registers a new self-service account.
type SignUpRequest struct {
	FirstName       string `json:"firstName" validate:"required,min=2,max=255"`
	LastName        string `json:"lastName" validate:"required,min=2,max=255"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=8,max=128,password"`
	// ConfirmPassword is optional for API clients; when sent it must match.
	ConfirmPassword string `json:"confirmPassword" validate:"omitempty,eqfield=Password"`
	IP              string `json:"-"`
	UserAgent       string `json:"-"`
}

// RequestMeta carries client details for audit records.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Role      UserRole `json:"role"`
}

// AuthResponse is returned by sign-in and sign-up.
type AuthResponse struct {
	AccessToken string    `json:"accessToken"`
	User        *UserInfo `json:"user"`
}

// AccessTokenResponse is returned by refresh.
type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// SessionTokens is the outcome of a successful sign-in, sign-up or refresh.
// RefreshToken only travels in the HttpOnly cookie.
type SessionTokens struct {
	AccessToken  string
	RefreshToken string
	SessionID    string
	User         *UserInfo
}

// MeResponse returns the verified access token identity.
type MeResponse struct {
	UserInfo *Claims `json:"userInfo"`
}
