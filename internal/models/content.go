package models

import "time"

// DefaultHomeContent is served when nothing has been published yet.
const DefaultHomeContent = "<div></div>"

// HomePage is the single published content blob shown on the dashboard.
type HomePage struct {
	ID        string    `db:"id" json:"id"`
	Content   string    `db:"content" json:"content"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ContentRequest publishes new dashboard content.
type ContentRequest struct {
	Content string `json:"content" validate:"max=1048576"`
}

// ContentResponse is the dashboard payload.
type ContentResponse struct {
	Content string `json:"content"`
}
