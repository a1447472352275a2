package models

import "time"

type Channel struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Member is a durable channel membership row joined with user details.
// Distinct from a live subscription: a member may have no session online.
type Member struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
}

type CreateChannelRequest struct {
	Name string `json:"name" validate:"required,min=1,max=80"`
}

type AddMemberRequest struct {
	UserID int `json:"user_id" validate:"required,gt=0"`
}
