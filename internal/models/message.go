package models

import "time"

// Message is an append-only row. Only ReadBy grows after creation.
// Either Content or FileURL is non-empty, never neither.
type Message struct {
	ID         int64     `json:"id"`
	ChannelID  int       `json:"channel_id"`
	SenderID   int       `json:"sender_id"`
	SenderName string    `json:"sender_name,omitempty"`
	Content    string    `json:"content,omitempty"`
	FileURL    string    `json:"file_url,omitempty"`
	FileType   string    `json:"file_type,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ReadBy     []int     `json:"read_by,omitempty"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}
