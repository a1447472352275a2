package models

import "time"

// File is the durable record behind a Message.FileURL. The blob itself
// lives on disk under the configured upload root.
type File struct {
	ID           int64     `json:"id"`
	ChannelID    int       `json:"channel_id"`
	SenderID     int       `json:"sender_id"`
	StoredName   string    `json:"stored_name"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	FileType     string    `json:"file_type"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
}
