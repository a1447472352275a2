package database

import (
	"context"

	"chat-server/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, req *models.RegisterRequest, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, id int, req *models.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id int) error
}

type ChannelRepository interface {
	CreateChannel(ctx context.Context, name string) (*models.Channel, error)
	GetChannelByID(ctx context.Context, id int) (*models.Channel, error)
	ListChannels(ctx context.Context) ([]*models.Channel, error)
	ListUserChannels(ctx context.Context, userID int) ([]*models.Channel, error)
}

type MembershipRepository interface {
	AddMember(ctx context.Context, channelID, userID int) error
	RemoveMember(ctx context.Context, channelID, userID int) error
	IsMember(ctx context.Context, channelID, userID int) (bool, error)
	ListMembers(ctx context.Context, channelID int) ([]*models.Member, error)
}

// MessageRepository is the durable append-only log per channel. Append
// assigns the monotonic id; rows are immutable afterwards except for
// read-receipt growth.
type MessageRepository interface {
	Append(ctx context.Context, channelID, senderID int, content, fileURL, fileType string) (*models.Message, error)
	GetMessageByID(ctx context.Context, messageID int64) (*models.Message, error)
	ListByChannel(ctx context.Context, channelID int, sinceID int64, limit int) ([]*models.Message, error)
	MarkRead(ctx context.Context, messageID int64, userID int) error
}

type FileRepository interface {
	CreateFile(ctx context.Context, file *models.File) (int64, error)
	GetFileByID(ctx context.Context, fileID int64) (*models.File, error)
	DeleteFile(ctx context.Context, fileID int64) error
}

type Database interface {
	UserRepository
	ChannelRepository
	MembershipRepository
	MessageRepository
	FileRepository
	Close() error
}
