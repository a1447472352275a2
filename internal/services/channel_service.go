package services

import (
	"context"
	"fmt"
	"strings"

	"chat-server/internal/chat"
	"chat-server/internal/database"
	"chat-server/internal/models"
)

type ChannelService struct {
	db database.Database
}

func NewChannelService(db database.Database) *ChannelService {
	return &ChannelService{db: db}
}

func (s *ChannelService) CreateChannel(ctx context.Context, req *models.CreateChannelRequest) (*models.Channel, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("%w: channel name is required", chat.ErrValidation)
	}

	return s.db.CreateChannel(ctx, req.Name)
}

func (s *ChannelService) GetChannel(ctx context.Context, channelID int) (*models.Channel, error) {
	return s.db.GetChannelByID(ctx, channelID)
}

func (s *ChannelService) ListChannels(ctx context.Context) ([]*models.Channel, error) {
	return s.db.ListChannels(ctx)
}

func (s *ChannelService) ListUserChannels(ctx context.Context, userID int) ([]*models.Channel, error) {
	return s.db.ListUserChannels(ctx, userID)
}

// AddMember records durable channel membership. Membership is distinct
// from a live subscription; adding a member never touches the rooms.
func (s *ChannelService) AddMember(ctx context.Context, channelID, userID int) error {
	if _, err := s.db.GetChannelByID(ctx, channelID); err != nil {
		return err
	}
	if _, err := s.db.GetUserByID(ctx, userID); err != nil {
		return err
	}

	return s.db.AddMember(ctx, channelID, userID)
}

func (s *ChannelService) RemoveMember(ctx context.Context, channelID, userID int) error {
	isMember, err := s.db.IsMember(ctx, channelID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return fmt.Errorf("%w: user %d is not a member of channel %d", chat.ErrNotFound, userID, channelID)
	}

	return s.db.RemoveMember(ctx, channelID, userID)
}

func (s *ChannelService) ListMembers(ctx context.Context, channelID int) ([]*models.Member, error) {
	if _, err := s.db.GetChannelByID(ctx, channelID); err != nil {
		return nil, err
	}

	return s.db.ListMembers(ctx, channelID)
}
