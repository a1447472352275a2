package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"chat-server/internal/chat"
	"chat-server/internal/models"

	"github.com/stretchr/testify/require"
)

type memberKey struct {
	channelID int
	userID    int
}

type fakeDB struct {
	channels map[int]*models.Channel
	users    map[int]*models.User
	members  map[memberKey]time.Time
	nextID   int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		channels: make(map[int]*models.Channel),
		users:    make(map[int]*models.User),
		members:  make(map[memberKey]time.Time),
	}
}

func (f *fakeDB) addUser(id int, name string) {
	f.users[id] = &models.User{ID: id, Name: name, Email: name + "@example.com"}
}

func (f *fakeDB) CreateChannel(_ context.Context, name string) (*models.Channel, error) {
	for _, channel := range f.channels {
		if channel.Name == name {
			return channel, nil
		}
	}
	f.nextID++
	channel := &models.Channel{ID: f.nextID, Name: name, CreatedAt: time.Now()}
	f.channels[channel.ID] = channel
	return channel, nil
}

func (f *fakeDB) GetChannelByID(_ context.Context, id int) (*models.Channel, error) {
	channel, ok := f.channels[id]
	if !ok {
		return nil, fmt.Errorf("%w: channel %d", chat.ErrNotFound, id)
	}
	return channel, nil
}

func (f *fakeDB) ListChannels(_ context.Context) ([]*models.Channel, error) {
	var out []*models.Channel
	for _, channel := range f.channels {
		out = append(out, channel)
	}
	return out, nil
}

func (f *fakeDB) ListUserChannels(_ context.Context, userID int) ([]*models.Channel, error) {
	var out []*models.Channel
	for key := range f.members {
		if key.userID == userID {
			out = append(out, f.channels[key.channelID])
		}
	}
	return out, nil
}

func (f *fakeDB) AddMember(_ context.Context, channelID, userID int) error {
	f.members[memberKey{channelID, userID}] = time.Now()
	return nil
}

func (f *fakeDB) RemoveMember(_ context.Context, channelID, userID int) error {
	delete(f.members, memberKey{channelID, userID})
	return nil
}

func (f *fakeDB) IsMember(_ context.Context, channelID, userID int) (bool, error) {
	_, ok := f.members[memberKey{channelID, userID}]
	return ok, nil
}

func (f *fakeDB) ListMembers(_ context.Context, channelID int) ([]*models.Member, error) {
	var out []*models.Member
	for key, joinedAt := range f.members {
		if key.channelID == channelID {
			user := f.users[key.userID]
			out = append(out, &models.Member{ID: user.ID, Name: user.Name, Email: user.Email, JoinedAt: joinedAt})
		}
	}
	return out, nil
}

func (f *fakeDB) CreateUser(_ context.Context, _ *models.RegisterRequest, _ string) (*models.User, error) {
	return nil, nil
}

func (f *fakeDB) GetUserByEmail(_ context.Context, _ string) (*models.User, error) {
	return nil, nil
}

func (f *fakeDB) GetUserByID(_ context.Context, id int) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %d", chat.ErrNotFound, id)
	}
	return user, nil
}

func (f *fakeDB) ListUsers(_ context.Context) ([]*models.User, error) { return nil, nil }

func (f *fakeDB) UpdateUser(_ context.Context, _ int, _ *models.UpdateUserRequest) (*models.User, error) {
	return nil, nil
}

func (f *fakeDB) DeleteUser(_ context.Context, _ int) error { return nil }

func (f *fakeDB) Append(_ context.Context, _, _ int, _, _, _ string) (*models.Message, error) {
	return nil, nil
}

func (f *fakeDB) GetMessageByID(_ context.Context, _ int64) (*models.Message, error) {
	return nil, nil
}

func (f *fakeDB) ListByChannel(_ context.Context, _ int, _ int64, _ int) ([]*models.Message, error) {
	return nil, nil
}

func (f *fakeDB) MarkRead(_ context.Context, _ int64, _ int) error { return nil }

func (f *fakeDB) CreateFile(_ context.Context, _ *models.File) (int64, error) { return 0, nil }

func (f *fakeDB) GetFileByID(_ context.Context, _ int64) (*models.File, error) { return nil, nil }

func (f *fakeDB) DeleteFile(_ context.Context, _ int64) error { return nil }

func (f *fakeDB) Close() error { return nil }

func TestChannelService_CreateChannelRequiresName(t *testing.T) {
	service := NewChannelService(newFakeDB())

	_, err := service.CreateChannel(context.Background(), &models.CreateChannelRequest{Name: "   "})
	require.ErrorIs(t, err, chat.ErrValidation)

	channel, err := service.CreateChannel(context.Background(), &models.CreateChannelRequest{Name: " general "})
	require.NoError(t, err)
	require.Equal(t, "general", channel.Name)
}

func TestChannelService_AddMemberChecksExistence(t *testing.T) {
	db := newFakeDB()
	db.addUser(1, "alice")
	service := NewChannelService(db)

	channel, err := service.CreateChannel(context.Background(), &models.CreateChannelRequest{Name: "general"})
	require.NoError(t, err)

	require.ErrorIs(t, service.AddMember(context.Background(), 999, 1), chat.ErrNotFound)
	require.ErrorIs(t, service.AddMember(context.Background(), channel.ID, 999), chat.ErrNotFound)

	require.NoError(t, service.AddMember(context.Background(), channel.ID, 1))
	members, err := service.ListMembers(context.Background(), channel.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "alice", members[0].Name)
}

func TestChannelService_RemoveMemberRequiresMembership(t *testing.T) {
	db := newFakeDB()
	db.addUser(1, "alice")
	service := NewChannelService(db)

	channel, err := service.CreateChannel(context.Background(), &models.CreateChannelRequest{Name: "general"})
	require.NoError(t, err)

	require.ErrorIs(t, service.RemoveMember(context.Background(), channel.ID, 1), chat.ErrNotFound)

	require.NoError(t, service.AddMember(context.Background(), channel.ID, 1))
	require.NoError(t, service.RemoveMember(context.Background(), channel.ID, 1))

	channels, err := service.ListUserChannels(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, channels)
}
