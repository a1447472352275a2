package chat

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"chat-server/internal/models"
	"chat-server/internal/storage"
	"chat-server/pkg/logger"

	"github.com/samber/lo"
)

// MessageStore is the durability boundary for the engine. Append is the
// serialization point for channel ordering; a message may only be
// broadcast after Append has returned successfully.
type MessageStore interface {
	Append(ctx context.Context, channelID, senderID int, content, fileURL, fileType string) (*models.Message, error)
	GetMessageByID(ctx context.Context, messageID int64) (*models.Message, error)
	ListByChannel(ctx context.Context, channelID int, sinceID int64, limit int) ([]*models.Message, error)
	MarkRead(ctx context.Context, messageID int64, userID int) error
}

// FileRecorder persists the durable record behind an uploaded blob.
type FileRecorder interface {
	CreateFile(ctx context.Context, file *models.File) (int64, error)
	DeleteFile(ctx context.Context, fileID int64) error
}

// BlobStore writes decoded upload payloads to disk.
type BlobStore interface {
	MaxBytes() int64
	Save(originalName string, data []byte) (*storage.SavedFile, error)
	Remove(storedName string) error
}

// Engine drives every inbound event through the same gates:
// authenticate, validate, persist, broadcast, acknowledge. Validation
// and authentication failures are reported to the originating session
// only and leave no state behind. Once a message is persisted the
// broadcast is best effort per recipient; an undeliverable recipient
// never rolls anything back.
type Engine struct {
	registry     *Registry
	rooms        *RoomIndex
	presence     *Presence
	store        MessageStore
	files        FileRecorder
	blobs        BlobStore
	historyLimit int

	mu       sync.Mutex
	ordering map[int]*sync.Mutex
}

func NewEngine(registry *Registry, rooms *RoomIndex, presence *Presence, store MessageStore, files FileRecorder, blobs BlobStore, historyLimit int) *Engine {
	return &Engine{
		registry:     registry,
		rooms:        rooms,
		presence:     presence,
		store:        store,
		files:        files,
		blobs:        blobs,
		historyLimit: historyLimit,
		ordering:     make(map[int]*sync.Mutex),
	}
}

// Connect registers a new transport connection.
func (e *Engine) Connect(sessionID string, t Transport) error {
	return e.registry.Register(sessionID, t)
}

// Authenticate binds a verified identity to the session and marks the
// user online.
func (e *Engine) Authenticate(sessionID string, userID int, userName string) error {
	if err := e.registry.BindUser(sessionID, userID, userName); err != nil {
		return err
	}
	e.presence.SetOnline(userID, sessionID)
	return nil
}

// Join subscribes the session to a channel, notifies the other
// subscribers and replays recent history to the joiner.
func (e *Engine) Join(ctx context.Context, sessionID string, channelID int) error {
	if err := e.registry.JoinChannel(sessionID, channelID); err != nil {
		return e.reject(sessionID, err, "cannot join channel")
	}
	userID, _, _ := e.registry.UserOf(sessionID)
	e.broadcast(channelID, sessionID, OutboundEvent{
		Event: EventUserJoined,
		Data:  UserJoinedPayload{UserID: userID},
	})

	messages, err := e.store.ListByChannel(ctx, channelID, 0, e.historyLimit)
	if err != nil {
		logger.Error("History replay failed for channel %d: %v", channelID, err)
		return nil
	}
	e.pushTo(sessionID, OutboundEvent{
		Event: EventHistory,
		Data:  HistoryPayload{ChannelID: channelID, Messages: messages},
	})
	return nil
}

// Leave unsubscribes the session from the channel and notifies the
// remaining subscribers.
func (e *Engine) Leave(sessionID string, channelID int) error {
	userID, _, err := e.registry.UserOf(sessionID)
	if err != nil {
		return e.reject(sessionID, err, "cannot leave channel")
	}
	if err := e.registry.LeaveChannel(sessionID, channelID); err != nil {
		return e.reject(sessionID, err, "cannot leave channel")
	}
	e.broadcast(channelID, sessionID, OutboundEvent{
		Event: EventUserLeft,
		Data:  UserLeftPayload{UserID: userID},
	})
	return nil
}

// SendText persists a text message and fans it out to the channel's
// other subscribers. The sender receives an ack with the assigned id.
func (e *Engine) SendText(ctx context.Context, sessionID string, p SendMessagePayload) (int64, error) {
	userID, userName, err := e.registry.UserOf(sessionID)
	if err != nil {
		return 0, e.reject(sessionID, err, "not authenticated")
	}
	if strings.TrimSpace(p.Message) == "" {
		return 0, e.reject(sessionID, ErrValidation, "message content is required")
	}

	msg, err := e.publish(ctx, p.ChannelID, userID, userName, p.Message, "", "", "", sessionID)
	if err != nil {
		return 0, e.reject(sessionID, err, "failed to save message")
	}
	e.pushTo(sessionID, OutboundEvent{Event: EventMessageSent, Data: MessageSentPayload{ID: msg.ID}})
	return msg.ID, nil
}

// SendFile decodes the payload, writes the blob, records it and then
// follows the same persist-and-broadcast path as a text message. The
// size gate runs before any disk write; a disk or store failure aborts
// the event with no partial state left behind.
func (e *Engine) SendFile(ctx context.Context, sessionID string, p SendFilePayload) (int64, error) {
	userID, userName, err := e.registry.UserOf(sessionID)
	if err != nil {
		return 0, e.reject(sessionID, err, "not authenticated")
	}
	if p.FileName == "" || p.FileData == "" {
		return 0, e.reject(sessionID, ErrValidation, "file name and data are required")
	}
	if int64(base64.StdEncoding.DecodedLen(len(p.FileData))) > e.blobs.MaxBytes() {
		return 0, e.reject(sessionID, ErrValidation, "file exceeds size limit")
	}

	data, err := base64.StdEncoding.DecodeString(p.FileData)
	if err != nil {
		return 0, e.reject(sessionID, ErrValidation, "file data is not valid base64")
	}

	saved, err := e.blobs.Save(p.FileName, data)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return 0, e.reject(sessionID, ErrValidation, "file exceeds size limit")
		}
		return 0, e.reject(sessionID, fmt.Errorf("%w: %v", ErrPersistence, err), "failed to save file")
	}

	fileID, err := e.files.CreateFile(ctx, &models.File{
		ChannelID:    p.ChannelID,
		SenderID:     userID,
		StoredName:   saved.StoredName,
		OriginalName: saved.OriginalName,
		MimeType:     saved.MimeType,
		FileType:     saved.Category,
		SizeBytes:    saved.Size,
	})
	if err != nil {
		e.discardBlob(saved.StoredName)
		return 0, e.reject(sessionID, fmt.Errorf("%w: %v", ErrPersistence, err), "failed to save file")
	}

	content := fmt.Sprintf("Sent a file: %s", p.FileName)
	msg, err := e.publish(ctx, p.ChannelID, userID, userName, content, saved.URL, p.FileName, saved.Category, sessionID)
	if err != nil {
		e.discardBlob(saved.StoredName)
		if derr := e.files.DeleteFile(ctx, fileID); derr != nil {
			logger.Error("Failed to delete file record %d: %v", fileID, derr)
		}
		return 0, e.reject(sessionID, err, "failed to save file message")
	}
	e.pushTo(sessionID, OutboundEvent{Event: EventMessageSent, Data: MessageSentPayload{ID: msg.ID}})
	return msg.ID, nil
}

// Typing relays the indicator to the channel's other subscribers. It is
// ephemeral and never persisted.
func (e *Engine) Typing(sessionID string, p TypingPayload) error {
	userID, _, err := e.registry.UserOf(sessionID)
	if err != nil {
		return e.reject(sessionID, err, "not authenticated")
	}
	e.presence.SetTyping(userID, p.ChannelID, p.IsTyping)
	e.broadcast(p.ChannelID, sessionID, OutboundEvent{
		Event: EventUserTyping,
		Data:  UserTypingPayload{UserID: userID, IsTyping: p.IsTyping},
	})
	return nil
}

// MarkRead records a read receipt and relays it to the other
// subscribers of the channel the message lives in. The channel comes
// from the persisted row, never from the client.
func (e *Engine) MarkRead(ctx context.Context, sessionID string, p MarkReadPayload) error {
	userID, _, err := e.registry.UserOf(sessionID)
	if err != nil {
		return e.reject(sessionID, err, "not authenticated")
	}
	msg, err := e.store.GetMessageByID(ctx, p.MessageID)
	if err != nil {
		return e.reject(sessionID, err, "failed to mark message as read")
	}
	if err := e.store.MarkRead(ctx, p.MessageID, userID); err != nil {
		return e.reject(sessionID, err, "failed to mark message as read")
	}
	e.broadcast(msg.ChannelID, sessionID, OutboundEvent{
		Event: EventReadReceipt,
		Data:  ReadReceiptPayload{MessageID: p.MessageID, ChannelID: msg.ChannelID, UserID: userID, ReadAt: time.Now()},
	})
	return nil
}

// Disconnect unregisters the session, notifies every channel it had
// joined and updates presence. Unknown sessions are a no-op.
func (e *Engine) Disconnect(sessionID string) {
	userID, _, uerr := e.registry.UserOf(sessionID)
	channels := e.registry.Unregister(sessionID)
	for _, channelID := range channels {
		e.broadcast(channelID, sessionID, OutboundEvent{
			Event: EventUserLeft,
			Data:  UserLeftPayload{UserID: userID},
		})
	}
	if uerr == nil {
		e.presence.SetOffline(userID, sessionID)
	}
}

// Publish is the REST entry point: a message persisted outside any
// session still fans out to live subscribers.
func (e *Engine) Publish(ctx context.Context, channelID, senderID int, senderName, content, fileURL, fileType string) (*models.Message, error) {
	if content == "" && fileURL == "" {
		return nil, fmt.Errorf("%w: message needs content or a file", ErrValidation)
	}
	return e.publish(ctx, channelID, senderID, senderName, content, fileURL, "", fileType, "")
}

// publish persists and then broadcasts under the channel's ordering
// lock, so every recipient queue observes messages in persisted order.
// Nothing here performs disk I/O; file blobs are written beforehand.
func (e *Engine) publish(ctx context.Context, channelID, senderID int, senderName, content, fileURL, fileName, fileType, originSessionID string) (*models.Message, error) {
	lock := e.channelLock(channelID)
	lock.Lock()
	defer lock.Unlock()

	msg, err := e.store.Append(ctx, channelID, senderID, content, fileURL, fileType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	msgType := MessageTypeText
	if fileURL != "" {
		msgType = MessageTypeFile
	}
	e.broadcast(channelID, originSessionID, OutboundEvent{
		Event: EventReceiveMessage,
		Data: ReceiveMessagePayload{
			ID:         msg.ID,
			SenderID:   senderID,
			SenderName: senderName,
			Message:    content,
			FileURL:    fileURL,
			FileName:   fileName,
			FileType:   fileType,
			ChannelID:  channelID,
			Timestamp:  msg.CreatedAt,
			Type:       msgType,
		},
	})
	return msg, nil
}

// broadcast pushes an event to every session subscribed to the channel
// except the originating one. Push failures are logged and never affect
// the other recipients.
func (e *Engine) broadcast(channelID int, originSessionID string, evt OutboundEvent) {
	recipients := lo.Filter(e.rooms.RecipientsOf(channelID), func(sessionID string, _ int) bool {
		return sessionID != originSessionID
	})
	for _, sessionID := range recipients {
		e.pushTo(sessionID, evt)
	}
}

func (e *Engine) pushTo(sessionID string, evt OutboundEvent) {
	transport, err := e.registry.TransportOf(sessionID)
	if err != nil {
		return
	}
	if err := transport.Push(evt); err != nil {
		logger.Error("Failed to push %s to session %s: %v", evt.Event, sessionID, err)
	}
}

// reject surfaces a failure to the originating session only and returns
// the error for the caller's bookkeeping.
func (e *Engine) reject(sessionID string, err error, message string) error {
	e.pushTo(sessionID, OutboundEvent{Event: EventError, Data: ErrorPayload{Message: message}})
	return err
}

func (e *Engine) discardBlob(storedName string) {
	if err := e.blobs.Remove(storedName); err != nil {
		logger.Error("Failed to remove blob %s: %v", storedName, err)
	}
}

func (e *Engine) channelLock(channelID int) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.ordering[channelID]
	if !ok {
		lock = &sync.Mutex{}
		e.ordering[channelID] = lock
	}
	return lock
}
