package chat

import (
	"encoding/json"
	"time"

	"chat-server/internal/models"
)

// Event names recognized on the wire. Clients send the first group,
// the server emits the second.
const (
	EventJoinChannel  = "joinChannel"
	EventLeaveChannel = "leaveChannel"
	EventSendMessage  = "sendMessage"
	EventSendFile     = "sendFile"
	EventTyping       = "typing"
	EventMarkRead     = "markRead"

	EventReceiveMessage = "receiveMessage"
	EventUserJoined     = "userJoined"
	EventUserLeft       = "userLeft"
	EventUserTyping     = "userTyping"
	EventReadReceipt    = "readReceipt"
	EventMessageSent    = "messageSent"
	EventHistory        = "history"
	EventError          = "error"
)

const (
	MessageTypeText = "text"
	MessageTypeFile = "file"
)

// InboundEvent is the envelope read from a client connection. Data is
// decoded into the per-event payload once the event name is known.
type InboundEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// OutboundEvent is the envelope pushed to clients.
type OutboundEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type JoinChannelPayload struct {
	ChannelID int `json:"channelId"`
	UserID    int `json:"userId"`
}

type LeaveChannelPayload struct {
	ChannelID int `json:"channelId"`
}

type SendMessagePayload struct {
	ChannelID int    `json:"channelId"`
	SenderID  int    `json:"senderId"`
	Message   string `json:"message"`
}

type SendFilePayload struct {
	ChannelID int    `json:"channelId"`
	SenderID  int    `json:"senderId"`
	FileName  string `json:"fileName"`
	FileData  string `json:"fileData"` // base64
	FileType  string `json:"fileType"`
}

type TypingPayload struct {
	ChannelID int  `json:"channelId"`
	UserID    int  `json:"userId"`
	IsTyping  bool `json:"isTyping"`
}

type MarkReadPayload struct {
	MessageID int64 `json:"messageId"`
}

type ReceiveMessagePayload struct {
	ID         int64     `json:"id"`
	SenderID   int       `json:"senderId"`
	SenderName string    `json:"senderName"`
	Message    string    `json:"message,omitempty"`
	FileURL    string    `json:"fileUrl,omitempty"`
	FileName   string    `json:"fileName,omitempty"`
	FileType   string    `json:"fileType,omitempty"`
	ChannelID  int       `json:"channelId"`
	Timestamp  time.Time `json:"timestamp"`
	Type       string    `json:"type"`
}

type UserJoinedPayload struct {
	UserID int `json:"userId"`
}

type UserLeftPayload struct {
	UserID int `json:"userId"`
}

type UserTypingPayload struct {
	UserID   int  `json:"userId"`
	IsTyping bool `json:"isTyping"`
}

type ReadReceiptPayload struct {
	MessageID int64     `json:"messageId"`
	ChannelID int       `json:"channelId"`
	UserID    int       `json:"userId"`
	ReadAt    time.Time `json:"readAt"`
}

type MessageSentPayload struct {
	ID int64 `json:"id"`
}

type HistoryPayload struct {
	ChannelID int               `json:"channelId"`
	Messages  []*models.Message `json:"messages"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
