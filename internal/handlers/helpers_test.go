package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chat-server/internal/chat"
	"chat-server/internal/models"

	"github.com/stretchr/testify/require"
)

func postJSON(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeValid_EnforcesRequestTags(t *testing.T) {
	var channel models.CreateChannelRequest
	require.ErrorIs(t, decodeValid(postJSON(`{"name":""}`), &channel), chat.ErrValidation)
	require.ErrorIs(t, decodeValid(postJSON(`{"name":"`+strings.Repeat("x", 81)+`"}`), &channel), chat.ErrValidation)
	require.NoError(t, decodeValid(postJSON(`{"name":"general"}`), &channel))

	var member models.AddMemberRequest
	require.ErrorIs(t, decodeValid(postJSON(`{"user_id":0}`), &member), chat.ErrValidation)
	require.NoError(t, decodeValid(postJSON(`{"user_id":3}`), &member))

	var msg models.SendMessageRequest
	require.ErrorIs(t, decodeValid(postJSON(`{}`), &msg), chat.ErrValidation)
	require.NoError(t, decodeValid(postJSON(`{"content":"hi"}`), &msg))

	var update models.UpdateUserRequest
	require.ErrorIs(t, decodeValid(postJSON(`{"email":"not-an-email"}`), &update), chat.ErrValidation)
	update = models.UpdateUserRequest{}
	require.NoError(t, decodeValid(postJSON(`{"name":"alice"}`), &update))
	update = models.UpdateUserRequest{}
	require.NoError(t, decodeValid(postJSON(`{}`), &update)) // both fields optional
}

func TestDecodeValid_MalformedBody(t *testing.T) {
	var channel models.CreateChannelRequest
	require.ErrorIs(t, decodeValid(postJSON(`{"name":`), &channel), chat.ErrValidation)
}
