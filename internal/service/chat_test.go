package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/domain"
	apperrors "github.com/Cleyssonfreitas/coderhouse-aula39/pkg/errors"
)

func TestCheckUser(t *testing.T) {
	svc := NewChatService(new(mockBroadcaster), newTestLogger())
	ctx := context.Background()

	require.NoError(t, svc.CheckUser(ctx, "ana_01"))
	require.NoError(t, svc.CheckUser(ctx, "  bob.smith  "))

	tests := []struct {
		name     string
		username string
	}{
		{name: "empty", username: "   "},
		{name: "bad characters", username: "ana!"},
		{name: "too long", username: "abcdefghijklmnopqrstuvwxyz0123456789"},
		{name: "duplicate", username: "ana_01"},
		{name: "duplicate different case", username: "ANA_01"},
		{name: "duplicate after trim", username: "bob.smith"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, svc.CheckUser(ctx, tt.username), apperrors.ErrInvalidInput)
		})
	}
}

func TestPostMessage_BroadcastsLog(t *testing.T) {
	b := new(mockBroadcaster)
	b.On("Publish", mock.Anything, EventMessageLogs, mock.Anything).Return(nil)
	svc := NewChatService(b, newTestLogger())

	require.NoError(t, svc.PostMessage(context.Background(), domain.ChatMessage{User: "ana", Message: "hi"}))
	require.NoError(t, svc.PostMessage(context.Background(), domain.ChatMessage{User: "bob", Message: "hello"}))

	msgs := svc.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "ana", msgs[0].User)
	assert.False(t, msgs[0].SentAt.IsZero())

	last := b.Calls[len(b.Calls)-1]
	logs, ok := last.Arguments.Get(2).([]domain.ChatMessage)
	require.True(t, ok)
	assert.Equal(t, msgs, logs)
}

func TestPostMessage_Invalid(t *testing.T) {
	b := new(mockBroadcaster)
	svc := NewChatService(b, newTestLogger())

	err := svc.PostMessage(context.Background(), domain.ChatMessage{User: "ana"})
	assert.Error(t, err)
	assert.Empty(t, svc.Messages())
	b.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestPostMessage_BroadcastFailureIgnored(t *testing.T) {
	b := new(mockBroadcaster)
	b.On("Publish", mock.Anything, EventMessageLogs, mock.Anything).Return(errors.New("closed"))
	svc := NewChatService(b, newTestLogger())

	assert.NoError(t, svc.PostMessage(context.Background(), domain.ChatMessage{User: "ana", Message: "hi"}))
	assert.Len(t, svc.Messages(), 1)
}

func TestPostMessage_KeepsNewest(t *testing.T) {
	b := new(mockBroadcaster)
	b.On("Publish", mock.Anything, EventMessageLogs, mock.Anything).Return(nil)
	svc := NewChatService(b, newTestLogger())

	for i := range maxChatMessages + 5 {
		require.NoError(t, svc.PostMessage(context.Background(), domain.ChatMessage{User: "ana", Message: fmt.Sprint(i)}))
	}

	msgs := svc.Messages()
	require.Len(t, msgs, maxChatMessages)
	assert.Equal(t, "5", msgs[0].Message)
}
