package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/Cleyssonfreitas/coderhouse-aula39/internal/domain"
	apperrors "github.com/Cleyssonfreitas/coderhouse-aula39/pkg/errors"
	"github.com/Cleyssonfreitas/coderhouse-aula39/pkg/validator"
)

// EventMessageLogs is the realtime event carrying the full chat log.
const EventMessageLogs = "messageLogs"

// maxChatMessages bounds the in-memory log; older messages are dropped first.
const maxChatMessages = 1000

var usernameRegexp = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,32}$`)

// Broadcaster pushes an event to every realtime client.
type Broadcaster interface {
	Publish(ctx context.Context, event string, payload any) error
}

// ChatService keeps the public chat in memory: the registered display names
// and the message log. Both are lost on restart.
type ChatService struct {
	mu          sync.Mutex
	users       map[string]struct{}
	messages    []domain.ChatMessage
	broadcaster Broadcaster
	logger      *slog.Logger
}

// NewChatService creates an empty chat.
func NewChatService(broadcaster Broadcaster, logger *slog.Logger) *ChatService {
	return &ChatService{
		users:       make(map[string]struct{}),
		messages:    []domain.ChatMessage{},
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// CheckUser validates a display name and registers it. Names are unique
// without regard to case.
func (s *ChatService) CheckUser(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return apperrors.InvalidInput("username is required")
	}
	if !usernameRegexp.MatchString(username) {
		return apperrors.InvalidInput("username must be 1 to 32 letters, digits, '_', '-' or '.'")
	}

	key := strings.ToLower(username)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.users[key]; taken {
		return apperrors.InvalidInput(fmt.Sprintf("username %q is already taken", username))
	}
	s.users[key] = struct{}{}

	s.logger.InfoContext(ctx, "chat user registered", slog.String("user", username))
	return nil
}

// PostMessage appends msg to the log and broadcasts the whole log.
func (s *ChatService) PostMessage(ctx context.Context, msg domain.ChatMessage) error {
	if err := validator.Validate(&msg); err != nil {
		return err
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = domain.Now()
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	if over := len(s.messages) - maxChatMessages; over > 0 {
		s.messages = append([]domain.ChatMessage(nil), s.messages[over:]...)
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.broadcaster.Publish(ctx, EventMessageLogs, snapshot); err != nil {
		s.logger.ErrorContext(ctx, "failed to broadcast chat log", slog.String("error", err.Error()))
	}
	return nil
}

// Messages returns a copy of the chat log, oldest first.
func (s *ChatService) Messages() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *ChatService) snapshotLocked() []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}
