package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"handyghana/internal/domain"
	"handyghana/internal/realtime"
)

type ChatRepository interface {
	GetOrCreateConversation(ctx context.Context, customerID, providerID int64) (*domain.Conversation, error)
	GetConversation(ctx context.Context, id int64) (*domain.Conversation, error)
	ListConversations(ctx context.Context, userID int64) ([]domain.Conversation, error)
	CreateMessage(ctx context.Context, m *domain.ChatMessage) error
	ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]domain.ChatMessage, error)
	MarkRead(ctx context.Context, conversationID, readerID int64) error
	UnreadCount(ctx context.Context, conversationID, readerID int64) (int64, error)
}

type ProviderReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Provider, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Provider, error)
}

type MessageNotifier interface {
	NewMessage(ctx context.Context, recipientID int64, m *domain.ChatMessage) error
}

type Service struct {
	repo      ChatRepository
	providers ProviderReader
	hub       *realtime.Hub
	notifs    MessageNotifier
	loggerf   func(format string, args ...interface{})
}

func NewService(repo ChatRepository, providers ProviderReader, hub *realtime.Hub, notifs MessageNotifier, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(format string, args ...interface{}) {}
	}
	return &Service{repo: repo, providers: providers, hub: hub, notifs: notifs, loggerf: loggerf}
}

// ConversationView pairs a conversation with the caller's unread count.
type ConversationView struct {
	domain.Conversation
	UnreadCount int64 `json:"unread_count"`
}

// Start opens (or returns) the conversation between the caller and a
// provider. Conversations are keyed by the two user accounts, so the
// provider row is resolved to its user first.
func (s *Service) Start(ctx context.Context, userID, providerID int64) (*domain.Conversation, error) {
	p, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, ErrProviderNotFound
	}
	if p.UserID == userID {
		return nil, fmt.Errorf("%w: cannot start a conversation with yourself", ErrValidation)
	}
	return s.repo.GetOrCreateConversation(ctx, userID, p.UserID)
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]ConversationView, error) {
	convs, err := s.repo.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]ConversationView, 0, len(convs))
	for _, conv := range convs {
		unread, err := s.repo.UnreadCount(ctx, conv.ID, userID)
		if err != nil {
			s.loggerf("chat: unread count for conversation %d: %v", conv.ID, err)
		}
		out = append(out, ConversationView{Conversation: conv, UnreadCount: unread})
	}
	return out, nil
}

func (s *Service) Messages(ctx context.Context, userID, conversationID int64, limit, offset int) ([]domain.ChatMessage, error) {
	if _, err := s.memberConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, conversationID, limit, offset)
}

// Send persists a message, then pushes it to the conversation room and
// notifies the other party.
func (s *Service) Send(ctx context.Context, userID, conversationID int64, body string) (*domain.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: message body is empty", ErrValidation)
	}

	conv, err := s.memberConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}

	m := &domain.ChatMessage{
		ConversationID: conversationID,
		SenderID:       userID,
		Body:           body,
	}
	if err := s.repo.CreateMessage(ctx, m); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	s.hub.Emit(realtime.ChatRoom(conversationID), realtime.Event{Type: "chat_message", Data: m})

	recipientID := conv.CustomerID
	if recipientID == userID {
		recipientID = conv.ProviderID
	}
	if err := s.notifs.NewMessage(ctx, recipientID, m); err != nil {
		s.loggerf("chat: notify user %d: %v", recipientID, err)
	}
	return m, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, conversationID int64) error {
	if _, err := s.memberConversation(ctx, userID, conversationID); err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, conversationID, userID)
}

func (s *Service) memberConversation(ctx context.Context, userID, conversationID int64) (*domain.Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, ErrNotFound
	}
	if conv.CustomerID != userID && conv.ProviderID != userID {
		return nil, ErrForbidden
	}
	return conv, nil
}

// CanJoin authorizes websocket room membership. Admins join anything;
// everyone else is restricted to their own rooms and conversations.
func (s *Service) CanJoin(userID int64, role, room string) bool {
	if role == string(domain.RoleAdmin) {
		return true
	}

	switch {
	case room == realtime.AdminRoom:
		return false
	case strings.HasPrefix(room, "user-"):
		id, err := strconv.ParseInt(strings.TrimPrefix(room, "user-"), 10, 64)
		return err == nil && id == userID
	case strings.HasPrefix(room, "provider-"):
		id, err := strconv.ParseInt(strings.TrimPrefix(room, "provider-"), 10, 64)
		if err != nil {
			return false
		}
		p, err := s.providers.GetByUserID(context.Background(), userID)
		return err == nil && p.ID == id
	case strings.HasPrefix(room, "chat-"):
		id, err := strconv.ParseInt(strings.TrimPrefix(room, "chat-"), 10, 64)
		if err != nil {
			return false
		}
		_, err = s.memberConversation(context.Background(), userID, id)
		return err == nil
	default:
		return false
	}
}
