package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"handyghana/internal/domain"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// GetOrCreateConversation returns the unique conversation for the
// (customer, provider) pair, creating it on first contact. A concurrent
// create racing on the unique index falls back to re-fetching.
func (r *ChatRepository) GetOrCreateConversation(ctx context.Context, customerID, providerID int64) (*domain.Conversation, error) {
	conv, err := r.getConversationByPair(ctx, customerID, providerID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv = &domain.Conversation{CustomerID: customerID, ProviderID: providerID}
	if err := r.db.WithContext(ctx).Create(conv).Error; err != nil {
		if isUniqueConstraintError(err) {
			return r.getConversationByPair(ctx, customerID, providerID)
		}
		return nil, err
	}
	return conv, nil
}

func (r *ChatRepository) getConversationByPair(ctx context.Context, customerID, providerID int64) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND provider_id = ?", customerID, providerID).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *ChatRepository) GetConversation(ctx context.Context, id int64) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := r.db.WithContext(ctx).First(&conv, id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *ChatRepository) ListConversations(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	var out []domain.Conversation
	err := r.db.WithContext(ctx).
		Where("customer_id = ? OR provider_id = ?", userID, userID).
		Order("updated_at desc").
		Find(&out).Error
	return out, err
}

func (r *ChatRepository) CreateMessage(ctx context.Context, m *domain.ChatMessage) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Conversation{}).
			Where("id = ?", m.ConversationID).
			Update("updated_at", time.Now()).Error
	})
}

func (r *ChatRepository) ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]domain.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []domain.ChatMessage
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&out).Error
	return out, err
}

// MarkRead marks every message in the conversation not sent by the
// reader as read.
func (r *ChatRepository) MarkRead(ctx context.Context, conversationID, readerID int64) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&domain.ChatMessage{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now}).Error
}

func (r *ChatRepository) UnreadCount(ctx context.Context, conversationID, readerID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ChatMessage{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		Count(&count).Error
	return count, err
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
