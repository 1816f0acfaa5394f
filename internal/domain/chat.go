package domain

import "time"

// Conversation is a durable chat channel between one customer and one
// provider, unique per pair.
type Conversation struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id" gorm:"uniqueIndex:idx_conversation_pair"`
	ProviderID int64     `json:"provider_id" gorm:"uniqueIndex:idx_conversation_pair"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ChatMessage struct {
	ID             int64      `json:"id"`
	ConversationID int64      `json:"conversation_id" gorm:"index"`
	SenderID       int64      `json:"sender_id"`
	Body           string     `json:"body" gorm:"type:text"`
	IsRead         bool       `json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (ChatMessage) TableName() string { return "chat_messages" }
