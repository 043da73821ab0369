package domain

import (
	"errors"
	"time"
)

// Conversation 表示 brand 與 creator 的 1對1 對話
// 一組 (brand_id, creator_id) 只會有一筆
type Conversation struct {
	ID            string    `json:"id"`
	BrandID       string    `json:"brand_id"`
	CreatorID     string    `json:"creator_id"`
	CreatedAt     time.Time `json:"created_at"`
	LastMessageAt time.Time `json:"last_message_at"`

	// 各自封存旗標，目前僅儲存，尚未提供操作入口
	BrandArchived   bool `json:"brand_archived"`
	CreatorArchived bool `json:"creator_archived"`
}

// HasParticipant check viewer in conversation
func (c *Conversation) HasParticipant(viewerID string) bool {
	return c.BrandID == viewerID || c.CreatorID == viewerID
}

// CounterpartOf 取得對話中另一方的 id
func (c *Conversation) CounterpartOf(viewerID string) (string, error) {
	switch viewerID {
	case c.BrandID:
		return c.CreatorID, nil
	case c.CreatorID:
		return c.BrandID, nil
	}
	return "", errors.New("viewer is not a participant of this conversation")
}

// Profile 表示 brand 或 creator 的顯示資料 (profiles table)
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Handle      string `json:"handle"`
	Role        string `json:"role"` // brand | creator
}

// ConversationPreview 是對話列表用的 view model
// 由 conversation + counterpart profile + 最新一筆 message 組成
type ConversationPreview struct {
	ConversationID    string    `json:"conversation_id"`
	CounterpartID     string    `json:"counterpart_id"`
	CounterpartName   string    `json:"counterpart_name"`
	CounterpartHandle string    `json:"counterpart_handle"`
	LastMessage       string    `json:"last_message"`
	LastMessageAt     time.Time `json:"last_message_at"`
	Unread            bool      `json:"unread"`
}
