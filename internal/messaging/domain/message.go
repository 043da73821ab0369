package domain

import "time"

// Message 表示一則對話訊息
// read_at 為 null 代表未讀；內容建立後不再修改
type Message struct {
	ID             string     `json:"id" bson:"id"`
	ConversationID string     `json:"conversation_id" bson:"conversation_id"`
	SenderID       string     `json:"sender_id" bson:"sender_id"`
	ReceiverID     string     `json:"receiver_id" bson:"receiver_id"`
	Content        string     `json:"content" bson:"content"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	ReadAt         *time.Time `json:"read_at,omitempty" bson:"read_at,omitempty"`

	// join profiles 取得，僅供顯示
	SenderName string `json:"sender_name,omitempty" bson:"-"`
}

// UnreadBy 未讀判定：尚未標記已讀且 viewer 是收件方
func (m *Message) UnreadBy(viewerID string) bool {
	return m.ReadAt == nil && m.ReceiverID == viewerID
}

// Receipt 回條狀態，僅針對 viewer 送出的訊息有意義
type Receipt string

const (
	// ReceiptNone 非 viewer 送出的訊息
	ReceiptNone Receipt = ""
	// ReceiptDelivered 已送達但對方尚未讀取
	ReceiptDelivered Receipt = "delivered"
	// ReceiptSeen 對方已讀取
	ReceiptSeen Receipt = "seen"
)

// ReceiptFor read_at 的顯示投影，不另存回條實體
func (m *Message) ReceiptFor(viewerID string) Receipt {
	if m.SenderID != viewerID {
		return ReceiptNone
	}
	if m.ReadAt == nil {
		return ReceiptDelivered
	}
	return ReceiptSeen
}

// MessageEvent 是 insert 事件在 feed 上的原始欄位
// 不含 join 出來的顯示欄位，render 前須回查完整 row
type MessageEvent struct {
	MessageID      string    `json:"message_id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	ReceiverID     string    `json:"receiver_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConversationChannel feed channel name for one conversation
func ConversationChannel(conversationID string) string {
	return "chat:conversation:" + conversationID
}

// ArchiveBucket 表示某個對話某天的訊息鏡像 (mongo)
type ArchiveBucket struct {
	ConversationID string    `bson:"conversation_id" json:"conversation_id"`
	Date           string    `bson:"date" json:"date"` // "2006-01-02"
	Messages       []Message `bson:"messages" json:"messages"`
}
