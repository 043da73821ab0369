package repository

import (
	"context"

	"marketplace_messaging_service/internal/messaging/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// MessageRepository definition message table access
type MessageRepository interface {
	Insert(ctx context.Context, msg *domain.Message) error
	// FindByID 回查完整 row，含 join 出的 sender 顯示名稱
	FindByID(ctx context.Context, messageID string) (*domain.Message, error)
	// FindHistory 依 created_at 升冪取回整段歷史
	FindHistory(ctx context.Context, conversationID string) ([]domain.Message, error)
	// FindLatestPreviews 一次查詢取得多個對話各自的最新一筆訊息
	FindLatestPreviews(ctx context.Context, conversationIDs []string) (map[string]domain.Message, error)
	// MarkConversationRead 將 viewer 在該對話的未讀訊息一次標記已讀，回傳筆數
	MarkConversationRead(ctx context.Context, conversationID, viewerID string) (int64, error)
	// MarkRead 單筆標記已讀
	MarkRead(ctx context.Context, messageID string) error
}

type messageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository create a MessageRepository
func NewMessageRepository(db *pgxpool.Pool) MessageRepository {
	return &messageRepository{db: db}
}

const messageColumns = "m.id, m.conversation_id, m.sender_id, m.receiver_id, m.content, m.created_at, m.read_at, COALESCE(p.display_name, '')"

const messageJoin = " FROM messages m LEFT JOIN profiles p ON p.id = m.sender_id"

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var m domain.Message
	err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt, &m.ReadAt, &m.SenderName)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *messageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO messages(id, conversation_id, sender_id, receiver_id, content, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		msg.ID, msg.ConversationID, msg.SenderID, msg.ReceiverID, msg.Content, msg.CreatedAt)
	return err
}

func (r *messageRepository) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+messageColumns+messageJoin+" WHERE m.id = $1", messageID)
	return scanMessage(row)
}

func (r *messageRepository) FindHistory(ctx context.Context, conversationID string) ([]domain.Message, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+messageColumns+messageJoin+" WHERE m.conversation_id = $1 ORDER BY m.created_at ASC",
		conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}

// FindLatestPreviews 用 DISTINCT ON 一次取回每個對話的最新訊息，避免 N+1 查詢
func (r *messageRepository) FindLatestPreviews(ctx context.Context, conversationIDs []string) (map[string]domain.Message, error) {
	previews := make(map[string]domain.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return previews, nil
	}

	rows, err := r.db.Query(ctx,
		"SELECT DISTINCT ON (m.conversation_id) "+messageColumns+messageJoin+
			" WHERE m.conversation_id = ANY($1) ORDER BY m.conversation_id, m.created_at DESC",
		conversationIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		previews[m.ConversationID] = *m
	}
	return previews, rows.Err()
}

func (r *messageRepository) MarkConversationRead(ctx context.Context, conversationID, viewerID string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		"UPDATE messages SET read_at = now() WHERE conversation_id = $1 AND receiver_id = $2 AND read_at IS NULL",
		conversationID, viewerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *messageRepository) MarkRead(ctx context.Context, messageID string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE messages SET read_at = now() WHERE id = $1 AND read_at IS NULL", messageID)
	return err
}
