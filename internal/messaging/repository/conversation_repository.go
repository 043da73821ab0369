package repository

import (
	"context"
	"time"

	"marketplace_messaging_service/internal/messaging/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ConversationRepository definition conversation table access
type ConversationRepository interface {
	Create(ctx context.Context, conv *domain.Conversation) error
	FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error)
	// FindByParticipant 取得 viewer 參與的所有對話 (brand 或 creator 任一邊)
	FindByParticipant(ctx context.Context, viewerID string) ([]domain.Conversation, error)
	// FindPair 以 (brand_id, creator_id) 查詢，不存在時回傳 nil
	FindPair(ctx context.Context, brandID, creatorID string) (*domain.Conversation, error)
	TouchLastMessage(ctx context.Context, conversationID string, at time.Time) error
}

type conversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository create a ConversationRepository
func NewConversationRepository(db *pgxpool.Pool) ConversationRepository {
	return &conversationRepository{db: db}
}

const conversationColumns = "id, brand_id, creator_id, created_at, last_message_at, brand_archived, creator_archived"

func scanConversation(row pgx.Row) (*domain.Conversation, error) {
	var c domain.Conversation
	err := row.Scan(&c.ID, &c.BrandID, &c.CreatorID, &c.CreatedAt, &c.LastMessageAt, &c.BrandArchived, &c.CreatorArchived)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *conversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO conversations(id, brand_id, creator_id, created_at, last_message_at) VALUES ($1, $2, $3, $4, $5)",
		conv.ID, conv.BrandID, conv.CreatorID, conv.CreatedAt, conv.LastMessageAt)
	return err
}

func (r *conversationRepository) FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+conversationColumns+" FROM conversations WHERE id = $1", conversationID)
	return scanConversation(row)
}

func (r *conversationRepository) FindByParticipant(ctx context.Context, viewerID string) ([]domain.Conversation, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+conversationColumns+" FROM conversations WHERE brand_id = $1 OR creator_id = $1 ORDER BY last_message_at DESC",
		viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, *c)
	}
	return convs, rows.Err()
}

func (r *conversationRepository) FindPair(ctx context.Context, brandID, creatorID string) (*domain.Conversation, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+conversationColumns+" FROM conversations WHERE brand_id = $1 AND creator_id = $2",
		brandID, creatorID)
	c, err := scanConversation(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *conversationRepository) TouchLastMessage(ctx context.Context, conversationID string, at time.Time) error {
	_, err := r.db.Exec(ctx,
		"UPDATE conversations SET last_message_at = $1 WHERE id = $2", at, conversationID)
	return err
}
