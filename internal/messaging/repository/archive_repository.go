package repository

import (
	"context"

	"marketplace_messaging_service/internal/messaging/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ArchiveRepository definition message archive mirror
// 寫入失敗不影響訊息本體，由呼叫端記 log 後繼續
type ArchiveRepository interface {
	// AppendMessage 把訊息加入該對話當天的桶，桶不存在時建立
	AppendMessage(ctx context.Context, msg domain.Message) error
	// FindBucket 查詢指定對話及日期的桶，不存在時回傳 nil
	FindBucket(ctx context.Context, conversationID, date string) (*domain.ArchiveBucket, error)
}

type messageArchiveRepository struct {
	coll *mongo.Collection
}

// NewMongoArchiveRepository create an ArchiveRepository
func NewMongoArchiveRepository(db *mongo.Database) ArchiveRepository {
	return &messageArchiveRepository{
		coll: db.Collection("message_archive"),
	}
}

func (r *messageArchiveRepository) AppendMessage(ctx context.Context, msg domain.Message) error {
	date := msg.CreatedAt.Format("2006-01-02")
	filter := bson.M{"conversation_id": msg.ConversationID, "date": date}
	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$setOnInsert": bson.M{
			"conversation_id": msg.ConversationID,
			"date":            date,
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.coll.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *messageArchiveRepository) FindBucket(ctx context.Context, conversationID, date string) (*domain.ArchiveBucket, error) {
	filter := bson.M{"conversation_id": conversationID, "date": date}
	var bucket domain.ArchiveBucket
	err := r.coll.FindOne(ctx, filter).Decode(&bucket)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &bucket, nil
}
