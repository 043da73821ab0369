package repository

import (
	"context"
	"encoding/json"

	"marketplace_messaging_service/internal/messaging/domain"

	"github.com/segmentio/kafka-go"
)

// Notifier definition message-created fan-out for the notification service
type Notifier interface {
	MessageCreated(ctx context.Context, msg domain.Message) error
}

type kafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier create a Notifier backed by a kafka topic
func NewKafkaNotifier(writer *kafka.Writer) Notifier {
	return &kafkaNotifier{writer: writer}
}

// MessageCreated 發布 message-created 事件，僅帶必要欄位，內文不進 topic
func (n *kafkaNotifier) MessageCreated(ctx context.Context, msg domain.Message) error {
	payload, err := json.Marshal(map[string]interface{}{
		"message_id":      msg.ID,
		"conversation_id": msg.ConversationID,
		"sender_id":       msg.SenderID,
		"receiver_id":     msg.ReceiverID,
		"created_at":      msg.CreatedAt,
	})
	if err != nil {
		return err
	}

	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.ConversationID),
		Value: payload,
	})
}
