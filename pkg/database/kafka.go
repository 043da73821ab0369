package database

import (
	"context"
	"fmt"
	"time"

	"marketplace_messaging_service/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// NewKafkaWriterWithRetry 嘗試建立 Kafka Writer 並發送測試訊息以確認連線
func NewKafkaWriterWithRetry(k KafkaConnection) (*kafka.Writer, error) {
	var writer *kafka.Writer
	var err error

	for attempt := 1; attempt <= k.RetryCount; attempt++ {
		writer = kafka.NewWriter(kafka.WriterConfig{
			Brokers:  k.Brokers,
			Topic:    k.Topic,
			Balancer: &kafka.LeastBytes{},
		})

		// 發送一個測試訊息（例如 "ping"），確認連線是否成功
		err = writer.WriteMessages(context.Background(), kafka.Message{
			Key:   []byte("ping"),
			Value: []byte("ping"),
		})
		if err == nil {
			logger.Log.Infof("kafka writer ready, attempt:", attempt)
			return writer, nil
		}

		logger.Log.Warn(fmt.Sprintf("kafka writer setup failed (%d/%d): %v", attempt, k.RetryCount, err))
		writer.Close()
		time.Sleep(k.RetryInterval * time.Second)
	}

	return nil, fmt.Errorf("unable to create kafka writer after %d attempts: %v", k.RetryCount, err)
}
