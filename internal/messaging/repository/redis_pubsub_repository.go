package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketplace_messaging_service/internal/messaging/domain"
	"marketplace_messaging_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// MessageFeed definition insert-event live feed
// onState 在連線中斷/恢復時通知訂閱者 (可為 nil)
type MessageFeed interface {
	Publish(channel string, event domain.MessageEvent) error
	Subscribe(ctx context.Context, channel string, handler func(event domain.MessageEvent), onState func(live bool)) error
}

const (
	resubscribeBase = time.Second
	resubscribeMax  = 30 * time.Second
	healthInterval  = 5 * time.Second
)

// pubSubConn 是 *redis.PubSub 的最小介面
type pubSubConn interface {
	Channel(opts ...redis.ChannelOption) <-chan *redis.Message
	Ping(ctx context.Context, payload ...string) error
	Close() error
}

// RedisPubSub definition redis pub/sub
type RedisPubSub struct {
	client *redis.Client
	ctx    context.Context

	subscribe func(channel string) pubSubConn
	health    time.Duration
	backoff   time.Duration
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	r := &RedisPubSub{
		client:  client,
		ctx:     context.Background(),
		health:  healthInterval,
		backoff: resubscribeBase,
	}
	r.subscribe = func(channel string) pubSubConn {
		return client.Subscribe(r.ctx, channel)
	}
	return r
}

// Publish 將 insert event 序列化後，發布到指定 channel
func (r *RedisPubSub) Publish(channel string, event domain.MessageEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.Publish(r.ctx, channel, data).Err()
}

// Subscribe 訂閱對話 channel，收到 insert event 後呼叫 handler 處理
// 連線中斷時 Channel() 不會關閉，以定期 Ping 偵測，退避重訂直到 ctx 取消
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, handler func(event domain.MessageEvent), onState func(live bool)) error {
	sub := r.subscribe(channel)
	go func() {
		ch := sub.Channel()
		ticker := time.NewTicker(r.health)
		defer ticker.Stop()

		live := true
		backoff := r.backoff

		// 斷線通知後退避重訂，ctx 取消時回傳 false
		reconnect := func() bool {
			if live {
				live = false
				if onState != nil {
					onState(false)
				}
			}
			select {
			case <-ctx.Done():
				sub.Close()
				return false
			case <-time.After(backoff):
			}
			if backoff < resubscribeMax {
				backoff *= 2
			}
			sub.Close()
			sub = r.subscribe(channel)
			ch = sub.Channel()
			return true
		}

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					if !reconnect() {
						return
					}
					continue
				}

				backoff = r.backoff
				if !live {
					live = true
					if onState != nil {
						onState(true)
					}
				}
				var event domain.MessageEvent
				if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
					logger.Log.Error("feed event unmarshal err :", zap.String("err", fmt.Sprintf("failed to unmarshal message event: %v", err)))
					continue
				}
				handler(event)

			case <-ticker.C:
				if err := sub.Ping(r.ctx); err != nil {
					if !reconnect() {
						return
					}
					continue
				}
				if !live {
					live = true
					backoff = r.backoff
					if onState != nil {
						onState(true)
					}
				}

			case <-ctx.Done():
				logger.Log.Info(fmt.Sprintf("%s , sub close", channel))
				sub.Close()
				return
			}
		}
	}()
	return nil
}
