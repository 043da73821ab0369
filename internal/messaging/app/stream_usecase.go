package app

import (
	"context"
	"sync"
	"time"

	"marketplace_messaging_service/internal/messaging/domain"
	"marketplace_messaging_service/internal/messaging/repository"
	errprocess "marketplace_messaging_service/pkg/err"
	"marketplace_messaging_service/pkg/logger"

	"go.uber.org/zap"
)

// StreamPhase 單一對話選取的生命週期狀態
type StreamPhase string

const (
	// StreamIdle 尚未選取對話
	StreamIdle StreamPhase = "idle"
	// StreamLoading 歷史訊息讀取中
	StreamLoading StreamPhase = "loading"
	// StreamLive 歷史已載入且訂閱中
	StreamLive StreamPhase = "live"
	// StreamError 本次選取失敗，重新選取後重來
	StreamError StreamPhase = "error"
)

// StreamUseCase 維護單一對話的訊息串，歷史 + live feed
// 同一時間最多持有一個訂閱；切換對話時先解除舊訂閱
type StreamUseCase struct {
	msgRepo repository.MessageRepository
	feed    repository.MessageFeed

	mu             sync.Mutex
	phase          StreamPhase
	conversationID string
	viewerID       string
	messages       []domain.Message
	seen           map[string]struct{}
	cancel         context.CancelFunc
	stale          bool

	// onAppend 在 live event 附加成功後推播給前端 (可為 nil)
	onAppend func(msg domain.Message)
	// onStale feed 斷線/恢復時通知前端 (可為 nil)
	onStale func(stale bool)
}

// NewStreamUseCase init stream use case
func NewStreamUseCase(msgRepo repository.MessageRepository, feed repository.MessageFeed) *StreamUseCase {
	return &StreamUseCase{
		msgRepo: msgRepo,
		feed:    feed,
		phase:   StreamIdle,
		seen:    make(map[string]struct{}),
	}
}

// SetOnAppend set live event push callback
func (uc *StreamUseCase) SetOnAppend(fn func(msg domain.Message)) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.onAppend = fn
}

// SetOnStale set feed state push callback
func (uc *StreamUseCase) SetOnStale(fn func(stale bool)) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.onStale = fn
}

// Select 切換到指定對話：解除舊訂閱、載入歷史、批次已讀、開新訂閱
// 歷史載入完成前不會有 live event 進列表
func (uc *StreamUseCase) Select(ctx context.Context, conversationID, viewerID string) ([]domain.Message, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	// 單一訂閱不變量：先拆舊的再掛新的
	uc.teardownLocked()
	uc.phase = StreamLoading
	uc.conversationID = conversationID
	uc.viewerID = viewerID

	history, err := uc.msgRepo.FindHistory(ctx, conversationID)
	if err != nil {
		uc.phase = StreamError
		return nil, errprocess.Set("load message history failed: " + err.Error())
	}

	uc.messages = history
	uc.seen = make(map[string]struct{}, len(history))
	for _, m := range history {
		uc.seen[m.ID] = struct{}{}
	}

	// 進入對話視同已讀，失敗不中斷 (徽章晚點收斂)
	if _, err := uc.msgRepo.MarkConversationRead(ctx, conversationID, viewerID); err != nil {
		logger.Log.Warn("mark conversation read failed",
			zap.String("conversationID", conversationID), zap.Error(err))
	} else {
		markLocalRead(uc.messages, viewerID)
	}

	subCtx, cancel := context.WithCancel(context.Background())
	err = uc.feed.Subscribe(subCtx, domain.ConversationChannel(conversationID),
		func(event domain.MessageEvent) { uc.handleInsertEvent(event) },
		func(live bool) { uc.setStale(!live) },
	)
	if err != nil {
		cancel()
		uc.phase = StreamError
		return nil, errprocess.Set("subscribe message feed failed: " + err.Error())
	}

	uc.cancel = cancel
	uc.phase = StreamLive
	uc.stale = false

	return copyMessages(uc.messages), nil
}

// Teardown 解除目前的訂閱並回到 Idle
func (uc *StreamUseCase) Teardown() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.teardownLocked()
	uc.phase = StreamIdle
	uc.conversationID = ""
	uc.messages = nil
	uc.seen = make(map[string]struct{})
}

func (uc *StreamUseCase) teardownLocked() {
	if uc.cancel != nil {
		uc.cancel()
		uc.cancel = nil
	}
}

// handleInsertEvent 處理 feed 上的 insert event
// event payload 欄位不完整，render 前回查完整 row (含 sender 顯示名稱)
func (uc *StreamUseCase) handleInsertEvent(event domain.MessageEvent) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	// 切換後殘留的事件直接丟棄
	if uc.phase != StreamLive || event.ConversationID != uc.conversationID {
		return
	}
	// 以 message id 去重，不比對內容
	if _, ok := uc.seen[event.MessageID]; ok {
		return
	}

	ctx, cancelFetch := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFetch()

	msg, err := uc.msgRepo.FindByID(ctx, event.MessageID)
	if err != nil {
		logger.Log.Error("fetch full message for event failed",
			zap.String("messageID", event.MessageID), zap.Error(err))
		return
	}

	// 只附加，不重排
	uc.messages = append(uc.messages, *msg)
	uc.seen[msg.ID] = struct{}{}

	if msg.ReceiverID == uc.viewerID {
		if err := uc.msgRepo.MarkRead(ctx, msg.ID); err != nil {
			logger.Log.Warn("mark message read failed",
				zap.String("messageID", msg.ID), zap.Error(err))
		} else {
			now := time.Now()
			msg.ReadAt = &now
			uc.messages[len(uc.messages)-1].ReadAt = &now
		}
	}

	if uc.onAppend != nil {
		uc.onAppend(*msg)
	}
}

func (uc *StreamUseCase) setStale(stale bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.stale = stale
	if uc.onStale != nil {
		uc.onStale(stale)
	}
}

// Phase current stream phase
func (uc *StreamUseCase) Phase() StreamPhase {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.phase
}

// Stale feed 是否處於斷線狀態
func (uc *StreamUseCase) Stale() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.stale
}

// Messages 目前串內容的 copy，created_at 升冪
func (uc *StreamUseCase) Messages() []domain.Message {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return copyMessages(uc.messages)
}

func copyMessages(src []domain.Message) []domain.Message {
	out := make([]domain.Message, len(src))
	copy(out, src)
	return out
}

// markLocalRead 同步記憶體內的已讀狀態，避免等下一次查詢
func markLocalRead(msgs []domain.Message, viewerID string) {
	now := time.Now()
	for i := range msgs {
		if msgs[i].ReadAt == nil && msgs[i].ReceiverID == viewerID {
			msgs[i].ReadAt = &now
		}
	}
}
