package app

import (
	"context"
	"strings"
	"time"

	"marketplace_messaging_service/internal/messaging/domain"
	"marketplace_messaging_service/internal/messaging/repository"
	errprocess "marketplace_messaging_service/pkg/err"
	"marketplace_messaging_service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WritePolicy 寫入失敗的處理策略
type WritePolicy int

const (
	// WriteSurfaced 失敗回傳錯誤給呼叫端，原文由前端保留重送
	WriteSurfaced WritePolicy = iota
	// WriteBestEffort 失敗只記 log，照舊 UX (fire-and-forget)
	WriteBestEffort
)

// ComposerUseCase 負責送出訊息：解析收件方、落庫、發佈 insert event
// 送出後不做本地 optimistic append，訊息經由 feed 回流以維持單一排序來源
type ComposerUseCase struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	feed     repository.MessageFeed
	notifier repository.Notifier
	archive  repository.ArchiveRepository
	policy   WritePolicy
}

// NewComposerUseCase init composer use case
// notifier 與 archive 可為 nil (測試或未配置時)
func NewComposerUseCase(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	feed repository.MessageFeed,
	notifier repository.Notifier,
	archive repository.ArchiveRepository,
	policy WritePolicy,
) *ComposerUseCase {
	return &ComposerUseCase{
		convRepo: convRepo,
		msgRepo:  msgRepo,
		feed:     feed,
		notifier: notifier,
		archive:  archive,
		policy:   policy,
	}
}

// Send 送出一則訊息
// 空白內容為 no-op；收件方是對話中非 viewer 的另一方
func (uc *ComposerUseCase) Send(ctx context.Context, conversationID, viewerID, text string) (*domain.Message, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		return nil, nil
	}

	conv, err := uc.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, uc.fail("conversation lookup failed", err)
	}

	receiverID, err := conv.CounterpartOf(viewerID)
	if err != nil {
		return nil, uc.fail("resolve receiver failed", err)
	}

	msg := &domain.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       viewerID,
		ReceiverID:     receiverID,
		Content:        content,
		CreatedAt:      time.Now(),
	}

	if err := uc.msgRepo.Insert(ctx, msg); err != nil {
		return nil, uc.fail("insert message failed", err)
	}

	if err := uc.convRepo.TouchLastMessage(ctx, conversationID, msg.CreatedAt); err != nil {
		logger.Log.Warn("touch last_message_at failed",
			zap.String("conversationID", conversationID), zap.Error(err))
	}

	// feed 發佈失敗時訊息已落庫，下次 Select 仍會出現，只損失即時性
	event := domain.MessageEvent{
		MessageID:      msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		ReceiverID:     msg.ReceiverID,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}
	if err := uc.feed.Publish(domain.ConversationChannel(conversationID), event); err != nil {
		logger.Log.Error("publish message event failed",
			zap.String("messageID", msg.ID), zap.Error(err))
	}

	// 通知與鏡像都是 best-effort
	if uc.notifier != nil {
		if err := uc.notifier.MessageCreated(ctx, *msg); err != nil {
			logger.Log.Warn("notify message created failed",
				zap.String("messageID", msg.ID), zap.Error(err))
		}
	}
	if uc.archive != nil {
		if err := uc.archive.AppendMessage(ctx, *msg); err != nil {
			logger.Log.Warn("archive message failed",
				zap.String("messageID", msg.ID), zap.Error(err))
		}
	}

	return msg, nil
}

func (uc *ComposerUseCase) fail(msg string, err error) error {
	if uc.policy == WriteBestEffort {
		logger.Log.Error(msg, zap.Error(err))
		return nil
	}
	return errprocess.Set(msg + ": " + err.Error())
}
