package app

import (
	"context"
	"sort"
	"strings"

	"marketplace_messaging_service/internal/messaging/domain"
	"marketplace_messaging_service/internal/messaging/repository"
	"marketplace_messaging_service/pkg/logger"

	"go.uber.org/zap"
)

// DirectoryUseCase 負責對話列表：preview、未讀旗標、排序
type DirectoryUseCase struct {
	convRepo    repository.ConversationRepository
	msgRepo     repository.MessageRepository
	profileRepo repository.ProfileRepository
}

// NewDirectoryUseCase init directory use case
func NewDirectoryUseCase(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	profileRepo repository.ProfileRepository,
) *DirectoryUseCase {
	return &DirectoryUseCase{
		convRepo:    convRepo,
		msgRepo:     msgRepo,
		profileRepo: profileRepo,
	}
}

// ListConversations 取得 viewer 的對話列表
// counterpart 顯示資料與最新訊息各用一次批次查詢；任一查詢失敗整個列表失敗，不回傳部分結果
func (uc *DirectoryUseCase) ListConversations(ctx context.Context, viewerID string) ([]domain.ConversationPreview, error) {
	convs, err := uc.convRepo.FindByParticipant(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(convs) == 0 {
		return []domain.ConversationPreview{}, nil
	}

	counterpartIDs := make([]string, 0, len(convs))
	conversationIDs := make([]string, 0, len(convs))
	for _, c := range convs {
		counterpart, err := c.CounterpartOf(viewerID)
		if err != nil {
			return nil, err
		}
		counterpartIDs = append(counterpartIDs, counterpart)
		conversationIDs = append(conversationIDs, c.ID)
	}

	profiles, err := uc.profileRepo.FindByIDs(ctx, counterpartIDs)
	if err != nil {
		return nil, err
	}

	previews, err := uc.msgRepo.FindLatestPreviews(ctx, conversationIDs)
	if err != nil {
		return nil, err
	}

	list := make([]domain.ConversationPreview, 0, len(convs))
	for _, c := range convs {
		counterpart, _ := c.CounterpartOf(viewerID)

		p := domain.ConversationPreview{
			ConversationID: c.ID,
			CounterpartID:  counterpart,
			// 對話尚無訊息時以 conversation 自身時間排序
			LastMessageAt: c.LastMessageAt,
		}
		if p.LastMessageAt.IsZero() {
			p.LastMessageAt = c.CreatedAt
		}

		if profile, ok := profiles[counterpart]; ok {
			p.CounterpartName = profile.DisplayName
			p.CounterpartHandle = profile.Handle
		} else {
			logger.Log.Warn("counterpart profile missing", zap.String("counterpartID", counterpart))
		}

		if last, ok := previews[c.ID]; ok {
			p.LastMessage = last.Content
			p.LastMessageAt = last.CreatedAt
			p.Unread = last.ReadAt == nil && last.SenderID != viewerID
		}

		list = append(list, p)
	}

	// 最近活動在前
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].LastMessageAt.After(list[j].LastMessageAt)
	})

	return list, nil
}

// Filter 以 counterpart 名稱/handle 做記憶體內子字串過濾，不發新查詢
func (uc *DirectoryUseCase) Filter(list []domain.ConversationPreview, query string) []domain.ConversationPreview {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return list
	}

	filtered := make([]domain.ConversationPreview, 0, len(list))
	for _, p := range list {
		if strings.Contains(strings.ToLower(p.CounterpartName), query) ||
			strings.Contains(strings.ToLower(p.CounterpartHandle), query) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// History 供 REST 端取回歷史訊息，讀取後立即批次標記已讀 (read-on-view)
func (uc *DirectoryUseCase) History(ctx context.Context, conversationID, viewerID string) ([]domain.Message, error) {
	msgs, err := uc.msgRepo.FindHistory(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	// 標記失敗只記 log，未讀徽章晚點收斂即可
	if _, err := uc.msgRepo.MarkConversationRead(ctx, conversationID, viewerID); err != nil {
		logger.Log.Warn("mark conversation read failed",
			zap.String("conversationID", conversationID), zap.Error(err))
	} else {
		markLocalRead(msgs, viewerID)
	}

	return msgs, nil
}
