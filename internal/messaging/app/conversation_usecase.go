package app

import (
	"context"
	"errors"
	"time"

	"marketplace_messaging_service/internal/messaging/domain"
	"marketplace_messaging_service/internal/messaging/repository"

	"github.com/google/uuid"
)

// ConversationUseCase - 用於首次聯繫時建立 brand/creator 對話
type ConversationUseCase struct {
	convRepo    repository.ConversationRepository
	profileRepo repository.ProfileRepository
}

// NewConversationUseCase init conversation use case
func NewConversationUseCase(c repository.ConversationRepository, p repository.ProfileRepository) *ConversationUseCase {
	return &ConversationUseCase{
		convRepo:    c,
		profileRepo: p,
	}
}

// Start 建立 (或取回既有的) brand/creator 對話
// 建立前先查 (brand_id, creator_id)，避免同一組產生重複對話
func (uc *ConversationUseCase) Start(ctx context.Context, viewerID, counterpartID string) (*domain.Conversation, error) {
	if viewerID == counterpartID {
		return nil, errors.New("conversation needs two distinct participants")
	}

	profiles, err := uc.profileRepo.FindByIDs(ctx, []string{viewerID, counterpartID})
	if err != nil {
		return nil, err
	}

	viewer, ok := profiles[viewerID]
	if !ok {
		return nil, errors.New("viewer profile not found")
	}
	counterpart, ok := profiles[counterpartID]
	if !ok {
		return nil, errors.New("counterpart profile not found")
	}

	// 固定一方是 brand、一方是 creator
	brandID, creatorID, err := resolvePair(viewer, counterpart)
	if err != nil {
		return nil, err
	}

	// 檢查是否已存在同一組對話
	exist, err := uc.convRepo.FindPair(ctx, brandID, creatorID)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return exist, nil
	}

	now := time.Now()
	conv := &domain.Conversation{
		ID:            uuid.New().String(),
		BrandID:       brandID,
		CreatorID:     creatorID,
		CreatedAt:     now,
		LastMessageAt: now,
	}
	if err := uc.convRepo.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func resolvePair(a, b domain.Profile) (brandID, creatorID string, err error) {
	switch {
	case a.Role == "brand" && b.Role == "creator":
		return a.ID, b.ID, nil
	case a.Role == "creator" && b.Role == "brand":
		return b.ID, a.ID, nil
	}
	return "", "", errors.New("conversation must pair one brand with one creator")
}
