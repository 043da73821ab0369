package app

import (
	"context"
	"errors"
	"time"

	"marketplace_messaging_service/internal/messaging/domain"
	"marketplace_messaging_service/internal/messaging/repository"
)

// ArchiveUseCase 查詢訊息封存鏡像 (mongo 日桶)
type ArchiveUseCase struct {
	archive repository.ArchiveRepository
}

// NewArchiveUseCase init archive use case
func NewArchiveUseCase(archive repository.ArchiveRepository) *ArchiveUseCase {
	return &ArchiveUseCase{archive: archive}
}

// Bucket 取得某對話某天的封存桶，該天無桶時回傳 nil
func (uc *ArchiveUseCase) Bucket(ctx context.Context, conversationID, date string) (*domain.ArchiveBucket, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, errors.New("date must be formatted YYYY-MM-DD")
	}
	return uc.archive.FindBucket(ctx, conversationID, date)
}
