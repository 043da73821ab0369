package app

import (
	"context"
	"testing"

	"marketplace_messaging_service/internal/messaging/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// 測試查詢封存桶
func TestArchiveUseCase_Bucket(t *testing.T) {
	ctx := context.Background()
	convID := uuid.New().String()
	date := "2026-08-30"

	mockArchive := new(MockArchiveRepository)
	mockArchive.On("FindBucket", ctx, convID, date).Return(&domain.ArchiveBucket{
		ConversationID: convID,
		Date:           date,
		Messages:       []domain.Message{{ID: uuid.New().String(), ConversationID: convID, Content: "archived"}},
	}, nil)

	uc := NewArchiveUseCase(mockArchive)
	bucket, err := uc.Bucket(ctx, convID, date)

	assert.NoError(t, err)
	if assert.NotNil(t, bucket) {
		assert.Equal(t, date, bucket.Date)
		assert.Len(t, bucket.Messages, 1)
	}
	mockArchive.AssertExpectations(t)
}

// 測試該天無桶時回傳 nil
func TestArchiveUseCase_Bucket_NotFound(t *testing.T) {
	ctx := context.Background()
	convID := uuid.New().String()
	date := "2026-08-30"

	mockArchive := new(MockArchiveRepository)
	mockArchive.On("FindBucket", ctx, convID, date).Return(nil, nil)

	uc := NewArchiveUseCase(mockArchive)
	bucket, err := uc.Bucket(ctx, convID, date)

	assert.NoError(t, err)
	assert.Nil(t, bucket)
}

// 測試日期格式檢查
func TestArchiveUseCase_Bucket_BadDate(t *testing.T) {
	ctx := context.Background()

	mockArchive := new(MockArchiveRepository)
	uc := NewArchiveUseCase(mockArchive)

	bucket, err := uc.Bucket(ctx, uuid.New().String(), "30/08/2026")

	assert.Error(t, err)
	assert.Nil(t, bucket)
	mockArchive.AssertNotCalled(t, "FindBucket", mock.Anything, mock.Anything, mock.Anything)
}
