package app

import (
	"context"
	"testing"

	"marketplace_messaging_service/internal/messaging/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// 測試 Start 建立新對話
func TestConversationUseCase_Start(t *testing.T) {
	ctx := context.Background()
	brandID := uuid.New().String()
	creatorID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockProfileRepo := new(MockProfileRepository)

	mockProfileRepo.On("FindByIDs", ctx, []string{brandID, creatorID}).Return(map[string]domain.Profile{
		brandID:   {ID: brandID, DisplayName: "Acme", Role: "brand"},
		creatorID: {ID: creatorID, DisplayName: "Alice", Role: "creator"},
	}, nil)
	mockConvRepo.On("FindPair", ctx, brandID, creatorID).Return(nil, nil)
	mockConvRepo.On("Create", ctx, mock.Anything).Return(nil)

	uc := NewConversationUseCase(mockConvRepo, mockProfileRepo)
	conv, err := uc.Start(ctx, brandID, creatorID)

	assert.NoError(t, err)
	assert.NotNil(t, conv)
	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, brandID, conv.BrandID)
	assert.Equal(t, creatorID, conv.CreatorID)

	mockConvRepo.AssertExpectations(t)
	mockProfileRepo.AssertExpectations(t)
}

// 測試 Start 由 creator 發起，brand/creator 欄位方向不變
func TestConversationUseCase_Start_CreatorInitiates(t *testing.T) {
	ctx := context.Background()
	brandID := uuid.New().String()
	creatorID := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockProfileRepo := new(MockProfileRepository)

	mockProfileRepo.On("FindByIDs", ctx, []string{creatorID, brandID}).Return(map[string]domain.Profile{
		brandID:   {ID: brandID, Role: "brand"},
		creatorID: {ID: creatorID, Role: "creator"},
	}, nil)
	mockConvRepo.On("FindPair", ctx, brandID, creatorID).Return(nil, nil)
	mockConvRepo.On("Create", ctx, mock.Anything).Return(nil)

	uc := NewConversationUseCase(mockConvRepo, mockProfileRepo)
	conv, err := uc.Start(ctx, creatorID, brandID)

	assert.NoError(t, err)
	assert.Equal(t, brandID, conv.BrandID)
	assert.Equal(t, creatorID, conv.CreatorID)
}

// 測試 Start 同一組已存在時回既有對話
func TestConversationUseCase_Start_Existing(t *testing.T) {
	ctx := context.Background()
	brandID := uuid.New().String()
	creatorID := uuid.New().String()
	existing := &domain.Conversation{ID: uuid.New().String(), BrandID: brandID, CreatorID: creatorID}

	mockConvRepo := new(MockConversationRepository)
	mockProfileRepo := new(MockProfileRepository)

	mockProfileRepo.On("FindByIDs", ctx, []string{brandID, creatorID}).Return(map[string]domain.Profile{
		brandID:   {ID: brandID, Role: "brand"},
		creatorID: {ID: creatorID, Role: "creator"},
	}, nil)
	mockConvRepo.On("FindPair", ctx, brandID, creatorID).Return(existing, nil)

	uc := NewConversationUseCase(mockConvRepo, mockProfileRepo)
	conv, err := uc.Start(ctx, brandID, creatorID)

	assert.NoError(t, err)
	assert.Equal(t, existing.ID, conv.ID)
	mockConvRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 測試 Start 必須一 brand 一 creator
func TestConversationUseCase_Start_SameRole(t *testing.T) {
	ctx := context.Background()
	brandA := uuid.New().String()
	brandB := uuid.New().String()

	mockConvRepo := new(MockConversationRepository)
	mockProfileRepo := new(MockProfileRepository)

	mockProfileRepo.On("FindByIDs", ctx, []string{brandA, brandB}).Return(map[string]domain.Profile{
		brandA: {ID: brandA, Role: "brand"},
		brandB: {ID: brandB, Role: "brand"},
	}, nil)

	uc := NewConversationUseCase(mockConvRepo, mockProfileRepo)
	conv, err := uc.Start(ctx, brandA, brandB)

	assert.Error(t, err)
	assert.Nil(t, conv)
	mockConvRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 測試 Start 不能跟自己開對話
func TestConversationUseCase_Start_Self(t *testing.T) {
	ctx := context.Background()
	viewerID := uuid.New().String()

	uc := NewConversationUseCase(new(MockConversationRepository), new(MockProfileRepository))
	conv, err := uc.Start(ctx, viewerID, viewerID)

	assert.Error(t, err)
	assert.Nil(t, conv)
}
