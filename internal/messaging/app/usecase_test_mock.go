package app

import (
	"context"
	"sync"
	"time"

	"marketplace_messaging_service/internal/messaging/domain"

	"github.com/stretchr/testify/mock"
)

// MockConversationRepository Mock ConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

// Create moke create conversation
func (m *MockConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	args := m.Called(ctx, conv)
	return args.Error(0)
}

// FindByID moke find conversation by id
func (m *MockConversationRepository) FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByParticipant moke find conversations by participant
func (m *MockConversationRepository) FindByParticipant(ctx context.Context, viewerID string) ([]domain.Conversation, error) {
	args := m.Called(ctx, viewerID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindPair moke find conversation by (brand, creator)
func (m *MockConversationRepository) FindPair(ctx context.Context, brandID, creatorID string) (*domain.Conversation, error) {
	args := m.Called(ctx, brandID, creatorID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Conversation), args.Error(1)
	}
	return nil, args.Error(1)
}

// TouchLastMessage moke update last_message_at
func (m *MockConversationRepository) TouchLastMessage(ctx context.Context, conversationID string, at time.Time) error {
	args := m.Called(ctx, conversationID, at)
	return args.Error(0)
}

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Insert moke insert message
func (m *MockMessageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// FindByID moke find message by id
func (m *MockMessageRepository) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindHistory moke find full history
func (m *MockMessageRepository) FindHistory(ctx context.Context, conversationID string) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindLatestPreviews moke find latest message per conversation
func (m *MockMessageRepository) FindLatestPreviews(ctx context.Context, conversationIDs []string) (map[string]domain.Message, error) {
	args := m.Called(ctx, conversationIDs)
	if args.Get(0) != nil {
		return args.Get(0).(map[string]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// MarkConversationRead moke batch read-mark
func (m *MockMessageRepository) MarkConversationRead(ctx context.Context, conversationID, viewerID string) (int64, error) {
	args := m.Called(ctx, conversationID, viewerID)
	return args.Get(0).(int64), args.Error(1)
}

// MarkRead moke single read-mark
func (m *MockMessageRepository) MarkRead(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

// MockProfileRepository Mock ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

// FindByIDs moke batch profile lookup
func (m *MockProfileRepository) FindByIDs(ctx context.Context, ids []string) (map[string]domain.Profile, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) != nil {
		return args.Get(0).(map[string]domain.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMessageFeed Mock MessageFeed
// Subscribe 記下 handler/onState 供測試事後觸發，不在呼叫當下執行
type MockMessageFeed struct {
	mock.Mock

	mu       sync.Mutex
	handlers map[string]func(event domain.MessageEvent)
	states   map[string]func(live bool)
	ctxs     map[string]context.Context
}

// NewMockMessageFeed create MockMessageFeed
func NewMockMessageFeed() *MockMessageFeed {
	return &MockMessageFeed{
		handlers: make(map[string]func(event domain.MessageEvent)),
		states:   make(map[string]func(live bool)),
		ctxs:     make(map[string]context.Context),
	}
}

// Publish moke publish event
func (m *MockMessageFeed) Publish(channel string, event domain.MessageEvent) error {
	args := m.Called(channel, event)
	return args.Error(0)
}

// Subscribe moke subscribe channel
func (m *MockMessageFeed) Subscribe(ctx context.Context, channel string, handler func(event domain.MessageEvent), onState func(live bool)) error {
	args := m.Called(ctx, channel)
	m.mu.Lock()
	m.handlers[channel] = handler
	m.states[channel] = onState
	m.ctxs[channel] = ctx
	m.mu.Unlock()
	return args.Error(0)
}

// Emit 模擬 feed 收到一筆 insert event；訂閱已取消時不送
func (m *MockMessageFeed) Emit(channel string, event domain.MessageEvent) {
	m.mu.Lock()
	handler := m.handlers[channel]
	ctx := m.ctxs[channel]
	m.mu.Unlock()
	if handler == nil || ctx == nil || ctx.Err() != nil {
		return
	}
	handler(event)
}

// EmitState 模擬 feed 斷線/恢復
func (m *MockMessageFeed) EmitState(channel string, live bool) {
	m.mu.Lock()
	onState := m.states[channel]
	ctx := m.ctxs[channel]
	m.mu.Unlock()
	if onState == nil || ctx == nil || ctx.Err() != nil {
		return
	}
	onState(live)
}

// Cancelled 訂閱的 ctx 是否已取消
func (m *MockMessageFeed) Cancelled(channel string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctx, ok := m.ctxs[channel]
	return ok && ctx.Err() != nil
}

// MockNotifier Mock Notifier
type MockNotifier struct {
	mock.Mock
}

// MessageCreated moke message-created fan-out
func (m *MockNotifier) MessageCreated(ctx context.Context, msg domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockArchiveRepository Mock ArchiveRepository
type MockArchiveRepository struct {
	mock.Mock
}

// AppendMessage moke append into daily bucket
func (m *MockArchiveRepository) AppendMessage(ctx context.Context, msg domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// FindBucket moke find daily bucket
func (m *MockArchiveRepository) FindBucket(ctx context.Context, conversationID, date string) (*domain.ArchiveBucket, error) {
	args := m.Called(ctx, conversationID, date)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ArchiveBucket), args.Error(1)
	}
	return nil, args.Error(1)
}
