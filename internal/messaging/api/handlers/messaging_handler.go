package handlers

import (
	"marketplace_messaging_service/internal/messaging/app"
	"marketplace_messaging_service/pkg/logger"
	"marketplace_messaging_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MessagingHandler 处理对话相关的 HTTP 请求
type MessagingHandler struct {
	DirectoryUC    *app.DirectoryUseCase
	ConversationUC *app.ConversationUseCase
	ComposerUC     *app.ComposerUseCase
	ArchiveUC      *app.ArchiveUseCase
}

// NewMessagingHandler 创建新的 MessagingHandler
func NewMessagingHandler(
	directoryUC *app.DirectoryUseCase,
	conversationUC *app.ConversationUseCase,
	composerUC *app.ComposerUseCase,
	archiveUC *app.ArchiveUseCase,
) *MessagingHandler {
	return &MessagingHandler{
		DirectoryUC:    directoryUC,
		ConversationUC: conversationUC,
		ComposerUC:     composerUC,
		ArchiveUC:      archiveUC,
	}
}

func viewerID(c *fiber.Ctx) string {
	id, _ := c.Locals(middlewares.TokenViewerID).(string)
	return id
}

// ListConversations 对话列表
// @Summary 对话列表
// @Description 取得 viewer 的对话列表，可带 q 做名称/handle 过滤
// @Tags Conversations
// @Produce json
// @Param q query string false "过滤字串"
// @Success 200 {array} domain.ConversationPreview "对话列表"
// @Failure 500 {object} string "服务器错误"
// @Router /conversations [get]
func (h *MessagingHandler) ListConversations(c *fiber.Ctx) error {
	viewer := viewerID(c)
	list, err := h.DirectoryUC.ListConversations(c.Context(), viewer)
	if err != nil {
		logger.Log.Error("list conversations failed", zap.String("viewerID", viewer), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(h.DirectoryUC.Filter(list, c.Query("q")))
}

// StartConversation 首次聯繫建立對話
// @Summary 建立對話
// @Description brand 与 creator 首次聯繫時建立對話，已存在時回既有對話
// @Tags Conversations
// @Accept json
// @Produce json
// @Param request body object true "counterpart_id"
// @Success 200 {object} domain.Conversation "對話"
// @Failure 400 {object} string "请求错误"
// @Failure 500 {object} string "服务器错误"
// @Router /conversations [post]
func (h *MessagingHandler) StartConversation(c *fiber.Ctx) error {
	type request struct {
		CounterpartID string `json:"counterpart_id"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	conv, err := h.ConversationUC.Start(c.Context(), viewerID(c), req.CounterpartID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(conv)
}

// History 取回歷史訊息
// @Summary 歷史訊息
// @Description 取回該對話全部訊息 (created_at 升冪)，讀取後即標記已讀
// @Tags Conversations
// @Produce json
// @Param id path string true "conversation id"
// @Success 200 {array} domain.Message "訊息列表"
// @Failure 500 {object} string "服务器错误"
// @Router /conversations/{id}/messages [get]
func (h *MessagingHandler) History(c *fiber.Ctx) error {
	conversationID := c.Params("id")
	msgs, err := h.DirectoryUC.History(c.Context(), conversationID, viewerID(c))
	if err != nil {
		logger.Log.Error("load history failed", zap.String("conversationID", conversationID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(msgs)
}

// ArchivedMessages 查詢封存鏡像
// @Summary 封存訊息
// @Description 取回該對話某天的封存桶 (mongo 鏡像)
// @Tags Conversations
// @Produce json
// @Param id path string true "conversation id"
// @Param date path string true "日期 YYYY-MM-DD"
// @Success 200 {object} domain.ArchiveBucket "封存桶"
// @Failure 400 {object} string "请求错误"
// @Failure 404 {object} string "該天無封存"
// @Router /conversations/{id}/archive/{date} [get]
func (h *MessagingHandler) ArchivedMessages(c *fiber.Ctx) error {
	bucket, err := h.ArchiveUC.Bucket(c.Context(), c.Params("id"), c.Params("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if bucket == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no archive for that day"})
	}
	return c.JSON(bucket)
}

// SendMessage 送出訊息
// @Summary 送出訊息
// @Description 送出一則訊息；空白內容為 no-op
// @Tags Conversations
// @Accept json
// @Produce json
// @Param id path string true "conversation id"
// @Param request body object true "content"
// @Success 200 {object} string "message id"
// @Failure 400 {object} string "请求错误"
// @Failure 500 {object} string "服务器错误"
// @Router /conversations/{id}/messages [post]
func (h *MessagingHandler) SendMessage(c *fiber.Ctx) error {
	type request struct {
		Content string `json:"content"`
	}

	var req request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	msg, err := h.ComposerUC.Send(c.Context(), c.Params("id"), viewerID(c), req.Content)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if msg == nil {
		// 空白內容不落庫
		return c.JSON(fiber.Map{"message_id": ""})
	}
	return c.JSON(fiber.Map{"message_id": msg.ID})
}
