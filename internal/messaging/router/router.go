package router

import (
	"context"

	"marketplace_messaging_service/internal/messaging/api/handlers"
	"marketplace_messaging_service/internal/messaging/app"
	"marketplace_messaging_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes 注册对话相关的路由
// @title Marketplace Messaging Service API
// @version 1.0
// @description API documentation for Marketplace Messaging Service
// @host localhost:8085
// @BasePath /
func RegisterRoutes(r *fiber.App, messagingHandler *handlers.MessagingHandler, chatWebsocket *app.ChatWebsocketHandler) {
	r.Get("/swagger/*", swagger.HandlerDefault)
	r.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("messaging service ok")
	})

	r.Use(middlewares.JWTMiddleware())

	conversationRoutes := r.Group("/conversations")
	conversationRoutes.Get("/", messagingHandler.ListConversations)
	conversationRoutes.Post("/", messagingHandler.StartConversation)
	conversationRoutes.Get("/:id/messages", messagingHandler.History)
	conversationRoutes.Post("/:id/messages", messagingHandler.SendMessage)
	conversationRoutes.Get("/:id/archive/:date", messagingHandler.ArchivedMessages)

	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		// 這裡可以建立一個「執行個體」，將 UseCase 等注入
		chatWebsocket.HandleConnection(context.Background(), c)
	}))
}
