package app

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"marketplace_messaging_service/internal/messaging/domain"
	"marketplace_messaging_service/internal/messaging/repository"
	"marketplace_messaging_service/pkg/logger"
	"marketplace_messaging_service/pkg/middlewares"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// ChatWebsocketHandler 可包含所有需要的 UseCase
// 每條連線有自己的 StreamUseCase，對應前端當前選取的對話
type ChatWebsocketHandler struct {
	directoryUC    *DirectoryUseCase
	conversationUC *ConversationUseCase
	composerUC     *ComposerUseCase

	msgRepo repository.MessageRepository
	feed    repository.MessageFeed
}

type messageWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// wsWriter 序列化同一條連線的並發寫入 (read loop 回覆、feed 推播、ping)
type wsWriter struct {
	conn messageWriter
	mu   sync.Mutex
}

func (w *wsWriter) WriteMessage(messageType int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(messageType, data)
}

// NewChatWebsocketHandler create ChatWebsocketHandler
func NewChatWebsocketHandler(
	directoryUC *DirectoryUseCase,
	conversationUC *ConversationUseCase,
	composerUC *ComposerUseCase,
	msgRepo repository.MessageRepository,
	feed repository.MessageFeed,
) *ChatWebsocketHandler {
	return &ChatWebsocketHandler{
		directoryUC:    directoryUC,
		conversationUC: conversationUC,
		composerUC:     composerUC,
		msgRepo:        msgRepo,
		feed:           feed,
	}
}

// HandleConnection 是 WebSocket 連線的進入點
func (h *ChatWebsocketHandler) HandleConnection(ctx context.Context, conn *websocket.Conn) {
	tokenViewer := conn.Locals(middlewares.TokenViewerID)
	viewerID, ok := tokenViewer.(string)
	logger.Log.Info("websocket handle viewerID", zap.String("viewerID", viewerID), zap.String("ok", strconv.FormatBool(ok)))

	stream := NewStreamUseCase(h.msgRepo, h.feed)
	writer := &wsWriter{conn: conn}

	ticker := time.NewTicker(10 * time.Minute)
	ctxClose, cancel := context.WithCancel(context.Background())

	defer func() {
		ticker.Stop()
		logger.Log.Info("websocket close", zap.String("viewerID", viewerID))
		stream.Teardown()
		conn.Close()
		cancel()
	}()

	//client發出close
	//fiber會自動處理(在read msg 回傳err),故需要SetCloseHandler另外接出
	conn.SetCloseHandler(func(code int, text string) error {
		logger.Log.Infof("WebSocket closed:", conn.RemoteAddr())
		return nil
	})

	//server發出ping之後client連線正常會回pong
	conn.SetPongHandler(func(appData string) error {
		logger.Log.Infof("Received PONG:", appData)
		return nil
	})

	//client發出ping
	conn.SetPingHandler(func(appData string) error {
		logger.Log.Infof("Received PING:", appData)
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(appData),
			time.Now().Add(time.Second),
		)
	})

	// live event 附加後推播給前端
	stream.SetOnAppend(func(msg domain.Message) {
		h.sendResponse(writer, domain.WSResponse{
			Action:  string(domain.NotifyMessage),
			Success: true,
			Payload: map[string]interface{}{
				"message": msg,
			},
		})
	})

	// feed 斷線時前端顯示 stale 指示
	stream.SetOnStale(func(stale bool) {
		h.sendResponse(writer, domain.WSResponse{
			Action:  string(domain.NotifyStale),
			Success: true,
			Payload: map[string]interface{}{
				"stale": stale,
			},
		})
	})

	// 定期發送 Ping
	go func() {
		for {
			select {
			case <-ticker.C:
				pingMsg := "ping message"
				if err := writer.WriteMessage(websocket.PingMessage, []byte(pingMsg)); err != nil {
					logger.Log.Errorf("Ping error:", err)
					return
				}
			case <-ctxClose.Done():
				logger.Log.Infof("Ping goroutine cancelled for viewer:", viewerID)
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Errorf("Connection closed:", err)
			} else {
				//直接斷線 1006
				logger.Log.Errorf("websocket read error:", err)
			}
			return
		}
		h.execWebsocketAction(ctx, writer, stream, viewerID, mt, message)
	}
}

func (h *ChatWebsocketHandler) execWebsocketAction(ctx context.Context, writer *wsWriter, stream *StreamUseCase, viewerID string, mt int, msg []byte) {
	switch mt {
	case websocket.TextMessage:
		h.textMessageAction(ctx, writer, stream, viewerID, msg)
	default:
		h.sendError(writer, "unknown message types")
	}
}

func (h *ChatWebsocketHandler) textMessageAction(ctx context.Context, writer *wsWriter, stream *StreamUseCase, viewerID string, msg []byte) {

	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		logger.Log.Errorf("json unmarshal error:", err)
		return
	}

	resp := domain.WSResponse{Action: req.Action, Success: false, Payload: map[string]interface{}{}}
	switch req.Action {
	//對話列表 (可帶記憶體內過濾字串)
	case string(domain.ListConversations):
		list, err := h.directoryUC.ListConversations(ctx, viewerID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["conversations"] = h.directoryUC.Filter(list, req.Filter)
		}

	//首次聯繫建立對話
	case string(domain.StartConversation):
		conv, err := h.conversationUC.Start(ctx, viewerID, req.CounterpartID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["conversation"] = conv
		}

	//選取對話：載入歷史 + 開新訂閱 (舊訂閱自動解除)
	case string(domain.EnterConversation):
		history, err := stream.Select(ctx, req.ConversationID, viewerID)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			resp.Payload["messages"] = history
		}

	//離開對話
	case string(domain.LeaveConversation):
		stream.Teardown()
		resp.Success = true
		resp.Payload["leave_conversation"] = req.ConversationID

	//送出訊息，訊息經 feed 回流，不直接塞列表
	case string(domain.SendMessage):
		sent, err := h.composerUC.Send(ctx, req.ConversationID, viewerID, req.Content)
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Success = true
			if sent != nil {
				resp.Payload["message_id"] = sent.ID
			}
		}

	default:
		h.sendError(writer, "unknown action")
		return
	}

	if resp.Error != "" {
		logger.Log.Error("websocket err ", zap.String("ViewerID", viewerID), zap.String("Action", req.Action), zap.String("err", resp.Error))
	}
	h.sendResponse(writer, resp)
}

// sendResponse - 發送 JSON 給前端
func (h *ChatWebsocketHandler) sendResponse(writer *wsWriter, resp domain.WSResponse) {
	b, _ := json.Marshal(resp)
	if err := writer.WriteMessage(websocket.TextMessage, b); err != nil {
		logger.Log.Errorf("write message error:", err)
	}
}

func (h *ChatWebsocketHandler) sendError(writer *wsWriter, errorMsg string) {
	resp := domain.WSResponse{
		Action:  "error",
		Success: false,
		Payload: map[string]interface{}{
			"error": errorMsg,
		},
	}
	h.sendResponse(writer, resp)
}
