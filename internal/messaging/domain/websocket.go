package domain

// Action websocket request action
type Action string

const (
	// ListConversations websocket action list_conversations
	ListConversations Action = "list_conversations"
	// StartConversation websocket action start_conversation
	StartConversation Action = "start_conversation"

	// EnterConversation websocket action enter_conversation
	EnterConversation Action = "enter_conversation"
	// LeaveConversation websocket action leave_conversation
	LeaveConversation Action = "leave_conversation"

	// SendMessage websocket action send_message
	SendMessage Action = "send_message"

	// NotifyMessage websocket action notify_message (server push)
	NotifyMessage Action = "notify_message"
	// NotifyStale websocket action notify_stale (feed 斷線時推播)
	NotifyStale Action = "notify_stale"
)

// WSRequest websocket Request
type WSRequest struct {
	Action         string `json:"action"`
	ConversationID string `json:"conversation_id"`
	CounterpartID  string `json:"counterpart_id"`
	Content        string `json:"content"`
	Filter         string `json:"filter"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}
