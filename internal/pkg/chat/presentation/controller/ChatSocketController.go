package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	cacheport "github.com/JPress-IEEE/Backend/internal/infrastructure/cache/port"
	qport "github.com/JPress-IEEE/Backend/internal/infrastructure/queue/port"
	"github.com/JPress-IEEE/Backend/internal/infrastructure/realtime"
	callDomain "github.com/JPress-IEEE/Backend/internal/pkg/call/application/domain"
	callUsecase "github.com/JPress-IEEE/Backend/internal/pkg/call/application/usecase"
	callRepoAdapter "github.com/JPress-IEEE/Backend/internal/pkg/call/persistence/repository/adapter"
	chat "github.com/JPress-IEEE/Backend/internal/pkg/chat/application/domain"
	"github.com/JPress-IEEE/Backend/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/JPress-IEEE/Backend/internal/pkg/chat/persistence/repository/adapter"
	notifTask "github.com/JPress-IEEE/Backend/internal/pkg/notification/application/task"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatSocketController handles the websocket endpoint for the whole realtime
// surface: conversation membership, message lifecycle and call signaling.
// Every broadcast happens only after the owning use case persisted the event.
type ChatSocketController struct {
	hub             *realtime.Hub
	joinRoomUC      *usecase.JoinConversationUseCase
	sendMessageUC   *usecase.SendMessageUseCase
	editMessageUC   *usecase.EditMessageUseCase
	deleteMessageUC *usecase.DeleteMessageUseCase
	markReadUC      *usecase.MarkMessageReadUseCase
	requestCallUC   *callUsecase.RequestCallUseCase
	acceptCallUC    *callUsecase.AcceptCallUseCase
	declineCallUC   *callUsecase.DeclineCallUseCase
	endCallUC       *callUsecase.EndCallUseCase
	inflightTimeout time.Duration
}

func NewChatSocketController(pool *pgxpool.Pool, hub *realtime.Hub, cache cacheport.Cache, queue qport.Client) *ChatSocketController {
	chatRepo := repoAdapter.NewPgChatRepository(pool)
	callRepo := callRepoAdapter.NewPgCallRepository(pool)

	var notifier usecase.OfflineNotifier
	if queue != nil {
		notifier = notifTask.NewQueueNotifier(queue)
	}

	return &ChatSocketController{
		hub:             hub,
		joinRoomUC:      usecase.NewJoinConversationUseCase(chatRepo, cache),
		sendMessageUC:   usecase.NewSendMessageUseCase(chatRepo, hub, notifier),
		editMessageUC:   usecase.NewEditMessageUseCase(chatRepo),
		deleteMessageUC: usecase.NewDeleteMessageUseCase(chatRepo),
		markReadUC:      usecase.NewMarkMessageReadUseCase(chatRepo),
		requestCallUC:   callUsecase.NewRequestCallUseCase(callRepo),
		acceptCallUC:    callUsecase.NewAcceptCallUseCase(callRepo),
		declineCallUC:   callUsecase.NewDeclineCallUseCase(callRepo),
		endCallUC:       callUsecase.NewEndCallUseCase(callRepo),
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

type inboundFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	MessageID      string `json:"message_id,omitempty"`
	Content        string `json:"content,omitempty"`
	SenderID       string `json:"sender_id,omitempty"`   // call initiator
	ReceiverID     string `json:"receiver_id,omitempty"` // call callee
}

type messagePayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type callPayload struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	ReceiverID     string     `json:"receiver_id"`
	Status         string     `json:"status"`
	StartTime      *time.Time `json:"start_time,omitempty"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ackFrame answers the originating caller of one inbound frame.
type ackFrame struct {
	Type     string           `json:"type"` // always "ack"
	Op       string           `json:"op"`
	Status   string           `json:"status"` // always "success"; failures use errorFrame
	Message  *messagePayload  `json:"message,omitempty"`
	Messages []messagePayload `json:"messages,omitempty"`
	Call     *callPayload     `json:"call,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"` // always "error"
	Op    string `json:"op,omitempty"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades HTTP connections to websocket and processes frames until the
// client disconnects. The user_id query parameter registers presence; errors on
// individual frames are acked back and never tear the connection down.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just return.
			return
		}

		conn := realtime.NewConnection(userID, ws)
		ctl.hub.Attach(conn)
		defer func() {
			ctl.hub.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		ctl.sendJSON(conn, ackFrame{Type: "ack", Op: "connected", Status: "success"})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.replyError(conn, "", "read_error", err.Error())
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "", "validation_error", "invalid payload")
				continue
			}

			switch frame.Type {
			case "join_conversation":
				ctl.handleJoin(c, conn, frame)
			case "leave_conversation":
				ctl.handleLeave(conn, frame)
			case "send_message":
				ctl.handleSendMessage(c, conn, frame)
			case "edit_message":
				ctl.handleEditMessage(c, conn, frame)
			case "delete_message":
				ctl.handleDeleteMessage(c, conn, frame)
			case "mark_message_read":
				ctl.handleMarkRead(c, conn, frame)
			case "request_call":
				ctl.handleRequestCall(c, conn, frame)
			case "accept_call":
				ctl.handleAcceptCall(c, conn, frame)
			case "decline_call":
				ctl.handleDeclineCall(c, conn, frame)
			case "end_call":
				ctl.handleEndCall(c, conn, frame)
			default:
				ctl.replyError(conn, frame.Type, "validation_error", "unknown frame type")
			}
		}
	}
}

func (ctl *ChatSocketController) handleJoin(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	const op = "join_conversation"

	ctx, cancel := ctl.opContext(c)
	defer cancel()

	res, err := ctl.joinRoomUC.Execute(ctx, usecase.JoinConversationInput{
		ConversationID: frame.ConversationID,
		UserID:         conn.UserID,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, op, err)
		return
	}

	ctl.hub.Join(frame.ConversationID, conn)

	backlog := make([]messagePayload, 0, len(res.Backlog))
	for _, m := range res.Backlog {
		backlog = append(backlog, toMessagePayload(m))
	}
	ctl.sendJSON(conn, ackFrame{Type: "ack", Op: op, Status: "success", Messages: backlog})
}

func (ctl *ChatSocketController) handleLeave(conn *realtime.Connection, frame inboundFrame) {
	const op = "leave_conversation"
	if frame.ConversationID == "" {
		ctl.replyError(conn, op, "validation_error", "conversation_id is required")
		return
	}
	ctl.hub.Leave(frame.ConversationID, conn)
	ctl.sendJSON(conn, ackFrame{Type: "ack", Op: op, Status: "success"})
}

func (ctl *ChatSocketController) handleSendMessage(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	const op = "send_message"

	ctx, cancel := ctl.opContext(c)
	defer cancel()

	msg, err := ctl.sendMessageUC.Execute(ctx, usecase.SendMessageInput{
		ConversationID: frame.ConversationID,
		SenderID:       conn.UserID,
		Content:        frame.Content,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, op, err)
		return
	}

	payload := toMessagePayload(*msg)
	ctl.broadcastJSON(msg.ConversationID, struct {
		Type           string         `json:"type"`
		ConversationID string         `json:"conversation_id"`
		Message        messagePayload `json:"message"`
	}{"message_received", msg.ConversationID, payload})

	ctl.sendJSON(conn, ackFrame{Type: "ack", Op: op, Status: "success", Message: &payload})
}

func (ctl *ChatSocketController) handleEditMessage(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	const op = "edit_message"

	ctx, cancel := ctl.opContext(c)
	defer cancel()

	msg, err := ctl.editMessageUC.Execute(ctx, usecase.EditMessageInput{
		MessageID:   frame.MessageID,
		RequesterID: conn.UserID,
		NewContent:  frame.Content,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, op, err)
		return
	}

	payload := toMessagePayload(*msg)
	ctl.broadcastJSON(msg.ConversationID, struct {
		Type           string `json:"type"`
		ConversationID string `json:"conversation_id"`
		MessageID      string `json:"message_id"`
		Content        string `json:"content"`
	}{"message_edited", msg.ConversationID, msg.ID, msg.Content})

	ctl.sendJSON(conn, ackFrame{Type: "ack", Op: op, Status: "success", Message: &payload})
}

func (ctl *ChatSocketController) handleDeleteMessage(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	const op = "delete_message"

	ctx, cancel := ctl.opContext(c)
	defer cancel()

	removed, err := ctl.deleteMessageUC.Execute(ctx, usecase.DeleteMessageInput{
		MessageID:   frame.MessageID,
		RequesterID: conn.UserID,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, op, err)
		return
	}

	ctl.broadcastJSON(removed.ConversationID, struct {
		Type           string `json:"type"`
		ConversationID string `json:"conversation_id"`
		MessageID      string `json:"message_id"`
	}{"message_deleted", removed.ConversationID, removed.ID})

	ctl.sendJSON(conn, ackFrame{Type: "ack", Op: op, Status: "success"})
}

func (ctl *ChatSocketController) handleMarkRead(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	const op = "mark_message_read"

	ctx, cancel := ctl.opContext(c)
	defer cancel()

	msg, err := ctl.markReadUC.Execute(ctx, usecase.MarkMessageReadInput{MessageID: frame.MessageID})
	if err != nil {
		ctl.replyUseCaseError(conn, op, err)
		return
	}

	payload := toMessagePayload(*msg)
	ctl.broadcastJSON(msg.ConversationID, struct {
		Type           string `json:"type"`
		ConversationID string `json:"conversation_id"`
		MessageID      string `json:"message_id"`
		IsRead         bool   `json:"is_read"`
	}{"message_read", msg.ConversationID, msg.ID, true})

	ctl.sendJSON(conn, ackFrame{Type: "ack", Op: op, Status: "success", Message: &payload})
}

func (ctl *ChatSocketController) handleRequestCall(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	const op = "request_call"

	ctx, cancel := ctl.opContext(c)
	defer cancel()

	sess, err := ctl.requestCallUC.Execute(ctx, callUsecase.RequestCallInput{
		ConversationID: frame.ConversationID,
		SenderID:       conn.UserID,
		ReceiverID:     frame.ReceiverID,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, op, err)
		return
	}

	payload := toCallPayload(*sess)
	// The receiver may not have joined the conversation channel yet, so the
	// ring goes to their per-user channel. An offline receiver simply misses
	// the live event; the pending session persists either way.
	ctl.notifyUserJSON(sess.ReceiverID, struct {
		Type    string      `json:"type"`
		Call    callPayload `json:"call"`
		From    string      `json:"from"`
		Message string      `json:"message"`
	}{"incoming_call", payload, sess.SenderID, "Incoming video call. Accept or decline?"})

	ctl.sendJSON(conn, ackFrame{Type: "ack", Op: op, Status: "success", Call: &payload})
}

func (ctl *ChatSocketController) handleAcceptCall(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	ctl.handleCallTransition(c, conn, frame, "accept_call", "call_accepted", "Video call started",
		func(ctx context.Context, in callUsecase.AcceptCallInput) (*callDomain.Session, error) {
			return ctl.acceptCallUC.Execute(ctx, in)
		})
}

func (ctl *ChatSocketController) handleDeclineCall(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	ctl.handleCallTransition(c, conn, frame, "decline_call", "call_declined", "Video call declined",
		func(ctx context.Context, in callUsecase.AcceptCallInput) (*callDomain.Session, error) {
			return ctl.declineCallUC.Execute(ctx, callUsecase.DeclineCallInput(in))
		})
}

func (ctl *ChatSocketController) handleEndCall(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	ctl.handleCallTransition(c, conn, frame, "end_call", "call_ended", "Video call ended",
		func(ctx context.Context, in callUsecase.AcceptCallInput) (*callDomain.Session, error) {
			return ctl.endCallUC.Execute(ctx, callUsecase.EndCallInput(in))
		})
}

// handleCallTransition runs one conditional state transition and, on success,
// broadcasts the updated session to the conversation channel so all joined
// members converge on the same view.
func (ctl *ChatSocketController) handleCallTransition(
	c *gin.Context,
	conn *realtime.Connection,
	frame inboundFrame,
	op string,
	event string,
	statusLine string,
	transition func(ctx context.Context, in callUsecase.AcceptCallInput) (*callDomain.Session, error),
) {
	ctx, cancel := ctl.opContext(c)
	defer cancel()

	sess, err := transition(ctx, callUsecase.AcceptCallInput{
		ConversationID: frame.ConversationID,
		SenderID:       frame.SenderID,
		ReceiverID:     frame.ReceiverID,
	})
	if err != nil {
		ctl.replyUseCaseError(conn, op, err)
		return
	}

	payload := toCallPayload(*sess)
	ctl.broadcastJSON(sess.ConversationID, struct {
		Type           string      `json:"type"`
		ConversationID string      `json:"conversation_id"`
		Call           callPayload `json:"call"`
		Message        string      `json:"message"`
	}{event, sess.ConversationID, payload, statusLine})

	ctl.sendJSON(conn, ackFrame{Type: "ack", Op: op, Status: "success", Call: &payload})
}

func (ctl *ChatSocketController) opContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
}

// replyUseCaseError maps domain errors onto the wire taxonomy and answers the
// originating caller. Races lost on call transitions are expected outcomes and
// carry their own code so clients don't treat them as faults.
func (ctl *ChatSocketController) replyUseCaseError(conn *realtime.Connection, op string, err error) {
	switch {
	case errors.Is(err, chat.ErrConversationNotFound), errors.Is(err, chat.ErrMessageNotFound):
		ctl.replyError(conn, op, "not_found", err.Error())
	case errors.Is(err, chat.ErrNotParticipant), errors.Is(err, chat.ErrNotSender):
		ctl.replyError(conn, op, "forbidden", err.Error())
	case errors.Is(err, callDomain.ErrNoMatchingCall):
		ctl.replyError(conn, op, "not_found_or_already_resolved", err.Error())
	case errors.Is(err, callDomain.ErrCallInProgress):
		ctl.replyError(conn, op, "call_in_progress", err.Error())
	case errors.Is(err, usecase.ErrPersistence), errors.Is(err, callUsecase.ErrPersistence):
		ctl.replyError(conn, op, "internal_error", "unexpected persistence error")
	default:
		ctl.replyError(conn, op, "validation_error", err.Error())
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, op, code, message string) {
	ctl.sendJSON(conn, errorFrame{Type: "error", Op: op, Code: code, Error: message})
}

func (ctl *ChatSocketController) sendJSON(conn *realtime.Connection, v any) {
	if payload, err := json.Marshal(v); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ChatSocketController) broadcastJSON(conversationID string, v any) {
	if payload, err := json.Marshal(v); err == nil {
		ctl.hub.Broadcast(conversationID, payload, "")
	}
}

func (ctl *ChatSocketController) notifyUserJSON(userID string, v any) {
	if payload, err := json.Marshal(v); err == nil {
		ctl.hub.NotifyUser(userID, payload)
	}
}

func toMessagePayload(m chat.Message) messagePayload {
	return messagePayload{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toCallPayload(s callDomain.Session) callPayload {
	return callPayload{
		ID:             s.ID,
		ConversationID: s.ConversationID,
		SenderID:       s.SenderID,
		ReceiverID:     s.ReceiverID,
		Status:         string(s.Status),
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		CreatedAt:      s.CreatedAt,
	}
}
