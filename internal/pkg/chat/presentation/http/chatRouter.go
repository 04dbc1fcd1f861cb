package http

import (
	cacheport "github.com/JPress-IEEE/Backend/internal/infrastructure/cache/port"
	qport "github.com/JPress-IEEE/Backend/internal/infrastructure/queue/port"
	"github.com/JPress-IEEE/Backend/internal/infrastructure/realtime"
	"github.com/JPress-IEEE/Backend/internal/pkg/chat/presentation/controller"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes registers chat-related HTTP endpoints under the given router group
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, hub *realtime.Hub, cache cacheport.Cache, queue qport.Client) {
	createCtl := controller.NewCreateChatController(pool)
	sendMsgCtl := controller.NewSendMessageController(pool, queue)
	getMsgCtl := controller.NewGetMessageController(pool)
	socketCtl := controller.NewChatSocketController(pool, hub, cache, queue)

	// POST /api/v1/chat -> create (or reuse) a conversation between two users
	g.POST("/chat", createCtl.Handle())

	// POST /api/v1/chat/:chatId -> send a message into a conversation
	g.POST("/chat/:chatId", sendMsgCtl.Handle())

	// GET /api/v1/chat/:chatId/messages -> fetch the message backlog
	g.GET("/chat/:chatId/messages", getMsgCtl.Handle())

	// GET /api/v1/chat/ws -> websocket endpoint for realtime messaging and call signaling
	g.GET("/chat/ws", socketCtl.Handle())
}
