package v1

import (
	cacheport "github.com/JPress-IEEE/Backend/internal/infrastructure/cache/port"
	qport "github.com/JPress-IEEE/Backend/internal/infrastructure/queue/port"
	"github.com/JPress-IEEE/Backend/internal/infrastructure/realtime"
	chatHandler "github.com/JPress-IEEE/Backend/internal/pkg/chat/presentation/http"
	notificationHandler "github.com/JPress-IEEE/Backend/internal/pkg/notification/presentation/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, hub *realtime.Hub, cache cacheport.Cache, queue qport.Client) {
	v1 := r.Group("/api/v1")
	// Pass the shared infrastructure down to each module's HTTP layer
	chatHandler.RegisterRoutes(v1, pool, hub, cache, queue)
	notificationHandler.RegisterRoutes(v1, pool)
}
