package http

import (
	"github.com/JPress-IEEE/Backend/internal/pkg/notification/presentation/controller"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes registers notification endpoints under the given router group
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool) {
	listCtl := controller.NewGetNotificationsController(pool)
	readCtl := controller.NewMarkNotificationReadController(pool)
	deleteCtl := controller.NewDeleteNotificationController(pool)

	// GET /api/v1/notification/user/:userId -> list a user's notifications, newest first
	g.GET("/notification/user/:userId", listCtl.Handle())

	// PATCH /api/v1/notification/:id/read -> mark a notification as read
	g.PATCH("/notification/:id/read", readCtl.Handle())

	// DELETE /api/v1/notification/:id -> remove a notification
	g.DELETE("/notification/:id", deleteCtl.Handle())
}
