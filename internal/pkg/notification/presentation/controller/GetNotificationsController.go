package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/JPress-IEEE/Backend/internal/pkg/notification/application/usecase"
	"github.com/JPress-IEEE/Backend/internal/pkg/notification/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GetNotificationsController lists a user's notifications (one controller per endpoint)
type GetNotificationsController struct {
	UC *usecase.GetNotificationsUseCase
}

func NewGetNotificationsController(pool *pgxpool.Pool) *GetNotificationsController {
	repo := adapter.NewPgNotificationRepository(pool)
	return &GetNotificationsController{UC: usecase.NewGetNotificationsUseCase(repo)}
}

func (h *GetNotificationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		items, err := h.UC.Execute(ctx, usecase.GetNotificationsInput{UserID: userID})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(items))
		for _, n := range items {
			out = append(out, gin.H{
				"id":         n.ID,
				"user_id":    n.UserID,
				"message":    n.Message,
				"status":     n.Status,
				"created_at": n.CreatedAt,
				"updated_at": n.UpdatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{"notifications": out, "count": len(out)})
	}
}
