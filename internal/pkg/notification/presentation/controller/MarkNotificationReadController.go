package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	notification "github.com/JPress-IEEE/Backend/internal/pkg/notification/application/domain"
	"github.com/JPress-IEEE/Backend/internal/pkg/notification/application/usecase"
	"github.com/JPress-IEEE/Backend/internal/pkg/notification/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MarkNotificationReadController struct {
	UC *usecase.MarkNotificationReadUseCase
}

func NewMarkNotificationReadController(pool *pgxpool.Pool) *MarkNotificationReadController {
	repo := adapter.NewPgNotificationRepository(pool)
	return &MarkNotificationReadController{UC: usecase.NewMarkNotificationReadUseCase(repo)}
}

func (h *MarkNotificationReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		n, err := h.UC.Execute(ctx, usecase.MarkNotificationReadInput{NotificationID: id})
		if err != nil {
			status := http.StatusBadRequest
			switch {
			case errors.Is(err, notification.ErrNotFound):
				status = http.StatusNotFound
			case errors.Is(err, usecase.ErrPersistence):
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":         n.ID,
			"user_id":    n.UserID,
			"message":    n.Message,
			"status":     n.Status,
			"updated_at": n.UpdatedAt,
		})
	}
}
