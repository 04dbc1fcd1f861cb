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

type DeleteNotificationController struct {
	UC *usecase.DeleteNotificationUseCase
}

func NewDeleteNotificationController(pool *pgxpool.Pool) *DeleteNotificationController {
	repo := adapter.NewPgNotificationRepository(pool)
	return &DeleteNotificationController{UC: usecase.NewDeleteNotificationUseCase(repo)}
}

func (h *DeleteNotificationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.UC.Execute(ctx, usecase.DeleteNotificationInput{NotificationID: id}); err != nil {
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

		c.Status(http.StatusNoContent)
	}
}
