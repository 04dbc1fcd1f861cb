package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/JPress-IEEE/Backend/internal/pkg/chat/application/usecase"
	"github.com/JPress-IEEE/Backend/internal/pkg/chat/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateChatController handles the chat creation endpoint
// One controller per endpoint

type CreateChatController struct {
	UC *usecase.CreateChatUseCase
}

func NewCreateChatController(pool *pgxpool.Pool) *CreateChatController {
	repo := adapter.NewPgChatRepository(pool)
	return &CreateChatController{UC: usecase.NewCreateChatUseCase(repo)}
}

type createChatRequest struct {
	Participant1ID string `json:"participant1_id" binding:"required"`
	Participant2ID string `json:"participant2_id" binding:"required"`
}

func (h *CreateChatController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, err := h.UC.Execute(ctx, usecase.CreateChatInput{
			Participant1ID: req.Participant1ID,
			Participant2ID: req.Participant2ID,
		})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":              conv.ID,
			"participant1_id": conv.Participant1ID,
			"participant2_id": conv.Participant2ID,
			"created_at":      conv.CreatedAt,
			"updated_at":      conv.UpdatedAt,
		})
	}
}
