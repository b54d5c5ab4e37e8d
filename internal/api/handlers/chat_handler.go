package handlers

import (
	"net/http"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/andresuchdata/supplychain-brain/internal/service"
	"github.com/andresuchdata/supplychain-brain/internal/session"
	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	store *session.Store
	chat  *service.ChatService
}

func NewChatHandler(store *session.Store, chat *service.ChatService) *ChatHandler {
	return &ChatHandler{store: store, chat: chat}
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

type chatHistory struct {
	Messages []domain.ChatMessage `json:"messages"`
	Pending  bool                 `json:"pending"`
}

// Send starts an assistant reply; poll History for the result.
func (h *ChatHandler) Send(c *gin.Context) {
	sess, ok := sessionFrom(c, h.store)
	if !ok {
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.chat.Send(sess, req.Message); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "pending"})
}

func (h *ChatHandler) History(c *gin.Context) {
	sess, ok := sessionFrom(c, h.store)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, chatHistory{
		Messages: sess.ChatHistory(),
		Pending:  sess.Snapshot().ChatPending,
	})
}

func (h *ChatHandler) Clear(c *gin.Context) {
	sess, ok := sessionFrom(c, h.store)
	if !ok {
		return
	}
	sess.ClearChat()
	c.Status(http.StatusNoContent)
}
