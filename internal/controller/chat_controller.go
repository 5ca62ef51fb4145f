package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gcsepal-backend/internal/llm"
)

// ChatController handles the AI tutor chat endpoints.
type ChatController struct {
	tutorClient *llm.TutorClient
}

func NewChatController(tutorClient *llm.TutorClient) *ChatController {
	return &ChatController{tutorClient: tutorClient}
}

// ChatRequest represents the incoming chat message request
type ChatRequest struct {
	Message      string            `json:"message" binding:"required"`
	Conversation []llm.ChatMessage `json:"conversation,omitempty"`
}

// StreamChatResponse represents a streaming response chunk
type StreamChatResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// StreamChat relays tutor completion chunks as Server-Sent Events.
func (cc *ChatController) StreamChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Minute)
	defer cancel()

	conversation := append(req.Conversation, llm.ChatMessage{
		Role:    "user",
		Content: req.Message,
	})

	writeChunk := func(chunk StreamChatResponse) {
		data, err := json.Marshal(chunk)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", data)
		c.Writer.Flush()
	}

	err := cc.tutorClient.StreamTutorConversation(ctx, conversation, func(response string, done bool) error {
		writeChunk(StreamChatResponse{Response: response, Done: done})
		return nil
	})
	if err != nil {
		writeChunk(StreamChatResponse{Done: true, Error: "tutor is unavailable right now"})
	}
}
