package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gcsepal-backend/utilities"
)

// TutorClient talks to the AI completion endpoint that powers the tutor
// chat.
type TutorClient struct {
	url    string
	model  string
	client *http.Client
}

func NewTutorClient(url, model string) *TutorClient {
	return &TutorClient{
		url:   url,
		model: model,
		client: &http.Client{
			Timeout: 600 * time.Second, // Streaming completions can run long
		},
	}
}

// ChatMessage represents a message in a conversation
type ChatMessage struct {
	Role    string `json:"role"` // user, assistant
	Content string `json:"content"`
}

// StreamResponse is one chunk of a streamed completion.
type StreamResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// StreamCallback defines the callback function type for streaming responses
type StreamCallback func(response string, done bool) error

// StreamChat sends a prompt and streams completion chunks to the callback.
func (t *TutorClient) StreamChat(ctx context.Context, prompt string, callback StreamCallback) error {
	requestBody, err := json.Marshal(map[string]interface{}{
		"model":  t.model,
		"prompt": prompt,
		"stream": true,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", t.url, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		var streamResp StreamResponse
		if err := json.Unmarshal([]byte(line), &streamResp); err != nil {
			utilities.Warn("failed to unmarshal stream response: %v", err)
			continue
		}

		if err := callback(streamResp.Response, streamResp.Done); err != nil {
			return fmt.Errorf("callback error: %w", err)
		}

		if streamResp.Done {
			break
		}
	}

	return scanner.Err()
}

// StreamTutorConversation maintains conversation context for better responses.
func (t *TutorClient) StreamTutorConversation(ctx context.Context, messages []ChatMessage, callback StreamCallback) error {
	var conversationBuilder strings.Builder
	conversationBuilder.WriteString("You are a patient AI tutor for GCSEPal, an e-learning platform for GCSE students. ")
	conversationBuilder.WriteString("You explain concepts step by step, quiz the student gently, and keep answers at GCSE level. ")
	conversationBuilder.WriteString("Be encouraging and concrete.\n\n")

	for _, msg := range messages {
		if msg.Role == "user" {
			conversationBuilder.WriteString("Student: " + msg.Content + "\n")
		} else if msg.Role == "assistant" {
			conversationBuilder.WriteString("Tutor: " + msg.Content + "\n")
		}
	}
	conversationBuilder.WriteString("Tutor: ")

	return t.StreamChat(ctx, conversationBuilder.String(), callback)
}
