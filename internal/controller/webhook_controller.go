package controller

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/repository"
	"gcsepal-backend/utilities"
)

// WebhookController ingests video-host status callbacks.
type WebhookController struct {
	courseRepo    repository.CourseRepository
	signingSecret string
	bus           *utilities.EventBus
}

func NewWebhookController(courseRepo repository.CourseRepository, signingSecret string, bus *utilities.EventBus) *WebhookController {
	return &WebhookController{
		courseRepo:    courseRepo,
		signingSecret: signingSecret,
		bus:           bus,
	}
}

type muxWebhookPayload struct {
	Type string `json:"type"`
	Data struct {
		ID          string `json:"id"`
		UploadID    string `json:"upload_id"`
		PlaybackIDs []struct {
			ID string `json:"id"`
		} `json:"playback_ids"`
	} `json:"data"`
}

// MuxWebhook verifies the mux-signature header as HMAC-SHA256 over the raw
// body ("sha256=<hex>") and updates lesson video status. With no signing
// secret configured, verification is skipped; that mirrors the documented
// provider behavior for unsigned environments.
func (wc *WebhookController) MuxWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "could not read body")
		return
	}

	if wc.signingSecret != "" {
		signature := c.GetHeader("mux-signature")
		if !verifySignature(body, signature, wc.signingSecret) {
			respondError(c, http.StatusUnauthorized, "invalid webhook signature")
			return
		}
	}

	var payload muxWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		respondError(c, http.StatusBadRequest, "invalid payload")
		return
	}

	var status string
	switch payload.Type {
	case "video.asset.ready":
		status = model.VideoStatusReady
	case "video.asset.errored":
		status = model.VideoStatusError
	case "video.upload.asset_created":
		status = model.VideoStatusProcessing
	default:
		// Unhandled event types are acknowledged so the provider stops
		// retrying them.
		respondOK(c, gin.H{"message": "ignored"})
		return
	}

	playbackURL := ""
	if status == model.VideoStatusReady && len(payload.Data.PlaybackIDs) > 0 {
		playbackURL = "https://stream.mux.com/" + payload.Data.PlaybackIDs[0].ID + ".m3u8"
	}

	updated, err := wc.courseRepo.UpdateVideoStatus(payload.Data.ID, payload.Data.UploadID, status, playbackURL)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to update video status")
		return
	}

	wc.bus.Publish(utilities.EventVideoStatus, payload.Data.ID)
	utilities.Info("mux webhook %s updated %d lesson(s)", payload.Type, updated)
	respondOK(c, gin.H{"updated": updated})
}

func verifySignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
