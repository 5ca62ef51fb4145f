package controller

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/repository"
	"gcsepal-backend/utilities"
)

func newWebhookTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.Course{}, &model.Chapter{}, &model.Lesson{}))
	return db
}

func newWebhookRouter(db *gorm.DB, secret string) (*gin.Engine, *utilities.EventBus) {
	gin.SetMode(gin.TestMode)
	bus := utilities.NewEventBus()
	wc := NewWebhookController(repository.NewCourseRepository(db), secret, bus)
	r := gin.New()
	r.POST("/api/videos/mux-webhook", wc.MuxWebhook)
	return r, bus
}

func signBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func seedVideoLesson(t *testing.T, db *gorm.DB, assetID string) *model.Lesson {
	t.Helper()
	lesson := &model.Lesson{
		Title:       "Forces",
		MuxAssetID:  assetID,
		VideoStatus: model.VideoStatusProcessing,
	}
	require.NoError(t, db.Create(lesson).Error)
	return lesson
}

func TestMuxWebhookValidSignatureUpdatesLesson(t *testing.T) {
	db := newWebhookTestDB(t)
	r, bus := newWebhookRouter(db, "whsec_test")
	lesson := seedVideoLesson(t, db, "asset-1")

	body := []byte(`{"type":"video.asset.ready","data":{"id":"asset-1","playback_ids":[{"id":"pb-1"}]}}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/videos/mux-webhook", bytes.NewReader(body))
	req.Header.Set("mux-signature", signBody(body, "whsec_test"))
	r.ServeHTTP(w, req)
	bus.Drain()

	assert.Equal(t, http.StatusOK, w.Code)

	var updated model.Lesson
	require.NoError(t, db.First(&updated, "id = ?", lesson.ID).Error)
	assert.Equal(t, model.VideoStatusReady, updated.VideoStatus)
	assert.Equal(t, "https://stream.mux.com/pb-1.m3u8", updated.VideoURL)
}

func TestMuxWebhookInvalidSignatureRejectedWithoutWrite(t *testing.T) {
	db := newWebhookTestDB(t)
	r, _ := newWebhookRouter(db, "whsec_test")
	lesson := seedVideoLesson(t, db, "asset-1")

	body := []byte(`{"type":"video.asset.ready","data":{"id":"asset-1"}}`)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/videos/mux-webhook", bytes.NewReader(body))
	req.Header.Set("mux-signature", "sha256=deadbeef")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var unchanged model.Lesson
	require.NoError(t, db.First(&unchanged, "id = ?", lesson.ID).Error)
	assert.Equal(t, model.VideoStatusProcessing, unchanged.VideoStatus)
}

func TestMuxWebhookMissingSignatureRejected(t *testing.T) {
	db := newWebhookTestDB(t)
	r, _ := newWebhookRouter(db, "whsec_test")

	body := []byte(`{"type":"video.asset.ready","data":{"id":"asset-1"}}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/videos/mux-webhook", bytes.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMuxWebhookNoSecretSkipsVerification(t *testing.T) {
	db := newWebhookTestDB(t)
	r, bus := newWebhookRouter(db, "")
	lesson := seedVideoLesson(t, db, "asset-2")

	// With no secret configured the event is processed no matter what
	// the signature header carries.
	body := []byte(`{"type":"video.asset.errored","data":{"id":"asset-2"}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/videos/mux-webhook", bytes.NewReader(body))
	req.Header.Set("mux-signature", "sha256=bogus")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	bus.Drain()

	assert.Equal(t, http.StatusOK, w.Code)

	var updated model.Lesson
	require.NoError(t, db.First(&updated, "id = ?", lesson.ID).Error)
	assert.Equal(t, model.VideoStatusError, updated.VideoStatus)
}

func TestMuxWebhookAcknowledgesUnhandledTypes(t *testing.T) {
	db := newWebhookTestDB(t)
	r, _ := newWebhookRouter(db, "")

	body := []byte(`{"type":"video.asset.deleted","data":{"id":"asset-1"}}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/videos/mux-webhook", bytes.NewReader(body)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")
}
