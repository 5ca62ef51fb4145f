package utilities

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gcsepal-backend/internal/model"
)

func testUser() *model.User {
	return &model.User{
		ID:           uuid.New(),
		Email:        "student@example.com",
		Role:         model.RoleStudent,
		TokenVersion: 0,
	}
}

func TestGenerateAndValidateTokens(t *testing.T) {
	user := testUser()

	access, refresh, err := GenerateTokens(user)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := ValidateToken(access, false)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.Role, claims.Role)

	// Each token only validates against its own secret.
	_, err = ValidateToken(access, true)
	assert.Error(t, err)
	_, err = ValidateToken(refresh, false)
	assert.Error(t, err)

	refreshClaims, err := ValidateToken(refresh, true)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refreshClaims.UserID)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token", false)
	assert.Error(t, err)
}

func newAuthTestRouter(versionOf TokenVersionFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(versionOf), func(c *gin.Context) {
		id, _ := CallerID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "role": CallerRole(c)})
	})
	return r
}

func TestAuthMiddlewareAcceptsCurrentToken(t *testing.T) {
	user := testUser()
	access, _, err := GenerateTokens(user)
	require.NoError(t, err)

	r := newAuthTestRouter(func(uuid.UUID) (int, error) { return 0, nil })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareRejectsStaleTokenVersion(t *testing.T) {
	user := testUser()
	access, _, err := GenerateTokens(user)
	require.NoError(t, err)

	// Simulate a sign-out-all-devices bumping the stored version.
	r := newAuthTestRouter(func(uuid.UUID) (int, error) { return 1, nil })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	r := newAuthTestRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
