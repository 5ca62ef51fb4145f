package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/service"
	"gcsepal-backend/utilities"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

func (ac *AuthController) Register(c *gin.Context) {
	var user model.User
	if err := c.ShouldBindJSON(&user); err != nil {
		respondError(c, http.StatusBadRequest, "invalid input")
		return
	}
	if err := ac.authService.Register(&user); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			respondError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInvalidRegistration):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			utilities.Error("registration failed: %v", err)
			respondError(c, http.StatusInternalServerError, "failed to register user")
		}
		return
	}
	user.Password = ""
	respondCreated(c, user)
}

func (ac *AuthController) Login(c *gin.Context) {
	var creds struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&creds); err != nil {
		respondError(c, http.StatusBadRequest, "invalid input")
		return
	}

	user, tokens, err := ac.authService.Login(creds.Email, creds.Password)
	if err != nil {
		respondError(c, http.StatusUnauthorized, err.Error())
		return
	}

	respondOK(c, gin.H{"user": user, "tokens": tokens})
}

func (ac *AuthController) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid input")
		return
	}

	tokens, err := ac.authService.Refresh(req.RefreshToken)
	if err != nil {
		respondError(c, http.StatusUnauthorized, err.Error())
		return
	}
	respondOK(c, tokens)
}

// LogoutAll invalidates every issued token for the caller.
func (ac *AuthController) LogoutAll(c *gin.Context) {
	userID, ok := utilities.CallerID(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthenticated")
		return
	}
	if err := ac.authService.LogoutAllDevices(userID); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to sign out devices")
		return
	}
	respondOK(c, gin.H{"message": "signed out on all devices"})
}

// Sync upserts the caller's user row from the external auth provider
// payload.
func (ac *AuthController) Sync(c *gin.Context) {
	var req struct {
		ExternalID string `json:"external_id" binding:"required"`
		Email      string `json:"email" binding:"required"`
		Name       string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid input")
		return
	}

	user, err := ac.authService.SyncExternalUser(req.ExternalID, req.Email, req.Name)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to sync user")
		return
	}
	user.Password = ""
	respondOK(c, user)
}
