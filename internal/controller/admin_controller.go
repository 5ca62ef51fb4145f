package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gcsepal-backend/internal/authz"
	"gcsepal-backend/internal/service"
	"gcsepal-backend/utilities"
)

type AdminController struct {
	statsService service.StatsService
}

func NewAdminController(statsService service.StatsService) *AdminController {
	return &AdminController{statsService: statsService}
}

func (ac *AdminController) Stats(c *gin.Context) {
	if !authz.Allowed(authz.ActionAdminStats, authz.Context{Role: utilities.CallerRole(c)}) {
		respondError(c, http.StatusForbidden, "admin or teacher role required")
		return
	}

	stats, err := ac.statsService.AdminStats(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	respondOK(c, stats)
}
