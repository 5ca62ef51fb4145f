package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pagination is attached to list responses.
type Pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

// envelope is the uniform response shape: {success, data?, error?,
// pagination?}.
type envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

func respondPaginated(c *gin.Context, data interface{}, p Pagination) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data, Pagination: &p})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: false, Error: message})
}
