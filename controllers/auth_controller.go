package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pdfbrain/pdfbrain-backend/utils"
)

// GuestToken mints an anonymous token so clients can use the authenticated
// websocket endpoints without an account.
func GuestToken(c *gin.Context) {
	userID := "guest-" + uuid.New().String()

	token, err := utils.GenerateToken(userID, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user_id":      userID,
	})
}
