package controllers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/pdfbrain/pdfbrain-backend/utils"
)

func TestGuestTokenEndpoint(t *testing.T) {
	r := gin.New()
	r.POST("/auth/guest", GuestToken)

	w := doJSON(t, r, http.MethodPost, "/auth/guest", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		UserID      string `json:"user_id"`
	}
	decodeBody(t, w, &resp)
	if resp.TokenType != "bearer" {
		t.Fatalf("expected token_type bearer, got %q", resp.TokenType)
	}
	if !strings.HasPrefix(resp.UserID, "guest-") {
		t.Fatalf("expected guest user id, got %q", resp.UserID)
	}

	claims, err := utils.VerifyToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != resp.UserID || !claims.Guest {
		t.Fatalf("unexpected claims %+v", claims)
	}
}
