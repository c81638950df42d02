package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"expenses_bot/internal/logger"
)

// SecretTokenHeader carries the secret configured with setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// UpdateProcessor is implemented by *bot.Bot.
type UpdateProcessor interface {
	ProcessUpdate(ctx context.Context, update tgbotapi.Update)
	ProcessAsync(update tgbotapi.Update)
}

type WebhookHandler struct {
	processor  UpdateProcessor
	secret     string
	background bool
}

// NewWebhookHandler checks the secret header when secret is non-empty. With background
// set, updates are acknowledged immediately and handled asynchronously.
func NewWebhookHandler(processor UpdateProcessor, secret string, background bool) *WebhookHandler {
	return &WebhookHandler{processor: processor, secret: secret, background: background}
}

// VerifySecret compares the header value in constant time.
func VerifySecret(expected, got string) bool {
	if expected == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}

func (h *WebhookHandler) Handle(c *gin.Context) {
	if !VerifySecret(h.secret, c.GetHeader(SecretTokenHeader)) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false})
		return
	}

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		logger.Warn("invalid webhook payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid update"})
		return
	}

	if h.background {
		h.processor.ProcessAsync(update)
	} else {
		h.processor.ProcessUpdate(c.Request.Context(), update)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
