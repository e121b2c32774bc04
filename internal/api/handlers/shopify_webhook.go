package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/config"
	"github.com/labelprint/orderexport/internal/service"
	"github.com/labelprint/orderexport/pkg/errors"
)

// WebhookObserver receives webhook outcomes
type WebhookObserver interface {
	WebhookReceived(topic, result string)
}

func verifyShopifyHMAC(secret string, body []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	// constant-time compare
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(header)))
}

// HandleShopifyOrderWebhook handles POST /webhooks/shopify/orders.
// Configure Shopify webhook topics:
// - orders/create
// - orders/updated
// - orders/paid (acknowledged, no change)
func HandleShopifyOrderWebhook(cfg *config.Config, svc *service.WebhookService, observer WebhookObserver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		topic := strings.TrimSpace(c.GetHeader("X-Shopify-Topic"))

		secret := strings.TrimSpace(cfg.ShopifyWebhookSecret)
		if secret == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shopify webhook not configured"})
			return
		}

		// Read raw body (Shopify HMAC is computed over raw bytes)
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
			return
		}

		hmacHeader := c.GetHeader("X-Shopify-Hmac-Sha256")
		if !verifyShopifyHMAC(secret, bodyBytes, hmacHeader) {
			observe(observer, topic, "unauthorized")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook signature"})
			return
		}

		result, err := svc.Handle(c.Request.Context(), topic, bodyBytes)
		if err != nil {
			var notFound *errors.ErrNotFound
			if stderrors.As(err, &notFound) {
				observe(observer, topic, "unknown_topic")
				c.JSON(http.StatusNotFound, gin.H{"error": "unhandled webhook topic", "topic": topic})
				return
			}
			var validation *errors.ErrValidation
			if stderrors.As(err, &validation) {
				observe(observer, topic, "invalid")
				c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
				return
			}
			observe(observer, topic, "error")
			logger.Error("Shopify webhook: failed to process", zap.String("topic", topic), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process webhook"})
			return
		}

		observe(observer, topic, result)
		c.JSON(http.StatusOK, gin.H{
			"ok":     true,
			"status": result,
			"topic":  topic,
		})
	}
}

func observe(observer WebhookObserver, topic, result string) {
	if observer != nil {
		observer.WebhookReceived(topic, result)
	}
}
