package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeremiapane/venue-ops/utils"
)

// PaymentRateLimiter membatasi endpoint money-moving (invoice &
// payment) supaya submit ganda karena klik berulang tertahan di sini
// juga, bukan hanya di guard coordinator.
func PaymentRateLimiter() gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Every(time.Second), 10)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(429, gin.H{
				"error":   "Too many requests",
				"message": "Please wait before submitting another payment",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// LogPaymentRequest mencatat setiap request money-moving; kegagalan
// operasi uang tidak boleh silent.
func LogPaymentRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		if status >= 400 {
			utils.ErrorLogger.Printf(
				"Payment request failed - Method: %s, Path: %s, Status: %d, Duration: %v",
				method, path, status, duration,
			)
			return
		}
		utils.InfoLogger.Printf(
			"Payment request - Method: %s, Path: %s, Status: %d, Duration: %v",
			method, path, status, duration,
		)
	}
}
