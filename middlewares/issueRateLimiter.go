package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const issueLimitPrefix = "issue-limit"

// IssueRateLimiter caps how many issues an account may create per window.
// Runs after AuthMiddleware; counts live in redis with a TTL.
func IssueRateLimiter(rdb *redis.Client, log *zap.Logger, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		userKey := issueLimitPrefix + ":" + identity.AccountID.Hex()

		count, err := rdb.Incr(ctx, userKey).Result()
		if err != nil {
			log.Error("redis error incrementing issue count", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "rate limiter unavailable"})
			c.Abort()
			return
		}

		// Set TTL only for the first increment (when count = 1)
		if count == 1 {
			if err := rdb.Expire(ctx, userKey, window).Err(); err != nil {
				log.Error("redis error setting TTL", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "rate limiter unavailable"})
				c.Abort()
				return
			}
		}

		if count > int64(limit) {
			retryAfter, _ := rdb.TTL(ctx, userKey).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
