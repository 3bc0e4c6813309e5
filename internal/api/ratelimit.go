package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v9"
	log "github.com/sirupsen/logrus"
)

// RequestRateLimiter is satisfied by *redis_rate.Limiter.
type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit limits requests per client IP and route group. A nil limiter
// lets everything through.
func RateLimit(rateLimiter RequestRateLimiter, routerName string, allowedPerMin int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rateLimiter == nil || allowedPerMin <= 0 {
			c.Next()
			return
		}

		res, err := rateLimiter.Allow(
			c.Request.Context(),
			routerName+":"+c.ClientIP(),
			redis_rate.PerMinute(allowedPerMin),
		)
		if err != nil {
			log.WithError(err).WithField("router", routerName).Error("rate limit check failed")
			abortWithError(c, http.StatusInternalServerError, "rate limit internal error")
			return
		}
		if res.Allowed > 0 {
			c.Next()
			return
		}

		c.Header("Retry-After", fmt.Sprintf("%.0f", res.RetryAfter.Seconds()))
		abortWithError(c, http.StatusTooManyRequests, fmt.Sprintf("retry after %.0f seconds", res.RetryAfter.Seconds()))
	}
}
