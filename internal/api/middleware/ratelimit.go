package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/spservicesgroupinc-blip/custodyx/internal/utils"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	Redis *utils.RedisClient

	// Default rate limits
	DefaultLimit rate.Limit
	DefaultBurst int

	// Endpoint-specific limits
	EndpointLimits map[string]EndpointLimit
}

// EndpointLimit defines rate limits for specific endpoints
type EndpointLimit struct {
	Limit  rate.Limit
	Burst  int
	Window time.Duration
}

// Default rate limit configurations
var defaultEndpointLimits = map[string]EndpointLimit{
	// Authentication endpoints - stricter limits
	"POST:/api/v1/auth/login": {
		Limit:  10.0 / 60.0, // 10 requests per minute
		Burst:  5,
		Window: time.Minute,
	},
	"POST:/api/v1/auth/signup": {
		Limit:  5.0 / 3600.0, // 5 requests per hour
		Burst:  2,
		Window: time.Hour,
	},

	// Collaborator-backed endpoints burn tokens, keep them tight
	"POST:/api/v1/assistant/chat": {
		Limit:  20.0 / 60.0, // 20 requests per minute
		Burst:  10,
		Window: time.Minute,
	},
	"POST:/api/v1/messages/analysis": {
		Limit:  10.0 / 60.0, // 10 requests per minute
		Burst:  5,
		Window: time.Minute,
	},
	"POST:/api/v1/exports/evidence": {
		Limit:  5.0 / 60.0, // 5 requests per minute
		Burst:  2,
		Window: time.Minute,
	},

	// Messaging - moderate limits
	"POST:/api/v1/messages": {
		Limit:  60.0 / 60.0, // 60 requests per minute
		Burst:  30,
		Window: time.Minute,
	},
}

// RateLimiter creates a new rate limiting middleware backed by a Redis
// fixed window counter per client and endpoint.
func RateLimiter(config RateLimitConfig) echo.MiddlewareFunc {
	if config.DefaultLimit == 0 {
		config.DefaultLimit = 120.0 / 60.0 // 120 requests per minute
	}
	if config.DefaultBurst == 0 {
		config.DefaultBurst = 60
	}
	if config.EndpointLimits == nil {
		config.EndpointLimits = defaultEndpointLimits
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			clientID := getClientID(c)
			endpointKey := getEndpointKey(c)
			limitConfig := getLimitConfig(endpointKey, config)

			limit := int(float64(limitConfig.Limit) * limitConfig.Window.Seconds())

			key := config.Redis.GetRateLimitKey(clientID, endpointKey)
			count, err := config.Redis.IncrementRateLimit(c.Request().Context(), key, limitConfig.Window)
			if err != nil {
				// Redis down, let the request through
				return next(c)
			}

			remaining := limit - count
			if remaining < 0 {
				remaining = 0
			}
			reset := time.Now().Add(limitConfig.Window)
			setRateLimitHeaders(c, limit, remaining, reset)

			if count > limit {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":       "rate_limit_exceeded",
					"message":     "Rate limit exceeded. Try again later.",
					"retry_after": int(limitConfig.Window.Seconds()),
					"limit":       limit,
					"window":      limitConfig.Window.Seconds(),
				})
			}

			return next(c)
		}
	}
}

// getClientID returns a unique identifier for the client
func getClientID(c echo.Context) string {
	if userID := GetUserID(c); userID != "" {
		return fmt.Sprintf("user:%s", userID)
	}
	return fmt.Sprintf("ip:%s", getClientIP(c))
}

// getClientIP returns the client's IP address
func getClientIP(c echo.Context) string {
	if forwardedFor := c.Request().Header.Get("X-Forwarded-For"); forwardedFor != "" {
		ips := strings.Split(forwardedFor, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if realIP := c.Request().Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	return c.RealIP()
}

// getEndpointKey returns a unique key for the endpoint
func getEndpointKey(c echo.Context) string {
	return fmt.Sprintf("%s:%s", c.Request().Method, c.Path())
}

// getLimitConfig returns the rate limit configuration for an endpoint
func getLimitConfig(endpointKey string, config RateLimitConfig) EndpointLimit {
	if limit, exists := config.EndpointLimits[endpointKey]; exists {
		return limit
	}

	return EndpointLimit{
		Limit:  config.DefaultLimit,
		Burst:  config.DefaultBurst,
		Window: time.Minute,
	}
}

// setRateLimitHeaders sets rate limit headers in the response
func setRateLimitHeaders(c echo.Context, limit, remaining int, reset time.Time) {
	c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Response().Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
}
