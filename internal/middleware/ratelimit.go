package middleware

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// OperationRateLimit caps balance-mutation requests per wallet per minute
// using a Redis fixed window. Fails open when Redis is absent or erroring.
func OperationRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 30
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}

		walletID := c.Params("walletId")
		if walletID == "" {
			walletID = c.IP()
		}
		key := "rl:operation:" + walletID

		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many operations for this wallet, try again later")
		}
		return c.Next()
	}
}
