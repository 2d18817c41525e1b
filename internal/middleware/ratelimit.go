package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimitMiddleware enforces a per-second and per-day request budget
// keyed on the caller's IP, backed by Redis counters whose TTL runs a
// little past the window they bound (2s for a second, 25h for a day).
func RateLimitMiddleware(rdb *redis.Client, perSecond, perDay int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := context.Background()
		now := time.Now()
		ip := c.IP()

		keySecond := fmt.Sprintf("rl:%s:second:%d", ip, now.Unix())
		keyDay := fmt.Sprintf("rl:%s:day:%s", ip, now.Format("2006-01-02"))

		if perSecond > 0 {
			count, err := rdb.Incr(ctx, keySecond).Result()
			if err == nil {
				rdb.Expire(ctx, keySecond, 2*time.Second)
				if count > int64(perSecond) {
					c.Set("Retry-After", "1")
					return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
						"error_message": "too many requests per second",
					})
				}
			}
		}

		if perDay > 0 {
			count, err := rdb.Incr(ctx, keyDay).Result()
			if err == nil {
				rdb.Expire(ctx, keyDay, 25*time.Hour)
				if count > int64(perDay) {
					tomorrow := now.AddDate(0, 0, 1)
					midnight := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, tomorrow.Location())
					c.Set("Retry-After", strconv.FormatInt(int64(midnight.Sub(now).Seconds()), 10))
					return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
						"error_message": "daily request quota exceeded",
					})
				}
				c.Set("X-RateLimit-Remaining-Day", strconv.FormatInt(int64(perDay)-count, 10))
			}
		}

		return c.Next()
	}
}
