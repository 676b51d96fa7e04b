package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ravshanbk/asset-reservation/internal/config"
)

// cacheWriter captures the response body while forwarding it to the
// client, bounded by the configured size limit.
type cacheWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *cacheWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *cacheWriter) Write(b []byte) (int, error) {
	if remain := cw.limit - cw.size; remain > 0 {
		if int64(len(b)) <= remain {
			cw.buf.Write(b)
		} else {
			cw.buf.Write(b[:remain])
		}
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

func cacheKey(prefix string, c echo.Context) string {
	sum := sha1.Sum([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
	return fmt.Sprintf("%s:%x", prefix, sum)
}

// ResponseCache caches successful GET responses in Redis under a
// route+query key. Calendar and availability reads are the intended
// consumers; their data only changes on a booking commit and the TTL is
// short, so brief staleness is acceptable. A nil client or disabled
// config degrades to a passthrough.
func ResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			key := cacheKey(cfg.Prefix, c)
			rctx, cancel := context.WithTimeout(c.Request().Context(), 150*time.Millisecond)
			cached, err := rdb.Get(rctx, key).Bytes()
			cancel()
			if err == nil && len(cached) > 0 {
				return c.JSONBlob(http.StatusOK, cached)
			}

			cw := &cacheWriter{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          int64(cfg.MaxBodyBytes),
			}
			c.Response().Writer = cw
			if err := next(c); err != nil {
				return err
			}
			if cw.status == http.StatusOK && cw.size <= cw.limit {
				sctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
				_ = rdb.Set(sctx, key, cw.buf.Bytes(), ttl).Err()
				cancel()
			}
			return nil
		}
	}
}
