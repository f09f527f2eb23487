package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"trackademy/backend/pkg/response"
)

// BodyLimit 请求体大小限制
//
// defaultBytes 为所有路由的上限；routeLimits 以路由模板（c.FullPath()，
// 如 /api/v1/attendance/import）为键单独放宽或收紧。上限 <= 0 表示不限制。
func BodyLimit(defaultBytes int64, routeLimits map[string]int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultBytes
		if l, ok := routeLimits[c.FullPath()]; ok {
			limit = l
		}
		if limit <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		if c.Request.ContentLength > limit {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

		c.Next()

		if c.IsAborted() || c.Writer.Written() {
			return
		}
		for _, e := range c.Errors {
			var tooLarge *http.MaxBytesError
			if errors.As(e.Err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
				return
			}
		}
	}
}
