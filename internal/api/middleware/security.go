package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders 纯 JSON / 文件下载接口的安全响应头
//
// 接口不返回页面，CSP 一律拒绝；考勤与名单含学生信息，禁止任何缓存。
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		c.Next()
	}
}
