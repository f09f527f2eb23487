package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"trackademy/backend/config"
	"trackademy/backend/internal/api/handler"
	"trackademy/backend/internal/api/middleware"
	"trackademy/backend/pkg/jwt"
	"trackademy/backend/pkg/redis"
)

const (
	importPath = "/api/v1/attendance/import"
	// multipart 边界与表单字段的余量，文件本身的上限由处理器判定
	multipartOverhead = 64 << 10
)

// Setup 初始化并返回 Gin 路由引擎
// db、rdb 可为 nil：健康检查跳过数据库探测，限流降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	// 只有 xlsx 导入使用上传上限，其余接口沿用全局上限
	var uploadLimit int64
	if cfg.Attendance.MaxUploadBytes > 0 {
		uploadLimit = cfg.Attendance.MaxUploadBytes + multipartOverhead
	}
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes, map[string]int64{importPath: uploadLimit}))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				logger.Warn("健康检查：数据库不可用", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	writeLimit := middleware.RateLimit(rdb, cfg.Attendance.WriteRateLimit, cfg.Attendance.WriteRateWindow)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr))
	v1.Use(middleware.RoleAuth(jwt.RoleFaculty, jwt.RoleAdmin))
	{
		// 课程模块（级联筛选数据源）
		courses := v1.Group("/courses")
		{
			courses.GET("", h.Course.List)
			courses.GET("/filters", h.Course.Filters)
			courses.GET("/:id/students", h.Course.Roster)
		}

		// 考勤模块
		att := v1.Group("/attendance")
		{
			att.GET("", h.Attendance.List)
			att.GET("/draft", h.Attendance.Draft)
			att.GET("/template", h.Attendance.Template)
			att.POST("/bulk", writeLimit, h.Attendance.Submit)
			att.POST("/import", writeLimit, h.Attendance.Import)
		}

		// 作业模块
		assignments := v1.Group("/assignments")
		{
			assignments.GET("", h.Assignment.List)
			assignments.POST("", writeLimit, h.Assignment.Create)
		}
	}

	return r
}
