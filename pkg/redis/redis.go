package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"trackademy/backend/config"
)

// ErrLockHeld 锁已被其他请求持有
var ErrLockHeld = errors.New("锁已被占用")

// Client Redis 客户端封装
// 用于考勤列表缓存、提交锁与接口限流；调用方持有 nil 时应降级运行
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}

// ── 考勤列表缓存 ──

const attendancePrefix = "attendance:list:"

func attendanceKey(courseID, date string) string {
	return attendancePrefix + courseID + ":" + date
}

// GetAttendance 读取缓存；未命中时 ok=false
func (c *Client) GetAttendance(ctx context.Context, courseID, date string, dst interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, attendanceKey(courseID, date)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// 缓存内容损坏时当作未命中并清理
		c.rdb.Del(ctx, attendanceKey(courseID, date))
		return false, nil
	}
	return true, nil
}

// SetAttendance 写入缓存
func (c *Client) SetAttendance(ctx context.Context, courseID, date string, v interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, attendanceKey(courseID, date), raw, ttl).Err()
}

// InvalidateAttendance 成功写入后失效 (课程, 日期) 的缓存
func (c *Client) InvalidateAttendance(ctx context.Context, courseID, date string) error {
	return c.rdb.Del(ctx, attendanceKey(courseID, date)).Err()
}

// ── 分布式锁 ──

const lockPrefix = "attendance:lock:"

// 仅当值匹配时删除，避免释放他人持有的锁
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// AcquireLock 获取锁；已被占用时返回 ErrLockHeld
// 返回的 release 函数可重复调用
func (c *Client) AcquireLock(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	key := lockPrefix + name
	token := uuid.New().String()

	ok, err := c.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}

	release := func() {
		// 请求上下文可能已取消，释放使用独立超时
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, c.rdb, []string{key}, token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
			c.logger.Warn("释放锁失败", zap.String("key", key), zap.Error(err))
		}
	}
	return release, nil
}

// ── 限流 ──

// CheckRateLimit 滑动窗口限流：窗口内请求数未超过 limit 时返回 true
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	member := strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.New().String()[:8]
	minScore := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", minScore)
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: member})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return count.Val() <= int64(limit), nil
}
