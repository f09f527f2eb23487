package service

import (
	"context"
	"sync"
	"time"

	"trackademy/backend/pkg/redis"
)

// LocalLocker 进程内锁，Redis 不可用时替代分布式锁
// 仅保证单实例内的互斥；ttl 到期后锁自动失效
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]uint64
	seq  uint64
}

// NewLocalLocker 创建进程内锁
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]uint64)}
}

// AcquireLock 获取锁；已被占用时返回 redis.ErrLockHeld
func (l *LocalLocker) AcquireLock(_ context.Context, name string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[name]; ok {
		return nil, redis.ErrLockHeld
	}
	l.seq++
	token := l.seq
	l.held[name] = token

	unlock := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[name] == token {
			delete(l.held, name)
		}
	}
	t := time.AfterFunc(ttl, unlock)

	return func() {
		t.Stop()
		unlock()
	}, nil
}
