package fsx

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// DefaultLockTimeout 是等待同一路径写锁的上限。
const DefaultLockTimeout = 30 * time.Second

const lockRetryDelay = 20 * time.Millisecond

// LockError 表示没能在超时内拿到路径锁，或锁文件本身不可用。
type LockError struct {
	Path string
	Err  error
}

func (e *LockError) Error() string {
	return fmt.Sprintf("获取写锁失败：%q：%v", e.Path, e.Err)
}

func (e *LockError) Unwrap() error { return e.Err }

// IsLockError 判断 err 是否为 LockError。
func IsLockError(err error) bool {
	var e *LockError
	return errors.As(err, &e)
}

// Locker 串行化同一输出路径上的“读 -> 合并 -> 写”。
//
// 两层：
// - 进程内：每个路径一个容量为 1 的 channel
// - 跨进程：dir 非空时，在 dir 下对 sha1(path).lock 加 flock
//
// 约束：等待有上限（timeout），超时返回 LockError，不会无限阻塞。
type Locker struct {
	dir     string
	timeout time.Duration

	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocker 创建 Locker；dir 为空表示只做进程内互斥，timeout<=0 使用默认值。
func NewLocker(dir string, timeout time.Duration) *Locker {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	return &Locker{dir: dir, timeout: timeout, slots: map[string]*slot{}}
}

// Lock 获取 path 的写锁，返回的 unlock 必须调用且只调用一次。
func (l *Locker) Lock(path string) (unlock func(), err error) {
	key := filepath.Clean(path)
	deadline := time.Now().Add(l.timeout)

	s := l.ref(key)
	timer := time.NewTimer(l.timeout)
	defer timer.Stop()
	select {
	case s.ch <- struct{}{}:
	case <-timer.C:
		l.unref(key)
		return nil, &LockError{Path: key, Err: context.DeadlineExceeded}
	}

	var fl *flock.Flock
	if l.dir != "" {
		fl, err = l.fileLock(key, deadline)
		if err != nil {
			<-s.ch
			l.unref(key)
			return nil, &LockError{Path: key, Err: err}
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if fl != nil {
				_ = fl.Unlock()
			}
			<-s.ch
			l.unref(key)
		})
	}, nil
}

func (l *Locker) fileLock(key string, deadline time.Time) (*flock.Flock, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return nil, err
	}
	fl := flock.New(filepath.Join(l.dir, LockFileName(key)))
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()
	ok, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, context.DeadlineExceeded
	}
	return fl, nil
}

// LockFileName 返回 path 对应的锁文件名（不含目录）。
func LockFileName(path string) string {
	sum := sha1.Sum([]byte(filepath.Clean(path)))
	return hex.EncodeToString(sum[:]) + ".lock"
}

func (l *Locker) ref(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *Locker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.slots[key]
	if s == nil {
		return
	}
	s.refs--
	if s.refs <= 0 {
		delete(l.slots, key)
	}
}
