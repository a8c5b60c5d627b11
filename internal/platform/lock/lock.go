// Package lock はプロセス全体で共有するアドバイザリロック。
// 明示的に取得した処理同士だけを直列化する。
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

var ErrTimeout = errors.New("lock: wait timed out")

type Advisory struct {
	sem *semaphore.Weighted
}

func New() *Advisory {
	return &Advisory{sem: semaphore.NewWeighted(1)}
}

// Acquire は最大 wait だけ待ってロックを取る。
// 返す release は何度呼んでもよい（defer 前提）。
func (l *Advisory) Acquire(ctx context.Context, wait time.Duration) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrTimeout
	}

	var once sync.Once
	return func() { once.Do(func() { l.sem.Release(1) }) }, nil
}

// TryAcquire は待たずに取得を試みる。
func (l *Advisory) TryAcquire() (func(), bool) {
	if !l.sem.TryAcquire(1) {
		return nil, false
	}
	var once sync.Once
	return func() { once.Do(func() { l.sem.Release(1) }) }, true
}
