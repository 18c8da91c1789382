package usecase

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	t.Parallel()

	locks := NewKeyedMutex()
	var inside int32
	var maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("lg-1::3::alice")
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			for {
				cur := atomic.LoadInt32(&maxInside)
				if n <= cur || atomic.CompareAndSwapInt32(&maxInside, cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&maxInside); got != 1 {
		t.Fatalf("expected at most one holder, saw %d", got)
	}
	if size := locks.size(); size != 0 {
		t.Fatalf("expected lock table to drain, got %d entries", size)
	}
}

func TestKeyedMutex_TryLock(t *testing.T) {
	t.Parallel()

	locks := NewKeyedMutex()
	unlock, ok := locks.TryLock(scoreWeekLockKey("lg-1", 4))
	if !ok {
		t.Fatalf("expected first try lock to succeed")
	}
	if _, ok := locks.TryLock(scoreWeekLockKey("lg-1", 4)); ok {
		t.Fatalf("expected second try lock to fail while held")
	}
	other, ok := locks.TryLock(scoreWeekLockKey("lg-1", 5))
	if !ok {
		t.Fatalf("expected a different week to lock independently")
	}
	other()
	unlock()

	again, ok := locks.TryLock(scoreWeekLockKey("lg-1", 4))
	if !ok {
		t.Fatalf("expected try lock after release to succeed")
	}
	again()
}
