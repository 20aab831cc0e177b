/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package pool provides the bounded worker pool behind the pooled delivery strategy.
//
// Note: the worker management is inspired by:
// Valyala, A. (2023) workerpool.go (Version 1.48.0)
// [Source code]. https://github.com/valyala/fasthttp/blob/master/workerpool.go
// 1.Change the Serve(c net.Conn) method to Submit(fn func()) error method
// 2.Queue tasks when every worker is busy instead of rejecting them
package pool

import (
	"errors"
	"runtime"
	"sync"
	"time"
)

var (
	// ErrPoolStopped is returned by Submit after Stop.
	ErrPoolStopped = errors.New("worker pool stopped")
	// ErrPoolNotStarted is returned by Submit before Start.
	ErrPoolNotStarted = errors.New("worker pool not started")
	// ErrNilTask is returned when submitting a nil function.
	ErrNilTask = errors.New("nil task")
)

// WorkerPool serves submitted functions using at most MaxWorkersCount goroutines.
// Idle workers are reused in FILO order, which keeps CPU caches hot.
// When every worker is busy the function is queued and served in FIFO order by the
// next worker that finishes, so Submit never blocks and never rejects a running pool.
//
// 使用示例：
//
//	wp := &WorkerPool{MaxWorkersCount: 50}
//	wp.Start()
//	defer wp.Stop()
//	_ = wp.Submit(func() {})
type WorkerPool struct {
	// MaxWorkersCount 最大协程数，<=0 表示不限制
	MaxWorkersCount int
	// MaxIdleWorkerDuration 空闲协程回收时间，默认10秒
	MaxIdleWorkerDuration time.Duration
	// PanicHandler 任务panic时调用，为空则忽略
	PanicHandler func(v interface{})

	lock         sync.Mutex
	workersCount int
	started      bool
	mustStop     bool
	ready        []*workerChan
	queue        []func()

	stopCh         chan struct{}
	workerChanPool sync.Pool
	startOnce      sync.Once
}

type workerChan struct {
	lastUseTime time.Time
	ch          chan func()
}

// Start 启动协程池和空闲协程回收任务，可重复调用
func (wp *WorkerPool) Start() {
	wp.startOnce.Do(func() {
		wp.workerChanPool.New = func() interface{} {
			return &workerChan{
				ch: make(chan func(), workerChanCap),
			}
		}
		stopCh := make(chan struct{})
		wp.lock.Lock()
		wp.stopCh = stopCh
		wp.started = true
		wp.lock.Unlock()

		go func() {
			var scratch []*workerChan
			ticker := time.NewTicker(wp.getMaxIdleWorkerDuration())
			defer ticker.Stop()
			for {
				select {
				case <-stopCh:
					return
				case <-ticker.C:
					wp.clean(&scratch)
				}
			}
		}()
	})
}

// Stop 停止接收新任务并结束空闲协程
// 忙碌的协程执行完队列中剩余的任务后退出，Stop不等待它们
func (wp *WorkerPool) Stop() {
	wp.lock.Lock()
	if !wp.started || wp.mustStop {
		wp.lock.Unlock()
		return
	}
	wp.mustStop = true
	close(wp.stopCh)
	ready := wp.ready
	wp.ready = nil
	wp.lock.Unlock()

	for i := range ready {
		ready[i].ch <- nil
		ready[i] = nil
	}
}

// Release Stop的别名
func (wp *WorkerPool) Release() {
	wp.Stop()
}

// Submit 提交任务
// 有空闲协程则交给它执行，未达到上限则创建新协程，否则进入等待队列
func (wp *WorkerPool) Submit(fn func()) error {
	if fn == nil {
		return ErrNilTask
	}
	wp.lock.Lock()
	if !wp.started {
		wp.lock.Unlock()
		return ErrPoolNotStarted
	}
	if wp.mustStop {
		wp.lock.Unlock()
		return ErrPoolStopped
	}
	var ch *workerChan
	if n := len(wp.ready) - 1; n >= 0 {
		ch = wp.ready[n]
		wp.ready[n] = nil
		wp.ready = wp.ready[:n]
	} else if wp.MaxWorkersCount <= 0 || wp.workersCount < wp.MaxWorkersCount {
		wp.workersCount++
	} else {
		wp.queue = append(wp.queue, fn)
		wp.lock.Unlock()
		return nil
	}
	wp.lock.Unlock()

	if ch == nil {
		vch := wp.workerChanPool.Get()
		ch = vch.(*workerChan)
		go func() {
			wp.workerFunc(ch)
			wp.workerChanPool.Put(vch)
		}()
	}
	ch.ch <- fn
	return nil
}

// Running 当前协程数
func (wp *WorkerPool) Running() int {
	wp.lock.Lock()
	defer wp.lock.Unlock()
	return wp.workersCount
}

// Queued 等待队列长度
func (wp *WorkerPool) Queued() int {
	wp.lock.Lock()
	defer wp.lock.Unlock()
	return len(wp.queue)
}

func (wp *WorkerPool) getMaxIdleWorkerDuration() time.Duration {
	if wp.MaxIdleWorkerDuration <= 0 {
		return 10 * time.Second
	}
	return wp.MaxIdleWorkerDuration
}

// clean 回收空闲时间超过MaxIdleWorkerDuration的协程
// ready按最后使用时间升序，二分查找回收边界
func (wp *WorkerPool) clean(scratch *[]*workerChan) {
	criticalTime := time.Now().Add(-wp.getMaxIdleWorkerDuration())

	wp.lock.Lock()
	ready := wp.ready
	n := len(ready)
	l, r := 0, n-1
	for l <= r {
		mid := (l + r) / 2
		if criticalTime.After(ready[mid].lastUseTime) {
			l = mid + 1
		} else {
			r = mid - 1
		}
	}
	if r == -1 {
		wp.lock.Unlock()
		return
	}
	*scratch = append((*scratch)[:0], ready[:r+1]...)
	m := copy(ready, ready[r+1:])
	for i := m; i < n; i++ {
		ready[i] = nil
	}
	wp.ready = ready[:m]
	wp.lock.Unlock()

	// 在锁外通知，ch.ch可能阻塞
	tmp := *scratch
	for i := range tmp {
		tmp[i].ch <- nil
		tmp[i] = nil
	}
}

// workerChanCap GOMAXPROCS=1 时使用阻塞通道
var workerChanCap = func() int {
	if runtime.GOMAXPROCS(0) == 1 {
		return 0
	}
	return 1
}()

// release 优先取出队列中的任务；队列为空时把协程放回ready，停止后返回false
func (wp *WorkerPool) release(ch *workerChan) (func(), bool) {
	ch.lastUseTime = time.Now()
	wp.lock.Lock()
	defer wp.lock.Unlock()
	if len(wp.queue) > 0 {
		next := wp.queue[0]
		wp.queue[0] = nil
		wp.queue = wp.queue[1:]
		return next, true
	}
	if wp.mustStop {
		return nil, false
	}
	wp.ready = append(wp.ready, ch)
	return nil, true
}

func (wp *WorkerPool) workerFunc(ch *workerChan) {
	defer func() {
		wp.lock.Lock()
		wp.workersCount--
		wp.lock.Unlock()
	}()
	for fn := range ch.ch {
		if fn == nil {
			return
		}
		for fn != nil {
			wp.run(fn)
			var ok bool
			if fn, ok = wp.release(ch); !ok {
				return
			}
		}
	}
}

func (wp *WorkerPool) run(fn func()) {
	defer func() {
		if e := recover(); e != nil && wp.PanicHandler != nil {
			wp.PanicHandler(e)
		}
	}()
	fn()
}
