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

// Package runner provides the lifecycle shared by every runnable component:
// routers, blocks, services and the diagnostic manager.
//
// A Runner wraps three overridable hooks with status transitions:
//
//	DoConfigure: configuring -> Configure(ctx) -> configured
//	DoStart:     starting    -> Start()        -> started
//	DoStop:      stopping    -> Stop()         -> stopped
//
// A failing DoConfigure or DoStart logs the error, adds the `error` flag while keeping the
// in-progress flag, and returns the error. DoStop never returns an error: a failure is logged
// and flagged and shutdown is considered complete. Transitions of one Runner are serialized.
package runner

import (
	"sync"

	"github.com/go-logr/logr"
	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/utils/runtime"
)

// Hooks 生命周期钩子，由嵌入Runner的类型实现
type Hooks[C any] interface {
	Configure(ctx C) error
	Start() error
	Stop() error
}

// NopHooks 空钩子，嵌入后只需覆盖需要的方法
type NopHooks[C any] struct{}

func (NopHooks[C]) Configure(ctx C) error { return nil }

func (NopHooks[C]) Start() error { return nil }

func (NopHooks[C]) Stop() error { return nil }

// Runner 生命周期状态机
type Runner[C any] struct {
	name   string
	hooks  Hooks[C]
	logger logr.Logger
	status *types.Status
	// 串行化生命周期转换
	lifecycle sync.Mutex
	mu        sync.RWMutex
}

// New 创建Runner，初始状态为created
func New[C any](name string, hooks Hooks[C], logger logr.Logger) *Runner[C] {
	if hooks == nil {
		hooks = NopHooks[C]{}
	}
	if logger.GetSink() == nil {
		logger = types.DefaultLogger()
	}
	return &Runner[C]{
		name:   name,
		hooks:  hooks,
		logger: logger,
		status: types.NewStatus(),
	}
}

// Name 名称，用于日志
func (r *Runner[C]) Name() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.name
}

// SetName 修改名称
func (r *Runner[C]) SetName(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.name = name
}

// Logger 日志记录器
func (r *Runner[C]) Logger() logr.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logger
}

// SetLogger 修改日志记录器
func (r *Runner[C]) SetLogger(logger logr.Logger) {
	if logger.GetSink() == nil {
		logger = types.DefaultLogger()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Status 当前状态快照
func (r *Runner[C]) Status() types.RunnerStatus {
	return r.status.Get()
}

// StatusHolder 可修改和订阅的状态对象
func (r *Runner[C]) StatusHolder() *types.Status {
	return r.status
}

// DoConfigure 配置
func (r *Runner[C]) DoConfigure(ctx C) error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()
	r.status.Set(types.Configuring)
	if err := r.invoke("configure", func() error { return r.hooks.Configure(ctx) }); err != nil {
		r.fail("configure", err)
		return err
	}
	r.status.Set(types.Configured)
	return nil
}

// DoStart 启动
func (r *Runner[C]) DoStart() error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()
	r.status.Set(types.Starting)
	if err := r.invoke("start", r.hooks.Start); err != nil {
		r.fail("start", err)
		return err
	}
	r.status.Set(types.Started)
	return nil
}

// DoStop 停止，已经停止或者正在停止则忽略
func (r *Runner[C]) DoStop() {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()
	current := r.status.Get()
	if current.IsSet(types.Stopped) || current.IsSet(types.Stopping) {
		return
	}
	r.status.Set(types.Stopping)
	if err := r.invoke("stop", r.hooks.Stop); err != nil {
		r.fail("stop", err)
		return
	}
	r.status.Set(types.Stopped)
}

func (r *Runner[C]) fail(phase string, err error) {
	logger := r.Logger()
	if panicErr, ok := err.(*runtime.PanicErr); ok {
		logger.Error(err, "lifecycle hook panicked", "name", r.Name(), "phase", phase, "stack", panicErr.Stack)
	} else {
		logger.Error(err, "lifecycle hook failed", "name", r.Name(), "phase", phase)
	}
	r.status.Add(types.Error)
}

func (r *Runner[C]) invoke(phase string, hook func() error) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = runtime.PanicError(phase, e)
		}
	}()
	return hook()
}
