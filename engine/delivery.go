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

package engine

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/utils/pool"
)

// Delivery 投递策略，决定每次接收者投递在哪个协程执行
type Delivery interface {
	// Mode 策略名称：sync、goroutine、pool
	Mode() string
	// Configure 应用路由设置
	Configure(settings types.RouterSettings) error
	// Start 启动策略需要的资源
	Start() error
	// Stop 释放资源，已经派发的投递继续执行
	Stop()
	// Dispatch 执行一次投递
	Dispatch(task func()) error
}

var (
	_ Delivery = (*SyncDelivery)(nil)
	_ Delivery = (*GoroutineDelivery)(nil)
	_ Delivery = (*PoolDelivery)(nil)
)

// NewDelivery 根据模式创建投递策略，空字符串为pool
func NewDelivery(mode string) (Delivery, error) {
	switch mode {
	case types.RouterModeSync:
		return &SyncDelivery{}, nil
	case types.RouterModeGoroutine:
		return &GoroutineDelivery{}, nil
	case types.RouterModePool, "":
		return &PoolDelivery{}, nil
	default:
		return nil, fmt.Errorf("unknown router mode: %s", mode)
	}
}

// SyncDelivery 在调用者协程内投递，NotifySignals返回时所有接收者都已执行
type SyncDelivery struct{}

func (d *SyncDelivery) Mode() string { return types.RouterModeSync }

func (d *SyncDelivery) Configure(settings types.RouterSettings) error { return nil }

func (d *SyncDelivery) Start() error { return nil }

func (d *SyncDelivery) Stop() {}

func (d *SyncDelivery) Dispatch(task func()) error {
	task()
	return nil
}

// GoroutineDelivery 每次投递启动一个新协程，立即返回
// 协程数量没有上限，需要限制并发时使用PoolDelivery
type GoroutineDelivery struct{}

func (d *GoroutineDelivery) Mode() string { return types.RouterModeGoroutine }

func (d *GoroutineDelivery) Configure(settings types.RouterSettings) error { return nil }

func (d *GoroutineDelivery) Start() error { return nil }

func (d *GoroutineDelivery) Stop() {}

func (d *GoroutineDelivery) Dispatch(task func()) error {
	go task()
	return nil
}

// PoolDelivery 提交到有界协程池，最多MaxWorkers个投递同时执行
type PoolDelivery struct {
	// Logger 记录协程池里未恢复的panic
	Logger     logr.Logger
	maxWorkers int
	pool       *pool.WorkerPool
}

func (d *PoolDelivery) Mode() string { return types.RouterModePool }

func (d *PoolDelivery) Configure(settings types.RouterSettings) error {
	d.maxWorkers = settings.MaxWorkers
	if d.maxWorkers <= 0 {
		d.maxWorkers = types.DefaultMaxWorkers
	}
	return nil
}

// MaxWorkers 协程池大小
func (d *PoolDelivery) MaxWorkers() int {
	return d.maxWorkers
}

func (d *PoolDelivery) Start() error {
	if d.maxWorkers <= 0 {
		d.maxWorkers = types.DefaultMaxWorkers
	}
	wp := &pool.WorkerPool{
		MaxWorkersCount: d.maxWorkers,
		PanicHandler: func(v interface{}) {
			d.Logger.Error(fmt.Errorf("%v", v), "delivery task panicked")
		},
	}
	wp.Start()
	d.pool = wp
	return nil
}

func (d *PoolDelivery) Stop() {
	if d.pool != nil {
		d.pool.Stop()
	}
}

func (d *PoolDelivery) Dispatch(task func()) error {
	if d.pool == nil {
		return pool.ErrPoolNotStarted
	}
	return d.pool.Submit(task)
}
