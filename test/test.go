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

package test

import (
	"sync"

	"github.com/rulego/sigflow/api/types"
)

// Notification 一次NotifySignals调用
type Notification struct {
	Block    string
	OutputId string
	Signals  []*types.Signal
}

// TestRouter
// 只为测试单个块，临时创建的路由
// 不做任何投递，记录块发出的信号和管理信号
// callback 每次NotifySignals时回调，可以为nil
type TestRouter struct {
	callback      func(n Notification)
	err           error
	notifications []Notification
	management    []types.ManagementSignal
	mu            sync.Mutex
}

var _ types.BlockRouter = (*TestRouter)(nil)

// NewTestRouter 创建测试路由
func NewTestRouter(callback func(n Notification)) *TestRouter {
	return &TestRouter{callback: callback}
}

// FailWith 之后的NotifySignals都返回err
func (r *TestRouter) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *TestRouter) NotifySignals(block types.Block, signals []*types.Signal, outputId string) error {
	if outputId == "" {
		if id, ok := block.DefaultOutput(); ok {
			outputId = id
		}
	}
	n := Notification{Block: block.Name(), OutputId: outputId, Signals: signals}
	r.mu.Lock()
	if r.err != nil {
		err := r.err
		r.mu.Unlock()
		return err
	}
	r.notifications = append(r.notifications, n)
	r.mu.Unlock()
	if r.callback != nil {
		r.callback(n)
	}
	return nil
}

func (r *TestRouter) NotifyManagementSignal(block types.Block, signal types.ManagementSignal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.management = append(r.management, signal)
}

// Notifications 已记录的信号通知
func (r *TestRouter) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}

// ManagementSignals 已记录的管理信号
func (r *TestRouter) ManagementSignals() []types.ManagementSignal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.ManagementSignal(nil), r.management...)
}
