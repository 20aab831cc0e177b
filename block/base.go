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

// Package block provides Base, the embeddable implementation of a block:
// name, terminal declarations, lifecycle and router hook-up.
//
// A concrete block embeds *Base, declares its terminals on a terminal.Type derived from
// Terminals, implements one of the delivery entry points and overrides the lifecycle
// hooks it needs:
//
//	var UpperTerminals = terminal.MustNewType("upper", block.Terminals)
//
//	type Upper struct {
//		*block.Base
//	}
//
//	func NewUpper() *Upper {
//		b := &Upper{}
//		b.Base = block.NewBase(b, UpperTerminals)
//		return b
//	}
//
//	func (b *Upper) New() types.Component { return NewUpper() }
//
//	func (b *Upper) ProcessSignals(signals []*types.Signal) error {
//		return b.NotifySignals(signals, "")
//	}
package block

import (
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/runner"
	"github.com/rulego/sigflow/terminal"
)

// Terminals 所有块类型的根端口声明：一个默认输入端口和一个默认输出端口
var Terminals = terminal.MustNewType("block", nil,
	terminal.NewInput(terminal.DefaultTerminal, terminal.AsDefault(), terminal.Hidden()),
	terminal.NewOutput(terminal.DefaultTerminal, terminal.AsDefault(), terminal.Hidden()),
)

// Base 块基础实现
type Base struct {
	*runner.Runner[types.BlockContext]
	self      types.Block
	terminals *terminal.Type
	ctx       types.BlockContext
	mu        sync.RWMutex
}

// NewBase 创建块基础实现
// hooks 是嵌入Base的具体块，它的Configure/Start/Stop会被生命周期调用
// 块类型取terminals的名称
func NewBase(hooks runner.Hooks[types.BlockContext], terminals *terminal.Type) *Base {
	if terminals == nil {
		terminals = Terminals
	}
	b := &Base{terminals: terminals}
	if hooks == nil {
		hooks = b
	}
	b.Runner = runner.New[types.BlockContext](terminals.Name(), hooks, logr.Discard())
	if self, ok := hooks.(types.Block); ok {
		b.self = self
	} else {
		b.self = b
	}
	b.StatusHolder().Subscribe(b.onStatusChange)
	return b
}

// DoConfigure 保存上下文后执行配置
func (b *Base) DoConfigure(ctx types.BlockContext) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()
	if ctx.Name != "" {
		b.SetName(ctx.Name)
	}
	logger := ctx.Logger
	if logger.GetSink() == nil {
		logger = types.DefaultLogger()
	}
	b.SetLogger(logger.WithValues("block", b.Name(), "type", b.Type()))
	return b.Runner.DoConfigure(ctx)
}

// Configure 默认配置钩子
func (b *Base) Configure(ctx types.BlockContext) error {
	return nil
}

// Start 默认启动钩子
func (b *Base) Start() error {
	return nil
}

// Stop 默认停止钩子
func (b *Base) Stop() error {
	return nil
}

// Type 块类型
func (b *Base) Type() string {
	return b.terminals.Name()
}

// Terminals 块类型端口声明
func (b *Base) Terminals() *terminal.Type {
	return b.terminals
}

// IsInputValid 输入端口是否已声明
func (b *Base) IsInputValid(inputId string) bool {
	return b.terminals.IsValid(terminal.Input, inputId)
}

// IsOutputValid 输出端口是否已声明
func (b *Base) IsOutputValid(outputId string) bool {
	return b.terminals.IsValid(terminal.Output, outputId)
}

// DefaultInput 默认输入端口
func (b *Base) DefaultInput() (string, bool) {
	t, ok, _ := b.terminals.Default(terminal.Input)
	return t.Id, ok
}

// DefaultOutput 默认输出端口
func (b *Base) DefaultOutput() (string, bool) {
	t, ok, _ := b.terminals.Default(terminal.Output)
	return t.Id, ok
}

// Context 配置上下文
func (b *Base) Context() types.BlockContext {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ctx
}

// Properties 块配置
func (b *Base) Properties() types.Configuration {
	return b.Context().Properties
}

// Router 块所在服务的路由，配置前为nil
func (b *Base) Router() types.BlockRouter {
	return b.Context().Router
}

// Scheduler 定时任务调度器，配置前为nil
func (b *Base) Scheduler() types.Scheduler {
	return b.Context().Scheduler
}

// NotifySignals 从指定输出端口发送信号，outputId为空使用默认输出端口
func (b *Base) NotifySignals(signals []*types.Signal, outputId string) error {
	router := b.Router()
	if router == nil {
		return types.ErrRouterNotStarted
	}
	return router.NotifySignals(b.self, signals, outputId)
}

// NotifyManagementSignal 发送管理信号
func (b *Base) NotifyManagementSignal(signal types.ManagementSignal) {
	if router := b.Router(); router != nil {
		router.NotifyManagementSignal(b.self, signal)
	}
}

func (b *Base) onStatusChange(old, new types.RunnerStatus) {
	ctx := b.Context()
	if ctx.Router == nil {
		return
	}
	b.NotifyManagementSignal(types.ManagementSignal{
		Type:           types.ManagementSignalBlockStatus,
		Service:        ctx.ServiceName,
		Source:         b.Name(),
		Status:         new.String(),
		PreviousStatus: old.String(),
		Ts:             time.Now().UnixMilli(),
	})
}
