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
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/block"
	"github.com/rulego/sigflow/terminal"
)

// ErrReceiverFailed 测试接收者返回的错误
var ErrReceiverFailed = errors.New("receiver failed")

// RecordingTerminals 测试块的端口声明，继承默认输入输出端口
var RecordingTerminals = terminal.MustNewType("test/recording", block.Terminals)

// FailingTerminals 失败接收者的端口声明
var FailingTerminals = terminal.MustNewType("test/failing", block.Terminals)

// SenderTerminals 发送块的端口声明
var SenderTerminals = terminal.MustNewType("test/sender", block.Terminals)

// MultiOutputTerminals 两个输出端口且没有默认输出端口
var MultiOutputTerminals = terminal.MustNewType("test/multiOutput", block.Terminals,
	terminal.NewOutput("left", terminal.WithOrder(1)),
	terminal.NewOutput("right", terminal.WithOrder(2)),
)

// MultiInputTerminals 两个输入端口，默认输入端口为primary
var MultiInputTerminals = terminal.MustNewType("test/multiInput", block.Terminals,
	terminal.NewInput("primary", terminal.AsDefault()),
	terminal.NewInput("secondary"),
)

// NoDefaultInputTerminals 只有一个非默认输入端口
var NoDefaultInputTerminals = terminal.MustNewType("test/noDefaultInput", block.Terminals,
	terminal.NewInput("explicit"),
)

type recorder struct {
	batches [][]*types.Signal
	inputs  []string
	mu      sync.Mutex
}

func (r *recorder) record(signals []*types.Signal, inputId string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, signals)
	r.inputs = append(r.inputs, inputId)
}

// Batches 收到的批次
func (r *recorder) Batches() [][]*types.Signal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]*types.Signal(nil), r.batches...)
}

// Inputs 每个批次对应的输入端口，简单接收者为空字符串
func (r *recorder) Inputs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.inputs...)
}

// Deliveries 收到的批次数量
func (r *recorder) Deliveries() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

// SignalCount 收到的信号总数
func (r *recorder) SignalCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int
	for _, batch := range r.batches {
		count += len(batch)
	}
	return count
}

// RecordingBlock 简单接收者，记录收到的信号
type RecordingBlock struct {
	*block.Base
	recorder
}

// NewRecordingBlock 创建简单接收者，terminals为nil使用RecordingTerminals
func NewRecordingBlock(name string, terminals *terminal.Type) *RecordingBlock {
	if terminals == nil {
		terminals = RecordingTerminals
	}
	b := &RecordingBlock{}
	b.Base = block.NewBase(b, terminals)
	b.SetName(name)
	return b
}

func (b *RecordingBlock) New() types.Component {
	return NewRecordingBlock("", b.Terminals())
}

func (b *RecordingBlock) ProcessSignals(signals []*types.Signal) error {
	b.record(signals, "")
	return nil
}

// InputRecordingBlock 输入感知接收者，记录收到的信号和输入端口
type InputRecordingBlock struct {
	*block.Base
	recorder
}

// NewInputRecordingBlock 创建输入感知接收者，terminals为nil使用MultiInputTerminals
func NewInputRecordingBlock(name string, terminals *terminal.Type) *InputRecordingBlock {
	if terminals == nil {
		terminals = MultiInputTerminals
	}
	b := &InputRecordingBlock{}
	b.Base = block.NewBase(b, terminals)
	b.SetName(name)
	return b
}

func (b *InputRecordingBlock) New() types.Component {
	return NewInputRecordingBlock("", b.Terminals())
}

func (b *InputRecordingBlock) ProcessInputSignals(signals []*types.Signal, inputId string) error {
	b.record(signals, inputId)
	return nil
}

// FailingBlock 每次投递都返回ErrReceiverFailed，Panic为true时改为panic
type FailingBlock struct {
	*block.Base
	Panic bool
	calls int
	mu    sync.Mutex
}

// NewFailingBlock 创建失败接收者
func NewFailingBlock(name string, panics bool) *FailingBlock {
	b := &FailingBlock{Panic: panics}
	b.Base = block.NewBase(b, FailingTerminals)
	b.SetName(name)
	return b
}

func (b *FailingBlock) New() types.Component {
	return NewFailingBlock("", b.Panic)
}

func (b *FailingBlock) ProcessSignals(signals []*types.Signal) error {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	if b.Panic {
		panic(ErrReceiverFailed)
	}
	return ErrReceiverFailed
}

// Calls 调用次数
func (b *FailingBlock) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// SenderBlock 只发送不接收的块，作为接收者时调用约定非法
type SenderBlock struct {
	*block.Base
}

// NewSenderBlock 创建发送块，terminals为nil使用SenderTerminals
func NewSenderBlock(name string, terminals *terminal.Type) *SenderBlock {
	if terminals == nil {
		terminals = SenderTerminals
	}
	b := &SenderBlock{}
	b.Base = block.NewBase(b, terminals)
	b.SetName(name)
	return b
}

func (b *SenderBlock) New() types.Component {
	return NewSenderBlock("", b.Terminals())
}

// Signals 创建n个测试信号，属性index为序号
func Signals(n int) []*types.Signal {
	signals := make([]*types.Signal, n)
	for i := range signals {
		signals[i] = types.NewSignal("test", types.Attributes{
			"index":  i,
			"values": []int{i},
		})
	}
	return signals
}

// NewRouterContext 创建路由配置
func NewRouterContext(execution []types.BlockExecution, settings types.Configuration, blocks ...types.Block) types.RouterContext {
	blockMap := make(map[string]types.Block, len(blocks))
	for _, b := range blocks {
		blockMap[b.Name()] = b
	}
	return types.RouterContext{
		Execution:   execution,
		Blocks:      blockMap,
		Settings:    settings,
		InstanceId:  "test-instance",
		ServiceId:   "test-service-id",
		ServiceName: "test-service",
	}
}

// CreateBlock 从注册列表创建一个未配置的块实例
func CreateBlock(targetBlockType string, registry *types.SafeComponentSlice) (types.Component, error) {
	for _, component := range registry.Components() {
		if component.Type() == targetBlockType {
			return component.New(), nil
		}
	}
	return nil, types.ErrComponentNotFound
}

// NewBlockContext 创建块配置上下文，日志丢弃
func NewBlockContext(name string, properties types.Configuration, router types.BlockRouter) types.BlockContext {
	return types.BlockContext{
		Name:        name,
		Properties:  properties,
		Router:      router,
		Logger:      logr.Discard(),
		ServiceName: "test-service",
	}
}

// CreateAndConfigureBlock 从注册列表创建并配置一个块实例
func CreateAndConfigureBlock(targetBlockType string, name string, properties types.Configuration, registry *types.SafeComponentSlice, router types.BlockRouter) (types.Component, error) {
	b, err := CreateBlock(targetBlockType, registry)
	if err != nil {
		return nil, err
	}
	return b, b.DoConfigure(NewBlockContext(name, properties, router))
}

// WaitFor 等待条件成立，超时则测试失败
func WaitFor(t testing.TB, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s", timeout)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
