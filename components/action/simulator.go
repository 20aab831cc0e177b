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

package action

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mitchellh/copystructure"
	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/block"
	"github.com/rulego/sigflow/terminal"
	"github.com/rulego/sigflow/utils/maps"
)

// SeqKey 模拟信号的序号属性，从1开始递增
const SeqKey = "seq"

// ErrSchedulerRequired 块上下文没有提供调度器
var ErrSchedulerRequired = errors.New("simulator requires a scheduler")

// SimulatorTerminals 默认输出端口
var SimulatorTerminals = terminal.MustNewType("simulator", block.Terminals)

func init() {
	Registry.Add(NewSimulator())
}

// SimulatorConfiguration 模拟器配置
type SimulatorConfiguration struct {
	// Interval 发送间隔，例如：1s、500ms
	Interval time.Duration
	// Count 每次发送的信号数量
	Count int
	// SignalType 信号类型
	SignalType string
	// Attributes 每个信号的属性模板
	Attributes map[string]interface{}
}

// Simulator 启动后按固定间隔发送一批模拟信号，停止后不再发送
// 只发送不接收，不能作为接收者
type Simulator struct {
	*block.Base
	Config SimulatorConfiguration
	seq    int64
	job    types.Job
	mu     sync.Mutex
}

// NewSimulator 创建模拟器
func NewSimulator() *Simulator {
	x := &Simulator{Config: SimulatorConfiguration{
		Interval:   time.Second,
		Count:      1,
		SignalType: "simulated",
	}}
	x.Base = block.NewBase(x, SimulatorTerminals)
	return x
}

func (x *Simulator) New() types.Component {
	return NewSimulator()
}

func (x *Simulator) Configure(ctx types.BlockContext) error {
	if err := maps.Map2Struct(ctx.Properties, &x.Config); err != nil {
		return err
	}
	if x.Config.Interval <= 0 {
		return errors.New("interval must be positive")
	}
	if x.Config.Count <= 0 {
		x.Config.Count = 1
	}
	return nil
}

func (x *Simulator) Start() error {
	scheduler := x.Scheduler()
	if scheduler == nil {
		return ErrSchedulerRequired
	}
	job, err := scheduler.Every(x.Config.Interval, x.Emit)
	if err != nil {
		return err
	}
	x.mu.Lock()
	x.job = job
	x.mu.Unlock()
	return nil
}

func (x *Simulator) Stop() error {
	x.mu.Lock()
	job := x.job
	x.job = nil
	x.mu.Unlock()
	if job != nil {
		job.Cancel()
	}
	return nil
}

// Emit 立即发送一批信号
func (x *Simulator) Emit() {
	if !x.Status().IsSet(types.Started) {
		return
	}
	signals := make([]*types.Signal, 0, x.Config.Count)
	for i := 0; i < x.Config.Count; i++ {
		attributes, err := copystructure.Copy(x.Config.Attributes)
		if err != nil {
			x.Logger().Error(err, "copy attributes failed")
			return
		}
		values, _ := attributes.(map[string]interface{})
		if values == nil {
			values = make(map[string]interface{})
		}
		values[SeqKey] = atomic.AddInt64(&x.seq, 1)
		signals = append(signals, types.NewSignal(x.Config.SignalType, values))
	}
	if err := x.NotifySignals(signals, ""); err != nil {
		x.Logger().Error(err, "emit signals failed", "count", len(signals))
	}
}
