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

package types

import "fmt"

// RouterSettings 路由设置，从RouterContext.Settings解析
type RouterSettings struct {
	// CloneSignals 发送者有多个接收者时，是否为每个接收者深度复制信号
	CloneSignals bool `mapstructure:"clone_signals" json:"clone_signals"`
	// CheckSignalType 是否检查批次中每个元素都是信号
	CheckSignalType bool `mapstructure:"check_signal_type" json:"check_signal_type"`
	// Diagnostics 是否开启诊断
	Diagnostics bool `mapstructure:"diagnostics" json:"diagnostics"`
	// DiagnosticInterval 诊断上报间隔，单位秒
	DiagnosticInterval float64 `mapstructure:"diagnostic_interval" json:"diagnostic_interval"`
	// MaxWorkers 协程池最大协程数，只对协程池路由有效
	MaxWorkers int `mapstructure:"max_workers" json:"max_workers"`
}

// DefaultRouterSettings 默认路由设置
func DefaultRouterSettings() RouterSettings {
	return RouterSettings{
		CloneSignals:       true,
		CheckSignalType:    true,
		Diagnostics:        false,
		DiagnosticInterval: DefaultDiagnosticInterval,
		MaxWorkers:         DefaultMaxWorkers,
	}
}

// ManagementSignalHandler 管理信号回调
type ManagementSignalHandler func(block Block, signal ManagementSignal)

// RouterContext 路由配置，在配置阶段创建一次，之后不再修改
type RouterContext struct {
	// Execution 执行图
	Execution []BlockExecution
	// Blocks 块名称->块实例
	Blocks map[string]Block
	// Settings 路由设置
	Settings Configuration
	// MgmtSignalHandler 管理信号回调
	MgmtSignalHandler ManagementSignalHandler
	// InstanceId 实例ID
	InstanceId string
	// ServiceId 服务ID
	ServiceId string
	// ServiceName 服务名称
	ServiceName string
}

// BlockReceiverData 解析后的一条边
type BlockReceiverData struct {
	// Block 接收块
	Block Block
	// InputId 投递到的输入端口
	InputId string
	// OutputId 该边订阅的发送者输出端口
	OutputId string
	// Convention 接收块的调用约定
	Convention DeliveryConvention
}

// Deliver 按调用约定把信号投递给接收块
func (d BlockReceiverData) Deliver(signals []*Signal) error {
	switch d.Convention {
	case InputAwareDelivery:
		if p, ok := d.Block.(InputSignalProcessor); ok {
			return p.ProcessInputSignals(signals, d.InputId)
		}
	case SimpleDelivery:
		if p, ok := d.Block.(SignalProcessor); ok {
			return p.ProcessSignals(signals)
		}
	}
	return fmt.Errorf("%w. block=%s", ErrInvalidProcessSignalsSignature, d.Block.Name())
}

func (d BlockReceiverData) String() string {
	return fmt.Sprintf("%s->%s:%s", d.OutputId, d.Block.Name(), d.InputId)
}

// DiagnosticEdge 诊断边，一段时间内从source投递到target的信号数量
type DiagnosticEdge struct {
	SourceType string `json:"source_type"`
	Source     string `json:"source"`
	TargetType string `json:"target_type"`
	Target     string `json:"target"`
	Count      int64  `json:"count"`
}

// ManagementSignal 管理信号，用于诊断和状态上报，不进入执行图
type ManagementSignal struct {
	// Type 管理信号类型，例如：RouterDiagnostic、RouterStatus、BlockStatus
	Type string `json:"type"`
	// InstanceId 实例ID
	InstanceId string `json:"instance_id,omitempty"`
	// Service 服务名称
	Service string `json:"service,omitempty"`
	// Source 来源块或者路由名称
	Source string `json:"source,omitempty"`
	// Status 状态变更后的快照
	Status string `json:"status,omitempty"`
	// PreviousStatus 状态变更前的快照
	PreviousStatus string `json:"previous_status,omitempty"`
	// BlocksData 诊断数据
	BlocksData []DiagnosticEdge `json:"blocks_data,omitempty"`
	// Ts 时间戳(毫秒)
	Ts int64 `json:"ts"`
}

// ManagementSink 管理信号输出
type ManagementSink interface {
	Send(signal ManagementSignal) error
}
