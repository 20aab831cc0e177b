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

import (
	"time"

	"github.com/go-logr/logr"
)

// Configuration 组件配置类型
type Configuration map[string]interface{}

// Block 执行图节点能力集合，路由通过该接口解析端口和检查状态
type Block interface {
	// Name 块名称，在同一个服务内唯一
	Name() string
	// Type 块类型，对应注册器里的组件类型
	Type() string
	// IsInputValid 输入端口是否已声明
	IsInputValid(inputId string) bool
	// IsOutputValid 输出端口是否已声明
	IsOutputValid(outputId string) bool
	// DefaultInput 默认输入端口，没有默认端口则返回false
	DefaultInput() (string, bool)
	// DefaultOutput 默认输出端口，没有默认端口则返回false
	DefaultOutput() (string, bool)
	// Status 当前状态快照
	Status() RunnerStatus
}

// SignalProcessor 简单接收者，只接收信号
type SignalProcessor interface {
	ProcessSignals(signals []*Signal) error
}

// InputSignalProcessor 输入感知接收者，同时接收投递的输入端口ID
type InputSignalProcessor interface {
	ProcessInputSignals(signals []*Signal, inputId string) error
}

// DeliveryConvention 接收者的调用约定，在解析执行图时确定一次
type DeliveryConvention int

const (
	// SimpleDelivery calls ProcessSignals(signals).
	SimpleDelivery DeliveryConvention = iota + 1
	// InputAwareDelivery calls ProcessInputSignals(signals, inputId).
	InputAwareDelivery
)

func (c DeliveryConvention) String() string {
	switch c {
	case SimpleDelivery:
		return "simple"
	case InputAwareDelivery:
		return "inputAware"
	default:
		return "invalid"
	}
}

// DeliveryConventionOf 解析块的调用约定
// 同时实现两个接口时使用输入感知约定
func DeliveryConventionOf(block Block) (DeliveryConvention, error) {
	if _, ok := block.(InputSignalProcessor); ok {
		return InputAwareDelivery, nil
	}
	if _, ok := block.(SignalProcessor); ok {
		return SimpleDelivery, nil
	}
	return 0, ErrInvalidProcessSignalsSignature
}

// BlockRouter 块看到的路由能力
type BlockRouter interface {
	// NotifySignals 把信号从块的指定输出端口发送到下游，outputId为空则使用默认输出端口
	NotifySignals(block Block, signals []*Signal, outputId string) error
	// NotifyManagementSignal 发送管理信号
	NotifyManagementSignal(block Block, signal ManagementSignal)
}

// BlockContext 块配置上下文
type BlockContext struct {
	// Name 块名称
	Name string
	// Properties 块配置
	Properties Configuration
	// Router 块所在服务的路由
	Router BlockRouter
	// Logger 日志记录器
	Logger logr.Logger
	// Scheduler 定时任务调度器
	Scheduler Scheduler
	// ServiceName 所属服务名称
	ServiceName string
}

// RunnableBlock 带生命周期的块
type RunnableBlock interface {
	Block
	DoConfigure(ctx BlockContext) error
	DoStart() error
	DoStop()
}

// Component 可注册的块组件
// 实现方式参考`components`包，然后注册到默认注册器
// sigflow.Registry.Register(&MyBlock{})
type Component interface {
	RunnableBlock
	// New 创建一个组件新实例，每个服务里的块都会创建一个新的实例，数据是独立的
	New() Component
}

// ComponentRegistry 块组件注册器
type ComponentRegistry interface {
	// Register 注册组件，如果`component.Type()`已经存在则返回一个`已存在`错误
	Register(component Component) error
	// Unregister 删除组件
	Unregister(componentType string) error
	// NewBlock 通过blockType创建一个新的块实例
	NewBlock(blockType string) (Component, error)
	// GetComponents 获取所有注册组件列表
	GetComponents() map[string]Component
}

// JsEngine JavaScript脚本引擎
type JsEngine interface {
	// Execute 执行js脚本指定函数，js脚本在JsEngine实例化的时候进行初始化
	// functionName 执行的函数名
	// argumentList 函数参数列表
	Execute(functionName string, argumentList ...interface{}) (interface{}, error)
	// Stop 释放js引擎资源
	Stop()
}

// Parser 服务定义文件解析器
// 默认使用json方式，如果使用其他方式定义服务，可以实现该接口
// 然后通过该方式注册：`types.NewConfig(types.WithParser(&MyParser{}))`
type Parser interface {
	// DecodeService 从描述文件解析服务定义
	DecodeService(dsl []byte) (ServiceDef, error)
	// EncodeService 把服务定义转换成描述文件
	EncodeService(def ServiceDef) ([]byte, error)
}

// Pool 协程池
type Pool interface {
	// Submit 往协程池提交一个任务
	Submit(task func()) error
	// Release 释放
	Release()
}

// Job 已调度的任务
type Job interface {
	// Cancel 取消任务，之后不会再触发
	Cancel()
}

// Scheduler 定时任务调度器
type Scheduler interface {
	// Every 每隔interval执行一次job
	Every(interval time.Duration, job func()) (Job, error)
	// After 在delay之后执行一次job
	After(delay time.Duration, job func()) (Job, error)
	// Stop 停止调度器，不再触发任何任务
	Stop()
}
