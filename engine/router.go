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
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/api/types/metrics"
	"github.com/rulego/sigflow/runner"
	"github.com/rulego/sigflow/utils/maps"
	"github.com/rulego/sigflow/utils/runtime"
	"github.com/rulego/sigflow/utils/schedule"
)

// RouterOption 修改Router选项的函数
type RouterOption func(*Router)

// WithRouterLogger 设置日志记录器
func WithRouterLogger(logger logr.Logger) RouterOption {
	return func(r *Router) {
		r.SetLogger(logger)
	}
}

// WithRouterScheduler 设置诊断上报使用的调度器，不设置则在需要时创建
func WithRouterScheduler(scheduler types.Scheduler) RouterOption {
	return func(r *Router) {
		r.scheduler = scheduler
	}
}

// ParseRouterSettings 解析路由设置，未配置的key使用默认值
func ParseRouterSettings(settings types.Configuration) (types.RouterSettings, error) {
	result := types.DefaultRouterSettings()
	if err := maps.Map2Struct(settings, &result); err != nil {
		return result, fmt.Errorf("invalid router settings: %w", err)
	}
	if result.MaxWorkers <= 0 {
		result.MaxWorkers = types.DefaultMaxWorkers
	}
	if result.DiagnosticInterval < 0 {
		result.DiagnosticInterval = 0
	}
	return result, nil
}

// Router 解析执行图并把块发出的信号投递到下游块
type Router struct {
	*runner.Runner[types.RouterContext]
	delivery       Delivery
	scheduler      types.Scheduler
	ownedScheduler *schedule.CronScheduler
	diagnostics    *DiagnosticManager
	metrics        *metrics.DeliveryMetrics

	ctx       types.RouterContext
	settings  types.RouterSettings
	receivers map[string][]types.BlockReceiverData
	mu        sync.RWMutex
}

var _ types.BlockRouter = (*Router)(nil)

// NewRouter 创建协程池路由，最多max_workers个投递同时执行
func NewRouter(opts ...RouterOption) *Router {
	return newRouter(&PoolDelivery{}, opts...)
}

// NewSyncRouter 创建同步路由，在发送者协程内依次投递
func NewSyncRouter(opts ...RouterOption) *Router {
	return newRouter(&SyncDelivery{}, opts...)
}

// NewGoroutineRouter 创建每次投递一个协程的路由，协程数量没有上限
func NewGoroutineRouter(opts ...RouterOption) *Router {
	return newRouter(&GoroutineDelivery{}, opts...)
}

// NewRouterOfMode 根据模式创建路由：sync、goroutine、pool，空字符串为pool
func NewRouterOfMode(mode string, opts ...RouterOption) (*Router, error) {
	delivery, err := NewDelivery(mode)
	if err != nil {
		return nil, err
	}
	return newRouter(delivery, opts...), nil
}

func newRouter(delivery Delivery, opts ...RouterOption) *Router {
	r := &Router{
		delivery:  delivery,
		metrics:   metrics.NewDeliveryMetrics(),
		receivers: make(map[string][]types.BlockReceiverData),
		settings:  types.DefaultRouterSettings(),
	}
	r.Runner = runner.New[types.RouterContext]("router", r, types.DefaultLogger())
	for _, opt := range opts {
		opt(r)
	}
	r.StatusHolder().Subscribe(r.onStatusChange)
	return r
}

// Configure 解析设置和执行图
func (r *Router) Configure(ctx types.RouterContext) error {
	settings, err := ParseRouterSettings(ctx.Settings)
	if err != nil {
		return err
	}
	receivers, err := ResolveExecution(ctx.Execution, ctx.Blocks)
	if err != nil {
		return err
	}
	if err := r.delivery.Configure(settings); err != nil {
		return err
	}
	if pd, ok := r.delivery.(*PoolDelivery); ok {
		pd.Logger = r.Logger()
	}

	diagnostics := NewDiagnosticManager(r.scheduler, r.Logger())
	err = diagnostics.DoConfigure(DiagnosticContext{
		Enabled:    settings.Diagnostics,
		Interval:   time.Duration(settings.DiagnosticInterval * float64(time.Second)),
		InstanceId: ctx.InstanceId,
		Service:    ctx.ServiceName,
		Handler: func(signal types.ManagementSignal) {
			r.NotifyManagementSignal(nil, signal)
		},
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.ctx = ctx
	r.settings = settings
	r.receivers = receivers
	r.diagnostics = diagnostics
	r.mu.Unlock()
	return nil
}

// Start 启动投递策略和诊断管理器
func (r *Router) Start() error {
	if err := r.delivery.Start(); err != nil {
		return err
	}
	if diagnostics := r.Diagnostics(); diagnostics != nil {
		//没有外部调度器时由路由创建，停止后重新启动会再次创建
		settings := r.Settings()
		if r.scheduler == nil && settings.Diagnostics && settings.DiagnosticInterval > 0 {
			if r.ownedScheduler == nil {
				r.ownedScheduler = schedule.New(r.Logger())
			}
			diagnostics.SetScheduler(r.ownedScheduler)
		}
		if err := diagnostics.DoStart(); err != nil {
			r.delivery.Stop()
			return err
		}
	}
	return nil
}

// Stop 上报剩余诊断数据并释放投递资源
// 已经派发的投递继续执行，不等待它们结束
func (r *Router) Stop() error {
	if diagnostics := r.Diagnostics(); diagnostics != nil {
		diagnostics.DoStop()
	}
	r.delivery.Stop()
	if r.ownedScheduler != nil {
		r.ownedScheduler.Stop()
		r.ownedScheduler = nil
	}
	return nil
}

// Mode 投递策略名称
func (r *Router) Mode() string {
	return r.delivery.Mode()
}

// Settings 当前路由设置
func (r *Router) Settings() types.RouterSettings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

// Receivers 发送者的接收边
func (r *Router) Receivers(sender string) []types.BlockReceiverData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]types.BlockReceiverData(nil), r.receivers[sender]...)
}

// Diagnostics 诊断管理器，配置前为nil
func (r *Router) Diagnostics() *DiagnosticManager {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.diagnostics
}

// Metrics 投递计数
func (r *Router) Metrics() metrics.DeliveryMetrics {
	return r.metrics.Get()
}

// NotifySignals 把信号从发送者的输出端口投递给所有订阅该端口的接收者
// outputId为空使用发送者默认输出端口
func (r *Router) NotifySignals(block types.Block, signals []*types.Signal, outputId string) error {
	logger := r.Logger()
	status := r.Status()
	if !status.IsSet(types.Started) {
		if status.IsSet(types.Stopped) || status.IsSet(types.Stopping) {
			r.metrics.IncrementDiscarded()
			logger.V(1).Info("router is stopped, discarding signals", "block", block.Name(), "count", len(signals))
			return nil
		}
		return fmt.Errorf("%w. block=%s", types.ErrRouterNotStarted, block.Name())
	}
	if len(signals) == 0 {
		return nil
	}
	if outputId == "" {
		id, ok := block.DefaultOutput()
		if !ok {
			return fmt.Errorf("%w. block=%s has no default output", types.ErrInvalidBlockOutput, block.Name())
		}
		outputId = id
	} else if !block.IsOutputValid(outputId) {
		return fmt.Errorf("%w. block=%s, output=%s", types.ErrInvalidBlockOutput, block.Name(), outputId)
	}

	r.mu.RLock()
	settings := r.settings
	edges := r.receivers[block.Name()]
	r.mu.RUnlock()

	if settings.CheckSignalType {
		for i, signal := range signals {
			if signal == nil {
				return fmt.Errorf("%w. block=%s, index=%d", types.ErrInvalidSignal, block.Name(), i)
			}
		}
	}

	clone := settings.CloneSignals && len(edges) > 1
	for _, edge := range edges {
		receiverStatus := edge.Block.Status()
		if receiverStatus.IsSet(types.Error) {
			logger.V(1).Info("skipping receiver in error state", "block", block.Name(), "receiver", edge.Block.Name())
			continue
		}
		if receiverStatus.IsSet(types.Warning) {
			logger.V(1).Info("delivering to receiver in warning state", "block", block.Name(), "receiver", edge.Block.Name())
		}
		if edge.OutputId != outputId {
			continue
		}
		payload := signals
		if clone {
			cloned, err := types.CloneSignals(signals)
			if err != nil {
				//本次调用剩余的接收者都共享原始批次
				logger.Error(err, "clone signals failed, delivering shared batch", "block", block.Name(), "receiver", edge.Block.Name())
				clone = false
			} else {
				payload = cloned
			}
		}
		r.dispatch(block, edge, payload)
	}
	return nil
}

// NotifyManagementSignal 转发管理信号，block为nil表示路由自身发出
func (r *Router) NotifyManagementSignal(block types.Block, signal types.ManagementSignal) {
	r.mu.RLock()
	ctx := r.ctx
	r.mu.RUnlock()
	if signal.InstanceId == "" {
		signal.InstanceId = ctx.InstanceId
	}
	if signal.Service == "" {
		signal.Service = ctx.ServiceName
	}
	if signal.Ts == 0 {
		signal.Ts = time.Now().UnixMilli()
	}
	if ctx.MgmtSignalHandler != nil {
		ctx.MgmtSignalHandler(block, signal)
	}
}

func (r *Router) dispatch(sender types.Block, edge types.BlockReceiverData, signals []*types.Signal) {
	err := r.delivery.Dispatch(func() {
		r.deliver(sender, edge, signals)
	})
	if err != nil {
		r.Logger().Error(err, "dispatch failed", "block", sender.Name(), "receiver", edge.Block.Name())
	}
}

// deliver 投递给一个接收者，接收者的错误和panic在这里结束，不返回给发送者
func (r *Router) deliver(sender types.Block, edge types.BlockReceiverData, signals []*types.Signal) {
	r.metrics.Begin()
	err := invokeReceiver(edge, signals)
	r.metrics.End(err != nil)
	if err != nil {
		if panicErr, ok := err.(*runtime.PanicErr); ok {
			r.Logger().Error(err, "receiver panicked", "block", sender.Name(), "receiver", edge.Block.Name(), "input", edge.InputId, "stack", panicErr.Stack)
		} else {
			r.Logger().Error(err, "receiver failed", "block", sender.Name(), "receiver", edge.Block.Name(), "input", edge.InputId)
		}
		r.StatusHolder().Add(types.Error)
		return
	}
	r.mu.RLock()
	enabled := r.settings.Diagnostics
	diagnostics := r.diagnostics
	r.mu.RUnlock()
	if enabled && diagnostics != nil {
		diagnostics.Record(sender, edge.Block, len(signals))
	}
}

func invokeReceiver(edge types.BlockReceiverData, signals []*types.Signal) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = runtime.PanicError("deliver", e)
		}
	}()
	return edge.Deliver(signals)
}

func (r *Router) onStatusChange(old, new types.RunnerStatus) {
	if old.IsSet(types.Error) || !new.IsSet(types.Error) {
		return
	}
	r.NotifyManagementSignal(nil, types.ManagementSignal{
		Type:           types.ManagementSignalRouterStatus,
		Source:         r.Name(),
		Status:         new.String(),
		PreviousStatus: old.String(),
	})
}
