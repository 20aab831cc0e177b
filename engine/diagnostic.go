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
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/runner"
)

// DiagnosticContext 诊断管理器配置
type DiagnosticContext struct {
	// Enabled 是否定时上报
	Enabled bool
	// Interval 上报间隔，<=0 不定时上报
	Interval time.Duration
	// InstanceId 实例ID
	InstanceId string
	// Service 服务名称
	Service string
	// Handler 管理信号回调
	Handler func(signal types.ManagementSignal)
}

type edgeKey struct {
	source string
	target string
}

// DiagnosticManager 按(source, target)累计投递的信号数量，定时以RouterDiagnostic管理信号上报并清空
type DiagnosticManager struct {
	*runner.Runner[DiagnosticContext]
	scheduler types.Scheduler
	ctx       DiagnosticContext
	job       types.Job
	edges     map[edgeKey]*types.DiagnosticEdge
	mu        sync.Mutex
}

// NewDiagnosticManager 创建诊断管理器，scheduler只在定时上报时使用
func NewDiagnosticManager(scheduler types.Scheduler, logger logr.Logger) *DiagnosticManager {
	m := &DiagnosticManager{
		scheduler: scheduler,
		edges:     make(map[edgeKey]*types.DiagnosticEdge),
	}
	m.Runner = runner.New[DiagnosticContext]("diagnostics", m, logger)
	return m
}

// SetScheduler 替换定时上报使用的调度器，在下一次启动时生效
func (m *DiagnosticManager) SetScheduler(scheduler types.Scheduler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduler = scheduler
}

func (m *DiagnosticManager) Configure(ctx DiagnosticContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctx = ctx
	return nil
}

func (m *DiagnosticManager) Start() error {
	m.mu.Lock()
	ctx := m.ctx
	scheduler := m.scheduler
	m.mu.Unlock()
	if !ctx.Enabled || ctx.Interval <= 0 {
		return nil
	}
	if scheduler == nil {
		return errors.New("diagnostics require a scheduler")
	}
	job, err := scheduler.Every(ctx.Interval, m.Flush)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.job = job
	m.mu.Unlock()
	return nil
}

// Stop 取消定时任务并上报剩余数据
func (m *DiagnosticManager) Stop() error {
	m.mu.Lock()
	job := m.job
	m.job = nil
	m.mu.Unlock()
	if job != nil {
		job.Cancel()
	}
	m.Flush()
	return nil
}

// Record 记录一次成功投递
func (m *DiagnosticManager) Record(source, target types.Block, count int) {
	if count <= 0 {
		return
	}
	key := edgeKey{source: source.Name(), target: target.Name()}
	m.mu.Lock()
	defer m.mu.Unlock()
	edge, ok := m.edges[key]
	if !ok {
		edge = &types.DiagnosticEdge{
			SourceType: source.Type(),
			Source:     key.source,
			TargetType: target.Type(),
			Target:     key.target,
		}
		m.edges[key] = edge
	}
	edge.Count += int64(count)
}

// Snapshot 当前累计的数据，按(source, target)排序，不清空
func (m *DiagnosticManager) Snapshot() []types.DiagnosticEdge {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortEdges(m.edges)
}

// Flush 上报累计数据并清空，没有数据则不上报
func (m *DiagnosticManager) Flush() {
	m.mu.Lock()
	edges := m.edges
	m.edges = make(map[edgeKey]*types.DiagnosticEdge)
	ctx := m.ctx
	m.mu.Unlock()

	if len(edges) == 0 {
		return
	}
	signal := types.ManagementSignal{
		Type:       types.ManagementSignalRouterDiagnostic,
		InstanceId: ctx.InstanceId,
		Service:    ctx.Service,
		BlocksData: sortEdges(edges),
		Ts:         time.Now().UnixMilli(),
	}
	if ctx.Handler != nil {
		ctx.Handler(signal)
	} else {
		m.Logger().V(1).Info("diagnostic signal dropped, no handler", "edges", len(signal.BlocksData))
	}
}

func sortEdges(edges map[edgeKey]*types.DiagnosticEdge) []types.DiagnosticEdge {
	result := make([]types.DiagnosticEdge, 0, len(edges))
	for _, edge := range edges {
		result = append(result, *edge)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Source != result[j].Source {
			return result[i].Source < result[j].Source
		}
		return result[i].Target < result[j].Target
	})
	return result
}
