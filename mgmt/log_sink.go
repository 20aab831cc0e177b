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

// Package mgmt provides sinks for management signals: router diagnostics, router status and
// block status changes.
//
// Register sinks on the service configuration:
//
//	config := types.NewConfig(types.WithManagementSinks(mgmt.NewLogSink(logger)))
package mgmt

import (
	"github.com/go-logr/logr"
	"github.com/rulego/sigflow/api/types"
)

var _ types.ManagementSink = (*LogSink)(nil)

// LogSink 把管理信号写入日志
// 状态信号按info级别记录，诊断数据的每条边按debug级别记录
type LogSink struct {
	Logger logr.Logger
}

// NewLogSink 创建日志输出
func NewLogSink(logger logr.Logger) *LogSink {
	return &LogSink{Logger: logger}
}

func (s *LogSink) Send(signal types.ManagementSignal) error {
	logger := s.Logger.WithValues("type", signal.Type, "instance", signal.InstanceId, "service", signal.Service)
	switch signal.Type {
	case types.ManagementSignalRouterDiagnostic:
		logger.Info("router diagnostic", "edges", len(signal.BlocksData))
		for _, edge := range signal.BlocksData {
			logger.V(1).Info("diagnostic edge", "source", edge.Source, "target", edge.Target, "count", edge.Count)
		}
	default:
		logger.Info("status changed", "source", signal.Source, "status", signal.Status, "previous", signal.PreviousStatus)
	}
	return nil
}
