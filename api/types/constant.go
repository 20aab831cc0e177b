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

import "errors"

// 管理信号类型
const (
	// ManagementSignalRouterDiagnostic 路由诊断汇总
	ManagementSignalRouterDiagnostic = "RouterDiagnostic"
	// ManagementSignalRouterStatus 路由状态变更
	ManagementSignalRouterStatus = "RouterStatus"
	// ManagementSignalBlockStatus 块状态变更
	ManagementSignalBlockStatus = "BlockStatus"
)

// 路由设置key
const (
	SettingCloneSignals       = "clone_signals"
	SettingCheckSignalType    = "check_signal_type"
	SettingDiagnostics        = "diagnostics"
	SettingDiagnosticInterval = "diagnostic_interval"
	SettingMaxWorkers         = "max_workers"
)

// 路由分发模式
const (
	RouterModeSync      = "sync"
	RouterModeGoroutine = "goroutine"
	RouterModePool      = "pool"
)

const (
	DefaultMaxWorkers         = 50
	DefaultDiagnosticInterval = 30.0
)

var (
	// ErrRouterNotStarted is returned when signals are notified before the router is started.
	ErrRouterNotStarted = errors.New("block router not started")
	// ErrInvalidBlockOutput is returned when an output id is not declared by the sender
	// or the sender has no default output.
	ErrInvalidBlockOutput = errors.New("invalid block output")
	// ErrInvalidBlockInput is returned when an input id is not declared by the receiver
	// or the receiver has no default input.
	ErrInvalidBlockInput = errors.New("invalid block input")
	// ErrMissingBlock is returned when the execution graph references an unknown block.
	ErrMissingBlock = errors.New("missing block")
	// ErrInvalidProcessSignalsSignature is returned when a receiver exposes no supported delivery entry point.
	ErrInvalidProcessSignalsSignature = errors.New("invalid process signals signature")
	// ErrInvalidSignal is returned when a batch holds an element that is not a signal.
	ErrInvalidSignal = errors.New("invalid signal")
	// ErrMalformedReceiver is returned when a receiver specification lacks required keys.
	ErrMalformedReceiver = errors.New("malformed receiver")
	// ErrInvalidDirection is returned for a terminal direction other than input or output.
	ErrInvalidDirection = errors.New("invalid terminal direction")
	// ErrUncopyableAttribute is returned when a signal attribute cannot be deep copied.
	ErrUncopyableAttribute = errors.New("uncopyable signal attribute")
	// ErrComponentNotFound is returned when a block type is not registered.
	ErrComponentNotFound = errors.New("component not found")
)
