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
	"fmt"
	"strings"

	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/block"
	"github.com/rulego/sigflow/terminal"
	"github.com/rulego/sigflow/utils/maps"
)

const (
	// LoggerInput 普通输入端口，按配置的级别记录
	LoggerInput = "in"
	// LoggerErrorInput 错误输入端口，总是按错误级别记录
	LoggerErrorInput = "error"

	levelInfo  = "info"
	levelDebug = "debug"
)

// LoggerTerminals 两个输入端口，默认输入端口为in
var LoggerTerminals = terminal.MustNewType("logger", block.Terminals,
	terminal.NewInput(LoggerInput, terminal.AsDefault(), terminal.WithOrder(1)),
	terminal.NewInput(LoggerErrorInput, terminal.WithOrder(2), terminal.WithLabel("Error")),
)

func init() {
	Registry.Add(NewLogBlock())
}

// LoggerConfiguration 日志块配置
type LoggerConfiguration struct {
	// Level 日志级别：info、debug
	Level string
	// Prefix 日志消息前缀
	Prefix string
	// Fields 只记录指定的属性，支持点分隔的嵌套路径，例如：location.city
	// 为空则记录全部属性
	Fields []string
}

// LogBlock 记录收到的信号，不向下游发送
type LogBlock struct {
	*block.Base
	Config LoggerConfiguration
}

// NewLogBlock 创建日志块
func NewLogBlock() *LogBlock {
	x := &LogBlock{Config: LoggerConfiguration{Level: levelInfo}}
	x.Base = block.NewBase(x, LoggerTerminals)
	return x
}

func (x *LogBlock) New() types.Component {
	return NewLogBlock()
}

func (x *LogBlock) Configure(ctx types.BlockContext) error {
	if err := maps.Map2Struct(ctx.Properties, &x.Config); err != nil {
		return err
	}
	x.Config.Level = strings.ToLower(x.Config.Level)
	switch x.Config.Level {
	case "":
		x.Config.Level = levelInfo
	case levelInfo, levelDebug:
	default:
		return fmt.Errorf("unsupported log level: %s", x.Config.Level)
	}
	return nil
}

// ProcessInputSignals 记录信号和到达的输入端口
func (x *LogBlock) ProcessInputSignals(signals []*types.Signal, inputId string) error {
	logger := x.Logger()
	msg := x.Config.Prefix + "signal"
	for _, signal := range signals {
		if signal == nil {
			continue
		}
		kv := []interface{}{"input", inputId, "id", signal.Id, "type", signal.Type, "ts", signal.Ts, "attributes", x.attributes(signal)}
		switch {
		case inputId == LoggerErrorInput:
			logger.Error(nil, msg, kv...)
		case x.Config.Level == levelDebug:
			logger.V(1).Info(msg, kv...)
		default:
			logger.Info(msg, kv...)
		}
	}
	return nil
}

func (x *LogBlock) attributes(signal *types.Signal) interface{} {
	if len(x.Config.Fields) == 0 {
		return signal.Attributes
	}
	values := make(map[string]interface{}, len(x.Config.Fields))
	for _, field := range x.Config.Fields {
		values[field] = maps.Get(map[string]interface{}(signal.Attributes), field)
	}
	return values
}
