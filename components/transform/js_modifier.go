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

package transform

// 服务定义块配置示例：
// {
//   "name": "celsius",
//   "type": "jsModifier",
//   "properties": {
//     "script": "attributes.celsius = (attributes.fahrenheit - 32) / 1.8; return attributes;"
//   }
// }
import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/block"
	"github.com/rulego/sigflow/terminal"
	"github.com/rulego/sigflow/utils/js"
	"github.com/rulego/sigflow/utils/maps"
	"go.uber.org/multierr"
)

const (
	// JsModifierType 组件类型标识符
	JsModifierType = "jsModifier"
	// JsModifierFuncTemplate JS函数模板，用于包装用户脚本
	JsModifierFuncTemplate = "function Modify(attributes, signalType) { %s }"
	// JsModifierFuncName JS引擎中执行的函数名称
	JsModifierFuncName = "Modify"
)

// ErrJsModifierReturnFormat JS脚本返回值格式错误，期望返回对象、null或者undefined
var ErrJsModifierReturnFormat = errors.New("return the value is not an object")

// JsModifierTerminals 默认输入输出端口
var JsModifierTerminals = terminal.MustNewType(JsModifierType, block.Terminals)

func init() {
	Registry.Add(NewJsModifier())
}

// JsModifierConfiguration JS修改块配置
type JsModifierConfiguration struct {
	// Script 用户自定义的JavaScript脚本内容
	// 脚本会被包装成完整函数：function Modify(attributes, signalType) { ${Script} }
	// 返回新的属性对象；返回null或者undefined则丢弃该信号
	Script string
	// MaxExecutionTime 单次执行最长时间，0使用默认值
	MaxExecutionTime time.Duration
	// Vars 注入脚本的全局变量
	Vars map[string]interface{}
}

// JsModifier 使用JavaScript脚本修改信号属性
//
// JavaScript函数接收2个参数：
//   - attributes: 信号属性的副本，可以直接修改
//   - signalType: 信号类型
//
// 修改后的信号保留原信号的ID、时间戳和类型，从默认输出端口发出
type JsModifier struct {
	*block.Base
	// Config 块配置信息
	Config JsModifierConfiguration
	// jsEngine JavaScript执行引擎实例
	jsEngine types.JsEngine
}

// NewJsModifier 创建JS修改块
func NewJsModifier() *JsModifier {
	x := &JsModifier{}
	x.Base = block.NewBase(x, JsModifierTerminals)
	return x
}

func (x *JsModifier) New() types.Component {
	return NewJsModifier()
}

// Configure 解析配置并编译脚本
func (x *JsModifier) Configure(ctx types.BlockContext) error {
	if err := maps.Map2Struct(ctx.Properties, &x.Config); err != nil {
		return err
	}
	if strings.TrimSpace(x.Config.Script) == "" {
		return errors.New("script can not be empty")
	}
	jsEngine, err := js.NewGojaJsEngine(fmt.Sprintf(JsModifierFuncTemplate, x.Config.Script), js.Options{
		Logger:           ctx.Logger,
		MaxExecutionTime: x.Config.MaxExecutionTime,
		Vars:             x.Config.Vars,
	})
	if err != nil {
		return err
	}
	x.jsEngine = jsEngine
	return nil
}

// ProcessSignals 逐个执行脚本，把修改后的信号作为一个批次发出
func (x *JsModifier) ProcessSignals(signals []*types.Signal) error {
	var modified []*types.Signal
	var err error
	for _, signal := range signals {
		if signal == nil {
			continue
		}
		result, modifyErr := x.modify(signal)
		if modifyErr != nil {
			err = multierr.Append(err, fmt.Errorf("signal %s: %w", signal.Id, modifyErr))
			continue
		}
		if result != nil {
			modified = append(modified, result)
		}
	}
	if len(modified) > 0 {
		err = multierr.Append(err, x.NotifySignals(modified, ""))
	}
	return err
}

func (x *JsModifier) modify(signal *types.Signal) (*types.Signal, error) {
	cloned, err := signal.Clone()
	if err != nil {
		return nil, err
	}
	out, err := x.jsEngine.Execute(JsModifierFuncName, map[string]interface{}(cloned.Attributes), signal.Type)
	if err != nil {
		return nil, err
	}
	switch v := out.(type) {
	case nil:
		return nil, nil
	case map[string]interface{}:
		cloned.Attributes = v
	case types.Attributes:
		cloned.Attributes = v
	default:
		return nil, ErrJsModifierReturnFormat
	}
	return cloned, nil
}

// Stop 释放JavaScript引擎资源
func (x *JsModifier) Stop() error {
	if x.jsEngine != nil {
		x.jsEngine.Stop()
	}
	return nil
}
