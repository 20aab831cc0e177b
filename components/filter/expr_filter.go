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

package filter

//服务定义块配置示例：
//{
//        "name": "hot",
//        "type": "exprFilter",
//        "properties": {
//          "expr": "attributes.temperature > 50"
//        }
//      }
import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/block"
	"github.com/rulego/sigflow/terminal"
	"github.com/rulego/sigflow/utils/maps"
	"go.uber.org/multierr"
)

const (
	// OutputTrue 表达式结果为true的信号输出端口
	OutputTrue = "true"
	// OutputFalse 表达式结果为false的信号输出端口
	OutputFalse = "false"
)

// ExprFilterTerminals 两个输出端口，没有默认输出端口
var ExprFilterTerminals = terminal.MustNewType("exprFilter", block.Terminals,
	terminal.NewOutput(OutputTrue, terminal.WithOrder(1), terminal.WithDescription("signals matching the expression")),
	terminal.NewOutput(OutputFalse, terminal.WithOrder(2), terminal.WithDescription("signals not matching the expression")),
)

func init() {
	Registry.Add(NewExprFilter())
}

// ExprFilterConfiguration 块配置
type ExprFilterConfiguration struct {
	// 表达式
	Expr string
}

// ExprFilter 使用expr表达式过滤信号
// 如果返回值`true`发送信号到`true`输出端口, 否则发到`false`输出端口。
// 表达式执行失败的信号不会发送，错误返回给路由
// 通过`id`变量访问信号id
// 通过`ts`变量访问信号时间戳
// 通过`signalType`变量访问信号类型
// 通过`attributes`变量访问信号属性。例如:`attributes.temperature > 50`
type ExprFilter struct {
	*block.Base
	//块配置
	Config  ExprFilterConfiguration
	program *vm.Program
}

// NewExprFilter 创建表达式过滤块
func NewExprFilter() *ExprFilter {
	x := &ExprFilter{}
	x.Base = block.NewBase(x, ExprFilterTerminals)
	return x
}

func (x *ExprFilter) New() types.Component {
	return NewExprFilter()
}

// Configure 编译表达式
func (x *ExprFilter) Configure(ctx types.BlockContext) error {
	if err := maps.Map2Struct(ctx.Properties, &x.Config); err != nil {
		return err
	}
	if x.Config.Expr == "" {
		return errors.New("expr can not be empty")
	}
	program, err := expr.Compile(x.Config.Expr, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return fmt.Errorf("compile expr failed: %w", err)
	}
	x.program = program
	return nil
}

// ProcessSignals 按表达式结果把批次拆分到`true`和`false`输出端口
func (x *ExprFilter) ProcessSignals(signals []*types.Signal) error {
	var matched, unmatched []*types.Signal
	var err error
	for _, signal := range signals {
		if signal == nil {
			continue
		}
		out, runErr := vm.Run(x.program, env(signal))
		if runErr != nil {
			err = multierr.Append(err, fmt.Errorf("signal %s: %w", signal.Id, runErr))
			continue
		}
		if result, ok := out.(bool); ok && result {
			matched = append(matched, signal)
		} else {
			unmatched = append(unmatched, signal)
		}
	}
	if len(matched) > 0 {
		err = multierr.Append(err, x.NotifySignals(matched, OutputTrue))
	}
	if len(unmatched) > 0 {
		err = multierr.Append(err, x.NotifySignals(unmatched, OutputFalse))
	}
	return err
}

func env(signal *types.Signal) map[string]interface{} {
	attributes := map[string]interface{}(signal.Attributes)
	if attributes == nil {
		attributes = map[string]interface{}{}
	}
	return map[string]interface{}{
		"id":         signal.Id,
		"ts":         signal.Ts,
		"signalType": signal.Type,
		"attributes": attributes,
	}
}
