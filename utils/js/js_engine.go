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

// Package js runs JavaScript functions on goja virtual machines.
//
// A GojaJsEngine compiles its script once and keeps a pool of VMs that have already
// run it, so each Execute only pays for the function call. Each call can be bounded
// by a maximum execution time, after which the VM is interrupted.
package js

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/go-logr/logr"
	"github.com/rulego/sigflow/api/types"
)

// DefaultMaxExecutionTime is used when Options.MaxExecutionTime is zero.
const DefaultMaxExecutionTime = 2000 * time.Millisecond

var _ types.JsEngine = (*GojaJsEngine)(nil)

// Options js引擎配置
type Options struct {
	// Logger 日志记录器
	Logger logr.Logger
	// MaxExecutionTime 单次执行最长时间，<0 表示不限制
	MaxExecutionTime time.Duration
	// Vars 注入到每个VM的全局变量或者go函数
	Vars map[string]interface{}
}

// GojaJsEngine goja js engine
type GojaJsEngine struct {
	vmPool   sync.Pool
	options  Options
	jsScript *goja.Program
}

// NewGojaJsEngine 编译脚本并创建引擎，脚本编译或者首次运行失败返回错误
func NewGojaJsEngine(jsScript string, options Options) (*GojaJsEngine, error) {
	program, err := goja.Compile("", jsScript, true)
	if err != nil {
		return nil, err
	}
	if options.MaxExecutionTime == 0 {
		options.MaxExecutionTime = DefaultMaxExecutionTime
	}
	jsEngine := &GojaJsEngine{
		options:  options,
		jsScript: program,
	}
	vm, err := jsEngine.NewVm()
	if err != nil {
		return nil, err
	}
	jsEngine.vmPool.Put(vm)
	jsEngine.vmPool.New = func() interface{} {
		vm, err := jsEngine.NewVm()
		if err != nil {
			jsEngine.options.Logger.Error(err, "js vm init failed")
		}
		return vm
	}
	return jsEngine, nil
}

// NewVm 创建VM，注入变量并运行脚本
func (g *GojaJsEngine) NewVm() (*goja.Runtime, error) {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	for k, v := range g.options.Vars {
		if err := vm.Set(k, v); err != nil {
			return nil, fmt.Errorf("set var %s: %w", k, err)
		}
	}
	timer := g.startTimeout(vm)
	_, err := vm.RunProgram(g.jsScript)
	g.stopTimeout(vm, timer)
	if err != nil {
		return vm, err
	}
	return vm, nil
}

// Execute 执行脚本中的指定函数
func (g *GojaJsEngine) Execute(functionName string, argumentList ...interface{}) (out interface{}, err error) {
	defer func() {
		if caught := recover(); caught != nil {
			err = fmt.Errorf("%s", caught)
		}
	}()

	vm := g.vmPool.Get().(*goja.Runtime)
	defer g.vmPool.Put(vm)

	timer := g.startTimeout(vm)
	defer g.stopTimeout(vm, timer)

	f, ok := goja.AssertFunction(vm.Get(functionName))
	if !ok {
		return nil, errors.New(functionName + " is not a function")
	}

	params := make([]goja.Value, len(argumentList))
	for i, v := range argumentList {
		params[i] = vm.ToValue(v)
	}

	res, err := f(goja.Undefined(), params...)
	if err != nil {
		return nil, err
	}
	return res.Export(), nil
}

// Stop 释放js引擎资源
func (g *GojaJsEngine) Stop() {
}

func (g *GojaJsEngine) startTimeout(vm *goja.Runtime) *time.Timer {
	if g.options.MaxExecutionTime <= 0 {
		return nil
	}
	return time.AfterFunc(g.options.MaxExecutionTime, func() {
		vm.Interrupt("execution timeout")
	})
}

// stopTimeout 停止计时，并清除可能已经触发的中断，VM可以继续复用
func (g *GojaJsEngine) stopTimeout(vm *goja.Runtime, timer *time.Timer) {
	if timer != nil {
		timer.Stop()
		vm.ClearInterrupt()
	}
}
