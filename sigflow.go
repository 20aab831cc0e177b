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

// Package sigflow provides an embedded signal-flow engine: blocks exchange batches of signals
// through named terminals along an execution graph, dispatched by a router.
//
// # Usage
//
// Describe a service with blocks and an execution graph. Service definition format:
//
//	{
//	  "id": "svc01",
//	  "name": "temperature",
//	  "router": "pool",
//	  "settings": {"clone_signals": true, "diagnostics": true, "diagnostic_interval": 30},
//	  "blocks": [
//	    {"name": "source", "type": "simulator", "properties": {"interval": "1s", "attributes": {"temperature": 60}}},
//	    {"name": "hot", "type": "exprFilter", "properties": {"expr": "attributes.temperature > 50"}},
//	    {"name": "log", "type": "logger"}
//	  ],
//	  "execution": [
//	    {"name": "source", "receivers": ["hot"]},
//	    {"name": "hot", "receivers": {"true": ["log"], "false": [{"name": "log", "input": "error"}]}}
//	  ]
//	}
//
// blocks: block instances created from registered components.
//
// execution: which receivers subscribe to which output of each sender. A list subscribes to
// the sender's default output, a map names the outputs explicitly.
//
// Create and start a service:
//
//	service, err := sigflow.New("", []byte(serviceFile))
//
// Inject signals as one of its blocks:
//
//	err := service.NotifySignals("source", []*types.Signal{types.NewSignal("telemetry", nil)}, "")
//
// Load all service definitions of a folder:
//
//	err := sigflow.Load("./services")
//
// Get a service instance:
//
//	service, ok := sigflow.Get("svc01")
package sigflow

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/engine"
	"github.com/rulego/sigflow/utils/fs"
)

// Registry 默认块组件注册器
var Registry = engine.Registry

// DefaultSigFlow 默认服务实例池
var DefaultSigFlow = &SigFlow{}

// NewConfig 创建配置，默认使用Registry注册器和json解析器
func NewConfig(opts ...types.Option) types.Config {
	c := types.NewConfig(opts...)
	if c.ComponentsRegistry == nil {
		c.ComponentsRegistry = Registry
	}
	if c.Parser == nil {
		c.Parser = &engine.JsonParser{}
	}
	return c
}

// NewService 解析服务定义，创建、配置并启动服务
func NewService(def []byte, config types.Config) (*engine.Service, error) {
	if config.Parser == nil {
		config.Parser = &engine.JsonParser{}
	}
	if config.ComponentsRegistry == nil {
		config.ComponentsRegistry = Registry
	}
	serviceDef, err := config.Parser.DecodeService(def)
	if err != nil {
		return nil, err
	}
	service := engine.NewService(config)
	if err := service.DoConfigure(engine.ServiceContext{Definition: serviceDef}); err != nil {
		service.DoStop()
		return nil, err
	}
	if err := service.DoStart(); err != nil {
		service.DoStop()
		return nil, err
	}
	return service, nil
}

// SigFlow 服务实例池
type SigFlow struct {
	services sync.Map
}

// Load 加载指定文件夹及其子文件夹所有服务定义文件(.json和.toml结尾)，到服务实例池
// 服务ID使用服务定义文件的id
func (g *SigFlow) Load(folderPath string, opts ...types.Option) error {
	if folderPath == "" {
		folderPath = "."
	}
	folderPath = strings.TrimRight(folderPath, "/\\")
	for _, pattern := range []string{"*.json", "*.toml"} {
		paths, err := fs.GetFilePaths(folderPath + string(filepath.Separator) + pattern)
		if err != nil {
			return err
		}
		for _, path := range paths {
			b := fs.LoadFile(path)
			if b == nil {
				continue
			}
			config := NewConfig(append([]types.Option{types.WithParser(engine.ParserOf(filepath.Ext(path)))}, opts...)...)
			if _, err = g.NewWithConfig("", b, config); err != nil {
				return err
			}
		}
	}
	return nil
}

// New 创建一个新的服务并将其存储在服务实例池中
// 如果指定id="",则使用服务定义文件的id
func (g *SigFlow) New(id string, def []byte, opts ...types.Option) (*engine.Service, error) {
	return g.NewWithConfig(id, def, NewConfig(opts...))
}

// NewWithConfig 使用指定配置创建服务，如果id已经存在则返回已有服务
func (g *SigFlow) NewWithConfig(id string, def []byte, config types.Config) (*engine.Service, error) {
	if id != "" {
		if v, ok := g.services.Load(id); ok {
			return v.(*engine.Service), nil
		}
	}
	service, err := NewService(def, config)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = service.Id()
	}
	if actual, loaded := g.services.LoadOrStore(id, service); loaded {
		service.DoStop()
		return nil, errors.New("service already exists. id=" + id + ", existing=" + actual.(*engine.Service).Name())
	}
	return service, nil
}

// Get 获取指定ID服务实例
func (g *SigFlow) Get(id string) (*engine.Service, bool) {
	v, ok := g.services.Load(id)
	if ok {
		return v.(*engine.Service), ok
	} else {
		return nil, false
	}
}

// Del 停止并删除指定ID服务实例
func (g *SigFlow) Del(id string) {
	v, ok := g.services.LoadAndDelete(id)
	if ok {
		v.(*engine.Service).DoStop()
	}
}

// Stop 停止所有服务实例
func (g *SigFlow) Stop() {
	g.services.Range(func(key, value any) bool {
		if item, ok := value.(*engine.Service); ok {
			item.DoStop()
		}
		g.services.Delete(key)
		return true
	})
}

// Range 遍历所有服务实例
func (g *SigFlow) Range(f func(id string, service *engine.Service) bool) {
	g.services.Range(func(key, value any) bool {
		return f(key.(string), value.(*engine.Service))
	})
}

// Load 加载指定文件夹所有服务定义到默认服务实例池
func Load(folderPath string, opts ...types.Option) error {
	return DefaultSigFlow.Load(folderPath, opts...)
}

// New 创建一个新的服务并存储在默认服务实例池
func New(id string, def []byte, opts ...types.Option) (*engine.Service, error) {
	return DefaultSigFlow.New(id, def, opts...)
}

// Get 从默认服务实例池获取服务
func Get(id string) (*engine.Service, bool) {
	return DefaultSigFlow.Get(id)
}

// Del 从默认服务实例池删除服务
func Del(id string) {
	DefaultSigFlow.Del(id)
}

// Stop 停止默认服务实例池所有服务
func Stop() {
	DefaultSigFlow.Stop()
}
