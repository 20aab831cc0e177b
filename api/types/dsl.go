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

// ServiceDef 服务定义
type ServiceDef struct {
	// Id 服务ID
	Id string `json:"id" toml:"id"`
	// Name 服务名称
	Name string `json:"name" toml:"name"`
	// Router 路由分发模式：sync、goroutine、pool，默认pool
	Router string `json:"router,omitempty" toml:"router,omitempty"`
	// Settings 路由设置
	Settings Configuration `json:"settings,omitempty" toml:"settings,omitempty"`
	// Blocks 块定义列表
	Blocks []BlockDef `json:"blocks" toml:"blocks"`
	// Execution 执行图
	Execution []BlockExecution `json:"execution" toml:"execution"`
}

// BlockDef 块定义
type BlockDef struct {
	// Name 块名称，在服务内唯一
	Name string `json:"name" toml:"name"`
	// Type 块类型，应该与注册器中注册的组件类型之一匹配
	Type string `json:"type" toml:"type"`
	// Properties 块配置，具体内容取决于块类型
	Properties Configuration `json:"properties,omitempty" toml:"properties,omitempty"`
}

// BlockExecution 执行图中的一个节点：发送者名称和接收者描述
// Receivers 支持两种形式：
//   - 列表：使用发送者唯一的默认输出端口，元素是接收者名称或者{name, input}对象
//   - 映射：输出端口ID->上述列表
type BlockExecution struct {
	// Name 发送者名称
	Name string `json:"name" toml:"name"`
	// Receivers 接收者描述
	Receivers interface{} `json:"receivers" toml:"receivers"`
}

// ReceiverRef 带显式输入端口的接收者引用
type ReceiverRef struct {
	Name  string `json:"name" toml:"name"`
	Input string `json:"input" toml:"input"`
}
