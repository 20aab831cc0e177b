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

import (
	"sort"
	"sync"
)

// CategoryGetter 该接口是可选的，组件可以实现该接口，提供分类
type CategoryGetter interface {
	Category() string
}

// DescGetter 该接口是可选的，组件可以实现该接口，提供组件描述
type DescGetter interface {
	Desc() string
}

// SafeComponentSlice 安全的组件列表切片
type SafeComponentSlice struct {
	//组件列表
	components []Component
	sync.Mutex
}

// Add 线程安全地添加元素
func (p *SafeComponentSlice) Add(components ...Component) {
	p.Lock()
	defer p.Unlock()
	p.components = append(p.components, components...)
}

// Components 获取组件列表
func (p *SafeComponentSlice) Components() []Component {
	p.Lock()
	defer p.Unlock()
	return p.components
}

// ComponentTypes 按字典序返回组件类型
func ComponentTypes(components map[string]Component) []string {
	var types []string
	for k := range components {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}
