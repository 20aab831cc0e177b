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
	"fmt"
	"sync"

	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/components/action"
	"github.com/rulego/sigflow/components/filter"
	"github.com/rulego/sigflow/components/transform"
)

// Registry 默认块组件注册器，预先注册了所有内置块
var Registry = new(BlockRegistry)

var _ types.ComponentRegistry = (*BlockRegistry)(nil)

func init() {
	var components []types.Component
	components = append(components, action.Registry.Components()...)
	components = append(components, filter.Registry.Components()...)
	components = append(components, transform.Registry.Components()...)

	for _, component := range components {
		_ = Registry.Register(component)
	}
}

// BlockRegistry 块组件注册器，组件类型唯一
type BlockRegistry struct {
	components map[string]types.Component
	sync.RWMutex
}

// NewBlockRegistry 创建注册器，并注册指定组件
func NewBlockRegistry(components ...types.Component) (*BlockRegistry, error) {
	r := &BlockRegistry{}
	for _, component := range components {
		if err := r.Register(component); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register 注册组件，组件类型已经存在则返回错误
func (r *BlockRegistry) Register(component types.Component) error {
	if component == nil || component.Type() == "" {
		return errors.New("the component type is empty")
	}
	r.Lock()
	defer r.Unlock()
	if r.components == nil {
		r.components = make(map[string]types.Component)
	}
	if _, ok := r.components[component.Type()]; ok {
		return errors.New("the component already exists. componentType=" + component.Type())
	}
	r.components[component.Type()] = component
	return nil
}

// Unregister 删除组件
func (r *BlockRegistry) Unregister(componentType string) error {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.components[componentType]; !ok {
		return fmt.Errorf("%w. componentType=%s", types.ErrComponentNotFound, componentType)
	}
	delete(r.components, componentType)
	return nil
}

// NewBlock 通过组件类型创建一个新的块实例
func (r *BlockRegistry) NewBlock(componentType string) (types.Component, error) {
	r.RLock()
	defer r.RUnlock()
	if component, ok := r.components[componentType]; !ok {
		return nil, fmt.Errorf("%w. componentType=%s", types.ErrComponentNotFound, componentType)
	} else {
		return component.New(), nil
	}
}

// GetComponents 获取所有注册组件
func (r *BlockRegistry) GetComponents() map[string]types.Component {
	r.RLock()
	defer r.RUnlock()
	var components = make(map[string]types.Component, len(r.components))
	for k, v := range r.components {
		components[k] = v
	}
	return components
}

// ComponentTypes 所有注册的组件类型，按字母排序
func (r *BlockRegistry) ComponentTypes() []string {
	return types.ComponentTypes(r.GetComponents())
}
