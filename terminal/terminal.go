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

// Package terminal declares the named input and output ports of block types.
//
// A Type holds the terminals it declares and a parent Type. Terminal lists are resolved by
// walking from the most specific Type to the root: a redeclared id replaces the inherited
// terminal, the DefaultTerminal placeholder disappears once any explicit terminal of the
// direction exists, and the result is ordered by Order.
//
//	var FilterTerminals = terminal.MustNewType("exprFilter", block.Terminals,
//		terminal.NewOutput("true", terminal.WithOrder(1)),
//		terminal.NewOutput("false", terminal.WithOrder(2)),
//	)
package terminal

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rulego/sigflow/api/types"
)

// DefaultTerminal 隐式默认端口占位ID，块类型没有声明任何端口时使用
const DefaultTerminal = "__default_terminal_value"

// Direction 端口方向
type Direction string

const (
	Input  Direction = "input"
	Output Direction = "output"
)

// Validate 检查方向是否合法
func (d Direction) Validate() error {
	switch d {
	case Input, Output:
		return nil
	default:
		return fmt.Errorf("%w: %q", types.ErrInvalidDirection, string(d))
	}
}

// Terminal 端口定义
type Terminal struct {
	Id          string    `json:"id"`
	Direction   Direction `json:"direction"`
	Default     bool      `json:"default"`
	Label       string    `json:"label,omitempty"`
	Description string    `json:"description,omitempty"`
	Visible     bool      `json:"visible"`
	Order       float64   `json:"order"`
}

// Option 修改端口定义
type Option func(*Terminal)

// AsDefault 标记为默认端口
func AsDefault() Option {
	return func(t *Terminal) {
		t.Default = true
	}
}

// WithLabel 设置展示名称
func WithLabel(label string) Option {
	return func(t *Terminal) {
		t.Label = label
	}
}

// WithDescription 设置说明
func WithDescription(description string) Option {
	return func(t *Terminal) {
		t.Description = description
	}
}

// WithOrder 设置排序
func WithOrder(order float64) Option {
	return func(t *Terminal) {
		t.Order = order
	}
}

// Hidden 不在界面展示
func Hidden() Option {
	return func(t *Terminal) {
		t.Visible = false
	}
}

// New 创建端口定义，默认可见
func New(direction Direction, id string, opts ...Option) Terminal {
	t := Terminal{Id: id, Direction: direction, Label: id, Visible: true}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// NewInput 创建输入端口定义
func NewInput(id string, opts ...Option) Terminal {
	return New(Input, id, opts...)
}

// NewOutput 创建输出端口定义
func NewOutput(id string, opts ...Option) Terminal {
	return New(Output, id, opts...)
}

// Type 块类型的端口声明
type Type struct {
	name     string
	parent   *Type
	declared []Terminal
	mu       sync.RWMutex
}

// NewType 创建块类型端口声明，parent为nil表示根类型
func NewType(name string, parent *Type, terminals ...Terminal) (*Type, error) {
	t := &Type{name: name, parent: parent}
	if err := t.Declare(terminals...); err != nil {
		return nil, err
	}
	return t, nil
}

// MustNewType 同NewType，声明非法时panic，用于包级变量
func MustNewType(name string, parent *Type, terminals ...Terminal) *Type {
	t, err := NewType(name, parent, terminals...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name 类型名称
func (t *Type) Name() string {
	return t.name
}

// Parent 父类型
func (t *Type) Parent() *Type {
	return t.parent
}

// Declare 声明端口，同一类型同一方向下重复的ID覆盖之前的声明
func (t *Type) Declare(terminals ...Terminal) error {
	for _, item := range terminals {
		if err := item.Direction.Validate(); err != nil {
			return fmt.Errorf("declare terminal %s on %s: %w", item.Id, t.name, err)
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, item := range terminals {
		replaced := false
		for i, existing := range t.declared {
			if existing.Id == item.Id && existing.Direction == item.Direction {
				t.declared[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			t.declared = append(t.declared, item)
		}
	}
	return nil
}

// Declared 该类型自身声明的端口，不包含继承的端口
func (t *Type) Declared(direction Direction) ([]Terminal, error) {
	if err := direction.Validate(); err != nil {
		return nil, err
	}
	return t.declaredOf(direction), nil
}

// Terminals 合并继承链后指定方向的所有端口，按Order排序
func (t *Type) Terminals(direction Direction) ([]Terminal, error) {
	if err := direction.Validate(); err != nil {
		return nil, err
	}
	var result []Terminal
	seen := make(map[string]bool)
	explicit := false
	for current := t; current != nil; current = current.parent {
		for _, item := range current.declaredOf(direction) {
			if seen[item.Id] {
				continue
			}
			seen[item.Id] = true
			if item.Id != DefaultTerminal {
				explicit = true
			}
			result = append(result, item)
		}
	}
	if explicit {
		filtered := result[:0]
		for _, item := range result {
			if item.Id != DefaultTerminal {
				filtered = append(filtered, item)
			}
		}
		result = filtered
	}
	defaultTerminal, hasDefault := t.defaultOf(direction)
	for i := range result {
		result[i].Default = hasDefault && result[i].Id == defaultTerminal.Id
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Order < result[j].Order
	})
	return result, nil
}

// Default 指定方向的默认端口
// 取继承链上最近一个声明了该方向端口的类型，返回它标记的默认端口，没有则返回false
func (t *Type) Default(direction Direction) (Terminal, bool, error) {
	if err := direction.Validate(); err != nil {
		return Terminal{}, false, err
	}
	item, ok := t.defaultOf(direction)
	return item, ok, nil
}

// Get 获取指定ID的端口
func (t *Type) Get(direction Direction, id string) (Terminal, bool) {
	terminals, err := t.Terminals(direction)
	if err != nil {
		return Terminal{}, false
	}
	for _, item := range terminals {
		if item.Id == id {
			return item, true
		}
	}
	return Terminal{}, false
}

// IsValid 端口是否存在
func (t *Type) IsValid(direction Direction, id string) bool {
	_, ok := t.Get(direction, id)
	return ok
}

func (t *Type) declaredOf(direction Direction) []Terminal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var result []Terminal
	for _, item := range t.declared {
		if item.Direction == direction {
			result = append(result, item)
		}
	}
	return result
}

func (t *Type) defaultOf(direction Direction) (Terminal, bool) {
	for current := t; current != nil; current = current.parent {
		declared := current.declaredOf(direction)
		if len(declared) == 0 {
			continue
		}
		for _, item := range declared {
			if item.Default {
				return item, true
			}
		}
		return Terminal{}, false
	}
	return Terminal{}, false
}
