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
	"fmt"
	"reflect"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/mitchellh/copystructure"
	"github.com/mitchellh/reflectwalk"
)

// Attributes 信号属性
type Attributes map[string]interface{}

// Signal 在执行图中流转的消息单元，按约定不可变
type Signal struct {
	// Id 信号ID
	Id string `json:"id"`
	// Ts 信号时间戳(毫秒)
	Ts int64 `json:"ts"`
	// Type 信号类型
	Type string `json:"type"`
	// Attributes 信号属性
	Attributes Attributes `json:"attributes"`
}

// NewSignal 创建一个新的信号实例，并通过uuid生成信号ID
func NewSignal(signalType string, attributes Attributes) *Signal {
	uuId, _ := uuid.NewV4()
	if attributes == nil {
		attributes = Attributes{}
	}
	return &Signal{
		Id:         uuId.String(),
		Ts:         time.Now().UnixMilli(),
		Type:       signalType,
		Attributes: attributes,
	}
}

// Get returns the attribute value.
func (s *Signal) Get(key string) (interface{}, bool) {
	v, ok := s.Attributes[key]
	return v, ok
}

// Clone 深度复制信号，包括所有属性值
// Attribute values that cannot be copied make Clone fail.
// 含有未导出字段且没有注册copystructure.Copiers的结构体无法完整复制，返回ErrUncopyableAttribute
func (s *Signal) Clone() (*Signal, error) {
	if err := reflectwalk.Walk(s.Attributes, copyableWalker{}); err != nil {
		return nil, err
	}
	attributes, err := copystructure.Copy(s.Attributes)
	if err != nil {
		return nil, err
	}
	cloned := *s
	if v, ok := attributes.(Attributes); ok {
		cloned.Attributes = v
	}
	return &cloned, nil
}

// CloneSignals 深度复制一批信号
func CloneSignals(signals []*Signal) ([]*Signal, error) {
	result := make([]*Signal, len(signals))
	for i, item := range signals {
		if item == nil {
			continue
		}
		cloned, err := item.Clone()
		if err != nil {
			return nil, err
		}
		result[i] = cloned
	}
	return result, nil
}

// copyableWalker 检查属性值能否被copystructure完整复制
// copystructure会把未导出字段置零而不报错
type copyableWalker struct{}

func (copyableWalker) Pointer(v reflect.Value) error {
	if _, ok := copystructure.ShallowCopiers[v.Type()]; ok {
		return reflectwalk.SkipEntry
	}
	return nil
}

func (copyableWalker) Struct(v reflect.Value) error {
	t := v.Type()
	if _, ok := copystructure.Copiers[t]; ok {
		return reflectwalk.SkipEntry
	}
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).PkgPath != "" {
			return fmt.Errorf("%w: %s has unexported field %s", ErrUncopyableAttribute, t, t.Field(i).Name)
		}
	}
	return nil
}

func (copyableWalker) StructField(reflect.StructField, reflect.Value) error {
	return nil
}
