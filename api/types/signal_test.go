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
	"errors"
	"math/big"
	"reflect"
	"testing"
	"time"

	"github.com/mitchellh/copystructure"
	"github.com/rulego/sigflow/test/assert"
)

func TestNewSignal(t *testing.T) {
	s := NewSignal("telemetry", Attributes{"temperature": 41})
	assert.NotEqual(t, "", s.Id)
	assert.True(t, s.Ts > 0)
	assert.Equal(t, "telemetry", s.Type)
	v, ok := s.Get("temperature")
	assert.True(t, ok)
	assert.Equal(t, 41, v)

	empty := NewSignal("empty", nil)
	assert.NotNil(t, empty.Attributes)
	assert.NotEqual(t, s.Id, empty.Id)
}

func TestSignalClone(t *testing.T) {
	s := NewSignal("telemetry", Attributes{
		"values": []int{1, 2, 3},
		"nested": map[string]interface{}{"a": "b"},
	})
	cloned, err := s.Clone()
	assert.Nil(t, err)
	assert.True(t, cloned != s)
	assert.Equal(t, s.Id, cloned.Id)
	assert.Equal(t, s.Attributes, cloned.Attributes)

	cloned.Attributes["values"].([]int)[0] = 100
	cloned.Attributes["nested"].(map[string]interface{})["a"] = "c"
	assert.Equal(t, 1, s.Attributes["values"].([]int)[0])
	assert.Equal(t, "b", s.Attributes["nested"].(map[string]interface{})["a"])
}

type uncopyable struct {
	Value string
}

func TestSignalCloneError(t *testing.T) {
	copystructure.Copiers[reflect.TypeOf(uncopyable{})] = func(interface{}) (interface{}, error) {
		return nil, errors.New("uncopyable")
	}
	defer delete(copystructure.Copiers, reflect.TypeOf(uncopyable{}))

	s := NewSignal("telemetry", Attributes{"value": uncopyable{Value: "x"}})
	_, err := s.Clone()
	assert.NotNil(t, err)

	_, err = CloneSignals([]*Signal{NewSignal("ok", nil), s})
	assert.NotNil(t, err)
}

type reading struct {
	Unit  string
	value float64
}

func TestSignalCloneUnexportedFields(t *testing.T) {
	for name, value := range map[string]interface{}{
		"struct":  reading{Unit: "C", value: 21.5},
		"pointer": &reading{Unit: "C", value: 21.5},
		"bigInt":  big.NewInt(42),
		"nested":  map[string]interface{}{"readings": []interface{}{reading{Unit: "F", value: 70}}},
	} {
		t.Run(name, func(t *testing.T) {
			s := NewSignal("telemetry", Attributes{"v": value})
			cloned, err := s.Clone()
			assert.True(t, cloned == nil)
			assert.True(t, errors.Is(err, ErrUncopyableAttribute))
		})
	}
}

func TestSignalCloneRegisteredCopier(t *testing.T) {
	copystructure.Copiers[reflect.TypeOf(reading{})] = func(v interface{}) (interface{}, error) {
		return v.(reading), nil
	}
	defer delete(copystructure.Copiers, reflect.TypeOf(reading{}))

	now := time.Now()
	s := NewSignal("telemetry", Attributes{"r": reading{Unit: "C", value: 21.5}, "ts": now})
	cloned, err := s.Clone()
	assert.Nil(t, err)
	assert.Equal(t, 21.5, cloned.Attributes["r"].(reading).value)
	assert.True(t, now.Equal(cloned.Attributes["ts"].(time.Time)))
}

func TestCloneSignals(t *testing.T) {
	signals := []*Signal{NewSignal("a", Attributes{"k": 1}), NewSignal("b", nil)}
	cloned, err := CloneSignals(signals)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(cloned))
	for i := range signals {
		assert.True(t, signals[i] != cloned[i])
		assert.Equal(t, signals[i].Type, cloned[i].Type)
	}
}
