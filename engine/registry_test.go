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
	"testing"

	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/test"
	"github.com/rulego/sigflow/test/assert"
)

func TestDefaultRegistry(t *testing.T) {
	components := Registry.GetComponents()
	for _, item := range []string{"exprFilter", "jsModifier", "logger", "mqttPublisher", "simulator"} {
		_, ok := components[item]
		assert.True(t, ok, item)
	}
	assert.Equal(t, []string{"exprFilter", "jsModifier", "logger", "mqttPublisher", "simulator"}, Registry.ComponentTypes())
}

func TestBlockRegistry(t *testing.T) {
	registry, err := NewBlockRegistry(test.NewRecordingBlock("", nil))
	assert.Nil(t, err)

	err = registry.Register(test.NewRecordingBlock("", nil))
	assert.NotNil(t, err)

	assert.Nil(t, registry.Register(test.NewSenderBlock("", nil)))
	assert.Equal(t, []string{"test/recording", "test/sender"}, registry.ComponentTypes())

	b1, err := registry.NewBlock("test/recording")
	assert.Nil(t, err)
	b2, err := registry.NewBlock("test/recording")
	assert.Nil(t, err)
	assert.True(t, b1 != b2)
	assert.Equal(t, "test/recording", b1.Type())

	_, err = registry.NewBlock("notFound")
	assert.True(t, errors.Is(err, types.ErrComponentNotFound))

	assert.Nil(t, registry.Unregister("test/sender"))
	err = registry.Unregister("test/sender")
	assert.True(t, errors.Is(err, types.ErrComponentNotFound))
	assert.Equal(t, []string{"test/recording"}, registry.ComponentTypes())

	_, err = NewBlockRegistry(test.NewSenderBlock("", nil), test.NewSenderBlock("", nil))
	assert.NotNil(t, err)
}
