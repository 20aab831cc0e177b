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

package transform

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/test"
	"github.com/rulego/sigflow/test/assert"
)

func TestJsModifier(t *testing.T) {
	var targetBlockType = JsModifierType

	t.Run("ConfigureError", func(t *testing.T) {
		_, err := test.CreateAndConfigureBlock(targetBlockType, "m", types.Configuration{}, Registry, test.NewTestRouter(nil))
		assert.NotNil(t, err)

		_, err = test.CreateAndConfigureBlock(targetBlockType, "m", types.Configuration{
			"script": "return {",
		}, Registry, test.NewTestRouter(nil))
		assert.NotNil(t, err)
	})

	t.Run("Modify", func(t *testing.T) {
		router := test.NewTestRouter(nil)
		b, err := test.CreateAndConfigureBlock(targetBlockType, "celsius", types.Configuration{
			"script": "attributes.celsius = (attributes.fahrenheit - 32) / 1.8; attributes.kind = signalType; return attributes;",
		}, Registry, router)
		assert.Nil(t, err)

		original := types.NewSignal("telemetry", types.Attributes{"fahrenheit": 212})
		assert.Nil(t, b.(*JsModifier).ProcessSignals([]*types.Signal{original}))

		notifications := router.Notifications()
		assert.Equal(t, 1, len(notifications))
		modified := notifications[0].Signals[0]
		assert.Equal(t, original.Id, modified.Id)
		assert.Equal(t, original.Ts, modified.Ts)
		assert.Equal(t, "telemetry", modified.Type)
		assert.Equal(t, "100", fmt.Sprint(modified.Attributes["celsius"]))
		assert.Equal(t, "telemetry", modified.Attributes["kind"])
		//原信号不变
		_, ok := original.Attributes["celsius"]
		assert.False(t, ok)
	})

	t.Run("Drop", func(t *testing.T) {
		router := test.NewTestRouter(nil)
		b, err := test.CreateAndConfigureBlock(targetBlockType, "drop", types.Configuration{
			"script": "if (attributes.index % 2 == 0) { return null; } return {index: attributes.index, odd: true};",
		}, Registry, router)
		assert.Nil(t, err)

		assert.Nil(t, b.(*JsModifier).ProcessSignals(test.Signals(4)))
		notifications := router.Notifications()
		assert.Equal(t, 1, len(notifications))
		assert.Equal(t, 2, len(notifications[0].Signals))
		assert.Equal(t, true, notifications[0].Signals[0].Attributes["odd"])

		//全部丢弃不发送
		assert.Nil(t, b.(*JsModifier).ProcessSignals(test.Signals(1)))
		assert.Equal(t, 1, len(router.Notifications()))
	})

	t.Run("Vars", func(t *testing.T) {
		router := test.NewTestRouter(nil)
		b, err := test.CreateAndConfigureBlock(targetBlockType, "vars", types.Configuration{
			"script": "attributes.site = site; return attributes;",
			"vars":   map[string]interface{}{"site": "plant-1"},
		}, Registry, router)
		assert.Nil(t, err)
		assert.Nil(t, b.(*JsModifier).ProcessSignals(test.Signals(1)))
		assert.Equal(t, "plant-1", router.Notifications()[0].Signals[0].Attributes["site"])
	})

	t.Run("Errors", func(t *testing.T) {
		router := test.NewTestRouter(nil)
		b, err := test.CreateAndConfigureBlock(targetBlockType, "bad", types.Configuration{
			"script": "if (attributes.index == 0) { throw new Error('boom'); } if (attributes.index == 1) { return 'text'; } return attributes;",
		}, Registry, router)
		assert.Nil(t, err)

		err = b.(*JsModifier).ProcessSignals(test.Signals(3))
		assert.NotNil(t, err)
		assert.True(t, errors.Is(err, ErrJsModifierReturnFormat))
		notifications := router.Notifications()
		assert.Equal(t, 1, len(notifications))
		assert.Equal(t, 1, len(notifications[0].Signals))
	})

	t.Run("Timeout", func(t *testing.T) {
		b, err := test.CreateAndConfigureBlock(targetBlockType, "loop", types.Configuration{
			"script":           "while (true) {}",
			"maxExecutionTime": "50ms",
		}, Registry, test.NewTestRouter(nil))
		assert.Nil(t, err)
		err = b.(*JsModifier).ProcessSignals(test.Signals(1))
		assert.NotNil(t, err)
	})
}
