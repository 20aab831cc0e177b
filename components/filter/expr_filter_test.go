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

package filter

import (
	"errors"
	"testing"

	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/test"
	"github.com/rulego/sigflow/test/assert"
)

func TestExprFilter(t *testing.T) {
	var targetBlockType = "exprFilter"

	t.Run("Terminals", func(t *testing.T) {
		b := NewExprFilter()
		assert.Equal(t, targetBlockType, b.Type())
		_, ok := b.DefaultOutput()
		assert.False(t, ok)
		assert.True(t, b.IsOutputValid(OutputTrue))
		assert.True(t, b.IsOutputValid(OutputFalse))
		_, ok = b.DefaultInput()
		assert.True(t, ok)
	})

	t.Run("ConfigureError", func(t *testing.T) {
		_, err := test.CreateAndConfigureBlock(targetBlockType, "f", types.Configuration{
			"expr": "",
		}, Registry, test.NewTestRouter(nil))
		assert.Equal(t, "expr can not be empty", err.Error())

		_, err = test.CreateAndConfigureBlock(targetBlockType, "f", types.Configuration{
			"expr": "attributes.temperature >",
		}, Registry, test.NewTestRouter(nil))
		assert.NotNil(t, err)
	})

	t.Run("ProcessSignals", func(t *testing.T) {
		router := test.NewTestRouter(nil)
		b, err := test.CreateAndConfigureBlock(targetBlockType, "hot", types.Configuration{
			"expr": "attributes.temperature > 50 && signalType == 'telemetry'",
		}, Registry, router)
		assert.Nil(t, err)
		filter := b.(*ExprFilter)
		assert.Equal(t, "hot", filter.Name())

		hot := types.NewSignal("telemetry", types.Attributes{"temperature": 60})
		cold := types.NewSignal("telemetry", types.Attributes{"temperature": 20})
		other := types.NewSignal("event", types.Attributes{"temperature": 90})
		assert.Nil(t, filter.ProcessSignals([]*types.Signal{hot, cold, other}))

		notifications := router.Notifications()
		assert.Equal(t, 2, len(notifications))
		assert.Equal(t, OutputTrue, notifications[0].OutputId)
		assert.Equal(t, []*types.Signal{hot}, notifications[0].Signals)
		assert.Equal(t, OutputFalse, notifications[1].OutputId)
		assert.Equal(t, []*types.Signal{cold, other}, notifications[1].Signals)
	})

	t.Run("AllMatched", func(t *testing.T) {
		router := test.NewTestRouter(nil)
		b, err := test.CreateAndConfigureBlock(targetBlockType, "f", types.Configuration{
			"expr": "attributes.name == 'aa' || id == ''",
		}, Registry, router)
		assert.Nil(t, err)
		assert.Nil(t, b.(*ExprFilter).ProcessSignals([]*types.Signal{
			types.NewSignal("t", types.Attributes{"name": "aa"}),
		}))
		notifications := router.Notifications()
		assert.Equal(t, 1, len(notifications))
		assert.Equal(t, OutputTrue, notifications[0].OutputId)
	})

	t.Run("EvaluationError", func(t *testing.T) {
		router := test.NewTestRouter(nil)
		b, err := test.CreateAndConfigureBlock(targetBlockType, "f", types.Configuration{
			"expr": "attributes.temperature > 50",
		}, Registry, router)
		assert.Nil(t, err)
		good := types.NewSignal("t", types.Attributes{"temperature": 60})
		bad := types.NewSignal("t", types.Attributes{"temperature": "n/a"})
		err = b.(*ExprFilter).ProcessSignals([]*types.Signal{good, bad})
		assert.NotNil(t, err)
		//其它信号正常发送
		notifications := router.Notifications()
		assert.Equal(t, 1, len(notifications))
		assert.Equal(t, []*types.Signal{good}, notifications[0].Signals)
	})

	t.Run("RouterError", func(t *testing.T) {
		router := test.NewTestRouter(nil)
		router.FailWith(types.ErrRouterNotStarted)
		b, err := test.CreateAndConfigureBlock(targetBlockType, "f", types.Configuration{
			"expr": "true",
		}, Registry, router)
		assert.Nil(t, err)
		err = b.(*ExprFilter).ProcessSignals(test.Signals(1))
		assert.True(t, errors.Is(err, types.ErrRouterNotStarted))
	})
}
