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

package action

import (
	"errors"
	"testing"
	"time"

	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/test"
	"github.com/rulego/sigflow/test/assert"
)

func TestSimulator(t *testing.T) {
	var targetBlockType = "simulator"

	t.Run("NotReceiver", func(t *testing.T) {
		_, err := types.DeliveryConventionOf(NewSimulator())
		assert.True(t, errors.Is(err, types.ErrInvalidProcessSignalsSignature))
	})

	t.Run("ConfigureError", func(t *testing.T) {
		_, err := test.CreateAndConfigureBlock(targetBlockType, "sim", types.Configuration{
			"interval": "-1s",
		}, Registry, test.NewTestRouter(nil))
		assert.NotNil(t, err)

		_, err = test.CreateAndConfigureBlock(targetBlockType, "sim", types.Configuration{
			"interval": "soon",
		}, Registry, test.NewTestRouter(nil))
		assert.NotNil(t, err)
	})

	t.Run("RequiresScheduler", func(t *testing.T) {
		b, err := test.CreateAndConfigureBlock(targetBlockType, "sim", nil, Registry, test.NewTestRouter(nil))
		assert.Nil(t, err)
		err = b.DoStart()
		assert.True(t, errors.Is(err, ErrSchedulerRequired))
		assert.True(t, b.Status().IsSet(types.Error))
	})

	t.Run("Emit", func(t *testing.T) {
		router := test.NewTestRouter(nil)
		scheduler := test.NewManualScheduler()
		b, err := test.CreateBlock(targetBlockType, Registry)
		assert.Nil(t, err)
		ctx := test.NewBlockContext("sim", types.Configuration{
			"interval":   "250ms",
			"count":      "2",
			"signalType": "telemetry",
			"attributes": map[string]interface{}{"temperature": 21.5},
		}, router)
		ctx.Scheduler = scheduler
		assert.Nil(t, b.DoConfigure(ctx))

		//启动前不发送
		b.(*Simulator).Emit()
		assert.Equal(t, 0, len(router.Notifications()))

		assert.Nil(t, b.DoStart())
		jobs := scheduler.Jobs()
		assert.Equal(t, 1, len(jobs))
		assert.Equal(t, 250*time.Millisecond, jobs[0].Interval)

		scheduler.Fire()
		scheduler.Fire()
		notifications := router.Notifications()
		assert.Equal(t, 2, len(notifications))
		for i, n := range notifications {
			assert.Equal(t, "sim", n.Block)
			assert.Equal(t, 2, len(n.Signals))
			for j, signal := range n.Signals {
				assert.Equal(t, "telemetry", signal.Type)
				assert.Equal(t, 21.5, signal.Attributes["temperature"])
				assert.Equal(t, int64(i*2+j+1), signal.Attributes[SeqKey])
			}
		}
		//每个信号的属性独立
		notifications[0].Signals[0].Attributes["temperature"] = 0
		assert.Equal(t, 21.5, notifications[0].Signals[1].Attributes["temperature"])

		b.DoStop()
		assert.True(t, jobs[0].Cancelled())
		scheduler.Fire()
		assert.Equal(t, 2, len(router.Notifications()))
	})

	t.Run("NotifyError", func(t *testing.T) {
		router := test.NewTestRouter(nil)
		router.FailWith(types.ErrRouterNotStarted)
		b, err := test.CreateBlock(targetBlockType, Registry)
		assert.Nil(t, err)
		ctx := test.NewBlockContext("sim", nil, router)
		ctx.Scheduler = test.NewManualScheduler()
		assert.Nil(t, b.DoConfigure(ctx))
		assert.Nil(t, b.DoStart())
		b.(*Simulator).Emit()
		assert.Equal(t, 0, len(router.Notifications()))
		assert.True(t, b.Status().IsSet(types.Started))
	})
}
