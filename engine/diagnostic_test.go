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
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/rulego/sigflow/api/types"
	"github.com/rulego/sigflow/test"
	"github.com/rulego/sigflow/test/assert"
)

func TestDiagnosticManagerRecordAndFlush(t *testing.T) {
	var flushed []types.ManagementSignal
	m := NewDiagnosticManager(nil, logr.Discard())
	assert.Nil(t, m.DoConfigure(DiagnosticContext{
		Enabled:    true,
		InstanceId: "i1",
		Service:    "s1",
		Handler: func(signal types.ManagementSignal) {
			flushed = append(flushed, signal)
		},
	}))
	assert.Nil(t, m.DoStart())

	src := test.NewSenderBlock("src", nil)
	b := test.NewRecordingBlock("b", nil)
	a := test.NewRecordingBlock("a", nil)
	m.Record(src, b, 2)
	m.Record(src, a, 1)
	m.Record(src, a, 0)
	m.Record(a, b, 5)
	m.Record(src, a, 3)

	snapshot := m.Snapshot()
	assert.Equal(t, 3, len(snapshot))
	assert.Equal(t, "a", snapshot[0].Source)
	assert.Equal(t, "src", snapshot[1].Source)
	assert.Equal(t, "a", snapshot[1].Target)
	assert.Equal(t, int64(4), snapshot[1].Count)
	assert.Equal(t, "b", snapshot[2].Target)

	m.Flush()
	assert.Equal(t, 1, len(flushed))
	assert.Equal(t, types.ManagementSignalRouterDiagnostic, flushed[0].Type)
	assert.Equal(t, "i1", flushed[0].InstanceId)
	assert.Equal(t, "s1", flushed[0].Service)
	assert.Equal(t, snapshot, flushed[0].BlocksData)
	assert.True(t, flushed[0].Ts > 0)

	m.Flush()
	assert.Equal(t, 1, len(flushed))
	assert.Equal(t, 0, len(m.Snapshot()))
}

func TestDiagnosticManagerSchedule(t *testing.T) {
	var flushed int
	scheduler := test.NewManualScheduler()
	m := NewDiagnosticManager(scheduler, logr.Discard())
	assert.Nil(t, m.DoConfigure(DiagnosticContext{
		Enabled:  true,
		Interval: 2 * time.Second,
		Handler: func(signal types.ManagementSignal) {
			flushed++
		},
	}))
	assert.Nil(t, m.DoStart())
	assert.Equal(t, 1, len(scheduler.Jobs()))
	assert.Equal(t, 2*time.Second, scheduler.Jobs()[0].Interval)

	src := test.NewSenderBlock("src", nil)
	a := test.NewRecordingBlock("a", nil)
	m.Record(src, a, 1)
	assert.Equal(t, 1, scheduler.Fire())
	assert.Equal(t, 1, flushed)

	m.Record(src, a, 1)
	m.DoStop()
	assert.True(t, scheduler.Jobs()[0].Cancelled())
	assert.Equal(t, 2, flushed)
	assert.True(t, m.Status().IsSet(types.Stopped))
}

func TestDiagnosticManagerDisabledDoesNotSchedule(t *testing.T) {
	scheduler := test.NewManualScheduler()
	m := NewDiagnosticManager(scheduler, logr.Discard())
	assert.Nil(t, m.DoConfigure(DiagnosticContext{Enabled: false, Interval: time.Second}))
	assert.Nil(t, m.DoStart())
	assert.Equal(t, 0, len(scheduler.Jobs()))
}

func TestDiagnosticManagerRequiresScheduler(t *testing.T) {
	m := NewDiagnosticManager(nil, logr.Discard())
	assert.Nil(t, m.DoConfigure(DiagnosticContext{Enabled: true, Interval: time.Second}))
	err := m.DoStart()
	assert.NotNil(t, err)
	assert.True(t, m.Status().IsSet(types.Error))
}
