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
	"sync"
	"testing"

	"github.com/rulego/sigflow/test/assert"
)

func TestRunnerStatus(t *testing.T) {
	s := NewRunnerStatus(Created)
	assert.True(t, s.IsSet(Created))
	assert.Equal(t, "created", s.String())

	next := s.Set(Configuring)
	//快照不可变
	assert.True(t, s.IsSet(Created))
	assert.False(t, next.IsSet(Created))
	assert.True(t, next.IsSet(Configuring))

	withError := next.Add(Error)
	assert.Equal(t, "configuring, error", withError.String())

	//生命周期标志互斥，error保留
	started := withError.Set(Started)
	assert.Equal(t, NewRunnerStatus(Started, Error), started)

	//error/warning set等同add
	warned := started.Set(Warning)
	assert.Equal(t, NewRunnerStatus(Started, Error, Warning), warned)

	assert.Equal(t, NewRunnerStatus(Started, Warning), warned.Remove(Error))
	assert.NotEqual(t, NewRunnerStatus(Started), NewRunnerStatus(Started, Warning))
	assert.Equal(t, []StatusFlag{Started, Error, Warning}, warned.Flags())
	assert.Equal(t, "", RunnerStatus{}.String())
}

func TestStatusSubscribe(t *testing.T) {
	status := NewStatus()
	var olds, news []RunnerStatus
	status.Subscribe(func(old, new RunnerStatus) {
		olds = append(olds, old)
		news = append(news, new)
	})
	status.Set(Configuring)
	status.Add(Error)
	//无变化不通知
	status.Add(Error)
	status.Remove(Error)

	assert.Equal(t, 3, len(news))
	assert.Equal(t, NewRunnerStatus(Created), olds[0])
	assert.Equal(t, NewRunnerStatus(Configuring), news[0])
	assert.Equal(t, NewRunnerStatus(Configuring, Error), news[1])
	assert.Equal(t, NewRunnerStatus(Configuring), news[2])
	assert.True(t, status.IsSet(Configuring))
}

func TestStatusConcurrentAdd(t *testing.T) {
	status := NewStatus()
	status.Set(Started)
	var count int
	var mu sync.Mutex
	status.Subscribe(func(old, new RunnerStatus) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status.Add(Error)
		}()
	}
	wg.Wait()
	assert.Equal(t, NewRunnerStatus(Started, Error), status.Get())
	assert.Equal(t, 1, count)
}

func TestStatusFlagString(t *testing.T) {
	assert.Equal(t, "stopping", Stopping.String())
	assert.Equal(t, "unknown", StatusFlag(0).String())
}
