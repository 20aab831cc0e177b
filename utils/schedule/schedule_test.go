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

package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/rulego/sigflow/test/assert"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEvery(t *testing.T) {
	s := New(logr.Discard())
	defer s.Stop()
	var n int32
	job, err := s.Every(50*time.Millisecond, func() {
		atomic.AddInt32(&n, 1)
	})
	assert.Nil(t, err)
	waitFor(t, func() bool { return atomic.LoadInt32(&n) >= 3 })

	job.Cancel()
	//重复取消
	job.Cancel()
	time.Sleep(100 * time.Millisecond)
	stoppedAt := atomic.LoadInt32(&n)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, stoppedAt, atomic.LoadInt32(&n))
	assert.Equal(t, 0, s.Len())
}

func TestAfter(t *testing.T) {
	s := New(logr.Discard())
	defer s.Stop()
	var n int32
	_, err := s.After(30*time.Millisecond, func() {
		atomic.AddInt32(&n, 1)
	})
	assert.Nil(t, err)
	waitFor(t, func() bool { return atomic.LoadInt32(&n) == 1 })
	//执行后不再保留cron条目
	waitFor(t, func() bool { return s.Len() == 0 })
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&n))
}

func TestAfterRemovedWhenJobPanics(t *testing.T) {
	s := New(logr.Discard())
	defer s.Stop()
	var n int32
	job, err := s.After(20*time.Millisecond, func() {
		atomic.AddInt32(&n, 1)
		panic("boom")
	})
	assert.Nil(t, err)
	waitFor(t, func() bool { return atomic.LoadInt32(&n) == 1 })
	waitFor(t, func() bool { return s.Len() == 0 })
	//已经删除的任务可以再次取消
	job.Cancel()
}

func TestPanicIsRecovered(t *testing.T) {
	s := New(logr.Discard())
	defer s.Stop()
	var n int32
	_, err := s.Every(30*time.Millisecond, func() {
		atomic.AddInt32(&n, 1)
		panic("boom")
	})
	assert.Nil(t, err)
	waitFor(t, func() bool { return atomic.LoadInt32(&n) >= 2 })
}

func TestInvalid(t *testing.T) {
	s := New(logr.Discard())
	_, err := s.Every(0, func() {})
	assert.Equal(t, ErrInvalidInterval, err)
	_, err = s.After(-time.Second, func() {})
	assert.Equal(t, ErrInvalidInterval, err)
	_, err = s.Every(time.Second, nil)
	assert.NotNil(t, err)
	_, err = s.Cron("not a cron", func() {})
	assert.NotNil(t, err)

	job, err := s.Cron("*/1 * * * * *", func() {})
	assert.Nil(t, err)
	assert.Equal(t, 1, s.Len())
	job.Cancel()

	s.Stop()
	s.Stop()
	_, err = s.Every(time.Second, func() {})
	assert.NotNil(t, err)
}
