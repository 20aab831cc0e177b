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

package test

import (
	"sync"
	"time"

	"github.com/rulego/sigflow/api/types"
)

// ManualScheduler 手动触发的调度器，Fire执行所有未取消的任务
type ManualScheduler struct {
	jobs    []*ManualJob
	stopped bool
	mu      sync.Mutex
}

var _ types.Scheduler = (*ManualScheduler)(nil)

// ManualJob 手动调度器里的任务
type ManualJob struct {
	Interval  time.Duration
	Once      bool
	fn        func()
	cancelled bool
	mu        sync.Mutex
}

// Cancel 取消任务
func (j *ManualJob) Cancel() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cancelled = true
}

// Cancelled 任务是否已经取消
func (j *ManualJob) Cancelled() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cancelled
}

// NewManualScheduler 创建手动调度器
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) Every(interval time.Duration, fn func()) (types.Job, error) {
	return s.add(interval, false, fn), nil
}

func (s *ManualScheduler) After(delay time.Duration, fn func()) (types.Job, error) {
	return s.add(delay, true, fn), nil
}

func (s *ManualScheduler) add(interval time.Duration, once bool, fn func()) *ManualJob {
	job := &ManualJob{Interval: interval, Once: once, fn: fn}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return job
}

// Stop 停止后Fire不再执行任何任务
func (s *ManualScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// Jobs 已调度的任务
func (s *ManualScheduler) Jobs() []*ManualJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*ManualJob(nil), s.jobs...)
}

// Fire 在调用者协程内执行所有未取消的任务，一次性任务执行后被取消
// 返回执行的任务数量
func (s *ManualScheduler) Fire() int {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return 0
	}
	jobs := append([]*ManualJob(nil), s.jobs...)
	s.mu.Unlock()

	var count int
	for _, job := range jobs {
		if job.Cancelled() {
			continue
		}
		if job.Once {
			job.Cancel()
		}
		job.fn()
		count++
	}
	return count
}
