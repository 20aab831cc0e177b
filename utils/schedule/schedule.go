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

// Package schedule provides a cron backed types.Scheduler.
//
// Unlike cron's own @every schedule, intervals are not rounded to whole seconds,
// so diagnostic flushes and simulators can run at sub-second rates.
package schedule

import (
	"errors"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/robfig/cron/v3"
	"github.com/rulego/sigflow/api/types"
)

// ErrInvalidInterval is returned for a non-positive interval.
var ErrInvalidInterval = errors.New("schedule interval must be positive")

var _ types.Scheduler = (*CronScheduler)(nil)

// CronScheduler 基于cron的定时任务调度器
type CronScheduler struct {
	cron    *cron.Cron
	stopped bool
	mu      sync.Mutex
}

// New 创建并启动调度器
// cron的调试日志输出到logger.V(1)，任务panic会被恢复并记录
func New(logger logr.Logger) *CronScheduler {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(logger.V(1)),
		cron.WithChain(cron.Recover(logger)),
	)
	c.Start()
	return &CronScheduler{cron: c}
}

// Every 每隔interval执行一次job
func (s *CronScheduler) Every(interval time.Duration, job func()) (types.Job, error) {
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	return s.schedule(everySchedule{interval: interval}, job)
}

// After 在delay之后执行一次job
func (s *CronScheduler) After(delay time.Duration, job func()) (types.Job, error) {
	if delay <= 0 {
		return nil, ErrInvalidInterval
	}
	if job == nil {
		return nil, errors.New("job can not nil")
	}
	j := &cronJob{cron: s.cron}
	//执行后删除cron条目
	err := s.add(j, onceSchedule{at: time.Now().Add(delay)}, func() {
		defer j.Cancel()
		job()
	})
	if err != nil {
		return nil, err
	}
	return j, nil
}

// Cron 执行cron表达式定时任务，表达式包含秒字段
func (s *CronScheduler) Cron(spec string, job func()) (types.Job, error) {
	schedule, err := cron.NewParser(
		cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	).Parse(spec)
	if err != nil {
		return nil, err
	}
	return s.schedule(schedule, job)
}

// Len 当前已调度的任务数量
func (s *CronScheduler) Len() int {
	return len(s.cron.Entries())
}

// Stop 停止调度器，不等待正在执行的任务
func (s *CronScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	s.cron.Stop()
}

func (s *CronScheduler) schedule(schedule cron.Schedule, job func()) (types.Job, error) {
	if job == nil {
		return nil, errors.New("job can not nil")
	}
	j := &cronJob{cron: s.cron}
	if err := s.add(j, schedule, job); err != nil {
		return nil, err
	}
	return j, nil
}

// add 注册任务，id赋值完成之前Cancel会等待
func (s *CronScheduler) add(j *cronJob, schedule cron.Schedule, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return errors.New("scheduler stopped")
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.id = s.cron.Schedule(schedule, cron.FuncJob(job))
	return nil
}

type cronJob struct {
	cron *cron.Cron
	id   cron.EntryID
	once sync.Once
	mu   sync.Mutex
}

// Cancel 取消任务
func (j *cronJob) Cancel() {
	j.once.Do(func() {
		j.mu.Lock()
		id := j.id
		j.mu.Unlock()
		j.cron.Remove(id)
	})
}

// everySchedule 固定间隔，不按秒取整
type everySchedule struct {
	interval time.Duration
}

func (s everySchedule) Next(t time.Time) time.Time {
	return t.Add(s.interval)
}

// onceSchedule 只触发一次，之后返回零值时间，cron不再执行
type onceSchedule struct {
	at time.Time
}

func (s onceSchedule) Next(t time.Time) time.Time {
	if t.Before(s.at) {
		return s.at
	}
	return time.Time{}
}
