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
	"strings"
	"sync"
)

// StatusFlag is a single named flag of a RunnerStatus.
type StatusFlag uint16

// 生命周期标志互斥，Error/Warning 可与任意生命周期标志共存
const (
	Created StatusFlag = 1 << iota
	Configuring
	Configured
	Starting
	Started
	Stopping
	Stopped
	Error
	Warning
)

const (
	lifecycleFlags = Created | Configuring | Configured | Starting | Started | Stopping | Stopped
	healthFlags    = Error | Warning
)

var flagNames = []struct {
	flag StatusFlag
	name string
}{
	{Created, "created"},
	{Configuring, "configuring"},
	{Configured, "configured"},
	{Starting, "starting"},
	{Started, "started"},
	{Stopping, "stopping"},
	{Stopped, "stopped"},
	{Error, "error"},
	{Warning, "warning"},
}

// String returns the flag name.
func (f StatusFlag) String() string {
	for _, item := range flagNames {
		if item.flag == f {
			return item.name
		}
	}
	return "unknown"
}

// RunnerStatus is an immutable snapshot of the flags set on a runnable component.
// Two snapshots are equal (==) only when their flag sets match exactly.
type RunnerStatus struct {
	flags StatusFlag
}

// NewRunnerStatus creates a snapshot with the given flags set.
func NewRunnerStatus(flags ...StatusFlag) RunnerStatus {
	var s RunnerStatus
	for _, f := range flags {
		s.flags |= f
	}
	return s
}

// IsSet reports whether the flag is set.
func (s RunnerStatus) IsSet(flag StatusFlag) bool {
	return s.flags&flag != 0
}

// Add returns a snapshot with the flag added, leaving the others untouched.
func (s RunnerStatus) Add(flag StatusFlag) RunnerStatus {
	return RunnerStatus{flags: s.flags | flag}
}

// Remove returns a snapshot with the flag cleared.
func (s RunnerStatus) Remove(flag StatusFlag) RunnerStatus {
	return RunnerStatus{flags: s.flags &^ flag}
}

// Set returns a snapshot where the lifecycle flag replaces every other lifecycle flag.
// Error and Warning are kept. Setting Error or Warning behaves like Add.
func (s RunnerStatus) Set(flag StatusFlag) RunnerStatus {
	if flag&healthFlags != 0 {
		return s.Add(flag)
	}
	return RunnerStatus{flags: (s.flags & healthFlags) | (flag & lifecycleFlags)}
}

// Flags returns the set flags in declaration order.
func (s RunnerStatus) Flags() []StatusFlag {
	var result []StatusFlag
	for _, item := range flagNames {
		if s.IsSet(item.flag) {
			result = append(result, item.flag)
		}
	}
	return result
}

func (s RunnerStatus) String() string {
	var names []string
	for _, f := range s.Flags() {
		names = append(names, f.String())
	}
	return strings.Join(names, ", ")
}

// StatusChangeFunc is invoked with the previous and the new snapshot.
type StatusChangeFunc func(old, new RunnerStatus)

// Status holds the current RunnerStatus of a component.
// Transitions replace the snapshot and notify subscribers outside the lock.
type Status struct {
	current     RunnerStatus
	subscribers []StatusChangeFunc
	sync.RWMutex
}

// NewStatus creates a holder whose initial snapshot is `created`.
func NewStatus() *Status {
	return &Status{current: NewRunnerStatus(Created)}
}

// Get returns the current snapshot.
func (s *Status) Get() RunnerStatus {
	s.RLock()
	defer s.RUnlock()
	return s.current
}

// IsSet reports whether the flag is set on the current snapshot.
func (s *Status) IsSet(flag StatusFlag) bool {
	return s.Get().IsSet(flag)
}

// Set exclusively replaces the lifecycle flag.
func (s *Status) Set(flag StatusFlag) {
	s.update(func(current RunnerStatus) RunnerStatus { return current.Set(flag) })
}

// Add adds the flag.
func (s *Status) Add(flag StatusFlag) {
	s.update(func(current RunnerStatus) RunnerStatus { return current.Add(flag) })
}

// Remove clears the flag.
func (s *Status) Remove(flag StatusFlag) {
	s.update(func(current RunnerStatus) RunnerStatus { return current.Remove(flag) })
}

// Subscribe registers a change callback.
func (s *Status) Subscribe(f StatusChangeFunc) {
	if f == nil {
		return
	}
	s.Lock()
	defer s.Unlock()
	s.subscribers = append(s.subscribers, f)
}

func (s *Status) update(transition func(RunnerStatus) RunnerStatus) {
	s.Lock()
	old := s.current
	s.current = transition(old)
	changed := s.current != old
	next := s.current
	subscribers := s.subscribers
	s.Unlock()
	if !changed {
		return
	}
	for _, f := range subscribers {
		f(old, next)
	}
}
