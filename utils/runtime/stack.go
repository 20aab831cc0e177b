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

// Package runtime provides stack capture for panics recovered at component boundaries.
//
// Usage example:
//
//	defer func() {
//		if e := recover(); e != nil {
//			err = runtime.PanicError("deliver", e)
//		}
//	}()
package runtime

import (
	"fmt"
	"runtime"
	"strings"
)

// PanicErr is the error produced from a recovered panic.
type PanicErr struct {
	// Phase names the operation that panicked, for example `start` or `deliver`.
	Phase string
	// Value is the value passed to panic.
	Value interface{}
	// Stack is the stack trace captured at recovery time.
	Stack string
}

func (e *PanicErr) Error() string {
	return fmt.Sprintf("%s panic: %v", e.Phase, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicErr) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// PanicError wraps a recovered value. Call it from the deferred recover function.
func PanicError(phase string, value interface{}) *PanicErr {
	return &PanicErr{Phase: phase, Value: value, Stack: Stack()}
}

// Stack 获取堆栈信息
func Stack() string {
	var pc = make([]uintptr, 32)
	n := runtime.Callers(3, pc)

	var build strings.Builder
	for i := 0; i < n; i++ {
		f := runtime.FuncForPC(pc[i] - 1)
		if f == nil {
			continue
		}
		file, line := f.FileLine(pc[i] - 1)
		build.WriteString(fmt.Sprintf(" %s %s:%d \n", f.Name(), file, line))
	}
	return build.String()
}
